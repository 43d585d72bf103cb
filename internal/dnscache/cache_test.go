package dnscache

import (
	"context"
	"errors"
	"net"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_CachesResult(t *testing.T) {
	var calls int32
	c := NewWithLookup(time.Second, time.Minute, func(_ context.Context, _ string) ([]*net.MX, error) {
		atomic.AddInt32(&calls, 1)
		return []*net.MX{{Host: "mx.example.com.", Pref: 10}}, nil
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		records, err := c.LookupMX(ctx, "example.com")
		assert.NoError(t, err)
		assert.Len(t, records, 1)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, c.Len())
}

func TestCache_CachesError(t *testing.T) {
	var calls int32
	lookupErr := errors.New("boom")
	c := NewWithLookup(time.Second, time.Minute, func(_ context.Context, _ string) ([]*net.MX, error) {
		atomic.AddInt32(&calls, 1)
		return nil, lookupErr
	})

	ctx := context.Background()
	_, err := c.LookupMX(ctx, "example.com")
	assert.ErrorIs(t, err, lookupErr)
	_, err = c.LookupMX(ctx, "example.com")
	assert.ErrorIs(t, err, lookupErr)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

// A caller with a short deadline must not poison the cache for later
// callers with healthy contexts.
func TestCache_CallerContextFailureNotCached(t *testing.T) {
	var calls int32
	c := NewWithLookup(time.Minute, time.Minute, func(ctx context.Context, _ string) ([]*net.MX, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []*net.MX{{Host: "mx.example.com.", Pref: 10}}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.LookupMX(ctx, "example.com")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, c.Len())

	records, err := c.LookupMX(context.Background(), "example.com")
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCache_CancelledCallerNotCached(t *testing.T) {
	var calls int32
	c := NewWithLookup(time.Minute, time.Minute, func(ctx context.Context, _ string) ([]*net.MX, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.LookupMX(ctx, "example.com")
	assert.ErrorIs(t, err, context.Canceled)

	_, _ = c.LookupMX(context.Background(), "example.com")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCache_ExpiredEntryRefreshes(t *testing.T) {
	var calls int32
	c := NewWithLookup(time.Second, -time.Second, func(_ context.Context, _ string) ([]*net.MX, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	})

	ctx := context.Background()
	_, _ = c.LookupMX(ctx, "example.com")
	_, _ = c.LookupMX(ctx, "example.com")

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCache_Singleflight(t *testing.T) {
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})

	c := NewWithLookup(time.Second, time.Minute, func(_ context.Context, _ string) ([]*net.MX, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
		}
		return []*net.MX{{Host: "mx.example.com.", Pref: 10}}, nil
	})

	ctx := context.Background()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = c.LookupMX(ctx, "example.com")
	}()

	<-started
	wg.Add(4)
	for i := 0; i < 4; i++ {
		go func() {
			defer wg.Done()
			records, err := c.LookupMX(ctx, "example.com")
			assert.NoError(t, err)
			assert.Len(t, records, 1)
		}()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCache_ReturnsCopy(t *testing.T) {
	c := NewWithLookup(time.Second, time.Minute, func(_ context.Context, _ string) ([]*net.MX, error) {
		return []*net.MX{
			{Host: "mx2.example.com.", Pref: 20},
			{Host: "mx1.example.com.", Pref: 10},
		}, nil
	})

	ctx := context.Background()
	first, _ := c.LookupMX(ctx, "example.com")
	sort.Slice(first, func(i, j int) bool { return first[i].Pref < first[j].Pref })
	first[0].Host = "mutated."

	second, _ := c.LookupMX(ctx, "example.com")
	assert.Equal(t, "mx2.example.com.", second[0].Host)
}

func TestCache_Flush(t *testing.T) {
	var calls int32
	c := NewWithLookup(time.Second, time.Minute, func(_ context.Context, _ string) ([]*net.MX, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	})

	ctx := context.Background()
	_, _ = c.LookupMX(ctx, "example.com")
	c.Flush()
	assert.Equal(t, 0, c.Len())
	_, _ = c.LookupMX(ctx, "example.com")

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
