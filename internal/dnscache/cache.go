// Package dnscache provides a thread-safe, TTL-based cache for MX
// lookups with singleflight deduplication, so bulk callers validating
// many addresses in the same domain issue a single DNS query.
package dnscache

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"
)

// LookupFunc performs the actual MX query. The production value wraps
// net.Resolver; tests inject fakes.
type LookupFunc func(ctx context.Context, domain string) ([]*net.MX, error)

// Cache is a thread-safe MX lookup cache. Concurrent lookups for the
// same domain are deduplicated: one query runs, all waiters share the
// result (including the error).
type Cache struct {
	mu            sync.Mutex
	entries       map[string]*entry
	ttl           time.Duration
	lookupTimeout time.Duration
	lookup        LookupFunc
}

type entry struct {
	records []*net.MX
	err     error
	expires time.Time
	done    chan struct{} // closed when the lookup completes
}

// New creates an MX cache with the given lookup timeout and entry TTL,
// backed by the default net.Resolver.
func New(lookupTimeout, ttl time.Duration) *Cache {
	r := &net.Resolver{}
	return NewWithLookup(lookupTimeout, ttl, r.LookupMX)
}

// NewWithLookup creates an MX cache over a custom lookup function.
func NewWithLookup(lookupTimeout, ttl time.Duration, fn LookupFunc) *Cache {
	return &Cache{
		entries:       make(map[string]*entry),
		ttl:           ttl,
		lookupTimeout: lookupTimeout,
		lookup:        fn,
	}
}

// LookupMX returns the MX records for domain, querying at most once
// per TTL window. The returned slice is a copy; callers may sort it.
func (c *Cache) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	c.mu.Lock()

	if e, ok := c.entries[domain]; ok {
		select {
		case <-e.done:
			if time.Now().Before(e.expires) {
				c.mu.Unlock()
				return copyMX(e.records), e.err
			}
			// expired, fall through to refresh
		default:
			// lookup in flight, wait for it
			c.mu.Unlock()
			select {
			case <-e.done:
				return copyMX(e.records), e.err
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	e := &entry{done: make(chan struct{})}
	c.entries[domain] = e
	c.mu.Unlock()

	lctx, cancel := context.WithTimeout(ctx, c.lookupTimeout)
	defer cancel()

	e.records, e.err = c.lookup(lctx, domain)
	e.expires = time.Now().Add(c.ttl)

	// A failure inherited from the caller's context is this caller's
	// fate, not the domain's: caching it would poison every later
	// lookup for the TTL. Drop the entry so the next caller retries.
	if e.err != nil && (errors.Is(e.err, context.Canceled) || errors.Is(e.err, context.DeadlineExceeded)) {
		c.mu.Lock()
		if c.entries[domain] == e {
			delete(c.entries, domain)
		}
		c.mu.Unlock()
	}
	close(e.done)

	return copyMX(e.records), e.err
}

// Flush drops all cached entries.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Len returns the number of cached entries (for diagnostics).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// copyMX returns a copy of the records so callers cannot mutate
// cached data (e.g. via sort.Slice).
func copyMX(records []*net.MX) []*net.MX {
	if records == nil {
		return nil
	}
	out := make([]*net.MX, len(records))
	for i, r := range records {
		cp := *r
		out[i] = &cp
	}
	return out
}
