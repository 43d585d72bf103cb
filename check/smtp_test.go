package check_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optimode/mailprobe/check"
	"github.com/optimode/mailprobe/types"
)

// fakeSMTPServer simulates an SMTP server on one end of a net.Pipe.
func fakeSMTPServer(server net.Conn, banner string, responses map[string]string) {
	defer func() { _ = server.Close() }()

	_, _ = fmt.Fprintf(server, "%s\r\n", banner)

	buf := make([]byte, 4096)
	for {
		n, err := server.Read(buf)
		if err != nil {
			return
		}
		cmd := string(buf[:n])

		if strings.HasPrefix(cmd, "QUIT") {
			_, _ = fmt.Fprintf(server, "221 Bye\r\n")
			return
		}

		for prefix, resp := range responses {
			if strings.HasPrefix(cmd, prefix) {
				_, _ = fmt.Fprintf(server, "%s\r\n", resp)
				break
			}
		}
	}
}

func newProber(responses map[string]string) *check.SMTPProber {
	return check.NewSMTPProber(check.SMTPConfig{
		HeloDomain: "probe.test",
		Timeout:    2 * time.Second,
		Dial: func(network, address string, timeout time.Duration) (net.Conn, error) {
			client, server := net.Pipe()
			go fakeSMTPServer(server, "220 mx.example.com ESMTP", responses)
			return client, nil
		},
	})
}

func TestSMTPProber_Accepted(t *testing.T) {
	p := newProber(map[string]string{
		"HELO":      "250 mx.example.com",
		"MAIL FROM": "250 OK",
		"RCPT TO":   "250 2.1.5 OK",
	})

	code, response, verr := p.Probe(context.Background(), "mx.example.com", "probe@example.com", "user@example.com")
	require.Nil(t, verr)
	assert.Equal(t, 250, code)
	assert.Contains(t, response, "2.1.5 OK")
}

func TestSMTPProber_DeclinedIsAnAnswerNotAnError(t *testing.T) {
	p := newProber(map[string]string{
		"HELO":      "250 mx.example.com",
		"MAIL FROM": "250 OK",
		"RCPT TO":   "550 5.1.1 User unknown",
	})

	code, response, verr := p.Probe(context.Background(), "mx.example.com", "probe@example.com", "nobody@example.com")
	require.Nil(t, verr)
	assert.Equal(t, 550, code)
	assert.Contains(t, response, "User unknown")
}

func TestSMTPProber_TemporaryRejectionAlsoReturned(t *testing.T) {
	p := newProber(map[string]string{
		"HELO":      "250 mx.example.com",
		"MAIL FROM": "250 OK",
		"RCPT TO":   "450 4.2.1 Mailbox busy",
	})

	code, _, verr := p.Probe(context.Background(), "mx.example.com", "a@b.com", "c@d.com")
	require.Nil(t, verr)
	assert.Equal(t, 450, code)
}

func TestSMTPProber_ConnectionRefused(t *testing.T) {
	p := check.NewSMTPProber(check.SMTPConfig{
		Timeout: 2 * time.Second,
		Dial: func(network, address string, timeout time.Duration) (net.Conn, error) {
			return nil, errors.New("connection refused")
		},
	})

	_, _, verr := p.Probe(context.Background(), "mx.example.com", "a@b.com", "c@d.com")
	require.NotNil(t, verr)
	assert.Equal(t, types.CodeSMTPError, verr.Code)
	assert.Contains(t, verr.Details["error"], "connection refused")
}

func TestSMTPProber_ProtocolRefusal(t *testing.T) {
	p := newProber(map[string]string{
		"HELO": "550 not today",
	})

	_, _, verr := p.Probe(context.Background(), "mx.example.com", "a@b.com", "c@d.com")
	require.NotNil(t, verr)
	assert.Equal(t, types.CodeSMTPError, verr.Code)
}

// A reply that cannot be parsed is a protocol violation and gets the
// same classification as any other broken dialog.
func TestSMTPProber_MalformedResponseIsSMTPError(t *testing.T) {
	p := check.NewSMTPProber(check.SMTPConfig{
		Timeout: 2 * time.Second,
		Dial: func(network, address string, timeout time.Duration) (net.Conn, error) {
			client, server := net.Pipe()
			go fakeSMTPServer(server, "garbage reply without a code", nil)
			return client, nil
		},
	})

	_, _, verr := p.Probe(context.Background(), "mx.example.com", "a@b.com", "c@d.com")
	require.NotNil(t, verr)
	assert.Equal(t, types.CodeSMTPError, verr.Code)
}

func TestSMTPProber_CancelledContext(t *testing.T) {
	dialed := false
	p := check.NewSMTPProber(check.SMTPConfig{
		Timeout: 2 * time.Second,
		Dial: func(network, address string, timeout time.Duration) (net.Conn, error) {
			dialed = true
			return nil, errors.New("should not be called")
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, verr := p.Probe(ctx, "mx.example.com", "a@b.com", "c@d.com")
	require.NotNil(t, verr)
	assert.Equal(t, types.CodeSMTPError, verr.Code)
	assert.False(t, dialed)
}

// The probe must hold no state between calls: each Probe dials a
// fresh connection.
func TestSMTPProber_NoConnectionReuse(t *testing.T) {
	dials := 0
	p := check.NewSMTPProber(check.SMTPConfig{
		HeloDomain: "probe.test",
		Timeout:    2 * time.Second,
		Dial: func(network, address string, timeout time.Duration) (net.Conn, error) {
			dials++
			client, server := net.Pipe()
			go fakeSMTPServer(server, "220 mx.example.com ESMTP", map[string]string{
				"HELO":      "250 OK",
				"MAIL FROM": "250 OK",
				"RCPT TO":   "250 OK",
			})
			return client, nil
		},
	})

	ctx := context.Background()
	_, _, verr := p.Probe(ctx, "mx.example.com", "a@b.com", "one@d.com")
	require.Nil(t, verr)
	_, _, verr = p.Probe(ctx, "mx.example.com", "a@b.com", "two@d.com")
	require.Nil(t, verr)

	assert.Equal(t, 2, dials)
}
