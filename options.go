package mailprobe

import (
	"context"
	"net"
	"time"

	"github.com/rs/zerolog"
)

// LookupMXFunc overrides the MX lookup. Injectable for testability.
type LookupMXFunc = func(ctx context.Context, domain string) ([]*net.MX, error)

// DialFunc overrides the SMTP dialer. Injectable for testability.
type DialFunc = func(network, address string, timeout time.Duration) (net.Conn, error)

// Config configures a Validator. AllowedDomains and SenderEmail come
// from the caller's configuration (see the config package for the
// env/file loader); everything else has defaults.
type Config struct {
	// AllowedDomains is the set of domains SMTP probing is permitted
	// for, matched exactly and case-sensitively. An empty list rejects
	// every address at the policy gate.
	AllowedDomains []string
	// SenderEmail is the default return-path used in MAIL FROM.
	// Required; see ErrMissingSender.
	SenderEmail string
	// DNSTimeout bounds the MX query. Default: 5s
	DNSTimeout time.Duration
	// SMTPTimeout bounds the SMTP connect and exchange. Default: 10s
	SMTPTimeout time.Duration
	// SMTPPort is the SMTP port. Default: "25"
	SMTPPort string
	// HeloDomain is the domain sent in the HELO command. Default: "localhost"
	HeloDomain string
	// CacheTTL is how long MX lookup results are reused. Default: 5m
	CacheTTL time.Duration
	// Logger receives per-stage debug logging. Default: disabled.
	Logger *zerolog.Logger
	// LookupMX is injectable for testing.
	LookupMX LookupMXFunc
	// DialSMTP is injectable for testing.
	DialSMTP DialFunc
}

func (c *Config) applyDefaults() {
	if c.DNSTimeout <= 0 {
		c.DNSTimeout = 5 * time.Second
	}
	if c.SMTPTimeout <= 0 {
		c.SMTPTimeout = 10 * time.Second
	}
	if c.SMTPPort == "" {
		c.SMTPPort = "25"
	}
	if c.HeloDomain == "" {
		c.HeloDomain = "localhost"
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 5 * time.Minute
	}
}

// RequestOptions are the per-request knobs of Validate.
type RequestOptions struct {
	// Sender overrides Config.SenderEmail as the probe's return-path
	// for this request only.
	Sender string
	// FailFast surfaces the first failure as the returned error
	// (a *ValidationError) instead of accumulating it in the result.
	FailFast bool
}
