package check

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/optimode/mailprobe/types"
)

// DNSConfig is the MX resolver configuration.
type DNSConfig struct {
	// Timeout bounds the MX query. Default: 5s
	Timeout time.Duration
}

// LookupFunc performs the MX query; injectable for testability.
type LookupFunc func(ctx context.Context, domain string) ([]*net.MX, error)

// MXResolver finds the mail exchanger responsible for a domain and
// classifies every failure mode into its own error code.
type MXResolver struct {
	cfg    DNSConfig
	lookup LookupFunc
}

func NewMXResolver(cfg DNSConfig) *MXResolver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	r := &net.Resolver{}
	return &MXResolver{cfg: cfg, lookup: r.LookupMX}
}

// NewMXResolverWithLookup overrides the MX lookup function. Used by
// the pipeline to share its MX cache, and by tests.
func NewMXResolverWithLookup(cfg DNSConfig, fn LookupFunc) *MXResolver {
	r := NewMXResolver(cfg)
	r.lookup = fn
	return r
}

// Resolve returns the hostname of the preferred mail exchanger for
// domain: records are sorted ascending by preference and the lowest
// wins, with its trailing dot trimmed. The hostname is never resolved
// to an IP here.
func (r *MXResolver) Resolve(ctx context.Context, domain string) (string, *types.ValidationError) {
	lctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	records, err := r.lookup(lctx, domain)
	if err != nil {
		return "", classifyLookupError(err, domain)
	}

	if len(records) == 0 {
		return "", types.NewValidationError(types.CodeNoMXRecord,
			fmt.Sprintf("No mail server found for domain: %s", domain))
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Pref < records[j].Pref
	})

	return strings.TrimSuffix(records[0].Host, "."), nil
}

// classifyLookupError maps a resolver failure to exactly one code:
// nonexistent domain, deadline exceeded, or anything else.
func classifyLookupError(err error, domain string) *types.ValidationError {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsNotFound {
			return types.NewValidationError(types.CodeDomainNotFound,
				fmt.Sprintf("The domain %s does not exist.", domain))
		}
		if dnsErr.IsTimeout {
			return types.NewValidationError(types.CodeTimeout,
				fmt.Sprintf("Connection timed out while checking domain: %s.", domain))
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewValidationError(types.CodeTimeout,
			fmt.Sprintf("Connection timed out while checking domain: %s.", domain))
	}

	return types.NewValidationError(types.CodeMXLookupError,
		"An error occurred while verifying the mail server").
		WithDetail("error", err.Error())
}
