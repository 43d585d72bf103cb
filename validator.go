package mailprobe

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/optimode/mailprobe/check"
	"github.com/optimode/mailprobe/internal/dnscache"
	"github.com/optimode/mailprobe/internal/logging"
	"github.com/optimode/mailprobe/internal/parse"
	"github.com/optimode/mailprobe/types"
)

// Validator runs the four-stage pipeline:
//
//	format → domain policy → MX resolution → SMTP probe
//
// Control flows strictly forward; the first failing stage stops the
// pipeline, so stages after it never execute and no redundant network
// calls are made. A Validator is safe for concurrent use: the
// allow-list is immutable after New and each Validate call owns its
// request and result exclusively.
type Validator struct {
	cfg      Config
	log      zerolog.Logger
	syntax   *check.SyntaxChecker
	policy   *check.PolicyChecker
	resolver *check.MXResolver
	prober   *check.SMTPProber
	mxCache  *dnscache.Cache
}

// New creates a Validator from cfg. The sender address is required;
// everything else defaults (5s DNS timeout, 10s SMTP timeout, port 25).
func New(cfg Config) (*Validator, error) {
	if cfg.SenderEmail == "" {
		return nil, ErrMissingSender
	}
	cfg.applyDefaults()

	log := logging.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	var mxCache *dnscache.Cache
	if cfg.LookupMX != nil {
		mxCache = dnscache.NewWithLookup(cfg.DNSTimeout, cfg.CacheTTL, cfg.LookupMX)
	} else {
		mxCache = dnscache.New(cfg.DNSTimeout, cfg.CacheTTL)
	}

	return &Validator{
		cfg:    cfg,
		log:    log,
		syntax: check.NewSyntaxChecker(),
		policy: check.NewPolicyChecker(check.PolicyConfig{
			AllowedDomains: cfg.AllowedDomains,
		}),
		resolver: check.NewMXResolverWithLookup(
			check.DNSConfig{Timeout: cfg.DNSTimeout},
			mxCache.LookupMX,
		),
		prober: check.NewSMTPProber(check.SMTPConfig{
			HeloDomain: cfg.HeloDomain,
			Port:       cfg.SMTPPort,
			Timeout:    cfg.SMTPTimeout,
			Dial:       cfg.DialSMTP,
		}),
		mxCache: mxCache,
	}, nil
}

// FlushMXCache drops cached MX lookups. Long-running callers can use
// it to force fresh DNS queries.
func (v *Validator) FlushMXCache() {
	v.mxCache.Flush()
}

// Validate runs the pipeline on email. In accumulate mode (default)
// the caller always receives a Result and a nil error; failures are
// recorded in Result.Errors. With RequestOptions.FailFast the first
// failure is returned as a *ValidationError and no Result is produced.
// Both modes are deterministic given identical network responses.
func (v *Validator) Validate(ctx context.Context, email string, opts ...RequestOptions) (Result, error) {
	var o RequestOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	sender := v.cfg.SenderEmail
	if o.Sender != "" {
		sender = o.Sender
	}

	log := v.log.With().
		Str("probe_id", logging.NewProbeID()).
		Str("email", email).
		Logger()

	res := Result{Email: email}
	fail := func(verr *types.ValidationError) (Result, error) {
		log.Debug().Str("code", verr.Code).Str("reason", verr.Message).Msg("validation rejected")
		if o.FailFast {
			return Result{}, verr
		}
		res.Errors = append(res.Errors, *verr)
		return res, nil
	}

	// Format: pure pattern match, no network.
	if !v.syntax.Check(email) {
		return fail(types.NewValidationError(types.CodeInvalidFormat,
			"Invalid email format. Please check and try again."))
	}
	addr := parse.NewEmail(email)

	// Domain policy: still no network.
	if !v.policy.Allowed(addr.Domain) {
		verr := types.NewValidationError(types.CodeInvalidDomain,
			fmt.Sprintf("The email domain '%s' is not supported.", addr.Domain)).
			WithDetail("domain", addr.Domain)
		if s := v.policy.Suggest(addr.Domain); s != "" {
			verr.WithDetail("suggestion", s)
		}
		return fail(verr)
	}

	// MX resolution.
	host, verr := v.resolver.Resolve(ctx, addr.Domain)
	if verr != nil {
		return fail(verr)
	}
	res.MXHost = host
	log.Debug().Str("mx_host", host).Msg("mail exchanger resolved")

	// SMTP probe. Only a 250 reply means accepted.
	code, response, verr := v.prober.Probe(ctx, host, sender, addr.Raw)
	if verr != nil {
		return fail(verr)
	}
	res.SMTPCode = code
	if code != 250 {
		return fail(types.NewValidationError(types.CodeVerificationFailed,
			"The email address could not be verified").
			WithDetail("response", response).
			WithDetail("smtp_code", strconv.Itoa(code)))
	}

	res.Valid = true
	log.Debug().Int("smtp_code", code).Msg("recipient accepted")
	return res, nil
}
