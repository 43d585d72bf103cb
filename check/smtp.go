package check

import (
	"context"
	"errors"
	"time"

	"github.com/optimode/mailprobe/internal/smtpprobe"
	"github.com/optimode/mailprobe/types"
)

// SMTPConfig is the SMTP prober configuration.
type SMTPConfig struct {
	// HeloDomain is the domain sent in the HELO command. Default: "localhost"
	HeloDomain string
	// Port is the SMTP port. Default: "25"
	Port string
	// Timeout bounds the connect and the whole exchange. Default: 10s
	Timeout time.Duration
	// Dial is injectable for testing. Defaults to net.DialTimeout.
	Dial smtpprobe.DialFunc
}

// SMTPProber asks a mail exchanger whether it would accept an address,
// via a single HELO / MAIL FROM / RCPT TO session. The RCPT reply code
// is the answer; classifying it is left to the pipeline.
type SMTPProber struct {
	client *smtpprobe.Client
}

func NewSMTPProber(cfg SMTPConfig) *SMTPProber {
	return &SMTPProber{
		client: smtpprobe.New(smtpprobe.Config{
			HeloDomain: cfg.HeloDomain,
			Port:       cfg.Port,
			Timeout:    cfg.Timeout,
			Dial:       cfg.Dial,
		}),
	}
}

// Probe runs one RCPT probe against mxHost with sender as the
// return-path. On a completed exchange it returns the RCPT reply code
// and the server's literal response text, whatever the code. A failed
// exchange is classified: transport and protocol failures get
// smtp_error, anything unexpected gets verification_error.
func (p *SMTPProber) Probe(ctx context.Context, mxHost, sender, recipient string) (int, string, *types.ValidationError) {
	select {
	case <-ctx.Done():
		return 0, "", types.NewValidationError(types.CodeSMTPError,
			"Could not connect to email server.").
			WithDetail("error", ctx.Err().Error())
	default:
	}

	code, response, err := p.client.CheckRCPT(mxHost, sender, recipient)
	if err != nil {
		var te *smtpprobe.TransportError
		if errors.As(err, &te) {
			return 0, "", types.NewValidationError(types.CodeSMTPError,
				"Could not connect to email server.").
				WithDetail("error", err.Error())
		}
		return 0, "", types.NewValidationError(types.CodeVerificationError,
			"An unexpected error occurred during verification").
			WithDetail("error", err.Error())
	}

	return code, response, nil
}
