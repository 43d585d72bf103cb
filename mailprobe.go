// Package mailprobe determines, with increasing levels of confidence,
// whether an email address is deliverable: it checks the syntactic
// format, restricts to an allow-list of domains, resolves the domain's
// mail exchanger, and finally opens a live SMTP session to ask whether
// the server would accept the address — without sending mail.
//
// Basic usage:
//
//	v, err := mailprobe.New(mailprobe.Config{
//	    AllowedDomains: config.DefaultAllowedDomains,
//	    SenderEmail:    "probe@example.com",
//	})
//	result, err := v.Validate(ctx, "user@gmail.com")
//
// Fail-fast mode surfaces the first failure as a typed error instead
// of accumulating it in the result:
//
//	_, err := v.Validate(ctx, "user@gmail.com", mailprobe.RequestOptions{
//	    FailFast: true,
//	})
package mailprobe

import "github.com/optimode/mailprobe/types"

// ValidationError is a re-export from the types package so that
// consumers don't need to import the types package directly.
type ValidationError = types.ValidationError

// Code is a re-export.
type Code = types.Code

// Error codes re-exported.
const (
	CodeInvalidFormat      = types.CodeInvalidFormat
	CodeInvalidDomain      = types.CodeInvalidDomain
	CodeDomainNotFound     = types.CodeDomainNotFound
	CodeTimeout            = types.CodeTimeout
	CodeNoMXRecord         = types.CodeNoMXRecord
	CodeMXLookupError      = types.CodeMXLookupError
	CodeSMTPError          = types.CodeSMTPError
	CodeVerificationFailed = types.CodeVerificationFailed
	CodeVerificationError  = types.CodeVerificationError
)
