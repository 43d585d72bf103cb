// Package types contains the shared types for mailprobe.
// This package does not import anything from other mailprobe packages
// to avoid circular imports.
package types

import "fmt"

// Code identifies the reason a validation stage failed.
type Code = string

const (
	// CodeInvalidFormat: the address failed the syntactic check. No
	// network call was made.
	CodeInvalidFormat Code = "invalid_format"
	// CodeInvalidDomain: the domain is outside the configured
	// allow-list. No network call was made.
	CodeInvalidDomain Code = "invalid_domain"
	// CodeDomainNotFound: DNS reports the domain does not exist.
	CodeDomainNotFound Code = "domain_not_found"
	// CodeTimeout: the MX query exceeded its deadline.
	CodeTimeout Code = "timeout"
	// CodeNoMXRecord: the domain exists but advertises no mail exchanger.
	CodeNoMXRecord Code = "no_mx_record"
	// CodeMXLookupError: any other DNS resolution failure.
	CodeMXLookupError Code = "mx_lookup_error"
	// CodeSMTPError: a transport or protocol level SMTP failure
	// (connection refused, broken dialog, refused transaction).
	CodeSMTPError Code = "smtp_error"
	// CodeVerificationFailed: the server explicitly declined the
	// recipient with a non-250 reply. A normal exchange whose answer
	// is "no", not a transport error.
	CodeVerificationFailed Code = "verification_failed"
	// CodeVerificationError: any other unexpected failure during the
	// SMTP exchange.
	CodeVerificationError Code = "verification_error"
)

// ValidationError is one structured record per pipeline failure.
// In fail-fast mode it is returned directly as the error from
// Validate; in accumulate mode it is appended to Result.Errors.
type ValidationError struct {
	Field   string            `json:"field"`
	Code    Code              `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Error implements the error interface so fail-fast callers receive
// the same message accumulate callers would find in Result.Errors.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("mailprobe: %s: %s", e.Code, e.Message)
}

// NewValidationError builds a ValidationError for the email field.
func NewValidationError(code Code, message string) *ValidationError {
	return &ValidationError{Field: "email", Code: code, Message: message}
}

// WithDetail attaches one key/value of auxiliary context and returns
// the receiver for chaining.
func (e *ValidationError) WithDetail(key, value string) *ValidationError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}
