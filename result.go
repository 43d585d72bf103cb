package mailprobe

import "github.com/optimode/mailprobe/types"

// Result is the outcome of one validation. Valid is true only when
// the SMTP probe returned a 250 reply; in that case Errors is empty.
// When Valid is false, exactly one terminal error explains which
// stage stopped the pipeline.
type Result struct {
	Email    string                  `json:"email"`
	Valid    bool                    `json:"valid"`
	Errors   []types.ValidationError `json:"errors,omitempty"`
	MXHost   string                  `json:"mxHost,omitempty"`
	SMTPCode int                     `json:"smtpCode,omitempty"`
}

// FirstError returns the terminal error, if any. The second return
// value is false for a valid result.
func (r Result) FirstError() (types.ValidationError, bool) {
	if len(r.Errors) == 0 {
		return types.ValidationError{}, false
	}
	return r.Errors[0], true
}

// HasCode reports whether any recorded error carries the given code.
func (r Result) HasCode(code types.Code) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}
