package mailprobe

import "errors"

var (
	// ErrMissingSender is returned by New when Config.SenderEmail is
	// empty. The sender is the probe's return-path; its absence is a
	// configuration error, not a validation error.
	ErrMissingSender = errors.New("mailprobe: Config requires a non-empty SenderEmail")
)
