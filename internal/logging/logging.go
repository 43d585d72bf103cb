// Package logging provides the zerolog setup shared by the library
// and the CLI, plus probe IDs for correlating a validation's log lines.
package logging

import (
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// New creates a zerolog.Logger with the specified level and JSON
// output on stdout. If the level string is invalid, it defaults to info.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(os.Stdout).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// Nop returns a disabled logger. The library default: it stays silent
// unless the caller supplies a logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// NewProbeID generates a UUID correlating all log lines of one
// validation run.
func NewProbeID() string {
	return uuid.New().String()
}
