// Package logging builds the process logger.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger creates a [log.Logger] writing to w with timestamps enabled.
//
// The writer defaults to [os.Stderr]. An unknown level falls back to info.
func NewLogger(w io.Writer, level string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           lvl,
	})
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
