package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the escape sequences used when printing error
// summaries. A nil ColorProvider prints plain text.
type ColorProvider interface {
	Yellow() string
	Red() string
	Reset() string
}

type plainColors struct{}

func (plainColors) Yellow() string { return "" }
func (plainColors) Red() string    { return "" }
func (plainColors) Reset() string  { return "" }

// HandleSimulationError prints a one-line status for err and maps it to an
// exit code. A nil error maps to ExitSuccess and prints nothing.
//
// Parameters:
//   - err: The error to classify.
//   - duration: How long the run had been going when err surfaced.
//   - out: The writer for the status line.
//   - colors: Escape sequences for the status line, or nil for plain text.
//
// Returns:
//   - int: The exit code matching the error class.
func HandleSimulationError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	if colors == nil {
		colors = plainColors{}
	}

	var timeoutErr TimeoutError
	switch {
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(out, "%sStatus: Timeout. %v (after %s).%s\n", colors.Yellow(), err, duration, colors.Reset())
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(out, "%sStatus: Canceled by user after %s.%s\n", colors.Yellow(), duration, colors.Reset())
		return ExitErrorCanceled
	}

	var cfgErr ConfigError
	var validationErr ValidationError
	if errors.As(err, &cfgErr) || errors.As(err, &validationErr) {
		fmt.Fprintf(out, "%sStatus: Configuration error. %v%s\n", colors.Red(), err, colors.Reset())
		return ExitErrorConfig
	}

	fmt.Fprintf(out, "%sStatus: Failure. %v%s\n", colors.Red(), err, colors.Reset())
	return ExitErrorGeneric
}
