// Package console is the logging facade of the templating runtime.
//
// The call shape (Log, Warn, Error) is kept from the browser console so call sites
// read the same everywhere; records are structured and written through zerolog.
package console

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).
	Level(zerolog.InfoLevel).
	With().Str("component", "nojs").Logger()

// Logger returns the configured zerolog logger for structured call sites.
func Logger() *zerolog.Logger {
	return &logger
}

// Debug starts a debug-level structured event.
func Debug() *zerolog.Event {
	return logger.Debug()
}

// Log writes an info-level message built from args.
func Log(args ...any) {
	logger.Info().Msg(join(args))
}

// Warn writes a warning built from args.
func Warn(args ...any) {
	logger.Warn().Msg(join(args))
}

// Error writes an error-level message built from args.
func Error(args ...any) {
	logger.Error().Msg(join(args))
}

func join(args []any) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, " ")
}
