// Package telemetry holds logging and metrics plumbing.
package telemetry

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewLogger creates the service logger. Pretty switches to the console
// writer for local runs; production output stays structured JSON.
func NewLogger(service, level string, pretty bool) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}
