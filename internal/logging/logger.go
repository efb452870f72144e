// Package logging builds the process's structured logger. Ported from
// ws/internal/single/monitoring/logger.go, trimmed to the levels and formats this
// gateway's config actually validates.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger writing JSON (or, for local development, a
// console-formatted stream) at the given minimum level.
//
//	logger := logging.New("info", "json")
//	logger.Info().Str("component", "gateway").Msg("server started")
func New(level, format string) zerolog.Logger {
	var output io.Writer = os.Stdout

	zerolog.SetGlobalLevel(parseLevel(level))

	if format == "pretty" {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Str("service", "soltrace-gateway").
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
