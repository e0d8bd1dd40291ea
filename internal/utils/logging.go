package utils

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger from the configured level and
// format. Unknown values fall back to info-level JSON output.
func NewLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}

	return logger.Level(lvl).With().Timestamp().Logger()
}
