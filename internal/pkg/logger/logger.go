// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration.
type Config struct {
	Level  string
	Format string
}

// New builds a logger writing to w. Format "console" gives human readable output,
// anything else is JSON. Unknown levels fall back to info.
func New(cfg Config, w io.Writer) zerolog.Logger {
	if strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Setup replaces the global logger with one built from cfg and returns it.
func Setup(cfg Config) zerolog.Logger {
	logger := New(cfg, os.Stdout)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = logger
	return logger
}
