// Package logger sets up zerolog for the upiqr binaries.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"upiqr/internal/platform/config"
)

// Init builds the logger described by cfg, tags every event with service and
// installs it as log.Logger. The returned logger is the one to hand to
// components that take a zerolog.Logger.
func Init(cfg config.LoggingConfig, service string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	w, err := writer(cfg)
	l := zerolog.New(w).With().Timestamp().Str("service", service).Logger()
	if err != nil {
		l.Error().Err(err).Str("path", cfg.FilePath).Msg("log file unavailable, writing to stdout")
	}

	log.Logger = l
	return l
}

// ParseLevel maps a config level to zerolog, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func writer(cfg config.LoggingConfig) (io.Writer, error) {
	if cfg.Output == "file" && cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return os.Stdout, err
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
		if err != nil {
			return os.Stdout, err
		}
		return f, nil
	}

	if cfg.Format == "text" {
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}, nil
	}
	return os.Stdout, nil
}
