// Package logging configures the process-wide zerolog logger shared by the
// client library and the CLI.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel names a minimum severity. The zero value falls back to info.
type LogLevel string

// Levels in increasing severity.
const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// zerologLevel maps the level onto zerolog's scale, defaulting to info for
// anything unrecognized.
func (l LogLevel) zerologLevel() zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(string(l)))
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}

	return parsed
}

// Config selects the output shape of the global logger.
type Config struct {
	// Level is the minimum severity that gets written.
	Level LogLevel

	// Pretty switches from JSON lines to colored console output.
	Pretty bool

	// Output defaults to os.Stderr so logs never mix with rendered results
	// on stdout.
	Output io.Writer
}

// DefaultConfig returns the configuration used when callers pass nothing:
// info-level JSON on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Output: os.Stderr,
	}
}

// Setup installs the configured logger as the zerolog global and returns it.
// Loggers created by NewLogger before Setup keep the previous settings, so
// call it first thing in main.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(cfg.Level.zerologLevel())

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// NewLogger derives a logger tagged with the given component name.
//
// Components used across the module: "http" (transport), "auth" (token
// management), "client" (resource clients), "cli" (command layer).
// Common context fields: method, url, status_code, duration, request_id.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
