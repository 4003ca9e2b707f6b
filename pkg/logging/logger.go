// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	// Set to io.Discard to log to File only.
	Output io.Writer

	// File is an optional path; when set, JSON logs are also written to a rotating file.
	File string

	// MaxSizeMB is the size at which File is rotated.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept.
	MaxBackups int

	// MaxAgeDays is the number of days rotated files are kept.
	MaxAgeDays int
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:      LevelInfo,
		Pretty:     false,
		Output:     os.Stderr,
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
	}
}

var (
	sinkMu   sync.Mutex
	fileSink *lumberjack.Logger
)

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	// Set global log level
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	// Configure output
	var output io.Writer = cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	if cfg.File != "" {
		sink := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		swapSink(sink)
		output = zerolog.MultiLevelWriter(output, sink)
	} else {
		swapSink(nil)
	}

	// Create logger with timestamp
	logger := zerolog.New(output).With().Timestamp().Logger()

	// Set as global logger
	log.Logger = logger

	return logger
}

// Close flushes and closes the rotating file sink, if any.
func Close() error {
	return swapSink(nil)
}

func swapSink(next *lumberjack.Logger) error {
	sinkMu.Lock()
	defer sinkMu.Unlock()

	prev := fileSink
	fileSink = next
	if prev != nil {
		return prev.Close()
	}
	return nil
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Outgoing catalog requests (page, limit, url)
//   - Stale responses discarded by the table view
//   - Session store hits and misses
//   - Worker lifecycle in the batch fetcher
//
// Info: Normal operation events
//   - Successful page fetches
//   - Server startup/shutdown
//   - Export completion
//
// Warn: Warning conditions that don't prevent operation
//   - Partial batch results
//   - Session store errors (the live view or a fresh one is served)
//   - Non-critical errors
//
// Error: Error conditions requiring attention
//   - Failed page fetches (the view keeps its last rows)
//   - Service unavailability
//   - Configuration errors
//
// Context Fields:
//   - component: Emitting package (catalog-client, table-view, session-store, web, tui, batch-fetcher, export)
//   - page, limit: Requested page and page size
//   - status_code: HTTP status code
//   - duration: Request duration
//   - error_class: Error classification (client, server, network, decode)
//   - seq: Table view request sequence number
//   - session: Browser session id
