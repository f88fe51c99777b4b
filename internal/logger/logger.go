// Package logger holds the process-wide structured logger used by the kernel
// packages. Output is discarded until Init is called.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// L is the global logger instance. It's initialized to discard all output by default.
// Call Init() to enable logging.
var L *slog.Logger = slog.New(slog.DiscardHandler)

// closer releases the current log file, if any.
var closer io.Closer

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Path    string     // Log file path. Empty means stderr
	Level   slog.Level // Minimum log level
	JSON    bool       // Emit JSON records instead of key=value text
}

// Init configures logging. Call from main() before any log calls.
// If opts.Enabled is false, all log output is discarded.
func Init(opts Options) error {
	Close()

	if !opts.Enabled {
		L = slog.New(slog.DiscardHandler)
		return nil
	}

	var w io.Writer = os.Stderr
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		w, closer = f, f
	}

	L = New(w, opts.Level, opts.JSON)
	return nil
}

// New builds a logger writing to w without touching the global instance.
func New(w io.Writer, level slog.Level, json bool) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// Close releases the log file opened by Init and resets L to discard.
func Close() {
	if closer != nil {
		closer.Close()
		closer = nil
	}
	L = slog.New(slog.DiscardHandler)
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog.Level.
// Unknown names map to info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }
