// Package logger implements the logging adapter on charmbracelet/log.
package logger

import (
	"io"
	"os"

	charm "github.com/charmbracelet/log"
	"go.trai.ch/mason/internal/core/ports"
)

// Logger implements ports.Logger using charmbracelet/log.
type Logger struct {
	l *charm.Logger
}

// New creates a Logger writing human-readable output to stderr.
func New() ports.Logger {
	return NewWithWriter(os.Stderr)
}

// NewWithWriter creates a Logger writing to w.
func NewWithWriter(w io.Writer) *Logger {
	l := charm.NewWithOptions(w, charm.Options{
		ReportTimestamp: false,
		Level:           charm.InfoLevel,
	})
	return &Logger{l: l}
}

// SetDebug lowers the level so Debug messages are emitted.
func (l *Logger) SetDebug() {
	l.l.SetLevel(charm.DebugLevel)
}

// Debug logs a debug message with optional key-value pairs.
func (l *Logger) Debug(msg string, keyvals ...any) {
	l.l.Debug(msg, keyvals...)
}

// Info logs an informational message with optional key-value pairs.
func (l *Logger) Info(msg string, keyvals ...any) {
	l.l.Info(msg, keyvals...)
}

// Warn logs a warning message with optional key-value pairs.
func (l *Logger) Warn(msg string, keyvals ...any) {
	l.l.Warn(msg, keyvals...)
}

// Error logs an error message with optional key-value pairs.
func (l *Logger) Error(msg string, keyvals ...any) {
	l.l.Error(msg, keyvals...)
}
