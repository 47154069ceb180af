package mocks

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
)

// LogEntry is a single recorded log call.
type LogEntry struct {
	Level   ports.Level
	Message string
	Fields  []ports.Field
}

// Logger is a thread-safe ports.Logger that records every call.
type Logger struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	fields  []ports.Field
	level   ports.Level
}

// NewLogger creates a recording logger that keeps entries of every level.
func NewLogger() *Logger {
	return &Logger{
		mu:      &sync.Mutex{},
		entries: &[]LogEntry{},
		level:   ports.LevelDebug,
	}
}

// Debug records a debug message.
func (l *Logger) Debug(_ context.Context, msg string, fields ...ports.Field) {
	l.record(ports.LevelDebug, msg, fields)
}

// Info records an informational message.
func (l *Logger) Info(_ context.Context, msg string, fields ...ports.Field) {
	l.record(ports.LevelInfo, msg, fields)
}

// Warn records a warning message.
func (l *Logger) Warn(_ context.Context, msg string, fields ...ports.Field) {
	l.record(ports.LevelWarn, msg, fields)
}

// Error records an error message.
func (l *Logger) Error(_ context.Context, msg string, fields ...ports.Field) {
	l.record(ports.LevelError, msg, fields)
}

// With returns a logger sharing the same entries with additional fields.
func (l *Logger) With(fields ...ports.Field) ports.Logger {
	return &Logger{
		mu:      l.mu,
		entries: l.entries,
		fields:  append(append([]ports.Field(nil), l.fields...), fields...),
		level:   l.level,
	}
}

// Level returns the minimum log level.
func (l *Logger) Level() ports.Level {
	return l.level
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level ports.Level) {
	l.level = level
}

// Entries returns all recorded entries.
func (l *Logger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry(nil), *l.entries...)
}

// Messages returns the recorded messages at the given level.
func (l *Logger) Messages(level ports.Level) []string {
	var messages []string
	for _, e := range l.Entries() {
		if e.Level == level {
			messages = append(messages, e.Message)
		}
	}
	return messages
}

func (l *Logger) record(level ports.Level, msg string, fields []ports.Field) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  append(append([]ports.Field(nil), l.fields...), fields...),
	})
}

// Ensure Logger implements ports.Logger.
var _ ports.Logger = (*Logger)(nil)
