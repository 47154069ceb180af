package logging

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
)

// CharmLogger adapts a charmbracelet logger to ports.Logger.
type CharmLogger struct {
	logger *log.Logger
	level  ports.Level
}

// NewCharmLogger creates a logger writing to w (os.Stderr when nil).
// Timestamps are formatted as "HH:MM:SS.ms".
func NewCharmLogger(w io.Writer, level ports.Level) *CharmLogger {
	if w == nil {
		w = os.Stderr
	}
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           toCharmLevel(level),
	})
	return &CharmLogger{logger: l, level: level}
}

// Debug logs a debug message.
func (l *CharmLogger) Debug(_ context.Context, msg string, fields ...ports.Field) {
	l.logger.Debug(msg, keyvals(fields)...)
}

// Info logs an informational message.
func (l *CharmLogger) Info(_ context.Context, msg string, fields ...ports.Field) {
	l.logger.Info(msg, keyvals(fields)...)
}

// Warn logs a warning message.
func (l *CharmLogger) Warn(_ context.Context, msg string, fields ...ports.Field) {
	l.logger.Warn(msg, keyvals(fields)...)
}

// Error logs an error message.
func (l *CharmLogger) Error(_ context.Context, msg string, fields ...ports.Field) {
	l.logger.Error(msg, keyvals(fields)...)
}

// With returns a new logger with additional fields.
func (l *CharmLogger) With(fields ...ports.Field) ports.Logger {
	return &CharmLogger{
		logger: l.logger.With(keyvals(fields)...),
		level:  l.level,
	}
}

// Level returns the minimum log level.
func (l *CharmLogger) Level() ports.Level {
	return l.level
}

// SetLevel sets the minimum log level.
func (l *CharmLogger) SetLevel(level ports.Level) {
	l.level = level
	l.logger.SetLevel(toCharmLevel(level))
}

func keyvals(fields []ports.Field) []interface{} {
	kv := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		kv = append(kv, f.Key, f.Value)
	}
	return kv
}

func toCharmLevel(level ports.Level) log.Level {
	switch level {
	case ports.LevelDebug:
		return log.DebugLevel
	case ports.LevelWarn:
		return log.WarnLevel
	case ports.LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Ensure CharmLogger implements Logger.
var _ ports.Logger = (*CharmLogger)(nil)
