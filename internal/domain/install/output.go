// Package install assembles and runs the pipeline that prepares a Moodle tree for plugin CI.
package install

import (
	"context"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
)

// ProgressReporter draws step progress, e.g. a terminal progress bar.
type ProgressReporter interface {
	Start(total int)
	Advance(message string)
	Finish(message string)
}

// Output is the progress and logging sink shared by the installers of one run.
// With a progress reporter attached, log messages are not written.
type Output struct {
	logger    ports.Logger
	progress  ProgressReporter
	stepCount int
}

// NewOutput creates an Output logging to logger. A nil logger discards messages.
func NewOutput(logger ports.Logger) *Output {
	return &Output{logger: logger}
}

// WithProgress attaches a progress reporter.
func (o *Output) WithProgress(progress ProgressReporter) *Output {
	o.progress = progress
	return o
}

// WithFields adds fields to every subsequent log message.
func (o *Output) WithFields(fields ...ports.Field) *Output {
	if o.logger != nil {
		o.logger = o.logger.With(fields...)
	}
	return o
}

// Start announces a run of total steps.
func (o *Output) Start(ctx context.Context, message string, total int) {
	if o.progress != nil {
		o.progress.Start(total)
		return
	}
	o.Info(ctx, message, ports.F("steps", total))
}

// Step counts one step and announces it.
func (o *Output) Step(ctx context.Context, message string) {
	o.stepCount++
	if o.progress != nil {
		o.progress.Advance(message)
		return
	}
	o.Info(ctx, message, ports.F("step", o.stepCount))
}

// End announces the end of a run.
func (o *Output) End(ctx context.Context, message string) {
	if o.progress != nil {
		o.progress.Finish(message)
		return
	}
	o.Info(ctx, message)
}

// StepCount returns the number of steps taken so far.
func (o *Output) StepCount() int {
	return o.stepCount
}

// Debug logs a debug message.
func (o *Output) Debug(ctx context.Context, msg string, fields ...ports.Field) {
	if o.logger != nil && o.progress == nil {
		o.logger.Debug(ctx, msg, fields...)
	}
}

// Info logs an informational message.
func (o *Output) Info(ctx context.Context, msg string, fields ...ports.Field) {
	if o.logger != nil && o.progress == nil {
		o.logger.Info(ctx, msg, fields...)
	}
}

// Warn logs a warning.
func (o *Output) Warn(ctx context.Context, msg string, fields ...ports.Field) {
	if o.logger != nil && o.progress == nil {
		o.logger.Warn(ctx, msg, fields...)
	}
}

// Error logs an error.
func (o *Output) Error(ctx context.Context, msg string, fields ...ports.Field) {
	if o.logger != nil && o.progress == nil {
		o.logger.Error(ctx, msg, fields...)
	}
}
