package install

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/testutil/mocks"
)

type recordingProgress struct {
	total    int
	advances []string
	finished string
}

func (p *recordingProgress) Start(total int)        { p.total = total }
func (p *recordingProgress) Advance(message string) { p.advances = append(p.advances, message) }
func (p *recordingProgress) Finish(message string)  { p.finished = message }

func TestOutput_StepsAreCountedAndLogged(t *testing.T) {
	logger := mocks.NewLogger()
	output := NewOutput(logger)
	ctx := context.Background()

	output.Start(ctx, "Starting install", 3)
	output.Step(ctx, "one")
	output.Step(ctx, "two")
	output.End(ctx, "done")

	assert.Equal(t, 2, output.StepCount())
	assert.Equal(t, []string{"Starting install", "one", "two", "done"}, logger.Messages(ports.LevelInfo))

	entries := logger.Entries()
	assert.Equal(t, []ports.Field{ports.F("steps", 3)}, entries[0].Fields)
	assert.Equal(t, []ports.Field{ports.F("step", 2)}, entries[2].Fields)
}

func TestOutput_ProgressSuppressesLogging(t *testing.T) {
	logger := mocks.NewLogger()
	progress := &recordingProgress{}
	output := NewOutput(logger).WithProgress(progress)
	ctx := context.Background()

	output.Start(ctx, "Starting install", 2)
	output.Info(ctx, "hidden")
	output.Debug(ctx, "hidden")
	output.Warn(ctx, "hidden")
	output.Error(ctx, "hidden")
	output.Step(ctx, "one")
	output.Step(ctx, "two")
	output.End(ctx, "done")

	assert.Empty(t, logger.Entries())
	assert.Equal(t, 2, output.StepCount())
	assert.Equal(t, 2, progress.total)
	assert.Equal(t, []string{"one", "two"}, progress.advances)
	assert.Equal(t, "done", progress.finished)
}

func TestOutput_NilLogger(t *testing.T) {
	output := NewOutput(nil).WithFields(ports.F("run_id", "x"))
	ctx := context.Background()

	assert.NotPanics(t, func() {
		output.Start(ctx, "start", 1)
		output.Step(ctx, "step")
		output.Debug(ctx, "debug")
		output.End(ctx, "end")
	})
	assert.Equal(t, 1, output.StepCount())
}

func TestOutput_WithFields(t *testing.T) {
	logger := mocks.NewLogger()
	output := NewOutput(logger).WithFields(ports.F("run_id", "abc"))

	output.Warn(context.Background(), "careful", ports.F("path", "/tmp"))

	entries := logger.Entries()
	assert.Len(t, entries, 1)
	assert.Equal(t, ports.LevelWarn, entries[0].Level)
	assert.Equal(t, []ports.Field{ports.F("run_id", "abc"), ports.F("path", "/tmp")}, entries[0].Fields)
}
