package install

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/testutil/mocks"
)

// stepInstaller reports steps steps, failing with err after failAfter of them when err is set.
type stepInstaller struct {
	name      string
	output    *Output
	steps     int
	failAfter int
	err       error
	ran       bool
}

func (s *stepInstaller) Name() string   { return s.name }
func (s *stepInstaller) StepCount() int { return s.steps }

func (s *stepInstaller) Install(ctx context.Context) error {
	s.ran = true
	for i := 0; i < s.steps; i++ {
		if s.err != nil && i == s.failAfter {
			return s.err
		}
		s.output.Step(ctx, fmt.Sprintf("%s %d", s.name, i+1))
	}
	return nil
}

func newTestCollection(t *testing.T, output *Output) *Collection {
	t.Helper()
	c, err := NewCollection(output)
	require.NoError(t, err)
	return c
}

func TestCollection_RunSuccess(t *testing.T) {
	logger := mocks.NewLogger()
	output := NewOutput(logger)
	c := newTestCollection(t, output)

	first := &stepInstaller{name: "first", output: output, steps: 1}
	second := &stepInstaller{name: "second", output: output, steps: 2}
	third := &stepInstaller{name: "third", output: output, steps: 2}
	c.Add(first, second, third)

	assert.Equal(t, RunIdle, c.State())
	assert.Equal(t, 5, c.TotalSteps())
	assert.Len(t, c.All(), 3)

	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 5, output.StepCount())
	assert.Equal(t, RunSucceeded, c.State())
	assert.True(t, third.ran)

	info := logger.Messages(ports.LevelInfo)
	assert.Equal(t, "Starting install", info[0])
	assert.Equal(t, "Install completed", info[len(info)-1])

	runID := c.RunContext().RunID
	_, err := uuid.Parse(runID)
	assert.NoError(t, err)
	assert.Contains(t, logger.Entries()[0].Fields, ports.F("run_id", runID))
}

func TestCollection_RunStopsAtFirstFailure(t *testing.T) {
	output := NewOutput(mocks.NewLogger())
	c := newTestCollection(t, output)

	errBoom := errors.New("boom")
	first := &stepInstaller{name: "first", output: output, steps: 1}
	second := &stepInstaller{name: "second", output: output, steps: 2, failAfter: 1, err: errBoom}
	third := &stepInstaller{name: "third", output: output, steps: 2}
	c.Add(first, second, third)

	err := c.Run(context.Background())

	assert.Same(t, errBoom, err)
	assert.Equal(t, 2, output.StepCount())
	assert.False(t, third.ran)
	assert.Equal(t, RunFailed, c.State())

	rc := c.RunContext()
	assert.Equal(t, "second", rc.FailedInstaller)
	assert.Same(t, errBoom, rc.Err)
}

func TestCollection_RunReturnsErrorUnmodified(t *testing.T) {
	output := NewOutput(nil)
	c := newTestCollection(t, output)

	dup := &DuplicateInstallError{Component: "local_travis", Path: "/moodle/local/travis"}
	c.Add(&stepInstaller{name: "plugin", output: output, steps: 1, err: dup})

	err := c.Run(context.Background())

	assert.Same(t, dup, err)
	assert.True(t, IsDuplicateInstall(err))
}

func TestCollection_RunTwice(t *testing.T) {
	output := NewOutput(nil)
	c := newTestCollection(t, output)
	c.Add(&stepInstaller{name: "only", output: output, steps: 1})

	require.NoError(t, c.Run(context.Background()))
	assert.ErrorIs(t, c.Run(context.Background()), ErrAlreadyRun)
	assert.Equal(t, 1, output.StepCount())
}

func TestCollection_RunCancelled(t *testing.T) {
	output := NewOutput(nil)
	c := newTestCollection(t, output)
	first := &stepInstaller{name: "first", output: output, steps: 1}
	c.Add(first)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, first.ran)
	assert.Equal(t, RunFailed, c.State())
}

func TestCollection_RunWithProgress(t *testing.T) {
	logger := mocks.NewLogger()
	progress := &recordingProgress{}
	output := NewOutput(logger).WithProgress(progress)
	c := newTestCollection(t, output)
	c.Add(
		&stepInstaller{name: "a", output: output, steps: 1},
		&stepInstaller{name: "b", output: output, steps: 2},
	)

	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 3, progress.total)
	assert.Equal(t, []string{"a 1", "b 1", "b 2"}, progress.advances)
	assert.Equal(t, "Install completed", progress.finished)
	assert.Empty(t, logger.Entries())
}

func TestCollection_Empty(t *testing.T) {
	output := NewOutput(nil)
	c := newTestCollection(t, output)

	require.NoError(t, c.Run(context.Background()))
	assert.Zero(t, c.TotalSteps())
	assert.Zero(t, output.StepCount())
	assert.Equal(t, RunSucceeded, c.State())
}
