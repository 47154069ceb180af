package install

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/statekit"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
)

// RunState is the state of a pipeline run.
type RunState string

// Run states.
const (
	RunIdle      RunState = "idle"
	RunRunning   RunState = "running"
	RunSucceeded RunState = "succeeded"
	RunFailed    RunState = "failed"
)

// Event types for the run state machine.
const (
	EventRun     = "RUN"
	EventSucceed = "SUCCEED"
	EventFail    = "FAIL"
)

// ErrAlreadyRun is returned when Run is called on a collection that has already run.
var ErrAlreadyRun = errors.New("install pipeline has already run")

// RunContext is the statekit context of a pipeline run.
type RunContext struct {
	RunID           string
	FailedInstaller string
	Err             error
}

// runRecord is written by state machine actions and read by Collection.
type runRecord struct {
	mu  sync.RWMutex
	ctx RunContext
}

func (r *runRecord) get() RunContext {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ctx
}

// Collection runs installers in order, stopping at the first failure.
type Collection struct {
	installers []Installer
	output     *Output
	record     *runRecord
	interp     *statekit.Interpreter[RunContext]
}

// NewCollection creates an empty pipeline reporting to output.
func NewCollection(output *Output) (*Collection, error) {
	record := &runRecord{}
	interp, err := buildRunMachine(record)
	if err != nil {
		return nil, fmt.Errorf("failed to build run state machine: %w", err)
	}
	interp.Start()

	return &Collection{
		output: output,
		record: record,
		interp: interp,
	}, nil
}

// buildRunMachine constructs idle -> running -> succeeded | failed.
func buildRunMachine(record *runRecord) (*statekit.Interpreter[RunContext], error) {
	machine, err := statekit.NewMachine[RunContext]("install-pipeline").
		WithInitial(statekit.StateID(RunIdle)).
		WithContext(RunContext{}).
		WithAction("recordStart", func(_ *RunContext, event statekit.Event) {
			if runID, ok := event.Payload.(string); ok {
				record.mu.Lock()
				record.ctx.RunID = runID
				record.mu.Unlock()
			}
		}).
		WithAction("recordFailure", func(_ *RunContext, event statekit.Event) {
			payload, ok := event.Payload.(map[string]interface{})
			if !ok {
				return
			}
			record.mu.Lock()
			defer record.mu.Unlock()
			if name, ok := payload["installer"].(string); ok {
				record.ctx.FailedInstaller = name
			}
			if err, ok := payload["error"].(error); ok {
				record.ctx.Err = err
			}
		}).
		State(statekit.StateID(RunIdle)).
		On(EventRun).Target(statekit.StateID(RunRunning)).Done().
		State(statekit.StateID(RunRunning)).
		OnEntry("recordStart").
		On(EventSucceed).Target(statekit.StateID(RunSucceeded)).
		On(EventFail).Target(statekit.StateID(RunFailed)).Done().
		State(statekit.StateID(RunSucceeded)).Done().
		State(statekit.StateID(RunFailed)).
		OnEntry("recordFailure").Done().
		Build()
	if err != nil {
		return nil, err
	}
	return statekit.NewInterpreter(machine), nil
}

// Add appends installers to the pipeline.
func (c *Collection) Add(installers ...Installer) {
	c.installers = append(c.installers, installers...)
}

// All returns the installers in run order.
func (c *Collection) All() []Installer {
	return append([]Installer(nil), c.installers...)
}

// TotalSteps returns the sum of the installers' step counts.
func (c *Collection) TotalSteps() int {
	total := 0
	for _, inst := range c.installers {
		total += inst.StepCount()
	}
	return total
}

// Run runs every installer in order. The first error stops the run and is returned as is.
func (c *Collection) Run(ctx context.Context) error {
	if c.State() != RunIdle {
		return ErrAlreadyRun
	}

	runID := uuid.NewString()
	c.output.WithFields(ports.F("run_id", runID))
	c.interp.Send(statekit.Event{Type: EventRun, Payload: runID})

	c.output.Start(ctx, "Starting install", c.TotalSteps())

	for _, inst := range c.installers {
		if err := ctx.Err(); err != nil {
			c.fail(inst, err)
			return err
		}

		c.output.Debug(ctx, "Running installer", ports.F("installer", inst.Name()))
		if err := inst.Install(ctx); err != nil {
			c.output.Error(ctx, "Installer failed",
				ports.F("installer", inst.Name()),
				ports.F("error", err),
			)
			c.fail(inst, err)
			return err
		}
	}

	c.output.End(ctx, "Install completed")
	c.interp.Send(statekit.Event{Type: EventSucceed})
	return nil
}

func (c *Collection) fail(inst Installer, err error) {
	c.interp.Send(statekit.Event{
		Type:    EventFail,
		Payload: map[string]interface{}{"installer": inst.Name(), "error": err},
	})
}

// State returns the run state.
func (c *Collection) State() RunState {
	return RunState(c.interp.State().Value)
}

// RunContext returns the run id and, after a failure, the failing installer and error.
func (c *Collection) RunContext() RunContext {
	return c.record.get()
}
