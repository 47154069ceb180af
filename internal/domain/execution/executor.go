package execution

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
)

// Executor runs commands through a ports.CommandRunner.
// Commands run one at a time in the order given.
type Executor struct {
	runner ports.CommandRunner
	logger ports.Logger
	stdout io.Writer
	stderr io.Writer
	env    func() []string
}

// NewExecutor creates a new Executor. PassThrough streams to os.Stdout and os.Stderr.
func NewExecutor(runner ports.CommandRunner) *Executor {
	return &Executor{
		runner: runner,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// WithLogger returns an Executor that logs each command at debug level.
func (e *Executor) WithLogger(logger ports.Logger) *Executor {
	c := *e
	c.logger = logger
	return &c
}

// WithOutput returns an Executor whose PassThrough streams to stdout and stderr.
func (e *Executor) WithOutput(stdout, stderr io.Writer) *Executor {
	c := *e
	c.stdout = stdout
	c.stderr = stderr
	return &c
}

// WithEnv returns an Executor that adds env() to every command it runs.
// env is called per command, so values recorded between commands are seen.
// A command's own Env entries take precedence.
func (e *Executor) WithEnv(env func() []string) *Executor {
	c := *e
	c.env = env
	return &c
}

// Run runs cmd and returns its result whatever the exit code.
// An error is returned only when the command could not be run to completion.
func (e *Executor) Run(ctx context.Context, cmd ports.Command) (Result, error) {
	if e.env != nil {
		cmd.Env = append(e.env(), cmd.Env...)
	}
	if e.logger != nil {
		e.logger.Debug(ctx, "Running command",
			ports.F("command", cmd.String()),
			ports.F("dir", cmd.Dir),
		)
	}

	start := time.Now()
	res, err := e.runner.Run(ctx, cmd)
	result := NewResult(cmd, res, time.Since(start))
	if err != nil {
		return result, &SubprocessError{
			CommandLine: cmd.String(),
			Dir:         cmd.Dir,
			ExitCode:    res.ExitCode,
			Output:      res.Output(),
			Err:         err,
		}
	}
	return result, nil
}

// MustRun runs cmd and returns a SubprocessError if it exits non-zero.
func (e *Executor) MustRun(ctx context.Context, cmd ports.Command) (Result, error) {
	result, err := e.Run(ctx, cmd)
	if err != nil {
		return result, err
	}
	if !result.Success() {
		return result, &SubprocessError{
			CommandLine: cmd.String(),
			Dir:         cmd.Dir,
			ExitCode:    result.ExitCode(),
			Output:      result.Output(),
		}
	}
	return result, nil
}

// RunAll runs every command and returns all results regardless of exit codes.
func (e *Executor) RunAll(ctx context.Context, cmds []ports.Command) ([]Result, error) {
	results := make([]Result, 0, len(cmds))
	for _, cmd := range cmds {
		result, err := e.Run(ctx, cmd)
		results = append(results, result)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// MustRunAll runs the batch in order and stops at the first failing command.
// The returned results cover the commands that ran.
func (e *Executor) MustRunAll(ctx context.Context, cmds []ports.Command) ([]Result, error) {
	results := make([]Result, 0, len(cmds))
	for _, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := e.MustRun(ctx, cmd)
		results = append(results, result)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// PassThrough runs cmd while streaming its output live.
// The exit code is returned in the result; a non-zero exit is not an error.
func (e *Executor) PassThrough(ctx context.Context, cmd ports.Command) (Result, error) {
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr
	return e.Run(ctx, cmd)
}
