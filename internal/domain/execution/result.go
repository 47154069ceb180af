// Package execution runs external commands on behalf of installers and CLI commands.
package execution

import (
	"time"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
)

// Result captures the outcome of running a single command.
type Result struct {
	command  ports.Command
	result   ports.CommandResult
	duration time.Duration
}

// NewResult creates a new Result.
func NewResult(cmd ports.Command, result ports.CommandResult, duration time.Duration) Result {
	return Result{command: cmd, result: result, duration: duration}
}

// Command returns the command that was run.
func (r Result) Command() ports.Command {
	return r.command
}

// ExitCode returns the process exit code.
func (r Result) ExitCode() int {
	return r.result.ExitCode
}

// Stdout returns the captured standard output.
func (r Result) Stdout() string {
	return r.result.Stdout
}

// Output returns stdout followed by stderr.
func (r Result) Output() string {
	return r.result.Output()
}

// Duration returns how long the command took.
func (r Result) Duration() time.Duration {
	return r.duration
}

// Success returns true if the command exited with code 0.
func (r Result) Success() bool {
	return r.result.Success()
}
