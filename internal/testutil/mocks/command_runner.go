// Package mocks provides test doubles for testing.
package mocks

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
)

// CommandRunner is a thread-safe test double for ports.CommandRunner.
// Commands without a registered result succeed with empty output.
type CommandRunner struct {
	mu       sync.RWMutex
	results  map[string]ports.CommandResult
	errors   map[string]error
	commands []ports.Command
}

// NewCommandRunner creates a new CommandRunner mock.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{
		results:  make(map[string]ports.CommandResult),
		errors:   make(map[string]error),
		commands: make([]ports.Command, 0),
	}
}

// AddResult registers the result for a command line, e.g. "npm install --no-progress".
func (m *CommandRunner) AddResult(commandLine string, result ports.CommandResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[commandLine] = result
}

// AddFailure registers a non-zero exit for a command line.
func (m *CommandRunner) AddFailure(commandLine string, exitCode int, stderr string) {
	m.AddResult(commandLine, ports.CommandResult{ExitCode: exitCode, Stderr: stderr})
}

// AddError registers a command line that fails to start.
func (m *CommandRunner) AddError(commandLine string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[commandLine] = err
}

// Run records cmd and returns the registered outcome.
func (m *CommandRunner) Run(_ context.Context, cmd ports.Command) (ports.CommandResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.commands = append(m.commands, cmd)

	key := cmd.String()
	if err, ok := m.errors[key]; ok {
		return ports.CommandResult{ExitCode: -1}, err
	}
	if result, ok := m.results[key]; ok {
		if cmd.Stdout != nil && result.Stdout != "" {
			_, _ = cmd.Stdout.Write([]byte(result.Stdout))
		}
		if cmd.Stderr != nil && result.Stderr != "" {
			_, _ = cmd.Stderr.Write([]byte(result.Stderr))
		}
		return result, nil
	}
	return ports.CommandResult{}, nil
}

// Commands returns all recorded commands.
func (m *CommandRunner) Commands() []ports.Command {
	m.mu.RLock()
	defer m.mu.RUnlock()

	commands := make([]ports.Command, len(m.commands))
	copy(commands, m.commands)
	return commands
}

// Calls returns all recorded command invocations.
func (m *CommandRunner) Calls() []ports.CommandCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]ports.CommandCall, len(m.commands))
	for i, cmd := range m.commands {
		calls[i] = ports.CommandCall{Command: cmd.Name, Args: cmd.Args, Dir: cmd.Dir}
	}
	return calls
}

// CommandLines returns the recorded command lines in order.
func (m *CommandRunner) CommandLines() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lines := make([]string, len(m.commands))
	for i, cmd := range m.commands {
		lines[i] = cmd.String()
	}
	return lines
}

// Reset clears all registered results, errors, and recorded commands.
func (m *CommandRunner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = make(map[string]ports.CommandResult)
	m.errors = make(map[string]error)
	m.commands = make([]ports.Command, 0)
}

// Ensure CommandRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*CommandRunner)(nil)
