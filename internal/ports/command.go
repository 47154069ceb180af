// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"io"
	"strings"
	"time"
)

// CommandResult represents the result of executing a shell command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true if the command exited with code 0.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// Output returns stdout followed by stderr, trimmed.
func (r CommandResult) Output() string {
	return strings.TrimSpace(strings.TrimSpace(r.Stdout) + "\n" + strings.TrimSpace(r.Stderr))
}

// Command describes a single process invocation.
type Command struct {
	// Name is the executable to run.
	Name string
	// Args are passed to the executable as-is.
	Args []string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env is appended to the inherited environment as KEY=value pairs.
	Env []string
	// Timeout bounds the run time; zero means no limit.
	Timeout time.Duration
	// Stdout and Stderr, when set, additionally receive the live output.
	Stdout io.Writer
	Stderr io.Writer
}

// NewCommand creates a Command for the executable and arguments.
func NewCommand(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// InDir returns a copy of the command that runs in dir.
func (c Command) InDir(dir string) Command {
	c.Dir = dir
	return c
}

// WithTimeout returns a copy of the command bounded by timeout.
func (c Command) WithTimeout(timeout time.Duration) Command {
	c.Timeout = timeout
	return c
}

// WithEnv returns a copy of the command with extra environment entries.
func (c Command) WithEnv(env ...string) Command {
	c.Env = append(append([]string{}, c.Env...), env...)
	return c
}

// String returns the command line as a shell would display it.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	parts = append(parts, c.Args...)
	return strings.Join(parts, " ")
}

// CommandCall records a command invocation.
type CommandCall struct {
	Command string
	Args    []string
	Dir     string
}

// String returns the recorded command line.
func (c CommandCall) String() string {
	return strings.Join(append([]string{c.Command}, c.Args...), " ")
}

// CommandRunner executes processes.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (CommandResult, error)
}
