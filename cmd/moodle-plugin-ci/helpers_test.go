package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/testutil/mocks"
)

// withEnv replaces the environment seen by option resolution.
func withEnv(t *testing.T, env map[string]string) {
	t.Helper()
	old := lookupEnv
	lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	t.Cleanup(func() { lookupEnv = old })
}

// withRunner makes commands run through runner.
func withRunner(t *testing.T, runner ports.CommandRunner) {
	t.Helper()
	old := newCommandRunner
	newCommandRunner = func() ports.CommandRunner { return runner }
	t.Cleanup(func() { newCommandRunner = old })
}

// newTestCommand returns a fresh command with flags bound by bind, writing to buffers.
func newTestCommand(bind func(*cobra.Command)) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "test"}
	bind(cmd)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	return cmd, &stdout, &stderr
}

func newTestRunner(t *testing.T) *mocks.CommandRunner {
	t.Helper()
	runner := mocks.NewCommandRunner()
	withRunner(t, runner)
	withEnv(t, nil)
	return runner
}
