package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/testutil"
)

func bindCheckDBSchemaFlags(cmd *cobra.Command) {
	cmd.Flags().String("moodle", "moodle", "")
}

func TestCheckDBSchemaCmd(t *testing.T) {
	assert.Equal(t, "moodle", checkDBSchemaCmd.Flags().Lookup("moodle").DefValue)
	assert.Error(t, checkDBSchemaCmd.Args(checkDBSchemaCmd, []string{"extra"}))
}

func TestRunCheckDBSchema(t *testing.T) {
	runner := newTestRunner(t)
	setLogFlags(t, "warn", "text")
	moodleDir := testutil.TempWorkDir(t)

	cmd, stdout, _ := newTestCommand(bindCheckDBSchemaFlags)
	require.NoError(t, cmd.Flags().Set("moodle", moodleDir))

	require.NoError(t, runCheckDBSchema(cmd, nil))

	assert.Contains(t, stdout.String(), "Checking Moodle Database Schema")
	assert.Equal(t, []ports.CommandCall{{
		Command: "php",
		Args:    []string{"admin/cli/check_database_schema.php"},
		Dir:     moodleDir,
	}}, runner.Calls())
}

func TestRunCheckDBSchema_Mismatch(t *testing.T) {
	runner := newTestRunner(t)
	setLogFlags(t, "warn", "text")
	runner.AddResult("php admin/cli/check_database_schema.php", ports.CommandResult{
		ExitCode: 1,
		Stdout:   "mdl_local_travis: column 'name' has incorrect type\n",
	})

	cmd, stdout, _ := newTestCommand(bindCheckDBSchemaFlags)
	require.NoError(t, cmd.Flags().Set("moodle", testutil.TempWorkDir(t)))

	err := runCheckDBSchema(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit code 1")
	assert.Contains(t, stdout.String(), "incorrect type")
}
