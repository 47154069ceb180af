package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/adapters/filesystem"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/domain/execution"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/domain/moodle"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
)

// ErrESLintNotFound is returned when Moodle's node_modules has no eslint binary.
var ErrESLintNotFound = errors.New("eslint executable not found, run install first")

var eslintCmd = &cobra.Command{
	Use:   "eslint <plugin>",
	Short: "Run eslint on a plugin",
	Long: `Run the eslint installed in Moodle's node_modules against a plugin.

Exits non-zero when eslint reports errors, or more warnings than --max-warnings.`,
	Args: cobra.ExactArgs(1),
	RunE: runESLint,
}

func init() {
	bindESLintFlags(eslintCmd)
	rootCmd.AddCommand(eslintCmd)
}

func bindESLintFlags(cmd *cobra.Command) {
	cmd.Flags().String("moodle", "moodle", "Moodle directory (env MOODLE_DIR)")
	cmd.Flags().Int("max-warnings", -1, "Number of warnings to trigger a nonzero exit code, -1 for no limit")
}

func runESLint(cmd *cobra.Command, args []string) error {
	moodleDir, err := filepath.Abs(stringSetting(cmd, "moodle", "MOODLE_DIR"))
	if err != nil {
		return err
	}
	plugin, err := loadPlugin(args[0])
	if err != nil {
		return err
	}

	printHeading(cmd.OutOrStdout(), "run eslint on", plugin.Component())

	fs := filesystem.NewRealFileSystem()
	eslint := filepath.Join(moodleDir, "node_modules", ".bin", "eslint")
	if !fs.IsFile(eslint) {
		return fmt.Errorf("%w: %s", ErrESLintNotFound, eslint)
	}

	cmdArgs := []string{plugin.Directory()}
	if maxWarnings, _ := cmd.Flags().GetInt("max-warnings"); maxWarnings >= 0 {
		cmdArgs = append(cmdArgs, "--max-warnings="+strconv.Itoa(maxWarnings))
	}

	return passThrough(cmd, ports.NewCommand(eslint, cmdArgs...).InDir(moodleDir), "eslint")
}

func loadPlugin(dir string) (moodle.Plugin, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return moodle.Plugin{}, err
	}
	return moodle.NewPlugin(abs)
}

// passThrough streams cmd to the command's output and fails on a non-zero exit.
func passThrough(cmd *cobra.Command, c ports.Command, name string) error {
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	executor := execution.NewExecutor(newCommandRunner()).
		WithLogger(logger).
		WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

	result, err := executor.PassThrough(commandContext(cmd), c)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("%s failed with exit code %d", name, result.ExitCode())
	}
	return nil
}
