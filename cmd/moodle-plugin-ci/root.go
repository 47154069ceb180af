package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/adapters/command"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/adapters/logging"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
)

var (
	// Global flags
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "moodle-plugin-ci",
	Short: "Continuous integration for Moodle plugins",
	Long: `moodle-plugin-ci prepares a Moodle checkout for testing a plugin and runs
the plugin's checks against it.

A typical CI job runs:
  moodle-plugin-ci install --plugin ./plugin --db-type pgsql
  moodle-plugin-ci eslint ./plugin`,
	SilenceErrors: true, // main prints the error
	SilenceUsage:  true,
}

// newCommandRunner is replaced in tests.
var newCommandRunner = func() ports.CommandRunner {
	return command.NewRealRunner()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "charm", "log format (charm, text, json, none)")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"charm\tColoured human readable output",
			"text\tPlain key=value lines",
			"json\tOne JSON object per line",
			"none\tDiscard log messages",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the logger selected by the global flags.
func newLogger(w io.Writer) (ports.Logger, error) {
	level, err := ports.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(logFormat) {
	case "charm", "":
		return logging.NewCharmLogger(w, level), nil
	case "text":
		return logging.NewConsoleLogger(logging.WithOutput(w), logging.WithLevel(level)), nil
	case "json":
		return logging.NewConsoleLogger(logging.WithOutput(w), logging.WithLevel(level), logging.WithJSONFormat(true)), nil
	case "none":
		nop := logging.NewNopLogger()
		nop.SetLevel(level)
		return nop, nil
	default:
		return nil, fmt.Errorf("unknown log format %q", logFormat)
	}
}

var headingStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})

// heading renders a command heading. The title is title-cased, the subject is kept as is.
func heading(title string, subject ...string) string {
	text := cases.Title(language.English).String(title)
	if len(subject) > 0 {
		text += " " + strings.Join(subject, " ")
	}
	return headingStyle.Render(text)
}

// printHeading writes a heading followed by a blank line.
func printHeading(w io.Writer, title string, subject ...string) {
	_, _ = fmt.Fprintf(w, "%s\n\n", heading(title, subject...))
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", err)
}

// commandContext returns the command's context, or a background context when run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
