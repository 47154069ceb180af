package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
)

var checkDBSchemaCmd = &cobra.Command{
	Use:   "checkdbschema",
	Short: "Check the Moodle database schema against install.xml",
	Long:  `Run Moodle's admin/cli/check_database_schema.php against the installed database.`,
	Args:  cobra.NoArgs,
	RunE:  runCheckDBSchema,
}

func init() {
	checkDBSchemaCmd.Flags().String("moodle", "moodle", "Moodle directory (env MOODLE_DIR)")
	rootCmd.AddCommand(checkDBSchemaCmd)
}

func runCheckDBSchema(cmd *cobra.Command, _ []string) error {
	moodleDir, err := filepath.Abs(stringSetting(cmd, "moodle", "MOODLE_DIR"))
	if err != nil {
		return err
	}

	printHeading(cmd.OutOrStdout(), "checking moodle database schema")

	c := ports.NewCommand("php", "admin/cli/check_database_schema.php").InDir(moodleDir)
	return passThrough(cmd, c, "check_database_schema.php")
}
