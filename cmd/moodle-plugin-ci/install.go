package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/adapters/filesystem"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/config"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/domain/execution"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/domain/install"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/domain/moodle"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/tui/components"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install everything required for CI testing",
	Long: `Install prepares a Moodle checkout for testing a plugin:

1. Clones Moodle (unless it already exists), creates the data directories,
   writes config.php and creates the database
2. Copies the plugin and any extra plugins into Moodle, in dependency order
3. Installs composer and npm dependencies
4. Initialises the Behat and PHPUnit test suites

Variables for later CI steps are written to a dotenv file.`,
	RunE: runInstall,
}

// installOptions are the resolved install settings.
type installOptions struct {
	MoodleDir       string
	DataDir         string
	Repo            string
	Branch          string
	WWWRoot         string
	PluginDir       string
	ExtraPluginsDir string
	Plugins         []string
	NoPluginCopy    bool
	NoInit          bool
	NpmSudo         bool
	NotPaths        []string
	NotNames        []string
	DBType          string
	DB              install.DatabaseSettings
	EnvFile         string
	Progress        bool
}

func init() {
	bindInstallFlags(installCmd)
	rootCmd.AddCommand(installCmd)
}

func bindInstallFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("moodle", "moodle", "Moodle directory (env MOODLE_DIR)")
	f.String("data", "moodledata", "Moodle data directory")
	f.String("repo", "https://github.com/moodle/moodle.git", "Moodle git repository to clone (env MOODLE_REPO)")
	f.String("branch", "master", "Moodle git branch to clone (env MOODLE_BRANCH)")
	f.String("wwwroot", "", "Moodle wwwroot written to config.php")
	f.String("plugin", ".", "Path to the plugin under test")
	f.String("extra-plugins", "", "Directory of extra plugins to install (env EXTRA_PLUGINS_DIR)")
	f.String("plugins", "", "Comma separated plugin paths already inside Moodle, with --no-plugin-copy")
	f.Bool("no-plugin-copy", false, "Use plugins already inside the Moodle tree")
	f.Bool("no-init", false, "Do not initialise the Behat and PHPUnit test suites")
	f.Bool("npm-sudo", false, "Run the global npm install with sudo (env NPM_SUDO)")
	f.String("not-paths", "", "Comma separated paths to ignore (env IGNORE_PATHS)")
	f.String("not-names", "", "Comma separated file names to ignore (env IGNORE_NAMES)")
	f.String("db-type", "pgsql", "Database type, mysqli or pgsql (env DB_TYPE)")
	f.String("db-user", "", "Database user (env DB_USER)")
	f.String("db-pass", "", "Database password (env DB_PASS)")
	f.String("db-name", "moodle", "Database name (env DB_NAME)")
	f.String("db-host", "localhost", "Database host (env DB_HOST)")
	f.String("db-port", "", "Database port (env DB_PORT)")
	f.String("db-option-file", "", "MySQL option file with [client] credentials")
	f.String("profile", "", "Install profile with defaults (.yml, .yaml or .toml)")
	f.String("env-file", ".env", "Where to write variables for later CI steps")
	f.Bool("no-progress", false, "Log each step instead of drawing a progress bar")

	_ = cmd.RegisterFlagCompletionFunc("db-type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"mysqli\tMySQL or MariaDB", "pgsql\tPostgreSQL"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("profile", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yml", "yaml", "toml"}, cobra.ShellCompDirectiveFilterFileExt
	})
}

// resolveInstallOptions merges flags, environment, option file and profile, in that order of precedence.
func resolveInstallOptions(cmd *cobra.Command) (installOptions, error) {
	profile := &config.Profile{}
	if path, _ := cmd.Flags().GetString("profile"); path != "" {
		p, err := config.LoadProfile(path)
		if err != nil {
			return installOptions{}, err
		}
		profile = p
	}

	var dbFile config.DatabaseOptions
	if path, _ := cmd.Flags().GetString("db-option-file"); path != "" {
		opts, err := config.LoadDatabaseOptionFile(path)
		if err != nil {
			return installOptions{}, err
		}
		dbFile = opts
	}

	noProgress, _ := cmd.Flags().GetBool("no-progress")
	envFile, _ := cmd.Flags().GetString("env-file")

	return installOptions{
		MoodleDir:       stringSetting(cmd, "moodle", "MOODLE_DIR", profile.Moodle.Dir),
		DataDir:         stringSetting(cmd, "data", "", profile.Moodle.DataDir),
		Repo:            stringSetting(cmd, "repo", "MOODLE_REPO", profile.Moodle.Repo),
		Branch:          stringSetting(cmd, "branch", "MOODLE_BRANCH", profile.Moodle.Branch),
		WWWRoot:         stringSetting(cmd, "wwwroot", "", profile.Moodle.WWWRoot),
		PluginDir:       stringSetting(cmd, "plugin", ""),
		ExtraPluginsDir: stringSetting(cmd, "extra-plugins", "EXTRA_PLUGINS_DIR", profile.Plugins.ExtraDir),
		Plugins:         listSetting(cmd, "plugins", "", profile.Plugins.List),
		NoPluginCopy:    boolSetting(cmd, "no-plugin-copy", "", profile.Plugins.NoCopy),
		NoInit:          boolSetting(cmd, "no-init", "", profile.NoInit),
		NpmSudo:         boolSetting(cmd, "npm-sudo", "NPM_SUDO", profile.NpmSudo),
		NotPaths:        listSetting(cmd, "not-paths", "IGNORE_PATHS", profile.Plugins.NotPaths),
		NotNames:        listSetting(cmd, "not-names", "IGNORE_NAMES", profile.Plugins.NotNames),
		DBType:          stringSetting(cmd, "db-type", "DB_TYPE", profile.Database.Type),
		DB: install.DatabaseSettings{
			Name: stringSetting(cmd, "db-name", "DB_NAME", profile.Database.Name),
			User: stringSetting(cmd, "db-user", "DB_USER", dbFile.User, profile.Database.User),
			Pass: stringSetting(cmd, "db-pass", "DB_PASS", dbFile.Password, profile.Database.Pass),
			Host: stringSetting(cmd, "db-host", "DB_HOST", dbFile.Host, profile.Database.Host),
			Port: stringSetting(cmd, "db-port", "DB_PORT", dbFile.Port, profile.Database.Port),
		},
		EnvFile:  envFile,
		Progress: !noProgress,
	}, nil
}

func runInstall(cmd *cobra.Command, _ []string) error {
	start := time.Now()
	out := cmd.OutOrStdout()

	opts, err := resolveInstallOptions(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	database, err := install.NewDatabase(opts.DBType, opts.DB)
	if err != nil {
		return err
	}

	output := install.NewOutput(logger)
	if opts.Progress {
		output.WithProgress(components.NewProgressBar(cmd.ErrOrStderr()))
	}

	fs := filesystem.NewRealFileSystem()
	rt := install.NewRuntime(output, fs, execution.NewExecutor(newCommandRunner()).WithLogger(logger))

	dumper := install.NewConfigDumper()
	if len(opts.NotPaths) > 0 {
		dumper.AddSection("filter", "notPaths", opts.NotPaths)
	}
	if len(opts.NotNames) > 0 {
		dumper.AddSection("filter", "notNames", opts.NotNames)
	}

	collection, err := install.NewCollection(output)
	if err != nil {
		return err
	}
	factory := install.NewFactory(rt, moodle.NewMoodle(opts.MoodleDir), install.FactoryOptions{
		Moodle: install.MoodleOptions{
			Repo:    opts.Repo,
			Branch:  opts.Branch,
			DataDir: opts.DataDir,
			WWWRoot: opts.WWWRoot,
		},
		Database:        database,
		PluginDir:       opts.PluginDir,
		ExtraPluginsDir: opts.ExtraPluginsDir,
		Plugins:         opts.Plugins,
		NoPluginCopy:    opts.NoPluginCopy,
		NoInit:          opts.NoInit,
		NpmSudo:         opts.NpmSudo,
		Dumper:          dumper,
	})
	if err := factory.AddInstallers(collection); err != nil {
		return err
	}

	printHeading(out, "install moodle plugin ci")

	ctx := ports.ContextWithLogger(commandContext(cmd), logger)
	if err := collection.Run(ctx); err != nil {
		return err
	}

	envFile, err := filepath.Abs(opts.EnvFile)
	if err != nil {
		return err
	}
	if err := install.NewEnvDumper(fs).Dump(rt.Env, envFile); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Install completed in %s, variables written to %s\n",
		time.Since(start).Round(10*time.Millisecond), envFile)
	return nil
}
