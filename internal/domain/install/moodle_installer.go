package install

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/domain/moodle"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/templates"
)

// MoodleOptions configure the Moodle installer.
type MoodleOptions struct {
	// Repo is the git URL to clone; empty uses the Moodle directory as it is.
	Repo string
	// Branch is the branch or tag to clone.
	Branch string
	// DataDir is the Moodle data root.
	DataDir string
	// WWWRoot is written to config.php.
	WWWRoot string
}

// MoodleInstaller prepares the Moodle checkout: clone, data directories, config.php and database.
type MoodleInstaller struct {
	rt       Runtime
	bridge   moodle.Bridge
	database Database
	opts     MoodleOptions
}

// NewMoodleInstaller creates a Moodle installer. A nil database skips database creation.
func NewMoodleInstaller(rt Runtime, bridge moodle.Bridge, database Database, opts MoodleOptions) *MoodleInstaller {
	if opts.WWWRoot == "" {
		opts.WWWRoot = "http://localhost/moodle"
	}
	return &MoodleInstaller{rt: rt, bridge: bridge, database: database, opts: opts}
}

// Name returns "moodle".
func (i *MoodleInstaller) Name() string { return "moodle" }

// StepCount returns 3.
func (i *MoodleInstaller) StepCount() int { return 3 }

// Install clones Moodle, records MOODLE_DIR, creates the data directories and config.php,
// then creates the database.
func (i *MoodleInstaller) Install(ctx context.Context) error {
	if err := i.checkout(ctx); err != nil {
		return err
	}

	dir, err := i.rt.FS.Abs(i.bridge.Directory())
	if err != nil {
		return fmt.Errorf("resolving Moodle directory: %w", err)
	}
	i.bridge.SetDirectory(dir)
	i.rt.Env.Set(EnvMoodleDir, dir)

	i.rt.Output.Step(ctx, "Moodle assets")
	if err := i.createAssets(ctx, dir); err != nil {
		return err
	}

	i.rt.Output.Step(ctx, "Installing database")
	if i.database == nil {
		i.rt.Output.Debug(ctx, "No database configured, skipping database creation")
		return nil
	}
	if _, err := i.rt.Exec.MustRun(ctx, i.database.CreateDatabaseCommand()); err != nil {
		return fmt.Errorf("creating %s database: %w", i.database.Type(), err)
	}
	return nil
}

func (i *MoodleInstaller) checkout(ctx context.Context) error {
	dir := i.bridge.Directory()
	if i.opts.Repo == "" || i.rt.FS.IsFile(filepath.Join(dir, moodle.VersionFile)) {
		i.rt.Output.Step(ctx, "Using local Moodle setup")
		return nil
	}

	i.rt.Output.Step(ctx, "Cloning Moodle")
	args := []string{"clone", "--depth=1"}
	if i.opts.Branch != "" {
		args = append(args, "--branch", i.opts.Branch)
	}
	args = append(args, i.opts.Repo, dir)
	if _, err := i.rt.Exec.MustRun(ctx, ports.NewCommand("git", args...)); err != nil {
		return fmt.Errorf("cloning Moodle: %w", err)
	}
	return nil
}

func (i *MoodleInstaller) createAssets(ctx context.Context, dir string) error {
	dataDir, err := i.rt.FS.Abs(i.opts.DataDir)
	if err != nil {
		return fmt.Errorf("resolving data directory: %w", err)
	}

	for _, d := range []string{
		dataDir,
		filepath.Join(dataDir, "phpu_moodledata"),
		filepath.Join(dataDir, "behat_moodledata"),
	} {
		if err := i.rt.FS.MkdirAll(d, 0o777); err != nil {
			return fmt.Errorf("creating data directory %s: %w", d, err)
		}
	}

	configPath := filepath.Join(dir, "config.php")
	if i.rt.FS.Exists(configPath) {
		i.rt.Output.Debug(ctx, "Moodle config already exists, skipping", ports.F("path", configPath))
		return nil
	}

	data := templates.MoodleConfigData{
		WWWRoot:  i.opts.WWWRoot,
		DataRoot: dataDir,
	}
	if i.database != nil {
		s := i.database.Settings()
		data.DBType = i.database.Type()
		data.DBHost = s.Host
		data.DBPort = s.Port
		data.DBName = s.Name
		data.DBUser = s.User
		data.DBPass = s.Pass
	}

	content, err := templates.GenerateMoodleConfig(data)
	if err != nil {
		return fmt.Errorf("rendering config.php: %w", err)
	}
	if err := i.rt.FS.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}
	i.rt.Output.Debug(ctx, "Created Moodle config", ports.F("path", configPath))
	return nil
}
