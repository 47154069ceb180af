package install

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/domain/execution"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/testutil"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/testutil/mocks"
)

func TestMoodleInstaller_LocalSetup(t *testing.T) {
	root := testutil.TempWorkDir(t)
	moodleDir := testutil.NewMoodleBuilder(33).Build(t, filepath.Join(root, "moodle"))
	dataDir := filepath.Join(root, "moodledata")

	rt := newTestRuntime(t)
	bridge := mocks.NewMoodle(moodleDir)
	db := NewMySQLDatabase(DatabaseSettings{Pass: "secret"})
	installer := NewMoodleInstaller(rt.Runtime, bridge, db, MoodleOptions{
		Repo:    "https://github.com/moodle/moodle.git",
		Branch:  "MOODLE_33_STABLE",
		DataDir: dataDir,
	})

	require.NoError(t, installer.Install(context.Background()))

	assert.Equal(t, installer.StepCount(), rt.Output.StepCount())
	assert.Equal(t, []string{"Using local Moodle setup", "Moodle assets", "Installing database"},
		rt.logger.Messages(ports.LevelInfo))

	value, ok := rt.Env.Get(EnvMoodleDir)
	require.True(t, ok)
	assert.Equal(t, moodleDir, value)

	testutil.AssertDirExists(t, dataDir)
	testutil.AssertDirExists(t, filepath.Join(dataDir, "phpu_moodledata"))
	testutil.AssertDirExists(t, filepath.Join(dataDir, "behat_moodledata"))

	config := filepath.Join(moodleDir, "config.php")
	testutil.AssertFileContains(t, config, "$CFG->dbtype    = 'mysqli';")
	testutil.AssertFileContains(t, config, "$CFG->dbpass    = 'secret';")
	testutil.AssertFileContains(t, config, "$CFG->dataroot  = '"+dataDir+"';")
	testutil.AssertFileContains(t, config, "$CFG->wwwroot   = 'http://localhost/moodle';")

	assert.Equal(t, []string{db.CreateDatabaseCommand().String()}, rt.runner.CommandLines())
}

func TestMoodleInstaller_Clone(t *testing.T) {
	root := testutil.TempWorkDir(t)
	moodleDir := filepath.Join(root, "moodle")

	rt := newTestRuntime(t)
	installer := NewMoodleInstaller(rt.Runtime, mocks.NewMoodle(moodleDir), nil, MoodleOptions{
		Repo:    "https://github.com/moodle/moodle.git",
		Branch:  "MOODLE_33_STABLE",
		DataDir: filepath.Join(root, "moodledata"),
	})

	require.NoError(t, installer.Install(context.Background()))

	assert.Equal(t, []string{
		"git clone --depth=1 --branch MOODLE_33_STABLE https://github.com/moodle/moodle.git " + moodleDir,
	}, rt.runner.CommandLines())
	assert.Equal(t, "Cloning Moodle", rt.logger.Messages(ports.LevelInfo)[0])
	assert.Equal(t, 3, rt.Output.StepCount())
	testutil.AssertFileContains(t, filepath.Join(moodleDir, "config.php"), "$CFG->dbtype    = '';")
}

func TestMoodleInstaller_KeepsExistingConfig(t *testing.T) {
	root := testutil.TempWorkDir(t)
	moodleDir := testutil.NewMoodleBuilder(33).
		WithFile("config.php", "<?php // custom\n").
		Build(t, filepath.Join(root, "moodle"))

	rt := newTestRuntime(t)
	installer := NewMoodleInstaller(rt.Runtime, mocks.NewMoodle(moodleDir), nil, MoodleOptions{
		DataDir: filepath.Join(root, "moodledata"),
	})

	require.NoError(t, installer.Install(context.Background()))
	testutil.AssertFileEquals(t, filepath.Join(moodleDir, "config.php"), "<?php // custom\n")
}

func TestMoodleInstaller_CloneFailure(t *testing.T) {
	root := testutil.TempWorkDir(t)
	moodleDir := filepath.Join(root, "moodle")

	rt := newTestRuntime(t)
	clone := "git clone --depth=1 https://example.com/moodle.git " + moodleDir
	rt.runner.AddFailure(clone, 128, "fatal: repository not found")

	installer := NewMoodleInstaller(rt.Runtime, mocks.NewMoodle(moodleDir), nil, MoodleOptions{
		Repo:    "https://example.com/moodle.git",
		DataDir: filepath.Join(root, "moodledata"),
	})

	err := installer.Install(context.Background())

	require.Error(t, err)
	assert.True(t, execution.IsSubprocessError(err))
	assert.Contains(t, err.Error(), "repository not found")
	assert.Equal(t, 1, rt.Output.StepCount())
	testutil.AssertFileNotExists(t, filepath.Join(root, "moodledata"))
}

func TestMoodleInstaller_ConfigWriteFailure(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddFile("/moodle/version.php", "<?php $branch = '33';")
	fs.FailWrite("/moodle/config.php", errors.New("disk full"))

	runner := mocks.NewCommandRunner()
	rt := NewRuntime(NewOutput(nil), fs, execution.NewExecutor(runner))
	installer := NewMoodleInstaller(rt, mocks.NewMoodle("/moodle"), NewMySQLDatabase(DatabaseSettings{}), MoodleOptions{DataDir: "/data"})

	err := installer.Install(context.Background())

	testutil.AssertErrorContains(t, err, "disk full")
	assert.Empty(t, runner.Commands())
	assert.Equal(t, 2, rt.Output.StepCount())
}
