package install

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/domain/moodle"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/testutil"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/testutil/mocks"
)

type pluginFixture struct {
	rt        *testRuntime
	moodleDir string
	extraDir  string
	plugin    moodle.Plugin
}

func newPluginFixture(t *testing.T, local *testutil.PluginBuilder) *pluginFixture {
	t.Helper()

	root := testutil.TempWorkDir(t)
	moodleDir := testutil.NewMoodleBuilder(33).Build(t, filepath.Join(root, "moodle"))
	pluginDir := local.Build(t, filepath.Join(root, "plugin"))

	plugin, err := moodle.NewPlugin(pluginDir)
	require.NoError(t, err)

	return &pluginFixture{
		rt:        newTestRuntime(t),
		moodleDir: moodleDir,
		extraDir:  testutil.WriteTempDir(t, root, "extra"),
		plugin:    plugin,
	}
}

func (f *pluginFixture) installer(dumper *ConfigDumper) *PluginInstaller {
	return NewPluginInstaller(f.rt.Runtime, mocks.NewMoodle(f.moodleDir), f.plugin, f.extraDir, dumper)
}

func TestPluginInstaller_Install(t *testing.T) {
	f := newPluginFixture(t, testutil.NewPluginBuilder("local_travis").
		WithDependencies("local_emptyplugin").
		WithFile("lib.php", "<?php\n"))
	testutil.NewPluginBuilder("local_emptyplugin").BuildIn(t, f.extraDir)
	testutil.WriteTempFile(t, f.extraDir, "README.md", "not a plugin")

	dumper := NewConfigDumper()
	dumper.AddSection("filter", "notPaths", []string{"vendor"})
	installer := f.installer(dumper)

	require.NoError(t, installer.Install(context.Background()))

	assert.Equal(t, installer.StepCount(), f.rt.Output.StepCount())

	installed := filepath.Join(f.moodleDir, "local", "travis")
	testutil.AssertFileExists(t, filepath.Join(installed, "version.php"))
	testutil.AssertFileExists(t, filepath.Join(installed, "lib.php"))
	testutil.AssertFileExists(t, filepath.Join(f.moodleDir, "local", "emptyplugin", "version.php"))
	testutil.AssertYAMLEquals(t, "filter:\n  notPaths: [vendor]\n",
		testutil.ReadFile(t, filepath.Join(installed, moodle.ConfigFile)))

	value, ok := f.rt.Env.Get(EnvPluginDir)
	require.True(t, ok)
	assert.Equal(t, installed, value)

	prepared := installer.PluginsToPrepare()
	require.Len(t, prepared, 1)
	assert.Equal(t, "local_travis", prepared[0].Component())
	assert.Equal(t, installed, prepared[0].Directory())
	assert.Equal(t, []string{"vendor"}, prepared[0].Ignores("").NotPaths)

	assert.Equal(t, filepath.Join(filepath.Dir(f.moodleDir), "plugin"), f.plugin.Directory())
}

func TestPluginInstaller_InstallOrder(t *testing.T) {
	f := newPluginFixture(t, testutil.NewPluginBuilder("local_travis").WithDependencies("local_emptyplugin"))
	testutil.NewPluginBuilder("local_emptyplugin").BuildIn(t, f.extraDir)

	installer := f.installer(nil)
	plugins, err := installer.ScanForPlugins()
	require.NoError(t, err)

	var components []string
	for _, p := range plugins.All() {
		components = append(components, p.Component())
	}
	assert.Equal(t, []string{"local_travis", "local_emptyplugin"}, components)

	require.NoError(t, installer.Install(context.Background()))

	var copied []string
	for _, e := range f.rt.logger.Entries() {
		if e.Message == "Copying plugin" {
			copied = append(copied, e.Fields[0].Value.(string))
		}
	}
	assert.Equal(t, []string{"local_emptyplugin", "local_travis"}, copied)
}

func TestPluginInstaller_KeepsPluginConfig(t *testing.T) {
	f := newPluginFixture(t, testutil.NewPluginBuilder("local_travis").
		WithCIConfig("filter:\n  notNames: [ignore.php]\n"))

	dumper := NewConfigDumper()
	dumper.AddSection("filter", "notPaths", []string{"vendor"})

	installer := f.installer(dumper)
	require.NoError(t, installer.Install(context.Background()))

	installed := filepath.Join(f.moodleDir, "local", "travis")
	testutil.AssertFileEquals(t, filepath.Join(installed, moodle.ConfigFile), "filter:\n  notNames: [ignore.php]\n")
	assert.Equal(t, []string{"ignore.php"}, installer.PluginsToPrepare()[0].Ignores("").NotNames)
}

func TestPluginInstaller_DuplicateInstall(t *testing.T) {
	f := newPluginFixture(t, testutil.NewPluginBuilder("local_travis").WithFile("lib.php", "<?php\n"))
	existing := testutil.WriteTempFile(t, filepath.Join(f.moodleDir, "local", "travis"), "version.php", "original")

	installer := f.installer(nil)
	err := installer.Install(context.Background())

	require.Error(t, err)
	assert.True(t, IsDuplicateInstall(err))
	assert.Contains(t, err.Error(), "local_travis")

	testutil.AssertFileEquals(t, existing, "original")
	testutil.AssertFileNotExists(t, filepath.Join(f.moodleDir, "local", "travis", "lib.php"))

	entries, readErr := os.ReadDir(filepath.Join(f.moodleDir, "local", "travis"))
	require.NoError(t, readErr)
	assert.Len(t, entries, 1)

	_, ok := f.rt.Env.Get(EnvPluginDir)
	assert.False(t, ok)
	assert.Empty(t, installer.PluginsToPrepare())
}

func TestPluginInstaller_DuplicateInstallCopiesNothing(t *testing.T) {
	f := newPluginFixture(t, testutil.NewPluginBuilder("local_travis").WithDependencies("local_emptyplugin"))
	testutil.NewPluginBuilder("local_emptyplugin").BuildIn(t, f.extraDir)
	testutil.WriteTempFile(t, filepath.Join(f.moodleDir, "local", "travis"), "version.php", "original")

	err := f.installer(nil).Install(context.Background())

	require.Error(t, err)
	assert.True(t, IsDuplicateInstall(err))
	testutil.AssertFileNotExists(t, filepath.Join(f.moodleDir, "local", "emptyplugin"))
	for _, entry := range f.rt.logger.Entries() {
		assert.NotEqual(t, "Copying plugin", entry.Message)
	}
}

func TestPluginInstaller_CircularDependency(t *testing.T) {
	f := newPluginFixture(t, testutil.NewPluginBuilder("local_travis").WithDependencies("local_emptyplugin"))
	testutil.NewPluginBuilder("local_emptyplugin").WithDependencies("local_travis").BuildIn(t, f.extraDir)

	err := f.installer(nil).Install(context.Background())

	require.Error(t, err)
	assert.True(t, moodle.IsCircularDependency(err))
	testutil.AssertFileNotExists(t, filepath.Join(f.moodleDir, "local", "travis"))
	testutil.AssertFileNotExists(t, filepath.Join(f.moodleDir, "local", "emptyplugin"))
}

func TestPluginInstaller_DuplicateComponentInExtraDir(t *testing.T) {
	f := newPluginFixture(t, testutil.NewPluginBuilder("local_travis"))
	testutil.NewPluginBuilder("local_travis").Build(t, filepath.Join(f.extraDir, "travis-copy"))

	_, err := f.installer(nil).ScanForPlugins()

	assert.True(t, moodle.IsDuplicateComponent(err))
}

func TestPluginInstaller_NoExtraDir(t *testing.T) {
	f := newPluginFixture(t, testutil.NewPluginBuilder("local_travis"))

	installer := NewPluginInstaller(f.rt.Runtime, mocks.NewMoodle(f.moodleDir), f.plugin, "", nil)
	plugins, err := installer.ScanForPlugins()

	require.NoError(t, err)
	assert.Equal(t, 1, plugins.Len())
}
