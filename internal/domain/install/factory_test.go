package install

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/domain/moodle"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/testutil"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/testutil/mocks"
)

func installerNames(c *Collection) []string {
	var names []string
	for _, inst := range c.All() {
		names = append(names, inst.Name())
	}
	return names
}

func TestFactory_AddInstallers(t *testing.T) {
	root := testutil.TempWorkDir(t)
	pluginDir := testutil.NewPluginBuilder("local_travis").WithUnitTest("lib").Build(t, filepath.Join(root, "travis"))
	behatDir := testutil.NewPluginBuilder("local_behat").WithBehatFeature("login").Build(t, filepath.Join(root, "behat"))
	plainDir := testutil.NewPluginBuilder("local_plain").Build(t, filepath.Join(root, "plain"))

	tests := []struct {
		name     string
		opts     FactoryOptions
		expected []string
		steps    int
	}{
		{
			name:     "copy",
			opts:     FactoryOptions{PluginDir: pluginDir},
			expected: []string{"moodle", "plugin", "vendor", "testsuite"},
			steps:    8,
		},
		{
			name:     "copy with behat features",
			opts:     FactoryOptions{PluginDir: behatDir},
			expected: []string{"moodle", "plugin", "vendor", "testsuite"},
			steps:    8,
		},
		{
			name:     "copy without tests",
			opts:     FactoryOptions{PluginDir: plainDir},
			expected: []string{"moodle", "plugin", "vendor"},
			steps:    6,
		},
		{
			name:     "copy without init",
			opts:     FactoryOptions{PluginDir: pluginDir, NoInit: true},
			expected: []string{"moodle", "plugin", "vendor"},
			steps:    6,
		},
		{
			name:     "no copy",
			opts:     FactoryOptions{NoPluginCopy: true, Plugins: []string{"local/travis"}},
			expected: []string{"moodle", "plugin-nocopy", "vendor", "testsuite"},
			steps:    9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := newTestRuntime(t)
			c, err := NewCollection(rt.Output)
			require.NoError(t, err)

			require.NoError(t, NewFactory(rt.Runtime, mocks.NewMoodle("/moodle"), tt.opts).AddInstallers(c))

			assert.Equal(t, tt.expected, installerNames(c))
			assert.Equal(t, tt.steps, c.TotalSteps())
		})
	}
}

func TestFactory_InvalidPlugin(t *testing.T) {
	rt := newTestRuntime(t)
	c, err := NewCollection(rt.Output)
	require.NoError(t, err)

	err = NewFactory(rt.Runtime, mocks.NewMoodle("/moodle"), FactoryOptions{PluginDir: testutil.TempWorkDir(t)}).AddInstallers(c)

	assert.ErrorIs(t, err, moodle.ErrVersionFileNotFound)
	assert.Empty(t, c.All())
}

func TestFactory_EndToEnd(t *testing.T) {
	root := testutil.TempWorkDir(t)
	moodleDir := testutil.NewMoodleBuilder(33).Build(t, filepath.Join(root, "moodle"))
	pluginDir := testutil.NewPluginBuilder("local_travis").
		WithUnitTest("lib").
		WithFile("lib.php", "<?php\n").
		WithPHPUnitConfig("<phpunit>\n</phpunit>\n").
		Build(t, filepath.Join(root, "plugin"))

	rt := newTestRuntime(t)
	dumper := NewConfigDumper()
	dumper.AddSection("filter", "notNames", []string{"lib.php"})

	c, err := NewCollection(rt.Output)
	require.NoError(t, err)
	require.NoError(t, NewFactory(rt.Runtime, mocks.NewMoodle(moodleDir), FactoryOptions{
		Moodle:    MoodleOptions{DataDir: filepath.Join(root, "moodledata")},
		Database:  NewMySQLDatabase(DatabaseSettings{}),
		PluginDir: pluginDir,
		Dumper:    dumper,
	}).AddInstallers(c))

	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, c.TotalSteps(), rt.Output.StepCount())
	assert.Equal(t, RunSucceeded, c.State())

	installed := filepath.Join(moodleDir, "local", "travis")
	assert.Equal(t, []string{EnvMoodleDir, EnvPluginDir}, rt.Env.Names())
	testutil.AssertFileContains(t, filepath.Join(installed, "phpunit.xml"), "<whitelist addUncoveredFilesFromWhitelist=\"true\">")
	testutil.AssertFileNotExists(t, filepath.Join(pluginDir, moodle.ConfigFile))

	phpunit := testutil.ReadFile(t, filepath.Join(installed, "phpunit.xml"))
	assert.NotContains(t, phpunit, "<file>lib.php</file>")
	assert.Contains(t, rt.runner.CommandLines(), "composer install --no-interaction --prefer-dist")
	for _, cmd := range rt.runner.Commands() {
		if cmd.Name == "composer" {
			assert.Contains(t, cmd.Env, EnvMoodleDir+"="+moodleDir)
			assert.Contains(t, cmd.Env, EnvPluginDir+"="+installed)
		}
	}
}
