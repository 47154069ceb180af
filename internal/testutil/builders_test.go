package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluginVersionFile(t *testing.T) {
	t.Parallel()

	content := PluginVersionFile("local_travis", "local_emptyplugin", "mod_forum")

	assert.Contains(t, content, "$plugin->component = 'local_travis';")
	assert.Contains(t, content, "'local_emptyplugin' => ANY_VERSION,")
	assert.Contains(t, content, "'mod_forum' => ANY_VERSION,")
}

func TestPluginVersionFile_NoDependencies(t *testing.T) {
	t.Parallel()

	assert.NotContains(t, PluginVersionFile("local_travis"), "dependencies")
}

func TestPluginBuilder(t *testing.T) {
	t.Parallel()

	builder := NewPluginBuilder("local_travis").
		WithBehatFeature("login").
		WithUnitTest("lib").
		WithPackageJSON()

	dir := builder.BuildIn(t, TempWorkDir(t))

	assert.Equal(t, "travis", filepath.Base(dir))
	assert.Equal(t, []string{"package.json", "tests/behat/login.feature", "tests/lib_test.php", "version.php"}, builder.Files())
	AssertFileContains(t, filepath.Join(dir, "version.php"), "'local_travis'")
	AssertFileExists(t, filepath.Join(dir, "tests", "behat", "login.feature"))
	AssertFileExists(t, filepath.Join(dir, "tests", "lib_test.php"))
	AssertFileContains(t, filepath.Join(dir, "package.json"), "\"local_travis\"")
}

func TestMoodleBuilder(t *testing.T) {
	t.Parallel()

	dir := NewMoodleBuilder(33).
		WithPlugin("local/travis", NewPluginBuilder("local_travis")).
		WithFile("config-dist.php", "<?php").
		Build(t, TempWorkDir(t))

	AssertFileContains(t, filepath.Join(dir, "version.php"), "$branch   = '33';")
	AssertFileContains(t, filepath.Join(dir, "local", "travis", "version.php"), "'local_travis'")
	AssertFileExists(t, filepath.Join(dir, "config-dist.php"))
}
