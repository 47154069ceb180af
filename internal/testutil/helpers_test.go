package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempWorkDir(t *testing.T) {
	t.Parallel()

	dir := TempWorkDir(t)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, resolved, dir)
}

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	dir := TempWorkDir(t)

	path := WriteTempFile(t, dir, "tests/behat/login.feature", "Feature: login")

	assert.Equal(t, filepath.Join(dir, "tests", "behat", "login.feature"), path)
	assert.Equal(t, "Feature: login", ReadFile(t, path))
}

func TestWriteTempDir(t *testing.T) {
	t.Parallel()

	dir := TempWorkDir(t)

	path := WriteTempDir(t, dir, "moodledata/phpu_moodledata")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestChangeDir(t *testing.T) {
	dir := TempWorkDir(t)

	ChangeDir(t, dir)

	wd, err := os.Getwd()
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(wd)
	require.NoError(t, err)
	assert.Equal(t, dir, resolved)
}
