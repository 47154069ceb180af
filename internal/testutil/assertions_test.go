package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssertFileExists(t *testing.T) {
	t.Parallel()

	dir := TempWorkDir(t)
	path := WriteTempFile(t, dir, "config.php", "<?php")

	mockT := &testing.T{}
	AssertFileExists(mockT, path)
	assert.False(t, mockT.Failed())
}

func TestAssertFileNotExists(t *testing.T) {
	t.Parallel()

	dir := TempWorkDir(t)

	mockT := &testing.T{}
	AssertFileNotExists(mockT, filepath.Join(dir, "missing.php"))
	assert.False(t, mockT.Failed())
}

func TestAssertFileContains(t *testing.T) {
	t.Parallel()

	dir := TempWorkDir(t)
	path := WriteTempFile(t, dir, "phpunit.xml", "<phpunit></phpunit>")

	mockT := &testing.T{}
	AssertFileContains(mockT, path, "</phpunit>")
	assert.False(t, mockT.Failed())
}

func TestAssertDirExists(t *testing.T) {
	t.Parallel()

	mockT := &testing.T{}
	AssertDirExists(mockT, TempWorkDir(t))
	assert.False(t, mockT.Failed())
}

func TestAssertYAMLEquals(t *testing.T) {
	t.Parallel()

	mockT := &testing.T{}
	AssertYAMLEquals(mockT, "plugins:\n  list: [local/travis]\n", "plugins:\n  list:\n    - local/travis\n")
	assert.False(t, mockT.Failed())
}

func TestAssertErrorContains(t *testing.T) {
	t.Parallel()

	mockT := &testing.T{}
	AssertErrorContains(mockT, assert.AnError, "general error")
	assert.False(t, mockT.Failed())
}
