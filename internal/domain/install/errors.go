package install

import (
	"errors"
	"fmt"
)

// DuplicateInstallError indicates the install target of a plugin already exists.
type DuplicateInstallError struct {
	Component string
	Path      string
}

func (e *DuplicateInstallError) Error() string {
	return fmt.Sprintf("plugin %s is already installed in standard Moodle: %s", e.Component, e.Path)
}

// IsDuplicateInstall returns true if the error is a duplicate install error.
func IsDuplicateInstall(err error) bool {
	var dupErr *DuplicateInstallError
	return errors.As(err, &dupErr)
}

// PluginNotFoundError indicates a named plugin is not present in the Moodle tree.
type PluginNotFoundError struct {
	Name string
	Path string
}

func (e *PluginNotFoundError) Error() string {
	return fmt.Sprintf("plugin %s is not installed in standard Moodle: %s is not a directory inside the Moodle tree", e.Name, e.Path)
}

// IsPluginNotFound returns true if the error is a plugin not found error.
func IsPluginNotFound(err error) bool {
	var nfErr *PluginNotFoundError
	return errors.As(err, &nfErr)
}

// ConfigPatchError indicates a splice into an existing config file did not match exactly once.
type ConfigPatchError struct {
	Path    string
	Matches int
}

func (e *ConfigPatchError) Error() string {
	return fmt.Sprintf("failed to inject settings into %s: expected 1 match, found %d", e.Path, e.Matches)
}

// IsConfigPatch returns true if the error is a config patch error.
func IsConfigPatch(err error) bool {
	var patchErr *ConfigPatchError
	return errors.As(err, &patchErr)
}
