package moodle

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic error handling.
var (
	// ErrVersionFileNotFound indicates a directory has no version.php.
	ErrVersionFileNotFound = errors.New("version.php not found")
	// ErrComponentNotDeclared indicates version.php does not declare $plugin->component.
	ErrComponentNotDeclared = errors.New("$plugin->component not declared in version.php")
	// ErrBranchNotDeclared indicates Moodle's version.php does not declare $branch.
	ErrBranchNotDeclared = errors.New("$branch not declared in Moodle version.php")
)

// DuplicateComponentError indicates two plugins in one collection share a component.
type DuplicateComponentError struct {
	Component string
	Existing  string
	Duplicate string
}

func (e *DuplicateComponentError) Error() string {
	return fmt.Sprintf("duplicate plugin component %q: found in %s and %s", e.Component, e.Existing, e.Duplicate)
}

// IsDuplicateComponent returns true if the error is a duplicate component error.
func IsDuplicateComponent(err error) bool {
	var dupErr *DuplicateComponentError
	return errors.As(err, &dupErr)
}

// CircularDependencyError indicates the dependency graph among present plugins has a cycle.
type CircularDependencyError struct {
	// Components are the plugins that could not be ordered, in insertion order.
	Components []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected between plugins: %s", strings.Join(e.Components, ", "))
}

// IsCircularDependency returns true if the error is a circular dependency error.
func IsCircularDependency(err error) bool {
	var cycleErr *CircularDependencyError
	return errors.As(err, &cycleErr)
}

// UnknownPluginTypeError indicates a component whose type Moodle does not know.
type UnknownPluginTypeError struct {
	Component string
	Type      string
}

func (e *UnknownPluginTypeError) Error() string {
	return fmt.Sprintf("unknown plugin type %q for component %q", e.Type, e.Component)
}

// IsUnknownPluginType returns true if the error is an unknown plugin type error.
func IsUnknownPluginType(err error) bool {
	var typeErr *UnknownPluginTypeError
	return errors.As(err, &typeErr)
}
