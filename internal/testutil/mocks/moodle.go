package mocks

import (
	"path/filepath"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/domain/moodle"
)

// Moodle is a moodle.Bridge that installs a component type_name into dir/type/name.
type Moodle struct {
	dir          string
	BranchNumber int
}

// NewMoodle creates a dummy bridge rooted at dir, reporting branch 33.
func NewMoodle(dir string) *Moodle {
	return &Moodle{dir: dir, BranchNumber: 33}
}

// Directory returns the Moodle root.
func (m *Moodle) Directory() string {
	return m.dir
}

// SetDirectory replaces the Moodle root.
func (m *Moodle) SetDirectory(dir string) {
	m.dir = dir
}

// ComponentInstallDirectory returns dir/type/name.
func (m *Moodle) ComponentInstallDirectory(component string) (string, error) {
	pluginType, name := moodle.SplitComponent(component)
	return filepath.Join(m.dir, pluginType, name), nil
}

// Branch returns the configured branch.
func (m *Moodle) Branch() (int, error) {
	return m.BranchNumber, nil
}

// Ensure Moodle implements moodle.Bridge.
var _ moodle.Bridge = (*Moodle)(nil)
