package moodle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Bridge exposes what the install pipeline needs to know about a Moodle checkout.
type Bridge interface {
	// Directory returns the Moodle root.
	Directory() string
	// SetDirectory replaces the Moodle root, typically with its absolute form.
	SetDirectory(dir string)
	// ComponentInstallDirectory returns where a component lives inside the Moodle tree.
	ComponentInstallDirectory(component string) (string, error)
	// Branch returns the Moodle branch number, e.g. 33.
	Branch() (int, error)
}

// defaultPluginTypes maps plugin types to their directory relative to the Moodle root.
// Used when lib/components.json is not available.
var defaultPluginTypes = map[string]string{
	"antivirus":          "lib/antivirus",
	"availability":       "availability/condition",
	"qtype":              "question/type",
	"mod":                "mod",
	"auth":               "auth",
	"calendartype":       "calendar/type",
	"enrol":              "enrol",
	"message":            "message/output",
	"block":              "blocks",
	"media":              "media/player",
	"filter":             "filter",
	"editor":             "lib/editor",
	"format":             "course/format",
	"dataformat":         "dataformat",
	"profilefield":       "user/profile/field",
	"report":             "report",
	"coursereport":       "course/report",
	"gradeexport":        "grade/export",
	"gradeimport":        "grade/import",
	"gradereport":        "grade/report",
	"gradingform":        "grade/grading/form",
	"mlbackend":          "lib/mlbackend",
	"mnetservice":        "mnet/service",
	"webservice":         "webservice",
	"repository":         "repository",
	"portfolio":          "portfolio",
	"search":             "search/engine",
	"qbehaviour":         "question/behaviour",
	"qformat":            "question/format",
	"plagiarism":         "plagiarism",
	"tool":               "admin/tool",
	"cachestore":         "cache/stores",
	"cachelock":          "cache/locks",
	"fileconverter":      "files/converter",
	"theme":              "theme",
	"local":              "local",
	"assignsubmission":   "mod/assign/submission",
	"assignfeedback":     "mod/assign/feedback",
	"atto":               "lib/editor/atto/plugins",
	"tinymce":            "lib/editor/tinymce/plugins",
	"logstore":           "admin/tool/log/store",
	"quiz":               "mod/quiz/report",
	"quizaccess":         "mod/quiz/accessrule",
	"workshopform":       "mod/workshop/form",
	"workshopallocation": "mod/workshop/allocation",
	"workshopeval":       "mod/workshop/eval",
	"datafield":          "mod/data/field",
	"datapreset":         "mod/data/preset",
	"scormreport":        "mod/scorm/report",
	"booktool":           "mod/book/tool",
	"ltisource":          "mod/lti/source",
	"ltiservice":         "mod/lti/service",
}

// Moodle is the Bridge for a real Moodle checkout on disk.
type Moodle struct {
	dir         string
	pluginTypes map[string]string
}

// NewMoodle creates a bridge rooted at dir.
func NewMoodle(dir string) *Moodle {
	return &Moodle{dir: dir}
}

// Directory returns the Moodle root.
func (m *Moodle) Directory() string {
	return m.dir
}

// SetDirectory replaces the Moodle root and forgets cached plugin types.
func (m *Moodle) SetDirectory(dir string) {
	m.dir = dir
	m.pluginTypes = nil
}

// ComponentInstallDirectory returns the absolute directory for component.
func (m *Moodle) ComponentInstallDirectory(component string) (string, error) {
	pluginType, name := SplitComponent(component)

	types, err := m.loadPluginTypes()
	if err != nil {
		return "", err
	}

	rel, ok := types[pluginType]
	if !ok {
		return "", &UnknownPluginTypeError{Component: component, Type: pluginType}
	}
	return filepath.Join(m.dir, filepath.FromSlash(rel), name), nil
}

// Branch reads $branch from Moodle's version.php.
func (m *Moodle) Branch() (int, error) {
	return readBranch(m.dir)
}

func (m *Moodle) loadPluginTypes() (map[string]string, error) {
	if m.pluginTypes != nil {
		return m.pluginTypes, nil
	}

	path := filepath.Join(m.dir, "lib", "components.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		m.pluginTypes = defaultPluginTypes
		return m.pluginTypes, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var components struct {
		PluginTypes map[string]string `json:"plugintypes"`
	}
	if err := json.Unmarshal(data, &components); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	m.pluginTypes = components.PluginTypes
	return m.pluginTypes, nil
}

// SplitComponent splits a component into plugin type and name.
// A component without an underscore is treated as an activity module.
func SplitComponent(component string) (pluginType, name string) {
	pluginType, name, found := strings.Cut(component, "_")
	if !found {
		return "mod", component
	}
	return pluginType, name
}

// Ensure Moodle implements Bridge.
var _ Bridge = (*Moodle)(nil)
