// Package moodle models Moodle plugins, plugin collections and the bridge to a Moodle checkout.
package moodle

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the per-plugin CI configuration file name.
const ConfigFile = ".moodle-plugin-ci.yml"

// Plugin describes a single Moodle plugin source tree.
// The value is immutable; use Relocate to obtain a descriptor for a new location.
type Plugin struct {
	directory    string
	component    string
	dependencies []string
	ignores      map[string]IgnoreFilter
}

// NewPlugin loads a plugin descriptor from dir.
// The component and dependencies come from version.php, ignore filters from ConfigFile.
func NewPlugin(dir string) (Plugin, error) {
	meta, err := readPluginMetadata(dir)
	if err != nil {
		return Plugin{}, err
	}

	return Plugin{
		directory:    dir,
		component:    meta.Component,
		dependencies: meta.Dependencies,
	}.LoadIgnores()
}

// NewPluginFromMeta builds a descriptor without reading version.php.
func NewPluginFromMeta(dir, component string, dependencies ...string) Plugin {
	return Plugin{
		directory:    dir,
		component:    component,
		dependencies: append([]string(nil), dependencies...),
	}
}

// Directory returns the plugin root.
func (p Plugin) Directory() string {
	return p.directory
}

// Component returns the frankenstyle component name, e.g. local_travis.
func (p Plugin) Component() string {
	return p.component
}

// Dependencies returns the components this plugin requires.
func (p Plugin) Dependencies() []string {
	return append([]string(nil), p.dependencies...)
}

// Relocate returns a copy of the descriptor pointing at dir.
func (p Plugin) Relocate(dir string) Plugin {
	p.directory = dir
	return p
}

// LoadIgnores returns a copy with ignore filters read from ConfigFile in the plugin directory.
func (p Plugin) LoadIgnores() (Plugin, error) {
	ignores, err := readIgnores(filepath.Join(p.directory, ConfigFile))
	if err != nil {
		return Plugin{}, err
	}
	p.ignores = ignores
	return p, nil
}

// HasBehatFeatures reports whether tests/behat contains any .feature files.
func (p Plugin) HasBehatFeatures() bool {
	matches, err := filepath.Glob(filepath.Join(p.directory, "tests", "behat", "*.feature"))
	return err == nil && len(matches) > 0
}

// HasUnitTests reports whether the tests directory contains any *_test.php files.
func (p Plugin) HasUnitTests() bool {
	found := false
	_ = filepath.WalkDir(filepath.Join(p.directory, "tests"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), "_test.php") {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	return found
}

// HasNodeDependencies reports whether the plugin ships a package.json.
func (p Plugin) HasNodeDependencies() bool {
	info, err := os.Stat(filepath.Join(p.directory, "package.json"))
	return err == nil && info.Mode().IsRegular()
}

// Ignores returns the ignore filter for the given context.
// A context specific section wins over the generic one.
func (p Plugin) Ignores(context string) IgnoreFilter {
	if context != "" {
		if filter, ok := p.ignores["filter-"+context]; ok {
			return filter
		}
	}
	return p.ignores["filter"]
}

// FileQuery selects plugin files by base name pattern and relative path.
type FileQuery struct {
	Names    []string
	NotNames []string
	NotPaths []string
}

// RelativeFiles lists the plugin's regular files matching q, relative to the plugin root
// with forward slashes, honouring the plugin's ignore filter for context. The result is sorted.
func (p Plugin) RelativeFiles(context string, q FileQuery) ([]string, error) {
	ignore := p.Ignores(context)
	q.NotNames = append(append([]string(nil), q.NotNames...), ignore.NotNames...)
	q.NotPaths = append(append([]string(nil), q.NotPaths...), ignore.NotPaths...)

	var files []string
	err := filepath.WalkDir(p.directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(p.directory, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if q.matches(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing files of %s: %w", p.component, err)
	}

	sort.Strings(files)
	return files, nil
}

func (q FileQuery) matches(rel string) bool {
	name := filepath.Base(rel)
	if len(q.Names) > 0 && !matchAnyName(q.Names, name) {
		return false
	}
	if matchAnyName(q.NotNames, name) {
		return false
	}
	for _, p := range q.NotPaths {
		if matchPath(p, rel) {
			return false
		}
	}
	return true
}

func matchAnyName(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// matchPath reports whether rel is p, lives under p, or has p as an inner directory.
func matchPath(p, rel string) bool {
	p = strings.Trim(filepath.ToSlash(p), "/")
	if p == "" {
		return false
	}
	return rel == p || strings.HasPrefix(rel, p+"/") || strings.Contains(rel, "/"+p+"/")
}

// IgnoreFilter holds the paths and names a plugin excludes from tooling.
type IgnoreFilter struct {
	NotPaths []string `yaml:"notPaths"`
	NotNames []string `yaml:"notNames"`
}

func readIgnores(path string) (map[string]IgnoreFilter, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	ignores := make(map[string]IgnoreFilter)
	for section, node := range raw {
		if section != "filter" && !strings.HasPrefix(section, "filter-") {
			continue
		}
		var filter IgnoreFilter
		if err := node.Decode(&filter); err != nil {
			return nil, fmt.Errorf("parsing %s section %q: %w", path, section, err)
		}
		ignores[section] = filter
	}
	return ignores, nil
}
