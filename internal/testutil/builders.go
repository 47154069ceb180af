package testutil

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// PluginVersionFile renders a plugin version.php declaring component and dependencies.
func PluginVersionFile(component string, dependencies ...string) string {
	var sb strings.Builder

	sb.WriteString("<?php\n")
	sb.WriteString("defined('MOODLE_INTERNAL') || die();\n\n")
	sb.WriteString("$plugin->version   = 2017050100;\n")
	sb.WriteString("$plugin->requires  = 2015051100;\n")
	sb.WriteString(fmt.Sprintf("$plugin->component = '%s';\n", component))

	if len(dependencies) > 0 {
		sb.WriteString("$plugin->dependencies = [\n")
		for _, dep := range dependencies {
			sb.WriteString(fmt.Sprintf("    '%s' => ANY_VERSION,\n", dep))
		}
		sb.WriteString("];\n")
	}

	return sb.String()
}

// PluginBuilder writes a Moodle plugin source tree for tests.
type PluginBuilder struct {
	component    string
	dependencies []string
	files        map[string]string
}

// NewPluginBuilder creates a builder for a plugin with the given component.
func NewPluginBuilder(component string) *PluginBuilder {
	return &PluginBuilder{
		component: component,
		files:     make(map[string]string),
	}
}

// WithDependencies declares required components in version.php.
func (b *PluginBuilder) WithDependencies(components ...string) *PluginBuilder {
	b.dependencies = append(b.dependencies, components...)
	return b
}

// WithFile adds a file relative to the plugin root.
func (b *PluginBuilder) WithFile(rel, content string) *PluginBuilder {
	b.files[rel] = content
	return b
}

// WithBehatFeature adds tests/behat/<name>.feature.
func (b *PluginBuilder) WithBehatFeature(name string) *PluginBuilder {
	return b.WithFile("tests/behat/"+name+".feature", "Feature: "+name+"\n")
}

// WithUnitTest adds tests/<name>_test.php.
func (b *PluginBuilder) WithUnitTest(name string) *PluginBuilder {
	return b.WithFile("tests/"+name+"_test.php", "<?php\nclass "+name+"_testcase extends advanced_testcase {}\n")
}

// WithPackageJSON adds a package.json at the plugin root.
func (b *PluginBuilder) WithPackageJSON() *PluginBuilder {
	return b.WithFile("package.json", "{\n  \"name\": \""+b.component+"\",\n  \"private\": true\n}\n")
}

// WithPHPUnitConfig adds phpunit.xml with the given content.
func (b *PluginBuilder) WithPHPUnitConfig(content string) *PluginBuilder {
	return b.WithFile("phpunit.xml", content)
}

// WithCIConfig adds .moodle-plugin-ci.yml with the given YAML.
func (b *PluginBuilder) WithCIConfig(content string) *PluginBuilder {
	return b.WithFile(".moodle-plugin-ci.yml", content)
}

// Files returns the relative paths the builder will write, including version.php.
func (b *PluginBuilder) Files() []string {
	paths := []string{"version.php"}
	for rel := range b.files {
		paths = append(paths, rel)
	}
	sort.Strings(paths)
	return paths
}

// Build writes the plugin into dir and returns dir.
func (b *PluginBuilder) Build(t *testing.T, dir string) string {
	t.Helper()

	WriteTempFile(t, dir, "version.php", PluginVersionFile(b.component, b.dependencies...))
	for rel, content := range b.files {
		WriteTempFile(t, dir, rel, content)
	}
	return dir
}

// BuildIn writes the plugin into parent/<name> where name follows the first underscore.
func (b *PluginBuilder) BuildIn(t *testing.T, parent string) string {
	t.Helper()

	name := b.component
	if i := strings.Index(name, "_"); i >= 0 {
		name = name[i+1:]
	}
	return b.Build(t, filepath.Join(parent, name))
}

// MoodleBuilder writes a minimal Moodle checkout for tests.
type MoodleBuilder struct {
	branch int
	files  map[string]string
}

// NewMoodleBuilder creates a builder for a Moodle tree on the given branch.
func NewMoodleBuilder(branch int) *MoodleBuilder {
	return &MoodleBuilder{branch: branch, files: make(map[string]string)}
}

// WithFile adds a file relative to the Moodle root.
func (b *MoodleBuilder) WithFile(rel, content string) *MoodleBuilder {
	b.files[rel] = content
	return b
}

// WithPlugin writes a plugin into the Moodle tree at rel, e.g. local/travis.
func (b *MoodleBuilder) WithPlugin(rel string, plugin *PluginBuilder) *MoodleBuilder {
	b.files[rel+"/version.php"] = PluginVersionFile(plugin.component, plugin.dependencies...)
	for file, content := range plugin.files {
		b.files[rel+"/"+file] = content
	}
	return b
}

// Build writes the Moodle tree into dir and returns dir.
func (b *MoodleBuilder) Build(t *testing.T, dir string) string {
	t.Helper()

	WriteTempFile(t, dir, "version.php", fmt.Sprintf("<?php\n$version  = 2017051500.00;\n$release  = '3.3';\n$branch   = '%d';\n$maturity = MATURITY_STABLE;\n", b.branch))
	for rel, content := range b.files {
		WriteTempFile(t, dir, rel, content)
	}
	return dir
}
