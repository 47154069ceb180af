package install

import (
	"bytes"
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
)

// ConfigDumper accumulates section/key/value settings and writes them as YAML.
// Sections and keys keep their insertion order.
type ConfigDumper struct {
	order    []string
	sections map[string]*configSection
}

type configSection struct {
	keys   []string
	values map[string]interface{}
}

// NewConfigDumper creates an empty ConfigDumper.
func NewConfigDumper() *ConfigDumper {
	return &ConfigDumper{sections: make(map[string]*configSection)}
}

// AddSection sets key within section to value, a scalar or a slice of scalars.
// Setting an existing key replaces its value in place.
func (d *ConfigDumper) AddSection(section, key string, value interface{}) {
	s, ok := d.sections[section]
	if !ok {
		s = &configSection{values: make(map[string]interface{})}
		d.sections[section] = s
		d.order = append(d.order, section)
	}
	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// HasConfig reports whether anything was added.
func (d *ConfigDumper) HasConfig() bool {
	return len(d.order) > 0
}

// Dump renders the accumulated settings as YAML.
func (d *ConfigDumper) Dump() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range d.order {
		s := d.sections[name]
		section := &yaml.Node{Kind: yaml.MappingNode}
		for _, key := range s.keys {
			var value yaml.Node
			if err := value.Encode(s.values[key]); err != nil {
				return nil, fmt.Errorf("encoding %s.%s: %w", name, key, err)
			}
			section.Content = append(section.Content, scalarNode(key), &value)
		}
		root.Content = append(root.Content, scalarNode(name), section)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CreateConfigFile writes the settings to path unless path already exists or
// nothing was added. Both skips are logged and are not errors.
func (d *ConfigDumper) CreateConfigFile(ctx context.Context, fs ports.FileSystem, output *Output, path string) error {
	if fs.Exists(path) {
		output.Debug(ctx, "Config file already exists, skipping creation of config file", ports.F("path", path))
		return nil
	}
	if !d.HasConfig() {
		output.Debug(ctx, "No config to write out, skipping creation of config file", ports.F("path", path))
		return nil
	}

	data, err := d.Dump()
	if err != nil {
		return fmt.Errorf("dumping config for %s: %w", path, err)
	}
	if err := fs.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}

	output.Debug(ctx, "Created config file", ports.F("path", path))
	return nil
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}
