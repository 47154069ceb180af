// Package config loads install profiles and database option files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for profile files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported profile format")

// Format is a profile file format.
type Format string

// Supported profile formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Profile holds install defaults. Command line flags and environment variables win over it.
type Profile struct {
	Moodle   MoodleProfile   `yaml:"moodle" toml:"moodle"`
	Database DatabaseProfile `yaml:"database" toml:"database"`
	Plugins  PluginsProfile  `yaml:"plugins" toml:"plugins"`
	NoInit   bool            `yaml:"no_init" toml:"no_init"`
	NpmSudo  bool            `yaml:"npm_sudo" toml:"npm_sudo"`
}

// MoodleProfile configures the Moodle checkout.
type MoodleProfile struct {
	Repo    string `yaml:"repo" toml:"repo"`
	Branch  string `yaml:"branch" toml:"branch"`
	Dir     string `yaml:"dir" toml:"dir"`
	DataDir string `yaml:"data_dir" toml:"data_dir"`
	WWWRoot string `yaml:"wwwroot" toml:"wwwroot"`
}

// DatabaseProfile configures the Moodle database.
type DatabaseProfile struct {
	Type string `yaml:"type" toml:"type"`
	Host string `yaml:"host" toml:"host"`
	Port string `yaml:"port" toml:"port"`
	Name string `yaml:"name" toml:"name"`
	User string `yaml:"user" toml:"user"`
	Pass string `yaml:"pass" toml:"pass"`
}

// PluginsProfile configures plugin discovery and ignore filters.
type PluginsProfile struct {
	ExtraDir string   `yaml:"extra_dir" toml:"extra_dir"`
	NoCopy   bool     `yaml:"no_copy" toml:"no_copy"`
	List     []string `yaml:"list" toml:"list"`
	NotPaths []string `yaml:"not_paths" toml:"not_paths"`
	NotNames []string `yaml:"not_names" toml:"not_names"`
}

// FormatFromPath picks the profile format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadProfile reads the profile at path.
func LoadProfile(path string) (*Profile, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	profile, err := ParseProfile(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return profile, nil
}

// ParseProfile decodes a profile in the given format.
func ParseProfile(data []byte, format Format) (*Profile, error) {
	var profile Profile
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &profile); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &profile); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return &profile, nil
}
