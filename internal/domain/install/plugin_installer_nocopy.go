package install

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/domain/moodle"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
)

// PluginsManifest lists extra plugins, one per line, in the extra plugins directory.
const PluginsManifest = "plugins.txt"

// PluginInstallerNoCopy registers plugins that already live inside the Moodle tree.
type PluginInstallerNoCopy struct {
	rt              Runtime
	bridge          moodle.Bridge
	extraPluginsDir string
	names           []string
	dumper          *ConfigDumper
	prepared        []moodle.Plugin
}

// NewPluginInstallerNoCopy creates a no-copy installer for names, paths relative to
// the Moodle root, plus any listed in extraPluginsDir/plugins.txt.
func NewPluginInstallerNoCopy(rt Runtime, bridge moodle.Bridge, extraPluginsDir string, names []string, dumper *ConfigDumper) *PluginInstallerNoCopy {
	if dumper == nil {
		dumper = NewConfigDumper()
	}
	return &PluginInstallerNoCopy{
		rt:              rt,
		bridge:          bridge,
		extraPluginsDir: extraPluginsDir,
		names:           names,
		dumper:          dumper,
	}
}

// Name returns "plugin-nocopy".
func (i *PluginInstallerNoCopy) Name() string { return "plugin-nocopy" }

// StepCount returns 2.
func (i *PluginInstallerNoCopy) StepCount() int { return 2 }

// Install discovers the plugins and writes their paths to the Moodle root ConfigFile.
func (i *PluginInstallerNoCopy) Install(ctx context.Context) error {
	i.rt.Output.Step(ctx, "Scanning plugins")

	plugins, err := i.ScanForPlugins(ctx)
	if err != nil {
		return err
	}
	sorted, err := plugins.SortByDependencies()
	if err != nil {
		return err
	}

	i.rt.Output.Step(ctx, "Dump configuration")

	root, err := i.rt.FS.Abs(i.bridge.Directory())
	if err != nil {
		return fmt.Errorf("resolving Moodle directory: %w", err)
	}
	list := make([]string, 0, sorted.Len())
	for _, p := range sorted.All() {
		rel, err := filepath.Rel(root, p.Directory())
		if err != nil {
			return fmt.Errorf("relating %s to Moodle root: %w", p.Directory(), err)
		}
		list = append(list, filepath.ToSlash(rel))
	}

	i.dumper.AddSection("plugins", "list", list)
	if err := i.dumper.CreateConfigFile(ctx, i.rt.FS, i.rt.Output, filepath.Join(root, moodle.ConfigFile)); err != nil {
		return err
	}

	i.prepared = sorted.All()
	return nil
}

// ScanForPlugins resolves the explicit names and those in plugins.txt to plugins
// inside the Moodle tree. Duplicate names are collapsed.
func (i *PluginInstallerNoCopy) ScanForPlugins(ctx context.Context) (*moodle.PluginCollection, error) {
	names, err := i.pluginNames(ctx)
	if err != nil {
		return nil, err
	}

	plugins, err := moodle.NewPluginCollection()
	if err != nil {
		return nil, err
	}
	root, err := i.rt.FS.Abs(i.bridge.Directory())
	if err != nil {
		return nil, fmt.Errorf("resolving Moodle directory: %w", err)
	}
	for _, name := range names {
		path := filepath.Join(i.bridge.Directory(), filepath.FromSlash(name))
		if !i.rt.FS.IsDir(path) {
			return nil, &PluginNotFoundError{Name: name, Path: path}
		}
		abs, err := i.rt.FS.Abs(path)
		if err != nil {
			return nil, err
		}
		if !within(root, abs) {
			return nil, &PluginNotFoundError{Name: name, Path: abs}
		}
		p, err := moodle.NewPlugin(abs)
		if err != nil {
			return nil, fmt.Errorf("loading plugin %s: %w", name, err)
		}
		if err := plugins.Add(p); err != nil {
			return nil, err
		}
	}
	return plugins, nil
}

func (i *PluginInstallerNoCopy) pluginNames(ctx context.Context) ([]string, error) {
	names := append([]string(nil), i.names...)

	manifest := filepath.Join(i.extraPluginsDir, PluginsManifest)
	if i.extraPluginsDir != "" && i.rt.FS.IsFile(manifest) {
		data, err := i.rt.FS.ReadFile(manifest)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", manifest, err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				names = append(names, line)
			}
		}
	}

	seen := make(map[string]bool, len(names))
	unique := names[:0]
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		unique = append(unique, name)
	}
	if len(unique) == 0 {
		i.rt.Output.Warn(ctx, "No plugins to register", ports.F("manifest", PluginsManifest))
	}
	return unique, nil
}

// PluginsToPrepare returns the discovered plugins in dependency order once Install has run.
func (i *PluginInstallerNoCopy) PluginsToPrepare() []moodle.Plugin {
	return append([]moodle.Plugin(nil), i.prepared...)
}

// within reports whether path is root or lies below it.
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
