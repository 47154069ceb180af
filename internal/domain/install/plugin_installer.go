package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/domain/moodle"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
)

// PluginInstaller copies the plugin under test, and any extra plugins, into the Moodle tree.
type PluginInstaller struct {
	rt              Runtime
	bridge          moodle.Bridge
	plugin          moodle.Plugin
	extraPluginsDir string
	dumper          *ConfigDumper
	prepared        []moodle.Plugin
}

// NewPluginInstaller creates a copy installer for plugin. extraPluginsDir may be empty.
// The dumper's settings are written to the installed plugin's ConfigFile.
func NewPluginInstaller(rt Runtime, bridge moodle.Bridge, plugin moodle.Plugin, extraPluginsDir string, dumper *ConfigDumper) *PluginInstaller {
	if dumper == nil {
		dumper = NewConfigDumper()
	}
	return &PluginInstaller{
		rt:              rt,
		bridge:          bridge,
		plugin:          plugin,
		extraPluginsDir: extraPluginsDir,
		dumper:          dumper,
	}
}

// Name returns "plugin".
func (i *PluginInstaller) Name() string { return "plugin" }

// StepCount returns 1.
func (i *PluginInstaller) StepCount() int { return 1 }

// Install copies every plugin in dependency order. No plugin is copied unless
// all of their install directories are free.
func (i *PluginInstaller) Install(ctx context.Context) error {
	i.rt.Output.Step(ctx, "Install plugins")

	plugins, err := i.ScanForPlugins()
	if err != nil {
		return err
	}
	sorted, err := plugins.SortByDependencies()
	if err != nil {
		return err
	}

	for _, p := range sorted.All() {
		if _, err := i.installDirectory(p); err != nil {
			return err
		}
	}

	for _, p := range sorted.All() {
		dir, err := i.InstallPluginIntoMoodle(ctx, p)
		if err != nil {
			return err
		}
		if p.Component() != i.plugin.Component() {
			continue
		}

		i.rt.Env.Set(EnvPluginDir, dir)
		if err := i.dumper.CreateConfigFile(ctx, i.rt.FS, i.rt.Output, filepath.Join(dir, moodle.ConfigFile)); err != nil {
			return err
		}
		installed, err := p.Relocate(dir).LoadIgnores()
		if err != nil {
			return err
		}
		i.prepared = []moodle.Plugin{installed}
	}
	return nil
}

// ScanForPlugins returns the plugin under test followed by one plugin per
// directory in the extra plugins directory.
func (i *PluginInstaller) ScanForPlugins() (*moodle.PluginCollection, error) {
	plugins, err := moodle.NewPluginCollection(i.plugin)
	if err != nil {
		return nil, err
	}
	if i.extraPluginsDir == "" {
		return plugins, nil
	}

	entries, err := os.ReadDir(i.extraPluginsDir)
	if err != nil {
		return nil, fmt.Errorf("reading extra plugins directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, err := moodle.NewPlugin(filepath.Join(i.extraPluginsDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("loading extra plugin %s: %w", entry.Name(), err)
		}
		if err := plugins.Add(p); err != nil {
			return nil, err
		}
	}
	return plugins, nil
}

// InstallPluginIntoMoodle mirrors p into its Moodle install directory and returns that directory.
// Returns DuplicateInstallError if the directory already exists.
func (i *PluginInstaller) InstallPluginIntoMoodle(ctx context.Context, p moodle.Plugin) (string, error) {
	dir, err := i.installDirectory(p)
	if err != nil {
		return "", err
	}

	i.rt.Output.Info(ctx, "Copying plugin",
		ports.F("component", p.Component()),
		ports.F("from", p.Directory()),
		ports.F("to", dir),
	)
	if err := i.rt.FS.Mirror(p.Directory(), dir); err != nil {
		return "", fmt.Errorf("copying %s into Moodle: %w", p.Component(), err)
	}
	return dir, nil
}

// installDirectory returns where p goes in Moodle, failing if that directory already exists.
func (i *PluginInstaller) installDirectory(p moodle.Plugin) (string, error) {
	dir, err := i.bridge.ComponentInstallDirectory(p.Component())
	if err != nil {
		return "", err
	}
	if i.rt.FS.Exists(dir) {
		return "", &DuplicateInstallError{Component: p.Component(), Path: dir}
	}
	return dir, nil
}

// PluginsToPrepare returns the installed plugin under test once Install has run.
func (i *PluginInstaller) PluginsToPrepare() []moodle.Plugin {
	return append([]moodle.Plugin(nil), i.prepared...)
}
