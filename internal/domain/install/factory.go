package install

import (
	"fmt"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/domain/moodle"
)

// FactoryOptions select and configure the standard installers.
type FactoryOptions struct {
	Moodle MoodleOptions
	// Database is created by the Moodle installer; nil skips creation.
	Database Database
	// PluginDir is the plugin under test. Ignored with NoPluginCopy.
	PluginDir string
	// ExtraPluginsDir holds extra plugins to copy, or plugins.txt with NoPluginCopy.
	ExtraPluginsDir string
	// Plugins lists plugins already inside Moodle, used with NoPluginCopy.
	Plugins      []string
	NoPluginCopy bool
	NoInit       bool
	NpmSudo      bool
	// Dumper holds settings written to the plugin's config file.
	Dumper *ConfigDumper
}

// Factory assembles the standard install pipeline.
type Factory struct {
	rt     Runtime
	bridge moodle.Bridge
	opts   FactoryOptions
}

// NewFactory creates a factory whose installers share rt and bridge.
func NewFactory(rt Runtime, bridge moodle.Bridge, opts FactoryOptions) *Factory {
	if opts.Dumper == nil {
		opts.Dumper = NewConfigDumper()
	}
	return &Factory{rt: rt, bridge: bridge, opts: opts}
}

// AddInstallers appends, in order, the Moodle, plugin and vendor installers and,
// unless NoInit is set, the test suite installer. When copying a plugin that has
// neither Behat features nor unit tests the test suite installer is left out.
func (f *Factory) AddInstallers(c *Collection) error {
	plugins, testable, err := f.pluginInstaller()
	if err != nil {
		return err
	}

	c.Add(NewMoodleInstaller(f.rt, f.bridge, f.opts.Database, f.opts.Moodle), plugins)
	c.Add(NewVendorInstaller(f.rt, f.bridge, plugins, f.opts.NpmSudo))
	if !f.opts.NoInit && testable {
		c.Add(NewTestSuiteInstaller(f.rt, f.bridge, plugins))
	}
	return nil
}

type pluginStage interface {
	Installer
	PluginProvider
}

// pluginInstaller also reports whether the plugins may need the test suite.
// Plugins found without copying are only known once the pipeline runs.
func (f *Factory) pluginInstaller() (pluginStage, bool, error) {
	if f.opts.NoPluginCopy {
		return NewPluginInstallerNoCopy(f.rt, f.bridge, f.opts.ExtraPluginsDir, f.opts.Plugins, f.opts.Dumper), true, nil
	}

	plugin, err := moodle.NewPlugin(f.opts.PluginDir)
	if err != nil {
		return nil, false, fmt.Errorf("loading plugin %s: %w", f.opts.PluginDir, err)
	}
	testable := plugin.HasBehatFeatures() || plugin.HasUnitTests()
	return NewPluginInstaller(f.rt, f.bridge, plugin, f.opts.ExtraPluginsDir, f.opts.Dumper), testable, nil
}
