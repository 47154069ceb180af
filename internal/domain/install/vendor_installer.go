package install

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/domain/moodle"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
)

// VendorInstaller installs composer and npm dependencies for Moodle and the prepared plugins.
type VendorInstaller struct {
	rt      Runtime
	bridge  moodle.Bridge
	plugins PluginProvider
	npmSudo bool
}

// NewVendorInstaller creates a vendor installer. With npmSudo the global npm install runs under sudo.
func NewVendorInstaller(rt Runtime, bridge moodle.Bridge, plugins PluginProvider, npmSudo bool) *VendorInstaller {
	return &VendorInstaller{rt: rt, bridge: bridge, plugins: plugins, npmSudo: npmSudo}
}

// Name returns "vendor".
func (i *VendorInstaller) Name() string { return "vendor" }

// StepCount returns 2.
func (i *VendorInstaller) StepCount() int { return 2 }

// Install runs the global installs, then npm install for Moodle and every plugin
// shipping a package.json, then grunt ignorefiles.
func (i *VendorInstaller) Install(ctx context.Context) error {
	dir := i.bridge.Directory()
	plugins := i.plugins.PluginsToPrepare()

	i.rt.Output.Step(ctx, "Install global dependencies")
	if _, err := i.rt.Exec.MustRunAll(ctx, i.globalCommands(ctx, dir, plugins)); err != nil {
		return fmt.Errorf("installing global dependencies: %w", err)
	}

	i.rt.Output.Step(ctx, "Install npm dependencies")
	cmds := []ports.Command{npmInstall().InDir(dir)}
	for _, p := range plugins {
		if p.HasNodeDependencies() {
			cmds = append(cmds, npmInstall().InDir(p.Directory()))
		}
	}
	cmds = append(cmds, ports.NewCommand("grunt", "ignorefiles").InDir(dir))

	for _, cmd := range cmds {
		if _, err := i.rt.Exec.MustRun(ctx, cmd); err != nil {
			return fmt.Errorf("installing npm dependencies: %w", err)
		}
	}
	return nil
}

func (i *VendorInstaller) globalCommands(ctx context.Context, dir string, plugins []moodle.Plugin) []ports.Command {
	var cmds []ports.Command
	if anyPlugin(plugins, hasUnitTests) || anyPlugin(plugins, hasBehatFeatures) {
		i.rt.Output.Info(ctx, "Install composer packages on the Moodle directory", ports.F("dir", dir))
		cmds = append(cmds, ports.NewCommand("composer", "install", "--no-interaction", "--prefer-dist").InDir(dir))
	}

	grunt := ports.NewCommand("npm", "install", "-g", "--no-progress", "grunt")
	if i.npmSudo {
		grunt = ports.NewCommand("sudo", append([]string{grunt.Name}, grunt.Args...)...)
	}
	return append(cmds, grunt)
}

func npmInstall() ports.Command {
	return ports.NewCommand("npm", "install", "--no-progress")
}
