package install

import (
	"context"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/domain/execution"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/domain/moodle"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
)

// Installer is one stage of the install pipeline.
type Installer interface {
	// Name identifies the installer in logs.
	Name() string
	// Install performs the stage, calling Output.Step exactly StepCount times on success.
	Install(ctx context.Context) error
	// StepCount is the number of steps Install reports.
	StepCount() int
}

// PluginProvider supplies the plugins that later stages prepare for testing.
// Values are read when a stage runs, after earlier stages have relocated plugins.
type PluginProvider interface {
	PluginsToPrepare() []moodle.Plugin
}

// StaticPlugins is a PluginProvider over a fixed list.
type StaticPlugins []moodle.Plugin

// PluginsToPrepare returns the list.
func (s StaticPlugins) PluginsToPrepare() []moodle.Plugin {
	return s
}

// Runtime holds the collaborators shared by every installer of a run.
type Runtime struct {
	Output *Output
	Env    *Env
	FS     ports.FileSystem
	Exec   *execution.Executor
}

// NewRuntime creates a Runtime with an empty Env. Every command run through
// the returned Exec carries the variables recorded in Env so far.
func NewRuntime(output *Output, fs ports.FileSystem, exec *execution.Executor) Runtime {
	env := NewEnv()
	return Runtime{
		Output: output,
		Env:    env,
		FS:     fs,
		Exec:   exec.WithEnv(env.Pairs),
	}
}

func anyPlugin(plugins []moodle.Plugin, pred func(moodle.Plugin) bool) bool {
	for _, p := range plugins {
		if pred(p) {
			return true
		}
	}
	return false
}

func hasBehatFeatures(p moodle.Plugin) bool { return p.HasBehatFeatures() }

func hasUnitTests(p moodle.Plugin) bool { return p.HasUnitTests() }

var (
	_ Installer      = (*MoodleInstaller)(nil)
	_ Installer      = (*PluginInstaller)(nil)
	_ Installer      = (*PluginInstallerNoCopy)(nil)
	_ Installer      = (*VendorInstaller)(nil)
	_ Installer      = (*TestSuiteInstaller)(nil)
	_ PluginProvider = (*PluginInstaller)(nil)
	_ PluginProvider = (*PluginInstallerNoCopy)(nil)
)
