package install

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/domain/moodle"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
	"github.com/felixgeelhaar/moodle-plugin-ci/internal/templates"
)

// SeleniumURL is the Selenium server downloaded for Behat runs.
const SeleniumURL = "http://selenium-release.storage.googleapis.com/2.53/selenium-server-standalone-2.53.1.jar"

const seleniumTimeout = 120 * time.Second

var filterBlock = regexp.MustCompile(`(?s)<filter>.*?</filter>`)

// dbCoverageExceptions are db/ files that still count towards coverage.
var dbCoverageExceptions = []string{"caches.php", "events.php", "upgradelib.php"}

// TestSuiteInstaller initialises Behat and PHPUnit and scopes each plugin's coverage to its own files.
type TestSuiteInstaller struct {
	rt      Runtime
	bridge  moodle.Bridge
	plugins PluginProvider
}

// NewTestSuiteInstaller creates a test suite installer for the provided plugins.
func NewTestSuiteInstaller(rt Runtime, bridge moodle.Bridge, plugins PluginProvider) *TestSuiteInstaller {
	return &TestSuiteInstaller{rt: rt, bridge: bridge, plugins: plugins}
}

// Name returns "testsuite".
func (i *TestSuiteInstaller) Name() string { return "testsuite" }

// StepCount returns 2.
func (i *TestSuiteInstaller) StepCount() int { return 2 }

// Install runs the Behat and PHPUnit installs, builds their configs and injects
// the coverage filter into each plugin's phpunit.xml.
func (i *TestSuiteInstaller) Install(ctx context.Context) error {
	plugins := i.plugins.PluginsToPrepare()

	i.rt.Output.Step(ctx, "Initialize test suite")
	install := append(i.behatInstallCommands(ctx, plugins), i.unitTestInstallCommands(ctx, plugins)...)
	if _, err := i.rt.Exec.MustRunAll(ctx, install); err != nil {
		return fmt.Errorf("initializing test suite: %w", err)
	}

	i.rt.Output.Step(ctx, "Building configs")
	if _, err := i.rt.Exec.MustRunAll(ctx, i.postInstallCommands(ctx, plugins)); err != nil {
		return fmt.Errorf("building test configs: %w", err)
	}

	return i.InjectPHPUnitFilter(ctx, plugins)
}

func (i *TestSuiteInstaller) behatUtility() string {
	return filepath.Join(i.bridge.Directory(), "admin", "tool", "behat", "cli", "util_single_run.php")
}

func (i *TestSuiteInstaller) phpunitUtility() string {
	return filepath.Join(i.bridge.Directory(), "admin", "tool", "phpunit", "cli", "util.php")
}

func (i *TestSuiteInstaller) seleniumJarPath() string {
	return filepath.Join(i.bridge.Directory(), "selenium.jar")
}

func (i *TestSuiteInstaller) behatInstallCommands(ctx context.Context, plugins []moodle.Plugin) []ports.Command {
	if !anyPlugin(plugins, hasBehatFeatures) {
		return nil
	}
	i.rt.Output.Debug(ctx, "Download Selenium, start servers and initialize Behat")

	jar := i.seleniumJarPath()
	i.rt.Env.Set(EnvSeleniumJar, jar)
	i.rt.Env.Set(EnvStartBehatServers, "YES")

	return []ports.Command{
		ports.NewCommand("curl", "-o", jar, SeleniumURL).WithTimeout(seleniumTimeout),
		ports.NewCommand("php", i.behatUtility(), "--install"),
	}
}

func (i *TestSuiteInstaller) unitTestInstallCommands(ctx context.Context, plugins []moodle.Plugin) []ports.Command {
	if !anyPlugin(plugins, hasUnitTests) {
		return nil
	}
	i.rt.Output.Debug(ctx, "Initialize PHPUnit")
	return []ports.Command{ports.NewCommand("php", i.phpunitUtility(), "--install")}
}

func (i *TestSuiteInstaller) postInstallCommands(ctx context.Context, plugins []moodle.Plugin) []ports.Command {
	var cmds []ports.Command
	if anyPlugin(plugins, hasBehatFeatures) {
		i.rt.Output.Debug(ctx, "Enabling Behat")
		cmds = append(cmds, ports.NewCommand("php", i.behatUtility(), "--enable", "--add-core-features-to-theme"))
	}
	if anyPlugin(plugins, hasUnitTests) {
		i.rt.Output.Debug(ctx, "Build PHPUnit config")
		cmds = append(cmds,
			ports.NewCommand("php", i.phpunitUtility(), "--buildconfig"),
			ports.NewCommand("php", i.phpunitUtility(), "--buildcomponentconfigs"),
		)
	}
	return cmds
}

// InjectPHPUnitFilter writes a coverage whitelist of each plugin's own files into its phpunit.xml.
// Plugins without a phpunit.xml are skipped.
func (i *TestSuiteInstaller) InjectPHPUnitFilter(ctx context.Context, plugins []moodle.Plugin) error {
	for _, p := range plugins {
		config := filepath.Join(p.Directory(), "phpunit.xml")
		if !i.rt.FS.IsFile(config) {
			i.rt.Output.Debug(ctx, "No phpunit.xml, skipping coverage filter", ports.F("component", p.Component()))
			continue
		}

		files, err := CoverageFiles(p)
		if err != nil {
			return err
		}
		fragment, err := templates.GenerateCoverageFilter(files)
		if err != nil {
			return fmt.Errorf("rendering coverage filter: %w", err)
		}

		subject, err := i.rt.FS.ReadFile(config)
		if err != nil {
			return fmt.Errorf("reading %s: %w", config, err)
		}
		contents, err := SpliceFilter(config, string(subject), fragment)
		if err != nil {
			return err
		}
		if err := i.rt.FS.WriteFile(config, []byte(contents), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", config, err)
		}
		i.rt.Output.Debug(ctx, "Injected coverage filter", ports.F("path", config), ports.F("files", len(files)))
	}
	return nil
}

// SpliceFilter replaces the single <filter> block of a phpunit.xml document with fragment,
// or inserts fragment before </phpunit> when there is none. Any other match count is a
// ConfigPatchError naming path.
func SpliceFilter(path, subject, fragment string) (string, error) {
	blocks := filterBlock.FindAllStringIndex(subject, -1)
	switch len(blocks) {
	case 1:
		start, end := blocks[0][0], blocks[0][1]
		return subject[:start] + strings.TrimSpace(fragment) + subject[end:], nil
	case 0:
		if n := strings.Count(subject, "</phpunit>"); n != 1 {
			return "", &ConfigPatchError{Path: path, Matches: n}
		}
		return strings.Replace(subject, "</phpunit>", fragment+"</phpunit>", 1), nil
	default:
		return "", &ConfigPatchError{Path: path, Matches: len(blocks)}
	}
}

// CoverageFiles lists the PHP files of p that count towards coverage. Tests, version.php,
// settings.php, lang and vendor are excluded, as is db/ apart from the files that hold code.
func CoverageFiles(p moodle.Plugin) ([]string, error) {
	files, err := p.RelativeFiles("phpunit", moodle.FileQuery{
		Names:    []string{"*.php"},
		NotNames: []string{"*_test.php", moodle.VersionFile, "settings.php"},
		NotPaths: []string{"lang", "vendor"},
	})
	if err != nil {
		return nil, err
	}

	kept := files[:0]
	for _, f := range files {
		if isDBDefinition(f) {
			continue
		}
		kept = append(kept, f)
	}
	return kept, nil
}

func isDBDefinition(rel string) bool {
	if !strings.HasPrefix(rel, "db/") || !strings.HasSuffix(rel, ".php") {
		return false
	}
	name := filepath.Base(rel)
	for _, keep := range dbCoverageExceptions {
		if name == keep {
			return false
		}
	}
	return true
}
