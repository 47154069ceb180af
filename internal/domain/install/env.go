package install

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
)

// Environment variables recorded for later pipeline stages and CI scripts.
const (
	EnvMoodleDir         = "MOODLE_DIR"
	EnvPluginDir         = "PLUGIN_DIR"
	EnvSeleniumJar       = "MOODLE_SELENIUM_JAR"
	EnvStartBehatServers = "MOODLE_START_BEHAT_SERVERS"
)

// Env is an ordered map of environment variables built up during a run.
type Env struct {
	names  []string
	values map[string]string
}

// NewEnv creates an empty Env.
func NewEnv() *Env {
	return &Env{values: make(map[string]string)}
}

// Set records name=value. An existing name keeps its position.
func (e *Env) Set(name, value string) {
	if _, exists := e.values[name]; !exists {
		e.names = append(e.names, name)
	}
	e.values[name] = value
}

// Get returns the value recorded for name.
func (e *Env) Get(name string) (string, bool) {
	value, ok := e.values[name]
	return value, ok
}

// Len returns the number of variables.
func (e *Env) Len() int {
	return len(e.names)
}

// Names returns the variable names in the order they were first set.
func (e *Env) Names() []string {
	return append([]string(nil), e.names...)
}

// Map returns a copy of the variables.
func (e *Env) Map() map[string]string {
	m := make(map[string]string, len(e.values))
	for k, v := range e.values {
		m[k] = v
	}
	return m
}

// Pairs returns KEY=value entries suitable for ports.Command.Env.
func (e *Env) Pairs() []string {
	pairs := make([]string, 0, len(e.names))
	for _, name := range e.names {
		pairs = append(pairs, name+"="+e.values[name])
	}
	return pairs
}

// EnvDumper writes an Env as a dotenv file that shell scripts can source.
type EnvDumper struct {
	fs ports.FileSystem
}

// NewEnvDumper creates an EnvDumper writing through fs.
func NewEnvDumper(fs ports.FileSystem) *EnvDumper {
	return &EnvDumper{fs: fs}
}

// Format renders env as KEY=value lines, quoting values that need it.
func (d *EnvDumper) Format(env *Env) string {
	var sb strings.Builder
	for _, name := range env.Names() {
		value, _ := env.Get(name)
		sb.WriteString(name)
		sb.WriteString("=")
		sb.WriteString(quoteEnvValue(value))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Dump writes env to path. Nothing is written for an empty Env.
func (d *EnvDumper) Dump(env *Env, path string) error {
	if env.Len() == 0 {
		return nil
	}
	if err := d.fs.WriteFile(path, []byte(d.Format(env)), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func quoteEnvValue(value string) string {
	if value == "" || strings.ContainsAny(value, " \t\n\"'$#\\`") {
		return strconv.Quote(value)
	}
	return value
}
