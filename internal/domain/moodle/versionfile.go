package moodle

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// VersionFile is the metadata file every Moodle plugin and Moodle itself ship.
const VersionFile = "version.php"

var (
	blockComment     = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineComment      = regexp.MustCompile(`(?m)^\s*(//|#).*$`)
	componentPattern = regexp.MustCompile(`\$plugin->component\s*=\s*['"]([a-z][a-z0-9_]*)['"]\s*;`)
	dependencyBlock  = regexp.MustCompile(`(?s)\$plugin->dependencies\s*=\s*(?:\[|array\s*\()(.*?)(?:\]|\))\s*;`)
	dependencyKey    = regexp.MustCompile(`['"]([a-z][a-z0-9_]*)['"]\s*=>`)
	branchPattern    = regexp.MustCompile(`\$branch\s*=\s*['"]?(\d+)['"]?\s*;`)
)

// pluginMetadata is what a plugin's version.php declares.
type pluginMetadata struct {
	Component    string
	Dependencies []string
}

// readPluginMetadata parses the component and dependencies out of dir/version.php.
func readPluginMetadata(dir string) (pluginMetadata, error) {
	source, err := readVersionFile(dir)
	if err != nil {
		return pluginMetadata{}, err
	}
	return parsePluginMetadata(source)
}

func parsePluginMetadata(source string) (pluginMetadata, error) {
	source = stripComments(source)

	match := componentPattern.FindStringSubmatch(source)
	if match == nil {
		return pluginMetadata{}, ErrComponentNotDeclared
	}

	meta := pluginMetadata{Component: match[1]}

	if block := dependencyBlock.FindStringSubmatch(source); block != nil {
		seen := make(map[string]bool)
		for _, key := range dependencyKey.FindAllStringSubmatch(block[1], -1) {
			if seen[key[1]] {
				continue
			}
			seen[key[1]] = true
			meta.Dependencies = append(meta.Dependencies, key[1])
		}
	}

	return meta, nil
}

// readBranch returns the numeric $branch declared in Moodle's own version.php.
func readBranch(dir string) (int, error) {
	source, err := readVersionFile(dir)
	if err != nil {
		return 0, err
	}
	match := branchPattern.FindStringSubmatch(stripComments(source))
	if match == nil {
		return 0, ErrBranchNotDeclared
	}
	var branch int
	if _, err := fmt.Sscanf(match[1], "%d", &branch); err != nil {
		return 0, fmt.Errorf("parsing $branch %q: %w", match[1], err)
	}
	return branch, nil
}

func readVersionFile(dir string) (string, error) {
	path := filepath.Join(dir, VersionFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w in %s", ErrVersionFileNotFound, dir)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func stripComments(source string) string {
	source = blockComment.ReplaceAllString(source, "")
	return lineComment.ReplaceAllString(source, "")
}
