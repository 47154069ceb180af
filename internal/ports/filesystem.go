package ports

import (
	"os"
	"path/filepath"
	"strings"
)

// FileSystem provides the file system operations used while preparing a Moodle tree.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	// WriteFile writes data, creating missing parent directories.
	WriteFile(path string, data []byte, perm os.FileMode) error
	Exists(path string) bool
	IsDir(path string) bool
	IsFile(path string) bool
	MkdirAll(path string, perm os.FileMode) error
	// Mirror recursively copies the src tree into dest, preserving structure and modes.
	Mirror(src, dest string) error
	// Abs returns the absolute, symlink-free form of path.
	Abs(path string) (string, error)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
