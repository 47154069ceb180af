package mocks

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
)

// FileSystem is a thread-safe in-memory test double for ports.FileSystem.
type FileSystem struct {
	mu       sync.RWMutex
	files    map[string][]byte
	dirs     map[string]bool
	failures map[string]error
}

// NewFileSystem creates a new FileSystem mock.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files:    make(map[string][]byte),
		dirs:     make(map[string]bool),
		failures: make(map[string]error),
	}
}

// AddFile adds a file, and its parent directories, to the mock filesystem.
func (fs *FileSystem) AddFile(path string, content string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.addParents(path)
	fs.files[filepath.Clean(path)] = []byte(content)
}

// AddDir adds a directory, and its parents, to the mock filesystem.
func (fs *FileSystem) AddDir(path string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.addDir(path)
}

// FailWrite makes every write to path (WriteFile, MkdirAll, Mirror destination) fail with err.
func (fs *FileSystem) FailWrite(path string, err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.failures[filepath.Clean(path)] = err
}

// ReadFile reads a file from the mock filesystem.
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if content, ok := fs.files[filepath.Clean(path)]; ok {
		return append([]byte(nil), content...), nil
	}
	return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
}

// WriteFile writes a file to the mock filesystem.
func (fs *FileSystem) WriteFile(path string, data []byte, _ os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.failure(path); err != nil {
		return err
	}
	fs.addParents(path)
	fs.files[filepath.Clean(path)] = append([]byte(nil), data...)
	return nil
}

// Exists checks if a file or directory exists in the mock filesystem.
func (fs *FileSystem) Exists(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	path = filepath.Clean(path)
	_, fileExists := fs.files[path]
	return fileExists || fs.dirs[path]
}

// IsDir checks if a path is a directory in the mock filesystem.
func (fs *FileSystem) IsDir(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.dirs[filepath.Clean(path)]
}

// IsFile checks if a path is a file in the mock filesystem.
func (fs *FileSystem) IsFile(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, ok := fs.files[filepath.Clean(path)]
	return ok
}

// MkdirAll creates a directory in the mock filesystem.
func (fs *FileSystem) MkdirAll(path string, _ os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.failure(path); err != nil {
		return err
	}
	fs.addDir(path)
	return nil
}

// Mirror copies every file and directory below src to dest.
func (fs *FileSystem) Mirror(src, dest string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	src, dest = filepath.Clean(src), filepath.Clean(dest)
	if !fs.dirs[src] {
		return fmt.Errorf("mirror source %s is not a directory", src)
	}
	if err := fs.failure(dest); err != nil {
		return err
	}

	fs.addDir(dest)
	for path := range fs.dirs {
		if rel, ok := under(src, path); ok {
			fs.addDir(filepath.Join(dest, rel))
		}
	}
	for path, content := range fs.files {
		if rel, ok := under(src, path); ok {
			fs.files[filepath.Join(dest, rel)] = append([]byte(nil), content...)
		}
	}
	return nil
}

// Abs returns the cleaned path; the mock has no working directory or symlinks.
func (fs *FileSystem) Abs(path string) (string, error) {
	return filepath.Clean(path), nil
}

// Paths returns every file and directory in sorted order.
func (fs *FileSystem) Paths() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	paths := make([]string, 0, len(fs.files)+len(fs.dirs))
	for path := range fs.files {
		paths = append(paths, path)
	}
	for path := range fs.dirs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Reset clears all files, directories and failures.
func (fs *FileSystem) Reset() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files = make(map[string][]byte)
	fs.dirs = make(map[string]bool)
	fs.failures = make(map[string]error)
}

func (fs *FileSystem) failure(path string) error {
	return fs.failures[filepath.Clean(path)]
}

func (fs *FileSystem) addDir(path string) {
	path = filepath.Clean(path)
	fs.dirs[path] = true
	fs.addParents(path)
}

func (fs *FileSystem) addParents(path string) {
	for dir := filepath.Dir(filepath.Clean(path)); ; dir = filepath.Dir(dir) {
		fs.dirs[dir] = true
		if dir == filepath.Dir(dir) {
			return
		}
	}
}

func under(root, path string) (string, bool) {
	if path == root || !strings.HasPrefix(path, root+string(filepath.Separator)) {
		return "", false
	}
	return strings.TrimPrefix(path, root+string(filepath.Separator)), true
}

// Ensure FileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*FileSystem)(nil)
