// Package loader reads configuration sources (TOML and YAML files,
// environment variables) into nested maps keyed by section.
package loader

import (
	"fmt"
	"io/fs"
	"os"
)

// Loader produces one configuration layer. A source that does not
// exist yields nil, nil.
type Loader interface {
	Load() (map[string]any, error)
}

// FileSystem is what file loaders read through.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// OSFS reads the real file system.
type OSFS struct{}

func (OSFS) ReadFile(path string) ([]byte, error)  { return os.ReadFile(path) }
func (OSFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// DefaultFS returns OSFS.
func DefaultFS() FileSystem { return OSFS{} }

var (
	_ Loader = (*FileLoader)(nil)
	_ Loader = (*EnvLoader)(nil)
)

// ForPath picks a file loader by extension: .toml, .yaml or .yml.
func ForPath(fsys FileSystem, path string) (*FileLoader, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	return NewFileLoader(fsys, path, format), nil
}

// readFile reads path, mapping a missing file to (nil, nil).
func readFile(fsys FileSystem, path string) ([]byte, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return data, nil
}
