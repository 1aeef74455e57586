package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format decodes one configuration file syntax.
type Format struct {
	Name   string
	decode func(data []byte, out *map[string]any) error
	locate func(err error, perr *ParseError)
}

// The supported formats.
var (
	TOML = Format{
		Name:   "toml",
		decode: func(data []byte, out *map[string]any) error { return toml.Unmarshal(data, out) },
		locate: func(err error, perr *ParseError) {
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				perr.Line, perr.Column = derr.Position()
			}
		},
	}
	YAML = Format{
		Name:   "yaml",
		decode: func(data []byte, out *map[string]any) error { return yaml.Unmarshal(data, out) },
		locate: func(err error, perr *ParseError) {
			var terr *yaml.TypeError
			if errors.As(err, &terr) && len(terr.Errors) > 0 {
				perr.Message = terr.Errors[0]
			}
		},
	}
)

var formats = map[string]Format{
	".toml": TOML,
	".yaml": YAML,
	".yml":  YAML,
}

// FormatFor picks the format of path by extension.
func FormatFor(path string) (Format, error) {
	f, ok := formats[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return f, nil
}

// Parse decodes data. source names the data in errors.
func (f Format) Parse(source string, data []byte) (map[string]any, error) {
	var config map[string]any
	if err := f.decode(data, &config); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		f.locate(err, perr)
		return nil, perr
	}
	return config, nil
}

// FileLoader loads one configuration file.
type FileLoader struct {
	fs     FileSystem
	path   string
	format Format
}

// NewFileLoader creates a loader for path in the given format.
func NewFileLoader(fsys FileSystem, path string, format Format) *FileLoader {
	return &FileLoader{fs: fsys, path: path, format: format}
}

// Load reads and decodes the file. A missing file yields nil, nil.
func (l *FileLoader) Load() (map[string]any, error) {
	data, err := readFile(l.fs, l.path)
	if err != nil || data == nil {
		return nil, err
	}
	return l.format.Parse(l.path, data)
}

// LoadFromReader decodes r instead of the file.
func (l *FileLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return l.format.Parse("<reader>", data)
}

// Path returns the file the loader reads.
func (l *FileLoader) Path() string { return l.path }
