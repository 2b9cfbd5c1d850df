// Package loader reads linepat configuration sources into plain maps.
//
// File loaders handle TOML, YAML and JSON; the environment loader reads
// prefixed variables. Every loader returns a nested map[string]any which
// the config package merges in precedence order.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Loader is the interface for configuration loaders.
type Loader interface {
	// Load reads configuration from the source and returns a map.
	// Returns nil, nil if the source doesn't exist (not an error).
	Load() (map[string]any, error)
}

// FileSystem is an abstraction for file system operations.
// Tests substitute an in-memory implementation.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Format is a configuration file syntax.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// decoders turn a whole document into a map. Errors that carry a position
// are returned as *ParseError with Line and Column set.
var decoders = map[Format]func([]byte) (map[string]any, error){
	FormatTOML: decodeTOML,
	FormatYAML: decodeYAML,
	FormatJSON: decodeJSON,
}

// FormatOf returns the format named by the extension of path.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported config format %q", ext)
	}
}

// File loads one configuration file.
type File struct {
	fs     FileSystem
	path   string
	format Format
}

var _ Loader = (*File)(nil)

// NewFile returns a loader for path, choosing the format by extension.
// A nil fsys means the OS file system.
func NewFile(fsys FileSystem, path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	if fsys == nil {
		fsys = DefaultFS()
	}
	return &File{fs: fsys, path: path, format: format}, nil
}

// Format returns the syntax the file is parsed with.
func (f *File) Format() Format { return f.format }

// Load reads and parses the file. A missing file gives nil, nil.
func (f *File) Load() (map[string]any, error) {
	data, err := f.fs.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", f.path, err)
	}
	return Decode(f.format, f.path, data)
}

// LoadFromReader parses everything r yields in the file's format.
func (f *File) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Decode(f.format, "<reader>", data)
}

// Decode parses data in format. source names the data in errors.
func Decode(format Format, source string, data []byte) (map[string]any, error) {
	decode, ok := decoders[format]
	if !ok {
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	m, err := decode(data)
	if err != nil {
		var pe *ParseError
		if !errors.As(err, &pe) {
			pe = &ParseError{Message: err.Error(), Err: err}
		}
		pe.Path = source
		return nil, pe
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
