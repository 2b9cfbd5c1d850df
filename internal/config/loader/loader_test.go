package loader

import (
	"errors"
	"io/fs"
	"reflect"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) Open(name string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

const tomlConfig = `
[search]
dialect = "legacy"
maxLineLen = 8192
ignoreCase = true

[output]
format = "json"
`

const yamlConfig = `
search:
  dialect: legacy
  maxLineLen: 8192
  ignoreCase: true
output:
  format: json
`

const jsonConfig = `{
  "search": {"dialect": "legacy", "maxLineLen": 8192, "ignoreCase": true},
  "output": {"format": "json"}
}`

func TestFileLoaders(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/c.toml", tomlConfig)
	memfs.AddFile("/c.yaml", yamlConfig)
	memfs.AddFile("/c.yml", yamlConfig)
	memfs.AddFile("/c.json", jsonConfig)

	want := map[string]any{
		"search": map[string]any{
			"dialect":    "legacy",
			"maxLineLen": int64(8192),
			"ignoreCase": true,
		},
		"output": map[string]any{
			"format": "json",
		},
	}

	for _, path := range []string{"/c.toml", "/c.yaml", "/c.yml", "/c.json"} {
		t.Run(path, func(t *testing.T) {
			l, err := NewFile(memfs, path)
			if err != nil {
				t.Fatalf("NewFile: %v", err)
			}
			got, err := l.Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Load() = %#v, want %#v", got, want)
			}
		})
	}
}

func TestMissingFile(t *testing.T) {
	memfs := NewMemFS()
	for _, path := range []string{"/none.toml", "/none.yaml", "/none.json"} {
		l, err := NewFile(memfs, path)
		if err != nil {
			t.Fatalf("NewFile(%s): %v", path, err)
		}
		got, err := l.Load()
		if err != nil || got != nil {
			t.Errorf("Load(%s) = %v, %v; want nil, nil", path, got, err)
		}
	}
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.toml", FormatTOML, false},
		{"dir/A.YAML", FormatYAML, false},
		{"a.yml", FormatYAML, false},
		{"a.json", FormatJSON, false},
		{"a.ini", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("FormatOf(%q) = %q, %v", tt.path, got, err)
		}
	}
	if _, err := NewFile(NewMemFS(), "/c.ini"); err == nil {
		t.Error("expected error for .ini")
	}
}

func TestDecodeEmpty(t *testing.T) {
	for _, f := range []Format{FormatTOML, FormatYAML} {
		got, err := Decode(f, "empty", nil)
		if err != nil || got == nil || len(got) != 0 {
			t.Errorf("Decode(%s, empty) = %v, %v", f, got, err)
		}
	}
	if _, err := Decode("ini", "x", []byte("a=1")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestParseErrors(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[search\nx = 1")
	memfs.AddFile("/bad.yaml", "search: [1, 2")
	memfs.AddFile("/bad.json", `{"search": `)
	memfs.AddFile("/array.json", `[1, 2]`)

	for _, path := range []string{"/bad.toml", "/bad.yaml", "/bad.json", "/array.json"} {
		l, _ := NewFile(memfs, path)
		_, err := l.Load()
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("%s: error = %v, want *ParseError", path, err)
			continue
		}
		if pe.Path != path || !strings.Contains(err.Error(), path) {
			t.Errorf("%s: ParseError = %+v", path, pe)
		}
		if pe.Unwrap() == nil {
			t.Errorf("%s: no wrapped error", path)
		}
	}
}

func TestTOMLParseErrorPosition(t *testing.T) {
	l, _ := NewFile(NewMemFS(), "inline.toml")
	_, err := l.LoadFromReader(strings.NewReader("a = 1\nb = \n"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v", err)
	}
	if pe.Line != 2 {
		t.Errorf("Line = %d, want 2", pe.Line)
	}
}

func TestJSONValues(t *testing.T) {
	l, _ := NewFile(NewMemFS(), "inline.json")
	got, err := l.LoadFromReader(strings.NewReader(`{"a": 1.5, "b": [1, "x", false], "c": null}`))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	want := map[string]any{"a": 1.5, "b": []any{int64(1), "x", false}, "c": nil}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"search":  map[string]any{"dialect": "canonical", "maxLineLen": int64(4096)},
		"logging": map[string]any{"level": "info"},
	}
	src := map[string]any{
		"search": map[string]any{"dialect": "legacy"},
		"output": map[string]any{"color": "never"},
	}
	got := DeepMerge(Clone(dst), src)

	if v, _ := GetByPath(got, "search.dialect"); v != "legacy" {
		t.Errorf("search.dialect = %v", v)
	}
	if v, _ := GetByPath(got, "search.maxLineLen"); v != int64(4096) {
		t.Errorf("search.maxLineLen = %v", v)
	}
	if v, _ := GetByPath(got, "output.color"); v != "never" {
		t.Errorf("output.color = %v", v)
	}
	if v, _ := GetByPath(dst, "search.dialect"); v != "canonical" {
		t.Errorf("Clone shared state: dst search.dialect = %v", v)
	}
	if _, ok := GetByPath(got, "search.dialect.x"); ok {
		t.Error("path through a scalar resolved")
	}
}

func TestSetByPath(t *testing.T) {
	m := map[string]any{"a": "scalar"}
	SetByPath(m, "a.b.c", 1)
	SetByPath(m, "top", true)
	if v, ok := GetByPath(m, "a.b.c"); !ok || v != 1 {
		t.Errorf("a.b.c = %v, %v", v, ok)
	}
	if m["top"] != true {
		t.Errorf("top = %v", m["top"])
	}
}
