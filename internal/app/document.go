package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dshills/linepat/internal/linestore"
)

// stdinName is the display name of standard input.
const stdinName = "(standard input)"

// Document is one input held in a line store.
type Document struct {
	// Path is the file path, empty for standard input.
	Path string

	// Name is the display name.
	Name string

	Store *linestore.Store

	mode     os.FileMode
	revision linestore.Revision
}

// NewDocument creates a document from content read from path.
func NewDocument(path string, content io.Reader) (*Document, error) {
	store, err := linestore.NewFromReader(content)
	if err != nil {
		return nil, err
	}
	name := path
	if path == "" {
		name = stdinName
	}
	return &Document{
		Path:     path,
		Name:     name,
		Store:    store,
		mode:     0o644,
		revision: store.Revision(),
	}, nil
}

// OpenDocument reads the file at path.
func OpenDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	doc, err := NewDocument(path, f)
	if err != nil {
		return nil, err
	}
	doc.mode = info.Mode().Perm()
	return doc, nil
}

// IsModified reports whether the store changed since the document was
// loaded or last saved.
func (d *Document) IsModified() bool {
	return d.Store.Revision() != d.revision
}

// IsStdin reports whether the document was read from standard input.
func (d *Document) IsStdin() bool {
	return d.Path == ""
}

// Save writes the store back to the document's file through a temporary
// file in the same directory.
func (d *Document) Save() error {
	if d.IsStdin() {
		return ErrInPlaceStdin
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.Path), ".linepat-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := d.Store.WriteTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(d.mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), d.Path); err != nil {
		return err
	}
	d.revision = d.Store.Revision()
	return nil
}
