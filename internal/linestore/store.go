package linestore

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dshills/linepat/internal/search"
)

// LineEnding specifies the line ending style.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the escaped form of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingCRLF:
		return "\\r\\n"
	case LineEndingCR:
		return "\\r"
	default:
		return "\\n"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// Revision identifies a state of a store. Every edit yields a new one.
type Revision uint64

var revisionCounter uint64

func nextRevision() Revision {
	return Revision(atomic.AddUint64(&revisionCounter, 1))
}

// Store holds text as lines.
type Store struct {
	mu       sync.RWMutex
	lines    [][]byte
	revision Revision

	lineEnding   LineEnding
	finalNewline bool
	fixedEnding  bool
	fixedFinal   bool
}

var _ search.LineStore = (*Store)(nil)

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{revision: nextRevision()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromString creates a store holding text. Any line ending style is
// accepted; unless an option fixes them, the detected ending and the
// presence of a final newline are kept for writing.
func NewFromString(text string, opts ...Option) *Store {
	s := New(opts...)
	if !s.fixedEnding {
		s.lineEnding = DetectLineEnding(text)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if !s.fixedFinal {
		s.finalNewline = strings.HasSuffix(text, "\n")
	}
	text = strings.TrimSuffix(text, "\n")
	if text == "" && !s.finalNewline {
		return s
	}
	for _, l := range strings.Split(text, "\n") {
		s.lines = append(s.lines, []byte(l))
	}
	return s
}

// NewFromReader creates a store from everything r yields.
func NewFromReader(r io.Reader, opts ...Option) (*Store, error) {
	// Read all content first so CRLF pairs split across reads are seen whole.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewFromString(string(data), opts...), nil
}

// LineCount returns the number of lines.
func (s *Store) LineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

// Line returns the text of line n. The slice must not be modified.
func (s *Store) Line(n int) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 0 || n >= len(s.lines) {
		return nil, ErrLineOutOfRange
	}
	return s.lines[n], nil
}

// LineText returns line n as a string, or "" if it does not exist.
func (s *Store) LineText(n int) string {
	l, err := s.Line(n)
	if err != nil {
		return ""
	}
	return string(l)
}

// Replace sets the text of line n. The store keeps its own copy.
func (s *Store) Replace(n int, text []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 || n >= len(s.lines) {
		return ErrLineOutOfRange
	}
	s.lines[n] = bytes.Clone(text)
	if s.lines[n] == nil {
		s.lines[n] = []byte{}
	}
	s.revision = nextRevision()
	return nil
}

// Insert adds a line before line n. n equal to LineCount appends.
func (s *Store) Insert(n int, text []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 || n > len(s.lines) {
		return ErrLineOutOfRange
	}
	line := append([]byte{}, text...)
	s.lines = append(s.lines, nil)
	copy(s.lines[n+1:], s.lines[n:])
	s.lines[n] = line
	s.revision = nextRevision()
	return nil
}

// Delete removes line n.
func (s *Store) Delete(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 0 || n >= len(s.lines) {
		return ErrLineOutOfRange
	}
	s.lines = append(s.lines[:n], s.lines[n+1:]...)
	s.revision = nextRevision()
	return nil
}

// Cursor returns a sequential reader positioned on the first line.
func (s *Store) Cursor() search.LineCursor {
	return &Cursor{store: s}
}

// Lines returns a copy of every line as a string.
func (s *Store) Lines() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.lines))
	for i, l := range s.lines {
		out[i] = string(l)
	}
	return out
}

// Text returns the content joined with the store's line ending.
func (s *Store) Text() string {
	var b strings.Builder
	_, _ = s.WriteTo(&b)
	return b.String()
}

// WriteTo writes the content to w using the store's line ending.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	eol := []byte(s.lineEnding.Sequence())
	var total int64
	for i, l := range s.lines {
		n, err := w.Write(l)
		total += int64(n)
		if err != nil {
			return total, err
		}
		if i == len(s.lines)-1 && !s.finalNewline {
			break
		}
		n, err = w.Write(eol)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Revision returns the current revision.
func (s *Store) Revision() Revision {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// LineEnding returns the line ending used for writing.
func (s *Store) LineEnding() LineEnding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lineEnding
}
