package search

// LineStore is the line-oriented text the session searches and edits.
// Lines are numbered from zero and never include their terminator.
type LineStore interface {
	// LineCount returns the number of lines.
	LineCount() int

	// Line returns the text of line n. The session copies it before use.
	Line(n int) ([]byte, error)

	// Replace sets the text of line n.
	Replace(n int, text []byte) error

	// Insert adds a line before line n; n == LineCount appends.
	Insert(n int, text []byte) error

	// Delete removes line n.
	Delete(n int) error

	// Cursor returns a sequential reader over the store.
	Cursor() LineCursor
}

// LineCursor reads lines sequentially.
type LineCursor interface {
	// Seek positions the cursor on line n.
	Seek(n int) error

	// Next returns the line under the cursor and moves forward.
	Next() (int, []byte, bool)

	// Prev returns the line under the cursor and moves backward.
	Prev() (int, []byte, bool)
}

// Colorizer is told about every substituted byte range so that highlight
// offsets can be kept in step with the text.
type Colorizer interface {
	Shift(line, col, oldLen, newLen int)
}

// Logger receives debug diagnostics from a session.
type Logger interface {
	Debug(msg string, args ...any)
}

type nopColorizer struct{}

func (nopColorizer) Shift(int, int, int, int) {}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
