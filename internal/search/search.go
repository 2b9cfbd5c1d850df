package search

import "github.com/dshills/linepat/internal/pattern/regex"

// Direction selects the scan order of a search.
type Direction int

const (
	// Forward scans from the start position towards the end of the store.
	Forward Direction = iota
	// Reverse scans from the start position towards the top of the store.
	Reverse
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// Sentinel values reported in Result.Line.
const (
	NotFound = -1
	// InProgress is reserved for schedulers that split a search into
	// bounded windows. Search itself never returns it.
	InProgress = -2
	Failed     = -3
)

// Request describes one find or substitute call.
//
// Forward requests scan from (StartLine, StartCol) to (EndLine, EndCol).
// Reverse requests scan from (StartLine, StartCol) back to (EndLine, EndCol),
// so EndLine is above StartLine. A negative EndLine means the last line
// (forward) or the first line (reverse). A negative column means the end
// of its line, except a negative reverse EndCol which means column zero.
// A reverse StartCol is inclusive: a match may start there but consume
// only the byte at that column.
type Request struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
	Direction Direction

	// Pattern is the text to compile. Empty reuses the compiled pattern.
	Pattern string
	// Legacy marks Pattern and Replacement as legacy dialect text.
	Legacy bool

	Substitute  bool
	Replacement string
	// RepeatReplacement reuses the saved replacement text.
	RepeatReplacement bool

	IgnoreCase bool

	// Rect restricts every line to the column window [RectStart, RectEnd).
	// A negative RectEnd means the end of the line. Patterns that span
	// lines fail with ErrMultiLineRect.
	Rect      bool
	RectStart int
	RectEnd   int

	// Once substitutes at most one match per line.
	Once bool
}

// Result reports the outcome of Search.
type Result struct {
	// Line is the line of the match, or of the last replacement when
	// substituting, or one of NotFound and Failed.
	Line int
	Col  int

	// EndLine and EndCol are the end of the match for a find. For a
	// substitution they are the range end adjusted for the edits made, so a
	// ranged operation can continue from there.
	EndLine int
	EndCol  int

	// Span is the number of bytes the match covers, counting one for each
	// line boundary crossed. Lines is the number of lines it touches.
	Span  int
	Lines int

	// Running counts kept by the session.
	LinesChanged  int
	Substitutions int
}

// Found reports whether the result holds a position.
func (r Result) Found() bool { return r.Line >= 0 }

// bounds is a request range with defaults resolved.
type bounds struct {
	startLine, startCol int
	endLine, endCol     int
	rect                bool
	rectStart, rectEnd  int
}

// fromFor returns where scanning starts on line ln of a forward range.
func (b *bounds) fromFor(ln int) int {
	from := 0
	if ln == b.startLine {
		from = b.startCol
	}
	if b.rect && b.rectStart > from {
		from = b.rectStart
	}
	return from
}

// limitFor returns the consumption limit on line ln of a forward range.
// shift moves the rectangle's right edge after edits on the line.
func (b *bounds) limitFor(ln, shift int) int {
	limit := -1
	if ln == b.endLine {
		limit = b.endCol
	}
	if b.rect && b.rectEnd >= 0 {
		limit = minLimit(limit, b.rectEnd+shift)
	}
	return limit
}

// reverseWindow returns the window on line ln of a reverse range: matches
// start in [from, last] and consume nothing at or beyond limit. The start
// column is inclusive. A negative last or limit means the end of line.
func (b *bounds) reverseWindow(ln int) (from, last, limit int) {
	last, limit = -1, -1
	if ln == b.startLine && b.startCol >= 0 {
		last, limit = b.startCol, b.startCol+1
	}
	if ln == b.endLine {
		from = b.endCol
	}
	if b.rect {
		if b.rectStart > from {
			from = b.rectStart
		}
		if b.rectEnd >= 0 {
			last = minLimit(last, b.rectEnd)
			limit = minLimit(limit, b.rectEnd)
		}
	}
	return from, last, limit
}

// minLimit returns the smaller limit, treating negative as unlimited.
func minLimit(a, b int) int {
	switch {
	case a < 0:
		return b
	case b < 0:
		return a
	case a < b:
		return a
	default:
		return b
	}
}

func resolve(store LineStore, req Request) (bounds, error) {
	n := store.LineCount()
	b := bounds{
		startLine: req.StartLine,
		startCol:  req.StartCol,
		endLine:   req.EndLine,
		endCol:    req.EndCol,
		rect:      req.Rect,
		rectStart: req.RectStart,
		rectEnd:   req.RectEnd,
	}
	if b.startLine < 0 || b.startLine >= n {
		return b, ErrInvalidRange
	}
	if b.rect && (b.rectStart < 0 || (b.rectEnd >= 0 && b.rectEnd < b.rectStart)) {
		return b, ErrInvalidRange
	}

	if req.Direction == Reverse {
		if b.endLine < 0 {
			b.endLine = 0
		}
		if b.endLine > b.startLine {
			return b, ErrInvalidRange
		}
		if b.startCol < 0 {
			b.startCol = -1
		}
		if b.endCol < 0 {
			b.endCol = 0
		}
		return b, nil
	}

	if b.endLine < 0 || b.endLine >= n {
		b.endLine = n - 1
	}
	if b.endLine < b.startLine {
		return b, ErrInvalidRange
	}
	if b.startCol < 0 {
		b.startCol = 0
	}
	if b.endCol < 0 {
		b.endCol = -1
	}
	return b, nil
}

// Search runs one find or substitute request against store. Compile and
// range errors return a Result whose Line is Failed. A pattern that does not
// match is not an error.
func (s *Session) Search(store LineStore, req Request) (Result, error) {
	res := Result{Line: NotFound, Col: -1, EndLine: req.EndLine, EndCol: req.EndCol}
	if store == nil {
		return s.fail(res, ErrNilStore)
	}
	if err := s.Compile(req.Pattern, req.Legacy, req.IgnoreCase); err != nil {
		return s.fail(res, err)
	}

	var tmpl string
	if req.Substitute {
		var err error
		if tmpl, err = s.SetReplacement(req.Replacement, req.Legacy, req.RepeatReplacement); err != nil {
			return s.fail(res, err)
		}
	}

	if store.LineCount() == 0 {
		return s.withTotals(res), nil
	}
	b, err := resolve(store, req)
	if err != nil {
		return s.fail(res, err)
	}
	if b.rect && s.Crossings() > 0 {
		return s.fail(res, rangeError(regex.CodeMultiLineRect, s.source))
	}

	switch {
	case req.Substitute && req.Direction == Reverse:
		res, err = s.substituteReverse(store, b, tmpl, req.Once)
	case req.Substitute:
		res, err = s.substitute(store, b, tmpl, req.Once)
	case req.Direction == Reverse:
		res, err = s.findReverse(store, b)
	default:
		res, err = s.find(store, b)
	}
	if err != nil {
		return s.fail(res, err)
	}
	return s.withTotals(res), nil
}

func (s *Session) fail(res Result, err error) (Result, error) {
	s.logger.Debug("search failed in session %s: %v", s.id, err)
	res.Line = Failed
	return s.withTotals(res), err
}

func (s *Session) withTotals(res Result) Result {
	res.LinesChanged = s.totals.LinesChanged
	res.Substitutions = s.totals.Substitutions
	return res
}

// load copies a store line into the session's scratch buffer.
func (s *Session) load(text []byte) []byte {
	s.buf = append(s.buf[:0], text...)
	return s.buf
}

func (s *Session) find(store LineStore, b bounds) (Result, error) {
	res := Result{Line: NotFound, Col: -1, EndLine: b.endLine, EndCol: b.endCol}
	cur := store.Cursor()
	if err := cur.Seek(b.startLine); err != nil {
		return res, err
	}
	for {
		ln, text, ok := cur.Next()
		if !ok || ln > b.endLine {
			return res, nil
		}
		line := s.load(text)
		m, found, err := s.locate(store, ln, line, b.fromFor(ln), b.limitFor(ln, 0), &b)
		if err != nil {
			return res, &LineError{Line: ln, Col: 0, Err: err}
		}
		if !found {
			continue
		}
		res.Line, res.Col = ln, m.start
		res.EndLine, res.EndCol = ln+m.lines-1, m.end
		res.Span, res.Lines = m.span, m.lines
		return res, nil
	}
}

// findReverse scans lines upwards for the right-most match on each line.
// Multi-line patterns never satisfy a reverse bound.
func (s *Session) findReverse(store LineStore, b bounds) (Result, error) {
	res := Result{Line: NotFound, Col: -1, EndLine: b.endLine, EndCol: b.endCol}
	if s.Crossings() > 0 {
		return res, nil
	}
	cur := store.Cursor()
	if err := cur.Seek(b.startLine); err != nil {
		return res, err
	}
	for {
		ln, text, ok := cur.Prev()
		if !ok || ln < b.endLine {
			return res, nil
		}
		line := s.load(text)
		from, last, limit := b.reverseWindow(ln)
		m, found := s.last(line, from, last, limit)
		if !found {
			continue
		}
		res.Line, res.Col = ln, m.start
		res.EndLine, res.EndCol = ln, m.end
		res.Span, res.Lines = m.span, 1
		return res, nil
	}
}
