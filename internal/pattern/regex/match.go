package regex

import "bytes"

// Span is a half-open byte range within a line. Start is -1 when unset.
type Span struct {
	Start int
	End   int
}

// Len returns the span length, or 0 when unset.
func (s Span) Len() int {
	if s.Start < 0 || s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Valid reports whether both ends of the span were recorded.
func (s Span) Valid() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// Captures holds the whole-match span at index 0 and group spans at 1..9.
type Captures [MaxGroups + 1]Span

// frame is a backtrack point left by a repeated atom. The run consumed
// input down to lo; on failure pos gives back unit bytes and the rest of
// the program is retried from next.
type frame struct {
	next int
	pos  int
	lo   int
	unit int
	caps Captures
}

// Matcher executes programs against lines. It owns the capture spans of the
// most recent attempt and the backtrack stack, so a Matcher must not run two
// matches concurrently. The zero value is ready to use.
type Matcher struct {
	caps  Captures
	stack []frame
}

// Captures returns the spans recorded by the most recent successful match.
// They are overwritten by the next attempt.
func (m *Matcher) Captures() Captures {
	return m.caps
}

// Group returns the span of group n from the most recent match.
func (m *Matcher) Group(n int) Span {
	if n < 0 || n > MaxGroups {
		return Span{Start: -1, End: -1}
	}
	return m.caps[n]
}

func (m *Matcher) reset() {
	for i := range m.caps {
		m.caps[i] = Span{Start: -1, End: -1}
	}
	m.stack = m.stack[:0]
}

// clampLimit bounds how far a match may consume. End anchors still test
// against the true end of line, so a limit short of len(line) rejects them.
func clampLimit(line []byte, limit int) int {
	if limit < 0 || limit > len(line) {
		return len(line)
	}
	return limit
}

// Advance attempts p anchored at pos. Bytes at or beyond limit are never
// consumed; a negative limit means the whole line. It returns the end of
// the match.
func (m *Matcher) Advance(p *Program, line []byte, pos, limit int) (int, bool) {
	limit = clampLimit(line, limit)
	m.reset()
	if pos < 0 || pos > limit {
		return -1, false
	}
	m.caps[0].Start = pos
	end, ok := m.run(p, line, pos, limit)
	if !ok {
		m.caps[0] = Span{Start: -1, End: -1}
		return -1, false
	}
	m.caps[0].End = end
	return end, true
}

// Step scans for the left-most match of p starting at or after from.
func (m *Matcher) Step(p *Program, line []byte, from, limit int) (start, end int, ok bool) {
	limit = clampLimit(line, limit)
	if from < 0 {
		from = 0
	}
	if p.anchored {
		if from != 0 {
			return -1, -1, false
		}
		if end, ok := m.Advance(p, line, 0, limit); ok {
			return 0, end, true
		}
		return -1, -1, false
	}

	for pos := from; pos <= limit; pos++ {
		if p.firstByte >= 0 {
			next := m.indexFirst(p, line[pos:limit])
			if next < 0 {
				break
			}
			pos += next
		}
		if end, ok := m.Advance(p, line, pos, limit); ok {
			return pos, end, true
		}
	}
	m.reset()
	return -1, -1, false
}

// Last returns the right-most match that starts in [from, last] and
// consumes nothing at or beyond limit. A non-empty match is preferred over
// an empty one further right, so a run ending at the bound wins over the
// empty match after it. A negative last or limit means the end of line.
func (m *Matcher) Last(p *Program, line []byte, from, last, limit int) (start, end int, ok bool) {
	limit = clampLimit(line, limit)
	if last < 0 || last > limit {
		last = limit
	}
	if from < 0 {
		from = 0
	}
	empty := -1
	for pos := last; pos >= from; pos-- {
		if p.anchored && pos != 0 {
			continue
		}
		if p.firstByte >= 0 && (pos >= len(line) || !m.eqByte(p, line[pos], byte(p.firstByte))) {
			continue
		}
		end, ok := m.Advance(p, line, pos, limit)
		switch {
		case !ok:
		case end > pos:
			return pos, end, true
		case empty < 0:
			empty = pos
		}
	}
	if empty >= 0 {
		m.Advance(p, line, empty, limit)
		return empty, empty, true
	}
	m.reset()
	return -1, -1, false
}

func (m *Matcher) indexFirst(p *Program, s []byte) int {
	c := byte(p.firstByte)
	if !p.fold || upper(c) == c {
		return bytes.IndexByte(s, c)
	}
	i := bytes.IndexByte(s, c)
	j := bytes.IndexByte(s, upper(c))
	if i < 0 || (j >= 0 && j < i) {
		return j
	}
	return i
}

func (m *Matcher) eqByte(p *Program, b, c byte) bool {
	if p.fold {
		return lower(b) == c
	}
	return b == c
}

// run interprets the program with greedy repetition and an explicit
// backtrack stack. Programs are linear, so the stack never holds more
// frames than the program has repeated atoms.
func (m *Matcher) run(p *Program, line []byte, pos, limit int) (int, bool) {
	code := p.code
	pc := 0
	for {
		op := code[pc]
		if op == opEnd {
			return pos, true
		}

		var ok bool
		pc, pos, ok = m.exec(p, line, pc, pos, limit)
		if ok {
			continue
		}
		if pc, pos, ok = m.backtrack(); !ok {
			return -1, false
		}
	}
}

// exec runs the instruction at pc and returns the next pc and position.
func (m *Matcher) exec(p *Program, line []byte, pc, pos, limit int) (int, int, bool) {
	code := p.code
	op := code[pc]
	base := op & opMask

	switch base {
	case opBOL:
		return pc + 1, pos, pos == 0
	case opEOL:
		return pc + 1, pos, pos == len(line)
	case opOpen:
		m.caps[code[pc+1]].Start = pos
		return pc + 2, pos, true
	case opClose:
		m.caps[code[pc+1]].End = pos
		return pc + 2, pos, true
	}

	next := pc + 1 + operandLen(base)
	if op&flagRange != 0 {
		next += 2
	}

	if op&(flagStar|flagRange) == 0 {
		n, ok := m.one(p, line, pc, pos, limit)
		return next, pos + n, ok
	}

	lo, hi := 0, Unbounded
	if op&flagRange != 0 {
		lo, hi = int(code[next-2]), int(code[next-1])
	}

	count := 0
	unit := 0
	for ; count < lo; count++ {
		n, ok := m.one(p, line, pc, pos, limit)
		if !ok {
			return next, pos, false
		}
		pos += n
		unit = n
	}
	floor := pos
	for hi == Unbounded || count < hi {
		n, ok := m.one(p, line, pc, pos, limit)
		if !ok || n == 0 {
			break
		}
		pos += n
		unit = n
		count++
	}

	if pos > floor {
		m.stack = append(m.stack, frame{next: next, pos: pos, lo: floor, unit: unit, caps: m.caps})
	}
	return next, pos, true
}

// one matches a single occurrence of the atom at pc and returns its width.
func (m *Matcher) one(p *Program, line []byte, pc, pos, limit int) (int, bool) {
	code := p.code
	base := code[pc] & opMask

	if base == opBackref {
		g := m.caps[code[pc+1]]
		if !g.Valid() {
			return 0, false
		}
		n := g.Len()
		if pos+n > limit {
			return 0, false
		}
		ref, in := line[g.Start:g.End], line[pos:pos+n]
		if p.fold {
			return n, equalFoldASCII(ref, in)
		}
		return n, bytes.Equal(ref, in)
	}

	if pos >= limit {
		return 0, false
	}
	b := line[pos]

	switch base {
	case opChar:
		return 1, m.eqByte(p, b, code[pc+1])
	case opAny:
		return 1, b != Newline
	case opClass:
		return 1, b < 0x80 && bitSet(code[pc+1:pc+17], b)
	case opNClass:
		return 1, b != Newline && (b >= 0x80 || !bitSet(code[pc+1:pc+17], b))
	case opClassExt:
		return 1, bitSet(code[pc+1:pc+33], b)
	}
	return 0, false
}

// backtrack resumes the most recent repeated atom with one fewer unit.
func (m *Matcher) backtrack() (int, int, bool) {
	for len(m.stack) > 0 {
		f := &m.stack[len(m.stack)-1]
		if f.pos <= f.lo {
			m.stack = m.stack[:len(m.stack)-1]
			continue
		}
		f.pos -= f.unit
		m.caps = f.caps
		return f.next, f.pos, true
	}
	return 0, 0, false
}

// equalFoldASCII compares byte strings folding only ASCII letters.
func equalFoldASCII(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if lower(a[i]) != lower(b[i]) {
			return false
		}
	}
	return true
}
