package regex

// Options configures compilation.
type Options struct {
	// MaxSize is the compiled program size limit. Zero means DefaultMaxSize.
	MaxSize int

	// FoldCase compiles letters to match either case.
	FoldCase bool

	// StartAnchor compiles the program as if it began with '^'.
	StartAnchor bool

	// EndAnchor compiles the program as if it ended with '$'.
	EndAnchor bool

	// GroupBase numbers the first group GroupBase+1. Back-references may
	// only name groups opened by this program.
	GroupBase int

	// boundaryAsEnd compiles bracket classes that contain the line-boundary
	// byte as end anchors. Used to build the alternate program.
	boundaryAsEnd bool
}

// compiler holds state for a single compilation pass.
type compiler struct {
	src  string
	opts Options
	max  int

	code     []byte
	lastAtom int // offset of the last repeatable atom, -1 if none
	open     []int
	opened   int
	closed   [MaxGroups + 1]bool

	anchored     bool
	endAnchored  bool
	boundaryUsed bool
}

// Compile compiles a canonical pattern into a program.
func Compile(pattern string, opts Options) (*Program, error) {
	c := &compiler{
		src:      pattern,
		opts:     opts,
		max:      opts.MaxSize,
		lastAtom: -1,
	}
	if c.max <= 0 {
		c.max = DefaultMaxSize
	}

	p, err := c.compile()
	if err != nil {
		return nil, err
	}

	if c.boundaryUsed && !opts.boundaryAsEnd {
		altOpts := opts
		altOpts.boundaryAsEnd = true
		alt, err := Compile(pattern, altOpts)
		if err != nil {
			return nil, err
		}
		p.alt = alt
	}
	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string, opts Options) *Program {
	p, err := Compile(pattern, opts)
	if err != nil {
		panic("regex: Compile(`" + pattern + "`): " + err.Error())
	}
	return p
}

func (c *compiler) fail(code Code, offset int) error {
	return &Error{Code: code, Pattern: c.src, Offset: offset}
}

// emit appends bytes, refusing to grow past the size limit. One byte is
// always held back for the terminating opEnd.
func (c *compiler) emit(offset int, b ...byte) error {
	if len(c.code)+len(b) >= c.max {
		return c.fail(CodeProgramTooLarge, offset)
	}
	c.code = append(c.code, b...)
	return nil
}

func (c *compiler) emitAtom(offset int, b ...byte) error {
	at := len(c.code)
	if err := c.emit(offset, b...); err != nil {
		return err
	}
	c.lastAtom = at
	return nil
}

func (c *compiler) emitChar(offset int, ch byte) error {
	if c.opts.FoldCase {
		ch = lower(ch)
	}
	return c.emitAtom(offset, opChar, ch)
}

func (c *compiler) compile() (*Program, error) {
	src := c.src
	i := 0

	if c.opts.StartAnchor || (len(src) > 0 && src[0] == '^') {
		if err := c.emit(0, opBOL); err != nil {
			return nil, err
		}
		c.anchored = true
		if len(src) > 0 && src[0] == '^' {
			i = 1
		}
	}

	for i < len(src) {
		ch := src[i]
		var err error
		switch ch {
		case '.':
			err = c.emitAtom(i, opAny)
			i++

		case '$':
			if i == len(src)-1 {
				err = c.emit(i, opEOL)
				c.endAnchored = true
				c.lastAtom = -1
			} else {
				err = c.emitChar(i, ch)
			}
			i++

		case '*':
			err = c.star(i)
			i++

		case '{':
			i, err = c.bound(i)

		case '[':
			i, err = c.class(i)

		case '(':
			if c.opened >= MaxGroups {
				return nil, c.fail(CodeTooManyGroups, i)
			}
			c.opened++
			n := c.opts.GroupBase + c.opened
			if n > MaxGroups {
				return nil, c.fail(CodeTooManyGroups, i)
			}
			c.open = append(c.open, n)
			err = c.emit(i, opOpen, byte(n))
			c.lastAtom = -1
			i++

		case ')':
			if len(c.open) == 0 {
				return nil, c.fail(CodeUnbalancedParen, i)
			}
			n := c.open[len(c.open)-1]
			c.open = c.open[:len(c.open)-1]
			c.closed[n] = true
			err = c.emit(i, opClose, byte(n))
			c.lastAtom = -1
			i++

		case '\\':
			i, err = c.escape(i)

		default:
			err = c.emitChar(i, ch)
			i++
		}
		if err != nil {
			return nil, err
		}
	}

	if len(c.open) > 0 {
		return nil, c.fail(CodeUnbalancedParen, len(src))
	}

	if c.opts.EndAnchor && !c.endAnchored {
		if err := c.emit(len(src), opEOL); err != nil {
			return nil, err
		}
		c.endAnchored = true
	}

	// The reserved byte for opEnd is always available.
	c.code = append(c.code, opEnd)

	p := &Program{
		code:        c.code,
		source:      src,
		anchored:    c.anchored,
		endAnchored: c.endAnchored,
		fold:        c.opts.FoldCase,
		firstGroup:  c.opts.GroupBase + 1,
		groups:      c.opened,
		firstByte:   -1,
	}
	if c.code[0] == opChar {
		p.firstByte = int(c.code[1])
	}
	return p, nil
}

// star applies the zero-or-more flag to the last atom. With no atom to
// repeat the star is literal.
func (c *compiler) star(offset int) error {
	if c.lastAtom < 0 {
		return c.emitChar(offset, '*')
	}
	op := c.code[c.lastAtom]
	if op&flagRange != 0 {
		return c.fail(CodeBadRepetition, offset)
	}
	if c.matchesBoundary(c.lastAtom) {
		return c.fail(CodeStarredBoundary, offset)
	}
	c.code[c.lastAtom] = op | flagStar
	return nil
}

// bound parses {m}, {m,} or {m,n} after an atom.
func (c *compiler) bound(start int) (int, error) {
	if c.lastAtom < 0 {
		return start + 1, c.emitChar(start, '{')
	}
	op := c.code[c.lastAtom]
	if op&(flagStar|flagRange) != 0 {
		return 0, c.fail(CodeBadRepetition, start)
	}
	if c.matchesBoundary(c.lastAtom) {
		return 0, c.fail(CodeStarredBoundary, start)
	}

	var counts []int
	cur, digits := 0, 0
	i := start + 1
	for {
		if i >= len(c.src) {
			return 0, c.fail(CodeBadRepetition, start)
		}
		ch := c.src[i]
		i++
		switch {
		case ch >= '0' && ch <= '9':
			cur = cur*10 + int(ch-'0')
			digits++
			if cur > MaxCount {
				return 0, c.fail(CodeBadRepetition, i-1)
			}
			continue
		case ch == ',' || ch == '}':
			if digits == 0 {
				// Only the upper bound may be omitted, as in {m,}.
				if len(counts) == 0 || ch != '}' {
					return 0, c.fail(CodeBadRepetition, i-1)
				}
				cur = Unbounded
			}
			counts = append(counts, cur)
			cur, digits = 0, 0
			if len(counts) > 2 {
				return 0, c.fail(CodeBadRepetition, i-1)
			}
		default:
			return 0, c.fail(CodeBadRepetition, i-1)
		}
		if ch == '}' {
			break
		}
	}

	lo, hi := counts[0], counts[0]
	if len(counts) == 2 {
		hi = counts[1]
	}
	if hi < lo {
		return 0, c.fail(CodeBadRepetition, start)
	}

	// The atom is the last thing emitted so its count bytes follow it.
	if err := c.emit(start, byte(lo), byte(hi)); err != nil {
		return 0, err
	}
	c.code[c.lastAtom] = op | flagRange
	return i, nil
}

// escape compiles a backslash sequence.
func (c *compiler) escape(start int) (int, error) {
	if start+1 >= len(c.src) {
		return 0, c.fail(CodeTrailingEscape, start)
	}
	ch := c.src[start+1]
	switch {
	case ch >= '1' && ch <= '9':
		n := int(ch - '0')
		if n <= c.opts.GroupBase || n > MaxGroups || !c.closed[n] {
			return 0, c.fail(CodeBadBackref, start)
		}
		return start + 2, c.emitAtom(start, opBackref, byte(n))
	case ch == 't':
		return start + 2, c.emitAtom(start, opChar, '\t')
	case ch == 'f':
		return start + 2, c.emitAtom(start, opChar, '\f')
	case ch == 'n':
		return start + 2, c.emitAtom(start, opChar, Newline)
	default:
		return start + 2, c.emitChar(start, ch)
	}
}

// classMember reads one bracket member at i, resolving escapes.
func (c *compiler) classMember(i int) (byte, int, error) {
	ch := c.src[i]
	if ch != '\\' {
		return ch, i + 1, nil
	}
	if i+1 >= len(c.src) {
		return 0, 0, c.fail(CodeUnterminatedBracket, i)
	}
	switch e := c.src[i+1]; e {
	case 't':
		return '\t', i + 2, nil
	case 'f':
		return '\f', i + 2, nil
	case 'n':
		return Newline, i + 2, nil
	default:
		return e, i + 2, nil
	}
}

// class compiles a bracket expression starting at '['.
func (c *compiler) class(start int) (int, error) {
	var set [256]bool
	i := start + 1
	negate := false
	if i < len(c.src) && c.src[i] == '^' {
		negate = true
		i++
	}

	first := true
	for {
		if i >= len(c.src) {
			return 0, c.fail(CodeUnterminatedBracket, start)
		}
		if c.src[i] == ']' && !first {
			i++
			break
		}
		first = false

		lo, next, err := c.classMember(i)
		if err != nil {
			return 0, err
		}
		i = next

		if i+1 < len(c.src) && c.src[i] == '-' && c.src[i+1] != ']' {
			hi, next, err := c.classMember(i + 1)
			if err != nil {
				return 0, err
			}
			if hi < lo {
				return 0, c.fail(CodeBadRange, i)
			}
			for b := int(lo); b <= int(hi); b++ {
				set[b] = true
			}
			i = next
			continue
		}
		set[lo] = true
	}

	if c.opts.FoldCase {
		for b := 'a'; b <= 'z'; b++ {
			if set[b] || set[upper(byte(b))] {
				set[b] = true
				set[upper(byte(b))] = true
			}
		}
	}

	if !negate && set[Newline] && c.opts.boundaryAsEnd {
		c.lastAtom = -1
		return i, c.emit(start, opEOL)
	}

	wide := false
	for b := 0x80; b < 256; b++ {
		if set[b] {
			wide = true
			break
		}
	}

	switch {
	case negate && !wide:
		return i, c.emitAtom(start, append([]byte{opNClass}, bitmap(set[:0x80])...)...)
	case negate:
		var inv [256]bool
		for b := range inv {
			inv[b] = !set[b] && b != Newline
		}
		return i, c.emitAtom(start, append([]byte{opClassExt}, bitmap(inv[:])...)...)
	case wide || set[Newline]:
		if set[Newline] {
			c.boundaryUsed = true
		}
		return i, c.emitAtom(start, append([]byte{opClassExt}, bitmap(set[:])...)...)
	default:
		return i, c.emitAtom(start, append([]byte{opClass}, bitmap(set[:0x80])...)...)
	}
}

// matchesBoundary reports whether the atom at pc can match the newline byte
// as a positive class member or literal.
func (c *compiler) matchesBoundary(pc int) bool {
	switch c.code[pc] &^ (flagStar | flagRange) {
	case opChar:
		return c.code[pc+1] == Newline
	case opClassExt:
		return bitSet(c.code[pc+1:pc+33], Newline)
	}
	return false
}

func bitmap(set []bool) []byte {
	bm := make([]byte, len(set)/8)
	for b, ok := range set {
		if ok {
			bm[b>>3] |= 1 << (b & 7)
		}
	}
	return bm
}
