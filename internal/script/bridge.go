package script

import (
	"bytes"
	"context"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/linepat/internal/search"
)

// Buffer is the store a script works on.
type Buffer interface {
	search.LineStore
	Text() string
}

// Bridge exposes a search session and a buffer to Lua.
type Bridge struct {
	session *search.Session
	buf     Buffer

	legacy     bool
	ignoreCase bool

	// line of the last successful find, or -1
	matchLine int
}

// NewBridge creates a bridge. legacy and ignoreCase are the defaults for
// pat.compile when the script passes no options.
func NewBridge(session *search.Session, buf Buffer, legacy, ignoreCase bool) *Bridge {
	return &Bridge{
		session:    session,
		buf:        buf,
		legacy:     legacy,
		ignoreCase: ignoreCase,
		matchLine:  -1,
	}
}

// Register installs the pat and buf modules into s.
func (b *Bridge) Register(s *State) {
	s.RegisterModule("pat", map[string]lua.LGFunction{
		"compile": b.compile,
		"find":    b.find,
		"sub":     b.sub,
		"group":   b.group,
	})
	s.RegisterModule("buf", map[string]lua.LGFunction{
		"line":  b.line,
		"count": b.count,
		"text":  b.text,
	})
}

// Run executes code against buf with a fresh sandboxed state.
func Run(ctx context.Context, b *Bridge, name, code string, opts ...StateOption) error {
	if b.buf == nil {
		return ErrNoBuffer
	}
	s := NewState(opts...)
	defer s.Close()
	b.Register(s)
	return s.DoString(ctx, name, code)
}

// compile(pattern [, opts]) -> true | nil, err
func (b *Bridge) compile(L *lua.LState) int {
	pattern := L.CheckString(1)
	legacy, icase := b.legacy, b.ignoreCase
	if opts := L.OptTable(2, nil); opts != nil {
		if v := opts.RawGetString("legacy"); v != lua.LNil {
			legacy = lua.LVAsBool(v)
		}
		if v := opts.RawGetString("icase"); v != lua.LNil {
			icase = lua.LVAsBool(v)
		}
	}
	b.matchLine = -1
	if err := b.session.Compile(pattern, legacy, icase); err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

// find(line [, col [, reverse]]) -> line, col, endline, endcol | nil
func (b *Bridge) find(L *lua.LState) int {
	ln := L.CheckInt(1) - 1
	reverse := L.OptBool(3, false)
	col := L.OptInt(2, 0) - 1
	if col < 0 && !reverse {
		col = 0
	}

	req := search.Request{
		StartLine:  ln,
		StartCol:   col,
		EndLine:    -1,
		EndCol:     -1,
		IgnoreCase: b.session.IgnoreCase(),
	}
	if reverse {
		req.Direction = search.Reverse
		req.EndCol = 0
	}
	b.matchLine = -1
	res, err := b.session.Search(b.buf, req)
	if err != nil {
		L.RaiseError("find: %v", err)
		return 0
	}
	if !res.Found() {
		L.Push(lua.LNil)
		return 1
	}
	b.matchLine = res.Line
	L.Push(lua.LNumber(res.Line + 1))
	L.Push(lua.LNumber(res.Col + 1))
	L.Push(lua.LNumber(res.EndLine + 1))
	L.Push(lua.LNumber(res.EndCol + 1))
	return 4
}

// sub(first, last, replacement [, once]) -> substitutions, lines | nil, err
func (b *Bridge) sub(L *lua.LState) int {
	first := L.CheckInt(1) - 1
	last := L.CheckInt(2) - 1
	repl := L.CheckString(3)
	once := L.OptBool(4, false)

	b.matchLine = -1
	b.session.ResetTotals()
	res, err := b.session.Search(b.buf, search.Request{
		StartLine:   first,
		EndLine:     last,
		EndCol:      -1,
		Substitute:  true,
		Replacement: repl,
		Legacy:      b.session.Legacy(),
		IgnoreCase:  b.session.IgnoreCase(),
		Once:        once,
	})
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LNumber(res.Substitutions))
	L.Push(lua.LNumber(res.LinesChanged))
	return 2
}

// group(n) -> text | nil
func (b *Bridge) group(L *lua.LState) int {
	n := L.CheckInt(1)
	if b.matchLine < 0 {
		L.Push(lua.LNil)
		return 1
	}
	g, ok := b.session.Group(n)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}

	var out bytes.Buffer
	for l := g.Line; l <= g.EndLine; l++ {
		text, err := b.buf.Line(b.matchLine + l)
		if err != nil {
			L.Push(lua.LNil)
			return 1
		}
		start, end := 0, len(text)
		if l == g.Line {
			start = g.Start
		}
		if l == g.EndLine {
			end = g.End
		}
		if l > g.Line {
			out.WriteByte('\n')
		}
		out.Write(text[start:end])
	}
	L.Push(lua.LString(out.String()))
	return 1
}

// line(n) -> text
func (b *Bridge) line(L *lua.LState) int {
	n := L.CheckInt(1)
	text, err := b.buf.Line(n - 1)
	if err != nil {
		L.RaiseError("line %d: %v", n, err)
		return 0
	}
	L.Push(lua.LString(text))
	return 1
}

// count() -> number
func (b *Bridge) count(L *lua.LState) int {
	L.Push(lua.LNumber(b.buf.LineCount()))
	return 1
}

// text() -> string
func (b *Bridge) text(L *lua.LState) int {
	L.Push(lua.LString(b.buf.Text()))
	return 1
}
