// Package legacy translates the legacy pattern dialect into the canonical
// dialect accepted by the regex compiler.
//
// The legacy dialect uses '@' as its escape character, '%' as the leading
// start anchor, '?' as the any-byte wildcard and braces for grouping. Dots,
// carets and parentheses are ordinary characters.
package legacy

import (
	"strings"

	"github.com/dshills/linepat/internal/pattern/regex"
)

// Escape is the legacy escape character.
const Escape = '@'

// DefaultMaxLen is the default limit on translated text length.
const DefaultMaxLen = 256

// Translator rewrites legacy text. The zero value uses DefaultMaxLen.
type Translator struct {
	// MaxLen limits the translated output length.
	MaxLen int
}

// Translate rewrites src with the default translator. For patterns it also
// reports whether the result ends with an end-of-line anchor.
func Translate(src string, replacement bool) (string, bool, error) {
	var t Translator
	if replacement {
		out, err := t.Replacement(src)
		return out, false, err
	}
	return t.Pattern(src)
}

type output struct {
	b   strings.Builder
	max int
	src string
}

func (o *output) write(at int, s string) error {
	if o.b.Len()+len(s) > o.max {
		return &regex.Error{Code: regex.CodePatternTooLong, Pattern: o.src, Offset: at}
	}
	o.b.WriteString(s)
	return nil
}

func (t Translator) newOutput(src string) *output {
	max := t.MaxLen
	if max <= 0 {
		max = DefaultMaxLen
	}
	return &output{max: max, src: src}
}

// Pattern translates a legacy search pattern.
func (t Translator) Pattern(src string) (string, bool, error) {
	out := t.newOutput(src)
	endAnchor := false

	for i := 0; i < len(src); i++ {
		ch := src[i]
		var s string
		switch ch {
		case '%':
			s = "%"
			if i == 0 {
				s = "^"
			}
		case '?':
			s = "."
		case '.':
			s = `\.`
		case '^':
			s = `\^`
		case '{':
			s = "("
		case '}':
			s = ")"
		case '(':
			s = `\(`
		case ')':
			s = `\)`
		case '\\':
			s = `\\`
		case '$':
			s = "$"
			if i == len(src)-1 {
				endAnchor = true
			} else {
				s = `\$`
			}
		case '[':
			next, err := t.bracket(out, src, i)
			if err != nil {
				return "", false, err
			}
			i = next
			continue
		case Escape:
			if i+1 >= len(src) {
				s = "@"
				break
			}
			i++
			e := src[i]
			switch {
			case e == 'n' && i+2 == len(src) && src[i+1] == '$':
				// A boundary right before the end anchor is just the anchor.
				s = "$"
				endAnchor = true
				i++
			case e == 'n':
				s = "\n"
			case e == 't':
				s = "\t"
			case e == 'f':
				s = "\f"
			default:
				s = `\` + string(e)
			}
		default:
			s = string(ch)
		}
		if err := out.write(i, s); err != nil {
			return "", false, err
		}
	}
	return out.b.String(), endAnchor, nil
}

// bracket translates the bracket expression at src[start] and returns the
// offset of its closing ']'.
//
// Output layout is fixed: '[', the negation marker, members in input order,
// a deferred literal caret, a relocated dash, ']'. When nothing precedes the
// deferred caret the dash goes first, and a class holding only a caret or
// only a negation marker becomes that literal character.
func (t Translator) bracket(out *output, src string, start int) (int, error) {
	i := start + 1
	negate := byte(0)
	if i < len(src) && (src[i] == '~' || src[i] == '^') {
		negate = src[i]
		i++
	}

	var members strings.Builder
	caret, dash := false, false
	closed := false
	// A ']' right after '[' is a member; right after a negation it closes.
	first := negate == 0

	for ; i < len(src); i++ {
		ch := src[i]
		if ch == ']' && !first {
			closed = true
			break
		}
		switch ch {
		case '^':
			caret = true
		case '-':
			if members.Len() == 0 || (i+1 < len(src) && src[i+1] == ']') {
				dash = true
			} else {
				members.WriteByte('-')
			}
		case '\\':
			members.WriteString(`\\`)
		case Escape:
			if i+1 >= len(src) {
				members.WriteByte(Escape)
				break
			}
			i++
			switch e := src[i]; e {
			case 'n':
				members.WriteByte('\n')
			case 't':
				members.WriteByte('\t')
			case 'f':
				members.WriteByte('\f')
			default:
				members.WriteByte('\\')
				members.WriteByte(e)
			}
		default:
			members.WriteByte(ch)
		}
		first = false
	}

	var s string
	switch {
	case !closed:
		// Leave the bracket open so the compiler reports it.
		s = "[" + negateMarker(negate) + members.String()
		i = len(src) - 1
	case negate != 0 && members.Len() == 0 && !caret && !dash:
		s = `\` + string(negate)
	case negate == 0 && members.Len() == 0 && caret && !dash:
		s = `\^`
	case negate == 0 && members.Len() == 0 && caret:
		s = "[-^]"
	default:
		var b strings.Builder
		b.WriteByte('[')
		b.WriteString(negateMarker(negate))
		b.WriteString(members.String())
		if caret {
			b.WriteByte('^')
		}
		if dash {
			b.WriteByte('-')
		}
		b.WriteByte(']')
		s = b.String()
	}
	return i, out.write(start, s)
}

func negateMarker(negate byte) string {
	if negate != 0 {
		return "^"
	}
	return ""
}

// Replacement translates legacy replacement text.
func (t Translator) Replacement(src string) (string, error) {
	out := t.newOutput(src)

	for i := 0; i < len(src); i++ {
		ch := src[i]
		var s string
		switch ch {
		case '\\':
			s = `\\`
		case Escape:
			if i+1 >= len(src) {
				s = "@"
				break
			}
			i++
			switch e := src[i]; e {
			case 'n':
				s = "\n"
			case 't':
				s = "\t"
			case 'f':
				s = "\f"
			default:
				s = `\` + string(e)
			}
		default:
			s = string(ch)
		}
		if err := out.write(i, s); err != nil {
			return "", err
		}
	}
	return out.b.String(), nil
}
