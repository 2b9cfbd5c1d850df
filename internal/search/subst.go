package search

import (
	"bytes"

	"github.com/dshills/linepat/internal/pattern/regex"
)

// point is a store position kept valid across the re-split pass. A negative
// col means the end of the line.
type point struct {
	line int
	col  int
}

// edits tracks what a substitution pass changed.
type edits struct {
	first, last int // lines changed, in post-edit numbering
	breaks      int // newline bytes written into the store
	pos         point
}

func (e *edits) touch(ln int) {
	if e.first < 0 || ln < e.first {
		e.first = ln
	}
	if ln > e.last {
		e.last = ln
	}
}

// expand builds the replacement text for the current match.
func (s *Session) expand(tmpl string) []byte {
	out := make([]byte, 0, 2*len(tmpl))
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch {
		case c == '&':
			out = s.appendGroup(out, 0)
		case c == '\\' && i+1 < len(tmpl):
			i++
			switch e := tmpl[i]; {
			case e >= '1' && e <= '9':
				out = s.appendGroup(out, int(e-'0'))
			case e == 'n':
				out = append(out, regex.Newline)
			default:
				out = append(out, e)
			}
		default:
			out = append(out, c)
		}
	}
	return out
}

// appendGroup appends the text of group n. A group spanning lines is
// joined with newline bytes.
func (s *Session) appendGroup(out []byte, n int) []byte {
	g, ok := s.Group(n)
	if !ok || g.EndLine >= len(s.texts) {
		return out
	}
	if g.Line == g.EndLine {
		return append(out, s.texts[g.Line][g.Start:g.End]...)
	}
	out = append(out, s.texts[g.Line][g.Start:]...)
	for l := g.Line + 1; l < g.EndLine; l++ {
		out = append(out, regex.Newline)
		out = append(out, s.texts[l]...)
	}
	out = append(out, regex.Newline)
	return append(out, s.texts[g.EndLine][:g.End]...)
}

// replace writes the replacement for m into line ln and removes the lines a
// multi-line match merged. It returns the new text of ln.
func (s *Session) replace(store LineStore, ln int, line []byte, m match, repl []byte) ([]byte, error) {
	tail := line[m.end:]
	if m.lines > 1 {
		tail = s.texts[m.lines-1][m.end:]
	}
	n := m.start + len(repl) + len(tail)
	if n > s.maxLineLen {
		return nil, &LineError{Line: ln, Col: m.start, Err: ErrLineTooLong}
	}

	text := make([]byte, 0, n)
	text = append(text, line[:m.start]...)
	text = append(text, repl...)
	text = append(text, tail...)
	if err := store.Replace(ln, text); err != nil {
		return nil, err
	}
	for i := 1; i < m.lines; i++ {
		if err := store.Delete(ln + 1); err != nil {
			return nil, err
		}
	}
	s.colorizer.Shift(ln, m.start, m.span, len(repl))
	return text, nil
}

// substitute replaces matches from the top of the range down. Edits move
// the range end so that it keeps covering the same text.
func (s *Session) substitute(store LineStore, b bounds, tmpl string, once bool) (Result, error) {
	ed := edits{first: -1, last: -1, pos: point{line: -1, col: -1}}
	var failure error

lines:
	for ln := b.startLine; ln <= b.endLine && ln < store.LineCount(); ln++ {
		text, err := store.Line(ln)
		if err != nil {
			failure = err
			break
		}
		line := s.load(text)
		from := b.fromFor(ln)
		shift := 0
		changed := false
		prev := -1 // end of the last non-empty replacement

		for from <= len(line) {
			m, found, err := s.locate(store, ln, line, from, b.limitFor(ln, shift), &b)
			if err != nil {
				failure = &LineError{Line: ln, Col: from, Err: err}
				break lines
			}
			if !found {
				break
			}
			if m.start == m.end && m.lines == 1 && m.start == prev {
				from = m.start + 1
				continue
			}

			repl := s.expand(tmpl)
			next, err := s.replace(store, ln, line, m, repl)
			if err != nil {
				failure = err
				if changed {
					s.totals.LinesChanged++
				}
				break lines
			}

			delta := len(repl) - (m.end - m.start)
			switch {
			case m.lines > 1:
				if ln+m.lines-1 == b.endLine && b.endCol >= 0 {
					b.endCol += m.start + len(repl) - m.end
				}
				b.endLine -= m.lines - 1
			case ln == b.endLine && b.endCol >= 0:
				b.endCol += delta
			}
			shift += delta

			s.totals.Substitutions++
			changed = true
			ed.touch(ln)
			ed.breaks += bytes.Count(repl, []byte{regex.Newline})
			ed.pos = point{line: ln, col: m.start}

			line = next
			from = m.start + len(repl)
			prev = -1
			if m.start == m.end && m.lines == 1 {
				from++
			} else {
				prev = from
			}
			if once {
				break
			}
		}
		if changed {
			s.totals.LinesChanged++
		}
	}

	end := point{line: b.endLine, col: b.endCol}
	if ed.breaks > 0 {
		if err := s.resplit(store, ed.first, ed.last, &ed.pos, &end); err != nil && failure == nil {
			failure = err
		}
	}
	return s.substituted(ed, end), failure
}

// located is a single-line match with the groups it captured.
type located struct {
	m      match
	groups [regex.MaxGroups + 1]Span
}

// matches collects the matches on line that start in [from, last], left to
// right. An empty match abutting the previous match is skipped.
func (s *Session) matches(line []byte, from, last, limit int) []located {
	var out []located
	p := s.segments[0]
	prev := -1
	for pos := from; pos <= len(line); {
		s.clearGroups()
		start, end, ok := s.step(p, line, pos, limit)
		if !ok || (last >= 0 && start > last) {
			break
		}
		if start == end && start == prev {
			pos = start + 1
			continue
		}
		s.record(p, 0)
		s.groups[0] = Span{Start: start, End: end}
		out = append(out, located{m: match{start: start, end: end, lines: 1, span: end - start}, groups: s.groups})
		prev, pos = end, end
		if start == end {
			pos++
		}
	}
	return out
}

// substituteReverse replaces matches right to left on each line from the
// start of the range up to its end. The matches of a line are the ones a
// forward pass would find, applied from the right so that earlier columns
// stay valid. With once only the match a reverse find reports is replaced.
func (s *Session) substituteReverse(store LineStore, b bounds, tmpl string, once bool) (Result, error) {
	ed := edits{first: -1, last: -1, pos: point{line: -1, col: -1}}
	end := point{line: b.endLine, col: b.endCol}
	if s.Crossings() > 0 {
		return s.substituted(ed, end), nil
	}
	var failure error

lines:
	for ln := b.startLine; ln >= b.endLine; ln-- {
		text, err := store.Line(ln)
		if err != nil {
			failure = err
			break
		}
		line := s.load(text)
		from, last, limit := b.reverseWindow(ln)

		var found []located
		if once {
			if m, ok := s.last(line, from, last, limit); ok {
				found = append(found, located{m: m, groups: s.groups})
			}
		} else {
			found = s.matches(line, from, last, limit)
		}

		changed := false
		for i := len(found) - 1; i >= 0; i-- {
			m := found[i].m
			s.groups = found[i].groups
			s.texts = append(s.texts[:0], line)
			repl := s.expand(tmpl)
			next, err := s.replace(store, ln, line, m, repl)
			if err != nil {
				failure = err
				if changed {
					s.totals.LinesChanged++
				}
				break lines
			}

			s.totals.Substitutions++
			changed = true
			ed.touch(ln)
			ed.breaks += bytes.Count(repl, []byte{regex.Newline})
			ed.pos = point{line: ln, col: m.start}
			line = next
		}
		if changed {
			s.totals.LinesChanged++
		}
	}

	if ed.breaks > 0 {
		if err := s.resplit(store, ed.first, ed.last, &ed.pos, &end); err != nil && failure == nil {
			failure = err
		}
	}
	return s.substituted(ed, end), failure
}

func (s *Session) substituted(ed edits, end point) Result {
	res := Result{Line: NotFound, Col: -1, EndLine: end.line, EndCol: end.col}
	if ed.pos.line >= 0 {
		res.Line, res.Col = ed.pos.line, ed.pos.col
	}
	s.logger.Debug("substituted %d in %d line(s), %d break(s), session %s",
		s.totals.Substitutions, s.totals.LinesChanged, ed.breaks, s.id)
	return res
}

// resplit splits lines first through last at every embedded newline,
// working bottom to top so that lines still to be visited keep their
// numbers. Each tracked point is moved to the line and column holding the
// same character after the split.
func (s *Session) resplit(store LineStore, first, last int, pts ...*point) error {
	for ln := last; ln >= first; ln-- {
		text, err := store.Line(ln)
		if err != nil {
			return err
		}
		if bytes.IndexByte(text, regex.Newline) < 0 {
			continue
		}
		text = bytes.Clone(text)
		parts := bytes.Split(text, []byte{regex.Newline})
		added := len(parts) - 1

		for _, p := range pts {
			relocate(p, ln, text, added)
		}

		if err := store.Replace(ln, parts[0]); err != nil {
			return err
		}
		for i, part := range parts[1:] {
			if err := store.Insert(ln+1+i, part); err != nil {
				return err
			}
		}
	}
	return nil
}

// relocate moves p across the split of line ln, which held text and gains
// added lines.
func relocate(p *point, ln int, text []byte, added int) {
	switch {
	case p.line > ln:
		p.line += added
	case p.line < ln:
	case p.col < 0:
		p.line += added
	default:
		col := min(p.col, len(text))
		before := text[:col]
		if k := bytes.Count(before, []byte{regex.Newline}); k > 0 {
			p.line += k
			p.col -= bytes.LastIndexByte(before, regex.Newline) + 1
		}
	}
}
