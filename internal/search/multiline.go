package search

import "github.com/dshills/linepat/internal/pattern/regex"

// match is a located match. start is an offset on the first line and end an
// offset on the last; lines counts the physical lines touched.
type match struct {
	start int
	end   int
	lines int
	span  int
}

// step finds the left-most match of p, retrying with the program's
// alternate when p holds a class that lists the line boundary.
func (s *Session) step(p *regex.Program, line []byte, from, limit int) (int, int, bool) {
	if start, end, ok := s.matcher.Step(p, line, from, limit); ok {
		return start, end, true
	}
	if alt := p.Alternate(); alt != nil {
		return s.matcher.Step(alt, line, from, limit)
	}
	return -1, -1, false
}

func (s *Session) advance(p *regex.Program, line []byte, limit int) (int, bool) {
	if end, ok := s.matcher.Advance(p, line, 0, limit); ok {
		return end, true
	}
	if alt := p.Alternate(); alt != nil {
		return s.matcher.Advance(alt, line, 0, limit)
	}
	return -1, false
}

// record copies the groups owned by p from the matcher, tagged with the
// match-relative line they were found on.
func (s *Session) record(p *regex.Program, line int) {
	first, last := p.Groups()
	caps := s.matcher.Captures()
	for n := first; n < last; n++ {
		if c := caps[n]; c.Valid() {
			s.groups[n] = Span{Line: line, Start: c.Start, EndLine: line, End: c.End}
		}
	}
}

// locate finds the next match on line ln starting at or after from. limit
// bounds consumption on ln; b bounds where a multi-line match may end.
func (s *Session) locate(store LineStore, ln int, line []byte, from, limit int, b *bounds) (match, bool, error) {
	s.clearGroups()
	s.texts = append(s.texts[:0], line)

	if len(s.segments) > 1 {
		return s.locateLines(store, ln, line, from, limit, b)
	}

	if s.cutOff(line, limit) {
		return match{}, false, nil
	}
	p := s.segments[0]
	start, end, ok := s.step(p, line, from, limit)
	if !ok {
		return match{}, false, nil
	}
	s.record(p, 0)
	s.groups[0] = Span{Start: start, End: end}
	return match{start: start, end: end, lines: 1, span: end - start}, true, nil
}

// cutOff reports whether limit stops short of the end of line for a
// pattern that must end there, so no start position can match.
func (s *Session) cutOff(line []byte, limit int) bool {
	return s.endAnchor && limit >= 0 && limit < len(line)
}

// locateLines drives a segmented pattern across successive lines. The first
// segment must reach the end of line ln; each later segment is matched
// anchored against the next line pulled from the store.
func (s *Session) locateLines(store LineStore, ln int, line []byte, from, limit int, b *bounds) (match, bool, error) {
	last := len(s.segments) - 1
	switch {
	case limit >= 0 && limit < len(line):
		return match{}, false, nil
	case ln+last > b.endLine || ln+last >= store.LineCount():
		return match{}, false, nil
	}

	start, end, ok := s.step(s.segments[0], line, from, -1)
	if !ok {
		return match{}, false, nil
	}
	s.record(s.segments[0], 0)
	span := len(line) - start + 1

	for i := 1; i <= last; i++ {
		text, err := store.Line(ln + i)
		if err != nil {
			return match{}, false, err
		}
		next := s.pull(i, text)

		segLimit := -1
		if ln+i == b.endLine {
			segLimit = b.endCol
		}
		p := s.segments[i]
		e, ok := s.advance(p, next, segLimit)
		if !ok {
			s.clearGroups()
			return match{}, false, nil
		}
		s.record(p, i)
		if i < last {
			span += len(next) + 1
			continue
		}
		span += e
		end = e
	}

	s.groups[0] = Span{Line: 0, Start: start, EndLine: last, End: end}
	return match{start: start, end: end, lines: last + 1, span: span}, true, nil
}

// pull copies line i of a multi-line match into session scratch space.
func (s *Session) pull(i int, text []byte) []byte {
	for len(s.pulled) <= i {
		s.pulled = append(s.pulled, nil)
	}
	s.pulled[i] = append(s.pulled[i][:0], text...)
	s.texts = append(s.texts, s.pulled[i])
	return s.pulled[i]
}

// last finds the right-most match on a single line that starts in
// [from, last] and ends at or before limit, preferring a non-empty match.
func (s *Session) last(line []byte, from, last, limit int) (match, bool) {
	s.clearGroups()
	s.texts = append(s.texts[:0], line)
	if s.cutOff(line, limit) {
		return match{}, false
	}

	p := s.segments[0]
	start, end, ok := s.matcher.Last(p, line, from, last, limit)
	if !ok {
		if alt := p.Alternate(); alt != nil {
			start, end, ok = s.matcher.Last(alt, line, from, last, limit)
		}
	}
	if !ok {
		return match{}, false
	}
	s.record(p, 0)
	s.groups[0] = Span{Start: start, End: end}
	return match{start: start, end: end, lines: 1, span: end - start}, true
}
