package search

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/linepat/internal/pattern/legacy"
	"github.com/dshills/linepat/internal/pattern/regex"
)

// Span locates a capture group within a match. Line and EndLine count from
// the first line of the match; they differ only for the whole match of a
// multi-line pattern.
type Span struct {
	Line    int
	Start   int
	EndLine int
	End     int
}

// Totals are running counts kept across calls. Compiling a non-empty
// pattern resets them, as does ResetTotals; a repeat with an empty pattern
// keeps them running. Callers that pass the pattern again for each buffer
// therefore get per-buffer counts.
type Totals struct {
	LinesChanged  int
	Substitutions int
}

// Session is one find/substitute slot. It owns the compiled pattern, the
// capture spans of the latest match and the saved replacement.
type Session struct {
	id string

	maxLineLen     int
	maxProgramSize int
	maxPatternLen  int
	logger         Logger
	colorizer      Colorizer

	// Compiled pattern state.
	source    string
	canonical string
	legacy    bool
	fold      bool
	endAnchor bool // pattern ends with '$'
	segments  []*regex.Program
	compiled  bool

	// Match state.
	matcher regex.Matcher
	groups  [regex.MaxGroups + 1]Span
	texts   [][]byte // lines of the current match, first line first
	pulled  [][]byte // scratch for lines pulled by multi-line matches
	buf     []byte   // scratch copy of the line being scanned

	replacement    string
	hasReplacement bool

	totals Totals
}

// NewSession creates a session with the given options.
func NewSession(opts ...Option) *Session {
	s := &Session{
		id:             uuid.New().String(),
		maxLineLen:     DefaultMaxLineLen,
		maxProgramSize: DefaultMaxProgramSize,
		maxPatternLen:  DefaultMaxPatternLen,
		logger:         nopLogger{},
		colorizer:      nopColorizer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.clearGroups()
	return s
}

// ID returns the session handle identifier.
func (s *Session) ID() string { return s.id }

// Compiled reports whether the session holds a usable pattern.
func (s *Session) Compiled() bool { return s.compiled }

// Pattern returns the canonical text of the compiled pattern.
func (s *Session) Pattern() string { return s.canonical }

// Legacy reports whether the compiled pattern was written in the legacy
// dialect.
func (s *Session) Legacy() bool { return s.legacy }

// IgnoreCase reports whether the compiled pattern folds case.
func (s *Session) IgnoreCase() bool { return s.fold }

// Crossings returns the number of line-boundary tokens in the pattern.
func (s *Session) Crossings() int {
	if len(s.segments) == 0 {
		return 0
	}
	return len(s.segments) - 1
}

// Totals returns the running counts.
func (s *Session) Totals() Totals { return s.totals }

// ResetTotals clears the running counts.
func (s *Session) ResetTotals() { s.totals = Totals{} }

// Group returns the span of group n from the latest match. Group 0 is the
// whole match. Spans are only meaningful until the next match attempt.
func (s *Session) Group(n int) (Span, bool) {
	if n < 0 || n > regex.MaxGroups {
		return Span{}, false
	}
	g := s.groups[n]
	return g, g.Start >= 0 && g.End >= 0
}

func (s *Session) clearGroups() {
	for i := range s.groups {
		s.groups[i] = Span{Line: -1, Start: -1, EndLine: -1, End: -1}
	}
}

// Compile prepares pattern for matching. An empty pattern reuses the
// previous one, recompiling only if the case or dialect setting changed.
func (s *Session) Compile(pattern string, legacyDialect, ignoreCase bool) error {
	if pattern == "" {
		if s.canonical == "" {
			s.compiled = false
			return stateError(regex.CodeNoRememberedPattern)
		}
		if !s.compiled {
			return stateError(regex.CodeNotCompiled)
		}
		if s.fold == ignoreCase {
			return nil
		}
		return s.compileCanonical(s.source, s.canonical, s.legacy, s.endAnchor, ignoreCase)
	}

	canonical := pattern
	endAnchor := false
	if legacyDialect {
		var err error
		t := legacy.Translator{MaxLen: s.maxPatternLen}
		canonical, endAnchor, err = t.Pattern(pattern)
		if err != nil {
			s.compiled = false
			return err
		}
	} else {
		if len(pattern) > s.maxPatternLen {
			s.compiled = false
			return &regex.Error{Code: regex.CodePatternTooLong, Pattern: pattern, Offset: s.maxPatternLen}
		}
		endAnchor = endsWithAnchor(pattern)
	}

	if err := s.compileCanonical(pattern, canonical, legacyDialect, endAnchor, ignoreCase); err != nil {
		return err
	}
	s.totals = Totals{}
	return nil
}

func (s *Session) compileCanonical(source, canonical string, legacyDialect, endAnchor, ignoreCase bool) error {
	s.compiled = false
	s.segments = nil

	parts, err := regex.SplitLines(canonical)
	if err != nil {
		return err
	}

	segments := make([]*regex.Program, 0, len(parts))
	base := 0
	for i, part := range parts {
		p, err := regex.Compile(part, regex.Options{
			MaxSize:     s.maxProgramSize,
			FoldCase:    ignoreCase,
			StartAnchor: i > 0,
			EndAnchor:   i < len(parts)-1,
			GroupBase:   base,
		})
		if err != nil {
			return fmt.Errorf("segment %d: %w", i+1, err)
		}
		_, base = p.Groups()
		base--
		segments = append(segments, p)
	}

	s.source = source
	s.canonical = canonical
	s.legacy = legacyDialect
	s.fold = ignoreCase
	s.endAnchor = endAnchor
	s.segments = segments
	s.compiled = true

	s.logger.Debug("compiled pattern %q as %q: %d segment(s), session %s", source, canonical, len(segments), s.id)
	return nil
}

// endsWithAnchor reports whether a canonical pattern ends with an
// unescaped '$'.
func endsWithAnchor(pattern string) bool {
	n := len(pattern)
	if n == 0 || pattern[n-1] != '$' {
		return false
	}
	escapes := 0
	for i := n - 2; i >= 0 && pattern[i] == '\\'; i-- {
		escapes++
	}
	return escapes%2 == 0
}

// SetReplacement translates and saves replacement text. With repeat set
// the saved replacement is kept and returned.
func (s *Session) SetReplacement(text string, legacyDialect, repeat bool) (string, error) {
	if repeat {
		if !s.hasReplacement {
			return "", stateError(regex.CodeNoRememberedReplacement)
		}
		return s.replacement, nil
	}

	canonical := text
	if legacyDialect {
		var err error
		t := legacy.Translator{MaxLen: s.maxPatternLen}
		if canonical, err = t.Replacement(text); err != nil {
			return "", err
		}
	} else if len(text) > s.maxPatternLen {
		return "", &regex.Error{Code: regex.CodePatternTooLong, Pattern: text, Offset: s.maxPatternLen}
	}

	s.replacement = canonical
	s.hasReplacement = true
	return canonical, nil
}
