package search

import (
	"github.com/dshills/linepat/internal/pattern/legacy"
	"github.com/dshills/linepat/internal/pattern/regex"
)

// Default limits.
const (
	DefaultMaxLineLen     = 4096
	DefaultMaxProgramSize = regex.DefaultMaxSize
	DefaultMaxPatternLen  = legacy.DefaultMaxLen
)

// Option configures a Session during creation.
type Option func(*Session)

// WithMaxLineLen sets the longest line a substitution may produce.
func WithMaxLineLen(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxLineLen = n
		}
	}
}

// WithMaxProgramSize sets the compiled program size limit per segment.
func WithMaxProgramSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxProgramSize = n
		}
	}
}

// WithMaxPatternLen sets the limit on pattern and replacement text length.
func WithMaxPatternLen(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxPatternLen = n
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(l Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithColorizer sets the highlight offset notifier.
func WithColorizer(c Colorizer) Option {
	return func(s *Session) {
		if c != nil {
			s.colorizer = c
		}
	}
}
