package linestore

// Option is a functional option for configuring a Store.
type Option func(*Store)

// WithLineEnding sets the line ending used when the store is written out.
func WithLineEnding(le LineEnding) Option {
	return func(s *Store) {
		s.lineEnding = le
		s.fixedEnding = true
	}
}

// WithLF configures the store to write Unix line endings (\n).
func WithLF() Option {
	return WithLineEnding(LineEndingLF)
}

// WithCRLF configures the store to write Windows line endings (\r\n).
func WithCRLF() Option {
	return WithLineEnding(LineEndingCRLF)
}

// WithFinalNewline controls whether written text ends with a line ending.
func WithFinalNewline(on bool) Option {
	return func(s *Store) {
		s.finalNewline = on
		s.fixedFinal = true
	}
}

// DetectLineEnding returns the most common line ending in text, or
// LineEndingLF if there is none.
func DetectLineEnding(text string) LineEnding {
	var lf, crlf, cr int
	for i := 0; i < len(text); i++ {
		switch {
		case text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n':
			crlf++
			i++
		case text[i] == '\r':
			cr++
		case text[i] == '\n':
			lf++
		}
	}
	switch {
	case crlf > 0 && crlf >= lf && crlf >= cr:
		return LineEndingCRLF
	case cr > 0 && cr >= lf:
		return LineEndingCR
	default:
		return LineEndingLF
	}
}
