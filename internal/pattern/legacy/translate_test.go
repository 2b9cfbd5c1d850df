package legacy

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/linepat/internal/pattern/regex"
)

func TestPattern(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		want      string
		endAnchor bool
	}{
		{"leading percent", "%abc", "^abc", false},
		{"inner percent", "a%b", "a%b", false},
		{"question", "a?c", "a.c", false},
		{"dot", "a.c", `a\.c`, false},
		{"caret", "a^c", `a\^c`, false},
		{"braces", "{ab}c", "(ab)c", false},
		{"parens", "(x)", `\(x\)`, false},
		{"backslash", `a\b`, `a\\b`, false},
		{"tilde outside", "a~b", "a~b", false},
		{"escape tab", "a@tb", "a\tb", false},
		{"escape formfeed", "a@fb", "a\fb", false},
		{"escape newline", "a@nb", "a\nb", false},
		{"generic escape", "a@.b", `a\.b`, false},
		{"escaped escape", "a@@b", `a\@b`, false},
		{"backref", "{a}@1", `(a)\1`, false},
		{"end anchor", "abc$", "abc$", true},
		{"inner dollar", "a$b", `a\$b`, false},
		{"newline then anchor", "abc@n$", "abc$", true},
		{"trailing escape", "abc@", "abc@", false},
		{"star", "ab*", "ab*", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, end, err := Translate(tt.src, false)
			if err != nil {
				t.Fatalf("Translate(%q): %v", tt.src, err)
			}
			if got != tt.want {
				t.Errorf("Translate(%q) = %q, want %q", tt.src, got, tt.want)
			}
			if end != tt.endAnchor {
				t.Errorf("Translate(%q) endAnchor = %v, want %v", tt.src, end, tt.endAnchor)
			}
		})
	}
}

func TestBracket(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"[abc]", "[abc]"},
		{"[~abc]", "[^abc]"},
		{"[^abc]", "[^abc]"},
		{"[a~b]", "[a~b]"},
		{"[a-z]", "[a-z]"},
		{"[-az]", "[az-]"},
		{"[az-]", "[az-]"},
		{"[~-az]", "[^az-]"},
		{"[a^b]", "[ab^]"},
		{"[a^-]", "[a^-]"},
		{"[^]", `\^`},
		{"[~]", `\~`},
		{"[\\^]", `[\\^]`},
		{"[-^]", "[-^]"},
		{"[^-]", "[^-]"},
		{"[@]]", `[\]]`},
		{"[]x]", "[]x]"},
		{"[a@nb]", "[a\nb]"},
		{"[ab", "[ab"},
	}

	for _, tt := range tests {
		got, _, err := Translate(tt.src, false)
		if err != nil {
			t.Fatalf("Translate(%q): %v", tt.src, err)
		}
		if got != tt.want {
			t.Errorf("Translate(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestReplacement(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"%x", "%x"},
		{"a?b", "a?b"},
		{"{x}", "{x}"},
		{"a.b^c", "a.b^c"},
		{"&&", "&&"},
		{"@&", `\&`},
		{"@2@1", `\2\1`},
		{"a@nb", "a\nb"},
		{"a@tb", "a\tb"},
		{`a\b`, `a\\b`},
		{"a@", "a@"},
	}
	for _, tt := range tests {
		got, _, err := Translate(tt.src, true)
		if err != nil {
			t.Fatalf("Translate(%q): %v", tt.src, err)
		}
		if got != tt.want {
			t.Errorf("Translate(%q, replacement) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestOverflow(t *testing.T) {
	tr := Translator{MaxLen: 8}
	_, _, err := tr.Pattern(strings.Repeat(".", 5))
	if !errors.Is(err, regex.ErrPatternTooLong) {
		t.Fatalf("error = %v, want ErrPatternTooLong", err)
	}
	if regex.CodeOf(err).Class() != regex.ClassCapacity {
		t.Errorf("class = %v, want capacity", regex.CodeOf(err).Class())
	}

	if _, err := tr.Replacement(strings.Repeat("x", 9)); !errors.Is(err, regex.ErrPatternTooLong) {
		t.Errorf("replacement error = %v, want ErrPatternTooLong", err)
	}
	if out, _, err := tr.Pattern("abcd"); err != nil || out != "abcd" {
		t.Errorf("Pattern(abcd) = %q, %v", out, err)
	}
}

// Translated legacy tokens must match what the legacy token was meant to.
func TestTranslatedPatternsMatch(t *testing.T) {
	tests := []struct {
		src   string
		line  string
		match bool
	}{
		{"%ab", "abx", true},
		{"%ab", "xab", false},
		{"a?c", "abc", true},
		{"a.c", "abc", false},
		{"a.c", "a.c", true},
		{"a^c", "a^c", true},
		{"{ab}c@1", "abcab", true},
		{"[~a]", "a", false},
		{"[~a]", "b", true},
		{"[-a]", "-", true},
		{"[a^]", "^", true},
		{"[^]", "^", true},
		{"(x)", "(x)", true},
		{"a@tb", "a\tb", true},
		{"ab$", "xab", true},
		{"ab@n$", "xab", true},
	}

	var m regex.Matcher
	for _, tt := range tests {
		canon, _, err := Translate(tt.src, false)
		if err != nil {
			t.Fatalf("Translate(%q): %v", tt.src, err)
		}
		p, err := regex.Compile(canon, regex.Options{})
		if err != nil {
			t.Fatalf("Compile(%q) from %q: %v", canon, tt.src, err)
		}
		if _, _, ok := m.Step(p, []byte(tt.line), 0, -1); ok != tt.match {
			t.Errorf("%q (canonical %q) on %q: match = %v, want %v", tt.src, canon, tt.line, ok, tt.match)
		}
	}
}
