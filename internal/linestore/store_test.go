package linestore

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/dshills/linepat/internal/search"
)

func TestNewFromString(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		lines  []string
		ending LineEnding
	}{
		{"empty", "", []string{}, LineEndingLF},
		{"one line", "abc", []string{"abc"}, LineEndingLF},
		{"final newline", "a\nb\n", []string{"a", "b"}, LineEndingLF},
		{"blank line", "\n", []string{""}, LineEndingLF},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}, LineEndingCRLF},
		{"cr", "a\rb", []string{"a", "b"}, LineEndingCR},
		{"mixed", "a\r\nb\nc\r\n", []string{"a", "b", "c"}, LineEndingCRLF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewFromString(tt.text)
			if got := s.Lines(); !reflect.DeepEqual(got, tt.lines) {
				t.Errorf("lines = %q, want %q", got, tt.lines)
			}
			if s.LineEnding() != tt.ending {
				t.Errorf("ending = %v, want %v", s.LineEnding(), tt.ending)
			}
		})
	}
}

func TestTextRoundTrip(t *testing.T) {
	for _, text := range []string{"", "abc", "a\nb\n", "a\r\nb\r\n", "a\rb", "\n\n"} {
		if got := NewFromString(text).Text(); got != text {
			t.Errorf("Text() of %q = %q", text, got)
		}
	}
	s := NewFromString("a\nb", WithCRLF(), WithFinalNewline(true))
	if got := s.Text(); got != "a\r\nb\r\n" {
		t.Errorf("Text() = %q", got)
	}
}

func TestNewFromReader(t *testing.T) {
	s, err := NewFromReader(strings.NewReader("x\ny\n"))
	if err != nil {
		t.Fatalf("NewFromReader: %v", err)
	}
	if s.LineCount() != 2 || s.LineText(1) != "y" {
		t.Errorf("lines = %q", s.Lines())
	}
}

func TestEdits(t *testing.T) {
	s := NewFromString("a\nb\nc")
	rev := s.Revision()

	if err := s.Replace(1, []byte("B")); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := s.Insert(0, []byte("top")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(s.LineCount(), []byte("end")); err != nil {
		t.Fatalf("Insert at end: %v", err)
	}
	if err := s.Delete(1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	want := []string{"top", "B", "c", "end"}
	if got := s.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
	if s.Revision() == rev {
		t.Error("revision unchanged after edits")
	}

	for _, err := range []error{
		s.Replace(9, nil),
		s.Insert(9, nil),
		s.Delete(-1),
	} {
		if !errors.Is(err, ErrLineOutOfRange) {
			t.Errorf("error = %v, want ErrLineOutOfRange", err)
		}
	}
	if _, err := s.Line(4); !errors.Is(err, ErrLineOutOfRange) {
		t.Errorf("Line(4) error = %v", err)
	}
}

func TestReplaceCopies(t *testing.T) {
	s := NewFromString("a")
	buf := []byte("xyz")
	if err := s.Replace(0, buf); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'Q'
	if s.LineText(0) != "xyz" {
		t.Errorf("store aliased caller buffer: %q", s.LineText(0))
	}
	if err := s.Replace(0, nil); err != nil {
		t.Fatal(err)
	}
	if l, _ := s.Line(0); l == nil || len(l) != 0 {
		t.Errorf("empty replace = %v", l)
	}
}

func TestCursor(t *testing.T) {
	s := NewFromString("a\nb\nc")
	c := s.Cursor()
	if err := c.Seek(1); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	var got []string
	for {
		_, text, ok := c.Next()
		if !ok {
			break
		}
		got = append(got, string(text))
	}
	if !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("Next = %q", got)
	}

	if err := c.Seek(2); err != nil {
		t.Fatal(err)
	}
	got = got[:0]
	for {
		n, text, ok := c.Prev()
		if !ok {
			break
		}
		if string(text) != s.LineText(n) {
			t.Errorf("Prev line %d = %q", n, text)
		}
		got = append(got, string(text))
	}
	if !reflect.DeepEqual(got, []string{"c", "b", "a"}) {
		t.Errorf("Prev = %q", got)
	}
	if err := c.Seek(3); !errors.Is(err, ErrLineOutOfRange) {
		t.Errorf("Seek(3) error = %v", err)
	}
}

func TestDetectLineEnding(t *testing.T) {
	tests := []struct {
		text string
		want LineEnding
	}{
		{"", LineEndingLF},
		{"a\nb", LineEndingLF},
		{"a\r\nb\r\nc\n", LineEndingCRLF},
		{"a\rb\rc\n", LineEndingCR},
	}
	for _, tt := range tests {
		if got := DetectLineEnding(tt.text); got != tt.want {
			t.Errorf("DetectLineEnding(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
	if LineEndingCRLF.Sequence() != "\r\n" || LineEndingCR.String() != "\\r" {
		t.Error("unexpected line ending text")
	}
}

func TestConcurrentReads(t *testing.T) {
	s := NewFromString(strings.Repeat("line\n", 100))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < s.LineCount(); n++ {
				if _, err := s.Line(n); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestSearchOverStore(t *testing.T) {
	s := NewFromString("one two\nthree\r\n")
	sess := search.NewSession()
	req := search.Request{EndLine: -1, EndCol: -1, Pattern: "o", Substitute: true, Replacement: `0\n`}
	res, err := sess.Search(s, req)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Substitutions != 2 {
		t.Errorf("Substitutions = %d, want 2", res.Substitutions)
	}
	want := []string{"0", "ne tw0", "", "three"}
	if got := s.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}

	var out bytes.Buffer
	if _, err := s.WriteTo(&out); err != nil {
		t.Fatal(err)
	}
	if out.String() != "0\r\nne tw0\r\n\r\nthree\r\n" {
		t.Errorf("written = %q", out.String())
	}
}
