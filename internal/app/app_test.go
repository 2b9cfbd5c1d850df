package app

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/dshills/linepat/internal/config"
	"github.com/dshills/linepat/internal/pattern/regex"
)

type runResult struct {
	app    *Application
	stdout string
	stderr string
	err    error
}

func runApp(t *testing.T, opts Options, stdin string) runResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	opts.Stdin = strings.NewReader(stdin)
	opts.Stdout = &stdout
	opts.Stderr = &stderr
	if opts.Environ == nil {
		opts.Environ = []string{}
	}
	if opts.Color == "" {
		opts.Color = "never"
	}
	if opts.LogLevel == "" {
		opts.LogLevel = "warn"
	}

	app, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	err = app.Run(context.Background())
	return runResult{app: app, stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sample = "foo bar\nbaz foo\n"

func TestFind(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		input string
		want  string
	}{
		{
			name:  "forward",
			opts:  Options{Pattern: "fo*"},
			input: sample,
			want:  stdinName + ":1:1:foo bar\n" + stdinName + ":2:5:baz foo\n",
		},
		{
			name:  "reverse",
			opts:  Options{Pattern: "fo*", Reverse: true},
			input: sample,
			want:  stdinName + ":2:5:baz foo\n" + stdinName + ":1:1:foo bar\n",
		},
		{
			name:  "every match on a line",
			opts:  Options{Pattern: "o"},
			input: "foo\n",
			want:  stdinName + ":1:2:foo\n" + stdinName + ":1:3:foo\n",
		},
		{
			name:  "reverse every match on a line",
			opts:  Options{Pattern: "o", Reverse: true},
			input: "foo\n",
			want:  stdinName + ":1:3:foo\n" + stdinName + ":1:2:foo\n",
		},
		{
			name:  "empty match abutting a match is skipped",
			opts:  Options{Pattern: "a*"},
			input: "baa\n",
			want:  stdinName + ":1:1:baa\n" + stdinName + ":1:2:baa\n",
		},
		{
			name:  "line range",
			opts:  Options{Pattern: "foo", FirstLine: 2},
			input: sample,
			want:  stdinName + ":2:5:baz foo\n",
		},
		{
			name:  "reverse line range",
			opts:  Options{Pattern: "foo", Reverse: true, LastLine: 1},
			input: sample,
			want:  stdinName + ":1:1:foo bar\n",
		},
		{
			name:  "rectangle",
			opts:  Options{Pattern: "foo", Rect: true, RectStart: 4, RectEnd: 7},
			input: "foo foo\nfoo\n",
			want:  stdinName + ":1:5:foo foo\n",
		},
		{
			name:  "ignore case",
			opts:  Options{Pattern: "BAZ", IgnoreCase: true},
			input: sample,
			want:  stdinName + ":2:1:baz foo\n",
		},
		{
			name:  "legacy flag",
			opts:  Options{Pattern: "%baz", Legacy: true},
			input: sample,
			want:  stdinName + ":2:1:baz foo\n",
		},
		{
			name:  "legacy from environment",
			opts:  Options{Pattern: "?az", Environ: []string{"LINEPAT_DIALECT=legacy"}},
			input: sample,
			want:  stdinName + ":2:1:baz foo\n",
		},
		{
			name:  "multi-line",
			opts:  Options{Pattern: "bar\\nbaz"},
			input: sample,
			want:  stdinName + ":1:5:foo bar\n",
		},
		{
			name:  "no match",
			opts:  Options{Pattern: "qux"},
			input: sample,
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := runApp(t, tt.opts, tt.input)
			if r.err != nil {
				t.Fatalf("Run() error = %v", r.err)
			}
			if r.stdout != tt.want {
				t.Errorf("stdout = %q, want %q", r.stdout, tt.want)
			}
			if r.app.Found() != (tt.want != "") {
				t.Errorf("Found() = %v", r.app.Found())
			}
		})
	}
}

func TestFindColor(t *testing.T) {
	r := runApp(t, Options{Pattern: "bar", Color: "always"}, sample)
	want := stdinName + ":1:5:foo " + highlightOn + "bar" + highlightOff + "\n"
	if r.stdout != want {
		t.Errorf("stdout = %q, want %q", r.stdout, want)
	}
}

func TestFindJSON(t *testing.T) {
	r := runApp(t, Options{Pattern: "bar\\nbaz", Format: "json"}, sample)
	lines := strings.Split(strings.TrimSpace(r.stdout), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines: %q", len(lines), r.stdout)
	}
	js := lines[0]
	checks := map[string]any{
		"file":    stdinName,
		"line":    int64(1),
		"col":     int64(5),
		"endLine": int64(2),
		"endCol":  int64(4),
		"lines":   int64(2),
		"text":    "foo bar",
		"match":   "bar\nbaz",
	}
	for path, want := range checks {
		v := gjson.Get(js, path)
		var got any = v.String()
		if _, ok := want.(int64); ok {
			got = v.Int()
		}
		if got != want {
			t.Errorf("%s = %v, want %v", path, got, want)
		}
	}
}

func TestSubstitute(t *testing.T) {
	r := runApp(t, Options{Pattern: "o", Substitute: true, Replacement: "0", LogLevel: "info"}, sample)
	if r.err != nil {
		t.Fatalf("Run() error = %v", r.err)
	}
	if r.stdout != "f00 bar\nbaz f00\n" {
		t.Errorf("stdout = %q", r.stdout)
	}
	if !strings.Contains(r.stderr, "4 substitution(s) on 2 line(s)") {
		t.Errorf("stderr = %q", r.stderr)
	}
	snap := r.app.Metrics().Snapshot()
	if snap.Substitutions != 4 || snap.LinesChanged != 2 || snap.Files != 1 {
		t.Errorf("metrics = %+v", snap)
	}
}

func TestSubstituteOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"once", Options{Pattern: "o", Replacement: "0", Once: true}, "f0o bar\nbaz f0o\n"},
		{"reverse once", Options{Pattern: "o", Replacement: "0", Once: true, Reverse: true}, "fo0 bar\nbaz fo0\n"},
		{"empty matches", Options{Pattern: "a*", Replacement: "X"}, "XfXoXoX XbXrX\nXbXzX XfXoXoX\n"},
		{"reverse empty matches", Options{Pattern: "a*", Replacement: "X", Reverse: true}, "XfXoXoX XbXrX\nXbXzX XfXoXoX\n"},
		{"groups", Options{Pattern: "(ba)(.)", Replacement: "\\2\\1"}, "foo rba\nzba foo\n"},
		{"newline", Options{Pattern: " ", Replacement: "\\n"}, "foo\nbar\nbaz\nfoo\n"},
		{"join lines", Options{Pattern: "bar\\nbaz", Replacement: "-"}, "foo - foo\n"},
		{"lines", Options{Pattern: "foo", Replacement: "x", FirstLine: 2, LastLine: 2}, "foo bar\nbaz x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Substitute = true
			r := runApp(t, tt.opts, sample)
			if r.err != nil {
				t.Fatalf("Run() error = %v", r.err)
			}
			if r.stdout != tt.want {
				t.Errorf("stdout = %q, want %q", r.stdout, tt.want)
			}
		})
	}
}

func TestSubstituteInPlaceJSON(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "one two\n")
	b := writeFile(t, dir, "b.txt", "two two\r\n")

	r := runApp(t, Options{
		Files:       []string{a, b},
		Pattern:     "two",
		Substitute:  true,
		Replacement: "2",
		InPlace:     true,
		Format:      "json",
	}, "")
	if r.err != nil {
		t.Fatalf("Run() error = %v", r.err)
	}

	for path, want := range map[string]string{a: "one 2\n", b: "2 2\r\n"} {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want %q", path, data, want)
		}
	}

	lines := strings.Split(strings.TrimSpace(r.stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d JSON lines: %q", len(lines), r.stdout)
	}
	second := lines[1]
	if gjson.Get(second, "file").String() != b || gjson.Get(second, "substitutions").Int() != 2 {
		t.Errorf("second = %s", second)
	}
	if n := len(gjson.Get(second, "edits").Array()); n != 2 {
		t.Errorf("edits = %d, want 2", n)
	}
	if gjson.Get(second, "edits.1.col").Int() != 3 || gjson.Get(second, "edits.1.newLen").Int() != 1 {
		t.Errorf("edits = %s", gjson.Get(second, "edits").Raw)
	}
	if gjson.Get(second, "text").Exists() {
		t.Error("in-place output should not carry the text")
	}
	if gjson.Get(second, "last.col").Int() != 3 {
		t.Errorf("last = %s", gjson.Get(second, "last").Raw)
	}
}

func TestScript(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.txt", sample)
	script := writeFile(t, dir, "edit.lua", `
		assert(pat.compile("baz"))
		local l, c = pat.find(1)
		print(l, c)
		pat.sub(1, 0, "qux")
	`)

	r := runApp(t, Options{Files: []string{in}, ScriptPath: script, InPlace: true}, "")
	if r.err != nil {
		t.Fatalf("Run() error = %v", r.err)
	}
	if r.stdout != "2\t1\n" {
		t.Errorf("stdout = %q", r.stdout)
	}
	data, _ := os.ReadFile(in)
	if string(data) != "foo bar\nqux foo\n" {
		t.Errorf("file = %q", data)
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.txt", "foo\n")
	missing := filepath.Join(dir, "missing.txt")

	r := runApp(t, Options{Files: []string{missing, good}, Pattern: "foo"}, "")
	if !errors.Is(r.err, fs.ErrNotExist) {
		t.Errorf("Run() error = %v, want ErrNotExist", r.err)
	}
	if r.stdout != good+":1:1:foo\n" {
		t.Errorf("remaining input not processed: %q", r.stdout)
	}
	if r.app.Metrics().Snapshot().Failures != 1 {
		t.Errorf("failures = %d", r.app.Metrics().Snapshot().Failures)
	}

	r = runApp(t, Options{Pattern: "(a"}, "abc\n")
	if !errors.Is(r.err, regex.ErrUnbalancedParen) {
		t.Errorf("compile error = %v", r.err)
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want error
	}{
		{"no pattern", Options{}, ErrNoPattern},
		{"in place stdin", Options{Pattern: "a", InPlace: true}, ErrInPlaceStdin},
		{"bad lines", Options{Pattern: "a", FirstLine: 3, LastLine: 2}, ErrInvalidRange},
		{"bad rect", Options{Pattern: "a", Rect: true, RectStart: 5, RectEnd: 2}, ErrInvalidRange},
		{"bad format", Options{Pattern: "a", Format: "xml", Environ: []string{}}, config.ErrValidationFailed},
		{"bad env", Options{Pattern: "a", Environ: []string{"LINEPAT_COLOR=rainbow"}}, config.ErrValidationFailed},
		{"missing config", Options{Pattern: "a", ConfigPath: "/nonexistent/linepat.toml", Environ: []string{}}, config.ErrFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts); !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}
