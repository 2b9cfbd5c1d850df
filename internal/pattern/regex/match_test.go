package regex

import "testing"

func TestStep(t *testing.T) {
	tests := []struct {
		pattern string
		line    string
		start   int
		end     int
		ok      bool
	}{
		{"abc", "xxabcxx", 2, 5, true},
		{"abc", "ababab", -1, -1, false},
		{"a.c", "zzabc", 2, 5, true},
		{"a*", "bbb", 0, 0, true},
		{"ba*", "xbaaay", 1, 5, true},
		{"a*ab", "aaab", 0, 4, true},
		{".*c", "abcabc", 0, 6, true},
		{"^ab", "abab", 0, 2, true},
		{"^ab", "xab", -1, -1, false},
		{"ab$", "abab", 2, 4, true},
		{"^$", "", 0, 0, true},
		{"[0-9][0-9]*", "abc 123 x", 4, 7, true},
		{"[^a-c]", "abcd", 3, 4, true},
		{"[]x]", "a]b", 1, 2, true},
		{"[a-]", "x-y", 1, 2, true},
		{"[\x80-\xff]", "ab\xe9c", 2, 3, true},
		{"[^a]", "a\xe9", 1, 2, true},
		{".", "\n", -1, -1, false},
		{`\t`, "a\tb", 1, 2, true},
		{"a$b", "xa$b", 1, 4, true},
	}

	var m Matcher
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.line, func(t *testing.T) {
			p := MustCompile(tt.pattern, Options{})
			start, end, ok := m.Step(p, []byte(tt.line), 0, -1)
			if ok != tt.ok || start != tt.start || end != tt.end {
				t.Errorf("Step = (%d, %d, %v), want (%d, %d, %v)", start, end, ok, tt.start, tt.end, tt.ok)
			}
		})
	}
}

func TestStepLeftmostMatchesAdvance(t *testing.T) {
	patterns := []string{"ab", "a*b", "[bc]c*", "(a)b\\1", "b{2}"}
	lines := []string{"aabab", "cbbcc", "abab", "xbbbx", "ababa"}

	var m Matcher
	for _, pat := range patterns {
		p := MustCompile(pat, Options{})
		for _, line := range lines {
			start, _, ok := m.Step(p, []byte(line), 0, -1)
			first := -1
			for pos := 0; pos <= len(line); pos++ {
				if _, hit := m.Advance(p, []byte(line), pos, -1); hit {
					first = pos
					break
				}
			}
			if ok != (first >= 0) || (ok && start != first) {
				t.Errorf("%q on %q: Step start %d (ok=%v), first Advance hit %d", pat, line, start, ok, first)
			}
		}
	}
}

func TestBackreference(t *testing.T) {
	var m Matcher
	p := MustCompile(`(ab)c\1`, Options{})

	start, end, ok := m.Step(p, []byte("abcab"), 0, -1)
	if !ok || start != 0 || end != 5 {
		t.Fatalf("Step = (%d, %d, %v), want (0, 5, true)", start, end, ok)
	}
	if g := m.Group(1); g.Start != 0 || g.End != 2 {
		t.Errorf("group 1 = %+v, want {0 2}", g)
	}

	if _, _, ok := m.Step(p, []byte("abcxy"), 0, -1); ok {
		t.Error("abcxy should not match")
	}
}

func TestStarredBackreference(t *testing.T) {
	var m Matcher
	p := MustCompile(`(ab)\1*c`, Options{})
	start, end, ok := m.Step(p, []byte("xabababc"), 0, -1)
	if !ok || start != 1 || end != 8 {
		t.Errorf("Step = (%d, %d, %v), want (1, 8, true)", start, end, ok)
	}

	// The run gives back whole copies of the group.
	p = MustCompile(`(ab)\1*ab$`, Options{})
	if _, end, ok := m.Step(p, []byte("ababab"), 0, -1); !ok || end != 6 {
		t.Errorf("backtracking over starred back-reference: end=%d ok=%v", end, ok)
	}
}

func TestBoundedRepetition(t *testing.T) {
	var m Matcher
	p := MustCompile("a{2,3}", Options{})

	tests := []struct {
		line string
		end  int
		ok   bool
	}{
		{"a", -1, false},
		{"aa", 2, true},
		{"aaa", 3, true},
		{"aaaa", 3, true},
	}
	for _, tt := range tests {
		end, ok := m.Advance(p, []byte(tt.line), 0, -1)
		if ok != tt.ok || end != tt.end {
			t.Errorf("%q: Advance = (%d, %v), want (%d, %v)", tt.line, end, ok, tt.end, tt.ok)
		}
	}

	// Backtracking into the margin above the minimum.
	p = MustCompile("a{2,4}ab", Options{})
	if end, ok := m.Advance(p, []byte("aaaab"), 0, -1); !ok || end != 5 {
		t.Errorf("a{2,4}ab: Advance = (%d, %v)", end, ok)
	}
	p = MustCompile("a{3}", Options{})
	if end, ok := m.Advance(p, []byte("aaaa"), 0, -1); !ok || end != 3 {
		t.Errorf("a{3}: Advance = (%d, %v)", end, ok)
	}
	p = MustCompile("xa{2,}", Options{})
	if end, ok := m.Advance(p, []byte("xaaaaa"), 0, -1); !ok || end != 6 {
		t.Errorf("xa{2,}: Advance = (%d, %v)", end, ok)
	}
}

func TestCaptureRestoreOnBacktrack(t *testing.T) {
	var m Matcher
	p := MustCompile("(a*)(a)b", Options{})
	if _, ok := m.Advance(p, []byte("aaab"), 0, -1); !ok {
		t.Fatal("expected match")
	}
	if g := m.Group(1); g.Start != 0 || g.End != 2 {
		t.Errorf("group 1 = %+v, want {0 2}", g)
	}
	if g := m.Group(2); g.Start != 2 || g.End != 3 {
		t.Errorf("group 2 = %+v, want {2 3}", g)
	}
}

func TestFoldCase(t *testing.T) {
	var m Matcher
	p := MustCompile("ABC", Options{FoldCase: true})
	start, end, ok := m.Step(p, []byte("xabcx"), 0, -1)
	if !ok || start != 1 || end != 4 {
		t.Errorf("Step = (%d, %d, %v), want (1, 4, true)", start, end, ok)
	}

	p = MustCompile("[a-c]x", Options{FoldCase: true})
	if _, _, ok := m.Step(p, []byte("BX"), 0, -1); !ok {
		t.Error("folded class should match upper case")
	}

	p = MustCompile(`(ab)\1`, Options{FoldCase: true})
	if _, _, ok := m.Step(p, []byte("abAB"), 0, -1); !ok {
		t.Error("folded back-reference should match")
	}

	p = MustCompile("abc", Options{})
	if _, _, ok := m.Step(p, []byte("ABC"), 0, -1); ok {
		t.Error("unfolded program should not match other case")
	}
}

func TestLimit(t *testing.T) {
	var m Matcher
	p := MustCompile("ab*", Options{})
	end, ok := m.Advance(p, []byte("abbbb"), 0, 3)
	if !ok || end != 3 {
		t.Errorf("Advance with limit = (%d, %v), want (3, true)", end, ok)
	}

	p = MustCompile("b$", Options{})
	if _, _, ok := m.Step(p, []byte("abbbb"), 0, 3); ok {
		t.Error("end anchor must test the real end of line")
	}
}

func TestLast(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		line    string
		last    int
		limit   int
		start   int
		end     int
	}{
		{"start at bound", "a", "aaa", 2, 3, 2, 3},
		{"start before bound", "a", "aaa", 1, 2, 1, 2},
		{"whole line", "a", "aaa", -1, -1, 2, 3},
		{"no fit", "a", "baa", 0, 1, -1, -1},
		{"greedy run shortened", "xa*", "xaaaa", 3, 3, 0, 3},
		{"anchored", "^a", "aaa", -1, -1, 0, 1},
		{"run beats empty at bound", "a*", "bab", 3, 3, 1, 2},
		{"run cut by limit", "a*", "baa", 2, 2, 1, 2},
		{"only empty", "x*", "ab", -1, -1, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Matcher
			p := MustCompile(tt.pattern, Options{})
			start, end, ok := m.Last(p, []byte(tt.line), 0, tt.last, tt.limit)
			if tt.start < 0 {
				if ok {
					t.Fatalf("Last = (%d, %d), want no match", start, end)
				}
				return
			}
			if !ok || start != tt.start || end != tt.end {
				t.Fatalf("Last = (%d, %d, %v), want (%d, %d, true)", start, end, ok, tt.start, tt.end)
			}
			if c := m.Captures()[0]; c.Start != start || c.End != end {
				t.Errorf("group 0 = %+v, want [%d,%d)", c, start, end)
			}
		})
	}
}
