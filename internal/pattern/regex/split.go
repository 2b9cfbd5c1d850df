package regex

// SplitLines cuts a canonical pattern at every line-boundary token that
// appears outside a bracket class. A pattern without such tokens comes back
// as a single segment. A boundary followed by '*' or '{' is rejected.
func SplitLines(pattern string) ([]string, error) {
	var segs []string
	begin := 0
	i := 0
	for i < len(pattern) {
		switch pattern[i] {
		case '[':
			i = skipClass(pattern, i)
			continue
		case '\\':
			if i+1 < len(pattern) && pattern[i+1] == 'n' {
				if err := checkBoundary(pattern, i, i+2); err != nil {
					return nil, err
				}
				segs = append(segs, pattern[begin:i])
				begin = i + 2
				i += 2
				continue
			}
			i += 2
			continue
		case Newline:
			if err := checkBoundary(pattern, i, i+1); err != nil {
				return nil, err
			}
			segs = append(segs, pattern[begin:i])
			begin = i + 1
		}
		i++
	}
	if begin > len(pattern) {
		begin = len(pattern)
	}
	return append(segs, pattern[begin:]), nil
}

func checkBoundary(pattern string, at, next int) error {
	if next < len(pattern) && (pattern[next] == '*' || pattern[next] == '{') {
		return &Error{Code: CodeStarredBoundary, Pattern: pattern, Offset: at}
	}
	return nil
}

// skipClass returns the offset just past the bracket class starting at i,
// or len(pattern) if it is unterminated. Compile reports that case.
func skipClass(pattern string, i int) int {
	j := i + 1
	if j < len(pattern) && pattern[j] == '^' {
		j++
	}
	if j < len(pattern) && pattern[j] == ']' {
		j++
	}
	for j < len(pattern) {
		switch pattern[j] {
		case '\\':
			j += 2
			continue
		case ']':
			return j + 1
		}
		j++
	}
	return len(pattern)
}
