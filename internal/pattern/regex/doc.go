// Package regex implements the byte-oriented pattern compiler and
// backtracking matcher used by find and substitute.
//
// Patterns are compiled in a single left-to-right pass into a flat bytecode
// program with a hard size limit. Programs are immutable and may be shared;
// all per-match state (capture spans and the backtrack stack) lives in a
// Matcher, which must not be used by two matches at once.
//
// # Dialect
//
//   - c        literal byte
//   - .        any byte except newline
//   - ^ $      start and end anchors (first and last element only)
//   - [..]     bracket class, [^..] negated class
//   - *        zero or more of the preceding atom
//   - {m,n}    bounded repetition of the preceding atom
//   - ( )      capture group, at most nine
//   - \1..\9   back-reference to a closed group
//   - \t \f    tab and form feed
//   - \n       line-boundary token (see SplitLines)
//
// Line-boundary tokens are not modelled by the program itself. Callers that
// want matches to continue onto the following line split the pattern with
// SplitLines and compile each segment with Options.EndAnchor and
// Options.StartAnchor set as appropriate.
package regex
