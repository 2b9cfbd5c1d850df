// Package linestore provides an in-memory line store for the search engine.
//
// A Store keeps text as a slice of lines without terminators. It implements
// search.LineStore, so find and substitute commands can run over it, and it
// remembers the line ending style of the text it was loaded from so that
// writing it back preserves the file's conventions.
//
// Basic usage:
//
//	st := linestore.NewFromString("alpha\nbeta\n")
//	sess := search.NewSession()
//	res, err := sess.Search(st, search.Request{EndLine: -1, EndCol: -1, Pattern: "b.ta"})
//
// All Store methods are safe for concurrent use. Cursors are not; each
// goroutine should take its own.
package linestore
