// Package search runs find and substitute commands over a line store.
//
// A Session owns everything one find/substitute slot needs: the compiled
// pattern segments, the capture spans of the most recent match, the saved
// replacement text and running counts. Sessions are not safe for concurrent
// use; an editor keeps one per slot and serializes calls to it.
//
// # Multi-line patterns
//
// A line-boundary token (\n, or a raw newline) outside a bracket class splits
// the pattern into segments. The first segment must match through the end
// of its line, each following segment is matched anchored against the next
// line pulled from the store, and the last segment may end anywhere. A
// bracket class that lists the boundary byte is tried as written and then
// with the class read as an end anchor.
//
// # Substitution
//
// Replacement text may contain '&' for the whole match, \1 through \9 for
// groups and \n for a line break. Line breaks are written into the store as
// raw newline bytes and a final pass splits those lines bottom to top,
// correcting the reported position and the end of the range.
package search
