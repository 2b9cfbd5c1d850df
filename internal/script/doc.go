// Package script runs Lua scripts against a line store.
//
// Scripts get two modules. pat compiles and runs patterns:
//
//	pat.compile(pattern [, {legacy = bool, icase = bool}]) -> true | nil, err
//	pat.find(line [, col [, reverse]]) -> line, col, endline, endcol | nil
//	pat.sub(first, last, replacement [, once]) -> subs, lines | nil, err
//	pat.group(n) -> text | nil
//
// buf reads the store:
//
//	buf.line(n) -> text
//	buf.count() -> number
//	buf.text() -> string
//
// Lines and columns are 1-based. End columns are exclusive, so a match of
// the first three bytes of a line has col 1 and endcol 4. A reverse find
// returns the right-most match ending at or before col. A last line of 0
// in pat.sub means the end of the buffer.
//
// The Lua state is sandboxed: only the base, table, string and math
// libraries are opened and the loaders that reach the file system are
// removed.
package script
