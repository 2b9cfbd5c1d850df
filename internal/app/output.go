package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/sjson"
	"golang.org/x/term"

	"github.com/dshills/linepat/internal/config"
	"github.com/dshills/linepat/internal/search"
)

// ANSI sequences used to highlight matches.
const (
	highlightOn  = "\x1b[1;31m"
	highlightOff = "\x1b[0m"
)

// Edit is one substituted byte range, as reported to the session's
// colorizer before lines are re-split.
type Edit struct {
	Line   int
	Col    int
	OldLen int
	NewLen int
}

// editLog records substitutions for the result output.
type editLog struct {
	edits  []Edit
	logger *Logger
}

func (e *editLog) Shift(line, col, oldLen, newLen int) {
	e.edits = append(e.edits, Edit{Line: line, Col: col, OldLen: oldLen, NewLen: newLen})
	e.logger.Debug("edit at %d:%d, %d -> %d bytes", line+1, col+1, oldLen, newLen)
}

func (e *editLog) reset() {
	e.edits = e.edits[:0]
}

// colorEnabled decides whether to highlight output written to w.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// printer formats results as text lines or JSON objects, one per line.
type printer struct {
	w     io.Writer
	json  bool
	color bool
}

func newPrinter(w io.Writer, cfg config.OutputConfig) *printer {
	return &printer{
		w:     w,
		json:  cfg.Format == "json",
		color: cfg.Format != "json" && colorEnabled(cfg.Color, w),
	}
}

// match prints one find result.
func (p *printer) match(doc *Document, res search.Result) error {
	line := doc.Store.LineText(res.Line)
	end := res.EndCol
	if res.EndLine > res.Line {
		end = len(line)
	}
	end = min(max(end, res.Col), len(line))

	if p.json {
		js, err := matchJSON(doc, res)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.w, js)
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d:", doc.Name, res.Line+1, res.Col+1)
	b.WriteString(line[:res.Col])
	if p.color {
		b.WriteString(highlightOn)
	}
	b.WriteString(line[res.Col:end])
	if p.color {
		b.WriteString(highlightOff)
	}
	b.WriteString(line[end:])
	b.WriteByte('\n')
	_, err := io.WriteString(p.w, b.String())
	return err
}

func matchJSON(doc *Document, res search.Result) (string, error) {
	js := "{}"
	fields := []struct {
		path  string
		value any
	}{
		{"file", doc.Name},
		{"line", res.Line + 1},
		{"col", res.Col + 1},
		{"endLine", res.EndLine + 1},
		{"endCol", res.EndCol + 1},
		{"lines", res.Lines},
		{"text", doc.Store.LineText(res.Line)},
		{"match", matchText(doc, res)},
	}
	for _, f := range fields {
		var err error
		if js, err = sjson.Set(js, f.path, f.value); err != nil {
			return "", err
		}
	}
	return js, nil
}

// matchText returns the matched bytes, joining the lines of a multi-line
// match with newlines.
func matchText(doc *Document, res search.Result) string {
	var b strings.Builder
	for ln := res.Line; ln <= res.EndLine; ln++ {
		text := doc.Store.LineText(ln)
		start, end := 0, len(text)
		if ln == res.Line {
			start = min(res.Col, len(text))
		}
		if ln == res.EndLine {
			end = min(res.EndCol, len(text))
		}
		if ln > res.Line {
			b.WriteByte('\n')
		}
		if start < end {
			b.WriteString(text[start:end])
		}
	}
	return b.String()
}

// substitution prints the outcome of a substitute request. The edited text
// is included unless the document was saved in place.
func (p *printer) substitution(doc *Document, res search.Result, edits []Edit, withText bool) error {
	if !p.json {
		if !withText {
			return nil
		}
		_, err := doc.Store.WriteTo(p.w)
		return err
	}

	js, err := substitutionJSON(doc, res, edits, withText)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.w, js)
	return err
}

func substitutionJSON(doc *Document, res search.Result, edits []Edit, withText bool) (string, error) {
	js, err := sjson.Set("{}", "file", doc.Name)
	if err != nil {
		return "", err
	}
	if js, err = sjson.Set(js, "substitutions", res.Substitutions); err != nil {
		return "", err
	}
	if js, err = sjson.Set(js, "linesChanged", res.LinesChanged); err != nil {
		return "", err
	}
	if res.Found() {
		if js, err = sjson.Set(js, "last.line", res.Line+1); err != nil {
			return "", err
		}
		if js, err = sjson.Set(js, "last.col", res.Col+1); err != nil {
			return "", err
		}
	}
	if js, err = sjson.SetRaw(js, "edits", "[]"); err != nil {
		return "", err
	}
	for _, e := range edits {
		raw := fmt.Sprintf(`{"line":%d,"col":%d,"oldLen":%d,"newLen":%d}`, e.Line+1, e.Col+1, e.OldLen, e.NewLen)
		if js, err = sjson.SetRaw(js, "edits.-1", raw); err != nil {
			return "", err
		}
	}
	if withText {
		if js, err = sjson.Set(js, "text", doc.Store.Text()); err != nil {
			return "", err
		}
	}
	return js, nil
}
