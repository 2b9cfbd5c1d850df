// Package app wires configuration, line stores and a search session into
// the linepat command.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dshills/linepat/internal/config"
	"github.com/dshills/linepat/internal/script"
	"github.com/dshills/linepat/internal/search"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// Environ replaces the process environment when non-nil.
	Environ []string

	// Files are the inputs. No files means standard input.
	Files []string

	// Pattern is the pattern to search for.
	Pattern string

	// Substitute replaces every match with Replacement.
	Substitute  bool
	Replacement string

	// Legacy and IgnoreCase override the configured defaults when set.
	Legacy     bool
	IgnoreCase bool

	Reverse bool
	Once    bool

	// FirstLine and LastLine bound the search, 1-based and inclusive.
	// Zero means the first or last line of the input.
	FirstLine int
	LastLine  int

	// Rect restricts matches to the byte columns [RectStart, RectEnd).
	Rect      bool
	RectStart int
	RectEnd   int

	// ScriptPath names a Lua script to run against each input instead of
	// a single find or substitute.
	ScriptPath string

	// InPlace writes substituted text back to the input files.
	InPlace bool

	// Format, Color and LogLevel override the configured output when set.
	Format   string
	Color    string
	LogLevel string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Application runs one linepat invocation.
type Application struct {
	config  *config.Config
	logger  *Logger
	session *search.Session
	edits   *editLog
	metrics *Metrics
	printer *printer

	search config.SearchConfig
	script string
	found  bool

	opts Options
}

// New loads the configuration and prepares a session.
func New(opts Options) (*Application, error) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Pattern == "" && opts.ScriptPath == "" {
		return nil, ErrNoPattern
	}
	if err := checkRange(opts); err != nil {
		return nil, err
	}

	cfgOpts := []config.Option{config.WithFile(opts.ConfigPath)}
	if opts.Environ != nil {
		cfgOpts = append(cfgOpts, config.WithEnviron(opts.Environ))
	}
	cfg := config.New(cfgOpts...)
	if err := cfg.Load(); err != nil {
		return nil, NewInputError(StageConfig, opts.ConfigPath, err)
	}
	if err := applyOverrides(cfg, opts); err != nil {
		return nil, err
	}

	logger := NewLogger(LoggerConfig{
		Level:  ParseLogLevel(cfg.Logging().Level),
		Output: opts.Stderr,
		Prefix: "linepat",
	})

	app := &Application{
		config:  cfg,
		logger:  logger,
		edits:   &editLog{logger: logger.WithComponent("edits")},
		metrics: NewMetrics(),
		printer: newPrinter(opts.Stdout, cfg.Output()),
		search:  cfg.Search(),
		opts:    opts,
	}
	app.session = search.NewSession(
		search.WithMaxLineLen(app.search.MaxLineLen),
		search.WithMaxPatternLen(app.search.MaxPatternLen),
		search.WithMaxProgramSize(app.search.MaxProgramSize),
		search.WithLogger(logger.WithComponent("search")),
		search.WithColorizer(app.edits),
	)

	if opts.ScriptPath != "" {
		code, err := os.ReadFile(opts.ScriptPath)
		if err != nil {
			return nil, NewInputError(StageScript, opts.ScriptPath, err)
		}
		app.script = string(code)
	}

	logger.Debug("session %s ready, dialect %s", app.session.ID(), app.search.Dialect)
	return app, nil
}

func checkRange(opts Options) error {
	switch {
	case opts.FirstLine < 0 || opts.LastLine < 0:
		return fmt.Errorf("%w: negative line", ErrInvalidRange)
	case opts.LastLine > 0 && opts.FirstLine > opts.LastLine:
		return fmt.Errorf("%w: lines %d:%d", ErrInvalidRange, opts.FirstLine, opts.LastLine)
	case opts.Rect && (opts.RectStart < 0 || (opts.RectEnd >= 0 && opts.RectEnd < opts.RectStart)):
		return fmt.Errorf("%w: columns %d:%d", ErrInvalidRange, opts.RectStart, opts.RectEnd)
	case opts.InPlace && len(opts.Files) == 0:
		return ErrInPlaceStdin
	}
	return nil
}

// applyOverrides sets command-line values with the highest priority.
func applyOverrides(cfg *config.Config, opts Options) error {
	var overrides []struct {
		path  string
		value any
	}
	add := func(path string, value any) {
		overrides = append(overrides, struct {
			path  string
			value any
		}{path, value})
	}
	if opts.Legacy {
		add(config.PathDialect, config.DialectLegacy)
	}
	if opts.IgnoreCase {
		add(config.PathIgnoreCase, true)
	}
	if opts.Format != "" {
		add(config.PathFormat, opts.Format)
	}
	if opts.Color != "" {
		add(config.PathColor, opts.Color)
	}
	if opts.LogLevel != "" {
		add(config.PathLogLevel, opts.LogLevel)
	}
	for _, o := range overrides {
		if err := cfg.Set(o.path, o.value); err != nil {
			return err
		}
	}
	return nil
}

// Logger returns the application's logger.
func (app *Application) Logger() *Logger {
	return app.logger
}

// Metrics returns the run counters.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Found reports whether any input matched.
func (app *Application) Found() bool {
	return app.found
}

// Run processes every input. Failures on one input are collected and the
// remaining inputs are still processed.
func (app *Application) Run(ctx context.Context) error {
	inputs := app.opts.Files
	if len(inputs) == 0 {
		inputs = []string{""}
	}
	errs := &RunError{Inputs: len(inputs)}
	for _, path := range inputs {
		if err := ctx.Err(); err != nil {
			errs.add(err)
			break
		}
		if err := app.process(ctx, path); err != nil {
			app.metrics.RecordFailure()
			app.logger.Error("%v", err)
			errs.add(err)
		}
	}

	snap := app.metrics.Snapshot()
	app.logger.Debug("%d file(s), %d match(es), %d substitution(s) on %d line(s), %d search call(s) in %s",
		snap.Files, snap.Matches, snap.Substitutions, snap.LinesChanged, snap.Searches, snap.Elapsed)
	return errs.err()
}

func (app *Application) process(ctx context.Context, path string) error {
	doc, err := app.open(path)
	if err != nil {
		return NewInputError(StageOpen, path, err)
	}
	app.metrics.RecordFile()

	switch {
	case app.script != "":
		err = app.runScript(ctx, doc)
	case app.opts.Substitute:
		err = app.substitute(doc)
	default:
		err = app.find(doc)
	}
	if err != nil {
		return NewInputError(StageSearch, doc.Name, err)
	}
	return nil
}

func (app *Application) open(path string) (*Document, error) {
	if path == "" || path == "-" {
		return NewDocument("", app.opts.Stdin)
	}
	return OpenDocument(path)
}

// request builds the base request for doc with the range options resolved.
func (app *Application) request(doc *Document) search.Request {
	first := max(app.opts.FirstLine-1, 0)
	last := -1
	if app.opts.LastLine > 0 {
		last = app.opts.LastLine - 1
	}

	req := search.Request{
		StartLine:  first,
		StartCol:   0,
		EndLine:    last,
		EndCol:     -1,
		Pattern:    app.opts.Pattern,
		Legacy:     app.search.Legacy(),
		IgnoreCase: app.search.IgnoreCase,
		Rect:       app.opts.Rect,
		RectStart:  app.opts.RectStart,
		RectEnd:    app.opts.RectEnd,
		Once:       app.opts.Once,
	}
	if app.opts.Reverse {
		if last < 0 || last >= doc.Store.LineCount() {
			last = doc.Store.LineCount() - 1
		}
		req.Direction = search.Reverse
		req.StartLine, req.StartCol = last, -1
		req.EndLine, req.EndCol = first, 0
	}
	return req
}

func (app *Application) searchOnce(doc *Document, req search.Request) (search.Result, error) {
	t := StartTimer()
	res, err := app.session.Search(doc.Store, req)
	app.metrics.RecordSearch(t.Elapsed())
	return res, err
}

// find reports every match in doc, skipping empty matches that abut the
// previous match.
func (app *Application) find(doc *Document) error {
	req := app.request(doc)
	if req.StartLine < 0 || req.StartLine >= doc.Store.LineCount() {
		return nil
	}
	if req.Direction == search.Reverse && req.EndLine > req.StartLine {
		return nil
	}

	prevLine, prevCol := -1, -1
	for {
		res, err := app.searchOnce(doc, req)
		if err != nil {
			return err
		}
		if !res.Found() {
			return nil
		}
		req.Pattern = ""

		empty := res.EndLine == res.Line && res.EndCol == res.Col
		if !(empty && res.Line == prevLine && res.Col == prevCol) {
			app.found = true
			app.metrics.RecordMatch()
			if err := app.printer.match(doc, res); err != nil {
				return err
			}
		}

		var ok bool
		if app.opts.Reverse {
			prevLine, prevCol = res.Line, res.Col
			ok = app.stepBack(&req, res)
		} else {
			prevLine, prevCol = res.EndLine, res.EndCol
			ok = app.stepForward(doc, &req, res, empty)
		}
		if !ok {
			return nil
		}
	}
}

// stepForward moves req past res. It reports false when the range is
// exhausted.
func (app *Application) stepForward(doc *Document, req *search.Request, res search.Result, empty bool) bool {
	req.StartLine, req.StartCol = res.EndLine, res.EndCol
	if empty {
		req.StartCol++
	}
	if text, err := doc.Store.Line(req.StartLine); err == nil && req.StartCol > len(text) {
		req.StartLine, req.StartCol = req.StartLine+1, 0
	}
	if req.EndLine >= 0 && req.StartLine > req.EndLine {
		return false
	}
	return req.StartLine < doc.Store.LineCount()
}

// stepBack moves the reverse bound of req to the column before res. The
// bound is inclusive, so the next match starts left of res.
func (app *Application) stepBack(req *search.Request, res search.Result) bool {
	req.StartLine, req.StartCol = res.Line, res.Col-1
	if req.StartCol < 0 {
		req.StartLine, req.StartCol = req.StartLine-1, -1
	}
	return req.StartLine >= req.EndLine && req.StartLine >= 0
}

func (app *Application) substitute(doc *Document) error {
	req := app.request(doc)
	req.Substitute = true
	req.Replacement = app.opts.Replacement

	app.edits.reset()
	res, err := app.searchOnce(doc, req)
	if err != nil {
		return err
	}
	app.metrics.RecordSubstitution(res.Substitutions, res.LinesChanged)
	if res.Substitutions > 0 {
		app.found = true
	}
	app.logger.Info("%s: %d substitution(s) on %d line(s)", doc.Name, res.Substitutions, res.LinesChanged)

	if app.opts.InPlace {
		if doc.IsModified() {
			if err := doc.Save(); err != nil {
				return err
			}
		}
		return app.printer.substitution(doc, res, app.edits.edits, false)
	}
	return app.printer.substitution(doc, res, app.edits.edits, true)
}

func (app *Application) runScript(ctx context.Context, doc *Document) error {
	bridge := script.NewBridge(app.session, doc.Store, app.search.Legacy(), app.search.IgnoreCase)
	if err := script.Run(ctx, bridge, app.opts.ScriptPath, app.script, script.WithOutput(app.opts.Stdout)); err != nil {
		return err
	}
	if doc.IsModified() {
		app.found = true
		if app.opts.InPlace {
			return doc.Save()
		}
	}
	return nil
}
