// Package main is the entry point for the linepat command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dshills/linepat/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitFound    = 0
	exitNotFound = 1
	exitError    = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitFound
	}
	if errors.Is(err, errVersion) {
		fmt.Fprintf(stdout, "linepat %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return exitFound
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	opts.Stdin, opts.Stdout, opts.Stderr = stdin, stdout, stderr

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		// Each failure was already logged by the application.
		return exitError
	}
	if !application.Found() && opts.ScriptPath == "" {
		return exitNotFound
	}
	return exitFound
}

var errVersion = errors.New("version requested")

func parseFlags(args []string, stderr io.Writer) (app.Options, error) {
	var opts app.Options
	var (
		replacement string
		lines       string
		cols        string
		showVersion bool
	)

	fs := flag.NewFlagSet("linepat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.BoolVar(&opts.Legacy, "legacy", false, "Use the legacy pattern dialect")
	fs.BoolVar(&opts.IgnoreCase, "i", false, "Ignore case")
	fs.BoolVar(&opts.Reverse, "r", false, "Search from the last line upwards")
	fs.StringVar(&replacement, "s", "", "Substitute every match with `replacement`")
	fs.BoolVar(&opts.Once, "once", false, "Substitute at most one match per line")
	fs.StringVar(&lines, "lines", "", "Restrict to lines `first:last` (1-based, inclusive)")
	fs.StringVar(&cols, "cols", "", "Restrict to columns `first:last` (1-based, inclusive)")
	fs.StringVar(&opts.ScriptPath, "script", "", "Run a Lua `file` against each input")
	fs.BoolVar(&opts.InPlace, "w", false, "Write substitutions back to the input files")
	fs.StringVar(&opts.Format, "format", "", "Output format (text, json)")
	fs.StringVar(&opts.Color, "color", "", "Highlight matches (auto, always, never)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&showVersion, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "linepat - line-oriented pattern search and substitution\n\n")
		fmt.Fprintf(stderr, "Usage: linepat [options] pattern [files...]\n")
		fmt.Fprintf(stderr, "       linepat [options] -script file [files...]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  linepat 'fo*' notes.txt              Print every match\n")
		fmt.Fprintf(stderr, "  linepat -s '\\2\\1' '(a)(b)' f.txt     Swap groups, print the result\n")
		fmt.Fprintf(stderr, "  linepat -w -s x -lines 3:9 y f.txt   Edit lines 3 to 9 in place\n")
		fmt.Fprintf(stderr, "\nExit status is 0 if anything matched, 1 if nothing did and 2 on error.\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if showVersion {
		return opts, errVersion
	}

	rest := fs.Args()
	if opts.ScriptPath == "" {
		if len(rest) == 0 {
			fs.Usage()
			return opts, app.ErrNoPattern
		}
		opts.Pattern, rest = rest[0], rest[1:]
	}
	opts.Files = rest

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "s" {
			opts.Substitute = true
		}
	})
	opts.Replacement = replacement

	if lines != "" {
		first, last, err := parseSpan(lines)
		if err != nil {
			return opts, fmt.Errorf("-lines: %w", err)
		}
		opts.FirstLine, opts.LastLine = first, last
	}
	if cols != "" {
		first, last, err := parseSpan(cols)
		if err != nil {
			return opts, fmt.Errorf("-cols: %w", err)
		}
		opts.Rect = true
		opts.RectStart = max(first-1, 0)
		opts.RectEnd = -1
		if last > 0 {
			opts.RectEnd = last
		}
	}
	return opts, nil
}

// parseSpan parses "first:last" where either side may be empty, giving 0.
// A single number names a one-element span.
func parseSpan(s string) (first, last int, err error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		b = a
	}
	if first, err = atoi(a); err != nil {
		return 0, 0, err
	}
	if last, err = atoi(b); err != nil {
		return 0, 0, err
	}
	if first < 0 || last < 0 || (last > 0 && first > last) {
		return 0, 0, fmt.Errorf("%w: %s", app.ErrInvalidRange, s)
	}
	return first, last, nil
}

func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
