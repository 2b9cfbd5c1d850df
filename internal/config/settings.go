package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dshills/linepat/internal/search"
)

// Setting paths.
const (
	PathMaxPatternLen  = "search.maxPatternLen"
	PathMaxProgramSize = "search.maxProgramSize"
	PathMaxLineLen     = "search.maxLineLen"
	PathDialect        = "search.dialect"
	PathIgnoreCase     = "search.ignoreCase"
	PathLogLevel       = "logging.level"
	PathColor          = "output.color"
	PathFormat         = "output.format"
)

// Dialect names.
const (
	DialectCanonical = "canonical"
	DialectLegacy    = "legacy"
)

type kind uint8

const (
	kindInt kind = iota
	kindBool
	kindEnum
)

// setting defines one known configuration value.
type setting struct {
	path     string
	kind     kind
	def      any
	min, max int64
	enum     []string
}

var settings = []setting{
	{path: PathMaxPatternLen, kind: kindInt, def: int64(search.DefaultMaxPatternLen), min: 1, max: 65536},
	{path: PathMaxProgramSize, kind: kindInt, def: int64(search.DefaultMaxProgramSize), min: 16, max: 65536},
	{path: PathMaxLineLen, kind: kindInt, def: int64(search.DefaultMaxLineLen), min: 1, max: 1 << 24},
	{path: PathDialect, kind: kindEnum, def: DialectCanonical, enum: []string{DialectCanonical, DialectLegacy}},
	{path: PathIgnoreCase, kind: kindBool, def: false},
	{path: PathLogLevel, kind: kindEnum, def: "info", enum: []string{"debug", "info", "warn", "error"}},
	{path: PathColor, kind: kindEnum, def: "auto", enum: []string{"auto", "always", "never"}},
	{path: PathFormat, kind: kindEnum, def: "text", enum: []string{"text", "json"}},
}

func lookupSetting(path string) (setting, bool) {
	for _, s := range settings {
		if s.path == path {
			return s, true
		}
	}
	return setting{}, false
}

// want describes the values the setting accepts.
func (s setting) want() string {
	switch s.kind {
	case kindInt:
		return fmt.Sprintf("an integer in %d..%d", s.min, s.max)
	case kindBool:
		return "true or false"
	default:
		return "one of " + strings.Join(s.enum, ", ")
	}
}

// check validates value against the setting definition.
func (s setting) check(value any) *SettingError {
	problem := Problem(0)
	switch s.kind {
	case kindInt:
		n, ok := toInt64(value)
		switch {
		case !ok:
			problem = ProblemType
		case n < s.min || n > s.max:
			problem = ProblemRange
		}
	case kindBool:
		if _, ok := value.(bool); !ok {
			problem = ProblemType
		}
	case kindEnum:
		str, ok := value.(string)
		switch {
		case !ok:
			problem = ProblemType
		case !slices.Contains(s.enum, str):
			problem = ProblemChoice
		}
	}
	if problem == 0 {
		return nil
	}
	return &SettingError{Path: s.path, Value: value, Problem: problem, Want: s.want()}
}

// defaultConfig returns the built-in defaults layer data.
func defaultConfig() map[string]any {
	m := make(map[string]any)
	for _, s := range settings {
		setPath(m, s.path, s.def)
	}
	return m
}

func toInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case float64:
		if val == float64(int64(val)) {
			return int64(val), true
		}
	}
	return 0, false
}
