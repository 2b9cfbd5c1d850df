package loader

import (
	"os"
	"strconv"
	"strings"
)

// DefaultEnvPrefix is the prefix of linepat environment variables.
const DefaultEnvPrefix = "LINEPAT_"

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "LINEPAT_")
	mapping map[string]string // Env var suffix -> config path
	lookup  func(string) (string, bool)
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore (e.g., "LINEPAT_").
func NewEnvLoader(prefix string) *EnvLoader {
	return NewEnvLoaderWithMapping(prefix, defaultEnvMapping())
}

// NewEnvLoaderWithMapping creates a loader with custom environment variable
// mappings. Mapping keys are variable names without the prefix.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
		lookup:  os.LookupEnv,
		environ: os.Environ,
	}
}

// defaultEnvMapping returns the default environment variable mappings.
func defaultEnvMapping() map[string]string {
	return map[string]string{
		"LOG_LEVEL":        "logging.level",
		"DIALECT":          "search.dialect",
		"IGNORE_CASE":      "search.ignoreCase",
		"MAX_LINE_LEN":     "search.maxLineLen",
		"MAX_PATTERN_LEN":  "search.maxPatternLen",
		"MAX_PROGRAM_SIZE": "search.maxProgramSize",
		"COLOR":            "output.color",
		"FORMAT":           "output.format",
	}
}

// Load reads environment variables and returns a configuration map.
// Empty values are kept, not treated as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for suffix, path := range l.mapping {
		if val, ok := l.lookup(l.prefix + suffix); ok {
			SetByPath(config, path, ParseValue(val))
		}
	}

	// Other prefixed variables map by convention: LINEPAT_OUTPUT_FORMAT
	// becomes output.format.
	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		if _, mapped := l.mapping[strings.TrimPrefix(name, l.prefix)]; mapped {
			continue
		}
		SetByPath(config, l.envToPath(name), ParseValue(value))
	}

	return config, nil
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(suffix, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[suffix] = configPath
}

// envToPath converts LINEPAT_SEARCH_MAX_LINE_LEN to search.maxLineLen.
func (l *EnvLoader) envToPath(env string) string {
	parts := strings.Split(strings.TrimPrefix(env, l.prefix), "_")
	section := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return section
	}

	setting := strings.ToLower(parts[1])
	for _, part := range parts[2:] {
		if part != "" {
			setting += strings.ToUpper(part[:1]) + strings.ToLower(part[1:])
		}
	}
	return section + "." + setting
}

// ParseValue converts a string from the environment or command line into a
// bool, int64, float64 or string.
func ParseValue(s string) any {
	if s == "" {
		return s
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	// Only decimal forms are floats, so version-like strings stay text.
	if strings.Count(s, ".") == 1 {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// SetEnviron makes the loader read vars, given as KEY=value pairs, instead
// of the process environment.
func (l *EnvLoader) SetEnviron(vars []string) {
	env := make(map[string]string, len(vars))
	for _, kv := range vars {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	l.lookup = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	l.environ = func() []string { return vars }
}
