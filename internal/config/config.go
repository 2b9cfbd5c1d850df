package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dshills/linepat/internal/config/layer"
	"github.com/dshills/linepat/internal/config/loader"
)

// Config provides access to the merged linepat configuration.
type Config struct {
	mu sync.RWMutex

	layers *layer.Stack
	loaded bool

	fs        loader.FileSystem
	file      string
	envPrefix string
	environ   []string
}

// Option configures a Config instance.
type Option func(*Config)

// WithFile sets the configuration file. Its extension selects the format.
func WithFile(path string) Option {
	return func(c *Config) {
		c.file = path
	}
}

// WithFS sets the file system used to read the configuration file.
func WithFS(fsys loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fsys
	}
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// WithEnviron reads overrides from vars, given as KEY=value pairs, instead
// of the process environment.
func WithEnviron(vars []string) Option {
	return func(c *Config) {
		c.environ = vars
	}
}

// SearchConfig holds the search engine limits and defaults.
type SearchConfig struct {
	MaxPatternLen  int
	MaxProgramSize int
	MaxLineLen     int
	Dialect        string
	IgnoreCase     bool
}

// Legacy reports whether patterns default to the legacy dialect.
func (s SearchConfig) Legacy() bool {
	return s.Dialect == DialectLegacy
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string
}

// OutputConfig holds result formatting settings.
type OutputConfig struct {
	Color  string
	Format string
}

// New creates a new Config instance with the given options.
func New(opts ...Option) *Config {
	c := &Config{
		layers:    layer.NewStack(),
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the defaults, the configuration file and the environment,
// then validates the result. Calling Load again re-reads every source but
// keeps values set with Set.
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.layers.Put(layer.New(layer.SourceBuiltin, "", defaultConfig()))

	if c.file != "" {
		if err := c.loadFile(); err != nil {
			return err
		}
	}
	if err := c.loadEnvironment(); err != nil {
		return err
	}
	if c.layers.Layer(layer.SourceArgs) == nil {
		c.layers.Put(layer.New(layer.SourceArgs, "", nil))
	}
	c.loaded = true

	return c.validate()
}

func (c *Config) loadFile() error {
	l, err := loader.NewFile(c.fs, c.file)
	if err != nil {
		return err
	}
	data, err := l.Load()
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("%w: %s", ErrFileNotFound, c.file)
	}
	c.layers.Put(layer.New(layer.SourceFile, c.file, data))
	return nil
}

func (c *Config) loadEnvironment() error {
	env := loader.NewEnvLoader(c.envPrefix)
	if c.environ != nil {
		env.SetEnviron(c.environ)
	}
	data, err := env.Load()
	if err != nil {
		return err
	}
	c.layers.Put(layer.New(layer.SourceEnv, c.envPrefix+"*", data))
	return nil
}

// Validate checks every known setting of the merged configuration.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.validate()
}

func (c *Config) validate() error {
	var errs []error
	for _, s := range settings {
		v, _, ok := c.layers.Lookup(s.path)
		if !ok {
			continue
		}
		if verr := s.check(v); verr != nil {
			errs = append(errs, verr)
		}
	}
	return errors.Join(errs...)
}

// Set overrides a setting with command-line priority. Known settings are
// validated before they are stored.
func (c *Config) Set(path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return ErrNotLoaded
	}
	if s, ok := lookupSetting(path); ok {
		if verr := s.check(value); verr != nil {
			return verr
		}
	}
	return c.layers.Set(layer.SourceArgs, path, value)
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, _, ok := c.layers.Lookup(path)
	return v, ok
}

// Source returns the layer source that supplies the value at path.
func (c *Config) Source(path string) (layer.Source, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, src, ok := c.layers.Lookup(path)
	return src, ok
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", typeError(path, "string", v)
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	n, ok := toInt64(v)
	if !ok {
		return 0, typeError(path, "int", v)
	}
	return int(n), nil
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, typeError(path, "bool", v)
	}
	return b, nil
}

// Merged returns the fully merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.layers.Merge()
}

// Search returns the search settings. Values that fail to read fall back
// to their defaults.
func (c *Config) Search() SearchConfig {
	return SearchConfig{
		MaxPatternLen:  c.intOr(PathMaxPatternLen),
		MaxProgramSize: c.intOr(PathMaxProgramSize),
		MaxLineLen:     c.intOr(PathMaxLineLen),
		Dialect:        c.stringOr(PathDialect),
		IgnoreCase:     c.boolOr(PathIgnoreCase),
	}
}

// Logging returns the logging settings.
func (c *Config) Logging() LoggingConfig {
	return LoggingConfig{Level: c.stringOr(PathLogLevel)}
}

// Output returns the output settings.
func (c *Config) Output() OutputConfig {
	return OutputConfig{
		Color:  c.stringOr(PathColor),
		Format: c.stringOr(PathFormat),
	}
}

func (c *Config) intOr(path string) int {
	if n, err := c.GetInt(path); err == nil {
		return n
	}
	s, _ := lookupSetting(path)
	n, _ := toInt64(s.def)
	return int(n)
}

func (c *Config) stringOr(path string) string {
	if v, err := c.GetString(path); err == nil {
		return v
	}
	s, _ := lookupSetting(path)
	v, _ := s.def.(string)
	return v
}

func (c *Config) boolOr(path string) bool {
	if v, err := c.GetBool(path); err == nil {
		return v
	}
	s, _ := lookupSetting(path)
	v, _ := s.def.(bool)
	return v
}

// setPath sets a value in a nested map using a dot-separated path.
func setPath(m map[string]any, path string, value any) {
	loader.SetByPath(m, path, value)
}

// typeName returns a human-readable type name.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return "unknown"
	}
}
