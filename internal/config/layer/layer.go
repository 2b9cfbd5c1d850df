// Package layer stacks configuration sources by priority.
//
// There is at most one layer per Source. Later sources override earlier
// ones: builtin < file < environment < arguments.
package layer

// Source indicates where a configuration layer came from. Sources are
// ordered by priority, lowest first.
type Source uint8

const (
	// SourceBuiltin represents built-in default configuration.
	SourceBuiltin Source = iota
	// SourceFile represents a configuration file.
	SourceFile
	// SourceEnv represents environment variables.
	SourceEnv
	// SourceArgs represents command-line flags.
	SourceArgs

	numSources
)

var sourceNames = [numSources]string{"builtin", "file", "environment", "arguments"}

// String returns a human-readable name for the source.
func (s Source) String() string {
	if s >= numSources {
		return "unknown"
	}
	return sourceNames[s]
}

// Valid reports whether s is a known source.
func (s Source) Valid() bool { return s < numSources }

// Layer is the data one source contributed.
type Layer struct {
	Source Source
	// Origin names what the data was read from, such as a file path.
	Origin string
	// Data holds the configuration values as a nested map.
	Data map[string]any
}

// New creates a layer holding data. A nil map is replaced by an empty one.
func New(source Source, origin string, data map[string]any) *Layer {
	if data == nil {
		data = make(map[string]any)
	}
	return &Layer{Source: source, Origin: origin, Data: data}
}
