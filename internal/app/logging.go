package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

// Log levels, lowest first.
const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

// String returns the level name as used in configuration.
func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

// ParseLogLevel parses a level name. Unknown names give LogLevelInfo.
func ParseLogLevel(s string) LogLevel {
	s = strings.ToLower(s)
	if s == "warning" {
		return LogLevelWarn
	}
	for i, name := range levelNames {
		if s == name {
			return LogLevel(i)
		}
	}
	return LogLevelInfo
}

// LoggerConfig configures the logger.
type LoggerConfig struct {
	// Level is the minimum log level to output.
	Level LogLevel
	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer
	// Prefix starts every line, usually the program name.
	Prefix string
	// Timestamps adds the time to every line.
	Timestamps bool
}

// sink is the state shared by a logger and every logger derived from it.
type sink struct {
	mu     sync.Mutex
	w      io.Writer
	level  LogLevel
	prefix string
	stamp  bool
	now    func() time.Time
}

type field struct {
	key   string
	value any
}

// Logger writes leveled diagnostics, one line per message:
//
//	linepat: warn: message key=value
//
// Loggers derived with WithField share the output and level of their
// parent. Fields are written in the order they were added.
type Logger struct {
	sink   *sink
	fields []field
}

// NewLogger creates a new logger with the given configuration.
func NewLogger(cfg LoggerConfig) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	return &Logger{sink: &sink{
		w:      cfg.Output,
		level:  cfg.Level,
		prefix: cfg.Prefix,
		stamp:  cfg.Timestamps,
		now:    time.Now,
	}}
}

// NullLogger discards everything.
var NullLogger = &Logger{}

// WithField returns a logger that adds key=value to every line. A key
// already present is replaced in place.
func (l *Logger) WithField(key string, value any) *Logger {
	fields := make([]field, 0, len(l.fields)+1)
	replaced := false
	for _, f := range l.fields {
		if f.key == key {
			f.value = value
			replaced = true
		}
		fields = append(fields, f)
	}
	if !replaced {
		fields = append(fields, field{key, value})
	}
	return &Logger{sink: l.sink, fields: fields}
}

// WithComponent returns a logger tagged with the component that logs.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// SetLevel sets the minimum log level of l and every related logger.
func (l *Logger) SetLevel(level LogLevel) {
	if l.sink == nil {
		return
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// Level returns the minimum log level.
func (l *Logger) Level() LogLevel {
	if l.sink == nil {
		return LogLevelError + 1
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level LogLevel) bool {
	return level >= l.Level()
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) { l.log(LogLevelDebug, msg, args) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) { l.log(LogLevelInfo, msg, args) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) { l.log(LogLevelWarn, msg, args) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) { l.log(LogLevelError, msg, args) }

func (l *Logger) log(level LogLevel, msg string, args []any) {
	s := l.sink
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if level < s.level {
		return
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	var b strings.Builder
	if s.stamp {
		b.WriteString(s.now().Format("15:04:05.000 "))
	}
	if s.prefix != "" {
		b.WriteString(s.prefix)
		b.WriteString(": ")
	}
	b.WriteString(level.String())
	b.WriteString(": ")
	b.WriteString(msg)
	for _, f := range l.fields {
		fmt.Fprintf(&b, " %s=%v", f.key, f.value)
	}
	b.WriteByte('\n')
	_, _ = io.WriteString(s.w, b.String())
}
