// Package logger provides the logging interface shared by terminus components.
// Packages log through the Logger interface so tests can capture output and
// the CLI can decide where messages go.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// DebugEnvVar enables debug output when set to any non-empty value.
const DebugEnvVar = "TERMINUS_DEBUG"

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// forceDebug is flipped by the --debug flag.
var forceDebug atomic.Bool

// SetDebug turns debug output on or off regardless of TERMINUS_DEBUG.
func SetDebug(enabled bool) {
	forceDebug.Store(enabled)
}

// DebugEnabled reports whether debug lines are currently emitted.
func DebugEnabled() bool {
	return forceDebug.Load() || os.Getenv(DebugEnvVar) != ""
}

// stdLogger writes through a *log.Logger with a fixed prefix.
type stdLogger struct {
	prefix string
	out    *log.Logger
}

// NewEnvLogger creates a logger that writes to the standard log package.
// The prefix is prepended to all log messages (e.g., "[api]" or "[resolver]").
func NewEnvLogger(prefix string) Logger {
	return &stdLogger{prefix: prefix, out: log.Default()}
}

// NewWriterLogger creates a logger that writes to w, typically stderr, so
// log lines never interleave with command output on stdout.
func NewWriterLogger(w io.Writer, prefix string) Logger {
	return &stdLogger{prefix: prefix, out: log.New(w, "", 0)}
}

func (l *stdLogger) line(level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	switch {
	case l.prefix != "" && level != "":
		l.out.Printf("%s %s: %s", l.prefix, level, msg)
	case l.prefix != "":
		l.out.Printf("%s %s", l.prefix, msg)
	case level != "":
		l.out.Printf("%s: %s", level, msg)
	default:
		l.out.Print(msg)
	}
}

func (l *stdLogger) Debug(format string, args ...interface{}) {
	if DebugEnabled() {
		l.line("", format, args...)
	}
}

func (l *stdLogger) Info(format string, args ...interface{}) {
	l.line("", format, args...)
}

func (l *stdLogger) Warn(format string, args ...interface{}) {
	l.line("WARN", format, args...)
}

func (l *stdLogger) Error(format string, args ...interface{}) {
	l.line("ERROR", format, args...)
}

// noopLogger implements Logger but discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing.
type BufferLogger struct {
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) add(level, format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.add("debug", format, args...) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.add("info", format, args...) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.add("warn", format, args...) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.add("error", format, args...) }

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Contains returns true if any captured message contains substr.
func (l *BufferLogger) Contains(substr string) bool {
	for _, m := range l.Messages {
		if strings.Contains(m.Message, substr) {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.Messages = l.Messages[:0]
}

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// levelLogger drops messages below min.
type levelLogger struct {
	next Logger
	min  Level
}

// WithLevel returns a logger that forwards to l only messages at min or
// above.
func WithLevel(l Logger, min Level) Logger {
	return &levelLogger{next: l, min: min}
}

func (l *levelLogger) Debug(format string, args ...interface{}) {
	if l.min <= LevelDebug {
		l.next.Debug(format, args...)
	}
}

func (l *levelLogger) Info(format string, args ...interface{}) {
	if l.min <= LevelInfo {
		l.next.Info(format, args...)
	}
}

func (l *levelLogger) Warn(format string, args ...interface{}) {
	if l.min <= LevelWarn {
		l.next.Warn(format, args...)
	}
}

func (l *levelLogger) Error(format string, args ...interface{}) {
	l.next.Error(format, args...)
}

var defaultLogger = NewEnvLogger("")

// Default returns the package-level default logger.
func Default() Logger {
	return defaultLogger
}

// SetDefault replaces the package-level default logger.
func SetDefault(l Logger) {
	defaultLogger = l
}
