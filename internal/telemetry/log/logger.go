// ============================================================================
// trajexec
// ============================================================================
//
// Package:     log
// Description: Structured leveled logger used by every component of the
//              trajectory executor in place of fmt.Println.
// License:     MIT
// ============================================================================

package log

import (
	"io"
	"os"
	"sync"
)

// Logger represents a structured logger with contextual fields.
type Logger struct {
	level     Level
	formatter Formatter
	output    io.Writer
	name      string

	contextFields Fields

	mutex sync.RWMutex
}

// Config represents logger configuration.
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
	Name   string
}

// New creates a new logger with default configuration (info level, JSON, stdout).
func New() *Logger {
	return &Logger{
		level:         DefaultLevel(),
		formatter:     NewJSONFormatter(),
		output:        os.Stdout,
		contextFields: make(Fields),
	}
}

// NewWithConfig creates a new logger with the specified configuration.
func NewWithConfig(config Config) *Logger {
	l := &Logger{
		level:         config.Level,
		output:        config.Output,
		name:          config.Name,
		contextFields: make(Fields),
	}
	if l.output == nil {
		l.output = os.Stdout
	}
	l.formatter = GetFormatter(config.Format)
	return l
}

// WithName returns a clone of the logger with a different name.
func (l *Logger) WithName(name string) *Logger {
	clone := l.clone()
	clone.name = name
	return clone
}

// WithField returns a clone of the logger carrying one extra persistent field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	clone := l.clone()
	clone.contextFields[key] = value
	return clone
}

// Debug logs a debug level message.
func (l *Logger) Debug(message string, keysAndValues ...interface{}) {
	l.log(LevelDebug, message, nil, toFields(keysAndValues...))
}

// Info logs an info level message.
func (l *Logger) Info(message string, keysAndValues ...interface{}) {
	l.log(LevelInfo, message, nil, toFields(keysAndValues...))
}

// Warn logs a warning level message.
func (l *Logger) Warn(message string, keysAndValues ...interface{}) {
	l.log(LevelWarn, message, nil, toFields(keysAndValues...))
}

// Error logs an error level message.
func (l *Logger) Error(message string, keysAndValues ...interface{}) {
	l.log(LevelError, message, nil, toFields(keysAndValues...))
}

// LogError logs an error object at error level, whatever its severity.
func (l *Logger) LogError(message string, err error, keysAndValues ...interface{}) {
	l.log(LevelError, message, err, toFields(keysAndValues...))
}

// IsLevelEnabled returns true if the given level is enabled.
func (l *Logger) IsLevelEnabled(level Level) bool {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return level.ShouldLog(l.level)
}

func (l *Logger) log(level Level, message string, err error, fields Fields) {
	l.mutex.RLock()
	if !level.ShouldLog(l.level) {
		l.mutex.RUnlock()
		return
	}
	entry := NewEntry(level, message)
	entry.Logger = l.name
	entry.Error = err
	for k, v := range l.contextFields {
		entry.Fields[k] = v
	}
	for k, v := range fields {
		entry.Fields[k] = v
	}
	formatter := l.formatter
	output := l.output
	l.mutex.RUnlock()

	if formatted, formatErr := formatter.Format(entry); formatErr == nil {
		output.Write(formatted)
	}
}

func (l *Logger) clone() *Logger {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	clone := &Logger{
		level:         l.level,
		formatter:     l.formatter,
		output:        l.output,
		name:          l.name,
		contextFields: make(Fields, len(l.contextFields)),
	}
	for k, v := range l.contextFields {
		clone.contextFields[k] = v
	}
	return clone
}

// toFields converts a flat key/value variadic list into Fields, ignoring
// a trailing unpaired key.
func toFields(keysAndValues ...interface{}) Fields {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make(Fields)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
