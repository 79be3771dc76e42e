// ============================================================================
// trajexec
// ============================================================================
//
// Package:     log
// Description: Log entry structure and field helpers.
// License:     MIT
// ============================================================================

package log

import "time"

// Entry represents a single log entry with all its metadata.
type Entry struct {
	Timestamp time.Time
	Level     Level
	Message   string
	Logger    string
	Fields    Fields
	Error     error
	Duration  time.Duration
}

// Fields represents custom key-value pairs for structured logging.
type Fields map[string]interface{}

// Merge combines multiple Fields into one, later values winning.
func (f Fields) Merge(other Fields) Fields {
	result := make(Fields, len(f)+len(other))
	for k, v := range f {
		result[k] = v
	}
	for k, v := range other {
		result[k] = v
	}
	return result
}

// NewEntry creates a new log entry at the given level.
func NewEntry(level Level, message string) *Entry {
	return &Entry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Fields:    make(Fields),
	}
}
