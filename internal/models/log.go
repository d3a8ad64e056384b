// Package models defines data structures and domain types.
package models

import "time"

// LogLevel represents the severity of a processing log entry.
type LogLevel string

const (
	// LevelDebug is for verbose diagnostic output.
	LevelDebug LogLevel = "DEBUG"
	// LevelInfo is for routine processing messages.
	LevelInfo LogLevel = "INFO"
	// LevelWarning is for recoverable problems.
	LevelWarning LogLevel = "WARNING"
	// LevelError is for failures.
	LevelError LogLevel = "ERROR"
)

// LogEntry represents one line of the processing log. Entries are
// append-only; ordering is insertion order.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	Detail    string    `json:"detail,omitempty"`
}
