// Package models defines data structures and domain types.
package models

import "time"

// APICall represents a single LLM API request made during a generation run.
type APICall struct {
	Timestamp    time.Time `json:"timestamp"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	DurationMs   int       `json:"duration_ms"`
	Error        string    `json:"error,omitempty"`
	ID           int64     `json:"-"`
}

// TotalTokens returns the combined input and output token count.
func (c *APICall) TotalTokens() int {
	return c.InputTokens + c.OutputTokens
}

// Failed reports whether the call ended with an error.
func (c *APICall) Failed() bool {
	return c.Error != ""
}

// HourlyTokens aggregates API call activity for one clock hour.
type HourlyTokens struct {
	Hour         time.Time
	Calls        int
	InputTokens  int64
	OutputTokens int64
	ErrorCount   int
}

// ProviderHits counts rate-limit hits per provider.
type ProviderHits struct {
	Provider string
	Hits     int
}
