// Package models defines data structures and domain types.
package models

import "time"

// RunStats represents aggregate statistics for one generation session.
// Counters are mutated incrementally as records arrive; Merge applies a
// partial update wholesale.
type RunStats struct {
	StartTime           time.Time `json:"start_time"`
	EndTime             time.Time `json:"end_time"`
	TotalComponents     int       `json:"total_components"`
	ProcessedComponents int       `json:"processed_components"`
	Errors              int       `json:"errors"`
	Warnings            int       `json:"warnings"`
}

// Merge shallow-merges the non-zero fields of partial into s.
func (s *RunStats) Merge(partial RunStats) {
	if !partial.StartTime.IsZero() {
		s.StartTime = partial.StartTime
	}
	if !partial.EndTime.IsZero() {
		s.EndTime = partial.EndTime
	}
	if partial.TotalComponents != 0 {
		s.TotalComponents = partial.TotalComponents
	}
	if partial.ProcessedComponents != 0 {
		s.ProcessedComponents = partial.ProcessedComponents
	}
	if partial.Errors != 0 {
		s.Errors = partial.Errors
	}
	if partial.Warnings != 0 {
		s.Warnings = partial.Warnings
	}
}

// InProgress reports whether the run has started but not completed.
func (s *RunStats) InProgress() bool {
	return !s.StartTime.IsZero() && s.EndTime.IsZero()
}

// Progress returns the processed fraction in [0, 1].
func (s *RunStats) Progress() float64 {
	if s.TotalComponents <= 0 {
		return 0
	}
	p := float64(s.ProcessedComponents) / float64(s.TotalComponents)
	if p > 1 {
		p = 1
	}
	return p
}
