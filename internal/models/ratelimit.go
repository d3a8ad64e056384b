// Package models defines data structures and domain types.
package models

import "time"

// RateLimitEventType identifies what kind of rate-limit transition occurred.
type RateLimitEventType string

const (
	// RateLimitHit means a provider limit was reached and a request was refused.
	RateLimitHit RateLimitEventType = "RATE_LIMIT_HIT"
	// RateLimitWarning means usage crossed the conservative threshold.
	RateLimitWarning RateLimitEventType = "RATE_LIMIT_WARNING"
	// RateLimitWait means the agent paused to stay under a limit.
	RateLimitWait RateLimitEventType = "RATE_LIMIT_WAIT"
	// RateLimitReset means a limit window rolled over.
	RateLimitReset RateLimitEventType = "RATE_LIMIT_RESET"
)

// LimitKind identifies which provider limit an event refers to.
type LimitKind string

const (
	// LimitRequests is the requests-per-minute limit.
	LimitRequests LimitKind = "requests"
	// LimitInputTokens is the input-tokens-per-minute limit.
	LimitInputTokens LimitKind = "input_tokens"
	// LimitOutputTokens is the output-tokens-per-minute limit.
	LimitOutputTokens LimitKind = "output_tokens"
	// LimitRequestsPerDay is the daily request cap some free tiers carry.
	LimitRequestsPerDay LimitKind = "requests_per_day"
)

// RateLimitEvent represents a single rate-limit transition observed during a run.
type RateLimitEvent struct {
	Timestamp time.Time          `json:"timestamp"`
	Type      RateLimitEventType `json:"type"`
	Provider  string             `json:"provider"`
	LimitKind LimitKind          `json:"limit_kind"`
	Usage     int64              `json:"usage"`
	Limit     int64              `json:"limit"`
	Message   string             `json:"message"`
	Severity  LogLevel           `json:"severity"`
	ID        int64              `json:"-"`
}

// SeverityFor derives the log severity for a rate-limit event type.
// Hitting a limit is a warning; everything else is informational.
func SeverityFor(t RateLimitEventType) LogLevel {
	if t == RateLimitHit {
		return LevelWarning
	}
	return LevelInfo
}
