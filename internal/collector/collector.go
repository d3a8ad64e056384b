// Package collector aggregates processing logs, API call records, and
// rate-limit events for one console session.
package collector

import (
	"sync"
	"time"

	"github.com/scribe-dev/scribe-console/internal/logger"
	"github.com/scribe-dev/scribe-console/internal/models"
)

// Archive receives a copy of every record for the session archive. A nil
// archive is valid; records then live only in memory.
type Archive interface {
	InsertLog(entry models.LogEntry) error
	InsertAPICall(call models.APICall) error
	InsertRateLimitEvent(event models.RateLimitEvent) error
	Clear() error
}

// Event represents a collector event.
type Event struct {
	Error error
	Type  EventType
}

// EventType defines the type of collector event.
type EventType int

const (
	// EventLogRecorded indicates a log entry was recorded.
	EventLogRecorded EventType = iota
	// EventAPICallRecorded indicates an API call was recorded.
	EventAPICallRecorded
	// EventRateLimitRecorded indicates a rate-limit event was recorded.
	EventRateLimitRecorded
	// EventStatsUpdated indicates the run statistics changed.
	EventStatsUpdated
	// EventCleared indicates all records were discarded.
	EventCleared
)

// Snapshot is a point-in-time copy of the collector contents. Nil or empty
// fields mean the section was not requested or holds no records.
type Snapshot struct {
	Stats      *models.RunStats
	Logs       []models.LogEntry
	APICalls   []models.APICall
	RateLimits []models.RateLimitEvent
}

// Sections selects which record kinds a snapshot carries. Config is not
// a collector record; the flag rides here so export callers can select it
// alongside the others.
type Sections struct {
	Logs       bool
	APICalls   bool
	RateLimits bool
	Config     bool
	Stats      bool
}

// AllSections selects every record kind.
func AllSections() Sections {
	return Sections{Logs: true, APICalls: true, RateLimits: true, Config: true, Stats: true}
}

// Collector accumulates session records behind a mutex.
type Collector struct {
	archive    Archive
	logs       []models.LogEntry
	apiCalls   []models.APICall
	rateLimits []models.RateLimitEvent
	stats      models.RunStats
	eventChan  chan Event
	now        func() time.Time
	mu         sync.RWMutex
}

// New creates a collector. archive may be nil.
func New(archive Archive) *Collector {
	return &Collector{
		archive:   archive,
		eventChan: make(chan Event, 100),
		now:       time.Now,
	}
}

// Events returns the event channel.
func (c *Collector) Events() <-chan Event {
	return c.eventChan
}

// RecordLog records a log entry. ERROR entries bump the error counter,
// WARNING entries the warning counter.
func (c *Collector) RecordLog(level models.LogLevel, message, detail string) {
	c.mu.Lock()
	c.recordLogLocked(models.LogEntry{
		Timestamp: c.now(),
		Level:     level,
		Message:   message,
		Detail:    detail,
	})
	c.mu.Unlock()

	c.sendEvent(Event{Type: EventLogRecorded})
}

func (c *Collector) recordLogLocked(entry models.LogEntry) {
	c.logs = append(c.logs, entry)
	switch entry.Level {
	case models.LevelError:
		c.stats.Errors++
	case models.LevelWarning:
		c.stats.Warnings++
	}
	c.archiveRecord(func(a Archive) error { return a.InsertLog(entry) })
}

// RecordAPICall records one API call.
func (c *Collector) RecordAPICall(call models.APICall) {
	if call.Timestamp.IsZero() {
		call.Timestamp = c.now()
	}

	c.mu.Lock()
	c.apiCalls = append(c.apiCalls, call)
	c.archiveRecord(func(a Archive) error { return a.InsertAPICall(call) })
	c.mu.Unlock()

	c.sendEvent(Event{Type: EventAPICallRecorded})
}

// RecordRateLimitEvent records one rate-limit event and synthesizes a
// matching log entry at the event's severity. A RATE_LIMIT_HIT therefore
// shows up both in the rate-limit records and in the logs, and bumps the
// warning counter exactly once.
func (c *Collector) RecordRateLimitEvent(event models.RateLimitEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = c.now()
	}
	if event.Severity == "" {
		event.Severity = models.SeverityFor(event.Type)
	}

	c.mu.Lock()
	c.rateLimits = append(c.rateLimits, event)
	c.archiveRecord(func(a Archive) error { return a.InsertRateLimitEvent(event) })
	c.recordLogLocked(models.LogEntry{
		Timestamp: event.Timestamp,
		Level:     event.Severity,
		Message:   event.Message,
		Detail:    string(event.Type),
	})
	c.mu.Unlock()

	c.sendEvent(Event{Type: EventRateLimitRecorded})
}

// MergeStats folds non-zero fields of the update into the run statistics.
func (c *Collector) MergeStats(update models.RunStats) {
	c.mu.Lock()
	c.stats.Merge(update)
	c.mu.Unlock()

	c.sendEvent(Event{Type: EventStatsUpdated})
}

// MarkComplete stamps the run end time if it is not already set.
func (c *Collector) MarkComplete() {
	c.mu.Lock()
	if c.stats.EndTime.IsZero() {
		c.stats.EndTime = c.now()
	}
	c.mu.Unlock()

	c.sendEvent(Event{Type: EventStatsUpdated})
}

// Clear discards every record and zeroes the run statistics.
func (c *Collector) Clear() {
	c.mu.Lock()
	c.logs = nil
	c.apiCalls = nil
	c.rateLimits = nil
	c.stats = models.RunStats{}
	c.archiveRecord(func(a Archive) error { return a.Clear() })
	c.mu.Unlock()

	c.sendEvent(Event{Type: EventCleared})
}

// Stats returns a copy of the current run statistics.
func (c *Collector) Stats() models.RunStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Counts returns the number of records per kind.
func (c *Collector) Counts() (logs, apiCalls, rateLimits int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.logs), len(c.apiCalls), len(c.rateLimits)
}

// Snapshot copies the requested sections out of the collector.
func (c *Collector) Snapshot(sections Sections) Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var snap Snapshot
	if sections.Stats {
		stats := c.stats
		snap.Stats = &stats
	}
	if sections.Logs {
		snap.Logs = append([]models.LogEntry(nil), c.logs...)
	}
	if sections.APICalls {
		snap.APICalls = append([]models.APICall(nil), c.apiCalls...)
	}
	if sections.RateLimits {
		snap.RateLimits = append([]models.RateLimitEvent(nil), c.rateLimits...)
	}
	return snap
}

// archiveRecord runs the archive write, logging failures instead of
// surfacing them; the in-memory record is authoritative.
func (c *Collector) archiveRecord(fn func(Archive) error) {
	if c.archive == nil {
		return
	}
	if err := fn(c.archive); err != nil {
		logger.Error("session archive write failed", "error", err)
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (c *Collector) sendEvent(event Event) {
	select {
	case c.eventChan <- event:
	default:
		// Channel full, drop oldest
		select {
		case <-c.eventChan:
		default:
		}
		select {
		case c.eventChan <- event:
		default:
		}
	}
}
