// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/scribe-dev/scribe-console/internal/config"
	"github.com/scribe-dev/scribe-console/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Config  bool
	Records bool
	Test    bool
	Export  bool
}

// AppState holds shared application state read by the tabs.
type AppState struct {
	mu sync.RWMutex

	Config     *config.Config
	Stats      models.RunStats
	Logs       []models.LogEntry
	APICalls   []models.APICall
	RateLimits []models.RateLimitEvent

	Loading LoadingState

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

func NewAppState() *AppState {
	return &AppState{
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *AppState) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "config":
		s.Loading.Config = loading
	case "records":
		s.Loading.Records = loading
	case "test":
		s.Loading.Test = loading
	case "export":
		s.Loading.Export = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *AppState) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Config ||
		s.Loading.Records ||
		s.Loading.Test ||
		s.Loading.Export
}

// IsInitialLoading returns true if initial data is still loading.
func (s *AppState) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// GetLoadingResources returns a list of currently loading resources.
func (s *AppState) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Initial {
		resources = append(resources, "initial")
	}
	if s.Loading.Config {
		resources = append(resources, "config")
	}
	if s.Loading.Records {
		resources = append(resources, "records")
	}
	if s.Loading.Test {
		resources = append(resources, "test")
	}
	if s.Loading.Export {
		resources = append(resources, "export")
	}
	return resources
}

// SetConfig updates the current configuration record.
func (s *AppState) SetConfig(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Config = cfg
	s.LastUpdated = time.Now()
}

// GetConfig returns the current configuration record.
func (s *AppState) GetConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Config
}

// SetRecords replaces the record snapshot.
func (s *AppState) SetRecords(stats models.RunStats, logs []models.LogEntry, apiCalls []models.APICall, rateLimits []models.RateLimitEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Stats = stats
	s.Logs = logs
	s.APICalls = apiCalls
	s.RateLimits = rateLimits
	s.LastUpdated = time.Now()
}

// GetStats returns the current run statistics.
func (s *AppState) GetStats() models.RunStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Stats
}

// GetLogs returns a copy of the collected log entries.
func (s *AppState) GetLogs() []models.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := make([]models.LogEntry, len(s.Logs))
	copy(logs, s.Logs)
	return logs
}

// GetAPICalls returns a copy of the collected API calls.
func (s *AppState) GetAPICalls() []models.APICall {
	s.mu.RLock()
	defer s.mu.RUnlock()

	calls := make([]models.APICall, len(s.APICalls))
	copy(calls, s.APICalls)
	return calls
}

// GetRateLimits returns a copy of the collected rate-limit events.
func (s *AppState) GetRateLimits() []models.RateLimitEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]models.RateLimitEvent, len(s.RateLimits))
	copy(events, s.RateLimits)
	return events
}

// RecordCounts returns the number of collected logs, API calls and
// rate-limit events.
func (s *AppState) RecordCounts() (logs, apiCalls, rateLimits int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Logs), len(s.APICalls), len(s.RateLimits)
}

// AddNotification adds a new notification and returns its ID.
func (s *AppState) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	notification := Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, notification)

	// Keep only the last 10 notifications
	if len(s.notifications) > 10 {
		s.notifications = s.notifications[len(s.notifications)-10:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *AppState) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *AppState) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *AppState) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Clear expired inline when reading
	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// ClearAllNotifications removes all notifications.
func (s *AppState) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *AppState) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  0,
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *AppState) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// GetLastUpdated returns the last time the state was updated.
func (s *AppState) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *AppState) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
