package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scribe-dev/scribe-console/internal/backend"
	"github.com/scribe-dev/scribe-console/internal/collector"
	"github.com/scribe-dev/scribe-console/internal/config"
	"github.com/scribe-dev/scribe-console/internal/export"
	"github.com/scribe-dev/scribe-console/internal/models"
	"github.com/scribe-dev/scribe-console/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// WindowSizeMsg is sent when the terminal window is resized.
type WindowSizeMsg struct {
	Width  int
	Height int
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// InitialLoadCompleteMsg signals that initial data loading is complete.
type InitialLoadCompleteMsg struct{}

// ConfigLoadedMsg contains the current configuration record.
type ConfigLoadedMsg struct {
	Config *config.Config
}

// RecordsLoadedMsg contains a snapshot of the collected session records.
type RecordsLoadedMsg struct {
	Stats      models.RunStats
	Logs       []models.LogEntry
	APICalls   []models.APICall
	RateLimits []models.RateLimitEvent
}

// DefaultsFetchedMsg contains the result of fetching backend defaults.
type DefaultsFetchedMsg struct {
	Config *config.Config
	Error  error
}

// SaveConfigResultMsg contains the result of a configuration save.
type SaveConfigResultMsg struct {
	Success bool
	Error   error
}

// APITestedMsg contains the result of a backend connectivity test.
type APITestedMsg struct {
	Result *backend.TestResult
	Error  error
}

// HourlyTokensLoadedMsg contains hourly token usage from the session archive.
type HourlyTokensLoadedMsg struct {
	Buckets []models.HourlyTokens
	Error   error
}

// RateLimitHitsLoadedMsg contains per-provider hit counts from the
// session archive.
type RateLimitHitsLoadedMsg struct {
	Hits  []models.ProviderHits
	Error error
}

// ClearRecordsMsg requests clearing all collected records.
type ClearRecordsMsg struct{}

// ClearRecordsResultMsg confirms the records were cleared.
type ClearRecordsResultMsg struct {
	Error error
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "config", "records"
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearNotificationsMsg requests clearing all notifications.
type ClearNotificationsMsg struct{}

// NotificationAddedMsg confirms a notification was added.
type NotificationAddedMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// ErrorEventMsg wraps an error event from services.
type ErrorEventMsg struct {
	Event services.ErrorEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// QuitMsg requests the application to quit.
type QuitMsg struct{}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// FocusNextMsg focuses the next focusable element.
type FocusNextMsg struct{}

// FocusPrevMsg focuses the previous focusable element.
type FocusPrevMsg struct{}

// SelectItemMsg selects the current item in a list.
type SelectItemMsg struct{}

// ScrollUpMsg requests scrolling up.
type ScrollUpMsg struct {
	Lines int
}

// ScrollDownMsg requests scrolling down.
type ScrollDownMsg struct {
	Lines int
}

// PageUpMsg requests scrolling up by one page.
type PageUpMsg struct{}

// PageDownMsg requests scrolling down by one page.
type PageDownMsg struct{}

// GoToTopMsg requests scrolling to the top.
type GoToTopMsg struct{}

// GoToBottomMsg requests scrolling to the bottom.
type GoToBottomMsg struct{}

// FilterMsg sets a filter on the current view.
type FilterMsg struct {
	Query string
}

// ExportMsg requests exporting the selected record sections.
type ExportMsg struct {
	Format   export.Format
	Sections collector.Sections
	BaseName string
}

// ExportResultMsg contains the result of an export operation.
type ExportResultMsg struct {
	Result export.Result
	Error  error
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// DelayedMsg wraps a message to be sent after a delay.
type DelayedMsg struct {
	Delay time.Duration
	Msg   tea.Msg
}

// BatchMsg contains multiple messages to be processed.
type BatchMsg struct {
	Messages []tea.Msg
}
