package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scribe-dev/scribe-console/internal/collector"
	"github.com/scribe-dev/scribe-console/internal/config"
	"github.com/scribe-dev/scribe-console/internal/export"
	"github.com/scribe-dev/scribe-console/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// backendCallTimeout bounds backend requests issued from the UI.
	backendCallTimeout = 30 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadInitialData returns a command that loads all initial data.
func loadInitialData(mgr *services.Manager) tea.Cmd {
	return tea.Batch(
		loadConfigCmd(mgr),
		loadRecordsCmd(mgr),
	)
}

// loadConfigCmd returns a command that loads the current configuration.
func loadConfigCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return ConfigLoadedMsg{Config: mgr.Config()}
	}
}

// loadRecordsCmd returns a command that snapshots the collected records.
func loadRecordsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		snap := mgr.Collector().Snapshot(collector.AllSections())

		msg := RecordsLoadedMsg{
			Logs:       snap.Logs,
			APICalls:   snap.APICalls,
			RateLimits: snap.RateLimits,
		}
		if snap.Stats != nil {
			msg.Stats = *snap.Stats
		}
		return msg
	}
}

// fetchDefaultsCmd returns a command that fetches the backend defaults.
func fetchDefaultsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendCallTimeout)
		defer cancel()

		cfg, err := mgr.FetchDefaultConfig(ctx)
		return DefaultsFetchedMsg{Config: cfg, Error: err}
	}
}

// saveConfigCmd returns a command that validates and saves a configuration.
func saveConfigCmd(mgr *services.Manager, cfg *config.Config) tea.Cmd {
	return func() tea.Msg {
		err := mgr.SaveConfig(cfg)
		return SaveConfigResultMsg{
			Success: err == nil,
			Error:   err,
		}
	}
}

// testAPICmd returns a command that runs a backend connectivity test.
func testAPICmd(mgr *services.Manager, cfg *config.Config) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), backendCallTimeout)
		defer cancel()

		result, err := mgr.TestAPI(ctx, cfg)
		return APITestedMsg{Result: result, Error: err}
	}
}

// exportCmd returns a command that exports the selected sections.
func exportCmd(mgr *services.Manager, sections collector.Sections, format export.Format, baseName string) tea.Cmd {
	return func() tea.Msg {
		res, err := mgr.Export(sections, format, baseName)
		return ExportResultMsg{Result: res, Error: err}
	}
}

// loadHourlyTokensCmd returns a command that loads hourly token usage
// from the session archive.
func loadHourlyTokensCmd(mgr *services.Manager, hours int) tea.Cmd {
	return func() tea.Msg {
		buckets, err := mgr.Database().GetHourlyTokens(hours)
		return HourlyTokensLoadedMsg{Buckets: buckets, Error: err}
	}
}

// loadRateLimitHitsCmd returns a command that loads per-provider
// rate-limit hit counts from the session archive.
func loadRateLimitHitsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		hits, err := mgr.Database().GetRateLimitHits()
		return RateLimitHitsLoadedMsg{Hits: hits, Error: err}
	}
}

// clearRecordsCmd returns a command that clears all collected records.
func clearRecordsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.Collector().Clear()
		return ClearRecordsResultMsg{}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// WaitForServiceEvent is the public version for use in models.
func WaitForServiceEvent(ch <-chan services.ServiceEvent) tea.Cmd {
	return services.WaitForEvent(ch)
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationWarning,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// delayedCmd returns a command that sends a message after a delay.
func delayedCmd(delay time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return msg
	})
}

// batchCmds combines multiple commands into one.
func batchCmds(cmds ...tea.Cmd) tea.Cmd {
	return tea.Batch(cmds...)
}

// quitCmd returns a command that quits the application.
func quitCmd() tea.Cmd {
	return tea.Quit
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// DefaultTick returns a tick command with the default interval.
func (c *Commands) DefaultTick() tea.Cmd {
	return defaultTickCmd()
}

// LoadInitialData returns a command that loads all initial data.
func (c *Commands) LoadInitialData() tea.Cmd {
	return loadInitialData(c.manager)
}

// LoadConfig returns a command that loads the current configuration.
func (c *Commands) LoadConfig() tea.Cmd {
	return loadConfigCmd(c.manager)
}

// LoadRecords returns a command that snapshots the collected records.
func (c *Commands) LoadRecords() tea.Cmd {
	return loadRecordsCmd(c.manager)
}

// FetchDefaults returns a command that fetches backend defaults.
func (c *Commands) FetchDefaults() tea.Cmd {
	return fetchDefaultsCmd(c.manager)
}

// SaveConfig returns a command that saves a configuration.
func (c *Commands) SaveConfig(cfg *config.Config) tea.Cmd {
	return saveConfigCmd(c.manager, cfg)
}

// TestAPI returns a command that runs a backend connectivity test.
func (c *Commands) TestAPI(cfg *config.Config) tea.Cmd {
	return testAPICmd(c.manager, cfg)
}

// Export returns a command that exports the selected sections.
func (c *Commands) Export(sections collector.Sections, format export.Format, baseName string) tea.Cmd {
	return exportCmd(c.manager, sections, format, baseName)
}

// LoadHourlyTokens returns a command that loads hourly token usage.
func (c *Commands) LoadHourlyTokens(hours int) tea.Cmd {
	return loadHourlyTokensCmd(c.manager, hours)
}

// LoadRateLimitHits returns a command that loads per-provider rate-limit
// hit counts.
func (c *Commands) LoadRateLimitHits() tea.Cmd {
	return loadRateLimitHitsCmd(c.manager)
}

// ClearRecords returns a command that clears all collected records.
func (c *Commands) ClearRecords() tea.Cmd {
	return clearRecordsCmd(c.manager)
}

// SubscribeToServices returns a command that subscribes to service events.
func (c *Commands) SubscribeToServices() tea.Cmd {
	return subscribeToServicesCmd(c.manager)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

// Quit returns a command that quits the application.
func (c *Commands) Quit() tea.Cmd {
	return quitCmd()
}

// Delayed returns a command that sends a message after a delay.
func (c *Commands) Delayed(delay time.Duration, msg tea.Msg) tea.Cmd {
	return delayedCmd(delay, msg)
}

// Batch combines multiple commands into one.
func (c *Commands) Batch(cmds ...tea.Cmd) tea.Cmd {
	return batchCmds(cmds...)
}
