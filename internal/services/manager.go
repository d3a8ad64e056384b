// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/scribe-dev/scribe-console/internal/backend"
	"github.com/scribe-dev/scribe-console/internal/collector"
	"github.com/scribe-dev/scribe-console/internal/config"
	"github.com/scribe-dev/scribe-console/internal/db"
	"github.com/scribe-dev/scribe-console/internal/export"
	"github.com/scribe-dev/scribe-console/internal/models"
	"github.com/scribe-dev/scribe-console/internal/services/configstore"
)

type (
	// ConfigChangedEvent is emitted when the configuration record changes,
	// whether from the UI, a save, or an external file edit.
	ConfigChangedEvent struct {
		Config *config.Config
	}

	// RecordsChangedEvent is emitted when the collector contents change.
	RecordsChangedEvent struct {
		Stats      models.RunStats
		Logs       int
		APICalls   int
		RateLimits int
	}

	// ExportedEvent is emitted after a completed export.
	ExportedEvent struct {
		Result export.Result
	}

	// TestedEvent is emitted after a backend connectivity test.
	TestedEvent struct {
		Result *backend.TestResult
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (ConfigChangedEvent) isServiceEvent()  {}
func (RecordsChangedEvent) isServiceEvent() {}
func (ExportedEvent) isServiceEvent()       {}
func (TestedEvent) isServiceEvent()         {}
func (ErrorEvent) isServiceEvent()          {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	configStore *configstore.Service
	collector   *collector.Collector
	database    *db.DB
	exporter    *export.Exporter
	backend     *backend.Client
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
}

// NewManager creates a new service manager from application settings.
func NewManager(settings *config.Settings) (*Manager, error) {
	m := &Manager{
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
	}

	var err error
	m.database, err = db.New(settings.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session archive: %w", err)
	}

	m.configStore, err = configstore.New(settings.ConfigPath)
	if err != nil {
		_ = m.database.Close()
		return nil, err
	}

	m.collector = collector.New(m.database)
	m.exporter = export.NewExporter(settings.ExportDir)
	m.backend = backend.New(settings.BackendURL, settings.HTTPTimeout)

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.configStore.Events():
			m.handleConfigEvent(event)

		case event := <-m.collector.Events():
			m.handleCollectorEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleConfigEvent(event configstore.Event) {
	switch event.Type {
	case configstore.EventConfigLoaded, configstore.EventConfigChanged,
		configstore.EventConfigSaved:

		m.broadcast(ConfigChangedEvent{Config: event.Config})

	case configstore.EventError:
		m.broadcast(ErrorEvent{
			Service: "config",
			Error:   event.Error,
		})
	}
}

func (m *Manager) handleCollectorEvent(event collector.Event) {
	if event.Type == collector.EventRateLimitRecorded {
		m.notifyRateLimit()
	}
	m.broadcast(m.recordsEvent())
}

// notifyRateLimit raises a desktop notification for the most recent
// rate-limit hit.
func (m *Manager) notifyRateLimit() {
	snap := m.collector.Snapshot(collector.Sections{RateLimits: true})
	if len(snap.RateLimits) == 0 {
		return
	}
	last := snap.RateLimits[len(snap.RateLimits)-1]
	if last.Type != models.RateLimitHit {
		return
	}

	title := fmt.Sprintf("Rate Limit Hit: %s", last.Provider)
	body := last.Message
	if body == "" {
		body = "The provider refused a request."
	}
	_ = beeep.Notify(title, body, "")
}

func (m *Manager) recordsEvent() RecordsChangedEvent {
	logs, apiCalls, rateLimits := m.collector.Counts()
	return RecordsChangedEvent{
		Stats:      m.collector.Stats(),
		Logs:       logs,
		APICalls:   apiCalls,
		RateLimits: rateLimits,
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Config returns the current configuration record.
func (m *Manager) Config() *config.Config {
	return m.configStore.Get()
}

// SetConfig replaces the in-memory configuration without writing it out.
func (m *Manager) SetConfig(cfg *config.Config) {
	m.configStore.Set(cfg)
	m.broadcast(ConfigChangedEvent{Config: cfg.Clone()})
}

// SaveConfig validates and writes the configuration to disk.
func (m *Manager) SaveConfig(cfg *config.Config) error {
	return m.configStore.Save(cfg)
}

// FetchDefaultConfig retrieves the backend's defaults. On failure the
// local defaults are returned along with the error so the UI always has a
// usable record.
func (m *Manager) FetchDefaultConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := m.backend.FetchDefaultConfig(ctx)
	if err != nil {
		m.collector.RecordLog(models.LevelWarning,
			"falling back to built-in defaults", err.Error())
		return config.Default(), err
	}
	return cfg, nil
}

// TestAPI runs a backend connectivity test with the given configuration
// and records the outcome.
func (m *Manager) TestAPI(ctx context.Context, cfg *config.Config) (*backend.TestResult, error) {
	start := time.Now()

	result, err := m.backend.TestAPI(ctx, cfg)
	if err != nil {
		m.collector.RecordLog(models.LevelError, "API test failed", err.Error())
		return nil, err
	}

	call := models.APICall{
		Provider:     result.Provider,
		Model:        result.Model,
		InputTokens:  result.InputTokens,
		OutputTokens: result.OutputTokens,
		DurationMs:   result.DurationMs,
	}
	if call.DurationMs == 0 {
		call.DurationMs = int(time.Since(start).Milliseconds())
	}
	if call.Provider == "" && cfg.LLM != nil {
		call.Provider = cfg.LLM.Type
		call.Model = cfg.LLM.Model
	}

	switch {
	case result.Success:
		m.collector.RecordLog(models.LevelInfo, "API test passed", result.Message)
	case result.RateLimited:
		call.Error = result.Message
		m.collector.RecordRateLimitEvent(models.RateLimitEvent{
			Type:     models.RateLimitHit,
			Provider: call.Provider,
			Message:  result.Message,
		})
	default:
		call.Error = result.Message
		m.collector.RecordLog(models.LevelError, "API test failed", result.Message)
	}
	m.collector.RecordAPICall(call)

	m.broadcast(TestedEvent{Result: result})
	return result, nil
}

// Export writes the selected collector sections to disk.
func (m *Manager) Export(sections collector.Sections, format export.Format, baseName string) (export.Result, error) {
	snap := m.collector.Snapshot(sections)

	var cfg *config.Config
	if sections.Config {
		cfg = m.configStore.Get()
	}

	res, err := m.exporter.Export(snap, cfg, format, baseName)
	if err != nil {
		return export.Result{}, err
	}

	m.broadcast(ExportedEvent{Result: res})
	return res, nil
}

// Collector returns the record collector.
func (m *Manager) Collector() *collector.Collector {
	return m.collector
}

// ConfigStore returns the configuration store.
func (m *Manager) ConfigStore() *configstore.Service {
	return m.configStore
}

// Database returns the session archive for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if err := m.configStore.Close(); err != nil {
		errs = append(errs, err)
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
