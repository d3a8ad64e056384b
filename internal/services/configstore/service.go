// Package configstore manages the agent configuration file with file
// watching and persistence.
package configstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/scribe-dev/scribe-console/internal/config"
	"github.com/scribe-dev/scribe-console/internal/logger"
)

// Event represents a config store event.
type Event struct {
	Type   EventType
	Error  error
	Config *config.Config
}

// EventType defines the type of config store event.
type EventType int

const (
	// EventConfigLoaded is emitted after the initial load.
	EventConfigLoaded EventType = iota
	// EventConfigChanged is emitted when the file changes externally.
	EventConfigChanged
	// EventConfigSaved is emitted after a successful save.
	EventConfigSaved
	// EventError is emitted on watcher or parse failures.
	EventError
)

// Service manages the agent configuration file with change notifications.
type Service struct {
	mu            sync.RWMutex
	current       *config.Config
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// New creates a new config store and starts file watching. A missing file
// is not an error: the store starts from defaults and creates the file on
// the first save.
func New(filePath string) (*Service, error) {
	s := &Service{
		filePath:  filePath,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	// Ensure directory exists so the watcher has something to attach to
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.reload(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		s.current = config.Default()
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventConfigLoaded, Config: s.Get()})

	return s, nil
}

// Events returns the event channel for subscribing to config changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Path returns the config file path.
func (s *Service) Path() string {
	return s.filePath
}

// Get returns a copy of the current configuration record.
func (s *Service) Get() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Set replaces the current record in memory without persisting it.
func (s *Service) Set(cfg *config.Config) {
	s.mu.Lock()
	s.current = cfg.Clone()
	s.mu.Unlock()
}

// Save validates the record, persists it to the config file and makes it
// the current record.
func (s *Service) Save(cfg *config.Config) error {
	if err := config.SaveFile(cfg, s.filePath); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = cfg.Clone()
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventConfigSaved, Config: cfg.Clone()})
	return nil
}

// reload reads the config file into the store.
func (s *Service) reload() error {
	cfg, err := config.LoadFile(s.filePath)
	if err != nil {
		return err
	}
	cfg.Normalize()

	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
	return nil
}

// startWatcher starts the file system watcher.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory (to catch file creation/deletion)
	dir := filepath.Dir(s.filePath)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			// Only care about our config file
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// Debounce rapid changes
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, func() {
					s.handleFileChange()
				})
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads the config after an external change.
func (s *Service) handleFileChange() {
	if err := s.reload(); err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	logger.Info("config file changed on disk, reloaded", "path", s.filePath)
	s.sendEvent(Event{Type: EventConfigChanged, Config: s.Get()})
}

// sendEvent sends an event without blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		logger.Warn("config store event channel full, dropping event")
	}
}

// Close stops the watcher and releases resources.
func (s *Service) Close() error {
	close(s.stopChan)
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
