// Package main is the entry point for the Scribe console TUI. It loads
// the console settings, starts the service manager and runs the Bubble
// Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scribe-dev/scribe-console/internal/app"
	"github.com/scribe-dev/scribe-console/internal/config"
	"github.com/scribe-dev/scribe-console/internal/logger"
	"github.com/scribe-dev/scribe-console/internal/services"
	"github.com/scribe-dev/scribe-console/internal/ui/tabs/activity"
	"github.com/scribe-dev/scribe-console/internal/ui/tabs/limits"
	"github.com/scribe-dev/scribe-console/internal/ui/tabs/settings"
	"github.com/scribe-dev/scribe-console/internal/version"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Handle help flag
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	// Run the application
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load console settings from .env files and environment variables
	settingsCfg, err := config.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	logger.UseFile(settingsCfg.LogPath)

	// 2. Initialize the service manager
	// This wires the config store, the session archive and the backend client
	svcManager, err := services.NewManager(settingsCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	// Ensure cleanup on exit
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	// 3. Create the root Bubble Tea model
	model := app.NewModel(svcManager)

	// 4. Initialize tabs with shared state and services
	// Each tab receives the shared application state for consistent data access
	state := model.GetState()
	tabs := []app.Tab{
		settings.New(state, svcManager), // Tab 0: Settings - agent config editor
		activity.New(state, svcManager), // Tab 1: Activity - logs, stats and export
		limits.New(state, svcManager),   // Tab 2: Limits - provider quota browser
	}
	model.SetTabs(tabs)

	// 5. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// 6. Create and configure the Bubble Tea program
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),       // Use alternate screen buffer (full terminal)
		tea.WithMouseCellMotion(), // Enable mouse support for selection
	)

	// 7. Handle signals in a separate goroutine
	go func() {
		<-sigChan
		// Send quit message to the program
		p.Send(tea.Quit())
	}()

	// 8. Run the TUI program
	// This blocks until the user quits or an error occurs
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`Scribe Console - docstring agent configuration and activity TUI

Usage:
  scc [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Settings, Activity, Limits)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Navigate fields and lists
  Enter           Select/confirm
  r               Refresh data
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  SCRIBE_BACKEND_URL   Backend base URL (default: http://127.0.0.1:5000)
  SCRIBE_CONFIG_PATH   Agent config YAML path
  SESSION_DB_PATH      Session archive SQLite path (default: in-memory)
  SCRIBE_EXPORT_DIR    Directory for exported log files
  SCRIBE_LOG_PATH      Console log file path
  SCRIBE_HTTP_TIMEOUT  Backend request timeout (default: 30s)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/scribe-console/.env
  - ~/.scribe/.env`)
}
