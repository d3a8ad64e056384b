// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds the console application settings, as opposed to the
// agent configuration record the console edits.
type Settings struct {
	BackendURL  string
	ConfigPath  string
	ArchivePath string
	ExportDir   string
	LogPath     string
	HTTPTimeout time.Duration
}

// Default values
const (
	defaultBackendURL  = "http://127.0.0.1:5000"
	defaultHTTPTimeout = 30 * time.Second

	// The session archive lives in memory unless explicitly pointed at a
	// file; session data does not survive the process.
	defaultArchivePath = ":memory:"
)

// LoadSettings reads console settings from .env files and environment
// variables.
func LoadSettings() (*Settings, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	s := &Settings{
		BackendURL:  getEnvString("SCRIBE_BACKEND_URL", defaultBackendURL),
		ConfigPath:  getEnvString("SCRIBE_CONFIG_PATH", defaultConfigPath()),
		ArchivePath: getEnvString("SESSION_DB_PATH", defaultArchivePath),
		ExportDir:   getEnvString("SCRIBE_EXPORT_DIR", defaultExportDir()),
		LogPath:     getEnvString("SCRIBE_LOG_PATH", defaultLogPath()),
		HTTPTimeout: getEnvDuration("SCRIBE_HTTP_TIMEOUT", defaultHTTPTimeout),
	}

	// Ensure config directory exists
	if err := ensureDir(filepath.Dir(s.ConfigPath)); err != nil {
		return nil, err
	}

	if s.LogPath != "" {
		if err := ensureDir(filepath.Dir(s.LogPath)); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "scribe-console", ".env"),
			filepath.Join(home, ".scribe", ".env"),
		)
	}

	return paths
}

// defaultConfigPath returns the default path for the agent config file.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "scribe_config.yaml"
	}
	return filepath.Join(home, ".config", "scribe-console", "scribe_config.yaml")
}

// defaultLogPath returns the default path for the console log file.
func defaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "scc.log"
	}
	return filepath.Join(home, ".config", "scribe-console", "scc.log")
}

// defaultExportDir returns the default directory for exported log files.
func defaultExportDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
