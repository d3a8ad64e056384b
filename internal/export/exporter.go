package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/scribe-dev/scribe-console/internal/collector"
	"github.com/scribe-dev/scribe-console/internal/config"
	"github.com/scribe-dev/scribe-console/internal/logger"
)

// Result describes a completed export.
type Result struct {
	Path string
	MIME string
	Size int
}

// Exporter writes rendered snapshots into a target directory.
type Exporter struct {
	dir string
	now func() time.Time
}

// NewExporter creates an exporter rooted at dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir, now: time.Now}
}

// Export renders the snapshot and writes it to disk. baseName is used
// without its extension; when empty a timestamped name is generated. An
// unknown format leaves no file behind.
func (e *Exporter) Export(snap collector.Snapshot, cfg *config.Config, format Format, baseName string) (Result, error) {
	now := e.now()

	data, err := Render(snap, cfg, format, now)
	if err != nil {
		return Result{}, err
	}

	if baseName == "" {
		baseName = "scribe_logs_" + now.Format("20060102_150405")
	}
	path := filepath.Join(e.dir, baseName+"."+format.Extension())

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return Result{}, fmt.Errorf("failed to create export directory: %w", err)
	}

	// Write to temp file first, then rename
	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return Result{}, fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return Result{}, fmt.Errorf("failed to rename temp file: %w", err)
	}

	return Result{Path: path, MIME: format.MIME(), Size: len(data)}, nil
}
