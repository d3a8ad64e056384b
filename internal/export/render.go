package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/scribe-dev/scribe-console/internal/collector"
	"github.com/scribe-dev/scribe-console/internal/config"
	"github.com/scribe-dev/scribe-console/internal/models"
)

// Metadata describes one export.
type Metadata struct {
	ExportTime string `json:"export_time"`
	Format     string `json:"format"`
	Version    string `json:"version"`
}

// document is the JSON envelope. Absent sections are omitted entirely.
type document struct {
	Metadata        Metadata                `json:"metadata"`
	Config          *config.Config          `json:"config,omitempty"`
	Stats           *models.RunStats        `json:"stats,omitempty"`
	Logs            []models.LogEntry       `json:"logs,omitempty"`
	APICalls        []models.APICall        `json:"api_calls,omitempty"`
	RateLimitEvents []models.RateLimitEvent `json:"rate_limit_events,omitempty"`
}

const timeLayout = "2006-01-02 15:04:05"

// Render encodes a snapshot in the given format. cfg may be nil; its API
// key is masked before it is written anywhere.
func Render(snap collector.Snapshot, cfg *config.Config, format Format, now time.Time) ([]byte, error) {
	cfg = redact(cfg)

	switch format {
	case FormatJSON:
		return renderJSON(snap, cfg, now)
	case FormatText:
		return renderText(snap, cfg, now)
	case FormatCSV:
		return renderCSV(snap)
	default:
		return nil, fmt.Errorf("unknown export format: %q", string(format))
	}
}

// redact returns a copy of the configuration with the API key masked.
func redact(cfg *config.Config) *config.Config {
	if cfg == nil {
		return nil
	}
	clone := cfg.Clone()
	if clone.LLM != nil && clone.LLM.APIKey != "" {
		clone.LLM.APIKey = "***"
	}
	return clone
}

func renderJSON(snap collector.Snapshot, cfg *config.Config, now time.Time) ([]byte, error) {
	doc := document{
		Metadata: Metadata{
			ExportTime: now.Format(time.RFC3339),
			Format:     string(FormatJSON),
			Version:    Version,
		},
		Config:          cfg,
		Stats:           snap.Stats,
		Logs:            snap.Logs,
		APICalls:        snap.APICalls,
		RateLimitEvents: snap.RateLimits,
	}
	return json.MarshalIndent(doc, "", "  ")
}

func renderText(snap collector.Snapshot, cfg *config.Config, now time.Time) ([]byte, error) {
	var b strings.Builder

	b.WriteString("Scribe Processing Logs Export\n")
	fmt.Fprintf(&b, "Exported: %s\n\n", now.Format(timeLayout))

	if cfg != nil {
		section(&b, "CONFIGURATION")
		if cfg.LLM != nil {
			fmt.Fprintf(&b, "Provider: %s\n", cfg.LLM.Type)
			fmt.Fprintf(&b, "Model: %s\n", cfg.LLM.Model)
			fmt.Fprintf(&b, "Temperature: %g\n", cfg.LLM.Temperature)
			fmt.Fprintf(&b, "Max tokens: %d\n", cfg.LLM.MaxTokens)
		}
		fmt.Fprintf(&b, "Provider tier: %s\n", cfg.CurrentProviderTier)
		if cfg.DocstringOptions != nil {
			fmt.Fprintf(&b, "Overwrite docstrings: %t\n", cfg.DocstringOptions.OverwriteDocstrings)
		}
		b.WriteString("\n")
	}

	if snap.Stats != nil {
		section(&b, "PROCESSING STATISTICS")
		s := snap.Stats
		fmt.Fprintf(&b, "Components: %d/%d\n", s.ProcessedComponents, s.TotalComponents)
		fmt.Fprintf(&b, "Errors: %d\n", s.Errors)
		fmt.Fprintf(&b, "Warnings: %d\n", s.Warnings)
		if !s.StartTime.IsZero() {
			fmt.Fprintf(&b, "Started: %s\n", s.StartTime.Format(timeLayout))
		}
		if !s.EndTime.IsZero() {
			fmt.Fprintf(&b, "Finished: %s\n", s.EndTime.Format(timeLayout))
		}
		b.WriteString("\n")
	}

	if len(snap.Logs) > 0 {
		section(&b, "PROCESSING LOGS")
		for _, e := range snap.Logs {
			fmt.Fprintf(&b, "[%s] %s: %s", e.Timestamp.Format(timeLayout), e.Level, e.Message)
			if e.Detail != "" {
				fmt.Fprintf(&b, " (%s)", e.Detail)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(snap.APICalls) > 0 {
		section(&b, "API CALLS")
		for _, c := range snap.APICalls {
			fmt.Fprintf(&b, "[%s] %s/%s in=%d out=%d %dms",
				c.Timestamp.Format(timeLayout), c.Provider, c.Model,
				c.InputTokens, c.OutputTokens, c.DurationMs)
			if c.Error != "" {
				fmt.Fprintf(&b, " error=%s", c.Error)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(snap.RateLimits) > 0 {
		section(&b, "RATE LIMIT EVENTS")
		for _, e := range snap.RateLimits {
			fmt.Fprintf(&b, "[%s] %s %s", e.Timestamp.Format(timeLayout), e.Type, e.Provider)
			if e.LimitKind != "" {
				fmt.Fprintf(&b, " %s %d/%d", e.LimitKind, e.Usage, e.Limit)
			}
			if e.Message != "" {
				fmt.Fprintf(&b, ": %s", e.Message)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return []byte(b.String()), nil
}

func section(b *strings.Builder, title string) {
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", len(title)))
	b.WriteString("\n")
}

// csvHeader is the fixed column layout shared by every record kind.
var csvHeader = []string{"Timestamp", "Type", "Level", "Provider", "Model", "Message", "Details"}

func renderCSV(snap collector.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, e := range snap.Logs {
		if err := w.Write([]string{
			e.Timestamp.Format(timeLayout), "LOG", string(e.Level), "", "", e.Message, e.Detail,
		}); err != nil {
			return nil, err
		}
	}

	for _, c := range snap.APICalls {
		detail := fmt.Sprintf("in=%d out=%d duration=%dms", c.InputTokens, c.OutputTokens, c.DurationMs)
		msg := "success"
		if c.Error != "" {
			msg = c.Error
		}
		if err := w.Write([]string{
			c.Timestamp.Format(timeLayout), "API_CALL", "", c.Provider, c.Model, msg, detail,
		}); err != nil {
			return nil, err
		}
	}

	for _, e := range snap.RateLimits {
		detail := ""
		if e.LimitKind != "" {
			detail = fmt.Sprintf("%s %d/%d", e.LimitKind, e.Usage, e.Limit)
		}
		if err := w.Write([]string{
			e.Timestamp.Format(timeLayout), string(e.Type), string(e.Severity), e.Provider, "", e.Message, detail,
		}); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
