package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/scribe-dev/scribe-console/internal/logger"
	"github.com/scribe-dev/scribe-console/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// InsertLog archives a log entry.
func (db *DB) InsertLog(entry models.LogEntry) error {
	query := `
		INSERT INTO logs (timestamp, level, message, detail)
		VALUES (?, ?, ?, ?)
	`

	timestamp := entry.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	_, err := db.ExecContext(context.Background(), query,
		timestamp.Format(timeLayout),
		string(entry.Level),
		entry.Message,
		nullString(entry.Detail),
	)
	if err != nil {
		return fmt.Errorf("failed to insert log entry: %w", err)
	}

	return nil
}

// InsertAPICall archives an API call.
func (db *DB) InsertAPICall(call models.APICall) error {
	query := `
		INSERT INTO api_calls (
			timestamp, provider, model, input_tokens, output_tokens,
			duration_ms, error
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	timestamp := call.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	_, err := db.ExecContext(context.Background(), query,
		timestamp.Format(timeLayout),
		call.Provider,
		call.Model,
		call.InputTokens,
		call.OutputTokens,
		call.DurationMs,
		nullString(call.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to insert API call: %w", err)
	}

	return nil
}

// InsertRateLimitEvent archives a rate-limit event.
func (db *DB) InsertRateLimitEvent(event models.RateLimitEvent) error {
	query := `
		INSERT INTO rate_limit_events (
			timestamp, event_type, provider, limit_kind, usage, limit_value,
			message, severity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	_, err := db.ExecContext(context.Background(), query,
		timestamp.Format(timeLayout),
		string(event.Type),
		nullString(event.Provider),
		nullString(string(event.LimitKind)),
		event.Usage,
		event.Limit,
		nullString(event.Message),
		nullString(string(event.Severity)),
	)
	if err != nil {
		return fmt.Errorf("failed to insert rate-limit event: %w", err)
	}

	return nil
}

// Clear truncates every archive table.
func (db *DB) Clear() error {
	for _, table := range []string{"logs", "api_calls", "rate_limit_events"} {
		if _, err := db.ExecContext(context.Background(), "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// GetRecentLogs returns the most recent log entries, newest first.
func (db *DB) GetRecentLogs(limit int) ([]models.LogEntry, error) {
	query := `
		SELECT timestamp, level, message, detail
		FROM logs
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []models.LogEntry
	for rows.Next() {
		var e models.LogEntry
		var ts string
		var detail sql.NullString

		if err := rows.Scan(&ts, &e.Level, &e.Message, &detail); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}

		e.Timestamp, _ = time.Parse(timeLayout, ts)
		e.Detail = detail.String
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// GetRecentAPICalls returns the most recent API calls, newest first.
func (db *DB) GetRecentAPICalls(limit int) ([]models.APICall, error) {
	query := `
		SELECT id, timestamp, provider, model, input_tokens, output_tokens,
			   duration_ms, error
		FROM api_calls
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent API calls: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var calls []models.APICall
	for rows.Next() {
		var call models.APICall
		var ts string
		var errStr sql.NullString

		err := rows.Scan(
			&call.ID,
			&ts,
			&call.Provider,
			&call.Model,
			&call.InputTokens,
			&call.OutputTokens,
			&call.DurationMs,
			&errStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan API call: %w", err)
		}

		call.Timestamp, _ = time.Parse(timeLayout, ts)
		call.Error = errStr.String
		calls = append(calls, call)
	}

	return calls, rows.Err()
}

// GetHourlyTokens returns API call activity grouped by hour for the last
// N hours.
func (db *DB) GetHourlyTokens(hours int) ([]models.HourlyTokens, error) {
	query := `
		SELECT
			strftime('%Y-%m-%d %H:00:00', timestamp) as hour,
			COUNT(*) as total_calls,
			COALESCE(SUM(input_tokens), 0) as total_input,
			COALESCE(SUM(output_tokens), 0) as total_output,
			SUM(CASE WHEN error IS NOT NULL THEN 1 ELSE 0 END) as error_count
		FROM api_calls
		WHERE timestamp >= datetime('now', ?)
		GROUP BY hour
		ORDER BY hour ASC
	`

	rows, err := db.QueryContext(context.Background(), query, fmt.Sprintf("-%d hours", hours))
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly tokens: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var buckets []models.HourlyTokens
	for rows.Next() {
		var b models.HourlyTokens
		var hourStr string

		err := rows.Scan(&hourStr, &b.Calls, &b.InputTokens, &b.OutputTokens, &b.ErrorCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hourly tokens: %w", err)
		}

		b.Hour, _ = time.Parse(timeLayout, hourStr)
		buckets = append(buckets, b)
	}

	return buckets, rows.Err()
}

// GetRateLimitHits returns the RATE_LIMIT_HIT count per provider,
// highest first.
func (db *DB) GetRateLimitHits() ([]models.ProviderHits, error) {
	query := `
		SELECT COALESCE(provider, ''), COUNT(*) as hits
		FROM rate_limit_events
		WHERE event_type = ?
		GROUP BY provider
		ORDER BY hits DESC
	`

	rows, err := db.QueryContext(context.Background(), query, string(models.RateLimitHit))
	if err != nil {
		return nil, fmt.Errorf("failed to query rate-limit hits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var hits []models.ProviderHits
	for rows.Next() {
		var h models.ProviderHits
		if err := rows.Scan(&h.Provider, &h.Hits); err != nil {
			return nil, fmt.Errorf("failed to scan rate-limit hits: %w", err)
		}
		hits = append(hits, h)
	}

	return hits, rows.Err()
}

// Totals holds overall archive counters.
type Totals struct {
	Logs            int
	APICalls        int
	RateLimitEvents int
	InputTokens     int64
	OutputTokens    int64
}

// GetTotals returns overall archive counters.
func (db *DB) GetTotals() (Totals, error) {
	var t Totals

	row := db.QueryRowContext(context.Background(), `
		SELECT
			(SELECT COUNT(*) FROM logs),
			(SELECT COUNT(*) FROM api_calls),
			(SELECT COUNT(*) FROM rate_limit_events),
			(SELECT COALESCE(SUM(input_tokens), 0) FROM api_calls),
			(SELECT COALESCE(SUM(output_tokens), 0) FROM api_calls)
	`)
	if err := row.Scan(&t.Logs, &t.APICalls, &t.RateLimitEvents, &t.InputTokens, &t.OutputTokens); err != nil {
		return Totals{}, fmt.Errorf("failed to query totals: %w", err)
	}

	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
