// Package export renders collector snapshots as JSON, plain text, or CSV
// and writes them to disk.
package export

import "fmt"

// Format identifies an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatCSV  Format = "csv"
)

// Version is stamped into the export metadata.
const Version = "1.0"

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatText, FormatCSV:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown export format: %q", s)
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatText:
		return "txt"
	case FormatCSV:
		return "csv"
	}
	return ""
}

// MIME returns the content type for the format.
func (f Format) MIME() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatText:
		return "text/plain"
	case FormatCSV:
		return "text/csv"
	}
	return "application/octet-stream"
}
