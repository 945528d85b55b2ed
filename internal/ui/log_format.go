package ui

import (
	"strings"
	"time"

	"github.com/five82/assetdesk/internal/logtail"
)

// logTimestamp renders a record time in local time, falling back to the raw text.
func logTimestamp(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(time.Local).Format("2006-01-02 15:04:05")
		}
	}
	return raw
}

func logLevel(raw string) string {
	level := strings.ToUpper(strings.TrimSpace(raw))
	if level == "" {
		return "INFO"
	}
	return level
}

// formatLogEntry renders a parsed record on one line:
// "<time> <LEVEL> <message> key=value ...".
func formatLogEntry(e logtail.Entry) string {
	if e.Raw != "" {
		return e.Raw
	}
	parts := make([]string, 0, 3+len(e.Attrs))
	if ts := logTimestamp(e.Time); ts != "" {
		parts = append(parts, ts)
	}
	parts = append(parts, padRight(logLevel(e.Level), 5))
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	for _, a := range e.Attrs {
		parts = append(parts, a.Key+"="+a.Value)
	}
	return strings.Join(parts, " ")
}
