package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/five82/assetdesk/internal/logtail"
)

func TestFormatLogEntry(t *testing.T) {
	oldLocal := time.Local
	time.Local = time.FixedZone("TestLocal", -5*60*60)
	defer func() {
		time.Local = oldLocal
	}()

	e := logtail.Entry{
		Time:    "2025-12-13T10:11:12Z",
		Level:   "warn",
		Message: " token refresh failed ",
		Attrs:   []logtail.Attr{{Key: "component", Value: "api"}, {Key: "status", Value: "401"}},
	}
	got := formatLogEntry(e)
	want := "2025-12-13 05:11:12 WARN  token refresh failed component=api status=401"
	if got != want {
		t.Fatalf("formatLogEntry = %q, want %q", got, want)
	}
}

func TestFormatLogEntryRawAndDefaults(t *testing.T) {
	if got := formatLogEntry(logtail.Entry{Raw: "plain text"}); got != "plain text" {
		t.Fatalf("raw entry = %q", got)
	}
	got := formatLogEntry(logtail.Entry{Message: "hello"})
	if !strings.HasPrefix(got, "INFO ") || !strings.HasSuffix(got, "hello") {
		t.Fatalf("entry without level = %q", got)
	}
}

func TestLogTimestampKeepsUnparsed(t *testing.T) {
	if got := logTimestamp("yesterday"); got != "yesterday" {
		t.Fatalf("logTimestamp = %q", got)
	}
	if got := logTimestamp(""); got != "" {
		t.Fatalf("logTimestamp(\"\") = %q", got)
	}
}
