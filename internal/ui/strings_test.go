package ui

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTruncate(t *testing.T) {
	if got := truncate("Laptop Dell XPS 13", 10); got != "Laptop ..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abcdef", 2); got != "ab" {
		t.Fatalf("truncate = %q", got)
	}
}

func TestTruncateMiddle(t *testing.T) {
	got := truncateMiddle("/home/user/.local/share/assetdesk/assetdesk.log", 15)
	if len([]rune(got)) != 15 {
		t.Fatalf("truncateMiddle len = %d (%q)", len([]rune(got)), got)
	}
	if got[:7] != "/home/u" {
		t.Fatalf("truncateMiddle = %q, want prefix kept", got)
	}
}

func TestTitleCase(t *testing.T) {
	cases := map[string]string{
		"decommissioned": "Decommissioned",
		"IN_REPAIR":      "In Repair",
		"":               "",
	}
	for in, want := range cases {
		if got := titleCase(in); got != want {
			t.Fatalf("titleCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOptionalAndDeref(t *testing.T) {
	if optional("   ") != nil {
		t.Fatal("blank input should be nil")
	}
	if got := deref(optional(" note ")); got != "note" {
		t.Fatalf("optional/deref = %q", got)
	}
	if got := deref(nil); got != "" {
		t.Fatalf("deref(nil) = %q", got)
	}
}

func TestShortIDAndDates(t *testing.T) {
	if got := shortID(uuid.Nil); got != "-" {
		t.Fatalf("shortID(nil) = %q", got)
	}
	id := uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
	if got := shortID(id); got != "0f8fad5b" {
		t.Fatalf("shortID = %q", got)
	}
	if got := formatDate(time.Time{}); got != "-" {
		t.Fatalf("formatDate(zero) = %q", got)
	}
	if got := formatDate(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)); got != "Mar 4, 2026" {
		t.Fatalf("formatDate = %q", got)
	}
	if got := relativeTime(time.Now().Add(-3 * time.Hour)); got != "3 hours ago" {
		t.Fatalf("relativeTime = %q", got)
	}
}
