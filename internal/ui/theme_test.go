package ui

import (
	"reflect"
	"testing"
)

func TestThemeCycle(t *testing.T) {
	if got := ThemeNames(); !reflect.DeepEqual(got, []string{"Dracula", "Slate"}) {
		t.Fatalf("ThemeNames = %v", got)
	}
	if got := NextTheme("Dracula"); got != "Slate" {
		t.Fatalf("NextTheme(Dracula) = %q, want Slate", got)
	}
	if got := NextTheme("Slate"); got != "Dracula" {
		t.Fatalf("NextTheme(Slate) = %q, want Dracula", got)
	}
	if got := NextTheme("missing"); got != "Dracula" {
		t.Fatalf("NextTheme(missing) = %q, want Dracula", got)
	}
}

func TestGetThemeFallsBack(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q", got)
	}
	if got := GetTheme("nope").Name; got != "Dracula" {
		t.Fatalf("GetTheme(nope).Name = %q, want Dracula", got)
	}
}

func TestThemesColorEveryStatus(t *testing.T) {
	statuses := []string{
		"active", "inactive", "maintenance", "decommissioned",
		"pending", "approved", "rejected", "borrowed", "returned", "overdue",
	}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, s := range statuses {
			if th.StatusColors[s] == "" {
				t.Fatalf("theme %s has no color for %q", name, s)
			}
		}
	}
}

func TestStatusStyleNormalizesStatus(t *testing.T) {
	th := GetTheme("Dracula")
	styles := th.Styles()

	got := styles.StatusStyle("  Overdue ").GetBackground()
	want := styles.StatusStyle("overdue").GetBackground()
	if got != want {
		t.Fatalf("StatusStyle background = %v, want %v", got, want)
	}
	if bg := styles.StatusStyle("unknown").GetBackground(); bg == want {
		t.Fatalf("unknown status should use the muted color, got %v", bg)
	}
}
