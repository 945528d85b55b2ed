package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme || p.PageSize != 0 {
		t.Fatalf("Load = %+v, want theme %q and no page size", p, defaultTheme)
	}
}

func TestLoad_ReadsDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "assetdesk")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "prefs.toml"), []byte("theme = \"Slate\"\npage_size = 25\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "Slate" || p.PageSize != 25 {
		t.Fatalf("Load = %+v, want Slate/25", p)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "prefs.toml")

	if err := Save(path, Prefs{Theme: "Slate", PageSize: 50}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Theme != "Slate" || loaded.PageSize != 50 {
		t.Fatalf("Load = %+v, want Slate/50", loaded)
	}
}

func TestLoad_Degrades(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSize int
	}{
		{"empty theme", "theme = \"\"\n", 0},
		{"invalid toml", "not valid toml {{{\n", 0},
		{"unsupported page size", "theme = \"Slate\"\npage_size = 7\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "prefs.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			p, err := Load(path)
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			if p.Theme == "" {
				t.Fatalf("Theme empty after degrade")
			}
			if p.PageSize != tt.wantSize {
				t.Fatalf("PageSize = %d, want %d", p.PageSize, tt.wantSize)
			}
		})
	}
}
