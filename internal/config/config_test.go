package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != defaultAPIURL {
		t.Fatalf("APIURL = %q, want %q", cfg.APIURL, defaultAPIURL)
	}

	wantDataDir, err := expandPath(defaultDataDir)
	if err != nil {
		t.Fatalf("expandPath(defaultDataDir) returned error: %v", err)
	}
	if cfg.DataDir != wantDataDir {
		t.Fatalf("DataDir = %q, want %q", cfg.DataDir, wantDataDir)
	}
	if cfg.SessionPath != filepath.Join(wantDataDir, "session.db") {
		t.Fatalf("SessionPath = %q", cfg.SessionPath)
	}
	if cfg.LogPath != filepath.Join(wantDataDir, "assetdesk.log") {
		t.Fatalf("LogPath = %q", cfg.LogPath)
	}
	if cfg.RequestTimeout != 10*time.Second || cfg.PollInterval != 5*time.Second || cfg.PageSize != 10 {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "  https://assets.example.com/api/v1  "
data_dir = "  ~/.assetdesk  "
request_timeout = 3
poll_interval = 30
page_size = 25
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "https://assets.example.com/api/v1" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if !strings.HasPrefix(cfg.DataDir, home) {
		t.Fatalf("DataDir = %q, want it under HOME %q", cfg.DataDir, home)
	}
	if cfg.RequestTimeout != 3*time.Second || cfg.PollInterval != 30*time.Second {
		t.Fatalf("durations = %v / %v", cfg.RequestTimeout, cfg.PollInterval)
	}
	if cfg.PageSize != 25 {
		t.Fatalf("PageSize = %d, want 25", cfg.PageSize)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ASSETDESK_API_URL", "http://override:9000/api/v1")
	t.Setenv("ASSETDESK_POLL_INTERVAL", "60")
	t.Setenv("ASSETDESK_PAGE_SIZE", "50")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
api_url = "http://file:8000/api/v1"
poll_interval = 2
page_size = 5
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIURL != "http://override:9000/api/v1" {
		t.Fatalf("APIURL = %q", cfg.APIURL)
	}
	if cfg.PollInterval != time.Minute {
		t.Fatalf("PollInterval = %v, want 1m", cfg.PollInterval)
	}
	if cfg.PageSize != 50 {
		t.Fatalf("PageSize = %d, want 50", cfg.PageSize)
	}
}

func TestLoad_BadEnvIsError(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ASSETDESK_REQUEST_TIMEOUT", "soon")

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("err = %v, want parse env error", err)
	}
}

func TestLoad_UnsupportedPageSizeFallsBack(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("page_size = 7\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.PageSize != 10 {
		t.Fatalf("PageSize = %d, want 10", cfg.PageSize)
	}
}

func TestLoad_InvalidTomlReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("api_url = [\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "parse config:") {
		t.Fatalf("Load error = %v, want parse config error", err)
	}
}

func TestDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg := Default()
	if !strings.HasPrefix(cfg.SessionPath, home) {
		t.Fatalf("SessionPath = %q, want under %q", cfg.SessionPath, home)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/x")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if got != filepath.Join(home, "x") {
		t.Fatalf("expandPath = %q, want %q", got, filepath.Join(home, "x"))
	}
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath on blank should fail")
	}
}
