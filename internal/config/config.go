package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/assetdesk/internal/table"
)

// Config holds the console's runtime settings.
type Config struct {
	APIURL         string
	DataDir        string
	SessionPath    string
	LogPath        string
	LogLevel       string
	RequestTimeout time.Duration
	PollInterval   time.Duration
	PageSize       int
}

const (
	defaultConfigPath     = "~/.config/assetdesk/config.toml"
	defaultAPIURL         = "http://localhost:8000/api/v1"
	defaultDataDir        = "~/.local/share/assetdesk"
	defaultLogLevel       = "info"
	defaultRequestTimeout = 10 * time.Second
	defaultPollInterval   = 5 * time.Second
)

// fileConfig is the on-disk TOML shape. Durations are whole seconds.
type fileConfig struct {
	APIURL         string `toml:"api_url"`
	DataDir        string `toml:"data_dir"`
	LogLevel       string `toml:"log_level"`
	RequestTimeout int    `toml:"request_timeout"`
	PollInterval   int    `toml:"poll_interval"`
	PageSize       int    `toml:"page_size"`
}

// envConfig lists the environment overrides. Unset variables stay zero.
type envConfig struct {
	APIURL         string `env:"ASSETDESK_API_URL"`
	DataDir        string `env:"ASSETDESK_DATA_DIR"`
	LogLevel       string `env:"ASSETDESK_LOG_LEVEL"`
	RequestTimeout int    `env:"ASSETDESK_REQUEST_TIMEOUT"`
	PollInterval   int    `env:"ASSETDESK_POLL_INTERVAL"`
	PageSize       int    `env:"ASSETDESK_PAGE_SIZE"`
}

// Default returns the built-in configuration with paths expanded.
func Default() Config {
	cfg := Config{
		APIURL:         defaultAPIURL,
		DataDir:        defaultDataDir,
		LogLevel:       defaultLogLevel,
		RequestTimeout: defaultRequestTimeout,
		PollInterval:   defaultPollInterval,
		PageSize:       table.DefaultPageSize,
	}
	cfg.finalize()
	return cfg
}

// Load reads the config file at path (or the default location), then
// applies ASSETDESK_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw fileConfig
	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	var overrides envConfig
	if err := ParseEnv(&overrides); err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIURL:         pick(overrides.APIURL, raw.APIURL, defaultAPIURL),
		DataDir:        pick(overrides.DataDir, raw.DataDir, defaultDataDir),
		LogLevel:       pick(overrides.LogLevel, raw.LogLevel, defaultLogLevel),
		RequestTimeout: seconds(overrides.RequestTimeout, raw.RequestTimeout, defaultRequestTimeout),
		PollInterval:   seconds(overrides.PollInterval, raw.PollInterval, defaultPollInterval),
		PageSize:       table.DefaultPageSize,
	}
	for _, size := range []int{overrides.PageSize, raw.PageSize} {
		if size != 0 {
			cfg.PageSize = size
			break
		}
	}
	cfg.finalize()
	return cfg, nil
}

// ParseEnv loads environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) finalize() {
	c.DataDir = mustExpand(c.DataDir)
	c.SessionPath = filepath.Join(c.DataDir, "session.db")
	c.LogPath = filepath.Join(c.DataDir, "assetdesk.log")
	if !slices.Contains(table.PageSizes, c.PageSize) {
		c.PageSize = table.DefaultPageSize
	}
}

func pick(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func seconds(env, file int, fallback time.Duration) time.Duration {
	switch {
	case env > 0:
		return time.Duration(env) * time.Second
	case file > 0:
		return time.Duration(file) * time.Second
	default:
		return fallback
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
