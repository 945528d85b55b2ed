package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/five82/assetdesk/internal/api"
	"github.com/five82/assetdesk/internal/config"
	"github.com/five82/assetdesk/internal/logging"
	"github.com/five82/assetdesk/internal/prefs"
	"github.com/five82/assetdesk/internal/session"
	"github.com/five82/assetdesk/internal/state"
	"github.com/five82/assetdesk/internal/ui"
)

// Options configure the assetdesk application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/assetdesk/prefs.toml
	APIURL     string // overrides the configured api_url
	PollEvery  int    // seconds; zero uses the configured interval
}

// Env holds the dependencies shared by the TUI and the one-shot commands.
type Env struct {
	Config config.Config
	Logger logging.Logger
	Client *api.Client

	closers []io.Closer
}

// Setup loads configuration and opens the log file, session database and
// API client. Close the Env when done.
func Setup(ctx context.Context, opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = time.Duration(opts.PollEvery) * time.Second
	}

	env := &Env{Config: cfg}

	logger, logFile, err := logging.Open(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	env.Logger = logger
	env.closers = append(env.closers, logFile)

	sessions, err := session.Open(ctx, cfg.SessionPath)
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	env.closers = append(env.closers, sessions)

	client, err := api.NewClient(cfg.APIURL, sessions,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(logger.With("component", "api")),
	)
	if err != nil {
		_ = env.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}
	env.Client = client
	return env, nil
}

// Close releases everything Setup opened, newest first.
func (e *Env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i].Close())
	}
	e.closers = nil
	return errors.Join(errs...)
}

// Run boots the TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Setup(ctx, opts)
	if err != nil {
		return err
	}
	defer env.Close()

	userPrefs, _ := prefs.Load(opts.PrefsPath)
	pageSize := env.Config.PageSize
	if userPrefs.PageSize > 0 {
		pageSize = userPrefs.PageSize
	}

	env.Logger.Info(ctx, "starting", "api", env.Client.BaseURL())

	store := &state.Store{}
	// Populate the store before the first frame so views start filled.
	_ = refresh(ctx, store, env.Client, env.Logger)
	poller := StartPoller(ctx, store, env.Client, env.Config.PollInterval, env.Logger)

	return ui.Run(ui.Options{
		Context:   ctx,
		Client:    env.Client,
		Store:     store,
		Refresher: poller,
		LogPath:   env.Config.LogPath,
		PollTick:  env.Config.PollInterval,
		ThemeName: userPrefs.Theme,
		PageSize:  pageSize,
		PrefsPath: opts.PrefsPath,
		Logger:    env.Logger.With("component", "ui"),
	})
}
