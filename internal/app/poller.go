package app

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/assetdesk/internal/api"
	"github.com/five82/assetdesk/internal/logging"
	"github.com/five82/assetdesk/internal/session"
	"github.com/five82/assetdesk/internal/state"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
)

// Fetcher is the read side of the API the poller needs.
type Fetcher interface {
	Session(ctx context.Context) (session.Session, error)
	Me(ctx context.Context) (api.User, error)
	AllAssets(ctx context.Context, q api.AssetQuery) (api.List[api.Asset], error)
	ListLoans(ctx context.Context, status api.LoanStatus) (api.List[api.Loan], error)
	AllUsers(ctx context.Context, q api.UserQuery) (api.List[api.User], error)
}

var _ Fetcher = (*api.Client)(nil)

// Poller refreshes the store in the background.
type Poller struct {
	store    *state.Store
	client   Fetcher
	interval time.Duration
	logger   logging.Logger
	wake     chan struct{}
}

// StartPoller launches a background goroutine that refreshes the store at a
// fixed cadence, backing off while polls fail. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, client Fetcher, interval time.Duration, logger logging.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	p := &Poller{
		store:    store,
		client:   client,
		interval: interval,
		logger:   logger.With("component", "poller"),
		wake:     make(chan struct{}, 1),
	}
	go p.run(ctx)
	return p
}

// Trigger requests an immediate refresh. Requests made while one is already
// pending collapse into it.
func (p *Poller) Trigger() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Poller) run(ctx context.Context) {
	for {
		_ = refresh(ctx, p.store, p.client, p.logger)

		wait := calculateBackoff(p.store.Snapshot().ConsecutiveFailures, p.interval)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-p.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for range failures {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

// refresh fetches everything the views show in one parallel round.
func refresh(ctx context.Context, store *state.Store, client Fetcher, logger logging.Logger) error {
	sess, err := client.Session(ctx)
	if err != nil {
		store.Update(state.Data{}, err)
		logger.Error(ctx, "load session", "error", err)
		return err
	}
	if sess.Empty() {
		if !store.Snapshot().SessionExpired {
			store.MarkLoggedOut()
		}
		return nil
	}

	var data state.Data
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		me, err := client.Me(gctx)
		data.Me = me
		return err
	})
	g.Go(func() error {
		assets, err := client.AllAssets(gctx, api.AssetQuery{})
		data.Assets, data.AssetTotal = assets.Items, assets.Total
		return err
	})
	g.Go(func() error {
		loans, err := client.ListLoans(gctx, "")
		data.Loans = loans.Items
		return err
	})
	g.Go(func() error {
		users, err := client.AllUsers(gctx, api.UserQuery{})
		if api.IsForbidden(err) {
			data.UsersForbidden = true
			return nil
		}
		data.Users = users.Items
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			store.MarkSessionExpired(err)
			logger.Warn(ctx, "session expired during poll", "error", err)
			return err
		}
		store.Update(state.Data{}, err)
		logger.Warn(ctx, "poll failed", "error", err, "failures", store.Snapshot().ConsecutiveFailures)
		return err
	}
	store.Update(data, nil)
	return nil
}
