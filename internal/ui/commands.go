package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/five82/assetdesk/internal/api"
	"github.com/five82/assetdesk/internal/logtail"
	"github.com/five82/assetdesk/internal/session"
	"github.com/five82/assetdesk/internal/state"
)

// Client is the part of the API the console drives.
type Client interface {
	Session(ctx context.Context) (session.Session, error)
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error

	AllAssets(ctx context.Context, q api.AssetQuery) (api.List[api.Asset], error)
	GetAsset(ctx context.Context, id uuid.UUID) (api.Asset, error)
	CreateAsset(ctx context.Context, in api.AssetInput) (api.Asset, error)
	UpdateAsset(ctx context.Context, id uuid.UUID, in api.AssetInput) (api.Asset, error)
	DeleteAsset(ctx context.Context, id uuid.UUID) error

	ListLoans(ctx context.Context, status api.LoanStatus) (api.List[api.Loan], error)
	GetLoan(ctx context.Context, id uuid.UUID) (api.Loan, error)
	CreateLoan(ctx context.Context, in api.LoanCreate) (api.Loan, error)
	TransitionLoan(ctx context.Context, id uuid.UUID, action api.LoanAction, notes string) (api.Loan, error)
	CheckOverdue(ctx context.Context) ([]api.Loan, error)

	GetUser(ctx context.Context, id uuid.UUID) (api.User, error)
	CreateUser(ctx context.Context, in api.UserCreate) (api.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, in api.UserUpdate) (api.User, error)
	ActivateUser(ctx context.Context, id uuid.UUID) (api.User, error)
	DeactivateUser(ctx context.Context, id uuid.UUID) (api.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

var _ Client = (*api.Client)(nil)

// Refresher asks the background poller for an immediate refresh.
type Refresher interface {
	Trigger()
}

type tickMsg time.Time

// snapshotMsg carries the latest poll, whether tokens are stored, and the
// access token expiry.
type snapshotMsg struct {
	snapshot   state.Snapshot
	hasSession bool
	expiresAt  time.Time
}

type loginMsg struct {
	err error
}

type logoutMsg struct {
	err error
}

// actionMsg reports the outcome of a mutation.
type actionMsg struct {
	success  string
	fallback string
	err      error
}

// detailMsg carries a fetched record ready to display.
type detailMsg struct {
	modal    Modal
	fallback string
	err      error
}

// assetsMsg carries a server-side filtered asset list.
type assetsMsg struct {
	status api.AssetStatus
	items  []api.Asset
	err    error
}

// loansMsg carries a server-side filtered loan list.
type loansMsg struct {
	status api.LoanStatus
	items  []api.Loan
	err    error
}

type logsMsg struct {
	lines []string
	err   error
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchSnapshotCmd() tea.Cmd {
	store, client, ctx := m.store, m.client, m.ctx
	return func() tea.Msg {
		msg := snapshotMsg{snapshot: store.Snapshot()}
		if client == nil {
			return msg
		}
		sess, err := client.Session(ctx)
		if err != nil {
			return msg
		}
		msg.hasSession = !sess.Empty()
		if sess.AccessToken != "" {
			if claims, err := session.ParseClaims(sess.AccessToken); err == nil {
				msg.expiresAt = claims.ExpiresAt
			}
		}
		return msg
	}
}

// call runs fn with a bounded context off the event loop.
func (m Model) call(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	parent := m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, ActionTimeout)
		defer cancel()
		return fn(ctx)
	}
}

// mutate runs a mutation and reports it as an actionMsg.
func (m Model) mutate(fallback string, fn func(ctx context.Context) (string, error)) tea.Cmd {
	return m.call(func(ctx context.Context) tea.Msg {
		success, err := fn(ctx)
		return actionMsg{success: success, fallback: fallback, err: err}
	})
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	client := m.client
	return m.call(func(ctx context.Context) tea.Msg {
		return loginMsg{err: client.Login(ctx, email, password)}
	})
}

func (m Model) logoutCmd() tea.Cmd {
	client := m.client
	return m.call(func(ctx context.Context) tea.Msg {
		return logoutMsg{err: client.Logout(ctx)}
	})
}

func (m Model) fetchAssetsCmd(status api.AssetStatus) tea.Cmd {
	client := m.client
	return m.call(func(ctx context.Context) tea.Msg {
		list, err := client.AllAssets(ctx, api.AssetQuery{Status: status})
		return assetsMsg{status: status, items: list.Items, err: err}
	})
}

func (m Model) fetchLoansCmd(status api.LoanStatus) tea.Cmd {
	client := m.client
	return m.call(func(ctx context.Context) tea.Msg {
		list, err := client.ListLoans(ctx, status)
		return loansMsg{status: status, items: list.Items, err: err}
	})
}

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogBufferLimit)
		return logsMsg{lines: lines, err: err}
	}
}
