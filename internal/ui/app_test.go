package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/five82/assetdesk/internal/api"
	"github.com/five82/assetdesk/internal/prefs"
	"github.com/five82/assetdesk/internal/session"
	"github.com/five82/assetdesk/internal/state"
)

// fakeClient records calls and returns canned results.
type fakeClient struct {
	sess        session.Session
	loginErr    error
	overdue     []api.Loan
	loans       []api.Loan
	transitions []api.LoanAction
	deleted     []uuid.UUID
}

func (f *fakeClient) Session(context.Context) (session.Session, error) { return f.sess, nil }

func (f *fakeClient) Login(_ context.Context, email, password string) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.sess = session.Session{AccessToken: "access-" + email, RefreshToken: "refresh"}
	return nil
}

func (f *fakeClient) Logout(context.Context) error {
	f.sess = session.Session{}
	return nil
}

func (f *fakeClient) AllAssets(_ context.Context, q api.AssetQuery) (api.List[api.Asset], error) {
	return api.List[api.Asset]{}, nil
}

func (f *fakeClient) GetAsset(context.Context, uuid.UUID) (api.Asset, error) {
	return api.Asset{}, nil
}

func (f *fakeClient) CreateAsset(context.Context, api.AssetInput) (api.Asset, error) {
	return api.Asset{}, nil
}

func (f *fakeClient) UpdateAsset(context.Context, uuid.UUID, api.AssetInput) (api.Asset, error) {
	return api.Asset{}, nil
}

func (f *fakeClient) DeleteAsset(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeClient) ListLoans(_ context.Context, status api.LoanStatus) (api.List[api.Loan], error) {
	var items []api.Loan
	for _, l := range f.loans {
		if l.Status == status {
			items = append(items, l)
		}
	}
	return api.List[api.Loan]{Items: items, Total: len(items)}, nil
}

func (f *fakeClient) GetLoan(context.Context, uuid.UUID) (api.Loan, error) { return api.Loan{}, nil }

func (f *fakeClient) CreateLoan(context.Context, api.LoanCreate) (api.Loan, error) {
	return api.Loan{}, nil
}

func (f *fakeClient) TransitionLoan(_ context.Context, _ uuid.UUID, action api.LoanAction, _ string) (api.Loan, error) {
	f.transitions = append(f.transitions, action)
	return api.Loan{}, nil
}

func (f *fakeClient) CheckOverdue(context.Context) ([]api.Loan, error) { return f.overdue, nil }

func (f *fakeClient) GetUser(context.Context, uuid.UUID) (api.User, error) { return api.User{}, nil }

func (f *fakeClient) CreateUser(context.Context, api.UserCreate) (api.User, error) {
	return api.User{}, nil
}

func (f *fakeClient) UpdateUser(context.Context, uuid.UUID, api.UserUpdate) (api.User, error) {
	return api.User{}, nil
}

func (f *fakeClient) ActivateUser(context.Context, uuid.UUID) (api.User, error) {
	return api.User{}, nil
}

func (f *fakeClient) DeactivateUser(context.Context, uuid.UUID) (api.User, error) {
	return api.User{}, nil
}

func (f *fakeClient) DeleteUser(context.Context, uuid.UUID) error { return nil }

func newTestModel(t *testing.T, client *fakeClient, data *state.Data) Model {
	t.Helper()
	store := &state.Store{}
	if data != nil {
		store.Update(*data, nil)
	}
	m := New(Options{
		Client:    client,
		Store:     store,
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	return next.(Model)
}

func signedIn() *fakeClient {
	return &fakeClient{sess: session.Session{AccessToken: "a", RefreshToken: "r"}}
}

// press feeds keys one at a time and returns the model and the last command.
func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(Model)
	}
	return m, cmd
}

// deliver runs cmd synchronously and feeds its message back into the model.
func deliver(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	next, _ := m.Update(cmd())
	return next.(Model)
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func TestStartsAtLoginWithoutSession(t *testing.T) {
	m := newTestModel(t, &fakeClient{}, nil)
	if m.authenticated {
		t.Fatal("expected login view without a saved session")
	}
	if !strings.Contains(m.View(), "Sign in to") {
		t.Fatalf("login view not rendered:\n%s", m.View())
	}
}

func TestLoginSuccess(t *testing.T) {
	client := &fakeClient{}
	m := newTestModel(t, client, nil)

	m, cmd := press(t, m, runes("admin@example.com"), enter, runes("s3cret"), enter)
	if !m.login.busy {
		t.Fatal("expected login to be in flight")
	}
	m = deliver(t, m, cmd)

	if !m.authenticated {
		t.Fatalf("expected to be signed in, login err = %q", m.login.err)
	}
	if client.sess.AccessToken != "access-admin@example.com" {
		t.Fatalf("session = %+v", client.sess)
	}
	if m.flash.text != "Signed in" {
		t.Fatalf("flash = %q", m.flash.text)
	}
}

func TestLoginFailureKeepsEmailClearsPassword(t *testing.T) {
	client := &fakeClient{loginErr: &api.Error{Status: 500}}
	m := newTestModel(t, client, nil)

	m, cmd := press(t, m, runes("admin@example.com"), enter, runes("wrong"), enter)
	m = deliver(t, m, cmd)

	if m.authenticated {
		t.Fatal("login should have failed")
	}
	if m.login.err != "Login failed" {
		t.Fatalf("login err = %q, want Login failed", m.login.err)
	}
	if got := m.login.form.Values(); got[0] != "admin@example.com" || got[1] != "" {
		t.Fatalf("form values = %q", got)
	}
}

func TestLoginValidatesEmail(t *testing.T) {
	m := newTestModel(t, &fakeClient{}, nil)
	m, cmd := press(t, m, runes("nobody"), enter, runes("pw"), enter)
	if cmd != nil || m.login.busy {
		t.Fatal("invalid email should not submit")
	}
	if m.login.err != "email address is not valid" {
		t.Fatalf("login err = %q", m.login.err)
	}
}

func TestSessionExpiryReturnsToLogin(t *testing.T) {
	m := newTestModel(t, signedIn(), &state.Data{Me: api.User{Username: "admin"}})
	if !m.authenticated {
		t.Fatal("expected saved session to sign in")
	}

	next, _ := m.Update(actionMsg{fallback: "Failed to delete asset", err: fmt.Errorf("delete: %w", api.ErrSessionExpired)})
	m = next.(Model)

	if m.authenticated {
		t.Fatal("expected login view after session expiry")
	}
	if m.login.err != "Your session has expired. Please log in again." {
		t.Fatalf("login err = %q", m.login.err)
	}
	if !m.store.Snapshot().SessionExpired {
		t.Fatal("store should record the expiry")
	}
}

func TestStaleSnapshotDoesNotUndoLogin(t *testing.T) {
	client := &fakeClient{}
	m := newTestModel(t, client, nil)
	m, cmd := press(t, m, runes("admin@example.com"), enter, runes("pw"), enter)
	m = deliver(t, m, cmd)

	stale := state.Snapshot{SessionExpired: true, LastUpdated: m.loginAt.Add(-time.Second)}
	next, _ := m.Update(snapshotMsg{snapshot: stale})
	m = next.(Model)
	if !m.authenticated {
		t.Fatal("a snapshot from before the login must not sign out")
	}

	fresh := state.Snapshot{SessionExpired: true, LastUpdated: m.loginAt.Add(time.Second)}
	next, _ = m.Update(snapshotMsg{snapshot: fresh})
	m = next.(Model)
	if m.authenticated {
		t.Fatal("a newer expired snapshot should sign out")
	}
}

func TestSnapshotCarriesStoredSession(t *testing.T) {
	client := signedIn()
	m := newTestModel(t, client, &state.Data{})

	m.store.MarkLoggedOut()
	msg := m.fetchSnapshotCmd()().(snapshotMsg)
	if !msg.hasSession {
		t.Fatal("snapshot should report the stored session")
	}
	next, _ := m.Update(msg)
	m = next.(Model)
	if !m.authenticated {
		t.Fatal("stored tokens should keep the console signed in")
	}

	client.sess = session.Session{}
	m.store.MarkLoggedOut()
	m = deliver(t, m, m.fetchSnapshotCmd())
	if m.authenticated {
		t.Fatal("expected login view once the stored session is gone")
	}
}

func TestLogout(t *testing.T) {
	client := signedIn()
	m := newTestModel(t, client, &state.Data{})
	m, cmd := press(t, m, runes("L"))
	m = deliver(t, m, cmd)
	if m.authenticated {
		t.Fatal("expected login view after logout")
	}
	if !client.sess.Empty() {
		t.Fatal("session should be cleared")
	}
}

func TestUsersForbidden(t *testing.T) {
	m := newTestModel(t, signedIn(), &state.Data{UsersForbidden: true})
	m, _ = press(t, m, runes("u"))
	if m.currentView != ViewUsers {
		t.Fatalf("view = %v, want Users", m.currentView)
	}
	if !strings.Contains(m.View(), forbiddenText) {
		t.Fatalf("expected permission notice:\n%s", m.View())
	}
}

func TestCheckOverdueFlash(t *testing.T) {
	client := signedIn()
	client.overdue = []api.Loan{{ID: uuid.New()}, {ID: uuid.New()}}
	m := newTestModel(t, client, &state.Data{})

	m, cmd := press(t, m, runes("o"), runes("c"))
	m = deliver(t, m, cmd)
	if m.flash.text != "Found 2 overdue loans" || m.flash.isError {
		t.Fatalf("flash = %+v", m.flash)
	}

	client.overdue = nil
	m, cmd = press(t, m, runes("c"))
	m = deliver(t, m, cmd)
	if m.flash.text != "No overdue loans found" {
		t.Fatalf("flash = %q", m.flash.text)
	}
}

func TestLoanTransitionGuardAndSubmit(t *testing.T) {
	client := signedIn()
	asset := api.Asset{ID: uuid.New(), AssetCode: "AST-001", Name: "Projector"}
	returned := api.Loan{ID: uuid.New(), AssetID: asset.ID, Status: api.LoanReturned}
	m := newTestModel(t, client, &state.Data{Assets: []api.Asset{asset}, Loans: []api.Loan{returned}})

	m, _ = press(t, m, runes("o"), runes("p"))
	if m.modal != nil {
		t.Fatal("approve should be refused for a returned loan")
	}
	if !m.flash.isError || !strings.Contains(m.flash.text, "only pending loans") {
		t.Fatalf("flash = %+v", m.flash)
	}

	pending := api.Loan{ID: uuid.New(), AssetID: asset.ID, Status: api.LoanPending}
	m.store.Update(state.Data{Assets: []api.Asset{asset}, Loans: []api.Loan{pending}}, nil)
	next, _ := m.Update(snapshotMsg{snapshot: m.store.Snapshot()})
	m = next.(Model)

	m, _ = press(t, m, runes("p"))
	if m.modal == nil {
		t.Fatal("expected notes prompt for a pending loan")
	}
	m, cmd := press(t, m, runes("looks good"), enter)
	if m.modal != nil {
		t.Fatal("modal should close on submit")
	}
	m = deliver(t, m, cmd)
	if len(client.transitions) != 1 || client.transitions[0] != api.ApproveLoan {
		t.Fatalf("transitions = %v", client.transitions)
	}
	if m.flash.text != "Loan approved" {
		t.Fatalf("flash = %q", m.flash.text)
	}
}

func TestLoanFilterUsesServerList(t *testing.T) {
	client := signedIn()
	pending := api.Loan{ID: uuid.New(), Status: api.LoanPending}
	borrowed := api.Loan{ID: uuid.New(), Status: api.LoanBorrowed}
	client.loans = []api.Loan{pending, borrowed}
	m := newTestModel(t, client, &state.Data{Loans: client.loans})

	m, cmd := press(t, m, runes("o"), runes("f"))
	if m.loans.filter != api.LoanPending {
		t.Fatalf("filter = %q, want pending", m.loans.filter)
	}
	m = deliver(t, m, cmd)
	if got := m.loans.table.View().Total; got != 1 {
		t.Fatalf("rows = %d, want 1", got)
	}

	// A late response for another filter is dropped.
	next, _ := m.Update(loansMsg{status: api.LoanBorrowed, items: client.loans})
	m = next.(Model)
	if got := m.loans.table.View().Total; got != 1 {
		t.Fatalf("rows after stale response = %d, want 1", got)
	}
}

func TestDeleteAssetConfirm(t *testing.T) {
	client := signedIn()
	asset := api.Asset{ID: uuid.New(), AssetCode: "AST-009", Name: "Camera"}
	m := newTestModel(t, client, &state.Data{Assets: []api.Asset{asset}})

	m, _ = press(t, m, runes("a"), runes("X"))
	if _, ok := m.modal.(confirmModal); !ok {
		t.Fatalf("modal = %T, want confirmModal", m.modal)
	}
	if !strings.Contains(m.View(), "Are you sure you want to delete Camera (AST-009)?") {
		t.Fatalf("confirm text missing:\n%s", m.View())
	}
	m, cmd := press(t, m, runes("y"))
	m = deliver(t, m, cmd)
	if len(client.deleted) != 1 || client.deleted[0] != asset.ID {
		t.Fatalf("deleted = %v", client.deleted)
	}
	if m.flash.text != "Asset deleted" {
		t.Fatalf("flash = %q", m.flash.text)
	}
}

func TestCannotDeleteSelf(t *testing.T) {
	me := api.User{ID: uuid.New(), Username: "admin", Email: "admin@example.com", IsActive: true}
	m := newTestModel(t, signedIn(), &state.Data{Me: me, Users: []api.User{me}})

	m, _ = press(t, m, runes("u"), runes("X"))
	if m.modal != nil {
		t.Fatal("deleting yourself should not prompt")
	}
	if m.flash.text != "You cannot delete your own account" {
		t.Fatalf("flash = %q", m.flash.text)
	}
}

func TestActionErrorFlashesServerMessage(t *testing.T) {
	m := newTestModel(t, signedIn(), &state.Data{})
	next, _ := m.Update(actionMsg{fallback: "Failed to delete asset", err: &api.Error{Status: 409, Message: "Asset is on loan"}})
	m = next.(Model)
	if !m.flash.isError || m.flash.text != "Asset is on loan" {
		t.Fatalf("flash = %+v", m.flash)
	}

	next, _ = m.Update(actionMsg{fallback: "Failed to delete asset", err: errors.New("connection reset")})
	m = next.(Model)
	if m.flash.text != "Failed to delete asset" {
		t.Fatalf("flash = %q", m.flash.text)
	}
}

func TestPreferencesPersist(t *testing.T) {
	m := newTestModel(t, signedIn(), &state.Data{})

	m, _ = press(t, m, runes("a"), runes("z"), runes("T"))
	if m.theme.Name != "Slate" {
		t.Fatalf("theme = %q, want Slate", m.theme.Name)
	}
	if m.loans.table.state.PageSize != 25 || m.users.table.state.PageSize != 25 {
		t.Fatal("page size should apply to every table")
	}

	p, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("load prefs: %v", err)
	}
	if p.Theme != "Slate" || p.PageSize != 25 {
		t.Fatalf("prefs = %+v", p)
	}
}

func TestTabCyclesViews(t *testing.T) {
	m := newTestModel(t, signedIn(), &state.Data{})
	want := []View{ViewAssets, ViewLoans, ViewUsers, ViewLogs, ViewDashboard}
	for _, v := range want {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
		if m.currentView != v {
			t.Fatalf("view = %v, want %v", m.currentView, v)
		}
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.currentView != ViewLogs {
		t.Fatalf("view = %v, want Logs", m.currentView)
	}
}

func TestDashboardShowsCounts(t *testing.T) {
	assets := sampleAssets(3)
	loans := []api.Loan{
		{ID: uuid.New(), AssetID: assets[0].ID, Status: api.LoanBorrowed, RequestedAt: "2026-01-02T10:00:00Z"},
		{ID: uuid.New(), AssetID: assets[1].ID, Status: api.LoanPending, RequestedAt: "2026-01-03T10:00:00Z"},
	}
	m := newTestModel(t, signedIn(), &state.Data{Me: api.User{Username: "admin"}, Assets: assets, AssetTotal: 3, Loans: loans})
	view := m.View()
	for _, want := range []string{"Welcome back, admin", "Total Assets", "On Loan", "Recent loans", assets[1].Name} {
		if !strings.Contains(view, want) {
			t.Fatalf("dashboard missing %q:\n%s", want, view)
		}
	}
}
