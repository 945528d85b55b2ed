package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/assetdesk/internal/api"
	"github.com/five82/assetdesk/internal/logging"
	"github.com/five82/assetdesk/internal/prefs"
	"github.com/five82/assetdesk/internal/state"
	"github.com/five82/assetdesk/internal/table"
)

// View identifies a page of the console.
type View int

const (
	ViewDashboard View = iota
	ViewAssets
	ViewLoans
	ViewUsers
	ViewLogs
)

var viewOrder = []View{ViewDashboard, ViewAssets, ViewLoans, ViewUsers, ViewLogs}

func (v View) String() string {
	switch v {
	case ViewAssets:
		return "Assets"
	case ViewLoans:
		return "Loans"
	case ViewUsers:
		return "Users"
	case ViewLogs:
		return "Logs"
	default:
		return "Dashboard"
	}
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    Client
	Store     *state.Store
	Refresher Refresher
	LogPath   string
	PollTick  time.Duration
	ThemeName string
	PageSize  int
	PrefsPath string
	Logger    logging.Logger
}

// flash is a transient footer message.
type flash struct {
	text    string
	isError bool
	at      time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	client    Client
	store     *state.Store
	refresher Refresher
	logger    logging.Logger
	prefsPath string
	logPath   string
	pollTick  time.Duration

	// UI state
	keys        keyMap
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool

	// Session state
	snapshot      state.Snapshot
	authenticated bool
	loginAt       time.Time
	expiresAt     time.Time
	login         loginState

	// Per-view state
	assets assetsState
	loans  loansState
	users  usersState
	logs   logsState

	modal    Modal
	showHelp bool
	flash    flash
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 || pollTick > DefaultUIInterval {
		pollTick = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = table.DefaultPageSize
	}

	m := Model{
		ctx:         ctx,
		client:      opts.Client,
		store:       store,
		refresher:   opts.Refresher,
		logger:      logger,
		prefsPath:   prefsPath,
		logPath:     opts.LogPath,
		pollTick:    pollTick,
		keys:        DefaultKeyMap(),
		theme:       GetTheme(themeName),
		currentView: ViewDashboard,
		login:       newLoginState(),
		assets:      newAssetsState(pageSize),
		loans:       newLoansState(pageSize),
		users:       newUsersState(pageSize),
		logs:        logsState{follow: true},
	}

	m.authenticated = m.hasSession()
	m.applySnapshot(store.Snapshot(), m.authenticated)
	if !m.authenticated && m.snapshot.SessionExpired {
		m.login.err = api.UserMessage(api.ErrSessionExpired, "")
	}
	return m
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.pollTick),
		m.fetchSnapshotCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.logs.viewport = viewport.New(m.width, m.bodyHeight())
		}
		m.ready = true
		m.resizeLogs()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.expiresAt = msg.expiresAt
		m.applySnapshot(msg.snapshot, msg.hasSession)
		return m, nil

	case loginMsg:
		return m.handleLogin(msg)

	case logoutMsg:
		m.endSession("")
		if msg.err != nil {
			m.logger.Warn(m.ctx, "logout", "error", msg.err)
			m.setFlash(api.UserMessage(msg.err, "Logout failed"), true)
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			return m, m.handleError(msg.err, msg.fallback)
		}
		m.setFlash(msg.success, false)
		return m, m.refreshAll()

	case detailMsg:
		if msg.err != nil {
			return m, m.handleError(msg.err, msg.fallback)
		}
		m.modal = msg.modal
		return m, nil

	case assetsMsg:
		return m, m.handleAssets(msg)

	case loansMsg:
		return m, m.handleLoans(msg)

	case logsMsg:
		m.handleLogs(msg)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if !m.authenticated {
		return m.renderLogin()
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.flash.text != "" && time.Since(m.flash.at) > FlashDuration {
		m.flash = flash{}
	}
	cmds := []tea.Cmd{tickCmd(m.pollTick), m.fetchSnapshotCmd()}
	if m.authenticated && m.currentView == ViewLogs {
		cmds = append(cmds, readLogsCmd(m.logPath))
	}
	return m, tea.Batch(cmds...)
}

// applySnapshot stores the latest poll and reacts to session changes the
// poller observed after the last login. hasSession reports whether tokens
// were stored when the snapshot was taken.
func (m *Model) applySnapshot(snap state.Snapshot, hasSession bool) {
	m.snapshot = snap
	fresh := !snap.LastUpdated.IsZero() && snap.LastUpdated.After(m.loginAt)
	if m.authenticated && fresh {
		switch {
		case snap.SessionExpired:
			m.expireSession(snap.LastError)
			return
		case !snap.LoggedIn && snap.LastError == nil && !hasSession:
			m.endSession("")
			return
		}
	}
	m.syncTables()
}

// syncTables rebuilds table rows from the snapshot or the filtered lists.
func (m *Model) syncTables() {
	assetNames := m.snapshot.AssetNames()
	usernames := m.snapshot.Usernames()

	assets := m.snapshot.Assets
	if m.assets.filter != "" {
		assets = m.assets.filtered
	}
	m.assets.table.SetRows(assetRows(assets))

	loans := m.snapshot.Loans
	if m.loans.filter != "" {
		loans = m.loans.filtered
	}
	m.loans.table.SetRows(loanRows(loans, assetNames, usernames))

	m.users.table.SetRows(userRows(m.snapshot.Users))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if !m.authenticated {
		return m.handleLoginKey(msg)
	}

	if m.modal != nil {
		modal, cmd, done := m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if t := m.activeTable(); t != nil && t.Capturing() {
		_, cmd := t.HandleKey(msg, m.keys)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs(func(p *prefs.Prefs) { p.Theme = m.theme.Name })
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		return m, m.switchView(m.offsetView(1))
	case key.Matches(msg, m.keys.ShiftTab):
		return m, m.switchView(m.offsetView(-1))
	case key.Matches(msg, m.keys.ViewDashboard):
		return m, m.switchView(ViewDashboard)
	case key.Matches(msg, m.keys.ViewAssets):
		return m, m.switchView(ViewAssets)
	case key.Matches(msg, m.keys.ViewLoans):
		return m, m.switchView(ViewLoans)
	case key.Matches(msg, m.keys.ViewUsers):
		return m, m.switchView(ViewUsers)
	case key.Matches(msg, m.keys.ViewLogs):
		return m, m.switchView(ViewLogs)
	case key.Matches(msg, m.keys.Refresh):
		m.setFlash("Refreshing...", false)
		return m, m.refreshAll()
	case key.Matches(msg, m.keys.Logout):
		return m, m.logoutCmd()
	}

	var cmd tea.Cmd
	handled := false
	switch m.currentView {
	case ViewAssets:
		handled, cmd = m.handleAssetsKey(msg)
	case ViewLoans:
		handled, cmd = m.handleLoansKey(msg)
	case ViewUsers:
		handled, cmd = m.handleUsersKey(msg)
	case ViewLogs:
		handled, cmd = m.handleLogsKey(msg)
	}
	if handled {
		return m, cmd
	}

	if key.Matches(msg, m.keys.Escape) {
		m.currentView = ViewDashboard
	}
	return m, nil
}

// handleTableKey forwards navigation to t and persists page-size changes.
func (m *Model) handleTableKey(t *tableView, msg tea.KeyMsg) (bool, tea.Cmd) {
	before := t.state.PageSize
	handled, cmd := t.HandleKey(msg, m.keys)
	if after := t.state.PageSize; after != before {
		m.setPageSize(after)
	}
	return handled, cmd
}

// setPageSize applies a page size to every table and remembers it.
func (m *Model) setPageSize(size int) {
	for _, t := range []*tableView{&m.assets.table, &m.loans.table, &m.users.table} {
		if t.state.PageSize != size {
			t.state.SetPageSize(size)
			t.cursor = 0
		}
	}
	m.savePrefs(func(p *prefs.Prefs) { p.PageSize = size })
}

func (m *Model) savePrefs(apply func(*prefs.Prefs)) {
	if m.prefsPath == "" {
		return
	}
	p, _ := prefs.Load(m.prefsPath)
	apply(&p)
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn(m.ctx, "save prefs", "error", err)
	}
}

func (m *Model) activeTable() *tableView {
	switch m.currentView {
	case ViewAssets:
		return &m.assets.table
	case ViewLoans:
		return &m.loans.table
	case ViewUsers:
		return &m.users.table
	}
	return nil
}

func (m Model) offsetView(delta int) View {
	for i, v := range viewOrder {
		if v == m.currentView {
			return viewOrder[(i+delta+len(viewOrder))%len(viewOrder)]
		}
	}
	return ViewDashboard
}

func (m *Model) switchView(v View) tea.Cmd {
	m.currentView = v
	if v == ViewLogs {
		return readLogsCmd(m.logPath)
	}
	return nil
}

// refreshAll wakes the poller and refetches any server-side filtered lists.
func (m Model) refreshAll() tea.Cmd {
	if m.refresher != nil {
		m.refresher.Trigger()
	}
	var cmds []tea.Cmd
	if m.assets.filter != "" {
		cmds = append(cmds, m.fetchAssetsCmd(m.assets.filter))
	}
	if m.loans.filter != "" {
		cmds = append(cmds, m.fetchLoansCmd(m.loans.filter))
	}
	return tea.Batch(cmds...)
}

// handleError routes an API failure: an expired session goes back to the
// login view, anything else becomes a footer message.
func (m *Model) handleError(err error, fallback string) tea.Cmd {
	if errors.Is(err, api.ErrSessionExpired) {
		m.store.MarkSessionExpired(err)
		m.expireSession(err)
		return nil
	}
	m.logger.Warn(m.ctx, fallback, "error", err)
	m.setFlash(api.UserMessage(err, fallback), true)
	return nil
}

func (m *Model) expireSession(err error) {
	m.logger.Info(m.ctx, "session expired", "error", err)
	m.endSession(api.UserMessage(api.ErrSessionExpired, ""))
}

func (m Model) hasSession() bool {
	if m.client == nil {
		return false
	}
	sess, err := m.client.Session(m.ctx)
	return err == nil && !sess.Empty()
}

// endSession drops back to the login view with an optional banner.
func (m *Model) endSession(banner string) {
	m.authenticated = false
	m.modal = nil
	m.showHelp = false
	m.currentView = ViewDashboard
	m.login = newLoginState()
	m.login.err = banner
	m.assets.filter, m.assets.filtered = "", nil
	m.loans.filter, m.loans.filtered = "", nil
	if banner == "" {
		m.store.MarkLoggedOut()
	}
	m.snapshot = m.store.Snapshot()
	m.syncTables()
}

func (m *Model) setFlash(text string, isError bool) {
	m.flash = flash{text: text, isError: isError, at: time.Now()}
}
