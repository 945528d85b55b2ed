package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding
	Refresh    key.Binding
	Logout     key.Binding

	// View switching
	ViewDashboard key.Binding
	ViewAssets    key.Binding
	ViewLoans     key.Binding
	ViewUsers     key.Binding
	ViewLogs      key.Binding

	// Table
	Up            key.Binding
	Down          key.Binding
	Top           key.Binding
	Bottom        key.Binding
	PrevPage      key.Binding
	NextPage      key.Binding
	Search        key.Binding
	ClearSort     key.Binding
	CyclePageSize key.Binding
	CycleFilter   key.Binding
	Details       key.Binding

	// Record actions
	New    key.Binding
	Edit   key.Binding
	Delete key.Binding

	// Loan actions
	Approve      key.Binding
	Reject       key.Binding
	Start        key.Binding
	Return       key.Binding
	CheckOverdue key.Binding

	// User actions
	ToggleActive key.Binding

	// Logs
	ToggleFollow key.Binding

	// Forms and modals
	Confirm   key.Binding
	Cancel    key.Binding
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to dashboard"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh now"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Log out"),
		),

		ViewDashboard: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Dashboard"),
		),
		ViewAssets: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Assets"),
		),
		ViewLoans: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Loans"),
		),
		ViewUsers: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Users"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Logs"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "First row"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Last row"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("[", "left", "pgup"),
			key.WithHelp("[/left", "Previous page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]", "right", "pgdown"),
			key.WithHelp("]/right", "Next page"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		ClearSort: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "Clear sort"),
		),
		CyclePageSize: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "Cycle page size"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle status filter"),
		),
		Details: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Details"),
		),

		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("X", "delete"),
			key.WithHelp("X", "Delete"),
		),

		Approve: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Approve"),
		),
		Reject: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Reject"),
		),
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Start (hand out)"),
		),
		Return: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Return"),
		),
		CheckOverdue: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Check overdue"),
		),

		ToggleActive: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Activate/deactivate"),
		),

		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Toggle follow mode"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y/enter", "Confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "n"),
			key.WithHelp("esc/n", "Cancel"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Submit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewDashboard, k.ViewAssets, k.ViewLoans, k.ViewUsers, k.ViewLogs},
		{k.Up, k.Down, k.Top, k.Bottom, k.PrevPage, k.NextPage},
		{k.Search, k.ClearSort, k.CyclePageSize, k.CycleFilter, k.Details},
		{k.New, k.Edit, k.Delete, k.ToggleActive},
		{k.Approve, k.Reject, k.Start, k.Return, k.CheckOverdue},
		{k.ToggleFollow},
		{k.Refresh, k.CycleTheme, k.Logout, k.Help, k.Quit},
	}
}
