// Package ui provides the terminal console for assetdesk.
//
// # Architecture Overview
//
// The console is a Bubble Tea program (Model, Update, View) styled with
// lipgloss. Data arrives two ways:
//
//   - Snapshots: every tick the model copies state.Store, which the
//     background poller in package app keeps filled with the dashboard,
//     assets, loans and users.
//   - Commands: mutations, detail lookups and server-side filtered lists
//     run as tea.Cmd closures against the API client and report back as
//     messages (actionMsg, detailMsg, assetsMsg, loansMsg).
//
// # Package Structure
//
//   - app.go: Model, Options, Update dispatch and session handling
//   - header.go: header, tab bar, footer and body layout
//   - login.go: login form shown while signed out
//   - dashboard.go, assets.go, loans.go, users.go, logs.go: one file per view
//   - tableview.go, rows.go: interactive table built on package table
//   - form.go, modal.go: input forms, confirmations and detail popups
//   - keys.go, help.go: key bindings and the help overlay
//   - theme.go, style_helpers.go: color themes and background-aware styling
//
// # Views
//
//   - Dashboard: headline counts and the most recent loans
//   - Assets: inventory table with create, edit, delete and a status filter
//   - Loans: loan table with request, approve, reject, start, return and
//     the overdue sweep
//   - Users: user admin (create, edit, activate, delete); shows a notice
//     when the account lacks permission
//   - Logs: follows the console's own log file
//
// # Sessions
//
// The API client refreshes access tokens on its own. When that fails it
// returns api.ErrSessionExpired, and the model drops back to the login
// view with an explanatory banner. Snapshots taken before the latest
// login are never allowed to sign the user out again.
//
// # Key Bindings
//
//   - d/a/o/u/l: Dashboard, Assets, Loans, Users, Logs
//   - Tab/Shift+Tab: Cycle views
//   - j/k, [/]: Move selection, change page
//   - 1-9: Sort by column (again to reverse, 0 to clear)
//   - /: Search the current table
//   - z: Cycle page size
//   - r: Refresh now
//   - T: Cycle theme
//   - L: Log out
//   - ?: Help
//   - q or Ctrl+C: Quit
package ui
