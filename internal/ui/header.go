package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// chromeLines is the header, tab bar and footer.
const chromeLines = 3

func (m Model) bodyHeight() int {
	return max(1, m.height-chromeLines)
}

// renderMain lays out the chrome around the current view.
func (m Model) renderMain() string {
	width, height := m.width, m.bodyHeight()

	var body string
	switch m.currentView {
	case ViewAssets:
		body = m.renderAssets(width, height)
	case ViewLoans:
		body = m.renderLoans(width, height)
	case ViewUsers:
		body = m.renderUsers(width, height)
	case ViewLogs:
		body = m.renderLogsView(width, height)
	default:
		body = m.renderDashboard(width, height)
	}
	body = lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderTabs(),
		body,
		m.renderFooter(),
	)
}

// renderHeader renders the status bar: who is signed in, where, and how
// fresh the data is.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("assetdesk", styles.Logo)}

	snap := m.snapshot
	switch {
	case snap.IsOffline():
		parts = append(parts,
			bg.Render("● "+classifyConnectionError(snap.LastError), styles.DangerText.Bold(true)),
			bg.Render(fmt.Sprintf("Retrying (%d failed)", snap.ConsecutiveFailures), styles.WarningText),
		)
	case snap.LastUpdated.IsZero():
		parts = append(parts, bg.Render("Connecting...", styles.WarningText.Bold(true)))
	default:
		parts = append(parts, bg.Render("● ONLINE", styles.SuccessText))
	}

	if me := snap.Me; me.Username != "" {
		parts = append(parts,
			bg.Render("User:", styles.MutedText)+bg.Space()+bg.Render(me.Username, styles.Text))
	}

	if !compact {
		parts = append(parts, bg.Render(truncateMiddle(m.apiLabel(), 40), styles.FaintText))
	}

	if !m.expiresAt.IsZero() {
		parts = append(parts, m.renderExpiry(styles, bg))
	}

	if !snap.LastUpdated.IsZero() {
		label := snap.LastUpdated.Format("15:04:05")
		if !compact {
			label += " (" + relativeTime(snap.LastUpdated) + ")"
		}
		parts = append(parts, bg.Render(label, styles.MutedText))
	}

	if snap.LastError != nil && !snap.IsOffline() {
		maxErr := 60
		if compact {
			maxErr = 30
		}
		parts = append(parts,
			bg.Render("!", styles.WarningText.Bold(true))+bg.Space()+
				bg.Render(truncate(snap.LastError.Error(), maxErr), styles.WarningText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderExpiry shows when the access token runs out. The client refreshes
// it on demand, so an expired token is only a hint.
func (m Model) renderExpiry(styles Styles, bg BgStyle) string {
	left := time.Until(m.expiresAt)
	style := styles.MutedText
	switch {
	case left <= 0:
		return bg.Render("Token expired", styles.WarningText)
	case left < 2*time.Minute:
		style = styles.WarningText
	}
	return bg.Render("Token", styles.MutedText) + bg.Space() +
		bg.Render("expires "+humanize.Time(m.expiresAt), style)
}

// classifyConnectionError returns a short description of a poll failure.
func classifyConnectionError(err error) string {
	if err == nil {
		return "OFFLINE"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Background)
	tabs := make([]string, 0, len(viewOrder))
	for _, v := range viewOrder {
		label := " " + v.String() + " "
		if v == m.currentView {
			tabs = append(tabs, styles.Selected.Bold(true).Render(label))
		} else {
			tabs = append(tabs, bg.Render(label, styles.MutedText))
		}
	}
	return bg.FillLine(strings.Join(tabs, bg.Space()), m.width)
}

// renderFooter shows the flash message when there is one, otherwise the
// keys that matter in the current view.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if m.flash.text != "" {
		style := styles.SuccessText
		if m.flash.isError {
			style = styles.DangerText
		}
		return styles.Footer.Width(m.width).Render(bg.Render(m.flash.text, style))
	}

	type hint struct{ key, desc string }
	var hints []hint
	switch m.currentView {
	case ViewAssets:
		hints = []hint{{"n", "New"}, {"e", "Edit"}, {"X", "Delete"}, {"f", "Filter"}, {"/", "Search"}, {"enter", "Details"}}
	case ViewLoans:
		hints = []hint{{"n", "Request"}, {"p", "Approve"}, {"x", "Reject"}, {"s", "Start"}, {"t", "Return"}, {"c", "Overdue"}, {"f", "Filter"}}
	case ViewUsers:
		hints = []hint{{"n", "New"}, {"e", "Edit"}, {"v", "Activate"}, {"X", "Delete"}, {"enter", "Details"}}
	case ViewLogs:
		follow := "Pause"
		if !m.logs.follow {
			follow = "Follow"
		}
		hints = []hint{{"space", follow}, {"j/k", "Scroll"}, {"g/G", "Top/Bottom"}}
	default:
		hints = []hint{{"a", "Assets"}, {"o", "Loans"}, {"u", "Users"}, {"l", "Logs"}}
	}
	hints = append(hints, hint{"r", "Refresh"}, hint{"?", "Help"})

	colon := bg.Render(":", styles.FaintText)
	segments := make([]string, 0, len(hints)+1)
	for _, h := range hints {
		segments = append(segments, bg.Render(h.key, styles.AccentText)+colon+bg.Render(h.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Footer.Width(m.width).Render(bg.Join(segments, "  "))
}
