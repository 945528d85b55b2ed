package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/assetdesk/internal/logtail"
)

// logsState holds the Logs view: the console's own log file, tailed.
type logsState struct {
	viewport viewport.Model
	lines    []string
	follow   bool
	err      error
}

func (m *Model) resizeLogs() {
	m.logs.viewport.Width = m.width
	m.logs.viewport.Height = max(1, m.bodyHeight()-1)
	m.renderLogContent()
}

func (m *Model) handleLogs(msg logsMsg) {
	m.logs.err = msg.err
	if msg.err != nil {
		return
	}
	m.logs.lines = msg.lines
	m.renderLogContent()
}

func (m *Model) renderLogContent() {
	styles := m.theme.Styles()
	rendered := make([]string, 0, len(m.logs.lines))
	for _, line := range m.logs.lines {
		rendered = append(rendered, colorizeLogEntry(logtail.Parse(line), styles))
	}
	m.logs.viewport.SetContent(strings.Join(rendered, "\n"))
	if m.logs.follow {
		m.logs.viewport.GotoBottom()
	}
}

// colorizeLogEntry styles a record by level; unparsed lines stay plain.
func colorizeLogEntry(e logtail.Entry, styles Styles) string {
	if e.Raw != "" {
		return styles.MutedText.Render(e.Raw)
	}
	levelStyle := styles.InfoText
	switch logLevel(e.Level) {
	case "ERROR":
		levelStyle = styles.DangerText
	case "WARN":
		levelStyle = styles.WarningText
	case "DEBUG":
		levelStyle = styles.FaintText
	}
	var b strings.Builder
	if ts := logTimestamp(e.Time); ts != "" {
		b.WriteString(styles.MutedText.Render(ts))
		b.WriteString(" ")
	}
	b.WriteString(levelStyle.Render(padRight(logLevel(e.Level), 5)))
	b.WriteString(" ")
	b.WriteString(styles.Text.Render(e.Message))
	for _, a := range e.Attrs {
		b.WriteString(" ")
		b.WriteString(styles.FaintText.Render(a.Key + "="))
		b.WriteString(styles.AccentText.Render(a.Value))
	}
	return b.String()
}

func (m *Model) handleLogsKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	vp := &m.logs.viewport
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logs.follow = !m.logs.follow
		if m.logs.follow {
			vp.GotoBottom()
		}
	case key.Matches(msg, m.keys.Up):
		m.logs.follow = false
		vp.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		vp.ScrollDown(1)
	case key.Matches(msg, m.keys.PrevPage):
		m.logs.follow = false
		vp.PageUp()
	case key.Matches(msg, m.keys.NextPage):
		vp.PageDown()
	case key.Matches(msg, m.keys.Top):
		m.logs.follow = false
		vp.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		vp.GotoBottom()
	default:
		return false, nil
	}
	return true, nil
}

func (m Model) renderLogsView(width, height int) string {
	styles := m.theme.Styles()
	mode := "paused"
	if m.logs.follow {
		mode = "following"
	}
	title := styles.MutedText.Render("Log file ") +
		styles.AccentText.Render(truncateMiddle(m.logPath, max(20, width-30))) +
		styles.FaintText.Render("  ("+mode+")")

	var body string
	switch {
	case m.logs.err != nil:
		body = styles.DangerText.Render("Cannot read log file: " + m.logs.err.Error())
	case len(m.logs.lines) == 0:
		body = styles.MutedText.Render("No log entries yet")
	default:
		body = m.logs.viewport.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}
