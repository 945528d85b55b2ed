package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

func (m Model) renderDashboard(width, height int) string {
	styles := m.theme.Styles()
	stats := m.snapshot.Dashboard()

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderCard("Total Assets", humanize.Comma(int64(stats.TotalAssets)), m.theme.Accent),
		m.renderCard("On Loan", humanize.Comma(int64(stats.OnLoan)), m.theme.Info),
		m.renderCard("Pending", humanize.Comma(int64(stats.Pending)), m.theme.Warning),
		m.renderCard("Overdue", humanize.Comma(int64(stats.Overdue)), m.theme.Danger),
	)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Recent loans"))
	b.WriteString("\n")
	if len(stats.Recent) == 0 {
		b.WriteString(styles.MutedText.Render("No loans yet"))
	}

	assetNames := m.snapshot.AssetNames()
	usernames := m.snapshot.Usernames()
	nameWidth := max(12, min(32, width/3))
	for i, l := range stats.Recent {
		asset := padRight(truncate(resolveName(assetNames, l.AssetID), nameWidth), nameWidth)
		borrower := padRight(truncate(resolveName(usernames, l.UserID), 16), 16)
		status := styles.StatusStyle(string(l.Status)).Render(titleCase(string(l.Status)))
		b.WriteString(styles.Text.Render(asset))
		b.WriteString("  ")
		b.WriteString(styles.MutedText.Render(borrower))
		b.WriteString("  ")
		b.WriteString(status)
		b.WriteString("  ")
		b.WriteString(styles.FaintText.Render(relativeTime(l.ParsedRequestedAt())))
		if i < len(stats.Recent)-1 {
			b.WriteString("\n")
		}
	}

	if name := m.snapshot.Me.Username; name != "" {
		greeting := styles.MutedText.Render("Welcome back, ") + styles.AccentText.Render(name)
		return lipgloss.JoinVertical(lipgloss.Left, greeting, "", cards, "", b.String())
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards, "", b.String())
}

// renderCard draws one headline number.
func (m Model) renderCard(label, value, color string) string {
	styles := m.theme.Styles()
	number := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(value)
	return styles.Card.Width(20).Render(number + "\n" + styles.MutedText.Render(label))
}
