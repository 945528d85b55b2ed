package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/assetdesk/internal/api"
)

type loginState struct {
	form form
	err  string
	busy bool
}

func newLoginState() loginState {
	email := newField("Email", "admin@company.com", true).withValidator(validateEmail)
	return loginState{form: newForm(email, passwordField("Password"))}
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.busy {
		return m, nil
	}
	submit, cmd := m.login.form.Update(msg, m.keys)
	if !submit {
		return m, cmd
	}
	if err := m.login.form.Validate(); err != nil {
		m.login.err = err.Error()
		return m, nil
	}
	values := m.login.form.Values()
	m.login.busy = true
	m.login.err = ""
	return m, m.loginCmd(values[0], m.login.form.fields[1].input.Value())
}

func (m Model) handleLogin(msg loginMsg) (tea.Model, tea.Cmd) {
	m.login.busy = false
	if msg.err != nil {
		m.logger.Warn(m.ctx, "login failed", "error", msg.err)
		m.login.err = api.UserMessage(msg.err, "Login failed")
		m.login.form.fields[1].input.SetValue("")
		return m, nil
	}
	m.authenticated = true
	m.loginAt = time.Now()
	m.login = newLoginState()
	m.currentView = ViewDashboard
	m.setFlash("Signed in", false)
	return m, m.refreshAll()
}

func (m Model) renderLogin() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Logo.Render("assetdesk"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Sign in to " + m.apiLabel()))
	b.WriteString("\n\n")
	if m.login.err != "" {
		b.WriteString(styles.DangerText.Render(m.login.err))
		b.WriteString("\n\n")
	}
	b.WriteString(m.login.form.View(m.theme, modalWidth-6))
	b.WriteString("\n")
	if m.login.busy {
		b.WriteString(styles.WarningText.Render("Signing in..."))
	} else {
		b.WriteString(styles.FaintText.Render("enter next/submit · tab switch field · ctrl+c quit"))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(1, 2).
		Width(modalWidth)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box.Render(b.String()))
}

// apiLabel names the server in the login box when the client knows it.
func (m Model) apiLabel() string {
	if c, ok := m.client.(interface{ BaseURL() string }); ok {
		return c.BaseURL()
	}
	return "the asset server"
}
