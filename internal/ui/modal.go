package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

const modalWidth = 64

func renderModal(theme Theme, width, height int, title, body, hint string) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", modalWidth-6)))
	b.WriteString("\n\n")
	b.WriteString(body)
	if hint != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.MutedText.Render(hint))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.BorderFocus)).
		Padding(1, 2).
		Width(modalWidth)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

// confirmModal asks a yes/no question before a destructive action.
type confirmModal struct {
	title     string
	message   string
	onConfirm tea.Cmd
}

func (c confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(km, keys.Confirm):
		return c, c.onConfirm, true
	case key.Matches(km, keys.Cancel):
		return c, nil, true
	}
	return c, nil, false
}

func (c confirmModal) View(theme Theme, width, height int) string {
	body := theme.Styles().Text.Render(c.message)
	return renderModal(theme, width, height, c.title, body, "y/enter confirm · esc/n cancel")
}

// detailField is one row of a detail modal.
type detailField struct {
	label string
	value string
}

// detailModal shows a record's fields read-only.
type detailModal struct {
	title  string
	fields []detailField
}

func (d detailModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil, false
	}
	if key.Matches(km, keys.Cancel) || km.Type == tea.KeyEnter || key.Matches(km, keys.Quit) {
		return d, nil, true
	}
	return d, nil, false
}

func (d detailModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	labelWidth := 0
	for _, f := range d.fields {
		labelWidth = max(labelWidth, lipgloss.Width(f.label)+2)
	}
	var b strings.Builder
	for i, f := range d.fields {
		value := f.value
		if value == "" {
			value = "-"
		}
		b.WriteString(styles.MutedText.Width(labelWidth).Render(f.label))
		b.WriteString(styles.Text.Render(truncate(value, modalWidth-labelWidth-6)))
		if i < len(d.fields)-1 {
			b.WriteString("\n")
		}
	}
	return renderModal(theme, width, height, d.title, b.String(), "esc/enter close")
}

// formModal collects input and hands the values to submit. A submit error
// keeps the modal open and shows the message.
type formModal struct {
	title  string
	form   form
	submit func(values []string) (tea.Cmd, error)
}

func newFormModal(title string, submit func([]string) (tea.Cmd, error), fields ...formField) *formModal {
	return &formModal{title: title, form: newForm(fields...), submit: submit}
}

func (f *formModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil, false
	}
	if km.Type == tea.KeyEsc {
		return f, nil, true
	}
	submit, cmd := f.form.Update(km, keys)
	if !submit {
		return f, cmd, false
	}
	if err := f.form.Validate(); err != nil {
		f.form.err = err.Error()
		return f, nil, false
	}
	action, err := f.submit(f.form.Values())
	if err != nil {
		f.form.err = err.Error()
		return f, nil, false
	}
	return f, action, true
}

func (f *formModal) View(theme Theme, width, height int) string {
	body := f.form.View(theme, modalWidth-6)
	return renderModal(theme, width, height, f.title, body, "tab next · enter/ctrl+s submit · esc cancel")
}
