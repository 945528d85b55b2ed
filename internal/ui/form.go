package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

// formField is one labelled text input.
type formField struct {
	label    string
	input    textinput.Model
	required bool
	validate func(string) error
}

func newField(label, placeholder string, required bool) formField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 256
	return formField{label: label, input: ti, required: required}
}

func passwordField(label string) formField {
	f := newField(label, "", true)
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '•'
	return f
}

func (f formField) withValue(v string) formField {
	f.input.SetValue(v)
	return f
}

func (f formField) withValidator(fn func(string) error) formField {
	f.validate = fn
	return f
}

// form is a vertical list of fields with one focused at a time.
type form struct {
	fields []formField
	focus  int
	err    string
}

func newForm(fields ...formField) form {
	f := form{fields: fields}
	f.focusField(0)
	return f
}

// Values returns the trimmed value of every field in order.
func (f form) Values() []string {
	out := make([]string, len(f.fields))
	for i, field := range f.fields {
		out[i] = strings.TrimSpace(field.input.Value())
	}
	return out
}

// Validate checks required fields and field validators and focuses the
// first field that fails.
func (f *form) Validate() error {
	for i, field := range f.fields {
		value := strings.TrimSpace(field.input.Value())
		var err error
		switch {
		case field.required && value == "":
			err = fmt.Errorf("%s is required", field.label)
		case value != "" && field.validate != nil:
			err = field.validate(value)
		}
		if err != nil {
			f.focusField(i)
			return err
		}
	}
	return nil
}

func (f *form) focusField(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	i = (i + len(f.fields)) % len(f.fields)
	for j := range f.fields {
		f.fields[j].input.Blur()
	}
	f.focus = i
	return f.fields[i].input.Focus()
}

// Update handles a key and reports whether the user asked to submit.
func (f *form) Update(msg tea.KeyMsg, keys keyMap) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Submit):
		return true, nil
	case msg.Type == tea.KeyEnter:
		if f.focus == len(f.fields)-1 {
			return true, nil
		}
		return false, f.focusField(f.focus + 1)
	case key.Matches(msg, keys.NextField):
		return false, f.focusField(f.focus + 1)
	case key.Matches(msg, keys.PrevField):
		return false, f.focusField(f.focus - 1)
	}
	if len(f.fields) == 0 {
		return false, nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return false, cmd
}

// View renders labels, inputs and the last error.
func (f form) View(theme Theme, width int) string {
	styles := theme.Styles()
	labelWidth := 0
	for _, field := range f.fields {
		labelWidth = max(labelWidth, lipgloss.Width(field.label)+2)
	}

	var b strings.Builder
	for i, field := range f.fields {
		label := field.label
		if field.required {
			label += "*"
		}
		labelStyle := styles.MutedText
		if i == f.focus {
			labelStyle = styles.AccentText.Bold(true)
		}
		field.input.Width = max(10, width-labelWidth-2)
		b.WriteString(labelStyle.Width(labelWidth).Render(label))
		b.WriteString(field.input.View())
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(f.err))
		b.WriteString("\n")
	}
	return b.String()
}

func validateUUID(label string) func(string) error {
	return func(v string) error {
		if _, err := uuid.Parse(v); err != nil {
			return fmt.Errorf("%s must be a UUID", label)
		}
		return nil
	}
}

func validateDate(label string) func(string) error {
	return func(v string) error {
		if _, err := time.Parse(time.DateOnly, v); err != nil {
			return fmt.Errorf("%s must be a date (YYYY-MM-DD)", label)
		}
		return nil
	}
}

func validateEmail(v string) error {
	at := strings.Index(v, "@")
	if at <= 0 || at == len(v)-1 {
		return errors.New("email address is not valid")
	}
	return nil
}

func validateOneOf[T ~string](label string, allowed []T) func(string) error {
	return func(v string) error {
		for _, a := range allowed {
			if string(a) == v {
				return nil
			}
		}
		names := make([]string, len(allowed))
		for i, a := range allowed {
			names[i] = string(a)
		}
		return fmt.Errorf("%s must be one of %s", label, strings.Join(names, ", "))
	}
}
