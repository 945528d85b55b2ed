package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/five82/assetdesk/internal/api"
)

// forbiddenText replaces the Users table for accounts without access.
const forbiddenText = "You don't have permission to access this page."

type usersState struct {
	table tableView
}

func newUsersState(pageSize int) usersState {
	t := newTableView(userColumns(), pageSize)
	t.badgeColumn = userStatusColumn
	return usersState{table: t}
}

func (m *Model) handleUsersKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	if m.snapshot.UsersForbidden {
		return false, nil
	}
	switch {
	case key.Matches(msg, m.keys.New):
		m.modal = m.userCreateForm()
		return true, nil
	case key.Matches(msg, m.keys.Edit):
		if u, ok := m.selectedUser(); ok {
			m.modal = m.userEditForm(u)
		}
		return true, nil
	case key.Matches(msg, m.keys.ToggleActive):
		u, ok := m.selectedUser()
		if !ok {
			return true, nil
		}
		return true, m.toggleUserCmd(u)
	case key.Matches(msg, m.keys.Delete):
		u, ok := m.selectedUser()
		if !ok {
			return true, nil
		}
		if u.ID == m.snapshot.Me.ID {
			m.setFlash("You cannot delete your own account", true)
			return true, nil
		}
		client := m.client
		m.modal = confirmModal{
			title:   "Delete user",
			message: fmt.Sprintf("Are you sure you want to delete %s (%s)?", u.Username, u.Email),
			onConfirm: m.mutate("Failed to delete user", func(ctx context.Context) (string, error) {
				return "User deleted", client.DeleteUser(ctx, u.ID)
			}),
		}
		return true, nil
	case key.Matches(msg, m.keys.Details):
		id, ok := m.users.table.SelectedID()
		if !ok {
			return true, nil
		}
		return true, m.userDetailCmd(id)
	}
	return m.handleTableKey(&m.users.table, msg)
}

func (m Model) selectedUser() (api.User, bool) {
	id, ok := m.users.table.SelectedID()
	if !ok {
		return api.User{}, false
	}
	for _, u := range m.snapshot.Users {
		if u.ID == id {
			return u, true
		}
	}
	return api.User{}, false
}

func (m Model) toggleUserCmd(u api.User) tea.Cmd {
	client := m.client
	if u.IsActive {
		return m.mutate("Failed to deactivate user", func(ctx context.Context) (string, error) {
			_, err := client.DeactivateUser(ctx, u.ID)
			return u.Username + " deactivated", err
		})
	}
	return m.mutate("Failed to activate user", func(ctx context.Context) (string, error) {
		_, err := client.ActivateUser(ctx, u.ID)
		return u.Username + " activated", err
	})
}

func (m Model) userDetailCmd(id uuid.UUID) tea.Cmd {
	client := m.client
	return m.call(func(ctx context.Context) tea.Msg {
		u, err := client.GetUser(ctx, id)
		if err != nil {
			return detailMsg{fallback: "Failed to fetch user details", err: err}
		}
		return detailMsg{modal: userDetail(u)}
	})
}

func userDetail(u api.User) detailModal {
	status := "Inactive"
	if u.IsActive {
		status = "Active"
	}
	return detailModal{
		title: "User " + u.Username,
		fields: []detailField{
			{"Username", u.Username},
			{"Email", u.Email},
			{"Role ID", u.RoleID.String()},
			{"Status", status},
			{"Created", formatDate(u.ParsedCreatedAt())},
			{"Updated", relativeTime(api.ParseTime(u.UpdatedAt))},
			{"ID", u.ID.String()},
		},
	}
}

func (m Model) userCreateForm() *formModal {
	client := m.client
	return newFormModal("New user", func(v []string) (tea.Cmd, error) {
		roleID, err := uuid.Parse(v[3])
		if err != nil {
			return nil, err
		}
		in := api.UserCreate{Username: v[0], Email: v[1], Password: v[2], RoleID: roleID}
		return m.mutate("Failed to create user", func(ctx context.Context) (string, error) {
			u, err := client.CreateUser(ctx, in)
			return fmt.Sprintf("User %s created", u.Username), err
		}), nil
	},
		newField("Username", "", true),
		newField("Email", "name@company.com", true).withValidator(validateEmail),
		passwordField("Password"),
		newField("Role ID", "UUID", true).withValidator(validateUUID("Role ID")),
	)
}

// userEditForm sends only the fields that changed; a blank password keeps
// the current one.
func (m Model) userEditForm(u api.User) *formModal {
	client := m.client
	password := passwordField("New password")
	password.required = false
	return newFormModal("Edit user "+u.Username, func(v []string) (tea.Cmd, error) {
		var in api.UserUpdate
		if v[0] != u.Username {
			in.Username = &v[0]
		}
		if v[1] != u.Email {
			in.Email = &v[1]
		}
		if v[2] != "" {
			in.Password = &v[2]
		}
		if roleID, err := uuid.Parse(v[3]); err == nil && roleID != u.RoleID {
			in.RoleID = &roleID
		}
		return m.mutate("Failed to update user", func(ctx context.Context) (string, error) {
			updated, err := client.UpdateUser(ctx, u.ID, in)
			return fmt.Sprintf("User %s updated", updated.Username), err
		}), nil
	},
		newField("Username", "", true).withValue(u.Username),
		newField("Email", "", true).withValue(u.Email).withValidator(validateEmail),
		password,
		newField("Role ID", "UUID", true).withValue(u.RoleID.String()).withValidator(validateUUID("Role ID")),
	)
}

func (m Model) renderUsers(width, height int) string {
	styles := m.theme.Styles()
	if m.snapshot.UsersForbidden {
		msg := styles.DangerText.Render(forbiddenText)
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, msg)
	}
	return m.users.table.Render(m.theme, width, true)
}
