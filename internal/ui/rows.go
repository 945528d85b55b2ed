package ui

import (
	"time"

	"github.com/google/uuid"

	"github.com/five82/assetdesk/internal/api"
	"github.com/five82/assetdesk/internal/table"
)

// timeValue leaves unset times out of the row so they sort last.
func timeValue(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func stringValue(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func renderDate(field string) func(table.Row) string {
	return func(r table.Row) string {
		t, _ := r[field].(time.Time)
		return formatDate(t)
	}
}

func assetColumns() []table.Column {
	return []table.Column{
		{Label: "Code", Accessor: table.ByField("asset_code"), Sortable: true},
		{Label: "Name", Accessor: table.ByField("name"), Sortable: true},
		{Label: "Serial", Accessor: table.ByField("serial_number"), Sortable: true},
		{Label: "Status", Accessor: table.ByField("current_status"), Sortable: true},
		{Label: "Condition", Accessor: table.ByField("asset_condition"), Sortable: true},
		{Label: "Updated", Accessor: table.ByField("updated_at"), Sortable: true, Render: renderDate("updated_at")},
	}
}

const assetStatusColumn = 3

func assetRows(assets []api.Asset) []table.Row {
	rows := make([]table.Row, 0, len(assets))
	for _, a := range assets {
		rows = append(rows, table.Row{
			rowIDKey:          a.ID,
			"asset_code":      a.AssetCode,
			"name":            a.Name,
			"serial_number":   a.SerialNumber,
			"current_status":  string(a.CurrentStatus),
			"asset_condition": stringValue(a.AssetCondition),
			"updated_at":      timeValue(a.ParsedUpdatedAt()),
		})
	}
	return rows
}

func loanColumns() []table.Column {
	return []table.Column{
		{Label: "Asset", Accessor: table.ByField("asset"), Sortable: true},
		{Label: "Borrower", Accessor: table.ByField("borrower"), Sortable: true},
		{Label: "Status", Accessor: table.ByField("loan_status"), Sortable: true},
		{Label: "Requested", Accessor: table.ByField("requested_at"), Sortable: true, Render: renderDate("requested_at")},
		{Label: "Due", Accessor: table.ByField("due_date"), Sortable: true, Render: renderDate("due_date")},
		{Label: "Notes", Accessor: table.ByField("notes")},
	}
}

const loanStatusColumn = 2

func loanRows(loans []api.Loan, assetNames, usernames map[uuid.UUID]string) []table.Row {
	rows := make([]table.Row, 0, len(loans))
	for _, l := range loans {
		rows = append(rows, table.Row{
			rowIDKey:       l.ID,
			"asset":        resolveName(assetNames, l.AssetID),
			"borrower":     resolveName(usernames, l.UserID),
			"loan_status":  string(l.Status),
			"requested_at": timeValue(l.ParsedRequestedAt()),
			"due_date":     timeValue(l.ParsedDueDate()),
			"notes":        stringValue(l.Notes),
		})
	}
	return rows
}

// resolveName shows a known name, or the short id when the record is not loaded.
func resolveName(names map[uuid.UUID]string, id uuid.UUID) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return shortID(id)
}

func userColumns() []table.Column {
	return []table.Column{
		{Label: "Username", Accessor: table.ByField("username"), Sortable: true},
		{Label: "Email", Accessor: table.ByField("email"), Sortable: true},
		{Label: "Role", Accessor: table.ByField("role_id"), Sortable: true},
		{Label: "Status", Accessor: table.ByFunc(func(r table.Row) any {
			if active, _ := r["is_active"].(bool); active {
				return "active"
			}
			return "inactive"
		}), Sortable: true},
		{Label: "Created", Accessor: table.ByField("created_at"), Sortable: true, Render: renderDate("created_at")},
	}
}

const userStatusColumn = 3

func userRows(users []api.User) []table.Row {
	rows := make([]table.Row, 0, len(users))
	for _, u := range users {
		rows = append(rows, table.Row{
			rowIDKey:     u.ID,
			"username":   u.Username,
			"email":      u.Email,
			"role_id":    shortID(u.RoleID),
			"is_active":  u.IsActive,
			"created_at": timeValue(u.ParsedCreatedAt()),
		})
	}
	return rows
}
