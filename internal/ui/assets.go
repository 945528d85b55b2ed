package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/five82/assetdesk/internal/api"
)

type assetsState struct {
	table tableView
	// filter is sent to the server as status; empty means all.
	filter   api.AssetStatus
	filtered []api.Asset
	loading  bool
}

func newAssetsState(pageSize int) assetsState {
	t := newTableView(assetColumns(), pageSize)
	t.badgeColumn = assetStatusColumn
	return assetsState{table: t}
}

// nextAssetFilter cycles all → each status → all.
func nextAssetFilter(current api.AssetStatus) api.AssetStatus {
	if current == "" {
		return api.AssetStatuses[0]
	}
	for i, s := range api.AssetStatuses {
		if s == current && i+1 < len(api.AssetStatuses) {
			return api.AssetStatuses[i+1]
		}
	}
	return ""
}

func (m *Model) handleAssetsKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CycleFilter):
		m.assets.filter = nextAssetFilter(m.assets.filter)
		m.assets.filtered = nil
		m.assets.table.cursor = 0
		m.syncTables()
		if m.assets.filter == "" {
			return true, nil
		}
		m.assets.loading = true
		return true, m.fetchAssetsCmd(m.assets.filter)
	case key.Matches(msg, m.keys.New):
		m.modal = m.assetForm(nil)
		return true, nil
	case key.Matches(msg, m.keys.Edit):
		if a, ok := m.selectedAsset(); ok {
			m.modal = m.assetForm(&a)
		}
		return true, nil
	case key.Matches(msg, m.keys.Delete):
		a, ok := m.selectedAsset()
		if !ok {
			return true, nil
		}
		client := m.client
		m.modal = confirmModal{
			title:   "Delete asset",
			message: fmt.Sprintf("Are you sure you want to delete %s (%s)?", a.Name, a.AssetCode),
			onConfirm: m.mutate("Failed to delete asset", func(ctx context.Context) (string, error) {
				return "Asset deleted", client.DeleteAsset(ctx, a.ID)
			}),
		}
		return true, nil
	case key.Matches(msg, m.keys.Details):
		id, ok := m.assets.table.SelectedID()
		if !ok {
			return true, nil
		}
		return true, m.assetDetailCmd(id)
	}
	return m.handleTableKey(&m.assets.table, msg)
}

func (m *Model) handleAssets(msg assetsMsg) tea.Cmd {
	if msg.status != m.assets.filter {
		return nil
	}
	m.assets.loading = false
	if msg.err != nil {
		return m.handleError(msg.err, "Failed to load assets")
	}
	m.assets.filtered = msg.items
	m.syncTables()
	return nil
}

func (m Model) visibleAssets() []api.Asset {
	if m.assets.filter != "" {
		return m.assets.filtered
	}
	return m.snapshot.Assets
}

func (m Model) selectedAsset() (api.Asset, bool) {
	id, ok := m.assets.table.SelectedID()
	if !ok {
		return api.Asset{}, false
	}
	for _, a := range m.visibleAssets() {
		if a.ID == id {
			return a, true
		}
	}
	return api.Asset{}, false
}

func (m Model) assetDetailCmd(id uuid.UUID) tea.Cmd {
	client := m.client
	usernames := m.snapshot.Usernames()
	return m.call(func(ctx context.Context) tea.Msg {
		a, err := client.GetAsset(ctx, id)
		if err != nil {
			return detailMsg{fallback: "Failed to fetch asset details", err: err}
		}
		return detailMsg{modal: assetDetail(a, usernames)}
	})
}

func assetDetail(a api.Asset, usernames map[uuid.UUID]string) detailModal {
	pic := ""
	if a.PICUserID != nil {
		pic = resolveName(usernames, *a.PICUserID)
	}
	return detailModal{
		title: "Asset " + a.AssetCode,
		fields: []detailField{
			{"Name", a.Name},
			{"Code", a.AssetCode},
			{"Serial number", a.SerialNumber},
			{"Status", titleCase(string(a.CurrentStatus))},
			{"Condition", deref(a.AssetCondition)},
			{"Description", deref(a.Description)},
			{"Category", a.CategoryID.String()},
			{"Person in charge", pic},
			{"Created", formatDate(api.ParseTime(a.CreatedAt))},
			{"Updated", relativeTime(a.ParsedUpdatedAt())},
			{"ID", a.ID.String()},
		},
	}
}

// assetForm builds the create form, or the edit form when existing is set.
func (m Model) assetForm(existing *api.Asset) *formModal {
	var current api.Asset
	if existing != nil {
		current = *existing
	}
	statuses := make([]string, len(api.AssetStatuses))
	for i, s := range api.AssetStatuses {
		statuses[i] = string(s)
	}
	category := ""
	if current.CategoryID != uuid.Nil {
		category = current.CategoryID.String()
	}
	pic := ""
	if current.PICUserID != nil {
		pic = current.PICUserID.String()
	}
	status := string(current.CurrentStatus)
	if status == "" {
		status = string(api.AssetActive)
	}

	fields := []formField{
		newField("Asset code", "LAP-001", true).withValue(current.AssetCode),
		newField("Name", "", true).withValue(current.Name),
		newField("Serial number", "", true).withValue(current.SerialNumber),
		newField("Category ID", "UUID", true).withValue(category).withValidator(validateUUID("Category ID")),
		newField("Status", strings.Join(statuses, ", "), true).withValue(status).
			withValidator(validateOneOf("Status", api.AssetStatuses)),
		newField("Condition", "excellent, good, fair, poor", false).withValue(deref(current.AssetCondition)),
		newField("Description", "", false).withValue(deref(current.Description)),
		newField("PIC user ID", "UUID (optional)", false).withValue(pic).withValidator(validateUUID("PIC user ID")),
	}

	client := m.client
	if existing == nil {
		return newFormModal("New asset", func(v []string) (tea.Cmd, error) {
			in := assetInput(v)
			return m.mutate("Failed to create asset", func(ctx context.Context) (string, error) {
				a, err := client.CreateAsset(ctx, in)
				return fmt.Sprintf("Asset %s created", a.AssetCode), err
			}), nil
		}, fields...)
	}
	id := current.ID
	return newFormModal("Edit asset "+current.AssetCode, func(v []string) (tea.Cmd, error) {
		in := assetInput(v)
		return m.mutate("Failed to update asset", func(ctx context.Context) (string, error) {
			a, err := client.UpdateAsset(ctx, id, in)
			return fmt.Sprintf("Asset %s updated", a.AssetCode), err
		}), nil
	}, fields...)
}

// assetInput maps validated form values onto a request body.
func assetInput(v []string) api.AssetInput {
	in := api.AssetInput{
		AssetCode:      v[0],
		Name:           v[1],
		SerialNumber:   v[2],
		CurrentStatus:  api.AssetStatus(v[4]),
		AssetCondition: optional(v[5]),
		Description:    optional(v[6]),
	}
	if id, err := uuid.Parse(v[3]); err == nil {
		in.CategoryID = &id
	}
	if id, err := uuid.Parse(v[7]); err == nil {
		in.PICUserID = &id
	}
	return in
}

func (m Model) renderAssets(width, height int) string {
	styles := m.theme.Styles()
	counts := m.snapshot.AssetCounts()
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderCard("Total Assets", humanize.Comma(int64(m.snapshot.AssetTotal)), m.theme.Accent),
		m.renderCard("Active", humanize.Comma(int64(counts[api.AssetActive])), m.theme.Success),
		m.renderCard("Maintenance", humanize.Comma(int64(counts[api.AssetMaintenance])), m.theme.Warning),
	)

	filter := "All statuses"
	if m.assets.filter != "" {
		filter = titleCase(string(m.assets.filter))
	}
	status := styles.MutedText.Render("Filter: ") + styles.AccentText.Render(filter)
	if m.assets.loading {
		status += styles.WarningText.Render("  loading...")
	}

	body := m.assets.table.Render(m.theme, width, true)
	return lipgloss.JoinVertical(lipgloss.Left, cards, status, "", body)
}
