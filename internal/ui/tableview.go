package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/five82/assetdesk/internal/table"
)

// rowIDKey holds the record id in every row. No column reads it, so it is
// never searched or shown.
const rowIDKey = "_id"

const (
	maxColumnWidth = 40
	minColumnWidth = 4
	columnGap      = 2
)

// tableView is the interactive wrapper around a table.State: cursor,
// search box and rendering.
type tableView struct {
	columns []table.Column
	rows    []table.Row
	state   table.State
	cursor  int

	search    textinput.Model
	searching bool

	// badgeColumn renders its cells as status badges; -1 for none.
	badgeColumn int
}

func newTableView(columns []table.Column, pageSize int) tableView {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.Prompt = "/ "
	ti.CharLimit = 100

	return tableView{
		columns:     columns,
		state:       table.NewState(pageSize),
		search:      ti,
		badgeColumn: -1,
	}
}

// SetRows replaces the data and keeps page and cursor in range.
func (t *tableView) SetRows(rows []table.Row) {
	t.rows = rows
	t.clamp()
}

// View computes the visible slice for the current state.
func (t tableView) View() table.View {
	return table.Compute(t.columns, t.rows, t.state)
}

func (t *tableView) clamp() {
	v := t.View()
	t.state.Page = v.Page
	if t.cursor >= len(v.Rows) {
		t.cursor = len(v.Rows) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

// Selected returns the row under the cursor.
func (t tableView) Selected() (table.Row, bool) {
	v := t.View()
	if t.cursor < 0 || t.cursor >= len(v.Rows) {
		return nil, false
	}
	return v.Rows[t.cursor], true
}

// SelectedID returns the id of the row under the cursor.
func (t tableView) SelectedID() (uuid.UUID, bool) {
	r, ok := t.Selected()
	if !ok {
		return uuid.Nil, false
	}
	id, ok := r[rowIDKey].(uuid.UUID)
	return id, ok
}

// Capturing reports whether the search box owns the keyboard.
func (t tableView) Capturing() bool {
	return t.searching
}

// HandleKey applies table navigation keys. It reports whether the key was
// consumed.
func (t *tableView) HandleKey(msg tea.KeyMsg, keys keyMap) (bool, tea.Cmd) {
	if t.searching {
		return true, t.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(msg, keys.Down):
		t.cursor++
		t.clamp()
	case key.Matches(msg, keys.Top):
		t.cursor = 0
	case key.Matches(msg, keys.Bottom):
		t.cursor = len(t.View().Rows) - 1
		t.clamp()
	case key.Matches(msg, keys.PrevPage):
		t.state.SetPage(t.state.Page-1, t.View().Total)
		t.cursor = 0
	case key.Matches(msg, keys.NextPage):
		t.state.SetPage(t.state.Page+1, t.View().Total)
		t.cursor = 0
	case key.Matches(msg, keys.Search):
		t.searching = true
		t.search.SetValue(t.state.Search)
		t.search.CursorEnd()
		return true, t.search.Focus()
	case key.Matches(msg, keys.ClearSort):
		t.state.ClearSort()
	case key.Matches(msg, keys.CyclePageSize):
		t.state.NextPageSize()
		t.cursor = 0
	case key.Matches(msg, keys.Escape) && t.state.Search != "":
		t.clearSearch()
	default:
		n, err := strconv.Atoi(msg.String())
		if err != nil || n < 1 || n > 9 {
			return false, nil
		}
		t.state.ToggleSort(t.columns, n-1)
	}
	return true, nil
}

func (t *tableView) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		t.searching = false
		t.search.Blur()
		t.clearSearch()
		return nil
	case tea.KeyEnter:
		t.searching = false
		t.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	t.search, cmd = t.search.Update(msg)
	if v := t.search.Value(); v != t.state.Search {
		t.state.SetSearch(v)
		t.cursor = 0
	}
	return cmd
}

func (t *tableView) clearSearch() {
	t.search.SetValue("")
	t.state.SetSearch("")
	t.cursor = 0
}

// Render draws the search line, header, rows and pagination footer.
func (t tableView) Render(theme Theme, width int, focused bool) string {
	styles := theme.Styles()
	v := t.View()
	widths := t.columnWidths(v.Rows, width)

	var lines []string
	if line := t.renderSearch(styles); line != "" {
		lines = append(lines, line)
	}
	lines = append(lines, styles.TableHeader.Width(width).Render(t.renderHeader(widths)))

	if v.Empty() {
		placeholder := lipgloss.PlaceHorizontal(width, lipgloss.Center, table.EmptyText)
		lines = append(lines, styles.MutedText.Render(placeholder))
	}
	for i, r := range v.Rows {
		lines = append(lines, t.renderRow(r, widths, styles, width, focused && i == t.cursor))
	}

	lines = append(lines, "", t.renderFooter(v, styles))
	return strings.Join(lines, "\n")
}

func (t tableView) renderSearch(styles Styles) string {
	switch {
	case t.searching:
		return t.search.View()
	case t.state.Search != "":
		return styles.MutedText.Render("Search: ") + styles.AccentText.Render(t.state.Search) +
			styles.FaintText.Render("  (esc to clear)")
	}
	return ""
}

func (t tableView) renderHeader(widths []int) string {
	cells := make([]string, len(t.columns))
	for i, c := range t.columns {
		label := c.Label
		if c.CanSort() && i < 9 {
			label = fmt.Sprintf("%d %s", i+1, label)
		}
		if t.state.Sort.Active && t.state.Sort.Column == i {
			if t.state.Sort.Direction == table.Descending {
				label += " ▼"
			} else {
				label += " ▲"
			}
		}
		cells[i] = padRight(truncate(label, widths[i]), widths[i])
	}
	return strings.Join(cells, strings.Repeat(" ", columnGap))
}

func (t tableView) renderRow(r table.Row, widths []int, styles Styles, width int, selected bool) string {
	cells := make([]string, len(t.columns))
	for i, c := range t.columns {
		text := padRight(truncate(c.Cell(r), widths[i]), widths[i])
		if i == t.badgeColumn && !selected {
			raw := strings.TrimSpace(text)
			if raw != "" {
				badge := styles.StatusStyle(raw).Render(raw)
				text = badge + strings.Repeat(" ", max(0, widths[i]-lipgloss.Width(badge)))
			}
		}
		cells[i] = text
	}
	line := strings.Join(cells, strings.Repeat(" ", columnGap))
	if selected {
		return styles.Selected.Width(width).Render(line)
	}
	return styles.Text.Render(line)
}

func (t tableView) renderFooter(v table.View, styles Styles) string {
	var strip []string
	for _, p := range v.Strip {
		switch {
		case p == table.Ellipsis:
			strip = append(strip, styles.FaintText.Render("…"))
		case p == v.Page:
			strip = append(strip, styles.AccentText.Bold(true).Render(fmt.Sprintf("[%d]", p)))
		default:
			strip = append(strip, styles.MutedText.Render(strconv.Itoa(p)))
		}
	}
	parts := []string{
		styles.MutedText.Render(v.Summary()),
		strings.Join(strip, " "),
		styles.FaintText.Render(fmt.Sprintf("%d per page", t.state.PageSize)),
	}
	return strings.Join(parts, "   ")
}

// columnWidths sizes columns to their widest visible cell, then shrinks the
// widest ones until the row fits.
func (t tableView) columnWidths(rows []table.Row, width int) []int {
	widths := make([]int, len(t.columns))
	for i, c := range t.columns {
		if c.Width > 0 {
			widths[i] = c.Width
			continue
		}
		w := lipgloss.Width(c.Label) + 4 // sort number and arrow
		for _, r := range rows {
			cw := lipgloss.Width(c.Cell(r))
			if i == t.badgeColumn {
				cw += 2
			}
			w = max(w, cw)
		}
		widths[i] = min(w, maxColumnWidth)
	}

	budget := width - columnGap*(len(widths)-1)
	for total(widths) > budget {
		widest := 0
		for i := range widths {
			if widths[i] > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumnWidth {
			break
		}
		widths[widest]--
	}
	return widths
}

func total(values []int) int {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return sum
}
