package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/five82/assetdesk/internal/api"
)

type loansState struct {
	table tableView
	// filter is sent to the server as status_filter; empty means all.
	filter   api.LoanStatus
	filtered []api.Loan
	loading  bool
}

func newLoansState(pageSize int) loansState {
	t := newTableView(loanColumns(), pageSize)
	t.badgeColumn = loanStatusColumn
	return loansState{table: t}
}

func nextLoanFilter(current api.LoanStatus) api.LoanStatus {
	if current == "" {
		return api.LoanStatuses[0]
	}
	for i, s := range api.LoanStatuses {
		if s == current && i+1 < len(api.LoanStatuses) {
			return api.LoanStatuses[i+1]
		}
	}
	return ""
}

// loanTransition describes one loan action as the console offers it.
type loanTransition struct {
	action   api.LoanAction
	title    string
	done     string
	fallback string
}

var loanTransitions = map[api.LoanAction]loanTransition{
	api.ApproveLoan: {api.ApproveLoan, "Approve loan", "Loan approved", "Failed to approve loan"},
	api.RejectLoan:  {api.RejectLoan, "Reject loan", "Loan rejected", "Failed to reject loan"},
	api.StartLoan:   {api.StartLoan, "Start borrowing", "Borrowing started", "Failed to start borrowing"},
	api.ReturnLoan:  {api.ReturnLoan, "Return loan", "Loan returned", "Failed to return loan"},
}

// transitionAllowed mirrors which actions the console offers for a loan:
// reviewers act on pending loans, the borrower starts an approved loan, and
// either side may return an outstanding one.
func transitionAllowed(l api.Loan, action api.LoanAction, me api.User) error {
	switch action {
	case api.ApproveLoan, api.RejectLoan:
		if l.Status != api.LoanPending {
			return fmt.Errorf("loan is %s, only pending loans can be reviewed", l.Status)
		}
	case api.StartLoan:
		if l.Status != api.LoanApproved {
			return errors.New("only approved loans can be started")
		}
		if me.ID != uuid.Nil && l.UserID != me.ID {
			return errors.New("only the borrower can start this loan")
		}
	case api.ReturnLoan:
		if l.Status != api.LoanBorrowed && l.Status != api.LoanOverdue {
			return errors.New("only borrowed or overdue loans can be returned")
		}
	}
	return nil
}

func (m *Model) handleLoansKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CycleFilter):
		m.loans.filter = nextLoanFilter(m.loans.filter)
		m.loans.filtered = nil
		m.loans.table.cursor = 0
		m.syncTables()
		if m.loans.filter == "" {
			return true, nil
		}
		m.loans.loading = true
		return true, m.fetchLoansCmd(m.loans.filter)
	case key.Matches(msg, m.keys.New):
		m.modal = m.loanRequestForm()
		return true, nil
	case key.Matches(msg, m.keys.Approve):
		return true, m.beginTransition(api.ApproveLoan)
	case key.Matches(msg, m.keys.Reject):
		return true, m.beginTransition(api.RejectLoan)
	case key.Matches(msg, m.keys.Start):
		return true, m.beginTransition(api.StartLoan)
	case key.Matches(msg, m.keys.Return):
		return true, m.beginTransition(api.ReturnLoan)
	case key.Matches(msg, m.keys.CheckOverdue):
		return true, m.checkOverdueCmd()
	case key.Matches(msg, m.keys.Details):
		id, ok := m.loans.table.SelectedID()
		if !ok {
			return true, nil
		}
		return true, m.loanDetailCmd(id)
	}
	return m.handleTableKey(&m.loans.table, msg)
}

func (m *Model) handleLoans(msg loansMsg) tea.Cmd {
	if msg.status != m.loans.filter {
		return nil
	}
	m.loans.loading = false
	if msg.err != nil {
		return m.handleError(msg.err, "Failed to load loans")
	}
	m.loans.filtered = msg.items
	m.syncTables()
	return nil
}

func (m Model) visibleLoans() []api.Loan {
	if m.loans.filter != "" {
		return m.loans.filtered
	}
	return m.snapshot.Loans
}

func (m Model) selectedLoan() (api.Loan, bool) {
	id, ok := m.loans.table.SelectedID()
	if !ok {
		return api.Loan{}, false
	}
	for _, l := range m.visibleLoans() {
		if l.ID == id {
			return l, true
		}
	}
	return api.Loan{}, false
}

// beginTransition opens the notes prompt for action on the selected loan.
func (m *Model) beginTransition(action api.LoanAction) tea.Cmd {
	l, ok := m.selectedLoan()
	if !ok {
		return nil
	}
	if err := transitionAllowed(l, action, m.snapshot.Me); err != nil {
		m.setFlash(err.Error(), true)
		return nil
	}
	tr := loanTransitions[action]
	client := m.client
	asset := resolveName(m.snapshot.AssetNames(), l.AssetID)
	m.modal = newFormModal(tr.title+" · "+asset, func(v []string) (tea.Cmd, error) {
		notes := v[0]
		return m.mutate(tr.fallback, func(ctx context.Context) (string, error) {
			_, err := client.TransitionLoan(ctx, l.ID, tr.action, notes)
			return tr.done, err
		}), nil
	}, newField("Notes", "optional", false))
	return nil
}

func (m Model) checkOverdueCmd() tea.Cmd {
	client := m.client
	return m.mutate("Failed to check overdue loans", func(ctx context.Context) (string, error) {
		flagged, err := client.CheckOverdue(ctx)
		if err != nil {
			return "", err
		}
		if len(flagged) == 0 {
			return "No overdue loans found", nil
		}
		return fmt.Sprintf("Found %d overdue loans", len(flagged)), nil
	})
}

func (m Model) loanDetailCmd(id uuid.UUID) tea.Cmd {
	client := m.client
	assetNames := m.snapshot.AssetNames()
	usernames := m.snapshot.Usernames()
	return m.call(func(ctx context.Context) tea.Msg {
		l, err := client.GetLoan(ctx, id)
		if err != nil {
			return detailMsg{fallback: "Failed to fetch loan details", err: err}
		}
		return detailMsg{modal: loanDetail(l, assetNames, usernames)}
	})
}

func loanDetail(l api.Loan, assetNames, usernames map[uuid.UUID]string) detailModal {
	approver := ""
	if l.ApprovedBy != nil {
		approver = resolveName(usernames, *l.ApprovedBy)
	}
	due := formatDate(l.ParsedDueDate())
	if t := l.ParsedDueDate(); !t.IsZero() {
		due += " (" + relativeTime(t) + ")"
	}
	return detailModal{
		title: "Loan " + shortID(l.ID),
		fields: []detailField{
			{"Asset", resolveName(assetNames, l.AssetID)},
			{"Borrower", resolveName(usernames, l.UserID)},
			{"Status", titleCase(string(l.Status))},
			{"Requested", formatDate(l.ParsedRequestedAt())},
			{"Borrowed", formatOptionalDate(l.BorrowedAt)},
			{"Due", due},
			{"Returned", formatOptionalDate(l.ReturnedAt)},
			{"Approved by", approver},
			{"Notes", deref(l.Notes)},
			{"ID", l.ID.String()},
		},
	}
}

func formatOptionalDate(s *string) string {
	if s == nil {
		return ""
	}
	return formatDate(api.ParseTime(*s))
}

// loanRequestForm files a loan for the current user. The asset may be
// given by id or by asset code.
func (m Model) loanRequestForm() *formModal {
	assets := m.snapshot.Assets
	client := m.client
	return newFormModal("New loan request", func(v []string) (tea.Cmd, error) {
		assetID, err := resolveAsset(assets, v[0])
		if err != nil {
			return nil, err
		}
		in := api.LoanCreate{AssetID: assetID, DueDate: optional(v[1]), Notes: optional(v[2])}
		return m.mutate("Failed to create loan request", func(ctx context.Context) (string, error) {
			_, err := client.CreateLoan(ctx, in)
			return "Loan request submitted", err
		}), nil
	},
		newField("Asset", "asset code or UUID", true),
		newField("Due date", "YYYY-MM-DD (optional)", false).withValidator(validateDate("Due date")),
		newField("Notes", "Notes for loan request...", false),
	)
}

func resolveAsset(assets []api.Asset, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	for _, a := range assets {
		if strings.EqualFold(a.AssetCode, ref) {
			return a.ID, nil
		}
	}
	return uuid.Nil, fmt.Errorf("no asset with code %q", ref)
}

func (m Model) renderLoans(width, height int) string {
	styles := m.theme.Styles()
	filter := "All statuses"
	if m.loans.filter != "" {
		filter = titleCase(string(m.loans.filter))
	}
	status := styles.MutedText.Render("Filter: ") + styles.AccentText.Render(filter)
	if m.loans.loading {
		status += styles.WarningText.Render("  loading...")
	}
	body := m.loans.table.Render(m.theme, width, true)
	return lipgloss.JoinVertical(lipgloss.Left, status, "", body)
}
