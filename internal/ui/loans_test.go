package ui

import (
	"testing"

	"github.com/google/uuid"

	"github.com/five82/assetdesk/internal/api"
)

func TestTransitionAllowed(t *testing.T) {
	borrower := api.User{ID: uuid.New()}
	other := api.User{ID: uuid.New()}

	cases := []struct {
		name   string
		status api.LoanStatus
		action api.LoanAction
		me     api.User
		ok     bool
	}{
		{"approve pending", api.LoanPending, api.ApproveLoan, other, true},
		{"reject pending", api.LoanPending, api.RejectLoan, other, true},
		{"approve approved", api.LoanApproved, api.ApproveLoan, other, false},
		{"start approved as borrower", api.LoanApproved, api.StartLoan, borrower, true},
		{"start approved as someone else", api.LoanApproved, api.StartLoan, other, false},
		{"start pending", api.LoanPending, api.StartLoan, borrower, false},
		{"return borrowed", api.LoanBorrowed, api.ReturnLoan, other, true},
		{"return overdue", api.LoanOverdue, api.ReturnLoan, borrower, true},
		{"return returned", api.LoanReturned, api.ReturnLoan, borrower, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := api.Loan{ID: uuid.New(), UserID: borrower.ID, Status: tc.status}
			err := transitionAllowed(l, tc.action, tc.me)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected the action to be refused")
			}
		})
	}
}

func TestNextLoanFilterCycles(t *testing.T) {
	seen := []api.LoanStatus{}
	f := api.LoanStatus("")
	for range len(api.LoanStatuses) + 1 {
		f = nextLoanFilter(f)
		seen = append(seen, f)
	}
	if seen[0] != api.LoanPending {
		t.Fatalf("first filter = %q, want pending", seen[0])
	}
	if last := seen[len(seen)-1]; last != "" {
		t.Fatalf("cycle should end at all statuses, got %q", last)
	}
}

func TestNextAssetFilterCycles(t *testing.T) {
	f := api.AssetStatus("")
	for _, want := range api.AssetStatuses {
		f = nextAssetFilter(f)
		if f != want {
			t.Fatalf("filter = %q, want %q", f, want)
		}
	}
	if f = nextAssetFilter(f); f != "" {
		t.Fatalf("filter after last = %q, want all", f)
	}
}

func TestResolveAsset(t *testing.T) {
	assets := []api.Asset{{ID: uuid.New(), AssetCode: "AST-001"}}

	id, err := resolveAsset(assets, "ast-001")
	if err != nil || id != assets[0].ID {
		t.Fatalf("resolveAsset by code = %v, %v", id, err)
	}
	raw := uuid.New()
	if id, err := resolveAsset(assets, raw.String()); err != nil || id != raw {
		t.Fatalf("resolveAsset by uuid = %v, %v", id, err)
	}
	if _, err := resolveAsset(assets, "AST-404"); err == nil {
		t.Fatal("expected unknown code to fail")
	}
}

func TestLoanRowsResolveNames(t *testing.T) {
	assetID, userID := uuid.New(), uuid.New()
	unknown := uuid.New()
	rows := loanRows(
		[]api.Loan{{ID: uuid.New(), AssetID: assetID, UserID: unknown, Status: api.LoanPending}},
		map[uuid.UUID]string{assetID: "Projector"},
		map[uuid.UUID]string{userID: "alice"},
	)
	if got := rows[0]["asset"]; got != "Projector" {
		t.Fatalf("asset = %v", got)
	}
	if got := rows[0]["borrower"]; got != unknown.String()[:8] {
		t.Fatalf("borrower = %v, want short id", got)
	}
	if rows[0]["notes"] != nil {
		t.Fatalf("empty notes should be missing, got %v", rows[0]["notes"])
	}
}
