package state

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/five82/assetdesk/internal/api"
)

// RecentLoanCount is how many loans the dashboard lists.
const RecentLoanCount = 5

// Data is one successful poll of the API.
type Data struct {
	Me             api.User
	Assets         []api.Asset
	AssetTotal     int
	Loans          []api.Loan
	Users          []api.User
	UsersForbidden bool
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Data
	LoggedIn       bool
	SessionExpired bool
	LastUpdated    time.Time
	LastError      error
	// ConsecutiveFailures counts polls that failed since the last success.
	ConsecutiveFailures int
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// AssetNames maps asset ids to display names.
func (s Snapshot) AssetNames() map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(s.Assets))
	for _, a := range s.Assets {
		names[a.ID] = a.Name
	}
	return names
}

// Usernames maps user ids to usernames.
func (s Snapshot) Usernames() map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(s.Users)+1)
	for _, u := range s.Users {
		names[u.ID] = u.Username
	}
	if s.Me.ID != uuid.Nil {
		names[s.Me.ID] = s.Me.Username
	}
	return names
}

// DashboardStats are the headline counts shown on the dashboard.
type DashboardStats struct {
	TotalAssets int
	OnLoan      int
	Pending     int
	Overdue     int
	Recent      []api.Loan
}

// Dashboard derives the dashboard counts from the snapshot.
func (s Snapshot) Dashboard() DashboardStats {
	stats := DashboardStats{TotalAssets: s.AssetTotal}
	for _, l := range s.Loans {
		switch {
		case l.OnLoan():
			stats.OnLoan++
		case l.Status == api.LoanPending:
			stats.Pending++
		case l.Status == api.LoanOverdue:
			stats.Overdue++
		}
	}
	recent := slices.Clone(s.Loans)
	slices.SortStableFunc(recent, func(a, b api.Loan) int {
		return cmp.Compare(b.ParsedRequestedAt().UnixNano(), a.ParsedRequestedAt().UnixNano())
	})
	if len(recent) > RecentLoanCount {
		recent = recent[:RecentLoanCount]
	}
	stats.Recent = recent
	return stats
}

// AssetCounts returns how many loaded assets are in each status.
func (s Snapshot) AssetCounts() map[api.AssetStatus]int {
	counts := make(map[api.AssetStatus]int, len(api.AssetStatuses))
	for _, a := range s.Assets {
		counts[a.CurrentStatus]++
	}
	return counts
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored data. When err is non-nil the previous data is
// kept but the error is recorded for visibility.
func (s *Store) Update(data Data, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Data = cloneData(data)
	s.snapshot.LoggedIn = true
	s.snapshot.SessionExpired = false
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// MarkSessionExpired drops all data and flags that the user must log in again.
func (s *Store) MarkSessionExpired(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = Snapshot{
		SessionExpired: true,
		LastError:      err,
		LastUpdated:    time.Now(),
	}
}

// MarkLoggedOut drops all data without flagging an expiry.
func (s *Store) MarkLoggedOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = Snapshot{LastUpdated: time.Now()}
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Data = cloneData(s.snapshot.Data)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneData(d Data) Data {
	d.Assets = cloneSlice(d.Assets)
	d.Loans = cloneSlice(d.Loans)
	d.Users = cloneSlice(d.Users)
	return d
}

func cloneSlice[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	return slices.Clone(items)
}
