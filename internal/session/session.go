// Package session persists the API token pair between runs.
package session

import (
	"context"
	"sync"
)

// Storage keys for the two tokens.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// Session is the token pair issued by /auth/login and /auth/refresh.
type Session struct {
	AccessToken  string
	RefreshToken string
}

// Empty reports whether no token is held at all.
func (s Session) Empty() bool {
	return s.AccessToken == "" && s.RefreshToken == ""
}

// Store is client-local storage for the current session.
type Store interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu sync.RWMutex
	s  Session
}

// NewMemoryStore returns a store seeded with s.
func NewMemoryStore(s Session) *MemoryStore {
	return &MemoryStore{s: s}
}

func (m *MemoryStore) Load(context.Context) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.s, nil
}

func (m *MemoryStore) Save(_ context.Context, s Session) error {
	m.mu.Lock()
	m.s = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	m.s = Session{}
	m.mu.Unlock()
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
