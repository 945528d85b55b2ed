package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_LoadEmpty(t *testing.T) {
	s := openStore(t)

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	require.True(t, got.Empty())
}

func TestSQLiteStore_SaveReplacesPair(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, Session{AccessToken: "a1", RefreshToken: "r1"}))
	require.NoError(t, s.Save(ctx, Session{AccessToken: "a2", RefreshToken: "r2"}))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, Session{AccessToken: "a2", RefreshToken: "r2"}, got)
}

func TestSQLiteStore_SaveEmptyTokenDeletesKey(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, Session{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.Save(ctx, Session{AccessToken: "a"}))

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM session`).Scan(&n))
	require.Equal(t, 1, n)
}

func TestSQLiteStore_Clear(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, Session{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.Clear(ctx))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, Session{}, got)
}

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, Session{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "r", got.RefreshToken)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(Session{AccessToken: "a"})

	got, err := m.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", got.AccessToken)

	require.NoError(t, m.Clear(ctx))
	got, _ = m.Load(ctx)
	require.True(t, got.Empty())
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin@example.com",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("not-the-server-key"))
	require.NoError(t, err)

	c, err := ParseClaims(tok)
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", c.Subject)
	require.True(t, c.ExpiresAt.Equal(exp))
	require.False(t, c.Expired(time.Now()))
	require.True(t, c.Expired(exp.Add(time.Second)))
}

func TestParseClaims_Invalid(t *testing.T) {
	_, err := ParseClaims("")
	require.Error(t, err)

	_, err = ParseClaims("not.a.jwt")
	require.Error(t, err)
}
