package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relaymind/autopilot/internal/model"
	"github.com/relaymind/autopilot/internal/store"
)

// newTestStore opens a migrated throwaway SQLite store.
func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// seedUser inserts a user with the given preferences blob.
func seedUser(t *testing.T, st store.Store, prefs string) model.User {
	t.Helper()
	user := &model.User{Email: "owner@me.com", Name: "Owner", Preferences: prefs}
	require.NoError(t, st.CreateUser(context.Background(), user))
	return *user
}
