// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nhle/notification-center/internal/store"
)

// NewTestStore opens a sync journal backed by an in-memory database with
// every migration applied. The journal is closed when the test ends.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	journal, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err, "opening in-memory sync journal")

	t.Cleanup(func() {
		require.NoError(t, journal.Close(), "closing sync journal")
	})
	return journal
}
