package testutil

import (
	"testing"

	"snaplog-go/internal/database"
	"snaplog-go/internal/database/migrations"
)

// NewTestStore creates an in-memory SQLiteStore at the latest schema version.
// The store is closed automatically when the test finishes.
func NewTestStore(t *testing.T) *database.SQLiteStore {
	t.Helper()

	store, err := database.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := migrations.Up(store.DB()); err != nil {
		t.Fatalf("migrating in-memory store: %v", err)
	}

	return store
}
