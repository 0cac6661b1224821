// Package testutil provides shared test helpers for setting up notes
// directories and preference databases.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/stickies/internal/prefs"
	"github.com/starford/stickies/internal/storage"
)

// TestPrefs opens a preferences database in a temporary directory that is
// closed automatically.
func TestPrefs(t *testing.T) *prefs.Store {
	t.Helper()
	db, err := prefs.Open(filepath.Join(t.TempDir(), prefs.DBFile))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestNotesDir creates a temporary notes directory with a storage.FS over
// it. The returned path is the store's resolved root.
func TestNotesDir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store.Root(), store
}
