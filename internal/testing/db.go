// Package testing provides shared helpers for hindsight tests.
package testing

import (
	"path/filepath"
	"testing"

	"github.com/aristath/hindsight/internal/database"
)

// NewTestDB creates a file-backed database in the test's temp dir and applies
// the embedded schema registered for name. The database is closed when the
// test ends.
//
// Supported schema names:
//   - "client_data" - applies client_data_schema.sql
//   - "portfolio" - applies portfolio_schema.sql
//   - Unknown names - creates empty database (no schema applied)
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	profile := database.ProfileStandard
	if name == "client_data" {
		profile = database.ProfileCache
	}

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
	})

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	return db
}
