package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, name string, profile DatabaseProfile) *DB {
	t.Helper()

	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: profile,
		Name:    name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *DB, table string) bool {
	t.Helper()

	var name string
	err := db.Conn().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestMigrate_CreatesRegisteredSchemas(t *testing.T) {
	tests := []struct {
		name    string
		profile DatabaseProfile
		table   string
	}{
		{name: "client_data", profile: ProfileCache, table: "price_cache"},
		{name: "portfolio", profile: ProfileStandard, table: "holdings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t, tt.name, tt.profile)

			require.NoError(t, db.Migrate())
			assert.True(t, tableExists(t, db, tt.table))

			// Applying twice is harmless
			require.NoError(t, db.Migrate())
		})
	}
}

func TestMigrate_UnknownNameIsNoop(t *testing.T) {
	db := newTestDB(t, "scratch", "")

	require.NoError(t, db.Migrate())
	assert.Equal(t, ProfileStandard, db.Profile())
}

func TestWithTransaction(t *testing.T) {
	db := newTestDB(t, "portfolio", ProfileStandard)
	require.NoError(t, db.Migrate())

	count := func() int {
		var n int
		require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM holdings").Scan(&n))
		return n
	}
	insert := func(tx *sql.Tx, id string) error {
		_, err := tx.Exec(`INSERT INTO holdings
			(id, asset_id, amount, initial_amount, purchase_date, created_at)
			VALUES (?, 'dolar', 100, 100, '2024-01-01', 0)`, id)
		return err
	}

	t.Run("commits on success", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			return insert(tx, "a")
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			require.NoError(t, insert(tx, "b"))
			return errors.New("boom")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
		assert.Equal(t, 1, count())
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			require.NoError(t, insert(tx, "c"))
			panic("unexpected")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panic in transaction")
		assert.Equal(t, 1, count())
	})

	t.Run("nil connection", func(t *testing.T) {
		err := WithTransaction(nil, func(*sql.Tx) error { return nil })
		assert.Error(t, err)
	})
}

func TestHealthCheck(t *testing.T) {
	db := newTestDB(t, "client_data", ProfileCache)
	require.NoError(t, db.Migrate())

	assert.NoError(t, db.HealthCheck(context.Background()))
}

func TestBackupTo(t *testing.T) {
	db := newTestDB(t, "client_data", ProfileCache)
	require.NoError(t, db.Migrate())

	_, err := db.Conn().Exec(
		"INSERT INTO price_cache (cache_key, payload, saved_at) VALUES ('usd', '42.5', 1)",
	)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "backups", "client_data.db")
	require.NoError(t, db.BackupTo(context.Background(), dest))
	// A second snapshot replaces the first
	require.NoError(t, db.BackupTo(context.Background(), dest))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	restored, err := New(Config{Path: dest, Profile: ProfileCache, Name: "restored"})
	require.NoError(t, err)
	defer restored.Close()

	var payload string
	require.NoError(t, restored.Conn().QueryRow(
		"SELECT payload FROM price_cache WHERE cache_key = 'usd'",
	).Scan(&payload))
	assert.Equal(t, "42.5", payload)
}

func TestSizeAndVacuum(t *testing.T) {
	db := newTestDB(t, "portfolio", ProfileStandard)
	require.NoError(t, db.Migrate())
	ctx := context.Background()

	empty, err := db.Size(ctx)
	require.NoError(t, err)
	assert.Positive(t, empty, "schema pages count towards the size")

	_, err = db.Conn().Exec("CREATE TABLE filler (blob TEXT)")
	require.NoError(t, err)
	for i := 0; i < 200; i++ {
		_, err = db.Conn().Exec("INSERT INTO filler (blob) VALUES (?)", strings.Repeat("x", 4096))
		require.NoError(t, err)
	}
	_, err = db.Conn().Exec("DROP TABLE filler")
	require.NoError(t, err)

	before, after, err := db.Vacuum(ctx)
	require.NoError(t, err)
	assert.Less(t, after, before, "dropped pages are reclaimed")
}
