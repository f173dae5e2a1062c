package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeDatabase(t *testing.T) {
	db, err := InitializeDatabase(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM audit_log").Scan(&count))
	assert.Equal(t, 0, count)

	// Re-running is a no-op
	require.NoError(t, RunMigrations(db))

	var applied int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&applied))
	assert.Equal(t, 1, applied)
}

func TestRunMigrationsOrder(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "order.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fsys := fstest.MapFS{
		"m/002_add_column.sql": {Data: []byte("ALTER TABLE things ADD COLUMN name TEXT;")},
		"m/001_create.sql":     {Data: []byte("CREATE TABLE things (id INTEGER PRIMARY KEY);")},
	}

	require.NoError(t, runMigrations(db, fsys, "m"))

	_, err = db.Exec("INSERT INTO things (name) VALUES ('ok')")
	assert.NoError(t, err)
}

func TestRunMigrationsFailureIsNotRecorded(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "fail.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fsys := fstest.MapFS{
		"m/001_broken.sql": {Data: []byte("CREATE TABL nope;")},
	}

	require.Error(t, runMigrations(db, fsys, "m"))

	var applied int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&applied))
	assert.Equal(t, 0, applied)
}

func TestRunMigrationsEmptyDir(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	err = runMigrations(db, fstest.MapFS{}, "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no migration files")
}
