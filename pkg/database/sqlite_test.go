package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteConnectionCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.db")

	db, err := NewSQLiteConnection(path)
	require.NoError(t, err)
	defer db.Close()

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
	assert.FileExists(t, path)
}

func TestNewSQLiteConnectionFailsOnMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "jobs.db")

	_, err := NewSQLiteConnection(path)
	assert.Error(t, err)
}
