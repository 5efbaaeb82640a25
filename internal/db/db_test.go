package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := OpenInMemory()
	require.NoError(t, err)
	_, err = database.MigrateUp(context.Background())
	require.NoError(t, err)
	return database
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	ctx := context.Background()
	database, err := OpenInMemory()
	require.NoError(t, err)
	defer database.Close()

	version, err := database.MigrateUp(ctx)
	require.NoError(t, err)
	require.Equal(t, uint(2), version)

	version, err = database.MigrateUp(ctx)
	require.NoError(t, err)
	require.Equal(t, uint(2), version)
}

func TestMigrateDownDropsTables(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	defer database.Close()

	require.NoError(t, database.MigrateDown(ctx))

	var n int
	err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'waybills'`).Scan(&n)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestOpenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "waybill.db")
	database, err := Open(Config{Path: path, MaxConnections: 2})
	require.NoError(t, err)
	defer database.Close()

	_, err = database.MigrateUp(context.Background())
	require.NoError(t, err)
	require.Equal(t, path, database.Path())
}
