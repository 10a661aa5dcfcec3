package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_CreatesParentDirAndUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "relay.db")

	db, err := NewDB(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, path, db.Path())
	assert.FileExists(t, path)
	require.NoError(t, db.Ping(context.Background()))

	var mode string
	require.NoError(t, db.Reader.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var busy int
	require.NoError(t, db.Writer.QueryRowContext(context.Background(), "PRAGMA busy_timeout").Scan(&busy))
	assert.Equal(t, 5000, busy)
}

func TestRunMigrations_IsRepeatable(t *testing.T) {
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "relay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	first, err := RunMigrations(db.Writer)
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	again, err := RunMigrations(db.Writer)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	var n int
	require.NoError(t, db.Reader.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM credentials").Scan(&n))
	assert.Zero(t, n)
}

func TestDB_CloseReleasesBothPools(t *testing.T) {
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "relay.db"))
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}
