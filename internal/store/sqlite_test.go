package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyport-app/agent/internal/logger"
)

func TestNewConnectSQLite_CreatesFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "agent.db")

	db, err := NewConnectSQLite(context.Background(), dbPath, logger.Nop())
	require.NoError(t, err)
	defer db.Close()

	_, statErr := os.Stat(dbPath)
	assert.NoError(t, statErr)
}

func TestNewConnectSQLite_CorruptFileFallsBackToFresh(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "agent.db")

	// garbage that is not an sqlite database
	require.NoError(t, os.WriteFile(dbPath, []byte("this is not a database at all"), 0o600))

	db, err := NewConnectSQLite(context.Background(), dbPath, logger.Nop())
	require.NoError(t, err)
	defer db.Close()

	// fresh database must be usable
	require.NoError(t, db.Migrate())

	// the corrupt original was quarantined, not deleted
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	quarantined := false
	for _, e := range entries {
		if e.Name() != "agent.db" {
			quarantined = true
		}
	}
	assert.True(t, quarantined, "expected the corrupt file renamed aside")
}

func TestSettingsRepository_RoundTrip(t *testing.T) {
	s := newTestStorages(t)
	ctx := context.Background()

	_, err := s.Settings.Get(ctx, SettingMasterKey)
	assert.True(t, errors.Is(err, ErrSettingNotFound))

	require.NoError(t, s.Settings.Set(ctx, SettingMasterKey, "first"))
	require.NoError(t, s.Settings.Set(ctx, SettingMasterKey, "second")) // last write wins

	value, err := s.Settings.Get(ctx, SettingMasterKey)
	require.NoError(t, err)
	assert.Equal(t, "second", value)
}

func TestSettingsRepository_QueryError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery("SELECT value FROM settings").
		WillReturnError(errors.New("disk I/O error"))

	repo := NewSettingsRepository(&DB{DB: conn, logger: logger.Nop()}, logger.Nop())

	_, err = repo.Get(context.Background(), "any")
	assert.True(t, errors.Is(err, ErrExecutingQuery))
	assert.NoError(t, mock.ExpectationsWereMet())
}
