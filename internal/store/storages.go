package store

import (
	"context"
	"fmt"

	"github.com/keyport-app/agent/internal/logger"
)

// Storages groups all local repositories into a single value that can be
// passed around the service layer.
type Storages struct {
	Credentials CredentialRepository
	Projects    ProjectRepository
	Chat        ChatRepository
	Activity    ActivityRepository
	Settings    SettingsRepository

	db *DB
}

// Close releases the underlying database connection.
func (s *Storages) Close() error {
	return s.db.Close()
}

// NewStorages initialises the local storage layer. It performs the
// following steps:
//  1. Opens an SQLite connection to dsn, creating the database file if it
//     does not yet exist, falling back to a fresh database if the existing
//     file is corrupt.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs a [Storages] value wired to fresh repositories.
//
// Returns an error if the database connection cannot be established or if
// migration fails.
func NewStorages(ctx context.Context, dsn string, log *logger.Logger) (*Storages, error) {
	log.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, dsn, log)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		Credentials: NewCredentialRepository(db, log),
		Projects:    NewProjectRepository(db, log),
		Chat:        NewChatRepository(db, log),
		Activity:    NewActivityRepository(db, log),
		Settings:    NewSettingsRepository(db, log),
		db:          db,
	}, nil
}
