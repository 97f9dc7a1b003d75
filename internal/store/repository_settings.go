package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keyport-app/agent/internal/logger"
)

// Well-known settings keys.
const (
	// SettingMasterKey holds the base64-encoded 256-bit encryption master
	// key. Written once on first run, never transmitted.
	SettingMasterKey = "encryption_master_key"
)

const (
	getSettingQuery = `SELECT value FROM settings WHERE key = ?;`

	// Last-write-wins upsert: concurrent writers racing on the same key
	// simply overwrite each other, which is the documented behavior for
	// the settings rows.
	setSettingQuery = `INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP;`
)

type settingsRepository struct {
	*DB
	logger *logger.Logger
}

func NewSettingsRepository(db *DB, logger *logger.Logger) SettingsRepository {
	return &settingsRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *settingsRepository) Get(ctx context.Context, key string) (string, error) {
	log := logger.FromContext(ctx)

	var value string
	err := r.DB.QueryRowContext(ctx, getSettingQuery, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrSettingNotFound
		}
		log.Err(err).
			Str("func", "settingsRepository.Get").
			Str("key", key).
			Msg("failed to read setting")
		return "", fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}

	return value, nil
}

func (r *settingsRepository) Set(ctx context.Context, key, value string) error {
	log := logger.FromContext(ctx)

	if _, err := r.DB.ExecContext(ctx, setSettingQuery, key, value); err != nil {
		log.Err(err).
			Str("func", "settingsRepository.Set").
			Str("key", key).
			Msg("failed to write setting")
		return fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}

	return nil
}
