package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/keyport-app/agent/internal/logger"
	"github.com/keyport-app/agent/migrations"
)

// DB wraps the sqlite connection together with the agent logger so
// repositories can share both.
type DB struct {
	*sql.DB
	logger *logger.Logger
}

// Migrate applies all pending schema migrations.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}

// NewConnectSQLite opens (and if necessary creates) the sqlite database at
// dsn. A database file that cannot be opened, pinged, or passed through a
// quick integrity check is quarantined (renamed aside with a timestamp)
// and replaced with a fresh empty database, so a corrupt local cache never
// prevents the agent from starting. Use ":memory:" for tests.
func NewConnectSQLite(ctx context.Context, dsn string, log *logger.Logger) (*DB, error) {
	conn, err := openAndVerify(ctx, dsn)
	if err != nil {
		if dsn == ":memory:" {
			return nil, err
		}

		log.Err(err).Str("func", "NewConnectSQLite").Msg("local database unusable, starting fresh")
		if qErr := quarantineFile(dsn); qErr != nil {
			return nil, fmt.Errorf("quarantine corrupt database: %w", qErr)
		}

		conn, err = openAndVerify(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("error opening fresh database: %w", err)
		}
	}

	log.Debug().Str("func", "NewConnectSQLite").Msg("connected to database successfully")

	return &DB{DB: conn, logger: log}, nil
}

func openAndVerify(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn != ":memory:" {
		if err := createLocalDBFileIfNotExists(dsn); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	// quick_check reads every page header; it catches a truncated or
	// overwritten file that still opens.
	var result string
	if err = conn.QueryRowContext(ctx, "PRAGMA quick_check(1)").Scan(&result); err != nil || result != "ok" {
		conn.Close()
		if err == nil {
			err = fmt.Errorf("integrity check returned %q", result)
		}
		return nil, fmt.Errorf("database integrity check failed: %w", err)
	}

	return conn, nil
}

func createLocalDBFileIfNotExists(dbFile string) error {
	if dir := filepath.Dir(dbFile); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating DB directory: %w", err)
		}
	}

	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		// if not found - create
		f, err := os.Create(dbFile)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		f.Close()
	}

	// file already exists
	return nil
}

func quarantineFile(dbFile string) error {
	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		return nil
	}

	aside := fmt.Sprintf("%s.corrupt-%d", dbFile, time.Now().Unix())
	if err := os.Rename(dbFile, aside); err != nil {
		return fmt.Errorf("error renaming corrupt DB file: %w", err)
	}

	return nil
}
