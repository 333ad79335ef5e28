package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/siamtrail/airtrip-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS daily_cache (
	id         TEXT PRIMARY KEY,
	cache_key  TEXT NOT NULL UNIQUE,
	bundle     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_daily_cache_key ON daily_cache(cache_key);
`

// NewSQLite opens a SQLite daily cache at the given path and configures WAL
// mode.
func NewSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "cache: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "cache: sqlite exec %s", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteMigration); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "cache: sqlite migrate")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, province string, day time.Time) (*model.Bundle, error) {
	key := Key(province, day)
	row := s.db.QueryRowContext(ctx,
		`SELECT bundle FROM daily_cache WHERE cache_key = ?`, key)

	var raw string
	err := row.Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "cache: sqlite load %s", key)
	}

	var bundle model.Bundle
	if err := json.Unmarshal([]byte(raw), &bundle); err != nil {
		zap.L().Warn("cache: dropping corrupt sqlite entry",
			zap.String("key", key),
			zap.Error(err),
		)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM daily_cache WHERE cache_key = ?`, key)
		return nil, nil
	}
	return &bundle, nil
}

func (s *SQLiteStore) Save(ctx context.Context, province string, day time.Time, bundle *model.Bundle) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return eris.Wrap(err, "cache: marshal bundle")
	}
	key := Key(province, day)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO daily_cache (id, cache_key, bundle) VALUES (?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET bundle = excluded.bundle`,
		uuid.New().String(), key, string(data),
	)
	return eris.Wrapf(err, "cache: sqlite save %s", key)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
