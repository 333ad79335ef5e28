package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/siamtrail/airtrip-cli/internal/db"
	"github.com/siamtrail/airtrip-cli/internal/model"
)

// PostgresStore implements Store on a pgx pool.
type PostgresStore struct {
	pool db.Pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS daily_cache (
	id         UUID PRIMARY KEY,
	cache_key  TEXT NOT NULL UNIQUE,
	bundle     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NewPostgres connects to PostgreSQL and prepares the cache table.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{pool: pool}
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "cache: postgres migrate")
	}
	return s, nil
}

// NewPostgresWithPool wraps an existing pool without running migrations.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Load(ctx context.Context, province string, day time.Time) (*model.Bundle, error) {
	key := Key(province, day)
	row := s.pool.QueryRow(ctx,
		`SELECT bundle FROM daily_cache WHERE cache_key = $1`, key)

	var raw []byte
	err := row.Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "cache: postgres load %s", key)
	}

	var bundle model.Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		zap.L().Warn("cache: dropping corrupt postgres entry",
			zap.String("key", key),
			zap.Error(err),
		)
		_, _ = s.pool.Exec(ctx, `DELETE FROM daily_cache WHERE cache_key = $1`, key)
		return nil, nil
	}
	return &bundle, nil
}

func (s *PostgresStore) Save(ctx context.Context, province string, day time.Time, bundle *model.Bundle) error {
	data, err := json.Marshal(bundle)
	if err != nil {
		return eris.Wrap(err, "cache: marshal bundle")
	}
	key := Key(province, day)
	_, err = s.pool.Exec(ctx,
		`INSERT INTO daily_cache (id, cache_key, bundle) VALUES ($1, $2, $3)
		 ON CONFLICT (cache_key) DO UPDATE SET bundle = EXCLUDED.bundle`,
		uuid.New(), key, data,
	)
	return eris.Wrapf(err, "cache: postgres save %s", key)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
