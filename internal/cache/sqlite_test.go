package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "เชียงราย", day, testBundle("เชียงราย")))

	got, err := s.Load(ctx, "เชียงราย", day)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "เชียงราย", got.Province)
}

func TestSQLiteStore_Miss(t *testing.T) {
	s := newTestSQLite(t)

	got, err := s.Load(context.Background(), "ระยอง", day)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_SaveTwiceKeepsLatest(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "ตราด", day, testBundle("ตราด")))

	updated := testBundle("ตราด")
	updated.Restaurants = append(updated.Restaurants, testBundle("ตราด").Attractions...)
	updated.Recount()
	require.NoError(t, s.Save(ctx, "ตราด", day, updated))

	got, err := s.Load(ctx, "ตราด", day)
	require.NoError(t, err)
	assert.Equal(t, updated.TotalCount, got.TotalCount)
}

func TestSQLiteStore_CorruptEntryDeletedAndMiss(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	key := Key("ลำปาง", day)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_cache (id, cache_key, bundle) VALUES (?, ?, ?)`,
		"corrupt-row", key, "{broken")
	require.NoError(t, err)

	got, err := s.Load(ctx, "ลำปาง", day)
	require.NoError(t, err)
	assert.Nil(t, got)

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM daily_cache WHERE cache_key = ?`, key).Scan(&n))
	assert.Zero(t, n)
}
