package cache

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore_LoadHit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	bundle := testBundle("สงขลา")
	raw, err := json.Marshal(bundle)
	require.NoError(t, err)

	key := Key("สงขลา", day)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT bundle FROM daily_cache WHERE cache_key = $1`)).
		WithArgs(key).
		WillReturnRows(pgxmock.NewRows([]string{"bundle"}).AddRow(raw))

	s := NewPostgresWithPool(mock)
	got, err := s.Load(context.Background(), "สงขลา", day)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "สงขลา", got.Province)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadMiss(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	key := Key("ยะลา", day)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT bundle FROM daily_cache WHERE cache_key = $1`)).
		WithArgs(key).
		WillReturnRows(pgxmock.NewRows([]string{"bundle"}))

	s := NewPostgresWithPool(mock)
	got, err := s.Load(context.Background(), "ยะลา", day)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CorruptEntryDeletedAndMiss(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	key := Key("พิษณุโลก", day)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT bundle FROM daily_cache WHERE cache_key = $1`)).
		WithArgs(key).
		WillReturnRows(pgxmock.NewRows([]string{"bundle"}).AddRow([]byte("{broken")))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM daily_cache WHERE cache_key = $1`)).
		WithArgs(key).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	s := NewPostgresWithPool(mock)
	got, err := s.Load(context.Background(), "พิษณุโลก", day)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveUpserts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	key := Key("แม่ฮ่องสอน", day)
	mock.ExpectExec(`INSERT INTO daily_cache`).
		WithArgs(pgxmock.AnyArg(), key, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s := NewPostgresWithPool(mock)
	require.NoError(t, s.Save(context.Background(), "แม่ฮ่องสอน", day, testBundle("แม่ฮ่องสอน")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
