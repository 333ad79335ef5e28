package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siamtrail/airtrip-cli/internal/model"
)

func testBundle(province string) *model.Bundle {
	b := &model.Bundle{
		Province:    province,
		Attractions: []model.Place{{Name: "Wat Phra Singh"}},
		Hotels:      []model.Place{{Name: "Riverside Hotel"}},
	}
	b.Recount()
	return b
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	s, err := NewFile(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "เชียงใหม่", day, testBundle("เชียงใหม่")))

	got, err := s.Load(ctx, "เชียงใหม่", day)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "เชียงใหม่", got.Province)
	assert.Equal(t, 2, got.TotalCount)
}

func TestFileStore_MissOnDifferentDay(t *testing.T) {
	s, err := NewFile(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "ภูเก็ต", day, testBundle("ภูเก็ต")))

	got, err := s.Load(ctx, "ภูเก็ต", day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileStore_MissWhenEmpty(t *testing.T) {
	s, err := NewFile(t.TempDir())
	require.NoError(t, err)

	got, err := s.Load(context.Background(), "กระบี่", day)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileStore_CorruptEntryDeletedAndMiss(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	require.NoError(t, err)
	ctx := context.Background()

	path := filepath.Join(dir, Key("ขอนแก่น", day)+".json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	got, err := s.Load(ctx, "ขอนแก่น", day)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileStore_OldDaysNotEvicted(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	require.NoError(t, err)
	ctx := context.Background()

	yesterday := day.AddDate(0, 0, -1)
	require.NoError(t, s.Save(ctx, "น่าน", yesterday, testBundle("น่าน")))
	require.NoError(t, s.Save(ctx, "น่าน", day, testBundle("น่าน")))

	// Both files stay on disk; only the key selects which one is read.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	old, err := s.Load(ctx, "น่าน", yesterday)
	require.NoError(t, err)
	assert.NotNil(t, old)
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	s, err := NewFile(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first := testBundle("ชลบุรี")
	require.NoError(t, s.Save(ctx, "ชลบุรี", day, first))

	second := testBundle("ชลบุรี")
	second.Shopping = []model.Place{{Name: "Central Mall"}}
	second.Recount()
	require.NoError(t, s.Save(ctx, "ชลบุรี", day, second))

	got, err := s.Load(ctx, "ชลบุรี", day)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalCount)
}
