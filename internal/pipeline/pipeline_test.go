package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siamtrail/airtrip-cli/internal/cache"
	"github.com/siamtrail/airtrip-cli/internal/model"
)

// fakePlaces serves scripted results per place type and counts searches.
type fakePlaces struct {
	byType map[string][]model.Place
	calls  []string
}

func (f *fakePlaces) Search(ctx context.Context, province, placeType string, limit int) ([]model.Place, error) {
	f.calls = append(f.calls, placeType)
	return f.byType[placeType], nil
}

func fixedDay() time.Time {
	return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
}

func newTestRunner(t *testing.T, p *fakePlaces, air *fakeAirClient) *Runner {
	t.Helper()
	store, err := cache.NewFile(t.TempDir())
	require.NoError(t, err)
	r := NewRunner(p, NewEnricher(air, NewEnrichState(1000)), store, Limits{
		Attractions: 2, Hotels: 2, Restaurants: 2, Shopping: 1,
	})
	r.now = fixedDay
	return r
}

func scriptedPlaces() *fakePlaces {
	return &fakePlaces{byType: map[string][]model.Place{
		"tourism": {
			{Name: "Wat Phra Singh", CategoryHint: "place_of_worship", Coordinates: coords(18.78, 98.98)},
			{Name: "wat phra singh", CategoryHint: "place_of_worship", Coordinates: coords(18.78, 98.98)},
		},
		"attraction": {
			{Name: "Doi Suthep Viewpoint", CategoryHint: "viewpoint", Coordinates: coords(18.80, 98.92)},
		},
		"hotel": {
			{Name: "Ping River Hotel", CategoryHint: "hotel", Coordinates: coords(18.79, 98.99)},
		},
		"restaurant": {
			{Name: "Khao Soi House", CategoryHint: "restaurant", Coordinates: coords(18.79, 98.99)},
		},
		"shopping": {
			{Name: "Night Bazaar", CategoryHint: "mall", Coordinates: coords(18.78, 99.00)},
		},
	}}
}

func TestSearch_ColdPathBuildsAndCaches(t *testing.T) {
	p := scriptedPlaces()
	air := &fakeAirClient{aqi: 60, city: "Chiang Mai"}
	r := newTestRunner(t, p, air)

	b, err := r.Search(context.Background(), "เชียงใหม่", model.MetricAQI)
	require.NoError(t, err)

	// The duplicate temple collapses; the sweep stops once the limit is met.
	assert.Len(t, b.Attractions, 2)
	assert.Len(t, b.Hotels, 1)
	assert.Len(t, b.Restaurants, 1)
	assert.Len(t, b.Shopping, 1)
	assert.Equal(t, 5, b.TotalCount)

	// Everything with coordinates carries a sample and the ranked categories
	// carry ranks.
	require.NotNil(t, b.Attractions[0].AirQuality)
	require.NotNil(t, b.Attractions[0].Rank)
	assert.Equal(t, model.BadgeGold, b.Attractions[0].RankBadge)
	require.NotNil(t, b.Shopping[0].AirQuality)
	assert.Nil(t, b.Shopping[0].Rank)

	// Second search the same day is served from cache: no new place lookups.
	callsBefore := len(p.calls)
	b2, err := r.Search(context.Background(), "เชียงใหม่", model.MetricAQI)
	require.NoError(t, err)
	assert.Equal(t, callsBefore, len(p.calls))
	assert.Equal(t, b.TotalCount, b2.TotalCount)
}

func TestSearch_SweepStopsEarly(t *testing.T) {
	p := scriptedPlaces()
	air := &fakeAirClient{aqi: 60}
	r := newTestRunner(t, p, air)

	_, err := r.Search(context.Background(), "เชียงใหม่", model.MetricAQI)
	require.NoError(t, err)

	// Limit 2 is met after the second tourism type; viewpoint/museum/zoo etc.
	// are never queried.
	assert.NotContains(t, p.calls, "museum")
	assert.NotContains(t, p.calls, "zoo")
}

func TestSearch_ProvinceAliasResolved(t *testing.T) {
	p := scriptedPlaces()
	air := &fakeAirClient{aqi: 60}
	r := newTestRunner(t, p, air)

	b, err := r.Search(context.Background(), "กทม", model.MetricAQI)
	require.NoError(t, err)
	assert.Equal(t, "กรุงเทพมหานคร", b.Province)
}

func TestSearch_EmptyProvince(t *testing.T) {
	r := newTestRunner(t, scriptedPlaces(), &fakeAirClient{})
	_, err := r.Search(context.Background(), "   ", model.MetricAQI)
	assert.Error(t, err)
}

func TestSearch_WarmPathReRanksForMetric(t *testing.T) {
	p := &fakePlaces{byType: map[string][]model.Place{
		"tourism": {
			{Name: "A", CategoryHint: "attraction", Coordinates: coords(18.1, 98.1)},
			{Name: "B", CategoryHint: "attraction", Coordinates: coords(19.1, 99.1)},
		},
	}}
	air := &fakeAirClient{aqi: 60}
	r := newTestRunner(t, p, air)

	b, err := r.Search(context.Background(), "น่าน", model.MetricAQI)
	require.NoError(t, err)
	require.Len(t, b.Attractions, 2)

	// Warm hit: same day, different metric still yields ranks.
	b2, err := r.Search(context.Background(), "น่าน", model.MetricPM25)
	require.NoError(t, err)
	require.NotNil(t, b2.Attractions[0].Rank)
}

func TestSearch_NoRefetchAcrossMetrics(t *testing.T) {
	p := scriptedPlaces()
	air := &fakeAirClient{aqi: 45, city: "Bangkok"}
	r := newTestRunner(t, p, air)

	_, err := r.Search(context.Background(), "ภูเก็ต", model.MetricAQI)
	require.NoError(t, err)
	calls := len(p.calls)

	_, err = r.Search(context.Background(), "ภูเก็ต", model.MetricPM10)
	require.NoError(t, err)
	assert.Equal(t, calls, len(p.calls))

	// Bucketed readings are reused on the warm path; the upstream is not
	// hammered again.
	assert.LessOrEqual(t, air.stationCalls, 6)
}
