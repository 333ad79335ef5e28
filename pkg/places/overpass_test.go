package places

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const overpassBody = `{
	"elements": [
		{"type": "node", "lat": 7.8804, "lon": 98.3923, "tags": {"name": "Kata Beach Resort", "tourism": "resort"}},
		{"type": "way", "center": {"lat": 7.89, "lon": 98.4}, "tags": {"name": "Old Town Hostel", "tourism": "hostel"}},
		{"type": "node", "lat": 7.9, "lon": 98.4, "tags": {"tourism": "hotel"}}
	]
}`

func TestOverpassSearch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, r.Body.Close())
		gotQuery = string(body)
		_, _ = w.Write([]byte(overpassBody))
	}))
	defer srv.Close()

	c := NewOverpass(WithOverpassBaseURL(srv.URL))
	found, err := c.Search(context.Background(), "ภูเก็ต", "resort", 6)
	require.NoError(t, err)

	// The unnamed element is skipped.
	require.Len(t, found, 2)
	assert.Equal(t, "Kata Beach Resort", found[0].Name)
	assert.Equal(t, "resort", found[0].CategoryHint)
	require.NotNil(t, found[0].Coordinates)
	assert.InDelta(t, 7.8804, found[0].Coordinates.Lat, 0.0001)

	// Way geometry comes from the computed center.
	require.NotNil(t, found[1].Coordinates)
	assert.InDelta(t, 7.89, found[1].Coordinates.Lat, 0.0001)

	assert.Contains(t, gotQuery, "tourism")
	assert.Contains(t, gotQuery, "resort")
}

func TestOverpassSearch_UnknownTypeDefaultsToAttraction(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte(`{"elements": []}`))
	}))
	defer srv.Close()

	c := NewOverpass(WithOverpassBaseURL(srv.URL))
	found, err := c.Search(context.Background(), "น่าน", "something-weird", 4)
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Contains(t, gotBody, "attraction")
}
