package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/siamtrail/airtrip-cli/internal/model"
	"github.com/siamtrail/airtrip-cli/internal/resilience"
)

// osmSelectors maps a search place type to the OSM tag it queries.
var osmSelectors = map[string]struct{ key, value string }{
	"tourism":          {"tourism", "attraction"},
	"attraction":       {"tourism", "attraction"},
	"viewpoint":        {"tourism", "viewpoint"},
	"museum":           {"tourism", "museum"},
	"zoo":              {"tourism", "zoo"},
	"place of worship": {"amenity", "place_of_worship"},
	"hotel":            {"tourism", "hotel"},
	"hostel":           {"tourism", "hostel"},
	"resort":           {"tourism", "resort"},
	"restaurant":       {"amenity", "restaurant"},
	"cafe":             {"amenity", "cafe"},
	"shopping":         {"shop", "mall"},
}

// OverpassOption configures the Overpass client.
type OverpassOption func(*overpassClient)

// WithOverpassBaseURL sets a custom base URL (for testing).
func WithOverpassBaseURL(u string) OverpassOption {
	return func(c *overpassClient) {
		c.baseURL = u
	}
}

// WithOverpassHTTPClient sets a custom HTTP client.
func WithOverpassHTTPClient(hc *http.Client) OverpassOption {
	return func(c *overpassClient) {
		c.http = hc
	}
}

type overpassClient struct {
	baseURL string
	http    *http.Client
}

// NewOverpass creates an Overpass API search client, used as the fallback
// when Nominatim is unavailable or returns nothing.
func NewOverpass(opts ...OverpassOption) Client {
	c := &overpassClient{
		baseURL: "https://overpass-api.de/api/interpreter",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Lat    float64            `json:"lat"`
	Lon    float64            `json:"lon"`
	Center *model.Coordinates `json:"center"`
	Tags   map[string]string  `json:"tags"`
}

func (c *overpassClient) Search(ctx context.Context, province, placeType string, limit int) ([]model.Place, error) {
	sel, ok := osmSelectors[strings.ToLower(strings.TrimSpace(placeType))]
	if !ok {
		sel = osmSelectors["attraction"]
	}

	// Query the province admin area, then named features tagged with the
	// selector inside it. Ways and relations report a computed center.
	query := fmt.Sprintf(`[out:json][timeout:25];
area["name"="%s"]["admin_level"="4"]->.province;
nwr["%s"="%s"]["name"](area.province);
out center %d;`, province, sel.key, sel.value, limit*2)

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "places: create overpass request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "places: overpass request failed"), 0)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read overpass body")
	}

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return nil, resilience.NewTransientError(
			eris.Errorf("places: overpass status %d", resp.StatusCode),
			resp.StatusCode,
		)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: overpass unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed overpassResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal overpass response")
	}

	places := make([]model.Place, 0, len(parsed.Elements))
	for _, el := range parsed.Elements {
		name := el.Tags["name"]
		if name == "" {
			continue
		}
		p := model.Place{
			Name:         name,
			FullAddress:  fmt.Sprintf("%s, %s, Thailand", name, province),
			CategoryHint: el.Tags[sel.key],
		}
		if p.CategoryHint == "" {
			p.CategoryHint = placeType
		}
		switch {
		case el.Center != nil:
			coords := *el.Center
			p.Coordinates = &coords
		case el.Lat != 0 || el.Lon != 0:
			p.Coordinates = &model.Coordinates{Lat: el.Lat, Lon: el.Lon}
		}
		places = append(places, p)
	}
	return places, nil
}
