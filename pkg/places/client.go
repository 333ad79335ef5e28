// Package places provides typed clients for free OpenStreetMap place search.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/siamtrail/airtrip-cli/internal/model"
	"github.com/siamtrail/airtrip-cli/internal/resilience"
)

// userAgent identifies this tool to the OSM services, as their usage policy
// requires.
const userAgent = "airtrip-cli/1.0 (province air-quality travel search)"

// Client searches for places of one type inside a Thai province. limit is the
// number of places the caller wants to end up with; implementations
// over-fetch so deduplication upstream does not starve the result.
type Client interface {
	Search(ctx context.Context, province, placeType string, limit int) ([]model.Place, error)
}

// Option configures the Nominatim client.
type Option func(*nominatimClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *nominatimClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *nominatimClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the request rate limit (for testing).
func WithRateLimit(l *rate.Limiter) Option {
	return func(c *nominatimClient) {
		c.limiter = l
	}
}

type nominatimClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewNominatim creates a Nominatim search client. Requests are throttled to
// one per second per the Nominatim usage policy.
func NewNominatim(opts ...Option) Client {
	c := &nominatimClient{
		baseURL: "https://nominatim.openstreetmap.org",
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// nominatimResult is one row of a Nominatim /search response.
type nominatimResult struct {
	DisplayName string  `json:"display_name"`
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Type        string  `json:"type"`
	Importance  float64 `json:"importance"`
}

func (c *nominatimClient) Search(ctx context.Context, province, placeType string, limit int) ([]model.Place, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "places: rate limit wait")
	}

	q := url.Values{}
	q.Set("q", fmt.Sprintf("%s in %s, Thailand", placeType, province))
	q.Set("format", "json")
	// Over-fetch so upstream dedupe can drop collisions and still fill the
	// requested count.
	q.Set("limit", strconv.Itoa(limit*2))
	q.Set("addressdetails", "1")
	q.Set("extratags", "1")

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: create request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "places: nominatim request failed"), 0)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read response body")
	}

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return nil, resilience.NewTransientError(
			eris.Errorf("places: nominatim status %d: %s", resp.StatusCode, string(body)),
			resp.StatusCode,
		)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: nominatim unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal search results")
	}

	places := make([]model.Place, 0, len(results))
	for _, r := range results {
		places = append(places, r.toPlace(placeType))
	}
	return places, nil
}

func (r nominatimResult) toPlace(placeType string) model.Place {
	hint := r.Type
	if hint == "" {
		hint = placeType
	}
	p := model.Place{
		Name:         shortName(r.DisplayName),
		FullAddress:  r.DisplayName,
		CategoryHint: hint,
		Importance:   r.Importance,
	}
	lat, latErr := strconv.ParseFloat(r.Lat, 64)
	lon, lonErr := strconv.ParseFloat(r.Lon, 64)
	if latErr == nil && lonErr == nil {
		p.Coordinates = &model.Coordinates{Lat: lat, Lon: lon}
	}
	return p
}

// shortName takes the leading segment of a Nominatim display_name, which is
// the feature's own name before the address trail.
func shortName(displayName string) string {
	if i := strings.Index(displayName, ","); i >= 0 {
		return strings.TrimSpace(displayName[:i])
	}
	return strings.TrimSpace(displayName)
}
