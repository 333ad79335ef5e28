// Package airvisual provides a client for the IQAir AirVisual community API.
package airvisual

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/siamtrail/airtrip-cli/internal/resilience"
)

// Client defines the air-quality lookups the pipeline needs.
type Client interface {
	// NearestCity returns the observation from the monitoring station
	// closest to the given coordinates.
	NearestCity(ctx context.Context, lat, lon float64) (*Observation, error)
	// Nearest returns the observation for the caller's approximate location,
	// resolved server-side without coordinates.
	Nearest(ctx context.Context) (*Observation, error)
}

// Observation is a single city-level air-quality reading.
type Observation struct {
	City    string  `json:"city"`
	State   string  `json:"state"`
	Country string  `json:"country"`
	Current Current `json:"current"`
}

// Current bundles the latest pollution and weather readings.
type Current struct {
	Pollution Pollution `json:"pollution"`
	Weather   Weather   `json:"weather"`
}

// Pollution carries the US AQI and, when the station reports them, raw
// particulate concentrations in µg/m³.
type Pollution struct {
	Timestamp string   `json:"ts"`
	AQIUS     int      `json:"aqius"`
	MainUS    string   `json:"mainus"`
	PM25      *float64 `json:"p2,omitempty"`
	PM10      *float64 `json:"p1,omitempty"`
}

// Weather is the subset of station weather the API reports.
type Weather struct {
	Temperature int `json:"tp"`
	Humidity    int `json:"hu"`
	Pressure    int `json:"pr"`
}

// envelope is the common AirVisual response wrapper.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// Option configures the AirVisual client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an AirVisual client authenticated with the given API key.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.airvisual.com/v2",
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) NearestCity(ctx context.Context, lat, lon float64) (*Observation, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	return c.get(ctx, q)
}

func (c *httpClient) Nearest(ctx context.Context) (*Observation, error) {
	return c.get(ctx, url.Values{})
}

func (c *httpClient) get(ctx context.Context, q url.Values) (*Observation, error) {
	q.Set("key", c.apiKey)
	reqURL := fmt.Sprintf("%s/nearest_city?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "airvisual: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "airvisual: request failed"), 0)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "airvisual: read response body")
	}

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return nil, resilience.NewTransientError(
			eris.Errorf("airvisual: status %d: %s", resp.StatusCode, string(body)),
			resp.StatusCode,
		)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("airvisual: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "airvisual: unmarshal envelope")
	}
	if env.Status != "success" {
		return nil, eris.Errorf("airvisual: api status %q", env.Status)
	}

	var obs Observation
	if err := json.Unmarshal(env.Data, &obs); err != nil {
		return nil, eris.Wrap(err, "airvisual: unmarshal observation")
	}
	return &obs, nil
}
