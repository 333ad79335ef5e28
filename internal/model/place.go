// Package model defines the shared data types for the place search pipeline.
package model

import "github.com/rotisserie/eris"

// Category is the display bucket a place is ranked in.
type Category string

// Ranking categories. Every place lands in exactly one.
const (
	CategoryAttraction Category = "attraction"
	CategoryHotel      Category = "hotel"
	CategoryRestaurant Category = "restaurant"
)

// Badge marks the top three ranks within a category.
type Badge string

// Rank badges.
const (
	BadgeGold   Badge = "GOLD"
	BadgeSilver Badge = "SILVER"
	BadgeBronze Badge = "BRONZE"
	BadgeNone   Badge = "NONE"
)

// BadgeForRank maps a competition rank to its badge.
func BadgeForRank(rank int) Badge {
	switch rank {
	case 1:
		return BadgeGold
	case 2:
		return BadgeSilver
	case 3:
		return BadgeBronze
	default:
		return BadgeNone
	}
}

// Metric selects which pollutant value places are ranked by.
type Metric string

// Ranking metrics, ascending = better.
const (
	MetricAQI  Metric = "aqi"
	MetricPM25 Metric = "pm25"
	MetricPM10 Metric = "pm10"
)

// ParseMetric parses a user-supplied metric name. "aqius" is accepted as an
// alias for "aqi" since that is what the upstream pollution payload calls it.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "", "aqi", "aqius":
		return MetricAQI, nil
	case "pm25":
		return MetricPM25, nil
	case "pm10":
		return MetricPM10, nil
	default:
		return "", eris.Errorf("model: unknown metric %q", s)
	}
}

// Level is the six-band US EPA severity description of an AQI reading.
type Level string

// AQI severity levels.
const (
	LevelVeryGood      Level = "VeryGood"
	LevelGood          Level = "Good"
	LevelModerate      Level = "Moderate"
	LevelUnhealthy     Level = "Unhealthy"
	LevelVeryUnhealthy Level = "VeryUnhealthy"
	LevelHazardous     Level = "Hazardous"
	LevelUnknown       Level = "Unknown"
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// AirQualitySample is the air-quality reading attached to a place. Pointer
// fields are null when the upstream reported nothing usable.
type AirQualitySample struct {
	AQI         *int   `json:"aqi"`
	PM25        *int   `json:"pm25"`
	PM10        *int   `json:"pm10"`
	Level       Level  `json:"level"`
	Description string `json:"description"`
	SourceCity  string `json:"city"`
	// Source records how the sample was obtained: "station" (coordinate
	// lookup), "nearest_city" (coordinate-free fallback) or "none".
	Source string `json:"source,omitempty"`
}

// MetricValue returns the sample's value for the given metric, or false when
// the sample (or that field) is absent.
func (s *AirQualitySample) MetricValue(m Metric) (int, bool) {
	if s == nil {
		return 0, false
	}
	var v *int
	switch m {
	case MetricPM25:
		v = s.PM25
	case MetricPM10:
		v = s.PM10
	default:
		v = s.AQI
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Place is a point of interest flowing through the pipeline. AirQuality is
// attached by the enricher; Rank and RankBadge by the ranker.
type Place struct {
	Name         string            `json:"name"`
	FullAddress  string            `json:"full_address"`
	Coordinates  *Coordinates      `json:"coordinates,omitempty"`
	CategoryHint string            `json:"type"`
	Importance   float64           `json:"importance,omitempty"`
	AirQuality   *AirQualitySample `json:"air_quality,omitempty"`
	Rank         *int              `json:"rank"`
	RankBadge    Badge             `json:"badge,omitempty"`
}

// Bundle is the full per-province result set persisted in the daily cache.
type Bundle struct {
	Province    string  `json:"province"`
	Attractions []Place `json:"tourism"`
	Hotels      []Place `json:"hotels"`
	Restaurants []Place `json:"restaurants"`
	Shopping    []Place `json:"shopping"`
	TotalCount  int     `json:"total_count"`
}

// All returns every place in the bundle in category order.
func (b *Bundle) All() []Place {
	out := make([]Place, 0, len(b.Attractions)+len(b.Hotels)+len(b.Restaurants)+len(b.Shopping))
	out = append(out, b.Attractions...)
	out = append(out, b.Hotels...)
	out = append(out, b.Restaurants...)
	out = append(out, b.Shopping...)
	return out
}

// Recount refreshes TotalCount from the category lists.
func (b *Bundle) Recount() {
	b.TotalCount = len(b.Attractions) + len(b.Hotels) + len(b.Restaurants) + len(b.Shopping)
}
