package pipeline

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/siamtrail/airtrip-cli/internal/aqi"
	"github.com/siamtrail/airtrip-cli/internal/metrics"
	"github.com/siamtrail/airtrip-cli/internal/model"
	"github.com/siamtrail/airtrip-cli/internal/resilience"
	"github.com/siamtrail/airtrip-cli/pkg/airvisual"
)

// EnrichState holds the cross-run enrichment state: the per-bucket sample
// cache and the yearly API call budget counter. One instance is shared by
// every pipeline run in the process so repeated searches reuse readings and
// the budget is counted once.
type EnrichState struct {
	mu      sync.Mutex
	samples map[string]*model.AirQualitySample
	calls   int
	budget  int
}

// NewEnrichState creates enrichment state with the given call budget.
func NewEnrichState(budget int) *EnrichState {
	return &EnrichState{
		samples: make(map[string]*model.AirQualitySample),
		budget:  budget,
	}
}

// cached returns the sample stored for a bucket. The stored value may be nil
// when a previous lookup came up empty; that negative result is reused too.
func (s *EnrichState) cached(key string) (*model.AirQualitySample, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sample, ok := s.samples[key]
	return sample, ok
}

func (s *EnrichState) store(key string, sample *model.AirQualitySample) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples[key] = sample
}

// tryReserve consumes one unit of budget. It returns false once the budget
// is exhausted, at which point callers switch to the coordinate-free
// fallback.
func (s *EnrichState) tryReserve() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls >= s.budget {
		return false
	}
	s.calls++
	metrics.AirBudgetRemaining.Set(float64(s.budget - s.calls))
	return true
}

// bucketKey collapses coordinates to one decimal place (roughly 11 km) so
// neighboring places share a single air-quality lookup.
func bucketKey(c model.Coordinates) string {
	return fmt.Sprintf("%.1f,%.1f", c.Lat, c.Lon)
}

// Enricher attaches air-quality samples to places.
type Enricher struct {
	air   airvisual.Client
	state *EnrichState
}

// NewEnricher creates an enricher sharing the given state.
func NewEnricher(air airvisual.Client, state *EnrichState) *Enricher {
	return &Enricher{air: air, state: state}
}

// Enrich returns a copy of places with air-quality samples attached. Places
// without coordinates get an empty unknown sample. The input slice is never
// mutated, so re-enriching a cached bundle is safe.
func (e *Enricher) Enrich(ctx context.Context, places []model.Place) []model.Place {
	out := make([]model.Place, len(places))
	copy(out, places)

	for i := range out {
		if out[i].Coordinates == nil {
			out[i].AirQuality = unknownSample()
			continue
		}
		out[i].AirQuality = e.sampleFor(ctx, *out[i].Coordinates)
	}
	return out
}

// unknownSample is attached when no reading can even be attempted. All value
// fields stay null so the place lands in the unranked tail.
func unknownSample() *model.AirQualitySample {
	return &model.AirQualitySample{Level: model.LevelUnknown, Source: "none"}
}

func (e *Enricher) sampleFor(ctx context.Context, coords model.Coordinates) *model.AirQualitySample {
	key := bucketKey(coords)
	if sample, ok := e.state.cached(key); ok {
		return sample
	}

	sample := e.lookup(ctx, coords)
	e.state.store(key, sample)
	return sample
}

func (e *Enricher) lookup(ctx context.Context, coords model.Coordinates) *model.AirQualitySample {
	if !e.state.tryReserve() {
		zap.L().Warn("enrich: call budget exhausted, using nearest-city fallback")
		return e.fallback(ctx)
	}

	obs, err := e.air.NearestCity(ctx, coords.Lat, coords.Lon)
	if err != nil {
		metrics.UpstreamCalls.WithLabelValues("airvisual", "error").Inc()
		if resilience.IsTransient(err) {
			zap.L().Warn("enrich: station lookup failed, using nearest-city fallback",
				zap.Float64("lat", coords.Lat),
				zap.Float64("lon", coords.Lon),
				zap.Error(err),
			)
			return e.fallback(ctx)
		}
		zap.L().Error("enrich: station lookup failed", zap.Error(err))
		return nil
	}

	metrics.UpstreamCalls.WithLabelValues("airvisual", "ok").Inc()
	return SampleFromObservation(obs, "station")
}

func (e *Enricher) fallback(ctx context.Context) *model.AirQualitySample {
	obs, err := e.air.Nearest(ctx)
	if err != nil {
		metrics.UpstreamCalls.WithLabelValues("airvisual_fallback", "error").Inc()
		zap.L().Error("enrich: nearest-city fallback failed", zap.Error(err))
		return nil
	}
	metrics.UpstreamCalls.WithLabelValues("airvisual_fallback", "ok").Inc()
	return SampleFromObservation(obs, "nearest_city")
}

// SampleFromObservation converts an upstream observation into a sample,
// estimating missing particulate values from the AQI. Reported values are
// never overwritten and the AQI is never derived backwards.
func SampleFromObservation(obs *airvisual.Observation, source string) *model.AirQualitySample {
	if obs == nil {
		return nil
	}

	aqiValue := obs.Current.Pollution.AQIUS
	sample := &model.AirQualitySample{
		AQI:        &aqiValue,
		SourceCity: obs.City,
		Source:     source,
	}
	sample.Level, sample.Description = aqi.LevelFor(aqiValue)

	if obs.Current.Pollution.PM25 != nil {
		v := int(math.Round(*obs.Current.Pollution.PM25))
		sample.PM25 = &v
	} else if est, ok := aqi.EstimatePM25(aqiValue); ok {
		sample.PM25 = &est
	}

	if obs.Current.Pollution.PM10 != nil {
		v := int(math.Round(*obs.Current.Pollution.PM10))
		sample.PM10 = &v
	} else if est, ok := aqi.EstimatePM10(aqiValue); ok {
		sample.PM10 = &est
	}

	return sample
}
