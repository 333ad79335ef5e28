package main

import (
	"context"
	"net/http"
	"time"

	"github.com/siamtrail/airtrip-cli/internal/cache"
	"github.com/siamtrail/airtrip-cli/internal/model"
	"github.com/siamtrail/airtrip-cli/internal/pipeline"
	"github.com/siamtrail/airtrip-cli/pkg/airvisual"
	"github.com/siamtrail/airtrip-cli/pkg/places"
)

// searcher is what the HTTP handlers and CLI commands need from the pipeline.
type searcher interface {
	Search(ctx context.Context, province string, metric model.Metric) (*model.Bundle, error)
}

// appEnv bundles the wired application pieces for a command run.
type appEnv struct {
	store  cache.Store
	runner *pipeline.Runner
	air    airvisual.Client
}

func (e *appEnv) Close() {
	_ = e.store.Close()
}

// initEnv wires clients, cache and pipeline from the loaded config.
func initEnv(ctx context.Context) (*appEnv, error) {
	store, err := cache.New(ctx, cache.Options{
		Driver: cfg.Cache.Driver,
		Dir:    cfg.Cache.Dir,
		DSN:    cfg.Cache.DSN,
	})
	if err != nil {
		return nil, err
	}

	air := airvisual.NewClient(cfg.AirVisual.Key,
		airvisual.WithBaseURL(cfg.AirVisual.BaseURL),
		airvisual.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.AirVisual.TimeoutSecs) * time.Second,
		}),
	)

	source := places.NewCascade().
		Add("nominatim", places.NewNominatim(
			places.WithBaseURL(cfg.Places.NominatimBaseURL),
			places.WithHTTPClient(&http.Client{
				Timeout: time.Duration(cfg.Places.TimeoutSecs) * time.Second,
			}),
		)).
		Add("overpass", places.NewOverpass(
			places.WithOverpassBaseURL(cfg.Places.OverpassBaseURL),
		))

	enricher := pipeline.NewEnricher(air, pipeline.NewEnrichState(cfg.AirVisual.CallBudget))
	runner := pipeline.NewRunner(source, enricher, store, pipeline.Limits{
		Attractions: cfg.Search.Attractions,
		Hotels:      cfg.Search.Hotels,
		Restaurants: cfg.Search.Restaurants,
		Shopping:    cfg.Search.Shopping,
	})

	return &appEnv{store: store, runner: runner, air: air}, nil
}
