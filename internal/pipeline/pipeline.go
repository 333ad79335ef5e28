// Package pipeline assembles per-province travel results: place search,
// dedup, air-quality enrichment, classification and ranking, backed by a
// daily cache.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/siamtrail/airtrip-cli/internal/cache"
	"github.com/siamtrail/airtrip-cli/internal/metrics"
	"github.com/siamtrail/airtrip-cli/internal/model"
	"github.com/siamtrail/airtrip-cli/internal/normalize"
	"github.com/siamtrail/airtrip-cli/pkg/places"
)

// tourismTypes is swept in order until the attraction limit is met. Broad
// types first, niche ones as fillers.
var tourismTypes = []string{
	"tourism", "attraction", "viewpoint", "museum", "zoo", "place of worship",
}

// Limits caps how many places of each category a bundle carries.
type Limits struct {
	Attractions int
	Hotels      int
	Restaurants int
	Shopping    int
}

// DefaultLimits matches the product defaults.
var DefaultLimits = Limits{Attractions: 6, Hotels: 6, Restaurants: 6, Shopping: 4}

// Runner executes province searches. Each run is synchronous; the enricher's
// shared state makes concurrent runs from different callers safe.
type Runner struct {
	places   places.Client
	enricher *Enricher
	store    cache.Store
	limits   Limits
	now      func() time.Time
}

// NewRunner wires a search runner.
func NewRunner(p places.Client, e *Enricher, store cache.Store, limits Limits) *Runner {
	if limits == (Limits{}) {
		limits = DefaultLimits
	}
	return &Runner{places: p, enricher: e, store: store, limits: limits, now: time.Now}
}

// Search returns the ranked bundle for a province. A same-day cache hit is
// re-enriched and re-ranked for the requested metric but not refetched or
// re-saved; otherwise the full pipeline runs and the result is cached.
func (r *Runner) Search(ctx context.Context, province string, metric model.Metric) (*model.Bundle, error) {
	province = normalize.Province(province)
	if province == "" {
		return nil, eris.New("pipeline: province must not be empty")
	}

	day := r.now()
	cached, err := r.store.Load(ctx, province, day)
	if err != nil {
		zap.L().Warn("pipeline: cache load failed, fetching fresh",
			zap.String("province", province),
			zap.Error(err),
		)
	}
	if cached != nil {
		metrics.CacheHits.Inc()
		metrics.Searches.WithLabelValues("cache").Inc()
		zap.L().Info("pipeline: serving cached bundle",
			zap.String("province", province),
			zap.String("metric", string(metric)),
		)
		return r.refresh(ctx, cached, metric), nil
	}
	metrics.CacheMisses.Inc()

	bundle := r.build(ctx, province, metric)

	if err := r.store.Save(ctx, province, day, bundle); err != nil {
		zap.L().Warn("pipeline: cache save failed",
			zap.String("province", province),
			zap.Error(err),
		)
	}
	metrics.Searches.WithLabelValues("fresh").Inc()
	return bundle, nil
}

// build runs the cold path: fetch every category, enrich, classify, rank.
func (r *Runner) build(ctx context.Context, province string, metric model.Metric) *model.Bundle {
	attractions := r.combinedTourism(ctx, province, r.limits.Attractions)
	hotels := r.fetchCategory(ctx, province, "hotel", r.limits.Hotels)
	restaurants := r.fetchCategory(ctx, province, "restaurant", r.limits.Restaurants)
	shopping := r.fetchCategory(ctx, province, "shopping", r.limits.Shopping)

	combined := make([]model.Place, 0, len(attractions)+len(hotels)+len(restaurants))
	combined = append(combined, attractions...)
	combined = append(combined, hotels...)
	combined = append(combined, restaurants...)
	combined = r.enricher.Enrich(ctx, combined)
	shopping = r.enricher.Enrich(ctx, shopping)

	bundle := ClassifyAndRank(province, combined, shopping, metric)

	zap.L().Info("pipeline: built fresh bundle",
		zap.String("province", province),
		zap.Int("total", bundle.TotalCount),
	)
	return &bundle
}

// refresh is the warm path: readings may have moved since the bundle was
// cached, so every place is re-enriched and each category re-ranked.
func (r *Runner) refresh(ctx context.Context, b *model.Bundle, metric model.Metric) *model.Bundle {
	out := &model.Bundle{
		Province:    b.Province,
		Attractions: Rank(r.enricher.Enrich(ctx, b.Attractions), metric),
		Hotels:      Rank(r.enricher.Enrich(ctx, b.Hotels), metric),
		Restaurants: Rank(r.enricher.Enrich(ctx, b.Restaurants), metric),
		Shopping:    r.enricher.Enrich(ctx, b.Shopping),
	}
	out.Recount()
	return out
}

// combinedTourism sweeps the tourism place types in order, stopping as soon
// as enough distinct attractions have accumulated.
func (r *Runner) combinedTourism(ctx context.Context, province string, limit int) []model.Place {
	var collected []model.Place
	for _, placeType := range tourismTypes {
		found, err := r.places.Search(ctx, province, placeType, limit)
		if err != nil {
			zap.L().Warn("pipeline: tourism search failed",
				zap.String("province", province),
				zap.String("place_type", placeType),
				zap.Error(err),
			)
			continue
		}
		collected = append(collected, found...)
		if len(Dedupe(collected)) >= limit {
			break
		}
	}
	return truncate(Dedupe(collected), limit)
}

func (r *Runner) fetchCategory(ctx context.Context, province, placeType string, limit int) []model.Place {
	found, err := r.places.Search(ctx, province, placeType, limit)
	if err != nil {
		zap.L().Warn("pipeline: category search failed",
			zap.String("province", province),
			zap.String("place_type", placeType),
			zap.Error(err),
		)
		return nil
	}
	return truncate(Dedupe(found), limit)
}

func truncate(places []model.Place, limit int) []model.Place {
	if limit >= 0 && len(places) > limit {
		return places[:limit]
	}
	return places
}
