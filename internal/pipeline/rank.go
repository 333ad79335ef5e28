package pipeline

import (
	"sort"

	"go.uber.org/zap"

	"github.com/siamtrail/airtrip-cli/internal/model"
)

// Rank orders a category by the chosen metric, ascending, and assigns
// competition ranks. Ties share a rank and the next distinct value takes the
// following rank with no gaps. Places without a reading keep their source
// order at the tail with a nil rank. The sort is stable, so equal readings
// keep their fetch order.
func Rank(places []model.Place, metric model.Metric) []model.Place {
	ranked := make([]model.Place, 0, len(places))
	unranked := make([]model.Place, 0)

	for _, p := range places {
		if _, ok := p.AirQuality.MetricValue(metric); ok {
			ranked = append(ranked, p)
		} else {
			p.Rank = nil
			p.RankBadge = model.BadgeNone
			unranked = append(unranked, p)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		vi, _ := ranked[i].AirQuality.MetricValue(metric)
		vj, _ := ranked[j].AirQuality.MetricValue(metric)
		return vi < vj
	})

	rank := 0
	prev := -1
	for i := range ranked {
		v, _ := ranked[i].AirQuality.MetricValue(metric)
		if i == 0 || v != prev {
			rank++
			prev = v
		}
		r := rank
		ranked[i].Rank = &r
		ranked[i].RankBadge = model.BadgeForRank(r)
	}

	return append(ranked, unranked...)
}

// ClassifyAndRank buckets places into their categories and ranks each bucket
// independently. Shopping venues are carried through unranked.
func ClassifyAndRank(province string, places, shopping []model.Place, metric model.Metric) model.Bundle {
	b := model.Bundle{Province: province, Shopping: shopping}

	for _, p := range places {
		switch Classify(p) {
		case model.CategoryHotel:
			b.Hotels = append(b.Hotels, p)
		case model.CategoryRestaurant:
			b.Restaurants = append(b.Restaurants, p)
		default:
			b.Attractions = append(b.Attractions, p)
		}
	}

	b.Attractions = Rank(b.Attractions, metric)
	b.Hotels = Rank(b.Hotels, metric)
	b.Restaurants = Rank(b.Restaurants, metric)
	b.Recount()

	zap.L().Debug("rank: classified and ranked places",
		zap.String("province", province),
		zap.String("metric", string(metric)),
		zap.Int("attractions", len(b.Attractions)),
		zap.Int("hotels", len(b.Hotels)),
		zap.Int("restaurants", len(b.Restaurants)),
		zap.Int("shopping", len(b.Shopping)),
	)
	return b
}
