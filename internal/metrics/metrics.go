// Package metrics exposes Prometheus counters for the search pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Searches counts province searches by result source ("cache" or "fresh").
	Searches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airtrip",
		Name:      "searches_total",
		Help:      "Province searches by result source.",
	}, []string{"source"})

	// CacheHits and CacheMisses count daily cache lookups.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "airtrip",
		Name:      "cache_hits_total",
		Help:      "Daily cache hits.",
	})
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "airtrip",
		Name:      "cache_misses_total",
		Help:      "Daily cache misses.",
	})

	// UpstreamCalls counts outbound API calls by provider and outcome.
	UpstreamCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "airtrip",
		Name:      "upstream_calls_total",
		Help:      "Outbound API calls by provider and outcome.",
	}, []string{"provider", "outcome"})

	// AirBudgetRemaining tracks how much of the yearly air-quality call
	// budget this process has left.
	AirBudgetRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "airtrip",
		Name:      "air_budget_remaining",
		Help:      "Remaining air-quality API call budget for this process.",
	})
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
