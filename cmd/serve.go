package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/siamtrail/airtrip-cli/internal/metrics"
	"github.com/siamtrail/airtrip-cli/internal/model"
	"github.com/siamtrail/airtrip-cli/internal/pipeline"
	"github.com/siamtrail/airtrip-cli/pkg/airvisual"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env.runner, env.air),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(s searcher, air airvisual.Client) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/api/search", func(w http.ResponseWriter, req *http.Request) {
		province := req.URL.Query().Get("province")
		if province == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "province is required",
			})
			return
		}

		metricName := req.URL.Query().Get("type")
		if metricName == "" && isTruthy(req.URL.Query().Get("sort_by_dust")) {
			metricName = "pm25"
		}
		metric, err := model.ParseMetric(metricName)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		bundle, err := s.Search(req.Context(), province, metric)
		if err != nil {
			zap.L().Error("serve: search failed",
				zap.String("province", province),
				zap.Error(err),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "search failed",
			})
			return
		}

		// Optional per-request cap on each category.
		if raw := req.URL.Query().Get("limit"); raw != "" {
			if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
				bundle = capBundle(bundle, limit)
			}
		}
		writeJSON(w, http.StatusOK, bundle)
	})

	r.Get("/api/air-quality/{lat}/{lon}", func(w http.ResponseWriter, req *http.Request) {
		lat, latErr := strconv.ParseFloat(chi.URLParam(req, "lat"), 64)
		lon, lonErr := strconv.ParseFloat(chi.URLParam(req, "lon"), 64)
		if latErr != nil || lonErr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "lat and lon must be numbers",
			})
			return
		}

		obs, err := air.NearestCity(req.Context(), lat, lon)
		if err != nil {
			zap.L().Error("serve: air-quality lookup failed",
				zap.Float64("lat", lat),
				zap.Float64("lon", lon),
				zap.Error(err),
			)
			writeJSON(w, http.StatusBadGateway, map[string]string{
				"error": "air quality lookup failed",
			})
			return
		}
		writeJSON(w, http.StatusOK, pipeline.SampleFromObservation(obs, "station"))
	})

	return r
}

func capBundle(b *model.Bundle, limit int) *model.Bundle {
	out := *b
	out.Attractions = capPlaces(out.Attractions, limit)
	out.Hotels = capPlaces(out.Hotels, limit)
	out.Restaurants = capPlaces(out.Restaurants, limit)
	out.Shopping = capPlaces(out.Shopping, limit)
	out.Recount()
	return &out
}

func capPlaces(places []model.Place, limit int) []model.Place {
	if len(places) > limit {
		return places[:limit]
	}
	return places
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func isTruthy(s string) bool {
	return s == "1" || s == "true" || s == "yes"
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
