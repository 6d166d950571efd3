package api

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/forecastview/internal/models"
	"github.com/lox/forecastview/internal/render"
	"github.com/lox/forecastview/internal/service"
	"github.com/lox/forecastview/internal/store"
)

// Forecasts is the forecast lookup the handlers depend on.
type Forecasts interface {
	Days(ctx context.Context, q service.Query) (*models.Forecast, []models.DaySummary, error)
	Day(ctx context.Context, q service.Query, date time.Time) (*models.Forecast, models.DaySummary, error)
}

type Server struct {
	forecasts Forecasts
	store     *store.Store
	port      string
	tmpl      *template.Template
	charts    *render.Cache
}

func NewServer(forecasts Forecasts, st *store.Store, port string, chartTTL time.Duration) *Server {
	return &Server{
		forecasts: forecasts,
		store:     st,
		port:      port,
		tmpl:      newTemplates(),
		charts:    render.NewCache(chartTTL),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("GET /day", s.handleDay)
	mux.HandleFunc("GET /chart/{file}", s.handleChart)
	mux.HandleFunc("GET /api/days", s.handleAPIDays)
	mux.HandleFunc("GET /api/chart", s.handleAPIChart)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

type HealthStatus struct {
	Status          string     `json:"status"`
	CachedPayloads  int        `json:"cached_payloads"`
	CachedLocations int        `json:"cached_locations"`
	NewestFetch     *time.Time `json:"newest_fetch,omitempty"`
	Error           string     `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := s.store.Ping(); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(HealthStatus{Status: "error", Error: err.Error()})
		return
	}
	stats, err := s.store.GetPayloadStats()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(HealthStatus{Status: "error", Error: err.Error()})
		return
	}

	health := HealthStatus{
		Status:          "ok",
		CachedPayloads:  stats.TotalCount,
		CachedLocations: stats.Locations,
	}
	if !stats.NewestFetchedAt.IsZero() {
		health.NewestFetch = &stats.NewestFetchedAt
	}
	json.NewEncoder(w).Encode(health)
}
