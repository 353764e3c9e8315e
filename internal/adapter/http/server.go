package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/irl-covid-dashboard/internal/dashboard"
	"github.com/couchcryptid/irl-covid-dashboard/internal/domain"
)

// Queries answers the dashboard's chart and summary requests.
type Queries interface {
	Summary() (domain.Summary, error)
	DateRange() (dashboard.DateRange, error)
	Map(day time.Time, mode domain.MapMode) (domain.MapChart, error)
	Breakdown(day time.Time, cat domain.Category) (domain.Chart, error)
	Totals(series domain.TotalsSeries) (domain.Chart, error)
	Options() dashboard.Options
}

// Server exposes the dashboard API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	queries    Queries
	geo        *dashboard.GeoJSON
	logger     *slog.Logger
}

// NewServer creates the HTTP server. geo may be nil, in which case
// /api/geojson returns 404.
func NewServer(addr string, ready sharedobs.ReadinessChecker, queries Queries, geo *dashboard.GeoJSON, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      accessLog(logger)(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		queries: queries,
		geo:     geo,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/date-range", s.handleDateRange)
	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /api/map", s.handleMap)
	mux.HandleFunc("GET /api/breakdown", s.handleBreakdown)
	mux.HandleFunc("GET /api/totals", s.handleTotals)
	mux.HandleFunc("GET /api/geojson", s.handleGeoJSON)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
