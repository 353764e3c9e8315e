package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/irl-covid-dashboard/internal/dashboard"
	"github.com/couchcryptid/irl-covid-dashboard/internal/domain"
)

var errBadDate = errors.New("invalid date")

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	sum, err := s.queries.Summary()
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, sum)
}

func (s *Server) handleDateRange(w http.ResponseWriter, _ *http.Request) {
	dr, err := s.queries.DateRange()
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, dr)
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.queries.Options())
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	mode, err := domain.ParseMapMode(r.URL.Query().Get("mode"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	chart, err := s.queries.Map(day, mode)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, chart)
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	cat, err := domain.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	chart, err := s.queries.Breakdown(day, cat)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, chart)
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	series, err := domain.ParseTotalsSeries(r.URL.Query().Get("series"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	chart, err := s.queries.Totals(series)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, chart)
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, _ *http.Request) {
	if s.geo == nil {
		sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "geojson not configured"})
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(s.geo.Raw) //nolint:errcheck // client went away
}

// parseDay reads the date query parameter as YYYY-MM-DD. Absent selects the
// end of the date range.
func parseDay(r *http.Request) (time.Time, error) {
	v := r.URL.Query().Get("date")
	if v == "" {
		return time.Time{}, nil
	}
	day, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q, want YYYY-MM-DD", errBadDate, v)
	}
	return day, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dashboard.ErrNotLoaded):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUnknownCategory), errors.Is(err, errBadDate):
		status = http.StatusBadRequest
	default:
		s.logger.Error("query failed", "error", err)
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
