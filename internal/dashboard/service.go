// Package dashboard answers the dashboard's queries against whichever
// dataset is current, caching chart results per dataset.
package dashboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/irl-covid-dashboard/internal/domain"
	"github.com/couchcryptid/irl-covid-dashboard/internal/observability"
)

// ErrNotLoaded is returned while no dataset has been loaded.
var ErrNotLoaded = errors.New("dataset not loaded")

// DatasetSource provides the dataset currently being served.
type DatasetSource interface {
	Current() *domain.Dataset
}

// Service runs chart queries.
type Service struct {
	source  DatasetSource
	match   domain.MatchMode
	cache   *lruCache[any]
	metrics *observability.Metrics
}

// NewService creates a service that keeps at most cacheSize query results.
func NewService(source DatasetSource, match domain.MatchMode, cacheSize int, metrics *observability.Metrics) *Service {
	return &Service{
		source:  source,
		match:   match,
		cache:   newLRUCache[any](cacheSize),
		metrics: metrics,
	}
}

// Dataset returns the current dataset.
func (s *Service) Dataset() (*domain.Dataset, error) {
	ds := s.source.Current()
	if ds == nil {
		return nil, ErrNotLoaded
	}
	return ds, nil
}

// Summary returns the headline figures.
func (s *Service) Summary() (domain.Summary, error) {
	ds, err := s.Dataset()
	if err != nil {
		return domain.Summary{}, err
	}
	return ds.Summary(), nil
}

// Mark is one labelled slider position.
type Mark struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

// DateRange describes the date slider.
type DateRange struct {
	Start         string `json:"start"`
	End           string `json:"end"`
	Default       string `json:"default"`
	SelectedLabel string `json:"selected_label"`
	Marks         []Mark `json:"marks"`
}

// DateRange returns the slider bounds and marks. The default selection is
// the last day.
func (s *Service) DateRange() (DateRange, error) {
	ds, err := s.Dataset()
	if err != nil {
		return DateRange{}, err
	}
	marks := ds.Range.Marks()
	out := DateRange{
		Start:         ds.Range.Start.Format(time.DateOnly),
		End:           ds.Range.End.Format(time.DateOnly),
		Default:       ds.Range.End.Format(time.DateOnly),
		SelectedLabel: domain.SelectedDateLabel(ds.Range.End),
		Marks:         make([]Mark, len(marks)),
	}
	for i, m := range marks {
		out.Marks[i] = Mark{Date: m.Date.Format(time.DateOnly), Label: m.Label}
	}
	return out, nil
}

// Map returns the county map for day. A zero day selects the end of the range.
func (s *Service) Map(day time.Time, mode domain.MapMode) (domain.MapChart, error) {
	ds, err := s.Dataset()
	if err != nil {
		return domain.MapChart{}, err
	}
	day = s.resolveDay(ds, day)
	key := fmt.Sprintf("%s|map|%s|%s", ds.ID, day.Format(time.DateOnly), mode)
	chart, err := cached(s, key, func() (domain.MapChart, error) {
		return domain.MapQuery(ds, day, mode, s.match)
	})
	s.record("map", chart.NoData, err)
	return chart, err
}

// Breakdown returns the national breakdown for day and category.
func (s *Service) Breakdown(day time.Time, cat domain.Category) (domain.Chart, error) {
	ds, err := s.Dataset()
	if err != nil {
		return domain.Chart{}, err
	}
	day = s.resolveDay(ds, day)
	key := fmt.Sprintf("%s|breakdown|%s|%s", ds.ID, day.Format(time.DateOnly), cat)
	chart, err := cached(s, key, func() (domain.Chart, error) {
		return domain.BreakdownQuery(ds, day, cat, s.match)
	})
	s.record("breakdown", chart.NoData, err)
	return chart, err
}

// Totals returns a national time series.
func (s *Service) Totals(series domain.TotalsSeries) (domain.Chart, error) {
	ds, err := s.Dataset()
	if err != nil {
		return domain.Chart{}, err
	}
	key := fmt.Sprintf("%s|totals|%s", ds.ID, series)
	chart, err := cached(s, key, func() (domain.Chart, error) {
		return domain.TotalsQuery(ds, series)
	})
	s.record("totals", chart.NoData, err)
	return chart, err
}

// Options lists every selector the front-end offers.
type Options struct {
	MapModes     []domain.Option `json:"map_modes"`
	Categories   []domain.Option `json:"categories"`
	TotalsSeries []domain.Option `json:"totals_series"`
}

// Options returns the selector values; it does not need a dataset.
func (s *Service) Options() Options {
	return Options{
		MapModes:     domain.MapModeOptions(),
		Categories:   domain.CategoryOptions(),
		TotalsSeries: domain.TotalsSeriesOptions(),
	}
}

func (s *Service) resolveDay(ds *domain.Dataset, day time.Time) time.Time {
	if day.IsZero() {
		return ds.Range.End
	}
	return day
}

func (s *Service) record(chart string, noData bool, err error) {
	outcome := "data"
	switch {
	case err != nil:
		outcome = "error"
	case noData:
		outcome = "no_data"
	}
	s.metrics.ChartQueries.WithLabelValues(chart, outcome).Inc()
}

// cached returns the stored result for key or computes and stores it.
// Errors are not cached. Keys start with the dataset ID, so a new dataset
// never sees results from the previous one.
func cached[T any](s *Service, key string, compute func() (T, error)) (T, error) {
	if v, ok := s.cache.get(key); ok {
		if out, ok := v.(T); ok {
			s.metrics.QueryCache.WithLabelValues("hit").Inc()
			return out, nil
		}
	}
	s.metrics.QueryCache.WithLabelValues("miss").Inc()

	out, err := compute()
	if err != nil {
		return out, err
	}
	s.cache.put(key, out)
	return out, nil
}
