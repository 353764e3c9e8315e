package dashboard

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/irl-covid-dashboard/internal/domain"
	"github.com/couchcryptid/irl-covid-dashboard/internal/observability"
)

type staticSource struct {
	ds atomic.Pointer[domain.Dataset]
}

func (s *staticSource) Current() *domain.Dataset { return s.ds.Load() }

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func testDataset(t *testing.T, id string) *domain.Dataset {
	t.Helper()
	county := []domain.CountyRecord{
		{CountyName: "Carlow", TimeStamp: "2020/03/01 00:00:00+00", Confirmed: domain.Num(10), Population: 56932},
		{CountyName: "Dublin", TimeStamp: "2020/03/01 00:00:00+00", Confirmed: domain.Num(200), Population: 1347359},
		{CountyName: "Carlow", TimeStamp: "2020/03/02 00:00:00+00", Confirmed: domain.Num(50), Population: 10000},
		{CountyName: "Dublin", TimeStamp: "2020/03/02 00:00:00+00", Confirmed: domain.Num(400), Population: 1347359},
	}
	national := []domain.NationalRecord{
		{Date: "2020/03/01 00:00:00+00", DailyConfirmed: domain.Num(1), TotalConfirmed: domain.Num(1), TotalDeaths: domain.Num(0),
			Fields: map[string]domain.Number{"Male": domain.Num(1), "Female": domain.Num(0), "Unknown": domain.Num(0)}},
		{Date: "2020/03/02 00:00:00+00", DailyConfirmed: domain.Num(2), TotalConfirmed: domain.Num(3), TotalDeaths: domain.Num(1),
			Fields: map[string]domain.Number{"Male": domain.Num(2), "Female": domain.Num(1), "Unknown": domain.Num(0)}},
	}
	ds, err := domain.NewDataset(id, time.Date(2020, 3, 3, 0, 0, 0, 0, time.UTC), county, national)
	require.NoError(t, err)
	return ds
}

func newTestService(t *testing.T) (*Service, *staticSource, *observability.Metrics) {
	t.Helper()
	src := &staticSource{}
	src.ds.Store(testDataset(t, "gen-1"))
	metrics := observability.NewMetricsForTesting()
	return NewService(src, domain.MatchSubstring, 16, metrics), src, metrics
}

func TestService_NotLoaded(t *testing.T) {
	s := NewService(&staticSource{}, domain.MatchSubstring, 16, observability.NewMetricsForTesting())

	_, err := s.Summary()
	require.ErrorIs(t, err, ErrNotLoaded)
	_, err = s.DateRange()
	require.ErrorIs(t, err, ErrNotLoaded)
	_, err = s.Map(time.Time{}, domain.MapTotal)
	require.ErrorIs(t, err, ErrNotLoaded)
	_, err = s.Breakdown(time.Time{}, domain.CategoryGender)
	require.ErrorIs(t, err, ErrNotLoaded)
	_, err = s.Totals(domain.SeriesTotal)
	require.ErrorIs(t, err, ErrNotLoaded)

	assert.Len(t, s.Options().Categories, 5, "options need no dataset")
}

func TestService_Summary(t *testing.T) {
	s, _, _ := newTestService(t)
	sum, err := s.Summary()
	require.NoError(t, err)
	assert.Equal(t, domain.Num(3), sum.TotalCases)
	assert.Equal(t, "2020/03/02", sum.AsOf)
}

func TestService_DateRange(t *testing.T) {
	s, _, _ := newTestService(t)
	dr, err := s.DateRange()
	require.NoError(t, err)

	assert.Equal(t, "2020-03-01", dr.Start)
	assert.Equal(t, "2020-03-02", dr.End)
	assert.Equal(t, "2020-03-02", dr.Default)
	assert.Equal(t, "Date Selected: 03/02", dr.SelectedLabel)
	require.Len(t, dr.Marks, 2)
	assert.Equal(t, Mark{Date: "2020-03-01", Label: "03-01"}, dr.Marks[0])
}

func TestService_Map(t *testing.T) {
	s, _, metrics := newTestService(t)

	chart, err := s.Map(time.Time{}, domain.MapProportional)
	require.NoError(t, err)
	require.Len(t, chart.Rows, 2)
	assert.Equal(t, "2020/03/02 00:00:00+00", chart.Rows[0].TimeStamp, "zero day selects the range end")
	assert.InDelta(t, 0.5, chart.Rows[0].Proportion.Value, 1e-12)

	chart, err = s.Map(day("2020-05-01"), domain.MapTotal)
	require.NoError(t, err)
	assert.True(t, chart.NoData)

	_, err = s.Map(day("2020-03-01"), domain.MapMode("heat"))
	require.ErrorIs(t, err, domain.ErrUnknownCategory)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ChartQueries.WithLabelValues("map", "data")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ChartQueries.WithLabelValues("map", "no_data")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ChartQueries.WithLabelValues("map", "error")), 0)
}

func TestService_Breakdown(t *testing.T) {
	s, _, _ := newTestService(t)

	chart, err := s.Breakdown(day("2020-03-01"), domain.CategoryGender)
	require.NoError(t, err)
	assert.Equal(t, []domain.Number{domain.Num(1), domain.Num(0), domain.Num(0)}, chart.Values)

	chart, err = s.Breakdown(day("2020-03-01"), domain.CategoryTransmission)
	require.NoError(t, err)
	assert.True(t, chart.NoData, "transmission columns absent")
}

func TestService_Totals(t *testing.T) {
	s, _, _ := newTestService(t)
	chart, err := s.Totals(domain.SeriesDaily)
	require.NoError(t, err)
	assert.Equal(t, []string{"03/01", "03/02"}, chart.Labels)
	require.Len(t, chart.Overlays, 1)
}

func TestService_CachePerDataset(t *testing.T) {
	s, src, metrics := newTestService(t)

	first, err := s.Totals(domain.SeriesTotal)
	require.NoError(t, err)
	_, err = s.Totals(domain.SeriesTotal)
	require.NoError(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.QueryCache.WithLabelValues("miss")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.QueryCache.WithLabelValues("hit")), 0)

	next := testDataset(t, "gen-2")
	next.National[1].TotalConfirmed = domain.Num(30)
	src.ds.Store(next)

	second, err := s.Totals(domain.SeriesTotal)
	require.NoError(t, err)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.QueryCache.WithLabelValues("miss")), 0)
	assert.Equal(t, domain.Num(3), first.Values[1])
	assert.Equal(t, domain.Num(30), second.Values[1])
}

func TestService_ErrorsNotCached(t *testing.T) {
	s, _, _ := newTestService(t)
	_, err := s.Totals(domain.TotalsSeries("weekly"))
	require.Error(t, err)
	assert.Equal(t, 0, s.cache.size())
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache[int](2)
	c.put("a", 1)
	c.put("b", 2)
	_, _ = c.get("a")
	c.put("c", 3)

	_, ok := c.get("b")
	assert.False(t, ok, "least recently used evicted")
	v, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.size())

	c.put("a", 10)
	v, _ = c.get("a")
	assert.Equal(t, 10, v)
}

func TestLRUCache_MinimumSize(t *testing.T) {
	c := newLRUCache[string](0)
	c.put("a", "x")
	v, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, "x", v)
}
