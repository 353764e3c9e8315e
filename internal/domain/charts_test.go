package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMonth = "2020/03/"

func nationalSeries() []NationalRecord {
	return []NationalRecord{
		{Date: testMonth + "01 00:00:00+00", DailyConfirmed: Num(1), TotalConfirmed: Num(1), TotalDeaths: Num(0), Fields: fullFields(1)},
		{Date: testMonth + "02 00:00:00+00", DailyConfirmed: Num(2), TotalConfirmed: Num(3), TotalDeaths: Num(0), Fields: fullFields(2)},
		{Date: testMonth + "03 00:00:00+00", DailyConfirmed: Num(6), TotalConfirmed: Num(9), TotalDeaths: Num(1), Fields: map[string]Number{}},
	}
}

func TestMapQuery(t *testing.T) {
	ds := mustDataset(t, defaultCounty(), nationalSeries())

	t.Run("proportional computes percent of population", func(t *testing.T) {
		chart, err := MapQuery(ds, day("2020-03-02"), MapProportional, MatchSubstring)
		require.NoError(t, err)
		require.False(t, chart.NoData)
		require.Len(t, chart.Rows, 2)

		assert.Equal(t, "Carlow", chart.Rows[0].County)
		assert.InDelta(t, 0.5, chart.Rows[0].Proportion.Value, 1e-12)
		assert.Equal(t, "CovidOverPopulation", chart.ColorField)
		assert.Equal(t, "% of population", chart.ColorLabel)
		assert.Equal(t, "Proportional Covid Cases", chart.Title)
		assert.InDelta(t, 0.5, chart.Range[1], 1e-12, "range is the max of the day's slice")
	})

	t.Run("total uses whole-table maximum", func(t *testing.T) {
		chart, err := MapQuery(ds, day("2020-03-01"), MapTotal, MatchSubstring)
		require.NoError(t, err)

		assert.Equal(t, "ConfirmedCovidCases", chart.ColorField)
		assert.Equal(t, "Total Cases", chart.ColorLabel)
		assert.Equal(t, "Total Covid Cases", chart.Title)
		assert.Equal(t, [2]float64{0, 400}, chart.Range)
	})

	t.Run("per100k uses the source column", func(t *testing.T) {
		rows := []CountyRecord{
			{CountyName: "Cork", TimeStamp: "2020/03/01", Confirmed: Num(5), Population: 542868, Per100k: Num(0.92)},
			{CountyName: "Kerry", TimeStamp: "2020/03/01", Confirmed: Num(9), Population: 147707, Per100k: Num(6.09)},
		}
		chart, err := MapQuery(mustDataset(t, rows, nationalSeries()), day("2020-03-01"), MapPer100k, MatchSubstring)
		require.NoError(t, err)
		assert.Equal(t, "PopulationProportionCovidCases", chart.ColorField)
		assert.Equal(t, "per 100,000", chart.ColorLabel)
		assert.Equal(t, [2]float64{0, 6.09}, chart.Range)
	})

	t.Run("missing confirmed leaves proportion missing", func(t *testing.T) {
		rows := []CountyRecord{{CountyName: "Clare", TimeStamp: "2020/03/01", Population: 118817}}
		chart, err := MapQuery(mustDataset(t, rows, nationalSeries()), day("2020-03-01"), MapProportional, MatchSubstring)
		require.NoError(t, err)
		assert.False(t, chart.Rows[0].Proportion.Valid)
		assert.Equal(t, [2]float64{0, 0}, chart.Range)
	})

	t.Run("no rows is no data", func(t *testing.T) {
		chart, err := MapQuery(ds, day("2020-04-01"), MapTotal, MatchSubstring)
		require.NoError(t, err)
		assert.True(t, chart.NoData)
		assert.Equal(t, NoDataMessage, chart.Message)
		assert.Empty(t, chart.Rows)
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := MapQuery(ds, day("2020-03-01"), MapMode("heat"), MatchSubstring)
		require.ErrorIs(t, err, ErrUnknownCategory)
	})
}

func TestProportion(t *testing.T) {
	p := Proportion(Num(50), 10000)
	require.True(t, p.Valid)
	assert.InDelta(t, 0.5, p.Value, 1e-12)
	assert.False(t, Proportion(Missing, 10000).Valid)
	assert.False(t, Proportion(Num(1), 0).Valid)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, Num(5.0), Percent(Num(10), Num(200)))
	assert.Equal(t, Num(33.33), Percent(Num(1), Num(3)))
	assert.Equal(t, Num(66.67), Percent(Num(2), Num(3)))
	assert.False(t, Percent(Missing, Num(3)).Valid)
	assert.False(t, Percent(Num(1), Missing).Valid)
	assert.False(t, Percent(Num(1), Num(0)).Valid)
}

func TestBreakdownQuery(t *testing.T) {
	ds := mustDataset(t, defaultCounty(), nationalSeries())

	t.Run("field counts per category", func(t *testing.T) {
		want := map[Category]int{
			CategoryTransmission: 3,
			CategoryGender:       3,
			CategoryCaseAge:      9,
			CategoryHospitalAge:  8,
			CategoryHospitalOdds: 8,
		}
		for cat, n := range want {
			chart, err := BreakdownQuery(ds, day("2020-03-01"), cat, MatchSubstring)
			require.NoError(t, err, cat)
			require.False(t, chart.NoData, cat)
			assert.Len(t, chart.Labels, n, cat)
			assert.Len(t, chart.Values, n, cat)
		}
	})

	t.Run("gender values and labels", func(t *testing.T) {
		rec := NationalRecord{Date: "2020/03/01", TotalConfirmed: Num(10), Fields: map[string]Number{
			"Male": Num(4), "Female": Num(5), "Unknown": Num(1),
		}}
		chart, err := BreakdownQuery(mustDataset(t, defaultCounty(), []NationalRecord{rec}), day("2020-03-01"), CategoryGender, MatchSubstring)
		require.NoError(t, err)

		want := Chart{
			Title:  "Gender",
			Labels: []string{"Male", "Female", "Unknown"},
			Values: []Number{Num(4), Num(5), Num(1)},
		}
		if diff := cmp.Diff(want, chart); diff != "" {
			t.Fatalf("gender chart mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("hospitalization likelihood", func(t *testing.T) {
		fields := fullFields(1)
		fields["HospitalisedAged5"] = Num(10)
		fields["Aged1to4"] = Num(200)
		rec := NationalRecord{Date: "2020/03/01", TotalConfirmed: Num(1000), Fields: fields}

		chart, err := BreakdownQuery(mustDataset(t, defaultCounty(), []NationalRecord{rec}), day("2020-03-01"), CategoryHospitalOdds, MatchSubstring)
		require.NoError(t, err)
		assert.Equal(t, "% Likelihood of Hospitalization by Age", chart.Title)
		assert.Equal(t, "Aged 1-4", chart.Labels[0])
		assert.Equal(t, Num(5.0), chart.Values[0])
		assert.Equal(t, "Aged 65+", chart.Labels[7])
	})

	t.Run("case age labels", func(t *testing.T) {
		chart, err := BreakdownQuery(ds, day("2020-03-01"), CategoryCaseAge, MatchSubstring)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"Aged >1", "Aged 1-4", "Aged 5-14", "Aged 15-24", "Aged 25-34",
			"Aged 35-44", "Aged 45-54", "Aged 55-64", "Aged 65+",
		}, chart.Labels)
		assert.Equal(t, "Case Age Profile", chart.Title)
	})

	t.Run("missing value is no data", func(t *testing.T) {
		for _, cat := range []Category{CategoryTransmission, CategoryHospitalOdds} {
			chart, err := BreakdownQuery(ds, day("2020-03-03"), cat, MatchSubstring)
			require.NoError(t, err)
			assert.True(t, chart.NoData, cat)
		}
	})

	t.Run("zero denominator is no data", func(t *testing.T) {
		fields := fullFields(1)
		fields["Aged65up"] = Num(0)
		rec := NationalRecord{Date: "2020/03/01", TotalConfirmed: Num(1), Fields: fields}
		chart, err := BreakdownQuery(mustDataset(t, defaultCounty(), []NationalRecord{rec}), day("2020-03-01"), CategoryHospitalOdds, MatchSubstring)
		require.NoError(t, err)
		assert.True(t, chart.NoData)
	})

	t.Run("no matching day", func(t *testing.T) {
		chart, err := BreakdownQuery(ds, day("2020-05-01"), CategoryGender, MatchSubstring)
		require.NoError(t, err)
		assert.True(t, chart.NoData)
		assert.Equal(t, NoDataMessage, chart.Message)
	})

	t.Run("tie-break takes the later row", func(t *testing.T) {
		first := NationalRecord{Date: "2020/03/01", Fields: map[string]Number{"Male": Num(1), "Female": Num(1), "Unknown": Num(1)}}
		second := NationalRecord{Date: "2020/03/01", Fields: map[string]Number{"Male": Num(7), "Female": Num(8), "Unknown": Num(9)}}
		chart, err := BreakdownQuery(mustDataset(t, defaultCounty(), []NationalRecord{first, second}), day("2020-03-01"), CategoryGender, MatchSubstring)
		require.NoError(t, err)
		assert.Equal(t, []Number{Num(7), Num(8), Num(9)}, chart.Values)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := BreakdownQuery(ds, day("2020-03-01"), Category("age"), MatchSubstring)
		require.ErrorIs(t, err, ErrUnknownCategory)
	})

	t.Run("empty category defaults to transmission", func(t *testing.T) {
		chart, err := BreakdownQuery(ds, day("2020-03-01"), "", MatchSubstring)
		require.NoError(t, err)
		assert.Equal(t, "% Known Mode of Transmission", chart.Title)
	})
}

func TestTotalsQuery(t *testing.T) {
	ds := mustDataset(t, defaultCounty(), nationalSeries())

	t.Run("total", func(t *testing.T) {
		chart, err := TotalsQuery(ds, SeriesTotal)
		require.NoError(t, err)
		assert.Equal(t, "Total Covid Cases", chart.Title)
		assert.Equal(t, []string{"03/01", "03/02", "03/03"}, chart.Labels)
		assert.Equal(t, nums(1, 3, 9), chart.Values)
	})

	t.Run("daily with rolling average", func(t *testing.T) {
		chart, err := TotalsQuery(ds, SeriesDaily)
		require.NoError(t, err)
		assert.Equal(t, "Daily Covid Cases", chart.Title)
		assert.Equal(t, "Known Cases", chart.Name)
		assert.Equal(t, nums(1, 2, 6), chart.Values)
		require.Len(t, chart.Overlays, 1)
		assert.Equal(t, "3 Day Rolling Avg.", chart.Overlays[0].Name)
		assert.Equal(t, nums(1, 1.5, 3), chart.Overlays[0].Values)
	})

	t.Run("active", func(t *testing.T) {
		chart, err := TotalsQuery(ds, SeriesActive)
		require.NoError(t, err)
		assert.Equal(t, "Estimate of Active Covid Cases", chart.Title)
		assert.Equal(t, nums(1, 3, 9), chart.Values)
	})

	t.Run("labels keep the year across years", func(t *testing.T) {
		rows := []NationalRecord{
			{Date: "2020/12/31 00:00:00+00", TotalConfirmed: Num(1)},
			{Date: "2021/01/01 00:00:00+00", TotalConfirmed: Num(2)},
		}
		chart, err := TotalsQuery(mustDataset(t, defaultCounty(), rows), SeriesTotal)
		require.NoError(t, err)
		assert.Equal(t, []string{"2020/12/31", "2021/01/01"}, chart.Labels)
	})

	t.Run("unknown series", func(t *testing.T) {
		_, err := TotalsQuery(ds, TotalsSeries("weekly"))
		require.ErrorIs(t, err, ErrUnknownCategory)
	})
}

func TestChartJSON_MissingIsNull(t *testing.T) {
	chart := Chart{Labels: []string{"a", "b"}, Values: []Number{Num(1.5), Missing}}
	data, err := json.Marshal(chart)
	require.NoError(t, err)
	assert.JSONEq(t, `{"labels":["a","b"],"values":[1.5,null],"no_data":false}`, string(data))
}

func TestOptions(t *testing.T) {
	opts := CategoryOptions()
	require.Len(t, opts, 5)
	assert.Equal(t, Option{Value: "hospitalOdds", Label: "Likelihood of Hospitalization"}, opts[4])

	for _, o := range opts {
		_, err := ParseCategory(o.Value)
		require.NoError(t, err)
	}
	for _, o := range MapModeOptions() {
		_, err := ParseMapMode(o.Value)
		require.NoError(t, err)
	}
	for _, o := range TotalsSeriesOptions() {
		_, err := ParseTotalsSeries(o.Value)
		require.NoError(t, err)
	}
}
