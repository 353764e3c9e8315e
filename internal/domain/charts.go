package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NoDataMessage is shown in place of a chart when a query matches nothing.
const NoDataMessage = "No matching data found"

// Series is one named trace of values aligned with a chart's labels.
type Series struct {
	Name   string   `json:"name,omitempty"`
	Values []Number `json:"values"`
}

// Chart is the data behind a bar or line chart. NoData marks the
// placeholder outcome; it is not an error.
type Chart struct {
	Title    string   `json:"title,omitempty"`
	Labels   []string `json:"labels"`
	Name     string   `json:"name,omitempty"`
	Values   []Number `json:"values"`
	Overlays []Series `json:"overlays,omitempty"`
	NoData   bool     `json:"no_data"`
	Message  string   `json:"message,omitempty"`
}

func noDataChart() Chart {
	return Chart{Labels: []string{}, Values: []Number{}, NoData: true, Message: NoDataMessage}
}

// MapRow is one county on the selected day.
type MapRow struct {
	County     string `json:"county"`
	TimeStamp  string `json:"timestamp"`
	Confirmed  Number `json:"confirmed"`
	Population int64  `json:"population"`
	Proportion Number `json:"proportion"` // % of population, computed per query
	Per100k    Number `json:"per_100k"`
}

// MapChart is the data behind the county choropleth.
type MapChart struct {
	Title      string     `json:"title,omitempty"`
	ColorField string     `json:"color_field,omitempty"`
	ColorLabel string     `json:"color_label,omitempty"`
	Range      [2]float64 `json:"range"`
	Rows       []MapRow   `json:"rows"`
	NoData     bool       `json:"no_data"`
	Message    string     `json:"message,omitempty"`
}

// Proportion returns confirmed cases as a percentage of population.
func Proportion(confirmed Number, population int64) Number {
	if !confirmed.Valid || population <= 0 {
		return Missing
	}
	return Num(confirmed.Value / float64(population) * 100)
}

// MapQuery selects the county rows for day and shapes them for mode.
func MapQuery(ds *Dataset, day time.Time, mode MapMode, match MatchMode) (MapChart, error) {
	if _, err := ParseMapMode(string(mode)); err != nil {
		return MapChart{}, err
	}
	slice := SelectCounty(ds.County, day, match)
	if len(slice) == 0 {
		return MapChart{Rows: []MapRow{}, NoData: true, Message: NoDataMessage}, nil
	}

	rows := make([]MapRow, len(slice))
	for i, r := range slice {
		rows[i] = MapRow{
			County:     r.CountyName,
			TimeStamp:  r.TimeStamp,
			Confirmed:  r.Confirmed,
			Population: r.Population,
			Proportion: Proportion(r.Confirmed, r.Population),
			Per100k:    r.Per100k,
		}
	}

	chart := MapChart{Rows: rows}
	switch mode {
	case MapProportional:
		chart.Title = "Proportional Covid Cases"
		chart.ColorField = "CovidOverPopulation"
		chart.ColorLabel = "% of population"
		chart.Range = [2]float64{0, maxOf(rows, func(r MapRow) Number { return r.Proportion })}
	case MapPer100k:
		chart.Title = "Proportional Covid Cases"
		chart.ColorField = colPer100k
		chart.ColorLabel = "per 100,000"
		chart.Range = [2]float64{0, maxOf(rows, func(r MapRow) Number { return r.Per100k })}
	default:
		// The total map keeps one scale across the whole table so colours are
		// comparable as the slider moves.
		chart.Title = "Total Covid Cases"
		chart.ColorField = colConfirmed
		chart.ColorLabel = "Total Cases"
		chart.Range = [2]float64{0, ds.maxConfirmed}
	}
	return chart, nil
}

func maxOf(rows []MapRow, value func(MapRow) Number) float64 {
	var hi float64
	for _, r := range rows {
		hi = max(hi, maxValid(value(r)))
	}
	return hi
}

// BreakdownQuery returns the category's values from the national row for
// day. A missing value anywhere in the category is the no-data outcome.
func BreakdownQuery(ds *Dataset, day time.Time, cat Category, match MatchMode) (Chart, error) {
	cat, err := ParseCategory(string(cat))
	if err != nil {
		return Chart{}, err
	}
	def := breakdowns[cat]

	rec, ok := SelectNational(ds.National, day, match)
	if !ok {
		return noDataChart(), nil
	}

	labels := make([]string, len(def.Fields))
	values := make([]Number, len(def.Fields))
	for i, f := range def.Fields {
		v := rec.Field(f.Column)
		if f.Denominator != "" {
			v = Percent(v, rec.Field(f.Denominator))
		}
		if !v.Valid {
			return noDataChart(), nil
		}
		labels[i] = f.Label
		values[i] = v
	}
	return Chart{Title: def.Title, Labels: labels, Values: values}, nil
}

// Percent returns part/whole*100 rounded to two decimal places. A missing
// operand or a zero whole is missing.
func Percent(part, whole Number) Number {
	if !part.Valid || !whole.Valid || whole.Value == 0 {
		return Missing
	}
	pct := decimal.NewFromFloat(part.Value).
		Div(decimal.NewFromFloat(whole.Value)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	return Num(pct.InexactFloat64())
}

// TotalsQuery returns a national time series over the whole table.
func TotalsQuery(ds *Dataset, series TotalsSeries) (Chart, error) {
	if _, err := ParseTotalsSeries(string(series)); err != nil {
		return Chart{}, err
	}

	labels := totalsLabels(ds.National)
	pick := func(f func(NationalRecord) Number) []Number {
		out := make([]Number, len(ds.National))
		for i, r := range ds.National {
			out[i] = f(r)
		}
		return out
	}

	switch series {
	case SeriesDaily:
		daily := pick(func(r NationalRecord) Number { return r.DailyConfirmed })
		return Chart{
			Title:  "Daily Covid Cases",
			Labels: labels,
			Name:   "Known Cases",
			Values: daily,
			Overlays: []Series{
				{Name: "3 Day Rolling Avg.", Values: rollingMean(daily, 3)},
			},
		}, nil
	case SeriesActive:
		return Chart{
			Title:  "Estimate of Active Covid Cases",
			Labels: labels,
			Values: pick(func(r NationalRecord) Number { return r.EstimatedActive }),
		}, nil
	default:
		return Chart{
			Title:  "Total Covid Cases",
			Labels: labels,
			Values: pick(func(r NationalRecord) Number { return r.TotalConfirmed }),
		}, nil
	}
}

// totalsLabels uses the date part of each row, dropping the year when the
// whole table falls within one year.
func totalsLabels(rows []NationalRecord) []string {
	labels := make([]string, len(rows))
	year := ""
	sameYear := true
	for i, r := range rows {
		labels[i] = datePart(r.Date)
		y, _, found := strings.Cut(labels[i], "/")
		if !found || (year != "" && y != year) {
			sameYear = false
		}
		year = y
	}
	if !sameYear {
		return labels
	}
	for i := range labels {
		_, labels[i], _ = strings.Cut(labels[i], "/")
	}
	return labels
}
