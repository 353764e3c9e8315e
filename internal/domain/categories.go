package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownCategory is returned for a chart selector outside the fixed set.
var ErrUnknownCategory = errors.New("unknown category")

// Option is a selectable value with its display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Category selects a demographic breakdown of the national table.
type Category string

const (
	CategoryTransmission Category = "transmission"
	CategoryGender       Category = "gender"
	CategoryCaseAge      Category = "caseAge"
	CategoryHospitalAge  Category = "hospitalAge"
	CategoryHospitalOdds Category = "hospitalOdds"
)

// breakdownField is one bar of a breakdown chart. When Denominator is set
// the bar is Column as a percentage of Denominator.
type breakdownField struct {
	Column      string
	Denominator string
	Label       string
}

type breakdown struct {
	Label  string
	Title  string
	Fields []breakdownField
}

// ageLabels pairs with the hospitalised age columns. The source publishes
// the youngest hospitalised band as HospitalisedAged5 and the dashboard has
// always labelled it "Aged 1-4".
var ageLabels = []string{
	"Aged 1-4",
	"Aged 5-14",
	"Aged 15-24",
	"Aged 25-34",
	"Aged 35-44",
	"Aged 45-54",
	"Aged 55-64",
	"Aged 65+",
}

var hospitalisedColumns = []string{
	"HospitalisedAged5",
	"HospitalisedAged5to14",
	"HospitalisedAged15to24",
	"HospitalisedAged25to34",
	"HospitalisedAged35to44",
	"HospitalisedAged45to54",
	"HospitalisedAged55to64",
	"HospitalisedAged65up",
}

var caseAgeColumns = []string{
	"Aged1to4",
	"Aged5to14",
	"Aged15to24",
	"Aged25to34",
	"Aged35to44",
	"Aged45to54",
	"Aged55to64",
	"Aged65up",
}

var categoryOrder = []Category{
	CategoryTransmission,
	CategoryGender,
	CategoryCaseAge,
	CategoryHospitalAge,
	CategoryHospitalOdds,
}

var breakdowns = map[Category]breakdown{
	CategoryTransmission: {
		Label: "Transmission",
		Title: "% Known Mode of Transmission",
		Fields: []breakdownField{
			{Column: "CommunityTransmission", Label: "Community"},
			{Column: "CloseContact", Label: "Close Contact"},
			{Column: "TravelAbroad", Label: "Travel Abroad"},
		},
	},
	CategoryGender: {
		Label: "Gender",
		Title: "Gender",
		Fields: []breakdownField{
			{Column: "Male", Label: "Male"},
			{Column: "Female", Label: "Female"},
			{Column: "Unknown", Label: "Unknown"},
		},
	},
	CategoryCaseAge: {
		Label: "Cases Age Profile",
		Title: "Case Age Profile",
		Fields: append([]breakdownField{{Column: "Aged1", Label: "Aged >1"}},
			zipFields(caseAgeColumns, nil, ageLabels)...),
	},
	CategoryHospitalAge: {
		Label:  "Hospitalization Age Profile",
		Title:  "Hospitalization Age Profile",
		Fields: zipFields(hospitalisedColumns, nil, ageLabels),
	},
	CategoryHospitalOdds: {
		Label:  "Likelihood of Hospitalization",
		Title:  "% Likelihood of Hospitalization by Age",
		Fields: zipFields(hospitalisedColumns, caseAgeColumns, ageLabels),
	},
}

func zipFields(columns, denominators, labels []string) []breakdownField {
	fields := make([]breakdownField, len(columns))
	for i, col := range columns {
		fields[i] = breakdownField{Column: col, Label: labels[i]}
		if denominators != nil {
			fields[i].Denominator = denominators[i]
		}
	}
	return fields
}

// ParseCategory validates a breakdown selector. Empty selects transmission.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryTransmission, nil
	}
	c := Category(s)
	if _, ok := breakdowns[c]; !ok {
		return "", fmt.Errorf("%w: breakdown %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// CategoryOptions lists the breakdown selectors in display order.
func CategoryOptions() []Option {
	opts := make([]Option, len(categoryOrder))
	for i, c := range categoryOrder {
		opts[i] = Option{Value: string(c), Label: breakdowns[c].Label}
	}
	return opts
}

// breakdownColumns returns every national column referenced by a category.
func breakdownColumns() []string {
	seen := make(map[string]bool)
	var cols []string
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	for _, c := range categoryOrder {
		for _, f := range breakdowns[c].Fields {
			add(f.Column)
			add(f.Denominator)
		}
	}
	return cols
}

// MapMode selects the value plotted on the county map.
type MapMode string

const (
	MapTotal        MapMode = "total"
	MapProportional MapMode = "proportional"
	MapPer100k      MapMode = "per100k"
)

// ParseMapMode validates a map selector. Empty selects total.
func ParseMapMode(s string) (MapMode, error) {
	switch m := MapMode(s); m {
	case "":
		return MapTotal, nil
	case MapTotal, MapProportional, MapPer100k:
		return m, nil
	default:
		return "", fmt.Errorf("%w: map mode %q", ErrUnknownCategory, s)
	}
}

// MapModeOptions lists the map selectors in display order.
func MapModeOptions() []Option {
	return []Option{
		{Value: string(MapTotal), Label: "Total Infections"},
		{Value: string(MapProportional), Label: "Proportional Infections"},
		{Value: string(MapPer100k), Label: "Infections per 100,000"},
	}
}

// TotalsSeries selects the national time series chart.
type TotalsSeries string

const (
	SeriesTotal  TotalsSeries = "total"
	SeriesDaily  TotalsSeries = "daily"
	SeriesActive TotalsSeries = "active"
)

// ParseTotalsSeries validates a totals selector. Empty selects total.
func ParseTotalsSeries(s string) (TotalsSeries, error) {
	switch ts := TotalsSeries(s); ts {
	case "":
		return SeriesTotal, nil
	case SeriesTotal, SeriesDaily, SeriesActive:
		return ts, nil
	default:
		return "", fmt.Errorf("%w: totals series %q", ErrUnknownCategory, s)
	}
}

// TotalsSeriesOptions lists the totals selectors in display order.
func TotalsSeriesOptions() []Option {
	return []Option{
		{Value: string(SeriesTotal), Label: "Total Confirmed Cases"},
		{Value: string(SeriesDaily), Label: "Daily Confirmed Cases"},
		{Value: string(SeriesActive), Label: "Estimate of Active Cases"},
	}
}
