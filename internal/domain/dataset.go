package domain

import (
	"fmt"
	"time"
)

// Dataset is the immutable data context every query reads from. It is built
// once per load; the loader fills Origins before the dataset is shared.
type Dataset struct {
	ID       string
	LoadedAt time.Time
	County   []CountyRecord
	National []NationalRecord
	Range    DateRange
	Origins  map[Table]Origin

	maxConfirmed float64 // over the whole county table, bounds the total map
}

// NewDataset derives estimated active cases and the county date range. The
// national slice is copied so the caller's records are left untouched.
func NewDataset(id string, loadedAt time.Time, county []CountyRecord, national []NationalRecord) (*Dataset, error) {
	if len(county) == 0 {
		return nil, fmt.Errorf("county table: %w", ErrEmptyTable)
	}
	if len(national) == 0 {
		return nil, fmt.Errorf("national table: %w", ErrEmptyTable)
	}

	rng, err := CountyDateRange(county)
	if err != nil {
		return nil, err
	}

	nat := make([]NationalRecord, len(national))
	copy(nat, national)
	totals := make([]Number, len(nat))
	for i := range nat {
		totals[i] = nat[i].TotalConfirmed
	}
	for i, a := range EstimateActiveCases(totals) {
		nat[i].EstimatedActive = a
	}

	ds := &Dataset{
		ID:       id,
		LoadedAt: loadedAt,
		County:   county,
		National: nat,
		Range:    rng,
		Origins:  make(map[Table]Origin, 2),
	}
	for _, rec := range county {
		ds.maxConfirmed = max(ds.maxConfirmed, maxValid(rec.Confirmed))
	}
	return ds, nil
}

// Latest returns the last national record.
func (ds *Dataset) Latest() NationalRecord {
	return ds.National[len(ds.National)-1]
}

// DateRange is the inclusive daily span of the county table.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange parses the first and last county timestamps. The span follows
// row order, so an unsorted table can produce an empty range.
func NewDateRange(first, last string) (DateRange, error) {
	start, err := ParseRecordDate(first)
	if err != nil {
		return DateRange{}, err
	}
	end, err := ParseRecordDate(last)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{Start: start, End: end}, nil
}

// CountyDateRange returns the span of a non-empty county table.
func CountyDateRange(county []CountyRecord) (DateRange, error) {
	if len(county) == 0 {
		return DateRange{}, fmt.Errorf("county table: %w", ErrEmptyTable)
	}
	rng, err := NewDateRange(county[0].TimeStamp, county[len(county)-1].TimeStamp)
	if err != nil {
		return DateRange{}, fmt.Errorf("county date range: %w", err)
	}
	return rng, nil
}

// Days returns every day in the range, oldest first.
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Contains reports whether day falls inside the range.
func (r DateRange) Contains(day time.Time) bool {
	return !day.Before(r.Start) && !day.After(r.End)
}

// Mark labels one slider position.
type Mark struct {
	Date  time.Time
	Label string
}

// Marks labels every nth day of the range, roughly ten marks in total.
func (r DateRange) Marks() []Mark {
	days := r.Days()
	nth := max(len(days)/10, 1)

	var marks []Mark
	for i, d := range days {
		if i%nth == 1%nth {
			marks = append(marks, Mark{Date: d, Label: d.Format("01-02")})
		}
	}
	return marks
}

// Summary is the headline card: latest cumulative figures.
type Summary struct {
	TotalCases      Number `json:"total_cases"`
	TotalDeaths     Number `json:"total_deaths"`
	EstimatedActive Number `json:"estimated_active"`
	AsOf            string `json:"as_of"`
}

// Summary reports the last national record.
func (ds *Dataset) Summary() Summary {
	latest := ds.Latest()
	asOf := latest.Date
	if len(asOf) > 10 {
		asOf = asOf[:10]
	}
	return Summary{
		TotalCases:      latest.TotalConfirmed,
		TotalDeaths:     latest.TotalDeaths,
		EstimatedActive: latest.EstimatedActive,
		AsOf:            asOf,
	}
}

// SelectedDateLabel is the caption shown under the date slider.
func SelectedDateLabel(day time.Time) string {
	return "Date Selected: " + day.Format("01/02")
}
