package domain

import (
	"fmt"
	"strings"
	"time"
)

// Table identifies one of the two source tables.
type Table string

const (
	TableCounty   Table = "county"
	TableNational Table = "national"
)

// Origin records where a table's payload came from.
type Origin string

const (
	OriginRemote  Origin = "remote"
	OriginArchive Origin = "archive"
)

// CountyRecord is one county on one day.
type CountyRecord struct {
	CountyName string `json:"county"`
	TimeStamp  string `json:"timestamp"`
	Confirmed  Number `json:"confirmed"`
	Population int64  `json:"population"`
	// Per100k is the source's own PopulationProportionCovidCases figure.
	Per100k Number `json:"per_100k"`
	Lat     Number `json:"lat"`
	Long    Number `json:"long"`
}

// NationalRecord is the national profile for one day.
type NationalRecord struct {
	Date            string            `json:"date"`
	DailyConfirmed  Number            `json:"daily_confirmed"`
	TotalConfirmed  Number            `json:"total_confirmed"`
	TotalDeaths     Number            `json:"total_deaths"`
	EstimatedActive Number            `json:"estimated_active"`
	Fields          map[string]Number `json:"fields,omitempty"` // breakdown columns by source name
}

// Field returns a breakdown column; absent columns are missing.
func (r NationalRecord) Field(column string) Number {
	return r.Fields[column]
}

var recordDateLayouts = []string{
	"2006/01/02 15:04:05-07",
	"2006/01/02 15:04:05",
	"2006/01/02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseRecordDate parses a source date string and returns its calendar day
// as written, at midnight UTC.
func ParseRecordDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range recordDateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// datePart strips the time-of-day suffix from a source date string.
func datePart(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " T"); i >= 0 {
		return s[:i]
	}
	return s
}
