package domain

import (
	"fmt"
	"strings"
	"time"
)

// MatchMode controls how a requested day is matched against raw date strings.
type MatchMode string

const (
	// MatchSubstring tests whether the raw date contains the formatted day.
	MatchSubstring MatchMode = "substring"
	// MatchExact parses the raw date and compares calendar days.
	MatchExact MatchMode = "exact"
)

const (
	countyDatePattern   = "2006/01/02"
	nationalDatePattern = "01/02"
)

// ParseMatchMode validates a match mode. Empty selects substring.
func ParseMatchMode(s string) (MatchMode, error) {
	switch m := MatchMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return MatchSubstring, nil
	case MatchSubstring, MatchExact:
		return m, nil
	default:
		return "", fmt.Errorf("invalid date match mode %q", s)
	}
}

func matchDate(raw string, day time.Time, pattern string, mode MatchMode) bool {
	if mode == MatchExact {
		d, err := ParseRecordDate(raw)
		if err != nil {
			return false
		}
		y1, m1, d1 := d.Date()
		y2, m2, d2 := day.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	}
	return strings.Contains(raw, day.Format(pattern))
}

// SelectCounty returns every county row whose TimeStamp matches day, in
// table order. An empty result is the no-data outcome.
func SelectCounty(rows []CountyRecord, day time.Time, mode MatchMode) []CountyRecord {
	var out []CountyRecord
	for _, r := range rows {
		if matchDate(r.TimeStamp, day, countyDatePattern, mode) {
			out = append(out, r)
		}
	}
	return out
}

// SelectNational returns the national row for day. When several rows match,
// the last one in table order wins. ok is false when nothing matches.
func SelectNational(rows []NationalRecord, day time.Time, mode MatchMode) (rec NationalRecord, ok bool) {
	for _, r := range rows {
		if matchDate(r.Date, day, nationalDatePattern, mode) {
			rec, ok = r, true
		}
	}
	return rec, ok
}
