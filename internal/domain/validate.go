package domain

import "fmt"

// Violation is a broken data assumption found by CheckCounty or CheckNational.
// The dashboard tolerates these; they are reported, not enforced.
type Violation struct {
	Table   Table  `json:"table"`
	Line    int    `json:"line"` // 1-based CSV line, header is line 1
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s line %d %s: %s", v.Table, v.Line, v.Field, v.Message)
}

// CheckNational reports cumulative totals that decrease from one row to the
// next and breakdown counts that exceed the day's confirmed total.
func CheckNational(rows []NationalRecord) []Violation {
	var out []Violation
	for i, r := range rows {
		line := i + 2
		if i > 0 {
			prev := rows[i-1]
			if decreased(prev.TotalConfirmed, r.TotalConfirmed) {
				out = append(out, Violation{TableNational, line, colTotalConfirmed,
					fmt.Sprintf("decreased from %s to %s", prev.TotalConfirmed, r.TotalConfirmed)})
			}
			if decreased(prev.TotalDeaths, r.TotalDeaths) {
				out = append(out, Violation{TableNational, line, colTotalDeaths,
					fmt.Sprintf("decreased from %s to %s", prev.TotalDeaths, r.TotalDeaths)})
			}
		}
		if !r.TotalConfirmed.Valid {
			continue
		}
		for _, col := range countColumns() {
			v := r.Field(col)
			if v.Valid && v.Value > r.TotalConfirmed.Value {
				out = append(out, Violation{TableNational, line, col,
					fmt.Sprintf("%s exceeds total confirmed %s", v, r.TotalConfirmed)})
			}
		}
	}
	return out
}

// CheckCounty reports per-county cumulative cases that decrease between
// successive rows and rows with no county name.
func CheckCounty(rows []CountyRecord) []Violation {
	var out []Violation
	last := make(map[string]Number)
	for i, r := range rows {
		line := i + 2
		if r.CountyName == "" {
			out = append(out, Violation{TableCounty, line, colCountyName, "empty county name"})
			continue
		}
		if prev, ok := last[r.CountyName]; ok && decreased(prev, r.Confirmed) {
			out = append(out, Violation{TableCounty, line, colConfirmed,
				fmt.Sprintf("%s decreased from %s to %s", r.CountyName, prev, r.Confirmed)})
		}
		if r.Confirmed.Valid {
			last[r.CountyName] = r.Confirmed
		}
	}
	return out
}

func decreased(prev, cur Number) bool {
	return prev.Valid && cur.Valid && cur.Value < prev.Value
}

// countColumns are the breakdown columns holding case counts. Transmission
// columns are percentages and are left out.
func countColumns() []string {
	var cols []string
	for _, c := range []Category{CategoryGender, CategoryCaseAge, CategoryHospitalAge} {
		for _, f := range breakdowns[c].Fields {
			cols = append(cols, f.Column)
		}
	}
	return cols
}
