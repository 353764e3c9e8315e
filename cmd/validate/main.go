// Command validate loads the county and national CSVs the way the dashboard
// does and reports broken data assumptions: cumulative totals that fall,
// breakdown counts above the day's total, county days with no national row,
// and county names without a map boundary.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -county data/county.csv \
//	  -national data/national.csv \
//	  -geojson data/ireland_counties.geojson
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/irl-covid-dashboard/internal/dashboard"
	"github.com/couchcryptid/irl-covid-dashboard/internal/domain"
)

// maxListed caps the errors printed per phase.
const maxListed = 25

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	countyPath := flag.String("county", "", "path to the county CSV")
	nationalPath := flag.String("national", "", "path to the national CSV")
	geoPath := flag.String("geojson", "", "optional path to the county boundaries")
	flag.Parse()

	if *countyPath == "" || *nationalPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(os.Stdout, *countyPath, *nationalPath, *geoPath); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, countyPath, nationalPath, geoPath string) int {
	fmt.Fprintln(w, "=== COVID-19 Dataset Validation ===")
	fmt.Fprintln(w)

	county, err := loadTable(countyPath, domain.ParseCountyCSV)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load county table: %v\n", err)
		return 1
	}
	national, err := loadTable(nationalPath, domain.ParseNationalCSV)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load national table: %v\n", err)
		return 1
	}

	ds, err := domain.NewDataset(uuid.NewString(), time.Now().UTC(), county, national)
	if err != nil {
		fmt.Fprintf(w, "FATAL: build dataset: %v\n", err)
		return 1
	}

	phases := []*phase{
		violations("County cumulative counts", domain.CheckCounty(county)),
		violations("National totals and breakdowns", domain.CheckNational(national)),
		validateDateAlignment(ds),
	}
	if geoPath != "" {
		phases = append(phases, validateBoundaries(ds, geoPath))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	sum := ds.Summary()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d county, %d national\n", len(county), len(national))
	fmt.Fprintf(w, "Range:   %s to %s\n", ds.Range.Start.Format(time.DateOnly), ds.Range.End.Format(time.DateOnly))
	fmt.Fprintf(w, "Latest:  %s cases, %s deaths, %s estimated active (as of %s)\n",
		sum.TotalCases, sum.TotalDeaths, sum.EstimatedActive, sum.AsOf)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxListed {
				fmt.Fprintf(w, "  ... %d more\n", len(p.errors)-maxListed)
				break
			}
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

func loadTable[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f)
}

func violations(name string, vs []domain.Violation) *phase {
	p := &phase{name: name}
	for _, v := range vs {
		p.errorf("%s", v)
	}
	return p
}

// validateDateAlignment checks that every day on the slider has a national
// row, so the breakdown charts have something to show.
func validateDateAlignment(ds *domain.Dataset) *phase {
	p := &phase{name: "County days present in national table"}
	for _, day := range ds.Range.Days() {
		if _, ok := domain.SelectNational(ds.National, day, domain.MatchExact); !ok {
			p.errorf("%s: no national row", day.Format(time.DateOnly))
		}
	}
	return p
}

func validateBoundaries(ds *domain.Dataset, path string) *phase {
	p := &phase{name: "County names match boundaries"}
	geo, err := dashboard.LoadGeoJSON(path)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	noFeature, noRows := geo.Unmatched(ds)
	for _, name := range noFeature {
		p.errorf("%s: no boundary feature", name)
	}
	for _, name := range noRows {
		p.errorf("%s: boundary has no county rows", name)
	}
	return p
}
