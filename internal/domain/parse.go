package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// Column names in the HPSC tables.
const (
	colCountyName     = "CountyName"
	colTimeStamp      = "TimeStamp"
	colConfirmed      = "ConfirmedCovidCases"
	colPopulation     = "PopulationCensus16"
	colPer100k        = "PopulationProportionCovidCases"
	colLat            = "Lat"
	colLong           = "Long"
	colDate           = "Date"
	colTotalConfirmed = "TotalConfirmedCovidCases"
	colTotalDeaths    = "TotalCovidDeaths"
)

var (
	countyColumns   = []string{colCountyName, colTimeStamp, colConfirmed, colPopulation}
	nationalColumns = []string{colDate, colConfirmed, colTotalConfirmed, colTotalDeaths}
)

// ErrEmptyTable is returned when a table has a header but no rows.
var ErrEmptyTable = errors.New("table has no rows")

// header maps column names to indexes.
type header map[string]int

func readHeader(r *csv.Reader, required []string) (header, error) {
	names, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	h := make(header, len(names))
	for i, name := range names {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		h[strings.TrimSpace(name)] = i
	}
	for _, col := range required {
		if _, ok := h[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	return h, nil
}

func (h header) cell(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func (h header) number(row []string, col string) (Number, error) {
	n, err := ParseNumber(h.cell(row, col))
	if err != nil {
		return Missing, fmt.Errorf("column %s: %w", col, err)
	}
	return n, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr
}

// ParseCountyCSV reads the county table. Row order is preserved.
func ParseCountyCSV(r io.Reader) ([]CountyRecord, error) {
	cr := newCSVReader(r)
	h, err := readHeader(cr, countyColumns)
	if err != nil {
		return nil, fmt.Errorf("county table: %w", err)
	}

	var records []CountyRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("county table: %w", err)
		}
		rec, err := parseCountyRow(h, row)
		if err != nil {
			return nil, fmt.Errorf("county table line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("county table: %w", ErrEmptyTable)
	}
	// The slider range comes from the first and last rows; a table whose
	// range cannot be read is rejected here so the loader falls back.
	if _, err := CountyDateRange(records); err != nil {
		return nil, err
	}
	return records, nil
}

func parseCountyRow(h header, row []string) (CountyRecord, error) {
	rec := CountyRecord{
		CountyName: strings.TrimSpace(h.cell(row, colCountyName)),
		TimeStamp:  strings.TrimSpace(h.cell(row, colTimeStamp)),
	}

	pop, err := parsePopulation(h.cell(row, colPopulation))
	if err != nil {
		return CountyRecord{}, err
	}
	rec.Population = pop

	if rec.Confirmed, err = h.number(row, colConfirmed); err != nil {
		return CountyRecord{}, err
	}
	if rec.Per100k, err = h.number(row, colPer100k); err != nil {
		return CountyRecord{}, err
	}
	if rec.Lat, err = h.number(row, colLat); err != nil {
		return CountyRecord{}, err
	}
	if rec.Long, err = h.number(row, colLong); err != nil {
		return CountyRecord{}, err
	}
	return rec, nil
}

// parsePopulation accepts integral values, including "12345.0" as written by
// some exports, and rejects anything non-positive or fractional.
func parsePopulation(s string) (int64, error) {
	n, err := ParseNumber(s)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", colPopulation, err)
	}
	if !n.Valid || n.Value <= 0 {
		return 0, fmt.Errorf("column %s: population must be positive, got %q", colPopulation, s)
	}
	if n.Value != math.Trunc(n.Value) || n.Value > math.MaxInt64 {
		return 0, fmt.Errorf("column %s: population must be a whole number, got %q", colPopulation, s)
	}
	return int64(n.Value), nil
}

// ParseNationalCSV reads the national table. The breakdown columns used by
// the chart categories are kept in Fields; other columns are ignored.
func ParseNationalCSV(r io.Reader) ([]NationalRecord, error) {
	cr := newCSVReader(r)
	h, err := readHeader(cr, nationalColumns)
	if err != nil {
		return nil, fmt.Errorf("national table: %w", err)
	}
	fields := breakdownColumns()

	var records []NationalRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("national table: %w", err)
		}
		rec, err := parseNationalRow(h, row, fields)
		if err != nil {
			return nil, fmt.Errorf("national table line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("national table: %w", ErrEmptyTable)
	}
	return records, nil
}

func parseNationalRow(h header, row []string, fields []string) (NationalRecord, error) {
	rec := NationalRecord{
		Date:   strings.TrimSpace(h.cell(row, colDate)),
		Fields: make(map[string]Number, len(fields)),
	}

	var err error
	if rec.DailyConfirmed, err = h.number(row, colConfirmed); err != nil {
		return NationalRecord{}, err
	}
	if rec.TotalConfirmed, err = h.number(row, colTotalConfirmed); err != nil {
		return NationalRecord{}, err
	}
	if rec.TotalDeaths, err = h.number(row, colTotalDeaths); err != nil {
		return NationalRecord{}, err
	}

	// Breakdown cells that fail to parse count as missing: a bad demographic
	// cell only blanks the chart that uses it.
	for _, col := range fields {
		n, err := ParseNumber(h.cell(row, col))
		if err != nil {
			n = Missing
		}
		rec.Fields[col] = n
	}
	return rec, nil
}
