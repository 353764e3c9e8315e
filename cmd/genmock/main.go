// Command genmock trims the published HPSC county and national CSVs to a
// date window so they can be checked in as test fixtures or served from the
// archive directory. Rows are copied verbatim; only the window changes.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -county  downloads/Covid19CountyStatisticsHPSCIreland.csv \
//	  -national downloads/CovidStatisticsProfileHPSCIrelandOpenData.csv \
//	  -from 2020-03-01 -to 2020-05-31 \
//	  -out data
package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/irl-covid-dashboard/internal/adapter/archive"
	"github.com/couchcryptid/irl-covid-dashboard/internal/domain"
)

type tableDef struct {
	table   domain.Table
	dateCol string
	parse   func(io.Reader) error
}

var tables = []tableDef{
	{
		table:   domain.TableCounty,
		dateCol: "TimeStamp",
		parse: func(r io.Reader) error {
			_, err := domain.ParseCountyCSV(r)
			return err
		},
	},
	{
		table:   domain.TableNational,
		dateCol: "Date",
		parse: func(r io.Reader) error {
			_, err := domain.ParseNationalCSV(r)
			return err
		},
	},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	countyPath := flag.String("county", "", "path to the county CSV")
	nationalPath := flag.String("national", "", "path to the national CSV")
	from := flag.String("from", "", "first day to keep, YYYY-MM-DD")
	to := flag.String("to", "", "last day to keep, YYYY-MM-DD")
	outDir := flag.String("out", "data", "output directory")
	flag.Parse()

	if *countyPath == "" || *nationalPath == "" || *from == "" || *to == "" {
		flag.Usage()
		return errors.New("missing required flags: -county, -national, -from, -to")
	}

	window, err := newWindow(*from, *to)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	inputs := map[domain.Table]string{
		domain.TableCounty:   *countyPath,
		domain.TableNational: *nationalPath,
	}
	for _, def := range tables {
		name, err := archive.ObjectName(def.table)
		if err != nil {
			return err
		}
		out := filepath.Join(*outDir, name)
		n, err := trimFile(inputs[def.table], out, def, window)
		if err != nil {
			return fmt.Errorf("%s table: %w", def.table, err)
		}
		log.Printf("%s: kept %d rows -> %s", def.table, n, out)
	}
	return nil
}

// window is an inclusive range of calendar days.
type window struct {
	from, to time.Time
}

func newWindow(from, to string) (window, error) {
	f, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return window{}, fmt.Errorf("-from: %w", err)
	}
	t, err := time.Parse(time.DateOnly, to)
	if err != nil {
		return window{}, fmt.Errorf("-to: %w", err)
	}
	if t.Before(f) {
		return window{}, fmt.Errorf("-to %s is before -from %s", to, from)
	}
	return window{from: f, to: t}, nil
}

func (w window) contains(day time.Time) bool {
	return !day.Before(w.from) && !day.After(w.to)
}

func trimFile(in, out string, def tableDef, w window) (int, error) {
	src, err := os.Open(in)
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer src.Close()

	var buf bytes.Buffer
	n, err := trim(src, &buf, def.dateCol, w)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errors.New("no rows fall inside the window")
	}
	// The trimmed table must still load.
	if err := def.parse(bytes.NewReader(buf.Bytes())); err != nil {
		return 0, fmt.Errorf("trimmed table does not parse: %w", err)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("write: %w", err)
	}
	return n, nil
}

// trim copies the header and every row whose dateCol falls inside w,
// returning the number of data rows kept.
func trim(r io.Reader, out io.Writer, dateCol string, w window) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	col := slices.Index(header, dateCol)
	if col < 0 {
		return 0, fmt.Errorf("missing column %q", dateCol)
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(header); err != nil {
		return 0, err
	}

	kept := 0
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		if col >= len(row) {
			continue
		}
		day, err := domain.ParseRecordDate(row[col])
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}
		if !w.contains(day) {
			continue
		}
		if err := writer.Write(row); err != nil {
			return 0, err
		}
		kept++
	}
	writer.Flush()
	return kept, writer.Error()
}
