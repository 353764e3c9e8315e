package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type nationalRow struct {
	date, daily, total, deaths string
	fields                     map[string]string
}

func nationalCSV(t *testing.T, rows []nationalRow) string {
	t.Helper()
	cols := breakdownColumns()

	var b strings.Builder
	b.WriteString("X,Y,Date,ConfirmedCovidCases,TotalConfirmedCovidCases,ConfirmedCovidDeaths,TotalCovidDeaths")
	for _, c := range cols {
		b.WriteString("," + c)
	}
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString("-7.69,53.19," + r.date + "," + r.daily + "," + r.total + ",," + r.deaths)
		for _, c := range cols {
			b.WriteString("," + r.fields[c])
		}
		b.WriteString("\n")
	}
	return b.String()
}

// fullFields returns a breakdown row where every column is present.
func fullFields(scale float64) map[string]Number {
	fields := make(map[string]Number)
	for i, c := range breakdownColumns() {
		fields[c] = Num(scale * float64(i+1))
	}
	return fields
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func county(name, ts string, confirmed float64, population int64) CountyRecord {
	return CountyRecord{CountyName: name, TimeStamp: ts, Confirmed: Num(confirmed), Population: population}
}

func mustDataset(t *testing.T, county []CountyRecord, national []NationalRecord) *Dataset {
	t.Helper()
	ds, err := NewDataset("test", time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), county, national)
	require.NoError(t, err)
	return ds
}

func defaultCounty() []CountyRecord {
	return []CountyRecord{
		county("Carlow", "2020/03/01 00:00:00+00", 10, 56932),
		county("Dublin", "2020/03/01 00:00:00+00", 200, 1347359),
		county("Carlow", "2020/03/02 00:00:00+00", 50, 10000),
		county("Dublin", "2020/03/02 00:00:00+00", 400, 1347359),
	}
}
