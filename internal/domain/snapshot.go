package domain

import "time"

// SnapshotEvent announces a newly loaded dataset to downstream consumers.
type SnapshotEvent struct {
	DatasetID       string           `json:"dataset_id"`
	LoadedAt        time.Time        `json:"loaded_at"`
	Origins         map[Table]Origin `json:"origins"`
	CountyRows      int              `json:"county_rows"`
	NationalRows    int              `json:"national_rows"`
	RangeStart      string           `json:"range_start"`
	RangeEnd        string           `json:"range_end"`
	LatestDate      string           `json:"latest_date"`
	TotalConfirmed  Number           `json:"total_confirmed"`
	TotalDeaths     Number           `json:"total_deaths"`
	EstimatedActive Number           `json:"estimated_active"`
}

// NewSnapshotEvent summarises ds.
func NewSnapshotEvent(ds *Dataset) SnapshotEvent {
	s := ds.Summary()
	return SnapshotEvent{
		DatasetID:       ds.ID,
		LoadedAt:        ds.LoadedAt,
		Origins:         ds.Origins,
		CountyRows:      len(ds.County),
		NationalRows:    len(ds.National),
		RangeStart:      ds.Range.Start.Format(time.DateOnly),
		RangeEnd:        ds.Range.End.Format(time.DateOnly),
		LatestDate:      s.AsOf,
		TotalConfirmed:  s.TotalCases,
		TotalDeaths:     s.TotalDeaths,
		EstimatedActive: s.EstimatedActive,
	}
}
