// Package ingest builds a Dataset from the two HPSC tables, preferring the
// open data hub and falling back to the archived copy of each table.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/irl-covid-dashboard/internal/domain"
	"github.com/couchcryptid/irl-covid-dashboard/internal/observability"
)

// Fetcher downloads a remote table.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Archive holds the last good copy of each table.
type Archive interface {
	Get(ctx context.Context, table domain.Table) ([]byte, error)
	Put(ctx context.Context, table domain.Table, data []byte) error
}

// Sources are the remote locations of the two tables.
type Sources struct {
	CountyURL   string
	NationalURL string
}

// Loader loads a complete dataset.
type Loader struct {
	fetcher Fetcher
	archive Archive
	sources Sources
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
	newID   func() string
}

// NewLoader creates a loader.
func NewLoader(fetcher Fetcher, archive Archive, sources Sources, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		fetcher: fetcher,
		archive: archive,
		sources: sources,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
		newID:   uuid.NewString,
	}
}

// Load reads both tables and derives the dataset. Each table is tried
// remotely first; a fetch or parse failure falls back to the archive. A
// table that fails both ways fails the load.
func (l *Loader) Load(ctx context.Context) (*domain.Dataset, error) {
	county, countyOrigin, countyRaw, err := loadTable(ctx, l, domain.TableCounty, l.sources.CountyURL, domain.ParseCountyCSV)
	if err != nil {
		return nil, err
	}
	national, nationalOrigin, nationalRaw, err := loadTable(ctx, l, domain.TableNational, l.sources.NationalURL, domain.ParseNationalCSV)
	if err != nil {
		return nil, err
	}

	ds, err := domain.NewDataset(l.newID(), l.clock.Now().UTC(), county, national)
	if err != nil {
		return nil, fmt.Errorf("build dataset: %w", err)
	}
	ds.Origins[domain.TableCounty] = countyOrigin
	ds.Origins[domain.TableNational] = nationalOrigin

	// Only payloads that produced a dataset replace the archived copies.
	l.writeThrough(ctx, domain.TableCounty, countyRaw)
	l.writeThrough(ctx, domain.TableNational, nationalRaw)

	l.metrics.DatasetRows.WithLabelValues(string(domain.TableCounty)).Set(float64(len(ds.County)))
	l.metrics.DatasetRows.WithLabelValues(string(domain.TableNational)).Set(float64(len(ds.National)))
	l.metrics.LastLoadTime.Set(float64(ds.LoadedAt.Unix()))

	l.logger.Info("dataset loaded",
		"dataset_id", ds.ID,
		"county_rows", len(ds.County),
		"county_origin", countyOrigin,
		"national_rows", len(ds.National),
		"national_origin", nationalOrigin,
		"range_start", ds.Range.Start.Format("2006-01-02"),
		"range_end", ds.Range.End.Format("2006-01-02"),
	)
	return ds, nil
}

// loadTable returns the parsed rows, their origin and, for a remote load,
// the raw payload to write through once the dataset is built.
func loadTable[T any](ctx context.Context, l *Loader, table domain.Table, url string, parse func(io.Reader) ([]T, error)) ([]T, domain.Origin, []byte, error) {
	rows, raw, remoteErr := fetchRemote(ctx, l, table, url, parse)
	if remoteErr == nil {
		return rows, domain.OriginRemote, raw, nil
	}
	l.loaded(table, domain.OriginRemote, remoteErr)
	if ctx.Err() != nil {
		return nil, "", nil, fmt.Errorf("%s table: %w", table, ctx.Err())
	}
	l.logger.Warn("remote table unavailable, using archive", "table", table, "url", url, "error", remoteErr)

	data, err := l.archive.Get(ctx, table)
	if err == nil {
		rows, err = parse(bytes.NewReader(data))
	}
	l.loaded(table, domain.OriginArchive, err)
	if err != nil {
		return nil, "", nil, fmt.Errorf("%s table: remote: %w; archive: %w", table, remoteErr, err)
	}
	return rows, domain.OriginArchive, nil, nil
}

// fetchRemote downloads and parses one table.
func fetchRemote[T any](ctx context.Context, l *Loader, table domain.Table, url string, parse func(io.Reader) ([]T, error)) ([]T, []byte, error) {
	if url == "" {
		return nil, nil, errNoURL
	}
	start := l.clock.Now()
	data, err := l.fetcher.Fetch(ctx, url)
	l.metrics.FetchDuration.WithLabelValues(string(table)).Observe(l.clock.Since(start).Seconds())
	if err != nil {
		return nil, nil, err
	}
	rows, err := parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("parse remote payload: %w", err)
	}
	l.loaded(table, domain.OriginRemote, nil)
	return rows, data, nil
}

// writeThrough stores a remote payload as the archived copy of table. A
// failed write is logged and counted but does not fail the load.
func (l *Loader) writeThrough(ctx context.Context, table domain.Table, data []byte) {
	if data == nil {
		return
	}
	if err := l.archive.Put(ctx, table, data); err != nil {
		l.metrics.ArchiveWrites.WithLabelValues(string(table), "error").Inc()
		l.logger.Warn("archive write failed", "table", table, "error", err)
		return
	}
	l.metrics.ArchiveWrites.WithLabelValues(string(table), "success").Inc()
}

var errNoURL = errors.New("no remote url configured")

func (l *Loader) loaded(table domain.Table, origin domain.Origin, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	l.metrics.DatasetLoads.WithLabelValues(string(table), string(origin), outcome).Inc()
}
