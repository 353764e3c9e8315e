// Package archive keeps the last good copy of each source table so the
// dashboard can start when the open data hub is unreachable.
package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/irl-covid-dashboard/internal/config"
	"github.com/couchcryptid/irl-covid-dashboard/internal/domain"
)

// ErrNotFound is returned by Get when no copy of the table has been stored.
var ErrNotFound = errors.New("archive: table not found")

// Store reads and writes raw CSV payloads by table.
type Store interface {
	Get(ctx context.Context, table domain.Table) ([]byte, error)
	Put(ctx context.Context, table domain.Table, data []byte) error
	Close() error
}

// ObjectName is the file name used for a table in every driver. The names
// match the files the HPSC publishes so a hand-downloaded copy can be dropped
// into the archive directory.
func ObjectName(table domain.Table) (string, error) {
	switch table {
	case domain.TableCounty:
		return "Covid19CountyStatisticsHPSCIreland.csv", nil
	case domain.TableNational:
		return "CovidStatisticsProfileHPSCIrelandOpenData.csv", nil
	default:
		return "", fmt.Errorf("archive: unknown table %q", table)
	}
}

// Open builds the store selected by ARCHIVE_DRIVER.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.ArchiveDriver {
	case config.ArchiveFile:
		return NewFileStore(cfg.ArchiveDir)
	case config.ArchiveS3:
		return NewS3Store(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
			Prefix:    cfg.ArchivePrefix,
		})
	case config.ArchiveRedis:
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.ArchivePrefix), nil
	default:
		return nil, fmt.Errorf("archive: unknown driver %q", cfg.ArchiveDriver)
	}
}
