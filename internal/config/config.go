package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const (
	defaultCountyURL   = "http://opendata-geohive.hub.arcgis.com/datasets/d9be85b30d7748b5b7c09450b8aede63_0.csv"
	defaultNationalURL = "http://opendata-geohive.hub.arcgis.com/datasets/d8eb52d56273413b84b0187a4e9117be_0.csv"
)

// Archive drivers accepted by ARCHIVE_DRIVER.
const (
	ArchiveFile  = "file"
	ArchiveS3    = "s3"
	ArchiveRedis = "redis"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	CountyURL    string
	NationalURL  string
	FetchTimeout time.Duration

	// Archive holds the last good copy of each table.
	ArchiveDriver string
	ArchiveDir    string
	ArchivePrefix string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3PathStyle   bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GeoJSONPath     string
	RefreshInterval time.Duration
	DateMatch       string
	QueryCacheSize  int

	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSnapshotTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	if fetchTimeout <= 0 {
		return nil, errors.New("invalid FETCH_TIMEOUT")
	}

	refreshInterval, err := parseDuration("REFRESH_INTERVAL", "0s")
	if err != nil {
		return nil, err
	}
	if refreshInterval < 0 {
		return nil, errors.New("invalid REFRESH_INTERVAL")
	}

	redisDB, err := parseInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("QUERY_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}
	if cacheSize <= 0 {
		return nil, errors.New("invalid QUERY_CACHE_SIZE")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8050"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CountyURL:    sharedcfg.EnvOrDefault("COUNTY_CSV_URL", defaultCountyURL),
		NationalURL:  sharedcfg.EnvOrDefault("NATIONAL_CSV_URL", defaultNationalURL),
		FetchTimeout: fetchTimeout,

		ArchiveDriver: strings.ToLower(sharedcfg.EnvOrDefault("ARCHIVE_DRIVER", ArchiveFile)),
		ArchiveDir:    sharedcfg.EnvOrDefault("ARCHIVE_DIR", "data"),
		ArchivePrefix: sharedcfg.EnvOrDefault("ARCHIVE_PREFIX", "irl-covid/"),
		S3Bucket:      os.Getenv("ARCHIVE_S3_BUCKET"),
		S3Region:      sharedcfg.EnvOrDefault("ARCHIVE_S3_REGION", "eu-west-1"),
		S3Endpoint:    os.Getenv("ARCHIVE_S3_ENDPOINT"),
		S3PathStyle:   os.Getenv("ARCHIVE_S3_PATH_STYLE") == "true",
		RedisAddr:     sharedcfg.EnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		GeoJSONPath:     sharedcfg.EnvOrDefault("GEOJSON_PATH", "data/ireland_counties.geojson"),
		RefreshInterval: refreshInterval,
		DateMatch:       strings.ToLower(sharedcfg.EnvOrDefault("DATE_MATCH", "substring")),
		QueryCacheSize:  cacheSize,

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSnapshotTopic: sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_TOPIC", "covid-dataset-snapshots"),
	}

	switch cfg.ArchiveDriver {
	case ArchiveFile:
		if cfg.ArchiveDir == "" {
			return nil, errors.New("ARCHIVE_DIR is required for the file archive")
		}
	case ArchiveS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("ARCHIVE_S3_BUCKET is required for the s3 archive")
		}
	case ArchiveRedis:
		if cfg.RedisAddr == "" {
			return nil, errors.New("REDIS_ADDR is required for the redis archive")
		}
	default:
		return nil, fmt.Errorf("invalid ARCHIVE_DRIVER %q", cfg.ArchiveDriver)
	}

	if cfg.DateMatch != "substring" && cfg.DateMatch != "exact" {
		return nil, fmt.Errorf("invalid DATE_MATCH %q", cfg.DateMatch)
	}
	if cfg.CountyURL == "" || cfg.NationalURL == "" {
		return nil, errors.New("COUNTY_CSV_URL and NATIONAL_CSV_URL are required")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSnapshotTopic == "" {
			return nil, errors.New("KAFKA_SNAPSHOT_TOPIC is required")
		}
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
