package core

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"numatage/internal/blob"
)

// Storage drivers for run records.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Metrics backends.
const (
	MetricsNone       = "none"
	MetricsExpvar     = "expvar"
	MetricsPrometheus = "prometheus"
)

// Config describes how a Service is assembled.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Blob    blob.Config   `yaml:"blob"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// StorageConfig selects the run store.
type StorageConfig struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// LoggingConfig selects the zap preset and level.
type LoggingConfig struct {
	Mode  string `yaml:"mode"`
	Level string `yaml:"level"`
}

// MetricsConfig selects the metrics backend.
type MetricsConfig struct {
	Backend    string `yaml:"backend"`
	ExpvarName string `yaml:"expvar_name"`
}

// DefaultConfig keeps everything in memory with no artifact export.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{Driver: StorageMemory, SQLitePath: "numatage.db"},
		Blob:    blob.Config{Driver: blob.DriverNone, FSRoot: "./artifacts"},
		Logging: LoggingConfig{Mode: "development", Level: "info"},
		Metrics: MetricsConfig{Backend: MetricsNone},
	}
}

var lookupEnv = os.LookupEnv

// LoadConfig starts from DefaultConfig, overlays the YAML file at path when
// path is non-empty, then applies NUMATAGE_* environment overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	set := func(key string, dst *string) {
		if v, ok := lookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set("NUMATAGE_STORAGE_DRIVER", &cfg.Storage.Driver)
	set("NUMATAGE_SQLITE_PATH", &cfg.Storage.SQLitePath)
	set("NUMATAGE_POSTGRES_DSN", &cfg.Storage.PostgresDSN)

	driver := string(cfg.Blob.Driver)
	set("NUMATAGE_BLOB_DRIVER", &driver)
	cfg.Blob.Driver = blob.Driver(driver)
	set("NUMATAGE_BLOB_FS_ROOT", &cfg.Blob.FSRoot)
	set("NUMATAGE_BLOB_S3_BUCKET", &cfg.Blob.S3.Bucket)
	set("NUMATAGE_BLOB_S3_REGION", &cfg.Blob.S3.Region)
	set("NUMATAGE_BLOB_S3_ENDPOINT", &cfg.Blob.S3.Endpoint)
	if v, ok := lookupEnv("NUMATAGE_BLOB_S3_PATH_STYLE"); ok && v != "" {
		cfg.Blob.S3.PathStyle = strings.EqualFold(strings.TrimSpace(v), "true")
	}

	set("NUMATAGE_LOG_MODE", &cfg.Logging.Mode)
	set("NUMATAGE_LOG_LEVEL", &cfg.Logging.Level)
	set("NUMATAGE_METRICS", &cfg.Metrics.Backend)
}

// Validate rejects unknown drivers and incomplete backend settings.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageSQLite:
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("config: postgres storage requires a dsn")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Blob.Driver {
	case "", blob.DriverNone, blob.DriverMemory, blob.DriverFilesystem:
	case blob.DriverS3:
		if c.Blob.S3.Bucket == "" {
			return fmt.Errorf("config: s3 blob driver requires a bucket")
		}
	default:
		return fmt.Errorf("config: unknown blob driver %q", c.Blob.Driver)
	}
	switch c.Metrics.Backend {
	case "", MetricsNone, MetricsExpvar, MetricsPrometheus:
	default:
		return fmt.Errorf("config: unknown metrics backend %q", c.Metrics.Backend)
	}
	return nil
}
