package core

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"numatage/internal/adapters/export"
	"numatage/internal/blob"
	"numatage/internal/infra/persistence/memory"
	"numatage/internal/infra/persistence/postgres"
	"numatage/internal/infra/persistence/sqlite"
	"numatage/internal/platform/logger"
	"numatage/pkg/domain"
)

// OpenRunStore constructs the run store named by cfg.Driver.
func OpenRunStore(ctx context.Context, cfg StorageConfig) (domain.RunStore, error) {
	switch cfg.Driver {
	case "", StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		store, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StoragePostgres:
		store, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// OpenMetricsRecorder returns the recorder for cfg.Backend, or nil for none.
func OpenMetricsRecorder(cfg MetricsConfig, reg prometheus.Registerer) (MetricsRecorder, error) {
	switch cfg.Backend {
	case "", MetricsNone:
		return nil, nil
	case MetricsExpvar:
		return NewExpvarMetricsRecorder(cfg.ExpvarName), nil
	case MetricsPrometheus:
		rec, err := NewPrometheusMetricsRecorder(reg)
		if err != nil {
			return nil, err
		}
		return rec, nil
	default:
		return nil, fmt.Errorf("unknown metrics backend %q", cfg.Backend)
	}
}

// OpenService assembles a Service from cfg: run store, zap logger, metrics
// backend, and artifact exporter. Explicit opts are applied after the
// configured ones and win.
func OpenService(ctx context.Context, cfg Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	metrics, err := OpenMetricsRecorder(cfg.Metrics, prometheus.DefaultRegisterer)
	if err != nil {
		return nil, err
	}
	store, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	runs, err := OpenRunStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}

	configured := []Option{WithLogger(log), WithMetricsRecorder(metrics)}
	if store != nil {
		configured = append(configured, WithExporter(export.New(store)))
	}
	log.Info("service configured",
		"storage_driver", cfg.Storage.Driver,
		"blob_driver", string(cfg.Blob.Driver),
		"metrics_backend", cfg.Metrics.Backend)
	return NewService(runs, append(configured, opts...)...), nil
}
