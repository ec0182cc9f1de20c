package core

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"numatage/internal/blob"
	"numatage/internal/infra/persistence/memory"
	"numatage/internal/infra/persistence/sqlite"
	"numatage/pkg/domain"
)

func TestOpenRunStore(t *testing.T) {
	ctx := context.Background()
	store, err := OpenRunStore(ctx, StorageConfig{Driver: StorageMemory})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
	store, err = OpenRunStore(ctx, StorageConfig{Driver: StorageSQLite, SQLitePath: filepath.Join(t.TempDir(), "runs.db")})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if _, ok := store.(*sqlite.Store); !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
	_ = store.Close()
	if _, err := OpenRunStore(ctx, StorageConfig{Driver: "etcd"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestOpenMetricsRecorder(t *testing.T) {
	rec, err := OpenMetricsRecorder(MetricsConfig{Backend: MetricsNone}, nil)
	if err != nil || rec != nil {
		t.Fatalf("expected nil recorder for none, got %v %v", rec, err)
	}
	rec, err = OpenMetricsRecorder(MetricsConfig{Backend: MetricsExpvar}, nil)
	if _, ok := rec.(*ExpvarMetricsRecorder); !ok || err != nil {
		t.Fatalf("expected expvar recorder, got %T %v", rec, err)
	}
	rec, err = OpenMetricsRecorder(MetricsConfig{Backend: MetricsPrometheus}, prometheus.NewRegistry())
	if _, ok := rec.(*PrometheusMetricsRecorder); !ok || err != nil {
		t.Fatalf("expected prometheus recorder, got %T %v", rec, err)
	}
	if _, err := OpenMetricsRecorder(MetricsConfig{Backend: "statsd"}, nil); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}

func TestOpenServiceWiresExporter(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Blob = blob.Config{Driver: blob.DriverFilesystem, FSRoot: t.TempDir()}
	cfg.Storage = StorageConfig{Driver: StorageSQLite, SQLitePath: filepath.Join(t.TempDir(), "runs.db")}
	cfg.Logging.Level = "error"
	svc, err := OpenService(ctx, cfg, WithIDGenerator(func() string { return "wired" }))
	if err != nil {
		t.Fatalf("OpenService: %v", err)
	}
	defer func() { _ = svc.Close() }()
	run, err := svc.Estimate(ctx, singleHaulRequest())
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if run.ID != "wired" || len(run.Artifacts) == 0 {
		t.Fatalf("expected exported run, got %+v", run)
	}
	stored, err := svc.GetRun(ctx, "wired")
	if err != nil || stored.Status != domain.RunStatusSucceeded {
		t.Fatalf("expected stored run, got %+v %v", stored, err)
	}
}

func TestOpenServiceRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Driver = "etcd"
	if _, err := OpenService(context.Background(), cfg); err == nil {
		t.Fatalf("expected validation error")
	}
	cfg = DefaultConfig()
	cfg.Logging.Level = "loud"
	if _, err := OpenService(context.Background(), cfg); err == nil {
		t.Fatalf("expected logger error")
	}
}
