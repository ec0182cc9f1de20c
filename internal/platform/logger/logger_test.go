package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerWritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core))
	l.Debug("stage complete", "stage", "tabulate_ages", "rows", 6)
	l.Info("run stored", "run_id", "r1")
	l.Warn("export skipped")
	l.With("run_id", "r2").Error("stage failed", "error", "boom")

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[0].ContextMap()["stage"] != "tabulate_ages" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	last := entries[3]
	if last.Level != zapcore.ErrorLevel || last.ContextMap()["run_id"] != "r2" || last.ContextMap()["error"] != "boom" {
		t.Fatalf("unexpected error entry %+v", last.ContextMap())
	}
}

func TestLoggerRedactsSecrets(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := FromZap(zap.New(core))
	l.Info("storage opened", "postgres_dsn", "postgres://u:p@h/db", "driver", "postgres")
	fields := logs.All()[0].ContextMap()
	if fields["postgres_dsn"] != redacted {
		t.Fatalf("expected dsn redacted, got %v", fields["postgres_dsn"])
	}
	if fields["driver"] != "postgres" {
		t.Fatalf("expected driver kept, got %v", fields["driver"])
	}
}

func TestNewModesAndLevels(t *testing.T) {
	for _, tc := range []struct{ mode, level string }{
		{"development", ""},
		{"production", "warn"},
		{"prod", "DEBUG"},
	} {
		l, err := New(tc.mode, tc.level)
		if err != nil {
			t.Fatalf("New(%q,%q): %v", tc.mode, tc.level, err)
		}
		l.Sync()
	}
	if _, err := New("development", "loud"); err == nil {
		t.Fatalf("expected invalid level error")
	}
	l, _ := New("production", "error")
	if l.SugaredLogger.Desugar().Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("expected warn disabled at error level")
	}
}
