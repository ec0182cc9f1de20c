package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"numatage/internal/infra/persistence/postgres/testutil"
	"numatage/pkg/domain"
)

func openStub(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(driverName, _ string) (*sql.DB, error) {
		if driverName != defaultDriver {
			t.Fatalf("unexpected driver %s", driverName)
		}
		return db, nil
	})
	t.Cleanup(restore)
	store, err := NewStore(context.Background(), "")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, conn
}

func TestNewStoreEnsuresSchema(t *testing.T) {
	store, conn := openStub(t)
	if store.DB() == nil {
		t.Fatalf("expected db handle")
	}
	if len(conn.Execs) == 0 || !strings.Contains(conn.Execs[0], "CREATE TABLE IF NOT EXISTS runs") {
		t.Fatalf("expected schema statement, got %v", conn.Execs)
	}
}

func TestStoreSaveGetList(t *testing.T) {
	ctx := context.Background()
	store, conn := openStub(t)
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	runs := []domain.RunRecord{
		{ID: "r1", Status: domain.RunStatusSucceeded, StartedAt: base, NumAtAge: []domain.AgeEstimate{{Age: 2, NumAtAge: domain.Float(1000)}}},
		{ID: "r2", Status: domain.RunStatusFailed, Error: "boom", StartedAt: base.Add(time.Minute)},
	}
	for _, run := range runs {
		if err := store.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}
	runs[0].Label = "relabelled"
	if err := store.SaveRun(ctx, runs[0]); err != nil {
		t.Fatalf("SaveRun upsert: %v", err)
	}
	if len(conn.Tables["runs"]) != 2 {
		t.Fatalf("expected upsert to keep two rows, got %d", len(conn.Tables["runs"]))
	}

	got, ok, err := store.GetRun(ctx, "r1")
	if err != nil || !ok {
		t.Fatalf("GetRun: %v %v", ok, err)
	}
	if got.Label != "relabelled" || len(got.NumAtAge) != 1 || got.NumAtAge[0].NumAtAge.Float64 != 1000 {
		t.Fatalf("unexpected run %+v", got)
	}
	if _, ok, err := store.GetRun(ctx, "absent"); ok || err != nil {
		t.Fatalf("expected absent, got %v %v", ok, err)
	}
	list, err := store.ListRuns(ctx)
	if err != nil || len(list) != 2 || list[1].Error != "boom" {
		t.Fatalf("ListRuns: %+v %v", list, err)
	}
	if err := store.SaveRun(ctx, domain.RunRecord{}); err == nil {
		t.Fatalf("expected id error")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestStoreErrorPaths(t *testing.T) {
	ctx := context.Background()
	store, conn := openStub(t)
	conn.Tables["runs"] = []map[string]any{{"id": "bad", "payload": []byte("{")}}
	if _, _, err := store.GetRun(ctx, "bad"); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := store.ListRuns(ctx); err == nil {
		t.Fatalf("expected list decode error")
	}
	conn.Tables["runs"] = nil
	conn.RowsErr = errors.New("rows broke")
	if _, err := store.ListRuns(ctx); err == nil {
		t.Fatalf("expected rows error")
	}
	conn.FailQuery = true
	if _, err := store.ListRuns(ctx); err == nil {
		t.Fatalf("expected query error")
	}
	conn.FailExec = true
	if err := store.SaveRun(ctx, domain.RunRecord{ID: "x"}); err == nil {
		t.Fatalf("expected exec error")
	}
}

func TestNewStoreFailures(t *testing.T) {
	restore := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return nil, errors.New("no driver") })
	if _, err := NewStore(context.Background(), "dsn"); err == nil {
		t.Fatalf("expected open error")
	}
	restore()

	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore = OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(context.Background(), "dsn"); err == nil || !strings.Contains(err.Error(), "ping") {
		t.Fatalf("expected ping error, got %v", err)
	}
}

func TestStoreAgainstLiveDatabase(t *testing.T) {
	dsn := os.Getenv("NUMATAGE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("NUMATAGE_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer func() { _ = store.Close() }()
	id := "live-" + time.Now().UTC().Format("20060102150405.000000000")
	if err := store.SaveRun(ctx, domain.RunRecord{ID: id, Status: domain.RunStatusSucceeded, StartedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if _, ok, err := store.GetRun(ctx, id); err != nil || !ok {
		t.Fatalf("GetRun: %v %v", ok, err)
	}
}
