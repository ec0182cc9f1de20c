package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"numatage/internal/blob/core"
)

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	if s.Driver() != core.DriverMemory {
		t.Fatalf("unexpected driver %s", s.Driver())
	}
	meta := map[string]string{"run": "r1"}
	info, err := s.Put(ctx, "runs/r1/num_at_age.csv", strings.NewReader("age,numAtAge\n"), core.PutOptions{ContentType: "text/csv", Metadata: meta})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	meta["run"] = "mutated"
	if info.Size != int64(len("age,numAtAge\n")) || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := s.Put(ctx, "runs/r1/num_at_age.csv", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	got, rc, err := s.Get(ctx, "runs/r1/num_at_age.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "age,numAtAge\n" || got.Metadata["run"] != "r1" || got.ContentType != "text/csv" {
		t.Fatalf("unexpected object %+v %q", got, body)
	}

	if _, err := s.Put(ctx, "runs/r2/run.json", strings.NewReader("{}"), core.PutOptions{}); err != nil {
		t.Fatalf("put second: %v", err)
	}
	list, err := s.List(ctx, "runs/r1/")
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one listed object, got %v %v", list, err)
	}
	all, _ := s.List(ctx, "")
	if len(all) != 2 || all[0].Key != "runs/r1/num_at_age.csv" {
		t.Fatalf("expected sorted listing, got %+v", all)
	}

	if _, err := s.PresignURL(ctx, "runs/r2/run.json", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected unsupported presign, got %v", err)
	}
	ok, err := s.Delete(ctx, "runs/r2/run.json")
	if err != nil || !ok {
		t.Fatalf("delete existing: %v %v", ok, err)
	}
	ok, _ = s.Delete(ctx, "runs/r2/run.json")
	if ok {
		t.Fatalf("expected second delete to report absence")
	}
	if _, err := s.Head(ctx, "runs/r2/run.json"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := s.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on get, got %v", err)
	}
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	if _, err := New().Put(context.Background(), "  ", strings.NewReader(""), core.PutOptions{}); err == nil {
		t.Fatalf("expected empty key error")
	}
}
