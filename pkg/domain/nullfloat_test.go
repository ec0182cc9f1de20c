package domain

import (
	"encoding/json"
	"testing"
)

func TestNullFloatArithmeticPropagatesMissing(t *testing.T) {
	if got := Float(2).Add(Float(3)); !got.Valid || got.Float64 != 5 {
		t.Fatalf("add: got %v", got)
	}
	if got := Float(2).Add(Missing()); got.Valid {
		t.Fatalf("expected missing sum, got %v", got)
	}
	if got := Float(2).Mul(Float(4)); got.Float64 != 8 {
		t.Fatalf("mul: got %v", got)
	}
	if got := Float(1).Div(Float(0)); got.Valid {
		t.Fatalf("expected division by zero to be missing")
	}
	if got := Float(6).Div(Float(4)); got.Float64 != 1.5 {
		t.Fatalf("div: got %v", got)
	}
}

func TestSum(t *testing.T) {
	var empty Sum
	if empty.Value().Valid {
		t.Fatalf("empty sum must be missing")
	}
	var s Sum
	s.Add(Float(1))
	s.Add(Float(2.5))
	if v := s.Value(); !v.Valid || v.Float64 != 3.5 {
		t.Fatalf("sum: got %v", v)
	}
	s.Add(Missing())
	if s.Value().Valid {
		t.Fatalf("missing term must poison the sum")
	}
}

func TestNullFloatJSON(t *testing.T) {
	payload, err := json.Marshal([]NullFloat{Float(1.25), Missing()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != "[1.25,null]" {
		t.Fatalf("unexpected payload %s", payload)
	}
	var decoded []NullFloat
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded[0].Valid || decoded[0].Float64 != 1.25 || decoded[1].Valid {
		t.Fatalf("unexpected decode %+v", decoded)
	}
	if Missing().String() != "NA" || Float(3).String() != "3" {
		t.Fatalf("unexpected string rendering")
	}
}

func TestLevel(t *testing.T) {
	if !LevelFO.Valid() || Level("XX").Valid() {
		t.Fatalf("unexpected level validity")
	}
	if LevelFO.IDColumn() != "FOid" {
		t.Fatalf("unexpected id column %s", LevelFO.IDColumn())
	}
	unit := HierarchyUnit{ID: 1, Parents: map[Level]int64{LevelSD: 7}}
	if id, ok := unit.ParentID(LevelSD); !ok || id != 7 {
		t.Fatalf("unexpected parent %d %v", id, ok)
	}
	if _, ok := unit.ParentID(LevelLE); ok {
		t.Fatalf("expected missing parent")
	}
}
