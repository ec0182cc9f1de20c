package estimate

import (
	"math"
	"testing"

	"numatage/pkg/domain"
)

func TestTabulateAgesExample(t *testing.T) {
	bv := []domain.BiologicalVariable{ageRow(1, "2"), ageRow(1, "2"), ageRow(1, "3")}
	got, err := TabulateAges(bv, domain.AgeBounds{Min: intPtr(2), Max: intPtr(3)})
	if err != nil {
		t.Fatalf("tabulate: %v", err)
	}
	want := []domain.AgeCount{{UnitID: 1, Age: 2, Count: 2}, {UnitID: 1, Age: 3, Count: 1}}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestTabulateAgesDenseCoverage(t *testing.T) {
	bv := []domain.BiologicalVariable{
		ageRow(2, "1"),
		ageRow(1, "4"),
		ageRow(1, "4.0"),
		{SAid: 3, Type: "Length", Stratification: domain.FlagYes, Value: "250"},
	}
	got, err := TabulateAges(bv, domain.AgeBounds{})
	if err != nil {
		t.Fatalf("tabulate: %v", err)
	}
	// two samples with age readings × ages 1..4
	if len(got) != 8 {
		t.Fatalf("expected 8 dense rows, got %d: %+v", len(got), got)
	}
	seen := make(map[[2]int64]int)
	for _, row := range got {
		if row.Count < 0 {
			t.Fatalf("negative count %+v", row)
		}
		seen[[2]int64{row.UnitID, int64(row.Age)}] = row.Count
	}
	for _, id := range []int64{1, 2} {
		for age := 1; age <= 4; age++ {
			if _, ok := seen[[2]int64{id, int64(age)}]; !ok {
				t.Fatalf("missing cell sample %d age %d", id, age)
			}
		}
	}
	if seen[[2]int64{1, 4}] != 2 || seen[[2]int64{2, 1}] != 1 || seen[[2]int64{1, 1}] != 0 {
		t.Fatalf("unexpected counts %v", seen)
	}
	if got[0].UnitID != 1 || got[0].Age != 1 {
		t.Fatalf("expected output sorted by sample then age, got %+v", got[0])
	}
}

func TestTabulateAgesBoundsExcludeReadings(t *testing.T) {
	bv := []domain.BiologicalVariable{ageRow(1, "1"), ageRow(1, "5"), ageRow(1, "3")}
	got, err := TabulateAges(bv, domain.AgeBounds{Min: intPtr(2), Max: intPtr(4)})
	if err != nil {
		t.Fatalf("tabulate: %v", err)
	}
	total := 0
	for _, row := range got {
		total += row.Count
	}
	if len(got) != 3 || total != 1 {
		t.Fatalf("expected three cells holding one reading, got %+v", got)
	}
}

func TestTabulateAgesOnlyMinSupplied(t *testing.T) {
	bv := []domain.BiologicalVariable{ageRow(7, "3")}
	got, err := TabulateAges(bv, domain.AgeBounds{Min: intPtr(0)})
	if err != nil {
		t.Fatalf("tabulate: %v", err)
	}
	if len(got) != 4 || got[0].Age != 0 || got[3].Age != 3 || got[3].Count != 1 {
		t.Fatalf("unexpected rows %+v", got)
	}
}

func TestTabulateAgesEmpty(t *testing.T) {
	got, err := TabulateAges(nil, domain.AgeBounds{})
	if err != nil {
		t.Fatalf("tabulate: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no rows, got %+v", got)
	}
}

func TestTabulateAgesPreconditions(t *testing.T) {
	cases := []struct {
		name     string
		bv       []domain.BiologicalVariable
		bounds   domain.AgeBounds
		check    string
		sentinel error
	}{
		{
			name:     "stratified",
			bv:       []domain.BiologicalVariable{{SAid: 1, Type: domain.TraitAge, Stratification: domain.FlagYes, Value: "2"}},
			check:    "age_unstratified",
			sentinel: domain.ErrUnsupportedDesign,
		},
		{
			name:     "missing",
			bv:       []domain.BiologicalVariable{ageRow(1, "2"), ageRow(1, " ")},
			check:    "age_value_present",
			sentinel: domain.ErrMissingValue,
		},
		{
			name:     "non integral",
			bv:       []domain.BiologicalVariable{ageRow(1, "2.5")},
			check:    "age_value_integral",
			sentinel: domain.ErrInvalidValue,
		},
		{
			name:     "negative",
			bv:       []domain.BiologicalVariable{ageRow(1, "-1")},
			check:    "age_value_integral",
			sentinel: domain.ErrInvalidValue,
		},
		{
			name:     "inverted bounds",
			bv:       []domain.BiologicalVariable{ageRow(1, "2")},
			bounds:   domain.AgeBounds{Min: intPtr(5), Max: intPtr(3)},
			check:    "age_bounds_ordered",
			sentinel: domain.ErrInvalidValue,
		},
		{
			name:     "reading beyond oldest age",
			bv:       []domain.BiologicalVariable{ageRow(1, "0"), ageRow(1, "1e18")},
			check:    "age_value_integral",
			sentinel: domain.ErrInvalidValue,
		},
		{
			name:     "upper bound beyond oldest age",
			bv:       []domain.BiologicalVariable{ageRow(1, "2")},
			bounds:   domain.AgeBounds{Max: intPtr(math.MaxInt)},
			check:    "age_bounds_ordered",
			sentinel: domain.ErrInvalidValue,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := TabulateAges(tc.bv, tc.bounds)
			requirePrecondition(t, err, StageTabulateAges, tc.check, tc.sentinel)
		})
	}
}

func TestTabulateAgesIgnoresStratifiedNonAgeRows(t *testing.T) {
	bv := []domain.BiologicalVariable{
		ageRow(1, "2"),
		{SAid: 1, Type: "Weight", Stratification: domain.FlagYes, Value: ""},
	}
	if _, err := TabulateAges(bv, domain.AgeBounds{}); err != nil {
		t.Fatalf("non-age rows must be filtered before checks: %v", err)
	}
}
