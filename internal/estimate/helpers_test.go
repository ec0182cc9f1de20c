package estimate

import (
	"errors"
	"testing"

	"numatage/pkg/domain"
)

func intPtr(v int) *int { return &v }

func ageRow(sa int64, value string) domain.BiologicalVariable {
	return domain.BiologicalVariable{SAid: sa, Type: domain.TraitAge, Stratification: domain.FlagNo, Value: value}
}

func sample(ss, sa int64, prob float64) domain.Sample {
	return domain.Sample{
		SSid:            ss,
		SAid:            sa,
		InclusionProb:   domain.Float(prob),
		Stratification:  domain.FlagNo,
		SpeciesCode:     "126436",
		TotalWeightLive: domain.Float(1),
	}
}

func haul(id, sd int64, stratum string) domain.HierarchyUnit {
	flag := domain.FlagYes
	if stratum == domain.Unstratified {
		flag = domain.FlagNo
	}
	return domain.HierarchyUnit{
		ID:             id,
		Stratification: flag,
		StratumName:    stratum,
		Clustering:     domain.FlagNo,
		Parents:        map[domain.Level]int64{domain.LevelSD: sd},
	}
}

// requirePrecondition asserts err is a precondition failure of the given check.
func requirePrecondition(t *testing.T, err error, stage, checkName string, sentinel error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s precondition failure", checkName)
	}
	var pe *domain.PreconditionError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *domain.PreconditionError, got %T: %v", err, err)
	}
	if pe.Stage != stage {
		t.Fatalf("expected stage %s, got %s", stage, pe.Stage)
	}
	if pe.Violation.Check != checkName {
		t.Fatalf("expected check %s, got %s (%s)", checkName, pe.Violation.Check, pe.Violation.Message)
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected errors.Is(%v), got %v", sentinel, err)
	}
}

func requireFloat(t *testing.T, got domain.NullFloat, want float64) {
	t.Helper()
	if !got.Valid {
		t.Fatalf("expected %g, got missing", want)
	}
	if diff := got.Float64 - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected %g, got %g", want, got.Float64)
	}
}
