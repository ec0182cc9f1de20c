package estimate

import (
	"fmt"

	"numatage/pkg/domain"
)

// Stage names reported in precondition errors.
const (
	StageTabulateAges     = "tabulate_ages"
	StageExpandHT         = "expand_horvitz_thompson"
	StageCensusCounts     = "aggregate_census_counts"
	StageCensusWeights    = "aggregate_census_weights"
	StageTotalWeights     = "total_weights"
	StageStratifiedRatio  = "estimate_stratified_ratio"
	StageScaleByLandings  = "scale_by_landings"
	StageCombineTotals    = "combine_totals"
	StageRatioVarianceWoN = "ratio_variance_wo_N"
	StageRatioVarStrata   = "ratio_variance_strata"
	StageRatioVarTotal    = "ratio_variance_total"
)

// check evaluates one precondition, reporting the violation when it fails.
type check func() (domain.Violation, bool)

// enforce runs checks in order and returns the first failure.
func enforce(stage string, checks ...check) error {
	for _, c := range checks {
		if v, failed := c(); failed {
			return &domain.PreconditionError{Stage: stage, Violation: v}
		}
	}
	return nil
}

func violation(name string, category domain.Category, level domain.Level, id int64, format string, args ...any) (domain.Violation, bool) {
	return domain.Violation{
		Check:    name,
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Level:    level,
		UnitID:   id,
	}, true
}

func samplesHaveInclusionProb(sa []domain.Sample) check {
	return func() (domain.Violation, bool) {
		for _, s := range sa {
			if !s.InclusionProb.Valid {
				return violation("inclusion_prob_present", domain.CategoryMissingValue, domain.LevelSA, s.SAid,
					"sample %d has no inclusion probability", s.SAid)
			}
		}
		return domain.Violation{}, false
	}
}

func inclusionProbInRange(sa []domain.Sample) check {
	return func() (domain.Violation, bool) {
		for _, s := range sa {
			if p := s.InclusionProb.Float64; !(p > 0 && p <= 1) {
				return violation("inclusion_prob_range", domain.CategoryInvalidValue, domain.LevelSA, s.SAid,
					"sample %d inclusion probability %g outside (0,1]", s.SAid, p)
			}
		}
		return domain.Violation{}, false
	}
}

func samplesUnstratified(sa []domain.Sample) check {
	return func() (domain.Violation, bool) {
		for _, s := range sa {
			if s.Stratification != domain.FlagNo {
				return violation("sample_unstratified", domain.CategoryUnsupportedDesign, domain.LevelSA, s.SAid,
					"sample %d stratification %q, only unstratified samples are supported", s.SAid, s.Stratification)
			}
		}
		return domain.Violation{}, false
	}
}

func samplesHaveSpecies(sa []domain.Sample) check {
	return func() (domain.Violation, bool) {
		for _, s := range sa {
			if s.SpeciesCode == "" {
				return violation("species_code_present", domain.CategoryMissingValue, domain.LevelSA, s.SAid,
					"sample %d has no species code", s.SAid)
			}
		}
		return domain.Violation{}, false
	}
}

func singleSpecies(sa []domain.Sample) check {
	return func() (domain.Violation, bool) {
		species := make(map[string]struct{})
		for _, s := range sa {
			species[s.SpeciesCode] = struct{}{}
		}
		if len(species) > 1 {
			return violation("single_species", domain.CategoryMultiplicity, domain.LevelSA, 0,
				"samples cover %d species %v, expected exactly one", len(species), sortedKeys(species))
		}
		return domain.Violation{}, false
	}
}

func censusSelection(ss []domain.SpeciesSelection) check {
	return func() (domain.Violation, bool) {
		for _, sel := range ss {
			if sel.SelectionMethod != domain.SelectionCensus {
				return violation("census_selection", domain.CategoryUnsupportedDesign, domain.LevelSS, sel.SSid,
					"species selection %d uses method %q, only %s is supported", sel.SSid, sel.SelectionMethod, domain.SelectionCensus)
			}
		}
		return domain.Violation{}, false
	}
}
