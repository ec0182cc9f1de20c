package estimate

import (
	"cmp"
	"slices"

	"numatage/pkg/domain"
)

// LandingsWeightMultiplier converts official landed weight (tonnes) to the
// per-kilogram basis of the stratum ratios.
const LandingsWeightMultiplier = 1000

// ScaleByLandings multiplies each stratum ratio by the official weight landed
// in that stratum, yielding the stratum number at age. ratios must be keyed by
// sampling scheme (SD) and the strata of ratios and landings must coincide.
func ScaleByLandings(ratios []domain.StratumRatio, landings []domain.Landing) ([]domain.StratumTotal, error) {
	if err := enforce(StageScaleByLandings,
		ratiosKeyedByScheme(ratios),
		landingsHaveStratum(landings),
		strataCoincide(ratios, landings),
	); err != nil {
		return nil, err
	}

	landed := make(map[string]*domain.Sum)
	for _, l := range landings {
		accumulate(landed, l.Stratum, l.OfficialWeight)
	}

	out := make([]domain.StratumTotal, 0, len(ratios))
	for _, r := range ratios {
		weight := lookup(landed, r.Stratum).Mul(domain.Float(LandingsWeightMultiplier))
		out = append(out, domain.StratumTotal{
			SDid:     r.ParentID,
			Stratum:  r.Stratum,
			Age:      r.Age,
			NumAtAge: weight.Mul(r.Ratio),
		})
	}
	slices.SortFunc(out, func(a, b domain.StratumTotal) int {
		return cmpOr(
			cmp.Compare(a.SDid, b.SDid),
			cmp.Compare(a.Stratum, b.Stratum),
			cmp.Compare(a.Age, b.Age),
		)
	})
	return out, nil
}

func ratiosKeyedByScheme(ratios []domain.StratumRatio) check {
	return func() (domain.Violation, bool) {
		for _, r := range ratios {
			if r.Parent != domain.LevelSD {
				return violation("ratios_have_SDid", domain.CategoryReferential, r.Parent, r.ParentID,
					"ratios are keyed by %s, expected %s", r.Parent.IDColumn(), domain.LevelSD.IDColumn())
			}
		}
		return domain.Violation{}, false
	}
}

func landingsHaveStratum(landings []domain.Landing) check {
	return func() (domain.Violation, bool) {
		for i, l := range landings {
			if l.Stratum == "" {
				return violation("landings_have_stratum", domain.CategoryReferential, "", int64(i),
					"landings row %d has no stratum", i)
			}
		}
		return domain.Violation{}, false
	}
}

func strataCoincide(ratios []domain.StratumRatio, landings []domain.Landing) check {
	return func() (domain.Violation, bool) {
		sampled := make(map[string]struct{})
		for _, r := range ratios {
			sampled[r.Stratum] = struct{}{}
		}
		landed := make(map[string]struct{})
		for _, l := range landings {
			landed[l.Stratum] = struct{}{}
		}
		unlanded := difference(sampled, landed)
		unsampled := difference(landed, sampled)
		if len(unlanded) > 0 || len(unsampled) > 0 {
			return violation("strata_coincide", domain.CategoryReferential, domain.LevelSD, 0,
				"strata without landings %v, landed strata without ratios %v", unlanded, unsampled)
		}
		return domain.Violation{}, false
	}
}

func difference(a, b map[string]struct{}) []string {
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; !ok {
			out[k] = struct{}{}
		}
	}
	return sortedKeys(out)
}
