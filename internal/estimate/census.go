package estimate

import "numatage/pkg/domain"

// AggregateCensusCounts sums species-selection number-at-age totals up to the
// haul level. Only census selection is supported, so every species selection
// contributes with certainty. The result covers every haul in ss for every age
// present in totals.
func AggregateCensusCounts(ss []domain.SpeciesSelection, totals []domain.AgeTotal) ([]domain.AgeTotal, error) {
	if err := enforce(StageCensusCounts, censusSelection(ss)); err != nil {
		return nil, err
	}
	ages := make(map[int]struct{})
	for _, t := range totals {
		ages[t.Age] = struct{}{}
	}
	sums := make(map[unitAge]*domain.Sum)
	rollUpCensus(ss, totals,
		func(t domain.AgeTotal) int64 { return t.UnitID },
		func(haul int64, t domain.AgeTotal) unitAge { return unitAge{unit: haul, age: t.Age} },
		func(t domain.AgeTotal) domain.NullFloat { return t.Total },
		sums)
	return denseAgeTotals(censusHauls(ss), ages, sums), nil
}

// AggregateCensusWeights sums species-selection weights up to the haul level
// under census selection. Every haul in ss is reported.
func AggregateCensusWeights(ss []domain.SpeciesSelection, weights []domain.UnitWeight) ([]domain.UnitWeight, error) {
	if err := enforce(StageCensusWeights, censusSelection(ss)); err != nil {
		return nil, err
	}
	sums := make(map[int64]*domain.Sum)
	rollUpCensus(ss, weights,
		func(w domain.UnitWeight) int64 { return w.UnitID },
		func(haul int64, _ domain.UnitWeight) int64 { return haul },
		func(w domain.UnitWeight) domain.NullFloat { return w.Weight },
		sums)
	hauls := sortedKeys(censusHauls(ss))
	out := make([]domain.UnitWeight, 0, len(hauls))
	for _, id := range hauls {
		out = append(out, domain.UnitWeight{UnitID: id, Weight: lookup(sums, id)})
	}
	return out, nil
}

// rollUpCensus joins child rows to their species selection on SSid and folds
// each joined value into the group keyed by keyOf.
func rollUpCensus[K comparable, R any](
	ss []domain.SpeciesSelection,
	rows []R,
	selectionID func(R) int64,
	keyOf func(haul int64, row R) K,
	value func(R) domain.NullFloat,
	sums map[K]*domain.Sum,
) {
	hauls := make(map[int64][]int64, len(ss))
	for _, sel := range ss {
		hauls[sel.SSid] = append(hauls[sel.SSid], sel.FOid)
	}
	for _, row := range rows {
		for _, haul := range hauls[selectionID(row)] {
			accumulate(sums, keyOf(haul, row), value(row))
		}
	}
}

func censusHauls(ss []domain.SpeciesSelection) map[int64]struct{} {
	hauls := make(map[int64]struct{}, len(ss))
	for _, sel := range ss {
		hauls[sel.FOid] = struct{}{}
	}
	return hauls
}
