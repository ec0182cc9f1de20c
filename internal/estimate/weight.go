package estimate

import "numatage/pkg/domain"

// TotalWeights sums observed live weight per species selection. Weights are
// treated as census quantities and are not expanded.
func TotalWeights(sa []domain.Sample) ([]domain.UnitWeight, error) {
	if err := enforce(StageTotalWeights,
		samplesUnstratified(sa),
		samplesHaveSpecies(sa),
		singleSpecies(sa),
	); err != nil {
		return nil, err
	}
	selections := make(map[int64]struct{})
	sums := make(map[int64]*domain.Sum)
	for _, s := range sa {
		selections[s.SSid] = struct{}{}
		accumulate(sums, s.SSid, s.TotalWeightLive)
	}
	ids := sortedKeys(selections)
	out := make([]domain.UnitWeight, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.UnitWeight{UnitID: id, Weight: lookup(sums, id)})
	}
	return out, nil
}
