package estimate

import "numatage/pkg/domain"

// ExpandHorvitzThompson weights each sample histogram by the reciprocal of the
// sample's inclusion probability and sums the weighted counts per species
// selection and age. The result covers every species selection in sa for every
// age present in counts; a cell without contributing samples is missing.
func ExpandHorvitzThompson(sa []domain.Sample, counts []domain.AgeCount) ([]domain.AgeTotal, error) {
	if err := enforce(StageExpandHT,
		samplesHaveInclusionProb(sa),
		samplesUnstratified(sa),
		samplesHaveSpecies(sa),
		singleSpecies(sa),
		inclusionProbInRange(sa),
	); err != nil {
		return nil, err
	}

	bySample := make(map[int64][]domain.AgeCount)
	ages := make(map[int]struct{})
	for _, c := range counts {
		bySample[c.UnitID] = append(bySample[c.UnitID], c)
		ages[c.Age] = struct{}{}
	}

	selections := make(map[int64]struct{})
	sums := make(map[unitAge]*domain.Sum)
	for _, s := range sa {
		selections[s.SSid] = struct{}{}
		for _, c := range bySample[s.SAid] {
			weighted := domain.Float(float64(c.Count)).Div(s.InclusionProb)
			accumulate(sums, unitAge{unit: s.SSid, age: c.Age}, weighted)
		}
	}
	return denseAgeTotals(selections, ages, sums), nil
}
