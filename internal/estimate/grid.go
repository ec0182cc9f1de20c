package estimate

import (
	"cmp"
	"slices"

	"numatage/pkg/domain"
)

type unitAge struct {
	unit int64
	age  int
}

func sortedKeys[K cmp.Ordered](set map[K]struct{}) []K {
	out := make([]K, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// accumulate adds v to the running sum stored under key.
func accumulate[K comparable](sums map[K]*domain.Sum, key K, v domain.NullFloat) {
	s, ok := sums[key]
	if !ok {
		s = &domain.Sum{}
		sums[key] = s
	}
	s.Add(v)
}

// lookup returns the sum stored under key, or a declared-missing value for an
// empty group.
func lookup[K comparable](sums map[K]*domain.Sum, key K) domain.NullFloat {
	if s, ok := sums[key]; ok {
		return s.Value()
	}
	return domain.Missing()
}

// denseAgeTotals emits one row per unit × age, in ascending order.
func denseAgeTotals(units map[int64]struct{}, ages map[int]struct{}, sums map[unitAge]*domain.Sum) []domain.AgeTotal {
	unitIDs := sortedKeys(units)
	ageValues := sortedKeys(ages)
	out := make([]domain.AgeTotal, 0, len(unitIDs)*len(ageValues))
	for _, id := range unitIDs {
		for _, age := range ageValues {
			out = append(out, domain.AgeTotal{UnitID: id, Age: age, Total: lookup(sums, unitAge{unit: id, age: age})})
		}
	}
	return out
}
