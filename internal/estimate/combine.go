package estimate

import "numatage/pkg/domain"

// CombineTotals sums stratum number-at-age totals into the grand total per
// age. A stratum and age claimed by more than one sampling scheme is rejected
// even when the claimed values agree.
func CombineTotals(totals []domain.StratumTotal) ([]domain.AgeEstimate, error) {
	if err := enforce(StageCombineTotals, agesPresent(totals), schemesDisjoint(totals)); err != nil {
		return nil, err
	}
	ages := make(map[int]struct{})
	sums := make(map[int]*domain.Sum)
	for _, t := range totals {
		ages[t.Age] = struct{}{}
		accumulate(sums, t.Age, t.NumAtAge)
	}
	keys := sortedKeys(ages)
	out := make([]domain.AgeEstimate, 0, len(keys))
	for _, age := range keys {
		out = append(out, domain.AgeEstimate{Age: age, NumAtAge: lookup(sums, age)})
	}
	return out, nil
}

func agesPresent(totals []domain.StratumTotal) check {
	return func() (domain.Violation, bool) {
		for _, t := range totals {
			if t.Age <= domain.MissingAge {
				return violation("age_present", domain.CategoryMissingValue, domain.LevelSD, t.SDid,
					"stratum %q of scheme %d has a total without age", t.Stratum, t.SDid)
			}
		}
		return domain.Violation{}, false
	}
}

func schemesDisjoint(totals []domain.StratumTotal) check {
	type stratumAge struct {
		stratum string
		age     int
	}
	return func() (domain.Violation, bool) {
		owner := make(map[stratumAge]int64, len(totals))
		for _, t := range totals {
			key := stratumAge{stratum: t.Stratum, age: t.Age}
			sd, seen := owner[key]
			if !seen {
				owner[key] = t.SDid
				continue
			}
			if sd != t.SDid {
				return violation("schemes_disjoint", domain.CategoryMultiplicity, domain.LevelSD, t.SDid,
					"stratum %q age %d is covered by schemes %d and %d", t.Stratum, t.Age, sd, t.SDid)
			}
		}
		return domain.Violation{}, false
	}
}
