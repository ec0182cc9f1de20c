package estimate

import (
	"cmp"
	"slices"

	"numatage/pkg/domain"
)

type stratumKey struct {
	parentID int64
	stratum  string
}

type stratumAgeKey struct {
	stratumKey
	age int
}

// EstimateStratifiedRatio computes, for each parent unit and stratum of the
// given hierarchy table, the ratio of the summed number at age to the summed
// weight of the units in that stratum. counts and weights are keyed by the
// identifiers of table's units; units without totals drop out of the join.
//
// The ratio is missing when either sum is missing or the stratum weight is
// zero. Output is sorted by parent id, stratum and age.
func EstimateStratifiedRatio(table domain.HierarchyTable, parent domain.Level, counts []domain.AgeTotal, weights []domain.UnitWeight) ([]domain.StratumRatio, error) {
	if err := enforce(StageStratifiedRatio,
		stratumNamesConsistent(table),
		parentColumnPresent(table, parent),
		unclustered(table),
	); err != nil {
		return nil, err
	}

	strata := make(map[int64][]stratumKey, len(table.Units))
	for _, u := range table.Units {
		parentID, _ := u.ParentID(parent)
		strata[u.ID] = append(strata[u.ID], stratumKey{parentID: parentID, stratum: u.StratumName})
	}

	numAtAge := make(map[stratumAgeKey]*domain.Sum)
	for _, c := range counts {
		for _, sk := range strata[c.UnitID] {
			accumulate(numAtAge, stratumAgeKey{stratumKey: sk, age: c.Age}, c.Total)
		}
	}
	stratumWeight := make(map[stratumKey]*domain.Sum)
	for _, w := range weights {
		for _, sk := range strata[w.UnitID] {
			accumulate(stratumWeight, sk, w.Weight)
		}
	}

	out := make([]domain.StratumRatio, 0, len(numAtAge))
	for key, num := range numAtAge {
		weight, ok := stratumWeight[key.stratumKey]
		if !ok {
			continue
		}
		out = append(out, domain.StratumRatio{
			Parent:   parent,
			ParentID: key.parentID,
			Stratum:  key.stratum,
			Age:      key.age,
			Ratio:    num.Value().Div(weight.Value()),
		})
	}
	slices.SortFunc(out, func(a, b domain.StratumRatio) int {
		return cmpOr(
			cmp.Compare(a.ParentID, b.ParentID),
			cmp.Compare(a.Stratum, b.Stratum),
			cmp.Compare(a.Age, b.Age),
		)
	})
	return out, nil
}

func stratumNamesConsistent(table domain.HierarchyTable) check {
	return func() (domain.Violation, bool) {
		for _, u := range table.Units {
			switch {
			case u.StratumName == domain.Unstratified && u.Stratification != domain.FlagNo:
				return violation("stratification_consistent", domain.CategoryUnsupportedDesign, table.Level, u.ID,
					"%s %d has stratum name %q but stratification %q", table.Level, u.ID, u.StratumName, u.Stratification)
			case u.StratumName != domain.Unstratified && u.Stratification != domain.FlagYes:
				return violation("stratification_consistent", domain.CategoryUnsupportedDesign, table.Level, u.ID,
					"%s %d has stratum name %q but stratification %q", table.Level, u.ID, u.StratumName, u.Stratification)
			}
		}
		return domain.Violation{}, false
	}
}

func parentColumnPresent(table domain.HierarchyTable, parent domain.Level) check {
	return func() (domain.Violation, bool) {
		if !parent.Valid() || parent == table.Level {
			return violation("parent_column_present", domain.CategoryReferential, table.Level, 0,
				"%q is not a parent level of %s", parent, table.Level)
		}
		for _, u := range table.Units {
			if _, ok := u.ParentID(parent); !ok {
				return violation("parent_column_present", domain.CategoryReferential, table.Level, u.ID,
					"%s %d has no %s column", table.Level, u.ID, parent.IDColumn())
			}
		}
		return domain.Violation{}, false
	}
}

func unclustered(table domain.HierarchyTable) check {
	return func() (domain.Violation, bool) {
		for _, u := range table.Units {
			if u.Clustering != domain.FlagNo {
				return violation("unclustered", domain.CategoryUnsupportedDesign, table.Level, u.ID,
					"%s %d clustering %q, clustered sampling is not supported", table.Level, u.ID, u.Clustering)
			}
		}
		return domain.Violation{}, false
	}
}
