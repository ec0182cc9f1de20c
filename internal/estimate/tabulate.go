package estimate

import (
	"math"
	"strconv"
	"strings"

	"numatage/pkg/domain"
)

// MaxAge is the oldest age a reading or an explicit bound may name.
const MaxAge = 200

type ageReading struct {
	sample int64
	age    int
}

// TabulateAges builds a dense age histogram per sample from the age-type
// biological variables. Bounds left nil default to the youngest and oldest
// observed ages. Every observed sample receives one row for each age in the
// inclusive range, including zero counts; readings outside the range are not
// counted.
func TabulateAges(bv []domain.BiologicalVariable, bounds domain.AgeBounds) ([]domain.AgeCount, error) {
	var rows []domain.BiologicalVariable
	for _, v := range bv {
		if v.Type == domain.TraitAge {
			rows = append(rows, v)
		}
	}
	if err := enforce(StageTabulateAges,
		ageRowsUnstratified(rows),
		ageValuesPresent(rows),
		ageValuesIntegral(rows),
	); err != nil {
		return nil, err
	}

	readings := make([]ageReading, 0, len(rows))
	for _, v := range rows {
		age, _ := parseAge(v.Value)
		readings = append(readings, ageReading{sample: v.SAid, age: age})
	}

	minAge, maxAge := observedRange(readings)
	if bounds.Min != nil {
		minAge = *bounds.Min
	}
	if bounds.Max != nil {
		maxAge = *bounds.Max
	}
	if len(readings) > 0 || bounds.Min != nil || bounds.Max != nil {
		if err := enforce(StageTabulateAges, ageBoundsOrdered(minAge, maxAge)); err != nil {
			return nil, err
		}
	}
	if len(readings) == 0 {
		return []domain.AgeCount{}, nil
	}

	samples := make(map[int64]struct{})
	counts := make(map[unitAge]int)
	for _, r := range readings {
		samples[r.sample] = struct{}{}
		if r.age < minAge || r.age > maxAge {
			continue
		}
		counts[unitAge{unit: r.sample, age: r.age}]++
	}

	ids := sortedKeys(samples)
	out := make([]domain.AgeCount, 0, len(ids)*(maxAge-minAge+1))
	for _, id := range ids {
		for age := minAge; age <= maxAge; age++ {
			out = append(out, domain.AgeCount{UnitID: id, Age: age, Count: counts[unitAge{unit: id, age: age}]})
		}
	}
	return out, nil
}

// parseAge accepts integral decimal readings such as "3" or "3.0" within [0, MaxAge].
func parseAge(raw string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < 0 || f > MaxAge {
		return 0, false
	}
	return int(f), true
}

func observedRange(readings []ageReading) (int, int) {
	if len(readings) == 0 {
		return 0, 0
	}
	lo, hi := readings[0].age, readings[0].age
	for _, r := range readings[1:] {
		lo = min(lo, r.age)
		hi = max(hi, r.age)
	}
	return lo, hi
}

func ageRowsUnstratified(rows []domain.BiologicalVariable) check {
	return func() (domain.Violation, bool) {
		for _, v := range rows {
			if v.Stratification != domain.FlagNo {
				return violation("age_unstratified", domain.CategoryUnsupportedDesign, domain.LevelBV, v.SAid,
					"age reading of sample %d is stratified (%q)", v.SAid, v.Stratification)
			}
		}
		return domain.Violation{}, false
	}
}

func ageValuesPresent(rows []domain.BiologicalVariable) check {
	return func() (domain.Violation, bool) {
		for _, v := range rows {
			if strings.TrimSpace(v.Value) == "" {
				return violation("age_value_present", domain.CategoryMissingValue, domain.LevelBV, v.SAid,
					"age reading of sample %d is missing", v.SAid)
			}
		}
		return domain.Violation{}, false
	}
}

func ageValuesIntegral(rows []domain.BiologicalVariable) check {
	return func() (domain.Violation, bool) {
		for _, v := range rows {
			if _, ok := parseAge(v.Value); !ok {
				return violation("age_value_integral", domain.CategoryInvalidValue, domain.LevelBV, v.SAid,
					"age reading %q of sample %d is not an integer in [0,%d]", v.Value, v.SAid, MaxAge)
			}
		}
		return domain.Violation{}, false
	}
}

func ageBoundsOrdered(minAge, maxAge int) check {
	return func() (domain.Violation, bool) {
		if minAge > maxAge {
			return violation("age_bounds_ordered", domain.CategoryInvalidValue, domain.LevelBV, 0,
				"minimum age %d exceeds maximum age %d", minAge, maxAge)
		}
		if minAge < 0 {
			return violation("age_bounds_ordered", domain.CategoryInvalidValue, domain.LevelBV, 0,
				"minimum age %d is negative", minAge)
		}
		if maxAge > MaxAge {
			return violation("age_bounds_ordered", domain.CategoryInvalidValue, domain.LevelBV, 0,
				"maximum age %d exceeds %d", maxAge, MaxAge)
		}
		return domain.Violation{}, false
	}
}
