package estimate

import (
	"fmt"

	"numatage/pkg/domain"
)

// RatioVarianceWithoutN is the extension point for the variance of the
// stratified ratio when the number of sampling units is unknown.
func RatioVarianceWithoutN(_ domain.HierarchyTable, _ domain.Level, _ []domain.AgeTotal, _ []domain.UnitWeight) ([]domain.StratumRatio, error) {
	return nil, fmt.Errorf("%s: %w", StageRatioVarianceWoN, domain.ErrNotImplemented)
}

// RatioVarianceStrata is the extension point for the variance of the stratum
// number-at-age totals.
func RatioVarianceStrata(_ []domain.StratumRatio, _ []domain.Landing) ([]domain.StratumTotal, error) {
	return nil, fmt.Errorf("%s: %w", StageRatioVarStrata, domain.ErrNotImplemented)
}

// RatioVarianceTotal is the extension point for the variance of the grand
// total number at age.
func RatioVarianceTotal(_ []domain.StratumTotal) ([]domain.AgeEstimate, error) {
	return nil, fmt.Errorf("%s: %w", StageRatioVarTotal, domain.ErrNotImplemented)
}
