// Package core orchestrates the number-at-age estimation pipeline: it chains
// the estimators, records observability signals, persists run records, and
// exports run artifacts.
package core

import (
	"fmt"

	"numatage/pkg/domain"
)

type (
	// Run is the persisted record of one estimation.
	Run = domain.RunRecord
	// RunStatus describes run outcome.
	RunStatus = domain.RunStatus
	// AgeBounds fixes the tabulated age range.
	AgeBounds = domain.AgeBounds
	// StageStat summarises one pipeline stage.
	StageStat = domain.StageStat
	// Artifact references an exported run output.
	Artifact = domain.Artifact
)

// ErrNotFound is returned when a run lookup misses.
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
