// Package estimate implements the stratified ratio estimator that expands
// age samples collected under the RDBES hierarchical design into
// number-at-age totals.
//
// Each stage is a pure function over fully materialized relations. Inputs are
// never mutated, outputs are freshly allocated and sorted by their key columns,
// and every stage validates its preconditions before computing anything: the
// first violated precondition aborts the call with a *domain.PreconditionError.
//
// Grouped sums are dense. The key space (the Cartesian product of the grouping
// dimensions) is enumerated first and joined rows are folded into it, so a
// group without contributing rows is reported as declared missing instead of
// being dropped.
package estimate
