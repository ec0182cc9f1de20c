package domain

import (
	"errors"
	"fmt"
)

// Category classifies a precondition violation.
type Category string

// Precondition categories.
const (
	// CategoryMissingValue flags a required value that is absent.
	CategoryMissingValue Category = "missing_value"
	// CategoryUnsupportedDesign flags a sampling design the estimators do not handle.
	CategoryUnsupportedDesign Category = "unsupported_design"
	// CategoryMultiplicity flags more than one value where exactly one is allowed.
	CategoryMultiplicity Category = "multiplicity"
	// CategoryReferential flags a missing column or mismatched key sets.
	CategoryReferential Category = "referential"
	// CategoryInvalidValue flags a present value outside its domain.
	CategoryInvalidValue Category = "invalid_value"
)

// Sentinel errors matched with errors.Is against a PreconditionError.
var (
	ErrMissingValue      = errors.New("missing value")
	ErrUnsupportedDesign = errors.New("unsupported sampling design")
	ErrMultiplicity      = errors.New("multiplicity violation")
	ErrReferential       = errors.New("referential violation")
	ErrInvalidValue      = errors.New("invalid value")

	// ErrNotImplemented is returned by declared extension points without a body.
	ErrNotImplemented = errors.New("not implemented")
)

var categoryErrors = map[Category]error{
	CategoryMissingValue:      ErrMissingValue,
	CategoryUnsupportedDesign: ErrUnsupportedDesign,
	CategoryMultiplicity:      ErrMultiplicity,
	CategoryReferential:       ErrReferential,
	CategoryInvalidValue:      ErrInvalidValue,
}

// Err returns the sentinel error for the category.
func (c Category) Err() error {
	if err, ok := categoryErrors[c]; ok {
		return err
	}
	return errors.New(string(c))
}

// Violation describes one failed precondition.
type Violation struct {
	Check    string
	Category Category
	Message  string
	Level    Level
	UnitID   int64
}

// Result aggregates violations from precondition checks.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// Failed reports whether any violation was recorded.
func (r Result) Failed() bool {
	return len(r.Violations) > 0
}

// PreconditionError aborts an estimation stage.
type PreconditionError struct {
	Stage     string
	Violation Violation
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: precondition %s failed: %s", e.Stage, e.Violation.Check, e.Violation.Message)
}

// Unwrap exposes the category sentinel.
func (e *PreconditionError) Unwrap() error {
	return e.Violation.Category.Err()
}
