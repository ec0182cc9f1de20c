package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// NullFloat is a float64 that may be declared missing.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float returns a present value.
func Float(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// Missing returns a declared-missing value.
func Missing() NullFloat {
	return NullFloat{}
}

// Add returns n+o; the sum is missing when either operand is missing.
func (n NullFloat) Add(o NullFloat) NullFloat {
	if !n.Valid || !o.Valid {
		return NullFloat{}
	}
	return Float(n.Float64 + o.Float64)
}

// Mul returns n*o; the product is missing when either operand is missing.
func (n NullFloat) Mul(o NullFloat) NullFloat {
	if !n.Valid || !o.Valid {
		return NullFloat{}
	}
	return Float(n.Float64 * o.Float64)
}

// Div returns n/o. The quotient is missing when either operand is missing or o is zero.
func (n NullFloat) Div(o NullFloat) NullFloat {
	if !n.Valid || !o.Valid || o.Float64 == 0 {
		return NullFloat{}
	}
	return Float(n.Float64 / o.Float64)
}

// String renders the value, using "NA" for missing.
func (n NullFloat) String() string {
	if !n.Valid {
		return "NA"
	}
	return strconv.FormatFloat(n.Float64, 'g', -1, 64)
}

// MarshalJSON encodes missing values as null.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON decodes null as missing.
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}

// Sum folds values into a running total. An empty input is missing, and any
// missing term makes the total missing.
type Sum struct {
	total NullFloat
	seen  bool
}

// Add accumulates v.
func (s *Sum) Add(v NullFloat) {
	if !s.seen {
		s.total = v
		s.seen = true
		return
	}
	s.total = s.total.Add(v)
}

// Value returns the accumulated total.
func (s Sum) Value() NullFloat {
	return s.total
}
