package estimate

// cmpOr returns the first of its arguments that is not equal to the zero
// value, or the zero value if all are zero. It mirrors cmp.Or from Go 1.22,
// which is unavailable on the Go 1.21 toolchain this module targets.
func cmpOr[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
