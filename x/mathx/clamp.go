package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Min returns the smaller of a and b.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// StepClamped adds delta to v and keeps the result inside [lo, hi].
// It reports whether the value changed.
func StepClamped[T constraints.Signed](v, delta, lo, hi T) (T, bool) {
	n := Clamp(v+delta, lo, hi)
	return n, n != v
}
