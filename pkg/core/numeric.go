package core

import "golang.org/x/exp/constraints"

// Clamp limits v to the range [lo, hi]
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CeilDiv returns a/b rounded up
func CeilDiv[T constraints.Integer](a, b T) T {
	return (a + b - 1) / b
}
