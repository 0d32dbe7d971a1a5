package core

import "golang.org/x/exp/constraints"

// Series is a time series of ordered values
type Series[T constraints.Ordered] []T

// Last returns the value at a specified position from the end
// position 0 is the last value, 1 is the second-to-last, etc.
func (s Series[T]) Last(position int) T {
	return s[len(s)-1-position]
}

// LastValues returns a slice with the last 'size' values
// If size exceeds the length, returns the entire series
func (s Series[T]) LastValues(size int) Series[T] {
	if l := len(s); l > size {
		return s[l-size:]
	}
	return s
}

// Max returns the highest value of the series, or the zero value when empty
func (s Series[T]) Max() T {
	var out T
	for i, v := range s {
		if i == 0 || v > out {
			out = v
		}
	}
	return out
}

// Min returns the lowest value of the series, or the zero value when empty
func (s Series[T]) Min() T {
	var out T
	for i, v := range s {
		if i == 0 || v < out {
			out = v
		}
	}
	return out
}
