package tensor

import "fmt"

// Shape represents the dimensions of an array, outermost first.
type Shape []int

// NumElements returns the total number of elements described by the shape.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Rows returns the leading (batch) dimension and the product of the remaining ones.
//
// A shape (N, d_1, ..., d_k) maps to (N, d_1*...*d_k); a rank-1 shape (N) maps to (N, 1).
func (s Shape) Rows() (rows, cols int) {
	switch len(s) {
	case 0:
		return 1, 1
	case 1:
		return s[0], 1
	default:
		return s[0], Shape(s[1:]).NumElements()
	}
}
