package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Flatten reshapes row-major data of the given shape into a (batch, features) matrix.
//
// The data slice is copied; the result owns its storage.
func Flatten(data []float64, shape Shape) (*mat.Dense, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data has %d elements, shape %v needs %d", len(data), shape, shape.NumElements())
	}
	r, c := shape.Rows()
	buf := make([]float64, len(data))
	copy(buf, data)
	return mat.NewDense(r, c, buf), nil
}

// Full returns an r×c matrix with every element set to v.
func Full(r, c int, v float64) *mat.Dense {
	data := make([]float64, r*c)
	if v != 0 {
		for i := range data {
			data[i] = v
		}
	}
	return mat.NewDense(r, c, data)
}

// Zeros returns an r×c zero matrix.
func Zeros(r, c int) *mat.Dense {
	return mat.NewDense(r, c, nil)
}

// Ones returns an r×c matrix of ones.
func Ones(r, c int) *mat.Dense {
	return Full(r, c, 1)
}

// Clone returns a deep copy of m.
func Clone(m mat.Matrix) *mat.Dense {
	return mat.DenseCopyOf(m)
}

// Cast rounds every element of m to the precision in place and returns m.
func Cast(m *mat.Dense, p Precision) *mat.Dense {
	if p == Float32 {
		raw := m.RawMatrix()
		for i := 0; i < raw.Rows; i++ {
			p.RoundSlice(raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols])
		}
	}
	return m
}

// Data returns the contiguous backing slice of m.
//
// Writes to the slice are visible through m. Panics if m is a strided view.
func Data(m *mat.Dense) []float64 {
	raw := m.RawMatrix()
	if raw.Stride != raw.Cols && raw.Rows > 1 {
		panic(fmt.Sprintf("tensor.Data: matrix is a strided view (stride %d, cols %d)", raw.Stride, raw.Cols))
	}
	return raw.Data[:raw.Rows*raw.Cols]
}

// SameShape reports whether a and b have identical dimensions.
func SameShape(a, b mat.Matrix) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return ar == br && ac == bc
}
