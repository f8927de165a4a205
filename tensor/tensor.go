// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/fcnet/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// Precision is the floating point precision a network stores values in.
type Precision = tensor.Precision

// Supported precisions.
const (
	Float32 Precision = tensor.Float32
	Float64 Precision = tensor.Float64
)

// ParsePrecision converts "float32"/"float64" into a Precision.
func ParsePrecision(s string) (Precision, error) {
	return tensor.ParsePrecision(s)
}

// Shape represents the dimensions of an array, outermost first.
type Shape = tensor.Shape

// Flatten reshapes row-major data of the given shape into a (batch, features) matrix.
//
// Example:
//
//	x, err := tensor.Flatten(data, tensor.Shape{2, 3, 4})  // 2×12
func Flatten(data []float64, shape Shape) (*mat.Dense, error) {
	return tensor.Flatten(data, shape)
}
