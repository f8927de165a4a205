package layers

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ReLUCache holds the input of a ReLU forward pass.
type ReLUCache struct {
	X *mat.Dense
}

// ReLUForward computes out = max(x, 0) elementwise.
func ReLUForward(x *mat.Dense) (*mat.Dense, ReLUCache) {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		if v > 0 || math.IsNaN(v) {
			return v
		}
		return 0
	}, x)
	return &out, ReLUCache{X: x}
}

// ReLUBackward passes dout through where the forward input was positive.
func ReLUBackward(dout *mat.Dense, cache ReLUCache) *mat.Dense {
	var dx mat.Dense
	dx.Apply(func(i, j int, v float64) float64 {
		if cache.X.At(i, j) > 0 {
			return v
		}
		return 0
	}, dout)
	return &dx
}
