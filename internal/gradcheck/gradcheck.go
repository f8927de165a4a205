// Package gradcheck estimates gradients with centered finite differences and compares them
// against analytic gradients.
package gradcheck

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
)

// DefaultStep is the finite-difference step used when none is given.
const DefaultStep = 1e-5

// Floor bounds the denominator of RelativeError from below.
//
// Gradients that are analytically zero (a bias feeding batch normalization, for example)
// are estimated as finite-difference roundoff; without a floor that noise would read as a
// large relative error.
const Floor = 1e-4

// Numeric estimates ∂f/∂x_i for every element of x with a centered difference of width step.
//
// f is evaluated after x has been overwritten in place, so x is typically the backing slice
// of a parameter matrix and f re-runs the model. The original contents of x are restored
// before Numeric returns.
func Numeric(f func() float64, x []float64, step float64) []float64 {
	if step <= 0 {
		step = DefaultStep
	}
	orig := make([]float64, len(x))
	copy(orig, x)
	defer copy(x, orig)

	return fd.Gradient(nil, func(v []float64) float64 {
		copy(x, v)
		return f()
	}, orig, &fd.Settings{
		Formula: fd.Central,
		Step:    step,
	})
}

// RelativeError returns max_i |a_i - b_i| / max(Floor, |a_i| + |b_i|).
func RelativeError(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("gradcheck: length mismatch %d vs %d", len(a), len(b)))
	}
	worst := 0.0
	for i := range a {
		den := math.Max(Floor, math.Abs(a[i])+math.Abs(b[i]))
		worst = math.Max(worst, math.Abs(a[i]-b[i])/den)
	}
	return worst
}
