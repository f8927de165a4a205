package layers

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// DropoutParams configures inverted dropout.
type DropoutParams struct {
	// P is the probability of keeping a unit, in (0, 1]. Kept units are scaled by 1/P.
	P float64

	// Seed, when set, re-seeds the mask source on every forward call so that identical
	// inputs always see the same mask.
	Seed *uint64
}

// DropoutCache holds the sampled mask (already scaled by 1/P).
type DropoutCache struct {
	Mode Mode
	Mask *mat.Dense // nil in ModeTest
}

// NewSource returns a PCG-backed generator for seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// DropoutForward applies inverted dropout.
//
// In ModeTrain each element is kept with probability P and scaled by 1/P; the mask is drawn
// from rng unless params.Seed is set, in which case a fresh source seeded with *params.Seed is
// used. In ModeTest the input is returned unchanged (as a copy).
func DropoutForward(x *mat.Dense, params DropoutParams, rng *rand.Rand, mode Mode) (*mat.Dense, DropoutCache) {
	if params.P <= 0 || params.P > 1 {
		panic(fmt.Sprintf("DropoutForward: keep probability %v outside (0, 1]", params.P))
	}

	switch mode {
	case ModeTest:
		return mat.DenseCopyOf(x), DropoutCache{Mode: mode}
	case ModeTrain:
	default:
		panic(fmt.Sprintf("DropoutForward: invalid mode %d", int(mode)))
	}

	if params.Seed != nil {
		rng = NewSource(*params.Seed)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	n, d := x.Dims()
	mask := mat.NewDense(n, d, nil)
	scale := 1 / params.P
	for i := 0; i < n; i++ {
		row := mask.RawRowView(i)
		for j := range row {
			if rng.Float64() < params.P {
				row[j] = scale
			}
		}
	}

	var out mat.Dense
	out.MulElem(x, mask)
	return &out, DropoutCache{Mode: mode, Mask: mask}
}

// DropoutBackward routes dout through the kept units, scaled like the forward pass.
func DropoutBackward(dout *mat.Dense, cache DropoutCache) *mat.Dense {
	if cache.Mode == ModeTest {
		return mat.DenseCopyOf(dout)
	}
	var dx mat.Dense
	dx.MulElem(dout, cache.Mask)
	return &dx
}
