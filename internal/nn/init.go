package nn

import (
	"math/rand/v2"

	"github.com/born-ml/fcnet/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// Gaussian returns an r×c matrix with entries drawn independently from N(0, std²).
//
// A zero std yields an all-zero matrix.
func Gaussian(r, c int, std float64, rng *rand.Rand) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = rng.NormFloat64() * std
	}
	return mat.NewDense(r, c, data)
}

// newSource returns a PCG generator seeded with seed, or randomly when seed is nil.
func newSource(seed *uint64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewPCG(*seed, ^*seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// initParams builds the parameter store of a network with layer widths dims
// (input, hidden..., classes).
//
// Weights are drawn from N(0, weightScale²); biases and shifts start at zero, scales at
// one. Scale/shift pairs exist for every hidden layer when normalized is set and never for
// the output layer. Every array is cast to p.
func initParams(dims []int, weightScale float64, normalized bool, p tensor.Precision, rng *rand.Rand) *ParameterStore {
	numLayers := len(dims) - 1
	store := &ParameterStore{table: newTable(numLayers), precision: p}

	for l := 1; l <= numLayers; l++ {
		in, out := dims[l-1], dims[l]
		layer := store.Layer(l)
		layer.W = tensor.Cast(Gaussian(in, out, weightScale, rng), p)
		layer.B = tensor.Zeros(1, out)

		if normalized && l < numLayers {
			layer.Gamma = tensor.Ones(1, out)
			layer.Beta = tensor.Zeros(1, out)
		}
	}

	return store
}
