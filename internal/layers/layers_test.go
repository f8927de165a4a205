package layers

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/born-ml/fcnet/internal/gradcheck"
	"github.com/born-ml/fcnet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func randn(rng *rand.Rand, r, c int, scale float64) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = rng.NormFloat64() * scale
	}
	return mat.NewDense(r, c, data)
}

// weighted returns Σ out∘dout, whose gradient with respect to out is dout.
func weighted(out, dout *mat.Dense) float64 {
	var prod mat.Dense
	prod.MulElem(out, dout)
	return mat.Sum(&prod)
}

func TestAffineForward(t *testing.T) {
	x := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})
	w := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
	})
	b := mat.NewDense(1, 2, []float64{0.5, -1})

	out, cache := AffineForward(x, w, b)

	// [1+3, 2+3] + b, [4+6, 5+6] + b
	want := mat.NewDense(2, 2, []float64{
		4.5, 4,
		10.5, 10,
	})
	assert.True(t, mat.Equal(want, out), "got %v", mat.Formatted(out))
	assert.Same(t, x, cache.X)
	assert.Same(t, w, cache.W)
}

func TestAffineForward_ShapeMismatchPanics(t *testing.T) {
	x := mat.NewDense(2, 3, nil)
	w := mat.NewDense(4, 2, nil)
	b := mat.NewDense(1, 2, nil)

	assert.Panics(t, func() { AffineForward(x, w, b) })
}

func TestAffineBackward_Numeric(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	x := randn(rng, 4, 5, 1)
	w := randn(rng, 5, 3, 1)
	b := randn(rng, 1, 3, 1)
	dout := randn(rng, 4, 3, 1)

	_, cache := AffineForward(x, w, b)
	dx, dw, db := AffineBackward(dout, cache)

	loss := func() float64 {
		out, _ := AffineForward(x, w, b)
		return weighted(out, dout)
	}

	assert.Less(t, gradcheck.RelativeError(tensor.Data(dx), gradcheck.Numeric(loss, tensor.Data(x), 1e-5)), 1e-7)
	assert.Less(t, gradcheck.RelativeError(tensor.Data(dw), gradcheck.Numeric(loss, tensor.Data(w), 1e-5)), 1e-7)
	assert.Less(t, gradcheck.RelativeError(tensor.Data(db), gradcheck.Numeric(loss, tensor.Data(b), 1e-5)), 1e-7)
}

func TestReLU(t *testing.T) {
	x := mat.NewDense(1, 4, []float64{-1, 0, 2, math.NaN()})

	out, cache := ReLUForward(x)
	assert.Equal(t, 0.0, out.At(0, 0))
	assert.Equal(t, 0.0, out.At(0, 1))
	assert.Equal(t, 2.0, out.At(0, 2))
	assert.True(t, math.IsNaN(out.At(0, 3)), "NaN should propagate")

	dout := mat.NewDense(1, 4, []float64{5, 6, 7, 8})
	dx := ReLUBackward(dout, cache)
	assert.Equal(t, []float64{0, 0, 7, 0}, dx.RawRowView(0))
}

func TestBatchNormForward_Train(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	x := randn(rng, 50, 3, 4)
	x.Apply(func(_, j int, v float64) float64 { return v + float64(j)*10 }, x)
	gamma := mat.NewDense(1, 3, []float64{1, 2, 3})
	beta := mat.NewDense(1, 3, []float64{0, -1, 5})
	state := NewBatchNormState(3, DefaultMomentum, DefaultEpsilon)

	out, cache := BatchNormForward(x, gamma, beta, state, ModeTrain)

	col := make([]float64, 50)
	for j := 0; j < 3; j++ {
		mat.Col(col, j, out)
		mean, variance := meanVar(col)
		assert.InDelta(t, beta.At(0, j), mean, 1e-9, "feature %d mean", j)
		assert.InDelta(t, gamma.At(0, j)*gamma.At(0, j), variance, 1e-3, "feature %d variance", j)

		mat.Col(col, j, x)
		xMean, xVar := meanVar(col)
		assert.InDelta(t, (1-DefaultMomentum)*xMean, state.RunningMean[j], 1e-12)
		assert.InDelta(t, (1-DefaultMomentum)*xVar, state.RunningVar[j], 1e-12)
	}
	assert.Equal(t, ModeTrain, cache.Mode)
}

func TestBatchNormForward_TestModeUsesRunningStats(t *testing.T) {
	state := NewBatchNormState(2, DefaultMomentum, 0)
	state.RunningMean = []float64{1, -1}
	state.RunningVar = []float64{4, 0.25}
	x := mat.NewDense(2, 2, []float64{
		3, -1,
		1, 0,
	})
	gamma := mat.NewDense(1, 2, []float64{1, 1})
	beta := mat.NewDense(1, 2, []float64{0, 0})

	out, _ := BatchNormForward(x, gamma, beta, state, ModeTest)

	// (x - mean) / sqrt(var)
	want := mat.NewDense(2, 2, []float64{
		1, 0,
		0, 2,
	})
	assert.True(t, mat.EqualApprox(want, out, 1e-12), "got %v", mat.Formatted(out))
	assert.Equal(t, []float64{1, -1}, state.RunningMean, "test mode must not touch running mean")
	assert.Equal(t, []float64{4, 0.25}, state.RunningVar, "test mode must not touch running variance")
}

func TestBatchNormBackward_Numeric(t *testing.T) {
	for _, mode := range []Mode{ModeTrain, ModeTest} {
		t.Run(mode.String(), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(5, 6))
			x := randn(rng, 6, 4, 2)
			gamma := randn(rng, 1, 4, 1)
			beta := randn(rng, 1, 4, 1)
			dout := randn(rng, 6, 4, 1)
			state := NewBatchNormState(4, DefaultMomentum, DefaultEpsilon)
			copy(state.RunningVar, []float64{1, 2, 0.5, 3})

			_, cache := BatchNormForward(x, gamma, beta, state, mode)
			dx, dgamma, dbeta := BatchNormBackward(dout, cache)

			loss := func() float64 {
				out, _ := BatchNormForward(x, gamma, beta, state, mode)
				return weighted(out, dout)
			}
			assert.Less(t, gradcheck.RelativeError(tensor.Data(dx), gradcheck.Numeric(loss, tensor.Data(x), 1e-5)), 1e-6)
			assert.Less(t, gradcheck.RelativeError(tensor.Data(dgamma), gradcheck.Numeric(loss, tensor.Data(gamma), 1e-5)), 1e-6)
			assert.Less(t, gradcheck.RelativeError(tensor.Data(dbeta), gradcheck.Numeric(loss, tensor.Data(beta), 1e-5)), 1e-6)
		})
	}
}

func TestDropout_KeepAllIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	x := randn(rng, 5, 6, 1)

	out, cache := DropoutForward(x, DropoutParams{P: 1}, rng, ModeTrain)

	assert.True(t, mat.Equal(x, out))
	dout := randn(rng, 5, 6, 1)
	assert.True(t, mat.Equal(dout, DropoutBackward(dout, cache)))
}

func TestDropout_TestModeIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	x := randn(rng, 3, 3, 1)

	out, cache := DropoutForward(x, DropoutParams{P: 0.3}, rng, ModeTest)

	assert.True(t, mat.Equal(x, out))
	assert.Nil(t, cache.Mask)
	dout := randn(rng, 3, 3, 1)
	assert.True(t, mat.Equal(dout, DropoutBackward(dout, cache)))
}

func TestDropout_Train(t *testing.T) {
	const p = 0.25
	x := tensor.Ones(200, 50)

	out, cache := DropoutForward(x, DropoutParams{P: p}, rand.New(rand.NewPCG(11, 12)), ModeTrain)

	kept := 0
	for i := 0; i < 200; i++ {
		for j := 0; j < 50; j++ {
			v := out.At(i, j)
			if v != 0 {
				kept++
				assert.InDelta(t, 1/p, v, 1e-12)
			}
		}
	}
	// Mean is preserved in expectation.
	assert.InDelta(t, p, float64(kept)/10000, 0.02)

	dout := tensor.Ones(200, 50)
	dx := DropoutBackward(dout, cache)
	assert.True(t, mat.Equal(cache.Mask, dx))
}

func TestDropout_SeedIsDeterministic(t *testing.T) {
	seed := uint64(123)
	x := randn(rand.New(rand.NewPCG(1, 1)), 8, 8, 1)
	params := DropoutParams{P: 0.5, Seed: &seed}

	a, _ := DropoutForward(x, params, rand.New(rand.NewPCG(1, 2)), ModeTrain)
	b, _ := DropoutForward(x, params, rand.New(rand.NewPCG(3, 4)), ModeTrain)

	assert.True(t, mat.Equal(a, b))
}

func TestDropout_InvalidProbabilityPanics(t *testing.T) {
	x := tensor.Ones(1, 1)
	assert.Panics(t, func() { DropoutForward(x, DropoutParams{P: 0}, nil, ModeTrain) })
	assert.Panics(t, func() { DropoutForward(x, DropoutParams{P: 1.5}, nil, ModeTrain) })
}

func TestSoftmaxLoss_Uniform(t *testing.T) {
	scores := tensor.Zeros(4, 3)
	labels := []int{0, 1, 2, 0}

	loss, dscores := SoftmaxLoss(scores, labels)

	assert.InDelta(t, math.Log(3), loss, 1e-12)
	// (1/3 - onehot) / N
	assert.InDelta(t, (1.0/3-1)/4, dscores.At(0, 0), 1e-12)
	assert.InDelta(t, (1.0/3)/4, dscores.At(0, 1), 1e-12)
}

func TestSoftmaxLoss_Numeric(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 14))
	scores := randn(rng, 5, 4, 3)
	labels := []int{3, 0, 1, 1, 2}

	_, dscores := SoftmaxLoss(scores, labels)

	loss := func() float64 {
		l, _ := SoftmaxLoss(scores, labels)
		return l
	}
	assert.Less(t, gradcheck.RelativeError(tensor.Data(dscores), gradcheck.Numeric(loss, tensor.Data(scores), 1e-5)), 1e-6)
}

func TestSoftmaxLoss_LargeScoresAreStable(t *testing.T) {
	scores := mat.NewDense(1, 2, []float64{1000, 0})

	loss, dscores := SoftmaxLoss(scores, []int{0})

	assert.InDelta(t, 0, loss, 1e-12)
	assert.False(t, math.IsNaN(dscores.At(0, 1)))
}

func meanVar(v []float64) (mean, variance float64) {
	for _, x := range v {
		mean += x
	}
	mean /= float64(len(v))
	for _, x := range v {
		variance += (x - mean) * (x - mean)
	}
	return mean, variance / float64(len(v))
}
