package layers

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Default batch normalization hyperparameters.
const (
	DefaultMomentum = 0.9
	DefaultEpsilon  = 1e-5
)

// BatchNormState is the mutable per-layer state of batch normalization.
//
// Running statistics are updated by every train-mode forward pass with
//
//	running = Momentum*running + (1-Momentum)*batch
//
// and read, never written, in test mode.
type BatchNormState struct {
	Momentum    float64
	Epsilon     float64
	RunningMean []float64
	RunningVar  []float64
}

// NewBatchNormState creates state for dim features with zeroed running statistics.
func NewBatchNormState(dim int, momentum, epsilon float64) *BatchNormState {
	return &BatchNormState{
		Momentum:    momentum,
		Epsilon:     epsilon,
		RunningMean: make([]float64, dim),
		RunningVar:  make([]float64, dim),
	}
}

// Dim returns the number of normalized features.
func (s *BatchNormState) Dim() int {
	return len(s.RunningMean)
}

// BatchNormCache holds what BatchNormBackward needs.
type BatchNormCache struct {
	Mode   Mode
	XHat   *mat.Dense // normalized input [batch, dim]
	Gamma  *mat.Dense // [1, dim]
	InvStd []float64  // 1/sqrt(var+eps) per feature
}

// BatchNormForward normalizes each feature of x and applies scale gamma and shift beta.
//
// In ModeTrain the batch mean and (biased) variance are used and the running statistics in
// state are updated. In ModeTest the running statistics are used and state is not modified.
//
// Shapes:
//   - x: [batch, dim]
//   - gamma, beta: [1, dim]
func BatchNormForward(x, gamma, beta *mat.Dense, state *BatchNormState, mode Mode) (*mat.Dense, BatchNormCache) {
	n, d := x.Dims()
	if state.Dim() != d {
		panic(fmt.Sprintf("BatchNormForward: state has %d features, input has %d", state.Dim(), d))
	}
	if _, gc := gamma.Dims(); gc != d {
		panic(fmt.Sprintf("BatchNormForward: gamma has %d features, input has %d", gc, d))
	}
	if _, bc := beta.Dims(); bc != d {
		panic(fmt.Sprintf("BatchNormForward: beta has %d features, input has %d", bc, d))
	}

	mean := make([]float64, d)
	variance := make([]float64, d)
	switch mode {
	case ModeTrain:
		col := make([]float64, n)
		for j := 0; j < d; j++ {
			mat.Col(col, j, x)
			mean[j], variance[j] = stat.PopMeanVariance(col, nil)
		}
		m := state.Momentum
		for j := 0; j < d; j++ {
			state.RunningMean[j] = m*state.RunningMean[j] + (1-m)*mean[j]
			state.RunningVar[j] = m*state.RunningVar[j] + (1-m)*variance[j]
		}
	case ModeTest:
		copy(mean, state.RunningMean)
		copy(variance, state.RunningVar)
	default:
		panic(fmt.Sprintf("BatchNormForward: invalid mode %d", int(mode)))
	}

	invStd := make([]float64, d)
	for j := range invStd {
		invStd[j] = 1 / math.Sqrt(variance[j]+state.Epsilon)
	}

	g := gamma.RawRowView(0)
	b := beta.RawRowView(0)
	xhat := mat.NewDense(n, d, nil)
	out := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		xRow := x.RawRowView(i)
		hRow := xhat.RawRowView(i)
		oRow := out.RawRowView(i)
		for j := 0; j < d; j++ {
			hRow[j] = (xRow[j] - mean[j]) * invStd[j]
			oRow[j] = g[j]*hRow[j] + b[j]
		}
	}

	return out, BatchNormCache{Mode: mode, XHat: xhat, Gamma: gamma, InvStd: invStd}
}

// BatchNormBackward returns the gradients with respect to the input, gamma and beta.
//
// For a train-mode cache, with dxhat = dout*gamma:
//
//	dx = invStd/N * (N*dxhat - Σ dxhat - xhat*Σ(dxhat*xhat))
//
// For a test-mode cache the statistics are constants and dx = dout*gamma*invStd.
func BatchNormBackward(dout *mat.Dense, cache BatchNormCache) (dx, dgamma, dbeta *mat.Dense) {
	n, d := dout.Dims()
	if r, c := cache.XHat.Dims(); r != n || c != d {
		panic(fmt.Sprintf("BatchNormBackward: upstream gradient (%d, %d) does not match cache (%d, %d)", n, d, r, c))
	}

	g := cache.Gamma.RawRowView(0)
	dgamma = mat.NewDense(1, d, nil)
	dbeta = mat.NewDense(1, d, nil)
	dg := dgamma.RawRowView(0)
	db := dbeta.RawRowView(0)

	// Σ dxhat and Σ dxhat*xhat per feature.
	sumDxhat := make([]float64, d)
	sumDxhatXhat := make([]float64, d)
	for i := 0; i < n; i++ {
		dRow := dout.RawRowView(i)
		hRow := cache.XHat.RawRowView(i)
		for j := 0; j < d; j++ {
			db[j] += dRow[j]
			dg[j] += dRow[j] * hRow[j]
			dxhat := dRow[j] * g[j]
			sumDxhat[j] += dxhat
			sumDxhatXhat[j] += dxhat * hRow[j]
		}
	}

	dx = mat.NewDense(n, d, nil)
	fn := float64(n)
	for i := 0; i < n; i++ {
		dRow := dout.RawRowView(i)
		hRow := cache.XHat.RawRowView(i)
		xRow := dx.RawRowView(i)
		for j := 0; j < d; j++ {
			dxhat := dRow[j] * g[j]
			if cache.Mode == ModeTest {
				xRow[j] = dxhat * cache.InvStd[j]
				continue
			}
			xRow[j] = cache.InvStd[j] / fn * (fn*dxhat - sumDxhat[j] - hRow[j]*sumDxhatXhat[j])
		}
	}

	return dx, dgamma, dbeta
}
