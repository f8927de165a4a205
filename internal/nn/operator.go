package nn

import (
	"math/rand/v2"

	"github.com/born-ml/fcnet/internal/layers"
	"gonum.org/v1/gonum/mat"
)

// RunMode is the train/test switch threaded through every forward call.
type RunMode = layers.Mode

// Run modes.
const (
	ModeTrain = layers.ModeTrain
	ModeTest  = layers.ModeTest
)

// OperatorKind names the composite operator a hidden layer uses.
type OperatorKind int

// Hidden layer operator kinds.
const (
	OperatorPlain       OperatorKind = iota // affine - relu
	OperatorNormalized                      // affine - batchnorm - relu
	OperatorRegularized                     // affine - relu - dropout
)

// String returns a short description of the operator.
func (k OperatorKind) String() string {
	switch k {
	case OperatorPlain:
		return "affine-relu"
	case OperatorNormalized:
		return "affine-batchnorm-relu"
	case OperatorRegularized:
		return "affine-relu-dropout"
	default:
		return "unknown"
	}
}

// cacheEntry is one layer's forward intermediates, bound to the backward operator that
// consumes them.
type cacheEntry interface {
	backward(dout *mat.Dense) (dx *mat.Dense, grads LayerParams)
}

// hiddenOperator is the forward half of a hidden layer's composite operator. One is chosen
// per hidden layer at construction.
type hiddenOperator interface {
	kind() OperatorKind
	forward(x *mat.Dense, p *LayerParams, mode RunMode) (*mat.Dense, cacheEntry)
}

type plainOperator struct{}

func (plainOperator) kind() OperatorKind { return OperatorPlain }

func (plainOperator) forward(x *mat.Dense, p *LayerParams, _ RunMode) (*mat.Dense, cacheEntry) {
	out, cache := AffineReLUForward(x, p.W, p.B)
	return out, plainEntry{cache}
}

type plainEntry struct{ cache AffineReLUCache }

func (e plainEntry) backward(dout *mat.Dense) (*mat.Dense, LayerParams) {
	dx, dw, db := AffineReLUBackward(dout, e.cache)
	return dx, LayerParams{W: dw, B: db}
}

type normalizedOperator struct {
	state *layers.BatchNormState
}

func (normalizedOperator) kind() OperatorKind { return OperatorNormalized }

func (o normalizedOperator) forward(x *mat.Dense, p *LayerParams, mode RunMode) (*mat.Dense, cacheEntry) {
	out, cache := AffineBatchNormReLUForward(x, p.W, p.B, p.Gamma, p.Beta, o.state, mode)
	return out, normalizedEntry{cache}
}

type normalizedEntry struct{ cache AffineBatchNormReLUCache }

func (e normalizedEntry) backward(dout *mat.Dense) (*mat.Dense, LayerParams) {
	dx, dw, db, dgamma, dbeta := AffineBatchNormReLUBackward(dout, e.cache)
	return dx, LayerParams{W: dw, B: db, Gamma: dgamma, Beta: dbeta}
}

type regularizedOperator struct {
	params layers.DropoutParams
	rng    *rand.Rand
}

func (regularizedOperator) kind() OperatorKind { return OperatorRegularized }

func (o regularizedOperator) forward(x *mat.Dense, p *LayerParams, mode RunMode) (*mat.Dense, cacheEntry) {
	out, cache := AffineReLUDropoutForward(x, p.W, p.B, o.params, o.rng, mode)
	return out, regularizedEntry{cache}
}

type regularizedEntry struct{ cache AffineReLUDropoutCache }

func (e regularizedEntry) backward(dout *mat.Dense) (*mat.Dense, LayerParams) {
	dx, dw, db := AffineReLUDropoutBackward(dout, e.cache)
	return dx, LayerParams{W: dw, B: db}
}

// outputEntry caches the terminal affine layer.
type outputEntry struct{ cache layers.AffineCache }

func (e outputEntry) backward(dout *mat.Dense) (*mat.Dense, LayerParams) {
	dx, dw, db := layers.AffineBackward(dout, e.cache)
	return dx, LayerParams{W: dw, B: db}
}
