package nn

import (
	"math/rand/v2"

	"github.com/born-ml/fcnet/internal/layers"
	"gonum.org/v1/gonum/mat"
)

// AffineReLUCache is the cache of AffineReLUForward.
type AffineReLUCache struct {
	Affine layers.AffineCache
	ReLU   layers.ReLUCache
}

// AffineReLUForward performs an affine transform followed by a ReLU.
func AffineReLUForward(x, w, b *mat.Dense) (*mat.Dense, AffineReLUCache) {
	a, fc := layers.AffineForward(x, w, b)
	out, rc := layers.ReLUForward(a)
	return out, AffineReLUCache{Affine: fc, ReLU: rc}
}

// AffineReLUBackward unwinds AffineReLUForward: relu, then affine.
func AffineReLUBackward(dout *mat.Dense, cache AffineReLUCache) (dx, dw, db *mat.Dense) {
	da := layers.ReLUBackward(dout, cache.ReLU)
	return layers.AffineBackward(da, cache.Affine)
}

// AffineBatchNormReLUCache is the cache of AffineBatchNormReLUForward.
type AffineBatchNormReLUCache struct {
	Affine layers.AffineCache
	Norm   layers.BatchNormCache
	ReLU   layers.ReLUCache
}

// AffineBatchNormReLUForward performs affine, batch normalization and ReLU.
//
// state supplies (and in ModeTrain receives) the running statistics of this layer.
func AffineBatchNormReLUForward(x, w, b, gamma, beta *mat.Dense, state *layers.BatchNormState, mode layers.Mode) (*mat.Dense, AffineBatchNormReLUCache) {
	a, fc := layers.AffineForward(x, w, b)
	n, bc := layers.BatchNormForward(a, gamma, beta, state, mode)
	out, rc := layers.ReLUForward(n)
	return out, AffineBatchNormReLUCache{Affine: fc, Norm: bc, ReLU: rc}
}

// AffineBatchNormReLUBackward unwinds AffineBatchNormReLUForward: relu, batchnorm, affine.
func AffineBatchNormReLUBackward(dout *mat.Dense, cache AffineBatchNormReLUCache) (dx, dw, db, dgamma, dbeta *mat.Dense) {
	dn := layers.ReLUBackward(dout, cache.ReLU)
	da, dgamma, dbeta := layers.BatchNormBackward(dn, cache.Norm)
	dx, dw, db = layers.AffineBackward(da, cache.Affine)
	return dx, dw, db, dgamma, dbeta
}

// AffineReLUDropoutCache is the cache of AffineReLUDropoutForward.
type AffineReLUDropoutCache struct {
	Inner   AffineReLUCache
	Dropout layers.DropoutCache
}

// AffineReLUDropoutForward performs affine and ReLU followed by dropout.
func AffineReLUDropoutForward(x, w, b *mat.Dense, params layers.DropoutParams, rng *rand.Rand, mode layers.Mode) (*mat.Dense, AffineReLUDropoutCache) {
	h, ic := AffineReLUForward(x, w, b)
	out, dc := layers.DropoutForward(h, params, rng, mode)
	return out, AffineReLUDropoutCache{Inner: ic, Dropout: dc}
}

// AffineReLUDropoutBackward unwinds AffineReLUDropoutForward: dropout, relu, affine.
func AffineReLUDropoutBackward(dout *mat.Dense, cache AffineReLUDropoutCache) (dx, dw, db *mat.Dense) {
	dh := layers.DropoutBackward(dout, cache.Dropout)
	return AffineReLUBackward(dh, cache.Inner)
}
