package layers

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// AffineCache holds the input and weights of an affine forward pass.
type AffineCache struct {
	X *mat.Dense // [batch, in]
	W *mat.Dense // [in, out]
}

// AffineForward computes out = x @ w + b.
//
// Shapes:
//   - x: [batch, in]
//   - w: [in, out]
//   - b: [1, out], broadcast over the batch
//   - out: [batch, out]
func AffineForward(x, w, b *mat.Dense) (*mat.Dense, AffineCache) {
	_, in := x.Dims()
	wr, wc := w.Dims()
	if in != wr {
		panic(fmt.Sprintf("AffineForward: input has %d features, weights expect %d", in, wr))
	}
	br, bc := b.Dims()
	if br != 1 || bc != wc {
		panic(fmt.Sprintf("AffineForward: bias shape (%d, %d), want (1, %d)", br, bc, wc))
	}

	var out mat.Dense
	out.Mul(x, w)

	bias := b.RawRowView(0)
	n, _ := out.Dims()
	for i := 0; i < n; i++ {
		floats.Add(out.RawRowView(i), bias)
	}

	return &out, AffineCache{X: x, W: w}
}

// AffineBackward computes the gradients of an affine layer.
//
// Given dout [batch, out] it returns:
//   - dx = dout @ W.T   [batch, in]
//   - dw = x.T @ dout   [in, out]
//   - db = Σ_batch dout [1, out]
func AffineBackward(dout *mat.Dense, cache AffineCache) (dx, dw, db *mat.Dense) {
	n, m := dout.Dims()
	xr, _ := cache.X.Dims()
	_, wc := cache.W.Dims()
	if n != xr || m != wc {
		panic(fmt.Sprintf("AffineBackward: upstream gradient (%d, %d) does not match cache (%d, %d)", n, m, xr, wc))
	}

	dx = new(mat.Dense)
	dx.Mul(dout, cache.W.T())

	dw = new(mat.Dense)
	dw.Mul(cache.X.T(), dout)

	db = mat.NewDense(1, m, nil)
	sum := db.RawRowView(0)
	for i := 0; i < n; i++ {
		floats.Add(sum, dout.RawRowView(i))
	}

	return dx, dw, db
}
