// Package nn implements fully-connected softmax classifiers with explicit, hand-derived
// forward and backward passes.
//
// Two classifiers are provided:
//   - TwoLayerNet: affine - relu - affine - softmax
//   - FullyConnectedNet: {affine - [batchnorm] - relu - [dropout]} x (L - 1) - affine - softmax
//
// Both are built from composite layer operators (AffineReLU, AffineBatchNormReLU,
// AffineReLUDropout) over the primitives of package layers. Each forward operator returns a
// typed cache consumed by its backward counterpart. Parameters live in a ParameterStore keyed
// "W1", "b1", "gamma1", "beta1", ...; Compute returns Gradients with the same keys and shapes.
//
// Networks are not safe for concurrent use: batch normalization running statistics and the
// dropout source are mutated by train-mode calls. Serialize calls per instance, or give each
// worker its own network.
package nn

import (
	"strconv"

	"github.com/born-ml/fcnet/internal/tensor"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Classifier is implemented by TwoLayerNet and FullyConnectedNet.
type Classifier interface {
	// Compute runs a forward pass over x ([batch, InputDim]). With nil labels it runs in test
	// mode and returns scores only. Otherwise it runs in train mode and also returns the loss
	// and the gradient of every parameter.
	Compute(x mat.Matrix, labels []int) (*Result, error)

	// Params returns the parameter store the optimizer reads and updates between calls.
	Params() *ParameterStore
}

// Result is the outcome of one Compute call.
type Result struct {
	Scores *mat.Dense // [batch, classes], raw class scores
	Loss   float64    // data loss plus L2 term; zero in test mode
	Grads  *Gradients // nil in test mode
}

// Predict returns the highest-scoring class of every row of x.
func Predict(c Classifier, x mat.Matrix) ([]int, error) {
	res, err := c.Compute(x, nil)
	if err != nil {
		return nil, err
	}
	n, _ := res.Scores.Dims()
	pred := make([]int, n)
	for i := range pred {
		pred[i] = floats.MaxIdx(res.Scores.RawRowView(i))
	}
	return pred, nil
}

// Accuracy returns the fraction of rows of x whose predicted class equals the label.
func Accuracy(c Classifier, x mat.Matrix, labels []int) (float64, error) {
	pred, err := Predict(c, x)
	if err != nil {
		return 0, err
	}
	if len(labels) != len(pred) {
		return 0, shapeError("labels", len(pred), len(labels), "labels")
	}
	correct := 0
	for i, p := range pred {
		if p == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(pred)), nil
}

// prepareBatch validates x and labels and returns a private copy of x cast to p.
func prepareBatch(x mat.Matrix, labels []int, inputDim, numClasses int, p tensor.Precision) (*mat.Dense, error) {
	n, d := x.Dims()
	if n == 0 {
		return nil, shapeError("batch", 1, 0, "rows at least")
	}
	if d != inputDim {
		return nil, shapeError("batch", inputDim, d, "features")
	}
	if labels != nil {
		if len(labels) != n {
			return nil, shapeError("labels", n, len(labels), "labels")
		}
		for i, y := range labels {
			if y < 0 || y >= numClasses {
				return nil, shapeError(labelField(i), numClasses, y, "classes, label")
			}
		}
	}
	return tensor.Cast(mat.DenseCopyOf(x), p), nil
}

func labelField(i int) string {
	return "labels[" + strconv.Itoa(i) + "]"
}

// l2Penalty returns 0.5 * reg * Σ_l ‖W_l‖².
func l2Penalty(params *ParameterStore, reg float64) float64 {
	sum := 0.0
	for l := 1; l <= params.NumLayers(); l++ {
		w := tensor.Data(params.Layer(l).W)
		sum += floats.Dot(w, w)
	}
	return 0.5 * reg * sum
}

// addL2Gradient adds reg * W_l to every weight gradient.
func addL2Gradient(grads *Gradients, params *ParameterStore, reg float64) {
	for l := 1; l <= params.NumLayers(); l++ {
		floats.AddScaled(tensor.Data(grads.Layer(l).W), reg, tensor.Data(params.Layer(l).W))
	}
}

// backward pops caches in reverse, filling grads layer by layer from the output down.
func backward(caches []cacheEntry, dscores *mat.Dense) *Gradients {
	grads := &Gradients{table: newTable(len(caches))}
	dout := dscores
	for len(caches) > 0 {
		l := len(caches)
		entry := caches[l-1]
		caches = caches[:l-1]

		var g LayerParams
		dout, g = entry.backward(dout)
		*grads.Layer(l) = g
	}
	return grads
}
