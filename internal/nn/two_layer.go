package nn

import (
	"github.com/born-ml/fcnet/internal/layers"
	"github.com/born-ml/fcnet/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// TwoLayerNet is a fixed-depth softmax classifier:
//
//	affine - relu - affine - softmax
//
// Its parameters are W1 (InputDim×HiddenDim), b1, W2 (HiddenDim×NumClasses) and b2.
type TwoLayerNet struct {
	config TwoLayerConfig
	params *ParameterStore
}

// NewTwoLayerNet validates cfg and initializes the weights from N(0, WeightScale²) with
// zero biases.
func NewTwoLayerNet(cfg TwoLayerConfig) (*TwoLayerNet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dims := []int{cfg.InputDim, cfg.HiddenDim, cfg.NumClasses}
	return &TwoLayerNet{
		config: cfg,
		params: initParams(dims, cfg.WeightScale, false, cfg.Precision, newSource(cfg.InitSeed)),
	}, nil
}

// Config returns the network configuration.
func (n *TwoLayerNet) Config() TwoLayerConfig {
	return n.config
}

// Params returns the parameter store.
func (n *TwoLayerNet) Params() *ParameterStore {
	return n.params
}

// Compute runs the network on x. See Classifier for the meaning of labels.
func (n *TwoLayerNet) Compute(x mat.Matrix, labels []int) (*Result, error) {
	cfg := &n.config
	in, err := prepareBatch(x, labels, cfg.InputDim, cfg.NumClasses, cfg.Precision)
	if err != nil {
		return nil, err
	}

	l1, l2 := n.params.Layer(1), n.params.Layer(2)
	hidden, hc := AffineReLUForward(in, l1.W, l1.B)
	tensor.Cast(hidden, cfg.Precision)
	scores, oc := layers.AffineForward(hidden, l2.W, l2.B)
	tensor.Cast(scores, cfg.Precision)

	if labels == nil {
		return &Result{Scores: scores}, nil
	}

	loss, dscores := layers.SoftmaxLoss(scores, labels)
	loss += l2Penalty(n.params, cfg.Reg)

	grads := backward([]cacheEntry{plainEntry{hc}, outputEntry{oc}}, dscores)
	addL2Gradient(grads, n.params, cfg.Reg)
	grads.Each(func(_ string, m *mat.Dense) {
		tensor.Cast(m, cfg.Precision)
	})

	return &Result{
		Scores: scores,
		Loss:   cfg.Precision.Round(loss),
		Grads:  grads,
	}, nil
}
