package nn

import (
	"log/slog"
	"math/rand/v2"

	"github.com/born-ml/fcnet/internal/layers"
	"github.com/born-ml/fcnet/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// FullyConnectedNet is a softmax classifier with L-1 hidden layers:
//
//	{affine - [batchnorm] - relu - [dropout]} x (L - 1) - affine - softmax
//
// The operator of every hidden layer is fixed at construction from the configuration.
//
// A FullyConnectedNet is not safe for concurrent use.
//
// Example:
//
//	cfg := nn.DefaultConfig(100, 50)
//	cfg.UseBatchNorm = true
//	net, err := nn.NewFullyConnectedNet(cfg)
//	res, err := net.Compute(x, labels) // res.Loss, res.Grads
type FullyConnectedNet struct {
	config Config
	params *ParameterStore
	hidden []hiddenOperator         // one per hidden layer
	norms  []*layers.BatchNormState // one per hidden layer when normalized, else nil
	rng    *rand.Rand               // dropout source when no seed is configured
}

// NewFullyConnectedNet validates cfg and builds a network with freshly initialized
// parameters. Invalid configurations return a *ConfigError.
func NewFullyConnectedNet(cfg Config) (*FullyConnectedNet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.HiddenDims = append([]int(nil), cfg.HiddenDims...)

	params := initParams(cfg.Dims(), cfg.WeightScale, cfg.UseBatchNorm, cfg.Precision, newSource(cfg.InitSeed))
	return assemble(cfg, params), nil
}

// assemble selects every hidden layer's operator and creates its state.
func assemble(cfg Config, params *ParameterStore) *FullyConnectedNet {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	n := &FullyConnectedNet{
		config: cfg,
		params: params,
		hidden: make([]hiddenOperator, len(cfg.HiddenDims)),
		rng:    newSource(nil),
	}

	if cfg.UseBatchNorm && cfg.UseDropout() {
		logger.Warn("batch normalization and dropout both requested; dropout is not applied",
			"dropout", cfg.Dropout)
	}

	for i, width := range cfg.HiddenDims {
		switch {
		case cfg.UseBatchNorm:
			state := layers.NewBatchNormState(width, cfg.BatchNorm.Momentum, cfg.BatchNorm.Epsilon)
			n.norms = append(n.norms, state)
			n.hidden[i] = normalizedOperator{state: state}
		case cfg.UseDropout():
			n.hidden[i] = regularizedOperator{
				params: layers.DropoutParams{P: cfg.Dropout, Seed: cfg.Seed},
				rng:    n.rng,
			}
		default:
			n.hidden[i] = plainOperator{}
		}
		logger.Debug("hidden layer", "layer", i+1, "width", width, "operator", n.hidden[i].kind())
	}

	logger.Debug("network assembled",
		"layers", cfg.NumLayers(),
		"input_dim", cfg.InputDim,
		"num_classes", cfg.NumClasses,
		"parameters", params.Len(),
		"precision", cfg.Precision)

	return n
}

// Config returns a copy of the network configuration.
func (n *FullyConnectedNet) Config() Config {
	cfg := n.config
	cfg.HiddenDims = append([]int(nil), n.config.HiddenDims...)
	return cfg
}

// Params returns the parameter store.
func (n *FullyConnectedNet) Params() *ParameterStore {
	return n.params
}

// NumLayers returns L, the number of affine layers.
func (n *FullyConnectedNet) NumLayers() int {
	return n.params.NumLayers()
}

// Operator returns the operator kind of hidden layer l (1-based, l < L).
func (n *FullyConnectedNet) Operator(l int) OperatorKind {
	return n.hidden[l-1].kind()
}

// NormState returns the batch normalization state of hidden layer l (1-based), or nil
// when the network is not normalized.
func (n *FullyConnectedNet) NormState(l int) *layers.BatchNormState {
	if n.norms == nil {
		return nil
	}
	return n.norms[l-1]
}

// Compute runs the network on x ([batch, InputDim]).
//
// With nil labels the pass runs in test mode: batch normalization uses its running
// statistics without updating them, dropout is the identity, and only Scores is set.
//
// With labels the pass runs in train mode and the result also carries the softmax loss plus
// 0.5*Reg*Σ‖W‖² and the gradient of that loss with respect to every parameter.
//
// Returns a *ShapeMismatchError when x has the wrong width or labels do not match the
// batch; nothing is computed in that case.
func (n *FullyConnectedNet) Compute(x mat.Matrix, labels []int) (*Result, error) {
	cfg := &n.config
	out, err := prepareBatch(x, labels, cfg.InputDim, cfg.NumClasses, cfg.Precision)
	if err != nil {
		return nil, err
	}

	mode := ModeTest
	if labels != nil {
		mode = ModeTrain
	}

	caches := make([]cacheEntry, 0, n.NumLayers())
	for i, op := range n.hidden {
		var entry cacheEntry
		out, entry = op.forward(out, n.params.Layer(i+1), mode)
		tensor.Cast(out, cfg.Precision)
		caches = append(caches, entry)
	}

	last := n.params.Layer(n.NumLayers())
	scores, fc := layers.AffineForward(out, last.W, last.B)
	tensor.Cast(scores, cfg.Precision)

	if mode == ModeTest {
		return &Result{Scores: scores}, nil
	}
	caches = append(caches, outputEntry{fc})

	loss, dscores := layers.SoftmaxLoss(scores, labels)
	loss += l2Penalty(n.params, cfg.Reg)

	grads := backward(caches, dscores)
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
