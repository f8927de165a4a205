package nn

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/born-ml/fcnet/internal/layers"
	"github.com/born-ml/fcnet/internal/tensor"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Defaults shared by both classifiers.
const (
	DefaultInputDim    = 3 * 32 * 32
	DefaultNumClasses  = 10
	DefaultHiddenDim   = 100
	DefaultWeightScale = 1e-2
)

// BatchNormConfig holds the hyperparameters of every batch normalization layer.
type BatchNormConfig struct {
	Momentum float64 `yaml:"momentum"`
	Epsilon  float64 `yaml:"epsilon"`
}

// Config configures a FullyConnectedNet.
//
// The architecture is
//
//	{affine - [batchnorm] - relu - [dropout]} x (L - 1) - affine - softmax
//
// with L = len(HiddenDims) + 1. Batch normalization and dropout are not combined on one
// layer: when both are requested the layers are batch-normalized and dropout is unused.
type Config struct {
	// InputDim is the number of features per sample.
	InputDim int `yaml:"input_dim"`

	// HiddenDims gives the width of each hidden layer. Must not be empty.
	HiddenDims []int `yaml:"hidden_dims"`

	// NumClasses is the width of the output layer.
	NumClasses int `yaml:"num_classes"`

	// UseBatchNorm inserts batch normalization between each hidden affine layer and its ReLU.
	UseBatchNorm bool `yaml:"use_batchnorm"`

	// Dropout is the keep probability p of the dropout layers. 0 disables dropout.
	Dropout float64 `yaml:"dropout"`

	// Reg is the L2 regularization strength applied to every weight matrix.
	Reg float64 `yaml:"reg"`

	// WeightScale is the standard deviation of the initial weights.
	WeightScale float64 `yaml:"weight_scale"`

	// Precision of parameters and activations.
	Precision tensor.Precision `yaml:"precision"`

	// Seed makes dropout masks deterministic: every forward pass re-seeds with it.
	Seed *uint64 `yaml:"seed,omitempty"`

	// InitSeed makes weight initialization reproducible.
	InitSeed *uint64 `yaml:"init_seed,omitempty"`

	// BatchNorm hyperparameters, used when UseBatchNorm is set.
	BatchNorm BatchNormConfig `yaml:"batchnorm"`

	// Logger receives construction-time diagnostics. Nil discards them.
	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns the default configuration with the given hidden layer widths.
func DefaultConfig(hiddenDims ...int) Config {
	return Config{
		InputDim:    DefaultInputDim,
		HiddenDims:  hiddenDims,
		NumClasses:  DefaultNumClasses,
		WeightScale: DefaultWeightScale,
		Precision:   tensor.Float32,
		BatchNorm: BatchNormConfig{
			Momentum: layers.DefaultMomentum,
			Epsilon:  layers.DefaultEpsilon,
		},
	}
}

// NumLayers returns L, the number of affine layers.
func (c Config) NumLayers() int {
	return len(c.HiddenDims) + 1
}

// Dims returns the layer widths (input, hidden..., classes).
func (c Config) Dims() []int {
	dims := make([]int, 0, len(c.HiddenDims)+2)
	dims = append(dims, c.InputDim)
	dims = append(dims, c.HiddenDims...)
	return append(dims, c.NumClasses)
}

// UseDropout reports whether dropout is enabled.
func (c Config) UseDropout() bool {
	return c.Dropout > 0
}

// Validate checks the configuration and returns a *ConfigError describing the first problem.
func (c Config) Validate() error {
	if c.InputDim <= 0 {
		return configError("InputDim", "must be > 0, got %d", c.InputDim)
	}
	if len(c.HiddenDims) == 0 {
		return configError("HiddenDims", "must not be empty")
	}
	for i, d := range c.HiddenDims {
		if d <= 0 {
			return configError(fmt.Sprintf("HiddenDims[%d]", i), "must be > 0, got %d", d)
		}
	}
	if c.NumClasses <= 0 {
		return configError("NumClasses", "must be > 0, got %d", c.NumClasses)
	}
	if !(c.Dropout >= 0 && c.Dropout <= 1) {
		return configError("Dropout", "keep probability must be in [0, 1], got %v", c.Dropout)
	}
	if !(c.Reg >= 0) {
		return configError("Reg", "must be >= 0, got %v", c.Reg)
	}
	if !(c.WeightScale >= 0) {
		return configError("WeightScale", "must be >= 0, got %v", c.WeightScale)
	}
	if !c.Precision.Valid() {
		return configError("Precision", "unsupported precision %d", int(c.Precision))
	}
	if c.UseBatchNorm {
		if !(c.BatchNorm.Epsilon > 0) {
			return configError("BatchNorm.Epsilon", "must be > 0, got %v", c.BatchNorm.Epsilon)
		}
		if !(c.BatchNorm.Momentum >= 0 && c.BatchNorm.Momentum < 1) {
			return configError("BatchNorm.Momentum", "must be in [0, 1), got %v", c.BatchNorm.Momentum)
		}
	}
	return nil
}

// ParseConfig decodes a YAML configuration on top of DefaultConfig and validates it.
// Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.WithStack(&ConfigError{Field: "yaml", Reason: err.Error()})
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	//nolint:gosec // G304: config path comes from the user
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "load config %s", path)
	}
	return cfg, nil
}

// MarshalConfig encodes a configuration as YAML.
func MarshalConfig(c Config) ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "marshal config")
	}
	return data, nil
}

// TwoLayerConfig configures a TwoLayerNet: affine - relu - affine - softmax.
type TwoLayerConfig struct {
	InputDim    int              `yaml:"input_dim"`
	HiddenDim   int              `yaml:"hidden_dim"`
	NumClasses  int              `yaml:"num_classes"`
	WeightScale float64          `yaml:"weight_scale"`
	Reg         float64          `yaml:"reg"`
	Precision   tensor.Precision `yaml:"precision"`
	InitSeed    *uint64          `yaml:"init_seed,omitempty"`
}

// DefaultTwoLayerConfig returns the default two-layer configuration.
func DefaultTwoLayerConfig() TwoLayerConfig {
	return TwoLayerConfig{
		InputDim:    DefaultInputDim,
		HiddenDim:   DefaultHiddenDim,
		NumClasses:  DefaultNumClasses,
		WeightScale: DefaultWeightScale,
		Precision:   tensor.Float64,
	}
}

// Validate checks the configuration and returns a *ConfigError describing the first problem.
func (c TwoLayerConfig) Validate() error {
	if c.InputDim <= 0 {
		return configError("InputDim", "must be > 0, got %d", c.InputDim)
	}
	if c.HiddenDim <= 0 {
		return configError("HiddenDim", "must be > 0, got %d", c.HiddenDim)
	}
	if c.NumClasses <= 0 {
		return configError("NumClasses", "must be > 0, got %d", c.NumClasses)
	}
	if !(c.Reg >= 0) {
		return configError("Reg", "must be >= 0, got %v", c.Reg)
	}
	if !(c.WeightScale >= 0) {
		return configError("WeightScale", "must be >= 0, got %v", c.WeightScale)
	}
	if !c.Precision.Valid() {
		return configError("Precision", "unsupported precision %d", int(c.Precision))
	}
	return nil
}
