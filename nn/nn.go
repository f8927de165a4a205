// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/fcnet/internal/nn"
	"gonum.org/v1/gonum/mat"
)

// Classifier is implemented by TwoLayerNet and FullyConnectedNet.
type Classifier = nn.Classifier

// Result is the outcome of one Compute call: scores, and in train mode loss and gradients.
type Result = nn.Result

// Networks

// FullyConnectedNet is a configurable-depth classifier with optional batch normalization
// or dropout.
type FullyConnectedNet = nn.FullyConnectedNet

// NewFullyConnectedNet validates cfg and builds a freshly initialized network.
//
// Example:
//
//	net, err := nn.NewFullyConnectedNet(nn.DefaultConfig(100, 50))
func NewFullyConnectedNet(cfg Config) (*FullyConnectedNet, error) {
	return nn.NewFullyConnectedNet(cfg)
}

// TwoLayerNet is an affine - relu - affine - softmax classifier.
type TwoLayerNet = nn.TwoLayerNet

// NewTwoLayerNet validates cfg and builds a freshly initialized network.
func NewTwoLayerNet(cfg TwoLayerConfig) (*TwoLayerNet, error) {
	return nn.NewTwoLayerNet(cfg)
}

// Configuration

// Config configures a FullyConnectedNet.
type Config = nn.Config

// BatchNormConfig holds batch normalization momentum and epsilon.
type BatchNormConfig = nn.BatchNormConfig

// TwoLayerConfig configures a TwoLayerNet.
type TwoLayerConfig = nn.TwoLayerConfig

// DefaultConfig returns the default configuration with the given hidden layer widths.
func DefaultConfig(hiddenDims ...int) Config {
	return nn.DefaultConfig(hiddenDims...)
}

// DefaultTwoLayerConfig returns the default two-layer configuration.
func DefaultTwoLayerConfig() TwoLayerConfig {
	return nn.DefaultTwoLayerConfig()
}

// ParseConfig decodes and validates a YAML configuration.
func ParseConfig(data []byte) (Config, error) {
	return nn.ParseConfig(data)
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	return nn.LoadConfig(path)
}

// MarshalConfig encodes a configuration as YAML.
func MarshalConfig(cfg Config) ([]byte, error) {
	return nn.MarshalConfig(cfg)
}

// Parameters

// ParameterStore holds every learnable array of a network.
type ParameterStore = nn.ParameterStore

// Gradients holds the gradient of the loss with respect to every parameter.
type Gradients = nn.Gradients

// LayerParams holds the arrays of one layer.
type LayerParams = nn.LayerParams

// ParamKind identifies one of the learnable arrays of a layer.
type ParamKind = nn.ParamKind

// Parameter kinds.
const (
	Weight = nn.Weight
	Bias   = nn.Bias
	Scale  = nn.Scale
	Shift  = nn.Shift
)

// ParamName returns the key of a parameter, e.g. ParamName(Scale, 2) == "gamma2".
func ParamName(kind ParamKind, layer int) string {
	return nn.ParamName(kind, layer)
}

// Operators

// OperatorKind names the composite operator of a hidden layer.
type OperatorKind = nn.OperatorKind

// Hidden layer operator kinds.
const (
	OperatorPlain       = nn.OperatorPlain
	OperatorNormalized  = nn.OperatorNormalized
	OperatorRegularized = nn.OperatorRegularized
)

// Errors

// ConfigError reports an invalid construction argument.
type ConfigError = nn.ConfigError

// ShapeMismatchError reports an input whose shape disagrees with the network.
type ShapeMismatchError = nn.ShapeMismatchError

// Sentinel errors matched through errors.Is.
var (
	ErrConfig        = nn.ErrConfig
	ErrShapeMismatch = nn.ErrShapeMismatch
)

// Utilities

// Predict returns the highest-scoring class of every row of x.
func Predict(c Classifier, x mat.Matrix) ([]int, error) {
	return nn.Predict(c, x)
}

// Accuracy returns the fraction of rows of x predicted as their label.
func Accuracy(c Classifier, x mat.Matrix, labels []int) (float64, error) {
	return nn.Accuracy(c, x, labels)
}

// CheckGradients returns the relative error between analytic and numeric gradients of
// every parameter.
func CheckGradients(c Classifier, x mat.Matrix, labels []int, step float64) (map[string]float64, error) {
	return nn.CheckGradients(c, x, labels, step)
}

// SaveCheckpoint writes a network to a SafeTensors file.
func SaveCheckpoint(path string, net *FullyConnectedNet) error {
	return nn.SaveCheckpoint(path, net)
}

// LoadCheckpoint rebuilds a network saved by SaveCheckpoint.
func LoadCheckpoint(path string) (*FullyConnectedNet, error) {
	return nn.LoadCheckpoint(path)
}
