// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides fully-connected softmax classifiers with explicit forward and
// backward passes.
//
// # Overview
//
// This package contains:
//   - Classifiers: TwoLayerNet, FullyConnectedNet
//   - Configuration: Config, TwoLayerConfig, YAML loading
//   - Parameters: ParameterStore and Gradients keyed "W1", "b1", "gamma1", "beta1", ...
//   - Utilities: Predict, Accuracy, CheckGradients
//   - Checkpoints: SaveCheckpoint, LoadCheckpoint (SafeTensors)
//
// # Basic Usage
//
//	import "github.com/born-ml/fcnet/nn"
//
//	func main() {
//	    cfg := nn.DefaultConfig(100, 100)
//	    cfg.UseBatchNorm = true
//	    cfg.Reg = 1e-3
//
//	    net, err := nn.NewFullyConnectedNet(cfg)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Train mode: loss and gradients
//	    res, err := net.Compute(x, labels)
//
//	    // Test mode: scores only
//	    res, err = net.Compute(x, nil)
//	}
//
// # Architecture
//
// A FullyConnectedNet with L layers computes
//
//	{affine - [batchnorm] - relu - [dropout]} x (L - 1) - affine - softmax
//
// Each hidden layer's operator is chosen once at construction. When both batch
// normalization and dropout are requested, batch normalization is used and dropout is not.
//
// # Training
//
// No optimizer is included. Compute returns gradients with the same keys and shapes as
// the parameter store; update the store between calls:
//
//	res, _ := net.Compute(xBatch, yBatch)
//	res.Grads.Each(func(name string, g *mat.Dense) {
//	    w, _ := net.Params().Get(name)
//	    w.Sub(w, scaled(g, lr))
//	})
//
// # Concurrency
//
// Networks are not safe for concurrent use. Train-mode calls update batch normalization
// running statistics and draw dropout masks from a shared source.
package nn
