// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the precision and shape helpers used to feed fcnet classifiers.
//
// # Overview
//
// Classifiers consume gonum matrices of shape (batch, features). This package converts
// row-major data of any rank into that layout and names the storage precision of a network:
//   - Precision: Float32 or Float64, with YAML (un)marshalling by name
//   - Shape: array dimensions, outermost first
//   - Flatten: (N, d_1, ..., d_k) data to an N×(d_1*...*d_k) matrix
//
// # Basic Usage
//
//	import "github.com/born-ml/fcnet/tensor"
//
//	// A batch of 4 RGB 32×32 images.
//	x, err := tensor.Flatten(pixels, tensor.Shape{4, 3, 32, 32})  // 4×3072
//
// # Precision
//
// All arithmetic runs in float64. A Float32 network rounds parameters, activations, loss
// and gradients to float32 at every layer boundary.
package tensor
