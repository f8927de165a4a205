// Package layers implements the primitive layers of the fully-connected classifier as
// explicit forward/backward pairs.
//
// Every forward function returns its output together with a typed cache holding exactly
// the intermediates the matching backward function consumes:
//   - AffineForward / AffineBackward: out = x @ W + b
//   - ReLUForward / ReLUBackward: out = max(x, 0)
//   - BatchNormForward / BatchNormBackward: per-feature normalization with running statistics
//   - DropoutForward / DropoutBackward: inverted dropout with keep probability p
//   - SoftmaxLoss: mean cross-entropy over the batch and its gradient
//
// Matrices are gonum dense matrices with rows indexing the batch. Row vectors (1, D) hold
// biases and per-feature scale/shift parameters.
//
// Functions in this package panic on inconsistent inner dimensions; callers validate
// user-facing shapes before reaching them.
package layers
