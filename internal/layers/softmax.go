package layers

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SoftmaxLoss computes the mean cross-entropy loss of scores against class labels and its
// gradient with respect to the scores.
//
// Uses the log-sum-exp trick for numerical stability:
//
//	loss = 1/N Σ_i (logsumexp(s_i) - s_i[y_i])
//	dscores[i] = (softmax(s_i) - onehot(y_i)) / N
//
// Parameters:
//   - scores: [batch, classes] unnormalized class scores
//   - labels: [batch] class indices in [0, classes)
func SoftmaxLoss(scores *mat.Dense, labels []int) (float64, *mat.Dense) {
	n, c := scores.Dims()
	if len(labels) != n {
		panic(fmt.Sprintf("SoftmaxLoss: %d labels for %d rows", len(labels), n))
	}

	dscores := mat.NewDense(n, c, nil)
	fn := float64(n)
	loss := 0.0
	for i := 0; i < n; i++ {
		y := labels[i]
		if y < 0 || y >= c {
			panic(fmt.Sprintf("SoftmaxLoss: label %d at row %d outside [0, %d)", y, i, c))
		}
		row := scores.RawRowView(i)
		lse := floats.LogSumExp(row)
		loss += lse - row[y]

		grad := dscores.RawRowView(i)
		for j, s := range row {
			grad[j] = math.Exp(s-lse) / fn
		}
		grad[y] -= 1 / fn
	}

	return loss / fn, dscores
}
