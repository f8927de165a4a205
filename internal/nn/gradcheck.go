package nn

import (
	"github.com/born-ml/fcnet/internal/gradcheck"
	"github.com/born-ml/fcnet/internal/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// CheckGradients compares the analytic gradients of c on (x, labels) against centered
// finite differences and returns the relative error of every parameter.
//
// Each parameter element is perturbed in place and restored afterwards. The check is only
// meaningful for float64 networks with deterministic forward passes: a dropout network
// needs a fixed Seed. Batch normalization running statistics are updated by every probe.
func CheckGradients(c Classifier, x mat.Matrix, labels []int, step float64) (map[string]float64, error) {
	if labels == nil {
		return nil, errors.New("gradient check needs labels")
	}
	res, err := c.Compute(x, labels)
	if err != nil {
		return nil, err
	}

	var probeErr error
	loss := func() float64 {
		r, err := c.Compute(x, labels)
		if err != nil {
			probeErr = err
			return 0
		}
		return r.Loss
	}

	out := make(map[string]float64, res.Grads.Len())
	c.Params().Each(func(name string, m *mat.Dense) {
		if probeErr != nil {
			return
		}
		analytic, _ := res.Grads.Get(name)
		numeric := gradcheck.Numeric(loss, tensor.Data(m), step)
		out[name] = gradcheck.RelativeError(tensor.Data(analytic), numeric)
	})
	if probeErr != nil {
		return nil, errors.Wrap(probeErr, "gradient check")
	}
	return out, nil
}
