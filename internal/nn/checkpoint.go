package nn

import (
	"sort"
	"strconv"

	"github.com/born-ml/fcnet/internal/serialization"
	"github.com/born-ml/fcnet/internal/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Checkpoint metadata keys and values.
const (
	checkpointFormat     = "fcnet"
	metaFormat           = "format"
	metaConfig           = "config"
	runningMeanPrefix    = "running_mean"
	runningVarPrefix     = "running_var"
	checkpointStatsDType = tensor.Float64
)

// SaveCheckpoint writes the parameters, batch normalization running statistics and
// configuration of net to a SafeTensors file at path.
//
// Parameters are stored in the network precision under their store keys ("W1", "b1", ...).
// Running statistics are stored as float64 under "running_mean<l>" and "running_var<l>".
// The YAML-encoded configuration goes into the header metadata.
//
// Example:
//
//	err := nn.SaveCheckpoint("model.safetensors", net)
func SaveCheckpoint(path string, net *FullyConnectedNet) error {
	cfgYAML, err := MarshalConfig(net.config)
	if err != nil {
		return err
	}

	tensors := make(map[string]serialization.Tensor, net.params.Len()+2*len(net.norms))
	net.params.Each(func(name string, m *mat.Dense) {
		r, c := m.Dims()
		tensors[name] = serialization.Tensor{
			DType:  net.params.Precision(),
			Shape:  tensor.Shape{r, c},
			Values: append([]float64(nil), tensor.Data(m)...),
		}
	})
	for i, state := range net.norms {
		l := strconv.Itoa(i + 1)
		tensors[runningMeanPrefix+l] = statsTensor(state.RunningMean)
		tensors[runningVarPrefix+l] = statsTensor(state.RunningVar)
	}

	metadata := map[string]string{
		metaFormat: checkpointFormat,
		metaConfig: string(cfgYAML),
	}
	if err := serialization.WriteSafeTensors(path, tensors, metadata); err != nil {
		return errors.Wrapf(err, "save checkpoint %s", path)
	}
	return nil
}

// LoadCheckpoint rebuilds the network saved by SaveCheckpoint.
//
// The file must contain exactly the arrays its configuration implies; a missing, extra
// or misshapen array is an error.
func LoadCheckpoint(path string) (*FullyConnectedNet, error) {
	tensors, metadata, err := serialization.ReadSafeTensors(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load checkpoint %s", path)
	}
	if metadata[metaFormat] != checkpointFormat {
		return nil, errors.Errorf("load checkpoint %s: not an fcnet checkpoint (format %q)", path, metadata[metaFormat])
	}
	cfg, err := ParseConfig([]byte(metadata[metaConfig]))
	if err != nil {
		return nil, errors.Wrapf(err, "load checkpoint %s", path)
	}

	net, err := NewFullyConnectedNet(cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "load checkpoint %s", path)
	}

	seen := make(map[string]bool, len(tensors))
	for _, name := range net.params.Names() {
		t, ok := tensors[name]
		if !ok {
			return nil, errors.Errorf("load checkpoint %s: missing parameter %s", path, name)
		}
		m, err := tensor.Flatten(t.Values, t.Shape)
		if err != nil {
			return nil, errors.Wrapf(err, "load checkpoint %s: parameter %s", path, name)
		}
		if err := net.params.Set(name, m); err != nil {
			return nil, errors.Wrapf(err, "load checkpoint %s", path)
		}
		seen[name] = true
	}

	for i, state := range net.norms {
		l := strconv.Itoa(i + 1)
		for _, stat := range []struct {
			name string
			dst  []float64
		}{
			{runningMeanPrefix + l, state.RunningMean},
			{runningVarPrefix + l, state.RunningVar},
		} {
			t, ok := tensors[stat.name]
			if !ok {
				return nil, errors.Errorf("load checkpoint %s: missing %s", path, stat.name)
			}
			if len(t.Values) != len(stat.dst) {
				return nil, errors.Wrapf(shapeError(stat.name, len(stat.dst), len(t.Values), "elements"),
					"load checkpoint %s", path)
			}
			copy(stat.dst, t.Values)
			seen[stat.name] = true
		}
	}

	if len(seen) != len(tensors) {
		var extra []string
		for name := range tensors {
			if !seen[name] {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		return nil, errors.Errorf("load checkpoint %s: unexpected arrays %v", path, extra)
	}

	return net, nil
}

func statsTensor(v []float64) serialization.Tensor {
	return serialization.Tensor{
		DType:  checkpointStatsDType,
		Shape:  tensor.Shape{len(v)},
		Values: append([]float64(nil), v...),
	}
}
