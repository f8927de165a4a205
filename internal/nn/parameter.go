package nn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/born-ml/fcnet/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// ParamKind identifies one of the learnable arrays of a layer.
type ParamKind int

// Parameter kinds, in the order they are listed per layer.
const (
	Weight ParamKind = iota // affine weights, shape (in, out)
	Bias                    // affine bias, shape (1, out)
	Scale                   // batchnorm gamma, shape (1, out)
	Shift                   // batchnorm beta, shape (1, out)
)

var paramPrefixes = [...]string{
	Weight: "W",
	Bias:   "b",
	Scale:  "gamma",
	Shift:  "beta",
}

// String returns the name prefix of the kind ("W", "b", "gamma", "beta").
func (k ParamKind) String() string {
	if k < Weight || k > Shift {
		return "unknown"
	}
	return paramPrefixes[k]
}

// ParamName returns the key of a parameter: "W1", "b1", "gamma1", "beta1", ...
// Layers are numbered from 1.
func ParamName(kind ParamKind, layer int) string {
	return kind.String() + strconv.Itoa(layer)
}

// ParseParamName is the inverse of ParamName.
func ParseParamName(name string) (ParamKind, int, error) {
	// Longest prefixes first so "beta2" is not read as "b" + "eta2".
	for _, kind := range []ParamKind{Scale, Shift, Weight, Bias} {
		rest, ok := strings.CutPrefix(name, kind.String())
		if !ok {
			continue
		}
		layer, err := strconv.Atoi(rest)
		if err != nil || layer < 1 || strconv.Itoa(layer) != rest {
			return 0, 0, fmt.Errorf("invalid parameter name %q", name)
		}
		return kind, layer, nil
	}
	return 0, 0, fmt.Errorf("invalid parameter name %q", name)
}

// LayerParams holds the arrays of one layer. Gamma and Beta are nil unless the layer
// is batch-normalized.
type LayerParams struct {
	W     *mat.Dense
	B     *mat.Dense
	Gamma *mat.Dense
	Beta  *mat.Dense
}

// Get returns the array of the given kind, or nil.
func (p *LayerParams) Get(kind ParamKind) *mat.Dense {
	switch kind {
	case Weight:
		return p.W
	case Bias:
		return p.B
	case Scale:
		return p.Gamma
	case Shift:
		return p.Beta
	default:
		return nil
	}
}

// table is the indexed layer-by-layer layout shared by parameters and gradients.
type table struct {
	layers []LayerParams
}

func newTable(numLayers int) table {
	return table{layers: make([]LayerParams, numLayers)}
}

// NumLayers returns the number of affine layers L.
func (t *table) NumLayers() int {
	return len(t.layers)
}

// Layer returns the arrays of layer l (1-based).
func (t *table) Layer(l int) *LayerParams {
	if l < 1 || l > len(t.layers) {
		panic(fmt.Sprintf("Layer: index %d outside [1, %d]", l, len(t.layers)))
	}
	return &t.layers[l-1]
}

// Each calls fn for every present array in layer order (W, b, gamma, beta per layer).
func (t *table) Each(fn func(name string, m *mat.Dense)) {
	for i := range t.layers {
		for kind := Weight; kind <= Shift; kind++ {
			if m := t.layers[i].Get(kind); m != nil {
				fn(ParamName(kind, i+1), m)
			}
		}
	}
}

// Names returns the keys of every present array in layer order.
func (t *table) Names() []string {
	var names []string
	t.Each(func(name string, _ *mat.Dense) {
		names = append(names, name)
	})
	return names
}

// Len returns the number of present arrays.
func (t *table) Len() int {
	n := 0
	t.Each(func(string, *mat.Dense) { n++ })
	return n
}

// Get returns the array stored under name.
func (t *table) Get(name string) (*mat.Dense, bool) {
	kind, layer, err := ParseParamName(name)
	if err != nil || layer > len(t.layers) {
		return nil, false
	}
	m := t.layers[layer-1].Get(kind)
	return m, m != nil
}

// ParameterStore holds every learnable array of a network.
//
// It is populated at construction and read, never written, by Compute. An external
// optimizer updates it between calls, either in place through Get/Layer or with Set.
type ParameterStore struct {
	table
	precision tensor.Precision
}

// Precision returns the precision all arrays are cast to.
func (s *ParameterStore) Precision() tensor.Precision {
	return s.precision
}

// Set overwrites the array stored under name with the values of v, cast to the store's
// precision. The shape of v must match the existing array.
func (s *ParameterStore) Set(name string, v mat.Matrix) error {
	dst, ok := s.Get(name)
	if !ok {
		return shapeError(name, 0, 0, "arrays (unknown parameter)")
	}
	dr, dc := dst.Dims()
	vr, vc := v.Dims()
	if dr != vr {
		return shapeError(name, dr, vr, "rows")
	}
	if dc != vc {
		return shapeError(name, dc, vc, "columns")
	}
	dst.Copy(v)
	tensor.Cast(dst, s.precision)
	return nil
}

// Gradients maps every parameter name to the gradient of the loss with respect to it.
// It has exactly the key set and shapes of the ParameterStore it was computed from.
type Gradients struct {
	table
}
