package nn

import (
	"testing"

	"github.com/born-ml/fcnet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestParamName(t *testing.T) {
	assert.Equal(t, "W1", ParamName(Weight, 1))
	assert.Equal(t, "b3", ParamName(Bias, 3))
	assert.Equal(t, "gamma2", ParamName(Scale, 2))
	assert.Equal(t, "beta12", ParamName(Shift, 12))
}

func TestParseParamName(t *testing.T) {
	valid := []struct {
		name  string
		kind  ParamKind
		layer int
	}{
		{"W1", Weight, 1},
		{"b2", Bias, 2},
		{"gamma3", Scale, 3},
		{"beta2", Shift, 2},
		{"W10", Weight, 10},
	}
	for _, tt := range valid {
		kind, layer, err := ParseParamName(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.kind, kind, tt.name)
		assert.Equal(t, tt.layer, layer, tt.name)
	}

	for _, name := range []string{"", "W", "W0", "W01", "w1", "x1", "beta", "gamma-1", "b1a"} {
		_, _, err := ParseParamName(name)
		assert.Error(t, err, name)
	}
}

func TestInitParams(t *testing.T) {
	store := initParams([]int{4, 3, 2}, 1e-2, true, tensor.Float32, newSource(nil))

	assert.Equal(t, []string{"W1", "b1", "gamma1", "beta1", "W2", "b2"}, store.Names())
	assert.Equal(t, 6, store.Len())
	assert.Equal(t, tensor.Float32, store.Precision())

	l1 := store.Layer(1)
	assert.True(t, mat.Equal(tensor.Ones(1, 3), l1.Gamma))
	assert.True(t, mat.Equal(tensor.Zeros(1, 3), l1.Beta))
	assert.True(t, mat.Equal(tensor.Zeros(1, 3), l1.B))
	for _, v := range tensor.Data(l1.W) {
		assert.Equal(t, float64(float32(v)), v)
	}
	assert.Nil(t, store.Layer(2).Gamma)

	assert.Panics(t, func() { store.Layer(0) })
	assert.Panics(t, func() { store.Layer(3) })
}

func TestInitParams_SeedIsReproducible(t *testing.T) {
	s := uint64(99)
	a := initParams([]int{3, 4, 2}, 1, false, tensor.Float64, newSource(&s))
	b := initParams([]int{3, 4, 2}, 1, false, tensor.Float64, newSource(&s))
	for _, name := range a.Names() {
		ma, _ := a.Get(name)
		mb, _ := b.Get(name)
		assert.True(t, mat.Equal(ma, mb), name)
	}
}

func TestParameterStore_Set(t *testing.T) {
	store := initParams([]int{2, 3, 2}, 1, false, tensor.Float32, newSource(nil))

	require.NoError(t, store.Set("W1", mat.NewDense(2, 3, []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6})))
	w, _ := store.Get("W1")
	assert.Equal(t, float64(float32(0.1)), w.At(0, 0), "values are cast to the store precision")

	err := store.Set("W1", mat.NewDense(3, 2, nil))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	err = store.Set("gamma1", mat.NewDense(1, 3, nil))
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, ok := store.Get("W3")
	assert.False(t, ok)
}
