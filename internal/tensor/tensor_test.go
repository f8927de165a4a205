package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

func TestPrecision(t *testing.T) {
	assert.Equal(t, 4, Float32.Size())
	assert.Equal(t, 8, Float64.Size())
	assert.Equal(t, "float32", Float32.String())
	assert.Equal(t, "unknown", Precision(9).String())
	assert.False(t, Precision(9).Valid())
	assert.Panics(t, func() { Precision(9).Size() })

	assert.Equal(t, 0.1, Float64.Round(0.1))
	assert.Equal(t, float64(float32(0.1)), Float32.Round(0.1))
	assert.NotEqual(t, 0.1, Float32.Round(0.1))
}

func TestPrecision_Bits(t *testing.T) {
	for _, p := range []Precision{Float32, Float64} {
		for _, v := range []float64{0, -1.5, 3.25, math.Inf(1)} {
			assert.Equal(t, v, p.FromBits(p.Bits(v)), "%v %v", p, v)
		}
	}
	assert.Equal(t, uint64(0x3f800000), Float32.Bits(1))
}

func TestPrecision_YAML(t *testing.T) {
	var doc struct {
		P Precision `yaml:"p"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("p: f64\n"), &doc))
	assert.Equal(t, Float64, doc.P)

	assert.Error(t, yaml.Unmarshal([]byte("p: int8\n"), &doc))

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, "p: float64\n", string(out))

	doc.P = Precision(5)
	_, err = yaml.Marshal(doc)
	assert.Error(t, err)
}

func TestShape(t *testing.T) {
	s := Shape{2, 3, 4}
	assert.Equal(t, 24, s.NumElements())
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.NoError(t, s.Validate())
	assert.Error(t, Shape{2, 0}.Validate())
	assert.True(t, s.Equal(s.Clone()))
	assert.False(t, s.Equal(Shape{2, 3}))

	r, c := s.Rows()
	assert.Equal(t, [2]int{2, 12}, [2]int{r, c})
	r, c = Shape{5}.Rows()
	assert.Equal(t, [2]int{5, 1}, [2]int{r, c})
}

func TestFlatten(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6}
	m, err := Flatten(data, Shape{2, 1, 3})
	require.NoError(t, err)
	assert.True(t, mat.Equal(mat.NewDense(2, 3, data), m))

	data[0] = 100
	assert.Equal(t, 1.0, m.At(0, 0), "Flatten copies its input")

	_, err = Flatten(data, Shape{4, 2})
	assert.Error(t, err)
	_, err = Flatten(data, Shape{-6})
	assert.Error(t, err)
}

func TestCast(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{0.1, 0.2, 0.3, 0.4})
	Cast(m, Float64)
	assert.Equal(t, 0.1, m.At(0, 0))

	Cast(m, Float32)
	for _, v := range Data(m) {
		assert.Equal(t, float64(float32(v)), v)
	}
}

func TestData(t *testing.T) {
	m := Ones(3, 4)
	d := Data(m)
	require.Len(t, d, 12)
	d[5] = 7
	assert.Equal(t, 7.0, m.At(1, 1))

	view := m.Slice(0, 2, 0, 2).(*mat.Dense)
	assert.Panics(t, func() { Data(view) })

	assert.True(t, SameShape(Zeros(3, 4), Clone(m)))
	assert.False(t, SameShape(Zeros(4, 3), m))
}
