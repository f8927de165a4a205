package nn

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/fcnet/internal/layers"
	"github.com/born-ml/fcnet/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(100, 50)

	assert.Equal(t, 3*32*32, cfg.InputDim)
	assert.Equal(t, 10, cfg.NumClasses)
	assert.Equal(t, 1e-2, cfg.WeightScale)
	assert.Equal(t, tensor.Float32, cfg.Precision)
	assert.Equal(t, layers.DefaultMomentum, cfg.BatchNorm.Momentum)
	assert.Equal(t, layers.DefaultEpsilon, cfg.BatchNorm.Epsilon)
	assert.Equal(t, 3, cfg.NumLayers())
	assert.Equal(t, []int{3072, 100, 50, 10}, cfg.Dims())
	assert.False(t, cfg.UseDropout())
	assert.NoError(t, cfg.Validate())

	two := DefaultTwoLayerConfig()
	assert.Equal(t, 100, two.HiddenDim)
	assert.Equal(t, tensor.Float64, two.Precision)
	assert.NoError(t, two.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"no hidden layers", func(c *Config) { c.HiddenDims = nil }, "HiddenDims"},
		{"zero width", func(c *Config) { c.HiddenDims = []int{4, 0} }, "HiddenDims[1]"},
		{"input dim", func(c *Config) { c.InputDim = 0 }, "InputDim"},
		{"classes", func(c *Config) { c.NumClasses = -1 }, "NumClasses"},
		{"dropout above one", func(c *Config) { c.Dropout = 1.5 }, "Dropout"},
		{"negative dropout", func(c *Config) { c.Dropout = -0.1 }, "Dropout"},
		{"negative reg", func(c *Config) { c.Reg = -1 }, "Reg"},
		{"negative scale", func(c *Config) { c.WeightScale = -1 }, "WeightScale"},
		{"precision", func(c *Config) { c.Precision = tensor.Precision(7) }, "Precision"},
		{"epsilon", func(c *Config) {
			c.UseBatchNorm = true
			c.BatchNorm.Epsilon = 0
		}, "BatchNorm.Epsilon"},
		{"momentum", func(c *Config) {
			c.UseBatchNorm = true
			c.BatchNorm.Momentum = 1
		}, "BatchNorm.Momentum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(4, 3)
			tt.modify(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestTwoLayerConfig_Validate(t *testing.T) {
	cfg := DefaultTwoLayerConfig()
	cfg.HiddenDim = 0
	assert.ErrorIs(t, cfg.Validate(), ErrConfig)

	_, err := NewTwoLayerNet(cfg)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
input_dim: 20
hidden_dims: [16, 8]
num_classes: 4
use_batchnorm: true
reg: 0.01
precision: float64
init_seed: 5
batchnorm:
  momentum: 0.8
  epsilon: 1e-3
`))
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.InputDim)
	assert.Equal(t, []int{16, 8}, cfg.HiddenDims)
	assert.True(t, cfg.UseBatchNorm)
	assert.Equal(t, tensor.Float64, cfg.Precision)
	require.NotNil(t, cfg.InitSeed)
	assert.Equal(t, uint64(5), *cfg.InitSeed)
	assert.Nil(t, cfg.Seed)
	assert.Equal(t, 0.8, cfg.BatchNorm.Momentum)
	assert.Equal(t, DefaultWeightScale, cfg.WeightScale, "unset keys keep their defaults")
}

func TestParseConfig_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown key":       "hidden_dims: [4]\nlearning_rate: 0.1\n",
		"bad precision":     "hidden_dims: [4]\nprecision: float16\n",
		"missing hidden":    "input_dim: 4\n",
		"dropout too large": "hidden_dims: [4]\ndropout: 2\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	s := uint64(11)
	cfg := DefaultConfig(8, 4)
	cfg.Dropout = 0.75
	cfg.Seed = &s

	data, err := MarshalConfig(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "precision: float32")

	path := filepath.Join(t.TempDir(), "net.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
