// Package tensor provides the numeric precision, shape and matrix helpers shared by the
// fcnet layers and networks.
package tensor

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Precision is the floating point precision parameters and activations are stored in.
//
// All arithmetic runs in float64; Float32 rounds every stored value to the nearest
// float32 so results match a float32 pipeline at layer boundaries.
type Precision int

// Supported precisions.
const (
	Float32 Precision = iota
	Float64
)

// Size returns the byte size of one element.
func (p Precision) Size() int {
	switch p {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		panic("unknown precision")
	}
}

// String returns a human-readable name for the precision.
func (p Precision) String() string {
	switch p {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}

// Valid reports whether p is a supported precision.
func (p Precision) Valid() bool {
	return p == Float32 || p == Float64
}

// ParsePrecision converts "float32"/"float64" into a Precision.
func ParsePrecision(s string) (Precision, error) {
	switch s {
	case "float32", "f32":
		return Float32, nil
	case "float64", "f64":
		return Float64, nil
	default:
		return 0, fmt.Errorf("unknown precision %q (want float32 or float64)", s)
	}
}

// Round returns v rounded to the precision.
func (p Precision) Round(v float64) float64 {
	if p == Float32 {
		return float64(float32(v))
	}
	return v
}

// RoundSlice rounds every element of data in place.
func (p Precision) RoundSlice(data []float64) {
	if p != Float32 {
		return
	}
	for i, v := range data {
		data[i] = float64(float32(v))
	}
}

// Bits encodes v in the precision's little-endian bit pattern.
func (p Precision) Bits(v float64) uint64 {
	if p == Float32 {
		return uint64(math.Float32bits(float32(v)))
	}
	return math.Float64bits(v)
}

// FromBits is the inverse of Bits.
func (p Precision) FromBits(b uint64) float64 {
	if p == Float32 {
		return float64(math.Float32frombits(uint32(b)))
	}
	return math.Float64frombits(b)
}

// MarshalYAML encodes the precision by name.
func (p Precision) MarshalYAML() (interface{}, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("unknown precision %d", int(p))
	}
	return p.String(), nil
}

// UnmarshalYAML decodes a precision name.
func (p *Precision) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParsePrecision(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
