package serialization

import (
	"encoding/binary"
	"fmt"

	"github.com/born-ml/fcnet/internal/tensor"
)

// SafeTensors constants.
const (
	MetadataKey = "__metadata__"
	ChecksumKey = "sha256"
)

// Tensor is a named array as stored on disk.
//
// Values are always held as float64 in memory; DType selects the on-disk encoding.
type Tensor struct {
	DType  tensor.Precision
	Shape  tensor.Shape
	Values []float64
}

// SafeTensorHeader represents a tensor in the SafeTensors header.
type SafeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// TensorMeta describes where a tensor lives in the data section.
type TensorMeta struct {
	Name   string
	DType  tensor.Precision
	Shape  tensor.Shape
	Offset int64 // bytes from start of tensor data
	Size   int64 // size in bytes
}

// dtypeToSafeTensors converts a precision to its SafeTensors dtype string.
func dtypeToSafeTensors(p tensor.Precision) string {
	switch p {
	case tensor.Float32:
		return "F32"
	case tensor.Float64:
		return "F64"
	default:
		return "unknown"
	}
}

// safeTensorsToDtype converts a SafeTensors dtype string to a precision.
func safeTensorsToDtype(s string) (tensor.Precision, bool) {
	switch s {
	case "F32":
		return tensor.Float32, true
	case "F64":
		return tensor.Float64, true
	default:
		return 0, false
	}
}

// encodeValues appends the little-endian encoding of values to buf.
func encodeValues(buf []byte, values []float64, p tensor.Precision) []byte {
	for _, v := range values {
		if p == tensor.Float32 {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(p.Bits(v)))
		} else {
			buf = binary.LittleEndian.AppendUint64(buf, p.Bits(v))
		}
	}
	return buf
}

// decodeValues decodes data into float64 values.
func decodeValues(data []byte, p tensor.Precision) ([]float64, error) {
	size := p.Size()
	if len(data)%size != 0 {
		return nil, fmt.Errorf("%d bytes is not a multiple of %s element size", len(data), p)
	}
	values := make([]float64, len(data)/size)
	for i := range values {
		chunk := data[i*size : (i+1)*size]
		if p == tensor.Float32 {
			values[i] = p.FromBits(uint64(binary.LittleEndian.Uint32(chunk)))
		} else {
			values[i] = p.FromBits(binary.LittleEndian.Uint64(chunk))
		}
	}
	return values, nil
}
