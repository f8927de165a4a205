package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ReadSafeTensors reads every tensor and the metadata from a SafeTensors file.
func ReadSafeTensors(path string) (map[string]Tensor, map[string]string, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for parameter loading
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close() // Read-only, close error carries no data loss
	}()

	return ReadFrom(file)
}

// ReadFrom decodes a SafeTensors stream.
//
// The checksum stored under ChecksumKey is verified when present and removed from the
// returned metadata.
func ReadFrom(r io.Reader) (map[string]Tensor, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, &ValidationError{
			Type:    "header_too_large",
			Details: fmt.Sprintf("%d bytes, max %d", headerSize, MaxHeaderSize),
			Err:     ErrHeaderTooLarge,
		}
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header: %w", err)
	}

	metadata := make(map[string]string)
	if m, ok := raw[MetadataKey]; ok {
		if err := json.Unmarshal(m, &metadata); err != nil {
			return nil, nil, fmt.Errorf("failed to parse metadata: %w", err)
		}
		delete(raw, MetadataKey)
	}

	metas := make([]TensorMeta, 0, len(raw))
	for name, msg := range raw {
		if err := ValidateTensorName(name); err != nil {
			return nil, nil, err
		}
		var h SafeTensorHeader
		if err := json.Unmarshal(msg, &h); err != nil {
			return nil, nil, fmt.Errorf("failed to parse header for %q: %w", name, err)
		}
		meta, err := tensorMeta(name, h)
		if err != nil {
			return nil, nil, err
		}
		metas = append(metas, meta)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if err := ValidateTensorOffsets(metas, int64(len(data))); err != nil {
		return nil, nil, err
	}
	if sum, ok := metadata[ChecksumKey]; ok {
		if err := ValidateChecksum(data, sum); err != nil {
			return nil, nil, err
		}
		delete(metadata, ChecksumKey)
	}

	tensors := make(map[string]Tensor, len(metas))
	for _, m := range metas {
		values, err := decodeValues(data[m.Offset:m.Offset+m.Size], m.DType)
		if err != nil {
			return nil, nil, fmt.Errorf("tensor %q: %w", m.Name, err)
		}
		t := Tensor{DType: m.DType, Shape: m.Shape, Values: values}
		if err := ValidateTensor(m.Name, t); err != nil {
			return nil, nil, err
		}
		tensors[m.Name] = t
	}

	return tensors, metadata, nil
}

// tensorMeta converts a header entry into a TensorMeta.
func tensorMeta(name string, h SafeTensorHeader) (TensorMeta, error) {
	dtype, ok := safeTensorsToDtype(h.DType)
	if !ok {
		return TensorMeta{}, &ValidationError{Type: "unsupported_dtype", Tensor: name, Details: h.DType, Err: ErrUnsupportedDType}
	}

	shape := make([]int, len(h.Shape))
	for i, dim := range h.Shape {
		shape[i] = int(dim)
	}

	return TensorMeta{
		Name:   name,
		DType:  dtype,
		Shape:  shape,
		Offset: h.DataOffsets[0],
		Size:   h.DataOffsets[1] - h.DataOffsets[0],
	}, nil
}
