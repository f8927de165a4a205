package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// SafeTensorsWriter writes named tensors in SafeTensors format.
type SafeTensorsWriter struct {
	w      io.Writer
	closer io.Closer
	closed bool
}

// NewSafeTensorsWriter creates a new SafeTensors file writer.
func NewSafeTensorsWriter(path string) (*SafeTensorsWriter, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for parameter saving
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	return &SafeTensorsWriter{w: file, closer: file}, nil
}

// NewSafeTensorsStreamWriter writes to an arbitrary stream; Close does not close it.
func NewSafeTensorsStreamWriter(w io.Writer) *SafeTensorsWriter {
	return &SafeTensorsWriter{w: w}
}

// WriteSafeTensors writes tensors to a SafeTensors file.
//
// Tensors are written in alphabetical order by name.
func WriteSafeTensors(path string, tensors map[string]Tensor, metadata map[string]string) (err error) {
	writer, err := NewSafeTensorsWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := writer.Close(); err == nil {
			err = cerr
		}
	}()

	return writer.WriteStateDict(tensors, metadata)
}

// WriteStateDict writes a state dictionary.
//
// The state dictionary is a map from parameter names to tensors.
// Tensors are written in alphabetical order by name (SafeTensors requirement).
func (w *SafeTensorsWriter) WriteStateDict(stateDict map[string]Tensor, metadata map[string]string) error {
	if w.closed {
		return fmt.Errorf("writer is closed")
	}

	tensorNames := make([]string, 0, len(stateDict))
	for name, t := range stateDict {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		if err := ValidateTensor(name, t); err != nil {
			return err
		}
		tensorNames = append(tensorNames, name)
	}
	sort.Strings(tensorNames)

	// Encode the data section first so its checksum can go into the header.
	header := make(map[string]interface{}, len(tensorNames)+1)
	var data []byte
	for _, name := range tensorNames {
		t := stateDict[name]
		start := int64(len(data))
		data = encodeValues(data, t.Values, t.DType)

		shapeInt64 := make([]int64, len(t.Shape))
		for i, dim := range t.Shape {
			shapeInt64[i] = int64(dim)
		}

		header[name] = SafeTensorHeader{
			DType:       dtypeToSafeTensors(t.DType),
			Shape:       shapeInt64,
			DataOffsets: [2]int64{start, int64(len(data))},
		}
	}

	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[ChecksumKey] = ChecksumHex(data)
	header[MetadataKey] = meta

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	// Write header size (8 bytes, little-endian uint64)
	headerSize := uint64(len(headerJSON))
	if err := binary.Write(w.w, binary.LittleEndian, headerSize); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}

	if _, err := w.w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}

	return nil
}

// Close closes the writer and the underlying file, if it owns one.
func (w *SafeTensorsWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
