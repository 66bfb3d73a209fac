package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

// File is a decoded SafeTensors file.
type File struct {
	Tensors  map[string]*mat.Dense
	Metadata map[string]string
}

// Read decodes a SafeTensors stream.
//
// The header is validated before any tensor is decoded: names must be safe
// and byte ranges must neither overlap nor leave the data section. A stored
// checksum is verified.
func Read(r io.Reader) (*File, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrTruncated, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}

	f := &File{
		Tensors:  make(map[string]*mat.Dense, len(raw)),
		Metadata: map[string]string{},
	}
	headers := make(map[string]TensorHeader, len(raw))
	metas := make([]TensorMeta, 0, len(raw))
	for name, msg := range raw {
		if name == MetadataKey {
			if err := json.Unmarshal(msg, &f.Metadata); err != nil {
				return nil, fmt.Errorf("%w: metadata: %w", ErrInvalidHeader, err)
			}
			continue
		}
		var h TensorHeader
		if err := json.Unmarshal(msg, &h); err != nil {
			return nil, fmt.Errorf("%w: tensor %q: %w", ErrInvalidHeader, name, err)
		}
		headers[name] = h
		metas = append(metas, TensorMeta{
			Name:   name,
			Offset: h.DataOffsets[0],
			Size:   h.DataOffsets[1] - h.DataOffsets[0],
		})
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if err := ValidateHeader(metas, int64(len(data))); err != nil {
		return nil, err
	}
	if sum, ok := f.Metadata[ChecksumKey]; ok {
		if err := ValidateChecksum(data, sum); err != nil {
			return nil, err
		}
	}

	for name, h := range headers {
		m, err := decodeTensor(name, h, data[h.DataOffsets[0]:h.DataOffsets[1]])
		if err != nil {
			return nil, err
		}
		f.Tensors[name] = m
	}
	return f, nil
}

// ReadFile decodes the SafeTensors file at path.
func ReadFile(path string) (*File, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close() // Best effort close
	}()

	f, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// decodeTensor converts the bytes of one tensor into a matrix.
func decodeTensor(name string, h TensorHeader, buf []byte) (*mat.Dense, error) {
	size, ok := dtypeSize(h.DType)
	if !ok {
		return nil, fmt.Errorf("%w: tensor %q has dtype %s", ErrUnsupportedDType, name, h.DType)
	}

	var rows, cols int
	switch len(h.Shape) {
	case 1:
		rows, cols = 1, int(h.Shape[0])
	case 2:
		rows, cols = int(h.Shape[0]), int(h.Shape[1])
	default:
		return nil, fmt.Errorf("%w: tensor %q has %d dimensions", ErrUnsupportedShape, name, len(h.Shape))
	}
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: tensor %q has shape %v", ErrUnsupportedShape, name, h.Shape)
	}
	if len(buf) != rows*cols*size {
		return nil, &ValidationError{
			Type:    "size_mismatch",
			Tensor:  name,
			Details: fmt.Sprintf("shape %v needs %d bytes, got %d", h.Shape, rows*cols*size, len(buf)),
		}
	}

	values := make([]float64, rows*cols)
	for i := range values {
		chunk := buf[i*size : (i+1)*size]
		if size == 8 {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(chunk))
		} else {
			values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(chunk)))
		}
	}
	return mat.NewDense(rows, cols, values), nil
}
