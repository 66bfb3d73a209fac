package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func sampleTensors() map[string]*mat.Dense {
	return map[string]*mat.Dense{
		"en.encoder.0": mat.NewDense(2, 3, []float64{1, -2, 3.5, 0, 1e-9, -7}),
		"shared.words": mat.NewDense(1, 2, []float64{math.Pi, -math.E}),
	}
}

func TestWriteRead(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTensors(), map[string]string{"model_type": "segnmt"}))

	f, err := Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, "segnmt", f.Metadata["model_type"])
	assert.NotEmpty(t, f.Metadata[ChecksumKey])
	require.Len(t, f.Tensors, 2)
	for name, want := range sampleTensors() {
		assert.True(t, mat.Equal(want, f.Tensors[name]), name)
	}
}

func TestWriteFileReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.safetensors")
	require.NoError(t, WriteFile(path, sampleTensors(), nil))

	f, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Tensors, 2)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.safetensors"))
	assert.Error(t, err)
}

func TestRead_ChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTensors(), nil))

	raw := buf.Bytes()
	raw[len(raw)-1] ^= 0xFF

	_, err := Read(bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

// encode builds a stream from a hand-written header and data section.
func encode(t *testing.T, header map[string]interface{}, data []byte) []byte {
	t.Helper()
	h, err := json.Marshal(header)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(len(h))))
	buf.Write(h)
	buf.Write(data)
	return buf.Bytes()
}

func TestRead_F32(t *testing.T) {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data, math.Float32bits(1.5))
	binary.LittleEndian.PutUint32(data[4:], math.Float32bits(-2))
	stream := encode(t, map[string]interface{}{
		"bias": TensorHeader{DType: DTypeF32, Shape: []int64{2}, DataOffsets: [2]int64{0, 8}},
	}, data)

	f, err := Read(bytes.NewReader(stream))
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2}, f.Tensors["bias"].RawRowView(0))
}

func TestRead_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		header  map[string]interface{}
		data    []byte
		wantErr error
	}{
		{
			name:    "unsupported dtype",
			header:  map[string]interface{}{"x": TensorHeader{DType: "BF16", Shape: []int64{2}, DataOffsets: [2]int64{0, 4}}},
			data:    make([]byte, 4),
			wantErr: ErrUnsupportedDType,
		},
		{
			name:    "three dimensions",
			header:  map[string]interface{}{"x": TensorHeader{DType: DTypeF64, Shape: []int64{1, 1, 1}, DataOffsets: [2]int64{0, 8}}},
			data:    make([]byte, 8),
			wantErr: ErrUnsupportedShape,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(encode(t, tt.header, tt.data)))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRead_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		header   map[string]interface{}
		data     []byte
		wantType string
	}{
		{
			name:     "out of bounds",
			header:   map[string]interface{}{"x": TensorHeader{DType: DTypeF64, Shape: []int64{2}, DataOffsets: [2]int64{0, 16}}},
			data:     make([]byte, 8),
			wantType: "out_of_bounds",
		},
		{
			name: "overlap",
			header: map[string]interface{}{
				"a": TensorHeader{DType: DTypeF64, Shape: []int64{2}, DataOffsets: [2]int64{0, 16}},
				"b": TensorHeader{DType: DTypeF64, Shape: []int64{1}, DataOffsets: [2]int64{8, 16}},
			},
			data:     make([]byte, 16),
			wantType: "offset_overlap",
		},
		{
			name:     "path traversal",
			header:   map[string]interface{}{"../x": TensorHeader{DType: DTypeF64, Shape: []int64{1}, DataOffsets: [2]int64{0, 8}}},
			data:     make([]byte, 8),
			wantType: "invalid_name",
		},
		{
			name:     "size mismatch",
			header:   map[string]interface{}{"x": TensorHeader{DType: DTypeF64, Shape: []int64{2}, DataOffsets: [2]int64{0, 8}}},
			data:     make([]byte, 8),
			wantType: "size_mismatch",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(encode(t, tt.header, tt.data)))
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.wantType, verr.Type)
		})
	}
}

func TestRead_Truncated(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte{1, 2}))
	assert.Error(t, err)

	stream := encode(t, map[string]interface{}{}, nil)
	_, err = Read(bytes.NewReader(stream[:9]))
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestWrite_RejectsUnsafeNames(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, map[string]*mat.Dense{"a/b": mat.NewDense(1, 1, nil)}, nil)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "invalid_name", verr.Type)
}

func TestValidateChecksum(t *testing.T) {
	sum := ComputeChecksum([]byte("weights"))
	assert.NoError(t, ValidateChecksum([]byte("weights"), sum))
	assert.ErrorIs(t, ValidateChecksum([]byte("weightz"), sum), ErrChecksumMismatch)
}
