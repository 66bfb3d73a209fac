package serialization

// Format constants.
const (
	HeaderSizeBytes = 8
	MetadataKey     = "__metadata__"
	ChecksumKey     = "sha256"
)

// SafeTensors dtype names.
const (
	DTypeF64 = "F64"
	DTypeF32 = "F32"
)

// TensorHeader represents a tensor in the SafeTensors header.
type TensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// TensorMeta describes a tensor's byte range in the data section.
type TensorMeta struct {
	Name   string
	Offset int64
	Size   int64
}

// dtypeSize returns the element size of a supported dtype.
func dtypeSize(dtype string) (int, bool) {
	switch dtype {
	case DTypeF64:
		return 8, true
	case DTypeF32:
		return 4, true
	default:
		return 0, false
	}
}
