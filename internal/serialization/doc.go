// Package serialization stores model weights in the SafeTensors format.
//
//	Format Structure:
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON object, tensor name -> {dtype, shape, data_offsets}]
//	  [Tensor data: raw little-endian bytes, tensors in name order]
//
// The optional "__metadata__" entry of the header carries string metadata.
// Writers record a SHA-256 checksum of the data section there and readers
// verify it when present.
//
// Tensors are read into gonum matrices: 2-D tensors keep their shape, 1-D
// tensors become a single row. F64 and F32 data are supported.
//
// Example usage:
//
//	err := serialization.WriteFile("model.safetensors", tensors, map[string]string{"model_type": "segnmt"})
//
//	f, err := serialization.ReadFile("model.safetensors")
//	w := f.Tensors["en.encoder.0"]
package serialization
