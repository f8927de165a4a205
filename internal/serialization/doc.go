// Package serialization reads and writes named parameter arrays in the SafeTensors format.
//
//	Format Structure:
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON object, tensor name -> {dtype, shape, data_offsets}, plus "__metadata__"]
//	  [Tensor data: raw little-endian bytes, tensors in alphabetical order]
//
// Only F32 and F64 tensors are supported. Writers add a SHA-256 of the data section to the
// metadata under "sha256"; readers verify it when present.
//
// Example usage:
//
//	err := serialization.WriteSafeTensors("params.safetensors", tensors, map[string]string{"format": "fcnet"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tensors, metadata, err := serialization.ReadSafeTensors("params.safetensors")
package serialization
