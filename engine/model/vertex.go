package model

import (
	"encoding/binary"
	"math"
)

// VertexStride is the serialized size of a Vertex in bytes (18 float32 values).
const VertexStride = 72

// Vertex is the canonical, fully resolved vertex layout shared by the importer and the GPU pipeline.
// Matches the WGSL VertexInput struct of the model shader exactly.
type Vertex struct {
	Position [3]float32 // offset  0: model-space position (12 bytes)
	Normal   [3]float32 // offset 12: normal direction (12 bytes)
	Tangent  [4]float32 // offset 24: tangent direction (xyz) + handedness sign (w) (16 bytes)
	Color    [4]float32 // offset 40: gamma-decoded RGBA color (16 bytes)
	UV0      [2]float32 // offset 56: first texture coordinate set (8 bytes)
	UV1      [2]float32 // offset 64: second texture coordinate set (8 bytes)
}

// DefaultVertex returns the value every attribute takes when the source primitive does not provide it:
// origin position, zero normal, zero tangent with w=0, opaque white color and zero UVs.
func DefaultVertex() Vertex {
	return Vertex{Color: [4]float32{1, 1, 1, 1}}
}

// MarshalTo serializes the vertex into dst, which must hold at least VertexStride bytes.
//
// Parameters:
//   - dst: the destination byte slice
func (v *Vertex) MarshalTo(dst []byte) {
	_ = dst[VertexStride-1]
	off := 0
	put := func(values ...float32) {
		for _, f := range values {
			binary.LittleEndian.PutUint32(dst[off:off+4], math.Float32bits(f))
			off += 4
		}
	}
	put(v.Position[:]...)
	put(v.Normal[:]...)
	put(v.Tangent[:]...)
	put(v.Color[:]...)
	put(v.UV0[:]...)
	put(v.UV1[:]...)
}

// Marshal serializes the vertex into a new buffer suitable for GPU upload.
//
// Returns:
//   - []byte: VertexStride-byte buffer
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, VertexStride)
	v.MarshalTo(buf)
	return buf
}
