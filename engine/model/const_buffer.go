package model

import (
	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/go-gl/mathgl/mgl32"
)

// ConstBufferSize is the serialized size of a ConstBuffer: three 4x4 float32 matrices.
const ConstBufferSize = 3 * common.Mat4Size

// ConstBuffer is the per-draw uniform payload. Matches the WGSL Transforms struct of the model shader.
type ConstBuffer struct {
	Model      mgl32.Mat4 // offset   0
	View       mgl32.Mat4 // offset  64
	Projection mgl32.Mat4 // offset 128
}

// Marshal serializes the three matrices for GPU upload. mgl32 matrices are column-major like WGSL,
// so they are written as-is unless transpose is set for a shader library that expects row-major data.
//
// Parameters:
//   - transpose: whether each matrix is transposed before it is written
//
// Returns:
//   - []byte: ConstBufferSize-byte buffer
func (c *ConstBuffer) Marshal(transpose bool) []byte {
	buf := make([]byte, ConstBufferSize)
	for i, m := range [3]mgl32.Mat4{c.Model, c.View, c.Projection} {
		if transpose {
			m = m.Transpose()
		}
		common.PutMat4(buf[i*common.Mat4Size:], m)
	}
	return buf
}
