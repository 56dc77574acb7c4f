package model

import (
	"errors"
)

// ErrBatchAlreadyBound is returned when a GPU buffer is bound to a MeshBatch that already owns one.
var ErrBatchAlreadyBound = errors.New("mesh batch already has a GPU buffer")

// GPUBuffer is the device-side handle a MeshBatch owns once uploaded.
// The renderer's backend supplies the concrete type.
type GPUBuffer interface {
	// Size returns the allocation size in bytes.
	Size() uint64

	// Release frees the device memory.
	Release()
}

// MeshBatch is a flat, non-indexed run of vertices that share one material.
// Vertices are appended while the scene is flattened and never change after upload.
type MeshBatch struct {
	Vertices []Vertex

	buffer GPUBuffer
}

// NewMeshBatch wraps vertices in a MeshBatch that has not been uploaded yet.
func NewMeshBatch(vertices []Vertex) *MeshBatch {
	return &MeshBatch{Vertices: vertices}
}

// VertexCount returns the number of vertices in the batch.
func (b *MeshBatch) VertexCount() int {
	return len(b.Vertices)
}

// ByteSize returns the size of the serialized batch in bytes.
func (b *MeshBatch) ByteSize() int {
	return len(b.Vertices) * VertexStride
}

// Append adds the vertices of other to the end of this batch.
//
// Parameters:
//   - other: the batch whose vertices are appended
func (b *MeshBatch) Append(other *MeshBatch) {
	b.Vertices = append(b.Vertices, other.Vertices...)
}

// Marshal serializes every vertex into one contiguous buffer.
//
// Returns:
//   - []byte: the vertex data, VertexStride bytes per vertex
func (b *MeshBatch) Marshal() []byte {
	buf := make([]byte, b.ByteSize())
	for i := range b.Vertices {
		b.Vertices[i].MarshalTo(buf[i*VertexStride:])
	}
	return buf
}

// Buffer returns the GPU buffer bound to this batch, or nil if it has not been uploaded.
func (b *MeshBatch) Buffer() GPUBuffer {
	return b.buffer
}

// Uploaded reports whether a GPU buffer is bound.
func (b *MeshBatch) Uploaded() bool {
	return b.buffer != nil
}

// Bind attaches the GPU buffer created for this batch. A batch is bound at most once.
//
// Parameters:
//   - buf: the uploaded buffer
//
// Returns:
//   - error: ErrBatchAlreadyBound if the batch already owns a buffer
func (b *MeshBatch) Bind(buf GPUBuffer) error {
	if b.buffer != nil {
		return ErrBatchAlreadyBound
	}
	b.buffer = buf
	return nil
}

// Release frees the bound GPU buffer, if any.
func (b *MeshBatch) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}
