// Package model holds the data produced by the importer and consumed by the renderer:
// vertices, material-keyed mesh batches, materials, transforms and the per-draw uniform payload.
package model

import (
	"github.com/Carmen-Shannon/oxy-gltf/common"
)

// Model is an imported scene flattened into one MeshBatch per material key, plus the material catalog.
// Models are owned by the renderer's model table and referenced by index from the draw queue.
type Model struct {
	// Path is the file the model was imported from.
	Path string

	Batches   map[string]*MeshBatch
	Materials MaterialCatalog
}

// NewModel returns an empty model for the given source path.
func NewModel(path string) *Model {
	return &Model{
		Path:      path,
		Batches:   make(map[string]*MeshBatch),
		Materials: make(MaterialCatalog),
	}
}

// Merge adds batch under key, appending its vertices to an existing batch with the same key.
//
// Parameters:
//   - key: the material key of the batch
//   - batch: the batch to merge
func (m *Model) Merge(key string, batch *MeshBatch) {
	if existing, ok := m.Batches[key]; ok {
		existing.Append(batch)
		return
	}
	m.Batches[key] = batch
}

// Keys returns the batch keys in sorted order, which is the order batches are drawn in.
func (m *Model) Keys() []string {
	return common.SortedKeys(m.Batches)
}

// VertexCount returns the total number of vertices across all batches.
func (m *Model) VertexCount() int {
	n := 0
	for _, b := range m.Batches {
		n += b.VertexCount()
	}
	return n
}

// Empty reports whether the model has no batches.
func (m *Model) Empty() bool {
	return len(m.Batches) == 0
}

// Release frees the GPU buffers of every batch.
func (m *Model) Release() {
	for _, b := range m.Batches {
		b.Release()
	}
}
