package loader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangleDoc builds a document with one indexed triangle mesh per material index in materials.
// A negative material index leaves the primitive without a material.
func triangleDoc(t *testing.T, materialNames []string, primitiveMaterials ...int) *gltf.Document {
	t.Helper()

	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})

	for _, name := range materialNames {
		doc.Materials = append(doc.Materials, &gltf.Material{Name: name})
	}
	for _, mi := range primitiveMaterials {
		prim := &gltf.Primitive{
			Attributes: map[string]int{gltf.POSITION: pos},
			Indices:    gltf.Index(idx),
		}
		if mi >= 0 {
			prim.Material = gltf.Index(mi)
		}
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{Primitives: []*gltf.Primitive{prim}})
	}
	return doc
}

func TestFlattenMergesPrimitivesSharingMaterial(t *testing.T) {
	doc := triangleDoc(t, []string{"M"}, 0, 0)
	doc.Nodes = []*gltf.Node{
		{Mesh: gltf.Index(0)},
		{Mesh: gltf.Index(1), Translation: [3]float64{5, 0, 0}},
	}
	doc.Scenes[0].Nodes = []int{0, 1}

	m, err := Flatten(doc, "two.gltf")
	require.NoError(t, err)
	require.Len(t, m.Batches, 1)
	batch := m.Batches["M"]
	require.NotNil(t, batch)
	assert.Equal(t, 6, batch.VertexCount())

	// Declaration order: the first node's vertices come first.
	assert.Equal(t, [3]float32{0, 0, 0}, batch.Vertices[0].Position)
	assert.Equal(t, [3]float32{5, 0, 0}, batch.Vertices[3].Position)
}

func TestFlattenComposesHierarchy(t *testing.T) {
	doc := triangleDoc(t, []string{"M"}, 0)
	doc.Nodes = []*gltf.Node{
		{Translation: [3]float64{0, 10, 0}, Children: []int{1}},
		{Mesh: gltf.Index(0), Scale: [3]float64{2, 2, 2}},
	}
	doc.Scenes[0].Nodes = []int{0}

	m, err := Flatten(doc, "nested.gltf")
	require.NoError(t, err)
	batch := m.Batches["M"]
	require.NotNil(t, batch)
	require.Equal(t, 3, batch.VertexCount())

	assert.InDeltaSlice(t, []float32{0, 10, 0}, batch.Vertices[0].Position[:], 1e-6)
	assert.InDeltaSlice(t, []float32{2, 10, 0}, batch.Vertices[1].Position[:], 1e-6)
	assert.InDeltaSlice(t, []float32{0, 12, 0}, batch.Vertices[2].Position[:], 1e-6)
}

func TestFlattenUsesNodeMatrix(t *testing.T) {
	doc := triangleDoc(t, []string{"M"}, 0)
	doc.Nodes = []*gltf.Node{{
		Mesh:   gltf.Index(0),
		Matrix: [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 3, 4, 5, 1},
	}}
	doc.Scenes[0].Nodes = []int{0}

	m, err := Flatten(doc, "matrix.gltf")
	require.NoError(t, err)
	assert.Equal(t, [3]float32{3, 4, 5}, m.Batches["M"].Vertices[0].Position)
}

func TestFlattenMaterialKeys(t *testing.T) {
	doc := triangleDoc(t, []string{"", "Named"}, -1, 0, 1)
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}, {Mesh: gltf.Index(1)}, {Mesh: gltf.Index(2)}}
	doc.Scenes[0].Nodes = []int{0, 1, 2}

	m, err := Flatten(doc, "keys.gltf")
	require.NoError(t, err)
	assert.Equal(t, []string{"Named", model.NoMaterialKey}, m.Keys())
	// The primitive without a material and the one with an unnamed material share "None".
	assert.Equal(t, 6, m.Batches[model.NoMaterialKey].VertexCount())
}

func TestFlattenWithoutDefaultSceneIsEmpty(t *testing.T) {
	doc := triangleDoc(t, []string{"M"}, 0)
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}
	doc.Scene = nil

	m, err := Flatten(doc, "noscene.gltf")
	require.NoError(t, err)
	assert.True(t, m.Empty())
	assert.Equal(t, "noscene.gltf", m.Path)
}

func TestFlattenNonIndexedPrimitive(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}, {2, 0, 0}, {2, 1, 0}})
	doc.Meshes = []*gltf.Mesh{{Primitives: []*gltf.Primitive{{Attributes: map[string]int{gltf.POSITION: pos}}}}}
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}

	m, err := Flatten(doc, "soup.gltf")
	require.NoError(t, err)
	assert.Equal(t, 6, m.Batches[model.NoMaterialKey].VertexCount())
}

func TestFlattenRejectsCycles(t *testing.T) {
	doc := triangleDoc(t, nil, -1)
	doc.Nodes = []*gltf.Node{{Children: []int{1}}, {Children: []int{0}}}
	doc.Scenes[0].Nodes = []int{0}

	_, err := Flatten(doc, "cycle.gltf")
	assert.Error(t, err)
}
