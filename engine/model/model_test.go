package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuffer struct {
	size     uint64
	released int
}

func (b *fakeBuffer) Size() uint64 { return b.size }
func (b *fakeBuffer) Release()     { b.released++ }

func floatAt(buf []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
}

func TestVertexMarshalLayout(t *testing.T) {
	v := Vertex{
		Position: [3]float32{1, 2, 3},
		Normal:   [3]float32{4, 5, 6},
		Tangent:  [4]float32{7, 8, 9, -1},
		Color:    [4]float32{0.1, 0.2, 0.3, 0.4},
		UV0:      [2]float32{0.5, 0.6},
		UV1:      [2]float32{0.7, 0.8},
	}
	buf := v.Marshal()
	require.Len(t, buf, VertexStride)

	want := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, -1, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}
	for i, f := range want {
		assert.Equal(t, f, floatAt(buf, i), "float %d", i)
	}
}

func TestDefaultVertex(t *testing.T) {
	v := DefaultVertex()
	assert.Equal(t, [4]float32{1, 1, 1, 1}, v.Color)
	assert.Equal(t, [4]float32{}, v.Tangent)
	assert.Equal(t, [3]float32{}, v.Position)
}

func TestMeshBatchMarshalIsContiguous(t *testing.T) {
	a, b := DefaultVertex(), DefaultVertex()
	a.Position = [3]float32{1, 0, 0}
	b.Position = [3]float32{2, 0, 0}
	batch := NewMeshBatch([]Vertex{a, b})

	buf := batch.Marshal()
	require.Len(t, buf, 2*VertexStride)
	assert.Equal(t, batch.ByteSize(), len(buf))
	assert.Equal(t, float32(1), floatAt(buf, 0))
	assert.Equal(t, float32(2), floatAt(buf, VertexStride/4))
}

func TestMeshBatchBindOnce(t *testing.T) {
	batch := NewMeshBatch([]Vertex{DefaultVertex()})
	assert.False(t, batch.Uploaded())

	buf := &fakeBuffer{size: VertexStride}
	require.NoError(t, batch.Bind(buf))
	assert.True(t, batch.Uploaded())
	assert.ErrorIs(t, batch.Bind(&fakeBuffer{}), ErrBatchAlreadyBound)

	batch.Release()
	assert.Equal(t, 1, buf.released)
	assert.False(t, batch.Uploaded())
	batch.Release()
	assert.Equal(t, 1, buf.released)
}

func TestModelMergeAppendsInOrder(t *testing.T) {
	m := NewModel("scene.gltf")
	first := DefaultVertex()
	first.Position = [3]float32{1, 0, 0}
	second := DefaultVertex()
	second.Position = [3]float32{2, 0, 0}

	m.Merge("M", NewMeshBatch([]Vertex{first}))
	m.Merge("A", NewMeshBatch([]Vertex{DefaultVertex()}))
	m.Merge("M", NewMeshBatch([]Vertex{second}))

	assert.Equal(t, []string{"A", "M"}, m.Keys())
	assert.Equal(t, 3, m.VertexCount())
	require.Equal(t, 2, m.Batches["M"].VertexCount())
	assert.Equal(t, first.Position, m.Batches["M"].Vertices[0].Position)
	assert.Equal(t, second.Position, m.Batches["M"].Vertices[1].Position)
	assert.False(t, m.Empty())
	assert.True(t, NewModel("").Empty())
}

func TestMaterialCatalogAlbedoOr(t *testing.T) {
	textured := NewMaterial("Textured")
	textured.AlbedoTexture = 4
	catalog := MaterialCatalog{
		"Textured": textured,
		"Plain":    NewMaterial("Plain"),
	}

	assert.Equal(t, 4, catalog.AlbedoOr("Textured", 0))
	assert.Equal(t, 0, catalog.AlbedoOr("Plain", 0))
	assert.Equal(t, 0, catalog.AlbedoOr(NoMaterialKey, 0))

	_, ok := catalog.Lookup("missing")
	assert.False(t, ok)
}

func TestConstBufferMarshal(t *testing.T) {
	cb := ConstBuffer{
		Model:      mgl32.Translate3D(1, 2, 3),
		View:       mgl32.Ident4(),
		Projection: mgl32.Scale3D(2, 2, 2),
	}

	buf := cb.Marshal(false)
	require.Len(t, buf, ConstBufferSize)
	// Column-major: translation sits in elements 12..14 of the model matrix.
	assert.Equal(t, float32(1), floatAt(buf, 12))
	assert.Equal(t, float32(0), floatAt(buf, 3))
	assert.Equal(t, float32(1), floatAt(buf, 16))
	assert.Equal(t, float32(2), floatAt(buf, 32))

	transposed := cb.Marshal(true)
	assert.Equal(t, float32(1), floatAt(transposed, 3))
	assert.Equal(t, float32(0), floatAt(transposed, 12))
}

func TestTransformMatrix(t *testing.T) {
	assert.True(t, IdentityTransform().Matrix().ApproxEqual(mgl32.Ident4()))

	tr := NewTransform([3]float32{1, 2, 3}, [4]float32{0, 0, 0, 1}, [3]float32{2, 2, 2})
	p := tr.Matrix().Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	assert.Equal(t, mgl32.Vec4{3, 4, 5, 1}, p)
}
