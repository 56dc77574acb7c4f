package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// Flatten walks the document's default scene depth-first in declaration order and produces one merged
// MeshBatch per material key. Each node's accumulated transform is its parent's accumulated transform
// times its local TRS matrix. A document with no default scene yields an empty model.
//
// Parameters:
//   - doc: the glTF document with resolved buffers
//   - path: the source path recorded on the model
//
// Returns:
//   - *model.Model: the flattened model; Materials is left empty
//   - error: a format error from any primitive
func Flatten(doc *gltf.Document, path string) (*model.Model, error) {
	m := model.NewModel(path)
	if doc.Scene == nil || *doc.Scene < 0 || *doc.Scene >= len(doc.Scenes) {
		return m, nil
	}

	f := &flattener{doc: doc, out: m, visiting: make(map[int]bool)}
	for _, root := range doc.Scenes[*doc.Scene].Nodes {
		if err := f.visit(root, mgl32.Ident4()); err != nil {
			return nil, err
		}
	}
	return m, nil
}

type flattener struct {
	doc *gltf.Document
	out *model.Model

	// visiting guards against cycles in malformed node hierarchies.
	visiting map[int]bool
}

func (f *flattener) visit(index int, parent mgl32.Mat4) error {
	if index < 0 || index >= len(f.doc.Nodes) {
		return fmt.Errorf("node index %d out of range", index)
	}
	if f.visiting[index] {
		return fmt.Errorf("node %d is its own ancestor", index)
	}
	f.visiting[index] = true
	defer delete(f.visiting, index)

	node := f.doc.Nodes[index]
	world := parent.Mul4(localMatrix(node))

	if node.Mesh != nil {
		if *node.Mesh < 0 || *node.Mesh >= len(f.doc.Meshes) {
			return fmt.Errorf("node %d: mesh index %d out of range", index, *node.Mesh)
		}
		for pi, prim := range f.doc.Meshes[*node.Mesh].Primitives {
			batch, err := f.primitiveBatch(prim, world)
			if err != nil {
				return fmt.Errorf("mesh %d primitive %d: %w", *node.Mesh, pi, err)
			}
			f.out.Merge(materialKey(f.doc, prim), batch)
		}
	}

	for _, child := range node.Children {
		if err := f.visit(child, world); err != nil {
			return err
		}
	}
	return nil
}

// primitiveBatch decodes one primitive's attributes and indices and builds its vertex batch.
func (f *flattener) primitiveBatch(prim *gltf.Primitive, world mgl32.Mat4) (*model.MeshBatch, error) {
	var attrs PrimitiveAttributes
	vertexCount := 0

	read := func(semantic string) ([]float32, int, error) {
		idx, ok := prim.Attributes[semantic]
		if !ok {
			return nil, 0, nil
		}
		return readAccessor(f.doc, idx)
	}

	var err error
	if attrs.Positions, _, err = read(gltf.POSITION); err != nil {
		return nil, err
	}
	vertexCount = len(attrs.Positions) / 3
	if attrs.Normals, _, err = read(gltf.NORMAL); err != nil {
		return nil, err
	}
	if attrs.Tangents, _, err = read(gltf.TANGENT); err != nil {
		return nil, err
	}
	if attrs.Colors, attrs.ColorComponents, err = read(gltf.COLOR_0); err != nil {
		return nil, err
	}
	if attrs.UV0, _, err = read(gltf.TEXCOORD_0); err != nil {
		return nil, err
	}
	if attrs.UV1, _, err = read(gltf.TEXCOORD_1); err != nil {
		return nil, err
	}

	var indices []uint16
	if prim.Indices != nil {
		values, _, err := readAccessor(f.doc, *prim.Indices)
		if err != nil {
			return nil, err
		}
		indices = NarrowIndices(values)
	} else {
		indices = SequentialIndices(vertexCount)
	}

	return BuildBatch(attrs, indices, world)
}

// materialKey returns the primitive's material name, or model.NoMaterialKey when it has no named material.
func materialKey(doc *gltf.Document, prim *gltf.Primitive) string {
	if prim.Material == nil || *prim.Material < 0 || *prim.Material >= len(doc.Materials) {
		return model.NoMaterialKey
	}
	return common.Coalesce(doc.Materials[*prim.Material].Name, model.NoMaterialKey)
}

var (
	zeroMatrix   [16]float64
	identityMat  = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	zeroRotation [4]float64
	zeroScale    [3]float64
)

// localMatrix builds a node's local transform. An explicit matrix wins; otherwise the decomposed
// translation, rotation (x, y, z, w) and scale are composed as T * R * S.
func localMatrix(n *gltf.Node) mgl32.Mat4 {
	if n.Matrix != zeroMatrix && n.Matrix != identityMat {
		var m mgl32.Mat4
		for i, v := range n.Matrix {
			m[i] = float32(v)
		}
		return m
	}

	rotation := n.Rotation
	if rotation == zeroRotation {
		rotation = [4]float64{0, 0, 0, 1}
	}
	scale := n.Scale
	if scale == zeroScale {
		scale = [3]float64{1, 1, 1}
	}

	return common.ComposeTRS(
		mgl32.Vec3{float32(n.Translation[0]), float32(n.Translation[1]), float32(n.Translation[2])},
		mgl32.Quat{W: float32(rotation[3]), V: mgl32.Vec3{float32(rotation[0]), float32(rotation[1]), float32(rotation[2])}},
		mgl32.Vec3{float32(scale[0]), float32(scale[1]), float32(scale[2])},
	)
}
