package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// gammaExponent is applied to the RGB channels of vertex colors on import.
const gammaExponent = 1 / 2.2

// PrimitiveAttributes holds the decoded attribute streams of one primitive.
// A nil slice means the attribute is absent; every vertex then takes that attribute's default.
type PrimitiveAttributes struct {
	Positions []float32 // 3 per vertex
	Normals   []float32 // 3 per vertex
	Tangents  []float32 // 4 per vertex, w is the handedness sign
	Colors    []float32 // ColorComponents per vertex
	UV0       []float32 // 2 per vertex
	UV1       []float32 // 2 per vertex

	// ColorComponents is 3 or 4. Zero is treated as 4.
	ColorComponents int
}

// stream is a present attribute with its element size, used for validation and lookup.
type stream struct {
	name       string
	values     []float32
	components int
}

func (s stream) present() bool {
	return s.values != nil
}

func (s stream) count() int {
	return len(s.values) / s.components
}

func (s stream) at(i int) []float32 {
	return s.values[i*s.components : (i+1)*s.components]
}

// BuildBatch expands an indexed primitive into a flat vertex batch with one vertex per index.
// Positions are transformed by the full matrix; normals and tangent directions by its linear part only.
// Tangent w and UVs are copied. Color RGB channels are gamma decoded (c^(1/2.2), clamped to 1) and alpha
// is copied.
//
// Parameters:
//   - attrs: the decoded attribute streams
//   - indices: the vertex indices, one output vertex each
//   - transform: the accumulated model-space transform
//
// Returns:
//   - *model.MeshBatch: a batch with len(indices) vertices
//   - error: ErrAttributeLength or ErrIndexOutOfRange
func BuildBatch(attrs PrimitiveAttributes, indices []uint16, transform mgl32.Mat4) (*model.MeshBatch, error) {
	colorComponents := attrs.ColorComponents
	if colorComponents == 0 {
		colorComponents = 4
	}
	if colorComponents != 3 && colorComponents != 4 {
		return nil, fmt.Errorf("%w: COLOR_0 with %d components", ErrAttributeLength, colorComponents)
	}

	position := stream{"POSITION", attrs.Positions, 3}
	normal := stream{"NORMAL", attrs.Normals, 3}
	tangent := stream{"TANGENT", attrs.Tangents, 4}
	color := stream{"COLOR_0", attrs.Colors, colorComponents}
	uv0 := stream{"TEXCOORD_0", attrs.UV0, 2}
	uv1 := stream{"TEXCOORD_1", attrs.UV1, 2}

	streams := []stream{position, normal, tangent, color, uv0, uv1}
	for _, s := range streams {
		if !s.present() {
			continue
		}
		if len(s.values)%s.components != 0 {
			return nil, fmt.Errorf("%w: %s has %d values for %d components", ErrAttributeLength, s.name, len(s.values), s.components)
		}
	}

	linear := common.LinearPart(transform)
	vertices := make([]model.Vertex, len(indices))

	for vi, index := range indices {
		i := int(index)
		for _, s := range streams {
			if s.present() && i >= s.count() {
				return nil, fmt.Errorf("%w: index %d, %s has %d elements", ErrIndexOutOfRange, i, s.name, s.count())
			}
		}

		v := model.DefaultVertex()
		if position.present() {
			p := position.at(i)
			v.Position = transform.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1}).Vec3()
		}
		if normal.present() {
			n := normal.at(i)
			v.Normal = linear.Mul3x1(mgl32.Vec3{n[0], n[1], n[2]})
		}
		if tangent.present() {
			t := tangent.at(i)
			dir := linear.Mul3x1(mgl32.Vec3{t[0], t[1], t[2]})
			v.Tangent = [4]float32{dir[0], dir[1], dir[2], t[3]}
		}
		if color.present() {
			c := color.at(i)
			v.Color[0] = GammaDecode(c[0])
			v.Color[1] = GammaDecode(c[1])
			v.Color[2] = GammaDecode(c[2])
			if colorComponents == 4 {
				v.Color[3] = c[3]
			}
		}
		if uv0.present() {
			copy(v.UV0[:], uv0.at(i))
		}
		if uv1.present() {
			copy(v.UV1[:], uv1.at(i))
		}
		vertices[vi] = v
	}

	return model.NewMeshBatch(vertices), nil
}

// GammaDecode raises a color channel to 1/2.2 and clamps the result to at most 1.
func GammaDecode(c float32) float32 {
	return math32.Min(math32.Pow(c, gammaExponent), 1)
}

// SequentialIndices returns 0..count-1, the implicit index list of a non-indexed primitive.
func SequentialIndices(count int) []uint16 {
	out := make([]uint16, count)
	for i := range out {
		out[i] = uint16(i)
	}
	return out
}
