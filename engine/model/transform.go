package model

import (
	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a decomposed per-instance transform.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// IdentityTransform returns a transform with no translation, no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// NewTransform builds a Transform from plain arrays, with the rotation given as (x, y, z, w).
//
// Parameters:
//   - translation: the translation vector
//   - rotation: the rotation quaternion in (x, y, z, w) order
//   - scale: the per-axis scale
//
// Returns:
//   - Transform: the decomposed transform
func NewTransform(translation [3]float32, rotation [4]float32, scale [3]float32) Transform {
	return Transform{
		Translation: translation,
		Rotation:    mgl32.Quat{W: rotation[3], V: mgl32.Vec3{rotation[0], rotation[1], rotation[2]}},
		Scale:       scale,
	}
}

// Matrix composes the transform into a model matrix (scale, then rotation, then translation).
func (t Transform) Matrix() mgl32.Mat4 {
	return common.ComposeTRS(t.Translation, t.Rotation, t.Scale)
}

// DrawQueueEntry is one per-frame draw request: a model table index plus its instance transform.
type DrawQueueEntry struct {
	Model     int
	Transform Transform
}
