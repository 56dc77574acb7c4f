package common

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultFovY is the vertical field of view used by the viewer's projection, in radians.
	DefaultFovY = float32(math.Pi / 4)

	// DefaultNear is the near clip plane distance.
	DefaultNear = float32(0.1)

	// DefaultFar is the far clip plane distance.
	DefaultFar = float32(1000)

	// DefaultAspect is used whenever the framebuffer has no height to divide by.
	DefaultAspect = float32(16.0 / 9.0)

	// Mat4Size is the serialized size of a 4x4 float32 matrix in bytes.
	Mat4Size = 64
)

// ComposeTRS builds a local transform matrix from decomposed translation, rotation and scale.
// Scale is applied first, then rotation, then translation (M = T * R * S).
//
// Parameters:
//   - translation: the translation vector
//   - rotation: the rotation quaternion
//   - scale: the per-axis scale
//
// Returns:
//   - mgl32.Mat4: the composed column-major matrix
func ComposeTRS(translation mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(translation.X(), translation.Y(), translation.Z())
	r := rotation.Normalize().Mat4()
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(r).Mul4(s)
}

// LinearPart returns the upper-left 3x3 block of m, i.e. its rotation and scale without translation.
func LinearPart(m mgl32.Mat4) mgl32.Mat3 {
	return m.Mat3()
}

// AspectRatio returns width/height, or DefaultAspect when height is zero.
func AspectRatio(width, height uint32) float32 {
	if height == 0 {
		return DefaultAspect
	}
	return float32(width) / float32(height)
}

// Perspective creates the right-handed perspective projection used by the viewer.
// Depth is mapped to the [0, 1] clip range WebGPU expects, which mgl32.Perspective
// (an OpenGL [-1, 1] projection) does not do.
//
// Parameters:
//   - aspect: viewport aspect ratio (width/height)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Perspective(aspect float32) mgl32.Mat4 {
	f := float32(1 / math.Tan(float64(DefaultFovY)/2))
	r := DefaultFar / (DefaultNear - DefaultFar)
	return mgl32.Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, r, -1,
		0, 0, r * DefaultNear, 0,
	}
}

// PutMat4 writes m into dst as 16 little-endian float32 values in column-major order.
// dst must be at least Mat4Size bytes long.
//
// Parameters:
//   - dst: destination byte slice
//   - m: the matrix to serialize
func PutMat4(dst []byte, m mgl32.Mat4) {
	_ = dst[Mat4Size-1]
	for i, v := range m {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}
