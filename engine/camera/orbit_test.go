package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], 1e-5)
}

func TestDefaultOrbitLooksDownNegativeZ(t *testing.T) {
	o := NewOrbit()
	assertVec3(t, mgl32.Vec3{0, 0, 5}, o.Position())

	tr := o.Transform()
	assertVec3(t, mgl32.Vec3{0, 0, 5}, tr.Translation)
	assert.InDelta(t, 1, math.Abs(float64(tr.Rotation.W)), 1e-5)
	assertVec3(t, mgl32.Vec3{1, 1, 1}, tr.Scale)
}

func TestTransformInverseIsLookAt(t *testing.T) {
	o := NewOrbit(
		WithTarget(mgl32.Vec3{1, 2, 3}),
		WithRadius(10),
		WithAzimuth(0.7),
		WithElevation(0.3),
	)
	view := o.Transform().Matrix().Inv()
	want := mgl32.LookAtV(o.Position(), o.Target(), mgl32.Vec3{0, 1, 0})
	assert.InDeltaSlice(t, want[:], view[:], 1e-4)
}

func TestOrbitSteps(t *testing.T) {
	o := NewOrbit(WithOrbitSpeed(float32(math.Pi / 2)))
	o.OrbitRight()
	assertVec3(t, mgl32.Vec3{5, 0, 0}, o.Position())
	o.OrbitLeft()
	o.OrbitLeft()
	assertVec3(t, mgl32.Vec3{-5, 0, 0}, o.Position())
}

func TestElevationClamped(t *testing.T) {
	o := NewOrbit(WithOrbitSpeed(1))
	for i := 0; i < 5; i++ {
		o.OrbitUp()
	}
	p := o.Position()
	assert.Less(t, p[1], float32(5))
	assert.Greater(t, p[1], float32(4.99))

	for i := 0; i < 10; i++ {
		o.OrbitDown()
	}
	assert.Less(t, o.Position()[1], float32(-4.99))
}

func TestZoomClamped(t *testing.T) {
	o := NewOrbit(WithRadiusBounds(1, 8), WithZoomSpeed(1))
	o.Zoom(2)
	assert.InDelta(t, 3, o.Radius(), 1e-6)
	o.Zoom(100)
	assert.InDelta(t, 1, o.Radius(), 1e-6)
	o.Zoom(-100)
	assert.InDelta(t, 8, o.Radius(), 1e-6)
}

func TestSetTargetMovesPosition(t *testing.T) {
	o := NewOrbit()
	o.SetTarget(mgl32.Vec3{0, 1, 0})
	assertVec3(t, mgl32.Vec3{0, 1, 5}, o.Position())
}
