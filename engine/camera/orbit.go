// Package camera provides an orbit controller that places the viewer camera on a sphere around a
// target point.
package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

// Orbit is a third-person camera controller using spherical coordinates (radius, azimuth, elevation)
// relative to a target point. Its Transform is the camera transform handed to the renderer.
type Orbit interface {
	// OrbitLeft rotates the camera left around the target by one orbit speed step.
	OrbitLeft()

	// OrbitRight rotates the camera right around the target by one orbit speed step.
	OrbitRight()

	// OrbitUp tilts the camera upward by one orbit speed step, clamped to max elevation.
	OrbitUp()

	// OrbitDown tilts the camera downward by one orbit speed step, clamped to min elevation.
	OrbitDown()

	// Zoom adjusts the orbit radius. Positive delta moves closer to the target.
	//
	// Parameters:
	//   - delta: zoom amount scaled by the zoom speed
	Zoom(delta float32)

	// Radius returns the current distance from the target.
	Radius() float32

	// Position returns the camera's world-space position.
	Position() mgl32.Vec3

	// Target returns the look-at point.
	Target() mgl32.Vec3

	// SetTarget moves the pivot point and recomputes the position.
	SetTarget(target mgl32.Vec3)

	// Transform returns the camera transform: positioned on the sphere and facing the target.
	Transform() model.Transform
}

type orbitImpl struct {
	mu sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3

	radius    float32
	azimuth   float32 // around +Y
	elevation float32 // from the horizontal plane

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed float32
	zoomSpeed  float32
}

var _ Orbit = &orbitImpl{}

// NewOrbit creates an orbit controller.
// Defaults: radius 5 around the origin, no azimuth, no elevation.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - Orbit: the newly created controller
func NewOrbit(options ...OrbitBuilderOption) Orbit {
	o := &orbitImpl{
		radius:       5,
		minRadius:    0.1,
		maxRadius:    1000,
		minElevation: -float32(math.Pi/2 - 0.01),
		maxElevation: float32(math.Pi/2 - 0.01),
		orbitSpeed:   0.05,
		zoomSpeed:    0.5,
	}
	for _, opt := range options {
		opt(o)
	}
	o.radius = clamp(o.radius, o.minRadius, o.maxRadius)
	o.elevation = clamp(o.elevation, o.minElevation, o.maxElevation)
	o.updatePosition()
	return o
}

// updatePosition recomputes the camera position from spherical coordinates.
// Caller must hold the mutex.
func (o *orbitImpl) updatePosition() {
	cosElev := float32(math.Cos(float64(o.elevation)))
	sinElev := float32(math.Sin(float64(o.elevation)))
	cosAzim := float32(math.Cos(float64(o.azimuth)))
	sinAzim := float32(math.Sin(float64(o.azimuth)))

	o.position = mgl32.Vec3{
		o.target[0] + o.radius*cosElev*sinAzim,
		o.target[1] + o.radius*sinElev,
		o.target[2] + o.radius*cosElev*cosAzim,
	}
}

func (o *orbitImpl) OrbitLeft() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.azimuth -= o.orbitSpeed
	o.updatePosition()
}

func (o *orbitImpl) OrbitRight() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.azimuth += o.orbitSpeed
	o.updatePosition()
}

func (o *orbitImpl) OrbitUp() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.elevation = clamp(o.elevation+o.orbitSpeed, o.minElevation, o.maxElevation)
	o.updatePosition()
}

func (o *orbitImpl) OrbitDown() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.elevation = clamp(o.elevation-o.orbitSpeed, o.minElevation, o.maxElevation)
	o.updatePosition()
}

func (o *orbitImpl) Zoom(delta float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.radius = clamp(o.radius-delta*o.zoomSpeed, o.minRadius, o.maxRadius)
	o.updatePosition()
}

func (o *orbitImpl) Radius() float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.radius
}

func (o *orbitImpl) Position() mgl32.Vec3 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.position
}

func (o *orbitImpl) Target() mgl32.Vec3 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.target
}

func (o *orbitImpl) SetTarget(target mgl32.Vec3) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.target = target
	o.updatePosition()
}

func (o *orbitImpl) Transform() model.Transform {
	o.mu.Lock()
	defer o.mu.Unlock()

	// The camera's world matrix is the inverse of its look-at view matrix.
	world := mgl32.LookAtV(o.position, o.target, mgl32.Vec3{0, 1, 0}).Inv()
	return model.Transform{
		Translation: o.position,
		Rotation:    mgl32.Mat4ToQuat(world).Normalize(),
		Scale:       mgl32.Vec3{1, 1, 1},
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
