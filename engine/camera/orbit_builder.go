package camera

import "github.com/go-gl/mathgl/mgl32"

// OrbitBuilderOption is a functional option for configuring an Orbit controller.
type OrbitBuilderOption func(*orbitImpl)

// WithRadius sets the initial distance from the target.
//
// Parameters:
//   - radius: initial orbit radius, clamped to the radius bounds
//
// Returns:
//   - OrbitBuilderOption: option function to apply
func WithRadius(radius float32) OrbitBuilderOption {
	return func(o *orbitImpl) {
		o.radius = radius
	}
}

// WithAzimuth sets the initial horizontal angle in radians.
func WithAzimuth(azimuth float32) OrbitBuilderOption {
	return func(o *orbitImpl) {
		o.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle in radians.
func WithElevation(elevation float32) OrbitBuilderOption {
	return func(o *orbitImpl) {
		o.elevation = elevation
	}
}

// WithTarget sets the look-at point.
func WithTarget(target mgl32.Vec3) OrbitBuilderOption {
	return func(o *orbitImpl) {
		o.target = target
	}
}

// WithRadiusBounds sets the zoom limits.
//
// Parameters:
//   - min: closest allowed distance
//   - max: farthest allowed distance
//
// Returns:
//   - OrbitBuilderOption: option function to apply
func WithRadiusBounds(min, max float32) OrbitBuilderOption {
	return func(o *orbitImpl) {
		o.minRadius = min
		o.maxRadius = max
	}
}

// WithOrbitSpeed sets the angle, in radians, of one orbit step.
func WithOrbitSpeed(speed float32) OrbitBuilderOption {
	return func(o *orbitImpl) {
		o.orbitSpeed = speed
	}
}

// WithZoomSpeed sets the radius change per unit of zoom delta.
func WithZoomSpeed(speed float32) OrbitBuilderOption {
	return func(o *orbitImpl) {
		o.zoomSpeed = speed
	}
}
