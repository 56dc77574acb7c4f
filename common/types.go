// Package common contains small value types and helpers shared by the importer, renderer and viewer.
// They are plain structs, not interface-wrapped.
package common

// Extent2D is a width/height pair in pixels.
type Extent2D struct {
	Width  uint32
	Height uint32
}

// ClampMin returns a copy of e with each dimension raised to at least min.
//
// Parameters:
//   - min: the smallest allowed value for either dimension
//
// Returns:
//   - Extent2D: the clamped extent
func (e Extent2D) ClampMin(min uint32) Extent2D {
	return Extent2D{
		Width:  max(e.Width, min),
		Height: max(e.Height, min),
	}
}

// Color is a linear RGBA color with float64 channels, matching the precision wgpu uses for clear values.
type Color struct {
	R, G, B, A float64
}

// DefaultClearColor is the background the renderer clears to when none is configured.
var DefaultClearColor = Color{R: 0.1, G: 0.1, B: 0.2, A: 1.0}
