package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/Carmen-Shannon/oxy-gltf/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// ParsePresentMode maps a configuration string ("vsync" or "uncapped") to a PresentMode.
func ParsePresentMode(s string) (PresentMode, error) {
	switch s {
	case "", "vsync":
		return PresentModeVSync, nil
	case "uncapped":
		return PresentModeUncapped, nil
	default:
		return PresentModeVSync, fmt.Errorf("unknown present mode %q", s)
	}
}

// GPUTexture is a device-side RGBA8 texture together with whatever binding state the backend needs
// to sample it.
type GPUTexture interface {
	Width() uint32
	Height() uint32
	Release()
}

// RenderPass records one frame's draw commands against an acquired surface image.
// It is finished with exactly one of Submit or Discard.
type RenderPass interface {
	// SetPipeline binds the render pipeline and its depth-stencil state.
	SetPipeline(p pipeline.Pipeline)

	// SetUniform binds a buffer created by CreateUniformBuffer as the per-draw transforms.
	SetUniform(buf model.GPUBuffer) error

	// SetTexture binds a texture created by CreateTexture as the albedo texture.
	SetTexture(tex GPUTexture) error

	// SetVertexBuffer binds a buffer created by CreateVertexBuffer.
	SetVertexBuffer(buf model.GPUBuffer) error

	// Draw issues a non-indexed triangle list draw of vertexCount vertices.
	Draw(vertexCount uint32)

	// Submit ends encoding, submits the command buffer and presents the surface image.
	Submit() error

	// Discard ends encoding and drops the recorded commands without presenting.
	Discard()
}

// RendererBackend creates the GPU objects the renderer needs and records frames.
// Implementations are used from a single thread.
type RendererBackend interface {
	// CreateVertexBuffer allocates a vertex buffer sized exactly to data and copies data into it.
	//
	// Parameters:
	//   - label: a debug label
	//   - data: the serialized vertices
	//
	// Returns:
	//   - model.GPUBuffer: the buffer handle
	//   - error: an error if the buffer could not be created
	CreateVertexBuffer(label string, data []byte) (model.GPUBuffer, error)

	// CreateUniformBuffer allocates a uniform buffer holding data, ready to bind as the transforms group.
	CreateUniformBuffer(label string, data []byte) (model.GPUBuffer, error)

	// CreateTexture allocates a 2-D RGBA8 texture and copies the full pixel region in one write.
	//
	// Parameters:
	//   - label: a debug label
	//   - width: texture width in pixels
	//   - height: texture height in pixels
	//   - pixels: width*height*4 bytes of RGBA8 data
	//
	// Returns:
	//   - GPUTexture: the texture handle
	//   - error: an error if the texture could not be created
	CreateTexture(label string, width, height uint32, pixels []byte) (GPUTexture, error)

	// ConfigureSurface sizes the presentation surface and reallocates the depth buffer.
	ConfigureSurface(width, height uint32) error

	// BuildPipeline creates the GPU render pipeline for p and stores it on p.
	BuildPipeline(p pipeline.Pipeline) error

	// BeginPass acquires the next surface image and begins a render pass that clears color to clear
	// and depth to 1.0.
	//
	// Parameters:
	//   - clear: the color clear value
	//
	// Returns:
	//   - RenderPass: the pass, nil when no surface image is available
	//   - bool: false when no surface image is available, which is not an error
	//   - error: an error if encoding could not start
	BeginPass(clear common.Color) (RenderPass, bool, error)

	// Release frees every long-lived GPU object owned by the backend.
	Release()
}

// NewBackend creates a RendererBackend of the given type presenting to the given surface.
// It panics when no adapter or device is available.
//
// Parameters:
//   - backendType: the backend implementation to create
//   - surfaceDescriptor: the platform surface, usually from the window
//   - presentMode: how frames are presented
//   - forceFallbackAdapter: true to request a software adapter
//
// Returns:
//   - RendererBackend: the backend
func NewBackend(backendType RendererBackendType, surfaceDescriptor *wgpu.SurfaceDescriptor, presentMode PresentMode, forceFallbackAdapter bool) RendererBackend {
	switch backendType {
	case BackendTypeWGPU:
		return newWGPURendererBackend(surfaceDescriptor, presentMode, forceFallbackAdapter)
	default:
		panic(fmt.Sprintf("renderer: unknown backend type %d", backendType))
	}
}
