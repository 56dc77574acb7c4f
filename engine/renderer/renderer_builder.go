package renderer

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/loader"
	"github.com/Carmen-Shannon/oxy-gltf/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gltf/engine/renderer/shader"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithLogger sets the logger used for load failures, reloads and dropped frames.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *slog.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLoader replaces the loader used by LoadModel and ReloadModel.
func WithLoader(l loader.Loader) RendererBuilderOption {
	return func(r *renderer) {
		r.loader = l
	}
}

// WithShaderLibrary loads the WGSL library at path with the given entry points instead of the built-in
// model shader. Missing entry points make NewRenderer fail.
//
// Parameters:
//   - path: the WGSL file; "" keeps the built-in shader
//   - vertexEntry: the vertex entry point
//   - fragmentEntry: the fragment entry point
//
// Returns:
//   - RendererBuilderOption: a function that applies the shader library option to a renderer
func WithShaderLibrary(path, vertexEntry, fragmentEntry string) RendererBuilderOption {
	return func(r *renderer) {
		r.shaderPath = path
		r.vertexEntry = common.Coalesce(vertexEntry, shader.DefaultVertexEntry)
		r.fragmentEntry = common.Coalesce(fragmentEntry, shader.DefaultFragmentEntry)
	}
}

// WithLibrary uses an already loaded shader library.
func WithLibrary(lib shader.Library) RendererBuilderOption {
	return func(r *renderer) {
		r.library = lib
	}
}

// WithPipelineOptions overrides the default model pipeline state.
func WithPipelineOptions(opts ...pipeline.PipelineBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineOptions = append(r.pipelineOptions, opts...)
	}
}

// WithFramebufferSize sets the initial framebuffer size, usually the window's framebuffer size.
func WithFramebufferSize(width, height uint32) RendererBuilderOption {
	return func(r *renderer) {
		r.extent = common.Extent2D{Width: width, Height: height}
	}
}

// WithClearColor sets the color every frame is cleared to.
func WithClearColor(c common.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithTransposedMatrices transposes the per-draw matrices before upload, for shader libraries that
// read them as row-major.
//
// Parameters:
//   - transpose: true to transpose
//
// Returns:
//   - RendererBuilderOption: a function that applies the transpose option to a renderer
func WithTransposedMatrices(transpose bool) RendererBuilderOption {
	return func(r *renderer) {
		r.transpose = transpose
	}
}
