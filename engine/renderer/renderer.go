// Package renderer owns the GPU-side resources of imported models and drives the per-frame draw queue.
//
// The renderer is single threaded: uploads, model loads and reloads must happen between frames on the
// thread that calls BeginFrame/Draw/EndFrame. No lock guards the model or texture tables.
package renderer

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/loader"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/Carmen-Shannon/oxy-gltf/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-gltf/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gltf/engine/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// ModelID is a model's index in the renderer's model table.
type ModelID int

// InvalidModel is returned by LoadModel when a model could not be loaded.
const InvalidModel ModelID = -1

type renderer struct {
	backend  RendererBackend
	pipeline pipeline.Pipeline
	loader   loader.Loader
	logger   *slog.Logger

	models         []*model.Model
	textures       []GPUTexture
	defaultTexture int

	queue        []model.DrawQueueEntry
	constBuffers []model.GPUBuffer
	state        FrameState
	stats        FrameStats

	camera     model.Transform
	view       mgl32.Mat4
	projection mgl32.Mat4
	extent     common.Extent2D
	clearColor common.Color
	transpose  bool

	library         shader.Library
	shaderPath      string
	vertexEntry     string
	fragmentEntry   string
	pipelineOptions []pipeline.PipelineBuilderOption
}

// Renderer uploads model and texture data to the GPU and renders queued model instances once per frame.
type Renderer interface {
	loader.TextureUploader

	// UploadVertexBatch copies a batch into a vertex buffer sized exactly to it and binds the buffer to
	// the batch. A batch that is already bound, or has no vertices, is left untouched.
	//
	// Parameters:
	//   - batch: the batch to upload
	//
	// Returns:
	//   - error: an error if the buffer could not be created
	UploadVertexBatch(batch *model.MeshBatch) error

	// ResizeFramebuffer resizes the presentation surface and reallocates the depth buffer.
	// Dimensions are clamped to at least 1x1. The projection is recomputed for the new aspect ratio.
	//
	// Parameters:
	//   - width: framebuffer width in pixels
	//   - height: framebuffer height in pixels
	//
	// Returns:
	//   - error: ErrResizeDuringFrame while a frame is being built, or a backend error
	ResizeFramebuffer(width, height uint32) error

	// LoadModel imports a glTF file, uploads its batches and adds it to the model table.
	// A failure is logged with the path and reported as false.
	//
	// Parameters:
	//   - path: path to a .gltf or .glb file
	//
	// Returns:
	//   - ModelID: the model's handle, InvalidModel on failure
	//   - bool: true if the model was loaded
	LoadModel(path string) (ModelID, bool)

	// AddModel uploads every batch of an already imported model and adds it to the model table.
	AddModel(m *model.Model) (ModelID, error)

	// ReloadModel imports the model's file again and replaces the model in place, keeping its ModelID.
	// On failure the previous model stays in place.
	//
	// Returns:
	//   - error: ErrUnknownModel, ErrFrameInProgress, or the import error
	ReloadModel(id ModelID) error

	// Model returns the model stored under id.
	Model(id ModelID) (*model.Model, bool)

	// ModelCount returns the number of models in the table.
	ModelCount() int

	// UpdateCamera places the camera. The view matrix becomes the inverse of the camera transform.
	UpdateCamera(t model.Transform)

	// BeginFrame clears the draw queue and releases the previous frame's transform buffers.
	//
	// Returns:
	//   - error: ErrFrameInProgress if a frame is already being built
	BeginFrame() error

	// Draw queues one instance of a model. No GPU work happens until EndFrame.
	//
	// Parameters:
	//   - id: the model to draw
	//   - t: the instance transform
	//
	// Returns:
	//   - error: ErrFrameNotBuilding outside a frame, ErrUnknownModel for an invalid id
	Draw(id ModelID, t model.Transform) error

	// EndFrame records the queued draws in insertion order, submits them and presents the frame.
	// When no surface image is available the frame is dropped without error.
	//
	// Returns:
	//   - error: ErrFrameNotBuilding outside a frame, or a backend error
	EndFrame() error

	// State returns the current frame state.
	State() FrameState

	// Extent returns the current framebuffer size.
	Extent() common.Extent2D

	// Stats returns the cumulative frame counters.
	Stats() FrameStats

	// Release frees every GPU resource owned by the renderer and its backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer on top of backend. It loads the shader library, builds the pipeline,
// sizes the framebuffer and uploads the default white texture as texture index 0.
//
// Parameters:
//   - backend: the GPU backend
//   - options: functional options applied to the renderer
//
// Returns:
//   - Renderer: the ready renderer
//   - error: a shader library, pipeline or upload error
func NewRenderer(backend RendererBackend, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		backend:        backend,
		logger:         slog.Default(),
		defaultTexture: texture.HandleUnset,
		camera:         model.IdentityTransform(),
		view:           mgl32.Ident4(),
		clearColor:     common.DefaultClearColor,
		vertexEntry:    shader.DefaultVertexEntry,
		fragmentEntry:  shader.DefaultFragmentEntry,
	}
	for _, opt := range options {
		opt(r)
	}
	if r.loader == nil {
		r.loader = loader.NewLoader(loader.WithLogger(r.logger))
	}

	if r.library == nil {
		lib, err := shader.LoadLibrary(r.shaderPath, r.vertexEntry, r.fragmentEntry)
		if err != nil {
			return nil, fmt.Errorf("failed to load shader library: %w", err)
		}
		r.library = lib
	}
	if stride := r.library.VertexLayout().ArrayStride; stride != model.VertexStride {
		return nil, fmt.Errorf("%s: %w: stride %d, want %d", r.library.Label(), ErrVertexLayoutMismatch, stride, model.VertexStride)
	}

	r.pipeline = pipeline.NewPipeline("Model Pipeline", r.library, r.pipelineOptions...)
	if err := backend.BuildPipeline(r.pipeline); err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}

	if err := r.ResizeFramebuffer(r.extent.Width, r.extent.Height); err != nil {
		return nil, err
	}

	white := texture.White()
	if _, err := r.UploadTexture(white); err != nil {
		return nil, fmt.Errorf("failed to upload default texture: %w", err)
	}
	r.defaultTexture = white.Handle

	return r, nil
}

func (r *renderer) UploadVertexBatch(batch *model.MeshBatch) error {
	if batch.Uploaded() || batch.VertexCount() == 0 {
		return nil
	}
	buf, err := r.backend.CreateVertexBuffer("Mesh Batch Vertex Buffer", batch.Marshal())
	if err != nil {
		return fmt.Errorf("failed to create vertex buffer: %w", err)
	}
	return batch.Bind(buf)
}

func (r *renderer) UploadTexture(tex *texture.Texture) (int, error) {
	if !tex.Valid() {
		return texture.HandleUnset, fmt.Errorf("%w: %dx%d with %d pixels", ErrInvalidTexture, tex.Width, tex.Height, len(tex.Data))
	}
	gpuTex, err := r.backend.CreateTexture(fmt.Sprintf("Texture %d", len(r.textures)), tex.Width, tex.Height, tex.Bytes())
	if err != nil {
		return texture.HandleUnset, fmt.Errorf("failed to create texture: %w", err)
	}
	r.textures = append(r.textures, gpuTex)
	tex.Handle = len(r.textures) - 1
	return tex.Handle, nil
}

func (r *renderer) ResizeFramebuffer(width, height uint32) error {
	if r.state != FrameIdle {
		return ErrResizeDuringFrame
	}
	extent := common.Extent2D{Width: width, Height: height}.ClampMin(1)
	if err := r.backend.ConfigureSurface(extent.Width, extent.Height); err != nil {
		return fmt.Errorf("failed to configure surface: %w", err)
	}
	r.extent = extent
	r.projection = common.Perspective(common.AspectRatio(width, height))
	return nil
}

func (r *renderer) LoadModel(path string) (ModelID, bool) {
	m, err := r.loader.Load(path, r)
	if err != nil {
		r.logger.Error("failed to load model", "path", path, "error", err)
		return InvalidModel, false
	}
	id, err := r.AddModel(m)
	if err != nil {
		r.logger.Error("failed to upload model", "path", path, "error", err)
		return InvalidModel, false
	}
	r.logger.Info("model loaded", "path", path, "id", int(id), "batches", len(m.Batches), "vertices", m.VertexCount())
	return id, true
}

func (r *renderer) AddModel(m *model.Model) (ModelID, error) {
	if err := r.uploadModel(m); err != nil {
		return InvalidModel, err
	}
	r.models = append(r.models, m)
	return ModelID(len(r.models) - 1), nil
}

func (r *renderer) ReloadModel(id ModelID) error {
	if r.state != FrameIdle {
		return ErrFrameInProgress
	}
	old, ok := r.Model(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownModel, id)
	}

	m, err := r.loader.Load(old.Path, r)
	if err != nil {
		return err
	}
	if err := r.uploadModel(m); err != nil {
		return &loader.LoadError{Path: old.Path, Err: err}
	}
	old.Release()
	r.models[id] = m
	r.logger.Info("model reloaded", "path", m.Path, "id", int(id), "vertices", m.VertexCount())
	return nil
}

// uploadModel uploads every batch of m, releasing the ones already uploaded if any upload fails.
func (r *renderer) uploadModel(m *model.Model) error {
	for _, key := range m.Keys() {
		if err := r.UploadVertexBatch(m.Batches[key]); err != nil {
			m.Release()
			return fmt.Errorf("batch %q: %w", key, err)
		}
	}
	return nil
}

func (r *renderer) Model(id ModelID) (*model.Model, bool) {
	if id < 0 || int(id) >= len(r.models) {
		return nil, false
	}
	return r.models[id], true
}

func (r *renderer) ModelCount() int {
	return len(r.models)
}

func (r *renderer) UpdateCamera(t model.Transform) {
	r.camera = t
	r.view = t.Matrix().Inv()
}

func (r *renderer) BeginFrame() error {
	if r.state != FrameIdle {
		return ErrFrameInProgress
	}
	r.queue = r.queue[:0]
	for _, buf := range r.constBuffers {
		buf.Release()
	}
	r.constBuffers = r.constBuffers[:0]
	r.state = FrameBuilding
	return nil
}

func (r *renderer) Draw(id ModelID, t model.Transform) error {
	if r.state != FrameBuilding {
		return ErrFrameNotBuilding
	}
	if _, ok := r.Model(id); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownModel, id)
	}
	r.queue = append(r.queue, model.DrawQueueEntry{Model: int(id), Transform: t})
	return nil
}

func (r *renderer) EndFrame() error {
	if r.state != FrameBuilding {
		return ErrFrameNotBuilding
	}
	r.state = FramePresenting
	defer func() { r.state = FrameIdle }()

	pass, ok, err := r.backend.BeginPass(r.clearColor)
	if err != nil {
		return fmt.Errorf("failed to begin render pass: %w", err)
	}
	if !ok {
		r.stats.Dropped++
		r.logger.Debug("frame dropped, no surface image available", "queued", len(r.queue))
		return nil
	}

	pass.SetPipeline(r.pipeline)
	draws, err := r.recordQueue(pass)
	if err != nil {
		pass.Discard()
		return err
	}
	if err := pass.Submit(); err != nil {
		return err
	}

	r.stats.Presented++
	r.stats.DrawCalls += uint64(draws)
	r.stats.LastDrawCalls = draws
	return nil
}

// recordQueue records every queued entry in insertion order. Each entry draws all batches of its model
// in sorted material-key order, each with a freshly allocated transform buffer.
func (r *renderer) recordQueue(pass RenderPass) (int, error) {
	draws := 0
	for _, entry := range r.queue {
		m := r.models[entry.Model]
		modelMatrix := entry.Transform.Matrix()

		for _, key := range m.Keys() {
			batch := m.Batches[key]
			if !batch.Uploaded() {
				continue
			}

			cb := model.ConstBuffer{Model: modelMatrix, View: r.view, Projection: r.projection}
			uniform, err := r.backend.CreateUniformBuffer("Transforms", cb.Marshal(r.transpose))
			if err != nil {
				return draws, fmt.Errorf("failed to create transform buffer: %w", err)
			}
			r.constBuffers = append(r.constBuffers, uniform)

			if err := pass.SetUniform(uniform); err != nil {
				return draws, err
			}
			if err := pass.SetTexture(r.albedo(m, key)); err != nil {
				return draws, err
			}
			if err := pass.SetVertexBuffer(batch.Buffer()); err != nil {
				return draws, err
			}
			pass.Draw(uint32(batch.VertexCount()))
			draws++
		}
	}
	return draws, nil
}

// albedo resolves the texture for the batch keyed by key, falling back to the default white texture.
func (r *renderer) albedo(m *model.Model, key string) GPUTexture {
	idx := m.Materials.AlbedoOr(key, r.defaultTexture)
	if idx < 0 || idx >= len(r.textures) {
		idx = r.defaultTexture
	}
	return r.textures[idx]
}

func (r *renderer) State() FrameState {
	return r.state
}

func (r *renderer) Extent() common.Extent2D {
	return r.extent
}

func (r *renderer) Stats() FrameStats {
	return r.stats
}

func (r *renderer) Release() {
	for _, buf := range r.constBuffers {
		buf.Release()
	}
	r.constBuffers = nil
	for _, m := range r.models {
		m.Release()
	}
	r.models = nil
	for _, tex := range r.textures {
		tex.Release()
	}
	r.textures = nil
	r.pipeline.Release()
	r.backend.Release()
}
