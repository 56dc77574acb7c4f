package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/Carmen-Shannon/oxy-gltf/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

var errForeignHandle = errors.New("handle was not created by this backend")

// wgpuBuffer is a vertex or uniform buffer. Uniform buffers carry the bind group that exposes them
// as the transforms group.
type wgpuBuffer struct {
	buffer    *wgpu.Buffer
	bindGroup *wgpu.BindGroup
	size      uint64
}

func (b *wgpuBuffer) Size() uint64 {
	return b.size
}

func (b *wgpuBuffer) Release() {
	if b.bindGroup != nil {
		b.bindGroup.Release()
		b.bindGroup = nil
	}
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}

// wgpuTexture is a sampled RGBA8 texture with its view and the bind group pairing it with the sampler.
type wgpuTexture struct {
	texture   *wgpu.Texture
	view      *wgpu.TextureView
	bindGroup *wgpu.BindGroup
	width     uint32
	height    uint32
}

func (t *wgpuTexture) Width() uint32 {
	return t.width
}

func (t *wgpuTexture) Height() uint32 {
	return t.height
}

func (t *wgpuTexture) Release() {
	if t.bindGroup != nil {
		t.bindGroup.Release()
		t.bindGroup = nil
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode

	depthTexture     *wgpu.Texture
	depthTextureView *wgpu.TextureView

	// Group 0 holds the per-draw transforms uniform, group 1 the albedo texture and its sampler.
	transformsLayout *wgpu.BindGroupLayout
	textureLayout    *wgpu.BindGroupLayout
	sampler          *wgpu.Sampler

	pipelineLayout *wgpu.PipelineLayout
	shaderModule   *wgpu.ShaderModule
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, presentMode PresentMode, forceFallbackAdapter bool) *wgpuRendererBackendImpl {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
	}
	if presentMode == PresentModeUncapped {
		b.presentMode = wgpu.PresentModeImmediate
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic(err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		panic(err)
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		panic("renderer: surface reports no supported formats")
	}
	b.surfaceFormat = capabilities.Formats[0]

	if err := b.createBindGroupLayouts(); err != nil {
		panic(err)
	}
	return b
}

// createBindGroupLayouts builds the two fixed bind group layouts and the shared albedo sampler.
func (b *wgpuRendererBackendImpl) createBindGroupLayouts() error {
	var err error
	b.transformsLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Transforms Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: model.ConstBufferSize,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to create transforms bind group layout: %w", err)
	}

	textureEntry := wgpu.BindGroupLayoutEntry{Binding: 0, Visibility: wgpu.ShaderStageFragment}
	textureEntry.Texture.SampleType = wgpu.TextureSampleTypeFloat
	textureEntry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	samplerEntry := wgpu.BindGroupLayoutEntry{Binding: 1, Visibility: wgpu.ShaderStageFragment}
	samplerEntry.Sampler.Type = wgpu.SamplerBindingTypeFiltering

	b.textureLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Albedo Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{textureEntry, samplerEntry},
	})
	if err != nil {
		return fmt.Errorf("failed to create albedo bind group layout: %w", err)
	}

	b.sampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Albedo Sampler",
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to create albedo sampler: %w", err)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) CreateVertexBuffer(label string, data []byte) (model.GPUBuffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(buf, 0, data)
	return &wgpuBuffer{buffer: buf, size: uint64(len(data))}, nil
}

func (b *wgpuRendererBackendImpl) CreateUniformBuffer(label string, data []byte) (model.GPUBuffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(buf, 0, data)

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Bind Group",
		Layout: b.transformsLayout,
		Entries: []wgpu.BindGroupEntry{{
			Binding: 0,
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		}},
	})
	if err != nil {
		buf.Release()
		return nil, err
	}
	return &wgpuBuffer{buffer: buf, bindGroup: bindGroup, size: uint64(len(data))}, nil
}

func (b *wgpuRendererBackendImpl) CreateTexture(label string, width, height uint32, pixels []byte) (GPUTexture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	size := wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&size,
	)

	out := &wgpuTexture{texture: tex, width: width, height: height}
	out.view, err = tex.CreateView(nil)
	if err != nil {
		out.Release()
		return nil, err
	}
	out.bindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Bind Group",
		Layout: b.textureLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: out.view},
			{Binding: 1, Sampler: b.sampler},
		},
	})
	if err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       width,
		Height:      height,
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTexture.Release()
		b.depthTextureView, b.depthTexture = nil, nil
	}

	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        pipeline.DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("failed to create depth texture: %w", err)
	}
	view, err := depthTexture.CreateView(nil)
	if err != nil {
		depthTexture.Release()
		return fmt.Errorf("failed to create depth texture view: %w", err)
	}
	b.depthTexture, b.depthTextureView = depthTexture, view
	return nil
}

func (b *wgpuRendererBackendImpl) BuildPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	module, err := b.device.CreateShaderModule(p.Library().Module())
	if err != nil {
		return fmt.Errorf("failed to create shader module %s: %w", p.Library().Label(), err)
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.Key(),
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.transformsLayout, b.textureLayout},
	})
	if err != nil {
		module.Release()
		return err
	}

	created, err := b.device.CreateRenderPipeline(p.Descriptor(layout, module, b.surfaceFormat))
	if err != nil {
		layout.Release()
		module.Release()
		return fmt.Errorf("failed to create render pipeline %s: %w", p.Key(), err)
	}
	p.SetRenderPipeline(created)
	b.pipelineLayout, b.shaderModule = layout, module
	return nil
}

func (b *wgpuRendererBackendImpl) BeginPass(clear common.Color) (RenderPass, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return nil, false, nil
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, false, err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return nil, false, err
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: clear.R, G: clear.G, B: clear.B, A: clear.A},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})

	return &wgpuRenderPass{
		backend: b,
		encoder: encoder,
		pass:    pass,
		surface: surfaceTexture,
		view:    view,
	}, true, nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.shaderModule != nil {
		b.shaderModule.Release()
		b.pipelineLayout.Release()
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTexture.Release()
	}
	b.sampler.Release()
	b.textureLayout.Release()
	b.transformsLayout.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}

// wgpuRenderPass records one frame into a command encoder targeting an acquired surface image.
type wgpuRenderPass struct {
	backend *wgpuRendererBackendImpl
	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder
	surface *wgpu.Texture
	view    *wgpu.TextureView
}

var _ RenderPass = &wgpuRenderPass{}

func (p *wgpuRenderPass) SetPipeline(pl pipeline.Pipeline) {
	p.pass.SetPipeline(pl.RenderPipeline())
}

func (p *wgpuRenderPass) SetUniform(buf model.GPUBuffer) error {
	b, ok := buf.(*wgpuBuffer)
	if !ok || b.bindGroup == nil {
		return fmt.Errorf("uniform buffer: %w", errForeignHandle)
	}
	p.pass.SetBindGroup(0, b.bindGroup, nil)
	return nil
}

func (p *wgpuRenderPass) SetTexture(tex GPUTexture) error {
	t, ok := tex.(*wgpuTexture)
	if !ok {
		return fmt.Errorf("texture: %w", errForeignHandle)
	}
	p.pass.SetBindGroup(1, t.bindGroup, nil)
	return nil
}

func (p *wgpuRenderPass) SetVertexBuffer(buf model.GPUBuffer) error {
	b, ok := buf.(*wgpuBuffer)
	if !ok {
		return fmt.Errorf("vertex buffer: %w", errForeignHandle)
	}
	p.pass.SetVertexBuffer(0, b.buffer, 0, wgpu.WholeSize)
	return nil
}

func (p *wgpuRenderPass) Draw(vertexCount uint32) {
	p.pass.Draw(vertexCount, 1, 0, 0)
}

// Submit finishes the pass and submits the command buffer, then presents. wgpu requires the
// submission to happen before the surface image is presented.
func (p *wgpuRenderPass) Submit() error {
	defer p.release()

	p.pass.End()
	commandBuffer, err := p.encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}
	defer commandBuffer.Release()

	p.backend.mu.Lock()
	defer p.backend.mu.Unlock()
	p.backend.queue.Submit(commandBuffer)
	p.backend.surface.Present()
	return nil
}

func (p *wgpuRenderPass) Discard() {
	p.pass.End()
	p.release()
}

func (p *wgpuRenderPass) release() {
	p.encoder.Release()
	p.view.Release()
	p.surface.Release()
}
