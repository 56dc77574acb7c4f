package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gltf/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultLibrary(t *testing.T) shader.Library {
	t.Helper()
	lib, err := shader.LoadLibrary("", shader.DefaultVertexEntry, shader.DefaultFragmentEntry)
	require.NoError(t, err)
	return lib
}

func TestDefaultDescriptor(t *testing.T) {
	p := NewPipeline("model", defaultLibrary(t))
	desc := p.Descriptor(nil, nil, wgpu.TextureFormatBGRA8Unorm)

	assert.Equal(t, "model", desc.Label)
	assert.Equal(t, shader.DefaultVertexEntry, desc.Vertex.EntryPoint)
	require.Len(t, desc.Vertex.Buffers, 1)
	assert.Equal(t, uint64(72), desc.Vertex.Buffers[0].ArrayStride)

	require.NotNil(t, desc.Fragment)
	assert.Equal(t, shader.DefaultFragmentEntry, desc.Fragment.EntryPoint)
	require.Len(t, desc.Fragment.Targets, 1)
	assert.Equal(t, wgpu.TextureFormatBGRA8Unorm, desc.Fragment.Targets[0].Format)
	assert.Nil(t, desc.Fragment.Targets[0].Blend)

	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, desc.Primitive.Topology)
	assert.Equal(t, wgpu.FrontFaceCCW, desc.Primitive.FrontFace)
	assert.Equal(t, wgpu.CullModeNone, desc.Primitive.CullMode)

	require.NotNil(t, desc.DepthStencil)
	assert.Equal(t, DepthFormat, desc.DepthStencil.Format)
	assert.True(t, desc.DepthStencil.DepthWriteEnabled)
	assert.Equal(t, wgpu.CompareFunctionLess, desc.DepthStencil.DepthCompare)
	assert.Equal(t, uint32(1), desc.Multisample.Count)
}

func TestOptionsOverrideDefaults(t *testing.T) {
	blend := &wgpu.BlendState{}
	p := NewPipeline("custom", defaultLibrary(t),
		WithDepthTestEnabled(false),
		WithDepthWriteEnabled(false),
		WithCullMode(wgpu.CullModeBack),
		WithFrontFace(wgpu.FrontFaceCW),
		WithTopology(wgpu.PrimitiveTopologyLineList),
		WithBlendState(blend),
	)

	assert.Equal(t, wgpu.CompareFunctionAlways, p.DepthCompare())
	desc := p.Descriptor(nil, nil, wgpu.TextureFormatRGBA8Unorm)
	assert.False(t, desc.DepthStencil.DepthWriteEnabled)
	assert.Equal(t, wgpu.CullModeBack, desc.Primitive.CullMode)
	assert.Equal(t, wgpu.FrontFaceCW, desc.Primitive.FrontFace)
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, desc.Primitive.Topology)
	assert.Same(t, blend, desc.Fragment.Targets[0].Blend)
}

func TestReleaseWithoutGPUPipeline(t *testing.T) {
	p := NewPipeline("model", defaultLibrary(t))
	assert.Nil(t, p.RenderPipeline())
	assert.NotPanics(t, p.Release)
}
