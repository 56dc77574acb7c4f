package loader

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allComponentTypes = []ComponentType{
	ComponentInt8,
	ComponentUint8,
	ComponentInt16,
	ComponentUint16,
	ComponentInt32,
	ComponentUint32,
	ComponentFloat32,
}

func TestConvertToFloat32ZeroBuffer(t *testing.T) {
	const n = 7
	for _, ct := range allComponentTypes {
		t.Run(ct.String(), func(t *testing.T) {
			out, err := ConvertToFloat32(make([]byte, n*ct.Size()), n, ct)
			require.NoError(t, err)
			assert.Len(t, out, n)
			for _, v := range out {
				assert.Zero(t, v)
			}
		})
	}
}

func TestConvertToFloat32CastsWithoutNormalizing(t *testing.T) {
	f32 := make([]byte, 4)
	binary.LittleEndian.PutUint32(f32, math.Float32bits(-2.5))

	tests := []struct {
		name string
		ct   ComponentType
		data []byte
		want float32
	}{
		{"u8 max", ComponentUint8, []byte{255}, 255},
		{"i8 negative", ComponentInt8, []byte{0xFF}, -1},
		{"u16", ComponentUint16, []byte{0x34, 0x12}, 0x1234},
		{"i16 negative", ComponentInt16, []byte{0x00, 0x80}, -32768},
		{"u32", ComponentUint32, []byte{0x01, 0x00, 0x01, 0x00}, 65537},
		{"i32 negative", ComponentInt32, []byte{0xFE, 0xFF, 0xFF, 0xFF}, -2},
		{"f32", ComponentFloat32, f32, -2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ConvertToFloat32(tt.data, 1, tt.ct)
			require.NoError(t, err)
			assert.Equal(t, []float32{tt.want}, out)
		})
	}
}

func TestConvertToFloat32LengthMismatch(t *testing.T) {
	_, err := ConvertToFloat32(make([]byte, 5), 3, ComponentUint16)
	assert.ErrorIs(t, err, ErrAccessorLength)
	assert.ErrorIs(t, err, ErrFormat)

	_, err = ConvertToFloat32(make([]byte, 4), 1, ComponentUnknown)
	assert.ErrorIs(t, err, ErrUnsupportedComponentType)
}

// Indices above the uint16 range wrap instead of failing. This is a known lossy path.
func TestNarrowIndicesTruncatesLargeIndices(t *testing.T) {
	out := NarrowIndices([]float32{0, 65535, 65536, 70000})
	assert.Equal(t, []uint16{0, 65535, 0, 4464}, out)
}

func TestComponentTypeFromGLTF(t *testing.T) {
	tests := map[gltf.ComponentType]ComponentType{
		gltf.ComponentByte:   ComponentInt8,
		gltf.ComponentUbyte:  ComponentUint8,
		gltf.ComponentShort:  ComponentInt16,
		gltf.ComponentUshort: ComponentUint16,
		gltf.ComponentUint:   ComponentUint32,
		gltf.ComponentFloat:  ComponentFloat32,
	}
	for in, want := range tests {
		got, err := componentTypeFromGLTF(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestReadAccessorHonorsStrideAndOffset(t *testing.T) {
	// Two interleaved vec2<u16> elements with 2 bytes of padding each, after a 4 byte prefix.
	data := []byte{
		0xAA, 0xAA, 0xAA, 0xAA,
		1, 0, 2, 0, 0xEE, 0xEE,
		3, 0, 4, 0, 0xEE, 0xEE,
	}
	doc := &gltf.Document{
		Buffers:     []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{{Buffer: 0, ByteOffset: 2, ByteLength: 14, ByteStride: 6}},
		Accessors: []*gltf.Accessor{{
			BufferView:    gltf.Index(0),
			ByteOffset:    2,
			ComponentType: gltf.ComponentUshort,
			Count:         2,
			Type:          gltf.AccessorVec2,
		}},
	}

	values, components, err := readAccessor(doc, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, components)
	assert.Equal(t, []float32{1, 2, 3, 4}, values)
}

func TestReadAccessorWithoutBufferViewIsZero(t *testing.T) {
	doc := &gltf.Document{
		Accessors: []*gltf.Accessor{{ComponentType: gltf.ComponentFloat, Count: 2, Type: gltf.AccessorVec3}},
	}
	values, components, err := readAccessor(doc, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, components)
	assert.Equal(t, make([]float32, 6), values)
}

func TestReadAccessorOutOfBounds(t *testing.T) {
	doc := &gltf.Document{
		Buffers:     []*gltf.Buffer{{ByteLength: 4, Data: make([]byte, 4)}},
		BufferViews: []*gltf.BufferView{{Buffer: 0, ByteLength: 4}},
		Accessors: []*gltf.Accessor{{
			BufferView:    gltf.Index(0),
			ComponentType: gltf.ComponentFloat,
			Count:         2,
			Type:          gltf.AccessorScalar,
		}},
	}
	_, _, err := readAccessor(doc, 0)
	assert.ErrorIs(t, err, ErrAccessorLength)

	_, _, err = readAccessor(doc, 3)
	assert.Error(t, err)
}

func TestReadAccessorHugeCountFailsBeforeAllocating(t *testing.T) {
	doc := &gltf.Document{
		Buffers:     []*gltf.Buffer{{ByteLength: 12, Data: make([]byte, 12)}},
		BufferViews: []*gltf.BufferView{{Buffer: 0, ByteLength: 12}},
		Accessors: []*gltf.Accessor{
			{
				BufferView:    gltf.Index(0),
				ComponentType: gltf.ComponentFloat,
				Count:         math.MaxInt32,
				Type:          gltf.AccessorVec3,
			},
			{
				BufferView:    gltf.Index(0),
				ComponentType: gltf.ComponentFloat,
				Count:         1 << 20,
				Type:          gltf.AccessorVec3,
			},
			{
				ComponentType: gltf.ComponentFloat,
				Count:         math.MaxInt32,
				Type:          gltf.AccessorMat4,
			},
		},
	}
	for i := range doc.Accessors {
		_, _, err := readAccessor(doc, i)
		assert.ErrorIs(t, err, ErrAccessorLength, "accessor %d", i)
	}
}
