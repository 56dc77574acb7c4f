package loader

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/qmuntal/gltf"
)

// ComponentType is the closed set of scalar encodings an accessor may declare.
type ComponentType int

const (
	// ComponentUnknown is the zero value and never decodes.
	ComponentUnknown ComponentType = iota
	ComponentInt8
	ComponentUint8
	ComponentInt16
	ComponentUint16
	ComponentInt32
	ComponentUint32
	ComponentFloat32
)

// Size returns the encoded size of one scalar in bytes, or 0 for ComponentUnknown.
func (c ComponentType) Size() int {
	switch c {
	case ComponentInt8, ComponentUint8:
		return 1
	case ComponentInt16, ComponentUint16:
		return 2
	case ComponentInt32, ComponentUint32, ComponentFloat32:
		return 4
	case ComponentUnknown:
	}
	return 0
}

func (c ComponentType) String() string {
	switch c {
	case ComponentInt8:
		return "i8"
	case ComponentUint8:
		return "u8"
	case ComponentInt16:
		return "i16"
	case ComponentUint16:
		return "u16"
	case ComponentInt32:
		return "i32"
	case ComponentUint32:
		return "u32"
	case ComponentFloat32:
		return "f32"
	case ComponentUnknown:
	}
	return fmt.Sprintf("ComponentType(%d)", int(c))
}

// componentTypeFromGLTF maps a glTF accessor component type onto ComponentType.
func componentTypeFromGLTF(ct gltf.ComponentType) (ComponentType, error) {
	switch ct {
	case gltf.ComponentByte:
		return ComponentInt8, nil
	case gltf.ComponentUbyte:
		return ComponentUint8, nil
	case gltf.ComponentShort:
		return ComponentInt16, nil
	case gltf.ComponentUshort:
		return ComponentUint16, nil
	case gltf.ComponentUint:
		return ComponentUint32, nil
	case gltf.ComponentFloat:
		return ComponentFloat32, nil
	}
	return ComponentUnknown, fmt.Errorf("%w: %v", ErrUnsupportedComponentType, ct)
}

// ConvertToFloat32 decodes count little-endian scalars of type ct from data into float32 values.
// Integers are cast, not normalized: a u8 of 255 becomes 255.0.
//
// Parameters:
//   - data: the packed source bytes
//   - count: the number of scalars to decode
//   - ct: the encoding of each scalar
//
// Returns:
//   - []float32: exactly count values
//   - error: ErrUnsupportedComponentType for ComponentUnknown, ErrAccessorLength if len(data) != count*ct.Size()
func ConvertToFloat32(data []byte, count int, ct ComponentType) ([]float32, error) {
	size := ct.Size()
	if size == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedComponentType, ct)
	}
	if count < 0 || len(data) != count*size {
		return nil, fmt.Errorf("%w: %d x %s needs %d bytes, got %d", ErrAccessorLength, count, ct, count*size, len(data))
	}

	out := make([]float32, count)
	for i := range out {
		b := data[i*size : (i+1)*size]
		switch ct {
		case ComponentInt8:
			out[i] = float32(int8(b[0]))
		case ComponentUint8:
			out[i] = float32(b[0])
		case ComponentInt16:
			out[i] = float32(int16(binary.LittleEndian.Uint16(b)))
		case ComponentUint16:
			out[i] = float32(binary.LittleEndian.Uint16(b))
		case ComponentInt32:
			out[i] = float32(int32(binary.LittleEndian.Uint32(b)))
		case ComponentUint32:
			out[i] = float32(binary.LittleEndian.Uint32(b))
		case ComponentFloat32:
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b))
		case ComponentUnknown:
		}
	}
	return out, nil
}

// NarrowIndices converts decoded index values to uint16. Values above 65535 wrap silently
// (70000 becomes 4464); meshes with more than 65536 addressable vertices are not supported.
//
// Parameters:
//   - values: decoded index values
//
// Returns:
//   - []uint16: the narrowed indices
func NarrowIndices(values []float32) []uint16 {
	out := make([]uint16, len(values))
	for i, v := range values {
		out[i] = uint16(uint32(v))
	}
	return out
}

// accessorComponents returns the number of scalars per element for a glTF accessor type.
func accessorComponents(t gltf.AccessorType) int {
	switch t {
	case gltf.AccessorScalar:
		return 1
	case gltf.AccessorVec2:
		return 2
	case gltf.AccessorVec3:
		return 3
	case gltf.AccessorVec4:
		return 4
	case gltf.AccessorMat2:
		return 4
	case gltf.AccessorMat3:
		return 9
	case gltf.AccessorMat4:
		return 16
	}
	return 0
}

// maxAccessorBytes caps the packed size of one accessor, so a corrupt count fails before allocating.
const maxAccessorBytes = 1 << 28

// readAccessor packs an accessor's elements (honoring byte offsets and stride) and decodes them to float32.
// An accessor without a buffer view decodes to zeros.
//
// Parameters:
//   - doc: the glTF document with resolved buffers
//   - index: the accessor index
//
// Returns:
//   - []float32: Count*components values
//   - int: the number of scalars per element
//   - error: an error if the accessor is out of range, sparse, or its data is out of bounds
func readAccessor(doc *gltf.Document, index int) ([]float32, int, error) {
	if index < 0 || index >= len(doc.Accessors) {
		return nil, 0, fmt.Errorf("accessor index %d out of range", index)
	}
	acc := doc.Accessors[index]
	if acc.Sparse != nil {
		return nil, 0, fmt.Errorf("accessor %d: %w", index, ErrSparseAccessor)
	}

	ct, err := componentTypeFromGLTF(acc.ComponentType)
	if err != nil {
		return nil, 0, fmt.Errorf("accessor %d: %w", index, err)
	}
	components := accessorComponents(acc.Type)
	if components == 0 {
		return nil, 0, fmt.Errorf("accessor %d: %w: type %v", index, ErrUnsupportedComponentType, acc.Type)
	}
	elementSize := ct.Size() * components
	if acc.Count < 0 {
		return nil, 0, fmt.Errorf("accessor %d: %w: negative count %d", index, ErrAccessorLength, acc.Count)
	}
	total := int64(acc.Count) * int64(elementSize)
	if total > maxAccessorBytes {
		return nil, 0, fmt.Errorf("accessor %d: %w: %d bytes exceeds the %d byte limit", index, ErrAccessorLength, total, int64(maxAccessorBytes))
	}

	var (
		data   []byte
		base   int64
		stride = int64(elementSize)
	)
	if acc.BufferView != nil {
		if *acc.BufferView < 0 || *acc.BufferView >= len(doc.BufferViews) {
			return nil, 0, fmt.Errorf("accessor %d: %w", index, ErrMissingBufferView)
		}
		bv := doc.BufferViews[*acc.BufferView]
		if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
			return nil, 0, fmt.Errorf("accessor %d: buffer %d out of range", index, bv.Buffer)
		}
		data = doc.Buffers[bv.Buffer].Data

		if bv.ByteStride > 0 {
			stride = int64(bv.ByteStride)
		}
		base = int64(bv.ByteOffset) + int64(acc.ByteOffset)
		if acc.Count > 0 {
			if end := base + int64(acc.Count-1)*stride + int64(elementSize); end > int64(len(data)) {
				return nil, 0, fmt.Errorf("accessor %d: %w: needs %d bytes, buffer has %d", index, ErrAccessorLength, end, len(data))
			}
		}
	}

	packed := make([]byte, total)
	if data != nil {
		for i := 0; i < acc.Count; i++ {
			src := int(base + int64(i)*stride)
			copy(packed[i*elementSize:(i+1)*elementSize], data[src:src+elementSize])
		}
	}

	values, err := ConvertToFloat32(packed, acc.Count*components, ct)
	if err != nil {
		return nil, 0, fmt.Errorf("accessor %d: %w", index, err)
	}
	return values, components, nil
}
