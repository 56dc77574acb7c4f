package loader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/engine/texture"
)

// ErrFormat is the parent of every accessor and pixel layout error, shared with the texture package.
var ErrFormat = texture.ErrFormat

// Format errors raised while decoding accessors and primitives. All of them match ErrFormat.
var (
	ErrAccessorLength           = fmt.Errorf("%w: accessor byte length mismatch", ErrFormat)
	ErrUnsupportedComponentType = fmt.Errorf("%w: unsupported accessor component type", ErrFormat)
	ErrSparseAccessor           = fmt.Errorf("%w: sparse accessors are not supported", ErrFormat)
	ErrMissingBufferView        = fmt.Errorf("%w: accessor references a missing buffer view", ErrFormat)
	ErrAttributeLength          = fmt.Errorf("%w: attribute length is not a multiple of its element size", ErrFormat)
	ErrIndexOutOfRange          = fmt.Errorf("%w: vertex index out of range", ErrFormat)
)

var (
	errUnsupportedExtension = errors.New("unsupported model file extension")
	errNoImageSource        = errors.New("image has no buffer view or URI")
)

// LoadError is returned when a model file cannot be opened, parsed or converted.
// It carries the offending path and unwraps to the cause.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load model %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
