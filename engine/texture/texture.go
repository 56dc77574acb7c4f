// Package texture converts decoded images of any supported channel layout into the renderer's
// canonical packed RGBA8 form.
package texture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
)

var (
	// ErrFormat is the parent of every pixel and accessor layout error raised during import.
	ErrFormat = errors.New("format error")

	// ErrUnsupportedFormat is returned for a source layout outside the supported channel/bit-depth set.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported pixel format", ErrFormat)

	// ErrPixelDataLength is returned when a source image's byte length does not match its dimensions.
	ErrPixelDataLength = fmt.Errorf("%w: pixel data length mismatch", ErrFormat)
)

// HandleUnset marks a texture that has not been uploaded yet.
const HandleUnset = -1

// opaqueWhite is the starting value of every packed pixel before any source channel is written.
const opaqueWhite = 0xFFFFFFFF

// Texture is a packed RGBA8 image. Each uint32 holds one pixel with red in the lowest byte,
// so the little-endian byte order of Data is R, G, B, A.
type Texture struct {
	Width  uint32
	Height uint32
	Data   []uint32

	// Handle is the renderer's texture catalog index once uploaded, HandleUnset before.
	Handle int
}

// New returns a texture of the given size with every pixel set to opaque white.
//
// Parameters:
//   - width: width in pixels
//   - height: height in pixels
//
// Returns:
//   - *Texture: the new texture
func New(width, height uint32) *Texture {
	data := make([]uint32, int(width)*int(height))
	for i := range data {
		data[i] = opaqueWhite
	}
	return &Texture{
		Width:  width,
		Height: height,
		Data:   data,
		Handle: HandleUnset,
	}
}

// White returns the 1x1 opaque-white texture used when a draw has no albedo texture.
func White() *Texture {
	return New(1, 1)
}

// PixelCount returns Width*Height.
func (t *Texture) PixelCount() int {
	return int(t.Width) * int(t.Height)
}

// Valid reports whether Data holds exactly one value per pixel.
func (t *Texture) Valid() bool {
	return len(t.Data) == t.PixelCount()
}

// Pixel returns the (r, g, b, a) bytes of the pixel at index i.
func (t *Texture) Pixel(i int) (r, g, b, a uint8) {
	p := t.Data[i]
	return uint8(p), uint8(p >> 8), uint8(p >> 16), uint8(p >> 24)
}

// Bytes serializes the pixels as tightly packed RGBA8 rows, the layout the GPU upload expects.
//
// Returns:
//   - []byte: 4 bytes per pixel
func (t *Texture) Bytes() []byte {
	buf := make([]byte, len(t.Data)*4)
	for i, p := range t.Data {
		binary.LittleEndian.PutUint32(buf[i*4:], p)
	}
	return buf
}

// Image returns the texture as a non-premultiplied RGBA image sharing no memory with t.
func (t *Texture) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, int(t.Width), int(t.Height)))
	copy(img.Pix, t.Bytes())
	return img
}
