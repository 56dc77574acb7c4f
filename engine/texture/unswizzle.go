package texture

import (
	"fmt"
	"image"
	"image/draw"
)

// SourceImage is a decoded image in one of the supported channel layouts. Pix is tightly packed
// (no row padding). 16-bit channels are stored big-endian, the convention of image.Gray16 and image.NRGBA64.
type SourceImage struct {
	Width  uint32
	Height uint32
	Format PixelFormat
	Pix    []byte
}

// Unswizzle converts src into a packed RGBA8 texture. Every output pixel starts as opaque white and
// only the channels the source provides are overwritten, so an RGB source keeps alpha at 0xFF and an
// R source keeps green, blue and alpha at 0xFF.
//
// 16-bit channels keep only their low-order byte (the second byte of each big-endian pair). This is a
// truncation, not a bit-depth reduction.
//
// Parameters:
//   - src: the source image
//
// Returns:
//   - *Texture: the converted texture with Handle unset
//   - error: ErrUnsupportedFormat for an unknown format, ErrPixelDataLength for a size mismatch
func Unswizzle(src SourceImage) (*Texture, error) {
	l, ok := src.Format.layout()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, src.Format)
	}

	out := New(src.Width, src.Height)
	bpp := l.channels * l.width
	if want := out.PixelCount() * bpp; len(src.Pix) != want {
		return nil, fmt.Errorf("%w: %s %dx%d needs %d bytes, got %d",
			ErrPixelDataLength, src.Format, src.Width, src.Height, want, len(src.Pix))
	}

	for i := range out.Data {
		px := src.Pix[i*bpp : (i+1)*bpp]
		p := uint32(opaqueWhite)
		for c := 0; c < l.channels; c++ {
			v := px[c*l.width+l.width-1]
			shift := uint(c * 8)
			p = p&^(0xFF<<shift) | uint32(v)<<shift
		}
		out.Data[i] = p
	}

	return out, nil
}

// FromImage captures a decoded image as a SourceImage. Grayscale and non-premultiplied RGBA images
// keep their native channel layout and bit depth; everything else (paletted, YCbCr, premultiplied)
// is first drawn into an NRGBA image.
//
// Parameters:
//   - img: the decoded image
//
// Returns:
//   - SourceImage: the packed source image
func FromImage(img image.Image) SourceImage {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	src := SourceImage{Width: uint32(w), Height: uint32(h)}

	switch m := img.(type) {
	case *image.Gray:
		src.Format = PixelFormatR8
		src.Pix = packRows(m.Pix, m.Stride, w, h)
	case *image.Gray16:
		src.Format = PixelFormatR16
		src.Pix = packRows(m.Pix, m.Stride, w*2, h)
	case *image.NRGBA:
		src.Format = PixelFormatRGBA8
		src.Pix = packRows(m.Pix, m.Stride, w*4, h)
	case *image.NRGBA64:
		src.Format = PixelFormatRGBA16
		src.Pix = packRows(m.Pix, m.Stride, w*8, h)
	default:
		nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
		src.Format = PixelFormatRGBA8
		src.Pix = packRows(nrgba.Pix, nrgba.Stride, w*4, h)
	}

	return src
}

// packRows copies height rows of rowBytes each out of a strided pixel buffer.
func packRows(pix []byte, stride, rowBytes, height int) []byte {
	if stride == rowBytes && len(pix) == rowBytes*height {
		out := make([]byte, len(pix))
		copy(out, pix)
		return out
	}
	out := make([]byte, 0, rowBytes*height)
	for y := 0; y < height; y++ {
		out = append(out, pix[y*stride:y*stride+rowBytes]...)
	}
	return out
}
