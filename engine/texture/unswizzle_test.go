package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnswizzleRGBRed(t *testing.T) {
	src := SourceImage{
		Width:  2,
		Height: 2,
		Format: PixelFormatRGB8,
		Pix:    bytes.Repeat([]byte{255, 0, 0}, 4),
	}

	tex, err := Unswizzle(src)
	require.NoError(t, err)
	require.Len(t, tex.Data, 4)
	assert.True(t, tex.Valid())
	assert.Equal(t, HandleUnset, tex.Handle)

	for i := range tex.Data {
		r, g, b, a := tex.Pixel(i)
		assert.Equal(t, [4]uint8{255, 0, 0, 255}, [4]uint8{r, g, b, a}, "pixel %d", i)
	}
	assert.Equal(t, []byte{255, 0, 0, 255}, tex.Bytes()[:4])
}

func TestUnswizzleChannelDefaults(t *testing.T) {
	tests := []struct {
		name   string
		format PixelFormat
		pix    []byte
		want   [4]uint8
	}{
		{"R8 keeps green blue alpha white", PixelFormatR8, []byte{7}, [4]uint8{7, 255, 255, 255}},
		{"RG8", PixelFormatRG8, []byte{7, 9}, [4]uint8{7, 9, 255, 255}},
		{"RGBA8 copies alpha", PixelFormatRGBA8, []byte{1, 2, 3, 4}, [4]uint8{1, 2, 3, 4}},
		{"R16 keeps low byte", PixelFormatR16, []byte{0xAB, 0x12}, [4]uint8{0x12, 255, 255, 255}},
		{"RG16", PixelFormatRG16, []byte{0x01, 0x02, 0x03, 0x04}, [4]uint8{0x02, 0x04, 255, 255}},
		{"RGB16", PixelFormatRGB16, []byte{0, 10, 0, 20, 0, 30}, [4]uint8{10, 20, 30, 255}},
		{"RGBA16", PixelFormatRGBA16, []byte{9, 1, 9, 2, 9, 3, 9, 4}, [4]uint8{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex, err := Unswizzle(SourceImage{Width: 1, Height: 1, Format: tt.format, Pix: tt.pix})
			require.NoError(t, err)
			r, g, b, a := tex.Pixel(0)
			assert.Equal(t, tt.want, [4]uint8{r, g, b, a})
		})
	}
}

// 16-bit channels lose their high byte; 0x0100 and 0x0000 become indistinguishable.
func TestUnswizzle16BitTruncationIsLossy(t *testing.T) {
	tex, err := Unswizzle(SourceImage{
		Width:  2,
		Height: 1,
		Format: PixelFormatR16,
		Pix:    []byte{0x01, 0x00, 0x00, 0x00},
	})
	require.NoError(t, err)
	r0, _, _, _ := tex.Pixel(0)
	r1, _, _, _ := tex.Pixel(1)
	assert.Equal(t, r0, r1)
}

func TestUnswizzleErrors(t *testing.T) {
	_, err := Unswizzle(SourceImage{Width: 1, Height: 1, Format: PixelFormatUnknown, Pix: []byte{0}})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.ErrorIs(t, err, ErrFormat)

	_, err = Unswizzle(SourceImage{Width: 2, Height: 2, Format: PixelFormatRGB8, Pix: make([]byte, 11)})
	assert.ErrorIs(t, err, ErrPixelDataLength)

	_, err = PixelFormatFor(5, 8)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = PixelFormatFor(3, 32)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestPixelFormatFor(t *testing.T) {
	f, err := PixelFormatFor(3, 16)
	require.NoError(t, err)
	assert.Equal(t, PixelFormatRGB16, f)
	assert.Equal(t, 3, f.Channels())
	assert.Equal(t, 6, f.BytesPerPixel())
	assert.Equal(t, "RGB16", f.String())
	assert.Equal(t, 0, PixelFormatUnknown.BytesPerPixel())
}

func TestFromImageKeepsNativeLayout(t *testing.T) {
	gray := image.NewGray16(image.Rect(0, 0, 2, 1))
	gray.SetGray16(0, 0, color.Gray16{Y: 0x1234})
	gray.SetGray16(1, 0, color.Gray16{Y: 0xFF00})

	src := FromImage(gray)
	assert.Equal(t, PixelFormatR16, src.Format)
	assert.Equal(t, []byte{0x12, 0x34, 0xFF, 0x00}, src.Pix)

	tex, err := Unswizzle(src)
	require.NoError(t, err)
	r, g, _, _ := tex.Pixel(0)
	assert.Equal(t, uint8(0x34), r)
	assert.Equal(t, uint8(0xFF), g)
}

func TestFromImageStridedSubImage(t *testing.T) {
	full := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	full.Set(2, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	sub := full.SubImage(image.Rect(2, 2, 4, 4))

	src := FromImage(sub)
	assert.Equal(t, uint32(2), src.Width)
	assert.Len(t, src.Pix, 2*2*4)
	assert.Equal(t, []byte{10, 20, 30, 40}, src.Pix[:4])
}

func TestFromImageFallsBackToNRGBA(t *testing.T) {
	pal := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.NRGBA{R: 200, G: 100, B: 50, A: 255}})
	src := FromImage(pal)
	assert.Equal(t, PixelFormatRGBA8, src.Format)
	assert.Equal(t, []byte{200, 100, 50, 255}, src.Pix)
}

func TestLoadPNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:], []byte{0, 255, 0, 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	assert.Equal(t, "image/png", SniffMIME(buf.Bytes()))

	tex, err := Load(buf.Bytes(), "")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), tex.Width)
	assert.Equal(t, uint32(2), tex.Height)
	r, g, b, a := tex.Pixel(5)
	assert.Equal(t, [4]uint8{0, 255, 0, 255}, [4]uint8{r, g, b, a})
}

func TestLoadJPEGAndPNGWithTGALinked(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:], []byte{255, 255, 255, 255})
	}

	var pngBuf, jpegBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))
	require.NoError(t, jpeg.Encode(&jpegBuf, img, &jpeg.Options{Quality: 100}))

	tests := []struct {
		name     string
		data     []byte
		declared string
	}{
		{"png declared", pngBuf.Bytes(), "image/png"},
		{"png undeclared", pngBuf.Bytes(), ""},
		{"jpeg declared", jpegBuf.Bytes(), "image/jpeg"},
		{"jpeg mislabeled", jpegBuf.Bytes(), "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex, err := Load(tt.data, tt.declared)
			require.NoError(t, err)
			assert.Equal(t, uint32(4), tex.Width)
			assert.Equal(t, uint32(4), tex.Height)
			r, g, b, a := tex.Pixel(0)
			assert.Greater(t, r, uint8(240))
			assert.Greater(t, g, uint8(240))
			assert.Greater(t, b, uint8(240))
			assert.Equal(t, uint8(255), a)
		})
	}
}

func TestLoadTGA(t *testing.T) {
	// Uncompressed true-color 1x1, 24 bits, one blue-green-red pixel.
	data := []byte{
		0, 0, 2,
		0, 0, 0, 0, 0,
		0, 0, 0, 0,
		1, 0, 1, 0,
		24, 0x20,
		0, 0, 255,
	}
	assert.Equal(t, "", SniffMIME(data))

	tex, err := Load(data, "image/x-tga")
	require.NoError(t, err)
	r, g, b, a := tex.Pixel(0)
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, [4]uint8{r, g, b, a})
}

func TestLoadUnsupportedSniffedType(t *testing.T) {
	_, err := Load([]byte("%PDF-1.4 not an image"), "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadGarbage(t *testing.T) {
	_, err := Load([]byte("not an image"), "image/png")
	assert.Error(t, err)
	assert.Equal(t, "", SniffMIME([]byte("not an image")))
}

func TestWhite(t *testing.T) {
	w := White()
	require.Len(t, w.Data, 1)
	assert.Equal(t, []byte{255, 255, 255, 255}, w.Bytes())
}

func TestTextureImage(t *testing.T) {
	src := SourceImage{
		Width:  2,
		Height: 1,
		Format: PixelFormatRGBA8,
		Pix:    []byte{10, 20, 30, 40, 50, 60, 70, 80},
	}
	tex, err := Unswizzle(src)
	require.NoError(t, err)

	img := tex.Image()
	assert.Equal(t, image.Rect(0, 0, 2, 1), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 50, G: 60, B: 70, A: 80}, img.NRGBAAt(1, 0))
	assert.Equal(t, src.Pix, img.Pix)
}
