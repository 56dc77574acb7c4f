package texture

import "fmt"

// PixelFormat is the closed set of source channel layouts the unswizzler accepts.
type PixelFormat int

const (
	// PixelFormatUnknown is the zero value and is never a valid source format.
	PixelFormatUnknown PixelFormat = iota
	PixelFormatR8
	PixelFormatRG8
	PixelFormatRGB8
	PixelFormatRGBA8
	PixelFormatR16
	PixelFormatRG16
	PixelFormatRGB16
	PixelFormatRGBA16
)

// PixelFormatFor maps a channel count and bit depth onto a PixelFormat.
//
// Parameters:
//   - channels: number of channels per pixel (1-4)
//   - bitDepth: bits per channel (8 or 16)
//
// Returns:
//   - PixelFormat: the matching format
//   - error: ErrUnsupportedFormat for any other combination
func PixelFormatFor(channels, bitDepth int) (PixelFormat, error) {
	switch {
	case bitDepth == 8 && channels == 1:
		return PixelFormatR8, nil
	case bitDepth == 8 && channels == 2:
		return PixelFormatRG8, nil
	case bitDepth == 8 && channels == 3:
		return PixelFormatRGB8, nil
	case bitDepth == 8 && channels == 4:
		return PixelFormatRGBA8, nil
	case bitDepth == 16 && channels == 1:
		return PixelFormatR16, nil
	case bitDepth == 16 && channels == 2:
		return PixelFormatRG16, nil
	case bitDepth == 16 && channels == 3:
		return PixelFormatRGB16, nil
	case bitDepth == 16 && channels == 4:
		return PixelFormatRGBA16, nil
	}
	return PixelFormatUnknown, fmt.Errorf("%w: %d channels at %d bits", ErrUnsupportedFormat, channels, bitDepth)
}

// layout describes how a format is stored: channels per pixel and bytes per channel.
type layout struct {
	channels int
	width    int
}

// layout returns the storage layout of f, or false for PixelFormatUnknown and out-of-range values.
func (f PixelFormat) layout() (layout, bool) {
	switch f {
	case PixelFormatR8:
		return layout{1, 1}, true
	case PixelFormatRG8:
		return layout{2, 1}, true
	case PixelFormatRGB8:
		return layout{3, 1}, true
	case PixelFormatRGBA8:
		return layout{4, 1}, true
	case PixelFormatR16:
		return layout{1, 2}, true
	case PixelFormatRG16:
		return layout{2, 2}, true
	case PixelFormatRGB16:
		return layout{3, 2}, true
	case PixelFormatRGBA16:
		return layout{4, 2}, true
	case PixelFormatUnknown:
	}
	return layout{}, false
}

// Channels returns the number of channels per pixel, or 0 for an unknown format.
func (f PixelFormat) Channels() int {
	l, _ := f.layout()
	return l.channels
}

// BytesPerPixel returns the storage size of one source pixel, or 0 for an unknown format.
func (f PixelFormat) BytesPerPixel() int {
	l, _ := f.layout()
	return l.channels * l.width
}

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatR8:
		return "R8"
	case PixelFormatRG8:
		return "RG8"
	case PixelFormatRGB8:
		return "RGB8"
	case PixelFormatRGBA8:
		return "RGBA8"
	case PixelFormatR16:
		return "R16"
	case PixelFormatRG16:
		return "RG16"
	case PixelFormatRGB16:
		return "RGB16"
	case PixelFormatRGBA16:
		return "RGBA16"
	case PixelFormatUnknown:
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}
