package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/ftrvxmtrx/tga"
	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// decoders maps sniffed MIME types to their decoder. The tga package registers a format with an empty
// signature that matches any input, so image.Decode is never used and every format is chosen here.
var decoders = map[string]func(io.Reader) (image.Image, error){
	"image/png":  png.Decode,
	"image/jpeg": jpeg.Decode,
	"image/gif":  gif.Decode,
	"image/bmp":  bmp.Decode,
	"image/tiff": tiff.Decode,
	"image/webp": webp.Decode,
}

// SniffMIME reports the MIME type of encoded image bytes, or an empty string if unrecognized.
//
// Parameters:
//   - data: the encoded image
//
// Returns:
//   - string: the detected MIME type, e.g. "image/png"
func SniffMIME(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.MIME.Value
}

// Decode decodes encoded image bytes with the decoder picked by the sniffed type (PNG, JPEG, GIF, BMP,
// TIFF, WebP). TGA has no signature, so data that sniffs as nothing is decoded as TGA.
//
// Parameters:
//   - data: the encoded image
//   - mimeType: the declared MIME type, may be empty; only used to annotate errors
//
// Returns:
//   - image.Image: the decoded image
//   - error: an error if the type is unsupported or the decoder rejects the data
func Decode(data []byte, mimeType string) (image.Image, error) {
	sniffed := SniffMIME(data)

	decode := tga.Decode
	if sniffed != "" {
		d, ok := decoders[sniffed]
		if !ok {
			return nil, fmt.Errorf("failed to decode image (%s): %w: %s", mimeOrUnknown(mimeType, sniffed), ErrUnsupportedFormat, sniffed)
		}
		decode = d
	}

	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (%s): %w", mimeOrUnknown(mimeType, sniffed), err)
	}
	return img, nil
}

// Load decodes encoded image bytes and unswizzles them into a texture ready for upload.
//
// Parameters:
//   - data: the encoded image
//   - mimeType: the declared MIME type, may be empty
//
// Returns:
//   - *Texture: the packed RGBA8 texture
//   - error: a decode or format error
func Load(data []byte, mimeType string) (*Texture, error) {
	img, err := Decode(data, mimeType)
	if err != nil {
		return nil, err
	}
	return Unswizzle(FromImage(img))
}

func mimeOrUnknown(declared, sniffed string) string {
	switch {
	case declared != "":
		return declared
	case sniffed != "":
		return sniffed
	}
	return "unknown type"
}
