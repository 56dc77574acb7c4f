package loader

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
)

// ReadImage returns the encoded bytes and declared MIME type of a document image.
// Bytes come from a buffer view (GLB), a base64 data URI, or an external file resolved against baseDir.
//
// Parameters:
//   - doc: the glTF document with resolved buffers
//   - baseDir: the directory of the document, used for external image URIs
//   - index: the image index
//
// Returns:
//   - []byte: the encoded image
//   - string: the MIME type, empty when neither declared nor implied by a data URI
//   - error: an error if the image cannot be located or read
func ReadImage(doc *gltf.Document, baseDir string, index int) ([]byte, string, error) {
	if index < 0 || index >= len(doc.Images) {
		return nil, "", fmt.Errorf("image index %d out of range", index)
	}
	img := doc.Images[index]

	switch {
	case img.BufferView != nil:
		data, err := bufferViewBytes(doc, *img.BufferView)
		if err != nil {
			return nil, "", fmt.Errorf("image %d: %w", index, err)
		}
		return data, img.MimeType, nil

	case strings.HasPrefix(img.URI, "data:"):
		data, mimeType, err := decodeDataURI(img.URI)
		if err != nil {
			return nil, "", fmt.Errorf("image %d: %w", index, err)
		}
		if img.MimeType != "" {
			mimeType = img.MimeType
		}
		return data, mimeType, nil

	case img.URI != "":
		rel, err := url.PathUnescape(img.URI)
		if err != nil {
			rel = img.URI
		}
		data, err := os.ReadFile(filepath.Join(baseDir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, "", fmt.Errorf("image %d: %w", index, err)
		}
		return data, img.MimeType, nil
	}

	return nil, "", fmt.Errorf("image %d: %w", index, errNoImageSource)
}

// bufferViewBytes returns the raw bytes of a buffer view, without accessor interpretation.
func bufferViewBytes(doc *gltf.Document, index int) ([]byte, error) {
	if index < 0 || index >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", index)
	}
	bv := doc.BufferViews[index]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
	}
	data := doc.Buffers[bv.Buffer].Data
	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || end > len(data) {
		return nil, fmt.Errorf("buffer view %d spans [%d, %d) of a %d byte buffer", index, bv.ByteOffset, end, len(data))
	}
	return data[bv.ByteOffset:end], nil
}

// decodeDataURI decodes a data:[<mediatype>][;base64],<data> URI.
func decodeDataURI(uri string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URI: no comma found")
	}

	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		data, err := url.PathUnescape(payload)
		if err != nil {
			return nil, "", fmt.Errorf("failed to unescape data URI: %w", err)
		}
		return []byte(data), mimeType, nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, mimeType, nil
}
