package loader

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/Carmen-Shannon/oxy-gltf/engine/texture"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingUploader assigns sequential catalog indices and keeps every texture it receives.
type recordingUploader struct {
	textures []*texture.Texture
	err      error
}

func (u *recordingUploader) UploadTexture(tex *texture.Texture) (int, error) {
	if u.err != nil {
		return -1, u.err
	}
	tex.Handle = len(u.textures)
	u.textures = append(u.textures, tex)
	return tex.Handle, nil
}

func pngDataURI(t *testing.T, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func texturedDoc(t *testing.T) *gltf.Document {
	t.Helper()
	doc := triangleDoc(t, []string{"Red", "", "Plain", "AlsoRed"}, 0)
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}

	doc.Images = []*gltf.Image{{URI: pngDataURI(t, color.NRGBA{R: 255, A: 255})}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}}

	doc.Materials[0].PBRMetallicRoughness = &gltf.PBRMetallicRoughness{
		BaseColorTexture: &gltf.TextureInfo{Index: 0},
		MetallicFactor:   gltf.Float(0.25),
		RoughnessFactor:  gltf.Float(0.75),
	}
	doc.Materials[0].EmissiveFactor = [3]float64{0.1, 0.2, 0.3}
	doc.Materials[0].NormalTexture = &gltf.NormalTexture{Index: gltf.Index(0)}
	doc.Materials[3].PBRMetallicRoughness = &gltf.PBRMetallicRoughness{
		BaseColorTexture: &gltf.TextureInfo{Index: 0},
	}
	return doc
}

func TestBuildMaterials(t *testing.T) {
	doc := texturedDoc(t)
	uploader := &recordingUploader{}

	catalog, err := BuildMaterials(doc, "", uploader)
	require.NoError(t, err)
	require.Len(t, catalog, 4)

	red, ok := catalog.Lookup("Red")
	require.True(t, ok)
	assert.Equal(t, 0, red.AlbedoTexture)
	assert.Equal(t, model.TextureUnset, red.NormalTexture, "only albedo is uploaded")
	assert.Equal(t, model.TextureUnset, red.MetallicRoughnessTexture)
	assert.Equal(t, model.TextureUnset, red.EmissiveTexture)
	assert.InDelta(t, 0.75, red.Roughness, 1e-6)
	assert.InDelta(t, 0.25, red.Metalness, 1e-6)
	assert.InDeltaSlice(t, []float32{0.1, 0.2, 0.3}, red.Emissive[:], 1e-6)

	_, ok = catalog.Lookup(model.UnnamedMaterialKey)
	assert.True(t, ok)

	plain := catalog["Plain"]
	assert.Equal(t, model.TextureUnset, plain.AlbedoTexture)
	assert.Equal(t, float32(1), plain.Roughness)
	assert.Equal(t, float32(1), plain.Metalness)

	// The shared image is uploaded once.
	require.Len(t, uploader.textures, 1)
	assert.Equal(t, 0, catalog["AlsoRed"].AlbedoTexture)
	r, g, b, a := uploader.textures[0].Pixel(0)
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, [4]uint8{r, g, b, a})
}

func TestBuildMaterialsUploadFailure(t *testing.T) {
	doc := texturedDoc(t)
	_, err := BuildMaterials(doc, "", &recordingUploader{err: errors.New("device lost")})
	assert.ErrorContains(t, err, "device lost")
}

func TestBuildMaterialsExternalImage(t *testing.T) {
	dir := t.TempDir()
	uri := pngDataURI(t, color.NRGBA{G: 255, A: 255})
	data, _, err := decodeDataURI(uri)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "green tex.png"), data, 0o644))

	doc := texturedDoc(t)
	doc.Images[0] = &gltf.Image{URI: "green%20tex.png"}

	uploader := &recordingUploader{}
	_, err = BuildMaterials(doc, dir, uploader)
	require.NoError(t, err)
	require.Len(t, uploader.textures, 1)
	_, g, _, _ := uploader.textures[0].Pixel(3)
	assert.Equal(t, uint8(255), g)
}

func TestLoadDocument(t *testing.T) {
	l := NewLoader()
	uploader := &recordingUploader{}

	m, err := l.LoadDocument(texturedDoc(t), "scene.gltf", uploader)
	require.NoError(t, err)
	assert.Equal(t, "scene.gltf", m.Path)
	assert.Equal(t, []string{"Red"}, m.Keys())
	assert.Equal(t, 0, m.Materials.AlbedoOr("Red", -1))
	assert.Equal(t, 3, m.VertexCount())
}

func TestLoadRoundTripGLB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.glb")
	require.NoError(t, gltf.SaveBinary(texturedDoc(t), path))

	m, err := NewLoader().Load(path, &recordingUploader{})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Batches["Red"].VertexCount())
}

func TestLoadErrorsCarryPath(t *testing.T) {
	l := NewLoader()

	missing := filepath.Join(t.TempDir(), "missing.gltf")
	_, err := l.Load(missing, &recordingUploader{})
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, missing, loadErr.Path)
	assert.Contains(t, err.Error(), missing)

	_, err = l.Load("model.obj", &recordingUploader{})
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, errUnsupportedExtension)
}

func TestLoadDocumentFormatError(t *testing.T) {
	doc := triangleDoc(t, []string{"M"}, 0)
	doc.Nodes = []*gltf.Node{{Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = []int{0}
	doc.Accessors[0].Count = 1000

	_, err := NewLoader().LoadDocument(doc, "broken.gltf", &recordingUploader{})
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestDecodeDataURI(t *testing.T) {
	data, mimeType, err := decodeDataURI("data:text/plain;base64,aGk=")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mimeType)
	assert.Equal(t, []byte("hi"), data)

	data, _, err = decodeDataURI("data:,a%20b")
	require.NoError(t, err)
	assert.Equal(t, []byte("a b"), data)

	_, _, err = decodeDataURI("data:nocomma")
	assert.Error(t, err)
}
