package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/Carmen-Shannon/oxy-gltf/engine/texture"
	"github.com/qmuntal/gltf"
)

// TextureUploader receives decoded textures during import and returns their catalog index.
// The renderer implements it; tools that run without a GPU pass a stand-in.
type TextureUploader interface {
	// UploadTexture uploads tex and records the assigned catalog index in tex.Handle.
	//
	// Parameters:
	//   - tex: the packed RGBA8 texture
	//
	// Returns:
	//   - int: the catalog index
	//   - error: an error if the upload fails
	UploadTexture(tex *texture.Texture) (int, error)
}

// BuildMaterials captures every material of doc keyed by name (model.UnnamedMaterialKey if unnamed).
// Only the base color texture is decoded and uploaded; the normal, metallic-roughness and emissive
// slots stay model.TextureUnset. An image shared by several materials is uploaded once.
//
// Parameters:
//   - doc: the glTF document with resolved buffers
//   - baseDir: the directory of the document, for external images
//   - uploader: receives each albedo texture
//
// Returns:
//   - model.MaterialCatalog: the materials keyed by name
//   - error: an error if an albedo image cannot be read, decoded or uploaded
func BuildMaterials(doc *gltf.Document, baseDir string, uploader TextureUploader) (model.MaterialCatalog, error) {
	catalog := make(model.MaterialCatalog, len(doc.Materials))
	uploaded := make(map[int]int)

	for mi, src := range doc.Materials {
		key := common.Coalesce(src.Name, model.UnnamedMaterialKey)
		mat := model.NewMaterial(key)
		mat.Emissive = [3]float32{float32(src.EmissiveFactor[0]), float32(src.EmissiveFactor[1]), float32(src.EmissiveFactor[2])}
		mat.Roughness = 1
		mat.Metalness = 1

		if pbr := src.PBRMetallicRoughness; pbr != nil {
			mat.Roughness = float32(pbr.RoughnessFactorOrDefault())
			mat.Metalness = float32(pbr.MetallicFactorOrDefault())

			if pbr.BaseColorTexture != nil {
				handle, err := uploadTextureImage(doc, baseDir, pbr.BaseColorTexture.Index, uploader, uploaded)
				if err != nil {
					return nil, fmt.Errorf("material %d (%s): %w", mi, key, err)
				}
				mat.AlbedoTexture = handle
			}
		}

		catalog[key] = mat
	}

	return catalog, nil
}

// uploadTextureImage resolves a texture's source image, decodes it and uploads it once per image index.
func uploadTextureImage(doc *gltf.Document, baseDir string, textureIndex int, uploader TextureUploader, uploaded map[int]int) (int, error) {
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return model.TextureUnset, fmt.Errorf("texture index %d out of range", textureIndex)
	}
	source := doc.Textures[textureIndex].Source
	if source == nil {
		return model.TextureUnset, nil
	}
	if handle, ok := uploaded[*source]; ok {
		return handle, nil
	}

	data, mimeType, err := ReadImage(doc, baseDir, *source)
	if err != nil {
		return model.TextureUnset, err
	}
	tex, err := texture.Load(data, mimeType)
	if err != nil {
		return model.TextureUnset, fmt.Errorf("image %d: %w", *source, err)
	}
	handle, err := uploader.UploadTexture(tex)
	if err != nil {
		return model.TextureUnset, fmt.Errorf("image %d: failed to upload texture: %w", *source, err)
	}
	uploaded[*source] = handle
	return handle, nil
}
