package model

// TextureUnset marks a material texture slot that has no uploaded texture.
const TextureUnset = -1

const (
	// UnnamedMaterialKey is the catalog key for a material declared without a name.
	UnnamedMaterialKey = "untitled"

	// NoMaterialKey is the batch key for a primitive that does not reference a named material.
	NoMaterialKey = "None"
)

// Material holds the scalar factors and texture catalog indices of one imported material.
// Texture slots hold a catalog index or TextureUnset.
type Material struct {
	Name string

	AlbedoTexture            int
	NormalTexture            int
	MetallicRoughnessTexture int
	EmissiveTexture          int

	Roughness float32
	Metalness float32
	Emissive  [3]float32
}

// NewMaterial returns a material with every texture slot unset.
func NewMaterial(name string) Material {
	return Material{
		Name:                     name,
		AlbedoTexture:            TextureUnset,
		NormalTexture:            TextureUnset,
		MetallicRoughnessTexture: TextureUnset,
		EmissiveTexture:          TextureUnset,
	}
}

// MaterialCatalog maps material keys to materials.
type MaterialCatalog map[string]Material

// Lookup returns the material stored under key.
//
// Parameters:
//   - key: the material key
//
// Returns:
//   - Material: the material, zero value if absent
//   - bool: true if the key exists
func (c MaterialCatalog) Lookup(key string) (Material, bool) {
	m, ok := c[key]
	return m, ok
}

// AlbedoOr resolves the albedo texture index used to draw a batch keyed by key.
// It returns fallback when the key is missing or the material has no albedo texture.
//
// Parameters:
//   - key: the material key of the batch
//   - fallback: the texture index to use when nothing is bound
//
// Returns:
//   - int: the texture catalog index
func (c MaterialCatalog) AlbedoOr(key string, fallback int) int {
	m, ok := c[key]
	if !ok || m.AlbedoTexture == TextureUnset {
		return fallback
	}
	return m.AlbedoTexture
}
