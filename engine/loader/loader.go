package loader

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/qmuntal/gltf"
)

// loader is the implementation of the Loader interface.
type loader struct {
	logger *slog.Logger
}

// Loader imports glTF 2.0 files (.gltf and .glb) into flattened, material-keyed models.
// Albedo textures are handed to a TextureUploader during import; vertex batches are left for the
// caller to upload.
type Loader interface {
	// Load opens and imports the model file at path.
	//
	// Parameters:
	//   - path: path to a .gltf or .glb file
	//   - uploader: receives each albedo texture
	//
	// Returns:
	//   - *model.Model: the imported model
	//   - error: a *LoadError carrying path
	Load(path string, uploader TextureUploader) (*model.Model, error)

	// LoadDocument imports an already-parsed document whose buffers are resolved.
	//
	// Parameters:
	//   - doc: the glTF document
	//   - path: the source path recorded on the model; its directory resolves external images
	//   - uploader: receives each albedo texture
	//
	// Returns:
	//   - *model.Model: the imported model
	//   - error: a *LoadError carrying path
	LoadDocument(doc *gltf.Document, path string, uploader TextureUploader) (*model.Model, error)
}

var _ Loader = &loader{}

// NewLoader creates a Loader with the given options applied.
//
// Parameters:
//   - options: functional options applied to the loader
//
// Returns:
//   - Loader: the configured loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Open parses a .gltf or .glb file and resolves its buffers.
//
// Parameters:
//   - path: path to the model file
//
// Returns:
//   - *gltf.Document: the parsed document
//   - error: a *LoadError carrying path
func Open(path string) (*gltf.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
	default:
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%w: %q", errUnsupportedExtension, filepath.Ext(path))}
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return doc, nil
}

func (l *loader) Load(path string, uploader TextureUploader) (*model.Model, error) {
	doc, err := Open(path)
	if err != nil {
		return nil, err
	}
	return l.LoadDocument(doc, path, uploader)
}

func (l *loader) LoadDocument(doc *gltf.Document, path string, uploader TextureUploader) (*model.Model, error) {
	m, err := Flatten(doc, path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	m.Materials, err = BuildMaterials(doc, filepath.Dir(path), uploader)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	l.logger.Debug("model imported",
		"path", path,
		"batches", len(m.Batches),
		"vertices", m.VertexCount(),
		"materials", len(m.Materials),
	)
	return m, nil
}
