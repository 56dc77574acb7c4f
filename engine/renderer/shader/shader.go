// Package shader loads WGSL shader libraries and reads the metadata the renderer needs from them:
// the available entry points and the vertex buffer layout of the vertex input struct.
package shader

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultSource is the built-in model shader, used when no shader path is configured.
//
//go:embed model.wgsl
var DefaultSource string

const (
	// DefaultVertexEntry is the vertex entry point of DefaultSource.
	DefaultVertexEntry = "vs_main"
	// DefaultFragmentEntry is the fragment entry point of DefaultSource.
	DefaultFragmentEntry = "fs_main"
	// DefaultLabel labels the built-in library.
	DefaultLabel = "builtin:model.wgsl"
)

var (
	// ErrEntryPointNotFound is returned when a requested entry point is not declared by the library.
	ErrEntryPointNotFound = errors.New("shader entry point not found")

	// ErrNoVertexInput is returned when the library declares no vertex input struct a layout can be built from.
	ErrNoVertexInput = errors.New("shader declares no usable vertex input struct")
)

// library is the implementation of the Library interface.
type library struct {
	label         string
	source        string
	vertexEntry   string
	fragmentEntry string
	vertexLayout  wgpu.VertexBufferLayout
	module        *wgpu.ShaderModuleDescriptor
}

// Library is a compiled-on-demand WGSL source holding both the vertex and fragment entry points used
// by the model pipeline. It is validated when loaded, so a library that exists always names entry
// points that are present in its source.
type Library interface {
	// Label returns the source path, or DefaultLabel for the built-in library.
	Label() string

	// Source returns the WGSL source code.
	Source() string

	// VertexEntry returns the vertex entry point name.
	VertexEntry() string

	// FragmentEntry returns the fragment entry point name.
	FragmentEntry() string

	// VertexLayout returns the vertex buffer layout parsed from the vertex input struct.
	//
	// Returns:
	//   - wgpu.VertexBufferLayout: attribute formats, offsets and locations in declaration order
	VertexLayout() wgpu.VertexBufferLayout

	// Module returns the descriptor used to create the GPU shader module.
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Library = &library{}

// LoadLibrary reads a WGSL file and validates it. An empty path loads DefaultSource.
//
// Parameters:
//   - path: the WGSL file path, or "" for the built-in shader
//   - vertexEntry: the vertex entry point to use
//   - fragmentEntry: the fragment entry point to use
//
// Returns:
//   - Library: the validated library
//   - error: a read error, ErrEntryPointNotFound or ErrNoVertexInput
func LoadLibrary(path, vertexEntry, fragmentEntry string) (Library, error) {
	if path == "" {
		return Parse(DefaultLabel, DefaultSource, vertexEntry, fragmentEntry)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader library: %w", err)
	}
	return Parse(path, string(data), vertexEntry, fragmentEntry)
}

// Parse validates WGSL source and builds a Library from it.
//
// Parameters:
//   - label: a name for the library, used in errors and GPU object labels
//   - source: the WGSL source code
//   - vertexEntry: the vertex entry point to use
//   - fragmentEntry: the fragment entry point to use
//
// Returns:
//   - Library: the validated library
//   - error: ErrEntryPointNotFound or ErrNoVertexInput
func Parse(label, source, vertexEntry, fragmentEntry string) (Library, error) {
	cleaned := stripComments(source)

	if !slices.Contains(entryPoints(cleaned, vertexEntryRegex), vertexEntry) {
		return nil, fmt.Errorf("%s: %w: vertex %q", label, ErrEntryPointNotFound, vertexEntry)
	}
	if !slices.Contains(entryPoints(cleaned, fragmentEntryRegex), fragmentEntry) {
		return nil, fmt.Errorf("%s: %w: fragment %q", label, ErrEntryPointNotFound, fragmentEntry)
	}

	layout, ok := vertexInputLayout(cleaned)
	if !ok {
		return nil, fmt.Errorf("%s: %w", label, ErrNoVertexInput)
	}

	return &library{
		label:         label,
		source:        source,
		vertexEntry:   vertexEntry,
		fragmentEntry: fragmentEntry,
		vertexLayout:  layout,
		module: &wgpu.ShaderModuleDescriptor{
			Label: label,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: source,
			},
		},
	}, nil
}

// EntryPoints lists the vertex and fragment entry points declared in source, in declaration order.
//
// Parameters:
//   - source: the WGSL source code
//
// Returns:
//   - []string: vertex entry point names
//   - []string: fragment entry point names
func EntryPoints(source string) (vertex, fragment []string) {
	cleaned := stripComments(source)
	return entryPoints(cleaned, vertexEntryRegex), entryPoints(cleaned, fragmentEntryRegex)
}

func (l *library) Label() string {
	return l.label
}

func (l *library) Source() string {
	return l.source
}

func (l *library) VertexEntry() string {
	return l.vertexEntry
}

func (l *library) FragmentEntry() string {
	return l.fragmentEntry
}

func (l *library) VertexLayout() wgpu.VertexBufferLayout {
	return l.vertexLayout
}

func (l *library) Module() *wgpu.ShaderModuleDescriptor {
	return l.module
}
