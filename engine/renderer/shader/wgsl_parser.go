package shader

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// vertexFormat pairs a wgpu vertex format with its size in bytes.
type vertexFormat struct {
	format wgpu.VertexFormat
	size   uint64
}

// wgslVertexFormats maps WGSL scalar and vector types to vertex attribute formats.
var wgslVertexFormats = map[string]vertexFormat{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"vec2u":     {wgpu.VertexFormatUint32x2, 8},
	"vec2<u32>": {wgpu.VertexFormatUint32x2, 8},
	"vec4u":     {wgpu.VertexFormatUint32x4, 16},
	"vec4<u32>": {wgpu.VertexFormatUint32x4, 16},
	"i32":       {wgpu.VertexFormatSint32, 4},
	"vec2i":     {wgpu.VertexFormatSint32x2, 8},
	"vec2<i32>": {wgpu.VertexFormatSint32x2, 8},
	"vec4i":     {wgpu.VertexFormatSint32x4, 16},
	"vec4<i32>": {wgpu.VertexFormatSint32x4, 16},
}

var (
	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// structRegex captures a struct's name and body
	structRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// memberRegex captures an optional @location index, the member name and its type
	memberRegex = regexp.MustCompile(`^((?:@\w+(?:\([^)]*\))?\s*)*)(\w+)\s*:\s*(.+)$`)

	// locationRegex captures the index of a @location(N) attribute
	locationRegex = regexp.MustCompile(`@location\(\s*(\d+)\s*\)`)
)

// structMember is one member of a WGSL struct.
type structMember struct {
	name     string
	typeName string
	location int // -1 when the member has no @location
	builtin  bool
}

// entryPoints returns the names captured by re in declaration order.
func entryPoints(cleaned string, re *regexp.Regexp) []string {
	var names []string
	for _, m := range re.FindAllStringSubmatch(cleaned, -1) {
		names = append(names, m[1])
	}
	return names
}

// vertexInputLayout builds a tightly packed vertex buffer layout from the first struct whose members
// all carry @location and none is a @builtin. Offsets follow member declaration order.
func vertexInputLayout(cleaned string) (wgpu.VertexBufferLayout, bool) {
	for _, m := range structRegex.FindAllStringSubmatch(cleaned, -1) {
		members := parseMembers(m[2])
		if !isVertexInput(members) {
			continue
		}

		attrs := make([]wgpu.VertexAttribute, 0, len(members))
		var offset uint64
		for _, mem := range members {
			vf, ok := wgslVertexFormats[mem.typeName]
			if !ok {
				return wgpu.VertexBufferLayout{}, false
			}
			attrs = append(attrs, wgpu.VertexAttribute{
				Format:         vf.format,
				Offset:         offset,
				ShaderLocation: uint32(mem.location),
			})
			offset += vf.size
		}
		return wgpu.VertexBufferLayout{
			ArrayStride: offset,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  attrs,
		}, true
	}
	return wgpu.VertexBufferLayout{}, false
}

func isVertexInput(members []structMember) bool {
	if len(members) == 0 {
		return false
	}
	for _, m := range members {
		if m.builtin || m.location < 0 {
			return false
		}
	}
	return true
}

// parseMembers splits a struct body at top-level commas and parses each member.
func parseMembers(body string) []structMember {
	var members []structMember
	for _, part := range splitTopLevel(body) {
		part = strings.TrimSpace(part)
		fm := memberRegex.FindStringSubmatch(part)
		if fm == nil {
			continue
		}
		mem := structMember{
			name:     fm[2],
			typeName: strings.TrimSpace(fm[3]),
			location: -1,
			builtin:  strings.Contains(fm[1], "@builtin"),
		}
		if lm := locationRegex.FindStringSubmatch(fm[1]); lm != nil {
			mem.location, _ = strconv.Atoi(lm[1])
		}
		members = append(members, mem)
	}
	return members
}
