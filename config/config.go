// Package config loads the YAML file that describes a viewer session: the window, the render
// settings, the shader library, the camera and the models to show.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
)

var (
	// ErrInvalidConfig is wrapped by every Validate failure.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is a complete viewer configuration.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Render   RenderConfig   `yaml:"render"`
	Shader   ShaderConfig   `yaml:"shader"`
	Camera   Transform      `yaml:"camera"`
	Orbit    OrbitConfig    `yaml:"orbit"`
	Models   []ModelConfig  `yaml:"models"`
	Reload   ReloadConfig   `yaml:"reload"`
	Profiler ProfilerConfig `yaml:"profiler"`
}

// WindowConfig describes the native window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// RenderConfig holds renderer settings.
type RenderConfig struct {
	// ClearColor is RGBA in [0, 1].
	ClearColor  [4]float64 `yaml:"clear_color"`
	PresentMode string     `yaml:"present_mode"`
	// Transpose serializes matrices row-major for shader libraries that expect it.
	Transpose bool `yaml:"transpose"`
}

// ShaderConfig selects the shader library. An empty Path uses the built-in library.
type ShaderConfig struct {
	Path          string `yaml:"path"`
	VertexEntry   string `yaml:"vertex_entry"`
	FragmentEntry string `yaml:"fragment_entry"`
}

// Transform is a TRS transform as written in the file. Rotation is a quaternion in (x, y, z, w)
// order. Missing rotation and scale default to identity.
type Transform struct {
	Translation [3]float32  `yaml:"translation"`
	Rotation    *[4]float32 `yaml:"rotation"`
	Scale       *[3]float32 `yaml:"scale"`
}

// OrbitConfig enables keyboard orbit controls around Target. When enabled it replaces Camera.
type OrbitConfig struct {
	Enabled bool       `yaml:"enabled"`
	Target  [3]float32 `yaml:"target"`
	Radius  float32    `yaml:"radius"`
	// Speed is the orbit step in radians.
	Speed float32 `yaml:"speed"`
}

// ModelConfig is one model file and the instances it is drawn at. A model with no instances is
// drawn once at the identity transform.
type ModelConfig struct {
	Path      string      `yaml:"path"`
	Instances []Transform `yaml:"instances"`
}

// ReloadConfig controls hot reload of model files.
type ReloadConfig struct {
	Watch    bool          `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
}

// ProfilerConfig controls frame statistics reporting. A zero interval disables it.
type ProfilerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Default returns the configuration used for any field a file leaves out.
func Default() Config {
	c := common.DefaultClearColor
	return Config{
		Window: WindowConfig{
			Title:  "oxy-gltf",
			Width:  1280,
			Height: 720,
		},
		Render: RenderConfig{
			ClearColor:  [4]float64{c.R, c.G, c.B, c.A},
			PresentMode: "vsync",
		},
		Camera: Transform{Translation: [3]float32{0, 0, 5}},
		Orbit: OrbitConfig{
			Radius: 5,
			Speed:  0.05,
		},
		Reload: ReloadConfig{
			Debounce: 200 * time.Millisecond,
		},
		Profiler: ProfilerConfig{
			Interval: time.Second,
		},
	}
}

// Load reads, decodes and validates a config file, then resolves its relative paths against the
// file's directory.
//
// Parameters:
//   - path: the YAML file to read
//
// Returns:
//   - Config: the loaded configuration
//   - error: an error if the file cannot be read, decoded or validated
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Resolve(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the viewer cannot use.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d must be positive", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	switch c.Render.PresentMode {
	case "", "vsync", "uncapped":
	default:
		return fmt.Errorf("%w: unknown present mode %q", ErrInvalidConfig, c.Render.PresentMode)
	}
	for i, ch := range c.Render.ClearColor {
		if ch < 0 || ch > 1 {
			return fmt.Errorf("%w: clear color channel %d is %v, want [0, 1]", ErrInvalidConfig, i, ch)
		}
	}
	if (c.Shader.VertexEntry == "") != (c.Shader.FragmentEntry == "") {
		return fmt.Errorf("%w: vertex_entry and fragment_entry must be set together", ErrInvalidConfig)
	}
	for i, m := range c.Models {
		if m.Path == "" {
			return fmt.Errorf("%w: model %d has no path", ErrInvalidConfig, i)
		}
	}
	if c.Orbit.Enabled && c.Orbit.Radius <= 0 {
		return fmt.Errorf("%w: orbit radius must be positive", ErrInvalidConfig)
	}
	if c.Reload.Debounce < 0 {
		return fmt.Errorf("%w: reload debounce must not be negative", ErrInvalidConfig)
	}
	if c.Profiler.Interval < 0 {
		return fmt.Errorf("%w: profiler interval must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Resolve makes relative model and shader paths relative to baseDir.
func (c *Config) Resolve(baseDir string) {
	c.Shader.Path = resolvePath(baseDir, c.Shader.Path)
	for i := range c.Models {
		c.Models[i].Path = resolvePath(baseDir, c.Models[i].Path)
	}
}

// ClearColor returns the render clear color.
func (c Config) ClearColor() common.Color {
	cc := c.Render.ClearColor
	return common.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}
}

// Transform converts t to a model.Transform.
func (t Transform) Transform() model.Transform {
	rot := [4]float32{0, 0, 0, 1}
	if t.Rotation != nil {
		rot = *t.Rotation
	}
	scale := [3]float32{1, 1, 1}
	if t.Scale != nil {
		scale = *t.Scale
	}
	out := model.NewTransform(t.Translation, rot, scale)
	out.Rotation = out.Rotation.Normalize()
	return out
}

// InstanceTransforms returns the transforms the model is drawn at.
func (m ModelConfig) InstanceTransforms() []model.Transform {
	if len(m.Instances) == 0 {
		return []model.Transform{model.IdentityTransform()}
	}
	out := make([]model.Transform, len(m.Instances))
	for i, inst := range m.Instances {
		out[i] = inst.Transform()
	}
	return out
}

func resolvePath(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
