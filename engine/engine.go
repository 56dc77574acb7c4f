// Package engine runs the viewer's host loop: it polls the window, applies resizes and model reloads
// between frames, and drives the renderer's begin/draw/end cycle once per iteration.
package engine

import (
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-gltf/common"
	"github.com/Carmen-Shannon/oxy-gltf/engine/camera"
	"github.com/Carmen-Shannon/oxy-gltf/engine/model"
	"github.com/Carmen-Shannon/oxy-gltf/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gltf/engine/reload"
	"github.com/Carmen-Shannon/oxy-gltf/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gltf/engine/window"
)

// ErrNoRenderer is returned by NewEngine when no renderer was supplied.
var ErrNoRenderer = errors.New("engine requires a renderer")

// sceneModel is a loaded model and the transforms it is drawn at each frame.
type sceneModel struct {
	id        renderer.ModelID
	path      string
	instances []model.Transform
}

// engine implements the Engine interface.
// Every method runs on the thread that owns the window and the renderer.
type engine struct {
	logger   *slog.Logger
	window   window.Window
	renderer renderer.Renderer
	watcher  reload.Watcher

	profiler         *profiler.Profiler
	profilingEnabled bool

	camera model.Transform
	orbit  camera.Orbit
	models []sceneModel

	pendingResize *common.Extent2D
	reloadAll     bool
	running       bool
	frames        uint64
}

// Engine is the main entry point of the viewer.
// It owns the scene (models and their instances) and orchestrates one renderer frame per loop iteration.
type Engine interface {
	// Window returns the underlying window, or nil when running headless.
	Window() window.Window

	// Renderer returns the renderer the engine drives.
	Renderer() renderer.Renderer

	// AddModel loads a model file and adds it to the scene. Failures are logged by the renderer.
	// When hot reload is enabled the file is watched.
	//
	// Parameters:
	//   - path: the glTF or GLB file to load
	//   - instances: the transforms to draw the model at; none means one identity instance
	//
	// Returns:
	//   - renderer.ModelID: the model's handle, or renderer.InvalidModel
	//   - bool: false if the model could not be loaded
	AddModel(path string, instances ...model.Transform) (renderer.ModelID, bool)

	// SetCamera places the camera.
	SetCamera(t model.Transform)

	// RequestResize records a framebuffer size to apply before the next frame.
	//
	// Parameters:
	//   - width: new framebuffer width in pixels
	//   - height: new framebuffer height in pixels
	RequestResize(width, height int)

	// RequestReloadAll schedules every scene model to be reloaded before the next frame.
	RequestReloadAll()

	// EnableProfiler enables frame statistics output to the log.
	EnableProfiler()

	// DisableProfiler disables frame statistics output.
	DisableProfiler()

	// Frame runs a single loop iteration without polling the window: pending resize, queued reloads,
	// then one begin/draw/end cycle and a profiler tick.
	//
	// Returns:
	//   - error: a frame state or backend error from the renderer
	Frame() error

	// Frames returns how many iterations Frame has completed.
	Frames() uint64

	// Run drives Frame from the window's message loop until the window closes or Quit is called.
	Run()

	// Quit stops Run after the current iteration. Safe to call multiple times.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// A window, when given, has its resize and key callbacks routed to the engine.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: ErrNoRenderer if no renderer option was given
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		logger:  slog.Default(),
		camera:  model.IdentityTransform(),
		running: true,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.renderer == nil {
		return nil, ErrNoRenderer
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	if e.orbit != nil {
		e.camera = e.orbit.Transform()
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.RequestResize)
		e.window.SetKeyDownCallback(e.handleKey)
	}
	e.renderer.UpdateCamera(e.camera)
	return e, nil
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) AddModel(path string, instances ...model.Transform) (renderer.ModelID, bool) {
	id, ok := e.renderer.LoadModel(path)
	if !ok {
		return id, false
	}
	if len(instances) == 0 {
		instances = []model.Transform{model.IdentityTransform()}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	e.models = append(e.models, sceneModel{id: id, path: abs, instances: instances})

	if e.watcher != nil {
		if err := e.watcher.Add(abs); err != nil {
			e.logger.Warn("hot reload disabled for model", slog.String("path", abs), slog.Any("error", err))
		}
	}
	return id, true
}

func (e *engine) SetCamera(t model.Transform) {
	e.camera = t
	e.renderer.UpdateCamera(t)
}

func (e *engine) RequestResize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	e.pendingResize = &common.Extent2D{Width: uint32(width), Height: uint32(height)}
}

func (e *engine) RequestReloadAll() {
	e.reloadAll = true
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) Frame() error {
	e.applyResize()
	e.applyReloads()

	if err := e.renderer.BeginFrame(); err != nil {
		return err
	}
	for _, m := range e.models {
		for _, t := range m.instances {
			if err := e.renderer.Draw(m.id, t); err != nil {
				// Leave the renderer idle so the next iteration can begin a frame.
				_ = e.renderer.EndFrame()
				return err
			}
		}
	}
	if err := e.renderer.EndFrame(); err != nil {
		return err
	}

	e.frames++
	if e.profilingEnabled {
		e.profiler.Tick(e.renderer.Stats())
	}
	return nil
}

func (e *engine) Frames() uint64 {
	return e.frames
}

func (e *engine) Run() {
	if e.window == nil {
		for e.running {
			if err := e.Frame(); err != nil {
				e.logger.Error("frame failed", slog.Any("error", err))
				e.Quit()
			}
		}
		return
	}

	e.window.SetUpdateCallback(func() {
		if !e.running {
			_ = e.window.Close()
			return
		}
		if err := e.Frame(); err != nil {
			e.logger.Error("frame failed", slog.Any("error", err))
			e.Quit()
		}
	})
	e.window.ProcessMessages()
}

func (e *engine) Quit() {
	e.running = false
}

// applyResize forwards the most recent requested size to the renderer.
func (e *engine) applyResize() {
	if e.pendingResize == nil {
		return
	}
	size := *e.pendingResize
	e.pendingResize = nil
	if err := e.renderer.ResizeFramebuffer(size.Width, size.Height); err != nil {
		e.logger.Error("failed to resize framebuffer", slog.Any("error", err))
		return
	}
	e.logger.Debug("framebuffer resized", slog.Int("width", int(size.Width)), slog.Int("height", int(size.Height)))
}

// applyReloads reloads the models whose files changed, or all models after RequestReloadAll.
// A failed reload keeps the previous version of the model on screen.
func (e *engine) applyReloads() {
	var changed map[string]struct{}
	if e.watcher != nil {
		for _, p := range e.watcher.Drain() {
			if changed == nil {
				changed = make(map[string]struct{})
			}
			changed[p] = struct{}{}
		}
	}
	all := e.reloadAll
	e.reloadAll = false
	if !all && len(changed) == 0 {
		return
	}

	for _, m := range e.models {
		if _, ok := changed[m.path]; !ok && !all {
			continue
		}
		if err := e.renderer.ReloadModel(m.id); err != nil {
			e.logger.Error("failed to reload model", slog.String("path", m.path), slog.Any("error", err))
		}
	}
}

// handleKey maps viewer hotkeys. R reloads every model and P toggles the profiler. With an orbit
// controller, WASD or the arrow keys orbit and -/= zoom.
func (e *engine) handleKey(keyCode uint32) {
	switch keyCode {
	case common.KeyR:
		e.RequestReloadAll()
		return
	case common.KeyP:
		e.profilingEnabled = !e.profilingEnabled
		return
	case common.KeyEsc:
		e.Quit()
		return
	}

	if e.orbit == nil {
		return
	}
	switch keyCode {
	case common.KeyA, common.KeyLeft:
		e.orbit.OrbitLeft()
	case common.KeyD, common.KeyRight:
		e.orbit.OrbitRight()
	case common.KeyW, common.KeyUp:
		e.orbit.OrbitUp()
	case common.KeyS, common.KeyDown:
		e.orbit.OrbitDown()
	case common.KeyEqual:
		e.orbit.Zoom(1)
	case common.KeyMinus:
		e.orbit.Zoom(-1)
	default:
		return
	}
	e.SetCamera(e.orbit.Transform())
}
