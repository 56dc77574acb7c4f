package main

import (
	"fmt"
	"log/slog"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-gltf/config"
	"github.com/Carmen-Shannon/oxy-gltf/engine"
	"github.com/Carmen-Shannon/oxy-gltf/engine/camera"
	"github.com/Carmen-Shannon/oxy-gltf/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gltf/engine/reload"
	"github.com/Carmen-Shannon/oxy-gltf/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gltf/engine/window"
)

func newViewCommand(root *rootOptions) *cobra.Command {
	var fallbackAdapter bool
	cmd := &cobra.Command{
		Use:   "view <config.yaml>",
		Short: "Open a window and render the models listed in a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			return runView(root.logger, cfg, fallbackAdapter)
		},
	}
	cmd.Flags().BoolVar(&fallbackAdapter, "fallback-adapter", false, "force the software fallback adapter")
	return cmd
}

// runView wires window, backend, renderer and engine together and blocks until the window closes.
func runView(logger *slog.Logger, cfg config.Config, fallbackAdapter bool) error {
	presentMode, err := renderer.ParsePresentMode(cfg.Render.PresentMode)
	if err != nil {
		return err
	}

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	backend := renderer.NewBackend(renderer.BackendTypeWGPU, win.SurfaceDescriptor(), presentMode, fallbackAdapter)
	r, err := renderer.NewRenderer(backend,
		renderer.WithLogger(logger),
		renderer.WithShaderLibrary(cfg.Shader.Path, cfg.Shader.VertexEntry, cfg.Shader.FragmentEntry),
		renderer.WithFramebufferSize(uint32(win.Width()), uint32(win.Height())),
		renderer.WithClearColor(cfg.ClearColor()),
		renderer.WithTransposedMatrices(cfg.Render.Transpose),
	)
	if err != nil {
		backend.Release()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer r.Release()

	options := []engine.EngineBuilderOption{
		engine.WithLogger(logger),
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithCamera(cfg.Camera.Transform()),
	}
	if cfg.Orbit.Enabled {
		options = append(options, engine.WithOrbit(camera.NewOrbit(
			camera.WithTarget(cfg.Orbit.Target),
			camera.WithRadius(cfg.Orbit.Radius),
			camera.WithOrbitSpeed(cfg.Orbit.Speed),
		)))
	}
	if cfg.Profiler.Interval > 0 {
		options = append(options,
			engine.WithProfiling(true),
			engine.WithProfiler(profiler.NewProfiler(
				profiler.WithLogger(logger),
				profiler.WithInterval(cfg.Profiler.Interval),
			)),
		)
	}
	if cfg.Reload.Watch {
		w, err := reload.NewWatcher(reload.WithLogger(logger), reload.WithDebounce(cfg.Reload.Debounce))
		if err != nil {
			return err
		}
		defer w.Close()
		options = append(options, engine.WithWatcher(w))
	}

	e, err := engine.NewEngine(options...)
	if err != nil {
		return err
	}

	bar := newBar(len(cfg.Models), "loading models")
	loaded := 0
	for _, m := range cfg.Models {
		if _, ok := e.AddModel(m.Path, m.InstanceTransforms()...); ok {
			loaded++
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	logger.Info("scene ready", slog.Int("models", loaded), slog.Int("failed", len(cfg.Models)-loaded))

	e.Run()
	stats := r.Stats()
	logger.Info("viewer closed",
		slog.Uint64("presented", stats.Presented),
		slog.Uint64("dropped", stats.Dropped),
		slog.Uint64("draw_calls", stats.DrawCalls),
	)
	return nil
}

// newBar returns a progress bar on stderr, or a silent one when stderr is not a terminal.
func newBar(n int, description string) *progressbar.ProgressBar {
	if !stderrIsTerminal() {
		return progressbar.DefaultSilent(int64(n), description)
	}
	return progressbar.Default(int64(n), description)
}
