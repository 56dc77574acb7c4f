// Package profiler reports frame rate, frame counters and memory statistics at a fixed interval.
package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-gltf/engine/renderer"
)

// Report is one interval's worth of statistics.
type Report struct {
	FPS       float64
	Presented uint64
	Dropped   uint64
	DrawCalls uint64
	HeapMB    float64
	AllocRate float64
	NumGC     uint32
	SysMB     float64
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to its logger at a configurable interval.
type Profiler struct {
	logger         *slog.Logger
	updateInterval time.Duration
	now            func() time.Time
	readMem        bool

	lastTime       time.Time
	last           renderer.FrameStats
	memStats       runtime.MemStats
	lastTotalAlloc uint64
	lastReport     Report
}

// NewProfiler creates a new Profiler.
// The update interval defaults to 1 second and the logger to slog.Default().
//
// Parameters:
//   - options: functional options applied after the defaults
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		logger:         slog.Default(),
		updateInterval: time.Second,
		now:            time.Now,
		readMem:        true,
	}
	for _, opt := range options {
		opt(p)
	}
	if p.updateInterval <= 0 {
		p.updateInterval = time.Second
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame with the renderer's cumulative counters.
// When the update interval has elapsed it logs the counters accumulated since the previous report.
//
// Parameters:
//   - stats: cumulative frame counters from Renderer.Stats
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(stats renderer.FrameStats) bool {
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	r := Report{
		Presented: stats.Presented - p.last.Presented,
		Dropped:   stats.Dropped - p.last.Dropped,
		DrawCalls: stats.DrawCalls - p.last.DrawCalls,
	}
	r.FPS = float64(r.Presented) / elapsed.Seconds()

	if p.readMem {
		runtime.ReadMemStats(&p.memStats)
		r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
		r.SysMB = float64(p.memStats.Sys) / 1024 / 1024
		r.AllocRate = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()
		r.NumGC = p.memStats.NumGC
		p.lastTotalAlloc = p.memStats.TotalAlloc
	}

	p.logger.Info("frame stats",
		slog.String("fps", formatFloat(r.FPS)),
		slog.Uint64("presented", r.Presented),
		slog.Uint64("dropped", r.Dropped),
		slog.Uint64("draw_calls", r.DrawCalls),
		slog.String("heap_mb", formatFloat(r.HeapMB)),
		slog.String("alloc_mb_per_s", formatFloat(r.AllocRate)),
		slog.Uint64("gc", uint64(r.NumGC)),
		slog.String("sys_mb", formatFloat(r.SysMB)),
	)

	p.last = stats
	p.lastTime = currentTime
	p.lastReport = r
	return true
}

// LastReport returns the most recently logged report.
func (p *Profiler) LastReport() Report {
	return p.lastReport
}
