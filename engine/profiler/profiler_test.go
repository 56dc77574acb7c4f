package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-gltf/engine/renderer"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestProfiler(buf *bytes.Buffer, clock *fakeClock) *Profiler {
	logger := slog.New(slog.NewTextHandler(buf, nil))
	return NewProfiler(
		WithLogger(logger),
		WithClock(clock.now),
		WithInterval(time.Second),
		WithMemStats(false),
	)
}

func TestTickWaitsForInterval(t *testing.T) {
	var buf bytes.Buffer
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := newTestProfiler(&buf, clock)

	clock.advance(500 * time.Millisecond)
	assert.False(t, p.Tick(renderer.FrameStats{Presented: 10}))
	assert.Empty(t, buf.String())
}

func TestTickReportsDeltas(t *testing.T) {
	var buf bytes.Buffer
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := newTestProfiler(&buf, clock)

	clock.advance(2 * time.Second)
	require.True(t, p.Tick(renderer.FrameStats{Presented: 120, Dropped: 2, DrawCalls: 360}))
	r := p.LastReport()
	assert.Equal(t, uint64(120), r.Presented)
	assert.Equal(t, uint64(2), r.Dropped)
	assert.Equal(t, uint64(360), r.DrawCalls)
	assert.InDelta(t, 60.0, r.FPS, 1e-9)
	assert.Contains(t, buf.String(), "fps=60.00")
	assert.Contains(t, buf.String(), "draw_calls=360")

	clock.advance(time.Second)
	require.True(t, p.Tick(renderer.FrameStats{Presented: 150, Dropped: 2, DrawCalls: 450}))
	r = p.LastReport()
	assert.Equal(t, uint64(30), r.Presented)
	assert.Equal(t, uint64(0), r.Dropped)
	assert.Equal(t, uint64(90), r.DrawCalls)
	assert.InDelta(t, 30.0, r.FPS, 1e-9)
}

func TestNonPositiveIntervalFallsBack(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithMemStats(false))
	assert.Equal(t, time.Second, p.updateInterval)
}
