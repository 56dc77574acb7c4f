package renderer

import (
	"errors"
)

// FrameState is the position of the renderer in its per-frame lifecycle.
// Frames move Idle → Building → Presenting → Idle.
type FrameState int

const (
	// FrameIdle is the state between frames. Resizes, uploads and reloads happen here.
	FrameIdle FrameState = iota

	// FrameBuilding is the state between BeginFrame and EndFrame, while draws are queued.
	FrameBuilding

	// FramePresenting is the state while EndFrame records, submits and presents.
	FramePresenting
)

func (s FrameState) String() string {
	switch s {
	case FrameIdle:
		return "idle"
	case FrameBuilding:
		return "building"
	case FramePresenting:
		return "presenting"
	default:
		return "unknown"
	}
}

var (
	// ErrFrameNotBuilding is returned by Draw and EndFrame outside of BeginFrame/EndFrame.
	ErrFrameNotBuilding = errors.New("no frame is being built")

	// ErrFrameInProgress is returned by BeginFrame and ReloadModel while a frame is being built.
	ErrFrameInProgress = errors.New("a frame is already in progress")

	// ErrUnknownModel is returned when a ModelID does not refer to a loaded model.
	ErrUnknownModel = errors.New("unknown model")

	// ErrResizeDuringFrame is returned by ResizeFramebuffer while a frame is being built.
	ErrResizeDuringFrame = errors.New("cannot resize the framebuffer during a frame")

	// ErrVertexLayoutMismatch is returned when the shader's vertex input does not match model.Vertex.
	ErrVertexLayoutMismatch = errors.New("shader vertex input does not match the vertex layout")

	// ErrInvalidTexture is returned when a texture's pixel data does not match its dimensions.
	ErrInvalidTexture = errors.New("texture pixel data does not match its dimensions")
)

// FrameStats are cumulative frame counters since the renderer was created.
type FrameStats struct {
	// Presented counts frames that were submitted and presented.
	Presented uint64
	// Dropped counts frames abandoned because no surface image was available.
	Dropped uint64
	// DrawCalls counts draw calls across all presented frames.
	DrawCalls uint64
	// LastDrawCalls is the number of draw calls issued by the most recent presented frame.
	LastDrawCalls int
}
