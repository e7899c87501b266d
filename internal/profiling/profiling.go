// Package profiling records per-frame call hierarchies for the engine's
// real-time performance inspector. Disabled by default — enable via
// AMS_LOGGING_PROFILE_ENABLED so normal play never pays for it.
//
// The engine ticks on a single goroutine, so unlike the threading.local
// stack this was ported from, a Profiler needs no per-goroutine state:
// one mutable call stack held on the struct is enough.
package profiling

import (
	"time"
)

// CallNode is a single profiled call: a frame update, a Lua invocation, or
// a Lua-to-Go callback.
type CallNode struct {
	ID          int
	ParentID    int // 0 when this is a root call (no call ever has id 0)
	Label       string
	Module      string
	Func        string
	StartMS     float64
	DurationMS  float64
	Args        map[string]string
	EntityID    string
	LuaCode     bool
	LuaCallback bool
}

// RollbackEvent records that a rollback occurred during the frame it is
// attached to.
type RollbackEvent struct {
	TargetTimestamp   time.Time
	FramesResimulated int
	SnapshotAgeMS     float64
}

// FrameProfile is the profiling record for one engine tick.
type FrameProfile struct {
	Frame      int
	Timestamp  time.Time
	DurationMS float64
	Calls      []CallNode
	Rollback   *RollbackEvent
}

// Profiler accumulates CallNodes for the frame currently in progress and
// retains a ring buffer of the most recently completed frames.
type Profiler struct {
	enabled bool

	nextCallID int
	stack      []*CallNode
	frameStart time.Time
	current    *FrameProfile

	buffer []FrameProfile
	head   int
	size   int

	sink FrameSink
}

// DefaultFrameBufferSize matches the retained-history window of the
// original profiler (last 60 frames).
const DefaultFrameBufferSize = 60

// New returns a disabled Profiler. Call Enable to turn it on; sink may be
// nil, in which case completed frames are only kept in the ring buffer.
func New(sink FrameSink) *Profiler {
	if sink == nil {
		sink = NullSink{}
	}
	return &Profiler{
		buffer: make([]FrameProfile, DefaultFrameBufferSize),
		sink:   sink,
	}
}

// Enable turns profiling on.
func (p *Profiler) Enable() { p.enabled = true }

// Disable turns profiling off. A frame already in progress is abandoned.
func (p *Profiler) Disable() {
	p.enabled = false
	p.stack = nil
	p.current = nil
}

// IsEnabled reports whether profiling is currently active.
func (p *Profiler) IsEnabled() bool { return p.enabled }

// BeginFrame starts profiling frameNumber. Call at the start of the
// engine's tick. A no-op when disabled.
func (p *Profiler) BeginFrame(frameNumber int) {
	if !p.enabled {
		return
	}
	p.stack = p.stack[:0]
	p.frameStart = time.Now()
	p.current = &FrameProfile{Frame: frameNumber, Timestamp: time.Now()}
}

// EndFrame finishes profiling the current frame, appends it to the frame
// buffer, emits it to the configured sink, and returns it. Returns nil
// when disabled or when no frame is in progress.
func (p *Profiler) EndFrame() *FrameProfile {
	if !p.enabled || p.current == nil {
		return nil
	}

	frame := p.current
	frame.DurationMS = msSince(p.frameStart)

	p.buffer[p.head] = *frame
	p.head = (p.head + 1) % len(p.buffer)
	if p.size < len(p.buffer) {
		p.size++
	}

	p.sink.EmitFrame(*frame)

	p.stack = p.stack[:0]
	p.current = nil
	return frame
}

// RecordRollback attaches a rollback event to the frame currently in
// progress. Called by the rollback manager when a rollback occurs during
// a tick; a no-op if profiling is disabled or no frame is open (e.g. a
// rollback triggered outside the tick loop).
func (p *Profiler) RecordRollback(framesResimulated int, targetTimestamp time.Time, snapshotAgeMS float64) {
	if !p.enabled || p.current == nil {
		return
	}
	p.current.Rollback = &RollbackEvent{
		TargetTimestamp:   targetTimestamp,
		FramesResimulated: framesResimulated,
		SnapshotAgeMS:     snapshotAgeMS,
	}
}

// FrameBuffer returns the retained frames, oldest first.
func (p *Profiler) FrameBuffer() []FrameProfile {
	if p.size < len(p.buffer) {
		out := make([]FrameProfile, p.size)
		copy(out, p.buffer[:p.size])
		return out
	}
	out := make([]FrameProfile, len(p.buffer))
	copy(out, p.buffer[p.head:])
	copy(out[len(p.buffer)-p.head:], p.buffer[:p.head])
	return out
}

// ClearFrameBuffer discards all retained frames.
func (p *Profiler) ClearFrameBuffer() {
	p.buffer = make([]FrameProfile, len(p.buffer))
	p.head = 0
	p.size = 0
}

// Begin starts a profiled call and returns an End func to close it out —
// the idiomatic Go replacement for a decorator or context manager: call
// it and `defer` the result.
//
//	defer profiler.Begin("game_engine", "Frame Update", "", false)()
func (p *Profiler) Begin(module, label, entityID string, luaCode bool) func() {
	if !p.enabled || p.current == nil {
		return noop
	}

	p.nextCallID++
	node := &CallNode{
		ID:       p.nextCallID,
		Label:    label,
		Module:   module,
		Func:     label,
		StartMS:  msSince(p.frameStart),
		EntityID: entityID,
		LuaCode:  luaCode,
	}
	if len(p.stack) > 0 {
		node.ParentID = p.stack[len(p.stack)-1].ID
	}
	p.stack = append(p.stack, node)
	start := time.Now()

	return func() {
		node.DurationMS = msSince(start)
		if len(p.stack) > 0 && p.stack[len(p.stack)-1] == node {
			p.stack = p.stack[:len(p.stack)-1]
		}
		if p.current != nil {
			p.current.Calls = append(p.current.Calls, *node)
		}
	}
}

// BeginLuaCallback is Begin specialized for a Lua-to-Go callback (e.g. a
// host API method invoked from a script), mirroring profile_lua_callback.
func (p *Profiler) BeginLuaCallback(module, label, entityID string) func() {
	end := p.Begin(module, label, entityID, false)
	if !p.enabled || p.current == nil {
		return end
	}
	p.stack[len(p.stack)-1].LuaCallback = true
	return end
}

func noop() {}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
