package engine

// FrameProfiler is implemented by *profiling.Profiler. A small interface
// defined here (rather than importing internal/profiling directly) keeps
// this package free of a dependency on it, mirroring the InteractionRunner
// and HostAPI pattern. Frame-level BeginFrame/EndFrame bracketing lives one
// layer up, around the call to Tick (see internal/rollback's Manager.Tick);
// within a tick, Begin marks the individual sections worth timing.
type FrameProfiler interface {
	Begin(module, label, entityID string, luaCode bool) func()
}

// SetProfiler wires a profiler into this Engine's tick pipeline; nil
// detaches it. Safe to leave unset — Tick checks for nil before use.
func (e *Engine) SetProfiler(p FrameProfiler) {
	e.profiler = p
}

// timed runs fn, recording it as a profiled section when a profiler is
// attached. A no-op wrapper (not even a function call into the profiler)
// when none is set, so unprofiled play pays nothing for this.
func (e *Engine) timed(module, label string, fn func()) {
	if e.profiler == nil {
		fn()
		return
	}
	end := e.profiler.Begin(module, label, "", false)
	fn()
	end()
}
