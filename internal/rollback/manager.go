package rollback

import (
	"time"

	"github.com/rs/zerolog"

	"ams-engine/internal/engine"
	"ams-engine/internal/logging"
	"ams-engine/internal/profiling"
)

// RollbackThreshold is the default latency below which a delayed input is
// applied at the live state instead of triggering a rollback.
const RollbackThreshold = 100 * time.Millisecond

// RollbackResult reports the outcome of ProcessDelayedInput.
type RollbackResult struct {
	Success           bool
	RolledBack        bool // false when the input was applied at live state instead
	FramesResimulated int
	SnapshotAge       time.Duration
	Err               error
}

// Manager captures periodic GameSnapshots of an Engine and can restore and
// re-simulate from one of them, the mechanism a host uses to correctly
// place an input that arrives describing something that happened in the
// past (e.g. a detector reporting a hit a few frames after it occurred).
type Manager struct {
	log zerolog.Logger
	eng *engine.Engine

	fps              int
	snapshotInterval int
	threshold        time.Duration
	historyDuration  time.Duration

	snapshots    *ringBuffer
	frameCounter int

	logger   StateLogger
	profiler *profiling.Profiler

	totalCaptures  int
	totalRollbacks int
	frameSeq       int
}

// NewManager builds a manager bound to eng. historyDuration is how far
// back the ring buffer can reach; fps is the fixed frame rate the engine
// ticks at; snapshotInterval captures every Nth call to Capture (1 =
// every frame).
func NewManager(eng *engine.Engine, historyDuration time.Duration, fps int, snapshotInterval int) *Manager {
	if fps < 1 {
		fps = 60
	}
	if snapshotInterval < 1 {
		snapshotInterval = 1
	}
	capacity := int(historyDuration.Seconds() * float64(fps) / float64(snapshotInterval))
	if capacity < 1 {
		capacity = 1
	}
	return &Manager{
		log:             logging.For("rollback"),
		eng:             eng,
		fps:             fps,
		snapshotInterval: snapshotInterval,
		threshold:       RollbackThreshold,
		historyDuration: historyDuration,
		snapshots:       newRingBuffer(capacity),
		logger:          NullLogger{},
	}
}

// SetThreshold overrides the default rollback-skip latency threshold.
func (m *Manager) SetThreshold(d time.Duration) { m.threshold = d }

// SetLogger attaches a snapshot/rollback event sink; nil restores the
// no-op logger.
func (m *Manager) SetLogger(l StateLogger) {
	if l == nil {
		l = NullLogger{}
	}
	m.logger = l
}

// SetProfiler attaches a profiler. Manager.Tick brackets each live frame
// with BeginFrame/EndFrame on it, and a rollback records itself against
// whichever frame is open when it occurs; nil detaches it.
func (m *Manager) SetProfiler(p *profiling.Profiler) { m.profiler = p }

// SnapshotCount returns the number of snapshots currently retained.
func (m *Manager) SnapshotCount() int { return m.snapshots.len() }

// MaxSnapshots returns the ring buffer's capacity.
func (m *Manager) MaxSnapshots() int { return m.snapshots.capacity() }

// OldestTimestamp returns the wall time of the oldest retained snapshot.
func (m *Manager) OldestTimestamp() (time.Time, bool) {
	s := m.snapshots.oldest()
	if s == nil {
		return time.Time{}, false
	}
	return s.WallTime, true
}

// NewestTimestamp returns the wall time of the newest retained snapshot.
func (m *Manager) NewestTimestamp() (time.Time, bool) {
	s := m.snapshots.newest()
	if s == nil {
		return time.Time{}, false
	}
	return s.WallTime, true
}

// CanRollbackTo reports whether t falls within the currently retained
// snapshot window.
func (m *Manager) CanRollbackTo(t time.Time) bool {
	oldest := m.snapshots.oldest()
	return oldest != nil && !oldest.WallTime.After(t)
}

// Capture records the engine's current state as a new snapshot, obeying
// the configured capture interval unless force is set. Returns nil when
// the interval skipped this call.
func (m *Manager) Capture(force bool) *GameSnapshot {
	m.frameCounter++
	if !force && m.frameCounter%m.snapshotInterval != 0 {
		return nil
	}

	snap := &GameSnapshot{
		FrameNumber: m.frameCounter,
		WallTime:    time.Now(),
		EngineState: m.eng.CaptureState(),
	}
	m.snapshots.push(snap)
	m.totalCaptures++
	m.logger.LogSnapshot(snap)
	return snap
}

// Tick captures a snapshot (respecting the capture interval) and then
// runs one frame of the engine, mirroring the live game loop's
// capture-then-update ordering so a rollback always has a snapshot from
// immediately before the frame it needs to undo. Returns the engine's
// win-condition result for this frame.
func (m *Manager) Tick(dt float64) bool {
	m.frameSeq++
	m.Capture(false)
	if m.profiler != nil {
		m.profiler.BeginFrame(m.frameSeq)
	}
	won := m.eng.Tick(dt)
	if m.profiler != nil {
		m.profiler.EndFrame()
	}
	return won
}

// FindSnapshot returns the newest retained snapshot whose wall time is at
// or before t, or nil if none qualifies (t predates the whole window).
func (m *Manager) FindSnapshot(t time.Time) *GameSnapshot {
	var best *GameSnapshot
	for i := 0; i < m.snapshots.len(); i++ {
		s := m.snapshots.at(i)
		if s.WallTime.After(t) {
			break
		}
		best = s
	}
	return best
}

// Restore replaces the engine's live state with snap's.
func (m *Manager) Restore(snap *GameSnapshot) {
	m.eng.RestoreState(snap.EngineState)
}

// resimulate re-runs the engine from fromElapsed to toElapsed using the
// same fixed-dt Tick the live loop uses, skipping snapshot capture so
// re-simulation never pollutes the rollback window with speculative
// frames. A hard frame cap guards against an unreachable target (e.g.
// toElapsed computed from a clock that jumped backward).
func (m *Manager) resimulate(fromElapsed, toElapsed float64) int {
	dt := 1.0 / float64(m.fps)
	frames := 0
	elapsed := fromElapsed
	limit := int(float64(m.fps)*m.historyDuration.Seconds()*2) + 1

	for elapsed < toElapsed {
		m.eng.Tick(dt)
		elapsed += dt
		frames++
		if frames > limit {
			break
		}
	}
	return frames
}

// RollbackAndResimulate restores state from the newest snapshot at or
// before targetTimestamp, applies applyInput against that restored
// state, then re-simulates forward to now. This is the core of late-input
// processing: fixed-dt frames are replayed via the same Tick the live
// loop uses, so resimulation reproduces exactly what the live loop would
// have produced had the input arrived on time — provided script-visible
// randomness is seeded from game time (or a snapshotted seed) and never
// reads wall time directly.
func (m *Manager) RollbackAndResimulate(targetTimestamp time.Time, applyInput func(), now time.Time) RollbackResult {
	snap := m.FindSnapshot(targetTimestamp)
	if snap == nil {
		return RollbackResult{Success: false, Err: errNoSnapshot(targetTimestamp)}
	}

	age := targetTimestamp.Sub(snap.WallTime)

	m.Restore(snap)
	applyInput()

	toElapsed := snap.ElapsedTime + now.Sub(snap.WallTime).Seconds()
	frames := m.resimulate(snap.ElapsedTime, toElapsed)

	m.totalRollbacks++
	m.logger.LogRollback(targetTimestamp, snap.FrameNumber, frames)
	if m.profiler != nil {
		m.profiler.RecordRollback(frames, targetTimestamp, float64(age.Microseconds())/1000.0)
	}

	return RollbackResult{
		Success:           true,
		RolledBack:        true,
		FramesResimulated: frames,
		SnapshotAge:       age,
	}
}

// ProcessDelayedInput is the entry point for an input carrying a real
// past timestamp (hitTimestamp): recent inputs apply directly against
// live state; older ones roll back to the nearest snapshot, apply there,
// and re-simulate forward; inputs older than the whole retained window
// fall back to applying at live state, same as a recent input.
func (m *Manager) ProcessDelayedInput(applyInput func(), hitTimestamp, now time.Time) RollbackResult {
	latency := now.Sub(hitTimestamp)

	if latency <= m.threshold {
		applyInput()
		return RollbackResult{Success: true}
	}

	if !m.CanRollbackTo(hitTimestamp) {
		applyInput()
		return RollbackResult{Success: true}
	}

	return m.RollbackAndResimulate(hitTimestamp, applyInput, now)
}

// Clear discards every retained snapshot and resets the frame counter.
func (m *Manager) Clear() {
	m.snapshots.clear()
	m.frameCounter = 0
}

// Stats summarizes manager state, useful for debug overlays and tests.
type Stats struct {
	SnapshotCount  int
	MaxSnapshots   int
	TimeSpan       time.Duration
	OldestFrame    int
	NewestFrame    int
	TotalCaptures  int
	TotalRollbacks int
	FrameCounter   int
}

// Stats reports current buffer occupancy and lifetime counters.
func (m *Manager) Stats() Stats {
	var span time.Duration
	var oldestFrame, newestFrame int
	if m.snapshots.len() >= 2 {
		span = m.snapshots.newest().WallTime.Sub(m.snapshots.oldest().WallTime)
	}
	if old := m.snapshots.oldest(); old != nil {
		oldestFrame = old.FrameNumber
	}
	if newest := m.snapshots.newest(); newest != nil {
		newestFrame = newest.FrameNumber
	}
	return Stats{
		SnapshotCount:  m.snapshots.len(),
		MaxSnapshots:   m.snapshots.capacity(),
		TimeSpan:       span,
		OldestFrame:    oldestFrame,
		NewestFrame:    newestFrame,
		TotalCaptures:  m.totalCaptures,
		TotalRollbacks: m.totalRollbacks,
		FrameCounter:   m.frameCounter,
	}
}
