package profiling

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"ams-engine/internal/config"
)

// FrameSink receives completed FrameProfiles. The zero value of most
// implementations should not be used directly; construct via New* funcs.
type FrameSink interface {
	EmitFrame(frame FrameProfile)
	Close() error
}

// NullSink discards every frame. The zero value is ready to use.
type NullSink struct{}

func (NullSink) EmitFrame(FrameProfile) {}
func (NullSink) Close() error           { return nil }

// FileFrameSink writes one NDJSON "frame" record per emitted frame to a
// session file under the configured log directory, using the same
// zerolog-over-a-plain-file pattern as the rollback package's logger.
type FileFrameSink struct {
	out *os.File
	log zerolog.Logger
}

// NewFileFrameSink creates the session's log directory if needed and opens
// "<sessionName>.profile.jsonl" for NDJSON output.
func NewFileFrameSink(logDir, sessionName string) (*FileFrameSink, error) {
	if sessionName == "" {
		sessionName = time.Now().Format("20060102_150405")
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(filepath.Join(logDir, sessionName+".profile.jsonl"))
	if err != nil {
		return nil, err
	}

	s := &FileFrameSink{
		out: f,
		log: zerolog.New(f).With().Timestamp().Logger(),
	}
	s.log.Log().Str("type", "header").Str("session", sessionName).Msg("profiling session started")
	return s, nil
}

// EmitFrame writes a single frame record, flattening its calls and
// rollback event into the JSON object the inspector UI reads.
func (s *FileFrameSink) EmitFrame(frame FrameProfile) {
	calls := make([]map[string]interface{}, len(frame.Calls))
	for i, c := range frame.Calls {
		calls[i] = map[string]interface{}{
			"id":           c.ID,
			"parent_id":    c.ParentID,
			"label":        c.Label,
			"module":       c.Module,
			"func":         c.Func,
			"start":        c.StartMS,
			"duration":     c.DurationMS,
			"entity_id":    c.EntityID,
			"lua_code":     c.LuaCode,
			"lua_callback": c.LuaCallback,
		}
	}

	evt := s.log.Log().
		Str("type", "frame").
		Int("frame", frame.Frame).
		Time("timestamp", frame.Timestamp).
		Float64("duration_ms", frame.DurationMS).
		Interface("calls", calls)

	if frame.Rollback != nil {
		evt = evt.
			Bool("rollback_triggered", true).
			Time("rollback_target_timestamp", frame.Rollback.TargetTimestamp).
			Int("rollback_frames_resimulated", frame.Rollback.FramesResimulated).
			Float64("rollback_snapshot_age_ms", frame.Rollback.SnapshotAgeMS)
	}
	evt.Msg("")
}

// Close writes a footer record and closes the underlying file.
func (s *FileFrameSink) Close() error {
	s.log.Log().Str("type", "footer").Msg("profiling session ended")
	return s.out.Close()
}

// NewProfiler builds a Profiler wired to the session's configured sink
// and enabled state: AMS_LOGGING_PROFILE_ENABLED gates both. Callers can
// call its methods unconditionally whether or not profiling is active.
func NewProfiler(cfg *config.EnvConfig, sessionName string) *Profiler {
	if cfg == nil || !cfg.ProfileLoggingEnabled {
		return New(NullSink{})
	}

	sink, err := NewFileFrameSink(cfg.LogDir, sessionName)
	if err != nil {
		p := New(NullSink{})
		p.Enable()
		return p
	}
	p := New(sink)
	p.Enable()
	return p
}
