package rollback

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"ams-engine/internal/config"
)

// StateLogger records snapshot and rollback events for post-mortem replay
// debugging. Disabled by default (NullLogger); enable via
// AMS_LOGGING_ROLLBACK_ENABLED so normal play never pays for it.
type StateLogger interface {
	LogSnapshot(snap *GameSnapshot) bool
	LogRollback(target time.Time, restoredFrame, framesResimulated int)
	Close() error
}

// NullLogger discards every event. The zero value is ready to use.
type NullLogger struct{}

func (NullLogger) LogSnapshot(*GameSnapshot) bool                       { return false }
func (NullLogger) LogRollback(time.Time, int, int)                      {}
func (NullLogger) Close() error                                        { return nil }

// FileStateLogger writes one NDJSON record per logged event to a session
// file under the configured log directory, via the same zerolog sink the
// rest of the engine uses for structured logging — a plain JSON writer
// here instead of the console writer gives one compact object per line.
type FileStateLogger struct {
	out          *os.File
	log          zerolog.Logger
	interval     int
	snapshotSeen int
	logged       int
}

// NewFileStateLogger creates the session's log directory if needed and
// opens "<sessionName>.jsonl" for NDJSON output, writing a header record
// immediately.
func NewFileStateLogger(logDir, sessionName string, interval int) (*FileStateLogger, error) {
	if interval < 1 {
		interval = 1
	}
	if sessionName == "" {
		sessionName = time.Now().Format("20060102_150405")
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(filepath.Join(logDir, sessionName+".jsonl"))
	if err != nil {
		return nil, err
	}

	l := &FileStateLogger{
		out:      f,
		log:      zerolog.New(f).With().Timestamp().Logger(),
		interval: interval,
	}
	l.log.Log().Str("type", "header").Str("session", sessionName).Int("log_interval", interval).Msg("rollback session started")
	return l, nil
}

// LogSnapshot writes a snapshot record, obeying the configured interval.
// Returns false when this call was skipped by the interval.
func (l *FileStateLogger) LogSnapshot(snap *GameSnapshot) bool {
	l.snapshotSeen++
	if l.snapshotSeen%l.interval != 0 {
		return false
	}

	l.log.Log().
		Str("type", "snapshot").
		Int("frame_number", snap.FrameNumber).
		Float64("elapsed_time", snap.ElapsedTime).
		Int("score", snap.Score).
		Int("lives", snap.Lives).
		Str("internal_state", snap.StateTag).
		Int("entity_count", snap.EntityCount()).
		Int("alive_entity_count", snap.AliveEntityCount()).
		Int("log_index", l.logged).
		Msg("")
	l.logged++
	return true
}

// LogRollback writes a rollback event record.
func (l *FileStateLogger) LogRollback(target time.Time, restoredFrame, framesResimulated int) {
	l.log.Log().
		Str("type", "rollback").
		Time("target_timestamp", target).
		Int("restored_frame", restoredFrame).
		Int("frames_resimulated", framesResimulated).
		Int("log_index", l.logged).
		Msg("")
	l.logged++
}

// Close writes a footer record and closes the underlying file.
func (l *FileStateLogger) Close() error {
	l.log.Log().Str("type", "footer").Int("total_snapshots", l.snapshotSeen).Int("logged_snapshots", l.logged).Msg("rollback session ended")
	return l.out.Close()
}

// CreateLogger returns a FileStateLogger when AMS_LOGGING_ROLLBACK_ENABLED
// is set, otherwise a NullLogger — callers can log unconditionally
// without checking whether logging is actually enabled.
func CreateLogger(cfg *config.EnvConfig, sessionName string) StateLogger {
	if cfg == nil || !cfg.RollbackLogEnabled {
		return NullLogger{}
	}
	l, err := NewFileStateLogger(cfg.LogDir, sessionName, cfg.RollbackLogInterval)
	if err != nil {
		return NullLogger{}
	}
	return l
}
