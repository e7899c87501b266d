// Package rollback captures periodic snapshots of an engine's live state
// so a hit that arrives with detection latency can be applied against the
// state it actually occurred in, then the engine re-simulated forward to
// the present.
package rollback

import (
	"time"

	"ams-engine/internal/engine"
)

// GameSnapshot is a complete, self-contained copy of engine state at one
// point in time, plus the wall-clock and frame bookkeeping the manager
// needs to locate it later. engine.EngineState already deep-clones
// entities on capture, so a snapshot never shares state with the live
// engine.
type GameSnapshot struct {
	FrameNumber int
	WallTime    time.Time

	engine.EngineState
}

// EntityCount returns the number of entities captured, alive or dead.
func (s *GameSnapshot) EntityCount() int { return len(s.Entities) }

// AliveEntityCount returns the number of captured entities still alive.
func (s *GameSnapshot) AliveEntityCount() int {
	n := 0
	for _, ent := range s.Entities {
		if ent.Alive {
			n++
		}
	}
	return n
}
