package engine

import "ams-engine/internal/entity"

// EngineState is a deep copy of every field a rollback manager needs to
// save and later restore: the full entity map (alive and dead), spawn
// order (restored verbatim so map iteration elsewhere stays
// insertion-ordered and deterministic), and the remaining scalar game
// state. internal/rollback is the only caller.
type EngineState struct {
	Entities map[entity.ID]*entity.Entity
	Order    []entity.ID

	Score       int
	Lives       int
	ElapsedTime float64
	StateTag    string

	Scheduled []ScheduledCallback

	// RNGState is the splitmix64 state backing ams.random/ams.random_range
	// at the moment of capture. Restoring it puts script-visible
	// randomness back exactly where it was, so a rollback resimulation
	// draws the same sequence the original live run did.
	RNGState uint64
}

// CaptureState returns a deep copy of the engine's live state, safe to
// retain after this call returns (no entity pointer is shared with the
// live map).
func (e *Engine) CaptureState() EngineState {
	entities := make(map[entity.ID]*entity.Entity, len(e.entities))
	for id, ent := range e.entities {
		entities[id] = ent.Clone()
	}
	return EngineState{
		Entities:    entities,
		Order:       append([]entity.ID(nil), e.order...),
		Score:       e.score,
		Lives:       e.lives,
		ElapsedTime: e.elapsedTime,
		StateTag:    e.stateTag,
		Scheduled:   append([]ScheduledCallback(nil), e.scheduled...),
		RNGState:    e.rngSrc.state,
	}
}

// RestoreState replaces the engine's live state with a deep copy of s.
// Entities present only in the live map before this call are dropped;
// entities present only in s reappear with their snapshotted fields,
// whether or not they were destroyed in the meantime. Scripts never hold
// a raw entity pointer (only the identifier-keyed HostAPI), so wholesale
// replacement of the entity map is equivalent to (and simpler than)
// restoring each entity's fields in place.
func (e *Engine) RestoreState(s EngineState) {
	entities := make(map[entity.ID]*entity.Entity, len(s.Entities))
	for id, ent := range s.Entities {
		entities[id] = ent.Clone()
	}
	e.entities = entities
	e.order = append([]entity.ID(nil), s.Order...)
	e.score = s.Score
	e.lives = s.Lives
	e.elapsedTime = s.ElapsedTime
	e.stateTag = s.StateTag
	e.scheduled = append([]ScheduledCallback(nil), s.Scheduled...)
	e.rngSrc.state = s.RNGState
}
