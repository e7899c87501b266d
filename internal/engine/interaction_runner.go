package engine

import "ams-engine/internal/entity"

// EntitySnapshot is the read-only projection of one live entity's
// attributes the interaction engine needs each tick.
type EntitySnapshot struct {
	ID       entity.ID
	Type     string
	BaseType string
	X, Y     float64
	W, H     float64
	Tags     map[string]bool
	Properties map[string]interface{}
}

// PointerState is the "pointer" system entity's projection: current
// input position and whether it is currently active (e.g.
// pressed/touched).
type PointerState struct {
	X, Y   float64
	Active bool
}

// InteractionRunner is implemented by internal/interaction's Engine. A
// small interface defined here (rather than importing internal/interaction
// directly) keeps this package free of a dependency on it, mirroring the
// HostAPI pattern luaengine uses — the interaction engine needs this
// engine's entity state, not the other way around, so only the
// entity-package-side dependency direction is real.
type InteractionRunner interface {
	Sync(entities []EntitySnapshot, pointer PointerState, screenW, screenH, elapsed float64)
	Evaluate(dt float64)
}

// HitDispatcher lets internal/interaction fire the on_hit behaviour hook
// on a real entity once a declarative interaction pair fires, without
// handing that package a live *entity.Entity. Engine implements it; the
// legacy AABB collision pass (tick.go) calls dispatchLifecycle directly
// since it already runs inside this package.
type HitDispatcher interface {
	DispatchHit(id, otherID, otherType, otherBaseType string)
}

// SetInteractionEngine wires the interaction engine this Engine's tick
// pipeline will sync and evaluate.
func (e *Engine) SetInteractionEngine(runner InteractionRunner) {
	e.interactions = runner
}

// SetPointer updates the "pointer" system entity's projection, normally
// called once per tick from the host input-source layer before Tick runs.
func (e *Engine) SetPointer(x, y float64, active bool) {
	e.pointer = PointerState{X: x, Y: y, Active: active}
}

func (e *Engine) snapshotEntities() []EntitySnapshot {
	ids := e.OrderedIDs()
	out := make([]EntitySnapshot, 0, len(ids))
	for _, id := range ids {
		ent := e.entities[id]
		out = append(out, EntitySnapshot{
			ID: ent.ID, Type: ent.Type, BaseType: ent.BaseType,
			X: ent.X, Y: ent.Y, W: ent.W, H: ent.H,
			Tags: ent.Tags, Properties: ent.Properties,
		})
	}
	return out
}
