// Package interaction evaluates the declarative interaction clauses an
// entity type's recipe (and its behaviour bundles) attach to a target —
// another entity type, a base type, or one of the fixed system entities
// pointer/screen/time/game/level. It implements engine.InteractionRunner
// so internal/engine can sync and evaluate it each tick without importing
// this package back.
package interaction

import (
	"github.com/rs/zerolog"

	"ams-engine/internal/engine"
	"ams-engine/internal/entity"
	"ams-engine/internal/gamedef"
	"ams-engine/internal/logging"
	"ams-engine/internal/luaengine"
)

// system entity names the interaction engine always recognizes as
// targets, even when no matching live entity exists.
const (
	systemPointer = "pointer"
	systemScreen  = "screen"
	systemTime    = "time"
	systemGame    = "game"
	systemLevel   = "level"
)

var systemNames = map[string]bool{
	systemPointer: true,
	systemScreen:  true,
	systemTime:    true,
	systemGame:    true,
	systemLevel:   true,
}

// Engine holds the synced projection of live entities plus the system
// entities, and the per-pair trigger state carried across ticks.
type Engine struct {
	log     zerolog.Logger
	runtime *luaengine.Runtime
	types   *entity.TypeRegistry
	hits    engine.HitDispatcher

	entities   []engine.EntitySnapshot
	prevTypeOf map[entity.ID]string
	byType     map[string][]int // index into entities, keyed by Type and BaseType

	pointer          engine.PointerState
	screenW, screenH float64
	elapsed          float64

	// triggerState[sourceID][targetKey][clauseIndex] is the filter's
	// truth value as of the previous tick.
	triggerState map[entity.ID]map[string]map[int]bool
}

// NewEngine builds an interaction engine bound to a script runtime (for
// dispatching actions), the game's resolved entity types (for reading
// each type's interaction clauses), and a HitDispatcher that fires each
// participant's on_hit behaviour hook once a pair's trigger condition
// fires.
func NewEngine(runtime *luaengine.Runtime, types *entity.TypeRegistry, hits engine.HitDispatcher) *Engine {
	return &Engine{
		log:          logging.For("interaction"),
		runtime:      runtime,
		types:        types,
		hits:         hits,
		prevTypeOf:   make(map[entity.ID]string),
		triggerState: make(map[entity.ID]map[string]map[int]bool),
	}
}

// Sync updates the entity projection and system-entity state for this
// tick. An entity whose Type changed since the last sync (a transform
// rewrote it) has its trigger state cleared so every interaction newly
// applicable to it fires an "enter" edge.
func (e *Engine) Sync(entities []engine.EntitySnapshot, pointer engine.PointerState, screenW, screenH, elapsed float64) {
	e.entities = entities
	e.pointer = pointer
	e.screenW, e.screenH = screenW, screenH
	e.elapsed = elapsed

	e.byType = make(map[string][]int, len(entities)*2)
	seen := make(map[entity.ID]bool, len(entities))
	for i, ent := range entities {
		e.byType[ent.Type] = append(e.byType[ent.Type], i)
		if ent.BaseType != "" && ent.BaseType != ent.Type {
			e.byType[ent.BaseType] = append(e.byType[ent.BaseType], i)
		}
		seen[ent.ID] = true

		if prev, ok := e.prevTypeOf[ent.ID]; ok && prev != ent.Type {
			delete(e.triggerState, ent.ID)
		}
		e.prevTypeOf[ent.ID] = ent.Type
	}

	for id := range e.prevTypeOf {
		if !seen[id] {
			delete(e.prevTypeOf, id)
			delete(e.triggerState, id)
		}
	}
}

// Evaluate runs the interaction pass for this tick: for every live source
// entity, in insertion order, every interaction clause attached to its
// resolved type is checked against each matching target, in the target's
// insertion order, and dispatched on a trigger-mode match.
func (e *Engine) Evaluate(dt float64) {
	for _, source := range e.entities {
		rt, err := e.types.Resolve(source.Type)
		if err != nil || len(rt.Interactions) == 0 {
			continue
		}
		for _, target := range rt.InteractionOrder {
			e.evaluateTarget(source, target, rt.Interactions[target], dt)
		}
	}
}

func (e *Engine) evaluateTarget(source engine.EntitySnapshot, target string, clauses []gamedef.InteractionDoc, dt float64) {
	if systemNames[target] {
		attrs := e.systemAttrs(target)
		for i, clause := range clauses {
			e.evaluatePair(source, target, attrs, nil, i, clause, dt)
		}
		return
	}

	for _, idx := range e.byType[target] {
		t := e.entities[idx]
		if t.ID == source.ID {
			continue
		}
		attrs := entityAttrs(t)
		for i, clause := range clauses {
			e.evaluatePair(source, string(t.ID), attrs, &t, i, clause, dt)
		}
	}
}

func (e *Engine) systemAttrs(target string) map[string]interface{} {
	switch target {
	case systemPointer:
		return map[string]interface{}{"x": e.pointer.X, "y": e.pointer.Y, "active": e.pointer.Active}
	case systemScreen:
		return map[string]interface{}{"width": e.screenW, "height": e.screenH}
	case systemTime:
		return map[string]interface{}{"elapsed": e.elapsed}
	default:
		// "game" and "level" carry no engine-projected attributes yet;
		// a filter naming them can still match on trigger alone.
		return map[string]interface{}{}
	}
}

// evaluatePair checks one (source, target, clause) triple: computes the
// geometry filters can reference, evaluates the clause's filter, folds
// the result through the trigger-mode state machine, and dispatches the
// clause's action on a match. targetEntity is nil for a system target
// (pointer/screen/time/game/level); when it names a real entity, both
// participants' on_hit behaviour hooks fire alongside the clause's
// declared action script.
func (e *Engine) evaluatePair(source engine.EntitySnapshot, targetKey string, targetAttrs map[string]interface{}, targetEntity *engine.EntitySnapshot, clauseIndex int, clause gamedef.InteractionDoc, dt float64) {
	sourceAttrs := entityAttrs(source)

	tx, _ := targetAttrs["x"].(float64)
	ty, _ := targetAttrs["y"].(float64)
	tw, _ := targetAttrs["width"].(float64)
	th, _ := targetAttrs["height"].(float64)
	distance, angle := distanceAndAngle(source.X, source.Y, source.W, source.H, tx, ty, tw, th)

	matched, err := e.evalFilter(clause.Filter, distance, angle, sourceAttrs, targetAttrs)
	if err != nil {
		e.log.Warn().Str("target", targetKey).Err(err).Msg("interaction filter evaluation failed")
		return
	}

	mode := clause.Trigger
	if mode == "" {
		mode = "continuous"
	}
	if !e.triggerFired(source.ID, targetKey, clauseIndex, mode, matched) {
		return
	}

	if e.hits != nil && targetEntity != nil {
		e.hits.DispatchHit(string(source.ID), string(targetEntity.ID), targetEntity.Type, targetEntity.BaseType)
		e.hits.DispatchHit(string(targetEntity.ID), string(source.ID), source.Type, source.BaseType)
	}

	e.dispatch(clause.Action, string(source.ID), targetKey, clause.Modifier, mode, targetKey, dt, distance, angle, true)
}

func entityAttrs(t engine.EntitySnapshot) map[string]interface{} {
	attrs := map[string]interface{}{
		"x": t.X, "y": t.Y, "width": t.W, "height": t.H,
		"type": t.Type, "base_type": t.BaseType,
	}
	for k, v := range t.Properties {
		attrs[k] = v
	}
	return attrs
}
