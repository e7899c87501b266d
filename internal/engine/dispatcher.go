package engine

import (
	"ams-engine/internal/entity"
	"ams-engine/internal/luaengine"
)

// dispatchLifecycle bridges one entity event to every attached
// behaviour's script method, in declared order, catching errors per
// behaviour so one failing script never aborts the rest. extra are
// appended after the entity id, matching each event's documented method
// signature.
func (e *Engine) dispatchLifecycle(ent *entity.Entity, method string, extra ...luaengine.Value) {
	for _, behavior := range ent.Behaviors {
		if !e.runtime.HasMethod(luaengine.ScriptBehavior, behavior, method) {
			continue
		}
		var end func()
		if e.profiler != nil {
			end = e.profiler.Begin("luaengine", behavior+"."+method, string(ent.ID), true)
		}
		args := append([]luaengine.Value{luaengine.String(string(ent.ID))}, extra...)
		if _, err := e.runtime.Invoke(luaengine.ScriptBehavior, behavior, method, args...); err != nil {
			e.log.Warn().Str("entity", string(ent.ID)).Str("behavior", behavior).Str("method", method).Err(err).Msg("behavior hook failed")
		}
		if end != nil {
			end()
		}
	}
}

// DispatchHit fires the on_hit(id, other_id, other_type, other_base_type)
// behaviour hook on id. Called once per collision or interaction pair
// that fires, independent of any collision_action/interaction action
// script the same pair also declares — on_hit is a distinct behaviour-
// script hook, not an alternate name for that dispatch.
func (e *Engine) DispatchHit(id, otherID, otherType, otherBaseType string) {
	ent := e.Get(entity.ID(id))
	if ent == nil {
		return
	}
	e.dispatchLifecycle(ent, "on_hit", luaengine.String(otherID), luaengine.String(otherType), luaengine.String(otherBaseType))
}

// dispatchScheduledCallback invokes a user-named method scheduled via
// ams.schedule.
func (e *Engine) dispatchScheduledCallback(cb ScheduledCallback) {
	ent, ok := e.entities[cb.EntityID]
	if !ok || !ent.Alive {
		return
	}
	e.dispatchLifecycle(ent, cb.Callback)
}
