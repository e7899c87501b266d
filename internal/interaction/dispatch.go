package interaction

import (
	"ams-engine/internal/luaengine"
)

// dispatch invokes a fired interaction's declared collision_action
// script, execute(a_id, b_id, modifier, context), the richer four-
// argument signature used whenever the target isn't a plain collision
// pair (system entity targets, filtered/triggered interactions). This
// runs alongside, not instead of, the on_hit behaviour hook evaluatePair
// fires on both participants — collision_action and on_hit are distinct
// script contracts with distinct signatures, not two names for the same
// dispatch.
func (e *Engine) dispatch(action, sourceID, targetID string, modifier map[string]interface{}, trigger, target string, dt, distance, angle float64, hasGeometry bool) {
	if action == "" {
		return
	}
	if !e.runtime.HasMethod(luaengine.ScriptCollisionAction, action, "execute") {
		e.log.Warn().Str("action", action).Msg("interaction action not registered")
		return
	}

	modVal, err := luaengine.FromGo(modifier)
	if err != nil {
		modVal = luaengine.Map(nil)
	}

	ctx := map[string]interface{}{
		"trigger": trigger,
		"target":  target,
		"dt":      dt,
	}
	if hasGeometry {
		ctx["distance"] = distance
		ctx["angle"] = angle
	}
	ctxVal, err := luaengine.FromGo(ctx)
	if err != nil {
		ctxVal = luaengine.Map(nil)
	}

	if _, err := e.runtime.Invoke(luaengine.ScriptCollisionAction, action, "execute",
		luaengine.String(sourceID), luaengine.String(targetID), modVal, ctxVal); err != nil {
		e.log.Warn().Str("action", action).Str("source", sourceID).Str("target", targetID).Err(err).Msg("interaction action failed")
	}
}
