package engine

import (
	"sort"

	"ams-engine/internal/luaengine"
)

// HandleInput applies the game's input_mapping and global_on_input
// configuration against the current pointer state, mirroring the
// original engine's handle_input/_apply_input_mapping: the global action
// (if declared) fires once regardless of entity type, then every entity
// type named in input_mapping has its mapped input_action script's
// execute invoked once per matching live entity. Tick calls this each
// frame the pointer is active; entity types are visited in sorted order
// so two runs over the same mapping dispatch identically.
func (e *Engine) HandleInput() {
	if e.game == nil {
		return
	}

	x, y := e.pointer.X, e.pointer.Y

	if e.game.GlobalOnInput != "" {
		e.dispatchInputAction(e.game.GlobalOnInput, "", x, y)
	}

	if len(e.game.InputMapping) == 0 {
		return
	}

	types := make([]string, 0, len(e.game.InputMapping))
	for typeName := range e.game.InputMapping {
		types = append(types, typeName)
	}
	sort.Strings(types)

	for _, typeName := range types {
		action := e.game.InputMapping[typeName]
		if action == "" {
			continue
		}
		for _, id := range e.EntityIDsOfType(typeName) {
			e.dispatchInputAction(action, string(id), x, y)
		}
	}
}

// dispatchInputAction invokes an input_action script's
// execute(x, y, args), args carrying entity_id when the action targets
// one entity rather than firing globally.
func (e *Engine) dispatchInputAction(action, entityID string, x, y float64) {
	if !e.runtime.HasMethod(luaengine.ScriptInputAction, action, "execute") {
		e.log.Warn().Str("action", action).Msg("input action not registered")
		return
	}

	args := map[string]interface{}{}
	if entityID != "" {
		args["entity_id"] = entityID
	}
	argsVal, err := luaengine.FromGo(args)
	if err != nil {
		argsVal = luaengine.Map(nil)
	}

	if _, err := e.runtime.Invoke(luaengine.ScriptInputAction, action, "execute",
		luaengine.Float(x), luaengine.Float(y), argsVal); err != nil {
		e.log.Warn().Str("action", action).Str("entity", entityID).Err(err).Msg("input action failed")
	}
}
