// Package script loads and validates script bundles — the YAML documents
// that wrap a Lua source string alongside metadata. It never executes
// code; execution belongs to internal/luaengine.
package script

import (
	"ams-engine/internal/luaengine"
)

// Metadata describes one loaded script, independent of whether it has
// been registered with a runtime yet.
type Metadata struct {
	Name        string
	Type        luaengine.ScriptType
	Source      string
	Description string
	Version     string
	Author      string
	Tags        []string
	Config      map[string]interface{}
	Args        map[string]interface{}
	Requires    []string
	Provides    []string
	Examples    []string
	// Origin is the file path the script was loaded from, or "inline"
	// when it came from an embedded game-definition mapping.
	Origin string
}

// validTypes are the four `type:` values a script document may declare.
// luaengine.ScriptInteractionAction has no document form of its own — the
// interaction engine invokes a collision_action script's execute() with
// the richer (a_id, b_id, modifier, context) signature when the target
// is not a plain collision pair.
var validTypes = map[string]luaengine.ScriptType{
	string(luaengine.ScriptBehavior):        luaengine.ScriptBehavior,
	string(luaengine.ScriptCollisionAction): luaengine.ScriptCollisionAction,
	string(luaengine.ScriptGenerator):       luaengine.ScriptGenerator,
	string(luaengine.ScriptInputAction):     luaengine.ScriptInputAction,
}
