package entity

import (
	"fmt"
	"math"
)

// PropertyResolver evaluates the two dynamic property forms a spawn spec
// may use: a call into a named generator script, or a raw Lua expression.
// It is implemented by the runtime layer and injected here so this
// package never imports luaengine.
type PropertyResolver interface {
	CallGenerator(name string, args map[string]interface{}) (interface{}, error)
	EvalExpr(expr string) (interface{}, error)
}

// ResolveProperties evaluates a spawn spec's properties mapping against a
// parent entity: literal values pass through unchanged, "$property"
// references read the named field off parent, {call: <generator>, args:
// ...} dispatches through resolver, and {lua: <expr>} evaluates a raw
// expression.
func ResolveProperties(props map[string]interface{}, parent *Entity, resolver PropertyResolver) (map[string]interface{}, error) {
	if props == nil {
		return nil, nil
	}
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		resolved, err := resolveOne(v, parent, resolver)
		if err != nil {
			return nil, fmt.Errorf("entity: resolve property %q: %w", k, err)
		}
		out[k] = resolved
	}
	return out, nil
}

func resolveOne(v interface{}, parent *Entity, resolver PropertyResolver) (interface{}, error) {
	switch t := v.(type) {
	case string:
		if name, ok := propertyRef(t); ok {
			return parentField(parent, name), nil
		}
		return t, nil
	case map[string]interface{}:
		if call, ok := t["call"].(string); ok {
			args, _ := t["args"].(map[string]interface{})
			return resolver.CallGenerator(call, args)
		}
		if expr, ok := t["lua"].(string); ok {
			return resolver.EvalExpr(expr)
		}
		return t, nil
	default:
		return v, nil
	}
}

func propertyRef(s string) (string, bool) {
	const prefix = "$"
	if len(s) < 2 || s[0] != prefix[0] || s[1] == '{' {
		return "", false
	}
	// reserved prefixes handled elsewhere ($config.) are not property refs
	if len(s) > len("$config.") && s[:len("$config.")] == "$config." {
		return "", false
	}
	return s[1:], true
}

// parentField reads a named built-in field off the parent entity,
// falling back to its dynamic Properties map for anything else.
func parentField(parent *Entity, name string) interface{} {
	if parent == nil {
		return nil
	}
	switch name {
	case "x":
		return parent.X
	case "y":
		return parent.Y
	case "vx":
		return parent.VX
	case "vy":
		return parent.VY
	case "width":
		return parent.W
	case "height":
		return parent.H
	case "health":
		return parent.Health
	case "color":
		return parent.Color
	case "sprite":
		return parent.Sprite
	default:
		if parent.Properties != nil {
			return parent.Properties[name]
		}
		return nil
	}
}

// ResolveSpawnVelocity implements the host-side speed/angle shortcut: if
// properties contain both speed and angle, they are resolved host-side
// into vx/vy, duplicating the common script-side logic so resimulation
// doesn't race on floating-point order of operations. Returns ok=false
// when either field is absent or not numeric, leaving vx/vy to the
// caller (presumably already set or zero).
func ResolveSpawnVelocity(props map[string]interface{}) (vx, vy float64, ok bool) {
	speed, sOK := asFloat(props["speed"])
	angle, aOK := asFloat(props["angle"])
	if !sOK || !aOK {
		return 0, 0, false
	}
	return speed * math.Cos(angle), speed * math.Sin(angle), true
}

func asFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

// CollectDescendants performs a breadth-first walk of root's children
// tree using childrenOf to expand each node, used by orphan handling on
// destroy.
func CollectDescendants(root ID, childrenOf func(ID) []ID) []ID {
	var out []ID
	queue := append([]ID(nil), childrenOf(root)...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		out = append(out, id)
		queue = append(queue, childrenOf(id)...)
	}
	return out
}
