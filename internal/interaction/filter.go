package interaction

import (
	"fmt"
	"sort"
	"strings"

	"ams-engine/internal/luaengine"
)

// evalFilter reports whether clause's filter currently holds. An empty
// filter is always true (an always-on interaction). The filter is a Lua
// boolean expression evaluated with four injected locals: `distance`,
// `angle`, and the tables `a` (source attributes) and `b` (target
// attributes), reusing the runtime's
// expression evaluator rather than a bespoke Go filter grammar.
func (e *Engine) evalFilter(filter string, distance, angle float64, a, b map[string]interface{}) (bool, error) {
	if strings.TrimSpace(filter) == "" {
		return true, nil
	}

	var sb strings.Builder
	sb.WriteString("local distance = ")
	sb.WriteString(luaNumberLiteral(distance))
	sb.WriteString("\nlocal angle = ")
	sb.WriteString(luaNumberLiteral(angle))
	sb.WriteString("\nlocal a = ")
	sb.WriteString(luaTableLiteral(a))
	sb.WriteString("\nlocal b = ")
	sb.WriteString(luaTableLiteral(b))
	sb.WriteString("\nreturn (")
	sb.WriteString(filter)
	sb.WriteString(")")

	v, err := e.runtime.EvalExpr(sb.String())
	if err != nil {
		return false, err
	}
	return luaTruthy(v), nil
}

// luaTruthy applies Lua's own truthiness rule (everything but nil and
// false is true) to the filter expression's result.
func luaTruthy(v luaengine.Value) bool {
	switch v.Kind() {
	case luaengine.KindNil:
		return false
	case luaengine.KindBool:
		return v.Bool()
	default:
		return true
	}
}

func luaNumberLiteral(f float64) string {
	return fmt.Sprintf("%g", f)
}

// luaTableLiteral renders a flat attributes map as a Lua table
// constructor. Values are restricted to the types attribute maps
// actually carry (numbers, strings, bools); anything else is omitted.
func luaTableLiteral(attrs map[string]interface{}) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(" = ")
		sb.WriteString(luaValueLiteral(attrs[k]))
	}
	sb.WriteString("}")
	return sb.String()
}

func luaValueLiteral(v interface{}) string {
	switch t := v.(type) {
	case string:
		return fmt.Sprintf("%q", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return luaNumberLiteral(t)
	case float32:
		return luaNumberLiteral(float64(t))
	case int:
		return fmt.Sprintf("%d", t)
	case int32:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	default:
		return "nil"
	}
}
