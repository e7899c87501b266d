package entity

import (
	"strings"

	"ams-engine/internal/gamedef"
)

// expandBehaviors walks rt's declared behaviour list in order, resolving
// each bundle's `$config.<name>` references against rt's per-behaviour
// config overrides (falling back to the bundle's own defaults), and
// merges the resulting interactions into rt.Interactions.
//
// Dominance: a target already present in rt.Interactions before
// expansion was declared directly on the entity type (or inherited via
// extends) and wins outright — a behaviour bundle's clauses for that same
// target are dropped. Otherwise, behaviour-declared clauses for a target
// are concatenated across every behaviour in the entity's list, in
// declared order.
func (r *TypeRegistry) expandBehaviors(rt *ResolvedType) error {
	if rt.Interactions == nil {
		rt.Interactions = make(map[string][]gamedef.InteractionDoc)
	}
	sourceDeclared := make(map[string]bool, len(rt.Interactions))
	for target := range rt.Interactions {
		sourceDeclared[target] = true
	}
	targetOrdered := make(map[string]bool, len(rt.InteractionOrder))
	for _, target := range rt.InteractionOrder {
		targetOrdered[target] = true
	}

	for _, name := range rt.Behaviors {
		bundle, ok := r.bundles[name]
		if !ok {
			continue // an undeclared behaviour bundle is tolerated; scripts may still provide the name directly.
		}
		config := resolveBundleConfig(bundle, rt.BehaviorConfig[name])
		for _, target := range interactionKeyOrder(bundle.InteractionOrder, bundle.Interactions) {
			if sourceDeclared[target] {
				continue
			}
			clauses := bundle.Interactions[target]
			rt.Interactions[target] = append(rt.Interactions[target], substituteClauses(clauses, config)...)
			if !targetOrdered[target] {
				targetOrdered[target] = true
				rt.InteractionOrder = append(rt.InteractionOrder, target)
			}
		}
	}
	return nil
}

// resolveBundleConfig merges a bundle's own config defaults with a
// type's per-behaviour overrides, overrides taking precedence.
func resolveBundleConfig(bundle *gamedef.BehaviorBundleDoc, overrides map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(bundle.Config))
	for name, param := range bundle.Config {
		out[name] = param.Default
	}
	for name, v := range overrides {
		out[name] = v
	}
	return out
}

func substituteClauses(clauses []gamedef.InteractionDoc, config map[string]interface{}) []gamedef.InteractionDoc {
	out := make([]gamedef.InteractionDoc, len(clauses))
	for i, c := range clauses {
		out[i] = gamedef.InteractionDoc{
			Trigger:  c.Trigger,
			Filter:   substituteConfigString(c.Filter, config),
			Action:   c.Action,
			Modifier: substituteConfigMap(c.Modifier, config),
		}
	}
	return out
}

func substituteConfigMap(m map[string]interface{}, config map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = substituteConfigValue(v, config)
	}
	return out
}

func substituteConfigValue(v interface{}, config map[string]interface{}) interface{} {
	switch t := v.(type) {
	case string:
		if resolved, ok := lookupConfigRef(t, config); ok {
			return resolved
		}
		return t
	case map[string]interface{}:
		return substituteConfigMap(t, config)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = substituteConfigValue(e, config)
		}
		return out
	default:
		return v
	}
}

func substituteConfigString(s string, config map[string]interface{}) string {
	if resolved, ok := lookupConfigRef(s, config); ok {
		if str, ok := resolved.(string); ok {
			return str
		}
	}
	return s
}

// lookupConfigRef resolves an exact "$config.<name>" token. Partial
// interpolation inside a larger string is not supported — the source
// format only ever uses this as a whole-value reference.
func lookupConfigRef(s string, config map[string]interface{}) (interface{}, bool) {
	const prefix = "$config."
	if !strings.HasPrefix(s, prefix) {
		return nil, false
	}
	name := strings.TrimPrefix(s, prefix)
	v, ok := config[name]
	return v, ok
}
