package entity

import (
	"fmt"
	"sort"

	"ams-engine/internal/gamedef"
)

// Sentinel "unset" values a child recipe's field is treated as not having
// declared, so inheritance falls through to the base. These mirror the
// original engine's own recipe defaults.
const (
	sentinelWidth  = 32.0
	sentinelHeight = 32.0
	sentinelColor  = "white"
)

// ResolvedType is an entity type recipe after its `extends` chain has
// been flattened: every field is concrete, interactions from the type
// itself and from its behaviour bundles have been merged, and BaseType
// names the terminal node of the chain.
type ResolvedType struct {
	Name     string
	BaseType string

	Width, Height float64
	Color         string
	Sprite        string
	Health        int32
	Points        int
	Tags          []string

	Behaviors      []string
	BehaviorConfig map[string]map[string]interface{}

	// Interactions is keyed by target (entity type, base type, or system
	// target), each value an ordered clause list. InteractionOrder holds
	// the same keys in first-declared order (base before child), so
	// callers that must dispatch deterministically iterate it instead of
	// ranging the map directly.
	Interactions     map[string][]gamedef.InteractionDoc
	InteractionOrder []string

	OnDestroy       *gamedef.TransformDoc
	OnParentDestroy *gamedef.TransformDoc
	OnUpdate        []gamedef.ConditionalTransformDoc
}

// TypeRegistry resolves a game's declared entity types against each
// other and against its behaviour bundles.
type TypeRegistry struct {
	docs     map[string]gamedef.EntityTypeDoc
	bundles  map[string]*gamedef.BehaviorBundleDoc
	resolved map[string]*ResolvedType
}

// NewTypeRegistry builds a registry from a game definition's raw entity
// type documents and the game's loaded behaviour bundles.
func NewTypeRegistry(docs map[string]gamedef.EntityTypeDoc, bundles map[string]*gamedef.BehaviorBundleDoc) *TypeRegistry {
	return &TypeRegistry{
		docs:     docs,
		bundles:  bundles,
		resolved: make(map[string]*ResolvedType, len(docs)),
	}
}

// ResolveAll flattens every declared entity type's inheritance chain and
// expands its behaviour bundles, failing on the first cycle or reference
// to an undeclared type. The extends graph must be acyclic.
func (r *TypeRegistry) ResolveAll() error {
	for name := range r.docs {
		if _, err := r.Resolve(name); err != nil {
			return err
		}
	}
	return nil
}

// Resolve returns the flattened recipe for name, resolving and caching it
// (and any ancestors) on first access.
func (r *TypeRegistry) Resolve(name string) (*ResolvedType, error) {
	if rt, ok := r.resolved[name]; ok {
		return rt, nil
	}
	return r.resolveChain(name, make(map[string]bool))
}

func (r *TypeRegistry) resolveChain(name string, visiting map[string]bool) (*ResolvedType, error) {
	if rt, ok := r.resolved[name]; ok {
		return rt, nil
	}
	if visiting[name] {
		return nil, fmt.Errorf("%w: %s", gamedef.ErrCyclicInheritance, name)
	}
	doc, ok := r.docs[name]
	if !ok {
		return nil, fmt.Errorf("entity: unknown entity type %q", name)
	}
	visiting[name] = true

	var base *ResolvedType
	baseType := name
	if doc.Extends != "" {
		var err error
		base, err = r.resolveChain(doc.Extends, visiting)
		if err != nil {
			return nil, err
		}
		baseType = base.BaseType
	}
	delete(visiting, name)

	rt := mergeRecipe(name, baseType, doc, base)

	if err := r.expandBehaviors(rt); err != nil {
		return nil, err
	}

	r.resolved[name] = rt
	return rt, nil
}

// mergeRecipe fills rt's fields from child then base, per the sentinel
// "unset" convention.
func mergeRecipe(name, baseType string, child gamedef.EntityTypeDoc, base *ResolvedType) *ResolvedType {
	rt := &ResolvedType{
		Name:             name,
		BaseType:         baseType,
		Width:            child.Width,
		Height:           child.Height,
		Color:            child.Color,
		Sprite:           child.Sprite,
		Health:           child.Health,
		Points:           child.Points,
		Tags:             append([]string(nil), child.Tags...),
		Behaviors:        append([]string(nil), child.Behaviors...),
		BehaviorConfig:   cloneInterfaceConfigMap(child.BehaviorConfig),
		Interactions:     cloneInteractionMap(child.Interactions),
		InteractionOrder: interactionKeyOrder(child.InteractionOrder, child.Interactions),
		OnDestroy:        child.OnDestroy,
		OnParentDestroy:  child.OnParentDestroy,
		OnUpdate:         append([]gamedef.ConditionalTransformDoc(nil), child.OnUpdate...),
	}

	if base == nil {
		if rt.Width == 0 {
			rt.Width = sentinelWidth
		}
		if rt.Height == 0 {
			rt.Height = sentinelHeight
		}
		if rt.Color == "" {
			rt.Color = sentinelColor
		}
		if rt.Interactions == nil {
			rt.Interactions = make(map[string][]gamedef.InteractionDoc)
		}
		return rt
	}

	if rt.Width == 0 || rt.Width == sentinelWidth {
		rt.Width = base.Width
	}
	if rt.Height == 0 || rt.Height == sentinelHeight {
		rt.Height = base.Height
	}
	if rt.Color == "" || rt.Color == sentinelColor {
		rt.Color = base.Color
	}
	if rt.Sprite == "" {
		rt.Sprite = base.Sprite
	}
	if rt.Health == 0 {
		rt.Health = base.Health
	}
	if rt.Points == 0 {
		rt.Points = base.Points
	}
	rt.Tags = mergeStringSet(base.Tags, rt.Tags)
	rt.Behaviors = mergeStringList(base.Behaviors, rt.Behaviors)
	rt.BehaviorConfig = mergeConfigMaps(base.BehaviorConfig, rt.BehaviorConfig)
	rt.Interactions = mergeInteractionMaps(base.Interactions, rt.Interactions)
	rt.InteractionOrder = mergeStringSet(base.InteractionOrder, rt.InteractionOrder)
	if rt.OnDestroy == nil {
		rt.OnDestroy = base.OnDestroy
	}
	if rt.OnParentDestroy == nil {
		rt.OnParentDestroy = base.OnParentDestroy
	}
	if len(rt.OnUpdate) == 0 {
		rt.OnUpdate = base.OnUpdate
	}

	return rt
}

func mergeStringSet(base, child []string) []string {
	seen := make(map[string]bool, len(base)+len(child))
	var out []string
	for _, s := range base {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range child {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func mergeStringList(base, child []string) []string {
	// behaviour lists: child appended after base, duplicates kept since a
	// child may legitimately re-declare a behaviour with different config.
	return append(append([]string(nil), base...), child...)
}

func mergeConfigMaps(base, child map[string]map[string]interface{}) map[string]map[string]interface{} {
	out := make(map[string]map[string]interface{}, len(base)+len(child))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range child {
		out[k] = v
	}
	return out
}

// mergeInteractionMaps concatenates interaction clause lists declared for
// the same target by child and base. The child's own clauses for a
// target do NOT dominate the base's here — this merge is plain
// base-vs-child concatenation; dominance only applies to
// source-declared vs behaviour-bundle-declared interactions (see
// expandBehaviors).
func mergeInteractionMaps(base, child map[string][]gamedef.InteractionDoc) map[string][]gamedef.InteractionDoc {
	out := make(map[string][]gamedef.InteractionDoc, len(base)+len(child))
	for target, clauses := range base {
		out[target] = append(out[target], clauses...)
	}
	for target, clauses := range child {
		out[target] = append(out[target], clauses...)
	}
	return out
}

// interactionKeyOrder returns order verbatim when the document supplied
// one (the normal YAML-parsed path, where UnmarshalYAML recovered true
// declaration order). A document built directly in Go — as hand-written
// test fixtures do — has no such order, so this falls back to the
// target keys sorted, which is still deterministic even though it
// doesn't reflect a real declaration sequence.
func interactionKeyOrder(order []string, m map[string][]gamedef.InteractionDoc) []string {
	if len(order) > 0 || len(m) == 0 {
		return append([]string(nil), order...)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cloneInteractionMap(m map[string][]gamedef.InteractionDoc) map[string][]gamedef.InteractionDoc {
	if m == nil {
		return nil
	}
	out := make(map[string][]gamedef.InteractionDoc, len(m))
	for k, v := range m {
		out[k] = append([]gamedef.InteractionDoc(nil), v...)
	}
	return out
}

func cloneInterfaceConfigMap(m map[string]map[string]interface{}) map[string]map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
