package engine

import (
	"ams-engine/internal/entity"
	"ams-engine/internal/gamedef"
	"ams-engine/internal/luaengine"
)

// generatorResolver implements entity.PropertyResolver against this
// engine's script runtime, so internal/entity never needs to import
// luaengine itself.
type generatorResolver struct {
	e *Engine
}

func (g generatorResolver) CallGenerator(name string, args map[string]interface{}) (interface{}, error) {
	bridgedArgs, err := luaengine.FromGo(args)
	if err != nil {
		return nil, err
	}
	results, err := g.e.runtime.Invoke(luaengine.ScriptGenerator, name, "generate", bridgedArgs)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return bridgeToGo(results[0]), nil
}

func (g generatorResolver) EvalExpr(expr string) (interface{}, error) {
	v, err := g.e.runtime.EvalExpr(expr)
	if err != nil {
		return nil, err
	}
	return bridgeToGo(v), nil
}

// applyTransform executes the transform primitive: spawn children first
// (so their properties can reference the parent's pre-death position),
// then either kill the entity or rewrite it into another type in
// place.
func (e *Engine) applyTransform(ent *entity.Entity, t *gamedef.TransformDoc) {
	if t == nil {
		return
	}

	resolver := generatorResolver{e: e}
	for _, spec := range t.Spawn {
		count := spec.Count
		if count == 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			props, err := entity.ResolveProperties(spec.Properties, ent, resolver)
			if err != nil {
				e.log.Warn().Str("parent", string(ent.ID)).Str("spawn_type", spec.Type).Err(err).Msg("spawn property resolution failed")
				continue
			}
			vx := ent.VX * spec.InheritVelocity
			vy := ent.VY * spec.InheritVelocity
			if rvx, rvy, ok := entity.ResolveSpawnVelocity(props); ok {
				vx, vy = rvx, rvy
			}
			childID, err := e.SpawnEntity(spec.Type, ent.X+spec.OffsetX, ent.Y+spec.OffsetY, vx, vy, 0, 0, "", "", props)
			if err != nil {
				e.log.Warn().Str("parent", string(ent.ID)).Str("spawn_type", spec.Type).Err(err).Msg("transform spawn failed")
				continue
			}
			if spec.Lifetime != nil {
				e.Schedule(*spec.Lifetime, "on_lifetime_expired", string(childID))
			}
		}
	}

	switch t.Type {
	case "", "destroy":
		ent.Alive = false
	default:
		e.rewriteType(ent, t.Type)
	}
}

// rewriteType keeps id and position but swaps every type-dependent field
// for the new recipe's, then fires on_spawn for the new behaviour set.
func (e *Engine) rewriteType(ent *entity.Entity, newType string) {
	rt, err := e.types.Resolve(newType)
	if err != nil {
		e.log.Warn().Str("entity", string(ent.ID)).Str("new_type", newType).Err(err).Msg("transform rewrite target unknown")
		return
	}

	ent.Type = newType
	ent.BaseType = rt.BaseType
	ent.W, ent.H = rt.Width, rt.Height
	ent.Color = rt.Color
	ent.Sprite = rt.Sprite
	ent.Health = rt.Health
	ent.Points = rt.Points
	ent.Tags = tagSet(rt.Tags)
	ent.Behaviors = append([]string(nil), rt.Behaviors...)
	ent.BehaviorConfig = rt.BehaviorConfig

	e.dispatchLifecycle(ent, "on_spawn")
}

// DestroyEntity transitions an entity's liveness flag to false: fires
// on_destroy hooks, applies the type's on_destroy transform (if any),
// then hands off to orphan handling for its children.
func (e *Engine) DestroyEntity(id entity.ID) {
	ent := e.Get(id)
	if ent == nil {
		return
	}

	e.dispatchLifecycle(ent, "on_destroy")

	rt, err := e.types.Resolve(ent.Type)
	if err == nil && rt.OnDestroy != nil {
		e.applyTransform(ent, rt.OnDestroy)
	} else {
		ent.Alive = false
	}

	e.orphanChildren(ent)
}

// orphanChildren collects every descendant breadth-first, clears their
// parent links, and applies each descendant's own type's
// on_parent_destroy transform, if declared.
func (e *Engine) orphanChildren(ent *entity.Entity) {
	descendants := entity.CollectDescendants(ent.ID, e.childrenOf)
	for _, id := range descendants {
		child := e.entities[id]
		if child == nil {
			continue
		}
		child.ParentID = ""
		rt, err := e.types.Resolve(child.Type)
		if err != nil || rt.OnParentDestroy == nil {
			continue
		}
		e.applyTransform(child, rt.OnParentDestroy)
	}
	ent.Children = nil
}
