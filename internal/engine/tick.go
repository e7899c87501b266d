package engine

import (
	"strconv"
	"strings"

	"ams-engine/internal/entity"
	"ams-engine/internal/luaengine"
)

// Tick runs one frame of the per-tick pipeline: physics, behaviour
// on_update, on_update transforms, interaction sync and evaluation, the
// legacy AABB collision fallback, and win/lose evaluation. dt is the
// fixed frame delta (1/fps). Returns true once the game's win condition
// holds; lose-condition side effects (lives, destroys, transforms) are
// applied in the same pass but reported through StateTag/Lives rather
// than this return value.
func (e *Engine) Tick(dt float64) bool {
	e.elapsedTime += dt

	if e.pointer.Active {
		e.timed("game_engine", "Handle Input", func() { e.HandleInput() })
	}

	e.timed("physics", "Physics Step", func() { e.physicsStep(dt) })
	e.timed("game_engine", "Entity Update", func() { e.dispatchOnUpdate(dt) })
	e.timed("game_engine", "Scheduled Callbacks", func() { e.runScheduledCallbacks(dt) })
	e.timed("game_engine", "Update Transforms", func() { e.evaluateOnUpdateTransforms(dt) })

	if e.interactions != nil {
		e.timed("interaction", "Interaction Sync/Evaluate", func() {
			e.interactions.Sync(e.snapshotEntities(), e.pointer, e.screenWidth, e.screenHeight, e.elapsedTime)
			e.interactions.Evaluate(dt)
		})
	}

	e.timed("game_engine", "Legacy Collision Pass", e.legacyCollisionPass)

	e.EvaluateLoseConditions()

	return e.CheckWin()
}

// physicsStep applies x += vx*dt; y += vy*dt to every live entity with
// non-zero velocity.
func (e *Engine) physicsStep(dt float64) {
	for _, id := range e.OrderedIDs() {
		ent := e.entities[id]
		if ent.VX != 0 {
			ent.X += ent.VX * dt
		}
		if ent.VY != 0 {
			ent.Y += ent.VY * dt
		}
	}
}

func (e *Engine) dispatchOnUpdate(dt float64) {
	for _, id := range e.OrderedIDs() {
		ent := e.entities[id]
		e.dispatchLifecycle(ent, "on_update", luaengine.Float(dt))
	}
}

// runScheduledCallbacks runs right after the entity-update pass;
// callbacks scheduled from within a callback execute on the next tick,
// since newly scheduled callbacks land in e.scheduled only after this
// pass has already captured its own working copy.
func (e *Engine) runScheduledCallbacks(dt float64) {
	pending := e.scheduled
	e.scheduled = nil

	var remaining []ScheduledCallback
	for _, cb := range pending {
		cb.TimeRemaining -= dt
		if cb.TimeRemaining > 0 {
			remaining = append(remaining, cb)
			continue
		}
		e.dispatchScheduledCallback(cb)
	}
	e.scheduled = append(remaining, e.scheduled...)
}

// evaluateOnUpdateTransforms checks each live entity's declared
// on_update conditional transforms (age / property / interval
// conditions) and applies the first whose condition is currently true.
func (e *Engine) evaluateOnUpdateTransforms(dt float64) {
	for _, id := range e.OrderedIDs() {
		ent := e.entities[id]
		rt, err := e.types.Resolve(ent.Type)
		if err != nil {
			continue
		}
		for _, cond := range rt.OnUpdate {
			if evaluateCondition(e, ent, cond.Condition, dt) {
				t := cond.Transform
				e.applyTransform(ent, &t)
				break
			}
		}
	}
}

// evaluateCondition supports the three condition forms the original
// engine's data-driven transforms use: "age>=N" / "age>N" (seconds since
// spawn), "property:<name>" (truthy check), and "interval:<N>" (fires
// once per N seconds of the entity's age).
func evaluateCondition(e *Engine, ent *entity.Entity, cond string, dt float64) bool {
	cond = strings.TrimSpace(cond)
	age := e.elapsedTime - ent.SpawnTime

	switch {
	case strings.HasPrefix(cond, "age>="):
		n, ok := parseFloatSuffix(cond, "age>=")
		return ok && age >= n
	case strings.HasPrefix(cond, "age>"):
		n, ok := parseFloatSuffix(cond, "age>")
		return ok && age > n
	case strings.HasPrefix(cond, "property:"):
		name := strings.TrimPrefix(cond, "property:")
		if ent.Properties == nil {
			return false
		}
		truthy, _ := ent.Properties[name].(bool)
		return truthy
	case strings.HasPrefix(cond, "interval:"):
		n, ok := parseFloatSuffix(cond, "interval:")
		if !ok || n <= 0 {
			return false
		}
		prevAge := age - dt
		return int(age/n) != int(prevAge/n)
	default:
		return false
	}
}

func parseFloatSuffix(s, prefix string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimPrefix(s, prefix), 64)
	return n, err == nil
}

// legacyCollisionPass is the O(N^2) AABB fallback for game definitions
// that populate CollisionBehaviors but don't declare interactions for a
// given pair.
func (e *Engine) legacyCollisionPass() {
	if e.game == nil || len(e.game.CollisionBehaviors) == 0 {
		return
	}
	ids := e.OrderedIDs()
	for i, aID := range ids {
		a := e.entities[aID]
		byTarget, ok := e.game.CollisionBehaviors[a.Type]
		if !ok {
			continue
		}
		for _, bID := range ids[i+1:] {
			b := e.entities[bID]
			action, ok := byTarget[b.Type]
			if !ok {
				action, ok = byTarget[b.BaseType]
				if !ok {
					continue
				}
			}
			if rt, err := e.types.Resolve(a.Type); err == nil &&
				(len(rt.Interactions[b.Type]) > 0 || len(rt.Interactions[b.BaseType]) > 0) {
				continue
			}
			if !aabbOverlap(a, b) {
				continue
			}
			e.dispatchCollisionAction(action, a.ID, b.ID)
			e.dispatchLifecycle(a, "on_hit", luaengine.String(string(b.ID)), luaengine.String(b.Type), luaengine.String(b.BaseType))
			e.dispatchLifecycle(b, "on_hit", luaengine.String(string(a.ID)), luaengine.String(a.Type), luaengine.String(a.BaseType))
		}
	}
}

func aabbOverlap(a, b *entity.Entity) bool {
	return a.X < b.X+b.W && a.X+a.W > b.X && a.Y < b.Y+b.H && a.Y+a.H > b.Y
}

func (e *Engine) dispatchCollisionAction(action string, aID, bID entity.ID) {
	if !e.runtime.HasMethod(luaengine.ScriptCollisionAction, action, "execute") {
		return
	}
	if _, err := e.runtime.Invoke(luaengine.ScriptCollisionAction, action, "execute",
		luaengine.String(string(aID)), luaengine.String(string(bID)), luaengine.Map(nil)); err != nil {
		e.log.Warn().Str("action", action).Err(err).Msg("collision action failed")
	}
}
