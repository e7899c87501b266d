package engine

import (
	"ams-engine/internal/entity"
	"ams-engine/internal/luaengine"
)

// The methods in this file implement luaengine.HostAPI: every operation a
// script can reach through ams.* ends up here, keyed entirely by entity
// id. A script never obtains a raw reference to a host-side entity.

func (e *Engine) GetProp(entityID, key string) (luaengine.Value, bool) {
	ent := e.Get(entity.ID(entityID))
	if ent == nil || ent.Properties == nil {
		return luaengine.Nil, false
	}
	v, ok := ent.Properties[key]
	if !ok {
		return luaengine.Nil, false
	}
	bridged, err := luaengine.FromGo(v)
	if err != nil {
		return luaengine.Nil, false
	}
	return bridged, true
}

func (e *Engine) SetProp(entityID, key string, value luaengine.Value) {
	ent := e.Get(entity.ID(entityID))
	if ent == nil {
		return
	}
	if ent.Properties == nil {
		ent.Properties = make(map[string]interface{})
	}
	ent.Properties[key] = bridgeToGo(value)
}

func (e *Engine) GetConfig(entityID, key string) (luaengine.Value, bool) {
	ent := e.Get(entity.ID(entityID))
	if ent == nil {
		return luaengine.Nil, false
	}
	for _, cfg := range ent.BehaviorConfig {
		if v, ok := cfg[key]; ok {
			bridged, err := luaengine.FromGo(v)
			if err != nil {
				return luaengine.Nil, false
			}
			return bridged, true
		}
	}
	return luaengine.Nil, false
}

func (e *Engine) GetX(id string) float64    { return getf(e, id, func(ent *entity.Entity) float64 { return ent.X }) }
func (e *Engine) SetX(id string, v float64) { setf(e, id, func(ent *entity.Entity) { ent.X = v }) }
func (e *Engine) GetY(id string) float64    { return getf(e, id, func(ent *entity.Entity) float64 { return ent.Y }) }
func (e *Engine) SetY(id string, v float64) { setf(e, id, func(ent *entity.Entity) { ent.Y = v }) }
func (e *Engine) GetVX(id string) float64   { return getf(e, id, func(ent *entity.Entity) float64 { return ent.VX }) }
func (e *Engine) SetVX(id string, v float64) { setf(e, id, func(ent *entity.Entity) { ent.VX = v }) }
func (e *Engine) GetVY(id string) float64    { return getf(e, id, func(ent *entity.Entity) float64 { return ent.VY }) }
func (e *Engine) SetVY(id string, v float64) { setf(e, id, func(ent *entity.Entity) { ent.VY = v }) }
func (e *Engine) GetWidth(id string) float64  { return getf(e, id, func(ent *entity.Entity) float64 { return ent.W }) }
func (e *Engine) GetHeight(id string) float64 { return getf(e, id, func(ent *entity.Entity) float64 { return ent.H }) }

func (e *Engine) GetSprite(id string) string {
	if ent := e.Get(entity.ID(id)); ent != nil {
		return ent.Sprite
	}
	return ""
}
func (e *Engine) SetSprite(id, v string) {
	if ent := e.Get(entity.ID(id)); ent != nil {
		ent.Sprite = v
	}
}
func (e *Engine) GetColor(id string) string {
	if ent := e.Get(entity.ID(id)); ent != nil {
		return ent.Color
	}
	return ""
}
func (e *Engine) SetColor(id, v string) {
	if ent := e.Get(entity.ID(id)); ent != nil {
		ent.Color = v
	}
}

func (e *Engine) GetHealth(id string) int {
	if ent := e.Get(entity.ID(id)); ent != nil {
		return int(ent.Health)
	}
	return 0
}
func (e *Engine) SetHealth(id string, v int) {
	if ent := e.Get(entity.ID(id)); ent != nil {
		ent.Health = int32(v)
	}
}
func (e *Engine) IsAlive(id string) bool {
	return e.Get(entity.ID(id)) != nil
}
func (e *Engine) Destroy(id string) {
	e.DestroyEntity(entity.ID(id))
}

// Spawn is the ams.spawn(...) entry point; its signature is fixed by the
// host API contract and carries no properties argument, so it wraps
// SpawnEntity with nil properties.
func (e *Engine) Spawn(typeName string, x, y, vx, vy, w, h float64, color, sprite string) string {
	id, err := e.SpawnEntity(typeName, x, y, vx, vy, w, h, color, sprite, nil)
	if err != nil {
		e.log.Warn().Str("type", typeName).Err(err).Msg("script spawn failed")
		return ""
	}
	return string(id)
}

func (e *Engine) EntitiesOfType(typeName string) []string { return idsToStrings(e.EntityIDsOfType(typeName)) }
func (e *Engine) EntitiesByTag(tag string) []string        { return idsToStrings(e.EntityIDsByTag(tag)) }

func (e *Engine) CountEntitiesByTag(tag string) int {
	return len(e.EntityIDsByTag(tag))
}
func (e *Engine) AllEntityIDs() []string {
	return idsToStrings(e.OrderedIDs())
}

func (e *Engine) ScreenWidth() float64  { return e.screenWidth }
func (e *Engine) ScreenHeight() float64 { return e.screenHeight }
func (e *Engine) Score() int            { return e.score }
func (e *Engine) AddScore(delta int)    { e.score += delta }
func (e *Engine) Time() float64         { return e.elapsedTime }

func (e *Engine) PlaySound(name string) {
	e.sounds = append(e.sounds, PendingSound{Name: name})
}
func (e *Engine) Schedule(delay float64, callback, entityID string) {
	e.scheduled = append(e.scheduled, ScheduledCallback{TimeRemaining: delay, Callback: callback, EntityID: entity.ID(entityID)})
}

func (e *Engine) ParentID(id string) (string, bool) {
	ent := e.Get(entity.ID(id))
	if ent == nil || ent.ParentID == "" {
		return "", false
	}
	return string(ent.ParentID), true
}
func (e *Engine) SetParent(id, parentID string) {
	e.setParent(entity.ID(id), entity.ID(parentID))
}
func (e *Engine) DetachFromParent(id string) {
	e.removeFromParent(entity.ID(id))
}
func (e *Engine) Children(id string) []string {
	ent := e.Get(entity.ID(id))
	if ent == nil {
		return nil
	}
	return idsToStrings(ent.Children)
}
func (e *Engine) HasParent(id string) bool {
	ent := e.Get(entity.ID(id))
	return ent != nil && ent.ParentID != ""
}

func (e *Engine) Random() float64 { return e.rng.Float64() }
func (e *Engine) RandomRange(lo, hi float64) float64 {
	return lo + e.rng.Float64()*(hi-lo)
}

func getf(e *Engine, id string, f func(*entity.Entity) float64) float64 {
	if ent := e.Get(entity.ID(id)); ent != nil {
		return f(ent)
	}
	return 0
}
func setf(e *Engine, id string, f func(*entity.Entity)) {
	if ent := e.Get(entity.ID(id)); ent != nil {
		f(ent)
	}
}

func idsToStrings(ids []entity.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// bridgeToGo unwraps a Value back to a plain Go interface{} for storage
// in an entity's Properties map.
func bridgeToGo(v luaengine.Value) interface{} {
	switch v.Kind() {
	case luaengine.KindNil:
		return nil
	case luaengine.KindBool:
		return v.Bool()
	case luaengine.KindInt:
		return v.Int()
	case luaengine.KindFloat:
		return v.Float()
	case luaengine.KindString:
		return v.String()
	case luaengine.KindList:
		list := v.List()
		out := make([]interface{}, len(list))
		for i, e := range list {
			out[i] = bridgeToGo(e)
		}
		return out
	case luaengine.KindMap:
		m := v.Map()
		out := make(map[string]interface{}, len(m))
		for k, e := range m {
			out[k] = bridgeToGo(e)
		}
		return out
	default:
		return nil
	}
}
