package luaengine

import (
	"math"

	lua "github.com/yuin/gopher-lua"
)

// registerAMS installs the `ams` namespace table onto L, wrapping every
// HostAPI method so a host object can never leak to script code: each
// wrapper only ever returns values built through ToLua/FromGo.
func registerAMS(L *lua.LState, host HostAPI) {
	t := L.NewTable()

	reg := func(name string, fn lua.LGFunction) {
		t.RawSetString(name, L.NewFunction(fn))
	}

	reg("get_prop", func(L *lua.LState) int {
		id := L.CheckString(1)
		key := L.CheckString(2)
		v, ok := host.GetProp(id, key)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(ToLua(L, v))
		return 1
	})
	reg("set_prop", func(L *lua.LState) int {
		id := L.CheckString(1)
		key := L.CheckString(2)
		host.SetProp(id, key, FromLua(L.Get(3)))
		return 0
	})
	reg("get_config", func(L *lua.LState) int {
		id := L.CheckString(1)
		key := L.CheckString(2)
		v, ok := host.GetConfig(id, key)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(ToLua(L, v))
		return 1
	})

	regFloatGetter(L, t, "get_x", host.GetX)
	regFloatSetter(L, t, "set_x", host.SetX)
	regFloatGetter(L, t, "get_y", host.GetY)
	regFloatSetter(L, t, "set_y", host.SetY)
	regFloatGetter(L, t, "get_vx", host.GetVX)
	regFloatSetter(L, t, "set_vx", host.SetVX)
	regFloatGetter(L, t, "get_vy", host.GetVY)
	regFloatSetter(L, t, "set_vy", host.SetVY)
	regFloatGetter(L, t, "get_width", host.GetWidth)
	regFloatGetter(L, t, "get_height", host.GetHeight)

	regStringGetter(L, t, "get_sprite", host.GetSprite)
	regStringSetter(L, t, "set_sprite", host.SetSprite)
	regStringGetter(L, t, "get_color", host.GetColor)
	regStringSetter(L, t, "set_color", host.SetColor)

	reg("get_health", func(L *lua.LState) int {
		L.Push(lua.LNumber(host.GetHealth(L.CheckString(1))))
		return 1
	})
	reg("set_health", func(L *lua.LState) int {
		host.SetHealth(L.CheckString(1), int(L.CheckNumber(2)))
		return 0
	})
	reg("is_alive", func(L *lua.LState) int {
		L.Push(lua.LBool(host.IsAlive(L.CheckString(1))))
		return 1
	})
	reg("destroy", func(L *lua.LState) int {
		host.Destroy(L.CheckString(1))
		return 0
	})

	reg("spawn", func(L *lua.LState) int {
		typeName := L.CheckString(1)
		x := optNumber(L, 2, 0)
		y := optNumber(L, 3, 0)
		vx := optNumber(L, 4, 0)
		vy := optNumber(L, 5, 0)
		w := optNumber(L, 6, 0)
		h := optNumber(L, 7, 0)
		color := optString(L, 8, "")
		sprite := optString(L, 9, "")
		id := host.Spawn(typeName, x, y, vx, vy, w, h, color, sprite)
		L.Push(lua.LString(id))
		return 1
	})

	reg("get_entities_of_type", func(L *lua.LState) int {
		L.Push(ToLua(L, mustList(host.EntitiesOfType(L.CheckString(1)))))
		return 1
	})
	reg("get_entities_by_tag", func(L *lua.LState) int {
		L.Push(ToLua(L, mustList(host.EntitiesByTag(L.CheckString(1)))))
		return 1
	})
	reg("count_entities_by_tag", func(L *lua.LState) int {
		L.Push(lua.LNumber(host.CountEntitiesByTag(L.CheckString(1))))
		return 1
	})
	reg("get_all_entity_ids", func(L *lua.LState) int {
		L.Push(ToLua(L, mustList(host.AllEntityIDs())))
		return 1
	})

	reg("get_screen_width", func(L *lua.LState) int {
		L.Push(lua.LNumber(host.ScreenWidth()))
		return 1
	})
	reg("get_screen_height", func(L *lua.LState) int {
		L.Push(lua.LNumber(host.ScreenHeight()))
		return 1
	})
	reg("get_score", func(L *lua.LState) int {
		L.Push(lua.LNumber(host.Score()))
		return 1
	})
	reg("add_score", func(L *lua.LState) int {
		host.AddScore(int(L.CheckNumber(1)))
		return 0
	})
	reg("get_time", func(L *lua.LState) int {
		L.Push(lua.LNumber(host.Time()))
		return 1
	})

	reg("play_sound", func(L *lua.LState) int {
		host.PlaySound(L.CheckString(1))
		return 0
	})
	reg("schedule", func(L *lua.LState) int {
		delay := L.CheckNumber(1)
		callback := L.CheckString(2)
		id := L.CheckString(3)
		host.Schedule(float64(delay), callback, id)
		return 0
	})

	reg("get_parent_id", func(L *lua.LState) int {
		parent, ok := host.ParentID(L.CheckString(1))
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LString(parent))
		return 1
	})
	reg("set_parent", func(L *lua.LState) int {
		host.SetParent(L.CheckString(1), L.CheckString(2))
		return 0
	})
	reg("detach_from_parent", func(L *lua.LState) int {
		host.DetachFromParent(L.CheckString(1))
		return 0
	})
	reg("get_children", func(L *lua.LState) int {
		L.Push(ToLua(L, mustList(host.Children(L.CheckString(1)))))
		return 1
	})
	reg("has_parent", func(L *lua.LState) int {
		L.Push(lua.LBool(host.HasParent(L.CheckString(1))))
		return 1
	})

	reg("sin", func(L *lua.LState) int { L.Push(lua.LNumber(math.Sin(float64(L.CheckNumber(1))))); return 1 })
	reg("cos", func(L *lua.LState) int { L.Push(lua.LNumber(math.Cos(float64(L.CheckNumber(1))))); return 1 })
	reg("sqrt", func(L *lua.LState) int { L.Push(lua.LNumber(math.Sqrt(float64(L.CheckNumber(1))))); return 1 })
	reg("atan2", func(L *lua.LState) int {
		y := float64(L.CheckNumber(1))
		x := float64(L.CheckNumber(2))
		L.Push(lua.LNumber(math.Atan2(y, x)))
		return 1
	})
	reg("random", func(L *lua.LState) int { L.Push(lua.LNumber(host.Random())); return 1 })
	reg("random_range", func(L *lua.LState) int {
		lo := float64(L.CheckNumber(1))
		hi := float64(L.CheckNumber(2))
		L.Push(lua.LNumber(host.RandomRange(lo, hi)))
		return 1
	})
	reg("clamp", func(L *lua.LState) int {
		v := float64(L.CheckNumber(1))
		lo := float64(L.CheckNumber(2))
		hi := float64(L.CheckNumber(3))
		L.Push(lua.LNumber(clamp(v, lo, hi)))
		return 1
	})

	L.SetGlobal("ams", t)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mustList(items []string) Value {
	v, err := FromGo(items)
	if err != nil {
		// items is always []string here; FromGo cannot fail for it.
		panic(err)
	}
	return v
}

func regFloatGetter(L *lua.LState, t *lua.LTable, name string, fn func(string) float64) {
	t.RawSetString(name, L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(fn(L.CheckString(1))))
		return 1
	}))
}

func regFloatSetter(L *lua.LState, t *lua.LTable, name string, fn func(string, float64)) {
	t.RawSetString(name, L.NewFunction(func(L *lua.LState) int {
		fn(L.CheckString(1), float64(L.CheckNumber(2)))
		return 0
	}))
}

func regStringGetter(L *lua.LState, t *lua.LTable, name string, fn func(string) string) {
	t.RawSetString(name, L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(fn(L.CheckString(1))))
		return 1
	}))
}

func regStringSetter(L *lua.LState, t *lua.LTable, name string, fn func(string, string)) {
	t.RawSetString(name, L.NewFunction(func(L *lua.LState) int {
		fn(L.CheckString(1), L.CheckString(2))
		return 0
	}))
}

func optNumber(L *lua.LState, idx int, def float64) float64 {
	v := L.Get(idx)
	if v == lua.LNil || v.Type() == lua.LTNil {
		return def
	}
	if n, ok := v.(lua.LNumber); ok {
		return float64(n)
	}
	return def
}

func optString(L *lua.LState, idx int, def string) string {
	v := L.Get(idx)
	if v == lua.LNil || v.Type() == lua.LTNil {
		return def
	}
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return def
}
