package luaengine

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// Value is the sum type every value crossing the host<->script boundary
// must be one of: nil, boolean, 64-bit integer, 64-bit float, string, a
// list of Value, or a map of string to Value. It is the single module
// that owns every conversion at the boundary, so no host-side caller can
// accidentally leak an opaque Go object into a script.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	m    map[string]Value
}

// Kind discriminates the variant held by a Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
)

// Nil is the bridgeable nil value.
var Nil = Value{kind: KindNil}

// ErrUnbridgeableValue is returned when a host value does not fit the
// bridgeable sum type. This is a fatal host bug, not a recoverable
// script error.
var ErrUnbridgeableValue = fmt.Errorf("luaengine: value is not bridgeable")

func Bool(b bool) Value          { return Value{kind: KindBool, b: b} }
func Int(i int64) Value          { return Value{kind: KindInt, i: i} }
func Float(f float64) Value      { return Value{kind: KindFloat, f: f} }
func String(s string) Value      { return Value{kind: KindString, s: s} }
func List(items []Value) Value   { return Value{kind: KindList, list: items} }
func Map(m map[string]Value) Value { return Value{kind: KindMap, m: m} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNil() bool { return v.kind == KindNil }

func (v Value) Bool() bool { return v.b }
func (v Value) Int() int64 { return v.i }
func (v Value) Float() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}
func (v Value) String() string { return v.s }
func (v Value) List() []Value  { return v.list }
func (v Value) Map() map[string]Value { return v.m }

// FromGo converts a permitted host type into a Value. Anything else
// returns ErrUnbridgeableValue.
func FromGo(value interface{}) (Value, error) {
	switch val := value.(type) {
	case nil:
		return Nil, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case float32:
		return Float(float64(val)), nil
	case float64:
		return Float(val), nil
	case string:
		return String(val), nil
	case []string:
		items := make([]Value, len(val))
		for i, s := range val {
			items[i] = String(s)
		}
		return List(items), nil
	case []int:
		items := make([]Value, len(val))
		for i, n := range val {
			items[i] = Int(int64(n))
		}
		return List(items), nil
	case []float64:
		items := make([]Value, len(val))
		for i, n := range val {
			items[i] = Float(n)
		}
		return List(items), nil
	case []Value:
		return List(val), nil
	case map[string]interface{}:
		out := make(map[string]Value, len(val))
		for k, raw := range val {
			converted, err := FromGo(raw)
			if err != nil {
				return Value{}, err
			}
			out[k] = converted
		}
		return Map(out), nil
	case map[string]Value:
		return Map(val), nil
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrUnbridgeableValue, value)
	}
}

// MustFromGo is FromGo that panics on an unbridgeable value instead of
// returning an error. The HostAPI implementation in internal/engine does
// not call it; its getters use FromGo.
func MustFromGo(value interface{}) Value {
	v, err := FromGo(value)
	if err != nil {
		panic(err)
	}
	return v
}

// ToLua converts a Value into a gopher-lua LValue, 1-indexing lists.
func ToLua(L *lua.LState, v Value) lua.LValue {
	switch v.kind {
	case KindNil:
		return lua.LNil
	case KindBool:
		return lua.LBool(v.b)
	case KindInt:
		return lua.LNumber(float64(v.i))
	case KindFloat:
		return lua.LNumber(v.f)
	case KindString:
		return lua.LString(v.s)
	case KindList:
		table := L.NewTable()
		for i, item := range v.list {
			table.RawSetInt(i+1, ToLua(L, item))
		}
		return table
	case KindMap:
		table := L.NewTable()
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			table.RawSetString(k, ToLua(L, v.m[k]))
		}
		return table
	default:
		return lua.LNil
	}
}

// FromLua converts a gopher-lua LValue back into a Value. Tables are
// treated as lists when every key is a contiguous 1-based integer
// sequence, and as maps otherwise.
func FromLua(lv lua.LValue) Value {
	switch v := lv.(type) {
	case *lua.LNilType:
		return Nil
	case lua.LBool:
		return Bool(bool(v))
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return Int(int64(f))
		}
		return Float(f)
	case lua.LString:
		return String(string(v))
	case *lua.LTable:
		return fromLuaTable(v)
	default:
		return Nil
	}
}

func fromLuaTable(t *lua.LTable) Value {
	length := t.Len()
	isList := length > 0
	if isList {
		for i := 1; i <= length; i++ {
			if t.RawGetInt(i) == lua.LNil {
				isList = false
				break
			}
		}
	}
	if isList {
		keys := 0
		t.ForEach(func(_, _ lua.LValue) { keys++ })
		isList = keys == length
	}

	if isList {
		items := make([]Value, length)
		for i := 1; i <= length; i++ {
			items[i-1] = FromLua(t.RawGetInt(i))
		}
		return List(items)
	}

	out := map[string]Value{}
	t.ForEach(func(key, value lua.LValue) {
		out[key.String()] = FromLua(value)
	})
	return Map(out)
}
