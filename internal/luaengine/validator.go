package luaengine

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// ErrSandboxEscape is returned when a probe shows a forbidden feature is
// still reachable from script code after sandbox setup. Spec 4.3 treats
// this as fatal: the engine refuses to start.
var ErrSandboxEscape = fmt.Errorf("luaengine: sandbox escape probe succeeded")

// escapeProbe is one expression that must evaluate to Lua `false` (or
// fail to run at all) in a correctly sandboxed state.
type escapeProbe struct {
	name string
	expr string
}

// escapeProbes is the fixed list of probes run after sandbox setup,
// covering every feature that must be removed from the sandbox.
var escapeProbes = []escapeProbe{
	{"io", `type(io) ~= "nil"`},
	{"os", `type(os) ~= "nil"`},
	{"debug", `type(debug) ~= "nil"`},
	{"package", `type(package) ~= "nil"`},
	{"require", `type(require) ~= "nil"`},
	{"load", `type(load) ~= "nil"`},
	{"loadstring", `type(loadstring) ~= "nil"`},
	{"loadfile", `type(loadfile) ~= "nil"`},
	{"dofile", `type(dofile) ~= "nil"`},
	{"collectgarbage", `type(collectgarbage) ~= "nil"`},
	{"coroutine", `type(coroutine) ~= "nil"`},
	{"setmetatable", `type(setmetatable) ~= "nil"`},
	{"getmetatable", `type(getmetatable) ~= "nil"`},
	{"rawget", `type(rawget) ~= "nil"`},
	{"rawset", `type(rawset) ~= "nil"`},
	{"rawequal", `type(rawequal) ~= "nil"`},
	{"rawlen", `type(rawlen) ~= "nil"`},
	{"_G", `type(_G) ~= "nil"`},
	{"string.dump", `type(("")["dump"]) ~= "nil"`},
	{"string.rep", `type(("")["rep"]) ~= "nil"`},
}

// Validate runs every escape probe against state and returns
// ErrSandboxEscape (wrapping the probe name) for the first one that
// succeeds. This is defence-in-depth against regressions in sandbox
// setup, run once at engine startup, never per-script.
func Validate(state *lua.LState) error {
	for _, probe := range escapeProbes {
		ok, err := evalProbe(state, probe.expr)
		if err != nil {
			// A probe that fails to even run (because the global really
			// is gone) is the expected, safe outcome.
			continue
		}
		if ok {
			return fmt.Errorf("%w: %s", ErrSandboxEscape, probe.name)
		}
	}
	return nil
}

func evalProbe(L *lua.LState, expr string) (bool, error) {
	fn, err := L.LoadString("return " + expr)
	if err != nil {
		return false, err
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return false, err
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret == lua.LTrue, nil
}
