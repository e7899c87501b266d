package luaengine

import (
	lua "github.com/yuin/gopher-lua"
)

// allowedGlobals is the opt-in whitelist the sandboxed environment keeps.
// Everything else gopher-lua's OpenLibs would otherwise expose — the
// module loader, os, io, debug, raw-table metatable access, the loader
// family (load/loadstring/loadfile/dofile), coroutines, and collectgarbage
// — is stripped.
var allowedGlobals = map[string]bool{
	"pairs":    true,
	"ipairs":   true,
	"next":     true,
	"type":     true,
	"tostring": true,
	"tonumber": true,
	"pcall":    true,
	"xpcall":   true,
	"select":   true,
	"error":    true,
	"assert":   true,
	"unpack":   true,
	"math":     true,
	"string":   true, // trimmed further below (dump/rep removed)
	"table":    true,
	"ams":      true, // the single host-provided namespace
	"_VERSION": true,
}

// removedGlobals lists every global gopher-lua's standard OpenLibs
// installs that must be unreachable from script code, kept as an explicit
// list (rather than "whatever isn't in allowedGlobals"). The validator in
// validator.go probes with its own escapeProbes list, which covers every
// name here except "module" and "print".
var removedGlobals = []string{
	"io", "os", "debug", "package", "require",
	"load", "loadstring", "loadfile", "dofile",
	"collectgarbage", "rawget", "rawset", "rawequal", "rawlen",
	"setmetatable", "getmetatable", "coroutine", "module", "_G",
	"print", // stdout is a host concern, not a script one
}

// NewSandboxedState creates a gopher-lua state with only the whitelisted
// globals reachable.
func NewSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenMath(L)
	lua.OpenString(L)
	lua.OpenTable(L)

	for _, name := range removedGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	// OpenBase pulls in a handful of globals beyond the whitelist
	// (print, dofile, loadfile, load, collectgarbage, setmetatable,
	// getmetatable, rawget/rawset/rawequal/rawlen, module, require).
	// Explicitly blank every one not in allowedGlobals.
	for _, name := range []string{"print", "dofile", "loadfile", "load", "loadstring",
		"collectgarbage", "setmetatable", "getmetatable", "rawget", "rawset",
		"rawequal", "rawlen", "module", "require", "newproxy"} {
		if !allowedGlobals[name] {
			L.SetGlobal(name, lua.LNil)
		}
	}

	stripStringMetatable(L)

	return L
}

// stripStringMetatable removes string.dump (bytecode serialisation, a
// sandbox-escape vector) and string.rep (unbounded memory amplification,
// a DoS vector) from the shared string metatable.
func stripStringMetatable(L *lua.LState) {
	stringLib := L.GetGlobal("string")
	tbl, ok := stringLib.(*lua.LTable)
	if !ok {
		return
	}
	tbl.RawSetString("dump", lua.LNil)
	tbl.RawSetString("rep", lua.LNil)
}
