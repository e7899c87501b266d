// Package luaengine is the sandboxed embedded scripting runtime: it loads,
// validates, and executes small user-authored Lua programs with strict
// value marshalling at the host<->script boundary.
package luaengine

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"

	"ams-engine/internal/logging"
)

// ScriptType is one of the script contracts a registered script may
// fulfill.
type ScriptType string

const (
	ScriptBehavior          ScriptType = "behavior"
	ScriptCollisionAction   ScriptType = "collision_action"
	ScriptGenerator         ScriptType = "generator"
	ScriptInputAction       ScriptType = "input_action"
	ScriptInteractionAction ScriptType = "interaction_action"
)

// ErrVMCorrupted signals the embedded VM itself reported internal
// corruption (a Go panic surfaced from gopher-lua). Ordinary script
// errors are caught and logged, but VM corruption stops the whole
// engine.
var ErrVMCorrupted = fmt.Errorf("luaengine: virtual machine reported internal corruption")

// Runtime owns one sandboxed Lua VM, the subroutine registry (a
// two-level script-type -> name -> handle map), and the ams.* host API
// bound to a single HostAPI implementation.
type Runtime struct {
	state    *lua.LState
	host     HostAPI
	log      zerolog.Logger
	traceAPI bool

	// registry[type][name] is the table a script returned, e.g. the
	// result of `return { on_update = function(id, dt) ... end }`.
	registry map[ScriptType]map[string]*lua.LTable
}

// Config controls runtime construction.
type Config struct {
	TraceCalls bool // AMS_LOG_LUA_CALLS
}

// New creates a sandboxed VM, registers the ams.* API, and runs the
// escape-probe validator. A non-nil error here must stop the engine from
// starting.
func New(host HostAPI, cfg Config) (*Runtime, error) {
	state := NewSandboxedState()
	registerAMS(state, host)

	if err := Validate(state); err != nil {
		state.Close()
		return nil, err
	}

	return &Runtime{
		state:    state,
		host:     host,
		log:      logging.For("luaengine"),
		traceAPI: cfg.TraceCalls,
		registry: map[ScriptType]map[string]*lua.LTable{},
	}, nil
}

// Close releases the underlying Lua VM.
func (r *Runtime) Close() {
	r.state.Close()
}

// RegisterScript compiles source and stores the table it returns under
// (scriptType, name) in the subroutine registry. The same name is
// permitted across different types; names are unique within a type — a
// second registration under the same (type, name) replaces the first,
// supporting tear-down-and-recreate script reloading.
func (r *Runtime) RegisterScript(scriptType ScriptType, name, source string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrVMCorrupted, p)
		}
	}()

	fn, loadErr := r.state.LoadString(source)
	if loadErr != nil {
		return fmt.Errorf("script %q: load error: %w", name, loadErr)
	}

	r.state.Push(fn)
	if callErr := r.state.PCall(0, 1, nil); callErr != nil {
		return fmt.Errorf("script %q: execution error: %w", name, callErr)
	}

	ret := r.state.Get(-1)
	r.state.Pop(1)

	table, ok := ret.(*lua.LTable)
	if !ok {
		return fmt.Errorf("script %q: must return a table, got %s", name, ret.Type())
	}

	if r.registry[scriptType] == nil {
		r.registry[scriptType] = map[string]*lua.LTable{}
	}
	r.registry[scriptType][name] = table

	r.log.Debug().Str("type", string(scriptType)).Str("name", name).Msg("script registered")
	return nil
}

// Handle reports whether (scriptType, name) is registered.
func (r *Runtime) Handle(scriptType ScriptType, name string) (*lua.LTable, bool) {
	byName, ok := r.registry[scriptType]
	if !ok {
		return nil, false
	}
	t, ok := byName[name]
	return t, ok
}

// HasMethod reports whether the registered script exposes the named
// method (e.g. "on_spawn", "execute", "generate").
func (r *Runtime) HasMethod(scriptType ScriptType, name, method string) bool {
	t, ok := r.Handle(scriptType, name)
	if !ok {
		return false
	}
	_, isFn := t.RawGetString(method).(*lua.LFunction)
	return isFn
}

// Invoke calls method on the script registered under (scriptType, name)
// with args, returning its bridgeable results. Any error raised inside
// the script is returned, never panicked, except for VM corruption
// which is wrapped in ErrVMCorrupted and must propagate to a full engine
// stop.
func (r *Runtime) Invoke(scriptType ScriptType, name, method string, args ...Value) (results []Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrVMCorrupted, p)
		}
	}()

	t, ok := r.Handle(scriptType, name)
	if !ok {
		return nil, fmt.Errorf("script %q of type %q is not registered", name, scriptType)
	}

	fnVal := t.RawGetString(method)
	fn, ok := fnVal.(*lua.LFunction)
	if !ok {
		return nil, nil // method absent is not an error; it is simply skipped by callers
	}

	if r.traceAPI {
		r.log.Trace().Str("script", name).Str("method", method).Msg("invoking")
	}

	base := r.state.GetTop()
	r.state.Push(fn)
	for _, a := range args {
		r.state.Push(ToLua(r.state, a))
	}

	if callErr := r.state.PCall(len(args), lua.MultRet, nil); callErr != nil {
		r.log.Warn().Str("script", name).Str("method", method).Err(callErr).Msg("script runtime error")
		return nil, callErr
	}

	return r.popResults(r.state.GetTop() - base)
}

// popResults drains n values from the top of the stack, in call order,
// converting each to a bridgeable Value.
func (r *Runtime) popResults(n int) ([]Value, error) {
	out := make([]Value, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = FromLua(r.state.Get(-1))
		r.state.Pop(1)
	}
	return out, nil
}

// EvalExpr evaluates a short data-driven expression (used from YAML, e.g.
// a spawn velocity computed from an index). Multi-line or local-binding
// snippets are wrapped in an immediately-invoked function so `local`
// declarations and multiple statements still yield a single value.
func (r *Runtime) EvalExpr(src string) (Value, error) {
	trimmed := strings.TrimSpace(src)
	var wrapped string
	switch {
	case strings.Contains(trimmed, "\n") || strings.HasPrefix(trimmed, "local "):
		wrapped = "return (function() " + src + " end)()"
	case strings.HasPrefix(trimmed, "return "):
		wrapped = src
	default:
		wrapped = "return " + src
	}

	fn, err := r.state.LoadString(wrapped)
	if err != nil {
		return Value{}, fmt.Errorf("expression load error: %w", err)
	}
	r.state.Push(fn)
	if err := r.state.PCall(0, 1, nil); err != nil {
		return Value{}, fmt.Errorf("expression eval error: %w", err)
	}
	v := r.state.Get(-1)
	r.state.Pop(1)
	return FromLua(v), nil
}
