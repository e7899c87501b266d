package luaengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHost is a minimal HostAPI double for exercising the runtime without
// pulling in the entity engine.
type fakeHost struct {
	props   map[string]map[string]Value
	x, y    map[string]float64
	health  map[string]int
	alive   map[string]bool
	destroy []string
	score   int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		props:  map[string]map[string]Value{},
		x:      map[string]float64{},
		y:      map[string]float64{},
		health: map[string]int{},
		alive:  map[string]bool{},
	}
}

func (f *fakeHost) GetProp(id, key string) (Value, bool) {
	m, ok := f.props[id]
	if !ok {
		return Value{}, false
	}
	v, ok := m[key]
	return v, ok
}
func (f *fakeHost) SetProp(id, key string, v Value) {
	if f.props[id] == nil {
		f.props[id] = map[string]Value{}
	}
	f.props[id][key] = v
}
func (f *fakeHost) GetConfig(id, key string) (Value, bool) { return Value{}, false }
func (f *fakeHost) GetX(id string) float64                 { return f.x[id] }
func (f *fakeHost) SetX(id string, v float64)               { f.x[id] = v }
func (f *fakeHost) GetY(id string) float64                 { return f.y[id] }
func (f *fakeHost) SetY(id string, v float64)               { f.y[id] = v }
func (f *fakeHost) GetVX(string) float64                   { return 0 }
func (f *fakeHost) SetVX(string, float64)                  {}
func (f *fakeHost) GetVY(string) float64                   { return 0 }
func (f *fakeHost) SetVY(string, float64)                  {}
func (f *fakeHost) GetWidth(string) float64                { return 32 }
func (f *fakeHost) GetHeight(string) float64                { return 32 }
func (f *fakeHost) GetSprite(string) string                 { return "" }
func (f *fakeHost) SetSprite(string, string)                {}
func (f *fakeHost) GetColor(string) string                  { return "white" }
func (f *fakeHost) SetColor(string, string)                 {}
func (f *fakeHost) GetHealth(id string) int                 { return f.health[id] }
func (f *fakeHost) SetHealth(id string, v int)               { f.health[id] = v }
func (f *fakeHost) IsAlive(id string) bool                  { return f.alive[id] }
func (f *fakeHost) Destroy(id string)                        { f.destroy = append(f.destroy, id); f.alive[id] = false }
func (f *fakeHost) Spawn(string, float64, float64, float64, float64, float64, float64, string, string) string {
	return "spawned_1"
}
func (f *fakeHost) EntitiesOfType(string) []string      { return nil }
func (f *fakeHost) EntitiesByTag(string) []string       { return nil }
func (f *fakeHost) CountEntitiesByTag(string) int       { return 0 }
func (f *fakeHost) AllEntityIDs() []string              { return nil }
func (f *fakeHost) ScreenWidth() float64                { return 800 }
func (f *fakeHost) ScreenHeight() float64               { return 600 }
func (f *fakeHost) Score() int                          { return f.score }
func (f *fakeHost) AddScore(delta int)                   { f.score += delta }
func (f *fakeHost) Time() float64                       { return 0 }
func (f *fakeHost) PlaySound(string)                     {}
func (f *fakeHost) Schedule(float64, string, string)     {}
func (f *fakeHost) ParentID(string) (string, bool)       { return "", false }
func (f *fakeHost) SetParent(string, string)             {}
func (f *fakeHost) DetachFromParent(string)              {}
func (f *fakeHost) Children(string) []string             { return nil }
func (f *fakeHost) HasParent(string) bool                { return false }
func (f *fakeHost) Random() float64                     { return 0.5 }
func (f *fakeHost) RandomRange(lo, hi float64) float64  { return lo }

func newTestRuntime(t *testing.T) (*Runtime, *fakeHost) {
	t.Helper()
	host := newFakeHost()
	rt, err := New(host, Config{})
	require.NoError(t, err)
	t.Cleanup(rt.Close)
	return rt, host
}

func TestSandboxBlocksEscapeSurface(t *testing.T) {
	rt, _ := newTestRuntime(t)

	for _, probe := range escapeProbes {
		ok, err := evalProbe(rt.state, probe.expr)
		if err != nil {
			continue
		}
		assert.Falsef(t, ok, "probe %s must be false", probe.name)
	}
}

func TestBehaviorOnHitDestroysEntity(t *testing.T) {
	rt, host := newTestRuntime(t)
	source := `
return {
  on_hit = function(id, other_id, other_type, other_base_type)
    ams.destroy(id)
  end
}`
	require.NoError(t, rt.RegisterScript(ScriptBehavior, "damage", source))

	_, err := rt.Invoke(ScriptBehavior, "damage", "on_hit", String("target_1"), String("ball_1"), String("ball"), String("ball"))
	require.NoError(t, err)
	assert.Contains(t, host.destroy, "target_1")
}

func TestScriptRuntimeErrorIsRecovered(t *testing.T) {
	rt, _ := newTestRuntime(t)
	source := `return { on_update = function(id, dt) error("boom") end }`
	require.NoError(t, rt.RegisterScript(ScriptBehavior, "broken", source))

	_, err := rt.Invoke(ScriptBehavior, "broken", "on_update", String("e1"), Float(0.016))
	assert.Error(t, err)
}

func TestMissingMethodIsSkippedNotError(t *testing.T) {
	rt, _ := newTestRuntime(t)
	require.NoError(t, rt.RegisterScript(ScriptBehavior, "quiet", `return {}`))

	results, err := rt.Invoke(ScriptBehavior, "quiet", "on_spawn", String("e1"))
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestEvalExprSingleExpression(t *testing.T) {
	rt, _ := newTestRuntime(t)
	v, err := rt.EvalExpr("2 + 3")
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.Int())
}

func TestEvalExprMultilineWithLocal(t *testing.T) {
	rt, _ := newTestRuntime(t)
	v, err := rt.EvalExpr("local a = 2\nlocal b = 3\nreturn a * b")
	require.NoError(t, err)
	assert.Equal(t, int64(6), v.Int())
}

func TestSetPropGetPropRoundTrip(t *testing.T) {
	rt, host := newTestRuntime(t)
	source := `
return {
  on_spawn = function(id)
    ams.set_prop(id, "speed", 42)
  end
}`
	require.NoError(t, rt.RegisterScript(ScriptBehavior, "setter", source))
	_, err := rt.Invoke(ScriptBehavior, "setter", "on_spawn", String("e1"))
	require.NoError(t, err)

	v, ok := host.GetProp("e1", "speed")
	require.True(t, ok)
	assert.Equal(t, int64(42), v.Int())
}

func TestGeneratorReturnsBridgeableValue(t *testing.T) {
	rt, _ := newTestRuntime(t)
	source := `return { generate = function(args) return args.index * 10 end }`
	require.NoError(t, rt.RegisterScript(ScriptGenerator, "speed_by_index", source))

	args := Map(map[string]Value{"index": Int(3)})
	results, err := rt.Invoke(ScriptGenerator, "speed_by_index", "generate", args)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(30), results[0].Int())
}
