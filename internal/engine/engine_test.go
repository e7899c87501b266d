package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ams-engine/internal/entity"
	"ams-engine/internal/gamedef"
	"ams-engine/internal/luaengine"
)

func newTestEngine(t *testing.T, docs map[string]gamedef.EntityTypeDoc) (*Engine, *luaengine.Runtime) {
	t.Helper()
	rt, err := luaengine.New(noopHost{}, luaengine.Config{})
	require.NoError(t, err)
	t.Cleanup(rt.Close)

	types := entity.NewTypeRegistry(docs, nil)
	require.NoError(t, types.ResolveAll())

	game := &gamedef.GameDoc{ScreenWidth: 640, ScreenHeight: 480}
	e := New(game, types, rt, 42)
	e.runtime = rt
	return e, rt
}

// noopHost satisfies luaengine.HostAPI only so Runtime construction
// succeeds while building type registries in isolation; Engine itself is
// swapped in as the real host once it exists (tests construct Runtime
// bound to the Engine under test directly where host behavior matters).
type noopHost struct{}

func (noopHost) GetProp(string, string) (luaengine.Value, bool)    { return luaengine.Nil, false }
func (noopHost) SetProp(string, string, luaengine.Value)          {}
func (noopHost) GetConfig(string, string) (luaengine.Value, bool) { return luaengine.Nil, false }
func (noopHost) GetX(string) float64                              { return 0 }
func (noopHost) SetX(string, float64)                             {}
func (noopHost) GetY(string) float64                              { return 0 }
func (noopHost) SetY(string, float64)                             {}
func (noopHost) GetVX(string) float64                             { return 0 }
func (noopHost) SetVX(string, float64)                            {}
func (noopHost) GetVY(string) float64                             { return 0 }
func (noopHost) SetVY(string, float64)                            {}
func (noopHost) GetWidth(string) float64                          { return 0 }
func (noopHost) GetHeight(string) float64                         { return 0 }
func (noopHost) GetSprite(string) string                          { return "" }
func (noopHost) SetSprite(string, string)                         {}
func (noopHost) GetColor(string) string                           { return "" }
func (noopHost) SetColor(string, string)                          {}
func (noopHost) GetHealth(string) int                             { return 0 }
func (noopHost) SetHealth(string, int)                            {}
func (noopHost) IsAlive(string) bool                              { return false }
func (noopHost) Destroy(string)                                   {}
func (noopHost) Spawn(string, float64, float64, float64, float64, float64, float64, string, string) string {
	return ""
}
func (noopHost) EntitiesOfType(string) []string    { return nil }
func (noopHost) EntitiesByTag(string) []string     { return nil }
func (noopHost) CountEntitiesByTag(string) int     { return 0 }
func (noopHost) AllEntityIDs() []string            { return nil }
func (noopHost) ScreenWidth() float64              { return 0 }
func (noopHost) ScreenHeight() float64             { return 0 }
func (noopHost) Score() int                        { return 0 }
func (noopHost) AddScore(int)                      {}
func (noopHost) Time() float64                     { return 0 }
func (noopHost) PlaySound(string)                  {}
func (noopHost) Schedule(float64, string, string)  {}
func (noopHost) ParentID(string) (string, bool)    { return "", false }
func (noopHost) SetParent(string, string)          {}
func (noopHost) DetachFromParent(string)           {}
func (noopHost) Children(string) []string          { return nil }
func (noopHost) HasParent(string) bool             { return false }
func (noopHost) Random() float64                   { return 0 }
func (noopHost) RandomRange(float64, float64) float64 { return 0 }

func TestSpawnAssignsTypePrefixedID(t *testing.T) {
	e, _ := newTestEngine(t, map[string]gamedef.EntityTypeDoc{"duck": {Health: 1}})
	id, err := e.SpawnEntity("duck", 10, 20, 0, 0, 0, 0, "", "", nil)
	require.NoError(t, err)
	assert.Contains(t, string(id), "duck_")
	ent := e.Get(id)
	require.NotNil(t, ent)
	assert.Equal(t, 10.0, ent.X)
}

func TestDestroyEntityMarksDead(t *testing.T) {
	e, _ := newTestEngine(t, map[string]gamedef.EntityTypeDoc{"duck": {}})
	id, err := e.SpawnEntity("duck", 0, 0, 0, 0, 0, 0, "", "", nil)
	require.NoError(t, err)
	e.DestroyEntity(id)
	assert.Nil(t, e.Get(id))
}

func TestOrphanHandlingClearsParentLinks(t *testing.T) {
	e, _ := newTestEngine(t, map[string]gamedef.EntityTypeDoc{"parent": {}, "child": {}})
	parentID, err := e.SpawnEntity("parent", 0, 0, 0, 0, 0, 0, "", "", nil)
	require.NoError(t, err)
	childID, err := e.SpawnEntity("child", 0, 0, 0, 0, 0, 0, "", "", nil)
	require.NoError(t, err)

	e.setParent(childID, parentID)
	e.DestroyEntity(parentID)

	child := e.Get(childID)
	require.NotNil(t, child)
	assert.Equal(t, entity.ID(""), child.ParentID)
}

func TestTickAppliesPhysics(t *testing.T) {
	e, _ := newTestEngine(t, map[string]gamedef.EntityTypeDoc{"bullet": {}})
	id, err := e.SpawnEntity("bullet", 0, 0, 10, 0, 0, 0, "", "", nil)
	require.NoError(t, err)
	e.Tick(0.5)
	assert.Equal(t, 5.0, e.Get(id).X)
}

func TestTickReturnsCheckWin(t *testing.T) {
	e, _ := newTestEngine(t, map[string]gamedef.EntityTypeDoc{"enemy": {}})
	e.win = newWinEvaluator("destroy_all", "enemy", "")
	assert.True(t, e.Tick(1.0/60))
}

// TestLegacyCollisionFiresOnHitAlongsideAction reproduces the canonical
// hit scenario end to end: a bullet overlapping a target with a
// collision_behaviors entry fires both the declared collision_action
// script and the target's on_hit behaviour hook, and on_hit calling
// ams.destroy(id) leaves the target dead after one tick.
func TestLegacyCollisionFiresOnHitAlongsideAction(t *testing.T) {
	docs := map[string]gamedef.EntityTypeDoc{
		"bullet": {Width: 4, Height: 4},
		"target": {Width: 10, Height: 10, Behaviors: []string{"damage"}},
	}
	types := entity.NewTypeRegistry(docs, nil)
	require.NoError(t, types.ResolveAll())

	game := &gamedef.GameDoc{
		ScreenWidth:  640,
		ScreenHeight: 480,
		CollisionBehaviors: map[string]map[string]string{
			"bullet": {"target": "noop_action"},
		},
	}
	e := New(game, types, nil, 1)

	rt, err := luaengine.New(e, luaengine.Config{})
	require.NoError(t, err)
	t.Cleanup(rt.Close)
	e.SetRuntime(rt)

	require.NoError(t, rt.RegisterScript(luaengine.ScriptBehavior, "damage", `
return {
  on_hit = function(id, other_id, other_type, other_base_type)
    ams.destroy(id)
  end
}`))
	require.NoError(t, rt.RegisterScript(luaengine.ScriptCollisionAction, "noop_action", `
local M = {}
function M.execute(a_id, b_id, modifier)
end
return M
`))

	_, err = e.SpawnEntity("bullet", 0, 0, 0, 0, 0, 0, "", "", nil)
	require.NoError(t, err)
	targetID, err := e.SpawnEntity("target", 0, 0, 0, 0, 0, 0, "", "", nil)
	require.NoError(t, err)

	e.Tick(1.0 / 60)

	assert.Nil(t, e.Get(targetID))
}

func TestWinConditionReachScore(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	e.win = newWinEvaluator("reach_score", 10, "")
	e.score = 10
	assert.True(t, e.CheckWin())
}

func TestWinConditionDestroyAll(t *testing.T) {
	e, _ := newTestEngine(t, map[string]gamedef.EntityTypeDoc{"enemy": {}})
	e.win = newWinEvaluator("destroy_all", "enemy", "")
	assert.True(t, e.CheckWin())
	id, err := e.SpawnEntity("enemy", 0, 0, 0, 0, 0, 0, "", "", nil)
	require.NoError(t, err)
	assert.False(t, e.CheckWin())
	e.DestroyEntity(id)
	assert.True(t, e.CheckWin())
}

func TestLoseConditionExitScreenLosesLife(t *testing.T) {
	e, _ := newTestEngine(t, map[string]gamedef.EntityTypeDoc{"player": {Width: 10, Height: 10}})
	e.lose = []gamedef.LoseConditionDoc{{Event: "exit_screen", EntityType: "player", Edge: "bottom", LoseLife: true}}
	e.SetLives(3)
	_, err := e.SpawnEntity("player", 0, 1000, 0, 0, 0, 0, "", "", nil)
	require.NoError(t, err)
	e.EvaluateLoseConditions()
	assert.Equal(t, 2, e.Lives())
}
