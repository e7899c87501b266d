package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	generators map[string]interface{}
	exprs      map[string]interface{}
}

func (f *fakeResolver) CallGenerator(name string, args map[string]interface{}) (interface{}, error) {
	return f.generators[name], nil
}

func (f *fakeResolver) EvalExpr(expr string) (interface{}, error) {
	return f.exprs[expr], nil
}

func TestResolvePropertiesLiteralPassesThrough(t *testing.T) {
	out, err := ResolveProperties(map[string]interface{}{"color": "red"}, nil, &fakeResolver{})
	require.NoError(t, err)
	assert.Equal(t, "red", out["color"])
}

func TestResolvePropertiesPropertyReference(t *testing.T) {
	parent := &Entity{X: 12, Y: 34, Properties: map[string]interface{}{"score": 7}}
	out, err := ResolveProperties(map[string]interface{}{
		"spawn_x": "$x",
		"inherited_score": "$score",
	}, parent, &fakeResolver{})
	require.NoError(t, err)
	assert.Equal(t, 12.0, out["spawn_x"])
	assert.Equal(t, 7, out["inherited_score"])
}

func TestResolvePropertiesCallGenerator(t *testing.T) {
	resolver := &fakeResolver{generators: map[string]interface{}{"random_speed": 42.0}}
	out, err := ResolveProperties(map[string]interface{}{
		"speed": map[string]interface{}{"call": "random_speed", "args": map[string]interface{}{}},
	}, &Entity{}, resolver)
	require.NoError(t, err)
	assert.Equal(t, 42.0, out["speed"])
}

func TestResolvePropertiesLuaExpr(t *testing.T) {
	resolver := &fakeResolver{exprs: map[string]interface{}{"i * 2": int64(10)}}
	out, err := ResolveProperties(map[string]interface{}{
		"amount": map[string]interface{}{"lua": "i * 2"},
	}, &Entity{}, resolver)
	require.NoError(t, err)
	assert.Equal(t, int64(10), out["amount"])
}

func TestResolveSpawnVelocityFromSpeedAndAngle(t *testing.T) {
	vx, vy, ok := ResolveSpawnVelocity(map[string]interface{}{"speed": 10.0, "angle": 0.0})
	require.True(t, ok)
	assert.InDelta(t, 10.0, vx, 0.0001)
	assert.InDelta(t, 0.0, vy, 0.0001)
}

func TestResolveSpawnVelocityMissingFieldsNotOK(t *testing.T) {
	_, _, ok := ResolveSpawnVelocity(map[string]interface{}{"speed": 10.0})
	assert.False(t, ok)
}

func TestCollectDescendantsBreadthFirst(t *testing.T) {
	tree := map[ID][]ID{
		"root":  {"a", "b"},
		"a":     {"a1"},
		"b":     {},
		"a1":    {},
	}
	got := CollectDescendants("root", func(id ID) []ID { return tree[id] })
	assert.Equal(t, []ID{"a", "b", "a1"}, got)
}

func TestEntityCloneIsDeep(t *testing.T) {
	e := &Entity{
		ID: "duck_1",
		Properties: map[string]interface{}{
			"nested": map[string]interface{}{"hp": 3},
		},
		Tags: map[string]bool{"enemy": true},
	}
	clone := e.Clone()
	clone.Properties["nested"].(map[string]interface{})["hp"] = 99
	clone.Tags["enemy"] = false

	assert.Equal(t, 3, e.Properties["nested"].(map[string]interface{})["hp"])
	assert.True(t, e.Tags["enemy"])
}
