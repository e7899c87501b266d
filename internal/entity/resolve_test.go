package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ams-engine/internal/gamedef"
)

func TestResolveAppliesSentinelDefaults(t *testing.T) {
	docs := map[string]gamedef.EntityTypeDoc{
		"duck": {Health: 1},
	}
	reg := NewTypeRegistry(docs, nil)
	rt, err := reg.Resolve("duck")
	require.NoError(t, err)
	assert.Equal(t, 32.0, rt.Width)
	assert.Equal(t, 32.0, rt.Height)
	assert.Equal(t, "white", rt.Color)
	assert.Equal(t, "duck", rt.BaseType)
}

func TestResolveInheritsUnsetFieldsFromBase(t *testing.T) {
	docs := map[string]gamedef.EntityTypeDoc{
		"enemy":      {Width: 40, Height: 40, Color: "red", Health: 10},
		"fast_enemy": {Extends: "enemy", Health: 5},
	}
	reg := NewTypeRegistry(docs, nil)
	rt, err := reg.Resolve("fast_enemy")
	require.NoError(t, err)
	assert.Equal(t, 40.0, rt.Width)
	assert.Equal(t, "red", rt.Color)
	assert.Equal(t, int32(5), rt.Health)
	assert.Equal(t, "enemy", rt.BaseType)
}

func TestResolveDetectsCycle(t *testing.T) {
	docs := map[string]gamedef.EntityTypeDoc{
		"a": {Extends: "b"},
		"b": {Extends: "a"},
	}
	reg := NewTypeRegistry(docs, nil)
	_, err := reg.Resolve("a")
	assert.ErrorIs(t, err, gamedef.ErrCyclicInheritance)
}

func TestResolveUnknownExtendsFails(t *testing.T) {
	docs := map[string]gamedef.EntityTypeDoc{
		"a": {Extends: "missing"},
	}
	reg := NewTypeRegistry(docs, nil)
	_, err := reg.Resolve("a")
	assert.Error(t, err)
}

func TestResolveConcatenatesInheritedInteractions(t *testing.T) {
	docs := map[string]gamedef.EntityTypeDoc{
		"base": {
			Interactions: map[string][]gamedef.InteractionDoc{
				"wall": {{Trigger: "enter", Action: "bounce"}},
			},
		},
		"child": {
			Extends: "base",
			Interactions: map[string][]gamedef.InteractionDoc{
				"wall": {{Trigger: "enter", Action: "shatter"}},
			},
		},
	}
	reg := NewTypeRegistry(docs, nil)
	rt, err := reg.Resolve("child")
	require.NoError(t, err)
	require.Len(t, rt.Interactions["wall"], 2)
	assert.Equal(t, "bounce", rt.Interactions["wall"][0].Action)
	assert.Equal(t, "shatter", rt.Interactions["wall"][1].Action)
}

func TestExpandBehaviorsSourceInteractionDominatesBundle(t *testing.T) {
	docs := map[string]gamedef.EntityTypeDoc{
		"duck": {
			Behaviors: []string{"mover"},
			Interactions: map[string][]gamedef.InteractionDoc{
				"wall": {{Trigger: "enter", Action: "source_bounce"}},
			},
		},
	}
	bundles := map[string]*gamedef.BehaviorBundleDoc{
		"mover": {
			Name: "mover",
			Interactions: map[string][]gamedef.InteractionDoc{
				"wall":    {{Trigger: "enter", Action: "bundle_bounce"}},
				"pointer": {{Trigger: "continuous", Action: "track"}},
			},
		},
	}
	reg := NewTypeRegistry(docs, bundles)
	rt, err := reg.Resolve("duck")
	require.NoError(t, err)
	require.Len(t, rt.Interactions["wall"], 1)
	assert.Equal(t, "source_bounce", rt.Interactions["wall"][0].Action)
	require.Len(t, rt.Interactions["pointer"], 1)
	assert.Equal(t, "track", rt.Interactions["pointer"][0].Action)
}

func TestExpandBehaviorsSubstitutesConfig(t *testing.T) {
	docs := map[string]gamedef.EntityTypeDoc{
		"duck": {
			Behaviors: []string{"shooter"},
			BehaviorConfig: map[string]map[string]interface{}{
				"shooter": {"interval": 2.5},
			},
		},
	}
	bundles := map[string]*gamedef.BehaviorBundleDoc{
		"shooter": {
			Name:   "shooter",
			Config: map[string]gamedef.ConfigParamDoc{"interval": {Default: 1.0}},
			Interactions: map[string][]gamedef.InteractionDoc{
				"time": {{
					Trigger:  "continuous",
					Action:   "fire",
					Modifier: map[string]interface{}{"interval": "$config.interval"},
				}},
			},
		},
	}
	reg := NewTypeRegistry(docs, bundles)
	rt, err := reg.Resolve("duck")
	require.NoError(t, err)
	require.Len(t, rt.Interactions["time"], 1)
	assert.Equal(t, 2.5, rt.Interactions["time"][0].Modifier["interval"])
}

// TestInteractionOrderPreservesDeclaredTargetSequence guards the
// dispatch-order guarantee: a type with more than one interaction target
// must expose them in the document's declared order, not a Go map's
// randomized range order. Documents parsed from YAML recover this order
// via EntityTypeDoc.UnmarshalYAML; this test sets InteractionOrder
// directly, the same shape a parsed document would produce.
func TestInteractionOrderPreservesDeclaredTargetSequence(t *testing.T) {
	docs := map[string]gamedef.EntityTypeDoc{
		"duck": {
			Interactions: map[string][]gamedef.InteractionDoc{
				"screen": {{Trigger: "exit", Action: "wrap"}},
				"pointer": {{Trigger: "enter", Action: "grab"}},
				"coin":    {{Trigger: "enter", Action: "pickup"}},
			},
			InteractionOrder: []string{"screen", "pointer", "coin"},
		},
	}
	reg := NewTypeRegistry(docs, nil)
	rt, err := reg.Resolve("duck")
	require.NoError(t, err)
	assert.Equal(t, []string{"screen", "pointer", "coin"}, rt.InteractionOrder)
}

// TestInteractionOrderMergesBaseBeforeChild mirrors the base-then-child
// concatenation mergeInteractionMaps already applies to clause lists:
// a base's target order comes first, then any new target the child
// introduces is appended after it.
func TestInteractionOrderMergesBaseBeforeChild(t *testing.T) {
	docs := map[string]gamedef.EntityTypeDoc{
		"enemy": {
			Interactions: map[string][]gamedef.InteractionDoc{
				"player": {{Trigger: "enter", Action: "hurt"}},
				"screen":  {{Trigger: "exit", Action: "despawn"}},
			},
			InteractionOrder: []string{"player", "screen"},
		},
		"boss": {
			Extends: "enemy",
			Interactions: map[string][]gamedef.InteractionDoc{
				"bullet": {{Trigger: "enter", Action: "block"}},
			},
			InteractionOrder: []string{"bullet"},
		},
	}
	reg := NewTypeRegistry(docs, nil)
	rt, err := reg.Resolve("boss")
	require.NoError(t, err)
	assert.Equal(t, []string{"player", "screen", "bullet"}, rt.InteractionOrder)
}
