package gamedef

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ams-engine/internal/contentfs"
)

func newFSWithFile(t *testing.T, rel, content string) *contentfs.FS {
	t.Helper()
	dir := t.TempDir()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))

	fs := contentfs.New()
	fs.AddDiskLayer("core", contentfs.PriorityCore, "core", dir)
	return fs
}

func TestLoadGameValid(t *testing.T) {
	fs := newFSWithFile(t, "game.yaml", `
name: Duck Hunt
screen_width: 640
screen_height: 480
entity_types:
  duck:
    width: 32
    height: 32
    health: 1
  player:
    width: 16
    height: 16
collisions:
  - source: player
    target: duck
    action: score
`)
	loader := NewLoader(fs, true)
	doc, err := loader.LoadGame("game.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Duck Hunt", doc.Name)
	require.Contains(t, doc.CollisionBehaviors, "player")
	assert.Equal(t, "score", doc.CollisionBehaviors["player"]["duck"])
}

func TestLoadGameMissingNameFails(t *testing.T) {
	fs := newFSWithFile(t, "game.yaml", "screen_width: 640\nscreen_height: 480\n")
	loader := NewLoader(fs, true)
	_, err := loader.LoadGame("game.yaml")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoadGameSelfExtendsFails(t *testing.T) {
	fs := newFSWithFile(t, "game.yaml", `
name: Bad
screen_width: 640
screen_height: 480
entity_types:
  duck:
    extends: duck
    width: 1
    height: 1
`)
	loader := NewLoader(fs, true)
	_, err := loader.LoadGame("game.yaml")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCollisionBehaviorsTakePrecedenceOverLegacyCollisions(t *testing.T) {
	fs := newFSWithFile(t, "game.yaml", `
name: Duck Hunt
screen_width: 640
screen_height: 480
entity_types:
  duck:
    width: 1
    height: 1
collisions:
  - source: player
    target: duck
    action: legacy_action
collision_behaviors:
  player:
    duck: new_action
`)
	loader := NewLoader(fs, true)
	doc, err := loader.LoadGame("game.yaml")
	require.NoError(t, err)
	assert.Equal(t, "new_action", doc.CollisionBehaviors["player"]["duck"])
}

func TestLoadLevelRequiresEntitiesOrLayout(t *testing.T) {
	fs := newFSWithFile(t, "level.yaml", "name: level1\n")
	loader := NewLoader(fs, true)
	_, err := loader.LoadLevel("level.yaml")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoadLevelWithLayoutRequiresKey(t *testing.T) {
	fs := newFSWithFile(t, "level.yaml", "name: level1\nlayout: \"XX\\nXX\"\n")
	loader := NewLoader(fs, true)
	_, err := loader.LoadLevel("level.yaml")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoadBehaviorBundleDefaultsNameToStem(t *testing.T) {
	fs := newFSWithFile(t, "behaviors/shooter.yaml", `
description: fires at intervals
config:
  interval:
    default: 1.0
`)
	loader := NewLoader(fs, true)
	doc, err := loader.LoadBehaviorBundle("behaviors/shooter.yaml")
	require.NoError(t, err)
	assert.Equal(t, "shooter", doc.Name)
}

func TestAssetRegistryResolvesSharedFile(t *testing.T) {
	reg := NewAssetRegistry([]AssetDoc{
		{Name: "sheet", Path: "sprites/sheet.png"},
		{Name: "duck-idle", SharedFile: "@sheet", Regions: map[string]RegionDoc{
			"default": {X: 0, Y: 0, W: 32, H: 32},
		}},
	})
	resolved, err := reg.Resolve("duck-idle")
	require.NoError(t, err)
	assert.Equal(t, "sprites/sheet.png", resolved.Path)
	assert.Contains(t, resolved.Regions, "default")
}

func TestAssetRegistryMissingReferenceFails(t *testing.T) {
	reg := NewAssetRegistry([]AssetDoc{
		{Name: "duck-idle", SharedFile: "@missing"},
	})
	_, err := reg.Resolve("duck-idle")
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestAssetRegistryCyclicSharedFileFails(t *testing.T) {
	reg := NewAssetRegistry([]AssetDoc{
		{Name: "a", SharedFile: "@b"},
		{Name: "b", SharedFile: "@a"},
	})
	_, err := reg.Resolve("a")
	assert.Error(t, err)
}

// TestEntityTypeDocRecoversInteractionDeclarationOrder guards the YAML
// parse layer directly: yaml.v3's default map decoding would otherwise
// discard the order interactions keys appear in the source file.
func TestEntityTypeDocRecoversInteractionDeclarationOrder(t *testing.T) {
	fs := newFSWithFile(t, "game.yaml", `
name: Duck Hunt
screen_width: 640
screen_height: 480
entity_types:
  duck:
    width: 32
    height: 32
    interactions:
      screen:
        - trigger: exit
          action: wrap
      pointer:
        - trigger: enter
          action: grab
      coin:
        - trigger: enter
          action: pickup
`)
	loader := NewLoader(fs, true)
	doc, err := loader.LoadGame("game.yaml")
	require.NoError(t, err)
	duck := doc.EntityTypes["duck"]
	assert.Equal(t, []string{"screen", "pointer", "coin"}, duck.InteractionOrder)
}

// TestBehaviorBundleDocRecoversInteractionDeclarationOrder mirrors
// TestEntityTypeDocRecoversInteractionDeclarationOrder for bundle files,
// the other document type that carries an interactions map.
func TestBehaviorBundleDocRecoversInteractionDeclarationOrder(t *testing.T) {
	fs := newFSWithFile(t, "behaviors/mover.yaml", `
description: moves and reacts
interactions:
  wall:
    - trigger: enter
      action: bounce
  pointer:
    - trigger: continuous
      action: track
`)
	loader := NewLoader(fs, true)
	doc, err := loader.LoadBehaviorBundle("behaviors/mover.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"wall", "pointer"}, doc.InteractionOrder)
}
