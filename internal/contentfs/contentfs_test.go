package contentfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestLayerShadowing(t *testing.T) {
	core := t.TempDir()
	user := t.TempDir()
	writeFile(t, core, "games/x/game.yaml", "screen_width: 800\n")
	writeFile(t, user, "games/x/game.yaml", "screen_width: 1024\n")

	fs := New()
	fs.AddDiskLayer("core", PriorityCore, "core", core)
	fs.AddDiskLayer("user", PriorityUser, "user", user)

	text, err := fs.ReadText("games/x/game.yaml", "utf-8")
	require.NoError(t, err)
	assert.Contains(t, text, "1024")

	name, ok := fs.LayerOf("games/x/game.yaml")
	require.True(t, ok)
	assert.Equal(t, "user", name)
}

func TestEmptyOverlayListMatchesNoOverlays(t *testing.T) {
	core := t.TempDir()
	writeFile(t, core, "a.txt", "hello")

	withOverlays := New()
	withOverlays.AddDiskLayer("core", PriorityCore, "core", core)
	withOverlays.AddOverlayLayers(nil)

	withoutOverlays := New()
	withoutOverlays.AddDiskLayer("core", PriorityCore, "core", core)

	a, errA := withOverlays.ReadText("a.txt", "utf-8")
	b, errB := withoutOverlays.ReadText("a.txt", "utf-8")
	require.NoError(t, errA)
	require.NoError(t, errB)
	assert.Equal(t, a, b)
}

func TestMissingPathIsResourceNotFound(t *testing.T) {
	fs := New()
	fs.AddDiskLayer("core", PriorityCore, "core", t.TempDir())

	_, err := fs.ReadBytes("nope.txt")
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestWalkMissingRootIsNonFatal(t *testing.T) {
	fs := New()
	fs.AddDiskLayer("core", PriorityCore, "core", t.TempDir())

	paths, err := fs.WalkFiles("does/not/exist", nil)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestResolveToSystemPathFailsForMemLayer(t *testing.T) {
	fs := New()
	mem := fs.AddMemLayer("inline", PriorityGame, "game")
	mem.Put("scripts/inline.lua.yaml", []byte("type: behavior\nlua: \"\"\n"))

	_, err := fs.ResolveToSystemPath("scripts/inline.lua.yaml")
	assert.ErrorIs(t, err, ErrNoSystemPath)

	data, err := fs.ReadBytes("scripts/inline.lua.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "behavior")
}

func TestGameLayerReplacesSameName(t *testing.T) {
	fs := New()
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, first, "game.yaml", "v: 1")
	writeFile(t, second, "game.yaml", "v: 2")

	fs.AddDiskLayer("duckhunt", PriorityGame, "game", first)
	fs.AddDiskLayer("duckhunt", PriorityGame, "game", second)

	text, err := fs.ReadText("game.yaml", "utf-8")
	require.NoError(t, err)
	assert.Equal(t, "v: 2", text)
	assert.Len(t, fs.layers, 1)
}

func TestListDirMergesAcrossLayers(t *testing.T) {
	core := t.TempDir()
	user := t.TempDir()
	writeFile(t, core, "scripts/a.lua.yaml", "a")
	writeFile(t, user, "scripts/b.lua.yaml", "b")

	fs := New()
	fs.AddDiskLayer("core", PriorityCore, "core", core)
	fs.AddDiskLayer("user", PriorityUser, "user", user)

	names, err := fs.ListDir("scripts")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.lua.yaml", "b.lua.yaml"}, names)
}
