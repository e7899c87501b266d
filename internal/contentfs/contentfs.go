// Package contentfs implements the layered virtual content filesystem: a
// single namespace composed of priority-ordered physical roots, so user,
// game, engine, and core layers can shadow each other predictably.
package contentfs

import (
	"sort"

	"github.com/rs/zerolog"

	"ams-engine/internal/logging"
)

// Standard layer priorities, lowest to highest. Overlay layers occupy the
// open band between engine and game so an arbitrary number of
// AMS_OVERLAY_DIRS entries can be inserted without colliding with the
// fixed tiers.
const (
	PriorityCore        = 0
	PriorityEngine      = 100
	PriorityOverlayBase = 200
	PriorityOverlayStep = 10
	PriorityGame        = 1000
	PriorityUser        = 10000
)

type layer struct {
	name     string
	priority int
	kind     string // "core", "engine", "overlay", "game", "user" — debug only
	backend  backend
}

// FS is the layered content filesystem.
type FS struct {
	layers []layer
	log    zerolog.Logger
}

// New creates an empty content filesystem.
func New() *FS {
	return &FS{log: logging.For("contentfs")}
}

// AddDiskLayer mounts a real directory at the given priority.
func (f *FS) AddDiskLayer(name string, priority int, kind, root string) {
	f.addLayer(name, priority, kind, newDiskBackend(root))
}

// AddMemLayer mounts an in-memory layer (e.g. for an inline game
// definition's embedded scripts) and returns it so the caller can populate
// it with Put.
func (f *FS) AddMemLayer(name string, priority int, kind string) *MemLayer {
	b := newMemBackend()
	f.addLayer(name, priority, kind, b)
	return &MemLayer{backend: b}
}

// MemLayer is a handle onto an in-memory layer's contents.
type MemLayer struct{ backend *memBackend }

// Put writes a file's bytes into the in-memory layer.
func (m *MemLayer) Put(path string, data []byte) { m.backend.put(path, data) }

func (f *FS) addLayer(name string, priority int, kind string, b backend) {
	// Adding a game layer removes any previously installed game layer with
	// the same logical name before inserting.
	if kind == "game" {
		f.removeLayer(name)
	}
	f.layers = append(f.layers, layer{name: name, priority: priority, kind: kind, backend: b})
	sort.SliceStable(f.layers, func(i, j int) bool {
		return f.layers[i].priority > f.layers[j].priority
	})
	f.log.Debug().Str("layer", name).Int("priority", priority).Str("kind", kind).Msg("layer mounted")
}

func (f *FS) removeLayer(name string) {
	out := f.layers[:0]
	for _, l := range f.layers {
		if l.name != name {
			out = append(out, l)
		}
	}
	f.layers = out
}

// AddOverlayLayers mounts a colon-separated list of overlay directories
// (AMS_OVERLAY_DIRS), each at an incrementing priority above the last.
func (f *FS) AddOverlayLayers(dirs []string) {
	priority := PriorityOverlayBase
	for i, dir := range dirs {
		if dir == "" {
			continue
		}
		f.AddDiskLayer("overlay-"+dir, priority+i*PriorityOverlayStep, "overlay", dir)
	}
}

// firstServing returns the highest-priority layer that contains path.
func (f *FS) firstServing(p string) (layer, bool) {
	for _, l := range f.layers {
		if l.backend.exists(p) {
			return l, true
		}
	}
	return layer{}, false
}

// Exists reports whether path is present in any layer.
func (f *FS) Exists(path string) bool {
	_, ok := f.firstServing(path)
	return ok
}

// IsDir reports whether path resolves to a directory in its serving layer.
func (f *FS) IsDir(path string) bool {
	l, ok := f.firstServing(path)
	return ok && l.backend.isDir(path)
}

// IsFile reports whether path resolves to a file in its serving layer.
func (f *FS) IsFile(path string) bool {
	l, ok := f.firstServing(path)
	return ok && l.backend.isFile(path)
}

// ReadBytes reads path's raw bytes from the highest-priority layer that
// has it.
func (f *FS) ReadBytes(path string) ([]byte, error) {
	l, ok := f.firstServing(path)
	if !ok {
		return nil, ErrResourceNotFound
	}
	return l.backend.readBytes(path)
}

// ReadText reads path as text. encoding is presently informational
// (utf-8 is assumed); it is accepted to leave room for a future
// transcoding layer.
func (f *FS) ReadText(path string, encoding string) (string, error) {
	data, err := f.ReadBytes(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ListDir merges directory listings across every layer, de-duplicated by
// name (highest priority layer wins for a name that appears in several).
func (f *FS) ListDir(path string) ([]string, error) {
	seen := map[string]bool{}
	var names []string
	found := false
	for _, l := range f.layers {
		if !l.backend.isDir(path) {
			continue
		}
		found = true
		entries, err := l.backend.listDir(path)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !seen[e] {
				seen[e] = true
				names = append(names, e)
			}
		}
	}
	if !found {
		return nil, ErrResourceNotFound
	}
	sort.Strings(names)
	return names, nil
}

// WalkFiles merges a recursive file walk across every layer rooted at
// root, filtering by glob patterns against the base name (no filter when
// globs is empty). A root missing from a given layer is non-fatal for
// that layer.
func (f *FS) WalkFiles(root string, globs []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, l := range f.layers {
		paths, err := l.backend.walk(root, globs)
		if err != nil {
			continue
		}
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// ResolveToSystemPath returns the real filesystem path backing path in its
// serving layer, failing with ErrNoSystemPath when that layer is backed
// by something that cannot expose one (e.g. an in-memory layer).
func (f *FS) ResolveToSystemPath(path string) (string, error) {
	l, ok := f.firstServing(path)
	if !ok {
		return "", ErrResourceNotFound
	}
	sysPath, ok := l.backend.systemPath(path)
	if !ok {
		return "", ErrNoSystemPath
	}
	return sysPath, nil
}

// LayerOf returns the logical name of the layer serving path. Debugging
// use only.
func (f *FS) LayerOf(path string) (string, bool) {
	l, ok := f.firstServing(path)
	if !ok {
		return "", false
	}
	return l.name, true
}
