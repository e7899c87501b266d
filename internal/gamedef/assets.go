package gamedef

import (
	"fmt"
	"strings"
)

// ErrAssetNotFound is returned when a resolved reference names no
// registered asset.
var ErrAssetNotFound = fmt.Errorf("gamedef: asset not found")

// ResolvedAsset is an AssetDoc with its `shared_file` reference (if any)
// followed through to the underlying path/data URI it points at.
type ResolvedAsset struct {
	Name    string
	Path    string
	DataURI string
	Regions map[string]RegionDoc
}

// AssetRegistry indexes a game's declared assets by name and resolves
// `@shared-file` references, mirroring the original engine's
// asset_registry.py: named assets may alias another asset's backing file
// while declaring their own sub-regions.
type AssetRegistry struct {
	byName map[string]AssetDoc
}

// NewAssetRegistry indexes assets, the later entry winning on duplicate
// names.
func NewAssetRegistry(assets []AssetDoc) *AssetRegistry {
	r := &AssetRegistry{byName: make(map[string]AssetDoc, len(assets))}
	for _, a := range assets {
		r.byName[a.Name] = a
	}
	return r
}

// Resolve follows a `shared_file` chain to the asset that actually backs
// storage, returning the leaf's path/data URI paired with the requested
// asset's own regions.
func (r *AssetRegistry) Resolve(name string) (ResolvedAsset, error) {
	asset, ok := r.byName[name]
	if !ok {
		return ResolvedAsset{}, fmt.Errorf("%w: %q", ErrAssetNotFound, name)
	}

	seen := map[string]bool{name: true}
	leaf := asset
	for leaf.SharedFile != "" {
		target := strings.TrimPrefix(leaf.SharedFile, "@")
		if seen[target] {
			return ResolvedAsset{}, fmt.Errorf("gamedef: cyclic shared_file reference starting at %q", name)
		}
		seen[target] = true
		next, ok := r.byName[target]
		if !ok {
			return ResolvedAsset{}, fmt.Errorf("%w: %q (shared_file of %q)", ErrAssetNotFound, target, name)
		}
		leaf = next
	}

	return ResolvedAsset{
		Name:    asset.Name,
		Path:    leaf.Path,
		DataURI: leaf.DataURI,
		Regions: asset.Regions,
	}, nil
}

// Names returns every registered asset name.
func (r *AssetRegistry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	return out
}
