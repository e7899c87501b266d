package contentfs

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// backend is a single physical root a Layer is mounted on. Two
// implementations are provided: diskBackend for a real directory tree and
// memBackend for in-memory content (used by tests and by inline game
// definitions that embed scripts).
type backend interface {
	exists(p string) bool
	isDir(p string) bool
	isFile(p string) bool
	readBytes(p string) ([]byte, error)
	listDir(p string) ([]string, error)
	// walk returns every file path (relative, slash-separated) under root
	// whose base name matches at least one of globs. A missing root is not
	// an error; it yields no entries.
	walk(root string, globs []string) ([]string, error)
	systemPath(p string) (string, bool)
}

// diskBackend serves files from a real directory on the host filesystem.
type diskBackend struct {
	root string
}

func newDiskBackend(root string) *diskBackend { return &diskBackend{root: root} }

func (b *diskBackend) abs(p string) string {
	return filepath.Join(b.root, filepath.FromSlash(path.Clean("/"+p)))
}

func (b *diskBackend) exists(p string) bool {
	_, err := os.Stat(b.abs(p))
	return err == nil
}

func (b *diskBackend) isDir(p string) bool {
	info, err := os.Stat(b.abs(p))
	return err == nil && info.IsDir()
}

func (b *diskBackend) isFile(p string) bool {
	info, err := os.Stat(b.abs(p))
	return err == nil && !info.IsDir()
}

func (b *diskBackend) readBytes(p string) ([]byte, error) {
	return os.ReadFile(b.abs(p))
}

func (b *diskBackend) listDir(p string) ([]string, error) {
	entries, err := os.ReadDir(b.abs(p))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (b *diskBackend) walk(root string, globs []string) ([]string, error) {
	absRoot := b.abs(root)
	if _, err := os.Stat(absRoot); err != nil {
		return nil, nil // missing root is non-fatal
	}

	var out []string
	err := filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if len(globs) > 0 && !matchesAny(filepath.Base(p), globs) {
			return nil
		}
		rel, err := filepath.Rel(b.root, p)
		if err != nil {
			return nil
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out, err
}

func (b *diskBackend) systemPath(p string) (string, bool) {
	return b.abs(p), true
}

// memBackend serves content from an in-memory map, keyed by
// slash-separated path. Used for inline-embedded scripts and tests; has no
// system path.
type memBackend struct {
	files map[string][]byte
}

func newMemBackend() *memBackend {
	return &memBackend{files: make(map[string][]byte)}
}

func (b *memBackend) put(p string, data []byte) {
	b.files[path.Clean("/"+p)] = data
}

func (b *memBackend) clean(p string) string { return path.Clean("/" + p) }

func (b *memBackend) exists(p string) bool {
	p = b.clean(p)
	if _, ok := b.files[p]; ok {
		return true
	}
	return b.isDir(p)
}

func (b *memBackend) isDir(p string) bool {
	p = b.clean(p)
	prefix := p
	if prefix != "/" {
		prefix += "/"
	}
	for f := range b.files {
		if strings.HasPrefix(f, prefix) && f != p {
			return true
		}
	}
	return false
}

func (b *memBackend) isFile(p string) bool {
	_, ok := b.files[b.clean(p)]
	return ok
}

func (b *memBackend) readBytes(p string) ([]byte, error) {
	data, ok := b.files[b.clean(p)]
	if !ok {
		return nil, ErrResourceNotFound
	}
	return data, nil
}

func (b *memBackend) listDir(p string) ([]string, error) {
	prefix := b.clean(p)
	if prefix != "/" {
		prefix += "/"
	}
	seen := map[string]bool{}
	var names []string
	for f := range b.files {
		if !strings.HasPrefix(f, prefix) {
			continue
		}
		rest := strings.TrimPrefix(f, prefix)
		name := strings.SplitN(rest, "/", 2)[0]
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (b *memBackend) walk(root string, globs []string) ([]string, error) {
	prefix := b.clean(root)
	if prefix != "/" {
		prefix += "/"
	} else {
		prefix = "/"
	}
	var out []string
	for f := range b.files {
		if !strings.HasPrefix(f, prefix) {
			continue
		}
		if len(globs) > 0 && !matchesAny(path.Base(f), globs) {
			continue
		}
		out = append(out, strings.TrimPrefix(f, "/"))
	}
	sort.Strings(out)
	return out, nil
}

func (b *memBackend) systemPath(p string) (string, bool) { return "", false }

func matchesAny(name string, globs []string) bool {
	for _, g := range globs {
		if ok, err := path.Match(g, name); ok && err == nil {
			return true
		}
	}
	return false
}
