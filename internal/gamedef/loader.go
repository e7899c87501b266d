package gamedef

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"ams-engine/internal/contentfs"
	"ams-engine/internal/logging"
)

// Loader reads and structurally validates game, level, and behaviour
// bundle documents from a layered content filesystem.
type Loader struct {
	fs     *contentfs.FS
	strict bool
	log    zerolog.Logger
}

// NewLoader creates a Loader. strict mirrors script.Loader's mode: a
// validation failure aborts the load in strict mode, or is logged and
// surfaced as an error to the caller in lenient mode (the caller decides
// whether to skip it).
func NewLoader(fs *contentfs.FS, strict bool) *Loader {
	return &Loader{fs: fs, strict: strict, log: logging.For("gamedef")}
}

// LoadGame loads the top-level game definition at path, normalizing its
// legacy collision list and validating its structure.
func (l *Loader) LoadGame(path string) (*GameDoc, error) {
	raw, err := l.fs.ReadBytes(path)
	if err != nil {
		return nil, fmt.Errorf("gamedef: read %s: %w", path, err)
	}
	var doc GameDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("gamedef: parse %s: %w", path, err)
	}
	doc.normalize()
	if err := doc.validate(); err != nil {
		l.log.Warn().Str("file", path).Err(err).Msg("game definition validation failed")
		return nil, err
	}
	return &doc, nil
}

// LoadLevel loads a level document at path.
func (l *Loader) LoadLevel(path string) (*LevelDoc, error) {
	raw, err := l.fs.ReadBytes(path)
	if err != nil {
		return nil, fmt.Errorf("gamedef: read %s: %w", path, err)
	}
	var doc LevelDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("gamedef: parse %s: %w", path, err)
	}
	if err := doc.validate(); err != nil {
		l.log.Warn().Str("file", path).Err(err).Msg("level validation failed")
		return nil, err
	}
	return &doc, nil
}

// LoadBehaviorBundle loads a behaviour bundle document at path.
func (l *Loader) LoadBehaviorBundle(path string) (*BehaviorBundleDoc, error) {
	raw, err := l.fs.ReadBytes(path)
	if err != nil {
		return nil, fmt.Errorf("gamedef: read %s: %w", path, err)
	}
	var doc BehaviorBundleDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("gamedef: parse %s: %w", path, err)
	}
	if doc.Name == "" {
		doc.Name = stem(path)
	}
	if err := doc.validate(); err != nil {
		l.log.Warn().Str("file", path).Err(err).Msg("behaviour bundle validation failed")
		return nil, err
	}
	return &doc, nil
}

// LoadBehaviorBundleDir loads every `.yaml` behaviour bundle in dir,
// skipping (lenient) or failing (strict) on any file that fails to parse
// or validate.
func (l *Loader) LoadBehaviorBundleDir(dir string) (map[string]*BehaviorBundleDoc, error) {
	names, err := l.fs.ListDir(dir)
	if err != nil {
		return nil, fmt.Errorf("gamedef: list %s: %w", dir, err)
	}
	out := make(map[string]*BehaviorBundleDoc)
	for _, name := range names {
		p := dir + "/" + name
		doc, err := l.LoadBehaviorBundle(p)
		if err != nil {
			if l.strict {
				return nil, err
			}
			continue
		}
		out[doc.Name] = doc
	}
	return out, nil
}

func stem(p string) string {
	base := p
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			base = p[i+1:]
			break
		}
	}
	for _, suffix := range []string{".yaml", ".yml"} {
		if len(base) > len(suffix) && base[len(base)-len(suffix):] == suffix {
			return base[:len(base)-len(suffix)]
		}
	}
	return base
}
