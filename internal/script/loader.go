package script

import (
	"fmt"
	"path"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"ams-engine/internal/contentfs"
	"ams-engine/internal/logging"
	"ams-engine/internal/luaengine"
)

// ErrValidation is the sentinel wrapped by every schema-validation
// failure, so callers can distinguish it from a YAML syntax error.
var ErrValidation = fmt.Errorf("script: validation failed")

// Loader reads script bundles from a layered content filesystem.
type Loader struct {
	fs     *contentfs.FS
	strict bool
	log    zerolog.Logger
}

// NewLoader creates a Loader. In strict mode a validation failure fails
// the load; in lenient mode it is logged and the script is skipped.
func NewLoader(fs *contentfs.FS, strict bool) *Loader {
	return &Loader{fs: fs, strict: strict, log: logging.For("script")}
}

// bundleDoc is the raw shape of a `*.lua.yaml` script document.
type bundleDoc struct {
	Type        string                 `yaml:"type"`
	Name        string                 `yaml:"name"`
	Lua         string                 `yaml:"lua"`
	Description string                 `yaml:"description"`
	Version     string                 `yaml:"version"`
	Author      string                 `yaml:"author"`
	Tags        []string               `yaml:"tags"`
	Config      map[string]interface{} `yaml:"config"`
	Args        map[string]interface{} `yaml:"args"`
	Requires    []string               `yaml:"requires"`
	Provides    []string               `yaml:"provides"`
	Examples    []string               `yaml:"examples"`
}

// LoadFile loads and validates the script bundle at path, defaulting Name
// to the file stem when absent.
func (l *Loader) LoadFile(filePath string) (*Metadata, error) {
	raw, err := l.fs.ReadBytes(filePath)
	if err != nil {
		return nil, fmt.Errorf("script: read %s: %w", filePath, err)
	}

	var doc bundleDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("script: parse %s: %w", filePath, err)
	}

	if doc.Name == "" {
		doc.Name = stem(filePath)
	}

	return l.finish(doc, filePath)
}

// LoadInline loads a bundle from an already-parsed mapping, used when a
// game definition embeds a script under inline_behaviors / etc.
func (l *Loader) LoadInline(name string, raw map[string]interface{}) (*Metadata, error) {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("script: re-marshal inline %s: %w", name, err)
	}
	var doc bundleDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("script: parse inline %s: %w", name, err)
	}
	if doc.Name == "" {
		doc.Name = name
	}
	return l.finish(doc, "inline")
}

// LoadDir loads every script of the given type in a directory, skipping
// and logging (not failing) any file whose own type does not match —
// mismatches are reported as validation warnings, not directory-load
// errors.
func (l *Loader) LoadDir(dir string, scriptType luaengine.ScriptType) ([]*Metadata, error) {
	names, err := l.fs.ListDir(dir)
	if err != nil {
		return nil, fmt.Errorf("script: list %s: %w", dir, err)
	}

	var out []*Metadata
	for _, name := range names {
		if !strings.HasSuffix(name, ".lua.yaml") {
			continue
		}
		filePath := path.Join(dir, name)
		meta, err := l.LoadFile(filePath)
		if err != nil {
			if l.strict {
				return nil, err
			}
			l.log.Warn().Str("file", filePath).Err(err).Msg("script load failed, skipping")
			continue
		}
		if meta.Type != scriptType {
			l.log.Warn().Str("file", filePath).Str("type", string(meta.Type)).Str("want", string(scriptType)).Msg("script type does not match directory, skipping")
			continue
		}
		out = append(out, meta)
	}
	return out, nil
}

func (l *Loader) finish(doc bundleDoc, origin string) (*Metadata, error) {
	if err := l.validate(doc); err != nil {
		if l.strict {
			return nil, err
		}
		l.log.Warn().Str("name", doc.Name).Str("origin", origin).Err(err).Msg("script validation failed")
		return nil, err
	}

	return &Metadata{
		Name:        doc.Name,
		Type:        validTypes[doc.Type],
		Source:      doc.Lua,
		Description: doc.Description,
		Version:     doc.Version,
		Author:      doc.Author,
		Tags:        doc.Tags,
		Config:      doc.Config,
		Args:        doc.Args,
		Requires:    doc.Requires,
		Provides:    doc.Provides,
		Examples:    doc.Examples,
		Origin:      origin,
	}, nil
}

// validate applies the structural schema: type must be one of the known
// script types, lua must be present.
func (l *Loader) validate(doc bundleDoc) error {
	if _, ok := validTypes[doc.Type]; !ok {
		return fmt.Errorf("%w: unknown type %q", ErrValidation, doc.Type)
	}
	if strings.TrimSpace(doc.Lua) == "" {
		return fmt.Errorf("%w: missing lua field", ErrValidation)
	}
	return nil
}

func stem(p string) string {
	base := path.Base(p)
	base = strings.TrimSuffix(base, ".lua.yaml")
	base = strings.TrimSuffix(base, ".yaml")
	return base
}
