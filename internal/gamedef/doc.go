// Package gamedef parses and structurally validates the YAML/JSON
// documents that describe a game: the top-level game definition, level
// documents, behaviour bundles, and asset definitions.
//
// This package only parses and validates; it never resolves `extends`
// chains or expands behaviour bundles into concrete interactions — that
// is internal/entity's job, operating on the typed documents defined
// here.
package gamedef

import "gopkg.in/yaml.v3"

// GameDoc is the top-level game definition document.
type GameDoc struct {
	Name            string                 `yaml:"name"`
	Description     string                 `yaml:"description"`
	Version         string                 `yaml:"version"`
	Author          string                 `yaml:"author"`
	ScreenWidth     float64                `yaml:"screen_width"`
	ScreenHeight    float64                `yaml:"screen_height"`
	BackgroundColor [3]int                 `yaml:"background_color"`
	Defaults        map[string]interface{} `yaml:"defaults"`
	EntityTypes     map[string]EntityTypeDoc `yaml:"entity_types"`

	// Legacy and current collision dispatch entry points; normalize folds
	// both into CollisionBehaviors.
	Collisions         []CollisionPairDoc          `yaml:"collisions"`
	CollisionBehaviors map[string]map[string]string `yaml:"collision_behaviors"`

	InputMapping      map[string]string `yaml:"input_mapping"`
	GlobalOnInput     string            `yaml:"global_on_input"`
	LoseConditions    []LoseConditionDoc `yaml:"lose_conditions"`
	Player            PlayerSpawnDoc    `yaml:"player"`
	WinCondition      string            `yaml:"win_condition"`
	WinTarget         interface{}       `yaml:"win_target"`
	WinTargetType     string            `yaml:"win_target_type"`
	LoseOnPlayerDeath bool              `yaml:"lose_on_player_death"`
	DefaultLayout     string            `yaml:"default_layout"`

	Assets []AssetDoc `yaml:"assets"`

	InlineBehaviors        map[string]map[string]interface{} `yaml:"inline_behaviors"`
	InlineCollisionActions map[string]map[string]interface{} `yaml:"inline_collision_actions"`
	InlineGenerators       map[string]map[string]interface{} `yaml:"inline_generators"`
	InlineInputActions     map[string]map[string]interface{} `yaml:"inline_input_actions"`
}

// CollisionPairDoc is one entry of the legacy bare-pair `collisions` list.
type CollisionPairDoc struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
	Action string `yaml:"action"`
}

// LoseConditionDoc is one event-based lose clause evaluated each tick.
type LoseConditionDoc struct {
	Event          string `yaml:"event"` // "exit_screen" | "property_true"
	EntityType     string `yaml:"entity_type"`
	Edge           string `yaml:"edge"`     // for exit_screen
	Property       string `yaml:"property"` // for property_true
	LoseLife       bool   `yaml:"lose_life"`
	DestroyType    string `yaml:"destroy_type"`
	TransformType  string `yaml:"transform_type"`
	ClearProperty  string `yaml:"clear_property"`
}

// PlayerSpawnDoc names the player type and its spawn coordinates.
type PlayerSpawnDoc struct {
	Type string  `yaml:"type"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// EntityTypeDoc is the raw recipe an entity type document declares,
// prior to `extends` resolution.
type EntityTypeDoc struct {
	Extends  string  `yaml:"extends"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Color    string  `yaml:"color"`
	Sprite   string  `yaml:"sprite"`
	Health   int32   `yaml:"health"`
	Points   int     `yaml:"points"`
	Tags     []string `yaml:"tags"`
	Behaviors []string `yaml:"behaviors"`
	// BehaviorConfig maps a declared behaviour name to its per-type
	// config overrides.
	BehaviorConfig map[string]map[string]interface{} `yaml:"behavior_config"`
	// Interactions maps a target key (entity type, base type, or system
	// entity name) to the ordered clause list declared directly on this
	// type. InteractionOrder holds the same keys in the order they
	// appeared in the source document — a plain Go map loses that, so
	// UnmarshalYAML recovers it from the raw mapping node.
	Interactions     map[string][]InteractionDoc `yaml:"interactions"`
	InteractionOrder []string                    `yaml:"-"`

	RenderCommands []interface{} `yaml:"render_commands"`

	OnDestroy       *TransformDoc            `yaml:"on_destroy"`
	OnParentDestroy *TransformDoc            `yaml:"on_parent_destroy"`
	OnUpdate        []ConditionalTransformDoc `yaml:"on_update"`
}

// UnmarshalYAML decodes an EntityTypeDoc normally, then walks the raw
// mapping node to recover the declared order of the interactions key's
// own keys, which yaml.v3's default map decoding discards.
func (d *EntityTypeDoc) UnmarshalYAML(node *yaml.Node) error {
	type plain EntityTypeDoc
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*d = EntityTypeDoc(p)
	d.InteractionOrder = mappingKeyOrder(node, "interactions")
	return nil
}

// mappingKeyOrder returns the declaration order of the keys under
// field within a YAML mapping node, or nil if field is absent or not
// itself a mapping.
func mappingKeyOrder(node *yaml.Node, field string) []string {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != field {
			continue
		}
		child := node.Content[i+1]
		if child.Kind != yaml.MappingNode {
			return nil
		}
		keys := make([]string, 0, len(child.Content)/2)
		for j := 0; j+1 < len(child.Content); j += 2 {
			keys = append(keys, child.Content[j].Value)
		}
		return keys
	}
	return nil
}

// InteractionDoc is one declarative interaction clause.
type InteractionDoc struct {
	Trigger  string                 `yaml:"trigger"` // enter | continuous | exit
	Filter   string                 `yaml:"filter"`
	Action   string                 `yaml:"action"`
	Modifier map[string]interface{} `yaml:"modifier"`
}

// ConditionalTransformDoc is a per-frame transform fired once `condition`
// evaluates truthy.
type ConditionalTransformDoc struct {
	Condition string       `yaml:"condition"`
	Transform TransformDoc `yaml:"transform"`
}

// TransformDoc is the transform primitive: destroy the entity, rewrite it
// to another type, or spawn children.
type TransformDoc struct {
	Type  string         `yaml:"type"` // "destroy" | <entity_type>
	Spawn []SpawnSpecDoc `yaml:"spawn"`
}

// SpawnSpecDoc describes one (or N, via Count) child spawned by a
// transform.
type SpawnSpecDoc struct {
	Type             string                 `yaml:"type"`
	OffsetX          float64                `yaml:"offset_x"`
	OffsetY          float64                `yaml:"offset_y"`
	Count            int                    `yaml:"count"`
	InheritVelocity  float64                `yaml:"inherit_velocity"`
	Lifetime         *float64               `yaml:"lifetime"`
	Properties       map[string]interface{} `yaml:"properties"`
}

// AssetDoc is one standalone sprite/sound entry, sheet, or a
// `@named-shared-file` reference.
type AssetDoc struct {
	Name       string               `yaml:"name"`
	Path       string               `yaml:"path"`
	DataURI    string               `yaml:"data_uri"`
	SharedFile string               `yaml:"shared_file"` // "@other-asset-name"
	Regions    map[string]RegionDoc `yaml:"regions"`
}

// RegionDoc is one named rectangular region inside a sprite/sound sheet.
type RegionDoc struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// LevelDoc is a level document: either an explicit entity list or an
// ASCII layout plus a key mapping characters to entity types.
type LevelDoc struct {
	Name    string            `yaml:"name"`
	Lives   int               `yaml:"lives"`
	Player  PlayerSpawnDoc    `yaml:"player"`
	Entities []EntitySpawnDoc `yaml:"entities"`
	Layout  string            `yaml:"layout"`
	LayoutKey map[string]string `yaml:"layout_key"`
	Grid    GridDoc           `yaml:"grid"`
}

// EntitySpawnDoc is one explicit {type, x, y} entry in a level's
// `entities` list.
type EntitySpawnDoc struct {
	Type string  `yaml:"type"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// GridDoc describes the cell geometry an ASCII `layout` is rasterised
// against.
type GridDoc struct {
	CellWidth  float64 `yaml:"cell_width"`
	CellHeight float64 `yaml:"cell_height"`
}

// BehaviorBundleDoc is a behaviour bundle document: named config
// parameters with defaults, and an interactions map whose values may
// contain "$config.<name>" references.
type BehaviorBundleDoc struct {
	Name        string                       `yaml:"name"`
	Description string                       `yaml:"description"`
	Config      map[string]ConfigParamDoc    `yaml:"config"`
	Interactions map[string][]InteractionDoc `yaml:"interactions"`
	InteractionOrder []string                `yaml:"-"`
}

// UnmarshalYAML decodes a BehaviorBundleDoc normally, then recovers the
// declared order of its interactions key's own keys the same way
// EntityTypeDoc.UnmarshalYAML does.
func (d *BehaviorBundleDoc) UnmarshalYAML(node *yaml.Node) error {
	type plain BehaviorBundleDoc
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*d = BehaviorBundleDoc(p)
	d.InteractionOrder = mappingKeyOrder(node, "interactions")
	return nil
}

// ConfigParamDoc is one named parameter of a behaviour bundle's config
// schema.
type ConfigParamDoc struct {
	Default interface{} `yaml:"default"`
}
