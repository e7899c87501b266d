package gamedef

import (
	"fmt"
)

// Entity type names referenced by a LoseConditionDoc or TransformDoc are
// not checked here; whether such a name resolves is internal/entity's job
// once extends chains are flattened.

// validate applies structural checks at the document boundary: required
// fields present, enums within their known set, no dangling `extends`
// cycle at the syntactic level (full cycle detection over the flattened
// graph is internal/entity's responsibility since it needs every entity
// type document loaded, not just this one file).
func (d *GameDoc) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: game.name is required", ErrValidation)
	}
	if d.ScreenWidth <= 0 || d.ScreenHeight <= 0 {
		return fmt.Errorf("%w: screen_width and screen_height must be positive", ErrValidation)
	}
	for name, et := range d.EntityTypes {
		if name == "" {
			return fmt.Errorf("%w: entity_types has a blank key", ErrValidation)
		}
		if et.Extends == name {
			return fmt.Errorf("%w: entity type %q extends itself: %v", ErrValidation, name, ErrCyclicInheritance)
		}
		if err := et.validate(name); err != nil {
			return err
		}
	}
	for _, lc := range d.LoseConditions {
		if err := lc.validate(); err != nil {
			return err
		}
	}
	for i, a := range d.Assets {
		if err := a.validate(); err != nil {
			return fmt.Errorf("%w: assets[%d]: %v", ErrValidation, i, err)
		}
	}
	return nil
}

func (et *EntityTypeDoc) validate(name string) error {
	if et.Width < 0 || et.Height < 0 {
		return fmt.Errorf("%w: entity type %q has negative dimensions", ErrValidation, name)
	}
	for target, clauses := range et.Interactions {
		if target == "" {
			return fmt.Errorf("%w: entity type %q has a blank interaction target key", ErrValidation, name)
		}
		for i, c := range clauses {
			if err := c.validate(); err != nil {
				return fmt.Errorf("%w: entity type %q interactions[%s][%d]: %v", ErrValidation, name, target, i, err)
			}
		}
	}
	return nil
}

var validTriggers = map[string]bool{"enter": true, "continuous": true, "exit": true}

func (c *InteractionDoc) validate() error {
	if c.Trigger == "" {
		return fmt.Errorf("%w: interaction clause missing trigger", ErrValidation)
	}
	if !validTriggers[c.Trigger] {
		return fmt.Errorf("%w: unknown interaction trigger %q", ErrValidation, c.Trigger)
	}
	if c.Action == "" {
		return fmt.Errorf("%w: interaction clause missing action", ErrValidation)
	}
	return nil
}

var validLoseEvents = map[string]bool{"exit_screen": true, "property_true": true}

func (lc *LoseConditionDoc) validate() error {
	if !validLoseEvents[lc.Event] {
		return fmt.Errorf("%w: unknown lose_conditions event %q", ErrValidation, lc.Event)
	}
	if lc.Event == "property_true" && lc.Property == "" {
		return fmt.Errorf("%w: lose_conditions event property_true requires property", ErrValidation)
	}
	return nil
}

func (a *AssetDoc) validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: asset missing name", ErrValidation)
	}
	set := 0
	if a.Path != "" {
		set++
	}
	if a.DataURI != "" {
		set++
	}
	if a.SharedFile != "" {
		set++
	}
	if set == 0 {
		return fmt.Errorf("%w: asset %q has none of path/data_uri/shared_file", ErrValidation, a.Name)
	}
	return nil
}

func (l *LevelDoc) validate() error {
	if len(l.Entities) == 0 && l.Layout == "" {
		return fmt.Errorf("%w: level has neither entities nor layout", ErrValidation)
	}
	if l.Layout != "" && len(l.LayoutKey) == 0 {
		return fmt.Errorf("%w: level has layout but no layout_key", ErrValidation)
	}
	return nil
}

func (b *BehaviorBundleDoc) validate() error {
	if b.Name == "" {
		return fmt.Errorf("%w: behaviour bundle missing name", ErrValidation)
	}
	return nil
}
