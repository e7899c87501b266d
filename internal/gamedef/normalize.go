package gamedef

// normalize folds the legacy bare-pair `collisions` list into
// CollisionBehaviors. CollisionBehaviors entries win on conflict, since
// they are the more specific, newer form; legacy pairs only fill in gaps
// (decision recorded in DESIGN.md).
func (d *GameDoc) normalize() {
	if d.CollisionBehaviors == nil {
		d.CollisionBehaviors = make(map[string]map[string]string)
	}
	for _, pair := range d.Collisions {
		if pair.Source == "" || pair.Target == "" || pair.Action == "" {
			continue
		}
		byTarget, ok := d.CollisionBehaviors[pair.Source]
		if !ok {
			byTarget = make(map[string]string)
			d.CollisionBehaviors[pair.Source] = byTarget
		}
		if _, exists := byTarget[pair.Target]; !exists {
			byTarget[pair.Target] = pair.Action
		}
	}
}
