package engine

import "ams-engine/internal/entity"

// setParent links child under parent, recording an offset from the
// parent's current position.
func (e *Engine) setParent(childID, parentID entity.ID) {
	child := e.Get(childID)
	parent := e.Get(parentID)
	if child == nil || parent == nil {
		return
	}
	e.removeFromParent(childID)
	child.ParentID = parentID
	child.OffsetX = child.X - parent.X
	child.OffsetY = child.Y - parent.Y
	parent.Children = append(parent.Children, childID)
}

// removeFromParent detaches id from its parent's Children list, if any.
func (e *Engine) removeFromParent(id entity.ID) {
	child := e.Get(id)
	if child == nil || child.ParentID == "" {
		return
	}
	parent := e.entities[child.ParentID]
	if parent != nil {
		parent.Children = removeID(parent.Children, id)
	}
	child.ParentID = ""
}

func removeID(ids []entity.ID, target entity.ID) []entity.ID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

func (e *Engine) childrenOf(id entity.ID) []entity.ID {
	ent, ok := e.entities[id]
	if !ok {
		return nil
	}
	return ent.Children
}
