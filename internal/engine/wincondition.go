package engine

import (
	"ams-engine/internal/entity"
	"ams-engine/internal/gamedef"
)

// winEvaluator checks the game's single win condition each tick.
type winEvaluator struct {
	condition  string
	target     interface{}
	targetType string
}

func newWinEvaluator(condition string, target interface{}, targetType string) winEvaluator {
	return winEvaluator{condition: condition, target: target, targetType: targetType}
}

// Check reports whether the win condition currently holds.
func (w winEvaluator) Check(e *Engine) bool {
	switch w.condition {
	case "destroy_all":
		typeName, _ := w.target.(string)
		if typeName == "" {
			return false
		}
		return len(e.EntityIDsOfType(typeName)) == 0
	case "reach_score":
		return e.score >= toInt(w.target)
	case "survive_time":
		return e.elapsedTime >= toFloat(w.target)
	case "survival":
		return e.missCount >= toInt(w.target)
	default:
		return false
	}
}

func toInt(v interface{}) int {
	switch t := v.(type) {
	case int:
		return t
	case int32:
		return int(t)
	case int64:
		return int(t)
	case float64:
		return int(t)
	default:
		return 0
	}
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	default:
		return 0
	}
}

// RecordMiss increments the miss counter the "survival" win condition
// checks.
func (e *Engine) RecordMiss() { e.missCount++ }

// CheckWin reports whether the game's win condition currently holds.
func (e *Engine) CheckWin() bool { return e.win.Check(e) }

// edgeCrossed reports whether ent has moved fully past screen edge.
func edgeCrossed(e *Engine, x, y, w, h float64, edge string) bool {
	switch edge {
	case "left":
		return x+w < 0
	case "right":
		return x > e.screenWidth
	case "top":
		return y+h < 0
	case "bottom":
		return y > e.screenHeight
	default:
		return false
	}
}

// EvaluateLoseConditions applies each declared event-based lose clause:
// an entity of the named type that exited the screen through edge, or
// whose named property became truthy, triggers the clause's side
// effects in order (lose a life, destroy a named type's entities,
// transform the triggering entity, clear a property on it).
func (e *Engine) EvaluateLoseConditions() {
	for _, lc := range e.lose {
		switch lc.Event {
		case "exit_screen":
			e.evaluateExitScreenClause(lc)
		case "property_true":
			e.evaluatePropertyTrueClause(lc)
		}
	}
}

func (e *Engine) evaluateExitScreenClause(lc gamedef.LoseConditionDoc) {
	for _, id := range e.EntityIDsOfType(lc.EntityType) {
		ent := e.entities[id]
		if ent == nil || !edgeCrossed(e, ent.X, ent.Y, ent.W, ent.H, lc.Edge) {
			continue
		}
		e.applyLoseClauseEffects(lc, ent.ID)
	}
}

func (e *Engine) evaluatePropertyTrueClause(lc gamedef.LoseConditionDoc) {
	for _, id := range e.EntityIDsOfType(lc.EntityType) {
		ent := e.entities[id]
		if ent == nil || ent.Properties == nil {
			continue
		}
		truthy, _ := ent.Properties[lc.Property].(bool)
		if !truthy {
			continue
		}
		e.applyLoseClauseEffects(lc, ent.ID)
	}
}

func (e *Engine) applyLoseClauseEffects(lc gamedef.LoseConditionDoc, triggerID entity.ID) {
	if lc.LoseLife {
		e.SetLives(e.lives - 1)
	}
	if lc.DestroyType != "" {
		for _, id := range e.EntityIDsOfType(lc.DestroyType) {
			e.DestroyEntity(id)
		}
	}
	if lc.TransformType != "" {
		if ent := e.entities[triggerID]; ent != nil {
			e.applyTransform(ent, &gamedef.TransformDoc{Type: lc.TransformType})
		}
	}
	if lc.ClearProperty != "" {
		if ent := e.entities[triggerID]; ent != nil && ent.Properties != nil {
			delete(ent.Properties, lc.ClearProperty)
		}
	}
}
