package gamedef

import "fmt"

// ErrValidation is wrapped by every structural validation failure.
var ErrValidation = fmt.Errorf("gamedef: validation failed")

// ErrCyclicInheritance is returned when an entity type's `extends` chain
// loops back on itself.
var ErrCyclicInheritance = fmt.Errorf("gamedef: cyclic entity-type inheritance")
