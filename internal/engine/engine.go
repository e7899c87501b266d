// Package engine owns the authoritative entity map and orchestrates the
// per-tick pipeline: physics, behaviour dispatch, interaction evaluation,
// transforms, and win/lose evaluation. It implements luaengine.HostAPI so
// scripts can only ever reach entities through identifier-keyed calls,
// never a raw reference.
package engine

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ams-engine/internal/entity"
	"ams-engine/internal/gamedef"
	"ams-engine/internal/logging"
	"ams-engine/internal/luaengine"
)

// PendingSound is one queued sound-effect request, drained by the host
// platform's audio subsystem each tick.
type PendingSound struct {
	Name string
}

// ScheduledCallback fires a user-named method on the entity that
// scheduled it once TimeRemaining reaches zero.
type ScheduledCallback struct {
	TimeRemaining float64
	Callback      string
	EntityID      entity.ID
}

// Engine is the live game state: entities, score, lives, elapsed time,
// and the subsystems that act on them. Fields are unexported so the
// HostAPI accessor methods of the same conceptual name (ScreenWidth,
// Score, ...) don't collide with them; exported accessors below are the
// only way in or out.
type Engine struct {
	log zerolog.Logger

	types   *entity.TypeRegistry
	runtime *luaengine.Runtime
	rng     *rand.Rand
	rngSrc  *splitmix64 // backs rng; its state is what EngineState snapshots

	entities map[entity.ID]*entity.Entity
	order    []entity.ID // insertion order, for deterministic iteration

	screenWidth, screenHeight float64
	score                     int
	lives                     int
	elapsedTime               float64
	stateTag                  string

	scheduled []ScheduledCallback
	sounds    []PendingSound
	missCount int

	interactions InteractionRunner
	pointer      PointerState
	profiler     FrameProfiler

	game *gamedef.GameDoc

	win  winEvaluator
	lose []gamedef.LoseConditionDoc
}

// New builds an engine bound to a resolved set of entity types, a script
// runtime, and the game's screen/win/lose configuration. seed drives the
// deterministic RNG: script-visible randomness must be seeded from game
// time, or a seed that is itself snapshotted, so rollback resimulation
// reproduces identical results.
func New(game *gamedef.GameDoc, types *entity.TypeRegistry, runtime *luaengine.Runtime, seed int64) *Engine {
	rngSrc := newSplitmix64(seed)
	e := &Engine{
		log:          logging.For("engine"),
		types:        types,
		runtime:      runtime,
		rng:          rand.New(rngSrc),
		rngSrc:       rngSrc,
		entities:     make(map[entity.ID]*entity.Entity),
		screenWidth:  game.ScreenWidth,
		screenHeight: game.ScreenHeight,
		lives:        1,
		game:         game,
		lose:         game.LoseConditions,
	}
	e.win = newWinEvaluator(game.WinCondition, game.WinTarget, game.WinTargetType)
	return e
}

// SetRuntime attaches the script runtime after construction, breaking the
// construction cycle between Engine and luaengine.Runtime: the runtime
// needs a HostAPI (this Engine) to be built, and the Engine needs a
// runtime to dispatch behaviour hooks, so callers build the Engine with a
// nil runtime, build the Runtime with that Engine as its host, then wire
// it back with SetRuntime.
func (e *Engine) SetRuntime(runtime *luaengine.Runtime) {
	e.runtime = runtime
}

// SpawnEntity creates an entity of typeName at (x, y), overlaying the
// recipe's defaults with overrides, assigns a "<type>_<8-hex-uuid>"
// identifier, adds it to the entity map and spawn order, and merges
// initial properties before firing on_spawn. This is the properties-carrying entry
// point used by level loading and transform execution; the HostAPI-facing
// ams.spawn (hostapi.go) has a fixed 9-argument signature and no
// properties parameter, so it wraps this with nil.
func (e *Engine) SpawnEntity(typeName string, x, y, vx, vy, w, h float64, color, sprite string, properties map[string]interface{}) (entity.ID, error) {
	rt, err := e.types.Resolve(typeName)
	if err != nil {
		return "", fmt.Errorf("engine: spawn %q: %w", typeName, err)
	}

	id := entity.ID(fmt.Sprintf("%s_%s", typeName, shortUUID()))

	width, height := rt.Width, rt.Height
	if w > 0 {
		width = w
	}
	if h > 0 {
		height = h
	}
	entColor := rt.Color
	if color != "" {
		entColor = color
	}
	entSprite := rt.Sprite
	if sprite != "" {
		entSprite = sprite
	}

	ent := &entity.Entity{
		ID:             id,
		Type:           typeName,
		BaseType:       rt.BaseType,
		Alive:          true,
		X:              x,
		Y:              y,
		VX:             vx,
		VY:             vy,
		W:              width,
		H:              height,
		Color:          entColor,
		Sprite:         entSprite,
		Visible:        true,
		Health:         rt.Health,
		Points:         rt.Points,
		SpawnTime:      e.elapsedTime,
		Tags:           tagSet(rt.Tags),
		Behaviors:      append([]string(nil), rt.Behaviors...),
		BehaviorConfig: rt.BehaviorConfig,
		Properties:     properties,
	}
	if ent.Properties == nil {
		ent.Properties = make(map[string]interface{})
	}

	e.entities[id] = ent
	e.order = append(e.order, id)

	e.dispatchLifecycle(ent, "on_spawn")

	return id, nil
}

func shortUUID() string {
	full := uuid.New().String()
	// strip hyphens, take first 8 hex chars.
	compact := make([]byte, 0, 8)
	for _, c := range full {
		if c == '-' {
			continue
		}
		compact = append(compact, byte(c))
		if len(compact) == 8 {
			break
		}
	}
	return string(compact)
}

func tagSet(tags []string) map[string]bool {
	out := make(map[string]bool, len(tags))
	for _, t := range tags {
		out[t] = true
	}
	return out
}

// Get returns the live entity for id, or nil if it doesn't exist or is
// dead. Scripts never receive this pointer; only package engine and
// internal/interaction, internal/rollback use it directly.
func (e *Engine) Get(id entity.ID) *entity.Entity {
	ent, ok := e.entities[id]
	if !ok || !ent.Alive {
		return nil
	}
	return ent
}

// OrderedIDs returns every live entity id in spawn order.
func (e *Engine) OrderedIDs() []entity.ID {
	out := make([]entity.ID, 0, len(e.order))
	for _, id := range e.order {
		if ent, ok := e.entities[id]; ok && ent.Alive {
			out = append(out, id)
		}
	}
	return out
}

// EntityIDsOfType returns live entity ids whose Type or BaseType matches
// typeName, in insertion order.
func (e *Engine) EntityIDsOfType(typeName string) []entity.ID {
	var out []entity.ID
	for _, id := range e.OrderedIDs() {
		ent := e.entities[id]
		if ent.Type == typeName || ent.BaseType == typeName {
			out = append(out, id)
		}
	}
	return out
}

// EntityIDsByTag returns live entity ids carrying tag, in insertion order.
func (e *Engine) EntityIDsByTag(tag string) []entity.ID {
	var out []entity.ID
	for _, id := range e.OrderedIDs() {
		if e.entities[id].HasTag(tag) {
			out = append(out, id)
		}
	}
	return out
}

// Lives returns the player's remaining lives.
func (e *Engine) Lives() int { return e.lives }

// SetLives sets the player's remaining lives (floored at zero).
func (e *Engine) SetLives(n int) {
	if n < 0 {
		n = 0
	}
	e.lives = n
}

// StateTag returns the engine's internal state tag, e.g. "playing",
// "won", "lost".
func (e *Engine) StateTag() string { return e.stateTag }

// SetStateTag sets the engine's internal state tag.
func (e *Engine) SetStateTag(tag string) { e.stateTag = tag }

// PendingSounds drains and returns the queued sound requests.
func (e *Engine) PendingSounds() []PendingSound {
	out := e.sounds
	e.sounds = nil
	return out
}
