package luaengine

// HostAPI is the set of engine operations reachable from script code
// through the `ams` namespace. It is implemented by the entity engine
// (internal/engine) and injected into the runtime at construction, so
// this package never imports the engine package — scripts only ever see
// entity identifiers, never a host-side reference.
type HostAPI interface {
	// Property / config access.
	GetProp(entityID, key string) (Value, bool)
	SetProp(entityID, key string, value Value)
	GetConfig(entityID, key string) (Value, bool)

	// Transform.
	GetX(entityID string) float64
	SetX(entityID string, v float64)
	GetY(entityID string) float64
	SetY(entityID string, v float64)
	GetVX(entityID string) float64
	SetVX(entityID string, v float64)
	GetVY(entityID string) float64
	SetVY(entityID string, v float64)
	GetWidth(entityID string) float64
	GetHeight(entityID string) float64

	// Visual.
	GetSprite(entityID string) string
	SetSprite(entityID string, v string)
	GetColor(entityID string) string
	SetColor(entityID string, v string)

	// Lifecycle.
	GetHealth(entityID string) int
	SetHealth(entityID string, v int)
	IsAlive(entityID string) bool
	Destroy(entityID string)

	// Spawning.
	Spawn(typeName string, x, y, vx, vy, w, h float64, color, sprite string) string

	// Queries.
	EntitiesOfType(typeName string) []string
	EntitiesByTag(tag string) []string
	CountEntitiesByTag(tag string) int
	AllEntityIDs() []string

	// World state.
	ScreenWidth() float64
	ScreenHeight() float64
	Score() int
	AddScore(delta int)
	Time() float64

	// Deferred events.
	PlaySound(name string)
	Schedule(delay float64, callback, entityID string)

	// Hierarchy.
	ParentID(entityID string) (string, bool)
	SetParent(entityID, parentID string)
	DetachFromParent(entityID string)
	Children(entityID string) []string
	HasParent(entityID string) bool

	// Deterministic RNG, seeded from game time/state so rollback
	// resimulation is reproducible.
	Random() float64
	RandomRange(lo, hi float64) float64
}
