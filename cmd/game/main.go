// Command game loads a game definition from a content directory, wires
// the engine's subsystems together, and runs a fixed number of headless
// ticks — the engine has no renderer or input platform (see Non-goals),
// so this entrypoint exists to exercise the full tick pipeline end to
// end, not to present a playable window.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"ams-engine/internal/config"
	"ams-engine/internal/contentfs"
	"ams-engine/internal/engine"
	"ams-engine/internal/entity"
	"ams-engine/internal/gamedef"
	"ams-engine/internal/interaction"
	"ams-engine/internal/logging"
	"ams-engine/internal/luaengine"
	"ams-engine/internal/profiling"
	"ams-engine/internal/rollback"
	"ams-engine/internal/script"
)

func main() {
	dataDir := flag.String("data", "", "content root directory (overrides AMS_DATA_DIR)")
	gameFile := flag.String("game", "game.yaml", "game definition file, relative to the content root")
	levelFile := flag.String("level", "", "level file to load and spawn, relative to the content root")
	fps := flag.Int("fps", 60, "fixed ticks per second")
	frames := flag.Int("frames", 600, "number of fixed-dt ticks to run")
	seed := flag.Int64("seed", 1, "deterministic RNG seed")
	flag.Parse()

	if err := run(*dataDir, *gameFile, *levelFile, *fps, *frames, *seed); err != nil {
		fmt.Fprintln(os.Stderr, "game:", err)
		os.Exit(1)
	}
}

func run(dataDir, gameFile, levelFile string, fps, frames int, seed int64) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	logging.Configure(cfg.LogLevel, cfg.ModuleLogLevels)
	log := logging.For("main")

	fs := contentfs.New()
	fs.AddDiskLayer("game", contentfs.PriorityGame, "game", cfg.DataDir)
	for i, dir := range cfg.OverlayDirs {
		fs.AddDiskLayer(fmt.Sprintf("overlay%d", i), contentfs.PriorityOverlayBase+i*contentfs.PriorityOverlayStep, "overlay", dir)
	}

	strict := !cfg.SkipSchemaValidation
	gloader := gamedef.NewLoader(fs, strict)
	game, err := gloader.LoadGame(gameFile)
	if err != nil {
		return fmt.Errorf("load game: %w", err)
	}

	bundles, err := gloader.LoadBehaviorBundleDir("behaviors")
	if err != nil {
		log.Warn().Err(err).Msg("no behavior bundle directory found, continuing without it")
		bundles = map[string]*gamedef.BehaviorBundleDoc{}
	}

	types := entity.NewTypeRegistry(game.EntityTypes, bundles)
	if err := types.ResolveAll(); err != nil {
		return fmt.Errorf("resolve entity types: %w", err)
	}

	eng := engine.New(game, types, nil, seed)

	rt, err := luaengine.New(eng, luaengine.Config{TraceCalls: cfg.LogLuaCalls})
	if err != nil {
		return fmt.Errorf("build script runtime: %w", err)
	}
	defer rt.Close()
	eng.SetRuntime(rt)

	if err := loadScripts(fs, strict, rt); err != nil {
		return fmt.Errorf("load scripts: %w", err)
	}

	interactions := interaction.NewEngine(rt, types, eng)
	eng.SetInteractionEngine(interactions)

	sessionName := time.Now().Format("20060102_150405")
	profiler := profiling.NewProfiler(cfg, sessionName)
	eng.SetProfiler(profiler)

	manager := rollback.NewManager(eng, 2*time.Second, fps, 1)
	manager.SetLogger(rollback.CreateLogger(cfg, sessionName))
	manager.SetProfiler(profiler)

	if levelFile != "" {
		level, err := gloader.LoadLevel(levelFile)
		if err != nil {
			return fmt.Errorf("load level: %w", err)
		}
		if err := spawnLevel(eng, level); err != nil {
			return fmt.Errorf("spawn level: %w", err)
		}
	}

	dt := 1.0 / float64(fps)
	won := false
	ranFrames := 0
	for i := 0; i < frames; i++ {
		ranFrames = i + 1
		if manager.Tick(dt) {
			won = true
			break
		}
	}

	log.Info().Int("frames", ranFrames).Int("score", eng.Score()).Bool("won", won).Msg("run complete")
	return nil
}

// loadScripts registers every behavior, collision-action, and generator
// script bundle found under the content filesystem's conventional
// directories. A missing directory is not an error — a game may use only
// one or two of the three script kinds.
func loadScripts(fs *contentfs.FS, strict bool, rt *luaengine.Runtime) error {
	sloader := script.NewLoader(fs, strict)
	dirs := map[string]luaengine.ScriptType{
		"behaviors":         luaengine.ScriptBehavior,
		"collision_actions": luaengine.ScriptCollisionAction,
		"generators":        luaengine.ScriptGenerator,
	}
	for dir, scriptType := range dirs {
		metas, err := sloader.LoadDir(dir, scriptType)
		if err != nil {
			continue
		}
		for _, m := range metas {
			if err := rt.RegisterScript(m.Type, m.Name, m.Source); err != nil {
				return fmt.Errorf("register %s %q: %w", m.Type, m.Name, err)
			}
		}
	}
	return nil
}

// spawnLevel places the player and every entity the level document
// declares, each explicit {type, x, y} entry left otherwise at its
// resolved type's defaults.
func spawnLevel(eng *engine.Engine, level *gamedef.LevelDoc) error {
	if level.Player.Type != "" {
		if _, err := eng.SpawnEntity(level.Player.Type, level.Player.X, level.Player.Y, 0, 0, 0, 0, "", "", nil); err != nil {
			return fmt.Errorf("spawn player: %w", err)
		}
	}
	for _, spawn := range level.Entities {
		if _, err := eng.SpawnEntity(spawn.Type, spawn.X, spawn.Y, 0, 0, 0, 0, "", "", nil); err != nil {
			return fmt.Errorf("spawn %s: %w", spawn.Type, err)
		}
	}
	return nil
}
