// Package logging provides the process-wide structured logging sink, with
// per-module level overrides driven by AMS_LOG_LEVEL / AMS_LOG_<MODULE>.
package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	base    zerolog.Logger
	modules map[string]string // module -> level name, lower-cased
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	modules = map[string]string{}
}

// Configure sets the base log level and the per-module overrides. Call once
// at startup; safe to call again (e.g. in tests) to reconfigure.
func Configure(defaultLevel string, moduleLevels map[string]string) {
	mu.Lock()
	defer mu.Unlock()

	lvl, err := zerolog.ParseLevel(strings.ToLower(defaultLevel))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	base = base.Level(lvl)

	modules = make(map[string]string, len(moduleLevels))
	for k, v := range moduleLevels {
		modules[strings.ToLower(k)] = v
	}
}

// For returns a child logger scoped to the named module, honoring any
// AMS_LOG_<MODULE> override registered via Configure.
func For(module string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	logger := base.With().Str("module", module).Logger()
	if levelName, ok := modules[strings.ToLower(module)]; ok {
		if lvl, err := zerolog.ParseLevel(strings.ToLower(levelName)); err == nil {
			logger = logger.Level(lvl)
		}
	}
	return logger
}
