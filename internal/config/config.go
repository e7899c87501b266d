// Package config binds the AMS_* environment variables to a typed struct.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

// EnvConfig mirrors the engine's AMS_* environment-variable table.
type EnvConfig struct {
	DataDir               string   `env:"AMS_DATA_DIR"`
	OverlayDirs           []string `env:"AMS_OVERLAY_DIRS" envSeparator:":"`
	SkipSchemaValidation  bool     `env:"AMS_SKIP_SCHEMA_VALIDATION"`
	LogLevel              string   `env:"AMS_LOG_LEVEL" envDefault:"info"`
	LogLuaCalls           bool     `env:"AMS_LOG_LUA_CALLS"`
	LogLuaScripts         bool     `env:"AMS_LOG_LUA_SCRIPTS"`
	RollbackLogEnabled    bool     `env:"AMS_LOGGING_ROLLBACK_ENABLED"`
	RollbackLogInterval   int      `env:"AMS_LOGGING_ROLLBACK_INTERVAL" envDefault:"1"`
	LogDir                string   `env:"AMS_LOG_DIR" envDefault:"./debug_logs"`
	ProfileLoggingEnabled bool     `env:"AMS_LOGGING_PROFILE_ENABLED"`

	// ModuleLogLevels holds the per-module AMS_LOG_<MODULE> overrides.
	// caarlos0/env cannot bind a dynamic-suffix key, so this is filled by
	// LoadModuleLevels rather than a struct tag.
	ModuleLogLevels map[string]string `env:"-"`
}

// Load reads the process environment into an EnvConfig.
func Load() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.ModuleLogLevels = LoadModuleLevels(os.Environ())
	return cfg, nil
}

// LoadModuleLevels scans a set of "KEY=VALUE" environment entries for
// AMS_LOG_<MODULE> overrides and returns module name (lower-cased) -> level.
func LoadModuleLevels(environ []string) map[string]string {
	const prefix = "AMS_LOG_"
	// Reserved suffixes that are their own top-level variables, not module
	// overrides.
	reserved := map[string]bool{"LEVEL": true, "LUA_CALLS": true, "LUA_SCRIPTS": true, "DIR": true}

	levels := make(map[string]string)
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, prefix) {
			continue
		}
		suffix := strings.TrimPrefix(k, prefix)
		if reserved[suffix] {
			continue
		}
		if suffix == "" || v == "" {
			continue
		}
		levels[strings.ToLower(suffix)] = v
	}
	return levels
}

// Bool parses a loosely-formatted boolean environment value, defaulting to
// false on empty or unparsable input. Kept for call sites that read a raw
// os.Getenv instead of going through EnvConfig.
func Bool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}
