// Package config resolves the small set of runtime knobs this library
// reads from the environment: SQLite busy-timeout and log format. Every
// knob can be overridden per call via an explicit Options value, which
// always wins over the environment.
package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/deckwave/enginelibrary/internal/schema"
	"github.com/deckwave/enginelibrary/pkg/logger"
)

const (
	envBusyTimeoutMs = "ENGINELIB_BUSY_TIMEOUT_MS"
	envLogFormat     = "ENGINELIB_LOG_FORMAT"

	defaultBusyTimeoutMs = 5000
)

// Options controls per-call behavior of Open/Create. The zero value resolves
// every field from the environment (or the built-in default) via Resolve.
type Options struct {
	// BusyTimeout bounds how long a statement waits for SQLite's write lock
	// before returning SQLITE_BUSY. Zero means "use the environment or
	// default".
	BusyTimeout time.Duration

	// DefaultCreateVersion is the schema version Create uses when the
	// caller does not specify one. The zero Version means "use the newest
	// enumerated version" (schema.Latest).
	DefaultCreateVersion schema.Version

	// LogFormat selects the pkg/logger output format for this library's
	// internal logging ("json" or "text"). Empty means "use the environment
	// or json".
	LogFormat logger.Format
}

// Resolve fills in every zero field of o from the environment, falling back
// to built-in defaults. It never mutates o; it returns a new, fully-resolved
// Options.
func Resolve(o Options) Options {
	v := viper.New()
	v.SetDefault(envBusyTimeoutMs, defaultBusyTimeoutMs)
	v.SetDefault(envLogFormat, string(logger.FormatJSON))
	v.BindEnv(envBusyTimeoutMs)
	v.BindEnv(envLogFormat)

	resolved := o
	if resolved.BusyTimeout == 0 {
		resolved.BusyTimeout = time.Duration(v.GetInt(envBusyTimeoutMs)) * time.Millisecond
	}
	if resolved.DefaultCreateVersion == (schema.Version{}) {
		resolved.DefaultCreateVersion = schema.Latest
	}
	if resolved.LogFormat == "" {
		resolved.LogFormat = logger.Format(v.GetString(envLogFormat))
	}

	return resolved
}
