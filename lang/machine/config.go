package machine

import (
	"github.com/caarlos0/env/v6"
)

// DefaultNextGC is the initial collection threshold in bytes.
const DefaultNextGC = 1 << 20

// Config carries the runtime switches of the machine. The zero value is a
// production configuration with the default GC threshold applied by New.
type Config struct {
	// TraceExecution dumps the stack and the disassembled instruction to
	// Stderr before each dispatch.
	TraceExecution bool `env:"TRACE_EXECUTION"`

	// LogGC logs collection phases and per-object mark/free events to Stderr.
	LogGC bool `env:"LOG_GC"`

	// StressGC runs a full collection on every allocation. Slow; meant for
	// flushing out missing GC roots in tests.
	StressGC bool `env:"STRESS_GC"`

	// NextGC is the initial collection threshold in bytes. Zero means
	// DefaultNextGC.
	NextGC int `env:"NEXT_GC"`
}

// ConfigFromEnv loads the configuration from GLOX_-prefixed environment
// variables (GLOX_TRACE_EXECUTION, GLOX_LOG_GC, GLOX_STRESS_GC,
// GLOX_NEXT_GC).
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg, env.Options{Prefix: "GLOX_"}); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
