package env_mode

import (
	"os"
	"strings"
	"sync"
)

// EnvKey selects the runtime mode. LegacyEnvKey is consulted when EnvKey is
// unset.
const (
	EnvKey       = "ZENBUS_ENV"
	LegacyEnvKey = "GO_ENV_MODE"
)

type Mode string

const (
	DevMode  Mode = "development"
	ProMode  Mode = "production"
	TestMode Mode = "test"
)

var (
	mu      sync.RWMutex
	current Mode
)

// Parse normalizes common spellings. Anything unrecognised is DevMode.
func Parse(env string) Mode {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "pro":
		return ProMode
	case "test", "testing":
		return TestMode
	default:
		return DevMode
	}
}

// Current returns the mode read from the environment on first use, or the
// last value passed to Set.
func Current() Mode {
	mu.RLock()
	m := current
	mu.RUnlock()
	if m != "" {
		return m
	}

	mu.Lock()
	defer mu.Unlock()
	if current == "" {
		env, ok := os.LookupEnv(EnvKey)
		if !ok {
			env = os.Getenv(LegacyEnvKey)
		}
		current = Parse(env)
	}
	return current
}

// Set overrides the mode for this process and exports it to child processes.
func Set(mode Mode) {
	mu.Lock()
	current = mode
	mu.Unlock()
	_ = os.Setenv(EnvKey, string(mode))
}

// Reset forgets the cached mode so the next Current call re-reads the
// environment.
func Reset() {
	mu.Lock()
	current = ""
	mu.Unlock()
}

func IsDev() bool  { return Current() == DevMode }
func IsProd() bool { return Current() == ProMode }
func IsTest() bool { return Current() == TestMode }

func (m Mode) String() string { return string(m) }
