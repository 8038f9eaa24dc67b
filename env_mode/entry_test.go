package env_mode

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := map[string]Mode{
		"":            DevMode,
		"dev":         DevMode,
		" Production": ProMode,
		"prod":        ProMode,
		"PRO":         ProMode,
		"testing":     TestMode,
		"staging":     DevMode,
	}
	for in, want := range cases {
		assert.Equal(t, want, Parse(in), "Parse(%q)", in)
	}
}

func TestCurrentReadsEnvironment(t *testing.T) {
	t.Cleanup(Reset)

	t.Setenv(EnvKey, "prod")
	Reset()
	assert.Equal(t, ProMode, Current())
	assert.True(t, IsProd())

	// cached until Reset
	t.Setenv(EnvKey, "test")
	assert.Equal(t, ProMode, Current())
}

func TestCurrentFallsBackToLegacyKey(t *testing.T) {
	t.Cleanup(Reset)

	t.Setenv(EnvKey, "")
	os.Unsetenv(EnvKey)
	t.Setenv(LegacyEnvKey, "test")
	Reset()
	assert.Equal(t, TestMode, Current())
}

func TestSetUpdatesCache(t *testing.T) {
	t.Cleanup(Reset)
	t.Setenv(EnvKey, "development")

	Set(TestMode)
	assert.Equal(t, TestMode, Current())
	assert.True(t, IsTest())
	assert.False(t, IsDev())
}
