package event_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenterm/zenbus/event"
)

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"user.login", "user.login", true},
		{"user.login", "user.logout", false},
		{"user.login", "admin.login", false},
		{"user.login", "user.login.success", false},
		{"user.login.success", "user.login", false},

		{"user.*", "user.login", true},
		{"user.*", "user.logout", true},
		{"user.*", "admin.login", false},
		{"user.*", "user.login.success", false},
		{"user.*", "user", false},
		{"*", "user", true},
		{"*", "user.login", false},
		{"*.login", "admin.login", true},
		{"*.*", "a.b", true},
		{"*.*", "a", false},

		{"user.**", "user.login", true},
		{"user.**", "user.login.success", true},
		{"user.**", "user.profile.update.complete", true},
		{"user.**", "user", true},
		{"user.**", "admin.login", false},
		{"user.**", "users.login", false},

		{"**", "anything.goes.here", true},
		{"**", "user", true},
		{"**", "a.very.long.pattern.here", true},

		{"*.login.**", "user.login.success", true},
		{"*.login.**", "admin.login.failed", true},
		{"*.login.**", "user.logout.complete", false},
		{"*.login.**", "login.success", false},
		{"*.login.**", "user.login", true},

		{"user*", "user1", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"~"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, event.MatchPattern(tt.pattern, tt.key))
		})
	}
}

func TestMatchPattern_WithoutMultiWildcardRequiresEqualSegmentCount(t *testing.T) {
	patterns := []string{"a", "a.b", "a.*", "*.b.c", "*.*.*"}
	keys := []string{"a", "a.b", "a.c", "x.b.c", "a.b.c", "a.b.c.d"}

	for _, p := range patterns {
		for _, k := range keys {
			if !event.MatchPattern(p, k) {
				continue
			}
			ps, ks := splitDots(p), splitDots(k)
			require.Equal(t, len(ps), len(ks), "%s matched %s", p, k)
			for i := range ps {
				if ps[i] != "*" {
					assert.Equal(t, ps[i], ks[i], "%s matched %s", p, k)
				}
			}
		}
	}
}

func splitDots(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func TestMatchPattern_InvalidInputsNeverMatch(t *testing.T) {
	assert.False(t, event.MatchPattern("", "user.login"))
	assert.False(t, event.MatchPattern("**", ""))
	assert.False(t, event.MatchPattern("user..login", "user..login"))
	assert.False(t, event.MatchPattern("**.login", "user.login"))
	assert.False(t, event.MatchPattern("user.*", "user.*"))
}

func TestValidatePattern(t *testing.T) {
	valid := []string{"user", "user.login", "user.*", "*", "**", "user.**", "*.login.**", "a.*.c"}
	for _, p := range valid {
		assert.NoError(t, event.ValidatePattern(p), p)
	}

	invalid := []string{"", ".", "user.", ".user", "user..login", "**.login", "user.**.login", "**.**"}
	for _, p := range invalid {
		err := event.ValidatePattern(p)
		require.Error(t, err, p)
		assert.True(t, stderrors.Is(err, event.ErrInvalidPattern), p)
	}
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, event.ValidateKey("user.login"))
	assert.NoError(t, event.ValidateKey("app"))

	for _, k := range []string{"", "user.", "a..b", "user.*", "**"} {
		err := event.ValidateKey(k)
		require.Error(t, err, k)
		assert.True(t, stderrors.Is(err, event.ErrInvalidKey), k)
	}
}

func TestParsePattern(t *testing.T) {
	p, err := event.ParsePattern("user.*")
	require.NoError(t, err)
	assert.Equal(t, "user.*", p.String())
	assert.True(t, p.IsWildcard())
	assert.True(t, p.Matches("user.login"))

	assert.False(t, event.MustParsePattern("user.login").IsWildcard())
	assert.Panics(t, func() { event.MustParsePattern("a..b") })
}

func BenchmarkMatchPattern(b *testing.B) {
	p := event.MustParsePattern("*.login.**")
	for i := 0; i < b.N; i++ {
		p.Matches("user.login.success.today")
	}
}
