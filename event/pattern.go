package event

import (
	"strings"

	"github.com/zenterm/zenbus/errors"
)

const (
	// Separator splits keys and patterns into segments.
	Separator = "."
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"
	// WildcardMulti matches zero or more trailing segments. Only valid as the
	// last segment of a pattern.
	WildcardMulti = "**"
)

// Pattern is a parsed, validated subscription pattern.
type Pattern struct {
	raw      string
	segments []string
}

// ParsePattern validates pattern and splits it into segments.
//
// Rules:
//   - the pattern is non-empty and no segment is empty
//   - "**" appears at most once and only as the final segment
//   - "*" and "**" must occupy a whole segment ("user*" is a literal)
func ParsePattern(pattern string) (Pattern, error) {
	if pattern == "" {
		return Pattern{}, errors.NewInvalidPattern(pattern, "pattern is empty")
	}

	segments := strings.Split(pattern, Separator)
	for i, seg := range segments {
		if seg == "" {
			return Pattern{}, errors.NewInvalidPattern(pattern, "empty segment")
		}
		if seg == WildcardMulti && i != len(segments)-1 {
			return Pattern{}, errors.NewInvalidPattern(pattern, "\"**\" must be the final segment")
		}
	}
	return Pattern{raw: pattern, segments: segments}, nil
}

// MustParsePattern is like ParsePattern but panics on error.
func MustParsePattern(pattern string) Pattern {
	p, err := ParsePattern(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the pattern as registered.
func (p Pattern) String() string {
	return p.raw
}

// IsWildcard reports whether the pattern contains any wildcard segment.
func (p Pattern) IsWildcard() bool {
	for _, seg := range p.segments {
		if seg == WildcardSingle || seg == WildcardMulti {
			return true
		}
	}
	return false
}

// Matches reports whether key is routed to this pattern. key must already be
// a valid event key.
func (p Pattern) Matches(key string) bool {
	if len(p.segments) == 0 {
		return false
	}
	return matchSegments(p.segments, key)
}

// matchSegments walks key segment by segment without allocating.
func matchSegments(pattern []string, key string) bool {
	rest := key
	for i, seg := range pattern {
		if seg == WildcardMulti {
			return true
		}
		if i > 0 {
			// consume the separator left by the previous segment
			if rest == "" {
				return false
			}
			rest = rest[len(Separator):]
		}
		if rest == "" {
			return false
		}

		var part string
		if idx := strings.Index(rest, Separator); idx >= 0 {
			part, rest = rest[:idx], rest[idx:]
		} else {
			part, rest = rest, ""
		}
		if seg != WildcardSingle && seg != part {
			return false
		}
	}
	return rest == ""
}

// MatchPattern reports whether key matches pattern. Invalid patterns and
// invalid keys never match.
func MatchPattern(pattern, key string) bool {
	p, err := ParsePattern(pattern)
	if err != nil {
		return false
	}
	if ValidateKey(key) != nil {
		return false
	}
	return p.Matches(key)
}

// ValidatePattern returns an InvalidPattern error describing why pattern
// cannot be registered, or nil.
func ValidatePattern(pattern string) error {
	_, err := ParsePattern(pattern)
	return err
}

// ValidateKey checks that key is a concrete event key: non-empty segments and
// no wildcard segments.
func ValidateKey(key string) error {
	if key == "" {
		return errors.NewInvalidKey(key, "key is empty")
	}
	for _, seg := range strings.Split(key, Separator) {
		switch seg {
		case "":
			return errors.NewInvalidKey(key, "empty segment")
		case WildcardSingle, WildcardMulti:
			return errors.NewInvalidKey(key, "wildcards are not allowed in event keys")
		}
	}
	return nil
}
