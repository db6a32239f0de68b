// Package capability implements the capability-token and capability-context
// model described in spec.md §4.8: immutable grants of authority that
// emitted runtime guards check before performing a sensitive action.
//
// This generalizes the teacher's internal/effects package (a flat
// name-only capability set) into the richer model the spec requires:
// resource glob patterns, per-context usage accounting, expiry, and a
// context tree rather than a single flat map.
package capability

import (
	"path"
	"strings"
	"sync/atomic"
	"time"

	glyphcerrors "github.com/glyphlang/glyphc/internal/errors"
)

// Token is an immutable grant of authority to perform CapabilityType on
// resources matching ResourcePatterns, subject to Constraints, MaxUsage,
// and ExpiresAt. Once minted a Token is never mutated; per-context usage
// accounting lives on the Context, not the Token (spec.md §3).
type Token struct {
	CapabilityType   string            // "<domain>.<action>", e.g. "file.read"
	ResourcePatterns []string          // glob grammar: "*", "**", literal segments
	Constraints      map[string]string // e.g. {"read_only": "true", "max_size": "1048576"}
	CreatedAt        time.Time
	ExpiresAt        *time.Time // nil = never expires
	MaxUsage         *uint64    // nil = unlimited

	usageCount uint64 // accounting state, accessed via atomic ops; not part of token identity
}

// NewToken mints an immutable capability token. The zero value of
// resourcePatterns means "matches any resource" (spec.md §4.8: "if
// resource_patterns is non-empty, at least one pattern globs over
// resource").
func NewToken(capabilityType string, resourcePatterns []string, constraints map[string]string) *Token {
	if constraints == nil {
		constraints = map[string]string{}
	}
	return &Token{
		CapabilityType:   capabilityType,
		ResourcePatterns: append([]string(nil), resourcePatterns...),
		Constraints:      constraints,
		CreatedAt:        time.Now(),
	}
}

// WithExpiry returns a copy of the token (same identity, new expiry) —
// tokens are immutable, so this mints a new value rather than mutating.
func (t *Token) WithExpiry(expiresAt time.Time) *Token {
	clone := *t
	clone.ExpiresAt = &expiresAt
	clone.usageCount = 0
	return &clone
}

// WithMaxUsage returns a copy of the token with a usage ceiling attached.
func (t *Token) WithMaxUsage(max uint64) *Token {
	clone := *t
	clone.MaxUsage = &max
	clone.usageCount = 0
	return &clone
}

// UsageCount returns the current usage accounting value.
func (t *Token) UsageCount() uint64 {
	return atomic.LoadUint64(&t.usageCount)
}

// Expired reports whether the token's expires_at has passed.
func (t *Token) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// Exhausted reports whether max_usage has been reached.
func (t *Token) Exhausted() bool {
	return t.MaxUsage != nil && t.UsageCount() >= *t.MaxUsage
}

// Matches reports whether this token authorizes capabilityType on
// resource, honoring the documented glob grammar and constraint map.
func (t *Token) Matches(capabilityType, resource string, constraints map[string]string) bool {
	if t.CapabilityType != capabilityType {
		return false
	}
	if len(t.ResourcePatterns) > 0 && resource != "" {
		matched := false
		for _, pattern := range t.ResourcePatterns {
			if globMatch(pattern, resource) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for k, v := range constraints {
		if tv, ok := t.Constraints[k]; ok && tv != v {
			return false
		}
	}
	return true
}

// use attempts to atomically increment the usage count, honoring
// max_usage and expires_at. Returns an error if the use is rejected.
func (t *Token) use(now time.Time) error {
	if t.Expired(now) {
		return glyphcerrors.WrapReport(NewExpiredError(t))
	}
	for {
		cur := atomic.LoadUint64(&t.usageCount)
		if t.MaxUsage != nil && cur >= *t.MaxUsage {
			return glyphcerrors.WrapReport(NewExhaustedError(t))
		}
		if atomic.CompareAndSwapUint64(&t.usageCount, cur, cur+1) {
			return nil
		}
	}
}

// globMatch implements the documented resource-pattern grammar: "*"
// matches exactly one path segment, "**" matches any number of segments
// (including zero), literal segments match exactly. This is a deliberate
// per-segment matcher rather than a full regex engine — see SPEC_FULL.md
// §5 "Open Question decisions".
func globMatch(pattern, resource string) bool {
	if pattern == resource {
		return true
	}
	pParts := strings.Split(pattern, "/")
	rParts := strings.Split(resource, "/")
	return globMatchParts(pParts, rParts)
}

func globMatchParts(pattern, resource []string) bool {
	if len(pattern) == 0 {
		return len(resource) == 0
	}
	head := pattern[0]
	if head == "**" {
		if globMatchParts(pattern[1:], resource) {
			return true
		}
		if len(resource) == 0 {
			return false
		}
		return globMatchParts(pattern, resource[1:])
	}
	if len(resource) == 0 {
		return false
	}
	ok, err := path.Match(head, resource[0])
	if err != nil || !ok {
		return false
	}
	return globMatchParts(pattern[1:], resource[1:])
}
