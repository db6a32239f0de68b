package capability

import (
	"fmt"

	glyphcerrors "github.com/glyphlang/glyphc/internal/errors"
)

// NewMissingError reports CAP001: no token in the active context authorizes
// capabilityType on resource.
func NewMissingError(capabilityType, resource string) *glyphcerrors.Report {
	return &glyphcerrors.Report{
		Schema:  "glyphc.error/v1",
		Code:    glyphcerrors.CAP001,
		Phase:   "capability",
		Message: fmt.Sprintf("no capability %q granted for resource %q", capabilityType, resource),
		Data: map[string]any{
			"capability_type": capabilityType,
			"resource":        resource,
		},
	}
}

// NewExhaustedError reports CAP002: a token's max_usage ceiling was reached.
func NewExhaustedError(t *Token) *glyphcerrors.Report {
	return &glyphcerrors.Report{
		Schema:  "glyphc.error/v1",
		Code:    glyphcerrors.CAP002,
		Phase:   "capability",
		Message: fmt.Sprintf("capability %q exhausted its usage budget", t.CapabilityType),
		Data: map[string]any{
			"capability_type": t.CapabilityType,
			"usage_count":     t.UsageCount(),
			"max_usage":       t.MaxUsage,
		},
	}
}

// NewExpiredError reports CAP003: a token's expires_at has passed.
func NewExpiredError(t *Token) *glyphcerrors.Report {
	return &glyphcerrors.Report{
		Schema:  "glyphc.error/v1",
		Code:    glyphcerrors.CAP003,
		Phase:   "capability",
		Message: fmt.Sprintf("capability %q expired at %s", t.CapabilityType, t.ExpiresAt),
		Data: map[string]any{
			"capability_type": t.CapabilityType,
			"expires_at":      t.ExpiresAt,
		},
	}
}
