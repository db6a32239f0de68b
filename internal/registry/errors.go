package registry

import (
	"fmt"
	"strings"

	glyphcerrors "github.com/glyphlang/glyphc/internal/errors"
)

func newReport(code, msg string, data map[string]any) *glyphcerrors.Report {
	return &glyphcerrors.Report{
		Schema:  "glyphc.error/v1",
		Code:    code,
		Phase:   "registry",
		Message: msg,
		Data:    data,
	}
}

// NewModuleNotFoundError reports REG002: no resolution step found name.
func NewModuleNotFoundError(name string, searched []string) error {
	return glyphcerrors.WrapReport(newReport(glyphcerrors.REG002,
		fmt.Sprintf("module %q not found", name),
		map[string]any{"name": name, "searched_paths": searched}))
}

// NewCircularDependencyError reports REG003 with the cycle path.
func NewCircularDependencyError(cycle []string) error {
	return glyphcerrors.WrapReport(newReport(glyphcerrors.REG003,
		fmt.Sprintf("circular module dependency: %s", strings.Join(cycle, " -> ")),
		map[string]any{"cycle": cycle}))
}

// NewMalformedModuleError reports REG004: a module failed to parse or
// produced inconsistent metadata.
func NewMalformedModuleError(name string, cause error) error {
	data := map[string]any{"name": name}
	if cause != nil {
		data["cause"] = cause.Error()
	}
	return glyphcerrors.WrapReport(newReport(glyphcerrors.REG004,
		fmt.Sprintf("module %q is malformed: %v", name, cause), data))
}

// NewAmbiguousModuleError reports REG005: multiple candidates resolved
// to the same registered path.
func NewAmbiguousModuleError(name string, candidates []string) error {
	return glyphcerrors.WrapReport(newReport(glyphcerrors.REG005,
		fmt.Sprintf("module %q is ambiguous: %s", name, strings.Join(candidates, ", ")),
		map[string]any{"name": name, "candidates": candidates}))
}

// NewNameCollisionError reports REG001: two modules registered under
// the same name.
func NewNameCollisionError(name string) error {
	return glyphcerrors.WrapReport(newReport(glyphcerrors.REG001,
		fmt.Sprintf("module name %q is already registered", name),
		map[string]any{"name": name}))
}

// NewReloadFailedError reports REG006: hot reload failed, previous
// artifact retained.
func NewReloadFailedError(name string, cause error) error {
	data := map[string]any{"name": name}
	if cause != nil {
		data["cause"] = cause.Error()
	}
	return glyphcerrors.WrapReport(newReport(glyphcerrors.REG006,
		fmt.Sprintf("reload of %q failed, previous artifact retained: %v", name, cause), data))
}
