package glyphrt

import (
	"fmt"

	glyphcerrors "github.com/glyphlang/glyphc/internal/errors"
)

// ErrForbiddenCall reports RT009: a dynamic-dispatch call site resolved
// to a callee that is neither a known SL function/method nor a
// whitelisted host builtin (spec.md §4.9: "ForbiddenCall").
func ErrForbiddenCall(name string) error {
	return glyphcerrors.WrapReport(newReport(glyphcerrors.RT009,
		fmt.Sprintf("call to %q is not permitted through dynamic dispatch", name),
		map[string]any{"name": name}))
}

// ErrForbiddenAttribute reports RT010: safe_attr denied access because
// the requested attribute is not public/whitelisted for the object's
// class (spec.md §4.9: "ForbiddenAttribute").
func ErrForbiddenAttribute(class, attr string) error {
	return glyphcerrors.WrapReport(newReport(glyphcerrors.RT010,
		fmt.Sprintf("attribute %q is not public on %q", attr, class),
		map[string]any{"class": class, "attribute": attr}))
}

// ErrSessionClosed reports RT011: a callback wrapper was invoked after
// its session closed (spec.md §5's callback safety invariant: "If the
// session is closed between capture and invocation, the wrapper returns
// a SessionClosed error without calling anything").
func ErrSessionClosed(fnName string) error {
	return glyphcerrors.WrapReport(newReport(glyphcerrors.RT011,
		fmt.Sprintf("session closed before callback %q could be invoked", fnName),
		map[string]any{"fn_name": fnName}))
}

func newReport(code, msg string, data map[string]any) *glyphcerrors.Report {
	return &glyphcerrors.Report{Schema: "glyphc.error/v1", Code: code, Phase: "runtime", Message: msg, Data: data}
}
