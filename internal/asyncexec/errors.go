package asyncexec

import (
	"fmt"

	glyphcerrors "github.com/glyphlang/glyphc/internal/errors"
)

func newReport(code, msg string, data map[string]any) *glyphcerrors.Report {
	return &glyphcerrors.Report{Schema: "glyphc.error/v1", Code: code, Phase: "async", Message: msg, Data: data}
}

// ErrTimeout reports ASY001: an async task exceeded its timeout.
func ErrTimeout() error {
	return glyphcerrors.WrapReport(newReport(glyphcerrors.ASY001, "async task exceeded its timeout", nil))
}

// ErrSessionClosed reports ASY002: a callback fired after its owning
// session closed.
func ErrSessionClosed(fnName string) error {
	return glyphcerrors.WrapReport(newReport(glyphcerrors.ASY002,
		fmt.Sprintf("session closed before callback %q could be invoked", fnName),
		map[string]any{"fn_name": fnName}))
}

// ErrCallbackTargetMissing reports ASY003: a callback's late-bound
// function name is no longer defined in the session's namespace.
func ErrCallbackTargetMissing(fnName string) error {
	return glyphcerrors.WrapReport(newReport(glyphcerrors.ASY003,
		fmt.Sprintf("callback target %q is not defined in this session", fnName),
		map[string]any{"fn_name": fnName}))
}
