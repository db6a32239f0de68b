package asyncexec

import (
	"testing"

	glyphcerrors "github.com/glyphlang/glyphc/internal/errors"
)

func TestWrapCallback_InvokesResolvedFunction(t *testing.T) {
	session := NewSession()
	session.Define("onTick", func(args ...any) (any, error) {
		return args[0], nil
	})

	cb := WrapCallback(session, "onTick", nil, "", nil)
	result, err := cb(7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 7 {
		t.Fatalf("result = %v, want 7", result)
	}
}

func TestWrapCallback_SessionClosedBetweenCaptureAndInvocation(t *testing.T) {
	session := NewSession()
	session.Define("onTick", func(args ...any) (any, error) {
		return "ran", nil
	})

	cb := WrapCallback(session, "onTick", nil, "", nil)
	session.Close()

	_, err := cb()
	report, ok := glyphcerrors.AsReport(err)
	if !ok {
		t.Fatalf("expected a Report error, got %v", err)
	}
	if report.Code != glyphcerrors.ASY002 {
		t.Fatalf("code = %s, want %s", report.Code, glyphcerrors.ASY002)
	}
}

func TestWrapCallback_TargetNeverDefinedReturnsDistinctError(t *testing.T) {
	session := NewSession()

	cb := WrapCallback(session, "missing", nil, "", nil)
	_, err := cb()
	report, ok := glyphcerrors.AsReport(err)
	if !ok {
		t.Fatalf("expected a Report error, got %v", err)
	}
	if report.Code != glyphcerrors.ASY003 {
		t.Fatalf("code = %s, want %s", report.Code, glyphcerrors.ASY003)
	}
}

func TestWrapCallback_LateBindingPicksUpRedefinition(t *testing.T) {
	session := NewSession()
	session.Define("onTick", func(args ...any) (any, error) {
		return "v1", nil
	})

	cb := WrapCallback(session, "onTick", nil, "", nil)

	result, err := cb()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "v1" {
		t.Fatalf("result = %v, want v1", result)
	}

	session.Define("onTick", func(args ...any) (any, error) {
		return "v2", nil
	})

	result, err = cb()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "v2" {
		t.Fatalf("result = %v, want v2 after hot reload redefined the target", result)
	}
}

func TestWrapCallback_DistinguishesSessionClosedFromTargetMissing(t *testing.T) {
	session := NewSession()
	cb := WrapCallback(session, "neverDefined", nil, "", nil)

	_, err := cb()
	missingReport, _ := glyphcerrors.AsReport(err)

	session.Close()
	_, err = cb()
	closedReport, _ := glyphcerrors.AsReport(err)

	if missingReport.Code == closedReport.Code {
		t.Fatalf("expected distinct codes for target-missing vs session-closed, both were %s", missingReport.Code)
	}
}
