package validator

import (
	"testing"

	"github.com/glyphlang/glyphc/internal/ast"
	glyphcerrors "github.com/glyphlang/glyphc/internal/errors"
)

func hasCode(reports []*glyphcerrors.Report, code string) bool {
	for _, r := range reports {
		if r.Code == code {
			return true
		}
	}
	return false
}

func TestValidate_BreakOutsideLoop(t *testing.T) {
	file := &ast.File{
		Funcs: []*ast.FuncDecl{{
			Name:     "f",
			StmtBody: []ast.Node{&ast.BreakStmt{}},
		}},
	}
	reports, err := Validate(file)
	if err != nil {
		t.Fatalf("unexpected hard failure: %v", err)
	}
	if !hasCode(reports, glyphcerrors.VAL006) {
		t.Fatalf("expected VAL006, got %+v", reports)
	}
}

func TestValidate_ReturnOutsideFunction(t *testing.T) {
	file := &ast.File{
		Statements: []ast.Node{&ast.ReturnStmt{}},
	}
	reports, err := Validate(file)
	if err != nil {
		t.Fatalf("unexpected hard failure: %v", err)
	}
	if !hasCode(reports, glyphcerrors.VAL007) {
		t.Fatalf("expected VAL007, got %+v", reports)
	}
}

func TestValidate_LoopAllowsBreakAndContinue(t *testing.T) {
	file := &ast.File{
		Funcs: []*ast.FuncDecl{{
			Name: "f",
			StmtBody: []ast.Node{
				&ast.WhileStmt{
					Condition: &ast.Identifier{Name: "true"},
					Body:      []ast.Node{&ast.BreakStmt{}, &ast.ContinueStmt{}},
				},
			},
		}},
	}
	reports, err := Validate(file)
	if err != nil {
		t.Fatalf("unexpected hard failure: %v", err)
	}
	if hasCode(reports, glyphcerrors.VAL006) {
		t.Fatalf("did not expect VAL006 inside a loop, got %+v", reports)
	}
}

func TestValidate_CollidingParameters(t *testing.T) {
	file := &ast.File{
		Funcs: []*ast.FuncDecl{{
			Name:   "f",
			Params: []*ast.Param{{Name: "x"}, {Name: "x"}},
			Body:   &ast.Identifier{Name: "x"},
		}},
	}
	_, err := Validate(file)
	if err == nil {
		t.Fatal("expected a hard failure for colliding parameters")
	}
	report, ok := glyphcerrors.AsReport(err)
	if !ok || report.Code != glyphcerrors.VAL004 {
		t.Fatalf("expected VAL004 report, got %v", err)
	}
}

func TestValidate_NonlocalUnbound(t *testing.T) {
	file := &ast.File{
		Funcs: []*ast.FuncDecl{{
			Name:     "f",
			StmtBody: []ast.Node{&ast.NonlocalStmt{Names: []string{"ghost"}}},
		}},
	}
	reports, err := Validate(file)
	if err != nil {
		t.Fatalf("unexpected hard failure: %v", err)
	}
	if !hasCode(reports, glyphcerrors.VAL005) {
		t.Fatalf("expected VAL005, got %+v", reports)
	}
}

func TestValidate_WellFormedFunction(t *testing.T) {
	file := &ast.File{
		Funcs: []*ast.FuncDecl{{
			Name:   "add",
			Params: []*ast.Param{{Name: "a"}, {Name: "b"}},
			Body: &ast.BinaryOp{
				Left:  &ast.Identifier{Name: "a"},
				Op:    "+",
				Right: &ast.Identifier{Name: "b"},
			},
		}},
	}
	reports, err := Validate(file)
	if err != nil {
		t.Fatalf("unexpected hard failure: %v", err)
	}
	if len(reports) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", reports)
	}
}
