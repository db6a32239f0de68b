package transform

import (
	"testing"

	"github.com/glyphlang/glyphc/internal/ast"
)

func TestTransform_UnchainsElif(t *testing.T) {
	file := &ast.File{
		Statements: []ast.Node{
			&ast.IfStmt{
				Condition: &ast.Identifier{Name: "a"},
				Then:      []ast.Node{},
				Elifs: []*ast.ElifClause{
					{Condition: &ast.Identifier{Name: "b"}, Body: []ast.Node{}},
					{Condition: &ast.Identifier{Name: "c"}, Body: []ast.Node{}},
				},
				Else: []ast.Node{},
			},
		},
	}
	out := Transform(file)
	top, ok := out.Statements[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected top-level IfStmt, got %T", out.Statements[0])
	}
	if len(top.Elifs) != 0 {
		t.Fatalf("expected elifs to be unchained, got %d remaining", len(top.Elifs))
	}
	if len(top.Else) != 1 {
		t.Fatalf("expected else to hold exactly the nested if, got %d nodes", len(top.Else))
	}
	nested, ok := top.Else[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected nested IfStmt in else, got %T", top.Else[0])
	}
	if ident, ok := nested.Condition.(*ast.Identifier); !ok || ident.Name != "b" {
		t.Fatalf("expected nested condition 'b', got %v", nested.Condition)
	}
}

func TestTransform_ArrowFuncExprBodyWrapped(t *testing.T) {
	arrow := &ast.ArrowFunc{
		Params:   []*ast.Param{{Name: "x"}},
		ExprBody: &ast.Identifier{Name: "x"},
	}
	file := &ast.File{Statements: []ast.Node{&ast.ExprStmt{Expr: arrow}}}
	out := Transform(file)

	stmt := out.Statements[0].(*ast.ExprStmt)
	got := stmt.Expr.(*ast.ArrowFunc)
	if got.ExprBody != nil {
		t.Fatal("expected ExprBody to be cleared after wrapping")
	}
	if len(got.StmtBody) != 1 {
		t.Fatalf("expected single return statement, got %d", len(got.StmtBody))
	}
	if _, ok := got.StmtBody[0].(*ast.ReturnStmt); !ok {
		t.Fatalf("expected ReturnStmt, got %T", got.StmtBody[0])
	}
}

func TestTransform_ArrowFuncStmtBodyLeftAsIs(t *testing.T) {
	ret := &ast.ReturnStmt{Value: &ast.Identifier{Name: "x"}}
	arrow := &ast.ArrowFunc{
		Params:   []*ast.Param{{Name: "x"}},
		StmtBody: []ast.Node{ret},
	}
	file := &ast.File{Statements: []ast.Node{&ast.ExprStmt{Expr: arrow}}}
	out := Transform(file)

	got := out.Statements[0].(*ast.ExprStmt).Expr.(*ast.ArrowFunc)
	if len(got.StmtBody) != 1 || got.StmtBody[0] != ret {
		t.Fatal("expected statement body to be left untouched in shape")
	}
}

func TestTransform_CapabilityDeclLiftedToPreamble(t *testing.T) {
	decl := &ast.CapabilityDecl{CapabilityType: "file.read", ResourcePattern: "/data/*"}
	file := &ast.File{
		Funcs: []*ast.FuncDecl{{
			Name:     "f",
			StmtBody: []ast.Node{decl, &ast.ReturnStmt{}},
		}},
	}
	out := Transform(file)

	if len(out.Funcs[0].StmtBody) != 1 {
		t.Fatalf("expected capability decl removed from function body, got %d nodes", len(out.Funcs[0].StmtBody))
	}
	if len(out.Statements) == 0 {
		t.Fatal("expected capability decl lifted into module preamble")
	}
	if out.Statements[0] != decl {
		t.Fatalf("expected lifted preamble to contain the original decl, got %T", out.Statements[0])
	}
}

func TestTransform_DestructureAssignLowered(t *testing.T) {
	da := &ast.DestructureAssign{
		Pattern: &ast.DestructurePattern{Names: []string{"a", "b"}},
		Value:   &ast.Identifier{Name: "pair"},
	}
	file := &ast.File{Statements: []ast.Node{da}}
	out := Transform(file)

	stmt, ok := out.Statements[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt wrapping the lowered block, got %T", out.Statements[0])
	}
	block, ok := stmt.Expr.(*ast.Block)
	if !ok {
		t.Fatalf("expected Block of assignments, got %T", stmt.Expr)
	}
	// temp assignment + one per destructured name
	if len(block.Exprs) != 3 {
		t.Fatalf("expected 3 synthesized assignments, got %d", len(block.Exprs))
	}
}
