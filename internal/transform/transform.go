// Package transform implements the AST Transformer stage (spec.md §4.2):
// a pure, always-succeeding desugaring pass that normalizes the validated
// AST into the shape-stable form the type checker, security analyzer, and
// emitter can assume. Grounded on the teacher's internal/elaborate package,
// which performs an analogous "never fails, pure rewrite" desugaring pass
// (dictionary-passing elaboration) over a validated AST.
package transform

import "github.com/glyphlang/glyphc/internal/ast"

// Transformer applies the documented normalizations in a single top-down
// rewrite. It carries no error state: every input it's given has already
// passed the validator, so every rewrite here is total.
type Transformer struct {
	// capabilityPreamble collects CapabilityDecl nodes lifted out of
	// function bodies so Transform can prepend them to the module level.
	capabilityPreamble []*ast.CapabilityDecl
}

// New constructs a Transformer.
func New() *Transformer {
	return &Transformer{}
}

// Transform normalizes file in place and returns it. It never returns an
// error (spec.md §4.2: "Never fails (pure rewrite)").
func Transform(file *ast.File) *ast.File {
	t := New()
	return t.transformFile(file)
}

func (t *Transformer) transformFile(file *ast.File) *ast.File {
	if file == nil {
		return nil
	}
	for _, fn := range file.Funcs {
		t.transformFuncDecl(fn)
	}
	file.Statements = t.transformBlock(file.Statements)

	if len(t.capabilityPreamble) > 0 {
		lifted := make([]ast.Node, 0, len(t.capabilityPreamble))
		for _, cd := range t.capabilityPreamble {
			lifted = append(lifted, cd)
		}
		file.Statements = append(lifted, file.Statements...)
	}
	return file
}

func (t *Transformer) transformFuncDecl(fn *ast.FuncDecl) {
	if fn == nil {
		return
	}
	if fn.Body != nil {
		fn.Body = t.transformExpr(fn.Body)
	}
	fn.StmtBody = t.transformBlock(fn.StmtBody)
}

// transformBlock rewrites a statement list, flattening any CapabilityDecl
// it finds into the preamble list (spec.md §4.2: "Capability declarations
// are lifted to the module preamble") and unchaining elif chains
// (§4.2: "Elif chains are unchained into nested if/else").
func (t *Transformer) transformBlock(body []ast.Node) []ast.Node {
	out := make([]ast.Node, 0, len(body))
	for _, n := range body {
		switch st := n.(type) {
		case *ast.CapabilityDecl:
			t.capabilityPreamble = append(t.capabilityPreamble, st)
			// lifted out of the body entirely, not re-emitted in place
			continue
		default:
			out = append(out, t.transformStmt(n))
		}
	}
	return out
}

func (t *Transformer) transformStmt(n ast.Node) ast.Node {
	switch st := n.(type) {
	case *ast.Assignment:
		st.Target = t.transformExpr(st.Target)
		st.Value = t.transformExpr(st.Value)
		return st

	case *ast.WhileStmt:
		st.Condition = t.transformExpr(st.Condition)
		st.Body = t.transformBlock(st.Body)
		return st

	case *ast.ForStmt:
		st.Iterable = t.transformExpr(st.Iterable)
		st.Body = t.transformBlock(st.Body)
		return st

	case *ast.TryStmt:
		st.Body = t.transformBlock(st.Body)
		for _, ex := range st.Excepts {
			ex.Body = t.transformBlock(ex.Body)
		}
		if st.Finally != nil {
			st.Finally = t.transformBlock(st.Finally)
		}
		return st

	case *ast.ThrowStmt:
		// spec.md §4.2: "throw <expr> is rewritten to raise a runtime
		// exception with the expression as payload." The AST shape is
		// already exactly that (ThrowStmt.Value is the payload); the
		// rewrite to a runtime-exception-raise call happens in the
		// emitter, which lowers ThrowStmt directly. Here we only need to
		// recurse into the payload expression.
		st.Value = t.transformExpr(st.Value)
		return st

	case *ast.ReturnStmt:
		if st.Value != nil {
			st.Value = t.transformExpr(st.Value)
		}
		return st

	case *ast.IfStmt:
		return t.unchainIf(st)

	case *ast.CapabilityDecl:
		t.capabilityPreamble = append(t.capabilityPreamble, st)
		return nil

	case *ast.ExprStmt:
		st.Expr = t.transformExpr(st.Expr)
		return st

	case *ast.DestructureAssign:
		return t.lowerDestructure(st)

	case *ast.FuncDecl:
		t.transformFuncDecl(st)
		return st

	default:
		if e, ok := n.(ast.Expr); ok {
			return t.transformExpr(e)
		}
		return n
	}
}

// unchainIf rewrites `if c1 {..} elif c2 {..} elif c3 {..} else {..}` into
// nested `IfStmt{Else: []Node{IfStmt{...}}}` so every downstream stage
// only ever sees a two-armed conditional (spec.md §4.2).
func (t *Transformer) unchainIf(st *ast.IfStmt) *ast.IfStmt {
	st.Condition = t.transformExpr(st.Condition)
	st.Then = t.transformBlock(st.Then)

	if len(st.Elifs) == 0 {
		if st.Else != nil {
			st.Else = t.transformBlock(st.Else)
		}
		return st
	}

	head := st.Elifs[0]
	rest := &ast.IfStmt{
		Condition: head.Condition,
		Then:      head.Body,
		Elifs:     st.Elifs[1:],
		Else:      st.Else,
		Pos:       head.Pos,
	}
	nested := t.unchainIf(rest)

	st.Elifs = nil
	st.Else = []ast.Node{nested}
	return st
}

// lowerDestructure rewrites `[a, b, ...rest] = expr;` or
// `{a, b: renamed} = expr;` into a temporary-holding Assignment plus one
// Assignment per bound name (spec.md §4.2: "Destructuring assignments are
// lowered to a temporary + individual assignments"). Since a single AST
// node must become several statements, this returns a synthetic Block
// wrapped in an ExprStmt-compatible carrier: a *ast.Block sequencing the
// assignments, consistent with how the teacher's Block already represents
// "sequence of expressions, last one is the value" — here used purely for
// side effects, since downstream stages only care about the Assignment
// nodes it contains.
func (t *Transformer) lowerDestructure(st *ast.DestructureAssign) ast.Node {
	value := t.transformExpr(st.Value)
	tempName := "__destructure_tmp"

	var exprs []ast.Expr
	assign := func(target ast.Expr, val ast.Expr) {
		exprs = append(exprs, &destructureAssignExpr{target: target, value: val, pos: st.Pos})
	}

	tempIdent := &ast.Identifier{Name: tempName, Pos: st.Pos}
	assign(tempIdent, value)

	if st.Pattern.IsObject {
		for _, field := range st.Pattern.Names {
			local := field
			if renamed, ok := st.Pattern.Renames[field]; ok {
				local = renamed
			}
			assign(&ast.Identifier{Name: local, Pos: st.Pos}, &ast.RecordAccess{
				Record: tempIdent,
				Field:  field,
				Pos:    st.Pos,
			})
		}
	} else {
		for i, name := range st.Pattern.Names {
			assign(&ast.Identifier{Name: name, Pos: st.Pos}, &ast.ArrayAccess{
				Array: tempIdent,
				Index: &ast.Literal{Kind: ast.IntLit, Value: i, Pos: st.Pos},
				Pos:   st.Pos,
			})
		}
		if st.Pattern.Rest != "" {
			// rest binding: remaining elements from index len(Names) onward.
			// Lowered as a call to the runtime slice-rest helper so the
			// emitter can treat it like any other call site.
			assign(&ast.Identifier{Name: st.Pattern.Rest, Pos: st.Pos}, &ast.FuncCall{
				Func: &ast.Identifier{Name: "__glyphrt_slice_rest", Pos: st.Pos},
				Args: []ast.Expr{tempIdent, &ast.Literal{Kind: ast.IntLit, Value: len(st.Pattern.Names), Pos: st.Pos}},
				Pos:  st.Pos,
			})
		}
	}

	block := &ast.Block{Exprs: exprs, Pos: st.Pos}
	return &ast.ExprStmt{Expr: block, Pos: st.Pos}
}

// destructureAssignExpr is an Expr-shaped carrier for the individual
// assignments synthesized by lowerDestructure, so they can live inside a
// Block's Exprs (which require Expr, not Stmt). The emitter recognizes
// this type directly and emits it exactly like ast.Assignment.
type destructureAssignExpr struct {
	target ast.Expr
	value  ast.Expr
	pos    ast.Pos
}

func (d *destructureAssignExpr) String() string   { return d.target.String() + " = " + d.value.String() }
func (d *destructureAssignExpr) Position() ast.Pos { return d.pos }
func (d *destructureAssignExpr) exprNode()         {}

// Target exposes the assignment target for the emitter.
func (d *destructureAssignExpr) Target() ast.Expr { return d.target }

// Value exposes the assignment value for the emitter.
func (d *destructureAssignExpr) Value() ast.Expr { return d.value }

func (t *Transformer) transformExpr(e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	switch ex := e.(type) {
	case *ast.BinaryOp:
		ex.Left = t.transformExpr(ex.Left)
		ex.Right = t.transformExpr(ex.Right)
		return ex

	case *ast.UnaryOp:
		ex.Expr = t.transformExpr(ex.Expr)
		return ex

	case *ast.FuncCall:
		ex.Func = t.transformExpr(ex.Func)
		for i, a := range ex.Args {
			// Spread args are preserved and merely tagged; transform
			// recurses into the wrapped value but keeps the SpreadExpr
			// wrapper (spec.md §4.2: "Spread in call arguments is
			// preserved but tagged for emission").
			if sp, ok := a.(*ast.SpreadExpr); ok {
				sp.Value = t.transformExpr(sp.Value)
				ex.Args[i] = sp
				continue
			}
			ex.Args[i] = t.transformExpr(a)
		}
		return ex

	case *ast.Lambda:
		ex.Body = t.transformExpr(ex.Body)
		return ex

	case *ast.ArrowFunc:
		// spec.md §4.2: "Arrow-function bodies that are single expressions
		// are wrapped as `return <expr>`; arrow-functions with statement
		// bodies are left as-is."
		if ex.ExprBody != nil {
			body := t.transformExpr(ex.ExprBody)
			ex.StmtBody = []ast.Node{&ast.ReturnStmt{Value: body, Pos: ex.Pos}}
			ex.ExprBody = nil
			return ex
		}
		ex.StmtBody = t.transformBlock(ex.StmtBody)
		return ex

	case *ast.Ternary:
		// spec.md §4.2: "Ternary is preserved (handled natively by
		// emitter)." — recurse but keep the node shape.
		ex.Condition = t.transformExpr(ex.Condition)
		ex.Then = t.transformExpr(ex.Then)
		ex.Else = t.transformExpr(ex.Else)
		return ex

	case *ast.If:
		ex.Condition = t.transformExpr(ex.Condition)
		ex.Then = t.transformExpr(ex.Then)
		ex.Else = t.transformExpr(ex.Else)
		return ex

	case *ast.Block:
		for i, inner := range ex.Exprs {
			ex.Exprs[i] = t.transformExpr(inner)
		}
		return ex

	case *ast.Let:
		ex.Value = t.transformExpr(ex.Value)
		ex.Body = t.transformExpr(ex.Body)
		return ex

	case *ast.LetRec:
		ex.Value = t.transformExpr(ex.Value)
		ex.Body = t.transformExpr(ex.Body)
		return ex

	case *ast.List:
		for i, el := range ex.Elements {
			ex.Elements[i] = t.transformExpr(el)
		}
		return ex

	case *ast.Tuple:
		for i, el := range ex.Elements {
			ex.Elements[i] = t.transformExpr(el)
		}
		return ex

	case *ast.Record:
		for _, f := range ex.Fields {
			f.Value = t.transformExpr(f.Value)
		}
		return ex

	case *ast.RecordAccess:
		ex.Record = t.transformExpr(ex.Record)
		return ex

	case *ast.ArrayAccess:
		ex.Array = t.transformExpr(ex.Array)
		ex.Index = t.transformExpr(ex.Index)
		return ex

	case *ast.SpreadExpr:
		ex.Value = t.transformExpr(ex.Value)
		return ex

	case *ast.PipelineExpr:
		ex.Source = t.transformExpr(ex.Source)
		for i, stage := range ex.Stages {
			ex.Stages[i] = t.transformExpr(stage)
		}
		return ex

	default:
		return e
	}
}
