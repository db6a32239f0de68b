// Package typecheck implements the permissive Type Checker stage
// (spec.md §4.3): best-effort local type inference over the normalized
// AST that annotates expressions where inference succeeds and reports
// warnings — never errors — for constructs that look like type mistakes
// (arithmetic on strings, indexing a number). The language is dynamically
// typed, so nothing here can abort compilation.
//
// Grounded on the teacher's internal/types package (a full Hindley-Milner
// checker with row polymorphism and dictionary-passing) but radically cut
// down: no unification, no generalization, no dictionaries — a single
// shallow pass that tracks a best-guess Kind per expression and flags
// combinations that are almost certainly mistakes.
package typecheck

import (
	"fmt"

	"github.com/glyphlang/glyphc/internal/ast"
	glyphcerrors "github.com/glyphlang/glyphc/internal/errors"
)

// Kind is the checker's coarse approximation of an SL runtime type.
// Unlike the teacher's internal/types.Type lattice (type variables,
// row-polymorphic records, qualified types), Kind never unifies and has
// no variables — it is a best-guess label, defaulting to KindUnknown
// whenever inference isn't confident.
type Kind int

const (
	KindUnknown Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindList
	KindRecord
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindRecord:
		return "record"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Annotations maps expression nodes to the checker's inferred Kind. The
// emitter and REPL may consult this for richer diagnostics; it is
// advisory only, never consulted for correctness.
type Annotations map[ast.Expr]Kind

// env is a flat, non-nested binding environment from name to Kind. The
// checker does not need scope-respecting shadowing semantics (the
// validator already enforces scope legality); an environment sufficient
// for "what did we last see this name bound to" is enough for a
// best-effort pass.
type env map[string]Kind

// Checker runs the permissive inference pass described in spec.md §4.3.
type Checker struct {
	annotations Annotations
	warnings    []*glyphcerrors.Report
}

// New constructs a Checker.
func New() *Checker {
	return &Checker{annotations: make(Annotations)}
}

// Check walks file, returning the inferred annotations and a list of
// warnings. It never returns an error: a dynamically typed language makes
// every "type error" here advisory.
func Check(file *ast.File) (Annotations, []*glyphcerrors.Report) {
	c := New()
	top := env{}
	for _, fn := range file.Funcs {
		top[fn.Name] = KindFunction
	}
	for _, fn := range file.Funcs {
		c.checkFuncDecl(fn, top)
	}
	for _, n := range file.Statements {
		c.checkStmt(n, top)
	}
	return c.annotations, c.warnings
}

func (c *Checker) warn(code string, pos ast.Pos, msg string) {
	c.warnings = append(c.warnings, &glyphcerrors.Report{
		Schema:  "glyphc.error/v1",
		Code:    code,
		Phase:   "typecheck",
		Message: msg,
		Span:    &ast.Span{Start: pos, End: pos},
	})
}

func (c *Checker) checkFuncDecl(fn *ast.FuncDecl, parent env) {
	local := env{}
	for k, v := range parent {
		local[k] = v
	}
	for _, p := range fn.Params {
		local[p.Name] = KindUnknown
	}
	if fn.Body != nil {
		c.checkExpr(fn.Body, local)
	}
	for _, n := range fn.StmtBody {
		c.checkStmt(n, local)
	}
}

func (c *Checker) checkStmt(n ast.Node, e env) {
	switch st := n.(type) {
	case *ast.Assignment:
		k := c.checkExpr(st.Value, e)
		if ident, ok := st.Target.(*ast.Identifier); ok {
			e[ident.Name] = k
		}
	case *ast.WhileStmt:
		c.checkExpr(st.Condition, e)
		for _, b := range st.Body {
			c.checkStmt(b, e)
		}
	case *ast.ForStmt:
		c.checkExpr(st.Iterable, e)
		e[st.Var] = KindUnknown
		for _, b := range st.Body {
			c.checkStmt(b, e)
		}
	case *ast.TryStmt:
		for _, b := range st.Body {
			c.checkStmt(b, e)
		}
		for _, ex := range st.Excepts {
			for _, b := range ex.Body {
				c.checkStmt(b, e)
			}
		}
		for _, b := range st.Finally {
			c.checkStmt(b, e)
		}
	case *ast.ThrowStmt:
		c.checkExpr(st.Value, e)
	case *ast.ReturnStmt:
		if st.Value != nil {
			c.checkExpr(st.Value, e)
		}
	case *ast.IfStmt:
		c.checkExpr(st.Condition, e)
		for _, b := range st.Then {
			c.checkStmt(b, e)
		}
		for _, el := range st.Elifs {
			c.checkExpr(el.Condition, e)
			for _, b := range el.Body {
				c.checkStmt(b, e)
			}
		}
		for _, b := range st.Else {
			c.checkStmt(b, e)
		}
	case *ast.ExprStmt:
		c.checkExpr(st.Expr, e)
	case *ast.FuncDecl:
		e[st.Name] = KindFunction
		c.checkFuncDecl(st, e)
	default:
		if ex, ok := n.(ast.Expr); ok {
			c.checkExpr(ex, e)
		}
	}
}

// checkExpr returns the Kind it infers for ex and records it in the
// annotation map whenever the inference was confident (KindUnknown is
// still recorded, so callers can distinguish "checked, no opinion" from
// "never visited").
func (c *Checker) checkExpr(ex ast.Expr, e env) Kind {
	if ex == nil {
		return KindUnknown
	}
	k := c.inferExpr(ex, e)
	c.annotations[ex] = k
	return k
}

func (c *Checker) inferExpr(ex ast.Expr, e env) Kind {
	switch x := ex.(type) {
	case *ast.Identifier:
		if k, ok := e[x.Name]; ok {
			return k
		}
		return KindUnknown

	case *ast.Literal:
		switch x.Kind {
		case ast.IntLit:
			return KindInt
		case ast.FloatLit:
			return KindFloat
		case ast.StringLit:
			return KindString
		case ast.BoolLit:
			return KindBool
		default:
			return KindUnknown
		}

	case *ast.BinaryOp:
		left := c.checkExpr(x.Left, e)
		right := c.checkExpr(x.Right, e)
		return c.inferBinaryOp(x, left, right)

	case *ast.UnaryOp:
		return c.checkExpr(x.Expr, e)

	case *ast.FuncCall:
		c.checkExpr(x.Func, e)
		for _, a := range x.Args {
			c.checkExpr(a, e)
		}
		return KindUnknown

	case *ast.Lambda:
		local := env{}
		for k, v := range e {
			local[k] = v
		}
		for _, p := range x.Params {
			local[p.Name] = KindUnknown
		}
		c.checkExpr(x.Body, local)
		return KindFunction

	case *ast.ArrowFunc:
		local := env{}
		for k, v := range e {
			local[k] = v
		}
		for _, p := range x.Params {
			local[p.Name] = KindUnknown
		}
		if x.ExprBody != nil {
			c.checkExpr(x.ExprBody, local)
		}
		for _, s := range x.StmtBody {
			c.checkStmt(s, local)
		}
		return KindFunction

	case *ast.Ternary:
		c.checkExpr(x.Condition, e)
		thenK := c.checkExpr(x.Then, e)
		elseK := c.checkExpr(x.Else, e)
		if thenK == elseK {
			return thenK
		}
		return KindUnknown

	case *ast.If:
		c.checkExpr(x.Condition, e)
		thenK := c.checkExpr(x.Then, e)
		elseK := c.checkExpr(x.Else, e)
		if thenK == elseK {
			return thenK
		}
		return KindUnknown

	case *ast.Block:
		var last Kind = KindUnknown
		for _, inner := range x.Exprs {
			last = c.checkExpr(inner, e)
		}
		return last

	case *ast.Let:
		valK := c.checkExpr(x.Value, e)
		local := env{}
		for k, v := range e {
			local[k] = v
		}
		local[x.Name] = valK
		return c.checkExpr(x.Body, local)

	case *ast.LetRec:
		local := env{}
		for k, v := range e {
			local[k] = v
		}
		local[x.Name] = KindUnknown
		c.checkExpr(x.Value, local)
		return c.checkExpr(x.Body, local)

	case *ast.List:
		for _, el := range x.Elements {
			c.checkExpr(el, e)
		}
		return KindList

	case *ast.Tuple:
		for _, el := range x.Elements {
			c.checkExpr(el, e)
		}
		return KindUnknown

	case *ast.Record:
		for _, f := range x.Fields {
			c.checkExpr(f.Value, e)
		}
		return KindRecord

	case *ast.RecordAccess:
		c.checkExpr(x.Record, e)
		return KindUnknown

	case *ast.ArrayAccess:
		arrK := c.checkExpr(x.Array, e)
		c.checkExpr(x.Index, e)
		if arrK == KindInt || arrK == KindFloat || arrK == KindBool {
			c.warn(glyphcerrors.TC011, x.Pos,
				fmt.Sprintf("indexing a value of kind %s, which is not a container", arrK))
		}
		return KindUnknown

	case *ast.SpreadExpr:
		return c.checkExpr(x.Value, e)

	case *ast.PipelineExpr:
		c.checkExpr(x.Source, e)
		for _, stage := range x.Stages {
			c.checkExpr(stage, e)
		}
		return KindUnknown

	default:
		return KindUnknown
	}
}

// inferBinaryOp applies the arithmetic/string-mismatch heuristic that
// spec.md §4.3 calls out by name ("arithmetic on strings") and returns
// the Kind of the combined expression when both operands agree.
func (c *Checker) inferBinaryOp(x *ast.BinaryOp, left, right Kind) Kind {
	arithmetic := map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true}
	numeric := func(k Kind) bool { return k == KindInt || k == KindFloat }

	if arithmetic[x.Op] && x.Op != "+" {
		if (left == KindString && right != KindUnknown) || (right == KindString && left != KindUnknown) {
			c.warn(glyphcerrors.TC012, x.Pos,
				fmt.Sprintf("arithmetic operator %q applied to a string operand", x.Op))
		}
	}
	if numeric(left) && numeric(right) {
		if left == KindFloat || right == KindFloat {
			return KindFloat
		}
		return KindInt
	}
	if x.Op == "+" && left == KindString && right == KindString {
		return KindString
	}
	return KindUnknown
}
