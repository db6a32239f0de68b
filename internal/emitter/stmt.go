package emitter

import (
	"fmt"
	"strings"

	"github.com/glyphlang/glyphc/internal/ast"
)

// emitTopLevelStmt emits one of file.Statements inside the synthesized
// main() body.
func (e *Emitter) emitTopLevelStmt(n ast.Node) error {
	return e.emitStmt(n)
}

// emitStmt emits n as a Go statement, terminated with a newline.
func (e *Emitter) emitStmt(n ast.Node) error {
	if n == nil {
		return nil
	}
	switch st := n.(type) {
	case *ast.ExprStmt:
		return e.emitExprStatement(st.Expr)

	case *ast.Assignment:
		e.mark(st.Pos, "")
		if err := e.emitAssignTarget(st.Target); err != nil {
			return err
		}
		e.write(" = ")
		if err := e.emitExpr(st.Value); err != nil {
			return err
		}
		e.write("\n")
		return nil

	case *ast.WhileStmt:
		e.mark(st.Pos, "")
		e.write("for glyphrt.Truthy(")
		if err := e.emitExpr(st.Condition); err != nil {
			return err
		}
		e.write(") {\n")
		for _, body := range st.Body {
			if err := e.emitStmt(body); err != nil {
				return err
			}
		}
		e.write("}\n")
		return nil

	case *ast.ForStmt:
		e.mark(st.Pos, st.Var)
		e.write(fmt.Sprintf("for _, %s := range glyphrt.Iterate(", e.safeIdent(st.Var)))
		if err := e.emitExpr(st.Iterable); err != nil {
			return err
		}
		e.write(") {\n")
		for _, body := range st.Body {
			if err := e.emitStmt(body); err != nil {
				return err
			}
		}
		e.write("}\n")
		return nil

	case *ast.IfStmt:
		e.mark(st.Pos, "")
		e.write("if glyphrt.Truthy(")
		if err := e.emitExpr(st.Condition); err != nil {
			return err
		}
		e.write(") {\n")
		for _, body := range st.Then {
			if err := e.emitStmt(body); err != nil {
				return err
			}
		}
		if st.Else != nil {
			e.write("} else {\n")
			for _, body := range st.Else {
				if err := e.emitStmt(body); err != nil {
					return err
				}
			}
		}
		e.write("}\n")
		return nil

	case *ast.TryStmt:
		return e.emitTryStmt(st)

	case *ast.ThrowStmt:
		e.mark(st.Pos, "")
		e.write("panic(glyphrt.NewException(")
		if err := e.emitExpr(st.Value); err != nil {
			return err
		}
		e.write("))\n")
		return nil

	case *ast.BreakStmt:
		e.mark(st.Pos, "")
		e.write("break\n")
		return nil

	case *ast.ContinueStmt:
		e.mark(st.Pos, "")
		e.write("continue\n")
		return nil

	case *ast.ReturnStmt:
		e.mark(st.Pos, "")
		if st.Value == nil {
			e.write("return nil\n")
			return nil
		}
		e.write("return ")
		if err := e.emitExpr(st.Value); err != nil {
			return err
		}
		e.write("\n")
		return nil

	case *ast.NonlocalStmt:
		// Go closures already capture enclosing variables by reference;
		// `nonlocal` has no emission of its own, it only affects how the
		// validator/type checker resolved the names upstream.
		return nil

	case *ast.FuncDecl:
		return e.emitFuncDecl(st)

	case *ast.CapabilityDecl:
		// Lifted to the module preamble by the transformer (spec.md §4.2);
		// a CapabilityDecl reaching the emitter here is already handled by
		// whatever assembled the capability token set for this unit's root
		// context, not emitted as code.
		return nil

	default:
		if ex, ok := n.(ast.Expr); ok {
			return e.emitExprStatement(ex)
		}
		return e.internalError(n.Position(), fmt.Sprintf("no emission rule for statement node %T", n))
	}
}

// emitExprStatement emits ex evaluated purely for effect, recognizing the
// transformer's destructureAssignExpr carrier directly.
func (e *Emitter) emitExprStatement(ex ast.Expr) error {
	if target, ok := ex.(interface {
		Target() ast.Expr
		Value() ast.Expr
	}); ok {
		e.mark(ex.Position(), "")
		if err := e.emitAssignTarget(target.Target()); err != nil {
			return err
		}
		e.write(" := ")
		if err := e.emitExpr(target.Value()); err != nil {
			return err
		}
		e.write("\n")
		return nil
	}

	if block, ok := ex.(*ast.Block); ok {
		for _, sub := range block.Exprs {
			if err := e.emitExprStatement(sub); err != nil {
				return err
			}
		}
		return nil
	}

	e.write("_ = ")
	if err := e.emitExpr(ex); err != nil {
		return err
	}
	e.write("\n")
	return nil
}

func (e *Emitter) emitAssignTarget(target ast.Expr) error {
	switch t := target.(type) {
	case *ast.Identifier:
		e.write(e.safeIdent(t.Name))
		return nil
	case *ast.RecordAccess:
		// A direct assignment target bypasses the safe-attribute guard
		// deliberately: spec.md §4.9's guard governs reads (safe_attr) and
		// dynamic calls (safe_call); assignment to a known local record's
		// field is a host-language map write, not a dynamic dispatch.
		e.write("(")
		if err := e.emitExpr(t.Record); err != nil {
			return err
		}
		e.write(fmt.Sprintf(".(map[string]any))[%s]", quoteGoString(t.Field)))
		return nil
	case *ast.ArrayAccess:
		e.write("(")
		if err := e.emitExpr(t.Array); err != nil {
			return err
		}
		e.write(".([]any))[")
		if err := e.emitExpr(t.Index); err != nil {
			return err
		}
		e.write("]")
		return nil
	default:
		return e.internalError(target.Position(), fmt.Sprintf("unsupported assignment target %T", target))
	}
}

// emitTryStmt lowers try/except/finally onto Go's defer/recover, grounded
// on the same "panic carries the thrown value" idiom ThrowStmt already
// assumes.
func (e *Emitter) emitTryStmt(st *ast.TryStmt) error {
	e.mark(st.Pos, "")
	e.write("func() {\n")
	if len(st.Finally) > 0 {
		e.write("defer func() {\n")
		for _, body := range st.Finally {
			if err := e.emitStmt(body); err != nil {
				return err
			}
		}
		e.write("}()\n")
	}
	if len(st.Excepts) > 0 {
		e.write("defer func() {\n")
		e.write("if r := recover(); r != nil {\n")
		for i, ex := range st.Excepts {
			cond := "true"
			if ex.ExceptionType != "" {
				cond = fmt.Sprintf("glyphrt.ExceptionMatches(r, %s)", quoteGoString(ex.ExceptionType))
			}
			if i > 0 {
				e.write("} else if " + cond + " {\n")
			} else {
				e.write("if " + cond + " {\n")
			}
			if ex.Binder != "" {
				e.write(fmt.Sprintf("%s := glyphrt.ExceptionValue(r)\n_ = %s\n", e.safeIdent(ex.Binder), e.safeIdent(ex.Binder)))
			}
			for _, body := range ex.Body {
				if err := e.emitStmt(body); err != nil {
					return err
				}
			}
		}
		e.write("} else {\npanic(r)\n}\n")
		e.write("}\n}()\n")
	}
	for _, body := range st.Body {
		if err := e.emitStmt(body); err != nil {
			return err
		}
	}
	e.write("}()\n")
	return nil
}

// emitStmtFuncLit emits a statement-bodied arrow-function/func-literal as a
// Go func literal whose body is the statement list verbatim.
func (e *Emitter) emitStmtFuncLit(params []*ast.Param, body []ast.Node) error {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = fmt.Sprintf("%s any", e.safeIdent(p.Name))
	}
	e.write(fmt.Sprintf("func(%s) any {\n", strings.Join(names, ", ")))
	for _, n := range body {
		if err := e.emitStmt(n); err != nil {
			return err
		}
	}
	e.write("return nil\n}")
	return nil
}
