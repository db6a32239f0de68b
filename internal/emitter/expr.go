package emitter

import (
	"fmt"
	"strings"

	"github.com/glyphlang/glyphc/internal/ast"
	"github.com/glyphlang/glyphc/internal/whitelist"
)

// emitFuncDecl emits one top-level function, threading RuntimeParam as its
// first parameter (spec.md §4.9: emitted code never reaches for
// process-global runtime state).
func (e *Emitter) emitFuncDecl(fn *ast.FuncDecl) error {
	if fn == nil {
		return nil
	}
	e.mark(fn.Pos, fn.Name)

	params := make([]string, 0, len(fn.Params)+1)
	params = append(params, fmt.Sprintf("%s *glyphrt.Runtime", RuntimeParam))
	for _, p := range fn.Params {
		params = append(params, fmt.Sprintf("%s any", e.safeIdent(p.Name)))
	}

	e.write(fmt.Sprintf("func %s(%s) any {\n", e.safeIdent(fn.Name), strings.Join(params, ", ")))

	if fn.Body != nil {
		e.write("return ")
		if err := e.emitExpr(fn.Body); err != nil {
			return err
		}
		e.write("\n")
	} else {
		for _, n := range fn.StmtBody {
			if err := e.emitStmt(n); err != nil {
				return err
			}
		}
	}
	e.write("}\n")
	return nil
}

// emitExpr emits ex as a Go expression (no trailing newline).
func (e *Emitter) emitExpr(ex ast.Expr) error {
	if ex == nil {
		return nil
	}
	switch v := ex.(type) {
	case *ast.Identifier:
		e.mark(v.Pos, v.Name)
		e.write(e.safeIdent(v.Name))
		return nil

	case *ast.Literal:
		e.mark(v.Pos, "")
		return e.emitLiteral(v)

	case *ast.BinaryOp:
		e.mark(v.Pos, "")
		e.write("(")
		if err := e.emitExpr(v.Left); err != nil {
			return err
		}
		e.write(" " + goOperator(v.Op) + " ")
		if err := e.emitExpr(v.Right); err != nil {
			return err
		}
		e.write(")")
		return nil

	case *ast.UnaryOp:
		e.mark(v.Pos, "")
		e.write("(" + goOperator(v.Op))
		if err := e.emitExpr(v.Expr); err != nil {
			return err
		}
		e.write(")")
		return nil

	case *ast.FuncCall:
		return e.emitCall(v)

	case *ast.Let:
		// Expression-form let inside an expression-bodied function: lowered
		// to an immediately-invoked closure, since Go has no let-expression.
		e.mark(v.Pos, v.Name)
		e.write(fmt.Sprintf("func() any { %s := ", e.safeIdent(v.Name)))
		if err := e.emitExpr(v.Value); err != nil {
			return err
		}
		e.write("; return ")
		if err := e.emitExpr(v.Body); err != nil {
			return err
		}
		e.write(" }()")
		return nil

	case *ast.LetRec:
		e.mark(v.Pos, v.Name)
		e.write(fmt.Sprintf("func() any { var %s any; %s = func() any { return ", e.safeIdent(v.Name), e.safeIdent(v.Name)))
		if err := e.emitExpr(v.Value); err != nil {
			return err
		}
		e.write("}(); return ")
		if err := e.emitExpr(v.Body); err != nil {
			return err
		}
		e.write(" }()")
		return nil

	case *ast.Block:
		e.mark(v.Pos, "")
		e.write("func() any {\n")
		for i, sub := range v.Exprs {
			if i == len(v.Exprs)-1 {
				e.write("return ")
				if err := e.emitExpr(sub); err != nil {
					return err
				}
				e.write("\n")
			} else {
				if err := e.emitExprStatement(sub); err != nil {
					return err
				}
			}
		}
		e.write("}()")
		return nil

	case *ast.If:
		e.mark(v.Pos, "")
		e.write("func() any { if glyphrt.Truthy(")
		if err := e.emitExpr(v.Condition); err != nil {
			return err
		}
		e.write(") { return ")
		if err := e.emitExpr(v.Then); err != nil {
			return err
		}
		e.write(" }; return ")
		if err := e.emitExpr(v.Else); err != nil {
			return err
		}
		e.write(" }()")
		return nil

	case *ast.Ternary:
		e.mark(v.Pos, "")
		e.write("func() any { if glyphrt.Truthy(")
		if err := e.emitExpr(v.Condition); err != nil {
			return err
		}
		e.write(") { return ")
		if err := e.emitExpr(v.Then); err != nil {
			return err
		}
		e.write(" }; return ")
		if err := e.emitExpr(v.Else); err != nil {
			return err
		}
		e.write(" }()")
		return nil

	case *ast.List:
		e.mark(v.Pos, "")
		e.write("[]any{")
		for i, el := range v.Elements {
			if i > 0 {
				e.write(", ")
			}
			if err := e.emitExpr(el); err != nil {
				return err
			}
		}
		e.write("}")
		return nil

	case *ast.Tuple:
		e.mark(v.Pos, "")
		e.write("[]any{")
		for i, el := range v.Elements {
			if i > 0 {
				e.write(", ")
			}
			if err := e.emitExpr(el); err != nil {
				return err
			}
		}
		e.write("}")
		return nil

	case *ast.Record:
		e.mark(v.Pos, "")
		e.write("map[string]any{")
		for i, f := range v.Fields {
			if i > 0 {
				e.write(", ")
			}
			e.write(quoteGoString(f.Name) + ": ")
			if err := e.emitExpr(f.Value); err != nil {
				return err
			}
		}
		e.write("}")
		return nil

	case *ast.RecordAccess:
		return e.emitRecordAccess(v)

	case *ast.ArrayAccess:
		e.mark(v.Pos, "")
		e.write("glyphrt.Index(")
		if err := e.emitExpr(v.Array); err != nil {
			return err
		}
		e.write(", ")
		if err := e.emitExpr(v.Index); err != nil {
			return err
		}
		e.write(")")
		return nil

	case *ast.Lambda:
		return e.emitLambda(v.Params, v.Body)

	case *ast.FuncLit:
		return e.emitLambda(v.Params, v.Body)

	case *ast.ArrowFunc:
		if v.ExprBody != nil {
			return e.emitLambda(v.Params, v.ExprBody)
		}
		return e.emitStmtFuncLit(v.Params, v.StmtBody)

	case *ast.PipelineExpr:
		return e.emitPipeline(v)

	case *ast.SpreadExpr:
		// Bare spread outside a call argument list has no Go equivalent;
		// the transformer only ever leaves these inside FuncCall.Args,
		// where emitCall handles them directly.
		return e.internalError(v.Pos, "SpreadExpr encountered outside a call argument list")

	default:
		return e.internalError(ex.Position(), fmt.Sprintf("no emission rule for expression node %T", ex))
	}
}

func (e *Emitter) emitLiteral(l *ast.Literal) error {
	switch l.Kind {
	case ast.StringLit:
		e.write(quoteGoString(fmt.Sprintf("%v", l.Value)))
	case ast.BoolLit:
		e.write(fmt.Sprintf("%v", l.Value))
	case ast.UnitLit:
		e.write("nil")
	default:
		e.write(fmt.Sprintf("%v", l.Value))
	}
	return nil
}

// emitLambda emits a Go func literal for an expression-bodied
// lambda/func-literal/arrow-function. Statement-bodied forms (FuncLit with
// no Body, ArrowFunc after the transformer rewrites it to StmtBody) are
// handled by the ArrowFunc/FuncLit cases falling through to
// emitStmtFuncLit instead, once StmtBody is non-empty.
func (e *Emitter) emitLambda(params []*ast.Param, body ast.Expr) error {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = fmt.Sprintf("%s any", e.safeIdent(p.Name))
	}
	e.write(fmt.Sprintf("func(%s) any { return ", strings.Join(names, ", ")))
	if err := e.emitExpr(body); err != nil {
		return err
	}
	e.write(" }")
	return nil
}

// emitPipeline desugars `a |> f |> g(_, 2)` into nested calls, threading
// the running value as the first argument of each stage that doesn't
// already place it via an underscore placeholder. This repo's grammar
// doesn't support placeholder args, so every stage receives the running
// value as its sole/leading argument.
func (e *Emitter) emitPipeline(p *ast.PipelineExpr) error {
	e.mark(p.Pos, "")
	current := p.Source
	for _, stage := range p.Stages {
		current = &ast.FuncCall{Func: stage, Args: []ast.Expr{current}, Pos: p.Pos}
	}
	return e.emitExpr(current)
}

// emitRecordAccess implements spec.md §4.7 step 2's "else" branch: member
// access on a non-module receiver routes through the runtime attribute
// guard rather than a direct Go selector, since the field may not be
// statically known to be public.
func (e *Emitter) emitRecordAccess(r *ast.RecordAccess) error {
	e.mark(r.Pos, r.Field)
	e.write(fmt.Sprintf("%s.MustSafeAttr(%s, ", RuntimeParam, quoteGoString(r.Field)))
	if err := e.emitExpr(r.Record); err != nil {
		return err
	}
	e.write(")")
	return nil
}

// emitCall is spec.md §4.7's central call-site algorithm.
func (e *Emitter) emitCall(call *ast.FuncCall) error {
	e.mark(call.Pos, "")

	switch callee := call.Func.(type) {
	case *ast.Identifier:
		return e.emitIdentifierCall(call, callee)
	case *ast.RecordAccess:
		return e.emitMemberCall(call, callee)
	default:
		return e.emitDynamicCall(call)
	}
}

// emitIdentifierCall is step 1 of the call-site algorithm. async_execute,
// await, and wrap_callback are special-cased ahead of whitelist
// resolution: they route to dedicated glyphrt.Runtime methods backed by
// internal/asyncexec (spec.md §4.9, §5) rather than the generic builtin
// namespace, since their Go signatures don't fit BuiltinNamespace's
// uniform (Value, error) shape.
func (e *Emitter) emitIdentifierCall(call *ast.FuncCall, callee *ast.Identifier) error {
	switch callee.Name {
	case "async_execute":
		return e.emitAsyncExecute(call)
	case "await":
		return e.emitAwait(call)
	case "wrap_callback":
		return e.emitWrapCallback(call)
	}

	switch e.wl.Resolve(callee.Name) {
	case whitelist.ResolvedUserDefined:
		e.write(e.safeIdent(callee.Name) + "(" + RuntimeParam)
		if err := e.emitArgs(call.Args, true); err != nil {
			return err
		}
		e.write(")")
		return nil

	case whitelist.ResolvedBuiltin:
		e.write(fmt.Sprintf("glyphrt.Must(%s.%s(", RuntimeParam, builtinMethodName(callee.Name)))
		if err := e.emitArgs(call.Args, false); err != nil {
			return err
		}
		e.write("))")
		return nil

	default:
		if e.cfg.Mode == ModeREPL {
			// spec.md §4.7's REPL exception: emit verbatim, let the host
			// runtime raise NameError-equivalent at execution.
			e.write(e.safeIdent(callee.Name) + "(")
			if err := e.emitArgs(call.Args, false); err != nil {
				return err
			}
			e.write(")")
			return nil
		}
		return e.unknownFunction(callee.Pos, callee.Name)
	}
}

// emitAsyncExecute emits `async_execute(source_or_ast, capabilities,
// timeout)` (spec.md §4.9) as a call into glyphrt.Runtime.AsyncExecute.
// source_or_ast is, by the time it reaches the emitter, already an
// emitted callable (a lambda or another resolved call) standing in for
// the compiled snippet; it's invoked through MustSafeCall so any callable
// shape the language allows there works uniformly. capabilities is not
// independently threaded to the worker: spec.md §5 has the worker
// reinstall the submitter's already-active capability context, which
// capabilities was drawn from in the first place.
func (e *Emitter) emitAsyncExecute(call *ast.FuncCall) error {
	if len(call.Args) < 1 {
		return e.internalError(call.Pos, "async_execute requires a snippet argument")
	}
	e.write(fmt.Sprintf("%s.AsyncExecute(func() any { return %s.MustSafeCall(", RuntimeParam, RuntimeParam))
	if err := e.emitExpr(call.Args[0]); err != nil {
		return err
	}
	e.write(", nil) }, ")
	if len(call.Args) >= 3 {
		e.write("glyphrt.AsFloat64(")
		if err := e.emitExpr(call.Args[2]); err != nil {
			return err
		}
		e.write(")")
	} else {
		e.write("0")
	}
	e.write(")")
	return nil
}

// emitAwait emits the suspension point every async_execute handle passes
// through (spec.md §5: "it returns a future-like handle that the caller
// awaits").
func (e *Emitter) emitAwait(call *ast.FuncCall) error {
	if len(call.Args) != 1 {
		return e.internalError(call.Pos, "await requires exactly one future argument")
	}
	e.write(fmt.Sprintf("%s.AwaitFuture(", RuntimeParam))
	if err := e.emitExpr(call.Args[0]); err != nil {
		return err
	}
	e.write(")")
	return nil
}

// emitWrapCallback emits `wrap_callback(fn_name, capabilities)` (spec.md
// §4.9) as a call into glyphrt.Runtime.WrapCallback; the returned
// Callback re-resolves fn_name in the session's namespace on every
// invocation (late binding, spec.md §9).
func (e *Emitter) emitWrapCallback(call *ast.FuncCall) error {
	if len(call.Args) < 1 {
		return e.internalError(call.Pos, "wrap_callback requires a fn_name argument")
	}
	e.write(fmt.Sprintf("%s.WrapCallback(glyphrt.AsString(", RuntimeParam))
	if err := e.emitExpr(call.Args[0]); err != nil {
		return err
	}
	e.write("))")
	return nil
}

// emitMemberCall is step 2 of the call-site algorithm.
func (e *Emitter) emitMemberCall(call *ast.FuncCall, callee *ast.RecordAccess) error {
	if alias, ok := callee.Record.(*ast.Identifier); ok {
		if meta, known := e.wl.ImportedModule(alias.Name); known {
			if !e.wl.ModuleHasFunction(alias.Name, callee.Field) {
				return e.unknownModuleFunction(callee.Pos, alias.Name, callee.Field, meta.FunctionNames())
			}
			e.write(fmt.Sprintf("%s.%s(", alias.Name, callee.Field))
			if err := e.emitArgs(call.Args, false); err != nil {
				return err
			}
			e.write(")")
			return nil
		}
	}

	// Not a known module alias: guarded method-call through the runtime
	// attribute helper (spec.md §4.7 step 2's "else" branch).
	e.write(fmt.Sprintf("%s.MustSafeCallAttr(%s, ", RuntimeParam, quoteGoString(callee.Field)))
	if err := e.emitExpr(callee.Record); err != nil {
		return err
	}
	e.write(", []any{")
	if err := e.emitArgs(call.Args, false); err != nil {
		return err
	}
	e.write("})")
	return nil
}

// emitDynamicCall is step 3 of the call-site algorithm: the callee is a
// more complex expression (lambda, another call's result), so it's emitted
// as-is and routed through the runtime call guard.
func (e *Emitter) emitDynamicCall(call *ast.FuncCall) error {
	e.write(fmt.Sprintf("%s.MustSafeCall(", RuntimeParam))
	if err := e.emitExpr(call.Func); err != nil {
		return err
	}
	e.write(", []any{")
	if err := e.emitArgs(call.Args, false); err != nil {
		return err
	}
	e.write("})")
	return nil
}

// emitArgs emits a comma-separated argument list. leadingComma adds a
// comma before the first argument, used when the call already wrote the
// runtime parameter as the first positional argument.
func (e *Emitter) emitArgs(args []ast.Expr, leadingComma bool) error {
	for i, a := range args {
		if i > 0 || leadingComma {
			e.write(", ")
		}
		if spread, ok := a.(*ast.SpreadExpr); ok {
			e.write("glyphrt.Spread(")
			if err := e.emitExpr(spread.Value); err != nil {
				return err
			}
			e.write(")...")
			continue
		}
		if err := e.emitExpr(a); err != nil {
			return err
		}
	}
	return nil
}

// builtinMethodName maps an SL builtin name to the corresponding
// glyphrt.BuiltinNamespace Go method, per the naming convention
// internal/glyphrt's methods already follow (PascalCase of the SL name).
func builtinMethodName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func goOperator(op string) string {
	switch op {
	case "and":
		return "&&"
	case "or":
		return "||"
	case "not":
		return "!"
	case "==", "!=", "<", "<=", ">", ">=", "+", "-", "*", "/", "%", "&&", "||", "!":
		return op
	default:
		return op
	}
}
