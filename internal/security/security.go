// Package security implements the Security Analyzer stage (spec.md §4.4):
// a pattern-based pass over the normalized AST that flags dangerous
// identifier references, suspicious literals flowing into sensitive
// sinks, and imports outside the unified module registry. It never
// imports or executes code — every decision is syntactic.
//
// Grounded on the denylist/pattern-matching idiom in the capability
// orchestrator reference (other_examples' reglet
// capability_orchestrator.go: Kind+Pattern keyed gating, IsBroad checks)
// adapted from a runtime gatekeeper into a static AST scanner.
package security

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/glyphlang/glyphc/internal/ast"
	glyphcerrors "github.com/glyphlang/glyphc/internal/errors"
)

// Severity mirrors spec.md §4.4's three-level scale.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Diagnostic is one security finding.
type Diagnostic struct {
	Severity Severity
	Report   *glyphcerrors.Report
}

// Policy configures the analyzer's denylist/allowlist and sensitive-sink
// table. A zero-value Policy falls back to DefaultPolicy.
type Policy struct {
	// DenylistedIdentifiers names identifiers whose mere reference is
	// flagged (e.g. reflection/process-control escape hatches).
	DenylistedIdentifiers map[string]Severity
	// AllowlistedIdentifiers, if non-empty, makes the analyzer fail
	// closed: any identifier reference not in this set and not a known
	// safe pattern is flagged at SeverityWarning.
	AllowlistedIdentifiers map[string]bool
	// SensitiveSinks maps a call target name to a regexp describing
	// string-literal argument patterns that look like injection
	// payloads (shell metacharacters, SQL keywords, path traversal).
	SensitiveSinks map[string]*regexp.Regexp
	// KnownModules is consulted for SEC003: an import not present here
	// is flagged. A nil map disables this check (the emitter's registry
	// lookup is the authoritative defense-in-depth check regardless —
	// spec.md §4.4: "also enforced at the emitter, defense in depth").
	KnownModules map[string]bool
}

// DefaultPolicy returns a conservative starting policy grounded on the
// kinds of names and sinks the source language's runtime helpers expose
// (internal/glyphrt): process/eval-style escape hatches are denylisted,
// and shell/SQL-shaped string literals flowing into exec-like sinks are
// flagged.
func DefaultPolicy() Policy {
	return Policy{
		DenylistedIdentifiers: map[string]Severity{
			"__import__":     SeverityError,
			"exec":           SeverityError,
			"eval":           SeverityWarning,
			"compile":        SeverityWarning,
			"__builtins__":   SeverityWarning,
			"os_system":      SeverityError,
			"subprocess_run": SeverityWarning,
		},
		SensitiveSinks: map[string]*regexp.Regexp{
			"shell_exec": regexp.MustCompile(`[;&|$` + "`" + `]|\.\./`),
			"sql_query":  regexp.MustCompile(`(?i)(;|--|\bunion\b|\bdrop\b)`),
		},
	}
}

// Analyzer runs the security pass.
type Analyzer struct {
	policy      Policy
	diagnostics []Diagnostic
}

// New constructs an Analyzer with the given policy.
func New(policy Policy) *Analyzer {
	return &Analyzer{policy: policy}
}

// Analyze walks file and returns diagnostics plus a hard error if any
// diagnostic reached SeverityError (spec.md §4.4: "a single error aborts
// compilation").
func Analyze(file *ast.File, policy Policy) ([]Diagnostic, error) {
	a := New(policy)
	for _, fn := range file.Funcs {
		a.walkFuncDecl(fn)
	}
	for _, n := range file.Statements {
		a.walkStmt(n)
	}
	for _, diag := range a.diagnostics {
		if diag.Severity == SeverityError {
			return a.diagnostics, glyphcerrors.WrapReport(diag.Report)
		}
	}
	return a.diagnostics, nil
}

func (a *Analyzer) flag(sev Severity, code string, pos ast.Pos, msg string, data map[string]any) {
	a.diagnostics = append(a.diagnostics, Diagnostic{
		Severity: sev,
		Report: &glyphcerrors.Report{
			Schema:  "glyphc.error/v1",
			Code:    code,
			Phase:   "security",
			Message: msg,
			Span:    &ast.Span{Start: pos, End: pos},
			Data:    data,
		},
	})
}

func (a *Analyzer) walkFuncDecl(fn *ast.FuncDecl) {
	if fn == nil {
		return
	}
	if fn.Body != nil {
		a.walkExpr(fn.Body)
	}
	for _, n := range fn.StmtBody {
		a.walkStmt(n)
	}
}

func (a *Analyzer) walkStmt(n ast.Node) {
	switch st := n.(type) {
	case *ast.WhileStmt:
		a.walkExpr(st.Condition)
		for _, b := range st.Body {
			a.walkStmt(b)
		}
	case *ast.ForStmt:
		a.walkExpr(st.Iterable)
		for _, b := range st.Body {
			a.walkStmt(b)
		}
	case *ast.TryStmt:
		for _, b := range st.Body {
			a.walkStmt(b)
		}
		for _, ex := range st.Excepts {
			for _, b := range ex.Body {
				a.walkStmt(b)
			}
		}
		for _, b := range st.Finally {
			a.walkStmt(b)
		}
	case *ast.ThrowStmt:
		a.walkExpr(st.Value)
	case *ast.ReturnStmt:
		if st.Value != nil {
			a.walkExpr(st.Value)
		}
	case *ast.IfStmt:
		a.walkExpr(st.Condition)
		for _, b := range st.Then {
			a.walkStmt(b)
		}
		for _, el := range st.Elifs {
			a.walkExpr(el.Condition)
			for _, b := range el.Body {
				a.walkStmt(b)
			}
		}
		for _, b := range st.Else {
			a.walkStmt(b)
		}
	case *ast.ExprStmt:
		a.walkExpr(st.Expr)
	case *ast.Assignment:
		a.walkExpr(st.Target)
		a.walkExpr(st.Value)
	case *ast.ImportDecl:
		a.checkImport(st)
	case *ast.FuncDecl:
		a.walkFuncDecl(st)
	}
}

func (a *Analyzer) checkImport(imp *ast.ImportDecl) {
	if a.policy.KnownModules == nil {
		return
	}
	if !a.policy.KnownModules[imp.Path] {
		a.flag(SeverityError, glyphcerrors.SEC003, imp.Pos,
			fmt.Sprintf("import %q is not present in the unified module registry", imp.Path),
			map[string]any{"path": imp.Path})
	}
}

func (a *Analyzer) walkExpr(e ast.Expr) {
	if e == nil {
		return
	}
	switch x := e.(type) {
	case *ast.Identifier:
		if sev, denied := a.policy.DenylistedIdentifiers[x.Name]; denied {
			a.flag(sev, glyphcerrors.SEC001, x.Pos,
				fmt.Sprintf("reference to denylisted identifier %q", x.Name),
				map[string]any{"identifier": x.Name})
		} else if a.policy.AllowlistedIdentifiers != nil && !a.policy.AllowlistedIdentifiers[x.Name] {
			a.flag(SeverityWarning, glyphcerrors.SEC001, x.Pos,
				fmt.Sprintf("identifier %q is not in the configured allowlist", x.Name),
				map[string]any{"identifier": x.Name})
		}

	case *ast.BinaryOp:
		a.walkExpr(x.Left)
		a.walkExpr(x.Right)

	case *ast.UnaryOp:
		a.walkExpr(x.Expr)

	case *ast.FuncCall:
		a.walkExpr(x.Func)
		sinkName := calleeName(x.Func)
		if pattern, ok := a.policy.SensitiveSinks[sinkName]; ok {
			for _, arg := range x.Args {
				if lit, ok := arg.(*ast.Literal); ok && lit.Kind == ast.StringLit {
					if s, ok := lit.Value.(string); ok && pattern.MatchString(s) {
						a.flag(SeverityWarning, glyphcerrors.SEC002, lit.Pos,
							fmt.Sprintf("argument to sensitive sink %q matches a suspicious pattern", sinkName),
							map[string]any{"sink": sinkName, "literal": s})
					}
				}
			}
		}
		for _, arg := range x.Args {
			a.walkExpr(arg)
		}

	case *ast.Lambda:
		a.walkExpr(x.Body)

	case *ast.ArrowFunc:
		if x.ExprBody != nil {
			a.walkExpr(x.ExprBody)
		}
		for _, s := range x.StmtBody {
			a.walkStmt(s)
		}

	case *ast.Ternary:
		a.walkExpr(x.Condition)
		a.walkExpr(x.Then)
		a.walkExpr(x.Else)

	case *ast.If:
		a.walkExpr(x.Condition)
		a.walkExpr(x.Then)
		a.walkExpr(x.Else)

	case *ast.Block:
		for _, inner := range x.Exprs {
			a.walkExpr(inner)
		}

	case *ast.Let:
		a.walkExpr(x.Value)
		a.walkExpr(x.Body)

	case *ast.LetRec:
		a.walkExpr(x.Value)
		a.walkExpr(x.Body)

	case *ast.List:
		for _, el := range x.Elements {
			a.walkExpr(el)
		}

	case *ast.Tuple:
		for _, el := range x.Elements {
			a.walkExpr(el)
		}

	case *ast.Record:
		for _, f := range x.Fields {
			a.walkExpr(f.Value)
		}

	case *ast.RecordAccess:
		a.walkExpr(x.Record)

	case *ast.ArrayAccess:
		a.walkExpr(x.Array)
		a.walkExpr(x.Index)

	case *ast.SpreadExpr:
		a.walkExpr(x.Value)

	case *ast.PipelineExpr:
		a.walkExpr(x.Source)
		for _, stage := range x.Stages {
			a.walkExpr(stage)
		}
	}
}

// calleeName extracts a best-effort flat name for a call's callee,
// enough to key the sensitive-sink table; `mod.fn` is normalized to
// "mod_fn" so configuration doesn't need to special-case dotted paths.
func calleeName(callee ast.Expr) string {
	switch c := callee.(type) {
	case *ast.Identifier:
		return c.Name
	case *ast.RecordAccess:
		return strings.ReplaceAll(calleeName(c.Record), ".", "_") + "_" + c.Field
	default:
		return ""
	}
}
