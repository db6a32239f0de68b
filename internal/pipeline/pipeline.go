// Package pipeline implements the Compile entry point (spec.md §6:
// "compile(source, config) -> {artifact, source_map, diagnostics}"):
// the orchestrator that chains parse -> validate -> transform ->
// typecheck -> security -> module resolution -> whitelist -> emit into
// one call.
//
// This replaces the teacher's Core-IR/Hindley-Milner orchestration
// (parse -> elaborate -> type-infer -> lower -> link -> evaluate) with
// the transpile-to-Go pipeline this spec describes: there is no
// interpreter here, no Core program, no dictionary-passing type
// classes — every stage either rejects the AST or hands it to the
// next stage, and the last stage emits Go source text instead of
// producing a runtime value. op_lowering.go/op_table.go are kept
// unchanged in this package (internal/repl still drives the teacher's
// original type-inference REPL path through them); see DESIGN.md for
// why the REPL's incremental-eval path and this package's Compile path
// coexist rather than one subsuming the other.
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/glyphlang/glyphc/internal/ast"
	"github.com/glyphlang/glyphc/internal/emitter"
	glyphcerrors "github.com/glyphlang/glyphc/internal/errors"
	"github.com/glyphlang/glyphc/internal/lexer"
	"github.com/glyphlang/glyphc/internal/parser"
	"github.com/glyphlang/glyphc/internal/registry"
	"github.com/glyphlang/glyphc/internal/security"
	"github.com/glyphlang/glyphc/internal/sourcemap"
	"github.com/glyphlang/glyphc/internal/transform"
	"github.com/glyphlang/glyphc/internal/typecheck"
	"github.com/glyphlang/glyphc/internal/validator"
	"github.com/glyphlang/glyphc/internal/whitelist"
)

// BuiltinNames lists the SL names the allowed-functions registry seeds
// on every compile (spec.md §4.6), one entry per
// internal/glyphrt.BuiltinNamespace method, lowercased.
var BuiltinNames = []string{
	"int", "float", "str", "len", "type",
	"upper", "lower", "concat", "print", "range", "abs",
}

// Config controls one Compile call.
type Config struct {
	// PackageName/RuntimeImport/ImportMode are forwarded to the emitter
	// (internal/emitter.Config).
	PackageName   string
	RuntimeImport string
	ImportMode    emitter.ImportMode
	// REPL, if true, selects the emitter's REPL mode (spec.md §4.7's
	// REPL exception) instead of strict mode.
	REPL bool

	// SecurityPolicy is passed to security.Analyze. The zero value
	// selects security.DefaultPolicy().
	SecurityPolicy security.Policy
	// StrictSecurity promotes security warnings to fatal errors, per
	// spec.md §6's `strict_security` project-configuration key.
	StrictSecurity bool

	// Registry resolves import statements. Required whenever the
	// source has imports; a program with no imports compiles with a
	// nil Registry.
	Registry *registry.Registry
	// CurrentDir is passed to Registry.NewUnit for relative/local
	// resolution (spec.md §4.5's allow_current_dir branch).
	CurrentDir string
}

// Source is one unit of Glyph source text to compile.
type Source struct {
	Code     string
	Filename string
}

// Diagnostic is one compile-time finding, fatal or not, from any stage.
type Diagnostic struct {
	Phase    string
	Severity string // "error", "warning", "info"
	Report   *glyphcerrors.Report
}

// Result is what Compile returns: the emitted artifact, its source map,
// and every diagnostic collected before the stage that stopped
// compilation (if any).
type Result struct {
	AST          *ast.File
	Artifact     string
	SourceMap    *sourcemap.Map
	Diagnostics  []Diagnostic
	PhaseTimings map[string]int64 // milliseconds
}

// Compile runs the nine-stage pipeline (spec.md §3) over src and
// returns the emitted Go artifact plus its source map and the
// diagnostics accumulated along the way. It short-circuits on the
// first fatal error per stage but keeps every non-fatal diagnostic
// collected up to that point (spec.md §7: "Compile stages short-circuit
// on the first fatal error per unit but collect non-fatal diagnostics").
func Compile(cfg Config, src Source) (*Result, error) {
	result := &Result{PhaseTimings: make(map[string]int64)}

	// Stage 1: parse.
	start := time.Now()
	l := lexer.New(src.Code, src.Filename)
	p := parser.New(l)
	file := p.ParseFile()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Phase: "parser", Severity: "error", Report: glyphcerrors.NewGeneric("parser", e),
			})
		}
		return result, fmt.Errorf("parse error: %w", errs[0])
	}
	result.AST = file
	result.PhaseTimings["parse"] = time.Since(start).Milliseconds()

	// Stage 2: validate.
	start = time.Now()
	valReports, err := validator.Validate(file)
	appendReports(result, "validator", "error", valReports)
	if err != nil {
		return result, fmt.Errorf("validation error: %w", err)
	}
	result.PhaseTimings["validate"] = time.Since(start).Milliseconds()

	// Stage 3: transform (normalize to a fixed point).
	start = time.Now()
	file = transform.Transform(file)
	result.AST = file
	result.PhaseTimings["transform"] = time.Since(start).Milliseconds()

	// Stage 4: typecheck (permissive, spec.md §4.3 — diagnostics only).
	start = time.Now()
	_, tcReports := typecheck.Check(file)
	appendReports(result, "typecheck", "warning", tcReports)
	result.PhaseTimings["typecheck"] = time.Since(start).Milliseconds()

	// Stage 5: security analysis.
	start = time.Now()
	policy := cfg.SecurityPolicy
	if isZeroPolicy(policy) {
		policy = security.DefaultPolicy()
	}
	secDiags, err := security.Analyze(file, policy)
	fatalSecurity := false
	for _, d := range secDiags {
		sev := d.Severity.String()
		if d.Severity == security.SeverityError || (cfg.StrictSecurity && d.Severity == security.SeverityWarning) {
			fatalSecurity = true
			sev = "error"
		}
		result.Diagnostics = append(result.Diagnostics, Diagnostic{Phase: "security", Severity: sev, Report: d.Report})
	}
	if err != nil {
		return result, fmt.Errorf("security analysis error: %w", err)
	}
	if fatalSecurity {
		return result, fmt.Errorf("security analysis rejected the program")
	}
	result.PhaseTimings["security"] = time.Since(start).Milliseconds()

	// Stage 6-7: module resolution + whitelist construction.
	start = time.Now()
	wl := whitelist.New(BuiltinNames)
	for _, fn := range file.Funcs {
		wl.DeclareFunction(fn.Name)
	}
	if len(file.Imports) > 0 {
		if cfg.Registry == nil {
			return result, fmt.Errorf("module imports present but no registry is configured")
		}
		unit := cfg.Registry.NewUnit(cfg.CurrentDir)
		for _, imp := range file.Imports {
			info, err := unit.Resolve(imp.Path)
			if err != nil {
				return result, fmt.Errorf("resolving import %q: %w", imp.Path, err)
			}
			alias := imp.Alias
			if alias == "" {
				alias = lastPathSegment(imp.Path)
			}
			wl.DeclareImport(alias, info.Metadata)
		}
	}
	result.PhaseTimings["resolve"] = time.Since(start).Milliseconds()

	// Stage 8 (+ optional 9, cache persistence, handled by the caller
	// via cfg.Registry's own WithPersistentCache): emit.
	start = time.Now()
	mode := emitter.ModeStrict
	if cfg.REPL {
		mode = emitter.ModeREPL
	}
	em := emitter.New(emitter.Config{
		Mode:          mode,
		PackageName:   cfg.PackageName,
		RuntimeImport: cfg.RuntimeImport,
		ImportMode:    cfg.ImportMode,
	}, wl)
	emitted, err := em.EmitFile(file)
	wl.Drop()
	if err != nil {
		return result, fmt.Errorf("emit error: %w", err)
	}
	result.Artifact = emitted.Source
	result.SourceMap = emitted.Map
	result.PhaseTimings["emit"] = time.Since(start).Milliseconds()

	return result, nil
}

func appendReports(result *Result, phase, severity string, reports []*glyphcerrors.Report) {
	for _, r := range reports {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{Phase: phase, Severity: severity, Report: r})
	}
}

func isZeroPolicy(p security.Policy) bool {
	return p.DenylistedIdentifiers == nil && p.AllowlistedIdentifiers == nil && p.SensitiveSinks == nil && p.KnownModules == nil
}

func lastPathSegment(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
