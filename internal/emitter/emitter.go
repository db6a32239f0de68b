// Package emitter implements the Code Emitter (spec.md §4.7): it walks the
// transformed AST and produces Go source text, consulting the
// allowed-functions registry (internal/whitelist) on every call site and
// emitting a source map (internal/sourcemap) alongside the generated
// program.
//
// Grounded on the teacher's internal/eval package for the node-kind walk
// (the same switch-over-concrete-types shape internal/transform already
// uses, generalized from "evaluate to a Value" to "emit Go text"), and on
// internal/security's Report-per-diagnostic style for error construction.
package emitter

import (
	"fmt"
	"go/format"
	"strconv"
	"strings"

	"github.com/glyphlang/glyphc/internal/ast"
	glyphcerrors "github.com/glyphlang/glyphc/internal/errors"
	"github.com/glyphlang/glyphc/internal/registry"
	"github.com/glyphlang/glyphc/internal/sourcemap"
	"github.com/glyphlang/glyphc/internal/whitelist"
)

// Mode selects REPL vs strict emission per spec.md §4.7's REPL exception.
type Mode int

const (
	ModeStrict Mode = iota
	ModeREPL
)

// ImportMode selects how a resolved sl_source import is emitted, per
// spec.md §4.7's "Import emission" paragraph.
type ImportMode int

const (
	ImportMultiFile ImportMode = iota
	ImportInline
)

// Config controls one Emitter run.
type Config struct {
	Mode Mode
	// PackageName is the Go package clause emitted at the top of the unit.
	PackageName string
	// RuntimeImport is the Go import path of internal/glyphrt as seen by
	// the emitted package (normally "github.com/glyphlang/glyphc/internal/glyphrt").
	// async_execute/await/wrap_callback route entirely through
	// glyphrt.Runtime's methods (internal/glyphrt/async.go), so emitted
	// code never spells the internal/asyncexec package name itself and
	// needs no separate import for it.
	RuntimeImport string
	ImportMode    ImportMode
}

// RuntimeParam is the identifier every emitted top-level function receives
// as its first parameter: the *glyphrt.Runtime carrying the builtin
// namespace and safe-attribute registry (spec.md §4.9), threaded
// explicitly rather than through process-global state (spec.md §9).
const RuntimeParam = "rt"

// Emitter walks one compilation unit's AST and produces Go source text.
type Emitter struct {
	cfg     Config
	wl      *whitelist.Whitelist
	buf     strings.Builder
	line    int
	col     int
	sm      *sourcemap.Map
	renames map[string]string
}

// New constructs an Emitter. wl must already have every top-level function
// declared and every resolved import registered (spec.md §4.6: the
// whitelist is built before emission, consulted during it, and dropped
// after).
func New(cfg Config, wl *whitelist.Whitelist) *Emitter {
	return &Emitter{
		cfg:     cfg,
		wl:      wl,
		sm:      sourcemap.NewMap(),
		renames: make(map[string]string),
		line:    1,
		col:     1,
	}
}

// Result is what EmitFile returns: formatted Go source plus its source map.
type Result struct {
	Source string
	Map    *sourcemap.Map
}

// EmitFile emits file as a complete Go source file. file must already have
// passed the validator, transformer, type checker, and security analyzer.
func (e *Emitter) EmitFile(file *ast.File) (*Result, error) {
	if file == nil {
		return nil, e.internalError(ast.Pos{}, "EmitFile called with a nil file")
	}

	// Body is emitted into a side buffer first so the import block (which
	// must precede all uses in valid Go) can be written with the final
	// usesAsync/module-alias set already known. Source-map offsets are
	// recorded against body-relative positions, then shifted by the
	// header's line count once the header text is final.
	header := e.emitHeader(file)
	headerLines := strings.Count(header, "\n")

	for _, fn := range file.Funcs {
		if err := e.emitFuncDecl(fn); err != nil {
			return nil, err
		}
		e.write("\n")
	}

	if len(file.Statements) > 0 {
		e.write("func main() {\n")
		for _, n := range file.Statements {
			if err := e.emitTopLevelStmt(n); err != nil {
				return nil, err
			}
		}
		e.write("}\n")
	}

	records := e.sm.Records()
	shifted := sourcemap.NewMap()
	for _, r := range records {
		r.HostLine += headerLines
		shifted.Add(r)
	}
	shifted.Finalize()

	full := header + e.buf.String()
	formatted, err := format.Source([]byte(full))
	if err != nil {
		// Emitted source that doesn't parse is our bug, not the user's
		// program's — surface it as CodeGenInternalError rather than a
		// user-facing diagnostic (spec.md §4.7).
		return nil, e.internalError(ast.Pos{}, fmt.Sprintf("generated source failed to format: %v\n---\n%s", err, full))
	}

	return &Result{Source: string(formatted), Map: shifted}, nil
}

func (e *Emitter) emitHeader(file *ast.File) string {
	var h strings.Builder
	fmt.Fprintf(&h, "package %s\n\n", e.cfg.PackageName)
	h.WriteString("import (\n")
	fmt.Fprintf(&h, "\t%q\n", e.cfg.RuntimeImport)
	for _, imp := range file.Imports {
		alias := importAlias(imp)
		meta, ok := e.wl.ImportedModule(alias)
		if !ok {
			continue
		}
		path := goImportPathFor(meta)
		if lastSegment(path) == alias {
			fmt.Fprintf(&h, "\t%q\n", path)
		} else {
			fmt.Fprintf(&h, "\t%s %q\n", alias, path)
		}
	}
	h.WriteString(")\n\n")
	return h.String()
}

func importAlias(imp *ast.ImportDecl) string {
	if imp.Alias != "" {
		return imp.Alias
	}
	return lastSegment(imp.Path)
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// goImportPathFor derives the Go import path a resolved module is emitted
// under. Native-bridge modules carry their Go import path in BridgeHandle
// (set by whoever registered the bridge); sl-source modules are emitted as
// a sibling package named after their module path.
func goImportPathFor(meta *registry.Metadata) string {
	if meta.Kind == registry.NativeBridge {
		if path, ok := meta.BridgeHandle.(string); ok && path != "" {
			return path
		}
	}
	return "generated/" + meta.Name
}

func (e *Emitter) write(s string) {
	e.buf.WriteString(s)
	for _, r := range s {
		if r == '\n' {
			e.line++
			e.col = 1
		} else {
			e.col++
		}
	}
}

func (e *Emitter) mark(pos ast.Pos, symbol string) {
	e.sm.Add(sourcemap.Record{
		HostLine:   e.line,
		HostColumn: e.col,
		SLLine:     pos.Line,
		SLColumn:   pos.Column,
		SLFile:     pos.File,
		Symbol:     symbol,
	})
}

func (e *Emitter) internalError(pos ast.Pos, msg string) error {
	return glyphcerrors.WrapReport(&glyphcerrors.Report{
		Schema:  "glyphc.error/v1",
		Code:    glyphcerrors.GEN004,
		Phase:   "codegen",
		Message: msg,
		Span:    &ast.Span{Start: pos, End: pos},
	})
}

func (e *Emitter) unknownFunction(pos ast.Pos, name string) error {
	return glyphcerrors.WrapReport(&glyphcerrors.Report{
		Schema:  "glyphc.error/v1",
		Code:    glyphcerrors.GEN001,
		Phase:   "codegen",
		Message: fmt.Sprintf("unknown function %q", name),
		Span:    &ast.Span{Start: pos, End: pos},
		Data: map[string]any{
			"name":        name,
			"suggestions": e.wl.Suggest(name),
			"available":   e.wl.VisibleNamesSummary(),
		},
	})
}

func (e *Emitter) unknownModuleFunction(pos ast.Pos, alias, member string, moduleFunctions []string) error {
	return glyphcerrors.WrapReport(&glyphcerrors.Report{
		Schema:  "glyphc.error/v1",
		Code:    glyphcerrors.GEN002,
		Phase:   "codegen",
		Message: fmt.Sprintf("module %q has no function %q", alias, member),
		Span:    &ast.Span{Start: pos, End: pos},
		Data: map[string]any{
			"alias":            alias,
			"member":           member,
			"suggestions":      e.wl.Suggest(member),
			"module_functions": moduleFunctions,
		},
	})
}

func (e *Emitter) unknownModule(pos ast.Pos, name string) error {
	return glyphcerrors.WrapReport(&glyphcerrors.Report{
		Schema:  "glyphc.error/v1",
		Code:    glyphcerrors.GEN003,
		Phase:   "codegen",
		Message: fmt.Sprintf("unknown module %q", name),
		Span:    &ast.Span{Start: pos, End: pos},
		Data:    map[string]any{"name": name},
	})
}

// goReservedWords is the full Go keyword set. Any SL identifier spelled
// the same way is rewritten deterministically on first encounter and the
// rewrite is memoized so every reference within the unit agrees (spec.md
// §4.7: "the rewrite is bijective within a unit").
var goReservedWords = map[string]bool{
	"break": true, "default": true, "func": true, "interface": true, "select": true,
	"case": true, "defer": true, "go": true, "map": true, "struct": true,
	"chan": true, "else": true, "goto": true, "package": true, "switch": true,
	"const": true, "fallthrough": true, "if": true, "range": true, "type": true,
	"continue": true, "for": true, "import": true, "return": true, "var": true,
}

func (e *Emitter) safeIdent(name string) string {
	if renamed, ok := e.renames[name]; ok {
		return renamed
	}
	if !goReservedWords[name] {
		return name
	}
	renamed := name + "_sl"
	e.renames[name] = renamed
	return renamed
}

func quoteGoString(s string) string {
	return strconv.Quote(s)
}
