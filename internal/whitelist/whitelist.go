// Package whitelist implements the Allowed-Functions Registry (spec.md
// §4.6): the per-compilation-unit whitelist that is the sole compile-time
// gate on call-site admission in the emitter (spec.md §4.7).
//
// Grounded on the teacher's internal/builtins/registry.go (`Registry`
// map + `IsBuiltin`/`GetBuiltinNames`) for the builtins half, but that
// package is a process-global `var Registry = make(map[string]*BuiltinMeta)`
// populated once by `init()`. spec.md §9 explicitly requires this
// registry be constructed fresh per compilation unit and dropped
// afterward — a process-global would leak names between concurrent
// compilations, so this package wraps the teacher's map shape in a
// per-instance struct instead of a package-level var.
package whitelist

import (
	"fmt"
	"sort"
	"strings"

	glyphcerrors "github.com/glyphlang/glyphc/internal/errors"
	"github.com/glyphlang/glyphc/internal/registry"
)

// Resolution is the outcome of looking up a call-site callee name
// against the whitelist, mirroring spec.md §4.7 step 1's three cases.
type Resolution int

const (
	Unknown Resolution = iota
	ResolvedUserDefined
	ResolvedBuiltin
)

// Whitelist is the per-compilation-unit allowed-functions registry.
type Whitelist struct {
	builtins        map[string]bool
	userDefined     map[string]bool
	importedModules map[string]*registry.Metadata
	dropped         bool
}

// New constructs a Whitelist seeded with the builtin module's function
// names (spec.md §4.6: "builtins is seeded from the builtin module's
// metadata").
func New(builtinNames []string) *Whitelist {
	w := &Whitelist{
		builtins:        make(map[string]bool, len(builtinNames)),
		userDefined:     make(map[string]bool),
		importedModules: make(map[string]*registry.Metadata),
	}
	for _, name := range builtinNames {
		w.builtins[name] = true
	}
	return w
}

// DeclareFunction records a top-level function declaration, per spec.md
// §4.6: "Each function declaration inserts its name into user_defined."
func (w *Whitelist) DeclareFunction(name string) {
	w.userDefined[name] = true
}

// DeclareImport records a successfully resolved import, per spec.md
// §4.6: "Each import statement, after resolver success, records
// (local_alias, module_metadata) into imported_modules."
func (w *Whitelist) DeclareImport(alias string, meta *registry.Metadata) {
	w.importedModules[alias] = meta
}

// IsBuiltin reports whether name is a registered builtin, irrespective
// of shadowing — callers that care about shadowing precedence should use
// Resolve instead.
func (w *Whitelist) IsBuiltin(name string) bool {
	return w.builtins[name]
}

// IsUserDefined reports whether name was declared as a top-level
// function in this compilation unit.
func (w *Whitelist) IsUserDefined(name string) bool {
	return w.userDefined[name]
}

// ImportedModule looks up an import alias's resolved module metadata.
func (w *Whitelist) ImportedModule(alias string) (*registry.Metadata, bool) {
	meta, ok := w.importedModules[alias]
	return meta, ok
}

// ModuleHasFunction reports whether the module imported under alias
// exposes name as a callable function.
func (w *Whitelist) ModuleHasFunction(alias, name string) bool {
	meta, ok := w.importedModules[alias]
	if !ok {
		return false
	}
	return meta.HasFunction(name)
}

// Resolve applies the shadowing rule from spec.md §4.6: "is_user_defined
// takes precedence over is_builtin at query time when both are true."
// This is the single query the emitter's call-site algorithm (spec.md
// §4.7 step 1) should use.
func (w *Whitelist) Resolve(name string) Resolution {
	if w.userDefined[name] {
		return ResolvedUserDefined
	}
	if w.builtins[name] {
		return ResolvedBuiltin
	}
	return Unknown
}

// Suggest returns up to 3 near matches for name by edit distance over
// the union of every visible name (builtins, user-defined functions,
// and import aliases), per spec.md §4.6.
func (w *Whitelist) Suggest(name string) []string {
	type scored struct {
		name string
		dist int
	}
	var candidates []scored
	seen := make(map[string]bool)
	add := func(n string) {
		if seen[n] || n == name {
			return
		}
		seen[n] = true
		candidates = append(candidates, scored{n, levenshtein(name, n)})
	}
	for n := range w.builtins {
		add(n)
	}
	for n := range w.userDefined {
		add(n)
	}
	for alias := range w.importedModules {
		add(alias)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].name < candidates[j].name
	})

	limit := 3
	if len(candidates) < limit {
		limit = len(candidates)
	}
	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = candidates[i].name
	}
	return out
}

// VisibleNamesSummary renders a short, human-readable summary of every
// name visible in this unit, for UnknownFunction/UnknownModuleFunction
// diagnostics (spec.md §4.7: "available=summary").
func (w *Whitelist) VisibleNamesSummary() string {
	var names []string
	for n := range w.builtins {
		names = append(names, n)
	}
	for n := range w.userDefined {
		names = append(names, n)
	}
	sort.Strings(names)
	if len(names) > 12 {
		return strings.Join(names[:12], ", ") + fmt.Sprintf(", … (%d more)", len(names)-12)
	}
	return strings.Join(names, ", ")
}

// Drop releases this whitelist at the end of a compilation unit, per
// spec.md §9: the registry must never outlive its compilation. Queries
// made through CheckAlive after Drop return WL001.
func (w *Whitelist) Drop() {
	w.dropped = true
	w.builtins = nil
	w.userDefined = nil
	w.importedModules = nil
}

// CheckAlive returns WL001 if this whitelist has already been dropped.
// The emitter calls this once per compilation before trusting any other
// query, since a dropped whitelist silently returns empty/false from
// every other method rather than panicking.
func (w *Whitelist) CheckAlive() error {
	if w.dropped {
		return glyphcerrors.WrapReport(&glyphcerrors.Report{
			Schema:  "glyphc.error/v1",
			Code:    glyphcerrors.WL001,
			Phase:   "whitelist",
			Message: "allowed-functions registry was already dropped for this compilation unit",
		})
	}
	return nil
}

// levenshtein computes simple edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	m, n := len(ra), len(rb)
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}
	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[n]
}
