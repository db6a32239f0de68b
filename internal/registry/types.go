// Package registry implements the Module Registry and Resolver
// (spec.md §4.5): the single source of truth for every importable
// module, unifying native-bridge modules (host-language functions
// self-registered at load time) and sl-source modules (files discovered
// on configured search paths).
//
// Grounded on the teacher's internal/module package: loader.go's cache
// map + RWMutex, load-stack cycle detection, and topological sort are
// kept almost file-for-file in algorithm; resolver.go's ordered
// relative/stdlib/project/local resolution branches become this
// package's four-step resolution order. Both are generalized to also
// carry native_bridge entries and to watch sl-source files for changes.
package registry

import (
	"time"

	"github.com/glyphlang/glyphc/internal/ast"
)

// Kind distinguishes the two module flavors the registry unifies
// (spec.md §3: "Module metadata... kind ∈ {native_bridge, sl_source}").
type Kind string

const (
	NativeBridge Kind = "native_bridge"
	SLSource     Kind = "sl_source"
)

// FunctionMetadata describes one callable exposed by a module, per
// spec.md §3: "(name, capabilities_required, description, is_property)."
type FunctionMetadata struct {
	Name                string
	CapabilitiesRequired []string
	Description         string
	IsProperty          bool
	OwningClass         string // set for methods on a registered class
}

// ClassMetadata groups a class's own function-metadata map, per spec.md
// §3: "classes — mapping from name to class metadata (each class has
// its own function-metadata map)."
type ClassMetadata struct {
	Name      string
	Functions map[string]*FunctionMetadata
}

// Metadata is one record per module, whether native-bridge or sl-source
// (spec.md §3's "Module metadata").
type Metadata struct {
	Name                 string
	Kind                 Kind
	Functions            map[string]*FunctionMetadata
	Classes              map[string]*ClassMetadata
	CapabilitiesRequired []string
	Description          string
	Version              string

	// BridgeHandle is set only for Kind == NativeBridge: an opaque
	// handle to the host-language binding (spec.md §3).
	BridgeHandle any

	// The following are set only for Kind == SLSource.
	SourcePath       string
	ParseTimestamp   time.Time
	ModTimestamp     time.Time
	CachedArtifact   any
	Dependencies     []string
}

// HasFunction reports whether name is exported as a plain function
// (not a class method) by this module.
func (m *Metadata) HasFunction(name string) bool {
	_, ok := m.Functions[name]
	return ok
}

// FunctionNames lists this module's exported plain-function names, used to
// populate UnknownModuleFunction's "module_functions" diagnostic data
// (spec.md §4.7).
func (m *Metadata) FunctionNames() []string {
	names := make([]string, 0, len(m.Functions))
	for name := range m.Functions {
		names = append(names, name)
	}
	return names
}

// Info is the resolver's output for one resolved module (spec.md §3's
// "ModuleInfo (resolver output)"). AST/TranspiledArtifact are present
// only for sl_source modules; native_bridge modules expose only
// Metadata.
type Info struct {
	Metadata           *Metadata
	AST                *ast.File
	TranspiledArtifact any
	DependencyASTRefs  []*Info
}
