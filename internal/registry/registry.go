package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/glyphlang/glyphc/internal/ast"
	"github.com/glyphlang/glyphc/internal/cache"
)

// Compiler is the registry's sole dependency on the rest of the
// pipeline: given sl-source text it returns the AST to cache plus the
// raw dependency import paths found in it. The registry never imports
// the parser/validator/transformer/typecheck/security packages directly
// — those stages run inside Compile — which keeps module resolution
// decoupled from compilation strategy (the teacher's loader.go instead
// called lexer/parser directly; this module has a multi-stage pipeline
// in front of it, so the seam is pulled out as an interface).
type Compiler interface {
	Compile(source, origin string) (file *ast.File, dependencies []string, err error)
}

// Config mirrors the project-configuration keys relevant to resolution
// (spec.md §6): ml_module_paths and allow_current_dir.
type Config struct {
	SearchPaths     []string // ml_module_paths, declaration order
	AllowCurrentDir bool
}

// entry is one sl_source cache slot. It owns its own lock so writes
// (registration, hot reload) are single-writer per module name while
// unrelated modules resolve without contention (spec.md §4.5's cache
// invariant (iii)).
type entry struct {
	mu         sync.Mutex
	info       *Info
	sourcePath string
	modTime    int64 // unix nanos, compared against the filesystem on each resolve
	valid      bool
}

// Registry is the process-wide module registry (spec.md §4.5).
type Registry struct {
	mu     sync.RWMutex
	native map[string]*Metadata
	sl     map[string]*entry

	config   Config
	compiler Compiler
	log      *zap.Logger

	watcher    *fsnotify.Watcher
	watchPaths map[string]string // filesystem path -> module name

	persist         *cache.Cache
	compilerVersion string
}

// New constructs an empty Registry. A nil logger defaults to a no-op
// logger (see DESIGN.md's Logging section).
func New(config Config, compiler Compiler, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		native:          make(map[string]*Metadata),
		sl:              make(map[string]*entry),
		config:          config,
		compiler:        compiler,
		log:             log,
		watchPaths:      make(map[string]string),
		compilerVersion: "dev",
	}
}

// WithPersistentCache attaches a disk-backed cache so resolved sl-source
// metadata survives process restarts (spec.md §4.5's content-addressed
// cache key). Returns r for chaining.
func (r *Registry) WithPersistentCache(c *cache.Cache, compilerVersion string) *Registry {
	r.persist = c
	if compilerVersion != "" {
		r.compilerVersion = compilerVersion
	}
	return r
}

// RegisterNativeBridge self-registers a native-bridge module, as if its
// host-language definition had just been loaded (spec.md §4.5:
// "Native-bridge modules self-register when their host-language
// definition is loaded"). Returns REG001 if the name is already taken by
// either kind.
func (r *Registry) RegisterNativeBridge(meta *Metadata) error {
	meta.Kind = NativeBridge
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.native[meta.Name]; exists {
		return NewNameCollisionError(meta.Name)
	}
	if _, exists := r.sl[meta.Name]; exists {
		return NewNameCollisionError(meta.Name)
	}
	r.native[meta.Name] = meta
	r.log.Debug("native-bridge module registered", zap.String("name", meta.Name))
	return nil
}

// Unit is a single compilation unit's resolution context: it layers a
// compilation-local cache (resolution order step 1) over the shared
// Registry and tracks a load stack for cycle detection (spec.md §4.5:
// "During resolution of an SL-source module, a DFS over the dependency
// set is performed; a cycle aborts resolution").
type Unit struct {
	reg        *Registry
	local      map[string]*Info
	loadStack  []string
	currentDir string
}

// NewUnit starts a fresh compilation unit rooted at currentDir (the
// importing file's directory, used for allow_current_dir resolution).
func (r *Registry) NewUnit(currentDir string) *Unit {
	return &Unit{reg: r, local: make(map[string]*Info), currentDir: currentDir}
}

// Resolve implements the four-step resolution order from spec.md §4.5:
// (1) this unit's local cache; (2) native-bridge registry; (3) sl-source
// search paths in declaration order; (4) package-relative search from
// the importing file's directory, only if allow_current_dir is set.
func (u *Unit) Resolve(importPath string) (*Info, error) {
	if info, ok := u.local[importPath]; ok {
		return info, nil
	}

	if meta, ok := u.reg.lookupNative(importPath); ok {
		info := &Info{Metadata: meta}
		u.local[importPath] = info
		return info, nil
	}

	for i, id := range u.loadStack {
		if id == importPath {
			cycle := append(append([]string{}, u.loadStack[i:]...), importPath)
			return nil, NewCircularDependencyError(cycle)
		}
	}
	u.loadStack = append(u.loadStack, importPath)
	defer func() { u.loadStack = u.loadStack[:len(u.loadStack)-1] }()

	var searched []string
	for _, sp := range u.reg.config.SearchPaths {
		path, ok := candidatePath(sp, importPath)
		searched = append(searched, path)
		if ok {
			return u.resolveSLSource(importPath, path)
		}
	}

	if u.reg.config.AllowCurrentDir && u.currentDir != "" {
		path, ok := candidatePath(u.currentDir, importPath)
		searched = append(searched, path)
		if ok {
			return u.resolveSLSource(importPath, path)
		}
	}

	return nil, NewModuleNotFoundError(importPath, searched)
}

func candidatePath(base, importPath string) (string, bool) {
	path := filepath.Join(base, importPath)
	if !strings.HasSuffix(path, ".gly") {
		path += ".gly"
	}
	if _, err := os.Stat(path); err == nil {
		abs, err := filepath.Abs(path)
		if err == nil {
			return abs, true
		}
		return path, true
	}
	return path, false
}

func (u *Unit) resolveSLSource(name, path string) (*Info, error) {
	info, err := u.reg.loadOrGetCached(name, path, u)
	if err != nil {
		return nil, err
	}
	u.local[name] = info
	return info, nil
}

func (r *Registry) lookupNative(name string) (*Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.native[name]
	return m, ok
}

// loadOrGetCached implements the cache invariants of spec.md §4.5: a
// cache entry is valid only if the source file's mtime equals the
// cached mtime (every dependency entry's validity is implied
// transitively, since a dependency's own mtime check runs when it is
// itself resolved) and the cache is single-writer per module name.
func (r *Registry) loadOrGetCached(name, path string, u *Unit) (*Info, error) {
	r.mu.Lock()
	e, exists := r.sl[name]
	if !exists {
		e = &entry{sourcePath: path}
		r.sl[name] = e
		r.watchPaths[path] = name
	}
	r.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	st, statErr := os.Stat(path)
	if statErr == nil && e.valid && e.modTime == st.ModTime().UnixNano() {
		return e.info, nil
	}

	info, depInfos, err := r.compileModule(name, path, u)
	if err != nil {
		return nil, NewMalformedModuleError(name, err)
	}
	info.DependencyASTRefs = depInfos
	e.info = info
	e.valid = true
	if statErr == nil {
		e.modTime = st.ModTime().UnixNano()
	}
	return info, nil
}

func (r *Registry) compileModule(name, path string, u *Unit) (*Info, []*Info, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading module file: %w", err)
	}

	// Own-content cache key. Unlike the in-memory mtime check this
	// survives process restarts; it is a warm-start for metadata only —
	// the AST is always re-parsed in-process since *ast.File isn't
	// persisted. Keyed on content alone (not transitive dependency
	// hashes, which aren't known until after Compile runs); changed
	// dependencies are still caught by the in-memory mtime/invalidation
	// path above, so this key only needs to be as strong as "did this
	// file's own text change."
	key := cache.HashKey(string(content), nil, r.compilerVersion)
	if r.persist != nil {
		if rec, ok, _ := r.persist.Get(key); ok {
			r.log.Debug("module metadata warm-started from persisted cache", zap.String("name", name))
			return &Info{Metadata: metadataFromRecord(rec)}, nil, nil
		}
	}

	if r.compiler == nil {
		return nil, nil, fmt.Errorf("no compiler configured for sl-source resolution")
	}
	parsed, deps, err := r.compiler.Compile(string(content), path)
	if err != nil {
		return nil, nil, err
	}

	var depInfos []*Info
	for _, dep := range deps {
		depInfo, err := u.Resolve(dep)
		if err != nil {
			return nil, nil, err
		}
		depInfos = append(depInfos, depInfo)
	}

	meta := &Metadata{
		Name:         name,
		Kind:         SLSource,
		Functions:    make(map[string]*FunctionMetadata),
		Classes:      make(map[string]*ClassMetadata),
		SourcePath:   path,
		Dependencies: deps,
	}
	if r.persist != nil {
		if err := r.persist.Put(key, recordFromMetadata(meta)); err != nil {
			r.log.Warn("failed to persist module metadata", zap.String("name", name), zap.Error(err))
		}
	}
	return &Info{Metadata: meta, AST: parsed}, depInfos, nil
}

// recordFromMetadata projects the persistable subset of meta into a
// cache.Record. BridgeHandle and CachedArtifact are intentionally
// dropped: the former is a live host-language handle and the latter is
// reconstructed by re-running the emitter, not restored byte-for-byte.
func recordFromMetadata(meta *Metadata) *cache.Record {
	return &cache.Record{
		Name:                 meta.Name,
		Kind:                 string(meta.Kind),
		CapabilitiesRequired: meta.CapabilitiesRequired,
		Description:          meta.Description,
		Version:              meta.Version,
		SourcePath:           meta.SourcePath,
		Dependencies:         meta.Dependencies,
	}
}

func metadataFromRecord(rec *cache.Record) *Metadata {
	return &Metadata{
		Name:                 rec.Name,
		Kind:                 Kind(rec.Kind),
		Functions:            make(map[string]*FunctionMetadata),
		Classes:              make(map[string]*ClassMetadata),
		CapabilitiesRequired: rec.CapabilitiesRequired,
		Description:          rec.Description,
		Version:              rec.Version,
		SourcePath:           rec.SourcePath,
		Dependencies:         rec.Dependencies,
	}
}

// Reload re-resolves an sl-source module from disk, per spec.md §4.5:
// "re-parses the source, re-runs stages 1–8, updates the cached
// artifact, and invalidates any downstream module whose dependency set
// contains this one." Reload is atomic per module: the old artifact is
// retained if re-compilation fails.
func (r *Registry) Reload(name string) error {
	r.mu.RLock()
	e, ok := r.sl[name]
	r.mu.RUnlock()
	if !ok {
		return NewModuleNotFoundError(name, nil)
	}

	e.mu.Lock()
	path := e.sourcePath
	e.mu.Unlock()

	u := r.NewUnit(filepath.Dir(path))
	info, err := r.loadOrGetCachedForce(name, path, u)
	if err != nil {
		return NewReloadFailedError(name, err)
	}

	e.mu.Lock()
	e.info = info
	e.mu.Unlock()

	r.invalidateDownstream(name)
	return nil
}

func (r *Registry) loadOrGetCachedForce(name, path string, u *Unit) (*Info, error) {
	info, depInfos, err := r.compileModule(name, path, u)
	if err != nil {
		return nil, err
	}
	info.DependencyASTRefs = depInfos
	return info, nil
}

// invalidateDownstream recursively marks every sl-source module whose
// dependency set transitively contains name as stale, so the next
// Resolve for it recompiles (spec.md §4.5: "recursive invalidation").
// Reload does not touch capability contexts held by consumers (spec.md
// §4.5), which live entirely in internal/capability and are untouched here.
func (r *Registry) invalidateDownstream(name string) {
	r.mu.RLock()
	dependents := make([]string, 0)
	for modName, e := range r.sl {
		e.mu.Lock()
		if e.info != nil && e.info.Metadata != nil {
			for _, dep := range e.info.Metadata.Dependencies {
				if dep == name {
					dependents = append(dependents, modName)
					break
				}
			}
		}
		e.mu.Unlock()
	}
	r.mu.RUnlock()

	for _, dep := range dependents {
		r.mu.RLock()
		e := r.sl[dep]
		r.mu.RUnlock()
		e.mu.Lock()
		e.valid = false
		e.mu.Unlock()
		r.invalidateDownstream(dep)
	}
}

// GetDependencyGraph returns the full sl-source dependency graph,
// adapted from the teacher's loader.GetDependencyGraph.
func (r *Registry) GetDependencyGraph() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	graph := make(map[string][]string)
	for name, e := range r.sl {
		e.mu.Lock()
		if e.info != nil && e.info.Metadata != nil {
			graph[name] = append([]string(nil), e.info.Metadata.Dependencies...)
		}
		e.mu.Unlock()
	}
	return graph
}

// TopologicalSort returns sl-source modules in dependency order,
// adapted from the teacher's loader.TopologicalSort (Kahn's algorithm).
func (r *Registry) TopologicalSort() ([]string, error) {
	graph := r.GetDependencyGraph()

	reverseGraph := make(map[string][]string)
	inDegree := make(map[string]int)
	for node := range graph {
		reverseGraph[node] = []string{}
		inDegree[node] = 0
	}
	for node, deps := range graph {
		for _, dep := range deps {
			if _, exists := reverseGraph[dep]; !exists {
				reverseGraph[dep] = []string{}
				inDegree[dep] = 0
			}
			reverseGraph[dep] = append(reverseGraph[dep], node)
		}
		inDegree[node] = len(deps)
	}

	queue := []string{}
	for node, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, node)
		}
	}

	result := []string{}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)
		for _, dependent := range reverseGraph[node] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(graph) {
		return nil, fmt.Errorf("circular dependency detected among: %v", graph)
	}
	return result, nil
}

// StartWatching begins watching every currently-cached sl-source file
// for writes and triggers Reload on change (spec.md §4.5: "the registry
// watches the file's mtime"). Safe to call once per Registry lifetime;
// subsequent Resolve calls that add new sl-source entries are picked up
// on their next StartWatching call or via WatchPath.
func (r *Registry) StartWatching() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	r.mu.Lock()
	r.watcher = w
	paths := make(map[string]string, len(r.watchPaths))
	for p, n := range r.watchPaths {
		paths[p] = n
	}
	r.mu.Unlock()

	for p := range paths {
		if err := w.Add(p); err != nil {
			r.log.Warn("failed to watch module file", zap.String("path", p), zap.Error(err))
		}
	}

	go r.watchLoop(w)
	return nil
}

func (r *Registry) watchLoop(w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			r.mu.RLock()
			name, known := r.watchPaths[ev.Name]
			r.mu.RUnlock()
			if !known {
				continue
			}
			if err := r.Reload(name); err != nil {
				r.log.Warn("hot reload failed", zap.String("module", name), zap.Error(err))
			} else {
				r.log.Info("hot reload succeeded", zap.String("module", name))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			r.log.Warn("module watcher error", zap.Error(err))
		}
	}
}

// Close releases the file watcher, if one was started.
func (r *Registry) Close() error {
	r.mu.RLock()
	w := r.watcher
	r.mu.RUnlock()
	if w == nil {
		return nil
	}
	return w.Close()
}
