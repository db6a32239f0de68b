package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glyphlang/glyphc/internal/ast"
)

// stubCompiler treats the raw source text as a single module name for
// its one declared dependency, separated by "->" (e.g. "a->b" means
// module a depends on module b). An empty source has no dependencies.
type stubCompiler struct{}

func (stubCompiler) Compile(source, origin string) (*ast.File, []string, error) {
	if source == "" {
		return &ast.File{Path: origin}, nil, nil
	}
	return &ast.File{Path: origin}, []string{source}, nil
}

func writeModule(t *testing.T, dir, name, depOn string) {
	t.Helper()
	path := filepath.Join(dir, name+".gly")
	if err := os.WriteFile(path, []byte(depOn), 0o644); err != nil {
		t.Fatalf("writing fixture module: %v", err)
	}
}

func TestResolve_NativeBridgeTakesPrecedenceOverLocalCache(t *testing.T) {
	reg := New(Config{}, stubCompiler{}, nil)
	if err := reg.RegisterNativeBridge(&Metadata{Name: "builtin_io"}); err != nil {
		t.Fatalf("registering native bridge: %v", err)
	}
	unit := reg.NewUnit("")
	info, err := unit.Resolve("builtin_io")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Metadata.Kind != NativeBridge {
		t.Fatalf("expected native_bridge kind, got %v", info.Metadata.Kind)
	}
}

func TestResolve_NameCollisionRejected(t *testing.T) {
	reg := New(Config{}, stubCompiler{}, nil)
	if err := reg.RegisterNativeBridge(&Metadata{Name: "dup"}); err != nil {
		t.Fatalf("first registration should succeed: %v", err)
	}
	if err := reg.RegisterNativeBridge(&Metadata{Name: "dup"}); err == nil {
		t.Fatal("expected REG001 name collision on duplicate registration")
	}
}

func TestResolve_SearchPathOrderRespected(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeModule(t, dirA, "shared", "")
	writeModule(t, dirB, "shared", "")

	reg := New(Config{SearchPaths: []string{dirA, dirB}}, stubCompiler{}, nil)
	unit := reg.NewUnit("")
	info, err := unit.Resolve("shared")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Metadata.SourcePath != filepath.Join(dirA, "shared.gly") {
		t.Fatalf("expected dirA's module to win by search order, got %s", info.Metadata.SourcePath)
	}
}

func TestResolve_ModuleNotFound(t *testing.T) {
	reg := New(Config{SearchPaths: []string{t.TempDir()}}, stubCompiler{}, nil)
	unit := reg.NewUnit("")
	if _, err := unit.Resolve("nope"); err == nil {
		t.Fatal("expected ModuleNotFound error")
	}
}

func TestResolve_CircularDependencyDetected(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "a", "b")
	writeModule(t, dir, "b", "a")

	reg := New(Config{SearchPaths: []string{dir}}, stubCompiler{}, nil)
	unit := reg.NewUnit("")
	if _, err := unit.Resolve("a"); err == nil {
		t.Fatal("expected circular dependency error")
	}
}

func TestResolve_AllowCurrentDirOnlyWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "local", "")

	reg := New(Config{}, stubCompiler{}, nil)
	unit := reg.NewUnit(dir)
	if _, err := unit.Resolve("local"); err == nil {
		t.Fatal("expected resolution to fail without allow_current_dir")
	}

	reg2 := New(Config{AllowCurrentDir: true}, stubCompiler{}, nil)
	unit2 := reg2.NewUnit(dir)
	if _, err := unit2.Resolve("local"); err != nil {
		t.Fatalf("expected resolution to succeed with allow_current_dir: %v", err)
	}
}

func TestReload_InvalidatesDownstreamDependents(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "base", "")
	writeModule(t, dir, "mid", "base")
	writeModule(t, dir, "top", "mid")

	reg := New(Config{SearchPaths: []string{dir}}, stubCompiler{}, nil)
	unit := reg.NewUnit("")
	if _, err := unit.Resolve("top"); err != nil {
		t.Fatalf("initial resolve failed: %v", err)
	}

	if err := reg.Reload("base"); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	reg.mu.RLock()
	midValid := reg.sl["mid"].valid
	topValid := reg.sl["top"].valid
	reg.mu.RUnlock()
	if midValid || topValid {
		t.Fatal("expected downstream dependents to be invalidated after reload")
	}
}

func TestTopologicalSort_OrdersDependenciesFirst(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "base", "")
	writeModule(t, dir, "mid", "base")
	writeModule(t, dir, "top", "mid")

	reg := New(Config{SearchPaths: []string{dir}}, stubCompiler{}, nil)
	unit := reg.NewUnit("")
	if _, err := unit.Resolve("top"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	order, err := reg.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos := map[string]int{}
	for i, n := range order {
		pos[n] = i
	}
	if pos["base"] > pos["mid"] || pos["mid"] > pos["top"] {
		t.Fatalf("expected base before mid before top, got order %v", order)
	}
}
