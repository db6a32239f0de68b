package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glyphlang/glyphc/internal/ast"
	"github.com/glyphlang/glyphc/internal/registry"
)

func testCfg() Config {
	return Config{PackageName: "generated", RuntimeImport: "github.com/glyphlang/glyphc/internal/glyphrt"}
}

func TestCompile_SimpleProgramProducesGoSourceAndSourceMap(t *testing.T) {
	src := Source{Filename: "main.gly", Code: `
pure func square(x: int) -> int {
  x * x
}

print(square(3))
`}
	result, err := Compile(testCfg(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v (diagnostics: %+v)", err, result.Diagnostics)
	}
	if !strings.Contains(result.Artifact, "func square(") {
		t.Fatalf("expected emitted source to contain square's definition, got:\n%s", result.Artifact)
	}
	if !strings.Contains(result.Artifact, "package generated") {
		t.Fatalf("expected a package clause, got:\n%s", result.Artifact)
	}
	if result.SourceMap == nil || result.SourceMap.Len() == 0 {
		t.Fatal("expected a non-empty source map")
	}
	for _, stage := range []string{"parse", "validate", "transform", "typecheck", "security", "resolve", "emit"} {
		if _, ok := result.PhaseTimings[stage]; !ok {
			t.Errorf("expected a phase timing entry for %q", stage)
		}
	}
}

func TestCompile_ParseErrorIsFatalAndReported(t *testing.T) {
	src := Source{Filename: "bad.gly", Code: `func (((`}
	result, err := Compile(testCfg(), src)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if len(result.Diagnostics) == 0 {
		t.Fatal("expected at least one diagnostic for the parse failure")
	}
	if result.Diagnostics[0].Phase != "parser" {
		t.Fatalf("expected a parser-phase diagnostic, got %+v", result.Diagnostics[0])
	}
}

func TestCompile_UnresolvedImportWithoutRegistryIsFatal(t *testing.T) {
	src := Source{Filename: "main.gly", Code: `
import std/io

print("hi")
`}
	_, err := Compile(testCfg(), src)
	if err == nil {
		t.Fatal("expected an error for an import with no registry configured")
	}
}

type stubCompiler struct{}

func (stubCompiler) Compile(source, origin string) (*ast.File, []string, error) {
	return &ast.File{}, nil, nil
}

func TestCompile_ResolvesImportThroughRegistryAndEmitsQualifiedCall(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "greet.gly"), []byte(""), 0o644); err != nil {
		t.Fatalf("writing module file: %v", err)
	}

	reg := registry.New(registry.Config{SearchPaths: []string{dir}}, stubCompiler{}, nil)
	if err := reg.RegisterNativeBridge(&registry.Metadata{
		Name: "greet",
		Functions: map[string]*registry.FunctionMetadata{
			"hello": {Name: "hello"},
		},
	}); err != nil {
		t.Fatalf("registering native bridge: %v", err)
	}

	cfg := testCfg()
	cfg.Registry = reg
	src := Source{Filename: "main.gly", Code: `
import greet

greet.hello()
`}
	result, err := Compile(cfg, src)
	if err != nil {
		t.Fatalf("unexpected error: %v (diagnostics: %+v)", err, result.Diagnostics)
	}
	if !strings.Contains(result.Artifact, "greet.Hello()") && !strings.Contains(result.Artifact, "greet.hello()") {
		t.Fatalf("expected a qualified call into the greet module, got:\n%s", result.Artifact)
	}
}

func TestCompile_SecurityRejectsDenylistedIdentifier(t *testing.T) {
	src := Source{Filename: "main.gly", Code: `
exec("rm -rf /")
`}
	result, err := Compile(testCfg(), src)
	if err == nil {
		t.Fatal("expected security analysis to reject a call to a denylisted identifier")
	}
	found := false
	for _, d := range result.Diagnostics {
		if d.Phase == "security" && d.Severity == "error" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a fatal security diagnostic, got %+v", result.Diagnostics)
	}
}
