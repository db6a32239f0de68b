package registry

import (
	"testing"

	"github.com/glyphlang/glyphc/internal/cache"
)

func TestRegistry_PersistentCacheWarmStart(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "base", "")

	c, err := cache.Open(":memory:")
	if err != nil {
		t.Fatalf("opening cache: %v", err)
	}
	defer c.Close()

	reg := New(Config{SearchPaths: []string{dir}}, stubCompiler{}, nil).WithPersistentCache(c, "dev")
	unit := reg.NewUnit("")
	if _, err := unit.Resolve("base"); err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	reg2 := New(Config{SearchPaths: []string{dir}}, stubCompiler{}, nil).WithPersistentCache(c, "dev")
	unit2 := reg2.NewUnit("")
	info, err := unit2.Resolve("base")
	if err != nil {
		t.Fatalf("warm-started resolve: %v", err)
	}
	if info.Metadata.Name != "base" {
		t.Fatalf("expected warm-started metadata for base, got %+v", info.Metadata)
	}
}
