package cache

import "testing"

func TestCache_PutAndGetRoundTrip(t *testing.T) {
	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening cache: %v", err)
	}
	defer c.Close()

	key := HashKey("module source text", nil, "dev")
	rec := &Record{
		Name:         "example",
		Kind:         "sl_source",
		SourcePath:   "/tmp/example.gly",
		Dependencies: []string{"base"},
	}
	if err := c.Put(key, rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := c.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Name != rec.Name || got.SourcePath != rec.SourcePath {
		t.Fatalf("round-tripped metadata mismatch: %+v", got)
	}
	if len(got.Dependencies) != 1 || got.Dependencies[0] != "base" {
		t.Fatalf("expected dependencies to round-trip, got %v", got.Dependencies)
	}
}

func TestCache_MissReturnsFalse(t *testing.T) {
	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening cache: %v", err)
	}
	defer c.Close()

	_, ok, err := c.Get("nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected cache miss")
	}
}

func TestHashKey_ChangesWithSourceText(t *testing.T) {
	a := HashKey("source a", nil, "dev")
	b := HashKey("source b", nil, "dev")
	if a == b {
		t.Fatal("expected different source text to produce different keys")
	}
}
