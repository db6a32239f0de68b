package glyphrt

import (
	"testing"

	"github.com/glyphlang/glyphc/internal/capability"
)

func TestBuiltinNamespace_IntConversions(t *testing.T) {
	b := NewBuiltinNamespace(nil, "")
	got, err := b.Int("42")
	if err != nil || got != int64(42) {
		t.Fatalf("expected 42, got %v err %v", got, err)
	}
	if _, err := b.Int("not a number"); err == nil {
		t.Fatal("expected conversion error")
	}
}

func TestBuiltinNamespace_Len(t *testing.T) {
	b := NewBuiltinNamespace(nil, "")
	got, err := b.Len([]Value{1, 2, 3})
	if err != nil || got != int64(3) {
		t.Fatalf("expected 3, got %v err %v", got, err)
	}
}

func TestBuiltinNamespace_PrintRequiresCapability(t *testing.T) {
	mgr := capability.NewManager(nil)
	root := mgr.CreateRoot(capability.KindMain, nil)
	pop := mgr.Activate("main", root)
	defer pop()

	b := NewBuiltinNamespace(mgr, "main")
	if _, err := b.Print("hello"); err == nil {
		t.Fatal("expected missing-capability error without io.write grant")
	}
}

func TestBuiltinNamespace_PrintSucceedsWithCapability(t *testing.T) {
	mgr := capability.NewManager(nil)
	tok := capability.NewToken("io.write", []string{"stdout"}, nil)
	root := mgr.CreateRoot(capability.KindMain, []*capability.Token{tok})
	pop := mgr.Activate("main", root)
	defer pop()

	b := NewBuiltinNamespace(mgr, "main")
	if _, err := b.Print("hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSafeAttrRegistry_PublicAttrAllowed(t *testing.T) {
	reg := NewSafeAttrRegistry()
	reg.RegisterClass(&ClassMetadata{
		Name:        "Point",
		PublicAttrs: map[string]bool{"x": true},
	})
	got, err := reg.SafeAttr("Point", "x", func() Value { return int64(5) })
	if err != nil || got != int64(5) {
		t.Fatalf("expected public attr access to succeed, got %v err %v", got, err)
	}
}

func TestSafeAttrRegistry_PrivateAttrForbidden(t *testing.T) {
	reg := NewSafeAttrRegistry()
	reg.RegisterClass(&ClassMetadata{
		Name:        "Point",
		PublicAttrs: map[string]bool{"x": true},
	})
	_, err := reg.SafeAttr("Point", "_internal", func() Value { return int64(5) })
	if err == nil {
		t.Fatal("expected forbidden-attribute error")
	}
}

func TestSafeAttrRegistry_HostSafeList(t *testing.T) {
	reg := NewSafeAttrRegistry()
	reg.RegisterHostSafeList("bytes.Buffer", []string{"Len", "String"})
	if _, err := reg.SafeAttr("bytes.Buffer", "Len", func() Value { return int64(0) }); err != nil {
		t.Fatalf("expected allowed host member, got %v", err)
	}
	if _, err := reg.SafeAttr("bytes.Buffer", "Truncate", func() Value { return nil }); err == nil {
		t.Fatal("expected disallowed host member to be forbidden")
	}
}

func TestSafeCall_DeniesUnauthorizedCallee(t *testing.T) {
	reg := NewSafeAttrRegistry()
	_, err := reg.SafeCall(false, "__import__", func() (Value, error) { return nil, nil })
	if err == nil {
		t.Fatal("expected forbidden-call error")
	}
}

func TestSafeCall_InvokesWhenAuthorized(t *testing.T) {
	reg := NewSafeAttrRegistry()
	got, err := reg.SafeCall(true, "greet", func() (Value, error) { return "hi", nil })
	if err != nil || got != "hi" {
		t.Fatalf("expected successful call, got %v err %v", got, err)
	}
}
