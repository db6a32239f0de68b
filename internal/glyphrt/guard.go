package glyphrt

import "sync"

// ClassMetadata describes one known SL class's public surface, for the
// safe-attribute registry (spec.md §4.9: "for known SL classes, only
// attributes marked public in metadata are returned").
type ClassMetadata struct {
	Name          string
	PublicAttrs   map[string]bool
	PublicMethods map[string]bool
}

// SafeAttrRegistry is the runtime safe-attribute registry consulted by
// safe_attr and safe_call (spec.md §4.9). It holds both SL class
// metadata and a fixed allowlist of host-class members, since the two
// enforce the same invariant ("don't leak internals") over two
// different kinds of object.
//
// Grounded on the capability-token pattern-table idiom shared with
// internal/security's DefaultPolicy: a name-keyed allow set consulted
// before an operation proceeds, generalized here to per-class attribute
// sets instead of a flat denylist.
type SafeAttrRegistry struct {
	mu           sync.RWMutex
	classes      map[string]*ClassMetadata
	hostSafeList map[string]map[string]bool // host type name -> allowed member set
}

// NewSafeAttrRegistry constructs an empty registry.
func NewSafeAttrRegistry() *SafeAttrRegistry {
	return &SafeAttrRegistry{
		classes:      make(map[string]*ClassMetadata),
		hostSafeList: make(map[string]map[string]bool),
	}
}

// RegisterClass records an SL class's public surface.
func (r *SafeAttrRegistry) RegisterClass(meta *ClassMetadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[meta.Name] = meta
}

// RegisterHostSafeList records which members of a host type (identified
// by name, since reflection over arbitrary host types is out of scope
// here) may be accessed from SL code.
func (r *SafeAttrRegistry) RegisterHostSafeList(hostType string, members []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := make(map[string]bool, len(members))
	for _, m := range members {
		set[m] = true
	}
	r.hostSafeList[hostType] = set
}

// SafeAttr is the `safe_attr(obj, name) -> value` runtime guard (spec.md
// §4.9). className identifies obj's dynamic class (SL class name, or a
// registered host type name); get performs the actual field read once
// access is authorized.
func (r *SafeAttrRegistry) SafeAttr(className, attrName string, get func() Value) (Value, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if meta, ok := r.classes[className]; ok {
		if meta.PublicAttrs[attrName] || meta.PublicMethods[attrName] {
			return get(), nil
		}
		return nil, ErrForbiddenAttribute(className, attrName)
	}
	if safe, ok := r.hostSafeList[className]; ok {
		if safe[attrName] {
			return get(), nil
		}
		return nil, ErrForbiddenAttribute(className, attrName)
	}
	return nil, ErrForbiddenAttribute(className, attrName)
}

// SafeCall is the `safe_call(fn, args)` guard used when a call's callee
// expression is dynamic rather than a statically-known identifier or
// qualified name (spec.md §4.9, §4.7's "complex callee" case). callable
// is either a *CallableMeta describing an SL function/method, or a host
// builtin name; invoke performs the actual call once authorized.
func (r *SafeAttrRegistry) SafeCall(allowed bool, calleeName string, invoke func() (Value, error)) (Value, error) {
	if !allowed {
		return nil, ErrForbiddenCall(calleeName)
	}
	return invoke()
}

// CallableMeta marks a value as an allowed SL function or method,
// carried alongside the value itself so SafeCall can check it without
// the allowlist from which it originated.
type CallableMeta struct {
	Name      string
	IsMethod  bool
	OwnerType string
}
