package glyphrt

import (
	"fmt"
	"reflect"

	"github.com/glyphlang/glyphc/internal/asyncexec"
	"github.com/glyphlang/glyphc/internal/capability"
)

// Runtime bundles the builtin namespace and safe-attribute registry that
// every emitted function receives as its first parameter (spec.md §9:
// these must never be process-global), so a single value threaded through
// the call graph gives emitted code access to both (spec.md §4.9).
// Executor, Session, Caps, and ActivationKey back the three async
// builtins (async_execute, await, wrap_callback); they are nil in units
// that never reference async_execute/wrap_callback (importsAsync in
// internal/emitter decides whether the import is even emitted).
type Runtime struct {
	*BuiltinNamespace
	*SafeAttrRegistry
	Executor      *asyncexec.Executor
	Session       *asyncexec.Session
	Caps          *capability.Manager
	ActivationKey string
}

// NewRuntime constructs a Runtime from its two constituent registries.
func NewRuntime(builtins *BuiltinNamespace, attrs *SafeAttrRegistry) *Runtime {
	return &Runtime{BuiltinNamespace: builtins, SafeAttrRegistry: attrs}
}

// NewAsyncRuntime constructs a Runtime that also carries the async
// executor, callback session, and capability manager a unit using
// async_execute/wrap_callback needs (spec.md §5).
func NewAsyncRuntime(builtins *BuiltinNamespace, attrs *SafeAttrRegistry, executor *asyncexec.Executor, session *asyncexec.Session, caps *capability.Manager, activationKey string) *Runtime {
	return &Runtime{
		BuiltinNamespace: builtins,
		SafeAttrRegistry: attrs,
		Executor:         executor,
		Session:          session,
		Caps:             caps,
		ActivationKey:    activationKey,
	}
}

// MustSafeAttr implements the emitted form of `safe_attr(obj, name)`
// (spec.md §4.9) for a RecordAccess that the emitter couldn't statically
// resolve to a module member. Anonymous records (plain `map[string]any`
// values built from an SL record literal) read directly — the guard
// exists to protect registered SL classes and host objects with a
// declared privacy boundary, not a user's own unrestricted structural
// data. Any other value is checked against the safe-attribute registry
// keyed by its dynamic TypeName, and panics with a runtime exception on
// denial so the call site doesn't need its own error return.
func (rt *Runtime) MustSafeAttr(name string, obj Value) Value {
	if rec, ok := obj.(map[string]any); ok {
		return rec[name]
	}
	v, err := rt.SafeAttrRegistry.SafeAttr(TypeName(obj), name, func() Value {
		return reflectAttr(obj, name)
	})
	if err != nil {
		panic(NewException(err.Error()))
	}
	return v
}

// MustSafeCallAttr implements a guarded method call `obj.member(args...)`
// where obj isn't a known module alias (spec.md §4.7 step 2's "else"
// branch): it resolves member the same way MustSafeAttr does, then invokes
// the result as a callable via MustSafeCall.
func (rt *Runtime) MustSafeCallAttr(name string, obj Value, args []Value) Value {
	method := rt.MustSafeAttr(name, obj)
	return rt.MustSafeCall(method, args)
}

// MustSafeCall implements `safe_call(fn, args)` (spec.md §4.9, §4.7 step
// 3). fn's emitted Go functions vary in arity (one `any` parameter per SL
// parameter), so dispatch goes through reflect rather than a single fixed
// function type — the one place in this package reflection earns its
// keep, since a dynamically-typed callee of statically unknown arity has
// no other expression in Go's type system.
func (rt *Runtime) MustSafeCall(fn Value, args []Value) Value {
	rv := reflect.ValueOf(fn)
	callable := rv.Kind() == reflect.Func
	name := fmt.Sprintf("%v", fn)

	result, err := rt.SafeAttrRegistry.SafeCall(callable, name, func() (Value, error) {
		ft := rv.Type()
		in := make([]reflect.Value, ft.NumIn())
		for i := range in {
			if i < len(args) && args[i] != nil {
				in[i] = reflect.ValueOf(args[i])
			} else {
				in[i] = reflect.Zero(ft.In(i))
			}
		}
		out := rv.Call(in)
		if len(out) == 0 {
			return nil, nil
		}
		return out[0].Interface(), nil
	})
	if err != nil {
		panic(NewException(err.Error()))
	}
	return result
}

// reflectAttr is the fallback field/zero-value reader used for values that
// aren't anonymous records. The runtime's dynamic value model is plain Go
// values (map[string]any, []any, primitives) rather than reflect-visible
// structs, so there is nothing further to read once the registry
// authorizes access; registered classes back their public attributes with
// the same map representation in practice, accessed via their own
// generated accessor closures rather than this generic path.
func reflectAttr(obj Value, name string) Value {
	if rec, ok := obj.(map[string]any); ok {
		return rec[name]
	}
	return nil
}
