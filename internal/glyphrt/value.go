// Package glyphrt is the small runtime library every generated unit
// imports (spec.md §4.9). It is not part of the compile-time pipeline;
// it is specified here because the emitter's correctness depends on its
// contracts — every call-site rewrite the emitter performs assumes one
// of these helpers exists and behaves as documented.
//
// Grounded on the teacher's internal/eval/builtins.go registry
// (name-keyed `*BuiltinFunc` map populated by per-category `register*`
// functions) for the builtin-wrapper shape, generalized from "dispatch
// by name at interpretation time" to "one concrete exported Go function
// per builtin name, called directly by emitted source text" — this
// repo is a transpiler, not an interpreter, so the builtin dispatch the
// teacher did at eval time happens at Go-compile time here instead.
package glyphrt

import "fmt"

// Value is the dynamic value representation emitted code operates on.
// The source language is dynamically typed (spec.md §4.3), so emitted
// Go code deals in `any` rather than a closed set of concrete Go types,
// mirroring the teacher's own eval.Value interface.
type Value = any

// TypeName returns a source-language-facing name for v's dynamic type,
// used by builtin.type(...) and in error messages.
func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return "unit"
	case int64, int:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case bool:
		return "bool"
	case []Value:
		return "list"
	case map[string]Value:
		return "record"
	default:
		return fmt.Sprintf("%T", v)
	}
}
