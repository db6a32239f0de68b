package glyphrt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/glyphlang/glyphc/internal/capability"
	glyphcerrors "github.com/glyphlang/glyphc/internal/errors"
)

// BuiltinNamespace is the `builtin.<name>(...)` target the emitter
// routes calls through (spec.md §4.9): each method is a thin wrapper
// that consults the capability manager before performing its action,
// then delegates to a plain Go implementation.
//
// Grounded on the teacher's eval.Builtins registry categories
// (arithmetic, comparison, conversion, string, boolean, IO, JSON): this
// type keeps the same category shape but as named Go methods instead of
// a name-keyed map, since emitted call sites are concrete identifiers
// chosen at codegen time, not resolved by string lookup at runtime.
type BuiltinNamespace struct {
	caps *capability.Manager
	key  string // activation key consulted against caps before IO/effectful builtins
}

// NewBuiltinNamespace constructs the namespace emitted code imports as
// `glyphrt.Builtin`. A nil manager disables capability checks (useful
// in tests and in the REPL's bare-evaluation mode).
func NewBuiltinNamespace(caps *capability.Manager, activationKey string) *BuiltinNamespace {
	return &BuiltinNamespace{caps: caps, key: activationKey}
}

func (b *BuiltinNamespace) requireCapability(capType, resource string) error {
	if b.caps == nil {
		return nil
	}
	if !b.caps.HasCapability(b.key, capType, resource, nil) {
		return glyphcerrors.WrapReport(capability.NewMissingError(capType, resource))
	}
	return nil
}

// Int converts v to an int64, per the source language's `int(...)` conversion builtin.
func (b *BuiltinNamespace) Int(v Value) (Value, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case float64:
		return int64(x), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("int(%q): %w", x, err)
		}
		return n, nil
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	default:
		return nil, fmt.Errorf("int(): cannot convert %s", TypeName(v))
	}
}

// Float converts v to a float64.
func (b *BuiltinNamespace) Float(v Value) (Value, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, fmt.Errorf("float(%q): %w", x, err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("float(): cannot convert %s", TypeName(v))
	}
}

// Str converts v to its string representation.
func (b *BuiltinNamespace) Str(v Value) (Value, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	case nil:
		return "", nil
	default:
		return fmt.Sprintf("%v", x), nil
	}
}

// Len returns the length of a list, record, or string.
func (b *BuiltinNamespace) Len(v Value) (Value, error) {
	switch x := v.(type) {
	case string:
		return int64(len(x)), nil
	case []Value:
		return int64(len(x)), nil
	case map[string]Value:
		return int64(len(x)), nil
	default:
		return nil, fmt.Errorf("len(): %s has no length", TypeName(v))
	}
}

// Type returns the source-language type name of v.
func (b *BuiltinNamespace) Type(v Value) (Value, error) {
	return TypeName(v), nil
}

// Upper returns s upper-cased.
func (b *BuiltinNamespace) Upper(s Value) (Value, error) {
	str, ok := s.(string)
	if !ok {
		return nil, fmt.Errorf("upper(): expected string, got %s", TypeName(s))
	}
	return strings.ToUpper(str), nil
}

// Lower returns s lower-cased.
func (b *BuiltinNamespace) Lower(s Value) (Value, error) {
	str, ok := s.(string)
	if !ok {
		return nil, fmt.Errorf("lower(): expected string, got %s", TypeName(s))
	}
	return strings.ToLower(str), nil
}

// Concat joins a and b, both strings.
func (b *BuiltinNamespace) Concat(a, bb Value) (Value, error) {
	as, aok := a.(string)
	bs, bok := bb.(string)
	if !aok || !bok {
		return nil, fmt.Errorf("concat(): both arguments must be strings")
	}
	return as + bs, nil
}

// Print writes args to standard output. Gated on the "io.write"
// capability for the "stdout" resource, since output is an effect the
// source language's capability system must authorize.
func (b *BuiltinNamespace) Print(args ...Value) (Value, error) {
	if err := b.requireCapability("io.write", "stdout"); err != nil {
		return nil, err
	}
	parts := make([]string, len(args))
	for i, a := range args {
		s, err := b.Str(a)
		if err != nil {
			return nil, err
		}
		parts[i] = s.(string)
	}
	fmt.Println(strings.Join(parts, " "))
	return nil, nil
}

// Range returns consecutive int64 values in [0, n).
func (b *BuiltinNamespace) Range(n Value) (Value, error) {
	count, ok := n.(int64)
	if !ok {
		return nil, fmt.Errorf("range(): expected int, got %s", TypeName(n))
	}
	out := make([]Value, count)
	for i := int64(0); i < count; i++ {
		out[i] = i
	}
	return out, nil
}

// Abs returns the absolute value of a numeric v.
func (b *BuiltinNamespace) Abs(v Value) (Value, error) {
	switch x := v.(type) {
	case int64:
		if x < 0 {
			return -x, nil
		}
		return x, nil
	case float64:
		if x < 0 {
			return -x, nil
		}
		return x, nil
	default:
		return nil, fmt.Errorf("abs(): expected a number, got %s", TypeName(v))
	}
}
