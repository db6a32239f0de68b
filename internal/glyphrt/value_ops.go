package glyphrt

import "fmt"

// Must unwraps a (Value, error) result, panicking as an Exception when err
// is non-nil. Every BuiltinNamespace method returns (Value, error) so a
// capability denial or bad conversion can be reported without a panic
// inside the namespace itself; Must is the call-site adapter that lets
// the emitter use a builtin call inside a larger Go expression, where a
// two-value call can't otherwise appear.
func Must(v Value, err error) Value {
	if err != nil {
		panic(NewException(err.Error()))
	}
	return v
}

// Truthy implements the emitted language's boolean-coercion rule for
// if/while/ternary conditions: nil and zero-valued primitives are
// falsy, empty strings/collections are falsy, everything else is truthy.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case int64:
		return t != 0
	case int:
		return t != 0
	case float64:
		return t != 0
	case string:
		return len(t) > 0
	case []Value:
		return len(t) > 0
	case map[string]Value:
		return len(t) > 0
	default:
		return true
	}
}

// Index implements `container[key]` for the two collection shapes emitted
// record/list literals produce, panicking with an Exception on an
// out-of-range or missing key rather than a bare Go index panic so `try`
// can catch it like any other SL exception.
func Index(container, key Value) Value {
	switch c := container.(type) {
	case []Value:
		i, ok := asInt(key)
		if !ok || i < 0 || i >= len(c) {
			panic(NewException(fmt.Sprintf("index %v out of range", key)))
		}
		return c[i]
	case map[string]Value:
		k, ok := key.(string)
		if !ok {
			panic(NewException(fmt.Sprintf("record key %v is not a string", key)))
		}
		v, ok := c[k]
		if !ok {
			panic(NewException(fmt.Sprintf("no field %q", k)))
		}
		return v
	default:
		panic(NewException(fmt.Sprintf("value of type %s is not indexable", TypeName(container))))
	}
}

// Iterate implements `for x in iterable`: lists iterate their elements,
// records iterate their values, strings iterate one-character substrings.
func Iterate(v Value) []Value {
	switch t := v.(type) {
	case []Value:
		return t
	case map[string]Value:
		out := make([]Value, 0, len(t))
		for _, item := range t {
			out = append(out, item)
		}
		return out
	case string:
		out := make([]Value, 0, len(t))
		for _, r := range t {
			out = append(out, string(r))
		}
		return out
	default:
		panic(NewException(fmt.Sprintf("value of type %s is not iterable", TypeName(v))))
	}
}

// Spread implements `...expr` inside a call's argument list: expr must
// evaluate to a list, whose elements are expanded positionally.
func Spread(v Value) []Value {
	list, ok := v.([]Value)
	if !ok {
		panic(NewException(fmt.Sprintf("cannot spread value of type %s", TypeName(v))))
	}
	return list
}

// AsString coerces v to a Go string, for call sites (wrap_callback's
// fn_name) that need a concrete string rather than a Value.
func AsString(v Value) string {
	s, ok := v.(string)
	if !ok {
		panic(NewException(fmt.Sprintf("expected a string, got %s", TypeName(v))))
	}
	return s
}

// AsFloat64 coerces v to a Go float64, for call sites (async_execute's
// timeout) that need a concrete numeric type rather than a Value.
func AsFloat64(v Value) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	default:
		panic(NewException(fmt.Sprintf("expected a number, got %s", TypeName(v))))
	}
}

func asInt(v Value) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	default:
		return 0, false
	}
}
