package glyphrt

import (
	"context"
	"time"

	"github.com/glyphlang/glyphc/internal/asyncexec"
	"github.com/glyphlang/glyphc/internal/capability"
)

// AsyncExecute implements the emitted form of `async_execute(fn,
// capabilities, timeout)` (spec.md §4.9, §5). fn is the already-emitted
// closure standing in for the compiled SL snippet; timeoutSeconds <= 0
// means no timeout. The worker reinstalls the submitting thread's current
// capability context (spec.md §5: "captures the current capability
// context and reinstalls it on the worker"); the capabilities argument
// itself is validated against that context by the builtins fn calls into,
// not narrowed here.
func (rt *Runtime) AsyncExecute(fn func() Value, timeoutSeconds float64) *asyncexec.Future {
	task := func(ctx context.Context) (result Value, err error) {
		defer func() {
			if r := recover(); r != nil {
				if exc, ok := r.(*Exception); ok {
					err = exc
					return
				}
				panic(r)
			}
		}()
		return fn(), nil
	}

	var timeout time.Duration
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds * float64(time.Second))
	}

	var captured *capability.Context
	if rt.Caps != nil {
		captured = rt.Caps.Current(rt.ActivationKey)
	}
	return rt.Executor.Submit(context.Background(), task, timeout, captured, rt.ActivationKey)
}

// AwaitFuture implements async_execute's suspension point: it blocks
// until the worker's result (or a Timeout) is ready, panicking as an
// Exception on failure so try/except catches an awaited error like any
// other runtime exception (spec.md §5: "Only async_execute suspends; it
// returns a future-like handle that the caller awaits").
func (rt *Runtime) AwaitFuture(f *asyncexec.Future) Value {
	result, err := f.Await(context.Background())
	if err != nil {
		panic(NewException(err.Error()))
	}
	return result
}

// WrapCallback implements `wrap_callback(fn_name, capabilities)` (spec.md
// §4.9): fnName is resolved against this unit's session namespace on
// every invocation rather than captured directly, so hot reload replaces
// the target immediately (spec.md §9's late-bound-callback design note).
func (rt *Runtime) WrapCallback(fnName string) asyncexec.Callback {
	var captured *capability.Context
	if rt.Caps != nil {
		captured = rt.Caps.Current(rt.ActivationKey)
	}
	return asyncexec.WrapCallback(rt.Session, fnName, rt.Caps, rt.ActivationKey, captured)
}
