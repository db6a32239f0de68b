// Package asyncexec implements the async executor and callback bridge
// (spec.md §5): a fixed-size worker pool for `async_execute`, a
// future-like handle callers await, and the callback-wrapper safety
// invariant for host event-loop threads invoking SL-defined callbacks.
//
// Grounded on nothing in the teacher directly — it is a synchronous
// tree-walking interpreter/REPL with no async execution model — so this
// package is built in the teacher's idiom (the same Report-based error
// style, the same capability-context-propagation pattern as
// internal/effects/internal/capability) while the concurrency
// primitives themselves use golang.org/x/sync/semaphore for bounded
// worker fan-out, the same library the rest of the pack reaches for.
package asyncexec

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/glyphlang/glyphc/internal/capability"
)

// Task is one unit of async work: compile-and-run an SL snippet (or any
// Go closure standing in for that), per spec.md §4.9's
// `async_execute(source_or_ast, capabilities, timeout)`.
type Task func(ctx context.Context) (any, error)

// Future is the handle returned by Submit. Only Submit's caller awaits;
// the compiler itself never suspends (spec.md §5).
type Future struct {
	done   chan struct{}
	result any
	err    error
}

// Await blocks until the task completes, the deadline in ctx expires, or
// the future's own timeout (passed to Submit) expires first.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Executor runs Tasks on a fixed-size worker pool.
type Executor struct {
	sem  *semaphore.Weighted
	caps *capability.Manager
	wg   sync.WaitGroup
}

// NewExecutor constructs an Executor with the given worker count.
func NewExecutor(workers int, caps *capability.Manager) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{sem: semaphore.NewWeighted(int64(workers)), caps: caps}
}

// Submit runs task on the next free worker, capturing capturedContext
// and reinstalling it on the worker before the task runs (spec.md
// §4.9: "captures the current capability context and reinstalls it on
// the worker"). If timeout elapses first, Submit's Future resolves with
// a Timeout error; the worker's goroutine is NOT interrupted — it runs
// to its next natural checkpoint and its result is discarded (spec.md
// §5: "Cancellation is cooperative only; there is no preemption").
func (e *Executor) Submit(ctx context.Context, task Task, timeout time.Duration, capturedContext *capability.Context, activationKey string) *Future {
	future := &Future{done: make(chan struct{})}

	if err := e.sem.Acquire(ctx, 1); err != nil {
		future.err = err
		close(future.done)
		return future
	}

	workerDone := make(chan struct{})
	var workerResult any
	var workerErr error

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer e.sem.Release(1)
		defer close(workerDone)

		var pop func()
		if e.caps != nil && capturedContext != nil {
			pop = e.caps.Activate(activationKey, capturedContext)
			defer pop()
		}
		workerResult, workerErr = task(ctx)
	}()

	go func() {
		if timeout > 0 {
			timer := time.NewTimer(timeout)
			defer timer.Stop()
			select {
			case <-workerDone:
				future.result, future.err = workerResult, workerErr
			case <-timer.C:
				future.err = ErrTimeout()
			}
		} else {
			<-workerDone
			future.result, future.err = workerResult, workerErr
		}
		close(future.done)
	}()

	return future
}

// Wait blocks until every submitted task's goroutine has returned —
// abandoned (timed-out) tasks still run to completion in the
// background, so tests can use Wait to avoid leaking goroutines.
func (e *Executor) Wait() {
	e.wg.Wait()
}
