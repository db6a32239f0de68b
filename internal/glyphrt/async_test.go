package glyphrt

import (
	"testing"

	"github.com/glyphlang/glyphc/internal/asyncexec"
	"github.com/glyphlang/glyphc/internal/capability"
)

func TestAsyncExecute_RunsTaskAndAwaitFutureReturnsResult(t *testing.T) {
	executor := asyncexec.NewExecutor(1, nil)
	defer executor.Wait()
	rt := NewAsyncRuntime(NewBuiltinNamespace(nil, ""), NewSafeAttrRegistry(), executor, asyncexec.NewSession(), nil, "")

	future := rt.AsyncExecute(func() Value { return int64(9) }, 0)
	got := rt.AwaitFuture(future)
	if got != int64(9) {
		t.Fatalf("expected 9, got %v", got)
	}
}

func TestAsyncExecute_RecoveredExceptionSurfacesAsAwaitError(t *testing.T) {
	executor := asyncexec.NewExecutor(1, nil)
	defer executor.Wait()
	rt := NewAsyncRuntime(NewBuiltinNamespace(nil, ""), NewSafeAttrRegistry(), executor, asyncexec.NewSession(), nil, "")

	future := rt.AsyncExecute(func() Value {
		panic(NewException("boom"))
	}, 0)

	defer func() {
		if recover() == nil {
			t.Fatal("expected AwaitFuture to re-panic the exception")
		}
	}()
	rt.AwaitFuture(future)
}

func TestAsyncExecute_TimeoutAbandonsTask(t *testing.T) {
	executor := asyncexec.NewExecutor(1, nil)
	defer executor.Wait()
	rt := NewAsyncRuntime(NewBuiltinNamespace(nil, ""), NewSafeAttrRegistry(), executor, asyncexec.NewSession(), nil, "")

	released := make(chan struct{})
	future := rt.AsyncExecute(func() Value {
		<-released
		return int64(1)
	}, 0.01)

	defer func() {
		if recover() == nil {
			t.Fatal("expected a timeout panic")
		}
		close(released)
	}()
	rt.AwaitFuture(future)
}

func TestAsyncExecute_CapturesAndReinstallsCapabilityContext(t *testing.T) {
	mgr := capability.NewManager(nil)
	tok := capability.NewToken("io.write", []string{"stdout"}, nil)
	root := mgr.CreateRoot(capability.KindMain, []*capability.Token{tok})
	pop := mgr.Activate("main", root)
	defer pop()

	executor := asyncexec.NewExecutor(1, mgr)
	defer executor.Wait()
	rt := NewAsyncRuntime(NewBuiltinNamespace(mgr, "main"), NewSafeAttrRegistry(), executor, asyncexec.NewSession(), mgr, "main")

	var sawCapability bool
	future := rt.AsyncExecute(func() Value {
		sawCapability = mgr.HasCapability("main", "io.write", "stdout", nil)
		return nil
	}, 0)
	rt.AwaitFuture(future)

	if !sawCapability {
		t.Fatal("expected the worker to see the captured capability context")
	}
}

func TestWrapCallback_ResolvesAndInvokesSessionTarget(t *testing.T) {
	session := asyncexec.NewSession()
	session.Define("onTick", func(args ...any) (any, error) { return "ticked", nil })

	rt := NewAsyncRuntime(NewBuiltinNamespace(nil, ""), NewSafeAttrRegistry(), nil, session, nil, "")
	cb := rt.WrapCallback("onTick")

	got, err := cb()
	if err != nil || got != "ticked" {
		t.Fatalf("expected ticked, got %v err %v", got, err)
	}
}

func TestWrapCallback_LateBindsOnEveryInvocation(t *testing.T) {
	session := asyncexec.NewSession()
	session.Define("onTick", func(args ...any) (any, error) { return "v1", nil })

	rt := NewAsyncRuntime(NewBuiltinNamespace(nil, ""), NewSafeAttrRegistry(), nil, session, nil, "")
	cb := rt.WrapCallback("onTick")

	first, _ := cb()
	session.Define("onTick", func(args ...any) (any, error) { return "v2", nil })
	second, _ := cb()

	if first != "v1" || second != "v2" {
		t.Fatalf("expected v1 then v2, got %v then %v", first, second)
	}
}
