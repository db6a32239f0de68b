package asyncexec

import (
	"sync"

	"github.com/glyphlang/glyphc/internal/capability"
)

// Session owns a namespace of callable SL functions that callback
// wrappers resolve by name on every invocation (spec.md §4.9:
// "wrap_callback... resolves fn_name in the session's namespace").
// Typically one Session per REPL session or per running program.
type Session struct {
	mu        sync.Mutex
	closed    bool
	namespace map[string]func(args ...any) (any, error)
}

// NewSession constructs an open, empty Session.
func NewSession() *Session {
	return &Session{namespace: make(map[string]func(args ...any) (any, error))}
}

// Define binds name to fn in this session's namespace. Safe to call
// repeatedly for the same name — this is how hot reload replaces a
// callback's target without invalidating wrappers already handed to the
// host (spec.md §4.9: "The wrapper re-resolves fn_name on every
// invocation (late binding) so that hot reload correctly replaces the
// target").
func (s *Session) Define(name string, fn func(args ...any) (any, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.namespace[name] = fn
}

// Close marks the session closed. Any callback wrapper invoked
// afterward returns SessionClosed without calling anything.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Callback is the host-callable handle WrapCallback returns.
type Callback func(args ...any) (any, error)

// WrapCallback implements spec.md §4.9's `wrap_callback(session, fn_name,
// capabilities)` and §5's callback safety invariant verbatim: on
// invocation it (1) activates capturedContext, (2) acquires the session
// lock, (3) resolves fnName, (4) calls with arguments, (5) releases in
// reverse order. If the session is closed between capture and
// invocation, it returns SessionClosed without calling anything.
func WrapCallback(session *Session, fnName string, caps *capability.Manager, activationKey string, capturedContext *capability.Context) Callback {
	return func(args ...any) (any, error) {
		if caps != nil && capturedContext != nil {
			pop := caps.Activate(activationKey, capturedContext)
			defer pop()
		}

		session.mu.Lock()
		defer session.mu.Unlock()

		if session.closed {
			return nil, ErrSessionClosed(fnName)
		}

		fn, ok := session.namespace[fnName]
		if !ok {
			return nil, ErrCallbackTargetMissing(fnName)
		}
		return fn(args...)
	}
}
