package capability

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	glyphcerrors "github.com/glyphlang/glyphc/internal/errors"
)

// ExecutionKind identifies the kind of execution a Context was created for,
// per spec.md §3: main program execution, a scheduled task, a callback
// invocation, or a REPL evaluation.
type ExecutionKind string

const (
	KindMain     ExecutionKind = "main"
	KindTask     ExecutionKind = "task"
	KindCallback ExecutionKind = "callback"
	KindREPL     ExecutionKind = "repl"
)

// Context is one node of the append-only capability context tree. A Context
// never gains tokens after creation (spec.md invariant); it is created with
// its full token set and is otherwise read-only.
type Context struct {
	ID       string
	ParentID string // empty = root
	ThreadID string
	Kind     ExecutionKind
	Tokens   []*Token
	Created  time.Time
}

// HasCapability reports whether any token in this context authorizes
// capabilityType on resource, honoring the optional constraint map.
func (c *Context) HasCapability(capabilityType, resource string, constraints map[string]string) bool {
	for _, t := range c.Tokens {
		if t.Matches(capabilityType, resource, constraints) {
			return true
		}
	}
	return false
}

// findToken returns the first token authorizing capabilityType on resource,
// or nil.
func (c *Context) findToken(capabilityType, resource string, constraints map[string]string) *Token {
	for _, t := range c.Tokens {
		if t.Matches(capabilityType, resource, constraints) {
			return t
		}
	}
	return nil
}

// Manager owns the capability context tree and the currently-active
// context per goroutine-equivalent execution stack. It generalizes the
// teacher's EffContext (a single flat capability map) into a tree of
// Contexts plus scoped activation, grounded on the Kind+Pattern keyed
// gatekeeper idiom from the capability orchestrator reference
// (other_examples' reglet capability_orchestrator.go).
type Manager struct {
	mu       sync.RWMutex
	contexts map[string]*Context
	active   map[string][]*Context // thread/goroutine key -> activation stack
	log      *zap.Logger
}

// NewManager constructs an empty Manager. A nil logger defaults to a no-op
// logger so capability checks never panic or print when the host hasn't
// wired structured logging (see DESIGN.md's Logging section).
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		contexts: make(map[string]*Context),
		active:   make(map[string][]*Context),
		log:      log,
	}
}

// CreateRoot creates the root context for a process, normally with
// KindMain. There is exactly one root per Manager lifetime in practice,
// but nothing here enforces that — callers decide.
func (m *Manager) CreateRoot(kind ExecutionKind, tokens []*Token) *Context {
	return m.createContext("", kind, tokens)
}

// CreateChild creates a context whose ParentID is parent.ID. The child's
// token set is a copy of the tokens passed in (typically a subset of or
// equal to the parent's, enforced by convention at call sites — see
// SPEC_FULL.md's capability propagation rules for task/callback
// scheduling), never a live reference to the parent's slice.
func (m *Manager) CreateChild(parent *Context, kind ExecutionKind, tokens []*Token) *Context {
	return m.createContext(parent.ID, kind, tokens)
}

func (m *Manager) createContext(parentID string, kind ExecutionKind, tokens []*Token) *Context {
	ctx := &Context{
		ID:       uuid.NewString(),
		ParentID: parentID,
		ThreadID: uuid.NewString(),
		Kind:     kind,
		Tokens:   append([]*Token(nil), tokens...),
		Created:  time.Now(),
	}
	m.mu.Lock()
	m.contexts[ctx.ID] = ctx
	m.mu.Unlock()
	m.log.Debug("capability context created",
		zap.String("context_id", ctx.ID),
		zap.String("parent_id", parentID),
		zap.String("kind", string(kind)),
		zap.Int("token_count", len(ctx.Tokens)),
	)
	return ctx
}

// Get looks up a context by ID.
func (m *Manager) Get(id string) (*Context, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contexts[id]
	return c, ok
}

// activationKey identifies the logical execution stack an activation
// belongs to. Using a caller-supplied key rather than goroutine IDs keeps
// this explicit and matches the teacher's preference for passing state
// rather than relying on goroutine-local storage (Go has none).
type activationKey = string

// Release pops an activation pushed by Activate. Callers use the returned
// closure from Activate rather than calling Release directly; it is
// exported for the rare case of manual stack management in tests.
func (m *Manager) Release(key activationKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.active[key]
	if len(stack) == 0 {
		return
	}
	m.active[key] = stack[:len(stack)-1]
}

// Activate pushes ctx onto key's activation stack and returns a function
// that pops it. Scoped usage:
//
//	done := mgr.Activate("goroutine-1", ctx)
//	defer done()
func (m *Manager) Activate(key activationKey, ctx *Context) func() {
	m.mu.Lock()
	m.active[key] = append(m.active[key], ctx)
	m.mu.Unlock()
	return func() { m.Release(key) }
}

// Current returns the innermost active context for key, or nil if none is
// active.
func (m *Manager) Current(key activationKey) *Context {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stack := m.active[key]
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

// HasCapability checks the currently active context for key.
func (m *Manager) HasCapability(key activationKey, capabilityType, resource string, constraints map[string]string) bool {
	ctx := m.Current(key)
	if ctx == nil {
		return false
	}
	return ctx.HasCapability(capabilityType, resource, constraints)
}

// Use finds a token in the active context authorizing capabilityType on
// resource and atomically charges one use against it. Returns a
// glyphc.errors.ReportError (CAP001/CAP002/CAP003) on rejection.
func (m *Manager) Use(key activationKey, capabilityType, resource string, constraints map[string]string) error {
	ctx := m.Current(key)
	if ctx == nil {
		return glyphcerrors.WrapReport(NewMissingError(capabilityType, resource))
	}
	tok := ctx.findToken(capabilityType, resource, constraints)
	if tok == nil {
		m.log.Warn("capability denied",
			zap.String("context_id", ctx.ID),
			zap.String("capability_type", capabilityType),
			zap.String("resource", resource),
		)
		return glyphcerrors.WrapReport(NewMissingError(capabilityType, resource))
	}
	if err := tok.use(time.Now()); err != nil {
		m.log.Warn("capability use rejected",
			zap.String("context_id", ctx.ID),
			zap.String("capability_type", capabilityType),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// PropagateToTask captures the context currently active for fromKey and
// installs it (unchanged — tasks inherit, never widen, the scheduling
// context's tokens) as the active context for toKey. This is the hook
// internal/asyncexec uses when scheduling a task or invoking a callback
// across an execution boundary (spec.md §5).
func (m *Manager) PropagateToTask(fromKey, toKey activationKey, kind ExecutionKind) (*Context, func()) {
	parent := m.Current(fromKey)
	var tokens []*Token
	var parentID string
	if parent != nil {
		tokens = parent.Tokens
		parentID = parent.ID
	}
	child := m.createContext(parentID, kind, tokens)
	done := m.Activate(toKey, child)
	return child, done
}
