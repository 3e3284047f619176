package kraken

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Context is the root of a build: one project tree, rooted at Root, plus
// the run-scoped metadata a script loader or CLI wants to thread through
// task construction (an hclog.Logger, and a small type-keyed metadata
// bag). It is finalized exactly once, sealing the tree against further
// structural changes, and then executed zero or more times.
type Context struct {
	mu sync.RWMutex

	buildDirectory string
	log            hclog.Logger

	root     *Project
	sealed   bool
	metadata map[reflect.Type]any
}

// NewContext constructs a Context rooted at buildDirectory. log may be
// nil, in which case a discarding logger is used.
func NewContext(buildDirectory string, log hclog.Logger) *Context {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	ctx := &Context{
		buildDirectory: buildDirectory,
		log:            log,
		metadata:       make(map[reflect.Type]any),
	}
	ctx.root = newProject(ctx, "", buildDirectory, nil)
	return ctx
}

// Root returns the context's root project.
func (c *Context) Root() *Project { return c.root }

// Log returns the context's logger.
func (c *Context) Log() hclog.Logger { return c.log }

func (c *Context) isFinalized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sealed
}

// PutMetadata stores value keyed by its own concrete type, overwriting
// any value previously stored under that type. Metadata may be written
// any time before Finalize; Execute's task goroutines only ever read it.
func PutMetadata[T any](c *Context, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metadata[reflect.TypeOf(value)] = value
}

// Metadata retrieves the value most recently stored under T by
// PutMetadata, if any.
func Metadata[T any](c *Context) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero T
	v, ok := c.metadata[reflect.TypeFor[T]()]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// currentRegister is the explicit, mutex-guarded register backing
// Current/WithCurrent. It is not goroutine-local storage: a script
// loader that calls WithCurrent must not hand off task construction to
// another goroutine while inside the callback and expect Current to
// follow it there. It exists so that a task's declarative constructor
// (run from inside a build script's own top-level code, not from a
// goroutine spawned by the executor) can reach the Context it is being
// declared into without every call site threading one through.
var currentRegister struct {
	mu  sync.Mutex
	ctx *Context
}

// Current returns the Context most recently installed by an enclosing
// WithCurrent call, or nil if none is active.
func Current() *Context {
	currentRegister.mu.Lock()
	defer currentRegister.mu.Unlock()
	return currentRegister.ctx
}

// WithCurrent installs ctx as Current for the duration of fn, restoring
// whatever was previously installed (including nil) once fn returns,
// even if fn panics.
func WithCurrent(ctx *Context, fn func()) {
	currentRegister.mu.Lock()
	prev := currentRegister.ctx
	currentRegister.ctx = ctx
	currentRegister.mu.Unlock()

	defer func() {
		currentRegister.mu.Lock()
		currentRegister.ctx = prev
		currentRegister.mu.Unlock()
	}()
	fn()
}

// Finalize resolves every relationship left as a selector string,
// invokes Finalizer.Finalize on every task that implements it, and then
// seals the context: no task, child project, or relationship may be
// added afterward, and every Output property becomes immutable once its
// owning task stops executing.
func (c *Context) Finalize() error {
	// The lock is not held while finalizers run: a finalizer that sets a
	// property or adds a relationship checks isFinalized, which would
	// otherwise block on this same lock.
	if c.isFinalized() {
		return &ContextSealedError{Operation: "finalize"}
	}

	for _, t := range c.root.allTasks() {
		if err := resolveDeferredRelationships(c.root, t); err != nil {
			return err
		}
	}
	for _, t := range c.root.allTasks() {
		if f, ok := t.(Finalizer); ok {
			if err := f.Finalize(); err != nil {
				return fmt.Errorf("kraken: finalizing task %q: %w", t.Base().Path(), err)
			}
		}
	}
	c.mu.Lock()
	c.sealed = true
	c.mu.Unlock()
	return nil
}

// resolveDeferredRelationships replaces every relationship on t that was
// declared with a selector string (via DependsOnSelector) with one or
// more resolved relationships pointing at the selector's matching tasks,
// then collapses the result so each distinct target task is represented
// by exactly one relationship.
func resolveDeferredRelationships(root *Project, t Task) error {
	base := t.Base()
	existing := base.Relationships()

	var resolved []Relationship
	for _, r := range existing {
		if r.resolved() {
			resolved = append(resolved, r)
			continue
		}
		targets, err := resolveSelector(root, r.TargetSelector)
		if err != nil {
			return fmt.Errorf("kraken: resolving relationship %q on task %q: %w", r.TargetSelector, base.Path(), err)
		}
		for _, target := range targets {
			resolved = append(resolved, Relationship{Target: target, Strict: r.Strict})
		}
	}
	base.setRelationships(collapseRelationships(resolved))
	return nil
}

// collapseRelationships keeps exactly one relationship per distinct
// target task, preserving first-seen order and taking strict over
// non-strict when the same target was declared both ways (e.g. an
// explicit DependsOn alongside a DependsOnSelector that resolves to the
// same task). Every entry here is already Target-resolved, so an
// explicit Task reference and a resolved selector reference to the same
// task are indistinguishable by the time they reach this function; they
// collapse to the single relationship that results.
func collapseRelationships(rs []Relationship) []Relationship {
	order := make([]Task, 0, len(rs))
	strict := make(map[Task]bool)
	seen := make(map[Task]bool)
	for _, r := range rs {
		if r.Target == nil {
			continue
		}
		if !seen[r.Target] {
			seen[r.Target] = true
			order = append(order, r.Target)
		}
		if r.Strict {
			strict[r.Target] = true
		}
	}
	out := make([]Relationship, len(order))
	for i, target := range order {
		out[i] = Relationship{Target: target, Strict: strict[target]}
	}
	return out
}

// Execute resolves selectors against the project tree, builds the
// execution graph for whatever they denote, and runs it. The context
// must already be finalized.
func (c *Context) Execute(ctx context.Context, selectors []string, opts ExecuteOptions) (*Result, error) {
	if !c.isFinalized() {
		return nil, &ContextSealedError{Operation: "execute before finalizing"}
	}

	roots, err := resolveSelectors(c.root, selectors)
	if err != nil {
		return nil, err
	}

	g, err := buildGraph(roots)
	if err != nil {
		return nil, err
	}

	runID := uuid.New()
	c.log.Debug("starting execution", "run_id", runID.String(), "task_count", len(g.Nodes()))

	result, err := runGraph(ctx, g, opts)

	c.log.Debug("execution finished", "run_id", runID.String(), "error", err)
	return result, err
}
