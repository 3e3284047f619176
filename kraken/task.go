package kraken

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tetigi/kraken-core/property"
)

// StatusKind is the taxonomy a task's execution settles into.
type StatusKind int

const (
	// Started is never a valid terminal status; a Task.Execute that
	// returns it with a nil error is treated as Succeeded.
	Started StatusKind = iota
	Succeeded
	SucceededNoop
	UpToDate
	Skipped
	Failed
)

func (k StatusKind) String() string {
	switch k {
	case Started:
		return "started"
	case Succeeded:
		return "succeeded"
	case SucceededNoop:
		return "succeeded (no-op)"
	case UpToDate:
		return "up-to-date"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// TaskStatus is the outcome of running (or not running) a task.
type TaskStatus struct {
	Kind   StatusKind
	Reason string // set for Skipped
	Err    error  // set for Failed
}

func (s TaskStatus) String() string {
	switch {
	case s.Kind == Skipped && s.Reason != "":
		return fmt.Sprintf("skipped (%s)", s.Reason)
	case s.Kind == Failed && s.Err != nil:
		return fmt.Sprintf("failed (%v)", s.Err)
	default:
		return s.Kind.String()
	}
}

// Terminal reports whether this status represents a task that is done
// running, as opposed to Started (in flight).
func (s TaskStatus) Terminal() bool { return s.Kind != Started }

// Satisfied reports whether this status satisfies a predecessor
// requirement: every terminal status except Failed does, including
// UpToDate (an up-to-date task's outputs are exactly as if it had just
// run).
func (s TaskStatus) Satisfied() bool { return s.Terminal() && s.Kind != Failed }

// Success constructs a Succeeded status.
func Success() TaskStatus { return TaskStatus{Kind: Succeeded} }

// SuccessNoop constructs a SucceededNoop status, for a task that ran but
// determined it had nothing to do.
func SuccessNoop() TaskStatus { return TaskStatus{Kind: SucceededNoop} }

// AlreadyUpToDate constructs an UpToDate status.
func AlreadyUpToDate() TaskStatus { return TaskStatus{Kind: UpToDate} }

// SkippedBecause constructs a Skipped status carrying reason.
func SkippedBecause(reason string) TaskStatus { return TaskStatus{Kind: Skipped, Reason: reason} }

// Failure constructs a Failed status carrying err.
func Failure(err error) TaskStatus { return TaskStatus{Kind: Failed, Err: err} }

// Task is the interface a build script's task type implements, always by
// embedding TaskBase, which supplies every method except Execute.
type Task interface {
	Name() string
	Project() *Project
	Base() *TaskBase
	Execute(ctx context.Context) (TaskStatus, error)
}

// Finalizer is an optional interface a Task may implement to mutate its
// own properties or relationships once, exactly before the owning
// context is sealed.
type Finalizer interface {
	Finalize() error
}

// Describer is an optional interface a Task may implement to report a
// short human-readable description. Nothing in this module reads it; the
// kraken CLI's graph output does not include descriptions.
type Describer interface {
	Description() string
}

// OutputsReporter is an optional interface a Task may implement to
// report the names of its declared Output properties in a preferred
// display order. TaskBase does not implement it, and nothing in this
// module reads it.
type OutputsReporter interface {
	Outputs() []string
}

// Relationship records that a task is connected to a target task, either
// strictly (the target must complete, successfully or not via a
// non-Failed terminal status, before this task may run) or non-strictly
// (the target must run first only if it is independently part of the
// same execution).
//
// Target may be resolved already, or left to resolve lazily from a
// selector string at Context.Finalize time — whichever a task author's
// call site had on hand.
type Relationship struct {
	Target         Task
	TargetSelector string
	Strict         bool
}

func (r Relationship) resolved() bool { return r.Target != nil }

// TaskBase is the embeddable struct every concrete Task type embeds. It
// owns the task's declared properties, its relationships, and the
// default/capture flags, and supplies every Task method except Execute.
type TaskBase struct {
	mu sync.Mutex

	name    string
	id      uuid.UUID
	project *Project
	ctx     *Context
	self    Task

	isDefault   bool
	captureText bool
	executing   bool

	relationships []Relationship
	properties    map[string]*property.Property
	propOrder     []string
}

// NewTaskBase constructs an unbound TaskBase named name. A build script's
// task factory embeds the result, declares its schema with Input/Output,
// and returns the concrete Task; Project.AddTask (or the Project.Do
// shortcut) then binds it to a project.
func NewTaskBase(name string) TaskBase {
	return TaskBase{
		name:       name,
		id:         uuid.New(),
		properties: make(map[string]*property.Property),
	}
}

func (b *TaskBase) bind(p *Project, self Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.project = p
	b.ctx = p.ctx
	b.self = self
	for _, name := range b.propOrder {
		b.properties[name].SetOwner(self)
	}
}

// Name returns the task's name within its owning project.
func (b *TaskBase) Name() string { return b.name }

// Project returns the owning project, or nil before the task has been
// added to one.
func (b *TaskBase) Project() *Project { return b.project }

// Base returns b itself, satisfying Task.Base() for any type embedding
// TaskBase.
func (b *TaskBase) Base() *TaskBase { return b }

// ID returns a stable identifier for this task instance, suitable for
// log correlation.
func (b *TaskBase) ID() uuid.UUID { return b.id }

// Path returns the task's full colon-separated path, e.g. ":sub:build".
func (b *TaskBase) Path() string {
	if b.project == nil {
		return ":" + b.name
	}
	return joinPath(b.project.Path(), b.name)
}

func joinPath(projectPath, name string) string {
	if projectPath == ":" {
		return ":" + name
	}
	return projectPath + ":" + name
}

// IsDefault reports whether this task runs when its project is selected
// with no further path component.
func (b *TaskBase) IsDefault() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isDefault
}

// SetDefault marks or unmarks this task as one of its project's default
// tasks.
func (b *TaskBase) SetDefault(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.isDefault = v
}

// CapturesOutput reports whether the executor should capture this
// task's stdout/stderr rather than streaming it live.
func (b *TaskBase) CapturesOutput() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.captureText
}

// SetCapturesOutput sets the capture-output flag.
func (b *TaskBase) SetCapturesOutput(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.captureText = v
}

// Input declares an input property named name with the given type.
func (b *TaskBase) Input(name string, t property.Type) *property.Property {
	return b.declare(name, property.Input, t)
}

// Output declares an output property named name with the given type.
func (b *TaskBase) Output(name string, t property.Type) *property.Property {
	return b.declare(name, property.Output, t)
}

func (b *TaskBase) declare(name string, kind property.Kind, t property.Type) *property.Property {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := property.New(nil, name, kind, t, b.isFinalized, b.isExecuting)
	b.properties[name] = p
	b.propOrder = append(b.propOrder, name)
	return p
}

func (b *TaskBase) isFinalized() bool {
	b.mu.Lock()
	ctx := b.ctx
	b.mu.Unlock()
	return ctx != nil && ctx.isFinalized()
}

func (b *TaskBase) isExecuting() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.executing
}

func (b *TaskBase) setExecuting(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.executing = v
}

// Property looks up a declared property by name.
func (b *TaskBase) Property(name string) (*property.Property, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.properties[name]
	return p, ok
}

// Properties returns every declared property in declaration order.
func (b *TaskBase) Properties() []*property.Property {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*property.Property, len(b.propOrder))
	for i, name := range b.propOrder {
		out[i] = b.properties[name]
	}
	return out
}

// AddRelationship connects this task to target, which must be a Task or
// a selector string resolved lazily at Context.Finalize.
func (b *TaskBase) AddRelationship(target any, strict bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ctx != nil && b.ctx.isFinalized() {
		return &ContextSealedError{Operation: "add a relationship"}
	}
	switch v := target.(type) {
	case Task:
		b.relationships = append(b.relationships, Relationship{Target: v, Strict: strict})
	case string:
		b.relationships = append(b.relationships, Relationship{TargetSelector: v, Strict: strict})
	default:
		return fmt.Errorf("kraken: relationship target must be a Task or a selector string, got %T", target)
	}
	return nil
}

// DependsOn adds a strict relationship to each of tasks: they must all
// reach a non-Failed terminal status before this task may run, and their
// presence in an execution is implied by this task's presence.
func (b *TaskBase) DependsOn(tasks ...Task) {
	for _, t := range tasks {
		_ = b.AddRelationship(t, true)
	}
}

// DependsOnSelector is DependsOn for selector strings resolved lazily.
func (b *TaskBase) DependsOnSelector(selectors ...string) {
	for _, s := range selectors {
		_ = b.AddRelationship(s, true)
	}
}

// RunsAfter adds a non-strict relationship to each of tasks: if a task
// is independently part of the same execution, this task runs after it,
// but its presence is never required by this relationship alone.
func (b *TaskBase) RunsAfter(tasks ...Task) {
	for _, t := range tasks {
		_ = b.AddRelationship(t, false)
	}
}

// RequiredBy adds a strict relationship from each of tasks back to this
// one: the inverse of DependsOn, for declaring "X requires me" from X's
// own side without X needing a reference back.
func (b *TaskBase) RequiredBy(tasks ...Task) {
	for _, t := range tasks {
		_ = t.Base().AddRelationship(Task(b.self), true)
	}
}

// Relationships returns the relationships explicitly declared on this
// task, in declaration order.
func (b *TaskBase) Relationships() []Relationship {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Relationship(nil), b.relationships...)
}

func (b *TaskBase) addResolvedRelationship(r Relationship) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.relationships = append(b.relationships, r)
}

func (b *TaskBase) setRelationships(rs []Relationship) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.relationships = rs
}
