package kraken

import (
	"fmt"
	"sort"
	"sync"
)

// defaultGroupNames are created automatically on every project, mirroring
// the handful of conventional lifecycle buckets most build tools settle
// on: formatting, linting, compiling and testing. Tasks join them
// explicitly via Project.Group(name).AddMember.
var defaultGroupNames = []string{"fmt", "lint", "build", "test"}

// Project is a node in the build tree: a name, a directory, a parent
// (nil for the root), child projects, and tasks, all sharing one
// namespace (a task and a child project may not share a name within the
// same parent).
type Project struct {
	mu sync.Mutex

	name      string
	directory string
	parent    *Project
	ctx       *Context

	tasks    map[string]Task
	children map[string]*Project
	groups   map[string]*GroupTask
	order    []string // insertion order across tasks and children together
}

func newProject(ctx *Context, name, directory string, parent *Project) *Project {
	p := &Project{
		name:      name,
		directory: directory,
		parent:    parent,
		ctx:       ctx,
		tasks:     make(map[string]Task),
		children:  make(map[string]*Project),
		groups:    make(map[string]*GroupTask),
	}
	for _, g := range defaultGroupNames {
		p.groups[g] = newGroupTask(g)
		p.groups[g].Base().bind(p, p.groups[g])
	}
	return p
}

// Name returns the project's own name (not its full path).
func (p *Project) Name() string { return p.name }

// Directory returns the project's filesystem directory.
func (p *Project) Directory() string { return p.directory }

// Parent returns the parent project, or nil for the root.
func (p *Project) Parent() *Project { return p.parent }

// Context returns the owning Context.
func (p *Project) Context() *Context { return p.ctx }

// Path returns the project's full colon-separated path, ":" for the
// root, ":sub" for a direct child, and so on.
func (p *Project) Path() string {
	if p.parent == nil {
		return ":"
	}
	return joinPath(p.parent.Path(), p.name)
}

func (p *Project) memberExists(name string) bool {
	if _, ok := p.tasks[name]; ok {
		return true
	}
	if _, ok := p.children[name]; ok {
		return true
	}
	if _, ok := p.groups[name]; ok {
		return true
	}
	return false
}

// AddTask registers task under this project. task's name must be unique
// among this project's tasks, child projects and default groups.
func (p *Project) AddTask(task Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx.isFinalized() {
		return &ContextSealedError{Operation: "add a task"}
	}
	name := task.Base().name
	if p.memberExists(name) {
		return &NameCollisionError{Project: p.Path(), Name: name}
	}
	task.Base().bind(p, task)
	p.tasks[name] = task
	p.order = append(p.order, name)
	return nil
}

// AddChild creates and registers a child project named name, rooted at
// directory.
func (p *Project) AddChild(name, directory string) (*Project, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctx.isFinalized() {
		return nil, &ContextSealedError{Operation: "add a child project"}
	}
	if p.memberExists(name) {
		return nil, &NameCollisionError{Project: p.Path(), Name: name}
	}
	child := newProject(p.ctx, name, directory, p)
	p.children[name] = child
	p.order = append(p.order, name)
	return child, nil
}

// Do is a factory shortcut: it constructs a Task via factory, assigns
// each entry of props to the matching declared property (each value
// routed through Property.Set), and registers the result with AddTask.
func (p *Project) Do(name string, factory func(TaskBase) Task, props map[string]any) (Task, error) {
	base := NewTaskBase(name)
	task := factory(base)
	if err := p.AddTask(task); err != nil {
		return nil, err
	}
	for propName, value := range props {
		prop, ok := task.Base().Property(propName)
		if !ok {
			return task, fmt.Errorf("kraken: task %q has no property named %q", name, propName)
		}
		if err := prop.Set(value); err != nil {
			return task, fmt.Errorf("kraken: task %q property %q: %w", name, propName, err)
		}
	}
	return task, nil
}

// Task looks up a direct child task by name.
func (p *Project) Task(name string) (Task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.tasks[name]
	return t, ok
}

// Child looks up a direct child project by name.
func (p *Project) Child(name string) (*Project, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.children[name]
	return c, ok
}

// Group returns the project's group task named name, creating it (as a
// user-defined group, alongside the default fmt/lint/build/test ones) if
// it does not already exist.
func (p *Project) Group(name string) *GroupTask {
	p.mu.Lock()
	defer p.mu.Unlock()
	if g, ok := p.groups[name]; ok {
		return g
	}
	g := newGroupTask(name)
	g.Base().bind(p, g)
	p.groups[name] = g
	return g
}

// Tasks returns every directly-owned task: the project's own tasks in
// insertion order, followed by the default and any user-defined groups
// sorted by name.
func (p *Project) Tasks() []Task {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Task, 0, len(p.tasks)+len(p.groups))
	for _, name := range p.order {
		if t, ok := p.tasks[name]; ok {
			out = append(out, t)
		}
	}
	names := make([]string, 0, len(p.groups))
	for name := range p.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, p.groups[name])
	}
	return out
}

// Children returns every direct child project, in insertion order.
func (p *Project) Children() []*Project {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Project, 0, len(p.children))
	for _, name := range p.order {
		if c, ok := p.children[name]; ok {
			out = append(out, c)
		}
	}
	return out
}

// DefaultTasks returns this project's own tasks marked default, not
// including any from child projects.
func (p *Project) DefaultTasks() []Task {
	var out []Task
	for _, t := range p.Tasks() {
		if t.Base().IsDefault() {
			out = append(out, t)
		}
	}
	return out
}

// allTasks walks this project and every descendant, depth-first,
// collecting every task (including groups) in a deterministic order.
func (p *Project) allTasks() []Task {
	var out []Task
	out = append(out, p.Tasks()...)
	for _, c := range p.Children() {
		out = append(out, c.allTasks()...)
	}
	return out
}

// allProjects walks this project and every descendant, depth-first,
// pre-order (this project first).
func (p *Project) allProjects() []*Project {
	out := []*Project{p}
	for _, c := range p.Children() {
		out = append(out, c.allProjects()...)
	}
	return out
}

// resolve interprets path as a colon-separated project/task path. There
// is no notion of a "current project" in Execute, so both the canonical
// absolute form (a leading ':') and a bare multi-segment path resolve
// from the root project the same way; resolve always starts there
// regardless of which *Project it is called on.
func (p *Project) resolve(path string) (any, error) {
	segs := splitSelectorPath(path)
	cur := p.root()
	if len(segs) == 0 {
		return cur, nil
	}
	for i, seg := range segs {
		last := i == len(segs)-1
		if t, ok := cur.Task(seg); ok {
			if !last {
				return nil, &UnknownPathError{Path: path}
			}
			return t, nil
		}
		if g, ok := cur.groups[seg]; ok {
			if !last {
				return nil, &UnknownPathError{Path: path}
			}
			return g, nil
		}
		if c, ok := cur.Child(seg); ok {
			if last {
				return c, nil
			}
			cur = c
			continue
		}
		return nil, &UnknownPathError{Path: path}
	}
	return cur, nil
}

func (p *Project) root() *Project {
	cur := p
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// findTasksByName returns every task anywhere in the tree rooted at p
// whose own name equals name, in depth-first order.
func (p *Project) findTasksByName(name string) []Task {
	var out []Task
	for _, t := range p.allTasks() {
		if t.Base().name == name {
			out = append(out, t)
		}
	}
	return out
}
