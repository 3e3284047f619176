package kraken

import (
	"errors"

	"github.com/tetigi/kraken-core/internal/taskgraph"
)

// buildGraph constructs the execution graph for roots: the transitive
// closure of roots under strict relationships (including those implied
// by Derived input properties), with GroupTasks promoted away (a group's
// own strict dependencies become direct dependencies of whatever
// depended on the group) and direct non-strict relationships included
// only when their target is otherwise required.
//
// It discovers the full edge set first (every task reachable from roots
// by either a strict or an optional relationship, with group targets
// already flattened to their members), then delegates the actual
// strict-reachability closure and cycle detection to
// taskgraph.Graph.Closure rather than re-running its own traversal.
func buildGraph(roots []Task) (*taskgraph.Graph[Task], error) {
	full := taskgraph.New[Task]()
	visited := make(map[Task]bool)

	var discover func(t Task)
	discover = func(t Task) {
		if visited[t] {
			return
		}
		visited[t] = true
		full.AddNode(t)
		for _, dep := range strictPredecessors(t) {
			full.AddStrictEdge(t, dep)
			discover(dep)
		}
		for _, dep := range optionalPredecessors(t) {
			full.AddOptionalEdge(t, dep)
			discover(dep)
		}
	}

	// A group root isn't itself required (it's structural): seed the
	// traversal with its members directly, the same way a group target
	// partway through the graph is expanded.
	var seeds []Task
	for _, r := range roots {
		seeds = append(seeds, expandGroup(r)...)
	}
	for _, s := range seeds {
		discover(s)
	}

	required, err := full.Closure(seeds)
	if err != nil {
		var ce *taskgraph.CycleError[Task]
		if errors.As(err, &ce) {
			return nil, &CycleError{Path: pathsOf(ce.Path)}
		}
		return nil, err
	}

	g := taskgraph.New[Task]()
	for t := range required {
		g.AddNode(t)
		for _, dep := range full.StrictDependencies(t) {
			if required.Has(dep) {
				g.AddStrictEdge(t, dep)
			}
		}
		for _, dep := range full.OptionalDependencies(t) {
			if required.Has(dep) {
				g.AddOptionalEdge(t, dep)
			}
		}
	}
	return g, nil
}

// strictPredecessors returns t's effective strict predecessors: the
// targets of its own strict relationships, the owning tasks of any
// Derived input property's upstream properties, and (for either of
// those, if the target is itself a GroupTask) that group's own members,
// expanded recursively.
func strictPredecessors(t Task) []Task {
	var out []Task
	for _, r := range t.Base().Relationships() {
		if !r.Strict || r.Target == nil {
			continue
		}
		out = append(out, expandGroup(r.Target)...)
	}
	for _, p := range t.Base().Properties() {
		for _, up := range p.Upstream() {
			owner, ok := up.Owner().(Task)
			if !ok || owner == nil {
				continue
			}
			out = append(out, expandGroup(owner)...)
		}
	}
	return out
}

// optionalPredecessors returns t's direct non-strict relationship
// targets, with GroupTask targets expanded to their members the same way
// strictPredecessors does.
func optionalPredecessors(t Task) []Task {
	var out []Task
	for _, r := range t.Base().Relationships() {
		if r.Strict || r.Target == nil {
			continue
		}
		out = append(out, expandGroup(r.Target)...)
	}
	return out
}

// expandGroup flattens t to its non-group strict dependencies if t is a
// GroupTask, recursively (a group may itself have group members), or
// returns []Task{t} unchanged otherwise.
func expandGroup(t Task) []Task {
	if !isGroupTask(t) {
		return []Task{t}
	}
	var out []Task
	for _, m := range t.(*GroupTask).Members() {
		out = append(out, expandGroup(m)...)
	}
	return out
}

// ResolveSelectors is the exported form of resolveSelectors, for
// collaborators (such as a CLI) that need to resolve selector
// expressions against a project tree without also building or running
// the resulting graph.
func ResolveSelectors(root *Project, exprs []string) ([]Task, error) {
	return resolveSelectors(root, exprs)
}

// DebugGraph builds the execution graph for roots and renders it with
// taskgraph.Graph.DebugRepr, using each task's path as its node label.
func DebugGraph(roots []Task) (string, error) {
	g, err := buildGraph(roots)
	if err != nil {
		return "", err
	}
	return g.DebugRepr(func(t Task) string { return t.Base().Path() }), nil
}

func pathsOf(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Base().Path()
	}
	return out
}
