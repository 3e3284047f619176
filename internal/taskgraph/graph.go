// Package taskgraph implements a small generic directed graph: nodes of
// any comparable type, two edge kinds (strict and optional), a
// strict-reachability closure with cycle detection, and a deterministic
// debug dump. It knows nothing about tasks, properties or projects —
// the kraken package is the only consumer, and supplies pre-flattened
// edges (it resolves group-task promotion itself before calling
// AddStrictEdge/AddOptionalEdge).
package taskgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tetigi/kraken-core/internal/collections"
)

// Graph is a directed graph over nodes of type T. The zero value is not
// usable; construct with New.
type Graph[T comparable] struct {
	order []T
	nodes map[T]*node[T]
}

type node[T comparable] struct {
	strictDeps   []T // this node depends on these
	optionalDeps []T
}

// New returns an empty Graph.
func New[T comparable]() *Graph[T] {
	return &Graph[T]{nodes: make(map[T]*node[T])}
}

// AddNode registers t with no edges if it is not already present. It is
// safe to call redundantly.
func (g *Graph[T]) AddNode(t T) {
	if _, ok := g.nodes[t]; ok {
		return
	}
	g.nodes[t] = &node[T]{}
	g.order = append(g.order, t)
}

// AddStrictEdge records that from depends on to: to must complete before
// from may run, and to's presence in the graph is required by from's
// presence. Both nodes are added if not already present.
func (g *Graph[T]) AddStrictEdge(from, to T) {
	g.AddNode(from)
	g.AddNode(to)
	g.nodes[from].strictDeps = append(g.nodes[from].strictDeps, to)
}

// AddOptionalEdge records that from should run after to. Both nodes are
// added if not already present, but Closure never follows this edge, so
// to is not pulled into a closure by this edge alone.
func (g *Graph[T]) AddOptionalEdge(from, to T) {
	g.AddNode(from)
	g.AddNode(to)
	g.nodes[from].optionalDeps = append(g.nodes[from].optionalDeps, to)
}

// Nodes returns every node currently in the graph, in insertion order.
func (g *Graph[T]) Nodes() []T {
	return append([]T(nil), g.order...)
}

// StrictDependencies returns t's direct strict predecessors.
func (g *Graph[T]) StrictDependencies(t T) []T {
	if n, ok := g.nodes[t]; ok {
		return append([]T(nil), n.strictDeps...)
	}
	return nil
}

// OptionalDependencies returns t's direct optional predecessors.
func (g *Graph[T]) OptionalDependencies(t T) []T {
	if n, ok := g.nodes[t]; ok {
		return append([]T(nil), n.optionalDeps...)
	}
	return nil
}

// AllDependencies returns the union of t's strict and optional direct
// predecessors, strict first.
func (g *Graph[T]) AllDependencies(t T) []T {
	n, ok := g.nodes[t]
	if !ok {
		return nil
	}
	out := append([]T(nil), n.strictDeps...)
	return append(out, n.optionalDeps...)
}

// CycleError reports a strict-dependency cycle found during Closure. Path
// lists the nodes in cycle order, starting and ending at the same node.
type CycleError[T comparable] struct {
	Path []T
}

func (e *CycleError[T]) Error() string {
	parts := make([]string, len(e.Path))
	for i, t := range e.Path {
		parts[i] = fmt.Sprint(t)
	}
	return fmt.Sprintf("dependency cycle: %s", strings.Join(parts, " -> "))
}

// Closure computes the set of nodes transitively strictly reachable from
// roots (inclusive of roots themselves), detecting cycles along the way.
// Nodes reachable only via optional edges are not included.
func (g *Graph[T]) Closure(roots []T) (collections.Set[T], error) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[T]int)
	required := make(map[T]struct{})
	var stack []T

	var visit func(t T) error
	visit = func(t T) error {
		switch color[t] {
		case black:
			return nil
		case gray:
			cyclePath := append(append([]T(nil), stack...), t)
			return &CycleError[T]{Path: cyclePath}
		}
		color[t] = gray
		stack = append(stack, t)
		required[t] = struct{}{}
		for _, dep := range g.StrictDependencies(t) {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		color[t] = black
		return nil
	}

	for _, r := range roots {
		if err := visit(r); err != nil {
			return nil, err
		}
	}

	keys := make([]T, 0, len(required))
	for t := range required {
		keys = append(keys, t)
	}
	return collections.NewSet(keys...), nil
}

// DebugRepr renders a deterministic, sorted textual dump of the graph,
// useful for golden-file assertions in tests: one line per node listing
// its strict and optional dependencies, using render(t) to name each
// node.
func (g *Graph[T]) DebugRepr(render func(T) string) string {
	names := make([]string, 0, len(g.order))
	byName := make(map[string]T, len(g.order))
	for _, t := range g.order {
		n := render(t)
		names = append(names, n)
		byName[n] = t
	}
	sort.Strings(names)

	var b strings.Builder
	for _, n := range names {
		t := byName[n]
		strict := renderAll(g.StrictDependencies(t), render)
		optional := renderAll(g.OptionalDependencies(t), render)
		fmt.Fprintf(&b, "%s: strict=[%s] optional=[%s]\n", n, strings.Join(strict, ", "), strings.Join(optional, ", "))
	}
	return b.String()
}

func renderAll[T comparable](ts []T, render func(T) string) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = render(t)
	}
	sort.Strings(out)
	return out
}
