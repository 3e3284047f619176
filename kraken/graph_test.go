package kraken

import (
	"errors"
	"testing"

	"github.com/tetigi/kraken-core/property"
)

func TestBuildGraphIncludesTransitiveStrictDependencies(t *testing.T) {
	ctx := NewContext("/build", nil)
	a := newFakeTask("a")
	mustAddTask(t, ctx.Root(), a)
	b := newFakeTask("b")
	b.DependsOn(a)
	mustAddTask(t, ctx.Root(), b)
	c := newFakeTask("c")
	c.DependsOn(b)
	mustAddTask(t, ctx.Root(), c)

	g, err := buildGraph([]Task{c})
	if err != nil {
		t.Fatalf("buildGraph: %v", err)
	}
	if len(g.Nodes()) != 3 {
		t.Fatalf("Nodes() = %v, want a, b and c", g.Nodes())
	}
	if deps := g.StrictDependencies(c); len(deps) != 1 || deps[0] != Task(b) {
		t.Errorf("StrictDependencies(c) = %v, want [b]", deps)
	}
}

// TestBuildGraphDropsUnneededOptionalDependency exercises the worked
// scenario where A runs_after B but nothing else requires B: selecting
// only A must run A alone, with B entirely absent from the graph.
func TestBuildGraphDropsUnneededOptionalDependency(t *testing.T) {
	ctx := NewContext("/build", nil)
	b := newFakeTask("b")
	mustAddTask(t, ctx.Root(), b)
	a := newFakeTask("a")
	a.RunsAfter(b)
	mustAddTask(t, ctx.Root(), a)

	g, err := buildGraph([]Task{a})
	if err != nil {
		t.Fatalf("buildGraph: %v", err)
	}
	if got := g.Nodes(); len(got) != 1 || got[0] != Task(a) {
		t.Fatalf("Nodes() = %v, want [a] only (b unneeded)", got)
	}
}

// TestBuildGraphKeepsOptionalDependencyWhenIndependentlyRequired covers
// the other half of that scenario: when B is independently selected
// alongside A, the non-strict edge between them still orders A after B.
func TestBuildGraphKeepsOptionalDependencyWhenIndependentlyRequired(t *testing.T) {
	ctx := NewContext("/build", nil)
	b := newFakeTask("b")
	mustAddTask(t, ctx.Root(), b)
	a := newFakeTask("a")
	a.RunsAfter(b)
	mustAddTask(t, ctx.Root(), a)

	g, err := buildGraph([]Task{a, b})
	if err != nil {
		t.Fatalf("buildGraph: %v", err)
	}
	if len(g.Nodes()) != 2 {
		t.Fatalf("Nodes() = %v, want [a b]", g.Nodes())
	}
	if deps := g.OptionalDependencies(a); len(deps) != 1 || deps[0] != Task(b) {
		t.Errorf("OptionalDependencies(a) = %v, want [b]", deps)
	}
}

func TestBuildGraphGroupTaskIsTransparent(t *testing.T) {
	ctx := NewContext("/build", nil)
	member1 := newFakeTask("member1")
	mustAddTask(t, ctx.Root(), member1)
	member2 := newFakeTask("member2")
	mustAddTask(t, ctx.Root(), member2)

	group := ctx.Root().Group("build")
	group.AddMember(member1)
	group.AddMember(member2)

	g, err := buildGraph([]Task{group})
	if err != nil {
		t.Fatalf("buildGraph: %v", err)
	}
	nodes := g.Nodes()
	if len(nodes) != 2 {
		t.Fatalf("Nodes() = %v, want [member1 member2] (group itself absent)", nodes)
	}
	for _, n := range nodes {
		if isGroupTask(n) {
			t.Errorf("Nodes() contains the group task %v, want it promoted away", n)
		}
	}
}

func TestBuildGraphInfersDependencyFromDerivedProperty(t *testing.T) {
	ctx := NewContext("/build", nil)
	producer := newFakeTask("producer")
	out := producer.Output("result", property.String())
	mustAddTask(t, ctx.Root(), producer)

	consumer := newFakeTask("consumer")
	in := consumer.Input("value", property.String())
	mustAddTask(t, ctx.Root(), consumer)
	if err := in.Set(out); err != nil {
		t.Fatalf("Set: %v", err)
	}

	g, err := buildGraph([]Task{consumer})
	if err != nil {
		t.Fatalf("buildGraph: %v", err)
	}
	if deps := g.StrictDependencies(consumer); len(deps) != 1 || deps[0] != Task(producer) {
		t.Fatalf("StrictDependencies(consumer) = %v, want [producer] (implied by the wired property)", deps)
	}
}

func TestBuildGraphDetectsCycle(t *testing.T) {
	ctx := NewContext("/build", nil)
	a := newFakeTask("a")
	mustAddTask(t, ctx.Root(), a)
	b := newFakeTask("b")
	b.DependsOn(a)
	mustAddTask(t, ctx.Root(), b)
	a.DependsOn(b)

	_, err := buildGraph([]Task{b})
	var ce *CycleError
	if !errors.As(err, &ce) {
		t.Fatalf("buildGraph with a cycle: error = %v, want *CycleError", err)
	}
}
