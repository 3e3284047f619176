package taskgraph

import "testing"

func TestClosureFollowsStrictEdgesOnly(t *testing.T) {
	g := New[string]()
	g.AddStrictEdge("app", "lib")
	g.AddOptionalEdge("app", "docs")

	required, err := g.Closure([]string{"app"})
	if err != nil {
		t.Fatalf("Closure: %v", err)
	}
	if !required.Has("app") || !required.Has("lib") {
		t.Errorf("required = %v, want app and lib", required)
	}
	if required.Has("docs") {
		t.Errorf("required = %v, docs should not be pulled in by an optional edge alone", required)
	}
}

func TestClosureTransitive(t *testing.T) {
	g := New[string]()
	g.AddStrictEdge("a", "b")
	g.AddStrictEdge("b", "c")

	required, err := g.Closure([]string{"a"})
	if err != nil {
		t.Fatalf("Closure: %v", err)
	}
	for _, want := range []string{"a", "b", "c"} {
		if !required.Has(want) {
			t.Errorf("required = %v, missing %q", required, want)
		}
	}
}

func TestClosureDetectsCycle(t *testing.T) {
	g := New[string]()
	g.AddStrictEdge("a", "b")
	g.AddStrictEdge("b", "c")
	g.AddStrictEdge("c", "a")

	_, err := g.Closure([]string{"a"})
	if err == nil {
		t.Fatal("Closure over a cyclic graph: want error, got nil")
	}
	var cerr *CycleError[string]
	if !asCycleError(err, &cerr) {
		t.Fatalf("Closure error = %v, want *CycleError[string]", err)
	}
	if len(cerr.Path) < 2 || cerr.Path[0] != cerr.Path[len(cerr.Path)-1] {
		t.Errorf("cycle path = %v, want it to start and end at the same node", cerr.Path)
	}
}

func asCycleError(err error, target **CycleError[string]) bool {
	ce, ok := err.(*CycleError[string])
	if !ok {
		return false
	}
	*target = ce
	return true
}

func TestDebugReprIsSortedAndDeterministic(t *testing.T) {
	g := New[string]()
	g.AddStrictEdge("b", "a")
	g.AddOptionalEdge("b", "z")
	g.AddNode("a")

	got := g.DebugRepr(func(s string) string { return s })
	want := "a: strict=[] optional=[]\nb: strict=[a] optional=[z]\n"
	if got != want {
		t.Errorf("DebugRepr() = %q, want %q", got, want)
	}
}
