package kraken

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tetigi/kraken-core/property"
)

func TestTaskStatusSatisfied(t *testing.T) {
	tests := map[string]struct {
		status    TaskStatus
		satisfied bool
	}{
		"succeeded":           {Success(), true},
		"succeeded noop":      {SuccessNoop(), true},
		"up to date":          {AlreadyUpToDate(), true},
		"skipped":             {SkippedBecause("reason"), true},
		"failed":              {Failure(nil), false},
		"started (in flight)": {TaskStatus{Kind: Started}, false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tc.status.Satisfied(); got != tc.satisfied {
				t.Errorf("Satisfied() = %v, want %v", got, tc.satisfied)
			}
		})
	}
}

func TestTaskBasePathBuilding(t *testing.T) {
	ctx := NewContext("/build", nil)
	sub, err := ctx.Root().AddChild("sub", "/build/sub")
	if err != nil {
		t.Fatalf("AddChild: %v", err)
	}

	task := newFakeTask("compile")
	mustAddTask(t, sub, task)

	if got, want := task.Base().Path(), ":sub:compile"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestTaskBaseDeclaresPropertiesInOrder(t *testing.T) {
	ctx := NewContext("/build", nil)
	task := newFakeTask("assemble")
	task.Input("src", property.String())
	task.Output("out", property.String())
	mustAddTask(t, ctx.Root(), task)

	props := task.Base().Properties()
	var names []string
	for _, p := range props {
		names = append(names, p.Name())
	}
	if diff := cmp.Diff([]string{"src", "out"}, names); diff != "" {
		t.Errorf("Properties() order mismatch (-want +got):\n%s", diff)
	}
}

func TestDependsOnMakesStrictRelationship(t *testing.T) {
	ctx := NewContext("/build", nil)
	upstream := newFakeTask("compile")
	mustAddTask(t, ctx.Root(), upstream)

	downstream := newFakeTask("unittest")
	downstream.DependsOn(upstream)
	mustAddTask(t, ctx.Root(), downstream)

	rels := downstream.Base().Relationships()
	if len(rels) != 1 || rels[0].Target != Task(upstream) || !rels[0].Strict {
		t.Fatalf("Relationships() = %+v, want one strict relationship to compile", rels)
	}
}

func TestRunsAfterMakesNonStrictRelationship(t *testing.T) {
	ctx := NewContext("/build", nil)
	lint := newFakeTask("vet")
	mustAddTask(t, ctx.Root(), lint)

	build := newFakeTask("assemble")
	build.RunsAfter(lint)
	mustAddTask(t, ctx.Root(), build)

	rels := build.Base().Relationships()
	if len(rels) != 1 || rels[0].Strict {
		t.Fatalf("Relationships() = %+v, want one non-strict relationship", rels)
	}
}

func TestRequiredByAddsRelationshipFromTheOtherSide(t *testing.T) {
	ctx := NewContext("/build", nil)
	build := newFakeTask("assemble")
	mustAddTask(t, ctx.Root(), build)

	compile := newFakeTask("compile")
	mustAddTask(t, ctx.Root(), compile)
	compile.RequiredBy(build)

	rels := build.Base().Relationships()
	if len(rels) != 1 || rels[0].Target != Task(compile) || !rels[0].Strict {
		t.Fatalf("Relationships() on assemble = %+v, want one strict relationship to compile", rels)
	}
}

func TestAddRelationshipRejectedAfterFinalize(t *testing.T) {
	ctx := NewContext("/build", nil)
	task := newFakeTask("assemble")
	mustAddTask(t, ctx.Root(), task)
	if err := ctx.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	other := newFakeTask("unbound")
	if err := task.Base().AddRelationship(Task(other), true); err == nil {
		t.Fatalf("AddRelationship after Finalize: want error, got nil")
	}
}

func TestOutputWritableOnlyWhileExecuting(t *testing.T) {
	ctx := NewContext("/build", nil)
	task := newFakeTask("assemble")
	out := task.Output("result", property.String())
	mustAddTask(t, ctx.Root(), task)
	if err := ctx.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	task.Base().setExecuting(true)
	if err := out.Set("value"); err != nil {
		t.Fatalf("Set while executing: %v", err)
	}
	task.Base().setExecuting(false)
	if err := out.Set("too late"); err == nil {
		t.Fatalf("Set after execution window closed: want error, got nil")
	}
}
