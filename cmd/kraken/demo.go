package main

import (
	"context"
	"fmt"

	"github.com/tetigi/kraken-core/kraken"
	"github.com/tetigi/kraken-core/property"
)

// buildDemoProject populates ctx's root project with a small, self
// contained task graph: loading real build scripts is a collaborator's
// concern (spec.md §1 leaves script/language loading outside the core),
// so this CLI demonstrates the embeddable API against tasks declared
// directly in Go, the same way a language-specific script loader would.
func buildDemoProject(ctx *kraken.Context) error {
	root := ctx.Root()

	compile, err := root.Do("compile", newCompileTask, map[string]any{
		"sources": []any{"main.go", "util.go"},
	})
	if err != nil {
		return fmt.Errorf("declaring compile: %w", err)
	}
	compile.Base().SetDefault(true)
	root.Group("build").AddMember(compile)

	lint, err := root.Do("lint-sources", newLintTask, map[string]any{
		"sources": []any{"main.go", "util.go"},
	})
	if err != nil {
		return fmt.Errorf("declaring lint-sources: %w", err)
	}
	root.Group("lint").AddMember(lint)

	test, err := root.Do("run-tests", newTestTask, nil)
	if err != nil {
		return fmt.Errorf("declaring run-tests: %w", err)
	}
	test.Base().SetDefault(true)
	test.Base().DependsOn(compile)
	test.Base().RunsAfter(lint)

	binary, ok := compile.Base().Property("binary")
	in, ok2 := test.Base().Property("binary")
	if ok && ok2 {
		if err := in.Set(binary); err != nil {
			return fmt.Errorf("wiring compile.binary into test.binary: %w", err)
		}
	}
	root.Group("test").AddMember(test)

	return nil
}

// compileTask pretends to compile sources into a binary.
type compileTask struct {
	kraken.TaskBase
}

func newCompileTask(base kraken.TaskBase) kraken.Task {
	t := &compileTask{TaskBase: base}
	t.Input("sources", property.SequenceOf(property.String()))
	t.Output("binary", property.Path())
	return t
}

func (t *compileTask) Execute(ctx context.Context) (kraken.TaskStatus, error) {
	sources, ok := t.Property("sources")
	if !ok {
		return kraken.TaskStatus{}, fmt.Errorf("compile: sources not declared")
	}
	if _, err := sources.Get(); err != nil {
		return kraken.TaskStatus{}, fmt.Errorf("compile: reading sources: %w", err)
	}
	binary, _ := t.Property("binary")
	if err := binary.Set(property.PathValue("out/binary")); err != nil {
		return kraken.TaskStatus{}, err
	}
	return kraken.Success(), nil
}

func (t *compileTask) Description() string { return "Compiles the demo sources" }

// lintTask pretends to lint sources, independent of compile.
type lintTask struct {
	kraken.TaskBase
}

func newLintTask(base kraken.TaskBase) kraken.Task {
	t := &lintTask{TaskBase: base}
	t.Input("sources", property.SequenceOf(property.String()))
	return t
}

func (t *lintTask) Execute(ctx context.Context) (kraken.TaskStatus, error) {
	return kraken.Success(), nil
}

func (t *lintTask) Description() string { return "Lints the demo sources" }

// testTask consumes compile's binary output and depends on compile
// strictly; it runs after lint only if lint is independently selected.
type testTask struct {
	kraken.TaskBase
}

func newTestTask(base kraken.TaskBase) kraken.Task {
	t := &testTask{TaskBase: base}
	t.Input("binary", property.Path())
	return t
}

func (t *testTask) Execute(ctx context.Context) (kraken.TaskStatus, error) {
	binary, ok := t.Property("binary")
	if !ok {
		return kraken.TaskStatus{}, fmt.Errorf("test: binary not declared")
	}
	if _, err := binary.Get(); err != nil {
		return kraken.TaskStatus{}, fmt.Errorf("test: reading compile's binary: %w", err)
	}
	return kraken.Success(), nil
}

func (t *testTask) Description() string { return "Runs the demo test suite" }
