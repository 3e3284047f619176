package kraken

import (
	"fmt"
	"strings"
)

// NameCollisionError is returned when a task or child project is added
// under a name already in use in that project's namespace (tasks and
// child projects share one namespace per project).
type NameCollisionError struct {
	Project string
	Name    string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("project %q already has a member named %q", e.Project, e.Name)
}

// UnknownPathError is returned when a colon-separated path does not
// resolve to any project or task.
type UnknownPathError struct {
	Path string
}

func (e *UnknownPathError) Error() string {
	return fmt.Sprintf("no project or task at path %q", e.Path)
}

// UnknownTaskError is returned when a bare task name does not match any
// task anywhere in the project tree.
type UnknownTaskError struct {
	Name string
}

func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("no task named %q in the project tree", e.Name)
}

// ContextSealedError is returned when an attempt is made to mutate the
// project tree (add a task, add a child project, add a relationship)
// after Context.Finalize has run.
type ContextSealedError struct {
	Operation string
}

func (e *ContextSealedError) Error() string {
	return fmt.Sprintf("cannot %s: the context has already been finalized", e.Operation)
}

// CycleError reports a strict-dependency cycle discovered while building
// an execution graph. Path lists task paths in cycle order.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Path, " -> "))
}

// NothingSelectedError is returned when a selector expression (or the
// set of default tasks, if no selectors were given) resolves to an empty
// task set.
type NothingSelectedError struct {
	Selectors []string
}

func (e *NothingSelectedError) Error() string {
	if len(e.Selectors) == 0 {
		return "nothing selected: no default tasks are declared anywhere in the project tree"
	}
	return fmt.Sprintf("nothing selected: %s matched no tasks", strings.Join(e.Selectors, " "))
}

// TaskExecutionFailedError wraps a native error raised by a task's
// Execute method with the task's path, so that keep_going aggregation
// and top-level reporting can identify which task failed.
type TaskExecutionFailedError struct {
	TaskPath string
	Err      error
}

func (e *TaskExecutionFailedError) Error() string {
	return fmt.Sprintf("task %q failed: %v", e.TaskPath, e.Err)
}

func (e *TaskExecutionFailedError) Unwrap() error { return e.Err }
