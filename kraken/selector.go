package kraken

import "strings"

// splitSelectorPath splits a colon-separated selector path into its
// segments. A leading ':' is the canonical absolute form; a bare
// multi-segment path (no leading colon) resolves identically, since
// Execute has no notion of a "current project" to be relative to.
func splitSelectorPath(path string) []string {
	trimmed := strings.TrimPrefix(path, ":")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, ":")
}

// resolveSelector resolves a single selector expression (without its
// leading '^', if any) against root, returning every task it denotes.
//
//   - ":"            the root project's own default tasks
//   - ":a:b:c", "a:b" a path to a single project or task
//   - "name"         every task anywhere in the tree named exactly name
//
// Resolving to a *Project expands to that project's own default tasks
// (not its descendants' — a project selector is shorthand for "this
// project's defaults", matching how selecting ":" means "the root's
// defaults").
func resolveSelector(root *Project, expr string) ([]Task, error) {
	if expr == ":" {
		return root.DefaultTasks(), nil
	}
	if !strings.Contains(expr, ":") {
		if tasks := root.findTasksByName(expr); len(tasks) > 0 {
			return tasks, nil
		}
		return nil, &UnknownTaskError{Name: expr}
	}

	resolved, err := root.resolve(expr)
	if err != nil {
		return nil, err
	}
	switch v := resolved.(type) {
	case Task:
		return []Task{v}, nil
	case *Project:
		return v.DefaultTasks(), nil
	default:
		return nil, &UnknownPathError{Path: expr}
	}
}

// resolveSelectors implements the selector grammar's accumulating set:
// each expression is applied left to right against the running result,
// either unioning in everything it resolves to, or (when prefixed with
// '^') removing everything it resolves to. If exprs is empty, the result
// is every default task in the tree. An empty result after processing
// every expression is an error.
func resolveSelectors(root *Project, exprs []string) ([]Task, error) {
	if len(exprs) == 0 {
		var defaults []Task
		for _, p := range root.allProjects() {
			defaults = append(defaults, p.DefaultTasks()...)
		}
		if len(defaults) == 0 {
			return nil, &NothingSelectedError{}
		}
		return defaults, nil
	}

	selected := make(map[Task]struct{})
	var order []Task
	add := func(t Task) {
		if _, ok := selected[t]; !ok {
			selected[t] = struct{}{}
			order = append(order, t)
		}
	}
	remove := func(t Task) {
		if _, ok := selected[t]; ok {
			delete(selected, t)
			filtered := order[:0]
			for _, o := range order {
				if o != t {
					filtered = append(filtered, o)
				}
			}
			order = filtered
		}
	}

	for _, expr := range exprs {
		exclude := strings.HasPrefix(expr, "^")
		target := strings.TrimPrefix(expr, "^")
		tasks, err := resolveSelector(root, target)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			if exclude {
				remove(t)
			} else {
				add(t)
			}
		}
	}

	if len(order) == 0 {
		return nil, &NothingSelectedError{Selectors: exprs}
	}
	return order, nil
}
