package kraken

import "context"

// GroupTask is a purely structural task: it never runs any work of its
// own, it only groups other tasks together so they can be selected as a
// unit. Selecting a GroupTask is exactly equivalent to selecting all of
// its members directly — at execution graph construction time a
// GroupTask is removed and its own strict dependencies (its members) are
// promoted to direct dependencies of whatever depended on the group.
type GroupTask struct {
	TaskBase
}

// newGroupTask constructs an unbound GroupTask; Project.Group is the
// only intended caller.
func newGroupTask(name string) *GroupTask {
	base := NewTaskBase(name)
	return &GroupTask{TaskBase: base}
}

// AddMember declares that this group depends strictly on task: running
// the group means ensuring task (and everything it in turn requires)
// has run.
func (g *GroupTask) AddMember(task Task) {
	g.DependsOn(task)
}

// Members returns the tasks directly added via AddMember, in the order
// they were added.
func (g *GroupTask) Members() []Task {
	rels := g.Relationships()
	out := make([]Task, 0, len(rels))
	for _, r := range rels {
		if r.Strict && r.Target != nil {
			out = append(out, r.Target)
		}
	}
	return out
}

// Execute does no work: a group's job is done once its members have run,
// which the executor guarantees via the strict dependency promoted from
// this group at graph construction.
func (g *GroupTask) Execute(ctx context.Context) (TaskStatus, error) {
	return SuccessNoop(), nil
}

func isGroupTask(t Task) bool {
	_, ok := t.(*GroupTask)
	return ok
}
