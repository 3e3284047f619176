package kraken

import "context"

// fakeTask is the minimal Task used across this package's tests: its
// Execute runs a user-supplied function (or just succeeds, if nil),
// recording that it ran.
type fakeTask struct {
	TaskBase
	run    func(ctx context.Context) (TaskStatus, error)
	ran    bool
	ranAt  int
	ticker *int
}

func newFakeTask(name string) *fakeTask {
	return &fakeTask{TaskBase: NewTaskBase(name)}
}

func (f *fakeTask) Execute(ctx context.Context) (TaskStatus, error) {
	f.ran = true
	if f.ticker != nil {
		*f.ticker++
		f.ranAt = *f.ticker
	}
	if f.run != nil {
		return f.run(ctx)
	}
	return Success(), nil
}

// mustAddTask adds task to p and fails the test on error.
func mustAddTask(tb interface{ Fatalf(string, ...any) }, p *Project, task Task) {
	if err := p.AddTask(task); err != nil {
		tb.Fatalf("AddTask(%s): %v", task.Name(), err)
	}
}
