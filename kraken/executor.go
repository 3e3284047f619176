package kraken

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tetigi/kraken-core/internal/diag"
	"github.com/tetigi/kraken-core/internal/taskgraph"
)

// ExecuteOptions controls how a selected task graph is run.
type ExecuteOptions struct {
	// KeepGoing, if true, runs every task whose strict dependencies
	// allow it even after some other task has failed, instead of
	// stopping at the first failure.
	KeepGoing bool

	// Parallelism is the maximum number of tasks the executor will run
	// at once. Values less than 2 run strictly sequentially.
	Parallelism int
}

// Result is the outcome of Context.Execute: every task that was either
// run or skipped, keyed by its path, and the order in which they
// settled (ran to completion or were decided as skipped).
type Result struct {
	Statuses map[string]TaskStatus
	Order    []string
}

// scheduler implements the readiness-propagation algorithm shared by the
// sequential and bounded-parallel executors: a task becomes eligible to
// run once every strict predecessor has reached a Satisfied status and
// every optional predecessor has reached any terminal status; a task
// whose strict predecessor Failed is immediately decided as Skipped
// instead of ever being dispatched.
type scheduler struct {
	mu sync.Mutex

	g         *taskgraph.Graph[Task]
	keepGoing bool

	statuses map[Task]TaskStatus
	order    []Task

	remainingStrict    map[Task]int
	remainingOptional  map[Task]int
	failedStrictPred   map[Task]bool
	successorsStrict   map[Task][]Task
	successorsOptional map[Task][]Task
}

func newScheduler(g *taskgraph.Graph[Task], keepGoing bool) *scheduler {
	sch := &scheduler{
		g:                   g,
		keepGoing:           keepGoing,
		statuses:            make(map[Task]TaskStatus),
		remainingStrict:     make(map[Task]int),
		remainingOptional:   make(map[Task]int),
		failedStrictPred:    make(map[Task]bool),
		successorsStrict:    make(map[Task][]Task),
		successorsOptional:  make(map[Task][]Task),
	}
	for _, t := range g.Nodes() {
		sch.remainingStrict[t] = len(g.StrictDependencies(t))
		sch.remainingOptional[t] = len(g.OptionalDependencies(t))
		for _, dep := range g.StrictDependencies(t) {
			sch.successorsStrict[dep] = append(sch.successorsStrict[dep], t)
		}
		for _, dep := range g.OptionalDependencies(t) {
			sch.successorsOptional[dep] = append(sch.successorsOptional[dep], t)
		}
	}
	return sch
}

// initialReady returns every task with no predecessors at all, the
// starting frontier for the readiness loop.
func (sch *scheduler) initialReady() []Task {
	sch.mu.Lock()
	defer sch.mu.Unlock()
	var ready []Task
	for _, t := range sch.g.Nodes() {
		ready = append(ready, sch.settleLocked(t)...)
	}
	return ready
}

// complete records t's outcome and returns the tasks that newly became
// ready (or, transitively, that were themselves just decided as
// Skipped and so freed up their own successors) as a result.
func (sch *scheduler) complete(t Task, status TaskStatus) []Task {
	sch.mu.Lock()
	defer sch.mu.Unlock()
	return sch.completeLocked(t, status)
}

func (sch *scheduler) completeLocked(t Task, status TaskStatus) []Task {
	if _, already := sch.statuses[t]; already {
		return nil
	}
	sch.statuses[t] = status
	sch.order = append(sch.order, t)

	var newlyReady []Task
	for _, succ := range sch.successorsStrict[t] {
		sch.remainingStrict[succ]--
		if status.Kind == Failed {
			sch.failedStrictPred[succ] = true
		}
		newlyReady = append(newlyReady, sch.settleLocked(succ)...)
	}
	for _, succ := range sch.successorsOptional[t] {
		sch.remainingOptional[succ]--
		newlyReady = append(newlyReady, sch.settleLocked(succ)...)
	}
	return newlyReady
}

// settleLocked, called with mu held, decides t if it has no outstanding
// predecessors left: either it is immediately Skipped (a strict
// predecessor Failed, cascading via completeLocked) or it is returned as
// a task now ready to actually run.
func (sch *scheduler) settleLocked(t Task) []Task {
	if _, already := sch.statuses[t]; already {
		return nil
	}
	if sch.remainingStrict[t] > 0 || sch.remainingOptional[t] > 0 {
		return nil
	}
	if sch.failedStrictPred[t] {
		return sch.completeLocked(t, SkippedBecause("a strict dependency failed"))
	}
	return []Task{t}
}

func (sch *scheduler) result() *Result {
	sch.mu.Lock()
	defer sch.mu.Unlock()
	out := &Result{Statuses: make(map[string]TaskStatus, len(sch.statuses))}
	for _, t := range sch.order {
		path := t.Base().Path()
		out.Statuses[path] = sch.statuses[t]
		out.Order = append(out.Order, path)
	}
	return out
}

// runTask executes t, translating a returned error into a Failed status
// wrapping a TaskExecutionFailedError, and treating a returned Started
// status with no error as Succeeded.
func runTask(ctx context.Context, t Task) TaskStatus {
	base := t.Base()
	base.setExecuting(true)
	status, err := t.Execute(ctx)
	base.setExecuting(false)
	if err != nil {
		return Failure(&TaskExecutionFailedError{TaskPath: base.Path(), Err: err})
	}
	if status.Kind == Started {
		return Success()
	}
	return status
}

// runGraph executes g to completion under opts and returns the result
// and, if any task failed, an aggregated error (every failure if
// KeepGoing; otherwise the first failure plus, in parallel mode, the
// failures of any tasks that were already running when it happened).
func runGraph(ctx context.Context, g *taskgraph.Graph[Task], opts ExecuteOptions) (*Result, error) {
	sch := newScheduler(g, opts.KeepGoing)
	ready := sch.initialReady()

	var aggErr error
	if opts.Parallelism <= 1 {
		aggErr = runSequential(ctx, sch, ready)
	} else {
		aggErr = runParallel(ctx, sch, ready, opts.Parallelism)
	}
	return sch.result(), aggErr
}

func runSequential(ctx context.Context, sch *scheduler, ready []Task) error {
	var aggErr error
	aborted := false
	for len(ready) > 0 {
		t := ready[0]
		ready = ready[1:]

		var status TaskStatus
		if aborted {
			status = SkippedBecause("execution stopped after an earlier failure")
		} else {
			status = runTask(ctx, t)
		}
		if status.Kind == Failed {
			aggErr = diag.Append(aggErr, status.Err)
			if !sch.keepGoing {
				aborted = true
			}
		}
		ready = append(ready, sch.complete(t, status)...)
	}
	return aggErr
}

func runParallel(ctx context.Context, sch *scheduler, initial []Task, limit int) error {
	// The channel's capacity is an upper bound on how many times a task
	// can ever be pushed onto it: exactly once each, guarded by
	// completeLocked's "already" check, across every node in the graph.
	queue := make(chan Task, len(sch.g.Nodes())+1)

	var pushWG sync.WaitGroup
	var mu sync.Mutex
	var aggErr error
	aborted := false

	push := func(tasks []Task) {
		for _, t := range tasks {
			pushWG.Add(1)
			queue <- t
		}
	}
	push(initial)

	var eg errgroup.Group
	eg.SetLimit(limit)
	for i := 0; i < limit; i++ {
		eg.Go(func() error {
			for t := range queue {
				mu.Lock()
				ab := aborted
				mu.Unlock()

				var status TaskStatus
				if ab {
					status = SkippedBecause("execution stopped after an earlier failure")
				} else {
					status = runTask(ctx, t)
				}
				if status.Kind == Failed {
					mu.Lock()
					aggErr = diag.Append(aggErr, status.Err)
					if !sch.keepGoing {
						aborted = true
					}
					mu.Unlock()
				}
				push(sch.complete(t, status))
				pushWG.Done()
			}
			return nil
		})
	}

	go func() {
		pushWG.Wait()
		close(queue)
	}()

	_ = eg.Wait()
	return aggErr
}
