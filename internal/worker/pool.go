// Package worker runs independent analysis tasks concurrently. Outcomes
// come back in submission order regardless of which worker finished first,
// so a concurrent run produces the same report as a serial one.
package worker

import (
	"context"
	"sync"

	"github.com/epilectrik/voynich-sub016/internal/model"
)

// Task is one independent unit of statistical analysis.
type Task interface {
	Name() string
	Run(ctx context.Context) (model.TestResult, error)
}

// Outcome pairs a task's result with its name. A task error is recorded,
// not fatal: one undersized stratum must not sink the rest of the battery.
type Outcome struct {
	Name   string
	Result model.TestResult
	Err    error
}

// Pool executes task batteries over a fixed number of workers.
type Pool struct {
	workers int
}

// NewPool creates a pool. Worker counts below one are clamped to one.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Run executes every task and returns outcomes in task order. Cancelling
// the context stops dispatch; tasks already running finish.
func (p *Pool) Run(ctx context.Context, tasks []Task) []Outcome {
	outcomes := make([]Outcome, len(tasks))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				t := tasks[i]
				res, err := t.Run(ctx)
				outcomes[i] = Outcome{Name: t.Name(), Result: res, Err: err}
			}
		}()
	}

	dispatched := len(tasks)
	for i := range tasks {
		select {
		case <-ctx.Done():
			dispatched = i
		case jobs <- i:
			continue
		}
		break
	}
	close(jobs)
	wg.Wait()

	for j := dispatched; j < len(tasks); j++ {
		outcomes[j] = Outcome{Name: tasks[j].Name(), Err: ctx.Err()}
	}
	return outcomes
}

// TaskFunc adapts a named function to the Task interface.
type TaskFunc struct {
	TaskName string
	Fn       func(ctx context.Context) (model.TestResult, error)
}

func (t TaskFunc) Name() string { return t.TaskName }

func (t TaskFunc) Run(ctx context.Context) (model.TestResult, error) {
	return t.Fn(ctx)
}
