// Package scheduler runs an ordered queue of tasks with a fixed concurrency
// ceiling, handing each outcome to a single result handler as it completes.
package scheduler

import (
	"context"
	"sync"
)

// Task is one unit of schedulable work.
type Task[T any] func(ctx context.Context) (T, error)

// Result carries one task's outcome together with its position in the
// submission queue. Index is for logging only; results arrive in completion
// order, not submission order.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Run executes tasks with at most limit in flight, invoking handle once per
// task from a single goroutine. A task's failure never cancels its siblings;
// the handler sees the error and decides what to do with it. Run returns once
// every task has been handled.
func Run[T any](ctx context.Context, tasks []Task[T], limit int, handle func(Result[T])) {
	if len(tasks) == 0 {
		return
	}
	if limit < 1 {
		limit = 1
	}
	if limit > len(tasks) {
		limit = len(tasks)
	}

	type job struct {
		index int
		task  Task[T]
	}

	jobs := make(chan job)
	results := make(chan Result[T])

	var wg sync.WaitGroup
	wg.Add(limit)
	for w := 0; w < limit; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				value, err := j.task(ctx)
				results <- Result[T]{Index: j.index, Value: value, Err: err}
			}
		}()
	}

	go func() {
		for i, t := range tasks {
			jobs <- job{index: i, task: t}
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	for r := range results {
		handle(r)
	}
}
