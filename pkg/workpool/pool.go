package workpool

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures a pool run.
type Options struct {
	// Workers is the number of parallel workers. Values <= 0 default to
	// the available parallelism. The pool never starts more workers than
	// there are tasks.
	Workers int

	// Pacing is how long each worker sleeps after completing a task,
	// bounding the aggregate request rate against an upstream to roughly
	// Workers per Pacing interval. Zero disables pacing.
	Pacing time.Duration
}

// Counter counts completed tasks across workers.
type Counter struct {
	n atomic.Int64
}

// Done records one completed task and returns the new total.
func (c *Counter) Done() int {
	return int(c.n.Add(1))
}

// Count returns the current total.
func (c *Counter) Count() int {
	return int(c.n.Load())
}

// WorkerCount clamps the configured worker count to the task count, with a
// default of the available parallelism. It returns 0 only for zero tasks.
func WorkerCount(configured, tasks int) int {
	if tasks == 0 {
		return 0
	}
	n := configured
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > tasks {
		n = tasks
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Process runs fn over every task using a bounded pool of workers and
// returns the collected results. All tasks are queued before the first
// worker starts, each task is delivered to exactly one worker, and Process
// returns only after all workers have exited.
//
// Cancelling ctx stops workers from picking up further tasks; tasks already
// popped still run to completion, and their results are included.
func Process[T, R any](ctx context.Context, tasks []T, opts Options, fn func(context.Context, T) R) []R {
	if len(tasks) == 0 {
		return nil
	}

	var queue Queue[T]
	for _, t := range tasks {
		queue.Push(t)
	}

	var results Queue[R]
	workers := WorkerCount(opts.Workers, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				task, ok := queue.TryPop()
				if !ok {
					return
				}
				results.Push(fn(ctx, task))

				if opts.Pacing > 0 {
					select {
					case <-ctx.Done():
						return
					case <-time.After(opts.Pacing):
					}
				}
			}
		}()
	}
	wg.Wait()

	out := make([]R, 0, results.Len())
	for {
		r, ok := results.TryPop()
		if !ok {
			return out
		}
		out = append(out, r)
	}
}
