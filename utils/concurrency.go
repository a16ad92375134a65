package utils

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task is one branch of a fan-out.
type Task[T any] func(ctx context.Context) (T, error)

// All runs every task concurrently and blocks until each one has returned.
// Results come back in task order regardless of completion order.
//
// If any task fails, the shared context is cancelled, All still waits for
// the remaining tasks, and the first error is returned with nil results.
// limit <= 0 means no bound on concurrent tasks.
func All[T any](ctx context.Context, limit int, tasks ...Task[T]) ([]T, error) {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]T, len(tasks))
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			v, err := task(gctx)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// WorkerPool runs independent jobs with bounded concurrency. Unlike All,
// a failing job does not affect the others.
type WorkerPool struct {
	g errgroup.Group
}

// NewWorkerPool creates a WorkerPool running at most maxWorkers jobs at once.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	wp := &WorkerPool{}
	if maxWorkers > 0 {
		wp.g.SetLimit(maxWorkers)
	}
	return wp
}

// Submit enqueues a job for execution in the pool. It blocks while the pool
// is full.
func (wp *WorkerPool) Submit(job func()) {
	wp.g.Go(func() error {
		job()
		return nil
	})
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	_ = wp.g.Wait()
}
