// Package async provides helpers for running backend calls concurrently.
//
// RunParallel runs every task to completion and reports all failures.
// Collect returns every result or the first error.
package async

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel executes all tasks concurrently and waits for every one of them.
// Failures are joined and each is prefixed with its task name.
//
// Example:
//
//	tasks := []Task{
//	    {Name: "web-1", Func: stopWeb1},
//	    {Name: "web-2", Func: stopWeb2},
//	}
//	if err := RunParallel(ctx, tasks); err != nil {
//	    return err
//	}
func RunParallel(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	type result struct {
		name string
		err  error
	}

	resultChan := make(chan result, len(tasks))

	for _, task := range tasks {
		go func() {
			resultChan <- result{name: task.Name, err: task.Func(ctx)}
		}()
	}

	var errs []error
	for range len(tasks) {
		res := <-resultChan
		if res.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.name, res.err))
		}
	}

	return errors.Join(errs...)
}

// Collect runs fns concurrently and returns their results in argument order.
// If any call fails the first error is returned and no results are.
func Collect[T any](ctx context.Context, fns ...func(context.Context) (T, error)) ([]T, error) {
	results := make([]T, len(fns))
	g, gctx := errgroup.WithContext(ctx)
	for i, fn := range fns {
		g.Go(func() error {
			v, err := fn(gctx)
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
