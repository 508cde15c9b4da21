// Package worker renders animation frames on a bounded pool of goroutines.
package worker

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Generator renders one frame and reports where it went.
// This matches the signature of pipeline.Generator.Generate.
type Generator interface {
	Generate(ctx context.Context, index int, force bool) (path string, err error)
}

// Task is a single frame to render.
type Task struct {
	Index int
	Force bool
}

// Result is the outcome of a frame task.
type Result struct {
	Task    Task
	Path    string
	Err     error
	Elapsed time.Duration
}

// Tasks returns one task per frame index in [0, n).
func Tasks(n int, force bool) []Task {
	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = Task{Index: i, Force: force}
	}
	return tasks
}

// ProgressFunc is called after each task completes.
type ProgressFunc func(completed, total, failed int)

// Config configures the worker pool.
type Config struct {
	Workers    int
	Generator  Generator
	OnProgress ProgressFunc
}

// Pool manages parallel frame rendering.
type Pool struct {
	workers    int
	generator  Generator
	onProgress ProgressFunc
}

// New creates a new worker pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:    workers,
		generator:  cfg.Generator,
		onProgress: cfg.OnProgress,
	}
}

// Run executes all tasks and returns results ordered by frame index.
// Tasks are processed in parallel by the configured number of workers.
// The function blocks until all tasks complete or the context is cancelled;
// tasks never handed to a worker are reported with the context error.
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	// Create channels
	taskCh := make(chan Task, len(tasks))
	resultCh := make(chan Result, len(tasks))

	// Track progress
	var (
		completed int
		failed    int
		mu        sync.Mutex
	)

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, taskCh, resultCh)
		}()
	}

	// Feed tasks
	go func() {
		defer close(taskCh)
		for i, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				for _, skipped := range tasks[i:] {
					resultCh <- Result{Task: skipped, Err: ctx.Err()}
				}
				return
			}
		}
	}()

	// Collect results in a separate goroutine
	results := make([]Result, 0, len(tasks))
	done := make(chan struct{})

	go func() {
		for result := range resultCh {
			results = append(results, result)

			// Update progress
			mu.Lock()
			completed++
			if result.Err != nil {
				failed++
			}
			c, f := completed, failed
			mu.Unlock()

			if p.onProgress != nil {
				p.onProgress(c, len(tasks), f)
			}
		}
		close(done)
	}()

	// Wait for workers to finish
	wg.Wait()
	close(resultCh)

	// Wait for result collection to finish
	<-done

	sort.Slice(results, func(i, j int) bool {
		return results[i].Task.Index < results[j].Task.Index
	})
	return results
}

// worker processes tasks from the task channel and sends results to the result channel.
func (p *Pool) worker(ctx context.Context, tasks <-chan Task, results chan<- Result) {
	for task := range tasks {
		select {
		case <-ctx.Done():
			// Send cancellation result
			results <- Result{
				Task: task,
				Err:  ctx.Err(),
			}
			continue
		default:
		}

		start := time.Now()
		path, err := p.generator.Generate(ctx, task.Index, task.Force)
		elapsed := time.Since(start)

		results <- Result{
			Task:    task,
			Path:    path,
			Err:     err,
			Elapsed: elapsed,
		}
	}
}
