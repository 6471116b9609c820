// Package parallel provides the worker pool and the static vertex
// partitioning used by the advance-and-measure phase of a simulation step.
package parallel

import (
	"runtime"
	"sync"
)

// WorkerPool runs submitted tasks on a fixed set of goroutines. The step loop
// submits one task per vertex range and waits for all of them, so the task
// channel is unbuffered: a Submit hands its task straight to an idle worker.
type WorkerPool struct {
	workers int
	tasks   chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // protects tasks from close during a concurrent send
	closed  bool         // protected by mu
}

// NewWorkerPool starts a pool of the given size. A non-positive count
// defaults to the number of CPUs.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		workers: workers,
		tasks:   make(chan func()),
	}
	for i := 0; i < workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
	return wp
}

// Workers returns the number of workers in the pool.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.tasks {
		task()
	}
}

// Submit hands a task to an idle worker, blocking until one is free.
// Returns false if the pool is closed.
func (wp *WorkerPool) Submit(task func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}

	wp.tasks <- task
	return true
}

// Close shuts down the pool and waits for the workers to drain. Safe to call
// more than once.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.tasks)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}
