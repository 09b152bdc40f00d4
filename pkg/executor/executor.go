// Package executor implements VajraEdge's TaskExecutor (spec §4.4):
// bounded concurrent execution of task.Task values, using the
// lightest available concurrency primitive (goroutines) and a
// semaphore to enforce the configured cap, per spec §4.4's
// implementation requirements. No teacher or pack repo ships a
// reusable bounded-executor type with this exact submit/trySubmit
// shape (see DESIGN.md — `lib/executor` test files show only the
// executor *interface* other k6 executors satisfy, not this kind of
// generic bounded pool), so this is hand-rolled on
// golang.org/x/sync/semaphore, the dependency the teacher's go.mod
// already carries for exactly this purpose.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/vajraedge/vajraedge/pkg/task"
)

// errShuttingDown is returned by Submit once Shutdown has been called.
var errShuttingDown = errors.New("executor: shutting down, not accepting new submissions")

// Executor runs Tasks concurrently, bounded by maxConcurrency.
type Executor struct {
	sem            *semaphore.Weighted
	maxConcurrency int64

	submitted int64
	completed int64
	active    int64

	mu      sync.Mutex
	cancels map[uint64]context.CancelFunc
	nextID  uint64
	wg      sync.WaitGroup

	shutdownOnce sync.Once
	shuttingDown int32
}

// New returns an Executor capped at maxConcurrency concurrently-running
// tasks.
func New(maxConcurrency int64) *Executor {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Executor{
		sem:            semaphore.NewWeighted(maxConcurrency),
		maxConcurrency: maxConcurrency,
		cancels:        make(map[uint64]context.CancelFunc),
	}
}

// Submitted, Completed and Active return the executor's monotonic
// counters. Pending derives `submitted - completed - active`, clamped
// to >= 0 per spec §4.4.
func (e *Executor) Submitted() int64 { return atomic.LoadInt64(&e.submitted) }
func (e *Executor) Completed() int64 { return atomic.LoadInt64(&e.completed) }
func (e *Executor) Active() int64    { return atomic.LoadInt64(&e.active) }

func (e *Executor) Pending() int64 {
	p := atomic.LoadInt64(&e.submitted) - atomic.LoadInt64(&e.completed) - atomic.LoadInt64(&e.active)
	if p < 0 {
		return 0
	}
	return p
}

// Submit acquires a concurrency slot (blocking if the cap is
// saturated, for backpressure) and runs t. It returns a channel that
// receives exactly one Result once t completes. An error is returned
// instead if ctx is cancelled while waiting for a slot, or if the
// executor is shutting down.
func (e *Executor) Submit(ctx context.Context, t task.Task) (<-chan task.Result, error) {
	if atomic.LoadInt32(&e.shuttingDown) == 1 {
		return nil, errShuttingDown
	}
	atomic.AddInt64(&e.submitted, 1)
	if err := e.sem.Acquire(ctx, 1); err != nil {
		atomic.AddInt64(&e.submitted, -1)
		return nil, err
	}
	return e.run(ctx, t), nil
}

// TrySubmit is the non-blocking form of Submit: it returns (nil, false)
// immediately if the cap is currently saturated or the executor is
// shutting down, rather than waiting for a slot.
func (e *Executor) TrySubmit(ctx context.Context, t task.Task) (<-chan task.Result, bool) {
	if atomic.LoadInt32(&e.shuttingDown) == 1 {
		return nil, false
	}
	if !e.sem.TryAcquire(1) {
		return nil, false
	}
	atomic.AddInt64(&e.submitted, 1)
	return e.run(ctx, t), true
}

func (e *Executor) run(ctx context.Context, t task.Task) <-chan task.Result {
	out := make(chan task.Result, 1)
	taskCtx, cancel := context.WithCancel(ctx)

	id := atomic.AddUint64(&e.nextID, 1)
	e.mu.Lock()
	e.cancels[id] = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	atomic.AddInt64(&e.active, 1)

	go func() {
		defer e.wg.Done()
		defer e.sem.Release(1)
		defer cancel()
		defer func() {
			e.mu.Lock()
			delete(e.cancels, id)
			e.mu.Unlock()
		}()
		defer atomic.AddInt64(&e.active, -1)
		defer atomic.AddInt64(&e.completed, 1)
		defer close(out)

		result := e.safeExecute(taskCtx, t)
		out <- result
	}()

	return out
}

// safeExecute runs t.Execute, converting a panic into a failed Result
// rather than crashing the executor — spec §4.4: "Task exceptions are
// caught; the executor converts them into a failure TaskResult
// carrying the error message."
func (e *Executor) safeExecute(ctx context.Context, t task.Task) (result task.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = task.Result{Success: false, ErrorMessage: panicMessage(r)}
		}
	}()
	return t.Execute(ctx)
}

// Shutdown stops accepting new submissions, cancels every active
// task's context, and waits up to gracePeriod for them to finish. Go
// has no mechanism to forcibly kill a goroutine that ignores
// cancellation, so "force-stop" past the grace period means Shutdown
// simply returns — any task still running at that point is abandoned,
// matching spec §5's drain-timeout semantics ("remaining tasks are
// abandoned").
func (e *Executor) Shutdown(gracePeriod time.Duration) {
	e.shutdownOnce.Do(func() {
		atomic.StoreInt32(&e.shuttingDown, 1)

		e.mu.Lock()
		cancels := make([]context.CancelFunc, 0, len(e.cancels))
		for _, cancel := range e.cancels {
			cancels = append(cancels, cancel)
		}
		e.mu.Unlock()
		for _, cancel := range cancels {
			cancel()
		}

		done := make(chan struct{})
		go func() {
			e.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(gracePeriod):
		}
	})
}

func panicMessage(r interface{}) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("task panicked: %v", r)
}
