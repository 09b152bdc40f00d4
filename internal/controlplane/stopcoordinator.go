package controlplane

import (
	"sync"

	"github.com/vajraedge/vajraedge/internal/wire"
)

// StopFunc delivers a StopTestRequest to a single worker and returns its
// reply; the caller supplies the transport (for example
// ControllerServer.StopTest wrapped in a closure that binds a ctx; the
// tests pass a fake).
type StopFunc func(workerID string, req wire.StopTestRequest) (wire.StopTestResponse, error)

// StopResult is one worker's outcome from a coordinated stop.
type StopResult struct {
	WorkerID         string
	Stopped          bool
	TasksInterrupted int64
	Err              error
}

// CoordinateStop broadcasts StopTest to every worker in workerIDs
// concurrently and returns once every call has returned; there is no
// timeout of its own, so a StopFunc that never returns holds it up.
// AllAcknowledged then tells whether every worker acknowledged.
// A transport error for one worker does not block the others'.
func CoordinateStop(workerIDs []string, testID string, graceful bool, stop StopFunc) []StopResult {
	results := make([]StopResult, len(workerIDs))
	var wg sync.WaitGroup
	wg.Add(len(workerIDs))
	for i, id := range workerIDs {
		go func(i int, workerID string) {
			defer wg.Done()
			resp, err := stop(workerID, wire.StopTestRequest{TestID: testID, Graceful: graceful})
			if err != nil {
				results[i] = StopResult{WorkerID: workerID, Err: err}
				return
			}
			results[i] = StopResult{
				WorkerID:         workerID,
				Stopped:          resp.Stopped,
				TasksInterrupted: resp.TasksInterrupted,
			}
		}(i, id)
	}
	wg.Wait()
	return results
}

// AllAcknowledged reports whether every result succeeded and reported
// Stopped, with no transport errors.
func AllAcknowledged(results []StopResult) bool {
	for _, r := range results {
		if r.Err != nil || !r.Stopped {
			return false
		}
	}
	return true
}
