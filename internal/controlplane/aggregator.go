package controlplane

import (
	"sync"
	"time"

	"github.com/vajraedge/vajraedge/internal/wire"
)

// AggregatedMetrics is the controller-side merged view across a test's
// workers (spec §4.8's Metrics Aggregator).
type AggregatedMetrics struct {
	TestID             string
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	CurrentTps         float64
	ActiveTasks        int64
	Latency            wire.LatencyPercentiles
	Degraded           bool
	LostWorkers        []string
	UpdatedAt          time.Time
}

// Aggregator sums monotonic counters and merges latency percentiles
// across workers reporting into the same testId, grounded on the
// teacher's Stats.Ingest/.End running-aggregate shape
// (aggregate/stats.go, aggregate/duration.go), generalized from a
// single-process channel drain into a concurrent-safe per-worker table.
type Aggregator struct {
	mu        sync.Mutex
	perWorker map[string]map[string]wire.WorkerMetrics
	lost      map[string]map[string]bool
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		perWorker: make(map[string]map[string]wire.WorkerMetrics),
		lost:      make(map[string]map[string]bool),
	}
}

// Ingest records worker frame as its sender's latest contribution to
// its test. Frames from a worker already marked lost for that test are
// ignored, so its contribution stays at its last snapshot.
func (a *Aggregator) Ingest(frame wire.WorkerMetrics) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lost[frame.TestID][frame.WorkerID] {
		return
	}
	if a.perWorker[frame.TestID] == nil {
		a.perWorker[frame.TestID] = make(map[string]wire.WorkerMetrics)
	}
	a.perWorker[frame.TestID][frame.WorkerID] = frame
}

// MarkLost freezes workerID's contribution to testID at its last
// snapshot (spec §4.8: "a worker that goes UNHEALTHY mid-test has its
// contribution frozen at last snapshot; the test continues with
// remaining workers").
func (a *Aggregator) MarkLost(testID, workerID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lost[testID] == nil {
		a.lost[testID] = make(map[string]bool)
	}
	a.lost[testID][workerID] = true
}

// Snapshot merges every known worker's latest frame for testID: it sums
// monotonic counters and current TPS, and merges percentiles via the
// max-of-per-worker approximation documented in DESIGN.md (a true
// weighted-histogram merge needs per-bucket data the wire protocol's
// compact {p50,p95,p99} frame does not carry).
func (a *Aggregator) Snapshot(testID string) AggregatedMetrics {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := AggregatedMetrics{TestID: testID, UpdatedAt: time.Now()}
	for workerID := range a.lost[testID] {
		out.LostWorkers = append(out.LostWorkers, workerID)
	}
	out.Degraded = len(out.LostWorkers) > 0

	for _, frame := range a.perWorker[testID] {
		out.TotalRequests += frame.TotalRequests
		out.SuccessfulRequests += frame.SuccessfulRequests
		out.FailedRequests += frame.FailedRequests
		out.CurrentTps += frame.CurrentTps
		out.ActiveTasks += frame.ActiveTasks
		out.Latency.P50Ms = max(out.Latency.P50Ms, frame.Latency.P50Ms)
		out.Latency.P95Ms = max(out.Latency.P95Ms, frame.Latency.P95Ms)
		out.Latency.P99Ms = max(out.Latency.P99Ms, frame.Latency.P99Ms)
	}
	return out
}

// HealthyWorkerCount returns how many workers have contributed a frame
// to testID and are not marked lost. A test becomes FAILED only when
// this reaches zero (spec §4.8).
func (a *Aggregator) HealthyWorkerCount(testID string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	count := 0
	for workerID := range a.perWorker[testID] {
		if !a.lost[testID][workerID] {
			count++
		}
	}
	return count
}
