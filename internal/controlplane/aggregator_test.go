package controlplane

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vajraedge/vajraedge/internal/wire"
)

func TestAggregatorSumsCounters(t *testing.T) {
	a := NewAggregator()
	a.Ingest(wire.WorkerMetrics{
		WorkerID: "w1", TestID: "t1",
		TotalRequests: 100, SuccessfulRequests: 90, FailedRequests: 10,
		CurrentTps: 50, ActiveTasks: 5,
		Latency: wire.LatencyPercentiles{P50Ms: 10, P95Ms: 40, P99Ms: 80},
	})
	a.Ingest(wire.WorkerMetrics{
		WorkerID: "w2", TestID: "t1",
		TotalRequests: 200, SuccessfulRequests: 180, FailedRequests: 20,
		CurrentTps: 70, ActiveTasks: 8,
		Latency: wire.LatencyPercentiles{P50Ms: 12, P95Ms: 35, P99Ms: 90},
	})

	snap := a.Snapshot("t1")
	assert.Equal(t, int64(300), snap.TotalRequests)
	assert.Equal(t, int64(270), snap.SuccessfulRequests)
	assert.Equal(t, int64(30), snap.FailedRequests)
	assert.InDelta(t, 120, snap.CurrentTps, 0.001)
	assert.Equal(t, int64(13), snap.ActiveTasks)

	// percentile merge is max-of-per-worker.
	assert.Equal(t, 12.0, snap.Latency.P50Ms)
	assert.Equal(t, 40.0, snap.Latency.P95Ms)
	assert.Equal(t, 90.0, snap.Latency.P99Ms)
	assert.False(t, snap.Degraded)
}

func TestAggregatorLatestFrameWins(t *testing.T) {
	a := NewAggregator()
	a.Ingest(wire.WorkerMetrics{WorkerID: "w1", TestID: "t1", TotalRequests: 10})
	a.Ingest(wire.WorkerMetrics{WorkerID: "w1", TestID: "t1", TotalRequests: 50})

	snap := a.Snapshot("t1")
	assert.Equal(t, int64(50), snap.TotalRequests)
}

func TestAggregatorMarkLostSetsDegraded(t *testing.T) {
	a := NewAggregator()
	a.Ingest(wire.WorkerMetrics{WorkerID: "w1", TestID: "t1", TotalRequests: 10})
	a.MarkLost("t1", "w1")

	snap := a.Snapshot("t1")
	assert.True(t, snap.Degraded)
	assert.Equal(t, []string{"w1"}, snap.LostWorkers)
}

func TestHealthyWorkerCountExcludesLost(t *testing.T) {
	a := NewAggregator()
	a.Ingest(wire.WorkerMetrics{WorkerID: "w1", TestID: "t1"})
	a.Ingest(wire.WorkerMetrics{WorkerID: "w2", TestID: "t1"})
	a.MarkLost("t1", "w1")

	assert.Equal(t, 1, a.HealthyWorkerCount("t1"))
}

func TestHealthyWorkerCountUnknownTest(t *testing.T) {
	a := NewAggregator()
	assert.Equal(t, 0, a.HealthyWorkerCount("missing"))
}
