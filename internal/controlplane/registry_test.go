package controlplane

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterWorkerAccepted(t *testing.T) {
	r := NewWorkerRegistry()
	reg := r.RegisterWorker("w1", "10.0.0.1:9000", []string{"http-get"}, 100)
	assert.True(t, reg.Accepted)
	assert.Equal(t, 5, reg.HeartbeatIntervalSeconds)

	w, ok := r.Get("w1")
	require.True(t, ok)
	assert.Equal(t, WorkerRegistered, w.Status)
	assert.True(t, w.Capabilities["http-get"])
}

func TestRegisterWorkerRejectsDuplicateHealthy(t *testing.T) {
	r := NewWorkerRegistry()
	r.RegisterWorker("w1", "addr", nil, 10)
	reg := r.RegisterWorker("w1", "addr", nil, 10)
	assert.False(t, reg.Accepted)
}

func TestRegisterWorkerAllowsReRegisterAfterUnhealthy(t *testing.T) {
	r := NewWorkerRegistry()
	r.RegisterWorker("w1", "addr", nil, 10)
	r.workers["w1"].Status = WorkerUnhealthy

	reg := r.RegisterWorker("w1", "addr", nil, 10)
	assert.True(t, reg.Accepted)
}

func TestHeartbeatUnknownWorker(t *testing.T) {
	r := NewWorkerRegistry()
	healthy, _ := r.Heartbeat("ghost", 0)
	assert.False(t, healthy)
}

func TestHeartbeatUpdatesLoadAndStatus(t *testing.T) {
	r := NewWorkerRegistry()
	r.RegisterWorker("w1", "addr", nil, 10)

	healthy, _ := r.Heartbeat("w1", 4)
	assert.True(t, healthy)

	w, _ := r.Get("w1")
	assert.Equal(t, WorkerRunning, w.Status)
	assert.Equal(t, 4, w.CurrentLoad)
}

func TestSweepHealthTransitions(t *testing.T) {
	r := NewWorkerRegistry()
	r.RegisterWorker("w1", "addr", nil, 10)
	r.Heartbeat("w1", 0)

	now := time.Now()
	unhealthy, evicted := r.SweepHealth(now.Add(3 * defaultHeartbeatInterval))
	assert.Equal(t, []string{"w1"}, unhealthy)
	assert.Empty(t, evicted)

	unhealthy, evicted = r.SweepHealth(now.Add(6 * defaultHeartbeatInterval))
	assert.Empty(t, unhealthy)
	assert.Equal(t, []string{"w1"}, evicted)

	w, _ := r.Get("w1")
	assert.Equal(t, WorkerEvicted, w.Status)
}

func TestHealthyFiltersEvictedAndUnhealthy(t *testing.T) {
	r := NewWorkerRegistry()
	r.RegisterWorker("w1", "addr", nil, 10)
	r.RegisterWorker("w2", "addr", nil, 10)
	r.workers["w2"].Status = WorkerUnhealthy

	healthy := r.Healthy()
	require.Len(t, healthy, 1)
	assert.Equal(t, "w1", healthy[0].WorkerID)
}
