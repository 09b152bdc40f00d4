package controlplane

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vajraedge/vajraedge/internal/wire"
)

func TestCoordinateStopAllAcknowledge(t *testing.T) {
	stop := func(workerID string, req wire.StopTestRequest) (wire.StopTestResponse, error) {
		return wire.StopTestResponse{Stopped: true, TasksInterrupted: 3}, nil
	}
	results := CoordinateStop([]string{"w1", "w2"}, "t1", true, stop)
	assert.Len(t, results, 2)
	assert.True(t, AllAcknowledged(results))
}

func TestCoordinateStopPartialFailureNotAllAcknowledged(t *testing.T) {
	stop := func(workerID string, req wire.StopTestRequest) (wire.StopTestResponse, error) {
		if workerID == "w2" {
			return wire.StopTestResponse{}, errors.New("unreachable")
		}
		return wire.StopTestResponse{Stopped: true}, nil
	}
	results := CoordinateStop([]string{"w1", "w2"}, "t1", false, stop)
	assert.False(t, AllAcknowledged(results))

	var sawErr bool
	for _, r := range results {
		if r.WorkerID == "w2" {
			sawErr = r.Err != nil
		}
	}
	assert.True(t, sawErr)
}

func TestCoordinateStopEmptyWorkerList(t *testing.T) {
	results := CoordinateStop(nil, "t1", true, func(string, wire.StopTestRequest) (wire.StopTestResponse, error) {
		t.Fatal("stop should not be called")
		return wire.StopTestResponse{}, nil
	})
	assert.Empty(t, results)
	assert.True(t, AllAcknowledged(results))
}

func TestCoordinateStopNotStoppedIsUnacknowledged(t *testing.T) {
	stop := func(workerID string, req wire.StopTestRequest) (wire.StopTestResponse, error) {
		return wire.StopTestResponse{Stopped: false, Message: "still draining"}, nil
	}
	results := CoordinateStop([]string{"w1"}, "t1", true, stop)
	assert.False(t, AllAcknowledged(results))
}
