package concurrency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vajraedge/vajraedge/pkg/metrics"
	"github.com/vajraedge/vajraedge/pkg/ratecontrol"
	"github.com/vajraedge/vajraedge/pkg/task"
)

func TestVirtualUserLoopRecordsResults(t *testing.T) {
	t.Parallel()

	engine := metrics.NewEngine(5, nil)
	factory := func(params map[string]string) (task.Task, error) {
		return taskFunc(func(context.Context) task.Result {
			return task.Result{Success: true, LatencyNanos: 1}
		}), nil
	}

	loop := NewVirtualUserLoop(factory, nil, engine, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	loop(ctx)

	snap := engine.Snapshot()
	assert.Greater(t, snap.Total, int64(0))
	assert.Zero(t, snap.ActiveTasks)
}

func TestVirtualUserLoopStopsOnFactoryError(t *testing.T) {
	t.Parallel()

	engine := metrics.NewEngine(5, nil)
	calls := 0
	factory := func(params map[string]string) (task.Task, error) {
		calls++
		return nil, assertErr{}
	}

	loop := NewVirtualUserLoop(factory, nil, engine, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	loop(ctx)

	assert.Equal(t, 1, calls)
}

func TestVirtualUserLoopGatedByRateController(t *testing.T) {
	t.Parallel()

	engine := metrics.NewEngine(5, nil)
	limiter := ratecontrol.New(10, 0, 0)
	factory := func(params map[string]string) (task.Task, error) {
		return taskFunc(func(context.Context) task.Result {
			return task.Result{Success: true}
		}), nil
	}

	loop := NewVirtualUserLoop(factory, nil, engine, limiter)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	loop(ctx)

	snap := engine.Snapshot()
	require.Greater(t, snap.Total, int64(0))
	assert.LessOrEqual(t, snap.Total, int64(10))
}

type taskFunc func(ctx context.Context) task.Result

func (f taskFunc) Execute(ctx context.Context) task.Result { return f(ctx) }

type assertErr struct{}

func (assertErr) Error() string { return "construction failed" }
