package concurrency

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerRampsUpToMax(t *testing.T) {
	t.Parallel()

	var live int64
	runVU := func(ctx context.Context) {
		atomic.AddInt64(&live, 1)
		defer atomic.AddInt64(&live, -1)
		<-ctx.Done()
	}

	c := New(NewLinearRamp(200*time.Millisecond), 2, 10, runVU)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return c.Active() == 10
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&live) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestControllerReportsInterruptedOnStop(t *testing.T) {
	t.Parallel()

	runVU := func(ctx context.Context) { <-ctx.Done() }
	c := New(NewLinearRamp(0), 5, 5, runVU)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return c.Active() == 5 }, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	assert.EqualValues(t, 5, c.Interrupted())
	assert.Equal(t, 0, c.Active())
}

func TestControllerStepRampDown(t *testing.T) {
	t.Parallel()

	runVU := func(ctx context.Context) { <-ctx.Done() }
	c := New(NewStepRamp(10, 1), 10, 10, runVU)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	c.Run(ctx)

	assert.Equal(t, 0, c.Active())
}
