package concurrency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLinearRampConvergence(t *testing.T) {
	t.Parallel()
	r := NewLinearRamp(5 * time.Second)

	assert.Equal(t, 10, r.TargetAt(0, 10, 100))
	assert.InDelta(t, 28, r.TargetAt(1*time.Second, 10, 100), 2)
	assert.InDelta(t, 64, r.TargetAt(3*time.Second, 10, 100), 2)
	assert.Equal(t, 100, r.TargetAt(5*time.Second, 10, 100))
	assert.Equal(t, 100, r.TargetAt(8*time.Second, 10, 100))
}

func TestStepRamp(t *testing.T) {
	t.Parallel()
	r := NewStepRamp(5, 2)

	assert.Equal(t, 10, r.TargetAt(0, 10, 100))
	assert.Equal(t, 15, r.TargetAt(2*time.Second, 10, 100))
	assert.Equal(t, 20, r.TargetAt(4*time.Second, 10, 100))
	assert.Equal(t, 100, r.TargetAt(200*time.Second, 10, 100))
}

func TestRampZeroDurationDoesNotDivideByZero(t *testing.T) {
	t.Parallel()
	r := NewLinearRamp(0)
	assert.NotPanics(t, func() {
		assert.Equal(t, 100, r.TargetAt(time.Second, 10, 100))
	})
}

func TestStepRampZeroIntervalFallsBackToMax(t *testing.T) {
	t.Parallel()
	r := NewStepRamp(5, 0)
	assert.Equal(t, 100, r.TargetAt(0, 10, 100))
}
