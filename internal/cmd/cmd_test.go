package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/vajraedge/vajraedge/internal/state"
)

// newTestGlobalState returns a state.GlobalState backed by
// state.NewTestState, for subcommand constructors that only need
// flags/logger/IO, not a live process.
func newTestGlobalState(t *testing.T) *state.GlobalState {
	t.Helper()
	return state.NewTestState(t).GlobalState
}

// contextWithTimeout returns a short-lived context for tests exercising
// a goroutine loop that must exit promptly on cancellation.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 50*time.Millisecond)
}
