package cmd

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/vajraedge/vajraedge/internal/controlplane"
)

func TestNewControllerCmdDefaultFlags(t *testing.T) {
	gs := newTestGlobalState(t)
	cmd := newControllerCmd(gs)

	addr, err := cmd.Flags().GetString("rest-address")
	assert.NoError(t, err)
	assert.Equal(t, "localhost:6565", addr)

	workerAddr, err := cmd.Flags().GetString("worker-address")
	assert.NoError(t, err)
	assert.Equal(t, "localhost:6566", workerAddr)
}

func TestSweepWorkerHealthExitsOnCancel(t *testing.T) {
	registry := controlplane.NewWorkerRegistry()
	registry.RegisterWorker("w1", "127.0.0.1", []string{"http"}, 10)
	logger, _ := test.NewNullLogger()

	ctx, cancel := contextWithTimeout()
	defer cancel()

	done := make(chan struct{})
	go func() {
		sweepWorkerHealth(ctx, registry, logger)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweepWorkerHealth did not return promptly after context cancellation")
	}
}
