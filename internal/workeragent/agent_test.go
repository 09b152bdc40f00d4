package workeragent

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vajraedge/vajraedge/internal/wire"
	"github.com/vajraedge/vajraedge/pkg/task"
)

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(testDiscard{})
	return l
}

type testDiscard struct{}

func (testDiscard) Write(p []byte) (int, error) { return len(p), nil }

func TestRegisterSendsCapabilitiesAndAdoptsIntervals(t *testing.T) {
	client, server, closeAll := dialPair(t)
	defer closeAll()

	registry := task.NewRegistry()
	registry.Register("http", task.NewHTTPTaskFactory(nil))

	a := New("w1", "host-1", 50, registry, client, discardLogger())

	done := make(chan error, 1)
	go func() { done <- a.Register(context.Background()) }()

	env, err := server.Recv()
	require.NoError(t, err)
	assert.Equal(t, wire.TypeRegisterWorker, env.Type)

	var req wire.RegisterWorkerRequest
	require.NoError(t, env.Take(&req))
	assert.Equal(t, "w1", req.WorkerID)
	assert.Equal(t, []string{"http"}, req.SupportedTaskTypes)

	require.NoError(t, server.Send(wire.New(wire.TypeRegisterWorkerAck).With(wire.RegisterWorkerResponse{
		Accepted:                 true,
		HeartbeatIntervalSeconds: 9,
		MetricsIntervalSeconds:   7,
	})))

	require.NoError(t, <-done)
	assert.Equal(t, 9*time.Second, a.heartbeatInterval)
	assert.Equal(t, 7*time.Second, a.metricsInterval)
}

func TestRegisterRejectedReturnsError(t *testing.T) {
	client, server, closeAll := dialPair(t)
	defer closeAll()

	registry := task.NewRegistry()
	a := New("w1", "host-1", 50, registry, client, discardLogger())

	done := make(chan error, 1)
	go func() { done <- a.Register(context.Background()) }()

	_, err := server.Recv()
	require.NoError(t, err)
	require.NoError(t, server.Send(wire.New(wire.TypeRegisterWorkerAck).With(wire.RegisterWorkerResponse{
		Accepted: false,
		Message:  "workerId already registered and healthy",
	})))

	err = <-done
	require.Error(t, err)
}
