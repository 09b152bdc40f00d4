// Package workeragent implements VajraEdge's WorkerAgent (spec §4.9): it
// registers with the controller, answers AssignTask/StopTest calls by
// running a local pkg/testrunner.Runner, and streams metrics back over
// a persistent internal/wire connection. Grounded on the teacher's own
// controller-facing client (client/client.go), adapted from bare HTTP
// request/response calls to envelopes dispatched over a websocket
// duplex connection, since the wire protocol replaces the teacher's
// REST-polling model with push-based registration and heartbeats.
package workeragent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vajraedge/vajraedge/internal/wire"
	"github.com/vajraedge/vajraedge/pkg/config"
	"github.com/vajraedge/vajraedge/pkg/task"
	"github.com/vajraedge/vajraedge/pkg/testrunner"
)

// runningTest tracks one test this agent is currently executing.
type runningTest struct {
	runner *testrunner.Runner
	cancel context.CancelFunc
}

// Agent is one worker process's controller-facing half: identity,
// capability set, and the set of tests it is currently running.
type Agent struct {
	workerID    string
	hostname    string
	maxCapacity int
	version     string

	registry *task.Registry
	resolver CredentialResolver
	conn     *wire.Conn
	logger   logrus.FieldLogger

	heartbeatInterval time.Duration
	metricsInterval   time.Duration

	mu    sync.Mutex
	tests map[string]*runningTest
}

// Option configures an Agent at construction.
type Option func(*Agent)

// WithCredentialResolver overrides the default EnvCredentialResolver.
func WithCredentialResolver(r CredentialResolver) Option {
	return func(a *Agent) { a.resolver = r }
}

// New returns an Agent bound to conn, ready to Register and Serve.
func New(workerID, hostname string, maxCapacity int, registry *task.Registry, conn *wire.Conn, logger logrus.FieldLogger, opts ...Option) *Agent {
	a := &Agent{
		workerID:          workerID,
		hostname:          hostname,
		maxCapacity:       maxCapacity,
		version:           "vajraedge/1",
		registry:          registry,
		resolver:          EnvCredentialResolver{},
		conn:              conn,
		logger:            logger,
		heartbeatInterval: 5 * time.Second,
		metricsInterval:   5 * time.Second,
		tests:             make(map[string]*runningTest),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register sends RegisterWorkerRequest and adopts the controller's
// heartbeat/metrics interval reply.
func (a *Agent) Register(ctx context.Context) error {
	req := wire.RegisterWorkerRequest{
		WorkerID:           a.workerID,
		Hostname:           a.hostname,
		MaxCapacity:        a.maxCapacity,
		SupportedTaskTypes: a.registry.TaskTypes(),
		Version:            a.version,
	}
	if err := a.conn.Send(wire.New(wire.TypeRegisterWorker).With(req)); err != nil {
		return fmt.Errorf("workeragent: send registration: %w", err)
	}

	env, err := a.conn.Recv()
	if err != nil {
		return fmt.Errorf("workeragent: await registration ack: %w", err)
	}
	var resp wire.RegisterWorkerResponse
	if err := env.Take(&resp); err != nil {
		return fmt.Errorf("workeragent: decode registration ack: %w", err)
	}
	if !resp.Accepted {
		return fmt.Errorf("workeragent: registration rejected: %s", resp.Message)
	}
	if resp.HeartbeatIntervalSeconds > 0 {
		a.heartbeatInterval = time.Duration(resp.HeartbeatIntervalSeconds) * time.Second
	}
	if resp.MetricsIntervalSeconds > 0 {
		a.metricsInterval = time.Duration(resp.MetricsIntervalSeconds) * time.Second
	}
	a.logger.WithField("workerId", a.workerID).Info("registered with controller")
	return nil
}

// Dispatcher builds the envelope router Serve loops on: AssignTask and
// StopTest calls reach the agent's handlers, and the agent additionally
// drives its own heartbeat and metrics-push timers independent of any
// inbound envelope.
func (a *Agent) Dispatcher() *wire.Dispatcher {
	d := wire.NewDispatcher()
	d.On(wire.TypeAssignTask, a.handleAssignTask)
	d.On(wire.TypeStopTest, a.handleStopTest)
	return d
}

// Run registers, then drives the dispatcher-serve loop, heartbeat timer,
// and metrics-push timer concurrently until ctx is cancelled or the
// connection errors.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.Register(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Dispatcher().Serve(ctx, a.conn)
	}()
	go a.heartbeatLoop(ctx)
	go a.metricsLoop(ctx)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (a *Agent) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(a.heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			req := wire.HeartbeatRequest{
				WorkerID:    a.workerID,
				CurrentLoad: a.currentLoad(),
				TimestampMs: time.Now().UnixMilli(),
				Status:      "RUNNING",
			}
			if err := a.conn.Send(wire.New(wire.TypeHeartbeat).With(req)); err != nil {
				a.logger.WithError(err).Warn("heartbeat send failed")
			}
		}
	}
}

// currentLoad is the sum of active tasks across every test this agent
// is running, the worker-side half of the capacity the registry tracks
// (spec §4.8's per-worker MaxCapacity/CurrentLoad pair).
func (a *Agent) currentLoad() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	load := 0
	for _, rt := range a.tests {
		load += int(rt.runner.Engine().Snapshot().ActiveTasks)
	}
	return load
}
