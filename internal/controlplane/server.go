package controlplane

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vajraedge/vajraedge/internal/wire"
)

// ControllerServer is the controller process's worker-facing half: it
// accepts one wire.Conn per worker, runs the RegisterWorker handshake,
// then serves Heartbeat and MetricsPush off that connection for as long
// as it stays open, while letting the REST-facing side of the
// controller drive AssignTask/StopTest calls through the Session it
// hands back.
type ControllerServer struct {
	Registry   *WorkerRegistry
	Aggregator *Aggregator
	Logger     logrus.FieldLogger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewControllerServer wires a ControllerServer to registry and
// aggregator, which the REST-facing side of the controller also holds.
func NewControllerServer(registry *WorkerRegistry, aggregator *Aggregator, logger logrus.FieldLogger) *ControllerServer {
	return &ControllerServer{
		Registry:   registry,
		Aggregator: aggregator,
		Logger:     logger,
		sessions:   make(map[string]*Session),
	}
}

// HandleConn runs one worker connection end to end: the registration
// handshake, then a read loop that answers Heartbeat/MetricsPush inline
// and routes AssignTask/StopTest acks to whichever Session.Call is
// waiting on them. It blocks until the connection errors or ctx is
// cancelled, and always cleans up the session it registered.
func (cs *ControllerServer) HandleConn(ctx context.Context, conn *wire.Conn) error {
	env, err := conn.Recv()
	if err != nil {
		return fmt.Errorf("controlplane: await registration: %w", err)
	}
	if env.Type != wire.TypeRegisterWorker {
		return fmt.Errorf("controlplane: expected %s, got %s", wire.TypeRegisterWorker, env.Type)
	}
	var req wire.RegisterWorkerRequest
	if err := env.Take(&req); err != nil {
		return fmt.Errorf("controlplane: decode registration: %w", err)
	}

	reg := cs.Registry.RegisterWorker(req.WorkerID, req.Hostname, req.SupportedTaskTypes, req.MaxCapacity)
	ack := wire.New(wire.TypeRegisterWorkerAck).With(wire.RegisterWorkerResponse{
		Accepted:                 reg.Accepted,
		Message:                  reg.Message,
		HeartbeatIntervalSeconds: reg.HeartbeatIntervalSeconds,
		MetricsIntervalSeconds:   reg.MetricsIntervalSeconds,
	})
	if err := conn.Send(ack); err != nil {
		return fmt.Errorf("controlplane: send registration ack: %w", err)
	}
	if !reg.Accepted {
		return nil
	}

	session := newSession(req.WorkerID, conn)
	cs.mu.Lock()
	cs.sessions[req.WorkerID] = session
	cs.mu.Unlock()
	cs.Logger.WithField("workerId", req.WorkerID).Info("worker session established")
	defer func() {
		cs.mu.Lock()
		delete(cs.sessions, req.WorkerID)
		cs.mu.Unlock()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		env, err := conn.Recv()
		if err != nil {
			return fmt.Errorf("controlplane: %s: %w", req.WorkerID, err)
		}
		if session.deliver(env) {
			continue
		}
		cs.handleInbound(session, env)
	}
}

func (cs *ControllerServer) handleInbound(session *Session, env wire.Envelope) {
	switch env.Type {
	case wire.TypeHeartbeat:
		var req wire.HeartbeatRequest
		if err := env.Take(&req); err != nil {
			cs.Logger.WithError(err).Warn("decode heartbeat")
			return
		}
		healthy, message := cs.Registry.Heartbeat(req.WorkerID, req.CurrentLoad)
		_ = session.conn.Send(wire.New(wire.TypeHeartbeatAck).With(wire.HeartbeatResponse{Healthy: healthy, Message: message}))
	case wire.TypeMetricsPush:
		var frame wire.WorkerMetrics
		if err := env.Take(&frame); err != nil {
			cs.Logger.WithError(err).Warn("decode metrics push")
			return
		}
		cs.Aggregator.Ingest(frame)
		_ = session.conn.Send(wire.New(wire.TypeMetricsAck).With(wire.MetricsAcknowledgment{Received: true}))
	default:
		cs.Logger.WithField("type", env.Type).Warn("unexpected envelope from worker")
	}
}

// Session returns workerID's live session, if its connection is open.
func (cs *ControllerServer) Session(workerID string) (*Session, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	s, ok := cs.sessions[workerID]
	return s, ok
}

// AssignTask sends req to workerID and awaits its AssignTaskResponse.
func (cs *ControllerServer) AssignTask(ctx context.Context, workerID string, req wire.AssignTaskRequest) (wire.AssignTaskResponse, error) {
	session, ok := cs.Session(workerID)
	if !ok {
		return wire.AssignTaskResponse{}, fmt.Errorf("controlplane: no live session for worker %s", workerID)
	}
	resp, err := session.Call(ctx, wire.New(wire.TypeAssignTask).With(req), wire.TypeAssignTaskAck)
	if err != nil {
		return wire.AssignTaskResponse{}, err
	}
	var out wire.AssignTaskResponse
	if err := resp.Take(&out); err != nil {
		return wire.AssignTaskResponse{}, fmt.Errorf("controlplane: decode assign-task ack: %w", err)
	}
	return out, nil
}

// StopTest sends a StopTestRequest to workerID and awaits its
// StopTestResponse. It takes a ctx that StopFunc lacks, so it reaches
// CoordinateStop through a closure that binds ctx.
func (cs *ControllerServer) StopTest(ctx context.Context, workerID string, req wire.StopTestRequest) (wire.StopTestResponse, error) {
	session, ok := cs.Session(workerID)
	if !ok {
		return wire.StopTestResponse{}, fmt.Errorf("controlplane: no live session for worker %s", workerID)
	}
	resp, err := session.Call(ctx, wire.New(wire.TypeStopTest).With(req), wire.TypeStopTestAck)
	if err != nil {
		return wire.StopTestResponse{}, err
	}
	var out wire.StopTestResponse
	if err := resp.Take(&out); err != nil {
		return wire.StopTestResponse{}, fmt.Errorf("controlplane: decode stop-test ack: %w", err)
	}
	return out, nil
}
