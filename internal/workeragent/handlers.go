package workeragent

import (
	"context"
	"fmt"

	"github.com/vajraedge/vajraedge/internal/wire"
	"github.com/vajraedge/vajraedge/pkg/config"
	"github.com/vajraedge/vajraedge/pkg/testrunner"
)

// handleAssignTask builds a TestConfig from req (always RATE_LIMITED —
// the controller's Assignment Planner already divided the scenario's
// total concurrency and TPS into this worker's share, so the worker
// paces locally against that share, ramping its TPS linearly over the
// assignment's rampUpSeconds), starts a Runner for it, and returns
// immediately; the test
// runs to completion in the background and reports via metricsLoop.
func (a *Agent) handleAssignTask(ctx context.Context, env wire.Envelope) (wire.Envelope, error) {
	var req wire.AssignTaskRequest
	if err := env.Take(&req); err != nil {
		return wire.Envelope{}, fmt.Errorf("workeragent: decode AssignTaskRequest: %w", err)
	}

	factory, ok := a.registry.Lookup(req.TaskType)
	if !ok {
		return wire.New(wire.TypeAssignTaskAck).With(wire.AssignTaskResponse{
			Accepted: false,
			Message:  fmt.Sprintf("unsupported taskType %q", req.TaskType),
		}), nil
	}

	a.mu.Lock()
	if _, running := a.tests[req.TestID]; running {
		a.mu.Unlock()
		return wire.New(wire.TypeAssignTaskAck).With(wire.AssignTaskResponse{
			Accepted: false,
			Message:  fmt.Sprintf("testId %q already running on this worker", req.TestID),
		}), nil
	}
	a.mu.Unlock()

	if load := a.currentLoad(); load >= a.maxCapacity {
		return wire.New(wire.TypeAssignTaskAck).With(wire.AssignTaskResponse{
			Accepted: false,
			Message:  fmt.Sprintf("CAPACITY_EXCEEDED: currentLoad %d >= maxCapacity %d", load, a.maxCapacity),
		}), nil
	}

	params := resolveParameters(req.Parameters, a.resolver)
	cfg := config.TestConfig{
		// Always RATE_LIMITED: a worker executing its share of a
		// controller-planned assignment paces against a TPS target and
		// concurrency ceiling rather than a Virtual User count; its
		// ramp-up is a LINEAR RampStrategy over the assignment's
		// rampUpSeconds, which the RateController uses to ramp TPS.
		Mode:                config.RateLimited,
		StartingConcurrency: 1,
		MaxConcurrency:      req.MaxConcurrency,
		RampStrategy: config.RampStrategy{
			Kind:            config.RampLinear,
			DurationSeconds: req.RampUpSeconds,
		},
		MaxTpsLimit:         req.TargetTps,
		TestDurationSeconds: req.DurationSeconds,
		TaskType:            req.TaskType,
		TaskParameters:      params,
	}

	runner := testrunner.New(req.TestID, cfg, factory, a.logger)
	runCtx, cancel := context.WithCancel(context.Background())

	a.mu.Lock()
	a.tests[req.TestID] = &runningTest{runner: runner, cancel: cancel}
	a.mu.Unlock()

	go func() {
		defer func() {
			a.mu.Lock()
			delete(a.tests, req.TestID)
			a.mu.Unlock()
			cancel()
		}()
		if err := runner.Run(runCtx); err != nil {
			a.logger.WithError(err).WithField("testId", req.TestID).Warn("test run ended with error")
		}
	}()

	estimated := estimateTaskCount(req)
	return wire.New(wire.TypeAssignTaskAck).With(wire.AssignTaskResponse{
		Accepted:           true,
		Message:            "accepted",
		EstimatedTaskCount: estimated,
	}), nil
}

// estimateTaskCount is a rough preview figure for operators: targetTps
// sustained for the assignment's full duration, ignoring ramp-up.
func estimateTaskCount(req wire.AssignTaskRequest) int64 {
	if req.TargetTps <= 0 {
		return 0
	}
	return int64(req.TargetTps * float64(req.DurationSeconds))
}

// handleStopTest cancels the local runner for req.TestID, if running,
// and reports the runner's Interrupted() count as read just before
// cancelling it.
func (a *Agent) handleStopTest(ctx context.Context, env wire.Envelope) (wire.Envelope, error) {
	var req wire.StopTestRequest
	if err := env.Take(&req); err != nil {
		return wire.Envelope{}, fmt.Errorf("workeragent: decode StopTestRequest: %w", err)
	}

	a.mu.Lock()
	rt, ok := a.tests[req.TestID]
	a.mu.Unlock()
	if !ok {
		return wire.New(wire.TypeStopTestAck).With(wire.StopTestResponse{
			Stopped: true,
			Message: "testId not running on this worker",
		}), nil
	}

	interrupted := rt.runner.Interrupted()
	rt.cancel()

	return wire.New(wire.TypeStopTestAck).With(wire.StopTestResponse{
		Stopped:          true,
		Message:          "stopping",
		TasksInterrupted: interrupted,
	}), nil
}
