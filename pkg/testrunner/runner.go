package testrunner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vajraedge/vajraedge/internal/eventbus"
	"github.com/vajraedge/vajraedge/pkg/concurrency"
	"github.com/vajraedge/vajraedge/pkg/config"
	"github.com/vajraedge/vajraedge/pkg/errtax"
	"github.com/vajraedge/vajraedge/pkg/executor"
	"github.com/vajraedge/vajraedge/pkg/metrics"
	"github.com/vajraedge/vajraedge/pkg/ratecontrol"
	"github.com/vajraedge/vajraedge/pkg/task"
)

// snapshotInterval is spec §4.5's "a timer every 500 ms calls
// metrics.snapshot() and pushes to subscribers".
const snapshotInterval = 500 * time.Millisecond

// drainTimeout is spec §5's "the drain timeout is 30 seconds; remaining
// tasks are abandoned".
const drainTimeout = 30 * time.Second

// Option configures a Runner at construction.
type Option func(*Runner)

// WithWarmup enables the optional WARMING_UP phase (spec §4.5): d of
// load at startingConcurrency/targetTps, discarded via metrics.Reset()
// at the warmup/measurement boundary. Omitting this option skips
// warmup entirely, matching the state machine's "(optional)" note.
func WithWarmup(d time.Duration) Option {
	return func(r *Runner) { r.warmupDuration = d }
}

// WithEventBus attaches the bus Runner publishes lifecycle events and
// snapshots to. Without it, Runner still works, it just has no
// subscribers to notify (used for unit tests).
func WithEventBus(bus *eventbus.System) Option {
	return func(r *Runner) { r.bus = bus }
}

// Runner drives one test's lifecycle end-to-end.
type Runner struct {
	id      string
	cfg     config.TestConfig
	factory task.Factory
	engine  *metrics.Engine
	bus     *eventbus.System
	logger  logrus.FieldLogger

	warmupDuration time.Duration

	statusMu  sync.RWMutex
	status    Status
	startTime time.Time
	endTime   time.Time

	concCtrl *concurrency.Controller
	rateCtrl *ratecontrol.Controller
	exec     *executor.Executor

	interrupted int64
}

// New builds a Runner for one test. factory must be the already-resolved
// task.Factory for cfg.TaskType (resolution against the task.Registry is
// the caller's concern — SuiteOrchestrator or the REST handler).
func New(id string, cfg config.TestConfig, factory task.Factory, logger logrus.FieldLogger, opts ...Option) *Runner {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	r := &Runner{
		id:      id,
		cfg:     cfg,
		factory: factory,
		engine:  metrics.NewEngine(5, logger),
		logger:  logger,
		status:  Created,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ID returns the test identifier.
func (r *Runner) ID() string { return r.id }

// Engine exposes the live MetricsEngine, e.g. for a worker's streaming
// loop to read snapshots out-of-band from the 500ms publish timer.
func (r *Runner) Engine() *metrics.Engine { return r.engine }

// Status returns the current lifecycle state.
func (r *Runner) Status() Status {
	r.statusMu.RLock()
	defer r.statusMu.RUnlock()
	return r.status
}

// Interrupted returns how many Virtual Users were cancelled mid-task
// by ramp-down or stop, valid once the run has entered DRAINING.
func (r *Runner) Interrupted() int64 { return atomic.LoadInt64(&r.interrupted) }

func (r *Runner) setStatus(s Status) {
	r.statusMu.Lock()
	r.status = s
	r.statusMu.Unlock()
	r.emit(lifecycleEventType(s), r.id)
}

// Run executes the full CREATED→...→terminal state machine and blocks
// until a terminal state is reached. ctx cancellation before
// testDurationSeconds elapses drives the test to STOPPED instead of
// COMPLETED; a failing initial factory construction drives it straight
// to FAILED without consuming any concurrency (spec §4.5).
func (r *Runner) Run(ctx context.Context) error {
	if _, err := r.factory(r.cfg.TaskParameters); err != nil {
		r.setStatus(Failed)
		return errtax.Classify(errtax.WithHint(
			fmt.Errorf("task factory construction failed: %w", err),
			"check taskType and taskParameters against the registered factory",
		), errtax.TestFatal)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	snapshotsDone := make(chan struct{})
	go r.publishSnapshotsUntil(runCtx, snapshotsDone)

	if r.warmupDuration > 0 {
		r.setStatus(WarmingUp)
		r.runPhase(warmupContext(runCtx, r.warmupDuration), false)
		r.engine.Reset()
	}

	r.setStatus(Running)
	r.startTime = time.Now()

	loadCtx, loadCancel := context.WithDeadline(runCtx, r.startTime.Add(r.effectiveRunDuration()))
	r.runPhase(loadCtx, true)
	externallyStopped := ctx.Err() != nil
	loadCancel()

	r.setStatus(Draining)
	r.drain()

	cancel()
	<-snapshotsDone

	r.endTime = time.Now()
	if externallyStopped {
		r.setStatus(Stopped)
	} else {
		r.setStatus(Completed)
	}
	r.emit(eventbus.MetricsSnapshot, r.engine.Snapshot())
	return nil
}

// runPhase runs one load-generating phase (warmup or measured) to
// completion of phaseCtx, choosing CONCURRENCY_BASED or RATE_LIMITED
// execution per cfg.Mode (spec §4.3). track controls whether the
// phase's ConcurrencyController/TaskExecutor are retained on the Runner
// for Interrupted()/drain() to use afterward.
func (r *Runner) runPhase(phaseCtx context.Context, track bool) {
	switch r.cfg.Mode {
	case config.RateLimited:
		exec := executor.New(int64(r.cfg.MaxConcurrency))
		rampDuration := time.Duration(r.cfg.RampStrategy.DurationSeconds) * time.Second
		rateCtrl := ratecontrol.New(r.cfg.MaxTpsLimit, rampDuration, r.cfg.MaxTpsLimit)
		if track {
			r.exec = exec
			r.rateCtrl = rateCtrl
		}
		r.runRateLimited(phaseCtx, exec, rateCtrl)
	default:
		ramp := rampFromStrategy(r.cfg.RampStrategy)
		vu := concurrency.NewVirtualUserLoop(r.factory, r.cfg.TaskParameters, r.engine, nil)
		ctrl := concurrency.New(ramp, r.cfg.StartingConcurrency, r.cfg.MaxConcurrency, vu)
		if track {
			r.concCtrl = ctrl
		}
		ctrl.Run(phaseCtx)
		if track {
			atomic.StoreInt64(&r.interrupted, ctrl.Interrupted())
		}
	}
}

// runRateLimited is the RATE_LIMITED-mode load loop: launches are paced
// by rateCtrl and bounded by exec's maxConcurrency ceiling, with
// submissions beyond the ceiling queuing inside exec (spec §4.3: "pending
// tasks beyond the ceiling queue internally and count toward
// pendingTasks").
func (r *Runner) runRateLimited(ctx context.Context, exec *executor.Executor, rateCtrl *ratecontrol.Controller) {
	var inFlight sync.WaitGroup
	defer inFlight.Wait()

	for {
		if err := rateCtrl.Acquire(ctx); err != nil {
			return
		}
		if ctx.Err() != nil {
			return
		}

		t, err := r.factory(r.cfg.TaskParameters)
		if err != nil {
			continue
		}

		ch, err := exec.Submit(ctx, t)
		if err != nil {
			return
		}
		r.engine.SetPending(exec.Pending())

		inFlight.Add(1)
		go func() {
			defer inFlight.Done()
			r.engine.Record(<-ch)
		}()
	}
}

// drain waits up to drainTimeout for in-flight work started by the last
// tracked phase to finish, per spec §5's 30s drain timeout.
func (r *Runner) drain() {
	if r.exec != nil {
		r.exec.Shutdown(drainTimeout)
	}
	// concCtrl's VU loops are already cancelled by runPhase's deadline
	// context; concCtrl.Run returning is itself the drain signal there,
	// since each VU exits only after its current task completes.
}

func (r *Runner) publishSnapshotsUntil(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.emit(eventbus.MetricsSnapshot, r.engine.Snapshot())
		case <-ctx.Done():
			return
		}
	}
}

func (r *Runner) emit(t eventbus.Type, data interface{}) {
	if r.bus == nil {
		return
	}
	r.bus.Emit(&eventbus.Event{Type: t, Data: data})
}

func lifecycleEventType(s Status) eventbus.Type {
	switch s {
	case WarmingUp:
		return eventbus.TestWarmingUp
	case Running:
		return eventbus.TestRunning
	case Draining:
		return eventbus.TestDraining
	case Completed:
		return eventbus.TestCompleted
	case Stopped:
		return eventbus.TestStopped
	case Failed:
		return eventbus.TestFailed
	default:
		return eventbus.TestCreated
	}
}

func warmupContext(parent context.Context, d time.Duration) context.Context {
	ctx, _ := context.WithTimeout(parent, d) //nolint:lostcancel // bounded by d itself; cancel() has nothing further to release before Run
	return ctx
}

// effectiveRunDuration resolves the open question of whether sustain
// duration is inclusive or exclusive of testDurationSeconds: the outer
// bound is always testDurationSeconds; when sustainDurationSeconds is
// set (> 0) it additionally caps the run at rampEnd+sustain if that is
// shorter. An unset (zero) sustainDurationSeconds holds at peak for the
// remainder of testDurationSeconds, which is the common flat-load case.
func (r *Runner) effectiveRunDuration() time.Duration {
	total := time.Duration(r.cfg.TestDurationSeconds) * time.Second
	if r.cfg.SustainDurationSeconds <= 0 {
		return total
	}
	rampEnd := rampEndDuration(r.cfg)
	candidate := rampEnd + time.Duration(r.cfg.SustainDurationSeconds)*time.Second
	if candidate < total {
		return candidate
	}
	return total
}

func rampEndDuration(cfg config.TestConfig) time.Duration {
	if cfg.Mode == config.RateLimited {
		return time.Duration(cfg.RampStrategy.DurationSeconds) * time.Second
	}
	switch cfg.RampStrategy.Kind {
	case config.RampStep:
		if cfg.RampStrategy.StepSize <= 0 || cfg.RampStrategy.IntervalSeconds <= 0 || cfg.MaxConcurrency <= cfg.StartingConcurrency {
			return 0
		}
		steps := (cfg.MaxConcurrency - cfg.StartingConcurrency + cfg.RampStrategy.StepSize - 1) / cfg.RampStrategy.StepSize
		return time.Duration(steps*cfg.RampStrategy.IntervalSeconds) * time.Second
	default:
		return time.Duration(cfg.RampStrategy.DurationSeconds) * time.Second
	}
}

func rampFromStrategy(s config.RampStrategy) concurrency.Ramp {
	switch s.Kind {
	case config.RampStep:
		return concurrency.NewStepRamp(s.StepSize, s.IntervalSeconds)
	default:
		return concurrency.NewLinearRamp(time.Duration(s.DurationSeconds) * time.Second)
	}
}
