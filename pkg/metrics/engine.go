// Package metrics is VajraEdge's MetricsEngine (spec §4.1): thread-safe
// ingestion of TaskResults, a windowed TPS ring, a log-linear latency
// histogram, a bounded error histogram, and immutable snapshot
// emission. The counter-and-Ingest shape is grounded on the teacher's
// aggregate.Stats/DurationStat (a single-pass channel aggregator),
// generalized here from "ingest until the channel closes, then compute
// stats once" into a live engine that many concurrent producers record
// into and any number of readers snapshot from at any time.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vajraedge/vajraedge/pkg/task"
)

// Engine is one test's MetricsEngine.
type Engine struct {
	logger logrus.FieldLogger

	startTime atomic.Value // time.Time

	total          int64
	successful     int64
	failed         int64
	sumLatencyNs   int64
	metricsDropped int64
	active         int64
	pending        int64

	histogram *Histogram
	window    *Window
	errors    *ErrorHistogram
}

// NewEngine returns an Engine ready to record TaskResults. windowSeconds
// configures the sliding TPS window (0 selects spec §4.1's 5s default).
func NewEngine(windowSeconds int, logger logrus.FieldLogger) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	e := &Engine{
		logger:    logger,
		histogram: NewHistogram(),
		window:    NewWindow(windowSeconds),
		errors:    NewErrorHistogram(),
	}
	e.startTime.Store(time.Now())
	return e
}

// Record ingests one TaskResult. It never panics outward: an internal
// failure degrades to incrementing metricsDropped, per spec §4.1's
// failure semantics.
func (e *Engine) Record(result task.Result) {
	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&e.metricsDropped, 1)
			e.logger.WithField("panic", r).Error("metrics: record panicked, dropping result")
		}
	}()

	atomic.AddInt64(&e.total, 1)
	if result.Success {
		atomic.AddInt64(&e.successful, 1)
	} else {
		atomic.AddInt64(&e.failed, 1)
		e.errors.Record(result.ErrorMessage)
	}
	atomic.AddInt64(&e.sumLatencyNs, result.LatencyNanos)
	e.histogram.Record(result.LatencyNanos)
	e.window.Record(time.Now())
}

// IncActive and DecActive track in-flight tasks; the Virtual User loop
// (pkg/concurrency) calls these around each task's execution so
// snapshots can report activeTasks (spec §3). The TaskExecutor does not
// call them, so RATE_LIMITED runs leave activeTasks at zero.
func (e *Engine) IncActive() { atomic.AddInt64(&e.active, 1) }
func (e *Engine) DecActive() { atomic.AddInt64(&e.active, -1) }

// SetPending records the executor's current pending-task count.
func (e *Engine) SetPending(n int64) { atomic.StoreInt64(&e.pending, n) }

// Snapshot returns an immutable view of the engine's current state.
func (e *Engine) Snapshot() Snapshot {
	start := e.startTime.Load().(time.Time)
	total := atomic.LoadInt64(&e.total)
	successful := atomic.LoadInt64(&e.successful)
	failed := atomic.LoadInt64(&e.failed)
	sumLatencyNs := atomic.LoadInt64(&e.sumLatencyNs)

	var avgLatencyMs, successRate float64
	if total > 0 {
		avgLatencyMs = float64(sumLatencyNs) / float64(total) / 1e6
		successRate = float64(successful) / float64(total) * 100
	}

	now := time.Now()
	return Snapshot{
		StartTime:    start,
		Elapsed:      now.Sub(start),
		Total:        total,
		Successful:   successful,
		Failed:       failed,
		CurrentTps:   e.window.TPS(now),
		AvgLatencyMs: avgLatencyMs,
		SuccessRate:  successRate,
		Percentiles: Percentiles{
			P50:  nanosToMs(e.histogram.Percentile(50)),
			P75:  nanosToMs(e.histogram.Percentile(75)),
			P90:  nanosToMs(e.histogram.Percentile(90)),
			P95:  nanosToMs(e.histogram.Percentile(95)),
			P99:  nanosToMs(e.histogram.Percentile(99)),
			P999: nanosToMs(e.histogram.Percentile(99.9)),
		},
		ErrorHistogram: e.errors.Snapshot(),
		ActiveTasks:    atomic.LoadInt64(&e.active),
		PendingTasks:   atomic.LoadInt64(&e.pending),
		MetricsDropped: atomic.LoadInt64(&e.metricsDropped),
	}
}

// Reset clears counters, the histogram, the error histogram and the TPS
// window, and restarts the elapsed-time clock. TestRunner calls this
// exactly once, at the WARMING_UP→RUNNING boundary (spec §4.5).
func (e *Engine) Reset() {
	atomic.StoreInt64(&e.total, 0)
	atomic.StoreInt64(&e.successful, 0)
	atomic.StoreInt64(&e.failed, 0)
	atomic.StoreInt64(&e.sumLatencyNs, 0)
	atomic.StoreInt64(&e.metricsDropped, 0)
	e.histogram.Reset()
	e.window.Reset()
	e.errors.Reset()
	e.startTime.Store(time.Now())
}

func nanosToMs(nanos int64) float64 {
	return float64(nanos) / 1e6
}
