package workeragent

import (
	"context"
	"time"

	"github.com/vajraedge/vajraedge/internal/wire"
)

// metricsLoop pushes a WorkerMetrics frame for every currently running
// test on a.metricsInterval timer until ctx is cancelled. Frames are
// idempotent snapshots of monotonic counters, so a dropped or
// duplicated send on reconnect is benign (spec §4.9).
func (a *Agent) metricsLoop(ctx context.Context) {
	ticker := time.NewTicker(a.metricsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.pushMetrics()
		}
	}
}

func (a *Agent) pushMetrics() {
	a.mu.Lock()
	frames := make([]wire.WorkerMetrics, 0, len(a.tests))
	for testID, rt := range a.tests {
		snap := rt.runner.Engine().Snapshot()
		frames = append(frames, wire.WorkerMetrics{
			WorkerID:           a.workerID,
			TestID:             testID,
			TimestampMs:        time.Now().UnixMilli(),
			TotalRequests:      snap.Total,
			SuccessfulRequests: snap.Successful,
			FailedRequests:     snap.Failed,
			CurrentTps:         snap.CurrentTps,
			ActiveTasks:        snap.ActiveTasks,
			Latency: wire.LatencyPercentiles{
				P50Ms: snap.Percentiles.P50,
				P95Ms: snap.Percentiles.P95,
				P99Ms: snap.Percentiles.P99,
			},
		})
	}
	a.mu.Unlock()

	for _, frame := range frames {
		if err := a.conn.Send(wire.New(wire.TypeMetricsPush).With(frame)); err != nil {
			a.logger.WithError(err).WithField("testId", frame.TestID).Warn("metrics push failed")
		}
	}
}
