package concurrency

import (
	"context"

	"github.com/vajraedge/vajraedge/pkg/metrics"
	"github.com/vajraedge/vajraedge/pkg/ratecontrol"
	"github.com/vajraedge/vajraedge/pkg/task"
)

// NewVirtualUserLoop returns the per-Virtual-User loop spec §4.3
// describes verbatim: "task := factory(); result := task.execute();
// metrics.record(result)" running until cancelled. When limiter is
// non-nil (RATE_LIMITED mode) each iteration first blocks on
// limiter.Acquire, gating launch by the RateController rather than
// firing as fast as the loop can spin — the ConcurrencyController still
// governs the ceiling on how many such loops exist, per spec §4.3's
// note on RATE_LIMITED mode.
func NewVirtualUserLoop(
	factory task.Factory,
	params map[string]string,
	engine *metrics.Engine,
	limiter *ratecontrol.Controller,
) VirtualUserFunc {
	return func(ctx context.Context) {
		for {
			if limiter != nil {
				if err := limiter.Acquire(ctx); err != nil {
					return
				}
			}
			if ctx.Err() != nil {
				return
			}

			t, err := factory(params)
			if err != nil {
				// A construction failure here is unexpected — the
				// TestRunner validates the factory once before any VU
				// loop starts (spec §4.5's TEST_FATAL path) — so a
				// repeat failure mid-run just ends this VU rather than
				// spinning on it.
				return
			}

			engine.IncActive()
			result := t.Execute(ctx)
			engine.DecActive()
			engine.Record(result)

			if ctx.Err() != nil {
				return
			}
		}
	}
}
