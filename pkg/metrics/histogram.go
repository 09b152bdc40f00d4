package metrics

import (
	"math"
	"math/bits"
	"sync/atomic"
)

// Spec §4.1 calls for an HDR-histogram-equivalent spanning 1ns-60s with
// an error bound <= 1% across the advertised percentiles, falling back
// to "a fixed-bucket log-linear approximation" when no such library is
// available (DESIGN.md: no HDR-histogram-equivalent appears anywhere in
// the retrieved pack). subBucketsPerMagnitude buckets per power-of-two
// magnitude gives a per-bucket relative width of 1/subBucketsPerMagnitude,
// comfortably under the 1% bound.
const (
	histogramMinNanos         = int64(1)
	histogramMaxNanos         = int64(60 * 1e9) // 60s in nanoseconds
	subBucketsPerMagnitude    = 128
)

var maxMagnitude = bits.Len64(uint64(histogramMaxNanos)) - 1

// Histogram is a lock-free, fixed-bucket log-linear latency histogram.
// Record and Percentile never block each other; Percentile may observe
// a partially-updated set of counters under concurrent Record calls,
// which spec §4.1 explicitly allows ("wait-free w.r.t. producers").
type Histogram struct {
	counts []int64
}

// NewHistogram allocates a Histogram covering 1ns-60s.
func NewHistogram() *Histogram {
	return &Histogram{counts: make([]int64, (maxMagnitude+1)*subBucketsPerMagnitude)}
}

// Record adds one observation of latencyNanos. Values outside
// [1ns, 60s] are clamped to the nearest boundary bucket.
func (h *Histogram) Record(latencyNanos int64) {
	idx := bucketIndex(latencyNanos)
	atomic.AddInt64(&h.counts[idx], 1)
}

// Percentile returns the estimated latency, in nanoseconds, at
// percentile p (0 < p <= 100).
func (h *Histogram) Percentile(p float64) int64 {
	var total int64
	for i := range h.counts {
		total += atomic.LoadInt64(&h.counts[i])
	}
	if total == 0 {
		return 0
	}

	target := int64(math.Ceil(p / 100 * float64(total)))
	if target < 1 {
		target = 1
	}

	var cumulative int64
	for i := range h.counts {
		cumulative += atomic.LoadInt64(&h.counts[i])
		if cumulative >= target {
			return bucketLowerBound(i)
		}
	}
	return histogramMaxNanos
}

// Reset zeroes every bucket.
func (h *Histogram) Reset() {
	for i := range h.counts {
		atomic.StoreInt64(&h.counts[i], 0)
	}
}

func bucketIndex(nanos int64) int {
	if nanos < histogramMinNanos {
		nanos = histogramMinNanos
	}
	if nanos > histogramMaxNanos {
		nanos = histogramMaxNanos
	}

	magnitude := bits.Len64(uint64(nanos)) - 1
	if magnitude > maxMagnitude {
		magnitude = maxMagnitude
	}
	if magnitude < 0 {
		magnitude = 0
	}

	base := int64(1) << magnitude
	next := base << 1
	frac := float64(nanos-base) / float64(next-base)
	sub := int(frac * float64(subBucketsPerMagnitude))
	if sub >= subBucketsPerMagnitude {
		sub = subBucketsPerMagnitude - 1
	}
	if sub < 0 {
		sub = 0
	}
	return magnitude*subBucketsPerMagnitude + sub
}

func bucketLowerBound(idx int) int64 {
	magnitude := idx / subBucketsPerMagnitude
	sub := idx % subBucketsPerMagnitude
	base := int64(1) << magnitude
	next := base << 1
	width := next - base
	return base + int64(sub)*width/int64(subBucketsPerMagnitude)
}
