package metrics

import "time"

// Percentiles is the fixed set of latency percentiles spec §3 requires
// on every MetricsSnapshot, expressed in milliseconds.
type Percentiles struct {
	P50  float64
	P75  float64
	P90  float64
	P95  float64
	P99  float64
	P999 float64
}

// Snapshot is an immutable point-in-time view of an Engine (spec §3's
// MetricsSnapshot). It is assembled from a single pass over the
// engine's atomic counters and histogram, so its fields are mutually
// coherent modulo in-flight increments — not strictly linearizable,
// per spec §4.1.
type Snapshot struct {
	StartTime      time.Time
	Elapsed        time.Duration
	Total          int64
	Successful     int64
	Failed         int64
	CurrentTps     float64
	AvgLatencyMs   float64
	SuccessRate    float64
	Percentiles    Percentiles
	ErrorHistogram map[string]int64
	ActiveTasks    int64
	PendingTasks   int64
	MetricsDropped int64
}
