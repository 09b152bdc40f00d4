package task

// Result is an immutable TaskResult (spec §3): produced by a Task,
// consumed exactly once by a MetricsEngine, then discarded — no storage
// beyond the aggregates the engine maintains.
type Result struct {
	TaskID       string
	LatencyNanos int64
	Success      bool
	ErrorMessage string
	ResponseSize int64
	Metadata     map[string]string
}
