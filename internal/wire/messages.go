package wire

// The payload DTOs below are the wire protocol's message bodies (spec
// §6): "bit-exact at the semantic level; encoding = protobuf or
// equivalent" — here, JSON inside an Envelope.Payload (see DESIGN.md for
// why no protobuf/gRPC code generation is used).

// RegisterWorkerRequest is a worker's initial registration call.
type RegisterWorkerRequest struct {
	WorkerID           string            `json:"workerId"`
	Hostname           string            `json:"hostname"`
	MaxCapacity        int               `json:"maxCapacity"`
	SupportedTaskTypes []string          `json:"supportedTaskTypes"`
	Version            string            `json:"version"`
	Metadata           map[string]string `json:"metadata"`
}

// RegisterWorkerResponse is the controller's reply to registration.
type RegisterWorkerResponse struct {
	Accepted                 bool   `json:"accepted"`
	Message                  string `json:"message"`
	HeartbeatIntervalSeconds int    `json:"heartbeatIntervalSeconds"`
	MetricsIntervalSeconds   int    `json:"metricsIntervalSeconds"`
}

// HeartbeatRequest is sent by a worker on its heartbeat timer.
type HeartbeatRequest struct {
	WorkerID    string `json:"workerId"`
	CurrentLoad int    `json:"currentLoad"`
	TimestampMs int64  `json:"timestampMs"`
	Status      string `json:"status"`
}

// HeartbeatResponse is the controller's reply to a heartbeat.
type HeartbeatResponse struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message"`
}

// AssignTaskRequest directs a worker to run its share of a test.
type AssignTaskRequest struct {
	TestID          string            `json:"testId"`
	TaskType        string            `json:"taskType"`
	Parameters      map[string]string `json:"parameters"`
	TargetTps       float64           `json:"targetTps"`
	MaxConcurrency  int               `json:"maxConcurrency"`
	DurationSeconds int               `json:"durationSeconds"`
	RampUpSeconds   int               `json:"rampUpSeconds"`
}

// AssignTaskResponse is the worker's reply to an assignment.
type AssignTaskResponse struct {
	Accepted           bool   `json:"accepted"`
	Message            string `json:"message"`
	EstimatedTaskCount int64  `json:"estimatedTaskCount"`
}

// StopTestRequest asks a worker to stop a running test.
type StopTestRequest struct {
	TestID   string `json:"testId"`
	Graceful bool   `json:"graceful"`
}

// StopTestResponse is the worker's reply to a stop request.
type StopTestResponse struct {
	Stopped          bool   `json:"stopped"`
	Message          string `json:"message"`
	TasksInterrupted int64  `json:"tasksInterrupted"`
}

// LatencyPercentiles is the compact {p50,p95,p99} triple the wire
// protocol's metrics frame carries, as distinct from MetricsSnapshot's
// full six-percentile set.
type LatencyPercentiles struct {
	P50Ms float64 `json:"p50Ms"`
	P95Ms float64 `json:"p95Ms"`
	P99Ms float64 `json:"p99Ms"`
}

// WorkerMetrics is one reporting-tick metrics frame pushed by a worker.
type WorkerMetrics struct {
	WorkerID           string             `json:"workerId"`
	TestID             string             `json:"testId"`
	TimestampMs        int64              `json:"timestampMs"`
	TotalRequests      int64              `json:"totalRequests"`
	SuccessfulRequests int64              `json:"successfulRequests"`
	FailedRequests     int64              `json:"failedRequests"`
	CurrentTps         float64            `json:"currentTps"`
	ActiveTasks        int64              `json:"activeTasks"`
	Latency            LatencyPercentiles `json:"latency"`
}

// MetricsAcknowledgment is the controller's reply to a WorkerMetrics
// frame.
type MetricsAcknowledgment struct {
	Received bool   `json:"received"`
	Message  string `json:"message"`
}
