// Package testrunner implements VajraEdge's TestRunner (spec §4.5): the
// per-test orchestrator driving CREATED→WARMING_UP→RUNNING→DRAINING→
// COMPLETED/STOPPED/FAILED, binding the TaskExecutor, RateController or
// ConcurrencyController, and MetricsEngine, and publishing snapshots on
// a timer.
package testrunner

import (
	"time"

	"github.com/google/uuid"
	null "gopkg.in/guregu/null.v3"

	"github.com/vajraedge/vajraedge/pkg/config"
	"github.com/vajraedge/vajraedge/pkg/metrics"
)

// Status is one state of the TestRunner state machine (spec §4.5).
type Status string

const (
	Created   Status = "CREATED"
	WarmingUp Status = "WARMING_UP"
	Running   Status = "RUNNING"
	Draining  Status = "DRAINING"
	Completed Status = "COMPLETED"
	Stopped   Status = "STOPPED"
	Failed    Status = "FAILED"
)

// TestRecord is the controller-side view of one test (spec §3): created
// on accept, mutated only by the Runner that owns it.
type TestRecord struct {
	TestID             string
	Config             config.TestConfig
	Status             Status
	StartTime          time.Time
	EndTime            null.Time
	AggregatedSnapshot metrics.Snapshot
}

// NewTestID mints a fresh test identifier.
func NewTestID() string { return uuid.NewString() }
