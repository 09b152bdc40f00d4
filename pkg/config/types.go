// Package config holds VajraEdge's TestConfig/TestSuite/TestScenario
// schema (spec §3), struct-tag validation, and file loading. Validation
// uses go-playground/validator/v10, adopted from the jordigilh-kubernaut
// example in the retrieval pack (DESIGN.md: a new out-of-pack
// dependency, not present in the teacher's own go.mod).
package config

import "time"

// Mode selects how a TestScenario's load is shaped (spec §3).
type Mode string

const (
	ConcurrencyBased Mode = "CONCURRENCY_BASED"
	RateLimited      Mode = "RATE_LIMITED"
)

// RampKind is the tagged-variant discriminator for RampStrategy, per
// spec §9's re-architecture note (a tagged variant rather than a
// polymorphic ramp-strategy hierarchy).
type RampKind string

const (
	RampLinear RampKind = "LINEAR"
	RampStep   RampKind = "STEP"
)

// RampStrategy is spec §3's `rampStrategy` field: LINEAR carries a
// duration, STEP carries a step size and interval.
type RampStrategy struct {
	Kind            RampKind `yaml:"kind" json:"kind" validate:"required,oneof=LINEAR STEP"`
	DurationSeconds int      `yaml:"durationSeconds,omitempty" json:"durationSeconds,omitempty" validate:"omitempty,min=0"`
	StepSize        int      `yaml:"stepSize,omitempty" json:"stepSize,omitempty" validate:"omitempty,min=1"`
	IntervalSeconds int      `yaml:"intervalSeconds,omitempty" json:"intervalSeconds,omitempty" validate:"omitempty,min=1"`
}

// TestConfig is the per-scenario contract (spec §3).
type TestConfig struct {
	Mode                   Mode              `yaml:"mode" json:"mode" validate:"required,oneof=CONCURRENCY_BASED RATE_LIMITED"`
	StartingConcurrency    int               `yaml:"startingConcurrency" json:"startingConcurrency" validate:"required,min=1"`
	MaxConcurrency         int               `yaml:"maxConcurrency" json:"maxConcurrency" validate:"required,min=1,max=50000"`
	RampStrategy           RampStrategy      `yaml:"rampStrategy" json:"rampStrategy" validate:"required"`
	MaxTpsLimit            float64           `yaml:"maxTpsLimit,omitempty" json:"maxTpsLimit,omitempty" validate:"omitempty,min=1,max=100000"`
	TestDurationSeconds    int               `yaml:"testDurationSeconds" json:"testDurationSeconds" validate:"required,min=1,max=86400"`
	SustainDurationSeconds int               `yaml:"sustainDurationSeconds,omitempty" json:"sustainDurationSeconds,omitempty" validate:"min=0"`
	TaskType               string            `yaml:"taskType" json:"taskType" validate:"required"`
	TaskParameters         map[string]string `yaml:"taskParameters,omitempty" json:"taskParameters,omitempty"`
}

// TaskMix is a scenario's weighted union over named Task factories
// (spec §4.7). Weights need not sum to 100; per-factory probability is
// w_i / Σw_j, and ties break by declaration order (see pkg/suite).
type TaskMix struct {
	// Order preserves declaration order for tie-breaking; Weights maps
	// the same taskType names to their weight.
	Order   []string       `yaml:"-" json:"-"`
	Weights map[string]int `yaml:"weights" json:"weights"`
}

// ExecutionMode selects how a TestSuite's scenarios run relative to
// each other (spec §3).
type ExecutionMode string

const (
	Sequential ExecutionMode = "SEQUENTIAL"
	Parallel   ExecutionMode = "PARALLEL"
)

// CorrelationStore declares a scenario's `storeData(key, extractor)` half
// of a suite's correlation binding: after each successful task execution,
// the named Metadata field is pushed onto the suite's DataPool under Key
// (see pkg/suite's WithStoreData). A Task's Factory is responsible for
// populating Metadata[MetadataField] from whatever it extracted at
// execution time (e.g. a response header or body field).
type CorrelationStore struct {
	Key           string `yaml:"key" json:"key" validate:"required"`
	MetadataField string `yaml:"metadataField" json:"metadataField" validate:"required"`
}

// CorrelationGet declares a scenario's `getData(key)` half of a suite's
// correlation binding: before each task is built, a value is popped from
// the suite's DataPool under Key and injected into taskParameters under
// ParamKey (see pkg/suite's WithGetData).
type CorrelationGet struct {
	Key      string `yaml:"key" json:"key" validate:"required"`
	ParamKey string `yaml:"paramKey" json:"paramKey" validate:"required"`
}

// TestScenario is one TestSuite member: a TestConfig plus an optional
// TaskMix, an optional post-completion delay, and an optional
// correlation binding against the owning TestSuite's DataPool.
type TestScenario struct {
	Name       string            `yaml:"name" json:"name" validate:"required"`
	Config     TestConfig        `yaml:"config" json:"config" validate:"required"`
	TaskMix    *TaskMix          `yaml:"taskMix,omitempty" json:"taskMix,omitempty"`
	DelayAfter time.Duration     `yaml:"delayAfter,omitempty" json:"delayAfter,omitempty"`
	StoreData  *CorrelationStore `yaml:"storeData,omitempty" json:"storeData,omitempty"`
	GetData    *CorrelationGet   `yaml:"getData,omitempty" json:"getData,omitempty"`
}

// TestSuite is spec §3's composite: an ordered/parallel set of
// TestScenarios sharing a DataPool when UseCorrelation is set.
type TestSuite struct {
	SuiteID        string         `yaml:"suiteId,omitempty" json:"suiteId,omitempty"`
	Name           string         `yaml:"name" json:"name" validate:"required"`
	ExecutionMode  ExecutionMode  `yaml:"executionMode" json:"executionMode" validate:"required,oneof=SEQUENTIAL PARALLEL"`
	Scenarios      []TestScenario `yaml:"scenarios" json:"scenarios" validate:"required,min=1"`
	UseCorrelation bool           `yaml:"useCorrelation,omitempty" json:"useCorrelation,omitempty"`
}
