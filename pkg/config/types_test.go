package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vajraedge/vajraedge/pkg/errtax"
)

func validConfig() TestConfig {
	return TestConfig{
		Mode:                ConcurrencyBased,
		StartingConcurrency: 1,
		MaxConcurrency:      10,
		RampStrategy:        RampStrategy{Kind: RampLinear, DurationSeconds: 30},
		TestDurationSeconds: 60,
		TaskType:            "http",
	}
}

func TestTestConfigValidateAccepts(t *testing.T) {
	err := validConfig().Validate()
	assert.NoError(t, err)
}

func TestTestConfigValidateRejectsMissingTaskType(t *testing.T) {
	c := validConfig()
	c.TaskType = ""
	err := c.Validate()
	require.Error(t, err)
	code, ok := errtax.TaxonomyOf(err)
	require.True(t, ok)
	assert.Equal(t, errtax.ConfigInvalid, code)
}

func TestTestConfigValidateRejectsStartingGreaterThanMax(t *testing.T) {
	c := validConfig()
	c.StartingConcurrency = 20
	c.MaxConcurrency = 10
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "startingConcurrency")
}

func TestTestConfigValidateRequiresTpsLimitWhenRateLimited(t *testing.T) {
	c := validConfig()
	c.Mode = RateLimited
	c.MaxTpsLimit = 0
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maxTpsLimit")
}

func TestTestConfigValidateRejectsIncompleteStepRamp(t *testing.T) {
	c := validConfig()
	c.RampStrategy = RampStrategy{Kind: RampStep}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rampStrategy")
}

func TestTaskMixValidateRejectsAllZeroWeights(t *testing.T) {
	m := TaskMix{Weights: map[string]int{"http": 0, "grpc": 0}}
	err := m.Validate()
	require.Error(t, err)
	code, ok := errtax.TaxonomyOf(err)
	require.True(t, ok)
	assert.Equal(t, errtax.ConfigInvalid, code)
}

func TestTaskMixValidateAcceptsOnePositiveWeight(t *testing.T) {
	m := TaskMix{Weights: map[string]int{"http": 0, "grpc": 5}}
	assert.NoError(t, m.Validate())
}

func TestTestSuiteValidateRejectsDuplicateScenarioNames(t *testing.T) {
	s := TestSuite{
		Name:          "dup",
		ExecutionMode: Sequential,
		Scenarios: []TestScenario{
			{Name: "a", Config: validConfig()},
			{Name: "a", Config: validConfig()},
		},
	}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate scenario name")
}

func TestTestSuiteValidateAcceptsDistinctScenarios(t *testing.T) {
	s := TestSuite{
		Name:          "ok",
		ExecutionMode: Parallel,
		Scenarios: []TestScenario{
			{Name: "a", Config: validConfig()},
			{Name: "b", Config: validConfig()},
		},
	}
	assert.NoError(t, s.Validate())
}
