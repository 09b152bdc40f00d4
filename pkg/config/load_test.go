package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
mode: CONCURRENCY_BASED
startingConcurrency: 1
maxConcurrency: 10
rampStrategy:
  kind: LINEAR
  durationSeconds: 30
testDurationSeconds: 60
taskType: http
`

func TestLoadTestConfigYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "test.yaml", []byte(validYAML), 0o644))

	c, err := LoadTestConfig(fs, "test.yaml")
	require.NoError(t, err)
	assert.Equal(t, ConcurrencyBased, c.Mode)
	assert.Equal(t, 10, c.MaxConcurrency)
}

func TestLoadTestConfigJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	body := `{"mode":"CONCURRENCY_BASED","startingConcurrency":1,"maxConcurrency":10,"rampStrategy":{"kind":"LINEAR","durationSeconds":30},"testDurationSeconds":60,"taskType":"http"}`
	require.NoError(t, afero.WriteFile(fs, "test.json", []byte(body), 0o644))

	c, err := LoadTestConfig(fs, "test.json")
	require.NoError(t, err)
	assert.Equal(t, "http", c.TaskType)
}

func TestLoadTestConfigMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := LoadTestConfig(fs, "missing.yaml")
	assert.Error(t, err)
}

func TestLoadTestConfigInvalidYAMLRejected(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte("mode: CONCURRENCY_BASED\nmaxConcurrency: -1\n"), 0o644))

	_, err := LoadTestConfig(fs, "bad.yaml")
	assert.Error(t, err)
}

const suiteYAML = `
name: checkout-suite
executionMode: SEQUENTIAL
useCorrelation: true
scenarios:
  - name: warm
    config:
      mode: CONCURRENCY_BASED
      startingConcurrency: 1
      maxConcurrency: 5
      rampStrategy:
        kind: LINEAR
        durationSeconds: 10
      testDurationSeconds: 30
      taskType: http
    taskMix:
      weights:
        http-get: 3
        http-post: 1
`

func TestLoadTestSuiteYAMLDerivesTaskMixOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "suite.yaml", []byte(suiteYAML), 0o644))

	s, err := LoadTestSuite(fs, "suite.yaml")
	require.NoError(t, err)
	require.Len(t, s.Scenarios, 1)
	require.NotNil(t, s.Scenarios[0].TaskMix)
	assert.Equal(t, []string{"http-get", "http-post"}, s.Scenarios[0].TaskMix.Order)
}
