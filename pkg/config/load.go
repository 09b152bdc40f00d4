package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/vajraedge/vajraedge/pkg/errtax"
)

// LoadTestConfig reads and validates a TestConfig from path on fs, an
// afero.Fs (afero.NewOsFs() in production, afero.NewMemMapFs() in
// tests), grounded on the teacher's cmd/speedboat/main.go `parse()`
// function (`yaml.Unmarshal` over file bytes), generalized to dispatch
// on extension between YAML and JSON. YAML
// is assumed unless path ends in ".json".
func LoadTestConfig(fs afero.Fs, path string) (TestConfig, error) {
	var c TestConfig
	if err := readInto(fs, path, &c); err != nil {
		return TestConfig{}, err
	}
	if err := c.Validate(); err != nil {
		return TestConfig{}, err
	}
	return c, nil
}

// LoadTestSuite reads and validates a TestSuite from path on fs.
func LoadTestSuite(fs afero.Fs, path string) (TestSuite, error) {
	var s TestSuite
	if err := readInto(fs, path, &s); err != nil {
		return TestSuite{}, err
	}
	for i := range s.Scenarios {
		normalizeTaskMix(s.Scenarios[i].TaskMix)
	}
	if err := s.Validate(); err != nil {
		return TestSuite{}, err
	}
	return s, nil
}

// normalizeTaskMix derives Order from Weights' keys when a TaskMix was
// decoded from a map with no declared order (YAML/JSON object keys carry
// no stable order); Order is then used by pkg/suite purely as a
// deterministic tie-break, not to change selection probabilities.
func normalizeTaskMix(m *TaskMix) {
	if m == nil || len(m.Order) > 0 {
		return
	}
	m.Order = m.sortedTaskTypes()
}

func readInto(fs afero.Fs, path string, out interface{}) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return errtax.Classify(errtax.WithHint(
			fmt.Errorf("reading %s: %w", path, err), "check that the config file path exists and is readable",
		), errtax.ConfigInvalid)
	}

	var decodeErr error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		decodeErr = json.Unmarshal(data, out)
	} else {
		decodeErr = yaml.Unmarshal(data, out)
	}
	if decodeErr != nil {
		return errtax.Classify(errtax.WithHint(
			fmt.Errorf("parsing %s: %w", path, decodeErr), "check the file is valid YAML/JSON matching the schema",
		), errtax.ConfigInvalid)
	}
	return nil
}
