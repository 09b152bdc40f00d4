package config

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/vajraedge/vajraedge/pkg/errtax"
)

var validate = validator.New()

// Validate runs struct-tag validation plus the cross-field rules spec §3
// leaves implicit: RATE_LIMITED requires a positive maxTpsLimit,
// startingConcurrency must not exceed maxConcurrency, and a STEP ramp
// needs its stepSize/intervalSeconds filled in. Every failure is
// returned classified CONFIG_INVALID (spec §7), with a hint naming the
// offending field.
func (c TestConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errtax.Classify(errtax.WithHint(err, "check testConfig fields against the constraint table"), errtax.ConfigInvalid)
	}
	if c.StartingConcurrency > c.MaxConcurrency {
		return errtax.Classify(errtax.WithHint(
			fmt.Errorf("startingConcurrency (%d) exceeds maxConcurrency (%d)", c.StartingConcurrency, c.MaxConcurrency),
			"lower startingConcurrency or raise maxConcurrency",
		), errtax.ConfigInvalid)
	}
	if c.Mode == RateLimited && c.MaxTpsLimit <= 0 {
		return errtax.Classify(errtax.WithHint(
			fmt.Errorf("mode RATE_LIMITED requires a positive maxTpsLimit"),
			"set maxTpsLimit when mode is RATE_LIMITED",
		), errtax.ConfigInvalid)
	}
	if c.RampStrategy.Kind == RampStep && (c.RampStrategy.StepSize < 1 || c.RampStrategy.IntervalSeconds < 1) {
		return errtax.Classify(errtax.WithHint(
			fmt.Errorf("rampStrategy STEP requires stepSize >= 1 and intervalSeconds >= 1"),
			"set rampStrategy.stepSize and rampStrategy.intervalSeconds",
		), errtax.ConfigInvalid)
	}
	return nil
}

// Validate checks that at least one factory carries a positive weight,
// resolving spec §9's open question on an all-zero TaskMix: reject it
// outright at load time rather than let it surface as a runtime
// divide-by-zero in the weighted-choice selector (see pkg/suite).
func (m TaskMix) Validate() error {
	if len(m.Weights) == 0 {
		return errtax.Classify(errtax.WithHint(
			fmt.Errorf("taskMix has no weights"), "declare at least one taskType weight",
		), errtax.ConfigInvalid)
	}
	positive := 0
	for _, w := range m.Weights {
		if w > 0 {
			positive++
		}
	}
	if positive == 0 {
		return errtax.Classify(errtax.WithHint(
			fmt.Errorf("taskMix has no positive weights"), "at least one taskType weight must be > 0",
		), errtax.ConfigInvalid)
	}
	return nil
}

// Validate checks the scenario's TestConfig and, if present, its
// TaskMix and its correlation bindings.
func (s TestScenario) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errtax.Classify(errtax.WithHint(err, fmt.Sprintf("check scenario %q fields", s.Name)), errtax.ConfigInvalid)
	}
	if err := s.Config.Validate(); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	if s.TaskMix != nil {
		if err := s.TaskMix.Validate(); err != nil {
			return fmt.Errorf("scenario %q: %w", s.Name, err)
		}
	}
	if s.StoreData != nil {
		if err := validate.Struct(s.StoreData); err != nil {
			return errtax.Classify(errtax.WithHint(err, fmt.Sprintf("check scenario %q storeData fields", s.Name)), errtax.ConfigInvalid)
		}
	}
	if s.GetData != nil {
		if err := validate.Struct(s.GetData); err != nil {
			return errtax.Classify(errtax.WithHint(err, fmt.Sprintf("check scenario %q getData fields", s.Name)), errtax.ConfigInvalid)
		}
	}
	return nil
}

// Validate checks struct tags plus every scenario, and rejects a suite
// with duplicate scenario names.
func (s TestSuite) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errtax.Classify(errtax.WithHint(err, fmt.Sprintf("check suite %q fields", s.Name)), errtax.ConfigInvalid)
	}
	seen := make(map[string]bool, len(s.Scenarios))
	for _, sc := range s.Scenarios {
		if seen[sc.Name] {
			return errtax.Classify(errtax.WithHint(
				fmt.Errorf("duplicate scenario name %q", sc.Name), "scenario names must be unique within a suite",
			), errtax.ConfigInvalid)
		}
		seen[sc.Name] = true
		if err := sc.Validate(); err != nil {
			return err
		}
		if (sc.StoreData != nil || sc.GetData != nil) && !s.UseCorrelation {
			return errtax.Classify(errtax.WithHint(
				fmt.Errorf("scenario %q declares a correlation binding but suite %q has useCorrelation=false", sc.Name, s.Name),
				"set useCorrelation: true on the suite",
			), errtax.ConfigInvalid)
		}
	}
	return nil
}

// sortedTaskTypes returns m's taskType keys sorted, handy for
// deterministic iteration in tests and logging.
func (m TaskMix) sortedTaskTypes() []string {
	keys := make([]string, 0, len(m.Weights))
	for k := range m.Weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
