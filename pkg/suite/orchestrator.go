package suite

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vajraedge/vajraedge/pkg/config"
	"github.com/vajraedge/vajraedge/pkg/task"
	"github.com/vajraedge/vajraedge/pkg/testrunner"
)

// ScenarioResult is one scenario's terminal outcome within a suite run.
type ScenarioResult struct {
	Name   string
	Status testrunner.Status
	Err    error
}

// Orchestrator runs a TestSuite (spec §4.7) as a SEQUENTIAL or PARALLEL
// composition of TestScenarios, sharing a DataPool across them when the
// suite declares UseCorrelation.
type Orchestrator struct {
	suite  config.TestSuite
	lookup func(taskType string) (task.Factory, bool)
	logger logrus.FieldLogger
	pool   *DataPool

	mu        sync.RWMutex
	completed int
	runners   []*testrunner.Runner
}

// New builds an Orchestrator for suite. lookup resolves a taskType name
// to its registered task.Factory (ordinarily task.Registry.Lookup).
func New(s config.TestSuite, lookup func(string) (task.Factory, bool), logger logrus.FieldLogger) *Orchestrator {
	return &Orchestrator{suite: s, lookup: lookup, logger: logger, pool: NewDataPool()}
}

// Pool returns the suite's shared DataPool.
func (o *Orchestrator) Pool() *DataPool { return o.pool }

// Run expands and runs every scenario, honoring ExecutionMode.
func (o *Orchestrator) Run(ctx context.Context) ([]ScenarioResult, error) {
	if o.suite.ExecutionMode == config.Parallel {
		return o.runParallel(ctx)
	}
	return o.runSequential(ctx)
}

func (o *Orchestrator) runSequential(ctx context.Context) ([]ScenarioResult, error) {
	results := make([]ScenarioResult, 0, len(o.suite.Scenarios))
	for _, sc := range o.suite.Scenarios {
		results = append(results, o.runScenario(ctx, sc))
		o.markCompleted()

		if sc.DelayAfter > 0 {
			select {
			case <-time.After(sc.DelayAfter):
			case <-ctx.Done():
				return results, ctx.Err()
			}
		}
	}
	return results, nil
}

func (o *Orchestrator) runParallel(ctx context.Context) ([]ScenarioResult, error) {
	results := make([]ScenarioResult, len(o.suite.Scenarios))
	var wg sync.WaitGroup
	for i, sc := range o.suite.Scenarios {
		i, sc := i, sc
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = o.runScenario(ctx, sc)
			o.markCompleted()
		}()
	}
	wg.Wait()
	return results, nil
}

func (o *Orchestrator) markCompleted() {
	o.mu.Lock()
	o.completed++
	o.mu.Unlock()
}

func (o *Orchestrator) runScenario(ctx context.Context, sc config.TestScenario) ScenarioResult {
	factory, err := o.resolveFactory(sc)
	if err != nil {
		return ScenarioResult{Name: sc.Name, Status: testrunner.Failed, Err: err}
	}

	r := testrunner.New(testrunner.NewTestID(), sc.Config, factory, o.logger)
	o.mu.Lock()
	o.runners = append(o.runners, r)
	o.mu.Unlock()

	if err := r.Run(ctx); err != nil {
		return ScenarioResult{Name: sc.Name, Status: r.Status(), Err: err}
	}
	return ScenarioResult{Name: sc.Name, Status: r.Status()}
}

func (o *Orchestrator) resolveFactory(sc config.TestScenario) (task.Factory, error) {
	var factory task.Factory
	if sc.TaskMix != nil {
		wf, err := NewWeightedFactory(*sc.TaskMix, o.lookup)
		if err != nil {
			return nil, err
		}
		factory = wf.Factory
	} else {
		f, ok := o.lookup(sc.Config.TaskType)
		if !ok {
			return nil, fmt.Errorf("suite: taskType %q is not registered", sc.Config.TaskType)
		}
		factory = f
	}

	if !o.suite.UseCorrelation {
		return factory, nil
	}
	// GetData must wrap innermost: it injects taskParameters before the
	// task is built. StoreData wraps outermost: it runs after Execute.
	if sc.GetData != nil {
		factory = WithGetData(factory, o.pool, sc.GetData.Key, sc.GetData.ParamKey)
	}
	if sc.StoreData != nil {
		field := sc.StoreData.MetadataField
		factory = WithStoreData(factory, o.pool, sc.StoreData.Key, func(r task.Result) (interface{}, bool) {
			v, ok := r.Metadata[field]
			return v, ok
		})
	}
	return factory, nil
}

// PercentComplete reports overall progress as completed/total scenarios
// (spec §4.7's PARALLEL formula; used as a reasonable approximation for
// SEQUENTIAL too, since elapsed-vs-sum requires per-scenario expected
// durations this type does not otherwise track).
func (o *Orchestrator) PercentComplete() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if len(o.suite.Scenarios) == 0 {
		return 100
	}
	return float64(o.completed) / float64(len(o.suite.Scenarios)) * 100
}
