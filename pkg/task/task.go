// Package task defines the workload contract VajraEdge's executor and
// concurrency controller drive: a Task produced by a registered Factory,
// run once, and reduced to a TaskResult. Spec §9 re-architects the
// original system's classpath-scanned plugin annotations into this
// explicit registry, grounded on the teacher's own preference for
// explicit registration (`actions/registry/registry.go`) over reflection
// or annotation scanning.
package task

import (
	"context"
	"fmt"
	"sync"
)

// Task is one unit of work; the atomic measurement subject (spec
// GLOSSARY). Execute must never panic — a panicking Task is a defect in
// the Task implementation, not something callers are expected to guard
// against beyond the executor's own recover boundary.
type Task interface {
	Execute(ctx context.Context) Result
}

// Factory builds a Task bound to taskParameters (spec §3's TestConfig
// field, forwarded verbatim). A Factory that returns an error marks the
// owning TestRunner FAILED without consuming any concurrency (spec
// §4.5) — construction failures are TEST_FATAL, never TASK_ERROR.
type Factory func(params map[string]string) (Task, error)

// Registry maps taskType names to Factories, populated at process
// startup. It supersedes the original system's classpath-scan plugin
// discovery (spec §9): the taskType string is the only catalogue key,
// and the runtime contract is purely the Task interface.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds factory under taskType, overwriting any prior
// registration for the same name — later registrations win, matching
// the teacher's own command-registry semantics.
func (r *Registry) Register(taskType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[taskType] = factory
}

// Lookup returns the Factory registered for taskType, if any.
func (r *Registry) Lookup(taskType string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[taskType]
	return f, ok
}

// New builds a Task for taskType with the given parameters. It returns
// a CONFIG_INVALID-flavored error (unwrapped here; callers classify via
// pkg/errtax) when taskType is not registered.
func (r *Registry) New(taskType string, params map[string]string) (Task, error) {
	factory, ok := r.Lookup(taskType)
	if !ok {
		return nil, fmt.Errorf("task: no factory registered for taskType %q", taskType)
	}
	t, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("task: construct %q: %w", taskType, err)
	}
	return t, nil
}

// TaskTypes returns every registered taskType name, for capability
// advertisement (spec §4.9 — a WorkerAgent's capabilities are exactly
// its local registry's taskType set).
func (r *Registry) TaskTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	return types
}
