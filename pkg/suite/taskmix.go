package suite

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/vajraedge/vajraedge/pkg/config"
	"github.com/vajraedge/vajraedge/pkg/task"
)

// WeightedFactory picks a registered task.Factory by weighted choice
// over a TaskMix (spec §4.7): weights need not sum to 100, probability
// is w_i/Σw_j, and ties break by declaration order.
type WeightedFactory struct {
	names []string
	cum   []int
	total int

	lookup func(taskType string) (task.Factory, bool)
}

// NewWeightedFactory validates mix and builds a WeightedFactory over
// it, resolving each named taskType through lookup (ordinarily
// task.Registry.Lookup).
func NewWeightedFactory(mix config.TaskMix, lookup func(taskType string) (task.Factory, bool)) (*WeightedFactory, error) {
	if err := mix.Validate(); err != nil {
		return nil, err
	}

	order := mix.Order
	if len(order) == 0 {
		order = make([]string, 0, len(mix.Weights))
		for k := range mix.Weights {
			order = append(order, k)
		}
		sort.Strings(order)
	}

	wf := &WeightedFactory{lookup: lookup}
	cum := 0
	for _, name := range order {
		w := mix.Weights[name]
		if w <= 0 {
			continue
		}
		cum += w
		wf.names = append(wf.names, name)
		wf.cum = append(wf.cum, cum)
	}
	wf.total = cum
	return wf, nil
}

// pick returns one taskType name, weighted, ties broken by declaration
// order (guaranteed by cum being built in Order's iteration order).
func (wf *WeightedFactory) pick() string {
	r := rand.Intn(wf.total) + 1
	for i, boundary := range wf.cum {
		if r <= boundary {
			return wf.names[i]
		}
	}
	return wf.names[len(wf.names)-1]
}

// Factory is a task.Factory that, on each call, weighted-picks a
// taskType and delegates construction to its registered factory.
func (wf *WeightedFactory) Factory(params map[string]string) (task.Task, error) {
	name := wf.pick()
	factory, ok := wf.lookup(name)
	if !ok {
		return nil, fmt.Errorf("suite: taskMix references unregistered taskType %q", name)
	}
	return factory(params)
}
