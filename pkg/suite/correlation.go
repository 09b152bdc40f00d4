package suite

import (
	"context"
	"fmt"

	"github.com/vajraedge/vajraedge/pkg/task"
)

// Extractor pulls a correlation value out of a successful task.Result;
// ok is false when nothing should be stored for this result.
type Extractor func(task.Result) (value interface{}, ok bool)

// WithStoreData wraps factory so that after each successful execution,
// extractor(result) — if it yields one — is pushed to pool under key
// (spec §4.7's `storeData(key, extractor)`).
func WithStoreData(factory task.Factory, pool *DataPool, key string, extractor Extractor) task.Factory {
	return func(params map[string]string) (task.Task, error) {
		inner, err := factory(params)
		if err != nil {
			return nil, err
		}
		return storeTask{inner: inner, pool: pool, key: key, extractor: extractor}, nil
	}
}

type storeTask struct {
	inner     task.Task
	pool      *DataPool
	key       string
	extractor Extractor
}

func (t storeTask) Execute(ctx context.Context) task.Result {
	result := t.inner.Execute(ctx)
	if result.Success {
		if v, ok := t.extractor(result); ok {
			t.pool.Put(t.key, v)
		}
	}
	return result
}

// WithGetData wraps factory so that before each construction, a value
// is taken from pool under key and injected into taskParameters under
// injectKey as its fmt.Sprint representation; an empty pool injects the
// empty string, leaving it to the Task to decide whether that's an
// error (spec §4.7's "the scenario decides").
func WithGetData(factory task.Factory, pool *DataPool, key, injectKey string) task.Factory {
	return func(params map[string]string) (task.Task, error) {
		merged := make(map[string]string, len(params)+1)
		for k, v := range params {
			merged[k] = v
		}
		if v, ok := pool.Take(key); ok {
			merged[injectKey] = fmt.Sprint(v)
		} else {
			merged[injectKey] = ""
		}
		return factory(merged)
	}
}
