package task_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vajraedge/vajraedge/pkg/task"
)

type fixedTask struct {
	result task.Result
}

func (t *fixedTask) Execute(context.Context) task.Result { return t.result }

func TestRegistryLookupAndNew(t *testing.T) {
	t.Parallel()

	r := task.NewRegistry()
	_, ok := r.Lookup("noop")
	assert.False(t, ok)

	r.Register("noop", func(params map[string]string) (task.Task, error) {
		return &fixedTask{result: task.Result{Success: true}}, nil
	})

	factory, ok := r.Lookup("noop")
	require.True(t, ok)
	require.NotNil(t, factory)

	got, err := r.New("noop", nil)
	require.NoError(t, err)
	result := got.Execute(context.Background())
	assert.True(t, result.Success)

	assert.Contains(t, r.TaskTypes(), "noop")
}

func TestRegistryNewUnregisteredTaskType(t *testing.T) {
	t.Parallel()

	r := task.NewRegistry()
	_, err := r.New("does-not-exist", nil)
	assert.Error(t, err)
}

func TestRegistryNewFactoryError(t *testing.T) {
	t.Parallel()

	r := task.NewRegistry()
	r.Register("bad", func(params map[string]string) (task.Task, error) {
		return nil, errors.New("missing required parameter")
	})

	_, err := r.New("bad", nil)
	assert.ErrorContains(t, err, "missing required parameter")
}

func TestRegisterOverwritesPriorFactory(t *testing.T) {
	t.Parallel()

	r := task.NewRegistry()
	r.Register("dup", func(map[string]string) (task.Task, error) {
		return &fixedTask{result: task.Result{Success: false}}, nil
	})
	r.Register("dup", func(map[string]string) (task.Task, error) {
		return &fixedTask{result: task.Result{Success: true}}, nil
	})

	got, err := r.New("dup", nil)
	require.NoError(t, err)
	assert.True(t, got.Execute(context.Background()).Success)
}
