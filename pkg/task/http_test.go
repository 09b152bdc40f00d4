package task_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vajraedge/vajraedge/pkg/task"
)

func TestHTTPTaskSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bearer-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	factory := task.NewHTTPTaskFactory(nil)
	tsk, err := factory(map[string]string{
		"url":     srv.URL,
		"headers": `{"Authorization":"bearer-token"}`,
	})
	require.NoError(t, err)

	result := tsk.Execute(context.Background())
	assert.True(t, result.Success)
	assert.EqualValues(t, 2, result.ResponseSize)
	assert.Equal(t, "200", result.Metadata["statusCode"])
}

func TestHTTPTaskNon2xxIsFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	factory := task.NewHTTPTaskFactory(nil)
	tsk, err := factory(map[string]string{"url": srv.URL})
	require.NoError(t, err)

	result := tsk.Execute(context.Background())
	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "500")
}

func TestHTTPTaskRequiresURL(t *testing.T) {
	t.Parallel()

	factory := task.NewHTTPTaskFactory(nil)
	_, err := factory(map[string]string{})
	assert.Error(t, err)
}

func TestHTTPTaskInvalidHeadersJSON(t *testing.T) {
	t.Parallel()

	factory := task.NewHTTPTaskFactory(nil)
	_, err := factory(map[string]string{"url": "http://example.invalid", "headers": "{not json"})
	assert.Error(t, err)
}
