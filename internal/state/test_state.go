package state

import (
	"bytes"
	"context"
	"os/signal"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestState wraps GlobalState for use in tests, mocking every field
// that would otherwise touch the real process, grounded on the
// teacher's cmd/state.GlobalTestState.
type TestState struct {
	*GlobalState
	Cancel func()

	Stdout, Stderr *bytes.Buffer

	ExpectedExitCode int
}

// NewTestState returns a TestState with an in-memory filesystem, a
// buffered stdout/stderr, and an OSExit mock that asserts it was only
// called when ExpectedExitCode was set beforehand.
func NewTestState(t *testing.T) *TestState {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/test", 0o755))

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	ts := &TestState{
		Cancel: cancel,
		Stdout: new(bytes.Buffer),
		Stderr: new(bytes.Buffer),
	}

	osExitCalled := false
	t.Cleanup(func() {
		if ts.ExpectedExitCode > 0 {
			assert.Truef(t, osExitCalled, "expected exit code %d, but OSExit was never called", ts.ExpectedExitCode)
		}
	})

	outMutex := &sync.Mutex{}
	defaultFlags := DefaultFlags("/test/.config")

	ts.GlobalState = &GlobalState{
		Ctx:          ctx,
		FS:           fs,
		Getwd:        func() (string, error) { return "/test", nil },
		CmdArgs:      []string{},
		Env:          map[string]string{},
		DefaultFlags: defaultFlags,
		Flags:        defaultFlags,
		OutMutex:     outMutex,
		Stdout:       bufferConsoleWriter(ts.Stdout, outMutex),
		Stderr:       bufferConsoleWriter(ts.Stderr, outMutex),
		Stdin:        new(bytes.Buffer),
		OSExit: func(code int) {
			osExitCalled = true
			assert.Equal(t, ts.ExpectedExitCode, code)
			cancel()
		},
		SignalNotify:   signal.Notify,
		SignalStop:     signal.Stop,
		Logger:         logger,
		FallbackLogger: logger,
	}

	return ts
}
