// Package state groups VajraEdge's process-external state — CLI args,
// env vars, standard input/output/error, the logger — behind one
// struct, grounded on the teacher's cmd/state.GlobalState: the same
// split between a real os-backed constructor and a test constructor
// that mocks every field.
package state

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const defaultConfigFileName = "config.yaml"

// ConsoleWriter synchronizes writes across stdout/stderr with a shared
// mutex, grounded verbatim on the teacher's cmd/ui.go consoleWriter.
type ConsoleWriter struct {
	Writer io.Writer
	IsTTY  bool
	Mutex  *sync.Mutex
}

// Write locks Mutex for the duration of the underlying write.
func (w *ConsoleWriter) Write(p []byte) (int, error) {
	w.Mutex.Lock()
	defer w.Mutex.Unlock()
	return w.Writer.Write(p)
}

// GlobalState is VajraEdge's process-external state: everything that
// would otherwise be reached through bare `os` package calls scattered
// across the codebase. Grouping it here means `internal/cmd` can swap
// in a fully mocked state for tests without touching a real terminal,
// filesystem, or environment.
type GlobalState struct {
	Ctx context.Context

	FS      afero.Fs
	Getwd   func() (string, error)
	CmdArgs []string
	Env     map[string]string

	DefaultFlags, Flags GlobalFlags

	OutMutex       *sync.Mutex
	Stdout, Stderr *ConsoleWriter
	Stdin          io.Reader

	OSExit       func(int)
	SignalNotify func(chan<- os.Signal, ...os.Signal)
	SignalStop   func(chan<- os.Signal)

	Logger         *logrus.Logger
	FallbackLogger logrus.FieldLogger
}

// New returns a GlobalState backed by the real process environment.
// This is the only place in VajraEdge that should read os.Stdout,
// os.Stderr, os.Environ, and friends directly — every other package
// takes a *GlobalState instead.
func New(ctx context.Context) *GlobalState {
	isDumbTerm := os.Getenv("TERM") == "dumb"
	stdoutTTY := !isDumbTerm && (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))
	stderrTTY := !isDumbTerm && (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
	outMutex := &sync.Mutex{}
	stdout := &ConsoleWriter{Writer: colorable.NewColorable(os.Stdout), IsTTY: stdoutTTY, Mutex: outMutex}
	stderr := &ConsoleWriter{Writer: colorable.NewColorable(os.Stderr), IsTTY: stderrTTY, Mutex: outMutex}

	confDir, err := os.UserConfigDir()
	if err != nil {
		confDir = ".config"
	}

	env := buildEnvMap(os.Environ())
	defaultFlags := DefaultFlags(confDir)
	flags := flagsFromEnv(defaultFlags, env)
	if verboseFlagSet(os.Args) {
		flags.Verbose = true
	}

	logLevel := logrus.InfoLevel
	if flags.Verbose {
		logLevel = logrus.DebugLevel
	}
	logger := &logrus.Logger{
		Out: stderr,
		Formatter: &logrus.TextFormatter{
			ForceColors:   stderrTTY,
			DisableColors: !stderrTTY || flags.NoColor,
		},
		Hooks: make(logrus.LevelHooks),
		Level: logLevel,
	}

	return &GlobalState{
		Ctx:          ctx,
		FS:           afero.NewOsFs(),
		Getwd:        os.Getwd,
		CmdArgs:      append([]string(nil), os.Args...),
		Env:          env,
		DefaultFlags: defaultFlags,
		Flags:        flags,
		OutMutex:     outMutex,
		Stdout:       stdout,
		Stderr:       stderr,
		Stdin:        os.Stdin,
		OSExit:       os.Exit,
		SignalNotify: signal.Notify,
		SignalStop:   signal.Stop,
		Logger:       logger,
		FallbackLogger: &logrus.Logger{
			Out:       stderr,
			Formatter: new(logrus.TextFormatter),
			Hooks:     make(logrus.LevelHooks),
			Level:     logrus.InfoLevel,
		},
	}
}

func buildEnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, _ := strings.Cut(kv, "=")
		env[k] = v
	}
	return env
}

// bufferConsoleWriter builds a non-TTY ConsoleWriter over an in-memory
// buffer, for use by NewTestState.
func bufferConsoleWriter(buf *bytes.Buffer, mu *sync.Mutex) *ConsoleWriter {
	return &ConsoleWriter{Writer: buf, IsTTY: false, Mutex: mu}
}
