// Package restapi is VajraEdge's REST surface (spec §6): single-node
// test lifecycle, suite lifecycle, and pre-flight validation, routed
// exactly per spec §6's table. Built on kataras/iris/v12 — the
// teacher's current REST framework choice (see cmd/server/main.go and
// cmd/server.go); its predecessor gin + api2go/jsonapi stack, visible
// in the teacher's old api/v1 package, was not carried forward.
package restapi

import (
	"context"
	"sync"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/sirupsen/logrus"

	"github.com/vajraedge/vajraedge/internal/eventbus"
	"github.com/vajraedge/vajraedge/pkg/config"
	"github.com/vajraedge/vajraedge/pkg/preflight"
	"github.com/vajraedge/vajraedge/pkg/suite"
	"github.com/vajraedge/vajraedge/pkg/task"
	"github.com/vajraedge/vajraedge/pkg/testrunner"
)

// maxConcurrentTests bounds how many TestRunners this process runs at
// once (spec §5): the 10th accepted test saturates the server; the
// 11th concurrent request gets 503.
const maxConcurrentTests = 10

// testRetention bounds how long a TestRecord or suite that reached a
// terminal state on its own (completed, never explicitly stopped)
// stays queryable before a sweep evicts it. An explicit DELETE removes
// its entry immediately instead of waiting out this window.
const testRetention = 5 * time.Minute

// runningTest pairs a Runner with the cancel func that stops it early.
// Its own mutex guards terminalAt, which the run goroutine sets once on
// natural completion and every sweep/read checks concurrently.
type runningTest struct {
	runner *testrunner.Runner
	cancel context.CancelFunc

	mu         sync.Mutex
	terminalAt time.Time
}

// runningSuite pairs an Orchestrator with its cancel func and the
// ScenarioResults it last finished with, once done. Its own mutex
// guards the terminal fields, which the run goroutine writes once and
// every status/results request reads concurrently.
type runningSuite struct {
	orchestrator *suite.Orchestrator
	cancel       context.CancelFunc

	mu         sync.Mutex
	done       bool
	results    []suite.ScenarioResult
	err        error
	finishedAt time.Time
}

// Server is VajraEdge's single-process REST surface. It holds every
// TestRunner and suite.Orchestrator it has started, enforces
// maxConcurrentTests, and runs pre-flight before accepting a test.
type Server struct {
	app      *iris.Application
	registry *task.Registry
	harness  *preflight.Harness
	bus      *eventbus.System
	logger   logrus.FieldLogger

	mu     sync.Mutex
	tests  map[string]*runningTest
	suites map[string]*runningSuite
}

// New builds a Server wired to registry (for resolving taskType names),
// harness (run before every accepted test), and bus (lifecycle/metrics
// events streamed to subscribers).
func New(registry *task.Registry, harness *preflight.Harness, bus *eventbus.System, logger logrus.FieldLogger) *Server {
	s := &Server{
		app:      iris.New(),
		registry: registry,
		harness:  harness,
		bus:      bus,
		logger:   logger,
		tests:    make(map[string]*runningTest),
		suites:   make(map[string]*runningSuite),
	}
	s.registerRoutes()
	return s
}

// App exposes the underlying iris.Application, e.g. for tests that
// drive requests with httptest without binding a real listener.
func (s *Server) App() *iris.Application { return s.app }

// Run starts listening on addr, blocking until the server stops.
func (s *Server) Run(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) registerRoutes() {
	api := s.app.Party("/api")
	api.Post("/tests", s.createTest)
	api.Get("/tests/{id}", s.getTest)
	api.Delete("/tests/{id}", s.stopTest)
	api.Get("/tests", s.listTests)
	api.Post("/validation", s.validate)

	api.Post("/suites/start", s.startSuite)
	api.Get("/suites/{id}/status", s.suiteStatus)
	api.Get("/suites/{id}/results", s.suiteResults)
	api.Delete("/suites/{id}/stop", s.stopSuite)

	api.Get("/stream", s.streamMetrics)
}

func (s *Server) activeTestCount() int {
	s.sweepExpiredTests()
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tests)
}

// sweepExpiredTests evicts every test whose Runner finished on its own
// at least testRetention ago. Explicitly stopped tests never reach this
// path; stopTest deletes them immediately.
func (s *Server) sweepExpiredTests() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rt := range s.tests {
		rt.mu.Lock()
		expired := !rt.terminalAt.IsZero() && now.Sub(rt.terminalAt) >= testRetention
		rt.mu.Unlock()
		if expired {
			delete(s.tests, id)
		}
	}
}

// sweepExpiredSuites is sweepExpiredTests' suite-level counterpart.
func (s *Server) sweepExpiredSuites() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rs := range s.suites {
		rs.mu.Lock()
		expired := rs.done && !rs.finishedAt.IsZero() && now.Sub(rs.finishedAt) >= testRetention
		rs.mu.Unlock()
		if expired {
			delete(s.suites, id)
		}
	}
}

func writeError(ctx iris.Context, code int, message string) {
	ctx.StatusCode(code)
	_ = ctx.JSON(iris.Map{"error": message})
}
