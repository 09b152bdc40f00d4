package restapi

import (
	"context"
	"time"

	"github.com/kataras/iris/v12"

	"github.com/vajraedge/vajraedge/pkg/config"
	"github.com/vajraedge/vajraedge/pkg/metrics"
	"github.com/vajraedge/vajraedge/pkg/testrunner"
)

type createTestResponse struct {
	TestID string            `json:"testId"`
	Status testrunner.Status `json:"status"`
}

// createTest is `POST /api/tests` (spec §6): 201 on accept, 400 with a
// pre-flight Report on FAIL, 503 on maxConcurrentTests breach.
func (s *Server) createTest(ctx iris.Context) {
	var cfg config.TestConfig
	if err := ctx.ReadJSON(&cfg); err != nil {
		writeError(ctx, iris.StatusBadRequest, err.Error())
		return
	}
	if err := cfg.Validate(); err != nil {
		writeError(ctx, iris.StatusBadRequest, err.Error())
		return
	}

	if s.activeTestCount() >= maxConcurrentTests {
		writeError(ctx, iris.StatusServiceUnavailable, "maxConcurrentTests reached")
		return
	}

	report := s.harness.Run(ctx.Request().Context(), cfg)
	if !report.CanProceed {
		ctx.StatusCode(iris.StatusBadRequest)
		_ = ctx.JSON(report)
		return
	}

	factory, ok := s.registry.Lookup(cfg.TaskType)
	if !ok {
		writeError(ctx, iris.StatusBadRequest, "no factory registered for taskType "+cfg.TaskType)
		return
	}

	testID := testrunner.NewTestID()
	runner := testrunner.New(testID, cfg, factory, s.logger, testrunner.WithEventBus(s.bus))
	runCtx, cancel := context.WithCancel(context.Background())

	rt := &runningTest{runner: runner, cancel: cancel}
	s.mu.Lock()
	s.tests[testID] = rt
	s.mu.Unlock()

	go func() {
		defer cancel()
		if err := runner.Run(runCtx); err != nil {
			s.logger.WithError(err).WithField("testId", testID).Warn("test run ended with error")
		}
		rt.mu.Lock()
		rt.terminalAt = time.Now()
		rt.mu.Unlock()
	}()

	ctx.StatusCode(iris.StatusCreated)
	_ = ctx.JSON(createTestResponse{TestID: testID, Status: runner.Status()})
}

type testView struct {
	TestID   string            `json:"testId"`
	Status   testrunner.Status `json:"status"`
	Snapshot metrics.Snapshot  `json:"snapshot"`
}

// getTest is `GET /api/tests/{id}`: the TestRecord plus its latest
// snapshot, or 404 if unknown.
func (s *Server) getTest(ctx iris.Context) {
	id := ctx.Params().Get("id")
	s.sweepExpiredTests()

	s.mu.Lock()
	rt, ok := s.tests[id]
	s.mu.Unlock()
	if !ok {
		writeError(ctx, iris.StatusNotFound, "unknown testId")
		return
	}

	_ = ctx.JSON(testView{
		TestID:   id,
		Status:   rt.runner.Status(),
		Snapshot: rt.runner.Engine().Snapshot(),
	})
}

// stopTest is `DELETE /api/tests/{id}`: cancels the Runner's context,
// which drives it through DRAINING to STOPPED, and removes the entry
// from the active-tests map immediately. A submit-then-stop round trip
// must not leave anything behind for the retention sweep to still be
// holding.
func (s *Server) stopTest(ctx iris.Context) {
	id := ctx.Params().Get("id")
	s.sweepExpiredTests()

	s.mu.Lock()
	rt, ok := s.tests[id]
	if ok {
		delete(s.tests, id)
	}
	s.mu.Unlock()
	if !ok {
		writeError(ctx, iris.StatusNotFound, "unknown testId")
		return
	}

	rt.cancel()
	_ = ctx.JSON(iris.Map{"stopped": true})
}

// listTests is `GET /api/tests`: every active test's id and status.
func (s *Server) listTests(ctx iris.Context) {
	s.sweepExpiredTests()

	s.mu.Lock()
	active := make(map[string]testrunner.Status, len(s.tests))
	for id, rt := range s.tests {
		active[id] = rt.runner.Status()
	}
	s.mu.Unlock()

	_ = ctx.JSON(iris.Map{"activeTests": active, "count": len(active)})
}

// validate is `POST /api/validation`: runs pre-flight without starting
// a test.
func (s *Server) validate(ctx iris.Context) {
	var cfg config.TestConfig
	if err := ctx.ReadJSON(&cfg); err != nil {
		writeError(ctx, iris.StatusBadRequest, err.Error())
		return
	}
	if err := cfg.Validate(); err != nil {
		writeError(ctx, iris.StatusBadRequest, err.Error())
		return
	}

	report := s.harness.Run(ctx.Request().Context(), cfg)
	_ = ctx.JSON(report)
}
