package restapi

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12"

	"github.com/vajraedge/vajraedge/pkg/config"
	"github.com/vajraedge/vajraedge/pkg/suite"
)

type startSuiteResponse struct {
	SuiteID string `json:"suiteId"`
}

// startSuite is `POST /api/suites/start`: builds a suite.Orchestrator
// and runs it in the background, the suite-level analogue of
// createTest.
func (s *Server) startSuite(ctx iris.Context) {
	var ts config.TestSuite
	if err := ctx.ReadJSON(&ts); err != nil {
		writeError(ctx, iris.StatusBadRequest, err.Error())
		return
	}
	if err := ts.Validate(); err != nil {
		writeError(ctx, iris.StatusBadRequest, err.Error())
		return
	}
	if ts.SuiteID == "" {
		ts.SuiteID = uuid.NewString()
	}

	orch := suite.New(ts, s.registry.Lookup, s.logger)
	runCtx, cancel := context.WithCancel(context.Background())

	rs := &runningSuite{orchestrator: orch, cancel: cancel}
	s.mu.Lock()
	s.suites[ts.SuiteID] = rs
	s.mu.Unlock()

	go func() {
		defer cancel()
		results, err := orch.Run(runCtx)

		rs.mu.Lock()
		rs.done = true
		rs.results = results
		rs.err = err
		rs.finishedAt = time.Now()
		rs.mu.Unlock()

		if err != nil {
			s.logger.WithError(err).WithField("suiteId", ts.SuiteID).Warn("suite run ended with error")
		}
	}()

	ctx.StatusCode(iris.StatusCreated)
	_ = ctx.JSON(startSuiteResponse{SuiteID: ts.SuiteID})
}

type suiteStatusView struct {
	SuiteID         string  `json:"suiteId"`
	Done            bool    `json:"done"`
	PercentComplete float64 `json:"percentComplete"`
}

// suiteStatus is `GET /api/suites/{id}/status`.
func (s *Server) suiteStatus(ctx iris.Context) {
	id := ctx.Params().Get("id")
	s.sweepExpiredSuites()
	rs, ok := s.lookupSuite(id)
	if !ok {
		writeError(ctx, iris.StatusNotFound, "unknown suiteId")
		return
	}

	rs.mu.Lock()
	done := rs.done
	rs.mu.Unlock()

	_ = ctx.JSON(suiteStatusView{
		SuiteID:         id,
		Done:            done,
		PercentComplete: rs.orchestrator.PercentComplete(),
	})
}

type suiteResultsView struct {
	SuiteID string                 `json:"suiteId"`
	Done    bool                   `json:"done"`
	Results []suite.ScenarioResult `json:"results,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// suiteResults is `GET /api/suites/{id}/results`: the ScenarioResults
// once the suite has finished; an empty list while still running.
func (s *Server) suiteResults(ctx iris.Context) {
	id := ctx.Params().Get("id")
	s.sweepExpiredSuites()
	rs, ok := s.lookupSuite(id)
	if !ok {
		writeError(ctx, iris.StatusNotFound, "unknown suiteId")
		return
	}

	rs.mu.Lock()
	view := suiteResultsView{SuiteID: id, Done: rs.done, Results: rs.results}
	if rs.err != nil {
		view.Error = rs.err.Error()
	}
	rs.mu.Unlock()
	_ = ctx.JSON(view)
}

// stopSuite is `DELETE /api/suites/{id}/stop`: cancels every running
// scenario and removes the suite's entry immediately, mirroring
// stopTest's round-trip guarantee at the suite level.
func (s *Server) stopSuite(ctx iris.Context) {
	id := ctx.Params().Get("id")
	s.sweepExpiredSuites()

	s.mu.Lock()
	rs, ok := s.suites[id]
	if ok {
		delete(s.suites, id)
	}
	s.mu.Unlock()
	if !ok {
		writeError(ctx, iris.StatusNotFound, "unknown suiteId")
		return
	}

	rs.cancel()
	_ = ctx.JSON(iris.Map{"stopped": true})
}

func (s *Server) lookupSuite(id string) (*runningSuite, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, ok := s.suites[id]
	return rs, ok
}
