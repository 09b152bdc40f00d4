package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vajraedge/vajraedge/internal/controlplane"
	"github.com/vajraedge/vajraedge/internal/eventbus"
	"github.com/vajraedge/vajraedge/internal/restapi"
	"github.com/vajraedge/vajraedge/internal/state"
	"github.com/vajraedge/vajraedge/pkg/preflight"
	"github.com/vajraedge/vajraedge/pkg/task"
)

const workerSweepInterval = 5 * time.Second

// controllerOptions holds controller-subcommand flags, grounded on the
// teacher's actions/master.go flag set for its own controller process.
type controllerOptions struct {
	restAddress   string
	workerAddress string
}

func newControllerCmd(gs *state.GlobalState) *cobra.Command {
	opts := &controllerOptions{
		restAddress:   "localhost:6565",
		workerAddress: "localhost:6566",
	}
	cmd := &cobra.Command{
		Use:   "controller",
		Short: "run the controller process (REST API + worker control plane)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runController(gs, opts)
		},
	}
	cmd.Flags().StringVar(&opts.restAddress, "rest-address", opts.restAddress, "address the client-facing REST API listens on")
	cmd.Flags().StringVar(&opts.workerAddress, "worker-address", opts.workerAddress, "address the worker control plane listens on")
	return cmd
}

func runController(gs *state.GlobalState, opts *controllerOptions) error {
	registry := task.NewRegistry()
	registry.Register("http", task.NewHTTPTaskFactory(nil))

	harness := preflight.New(preflight.StandardChecks()...)
	bus := eventbus.NewEventSystem(256, gs.Logger)

	workerRegistry := controlplane.NewWorkerRegistry()
	aggregator := controlplane.NewAggregator()
	cs := controlplane.NewControllerServer(workerRegistry, aggregator, gs.Logger)

	restServer := restapi.New(registry, harness, bus, gs.Logger)

	ctx, cancel := context.WithCancel(gs.Ctx)
	defer cancel()

	go sweepWorkerHealth(ctx, workerRegistry, gs.Logger)

	workerMux := http.NewServeMux()
	workerMux.HandleFunc("/worker", cs.WorkerHandler())
	workerSrv := &http.Server{Addr: opts.workerAddress, Handler: workerMux}

	errCh := make(chan error, 2)
	go func() {
		gs.Logger.WithField("address", opts.workerAddress).Info("worker control plane listening")
		if err := workerSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	go func() {
		gs.Logger.WithField("address", opts.restAddress).Info("REST API listening")
		if err := restServer.Run(opts.restAddress); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		_ = workerSrv.Close()
		return ctx.Err()
	}
}

// sweepWorkerHealth runs WorkerRegistry.SweepHealth on the heartbeat
// cadence until ctx is cancelled, logging every worker that transitions
// to UNHEALTHY or EVICTED.
func sweepWorkerHealth(ctx context.Context, registry *controlplane.WorkerRegistry, logger logrus.FieldLogger) {
	ticker := time.NewTicker(workerSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			unhealthy, evicted := registry.SweepHealth(now)
			for _, id := range unhealthy {
				logger.WithField("workerId", id).Warn("worker marked unhealthy")
			}
			for _, id := range evicted {
				logger.WithField("workerId", id).Warn("worker evicted")
			}
		}
	}
}
