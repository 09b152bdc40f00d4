package cmd

import (
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/vajraedge/vajraedge/internal/state"
	"github.com/vajraedge/vajraedge/internal/wire"
	"github.com/vajraedge/vajraedge/internal/workeragent"
	"github.com/vajraedge/vajraedge/pkg/task"
)

// workerOptions holds worker-subcommand flags, grounded on the
// teacher's actions/worker/worker.go flag set for its own worker
// process (controller address, worker identity, capacity).
type workerOptions struct {
	controllerAddress string
	workerID          string
	hostname          string
	maxCapacity       int
}

func newWorkerCmd(gs *state.GlobalState) *cobra.Command {
	opts := &workerOptions{
		controllerAddress: "localhost:6566",
		hostname:          "",
		maxCapacity:       100,
	}
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "run a worker process that executes tasks assigned by a controller",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.workerID == "" {
				return errUsage("worker: --id is required")
			}
			return runWorker(gs, opts)
		},
	}
	cmd.Flags().StringVar(&opts.controllerAddress, "controller", opts.controllerAddress, "controller worker-control-plane address")
	cmd.Flags().StringVar(&opts.workerID, "id", opts.workerID, "this worker's unique workerId")
	cmd.Flags().StringVar(&opts.hostname, "hostname", opts.hostname, "hostname reported at registration")
	cmd.Flags().IntVar(&opts.maxCapacity, "max-capacity", opts.maxCapacity, "maximum concurrent tasks this worker accepts")
	return cmd
}

func runWorker(gs *state.GlobalState, opts *workerOptions) error {
	registry := task.NewRegistry()
	registry.Register("http", task.NewHTTPTaskFactory(nil))

	u := url.URL{Scheme: "ws", Host: opts.controllerAddress, Path: "/worker"}
	ws, _, err := websocket.DefaultDialer.DialContext(gs.Ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("worker: dial controller at %s: %w", opts.controllerAddress, err)
	}
	conn := wire.NewConn(ws)
	defer conn.Close()

	hostname := opts.hostname
	if hostname == "" {
		hostname, _ = gs.Getwd()
	}

	agent := workeragent.New(opts.workerID, hostname, opts.maxCapacity, registry, conn, gs.Logger)
	// Run performs the registration handshake itself before serving.
	return agent.Run(gs.Ctx)
}
