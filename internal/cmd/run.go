package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vajraedge/vajraedge/internal/restclient"
	"github.com/vajraedge/vajraedge/internal/state"
	"github.com/vajraedge/vajraedge/pkg/config"
)

// runOptions holds run-subcommand flags, grounded on grafana-k6's
// actions/run/command.go (submit a config, then poll for completion).
type runOptions struct {
	controllerAddress string
	pollInterval      time.Duration
}

func newRunCmd(gs *state.GlobalState) *cobra.Command {
	opts := &runOptions{
		controllerAddress: "localhost:6565",
		pollInterval:      2 * time.Second,
	}
	cmd := &cobra.Command{
		Use:   "run <config-file>",
		Short: "submit a test config to a running controller and wait for it to finish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(gs, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.controllerAddress, "controller", opts.controllerAddress, "controller REST API address")
	cmd.Flags().DurationVar(&opts.pollInterval, "poll-interval", opts.pollInterval, "how often to poll test status")
	return cmd
}

func runRun(gs *state.GlobalState, opts *runOptions, path string) error {
	cfg, err := config.LoadTestConfig(gs.FS, path)
	if err != nil {
		return errUsage("run: load config %s: %v", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return errUsage("run: invalid config: %v", err)
	}

	client, err := restclient.New(opts.controllerAddress)
	if err != nil {
		return errUsage("run: %v", err)
	}

	created, err := client.CreateTest(gs.Ctx, cfg)
	if err != nil {
		return fmt.Errorf("run: submit test: %w", err)
	}
	fmt.Fprintf(gs.Stdout, "test %s submitted, status=%s\n", created.TestID, created.Status)

	return pollUntilTerminal(gs.Ctx, gs, client, created.TestID, opts.pollInterval)
}

func pollUntilTerminal(ctx context.Context, gs *state.GlobalState, client *restclient.Client, testID string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			view, err := client.GetTest(ctx, testID)
			if err != nil {
				return fmt.Errorf("run: poll test %s: %w", testID, err)
			}
			fmt.Fprintf(gs.Stdout, "test %s status=%s\n", testID, view.Status)
			if isTerminalStatus(view.Status) {
				return nil
			}
		}
	}
}

// isTerminalStatus reports whether status ends a TestRunner's
// lifecycle: COMPLETED, STOPPED, and FAILED are terminal; every other
// state keeps polling.
func isTerminalStatus(status string) bool {
	switch status {
	case "COMPLETED", "STOPPED", "FAILED":
		return true
	default:
		return false
	}
}
