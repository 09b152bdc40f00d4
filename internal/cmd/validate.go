package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vajraedge/vajraedge/internal/restclient"
	"github.com/vajraedge/vajraedge/internal/state"
	"github.com/vajraedge/vajraedge/pkg/config"
	"github.com/vajraedge/vajraedge/pkg/preflight"
)

// validateOptions holds validate-subcommand flags. Without --controller
// set, validation runs locally against the standard checks; with it
// set, the config is posted to a running controller's /api/validation
// route instead, exercising whatever checks that deployment configured.
type validateOptions struct {
	controllerAddress string
}

func newValidateCmd(gs *state.GlobalState) *cobra.Command {
	opts := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "run a test config through pre-flight validation without starting a test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(gs, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.controllerAddress, "controller", "", "controller REST API address; if unset, validation runs locally")
	return cmd
}

func runValidate(gs *state.GlobalState, opts *validateOptions, path string) error {
	cfg, err := config.LoadTestConfig(gs.FS, path)
	if err != nil {
		return errUsage("validate: load config %s: %v", path, err)
	}

	var report preflight.Report
	if opts.controllerAddress != "" {
		client, err := restclient.New(opts.controllerAddress)
		if err != nil {
			return errUsage("validate: %v", err)
		}
		report, err = client.Validate(gs.Ctx, cfg)
		if err != nil {
			return fmt.Errorf("validate: remote validation: %w", err)
		}
	} else {
		harness := preflight.New(preflight.StandardChecks()...)
		report = harness.Run(gs.Ctx, cfg)
	}

	printReport(gs, report)
	if !report.CanProceed {
		return errUsage("validate: pre-flight failed: %s", report.Status)
	}
	return nil
}

func printReport(gs *state.GlobalState, report preflight.Report) {
	fmt.Fprintf(gs.Stdout, "pre-flight: %s\n", report.Status)
	for _, r := range report.Results {
		fmt.Fprintf(gs.Stdout, "  %-24s %-5s %s\n", r.CheckName, r.Status, r.Message)
	}
}
