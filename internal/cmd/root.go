// Package cmd implements VajraEdge's CLI surface: the controller,
// worker, run, and validate subcommands, grounded on grafana-k6's
// cmd/root.go rootCommand (cobra root + persistent flag set resolving
// into one state.GlobalState) and its older actions/registry.go
// command-registry convention.
package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vajraedge/vajraedge/internal/state"
	"github.com/vajraedge/vajraedge/internal/vajlog"
	"github.com/vajraedge/vajraedge/pkg/errtax"
)

const banner = "VajraEdge — distributed load testing"

// rootCommand holds everything needed to run and tear down the cobra
// command tree, grounded on grafana-k6's own rootCommand type.
type rootCommand struct {
	gs  *state.GlobalState
	cmd *cobra.Command
}

// newRootCommand builds the cobra command tree bound to gs.
func newRootCommand(gs *state.GlobalState) *rootCommand {
	c := &rootCommand{gs: gs}

	root := &cobra.Command{
		Use:               "vajraedge",
		Short:             "a distributed load-testing controller/worker/CLI",
		Long:              "\n" + getBanner(gs.Flags.NoColor || !gs.Stdout.IsTTY),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
	}
	root.PersistentFlags().AddFlagSet(rootPersistentFlagSet(gs))
	if len(gs.CmdArgs) > 1 {
		root.SetArgs(gs.CmdArgs[1:])
	} else {
		root.SetArgs(nil)
	}
	root.SetOut(gs.Stdout)
	root.SetErr(gs.Stderr)
	root.SetIn(gs.Stdin)

	root.AddCommand(
		newControllerCmd(gs),
		newWorkerCmd(gs),
		newRunCmd(gs),
		newValidateCmd(gs),
	)

	c.cmd = root
	return c
}

func (c *rootCommand) persistentPreRunE(*cobra.Command, []string) error {
	return vajlog.Setup(c.gs)
}

// Execute builds and runs the command tree against the real process
// environment, translating the returned error to a process exit code
// via pkg/errtax — this is cmd/vajraedge/main.go's sole entry point.
func Execute(ctx context.Context, gs *state.GlobalState) {
	root := newRootCommand(gs)
	if err := root.cmd.Execute(); err != nil {
		errtax.Fprint(gs.Logger, err)
		gs.OSExit(errtax.ExitCode(err))
		return
	}
	gs.OSExit(0)
}

func getBanner(noColor bool) string {
	c := color.New(color.FgCyan)
	if noColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c.Sprint(banner)
}

func rootPersistentFlagSet(gs *state.GlobalState) *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)

	flags.StringVarP(&gs.Flags.ConfigFilePath, "config", "c", gs.Flags.ConfigFilePath, "config file path")
	flags.Lookup("config").DefValue = gs.DefaultFlags.ConfigFilePath

	flags.StringVar(&gs.Flags.LogOutput, "log-output", gs.Flags.LogOutput, "stderr, stdout, or none")
	flags.Lookup("log-output").DefValue = gs.DefaultFlags.LogOutput

	flags.StringVar(&gs.Flags.LogFormat, "log-format", gs.Flags.LogFormat, "text, json, or raw")

	flags.BoolVar(&gs.Flags.NoColor, "no-color", gs.Flags.NoColor, "disable colored output")
	flags.Lookup("no-color").DefValue = strconv.FormatBool(gs.DefaultFlags.NoColor)

	flags.BoolVarP(&gs.Flags.Verbose, "verbose", "v", gs.DefaultFlags.Verbose, "enable debug logging")
	flags.BoolVarP(&gs.Flags.Quiet, "quiet", "q", gs.DefaultFlags.Quiet, "disable progress output")
	flags.StringVarP(&gs.Flags.Address, "address", "a", gs.DefaultFlags.Address, "controller REST API address")

	return flags
}

// errUsage wraps err as a CONFIG_INVALID error (exit code 2), for flag
// and argument mistakes caught before any network call is made.
func errUsage(format string, args ...interface{}) error {
	return errtax.Classify(fmt.Errorf(format, args...), errtax.ConfigInvalid)
}
