// Package vajlog configures VajraEdge's logrus output from a
// state.GlobalFlags line, grounded on the teacher's cmd/root.go
// setupLoggers — reduced to three log formats (text, json, raw); the teacher's Loki/file log-output hooks are its own
// operational concern and not reused here (plain stderr/stdout only).
package vajlog

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/vajraedge/vajraedge/internal/state"
)

// RawFormatter prints only the log message, grounded on the teacher's
// cmd/root.go RawFormatter (used for its "raw" log-output line).
type RawFormatter struct{}

// Format implements logrus.Formatter.
func (RawFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return append([]byte(entry.Message), '\n'), nil
}

// Setup points gs.Logger at the output and format named by gs.Flags,
// matching the teacher's log-output/log-format handling for the subset
// VajraEdge carries forward ("stderr", "stdout", "none").
func Setup(gs *state.GlobalState) error {
	if gs.Flags.Verbose {
		gs.Logger.SetLevel(logrus.DebugLevel)
	}

	forceColors := false
	switch gs.Flags.LogOutput {
	case "", "stderr":
		forceColors = !gs.Flags.NoColor && gs.Stderr.IsTTY
		gs.Logger.SetOutput(gs.Stderr)
	case "stdout":
		forceColors = !gs.Flags.NoColor && gs.Stdout.IsTTY
		gs.Logger.SetOutput(gs.Stdout)
	case "none":
		gs.Logger.SetOutput(io.Discard)
	default:
		return fmt.Errorf("vajlog: unsupported log-output %q", gs.Flags.LogOutput)
	}

	switch gs.Flags.LogFormat {
	case "raw":
		gs.Logger.SetFormatter(RawFormatter{})
	case "json":
		gs.Logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		gs.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   forceColors,
			DisableColors: gs.Flags.NoColor,
		})
	}
	return nil
}
