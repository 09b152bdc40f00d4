package state

import (
	"path/filepath"
	"slices"
	"strconv"
)

// GlobalFlags contains global config values that apply to every
// VajraEdge subcommand, grounded on the teacher's GlobalFlags (trimmed
// to the flags VajraEdge's controller/worker/run/validate surface
// actually uses — the teacher's extension-resolution and build-service
// flags are k6 JS-runtime concerns, out of scope here).
type GlobalFlags struct {
	ConfigFilePath string
	Quiet          bool
	NoColor        bool
	Verbose        bool
	Address        string
	LogOutput      string
	LogFormat      string
}

// DefaultFlags returns VajraEdge's default global flags.
func DefaultFlags(confDir string) GlobalFlags {
	return GlobalFlags{
		Address:        "localhost:6565",
		ConfigFilePath: filepath.Join(confDir, "vajraedge", defaultConfigFileName),
		LogOutput:      "stderr",
	}
}

// flagsFromEnv overlays env-var overrides onto defaultFlags, mirroring
// the VAJRAEDGE_-prefixed analogues of the teacher's K6_ env vars.
func flagsFromEnv(defaultFlags GlobalFlags, env map[string]string) GlobalFlags {
	result := defaultFlags

	if val, ok := env["VAJRAEDGE_CONFIG"]; ok {
		result.ConfigFilePath = val
	}
	if val, ok := env["VAJRAEDGE_ADDRESS"]; ok {
		result.Address = val
	}
	if val, ok := env["VAJRAEDGE_LOG_OUTPUT"]; ok {
		result.LogOutput = val
	}
	if val, ok := env["VAJRAEDGE_LOG_FORMAT"]; ok {
		result.LogFormat = val
	}
	if env["VAJRAEDGE_NO_COLOR"] != "" {
		result.NoColor = true
	}
	if _, ok := env["NO_COLOR"]; ok { // https://no-color.org/
		result.NoColor = true
	}
	if v, ok := env["VAJRAEDGE_VERBOSE"]; ok {
		if vb, err := strconv.ParseBool(v); err == nil {
			result.Verbose = vb
		}
	}

	return result
}

// verboseFlagSet reports whether -v/--verbose appears in args, the way
// the teacher's getFlags checks os.Args directly before cobra parses
// persistent flags.
func verboseFlagSet(args []string) bool {
	return slices.Contains(args, "-v") || slices.Contains(args, "--verbose")
}
