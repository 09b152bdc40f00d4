package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewValidateCmdRequiresConfigArg(t *testing.T) {
	gs := newTestGlobalState(t)
	cmd := newValidateCmd(gs)
	assert.Error(t, cmd.Args(cmd, nil))
	assert.NoError(t, cmd.Args(cmd, []string{"config.yaml"}))
}

func TestRunValidateRejectsMissingConfig(t *testing.T) {
	gs := newTestGlobalState(t)
	opts := &validateOptions{}

	err := runValidate(gs, opts, "/does/not/exist.yaml")
	assert.Error(t, err)
}
