package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWorkerCmdRequiresID(t *testing.T) {
	gs := newTestGlobalState(t)
	cmd := newWorkerCmd(gs)
	cmd.SetArgs(nil)

	err := cmd.RunE(cmd, nil)
	assert.Error(t, err)
}

func TestNewWorkerCmdDefaultFlags(t *testing.T) {
	gs := newTestGlobalState(t)
	cmd := newWorkerCmd(gs)

	addr, err := cmd.Flags().GetString("controller")
	assert.NoError(t, err)
	assert.Equal(t, "localhost:6566", addr)

	cap, err := cmd.Flags().GetInt("max-capacity")
	assert.NoError(t, err)
	assert.Equal(t, 100, cap)
}
