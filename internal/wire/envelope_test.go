package wire_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vajraedge/vajraedge/internal/wire"
)

type heartbeatPayload struct {
	WorkerID string `json:"workerId"`
	Seq      int    `json:"seq"`
}

func TestEnvelopeRoundTrip(t *testing.T) {
	t.Parallel()

	env := wire.New(wire.TypeHeartbeat).With(heartbeatPayload{WorkerID: "w-1", Seq: 3})
	assert.Equal(t, wire.TypeHeartbeat, env.Type)

	var decoded heartbeatPayload
	require.NoError(t, env.Take(&decoded))
	assert.Equal(t, "w-1", decoded.WorkerID)
	assert.Equal(t, 3, decoded.Seq)
}

func TestEnvelopeWithPayloadError(t *testing.T) {
	t.Parallel()

	_, err := wire.New(wire.TypeAssignTask).WithPayload(make(chan int))
	assert.Error(t, err)
}

func TestEnvelopeWithPanicsOnEncodeError(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		wire.New(wire.TypeAssignTask).With(make(chan int))
	})
}

func TestEnvelopeError(t *testing.T) {
	t.Parallel()

	env := wire.WithError(errors.New("worker unreachable"))
	assert.Equal(t, wire.TypeError, env.Type)
	assert.EqualError(t, env.TakeError(), "worker unreachable")
}

func TestEnvelopeTakeEmptyPayload(t *testing.T) {
	t.Parallel()

	env := wire.New(wire.TypeHeartbeatAck)
	var decoded heartbeatPayload
	assert.Error(t, env.Take(&decoded))
}
