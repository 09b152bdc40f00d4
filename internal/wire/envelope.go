// Package wire implements VajraEdge's controller↔worker protocol: a
// typed JSON message envelope carried over a persistent websocket duplex
// connection, grounded on the teacher's pre-protobuf comm.Message
// wire format (itself topic-prefixed, null-byte-delimited JSON frames
// over a ZeroMQ pub/sub bus). See DESIGN.md for why real protobuf/gRPC
// code generation was not used in its place.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type names one of the envelope kinds exchanged between controller and
// worker (spec §4.9, §6).
type Type string

const (
	TypeRegisterWorker    Type = "REGISTER_WORKER"
	TypeRegisterWorkerAck Type = "REGISTER_WORKER_ACK"
	TypeHeartbeat         Type = "HEARTBEAT"
	TypeHeartbeatAck      Type = "HEARTBEAT_ACK"
	TypeAssignTask        Type = "ASSIGN_TASK"
	TypeAssignTaskAck     Type = "ASSIGN_TASK_ACK"
	TypeStopTest          Type = "STOP_TEST"
	TypeStopTestAck       Type = "STOP_TEST_ACK"
	TypeMetricsPush       Type = "METRICS_PUSH"
	TypeMetricsAck        Type = "METRICS_ACK"
	TypeError             Type = "ERROR"
)

// Envelope is a single directed wire message. Compressed is set when
// Payload holds a deflate-compressed JSON document rather than raw JSON
// (see conn.go); it is never compressed here, only marked.
type Envelope struct {
	Type       Type   `json:"type"`
	Payload    []byte `json:"payload,omitempty"`
	Compressed bool   `json:"compressed,omitempty"`
}

// WithPayload marshals src as JSON into e's Payload, returning the
// updated envelope.
func (e Envelope) WithPayload(src interface{}) (Envelope, error) {
	payload, err := json.Marshal(src)
	if err != nil {
		return e, fmt.Errorf("wire: encode %s payload: %w", e.Type, err)
	}
	e.Payload = payload
	return e, nil
}

// With is WithPayload for callers that know src is always marshalable
// (e.g. the repo's own wire DTOs) and would rather panic than propagate
// an encode error that can never occur in practice.
func (e Envelope) With(src interface{}) Envelope {
	e, err := e.WithPayload(src)
	if err != nil {
		panic(err)
	}
	return e
}

// WithError packs err's message as the payload of a TypeError envelope.
func WithError(err error) Envelope {
	e := Envelope{Type: TypeError}
	e.Payload, _ = json.Marshal(err.Error())
	return e
}

// Take unmarshals e's Payload into dst.
func (e Envelope) Take(dst interface{}) error {
	if len(e.Payload) == 0 {
		return errors.New("wire: empty payload")
	}
	return json.Unmarshal(e.Payload, dst)
}

// TakeError decodes a TypeError envelope's payload back into an error.
func (e Envelope) TakeError() error {
	var text string
	if err := e.Take(&text); err != nil {
		return fmt.Errorf("wire: decode error payload: %w", err)
	}
	return errors.New(text)
}

// New builds an empty envelope of the given type.
func New(t Type) Envelope {
	return Envelope{Type: t}
}
