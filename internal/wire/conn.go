package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/flate"
)

// compressThreshold is the payload size, in bytes, above which Conn.Send
// deflate-compresses the envelope payload before writing it. Bulk
// TestAssignment parameter sets are the only envelopes expected to
// cross it in practice.
const compressThreshold = 4096

// Conn is a single persistent controller↔worker duplex connection.
// Writes are serialized with a mutex because gorilla/websocket forbids
// concurrent writers on the same connection; reads are assumed to come
// from a single owning goroutine, matching how both WorkerAgent and the
// controller's per-worker session loop use it.
type Conn struct {
	ws *websocket.Conn

	writeMx sync.Mutex
}

// NewConn wraps an established websocket connection.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// Send compresses (if large) and writes env as a single binary websocket
// message.
func (c *Conn) Send(env Envelope) error {
	if !env.Compressed && len(env.Payload) > compressThreshold {
		compressed, err := deflate(env.Payload)
		if err != nil {
			return fmt.Errorf("wire: compress payload: %w", err)
		}
		env.Payload = compressed
		env.Compressed = true
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("wire: marshal envelope: %w", err)
	}

	c.writeMx.Lock()
	defer c.writeMx.Unlock()
	if err := c.ws.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("wire: write message: %w", err)
	}
	return nil
}

// Recv reads and decodes the next envelope, inflating its payload first
// if it was sent compressed.
func (c *Conn) Recv() (Envelope, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return Envelope{}, fmt.Errorf("wire: read message: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("wire: unmarshal envelope: %w", err)
	}

	if env.Compressed {
		raw, err := inflate(env.Payload)
		if err != nil {
			return Envelope{}, fmt.Errorf("wire: decompress payload: %w", err)
		}
		env.Payload = raw
		env.Compressed = false
	}
	return env, nil
}

// Close closes the underlying websocket connection.
func (c *Conn) Close() error {
	return c.ws.Close()
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inflate(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	return io.ReadAll(r)
}
