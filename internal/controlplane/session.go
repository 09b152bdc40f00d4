package controlplane

import (
	"context"
	"fmt"
	"sync"

	"github.com/vajraedge/vajraedge/internal/wire"
)

// Session is the controller's live half of one worker's wire
// connection: a single reader goroutine owns conn.Recv (see wire.Conn's
// single-reader assumption), so outbound RPCs (AssignTask, StopTest)
// register a pending wait here instead of reading directly. Only one
// outstanding call per ack Type is supported at a time per worker,
// which matches how the controller actually drives a session — one
// assignment or stop in flight per test per worker.
type Session struct {
	WorkerID string

	conn *wire.Conn

	mu      sync.Mutex
	pending map[wire.Type]chan wire.Envelope
}

// newSession wraps conn for workerID.
func newSession(workerID string, conn *wire.Conn) *Session {
	return &Session{
		WorkerID: workerID,
		conn:     conn,
		pending:  make(map[wire.Type]chan wire.Envelope),
	}
}

// Call sends req and blocks for the next envelope of ackType read off
// this session's connection, or until ctx is done.
func (s *Session) Call(ctx context.Context, req wire.Envelope, ackType wire.Type) (wire.Envelope, error) {
	ch := make(chan wire.Envelope, 1)
	s.mu.Lock()
	s.pending[ackType] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, ackType)
		s.mu.Unlock()
	}()

	if err := s.conn.Send(req); err != nil {
		return wire.Envelope{}, fmt.Errorf("controlplane: send %s to %s: %w", req.Type, s.WorkerID, err)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return wire.Envelope{}, ctx.Err()
	}
}

// deliver routes an inbound envelope to a pending Call waiting on its
// Type, returning true if one was waiting. The read loop falls back to
// its handler dispatch for anything this returns false for.
func (s *Session) deliver(env wire.Envelope) bool {
	s.mu.Lock()
	ch, ok := s.pending[env.Type]
	s.mu.Unlock()
	if !ok {
		return false
	}
	ch <- env
	return true
}
