package wire

import (
	"context"
	"sync"
)

// Handler processes one incoming envelope and returns the envelope to
// send back (an ack, a nack, or a response payload).
type Handler func(ctx context.Context, env Envelope) (Envelope, error)

// Dispatcher routes incoming envelopes to the handlers registered for
// their Type, fanning out to every matching handler concurrently and
// merging their responses — the same shape as the teacher's
// comm.Process, generalized from "run N processors against one message"
// to "run every handler registered for this envelope's type".
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[Type][]Handler)}
}

// On registers h to run whenever an envelope of type t is dispatched.
func (d *Dispatcher) On(t Type, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[t] = append(d.handlers[t], h)
}

// Dispatch runs every handler registered for env.Type concurrently,
// returning a channel of their response envelopes that closes once all
// have completed. A handler error is turned into a TypeError response
// rather than dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, env Envelope) <-chan Envelope {
	d.mu.RLock()
	handlers := append([]Handler(nil), d.handlers[env.Type]...)
	d.mu.RUnlock()

	out := make(chan Envelope)
	if len(handlers) == 0 {
		close(out)
		return out
	}

	var wg sync.WaitGroup
	for _, h := range handlers {
		h := h
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := h(ctx, env)
			if err != nil {
				out <- WithError(err)
				return
			}
			out <- resp
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// Serve reads envelopes from conn until it errors or ctx is done,
// dispatching each one and writing back every response its handlers
// produce. It returns the error that ended the loop.
func (d *Dispatcher) Serve(ctx context.Context, conn *Conn) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		env, err := conn.Recv()
		if err != nil {
			return err
		}
		for resp := range d.Dispatch(ctx, env) {
			if err := conn.Send(resp); err != nil {
				return err
			}
		}
	}
}
