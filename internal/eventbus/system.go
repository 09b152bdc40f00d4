package eventbus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

type subscription struct {
	ch    chan *Event
	types []Type
}

// System is a bounded-channel pub/sub bus. Each subscriber gets its own
// buffered channel; Emit never blocks on a slow subscriber — once the
// buffer is full the event is dropped for that subscriber and logged.
type System struct {
	bufferSize int
	logger     logrus.FieldLogger

	mx            sync.RWMutex
	subscribers   map[Type]map[uint64]chan *Event
	registrations map[uint64]*subscription
	nextID        uint64
}

// NewEventSystem creates a System whose subscriber channels are buffered
// to bufferSize events.
func NewEventSystem(bufferSize int, logger logrus.FieldLogger) *System {
	return &System{
		bufferSize:    bufferSize,
		logger:        logger,
		subscribers:   make(map[Type]map[uint64]chan *Event),
		registrations: make(map[uint64]*subscription),
	}
}

// Subscribe registers a new subscriber for one or more event types,
// returning its id and the channel it will receive events on. It panics
// if called with no types, the same way k6's event system rejects a
// subscription that could never receive anything.
func (es *System) Subscribe(types ...Type) (uint64, <-chan *Event) {
	if len(types) == 0 {
		panic("must subscribe to at least 1 event type")
	}

	es.mx.Lock()
	defer es.mx.Unlock()

	id := atomic.AddUint64(&es.nextID, 1)
	ch := make(chan *Event, es.bufferSize)

	for _, t := range types {
		if es.subscribers[t] == nil {
			es.subscribers[t] = make(map[uint64]chan *Event)
		}
		es.subscribers[t][id] = ch
	}
	es.registrations[id] = &subscription{ch: ch, types: types}

	return id, ch
}

// Emit delivers evt to every subscriber of evt.Type and returns a wait
// function the caller can use to block until every subscriber that
// received the event has called Event.Done, or until ctx is done first.
func (es *System) Emit(evt *Event) func(ctx context.Context) error {
	es.mx.RLock()
	subs := es.subscribers[evt.Type]
	recipients := make([]chan *Event, 0, len(subs))
	for _, ch := range subs {
		recipients = append(recipients, ch)
	}
	es.mx.RUnlock()

	if len(recipients) == 0 {
		return func(ctx context.Context) error { return nil }
	}

	var pending int64 = int64(len(recipients))
	done := make(chan struct{})
	countdown := func() {
		if atomic.AddInt64(&pending, -1) == 0 {
			close(done)
		}
	}

	for _, ch := range recipients {
		e := &Event{Type: evt.Type, Data: evt.Data}
		e.Done = func() {
			if evt.Done != nil {
				evt.Done()
			}
			countdown()
		}
		select {
		case ch <- e:
		default:
			es.logger.WithField("type", evt.Type).Warn("eventbus: dropping event for slow subscriber")
			countdown()
		}
	}

	return func(ctx context.Context) error {
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return fmt.Errorf("context is done before all '%s' events were processed", evt.Type)
		}
	}
}

// Unsubscribe removes subscriber id from every type it was registered
// for and closes its channel. A second call for an already-removed id is
// a no-op.
func (es *System) Unsubscribe(id uint64) {
	es.mx.Lock()
	defer es.mx.Unlock()
	es.unsubscribeLocked(id)
}

func (es *System) unsubscribeLocked(id uint64) {
	sub, ok := es.registrations[id]
	if !ok {
		return
	}
	for _, t := range sub.types {
		delete(es.subscribers[t], id)
	}
	delete(es.registrations, id)
	close(sub.ch)
}

// UnsubscribeAll removes every current subscriber, closing their
// channels. Used on process shutdown.
func (es *System) UnsubscribeAll() {
	es.mx.Lock()
	defer es.mx.Unlock()
	for id := range es.registrations {
		es.unsubscribeLocked(id)
	}
}
