package eventbus

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestEventSystem(t *testing.T) {
	t.Parallel()

	t.Run("subscribe", func(t *testing.T) {
		t.Parallel()
		es := NewEventSystem(10, newTestLogger())

		require.Len(t, es.subscribers, 0)

		s1id, s1ch := es.Subscribe(TestCreated)

		assert.Equal(t, uint64(1), s1id)
		assert.NotNil(t, s1ch)
		assert.Len(t, es.subscribers, 1)
		assert.Len(t, es.subscribers[TestCreated], 1)
		assert.Equal(t, (<-chan *Event)(es.subscribers[TestCreated][s1id]), s1ch)

		s2id, s2ch := es.Subscribe(TestCreated, TestRunning)

		assert.Equal(t, uint64(2), s2id)
		assert.NotNil(t, s2ch)
		assert.Len(t, es.subscribers, 2)
		assert.Len(t, es.subscribers[TestCreated], 2)
		assert.Len(t, es.subscribers[TestRunning], 1)
		assert.Equal(t, (<-chan *Event)(es.subscribers[TestCreated][s2id]), s2ch)
	})

	t.Run("subscribe/panic", func(t *testing.T) {
		t.Parallel()
		es := NewEventSystem(10, newTestLogger())
		assert.PanicsWithValue(t, "must subscribe to at least 1 event type", func() {
			es.Subscribe()
		})
	})

	t.Run("emit_and_process", func(t *testing.T) {
		t.Parallel()
		testTimeout := 5 * time.Second
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		es := NewEventSystem(10, newTestLogger())

		s1id, s1ch := es.Subscribe(TestCreated, TestStopped)
		s2id, s2ch := es.Subscribe(TestCreated, TestRunning, TestCompleted, TestStopped)

		type result struct {
			sid    uint64
			events []*Event
			err    error
		}
		resultCh := make(chan result, 2)
		go func() {
			events, err := processEvents(ctx, es, s1id, s1ch)
			resultCh <- result{s1id, events, err}
		}()
		go func() {
			events, err := processEvents(ctx, es, s2id, s2ch)
			resultCh <- result{s2id, events, err}
		}()

		var (
			doneMx     sync.RWMutex
			processed  = make(map[Type]int)
			emitEvents = []Type{TestCreated, TestRunning, TestDraining, TestCompleted, TestStopped}
			data       int
		)
		for _, et := range emitEvents {
			et := et
			evt := &Event{Type: et, Data: data, Done: func() {
				doneMx.Lock()
				processed[et]++
				doneMx.Unlock()
			}}
			es.Emit(evt)
			data++
		}

		for i := 0; i < 2; i++ {
			select {
			case result := <-resultCh:
				require.NoError(t, result.err)
				switch result.sid {
				case s1id:
					require.Len(t, result.events, 2)
					assert.Equal(t, TestCreated, result.events[0].Type)
					assert.Equal(t, TestStopped, result.events[1].Type)
				case s2id:
					require.Len(t, result.events, 4)
					assert.Equal(t, TestCreated, result.events[0].Type)
					assert.Equal(t, TestRunning, result.events[1].Type)
					assert.Equal(t, TestCompleted, result.events[2].Type)
					assert.Equal(t, TestStopped, result.events[3].Type)
				}
			case <-ctx.Done():
				t.Fatalf("test timed out after %s", testTimeout)
			}
		}

		expProcessed := map[Type]int{
			TestCreated:   2,
			TestRunning:   1,
			TestCompleted: 1,
			TestStopped:   2,
		}
		assert.Equal(t, expProcessed, processed)
	})

	t.Run("emit_and_wait/ok", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		es := NewEventSystem(100, newTestLogger())

		var (
			wg      sync.WaitGroup
			numSubs = 100
		)
		for i := 0; i < numSubs; i++ {
			sid, evtCh := es.Subscribe(Shutdown)
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := processEvents(ctx, es, sid, evtCh)
				require.NoError(t, err)
			}()
		}

		var done uint32
		wait := es.Emit(&Event{Type: Shutdown, Done: func() {
			atomic.AddUint32(&done, 1)
		}})
		waitCtx, waitCancel := context.WithTimeout(ctx, time.Second)
		defer waitCancel()
		require.NoError(t, wait(waitCtx))
		assert.Equal(t, uint32(numSubs), done)

		wg.Wait()
	})

	t.Run("emit_and_wait/error", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		es := NewEventSystem(10, newTestLogger())

		sid, evtCh := es.Subscribe(Shutdown)
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := processEvents(ctx, es, sid, evtCh)
			assert.NoError(t, err)
		}()

		wait := es.Emit(&Event{Type: Shutdown, Done: func() {
			time.Sleep(200 * time.Millisecond)
		}})
		waitCtx, waitCancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer waitCancel()
		err := wait(waitCtx)
		assert.EqualError(t, err, "context is done before all 'SHUTDOWN' events were processed")

		wg.Wait()
	})

	t.Run("emit_no_subscribers", func(t *testing.T) {
		t.Parallel()
		es := NewEventSystem(10, newTestLogger())
		wait := es.Emit(&Event{Type: TestCreated})
		require.NoError(t, wait(context.Background()))
	})

	t.Run("unsubscribe", func(t *testing.T) {
		t.Parallel()
		es := NewEventSystem(10, newTestLogger())

		require.Len(t, es.subscribers, 0)

		var (
			numSubs = 5
			subs    = make([]uint64, numSubs)
		)
		for i := 0; i < numSubs; i++ {
			sid, _ := es.Subscribe(TestCreated)
			subs[i] = sid
		}

		require.Len(t, es.subscribers[TestCreated], numSubs)

		es.Unsubscribe(subs[0])
		assert.Len(t, es.subscribers[TestCreated], numSubs-1)
		es.Unsubscribe(subs[0]) // second unsubscribe is a no-op
		assert.Len(t, es.subscribers[TestCreated], numSubs-1)

		es.UnsubscribeAll()
		assert.Len(t, es.subscribers[TestCreated], 0)
	})
}

func processEvents(ctx context.Context, es *System, sid uint64, evtCh <-chan *Event) ([]*Event, error) {
	result := make([]*Event, 0)
	for {
		select {
		case evt, ok := <-evtCh:
			if !ok {
				return result, nil
			}
			result = append(result, evt)
			evt.Done()
			if evt.Type == TestStopped || evt.Type == Shutdown {
				es.Unsubscribe(sid)
			}
		case <-ctx.Done():
			return nil, errors.New("test timed out")
		}
	}
}
