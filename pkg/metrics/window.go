package metrics

import (
	"sync"
	"time"
)

// defaultWindowSeconds is the sliding window spec §4.1 specifies for
// currentTps: "default 5s".
const defaultWindowSeconds = 5

// Window is a ring of per-second counts used to compute currentTps =
// sum(ring) / window_seconds. Rotation is lazy: stale seconds are
// zeroed the next time Record or TPS observes them, per spec §4.1
// ("rotates the ring lazily on each record, discarding stale seconds").
type Window struct {
	mu         sync.Mutex
	buckets    []int64
	lastSecond int64
}

// NewWindow returns a Window spanning seconds buckets.
func NewWindow(seconds int) *Window {
	if seconds <= 0 {
		seconds = defaultWindowSeconds
	}
	return &Window{buckets: make([]int64, seconds)}
}

// Record registers one event at instant now.
func (w *Window) Record(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	sec := now.Unix()
	w.rotate(sec)
	w.buckets[sec%int64(len(w.buckets))]++
}

// TPS returns the current windowed transactions-per-second rate as of
// instant now.
func (w *Window) TPS(now time.Time) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rotate(now.Unix())

	var sum int64
	for _, c := range w.buckets {
		sum += c
	}
	return float64(sum) / float64(len(w.buckets))
}

// Reset zeroes every bucket and forgets the last-rotated second.
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.buckets {
		w.buckets[i] = 0
	}
	w.lastSecond = 0
}

// rotate must be called with mu held. It zeroes every bucket that fell
// out of the window between lastSecond and sec.
func (w *Window) rotate(sec int64) {
	if w.lastSecond == 0 {
		w.lastSecond = sec
		return
	}
	delta := sec - w.lastSecond
	if delta <= 0 {
		return
	}
	n := int64(len(w.buckets))
	if delta >= n {
		for i := range w.buckets {
			w.buckets[i] = 0
		}
	} else {
		for i := int64(1); i <= delta; i++ {
			w.buckets[(w.lastSecond+i)%n] = 0
		}
	}
	w.lastSecond = sec
}
