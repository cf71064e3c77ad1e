package relay

import (
	"sync"
	"sync/atomic"

	"github.com/Zoorn/logging2/record"
)

type item struct {
	rec *record.Record
	// mark is non-nil for flush barriers; the worker closes it when the
	// barrier is reached. Barriers are never dropped and do not count
	// against capacity.
	mark chan struct{}
}

// Queue is the buffer between producers and the relay worker. Any number of
// goroutines may enqueue; exactly one worker dequeues. A capacity of zero or
// less means unbounded.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []item
	records int

	capacity int
	policy   Policy
	dropped  atomic.Uint64
}

// NewQueue constructs a queue. The policy only matters for capacity > 0.
func NewQueue(capacity int, policy Policy) *Queue {
	q := &Queue{capacity: capacity, policy: policy}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue adds a record and reports whether it was admitted. The only false
// case is PolicyDropNewest on a full queue; PolicyDropOldest admits the
// record by evicting, and PolicyBlock waits for room.
func (q *Queue) Enqueue(rec *record.Record) bool {
	q.mu.Lock()
	if q.capacity > 0 && q.records >= q.capacity {
		switch q.policy {
		case PolicyDropNewest:
			q.mu.Unlock()
			q.dropped.Add(1)
			return false
		case PolicyDropOldest:
			q.evictOldestLocked()
		default:
			for q.records >= q.capacity {
				q.cond.Wait()
			}
		}
	}
	q.items = append(q.items, item{rec: rec})
	q.records++
	q.cond.Broadcast()
	q.mu.Unlock()
	return true
}

// Barrier appends a flush marker and returns the channel the worker closes
// once every record ahead of the marker has been delivered.
func (q *Queue) Barrier() <-chan struct{} {
	mark := make(chan struct{})
	q.mu.Lock()
	q.items = append(q.items, item{mark: mark})
	q.cond.Broadcast()
	q.mu.Unlock()
	return mark
}

func (q *Queue) evictOldestLocked() {
	for i := range q.items {
		if q.items[i].mark == nil {
			q.items = append(q.items[:i], q.items[i+1:]...)
			q.records--
			q.dropped.Add(1)
			return
		}
	}
}

// dequeue blocks until an item is available or stop is set. It re-checks
// stop after waking so a stopping worker never consumes queued items; they
// stay put for the next worker.
func (q *Queue) dequeue(stop *atomic.Bool) (item, bool) {
	q.mu.Lock()
	for len(q.items) == 0 && !stop.Load() {
		q.cond.Wait()
	}
	if stop.Load() {
		q.mu.Unlock()
		return item{}, false
	}
	it := q.items[0]
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	if it.mark == nil {
		q.records--
	}
	q.cond.Broadcast()
	q.mu.Unlock()
	return it, true
}

// Wake unblocks waiting producers and the worker so they re-check state.
func (q *Queue) Wake() {
	q.mu.Lock()
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Len reports the number of queued records, flush barriers excluded.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.records
}

// Dropped reports how many records overflow handling has discarded.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
