package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/Zoorn/logging2/record"
)

// ErrStopped reports that the worker exited before a flush barrier was
// reached; records behind the barrier are still queued.
var ErrStopped = errors.New("relay stopped")

// Sink is the delivery target the worker fans records out to. Adapters in
// the sink package satisfy it.
type Sink interface {
	Name() string
	Threshold() record.Level
	Emit(*record.Record) error
}

// State reports where a relay is in its lifecycle.
type State uint8

const (
	StateStopped State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Relay owns one background worker bound to a fixed adapter set. A relay
// runs at most once; reconfiguration builds a new relay on the same queue.
type Relay struct {
	queue    *Queue
	sinks    []Sink
	fallback io.Writer
	epoch    string

	started  atomic.Bool
	stopping atomic.Bool
	done     chan struct{}
}

// New binds a worker to queue and sinks. Delivery failures are reported to
// fallback, one line per failure; nil falls back to stderr.
func New(queue *Queue, sinks []Sink, fallback io.Writer) *Relay {
	if fallback == nil {
		fallback = os.Stderr
	}
	return &Relay{
		queue:    queue,
		sinks:    sinks,
		fallback: fallback,
		epoch:    uuid.NewString(),
		done:     make(chan struct{}),
	}
}

// Epoch identifies this worker generation in fallback output.
func (r *Relay) Epoch() string { return r.epoch }

// Start launches the worker goroutine. Subsequent calls are no-ops.
func (r *Relay) Start() {
	if !r.started.CompareAndSwap(false, true) {
		return
	}
	go r.run()
}

// Stop asks the worker to exit and waits for it. The record in flight is
// always delivered; everything still queued stays for the next relay. Stop
// is idempotent and safe to call before Start.
func (r *Relay) Stop() {
	r.stopping.Store(true)
	r.queue.Wake()
	if r.started.Load() {
		<-r.done
	}
}

// Done is closed when the worker has exited.
func (r *Relay) Done() <-chan struct{} { return r.done }

// State derives the lifecycle phase from the worker flags.
func (r *Relay) State() State {
	select {
	case <-r.done:
		return StateStopped
	default:
	}
	if !r.started.Load() {
		return StateStopped
	}
	if r.stopping.Load() {
		return StateStopping
	}
	return StateRunning
}

// Flush enqueues a barrier and waits until the worker has delivered every
// record ahead of it. Returns ErrStopped when the worker exits first and the
// context error when ctx ends first.
func (r *Relay) Flush(ctx context.Context) error {
	if !r.started.Load() {
		return ErrStopped
	}
	mark := r.queue.Barrier()
	select {
	case <-mark:
		return nil
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Relay) run() {
	defer close(r.done)
	for {
		it, ok := r.queue.dequeue(&r.stopping)
		if !ok {
			return
		}
		if it.mark != nil {
			close(it.mark)
			continue
		}
		r.deliver(it.rec)
	}
}

func (r *Relay) deliver(rec *record.Record) {
	for _, s := range r.sinks {
		if !accepts(s.Threshold(), rec.Level) {
			continue
		}
		if err := s.Emit(rec); err != nil {
			fmt.Fprintf(r.fallback, "logging2: relay %s: sink %s: %v\n", r.epoch, s.Name(), err)
		}
	}
}

// accepts applies a sink threshold; an unset threshold admits everything.
func accepts(threshold, level record.Level) bool {
	return threshold == record.LevelUnset || level >= threshold
}
