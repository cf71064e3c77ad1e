package logging2

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Zoorn/logging2/conf"
	"github.com/Zoorn/logging2/relay"
	"github.com/Zoorn/logging2/sink"
)

// Coordinator owns the logging pipeline: the active document set, the merged
// configuration producers read, the dispatch queue and the relay worker.
//
// Configuration edits serialize on an internal mutex. Producers never take
// it; they read an atomically swapped snapshot and enqueue, so logging stays
// non-blocking while a reload is in progress.
type Coordinator struct {
	opts  Options
	queue *relay.Queue

	mu       sync.Mutex
	docs     []*conf.Document
	relay    *relay.Relay
	adapters []sink.Adapter
	shutdown bool

	snapshot   atomic.Pointer[conf.Effective]
	configured atomic.Bool

	handleMu sync.Mutex
	handles  map[string]*Logger
}

// LoadSpec pairs a document identifier with its overrides for LoadMany.
type LoadSpec struct {
	Identifier string
	Overrides  conf.Overrides
}

// New constructs an unconfigured coordinator. Nothing runs until the first
// Load (or the bootstrap a GetLogger call triggers).
func New(opts Options) *Coordinator {
	opts = opts.withDefaults()
	return &Coordinator{
		opts:    opts,
		queue:   relay.NewQueue(opts.QueueCapacity, opts.Overflow),
		handles: make(map[string]*Logger),
	}
}

// Load resolves identifier through the configured sources, applies the
// overrides and re-applies the merged document set. Reloading an identifier
// replaces its previous contribution; the reloaded document moves to the end
// of the merge order. A failing load leaves the running configuration
// untouched.
func (c *Coordinator) Load(identifier string, ov conf.Overrides) error {
	doc, err := conf.LoadDocument(c.opts.Sources, identifier)
	if err != nil {
		return err
	}
	if err := ov.Apply(doc); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shutdown {
		return ErrShutdown
	}
	next := removeDoc(c.docs, doc.Identity)
	next = append(next, doc)
	if err := c.applyLocked(next); err != nil {
		return err
	}
	c.docs = next
	return nil
}

// LoadMany loads the given documents in order. It stops at the first
// failure; documents loaded before it stay applied.
func (c *Coordinator) LoadMany(specs []LoadSpec) error {
	for _, spec := range specs {
		if err := c.Load(spec.Identifier, spec.Overrides); err != nil {
			return fmt.Errorf("load %s: %w", spec.Identifier, err)
		}
	}
	return nil
}

// Remove drops a previously loaded document and re-applies the remainder.
// Removing an identifier that is not loaded returns conf.ErrNotFound.
func (c *Coordinator) Remove(identifier string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shutdown {
		return ErrShutdown
	}
	next := removeDoc(c.docs, identifier)
	if len(next) == len(c.docs) {
		return fmt.Errorf("%w: %s is not loaded", conf.ErrNotFound, identifier)
	}
	if err := c.applyLocked(next); err != nil {
		return err
	}
	c.docs = next
	return nil
}

func removeDoc(docs []*conf.Document, identity string) []*conf.Document {
	next := make([]*conf.Document, 0, len(docs))
	for _, doc := range docs {
		if doc.Identity == identity {
			continue
		}
		next = append(next, doc)
	}
	return next
}

// applyLocked merges docs, builds the new adapter set and swaps the relay.
// Called with c.mu held. On error no state changes; the previous relay keeps
// running.
func (c *Coordinator) applyLocked(docs []*conf.Document) error {
	eff, realSinks := conf.Merge(docs)
	formatters, err := sink.CompileFormatters(eff.Formatters)
	if err != nil {
		return err
	}
	adapters, err := sink.BuildAll(realSinks, formatters)
	if err != nil {
		return err
	}

	// The old worker finishes its in-flight record before the queue is
	// handed to the new one; records enqueued meanwhile just wait.
	if c.relay != nil {
		c.relay.Stop()
	}
	c.snapshot.Store(eff)

	sinks := make([]relay.Sink, len(adapters))
	for i, adapter := range adapters {
		sinks[i] = adapter
	}
	next := relay.New(c.queue, sinks, c.opts.Fallback)
	next.Start()

	old := c.adapters
	c.relay = next
	c.adapters = adapters
	sink.CloseAll(old)

	c.configured.Store(true)
	return nil
}

// GetLogger returns the memoized handle for name. On an unconfigured
// coordinator it first applies the bootstrap document, or fails with
// ErrNotConfigured when bootstrap is disabled.
func (c *Coordinator) GetLogger(name string) (*Logger, error) {
	if !c.configured.Load() {
		if c.opts.DisableBootstrap {
			return nil, ErrNotConfigured
		}
		err := c.Load(c.opts.BootstrapConfig, conf.Overrides{Level: c.opts.BootstrapLevel})
		if err != nil && !c.configured.Load() {
			return nil, fmt.Errorf("bootstrap %s: %w", c.opts.BootstrapConfig, err)
		}
	}

	c.handleMu.Lock()
	defer c.handleMu.Unlock()
	if handle, ok := c.handles[name]; ok {
		return handle, nil
	}
	handle := &Logger{coord: c, name: name}
	c.handles[name] = handle
	return handle, nil
}

// MustLogger is GetLogger for program setup paths; it panics on error.
func (c *Coordinator) MustLogger(name string) *Logger {
	handle, err := c.GetLogger(name)
	if err != nil {
		panic(fmt.Sprintf("logging2: get logger %q: %v", name, err))
	}
	return handle
}

// Configured reports whether a configuration has ever been applied.
func (c *Coordinator) Configured() bool {
	return c.configured.Load()
}

// Flush blocks until every record enqueued before the call has been handed
// to the current adapter set, the context ends, or the relay stops. With no
// running relay it is a no-op: records keep accumulating until a
// configuration is applied.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	worker := c.relay
	c.mu.Unlock()
	if worker == nil {
		return nil
	}
	return worker.Flush(ctx)
}

// Shutdown flushes best-effort within ctx, stops the relay and closes every
// adapter. Further configuration calls return ErrShutdown; handles keep
// accepting records, which are simply never delivered. Shutdown is
// idempotent.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shutdown {
		return nil
	}
	c.shutdown = true
	if c.relay == nil {
		return nil
	}

	flushErr := c.relay.Flush(ctx)
	c.relay.Stop()
	closeErr := sink.CloseAll(c.adapters)
	c.relay = nil
	c.adapters = nil

	if flushErr != nil {
		return fmt.Errorf("flush during shutdown: %w", flushErr)
	}
	return closeErr
}

// snapshotEffective is what producers read; nil until the first apply.
func (c *Coordinator) snapshotEffective() *conf.Effective {
	return c.snapshot.Load()
}
