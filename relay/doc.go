// Package relay moves records from producers to sink adapters through a
// single background worker.
//
// Producers enqueue records without blocking on sink latency; the worker
// dequeues them one at a time, applies each adapter's severity threshold and
// delivers. The queue outlives the worker: reconfiguration stops the old
// worker and starts a new one against the same queue, so records enqueued
// during the swap wait instead of disappearing. Delivery order is FIFO
// within one worker epoch; ordering across epochs is not guaranteed.
//
// The queue is unbounded by default. A positive capacity bounds it, with an
// overflow Policy deciding whether producers block, the oldest queued record
// is dropped, or the incoming record is dropped. Flush barriers always
// bypass the bound.
package relay
