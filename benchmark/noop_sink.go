package benchmark

import (
	"sync/atomic"

	"github.com/Zoorn/logging2/record"
)

// noopSink accepts every record and discards it, so benchmarks measure the
// queue and relay instead of sink I/O.
type noopSink struct {
	name      string
	delivered atomic.Uint64
}

func newNoopSink(name string) *noopSink {
	return &noopSink{name: name}
}

func (s *noopSink) Name() string { return s.name }

func (s *noopSink) Threshold() record.Level { return record.LevelUnset }

func (s *noopSink) Emit(rec *record.Record) error {
	_ = len(rec.Message)
	s.delivered.Add(1)
	return nil
}
