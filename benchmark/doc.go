// Package benchmark measures the logging pipeline: queue throughput, relay
// delivery, producer-side filtering and formatter rendering, plus a
// comparison against zap and slog writing to a discarded output.
//
// Run with:
//
//	go test -bench=. -benchmem ./benchmark
package benchmark
