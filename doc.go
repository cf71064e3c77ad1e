// Package logging2 assembles declarative logging configuration documents
// into a running pipeline: parsed documents merge into one effective
// configuration, a background relay fans records out to the configured
// sinks, and named logger handles feed it without blocking on sink latency.
//
// The Coordinator owns the pipeline. Load and Remove edit the set of active
// documents and re-apply the merge atomically; GetLogger hands out memoized
// handles and, by default, bootstraps a console configuration the first time
// it is called on an unconfigured coordinator. Flush drains the queue before
// shutdown, and HandlePanics turns an uncaught panic into critical records
// plus a non-zero exit.
//
// Construct coordinators explicitly and pass them where they are needed;
// SetDefault exists for programs that want one process-wide instance but
// nothing in this package creates it implicitly.
package logging2
