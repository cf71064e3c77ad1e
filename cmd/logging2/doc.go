// Package main hosts the logging2 CLI entrypoint and command graph.
//
// The Cobra-based command tree inspects and exercises logging configuration
// documents without editing application code: list enumerates the documents
// visible across the configured source directories, validate checks documents
// and overrides against the sink rules, preview renders the effective
// configuration a merge would produce, and emit pushes test records through a
// real pipeline.
//
// Keep this package lean: behavior belongs in the conf, sink and relay
// packages; commands only resolve flags, call into them and render results.
package main
