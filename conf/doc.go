// Package conf loads, validates, and merges declarative logging
// configuration documents.
//
// Documents are JSON, YAML, or TOML trees with the top-level sections
// formatters, handlers, and loggers. Sources supply document bytes by
// identifier, Parse turns them into Documents, Overrides adjust a parsed
// document, and Merge combines any number of Documents into one Effective
// configuration plus the ordered list of real sinks the relay will own.
//
// Merging is purely structural: it never resolves sink implementations, so a
// document naming an unknown sink kind merges cleanly and fails later, when
// the configuration is applied.
package conf
