// Package sink turns merged handler specs into concrete delivery adapters.
//
// An adapter owns one destination (a terminal stream, a plain or rotating
// file, a sqlite table) plus the formatter and severity threshold attached to
// it. Validation is separated from construction so configurations can be
// checked without touching the filesystem.
package sink
