// Package record defines the log record primitives shared by every layer of
// logging2: the severity scale used by configuration documents, structured
// fields, and the Record value that travels from a logger handle through the
// dispatch queue to the sinks.
//
// Severities live on the numeric scale the documents already use (DEBUG=10
// through CRITICAL=50), so named and numeric levels from independently
// authored documents always compare on one total order.
package record
