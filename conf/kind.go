package conf

// Kind tags the sink implementation a handler entry asks for.
type Kind uint8

const (
	// KindUnknown marks a kind string with no adapter implementation.
	// Unknown kinds survive parsing and merging and fail at apply time.
	KindUnknown Kind = iota
	// KindStream writes to stdout or stderr.
	KindStream
	// KindFile appends to a single file.
	KindFile
	// KindRotatingFile rotates by size with a bounded backup chain.
	KindRotatingFile
	// KindSQLite inserts records into a local SQLite database.
	KindSQLite
	// KindRelay is the synthetic sink that feeds the dispatch queue. It is
	// the only sink loggers ever bind to after a merge.
	KindRelay
)

// String returns the native kind name.
func (k Kind) String() string {
	switch k {
	case KindStream:
		return "stream"
	case KindFile:
		return "file"
	case KindRotatingFile:
		return "rotating_file"
	case KindSQLite:
		return "sqlite"
	case KindRelay:
		return "relay"
	default:
		return "unknown"
	}
}

// ParseKind maps a handler kind or class string to its Kind. Both the native
// names and the class paths used by existing documents are accepted.
// Unrecognized strings map to KindUnknown; the raw string is kept on the
// SinkSpec so apply-time errors can name it.
func ParseKind(s string) Kind {
	switch s {
	case "stream", "logging.StreamHandler":
		return KindStream
	case "file", "logging.FileHandler":
		return KindFile
	case "rotating_file", "rotating-file", "logging.handlers.RotatingFileHandler":
		return KindRotatingFile
	case "sqlite":
		return KindSQLite
	case "relay", "queue", "logging.handlers.QueueHandler":
		return KindRelay
	default:
		return KindUnknown
	}
}
