package conf

import (
	"errors"
	"maps"

	"github.com/Zoorn/logging2/record"
)

var (
	// ErrNotFound reports an identifier with no matching document in any
	// configured source, or a removal of an identifier that was never loaded.
	ErrNotFound = errors.New("configuration not found")
	// ErrInvalidDocument reports a document that does not parse into the
	// expected formatters/handlers/loggers shape.
	ErrInvalidDocument = errors.New("invalid configuration document")
)

// DefaultRelayName is the wire name of the synthetic relay sink when no
// document declares one. Existing documents use "queue" for it, so the
// synthesized entry does too.
const DefaultRelayName = "queue"

// FormatterSpec names a format template. Fields holds the raw document keys;
// merging unions them with later documents winning per key. The interpreted
// keys are "format" (the template) and "datefmt" (strftime layout for
// %(asctime)s); unknown keys ride along untouched.
type FormatterSpec struct {
	Name   string
	Fields map[string]any
}

// Format returns the template string, or "" when the document left it out.
func (f FormatterSpec) Format() string {
	s, _ := f.Fields["format"].(string)
	return s
}

// DateFormat returns the strftime layout for %(asctime)s, if any.
func (f FormatterSpec) DateFormat() string {
	s, _ := f.Fields["datefmt"].(string)
	return s
}

func (f FormatterSpec) clone() FormatterSpec {
	fields := make(map[string]any, len(f.Fields))
	maps.Copy(fields, f.Fields)
	return FormatterSpec{Name: f.Name, Fields: fields}
}

// SinkSpec describes one handler entry: the sink kind, its severity
// threshold, its formatter reference, and the kind-specific parameters.
type SinkSpec struct {
	Name      string
	Kind      Kind
	RawKind   string
	Level     record.Level
	Formatter string

	// Stream sinks.
	Target string // stdout|stderr, or the ext://sys.stdout compat form
	Color  string // auto|always|never (default auto)

	// File-backed sinks (file, rotating_file, sqlite).
	Filename string
	Mode     string // a (append, default) or w (truncate) for plain files

	// Rotating sinks.
	MaxBytes    int64
	BackupCount int
	Compress    bool

	// SQLite sinks.
	Table string

	// Origin is the identity of the document that contributed this spec.
	// Set during merge; empty on the synthesized relay.
	Origin string
}

// LoggerSpec is one named logger: its minimum severity and the sinks it
// feeds. After a merge the sink set is always exactly the relay.
type LoggerSpec struct {
	Name      string
	Level     record.Level
	Sinks     []string
	Propagate bool
}

// Document is one parsed configuration document. Identity is the loaded
// identifier; loading the same identity again replaces the prior document.
// Section order is preserved from the source text (TOML sections are ordered
// by name) so merges stay reproducible.
type Document struct {
	Identity               string
	Version                int
	DisableExistingLoggers bool
	Formatters             []FormatterSpec
	Handlers               []SinkSpec
	Loggers                []LoggerSpec
}
