package conf

import (
	"strings"
)

// Effective is the merged view handed to the coordinator. Loggers reference
// exactly one sink, the relay; every concrete destination lives in the
// real-sink list returned alongside it and is owned by the relay worker.
// Effective values are immutable once built.
type Effective struct {
	Formatters []FormatterSpec
	Relay      SinkSpec
	Loggers    []LoggerSpec

	formatterIdx map[string]int
	loggerIdx    map[string]int
}

// Merge folds documents into one effective configuration plus the ordered
// list of real sinks the relay will dispatch to. Later documents win
// conflicts. Merge is purely structural: unknown kinds and dangling
// formatter references survive it and are rejected when adapters are built.
func Merge(docs []*Document) (*Effective, []SinkSpec) {
	eff := &Effective{
		formatterIdx: make(map[string]int),
		loggerIdx:    make(map[string]int),
	}
	relay := SinkSpec{Name: DefaultRelayName, Kind: KindRelay, RawKind: "relay"}
	var sinks []SinkSpec

	for _, doc := range docs {
		for _, f := range doc.Formatters {
			at, exists := eff.formatterIdx[f.Name]
			if !exists {
				eff.formatterIdx[f.Name] = len(eff.Formatters)
				eff.Formatters = append(eff.Formatters, f.clone())
				continue
			}
			merged := eff.Formatters[at]
			if merged.Fields == nil {
				merged.Fields = make(map[string]any, len(f.Fields))
			}
			for key, value := range f.Fields {
				merged.Fields[key] = value
			}
			eff.Formatters[at] = merged
		}
		for _, h := range doc.Handlers {
			h.Origin = doc.Identity
			if h.Kind == KindRelay {
				relay = h
				continue
			}
			sinks = append(sinks, h)
		}
	}

	// Loggers fold in a second pass so every one of them points at the
	// relay that actually won, whichever document declared it.
	for _, doc := range docs {
		for _, l := range doc.Loggers {
			l.Sinks = []string{relay.Name}
			at, exists := eff.loggerIdx[l.Name]
			if !exists {
				eff.loggerIdx[l.Name] = len(eff.Loggers)
				eff.Loggers = append(eff.Loggers, l)
				continue
			}
			prev := eff.Loggers[at]
			if l.Level < prev.Level {
				prev.Level = l.Level
			}
			prev.Propagate = l.Propagate
			eff.Loggers[at] = prev
		}
	}

	eff.Relay = relay
	return eff, sinks
}

// Formatter looks up a merged formatter by name.
func (e *Effective) Formatter(name string) (FormatterSpec, bool) {
	at, ok := e.formatterIdx[name]
	if !ok {
		return FormatterSpec{}, false
	}
	return e.Formatters[at], true
}

// Logger looks up a merged logger by exact name.
func (e *Effective) Logger(name string) (LoggerSpec, bool) {
	at, ok := e.loggerIdx[name]
	if !ok {
		return LoggerSpec{}, false
	}
	return e.Loggers[at], true
}

// Resolve finds the spec governing a logger name. Dotted names fall back to
// the nearest declared ancestor ("a.b.c" tries "a.b", then "a"), ending at
// the root logger "" when one is declared. The second return reports whether
// any spec matched.
func (e *Effective) Resolve(name string) (LoggerSpec, bool) {
	for {
		if spec, ok := e.Logger(name); ok {
			return spec, true
		}
		dot := strings.LastIndexByte(name, '.')
		if dot < 0 {
			break
		}
		name = name[:dot]
	}
	if name != "" {
		return e.Logger("")
	}
	return LoggerSpec{}, false
}
