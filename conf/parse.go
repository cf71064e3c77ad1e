package conf

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Zoorn/logging2/record"
)

// Format identifies a document serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

type rawEntry struct {
	name   string
	fields map[string]any
}

// Parse decodes one configuration document. JSON and YAML are decoded
// through a single order-preserving node walk (JSON is a YAML subset; a
// strict JSON syntax check runs first so malformed JSON is reported as
// such). TOML entries carry no document order, so sections are ordered by
// name to keep merges deterministic.
func Parse(identity string, data []byte, format Format) (*Document, error) {
	switch format {
	case FormatJSON:
		if !json.Valid(data) {
			return nil, fmt.Errorf("%w: %s is not valid JSON", ErrInvalidDocument, identity)
		}
		return parseNode(identity, data)
	case FormatYAML:
		return parseNode(identity, data)
	case FormatTOML:
		return parseTOML(identity, data)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidDocument, string(format))
	}
}

func parseNode(identity string, data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, identity, err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalidDocument, identity)
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s top level must be a mapping", ErrInvalidDocument, identity)
	}

	doc := &Document{Identity: identity, Version: 1}
	for i := 0; i+1 < len(top.Content); i += 2 {
		key := top.Content[i].Value
		value := top.Content[i+1]
		var err error
		switch key {
		case "version":
			err = decodeVersion(value, doc)
		case "disable_existing_loggers":
			err = value.Decode(&doc.DisableExistingLoggers)
		case "formatters":
			var entries []rawEntry
			if entries, err = nodeEntries(value); err == nil {
				doc.Formatters, err = buildFormatters(entries)
			}
		case "handlers":
			var entries []rawEntry
			if entries, err = nodeEntries(value); err == nil {
				doc.Handlers, err = buildSinks(entries)
			}
		case "loggers":
			var entries []rawEntry
			if entries, err = nodeEntries(value); err == nil {
				doc.Loggers, err = buildLoggers(entries)
			}
		default:
			// Unknown top-level sections are ignored for forward compatibility.
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s: %v", ErrInvalidDocument, identity, key, err)
		}
	}
	return doc, nil
}

func parseTOML(identity string, data []byte) (*Document, error) {
	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, identity, err)
	}

	doc := &Document{Identity: identity, Version: 1}
	for key, value := range tree {
		var err error
		switch key {
		case "version":
			doc.Version, err = intField(value)
			if err == nil && doc.Version != 1 {
				err = fmt.Errorf("unsupported version %d", doc.Version)
			}
		case "disable_existing_loggers":
			b, ok := value.(bool)
			if !ok {
				err = fmt.Errorf("must be a boolean, got %T", value)
			}
			doc.DisableExistingLoggers = b
		case "formatters":
			var entries []rawEntry
			if entries, err = mapEntries(value); err == nil {
				doc.Formatters, err = buildFormatters(entries)
			}
		case "handlers":
			var entries []rawEntry
			if entries, err = mapEntries(value); err == nil {
				doc.Handlers, err = buildSinks(entries)
			}
		case "loggers":
			var entries []rawEntry
			if entries, err = mapEntries(value); err == nil {
				doc.Loggers, err = buildLoggers(entries)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s: %v", ErrInvalidDocument, identity, key, err)
		}
	}
	return doc, nil
}

func decodeVersion(node *yaml.Node, doc *Document) error {
	if err := node.Decode(&doc.Version); err != nil {
		return fmt.Errorf("must be an integer")
	}
	if doc.Version != 1 {
		return fmt.Errorf("unsupported version %d", doc.Version)
	}
	return nil
}

// nodeEntries flattens a mapping node into named entries, keeping the order
// they appear in the source text. A repeated name replaces the earlier entry
// in place, matching how plain JSON decoders treat duplicate keys.
func nodeEntries(node *yaml.Node) ([]rawEntry, error) {
	if node.Kind == 0 || node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("must be a mapping")
	}
	entries := make([]rawEntry, 0, len(node.Content)/2)
	index := make(map[string]int, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var fields map[string]any
		if err := node.Content[i+1].Decode(&fields); err != nil {
			return nil, fmt.Errorf("entry %q must be a mapping", name)
		}
		if at, ok := index[name]; ok {
			entries[at] = rawEntry{name: name, fields: fields}
			continue
		}
		index[name] = len(entries)
		entries = append(entries, rawEntry{name: name, fields: fields})
	}
	return entries, nil
}

func mapEntries(value any) ([]rawEntry, error) {
	if value == nil {
		return nil, nil
	}
	section, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("must be a table")
	}
	names := make([]string, 0, len(section))
	for name := range section {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]rawEntry, 0, len(names))
	for _, name := range names {
		fields, ok := section[name].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("entry %q must be a table", name)
		}
		entries = append(entries, rawEntry{name: name, fields: fields})
	}
	return entries, nil
}

func buildFormatters(entries []rawEntry) ([]FormatterSpec, error) {
	specs := make([]FormatterSpec, 0, len(entries))
	for _, entry := range entries {
		for _, key := range []string{"format", "datefmt"} {
			if v, ok := entry.fields[key]; ok {
				if _, isString := v.(string); !isString {
					return nil, fmt.Errorf("formatter %q: %s must be a string", entry.name, key)
				}
			}
		}
		specs = append(specs, FormatterSpec{Name: entry.name, Fields: entry.fields})
	}
	return specs, nil
}

func buildSinks(entries []rawEntry) ([]SinkSpec, error) {
	specs := make([]SinkSpec, 0, len(entries))
	for _, entry := range entries {
		spec, err := buildSink(entry.name, entry.fields)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func buildSink(name string, fields map[string]any) (SinkSpec, error) {
	kind, err := stringField(fields, "kind")
	if err != nil {
		return SinkSpec{}, fmt.Errorf("handler %q: %v", name, err)
	}
	if kind == "" {
		if kind, err = stringField(fields, "class"); err != nil {
			return SinkSpec{}, fmt.Errorf("handler %q: %v", name, err)
		}
	}
	if kind == "" {
		return SinkSpec{}, fmt.Errorf("handler %q: missing kind or class", name)
	}

	spec := SinkSpec{Name: name, Kind: ParseKind(kind), RawKind: kind}

	if v, ok := fields["level"]; ok {
		if spec.Level, err = record.ParseLevel(v); err != nil {
			return SinkSpec{}, fmt.Errorf("handler %q: %v", name, err)
		}
	}
	for key, dst := range map[string]*string{
		"formatter": &spec.Formatter,
		"stream":    &spec.Target,
		"color":     &spec.Color,
		"filename":  &spec.Filename,
		"mode":      &spec.Mode,
		"table":     &spec.Table,
	} {
		value, err := stringField(fields, key)
		if err != nil {
			return SinkSpec{}, fmt.Errorf("handler %q: %v", name, err)
		}
		if value != "" {
			*dst = value
		}
	}
	if v, ok := fields["maxBytes"]; ok {
		n, err := intField(v)
		if err != nil || n < 0 {
			return SinkSpec{}, fmt.Errorf("handler %q: maxBytes must be a non-negative integer", name)
		}
		spec.MaxBytes = int64(n)
	}
	if v, ok := fields["backupCount"]; ok {
		n, err := intField(v)
		if err != nil || n < 0 {
			return SinkSpec{}, fmt.Errorf("handler %q: backupCount must be a non-negative integer", name)
		}
		spec.BackupCount = n
	}
	if v, ok := fields["compress"]; ok {
		b, ok := v.(bool)
		if !ok {
			return SinkSpec{}, fmt.Errorf("handler %q: compress must be a boolean", name)
		}
		spec.Compress = b
	}
	return spec, nil
}

func buildLoggers(entries []rawEntry) ([]LoggerSpec, error) {
	specs := make([]LoggerSpec, 0, len(entries))
	for _, entry := range entries {
		spec := LoggerSpec{Name: entry.name, Propagate: true}
		var err error
		if v, ok := entry.fields["level"]; ok {
			if spec.Level, err = record.ParseLevel(v); err != nil {
				return nil, fmt.Errorf("logger %q: %v", entry.name, err)
			}
		}
		if v, ok := entry.fields["propagate"]; ok {
			b, isBool := v.(bool)
			if !isBool {
				return nil, fmt.Errorf("logger %q: propagate must be a boolean", entry.name)
			}
			spec.Propagate = b
		}
		if v, ok := entry.fields["handlers"]; ok {
			list, isList := v.([]any)
			if !isList {
				return nil, fmt.Errorf("logger %q: handlers must be a list", entry.name)
			}
			for _, item := range list {
				s, isString := item.(string)
				if !isString {
					return nil, fmt.Errorf("logger %q: handlers must be a list of names", entry.name)
				}
				spec.Sinks = append(spec.Sinks, s)
			}
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func stringField(fields map[string]any, key string) (string, error) {
	v, ok := fields[key]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", key, v)
	}
	return s, nil
}

func intField(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if float64(int(n)) != n {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%v is not an integer", v)
	}
}
