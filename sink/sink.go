package sink

import (
	"errors"
	"fmt"

	"github.com/Zoorn/logging2/conf"
	"github.com/Zoorn/logging2/record"
)

var (
	// ErrUnknownKind reports a handler kind no adapter implements.
	ErrUnknownKind = errors.New("unknown sink kind")
	// ErrMissingFormatter reports a dangling formatter reference.
	ErrMissingFormatter = errors.New("formatter not defined")
)

// Adapter delivers formatted records to one destination.
type Adapter interface {
	Name() string
	Kind() conf.Kind
	Threshold() record.Level
	Emit(*record.Record) error
	Close() error
}

// Validate checks that spec could be built against the given formatters:
// the kind is implementable, the formatter reference resolves and compiles,
// and kind-specific fields are usable. It never opens files or databases.
func Validate(spec conf.SinkSpec, formatters Formatters) error {
	if _, err := resolveFormatter(spec, formatters); err != nil {
		return err
	}
	switch spec.Kind {
	case conf.KindStream:
		if _, err := streamTarget(spec.Target); err != nil {
			return fmt.Errorf("handler %q: %w", spec.Name, err)
		}
		if _, err := colorMode(spec.Color); err != nil {
			return fmt.Errorf("handler %q: %w", spec.Name, err)
		}
		return nil
	case conf.KindFile:
		if spec.Filename == "" {
			return fmt.Errorf("handler %q: filename is required", spec.Name)
		}
		if spec.Mode != "" && spec.Mode != "a" && spec.Mode != "w" {
			return fmt.Errorf("handler %q: mode must be \"a\" or \"w\", got %q", spec.Name, spec.Mode)
		}
		return nil
	case conf.KindRotatingFile:
		if spec.Filename == "" {
			return fmt.Errorf("handler %q: filename is required", spec.Name)
		}
		return nil
	case conf.KindSQLite:
		if spec.Filename == "" {
			return fmt.Errorf("handler %q: filename is required", spec.Name)
		}
		if spec.Table != "" && !validTableName(spec.Table) {
			return fmt.Errorf("handler %q: invalid table name %q", spec.Name, spec.Table)
		}
		return nil
	default:
		return fmt.Errorf("handler %q: %w: %q", spec.Name, ErrUnknownKind, spec.RawKind)
	}
}

// Build validates spec and constructs its adapter.
func Build(spec conf.SinkSpec, formatters Formatters) (Adapter, error) {
	if err := Validate(spec, formatters); err != nil {
		return nil, err
	}
	formatter, err := resolveFormatter(spec, formatters)
	if err != nil {
		return nil, err
	}
	switch spec.Kind {
	case conf.KindStream:
		return newStream(spec, formatter)
	case conf.KindFile:
		return newFile(spec, formatter)
	case conf.KindRotatingFile:
		return newRotating(spec, formatter)
	case conf.KindSQLite:
		return newSQLite(spec)
	default:
		return nil, fmt.Errorf("handler %q: %w: %q", spec.Name, ErrUnknownKind, spec.RawKind)
	}
}

// BuildAll constructs one adapter per spec, in order. On failure every
// adapter built so far is closed before the error returns.
func BuildAll(specs []conf.SinkSpec, formatters Formatters) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(specs))
	for _, spec := range specs {
		adapter, err := Build(spec, formatters)
		if err != nil {
			CloseAll(adapters)
			return nil, err
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}

// CloseAll closes adapters, keeping the first error.
func CloseAll(adapters []Adapter) error {
	var first error
	for _, adapter := range adapters {
		if err := adapter.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func resolveFormatter(spec conf.SinkSpec, formatters Formatters) (*Formatter, error) {
	if spec.Formatter == "" {
		return DefaultFormatter(), nil
	}
	formatter, ok := formatters.Lookup(spec.Formatter)
	if !ok {
		return nil, fmt.Errorf("handler %q: %w: %q", spec.Name, ErrMissingFormatter, spec.Formatter)
	}
	return formatter, nil
}
