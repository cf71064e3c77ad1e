package conf

import (
	"fmt"

	"github.com/Zoorn/logging2/record"
)

// Overrides adjusts a parsed document before it joins the merge. Zero-value
// fields leave the document untouched, so callers only set what they mean to
// change.
type Overrides struct {
	// Filename replaces the output path of every file-backed handler
	// (file, rotating_file and sqlite kinds).
	Filename string

	// Level replaces the threshold of every handler in the document.
	// Accepts the same level vocabulary as documents themselves.
	Level string

	// Formatter points every non-relay handler at the named formatter.
	// The formatter must be declared in the document.
	Formatter string
}

func (o Overrides) isZero() bool {
	return o.Filename == "" && o.Level == "" && o.Formatter == ""
}

// Apply rewrites doc in place according to the overrides.
func (o Overrides) Apply(doc *Document) error {
	if o.isZero() {
		return nil
	}
	var level record.Level
	if o.Level != "" {
		parsed, err := record.ParseLevel(o.Level)
		if err != nil {
			return fmt.Errorf("%w: %s: level override: %v", ErrInvalidDocument, doc.Identity, err)
		}
		level = parsed
	}
	if o.Formatter != "" {
		found := false
		for _, f := range doc.Formatters {
			if f.Name == o.Formatter {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s: formatter override %q is not declared", ErrInvalidDocument, doc.Identity, o.Formatter)
		}
	}
	for i := range doc.Handlers {
		h := &doc.Handlers[i]
		if o.Level != "" {
			h.Level = level
		}
		if h.Kind == KindRelay {
			continue
		}
		if o.Formatter != "" {
			h.Formatter = o.Formatter
		}
		if o.Filename != "" && writesFile(h.Kind) {
			h.Filename = o.Filename
		}
	}
	return nil
}

func writesFile(kind Kind) bool {
	switch kind {
	case KindFile, KindRotatingFile, KindSQLite:
		return true
	default:
		return false
	}
}
