package main

import (
	"fmt"

	"github.com/Zoorn/logging2"
	"github.com/Zoorn/logging2/conf"
)

// commandContext resolves the document sources shared by every subcommand:
// the --dir directories in flag order, then the embedded defaults.
type commandContext struct {
	dirFlags *[]string
}

func newCommandContext(dirFlags *[]string) *commandContext {
	return &commandContext{dirFlags: dirFlags}
}

// namedSource pairs a source with the label shown in listings.
type namedSource struct {
	label string
	src   conf.Source
}

func (c *commandContext) namedSources() []namedSource {
	var sources []namedSource
	if c.dirFlags != nil {
		for _, dir := range *c.dirFlags {
			sources = append(sources, namedSource{label: dir, src: conf.Dir(dir)})
		}
	}
	sources = append(sources, namedSource{label: "embedded", src: logging2.EmbeddedConfigs()})
	return sources
}

func (c *commandContext) sources() []conf.Source {
	named := c.namedSources()
	sources := make([]conf.Source, len(named))
	for i, ns := range named {
		sources[i] = ns.src
	}
	return sources
}

// loadDocuments resolves and parses every identifier, applying the same
// overrides to each, in argument order.
func (c *commandContext) loadDocuments(identifiers []string, ov conf.Overrides) ([]*conf.Document, error) {
	sources := c.sources()
	docs := make([]*conf.Document, 0, len(identifiers))
	for _, identifier := range identifiers {
		doc, err := conf.LoadDocument(sources, identifier)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", identifier, err)
		}
		if err := ov.Apply(doc); err != nil {
			return nil, fmt.Errorf("apply overrides to %s: %w", identifier, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
