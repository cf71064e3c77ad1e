package logging2

import (
	"io"
	"os"

	"github.com/Zoorn/logging2/conf"
	"github.com/Zoorn/logging2/relay"
)

// Options configures a Coordinator.
type Options struct {
	// Sources are consulted in order when Load resolves an identifier.
	// Empty means the embedded documents only.
	Sources []conf.Source

	// DisableBootstrap stops GetLogger from applying BootstrapConfig the
	// first time it runs on an unconfigured coordinator. With bootstrap
	// disabled GetLogger returns ErrNotConfigured until Load succeeds.
	DisableBootstrap bool

	// BootstrapConfig is the identifier applied by the bootstrap,
	// "logging_console" by default.
	BootstrapConfig string

	// BootstrapLevel overrides every handler level during bootstrap,
	// "DEBUG" by default.
	BootstrapLevel string

	// QueueCapacity bounds the dispatch queue; zero or less is unbounded.
	QueueCapacity int

	// Overflow picks the full-queue behavior for a bounded queue.
	Overflow relay.Policy

	// Fallback receives delivery failure reports and the mirrored panic
	// output of HandlePanics. Defaults to stderr.
	Fallback io.Writer
}

// DefaultOptions returns the values New substitutes for unset fields:
// embedded documents, automatic DEBUG console bootstrap, unbounded queue,
// stderr fallback.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if len(o.Sources) == 0 {
		o.Sources = []conf.Source{EmbeddedConfigs()}
	}
	if o.BootstrapConfig == "" {
		o.BootstrapConfig = "logging_console"
	}
	if o.BootstrapLevel == "" {
		o.BootstrapLevel = "DEBUG"
	}
	if o.Fallback == nil {
		o.Fallback = os.Stderr
	}
	return o
}
