package testsupport

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/Zoorn/logging2"
	"github.com/Zoorn/logging2/conf"
	"github.com/Zoorn/logging2/relay"
)

// Option customizes the coordinator built by NewCoordinator.
type Option func(*builder)

type builder struct {
	t    testing.TB
	dir  string
	opts logging2.Options
}

// NewCoordinator produces a coordinator reading documents from a temp source
// directory, with bootstrap disabled so tests opt into it explicitly.
// Shutdown is registered as cleanup.
func NewCoordinator(t testing.TB, opts ...Option) *logging2.Coordinator {
	t.Helper()

	b := &builder{t: t, dir: t.TempDir()}
	b.opts.DisableBootstrap = true
	for _, opt := range opts {
		opt(b)
	}
	if len(b.opts.Sources) == 0 {
		b.opts.Sources = []conf.Source{conf.Dir(b.dir)}
	}

	coord := logging2.New(b.opts)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = coord.Shutdown(ctx)
	})
	return coord
}

// WithSourceDir points the coordinator at a caller-managed document
// directory instead of a fresh temp one.
func WithSourceDir(dir string) Option {
	return func(b *builder) {
		b.dir = dir
		b.opts.Sources = []conf.Source{conf.Dir(dir)}
	}
}

// WithDocument seeds the source directory with one document file.
func WithDocument(name, content string) Option {
	return func(b *builder) {
		WriteDocument(b.t, b.dir, name, content)
	}
}

// WithBootstrap enables automatic bootstrap with the given identifier.
func WithBootstrap(identifier, level string) Option {
	return func(b *builder) {
		b.opts.DisableBootstrap = false
		b.opts.BootstrapConfig = identifier
		b.opts.BootstrapLevel = level
	}
}

// WithBoundedQueue caps the dispatch queue.
func WithBoundedQueue(capacity int, policy relay.Policy) Option {
	return func(b *builder) {
		b.opts.QueueCapacity = capacity
		b.opts.Overflow = policy
	}
}

// WithFallback captures relay failure reports.
func WithFallback(w io.Writer) Option {
	return func(b *builder) {
		b.opts.Fallback = w
	}
}

// FileDocument renders a document with a single file handler aimed at path,
// a root logger and the plain level:name:message formatter.
func FileDocument(path string) string {
	return fmt.Sprintf(`version: 1
formatters:
  plain:
    format: "%%(levelname)s:%%(name)s:%%(message)s"
handlers:
  file:
    kind: file
    level: DEBUG
    formatter: plain
    filename: %q
loggers:
  "":
    handlers: [file]
    level: DEBUG
`, path)
}
