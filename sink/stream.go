package sink

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/Zoorn/logging2/conf"
	"github.com/Zoorn/logging2/record"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiGray   = "\x1b[90m"
	ansiBold   = "\x1b[1m"
)

type colorPolicy uint8

const (
	colorAuto colorPolicy = iota
	colorAlways
	colorNever
)

func colorMode(s string) (colorPolicy, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return colorAuto, nil
	case "always":
		return colorAlways, nil
	case "never":
		return colorNever, nil
	default:
		return colorAuto, fmt.Errorf("color must be auto, always or never, got %q", s)
	}
}

// streamTarget resolves a stream reference. The documents use the
// `ext://sys.stdout` form; bare names are accepted as well, and the empty
// target means stderr.
func streamTarget(target string) (*os.File, error) {
	switch strings.TrimPrefix(target, "ext://sys.") {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	default:
		return nil, fmt.Errorf("unknown stream target %q", target)
	}
}

type streamSink struct {
	name      string
	threshold record.Level
	formatter *Formatter
	colorize  bool

	mu sync.Mutex
	w  io.Writer
}

func newStream(spec conf.SinkSpec, formatter *Formatter) (Adapter, error) {
	target, err := streamTarget(spec.Target)
	if err != nil {
		return nil, fmt.Errorf("handler %q: %w", spec.Name, err)
	}
	policy, err := colorMode(spec.Color)
	if err != nil {
		return nil, fmt.Errorf("handler %q: %w", spec.Name, err)
	}
	colorize := false
	switch policy {
	case colorAlways:
		colorize = true
	case colorAuto:
		colorize = shouldColorize(target)
	}
	return &streamSink{
		name:      spec.Name,
		threshold: spec.Level,
		formatter: formatter,
		colorize:  colorize,
		w:         target,
	}, nil
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (s *streamSink) Name() string { return s.name }

func (s *streamSink) Kind() conf.Kind { return conf.KindStream }

func (s *streamSink) Threshold() record.Level { return s.threshold }

func (s *streamSink) Emit(rec *record.Record) error {
	line := s.formatter.Render(rec)
	if s.colorize {
		if color := levelColor(rec.Level); color != "" {
			line = color + line + ansiReset
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.w, line+"\n")
	return err
}

// Close leaves the process streams open.
func (s *streamSink) Close() error { return nil }

func levelColor(level record.Level) string {
	switch {
	case level >= record.LevelCritical:
		return ansiBold + ansiRed
	case level >= record.LevelError:
		return ansiRed
	case level >= record.LevelWarn:
		return ansiYellow
	case level >= record.LevelInfo:
		return ansiBlue
	default:
		return ansiGray
	}
}
