package sink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/Zoorn/logging2/conf"
	"github.com/Zoorn/logging2/record"
)

type fileSink struct {
	name      string
	threshold record.Level
	formatter *Formatter

	mu   sync.Mutex
	file *os.File
}

// openLogFile creates parent directories and opens the file in append mode,
// or truncating when mode is "w".
func openLogFile(path, mode string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if mode == "w" {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	file, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}

func newFile(spec conf.SinkSpec, formatter *Formatter) (Adapter, error) {
	file, err := openLogFile(spec.Filename, spec.Mode)
	if err != nil {
		return nil, fmt.Errorf("handler %q: %w", spec.Name, err)
	}
	return &fileSink{
		name:      spec.Name,
		threshold: spec.Level,
		formatter: formatter,
		file:      file,
	}, nil
}

func (s *fileSink) Name() string { return s.name }

func (s *fileSink) Kind() conf.Kind { return conf.KindFile }

func (s *fileSink) Threshold() record.Level { return s.threshold }

func (s *fileSink) Emit(rec *record.Record) error {
	line := s.formatter.Render(rec)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return fmt.Errorf("handler %q: file already closed", s.name)
	}
	_, err := io.WriteString(s.file, line+"\n")
	return err
}

func (s *fileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
