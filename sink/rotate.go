package sink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/gzip"

	"github.com/Zoorn/logging2/conf"
	"github.com/Zoorn/logging2/record"
)

// rotatingSink writes to a size-capped file. When an emit would push the
// live file past maxBytes the backups shift by one (app.log.1 becomes
// app.log.2 and so on), the oldest falls off, and the live file restarts
// empty. Rotation takes a file lock next to the log so two processes
// pointed at the same path do not shift each other's backups mid-flight.
type rotatingSink struct {
	name      string
	threshold record.Level
	formatter *Formatter
	path      string
	maxBytes  int64
	backups   int
	compress  bool

	mu   sync.Mutex
	file *os.File
	size int64
	lock *flock.Flock
}

func newRotating(spec conf.SinkSpec, formatter *Formatter) (Adapter, error) {
	file, err := openLogFile(spec.Filename, "")
	if err != nil {
		return nil, fmt.Errorf("handler %q: %w", spec.Name, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("handler %q: stat log file: %w", spec.Name, err)
	}
	return &rotatingSink{
		name:      spec.Name,
		threshold: spec.Level,
		formatter: formatter,
		path:      spec.Filename,
		maxBytes:  spec.MaxBytes,
		backups:   spec.BackupCount,
		compress:  spec.Compress,
		file:      file,
		size:      info.Size(),
		lock:      flock.New(spec.Filename + ".lock"),
	}, nil
}

func (s *rotatingSink) Name() string { return s.name }

func (s *rotatingSink) Kind() conf.Kind { return conf.KindRotatingFile }

func (s *rotatingSink) Threshold() record.Level { return s.threshold }

func (s *rotatingSink) Emit(rec *record.Record) error {
	line := s.formatter.Render(rec) + "\n"
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return fmt.Errorf("handler %q: file already closed", s.name)
	}
	if s.maxBytes > 0 && s.size > 0 && s.size+int64(len(line)) > s.maxBytes {
		if err := s.rollover(); err != nil {
			return fmt.Errorf("handler %q: %w", s.name, err)
		}
	}
	n, err := io.WriteString(s.file, line)
	s.size += int64(n)
	return err
}

func (s *rotatingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *rotatingSink) rollover() error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquire rotation lock: %w", err)
	}
	defer s.lock.Unlock()

	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close before rotation: %w", err)
	}
	s.file = nil

	shiftErr := s.shiftBackups()

	mode := "w"
	if shiftErr != nil {
		// Rotation failed; keep appending to the live file rather than
		// truncating records we could not move aside.
		mode = ""
	}
	file, err := openLogFile(s.path, mode)
	if err != nil {
		if shiftErr != nil {
			return shiftErr
		}
		return err
	}
	s.file = file
	if info, statErr := file.Stat(); statErr == nil {
		s.size = info.Size()
	} else {
		s.size = 0
	}
	return shiftErr
}

func (s *rotatingSink) shiftBackups() error {
	if s.backups <= 0 {
		// No backups kept: the live file simply restarts.
		return nil
	}
	if err := os.Remove(s.backupName(s.backups)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("drop oldest backup: %w", err)
	}
	for i := s.backups - 1; i >= 1; i-- {
		src := s.backupName(i)
		if _, err := os.Stat(src); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat backup: %w", err)
		}
		if err := os.Rename(src, s.backupName(i+1)); err != nil {
			return fmt.Errorf("shift backup: %w", err)
		}
	}
	if s.compress {
		return compressInto(s.path, s.backupName(1))
	}
	if err := os.Rename(s.path, s.backupName(1)); err != nil {
		return fmt.Errorf("rotate live file: %w", err)
	}
	return nil
}

func (s *rotatingSink) backupName(i int) string {
	name := fmt.Sprintf("%s.%d", s.path, i)
	if s.compress {
		name += ".gz"
	}
	return name
}

// compressInto gzips src into dst and removes src on success.
func compressInto(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open for compression: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create compressed backup: %w", err)
	}
	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		gz.Close()
		out.Close()
		return fmt.Errorf("compress backup: %w", err)
	}
	if err := gz.Close(); err != nil {
		out.Close()
		return fmt.Errorf("finish compressed backup: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close compressed backup: %w", err)
	}
	return os.Remove(src)
}
