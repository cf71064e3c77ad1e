package logging2

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zoorn/logging2/conf"
)

// stubExit replaces the process exit seam for the duration of a test and
// reports the last status passed to it, -1 when never called.
func stubExit(t *testing.T) *int {
	t.Helper()
	code := -1
	orig := osExit
	osExit = func(c int) { code = c }
	t.Cleanup(func() { osExit = orig })
	return &code
}

func writePanicDocument(t *testing.T, dir, logPath string) {
	t.Helper()
	doc := fmt.Sprintf(`version: 1
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
  "": {handlers: [file], level: DEBUG}
`, logPath)
	if err := os.WriteFile(filepath.Join(dir, "panic.yaml"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}
}

func readPanicLog(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestHandlePanicsLogsTripleCriticalAndExits(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "panic.log")
	writePanicDocument(t, dir, logPath)

	code := stubExit(t)
	var fallback bytes.Buffer
	coord := New(Options{
		Sources:          []conf.Source{conf.Dir(dir)},
		DisableBootstrap: true,
		Fallback:         &fallback,
	})
	if err := coord.Load("panic", conf.Overrides{}); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	t.Cleanup(func() { _ = coord.Shutdown(context.Background()) })

	func() {
		defer coord.HandlePanics()
		panic("kaboom")
	}()

	if *code != 1 {
		t.Fatalf("expected exit status 1, got %d", *code)
	}

	lines := readPanicLog(t, logPath)
	if len(lines) < 4 {
		t.Fatalf("expected delimited report with a stack, got %v", lines)
	}
	prefix := "CRITICAL:" + uncaughtLogger + ":"
	if lines[0] != prefix+tracebackHeader {
		t.Fatalf("unexpected opening delimiter %q", lines[0])
	}
	if lines[1] != prefix+"panic: kaboom" {
		t.Fatalf("unexpected report line %q", lines[1])
	}
	if last := lines[len(lines)-1]; last != prefix+tracebackFooter {
		t.Fatalf("unexpected closing delimiter %q", last)
	}
	var sawStack bool
	for _, line := range lines[2 : len(lines)-1] {
		if strings.HasPrefix(line, "goroutine ") {
			sawStack = true
			break
		}
	}
	if !sawStack {
		t.Fatalf("expected a goroutine stack between the delimiters: %v", lines)
	}

	if !strings.Contains(fallback.String(), "panic: kaboom") {
		t.Fatalf("expected mirrored panic on the fallback writer, got %q", fallback.String())
	}
}

func TestHandlePanicsReraisesCancellation(t *testing.T) {
	code := stubExit(t)
	coord := New(Options{DisableBootstrap: true, Fallback: new(bytes.Buffer)})

	cancelErr := fmt.Errorf("worker stopped: %w", context.Canceled)
	var recovered any
	func() {
		defer func() { recovered = recover() }()
		defer coord.HandlePanics()
		panic(cancelErr)
	}()

	if *code != -1 {
		t.Fatalf("cancellation must not exit, got status %d", *code)
	}
	err, ok := recovered.(error)
	if !ok || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled to re-raise, got %v", recovered)
	}
}

func TestHandlePanicsWithoutPanicIsNoOp(t *testing.T) {
	code := stubExit(t)
	var fallback bytes.Buffer
	coord := New(Options{DisableBootstrap: true, Fallback: &fallback})

	func() {
		defer coord.HandlePanics()
	}()

	if *code != -1 {
		t.Fatalf("expected no exit, got status %d", *code)
	}
	if fallback.Len() != 0 {
		t.Fatalf("expected no fallback output, got %q", fallback.String())
	}
}

func TestHandlePanicsUnconfiguredStillMirrorsAndExits(t *testing.T) {
	code := stubExit(t)
	var fallback bytes.Buffer
	coord := New(Options{DisableBootstrap: true, Fallback: &fallback})

	func() {
		defer coord.HandlePanics()
		panic(errors.New("no sinks anywhere"))
	}()

	if *code != 1 {
		t.Fatalf("expected exit status 1, got %d", *code)
	}
	if !strings.Contains(fallback.String(), "no sinks anywhere") {
		t.Fatalf("expected mirrored panic, got %q", fallback.String())
	}
}
