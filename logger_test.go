package logging2_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zoorn/logging2"
	"github.com/Zoorn/logging2/conf"
	"github.com/Zoorn/logging2/internal/testsupport"
	"github.com/Zoorn/logging2/record"
)

// leveledDocument declares a strict "app" logger next to a permissive root.
func leveledDocument(path string) string {
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
  app: {handlers: [file], level: WARNING}
  "":  {handlers: [file], level: DEBUG}
`, path)
}

func TestLoggerLevelGate(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	testsupport.WriteDocument(t, dir, "leveled.yaml", leveledDocument(logPath))
	coord := testsupport.NewCoordinator(t, testsupport.WithSourceDir(dir))

	if err := coord.Load("leveled", conf.Overrides{}); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	app := coord.MustLogger("app")
	other := coord.MustLogger("other")

	app.Debug("hidden")
	app.Info("hidden")
	app.Warn("shown")
	other.Debug("shown")

	lines := testsupport.FlushAndRead(t, coord, logPath)
	want := []string{"WARNING:app:shown", "DEBUG:other:shown"}
	if len(lines) != len(want) {
		t.Fatalf("expected %v, got %v", want, lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, lines)
		}
	}
}

func TestDottedNamesInheritNearestAncestor(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	testsupport.WriteDocument(t, dir, "leveled.yaml", leveledDocument(logPath))
	coord := testsupport.NewCoordinator(t, testsupport.WithSourceDir(dir))

	if err := coord.Load("leveled", conf.Overrides{}); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	conn := coord.MustLogger("app.db.conn")

	conn.Info("suppressed by app")
	conn.Error("escalated")

	lines := testsupport.FlushAndRead(t, coord, logPath)
	if len(lines) != 1 || lines[0] != "ERROR:app.db.conn:escalated" {
		t.Fatalf("dotted name must inherit the app gate: %v", lines)
	}
}

func TestUngovernedNameIsDropped(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	testsupport.WriteDocument(t, dir, "norootyaml.yaml", fmt.Sprintf(`version: 1
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
  app: {handlers: [file], level: DEBUG}
`, logPath))
	coord := testsupport.NewCoordinator(t, testsupport.WithSourceDir(dir))

	if err := coord.Load("norootyaml", conf.Overrides{}); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	stray := coord.MustLogger("other.module")
	governed := coord.MustLogger("app")

	stray.Critical("nowhere to go")
	governed.Info("delivered")

	lines := testsupport.FlushAndRead(t, coord, logPath)
	if len(lines) != 1 || lines[0] != "INFO:app:delivered" {
		t.Fatalf("records without a governing logger must drop: %v", lines)
	}
}

func TestFieldsRenderAsKeyValuePairs(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	testsupport.WriteDocument(t, dir, "filelog.yaml", testsupport.FileDocument(logPath))
	coord := testsupport.NewCoordinator(t, testsupport.WithSourceDir(dir))

	if err := coord.Load("filelog", conf.Overrides{}); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	logger := coord.MustLogger("app")
	logger.Info("saved",
		record.F("count", 3),
		record.F("path", "/tmp/archive dir"),
	)

	lines := testsupport.FlushAndRead(t, coord, logPath)
	want := `INFO:app:saved count=3 path="/tmp/archive dir"`
	if len(lines) != 1 || lines[0] != want {
		t.Fatalf("expected %q, got %v", want, lines)
	}
}

func TestErrorTraceAppendsFailureAndStack(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	testsupport.WriteDocument(t, dir, "filelog.yaml", testsupport.FileDocument(logPath))
	coord := testsupport.NewCoordinator(t, testsupport.WithSourceDir(dir))

	if err := coord.Load("filelog", conf.Overrides{}); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	logger := coord.MustLogger("app")
	logger.ErrorTrace("write failed", errors.New("disk offline"))

	lines := testsupport.FlushAndRead(t, coord, logPath)
	if len(lines) < 3 {
		t.Fatalf("expected message, failure and stack lines, got %v", lines)
	}
	if lines[0] != "ERROR:app:write failed" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if lines[1] != "disk offline" {
		t.Fatalf("expected failure text on second line, got %q", lines[1])
	}
	var sawStack bool
	for _, line := range lines[2:] {
		if strings.HasPrefix(line, "goroutine ") {
			sawStack = true
			break
		}
	}
	if !sawStack {
		t.Fatalf("expected a goroutine stack in the trace: %v", lines)
	}
}

func TestGetLoggerMemoizesHandles(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	testsupport.WriteDocument(t, dir, "filelog.yaml", testsupport.FileDocument(logPath))
	coord := testsupport.NewCoordinator(t, testsupport.WithSourceDir(dir))

	if err := coord.Load("filelog", conf.Overrides{}); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	first, err := coord.GetLogger("app.db")
	if err != nil {
		t.Fatalf("GetLogger returned error: %v", err)
	}
	second, err := coord.GetLogger("app.db")
	if err != nil {
		t.Fatalf("GetLogger returned error: %v", err)
	}
	if first != second {
		t.Fatal("expected the same handle for the same name")
	}
	third, err := coord.GetLogger("app.api")
	if err != nil {
		t.Fatalf("GetLogger returned error: %v", err)
	}
	if first == third {
		t.Fatal("expected distinct handles for distinct names")
	}
	if got := first.Name(); got != "app.db" {
		t.Fatalf("unexpected handle name %q", got)
	}
}

func TestGetLoggerWithoutBootstrapFails(t *testing.T) {
	coord := testsupport.NewCoordinator(t)
	if _, err := coord.GetLogger("app"); !errors.Is(err, logging2.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestMustLoggerPanicsWithoutConfiguration(t *testing.T) {
	coord := testsupport.NewCoordinator(t)
	defer func() {
		if recover() == nil {
			t.Fatal("expected MustLogger to panic")
		}
	}()
	coord.MustLogger("app")
}

func TestHandlesSurviveReconfiguration(t *testing.T) {
	dir := t.TempDir()
	firstPath := filepath.Join(dir, "first.log")
	secondPath := filepath.Join(dir, "second.log")
	testsupport.WriteDocument(t, dir, "first.yaml", testsupport.FileDocument(firstPath))
	testsupport.WriteDocument(t, dir, "second.yaml", testsupport.FileDocument(secondPath))
	coord := testsupport.NewCoordinator(t, testsupport.WithSourceDir(dir))

	if err := coord.Load("first", conf.Overrides{}); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	logger := coord.MustLogger("app")
	logger.Info("to first")
	if err := coord.Flush(testCtx(t)); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	if err := coord.Remove("first"); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if err := coord.Load("second", conf.Overrides{}); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	logger.Info("to second")

	secondLines := testsupport.FlushAndRead(t, coord, secondPath)
	if len(secondLines) != 1 || secondLines[0] != "INFO:app:to second" {
		t.Fatalf("handle must follow the live configuration: %v", secondLines)
	}
	firstLines := testsupport.ReadLines(t, firstPath)
	if len(firstLines) != 1 || firstLines[0] != "INFO:app:to first" {
		t.Fatalf("first sink must keep only its own records: %v", firstLines)
	}
}
