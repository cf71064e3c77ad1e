package sink_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zoorn/logging2/conf"
	"github.com/Zoorn/logging2/record"
	"github.com/Zoorn/logging2/sink"
)

func compiled(t *testing.T, specs ...conf.FormatterSpec) sink.Formatters {
	t.Helper()
	set, err := sink.CompileFormatters(specs)
	if err != nil {
		t.Fatalf("CompileFormatters returned error: %v", err)
	}
	return set
}

func TestValidateUnknownKindNamesTheKind(t *testing.T) {
	spec := conf.SinkSpec{Name: "syslog", Kind: conf.KindUnknown, RawKind: "logging.handlers.SysLogHandler"}
	err := sink.Validate(spec, compiled(t))
	if !errors.Is(err, sink.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if !strings.Contains(err.Error(), "logging.handlers.SysLogHandler") {
		t.Fatalf("error must name the offending kind: %v", err)
	}
}

func TestValidateMissingFormatter(t *testing.T) {
	spec := conf.SinkSpec{Name: "console", Kind: conf.KindStream, Formatter: "fancy"}
	err := sink.Validate(spec, compiled(t))
	if !errors.Is(err, sink.ErrMissingFormatter) {
		t.Fatalf("expected ErrMissingFormatter, got %v", err)
	}
}

func TestValidateKindRequirements(t *testing.T) {
	cases := []conf.SinkSpec{
		{Name: "f", Kind: conf.KindFile},
		{Name: "f", Kind: conf.KindFile, Filename: "x.log", Mode: "rw"},
		{Name: "r", Kind: conf.KindRotatingFile},
		{Name: "s", Kind: conf.KindSQLite},
		{Name: "s", Kind: conf.KindSQLite, Filename: "x.db", Table: "drop table"},
		{Name: "c", Kind: conf.KindStream, Target: "ext://sys.somewhere"},
		{Name: "c", Kind: conf.KindStream, Color: "rainbow"},
	}
	for _, spec := range cases {
		if err := sink.Validate(spec, compiled(t)); err == nil {
			t.Fatalf("expected validation failure for %+v", spec)
		}
	}
}

func TestValidateDoesNotTouchFilesystem(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nested", "never", "app.log")
	spec := conf.SinkSpec{Name: "f", Kind: conf.KindFile, Filename: missing}
	if err := sink.Validate(spec, compiled(t)); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(missing)); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("Validate must not create directories")
	}
}

func TestBuildStreamAdapter(t *testing.T) {
	spec := conf.SinkSpec{
		Name:   "console",
		Kind:   conf.KindStream,
		Level:  record.LevelInfo,
		Target: "ext://sys.stdout",
	}
	adapter, err := sink.Build(spec, compiled(t))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	defer adapter.Close()
	if adapter.Kind() != conf.KindStream || adapter.Name() != "console" {
		t.Fatalf("unexpected adapter identity: %s/%v", adapter.Name(), adapter.Kind())
	}
	if adapter.Threshold() != record.LevelInfo {
		t.Fatalf("unexpected threshold: %v", adapter.Threshold())
	}
}

func TestFileSinkAppendsRenderedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	formatters := compiled(t, conf.FormatterSpec{
		Name:   "standard",
		Fields: map[string]any{"format": "%(levelname)s %(message)s"},
	})
	spec := conf.SinkSpec{
		Name:      "file",
		Kind:      conf.KindFile,
		Formatter: "standard",
		Filename:  path,
	}
	adapter, err := sink.Build(spec, formatters)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if err := adapter.Emit(record.New("app", record.LevelInfo, "first")); err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	if err := adapter.Emit(record.New("app", record.LevelError, "second")); err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	if err := adapter.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := adapter.Close(); err != nil {
		t.Fatalf("second Close must be a no-op, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	want := "INFO first\nERROR second\n"
	if string(data) != want {
		t.Fatalf("unexpected file content: got %q want %q", data, want)
	}
}

func TestFileSinkTruncateMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, []byte("stale line\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	spec := conf.SinkSpec{Name: "file", Kind: conf.KindFile, Filename: path, Mode: "w"}
	adapter, err := sink.Build(spec, compiled(t))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if err := adapter.Emit(record.New("app", record.LevelInfo, "fresh")); err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	adapter.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if string(data) != "INFO:app:fresh\n" {
		t.Fatalf("truncate mode kept old content: %q", data)
	}
}

func TestBuildAllClosesOnFailure(t *testing.T) {
	dir := t.TempDir()
	specs := []conf.SinkSpec{
		{Name: "ok", Kind: conf.KindFile, Filename: filepath.Join(dir, "a.log")},
		{Name: "broken", Kind: conf.KindUnknown, RawKind: "nope"},
	}
	adapters, err := sink.BuildAll(specs, compiled(t))
	if !errors.Is(err, sink.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if adapters != nil {
		t.Fatalf("expected nil adapters on failure, got %d", len(adapters))
	}
}
