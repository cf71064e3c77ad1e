package sink_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zoorn/logging2/conf"
	"github.com/Zoorn/logging2/record"
	"github.com/Zoorn/logging2/sink"
)

func TestSQLiteSinkInsertsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.db")
	spec := conf.SinkSpec{
		Name:     "audit",
		Kind:     conf.KindSQLite,
		Level:    record.LevelInfo,
		Filename: path,
	}
	adapter, err := sink.Build(spec, compiled(t))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	rec := record.New("app.audit", record.LevelError, "payment failed",
		record.F("order", 991), record.F("retry", true))
	rec.Trace = "stack here"
	if err := adapter.Emit(rec); err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	if err := adapter.Emit(record.New("app.audit", record.LevelInfo, "plain")); err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	if err := adapter.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var (
		ts, levelName, logger, message string
		level                          int
		fields, trace                  sql.NullString
	)
	row := db.QueryRow("SELECT ts, level, level_name, logger, message, fields, trace FROM log_records ORDER BY id LIMIT 1")
	if err := row.Scan(&ts, &level, &levelName, &logger, &message, &fields, &trace); err != nil {
		t.Fatalf("scan row: %v", err)
	}
	if _, err := time.Parse(time.RFC3339Nano, ts); err != nil {
		t.Fatalf("timestamp not RFC3339Nano: %q", ts)
	}
	if level != int(record.LevelError) || levelName != "ERROR" {
		t.Fatalf("unexpected level columns: %d %q", level, levelName)
	}
	if logger != "app.audit" || message != "payment failed" {
		t.Fatalf("unexpected identity columns: %q %q", logger, message)
	}
	if !fields.Valid || fields.String != `{"order":991,"retry":true}` {
		t.Fatalf("unexpected fields column: %+v", fields)
	}
	if !trace.Valid || trace.String != "stack here" {
		t.Fatalf("unexpected trace column: %+v", trace)
	}

	var nullFields sql.NullString
	row = db.QueryRow("SELECT fields FROM log_records ORDER BY id DESC LIMIT 1")
	if err := row.Scan(&nullFields); err != nil {
		t.Fatalf("scan second row: %v", err)
	}
	if nullFields.Valid {
		t.Fatalf("expected NULL fields for record without fields, got %q", nullFields.String)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM log_records").Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 2 {
		t.Fatalf("unexpected row count: %d", count)
	}
}

func TestSQLiteSinkCustomTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.db")
	spec := conf.SinkSpec{
		Name:     "audit",
		Kind:     conf.KindSQLite,
		Filename: path,
		Table:    "audit_trail",
	}
	adapter, err := sink.Build(spec, compiled(t))
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if err := adapter.Emit(record.New("app", record.LevelInfo, "hello")); err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	adapter.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM audit_trail").Scan(&count); err != nil {
		t.Fatalf("count rows in custom table: %v", err)
	}
	if count != 1 {
		t.Fatalf("unexpected row count: %d", count)
	}
}
