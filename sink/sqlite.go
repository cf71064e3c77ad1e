package sink

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zoorn/logging2/conf"
	"github.com/Zoorn/logging2/record"
)

const defaultTable = "log_records"

// sqliteSink persists records to a table instead of rendering lines.
// Structured fields are stored as a JSON column so they stay queryable.
type sqliteSink struct {
	name      string
	threshold record.Level
	table     string

	mu     sync.Mutex
	db     *sql.DB
	insert *sql.Stmt
}

func newSQLite(spec conf.SinkSpec) (Adapter, error) {
	table := spec.Table
	if table == "" {
		table = defaultTable
	}
	if dir := filepath.Dir(spec.Filename); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("handler %q: create database directory: %w", spec.Name, err)
		}
	}
	db, err := sql.Open("sqlite", spec.Filename)
	if err != nil {
		return nil, fmt.Errorf("handler %q: open sqlite db: %w", spec.Name, err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("handler %q: apply pragma %q: %w", spec.Name, pragma, execErr)
		}
	}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ts TEXT NOT NULL,
    level INTEGER NOT NULL,
    level_name TEXT NOT NULL,
    logger TEXT NOT NULL,
    message TEXT NOT NULL,
    fields TEXT,
    trace TEXT
)`, table)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("handler %q: create table %s: %w", spec.Name, table, err)
	}
	indexStmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_ts ON %s(ts)", table, table)
	if _, err := db.Exec(indexStmt); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("handler %q: create index: %w", spec.Name, err)
	}
	insert, err := db.Prepare(fmt.Sprintf(
		"INSERT INTO %s (ts, level, level_name, logger, message, fields, trace) VALUES (?, ?, ?, ?, ?, ?, ?)",
		table,
	))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("handler %q: prepare insert: %w", spec.Name, err)
	}
	return &sqliteSink{
		name:      spec.Name,
		threshold: spec.Level,
		table:     table,
		db:        db,
		insert:    insert,
	}, nil
}

func (s *sqliteSink) Name() string { return s.name }

func (s *sqliteSink) Kind() conf.Kind { return conf.KindSQLite }

func (s *sqliteSink) Threshold() record.Level { return s.threshold }

func (s *sqliteSink) Emit(rec *record.Record) error {
	var fieldsJSON any
	if len(rec.Fields) > 0 {
		payload := make(map[string]any, len(rec.Fields))
		for _, field := range rec.Fields {
			payload[field.Key] = field.Value
		}
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("handler %q: marshal fields: %w", s.name, err)
		}
		fieldsJSON = string(encoded)
	}
	var trace any
	if rec.Trace != "" {
		trace = rec.Trace
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("handler %q: database already closed", s.name)
	}
	_, err := s.insert.Exec(
		rec.Time.UTC().Format(time.RFC3339Nano),
		int(rec.Level),
		rec.Level.String(),
		rec.Logger,
		rec.Message,
		fieldsJSON,
		trace,
	)
	if err != nil {
		return fmt.Errorf("handler %q: insert record: %w", s.name, err)
	}
	return nil
}

func (s *sqliteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	_ = s.insert.Close()
	err := s.db.Close()
	s.db = nil
	return err
}

// validTableName accepts plain identifiers only; the table name is spliced
// into SQL text.
func validTableName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
