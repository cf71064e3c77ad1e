package logging2

import (
	"runtime/debug"
	"strings"

	"github.com/Zoorn/logging2/record"
)

// Logger is a named handle feeding the coordinator's queue. Handles are
// memoized per name, safe for concurrent use and remain valid across
// reconfiguration; each emit reads the configuration current at that moment.
type Logger struct {
	coord *Coordinator
	name  string
}

// Name returns the logger name the handle was created with.
func (l *Logger) Name() string { return l.name }

// Debug emits a record at debug severity.
func (l *Logger) Debug(msg string, fields ...record.Field) {
	l.log(record.LevelDebug, msg, "", fields)
}

// Info emits a record at info severity.
func (l *Logger) Info(msg string, fields ...record.Field) {
	l.log(record.LevelInfo, msg, "", fields)
}

// Warn emits a record at warning severity.
func (l *Logger) Warn(msg string, fields ...record.Field) {
	l.log(record.LevelWarn, msg, "", fields)
}

// Error emits a record at error severity.
func (l *Logger) Error(msg string, fields ...record.Field) {
	l.log(record.LevelError, msg, "", fields)
}

// Critical emits a record at critical severity.
func (l *Logger) Critical(msg string, fields ...record.Field) {
	l.log(record.LevelCritical, msg, "", fields)
}

// ErrorTrace emits at error severity with the failure and the calling
// goroutine's stack attached as the record trace.
func (l *Logger) ErrorTrace(msg string, err error, fields ...record.Field) {
	l.log(record.LevelError, msg, renderTrace(err), fields)
}

// CriticalTrace emits at critical severity with the failure and the calling
// goroutine's stack attached as the record trace.
func (l *Logger) CriticalTrace(msg string, err error, fields ...record.Field) {
	l.log(record.LevelCritical, msg, renderTrace(err), fields)
}

// log filters against the spec governing this logger name, then enqueues.
// Records on names no spec governs are dropped, matching the merge result
// for an empty document set.
func (l *Logger) log(level record.Level, msg, trace string, fields []record.Field) {
	eff := l.coord.snapshotEffective()
	if eff == nil {
		return
	}
	spec, ok := eff.Resolve(l.name)
	if !ok {
		return
	}
	if spec.Level != record.LevelUnset && level < spec.Level {
		return
	}
	if relayLevel := eff.Relay.Level; relayLevel != record.LevelUnset && level < relayLevel {
		return
	}
	rec := record.New(l.name, level, msg, fields...)
	rec.Trace = trace
	l.coord.queue.Enqueue(rec)
}

func renderTrace(err error) string {
	var b strings.Builder
	if err != nil {
		b.WriteString(err.Error())
		b.WriteByte('\n')
	}
	b.Write(debug.Stack())
	return b.String()
}
