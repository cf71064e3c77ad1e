package record

import "time"

// Field is one structured key/value pair attached to a record.
type Field struct {
	Key   string
	Value any
}

// F builds a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Record is a single log event. A logger handle creates it, the dispatch
// queue holds it, and exactly one consumer (the relay or a flush) delivers it
// to the sinks before it is discarded.
type Record struct {
	Time    time.Time
	Level   Level
	Logger  string
	Message string
	Fields  []Field
	// Trace carries a formatted failure trace appended to the message body
	// by the sink formatter. Empty for ordinary records.
	Trace string
}

// New builds a record stamped with the current time.
func New(logger string, level Level, message string, fields ...Field) *Record {
	return &Record{
		Time:    time.Now(),
		Level:   level,
		Logger:  logger,
		Message: message,
		Fields:  fields,
	}
}
