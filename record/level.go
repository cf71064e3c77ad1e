package record

import (
	"fmt"
	"strconv"
	"strings"
)

// Level grades a record's severity. Higher is more severe. The numeric
// values match the scale configuration documents use, so documents may give
// levels by name or by number interchangeably.
type Level uint8

const (
	// LevelUnset accepts everything when used as a threshold.
	LevelUnset Level = 0
	// LevelDebug for detailed diagnostic output.
	LevelDebug Level = 10
	// LevelInfo for routine operational messages.
	LevelInfo Level = 20
	// LevelWarn for conditions worth attention but not failures.
	LevelWarn Level = 30
	// LevelError for failures the application survived.
	LevelError Level = 40
	// LevelCritical for failures that end the process or workload.
	LevelCritical Level = 50
)

// String returns the document-facing name of the level. Names follow the
// configuration document vocabulary (WARNING, not WARN) so formatted output
// stays byte-compatible with documents written for the original tooling.
func (l Level) String() string {
	switch l {
	case LevelUnset:
		return "NOTSET"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "LEVEL(" + strconv.Itoa(int(l)) + ")"
	}
}

// ParseLevel converts a level value from a parsed configuration document.
// Accepted forms: a name (case-insensitive; WARN/WARNING and FATAL/CRITICAL
// are synonyms) or a number on the 0-255 scale. Other values fail.
func ParseLevel(v any) (Level, error) {
	switch value := v.(type) {
	case string:
		return parseLevelName(value)
	case int:
		return levelFromInt(int64(value))
	case int64:
		return levelFromInt(value)
	case uint64:
		if value > 255 {
			return LevelUnset, fmt.Errorf("level %d out of range", value)
		}
		return Level(value), nil
	case float64:
		n := int64(value)
		if float64(n) != value {
			return LevelUnset, fmt.Errorf("level %v is not an integer", value)
		}
		return levelFromInt(n)
	case nil:
		return LevelUnset, nil
	default:
		return LevelUnset, fmt.Errorf("level has unsupported type %T", v)
	}
}

func parseLevelName(name string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "NOTSET":
		return LevelUnset, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "CRITICAL", "FATAL":
		return LevelCritical, nil
	default:
		if n, err := strconv.ParseInt(strings.TrimSpace(name), 10, 64); err == nil {
			return levelFromInt(n)
		}
		return LevelUnset, fmt.Errorf("unknown level %q", name)
	}
}

func levelFromInt(n int64) (Level, error) {
	if n < 0 || n > 255 {
		return LevelUnset, fmt.Errorf("level %d out of range", n)
	}
	return Level(n), nil
}
