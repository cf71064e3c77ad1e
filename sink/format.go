package sink

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/Zoorn/logging2/conf"
	"github.com/Zoorn/logging2/record"
)

const (
	// defaultTemplate matches what callers get when a handler names no
	// formatter (level, logger and message, colon separated).
	defaultTemplate = "%(levelname)s:%(name)s:%(message)s"
	asctimeLayout   = "2006-01-02 15:04:05"
)

// placeholders maps template keys to their native class:
// 's' string, 'd' integer, 'f' float.
var placeholders = map[string]byte{
	"asctime":   's',
	"name":      's',
	"levelname": 's',
	"message":   's',
	"levelno":   'd',
	"msecs":     'd',
	"created":   'f',
}

type part struct {
	literal string
	key     string
	spec    string // fmt verb including flags, e.g. "%v" or "%03d"
	verb    byte
}

// Formatter renders records from a compiled percent template, the
// `%(key)s` style the configuration documents use. Structured fields are
// appended as key=value pairs and a trace, when present, follows on its
// own lines.
type Formatter struct {
	template string
	dateFmt  string
	parts    []part
}

var defaultFormatter = mustCompile(defaultTemplate, "")

// DefaultFormatter renders with the default template and timestamp shape.
func DefaultFormatter() *Formatter { return defaultFormatter }

func mustCompile(template, dateFormat string) *Formatter {
	f, err := CompileTemplate(template, dateFormat)
	if err != nil {
		panic(err)
	}
	return f
}

// CompileTemplate parses a percent template. Unknown placeholder keys, bare
// percent signs and key/conversion mismatches are rejected here so broken
// formatters fail at configuration time, not per record.
func CompileTemplate(template, dateFormat string) (*Formatter, error) {
	f := &Formatter{template: template, dateFmt: dateFormat}
	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			f.parts = append(f.parts, part{literal: literal.String()})
			literal.Reset()
		}
	}
	i := 0
	for i < len(template) {
		c := template[i]
		if c != '%' {
			literal.WriteByte(c)
			i++
			continue
		}
		if i+1 < len(template) && template[i+1] == '%' {
			literal.WriteByte('%')
			i += 2
			continue
		}
		if i+1 >= len(template) || template[i+1] != '(' {
			return nil, fmt.Errorf("template %q: stray %% at offset %d", template, i)
		}
		rest := template[i+2:]
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return nil, fmt.Errorf("template %q: unclosed placeholder", template)
		}
		key := rest[:end]
		native, known := placeholders[key]
		if !known {
			return nil, fmt.Errorf("template %q: unknown placeholder %q", template, key)
		}
		j := i + 2 + end + 1
		flagStart := j
		for j < len(template) && isFlagChar(template[j]) {
			j++
		}
		if j >= len(template) {
			return nil, fmt.Errorf("template %q: placeholder %q missing conversion", template, key)
		}
		verb := template[j]
		if err := checkConversion(key, native, verb); err != nil {
			return nil, fmt.Errorf("template %q: %v", template, err)
		}
		flush()
		spec := "%" + template[flagStart:j] + string(renderVerb(verb))
		f.parts = append(f.parts, part{key: key, spec: spec, verb: verb})
		i = j + 1
	}
	flush()
	return f, nil
}

func isFlagChar(c byte) bool {
	return c == '-' || c == '+' || c == ' ' || c == '.' || (c >= '0' && c <= '9')
}

func checkConversion(key string, native, verb byte) error {
	switch verb {
	case 's':
		return nil
	case 'd':
		if native != 'd' {
			return fmt.Errorf("placeholder %q does not convert with %%d", key)
		}
		return nil
	case 'f':
		if native != 'f' && native != 'd' {
			return fmt.Errorf("placeholder %q does not convert with %%f", key)
		}
		return nil
	default:
		return fmt.Errorf("placeholder %q: unsupported conversion %q", key, string(verb))
	}
}

// renderVerb keeps %d and %f but renders %s as %v so numeric values work
// with string conversions and padding flags.
func renderVerb(verb byte) byte {
	if verb == 's' {
		return 'v'
	}
	return verb
}

// Render produces the final line (without trailing newline).
func (f *Formatter) Render(rec *record.Record) string {
	var b strings.Builder
	for _, p := range f.parts {
		if p.key == "" {
			b.WriteString(p.literal)
			continue
		}
		b.WriteString(f.renderPart(p, rec))
	}
	for _, field := range rec.Fields {
		b.WriteByte(' ')
		b.WriteString(field.Key)
		b.WriteByte('=')
		b.WriteString(fieldValue(field.Value))
	}
	if rec.Trace != "" {
		b.WriteByte('\n')
		b.WriteString(strings.TrimRight(rec.Trace, "\n"))
	}
	return b.String()
}

func (f *Formatter) renderPart(p part, rec *record.Record) string {
	switch p.verb {
	case 'd':
		var n int
		switch p.key {
		case "levelno":
			n = int(rec.Level)
		case "msecs":
			n = rec.Time.Nanosecond() / int(time.Millisecond)
		}
		return fmt.Sprintf(p.spec, n)
	case 'f':
		var x float64
		switch p.key {
		case "created":
			x = float64(rec.Time.UnixNano()) / float64(time.Second)
		case "msecs":
			x = float64(rec.Time.Nanosecond()) / float64(time.Millisecond)
		}
		return fmt.Sprintf(p.spec, x)
	default:
		return fmt.Sprintf(p.spec, f.placeholderValue(p.key, rec))
	}
}

func (f *Formatter) placeholderValue(key string, rec *record.Record) any {
	switch key {
	case "asctime":
		return f.asctime(rec.Time)
	case "name":
		return rec.Logger
	case "levelname":
		return rec.Level.String()
	case "levelno":
		return int(rec.Level)
	case "msecs":
		return rec.Time.Nanosecond() / int(time.Millisecond)
	case "created":
		return strconv.FormatFloat(float64(rec.Time.UnixNano())/float64(time.Second), 'f', 6, 64)
	case "message":
		return rec.Message
	default:
		return ""
	}
}

// asctime renders the record timestamp. Without an explicit date format it
// mirrors the documents' native shape, seconds plus comma milliseconds;
// with one it follows the strftime directives the documents carry.
func (f *Formatter) asctime(t time.Time) string {
	if f.dateFmt != "" {
		return strftime.Format(f.dateFmt, t)
	}
	return fmt.Sprintf("%s,%03d", t.Format(asctimeLayout), t.Nanosecond()/int(time.Millisecond))
}

// Formatters is the compiled formatter set one apply produced.
type Formatters struct {
	byName map[string]*Formatter
}

// CompileFormatters compiles every formatter spec. A spec without a format
// string compiles to the default template so documents may declare a
// formatter that only sets datefmt.
func CompileFormatters(specs []conf.FormatterSpec) (Formatters, error) {
	set := Formatters{byName: make(map[string]*Formatter, len(specs))}
	for _, spec := range specs {
		template := spec.Format()
		if template == "" {
			template = defaultTemplate
		}
		f, err := CompileTemplate(template, spec.DateFormat())
		if err != nil {
			return Formatters{}, fmt.Errorf("formatter %q: %w", spec.Name, err)
		}
		set.byName[spec.Name] = f
	}
	return set, nil
}

// Lookup finds a compiled formatter by name.
func (f Formatters) Lookup(name string) (*Formatter, bool) {
	formatter, ok := f.byName[name]
	return formatter, ok
}

func fieldValue(v any) string {
	switch val := v.(type) {
	case string:
		return quoteIfNeeded(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Duration:
		return val.String()
	case time.Time:
		return val.Format(asctimeLayout)
	case error:
		return quoteIfNeeded(val.Error())
	default:
		return quoteIfNeeded(fmt.Sprint(v))
	}
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return strconv.Quote(s)
		}
	}
	return s
}
