// Package console writes human readable log lines for the xtheme CLI and for
// hosts that do not bring their own logger.
//
// Entries look like
//
//	2024-03-14T15:09:26.535Z INF [xtheme.views] views.published tenant=shop-1 view=index
//
// with the logger name in brackets followed by the sorted fields.
package console

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-xtheme/internal/logging"
	"github.com/goliatone/go-xtheme/pkg/interfaces"
)

// Level is the severity of an entry.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]struct{ short, long string }{
	LevelTrace: {"TRC", "trace"},
	LevelDebug: {"DBG", "debug"},
	LevelInfo:  {"INF", "info"},
	LevelWarn:  {"WRN", "warn"},
	LevelError: {"ERR", "error"},
	LevelFatal: {"FTL", "fatal"},
}

// String returns the three letter label printed in entries.
func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l].short
	}
	return levelNames[LevelInfo].short
}

// ParseLevel maps a configured level name onto a Level, defaulting to LevelInfo.
func ParseLevel(value string) Level {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "warning" {
		return LevelWarn
	}
	for level, names := range levelNames {
		if names.long == value {
			return Level(level)
		}
	}
	return LevelInfo
}

// Options configures NewProvider. Writer defaults to stdout, TimeFunc to
// time.Now and MinLevel to LevelDebug.
type Options struct {
	Writer   io.Writer
	TimeFunc func() time.Time
	MinLevel *Level
}

type sink struct {
	mu    sync.Mutex
	out   io.Writer
	now   func() time.Time
	level Level
}

// NewProvider returns a provider whose loggers share one writer.
func NewProvider(opts Options) interfaces.LoggerProvider {
	s := &sink{out: opts.Writer, now: opts.TimeFunc, level: LevelDebug}
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.MinLevel != nil {
		s.level = *opts.MinLevel
	}
	return s
}

func (s *sink) GetLogger(name string) interfaces.Logger {
	return &logger{sink: s, name: strings.TrimSpace(name)}
}

func (s *sink) write(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.out, line)
}

type logger struct {
	sink   *sink
	name   string
	fields map[string]any
	ctx    context.Context
}

var (
	_ interfaces.Logger       = (*logger)(nil)
	_ interfaces.FieldsLogger = (*logger)(nil)
)

func (l *logger) Trace(msg string, args ...any) { l.log(LevelTrace, msg, args) }
func (l *logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args) }
func (l *logger) Info(msg string, args ...any)  { l.log(LevelInfo, msg, args) }
func (l *logger) Warn(msg string, args ...any)  { l.log(LevelWarn, msg, args) }
func (l *logger) Error(msg string, args ...any) { l.log(LevelError, msg, args) }
func (l *logger) Fatal(msg string, args ...any) { l.log(LevelFatal, msg, args) }

func (l *logger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	merged := make(map[string]any, len(l.fields)+len(fields))
	maps.Copy(merged, l.fields)
	maps.Copy(merged, fields)
	return &logger{sink: l.sink, name: l.name, fields: merged, ctx: l.ctx}
}

// WithContext binds ctx so fields stored with logging.ContextWithFields are
// added to every entry.
func (l *logger) WithContext(ctx context.Context) interfaces.Logger {
	return &logger{sink: l.sink, name: l.name, fields: l.fields, ctx: ctx}
}

func (l *logger) log(level Level, msg string, args []any) {
	if level < l.sink.level {
		return
	}
	fields := maps.Clone(l.fields)
	if fields == nil {
		fields = map[string]any{}
	}
	// The module field repeats the bracketed name.
	if fields["module"] == l.name {
		delete(fields, "module")
	}
	if l.ctx != nil {
		maps.Copy(fields, logging.ContextFields(l.ctx))
	}
	for i := 0; i < len(args); i += 2 {
		if i+1 == len(args) {
			fields["!extra"] = args[i]
			break
		}
		key, ok := args[i].(string)
		if !ok || key == "" {
			key = fmt.Sprintf("arg%d", i/2)
		}
		fields[key] = args[i+1]
	}

	var b strings.Builder
	b.WriteString(l.sink.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"))
	b.WriteByte(' ')
	b.WriteString(level.String())
	if l.name != "" {
		b.WriteString(" [")
		b.WriteString(l.name)
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(formatValue(fields[key]))
	}
	b.WriteByte('\n')
	l.sink.write(b.String())
}

func formatValue(value any) string {
	var s string
	switch v := value.(type) {
	case nil:
		return "-"
	case string:
		s = v
	case time.Time:
		s = v.UTC().Format(time.RFC3339)
	case time.Duration:
		s = v.String()
	case error:
		s = v.Error()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		s = fmt.Sprint(v)
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
