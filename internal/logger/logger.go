package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = [...]string{DEBUG: "DEBUG", INFO: "INFO", WARN: "WARN", ERROR: "ERROR"}

var levelColors = [...]string{
	DEBUG: "\033[36m",
	INFO:  "\033[32m",
	WARN:  "\033[33m",
	ERROR: "\033[31m",
}

const colorReset = "\033[0m"

func (l Level) String() string {
	if l < DEBUG || l > ERROR {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps LOG_LEVEL values onto a Level. Unknown values mean INFO.
func ParseLevel(s string) Level {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "WARNING" {
		return WARN
	}
	for lvl, name := range levelNames {
		if name == s {
			return Level(lvl)
		}
	}
	return INFO
}

// sink serializes writes. Every logger derived from the same root shares one,
// so lines from request-scoped loggers never interleave.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *sink) write(line []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.w.Write(line)
}

// Logger writes printf-style lines tagged with a prefix and sorted key=value
// fields. Derived loggers are immutable copies that share the parent's sink.
type Logger struct {
	out      *sink
	level    Level
	prefix   string
	fields   map[string]any
	colorize bool
	now      func() time.Time
}

// Option configures a Logger.
type Option func(*Logger)

// WithOutput sets the output destination.
func WithOutput(w io.Writer) Option {
	return func(l *Logger) {
		l.out = &sink{w: w}
	}
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) Option {
	return func(l *Logger) {
		l.level = level
	}
}

// WithPrefix sets a prefix for log messages.
func WithPrefix(prefix string) Option {
	return func(l *Logger) {
		l.prefix = prefix
	}
}

// WithColors enables or disables ANSI level colors.
func WithColors(enabled bool) Option {
	return func(l *Logger) {
		l.colorize = enabled
	}
}

// New creates a new Logger with the given options.
func New(opts ...Option) *Logger {
	l := &Logger{
		out:      &sink{w: os.Stdout},
		level:    INFO,
		colorize: true,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New()
)

// SetDefault replaces the process-wide logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// Default returns the process-wide logger.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// derive copies l and merges extra into the copy's fields.
func (l *Logger) derive(extra map[string]any) *Logger {
	c := *l
	if len(extra) == 0 {
		return &c
	}
	c.fields = make(map[string]any, len(l.fields)+len(extra))
	for k, v := range l.fields {
		c.fields[k] = v
	}
	for k, v := range extra {
		c.fields[k] = v
	}
	return &c
}

// WithField returns a new logger with the given field added.
func (l *Logger) WithField(key string, value any) *Logger {
	return l.derive(map[string]any{key: value})
}

// WithFields returns a new logger with the given fields added.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	return l.derive(fields)
}

// WithKey returns a new logger tagged with a card progress identity.
func (l *Logger) WithKey(userID, collectionID, cardID string) *Logger {
	return l.derive(map[string]any{
		"user_id":       userID,
		"collection_id": collectionID,
		"card_id":       cardID,
	})
}

// WithPrefix returns a new logger with the given prefix.
func (l *Logger) WithPrefix(prefix string) *Logger {
	c := l.derive(nil)
	c.prefix = prefix
	return c
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.level
}

// caller reports file:line of the code that called a level method.
func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return ""
	}
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		file = file[idx+1:]
	}
	return file + ":" + strconv.Itoa(line)
}

// format renders one line:
//
//	2026-04-04 10:00:00.000 INFO  [prefix] [file.go:42] message k=v k=v
func (l *Logger) format(level Level, at, msg string, args []any) []byte {
	var b strings.Builder
	b.WriteString(l.now().Format("2006-01-02 15:04:05.000"))
	b.WriteByte(' ')

	name := fmt.Sprintf("%-5s", level.String())
	if l.colorize && level >= DEBUG && level <= ERROR {
		name = levelColors[level] + name + colorReset
	}
	b.WriteString(name)
	b.WriteByte(' ')

	for _, tag := range []string{l.prefix, at} {
		if tag != "" {
			b.WriteByte('[')
			b.WriteString(tag)
			b.WriteString("] ")
		}
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	b.WriteString(msg)

	// Key order keeps identical events byte-identical.
	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, l.fields[k])
	}

	b.WriteByte('\n')
	return []byte(b.String())
}

func (l *Logger) emit(level Level, msg string, args []any) {
	if !l.Enabled(level) {
		return
	}
	// Skip emit and the level method to land on the caller's frame.
	l.out.write(l.format(level, caller(2), msg, args))
}

// Debug logs a message at DEBUG level.
func (l *Logger) Debug(msg string, args ...any) { l.emit(DEBUG, msg, args) }

// Info logs a message at INFO level.
func (l *Logger) Info(msg string, args ...any) { l.emit(INFO, msg, args) }

// Warn logs a message at WARN level.
func (l *Logger) Warn(msg string, args ...any) { l.emit(WARN, msg, args) }

// Error logs a message at ERROR level.
func (l *Logger) Error(msg string, args ...any) { l.emit(ERROR, msg, args) }

// Package-level functions that use the default logger.

func Debug(msg string, args ...any) { Default().emit(DEBUG, msg, args) }
func Info(msg string, args ...any)  { Default().emit(INFO, msg, args) }
func Warn(msg string, args ...any)  { Default().emit(WARN, msg, args) }
func Error(msg string, args ...any) { Default().emit(ERROR, msg, args) }

type ctxKey struct{}

// FromContext returns the request-scoped logger, or the default logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok && l != nil {
		return l
	}
	return Default()
}

// NewContext returns a new context carrying l.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}
