package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the logging surface used across tinykv.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	// Slog exposes the backing *slog.Logger for APIs that want one.
	Slog() *slog.Logger
}

// Config selects level, encoding and destination.
type Config struct {
	Level     string    // debug, info, warn or error
	Format    string    // json or text ("console" is an alias of text)
	Output    io.Writer // nil means os.Stderr
	AddSource bool
}

// DefaultConfig logs JSON at info level to stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: os.Stderr}
}

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

type handlerFunc func(io.Writer, *slog.HandlerOptions) slog.Handler

var formats = map[string]handlerFunc{
	"json":    func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewJSONHandler(w, o) },
	"text":    func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewTextHandler(w, o) },
	"console": func(w io.Writer, o *slog.HandlerOptions) slog.Handler { return slog.NewTextHandler(w, o) },
}

// level is shared by every logger built with New so a reload can change
// verbosity process-wide.
var level = new(slog.LevelVar)

type logger struct {
	sl *slog.Logger
}

// New builds a Logger from cfg and sets the shared level to cfg.Level.
// Unknown levels fall back to info and unknown formats to JSON.
func New(cfg Config) (Logger, error) {
	level.Set(parseLevel(cfg.Level))

	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}
	build, ok := formats[strings.ToLower(cfg.Format)]
	if !ok {
		build = formats["json"]
	}

	h := build(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactPayload(a)
		},
	})
	return &logger{sl: slog.New(h)}, nil
}

// SetLevel changes the shared level. Unknown names select info.
func SetLevel(name string) { level.Set(parseLevel(name)) }

// GetLevel reports the shared level as a lower-case name.
func GetLevel() string { return strings.ToLower(level.Level().String()) }

// ValidLevel reports whether name is an accepted level.
func ValidLevel(name string) bool {
	_, ok := levels[strings.ToLower(name)]
	return ok
}

// ValidFormat reports whether name is an accepted output format.
func ValidFormat(name string) bool {
	_, ok := formats[strings.ToLower(name)]
	return ok
}

func parseLevel(name string) slog.Level {
	if l, ok := levels[strings.ToLower(name)]; ok {
		return l
	}
	return slog.LevelInfo
}

func (l *logger) Debug(msg string, args ...any) { l.sl.Debug(msg, args...) }
func (l *logger) Info(msg string, args ...any)  { l.sl.Info(msg, args...) }
func (l *logger) Warn(msg string, args ...any)  { l.sl.Warn(msg, args...) }
func (l *logger) Error(msg string, args ...any) { l.sl.Error(msg, args...) }
func (l *logger) With(args ...any) Logger       { return &logger{sl: l.sl.With(args...)} }
func (l *logger) Slog() *slog.Logger            { return l.sl }

var std atomic.Pointer[logger]

func init() {
	l, _ := New(DefaultConfig())
	std.Store(l.(*logger))
}

// SetDefault replaces the package logger and installs it as the slog
// default. Loggers not built by New are ignored.
func SetDefault(l Logger) {
	impl, ok := l.(*logger)
	if !ok {
		return
	}
	std.Store(impl)
	slog.SetDefault(impl.sl)
}

// Default returns the package logger.
func Default() Logger { return std.Load() }

func Debug(msg string, args ...any) { std.Load().Debug(msg, args...) }
func Info(msg string, args ...any)  { std.Load().Info(msg, args...) }
func Warn(msg string, args ...any)  { std.Load().Warn(msg, args...) }
func Error(msg string, args ...any) { std.Load().Error(msg, args...) }
