// Package log builds the process logger.
//
// Without a log file, records below error go to stdout and errors to stderr.
// With a log file, the console gets everything on stderr and the file gets
// a copy.
package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace is below Debug and enables per-transition and per-bit output.
const LevelTrace slog.Level = -8

// Config is the global logging flag group.
type Config struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"VIASHIFT_LOG_LEVEL"`
	File    string `help:"Also write logs to this file" env:"VIASHIFT_LOG_FILE"`
	RawFile string `help:"Write hex traces of received frames and shifted bytes to this file" env:"VIASHIFT_LOG_RAW_FILE"`
}

// ParseLevel maps a level name to a slog level. Unknown names are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MultiHandler fans out records to multiple handlers.
type MultiHandler struct{ hs []slog.Handler }

// NewMultiHandler combines hs.
func NewMultiHandler(hs ...slog.Handler) MultiHandler { return MultiHandler{hs: hs} }

func (m MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m.hs {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithAttrs(attrs)
	}
	return MultiHandler{hs: out}
}

func (m MultiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.hs))
	for i, h := range m.hs {
		out[i] = h.WithGroup(name)
	}
	return MultiHandler{hs: out}
}

// LevelFilter passes to h only the levels accepted by pass.
type LevelFilter struct {
	pass func(slog.Level) bool
	h    slog.Handler
}

// NewLevelFilter wraps h.
func NewLevelFilter(pass func(slog.Level) bool, h slog.Handler) LevelFilter {
	return LevelFilter{pass: pass, h: h}
}

func (f LevelFilter) Enabled(ctx context.Context, level slog.Level) bool {
	return f.pass(level) && f.h.Enabled(ctx, level)
}

func (f LevelFilter) Handle(ctx context.Context, r slog.Record) error {
	if !f.pass(r.Level) {
		return nil
	}
	return f.h.Handle(ctx, r)
}

func (f LevelFilter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithAttrs(attrs)}
}

func (f LevelFilter) WithGroup(name string) slog.Handler {
	return LevelFilter{pass: f.pass, h: f.h.WithGroup(name)}
}

func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if l, ok := a.Value.Any().(slog.Level); ok && l <= LevelTrace {
			a.Value = slog.StringValue("TRACE")
		}
	}
	return a
}

// NewHandler returns a text handler on w that prints LevelTrace as TRACE.
func NewHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: replaceLevel})
}

// SetupLogger builds a slog.Logger with console and optional file handlers.
func SetupLogger(logLevel, logFile string) (*slog.Logger, []io.Closer, error) {
	return setup(ParseLevel(logLevel), logFile, os.Stdout, os.Stderr)
}

func setup(level slog.Level, logFile string, stdout, stderr io.Writer) (*slog.Logger, []io.Closer, error) {
	var handlers []slog.Handler
	var closers []io.Closer

	if logFile == "" {
		handlers = append(handlers,
			NewLevelFilter(func(l slog.Level) bool { return l < slog.LevelError }, NewHandler(stdout, level)),
			NewLevelFilter(func(l slog.Level) bool { return l >= slog.LevelError }, NewHandler(stderr, slog.LevelError)),
		)
	} else {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		closers = append(closers, f)
		handlers = append(handlers, NewHandler(stderr, level), NewHandler(f, level))
	}
	return slog.New(NewMultiHandler(handlers...)), closers, nil
}

// Setup builds the logger and the raw trace logger described by c. The raw
// logger writes to c.RawFile if set, to stderr at trace level, and is a
// no-op otherwise.
func (c Config) Setup() (*slog.Logger, RawLogger, []io.Closer, error) {
	logger, closers, err := SetupLogger(c.Level, c.File)
	if err != nil {
		return nil, nil, nil, err
	}
	var raw io.Writer
	switch {
	case c.RawFile != "":
		f, err := os.OpenFile(c.RawFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			closeAll(closers)
			return nil, nil, nil, fmt.Errorf("open raw log file: %w", err)
		}
		closers = append(closers, f)
		raw = f
	case ParseLevel(c.Level) <= LevelTrace:
		raw = os.Stderr
	}
	return logger, NewRaw(raw), closers, nil
}

func closeAll(cs []io.Closer) {
	for _, c := range cs {
		_ = c.Close()
	}
}
