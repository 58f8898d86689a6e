package testing

import (
	"context"
	"log/slog"
	"sync"
)

// Record is a captured log record.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogRecorder is a slog.Handler that keeps every record in memory.
type LogRecorder struct {
	store *recordStore
	attrs []slog.Attr
}

type recordStore struct {
	mu      sync.Mutex
	records []Record
}

// NewLogRecorder returns a logger at trace level and its recorder.
func NewLogRecorder() (*slog.Logger, *LogRecorder) {
	r := &LogRecorder{store: &recordStore{}}
	return slog.New(r), r
}

func (r *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *LogRecorder) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]any)
	for _, a := range r.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	rec.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.records = append(r.store.records, Record{Level: rec.Level, Message: rec.Message, Attrs: attrs})
	return nil
}

func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogRecorder{store: r.store, attrs: append(append([]slog.Attr(nil), r.attrs...), attrs...)}
}

func (r *LogRecorder) WithGroup(string) slog.Handler { return r }

// Records returns a copy of the captured records.
func (r *LogRecorder) Records() []Record {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]Record(nil), r.store.records...)
}

// Count returns how many records have level and message.
func (r *LogRecorder) Count(level slog.Level, msg string) int {
	n := 0
	for _, rec := range r.Records() {
		if rec.Level == level && rec.Message == msg {
			n++
		}
	}
	return n
}

// AtLeast returns the records at level or above.
func (r *LogRecorder) AtLeast(level slog.Level) []Record {
	var out []Record
	for _, rec := range r.Records() {
		if rec.Level >= level {
			out = append(out, rec)
		}
	}
	return out
}
