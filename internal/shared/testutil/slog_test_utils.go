package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Entry is one captured log line with its attributes flattened. Attributes
// added through Logger.With are included; grouped keys are dotted.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// Recorder is a slog.Handler that keeps every entry in memory. Handlers
// derived with WithAttrs or WithGroup write into the same store.
type Recorder struct {
	store  *entryStore
	attrs  []slog.Attr
	prefix string
}

type entryStore struct {
	mu      sync.Mutex
	entries []Entry
}

// NewTestLogger returns a logger that records at every level and the
// recorder behind it
func NewTestLogger(t *testing.T) (*slog.Logger, *Recorder) {
	t.Helper()
	rec := &Recorder{store: &entryStore{}}
	return slog.New(rec), rec
}

func (r *Recorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *Recorder) Handle(_ context.Context, rec slog.Record) error {
	attrs := make(map[string]any, len(r.attrs)+rec.NumAttrs())
	for _, a := range r.attrs {
		flatten(attrs, "", a)
	}
	rec.Attrs(func(a slog.Attr) bool {
		flatten(attrs, r.prefix, a)
		return true
	})

	r.store.mu.Lock()
	r.store.entries = append(r.store.entries, Entry{Level: rec.Level, Message: rec.Message, Attrs: attrs})
	r.store.mu.Unlock()
	return nil
}

func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *r
	next.attrs = append(append([]slog.Attr(nil), r.attrs...), prefixed(r.prefix, attrs)...)
	return &next
}

func (r *Recorder) WithGroup(name string) slog.Handler {
	if name == "" {
		return r
	}
	next := *r
	next.prefix = r.prefix + name + "."
	return &next
}

func prefixed(prefix string, attrs []slog.Attr) []slog.Attr {
	if prefix == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}
	return out
}

func flatten(dst map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, g := range v.Group() {
			flatten(dst, prefix+a.Key+".", g)
		}
		return
	}
	dst[prefix+a.Key] = v.Any()
}

// Entries returns a copy of everything recorded so far
func (r *Recorder) Entries() []Entry {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]Entry(nil), r.store.entries...)
}

// Count is the number of recorded entries
func (r *Recorder) Count() int {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.entries)
}

// Clear forgets every recorded entry
func (r *Recorder) Clear() {
	r.store.mu.Lock()
	r.store.entries = nil
	r.store.mu.Unlock()
}

func (r *Recorder) dump() string {
	var b strings.Builder
	for _, e := range r.Entries() {
		fmt.Fprintf(&b, "\n  [%s] %s %v", e.Level, e.Message, e.Attrs)
	}
	return b.String()
}

// AssertLogContains fails unless an entry at level has message as a substring
func AssertLogContains(t *testing.T, rec *Recorder, level slog.Level, message string) bool {
	t.Helper()
	for _, e := range rec.Entries() {
		if e.Level == level && strings.Contains(e.Message, message) {
			return true
		}
	}
	return assert.Fail(t, fmt.Sprintf("no %s entry containing %q", level, message), "recorded:%s", rec.dump())
}

// AssertLogAttr fails unless some entry carries key with exactly value
func AssertLogAttr(t *testing.T, rec *Recorder, key string, value any) bool {
	t.Helper()
	for _, e := range rec.Entries() {
		if v, ok := e.Attrs[key]; ok && v == value {
			return true
		}
	}
	return assert.Fail(t, fmt.Sprintf("no entry with %s=%v", key, value), "recorded:%s", rec.dump())
}
