package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// TestLogger captures structured logs for assertion in tests.
type TestLogger struct {
	mu      sync.RWMutex
	Entries []LogEntry
	Logger  *slog.Logger
	buffer  *bytes.Buffer
}

// LogEntry is one captured record.
type LogEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// NewTestLogger creates a logger that captures every record at debug level
// and above.
func NewTestLogger(t *testing.T) *TestLogger {
	t.Helper()

	tl := &TestLogger{buffer: &bytes.Buffer{}}
	tl.Logger = slog.New(&captureHandler{
		testLogger: tl,
		handler:    slog.NewJSONHandler(tl.buffer, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
	return tl
}

// captureHandler records entries before passing them to the JSON handler.
// attrs holds keys already qualified by the group they were added under.
type captureHandler struct {
	testLogger *TestLogger
	handler    slog.Handler
	attrs      map[string]any
	group      string
}

func (h *captureHandler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

func (h *captureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *captureHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := LogEntry{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   make(map[string]any, len(h.attrs)+r.NumAttrs()),
	}
	for k, v := range h.attrs {
		entry.Attrs[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		entry.Attrs[h.qualify(a.Key)] = a.Value.Any()
		return true
	})

	h.testLogger.mu.Lock()
	h.testLogger.Entries = append(h.testLogger.Entries, entry)
	h.testLogger.mu.Unlock()

	return h.handler.Handle(ctx, r)
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make(map[string]any, len(h.attrs)+len(attrs))
	for k, v := range h.attrs {
		merged[k] = v
	}
	for _, a := range attrs {
		merged[h.qualify(a.Key)] = a.Value.Any()
	}
	return &captureHandler{
		testLogger: h.testLogger,
		handler:    h.handler.WithAttrs(attrs),
		attrs:      merged,
		group:      h.group,
	}
}

func (h *captureHandler) WithGroup(name string) slog.Handler {
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &captureHandler{
		testLogger: h.testLogger,
		handler:    h.handler.WithGroup(name),
		attrs:      h.attrs,
		group:      group,
	}
}

// GetEntries returns a copy of all captured log entries.
func (l *TestLogger) GetEntries() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]LogEntry, len(l.Entries))
	copy(result, l.Entries)
	return result
}

// GetEntriesContaining returns entries whose message contains a substring.
func (l *TestLogger) GetEntriesContaining(substring string) []LogEntry {
	var result []LogEntry
	for _, e := range l.GetEntries() {
		if strings.Contains(e.Message, substring) {
			result = append(result, e)
		}
	}
	return result
}

// CountLevel returns the count of entries at a specific level.
func (l *TestLogger) CountLevel(level slog.Level) int {
	count := 0
	for _, e := range l.GetEntries() {
		if e.Level == level {
			count++
		}
	}
	return count
}

// GetOutput returns the raw JSON output.
func (l *TestLogger) GetOutput() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.buffer.String()
}

// AssertContains asserts that at least one log entry contains the message.
func (l *TestLogger) AssertContains(t *testing.T, msg string) {
	t.Helper()
	if len(l.GetEntriesContaining(msg)) == 0 {
		t.Errorf("Expected log to contain message %q, but it wasn't found", msg)
	}
}

// AssertAttrValue asserts that at least one entry has the attribute with the given value.
func (l *TestLogger) AssertAttrValue(t *testing.T, key string, value any) {
	t.Helper()
	for _, e := range l.GetEntries() {
		if v, ok := e.Attrs[key]; ok && v == value {
			return
		}
	}
	t.Errorf("Expected at least one log entry with %s=%v", key, value)
}

// AssertEmpty asserts that no log entries have been captured.
func (l *TestLogger) AssertEmpty(t *testing.T) {
	t.Helper()
	if n := len(l.GetEntries()); n != 0 {
		t.Errorf("Expected no log entries, got %d", n)
	}
}
