package application

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/checkoutrelay/internal/domain/model"
)

// EventLog is an append-only, in-memory diagnostic log exposed by /examine.
// With a zero limit it grows without bound for the life of the process;
// otherwise the oldest entries are dropped once limit is reached.
// A nil *EventLog discards everything.
type EventLog struct {
	mu      sync.Mutex
	entries []model.LogEntry
	limit   int
	now     func() time.Time
	logger  *slog.Logger
}

// NewEventLog creates an EventLog keeping at most limit entries (0 = unbounded).
func NewEventLog(limit int, logger *slog.Logger) *EventLog {
	if limit < 0 {
		limit = 0
	}
	return &EventLog{limit: limit, now: time.Now, logger: logger}
}

// Append records what, JSON-encoded, with the current time. Values that fail
// to encode are reported through the logger and dropped.
func (l *EventLog) Append(what any) {
	if l == nil {
		return
	}

	raw, err := json.Marshal(what)
	if err != nil {
		l.logger.Error("failed to encode event log entry", "error", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, model.LogEntry{What: raw, Timestamp: l.now()})
	if l.limit > 0 && len(l.entries) > l.limit {
		l.entries = append(l.entries[:0:0], l.entries[len(l.entries)-l.limit:]...)
	}
}

// Entries returns a copy of the log in append order.
func (l *EventLog) Entries() []model.LogEntry {
	if l == nil {
		return []model.LogEntry{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of retained entries.
func (l *EventLog) Len() int {
	if l == nil {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
