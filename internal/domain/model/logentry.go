package model

import (
	"encoding/json"
	"time"
)

// LogEntry is one diagnostic event captured by the event log.
type LogEntry struct {
	What      json.RawMessage `json:"what"`
	Timestamp time.Time       `json:"timestamp"`
}
