package game

import (
	"fmt"
	"time"
)

// LogEntry is one line of the append-only action log.
type LogEntry struct {
	Type      string         `json:"type"`
	Actor     string         `json:"actor,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
}

func (e *Engine) record(kind, actor string, payload map[string]any, format string, args ...any) {
	e.log = append(e.log, LogEntry{
		Type:      kind,
		Actor:     actor,
		Payload:   payload,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: e.now(),
	})
	if len(e.log) > maxLogEntries {
		e.log = append([]LogEntry(nil), e.log[len(e.log)-maxLogEntries:]...)
	}
}

// Log returns the most recent n entries, oldest first. n <= 0 returns all.
func (e *Engine) Log(n int) []LogEntry {
	start := 0
	if n > 0 && len(e.log) > n {
		start = len(e.log) - n
	}
	return append([]LogEntry(nil), e.log[start:]...)
}
