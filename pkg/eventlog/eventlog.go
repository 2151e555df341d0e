package eventlog

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

const flushEvery = 10

// Event is one timestamped record of something the operator did.
type Event struct {
	Timestamp string                 `json:"timestamp"`
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Logger accumulates events in memory and appends them to a JSON-lines
// file every few events.  A nil Logger is safe to call and does
// nothing, so callers don't need to guard for logging being disabled.
type Logger struct {
	mu      sync.Mutex
	path    string
	pending []Event
	all     []Event
}

func New(path string) *Logger {
	return &Logger{path: path}
}

func (l *Logger) Append(eventType string, data map[string]interface{}) {
	if l == nil {
		return
	}
	ev := Event{
		Timestamp: time.Now().Format(time.RFC3339),
		Type:      eventType,
		Data:      data,
	}
	l.mu.Lock()
	l.all = append(l.all, ev)
	l.pending = append(l.pending, ev)
	needFlush := len(l.pending) >= flushEvery
	l.mu.Unlock()
	if needFlush {
		l.Flush()
	}
}

// Flush writes any buffered events to the log file.
func (l *Logger) Flush() {
	if l == nil {
		return
	}
	l.mu.Lock()
	pending := l.pending
	l.pending = nil
	l.mu.Unlock()
	if len(pending) == 0 || l.path == "" {
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		fmt.Println("Failed to open event log:", err)
		return
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, ev := range pending {
		if err := enc.Encode(ev); err != nil {
			fmt.Println("Failed to write event log:", err)
			return
		}
	}
}

// Snapshot returns a copy of every event recorded this run.
func (l *Logger) Snapshot() []Event {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.all))
	copy(out, l.all)
	return out
}

func (l *Logger) Close() {
	l.Flush()
}
