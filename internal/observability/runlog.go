// Package observability provides the run log: a bounded in-memory buffer of
// timestamped stage events with subscriber fan-out. The excluded dashboard UI
// renders these; the pipeline's only obligation is to emit them.
package observability

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Level classifies an event for display.
type Level string

// Event levels.
const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
	LevelSuccess Level = "SUCCESS"
)

// Event is one human-readable, timestamped log line tagged with its stage.
type Event struct {
	Time    time.Time `json:"time"`
	Stage   string    `json:"stage"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
}

func (e Event) String() string {
	return fmt.Sprintf("[%s] [%s] [%s] %s", e.Time.Format("15:04:05"), e.Level, e.Stage, e.Message)
}

// defaultCapacity bounds the buffer; old events are dropped oldest-first.
const defaultCapacity = 500

// RunLog buffers events for the current run and fans them out to subscribers.
// Safe for concurrent use; the pipeline writes, the server reads and streams.
type RunLog struct {
	mu      sync.Mutex
	events  []Event
	cap     int
	subs    map[int]chan Event
	nextSub int
}

// NewRunLog creates a run log. capacity <= 0 uses the default.
func NewRunLog(capacity int) *RunLog {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &RunLog{
		cap:  capacity,
		subs: make(map[int]chan Event),
	}
}

// Reset clears the buffer at the start of a new run. Subscribers stay attached.
func (l *RunLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

// Log records an event, mirrors it to the process log, and notifies
// subscribers. Slow subscribers miss events rather than blocking the run.
func (l *RunLog) Log(stage string, level Level, format string, args ...any) {
	event := Event{
		Time:    time.Now(),
		Stage:   stage,
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	}

	log.Printf("[%s] [%s] %s", event.Level, event.Stage, event.Message)

	l.mu.Lock()
	l.events = append(l.events, event)
	if len(l.events) > l.cap {
		l.events = l.events[len(l.events)-l.cap:]
	}
	for _, ch := range l.subs {
		select {
		case ch <- event:
		default:
		}
	}
	l.mu.Unlock()
}

// Info logs an informational event.
func (l *RunLog) Info(stage, format string, args ...any) {
	l.Log(stage, LevelInfo, format, args...)
}

// Warn logs a warning event.
func (l *RunLog) Warn(stage, format string, args ...any) {
	l.Log(stage, LevelWarning, format, args...)
}

// Error logs an error event.
func (l *RunLog) Error(stage, format string, args ...any) {
	l.Log(stage, LevelError, format, args...)
}

// Success logs a success event.
func (l *RunLog) Success(stage, format string, args ...any) {
	l.Log(stage, LevelSuccess, format, args...)
}

// Events returns a copy of the buffered events in order.
func (l *RunLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	events := make([]Event, len(l.events))
	copy(events, l.events)
	return events
}

// Subscribe attaches a live event channel. The returned cancel function must
// be called to detach; after cancel the channel is closed.
func (l *RunLog) Subscribe() (<-chan Event, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextSub
	l.nextSub++
	ch := make(chan Event, 64)
	l.subs[id] = ch

	cancel := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if sub, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}
