// Package telemetry keeps a bounded in-memory trail of assessment events and
// mirrors each one to a standard logger.
package telemetry

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

// Level is the severity of an event.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// DefaultCapacity bounds the ring buffer when none is configured.
const DefaultCapacity = 256

// Event is one recorded occurrence.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Level     Level             `json:"level"`
	Session   string            `json:"session,omitempty"`
	Message   string            `json:"message"`
	Error     string            `json:"error,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Recorder stores the most recent events in a fixed-size ring.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
	output *log.Logger
	now    func() time.Time
}

// NewRecorder creates a recorder writing JSON lines to output. A nil output logs to stderr.
func NewRecorder(capacity int, output *log.Logger) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if output == nil {
		output = log.New(os.Stderr, "", log.LstdFlags)
	}
	return &Recorder{
		events: make([]Event, capacity),
		output: output,
		now:    time.Now,
	}
}

// Discard returns a recorder that keeps events but writes nowhere.
func Discard() *Recorder {
	return NewRecorder(DefaultCapacity, log.New(nopWriter{}, "", 0))
}

func (r *Recorder) Info(session, msg string, fields map[string]string) {
	r.record(Event{Level: LevelInfo, Session: session, Message: msg, Fields: fields})
}

func (r *Recorder) Warn(session, msg string, fields map[string]string) {
	r.record(Event{Level: LevelWarn, Session: session, Message: msg, Fields: fields})
}

func (r *Recorder) Error(session, msg string, err error) {
	e := Event{Level: LevelError, Session: session, Message: msg}
	if err != nil {
		e.Error = err.Error()
	}
	r.record(e)
}

func (r *Recorder) record(e Event) {
	r.mu.Lock()
	e.Timestamp = r.now()
	r.events[r.next] = e
	r.next = (r.next + 1) % len(r.events)
	if r.next == 0 {
		r.full = true
	}
	r.mu.Unlock()

	line, err := json.Marshal(e)
	if err != nil {
		r.output.Printf("%s %s", e.Level, e.Message)
		return
	}
	r.output.Print(string(line))
}

// Recent returns up to n events, oldest first. n <= 0 returns everything retained.
func (r *Recorder) Recent(n int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ordered []Event
	if r.full {
		ordered = append(ordered, r.events[r.next:]...)
	}
	ordered = append(ordered, r.events[:r.next]...)
	if n > 0 && n < len(ordered) {
		ordered = ordered[len(ordered)-n:]
	}
	out := make([]Event, len(ordered))
	copy(out, ordered)
	return out
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
