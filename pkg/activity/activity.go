// Package activity keeps a bounded, in-memory feed of what happened to the
// document collection during this session: uploads, queries, recalculations.
package activity

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-docgraph/pkg/pubsub"
)

// Action is the kind of thing that happened
type Action string

const (
	ActionUpload      Action = "upload"
	ActionQuery       Action = "query"
	ActionRecalculate Action = "recalculate"
)

// Status represents the outcome of an action
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Event is a single activity entry
type Event struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Action     Action         `json:"action"`
	DocumentID string         `json:"document_id,omitempty"`
	Status     Status         `json:"status"`
	Message    string         `json:"message,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// String returns a one-line rendering used by the dashboard
func (e *Event) String() string {
	subject := e.DocumentID
	if subject == "" {
		subject = "-"
	}
	s := fmt.Sprintf("%s %-11s %-8s %s", e.Timestamp.Format("15:04:05"), e.Action, subject, e.Status)
	if e.Message != "" {
		s += " " + e.Message
	}
	return s
}

// Filter narrows Events; zero fields match everything
type Filter struct {
	Action     Action
	DocumentID string
	Status     Status
	Since      *time.Time
}

func (f *Filter) matches(e *Event) bool {
	if f == nil {
		return true
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.DocumentID != "" && e.DocumentID != f.DocumentID {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Since != nil && e.Timestamp.Before(*f.Since) {
		return false
	}
	return true
}

// Recorder stores events in a circular buffer; the oldest entry is overwritten when full
type Recorder struct {
	events     []*Event
	bufferSize int
	index      int
	count      int
	now        func() time.Time
	broker     *pubsub.Broker[Event]
	mu         sync.RWMutex
}

// NewRecorder creates a recorder holding at most bufferSize events
func NewRecorder(bufferSize int) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Recorder{
		events:     make([]*Event, bufferSize),
		bufferSize: bufferSize,
		now:        time.Now,
	}
}

// Attach publishes every recorded event to b under its action name
func (r *Recorder) Attach(b *pubsub.Broker[Event]) {
	r.mu.Lock()
	r.broker = b
	r.mu.Unlock()
}

// Record stores an event, assigning an ID and timestamp when missing
func (r *Recorder) Record(event *Event) {
	r.mu.Lock()
	broker := r.store(event)
	published := *event
	r.mu.Unlock()

	if broker != nil {
		broker.Publish(string(published.Action), published)
	}
}

// store writes event into the ring and returns the broker to publish to
func (r *Recorder) store(event *Event) *pubsub.Broker[Event] {
	if event.Timestamp.IsZero() {
		event.Timestamp = r.now()
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Status == "" {
		event.Status = StatusSuccess
	}

	r.events[r.index] = event
	r.index = (r.index + 1) % r.bufferSize
	if r.count < r.bufferSize {
		r.count++
	}
	return r.broker
}

// Events returns matching events, oldest first
func (r *Recorder) Events(filter *Filter) []*Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Event, 0, r.count)
	for i := 0; i < r.count; i++ {
		idx := (r.index - r.count + i + r.bufferSize) % r.bufferSize
		if event := r.events[idx]; event != nil && filter.matches(event) {
			result = append(result, event)
		}
	}
	return result
}

// Recent returns up to n events, newest first
func (r *Recorder) Recent(n int) []*Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n > r.count {
		n = r.count
	}
	result := make([]*Event, 0, n)
	for i := 0; i < n; i++ {
		idx := (r.index - 1 - i + r.bufferSize) % r.bufferSize
		result = append(result, r.events[idx])
	}
	return result
}

// Count returns the number of events currently held
func (r *Recorder) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}
